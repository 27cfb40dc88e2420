// Package leaderboard ranks learners by XP.
package leaderboard

import (
	"fmt"
	"math"
)

// Tier is a status title earned by XP.
type Tier string

const (
	TierJuniorArchitect   Tier = "JUNIOR_ARCHITECT"
	TierKernelContributor Tier = "KERNEL_CONTRIBUTOR"
	TierProLogicist       Tier = "PRO_LOGICIST"
)

// XP thresholds for the tiers above the entry tier.
const (
	KernelContributorXP = 1000
	ProLogicistXP       = 5000
)

// DefaultSize is the number of users listed on the board.
const DefaultSize = 50

// TierFor returns the tier for an XP total.
func TierFor(xp int) Tier {
	switch {
	case xp >= ProLogicistXP:
		return TierProLogicist
	case xp >= KernelContributorXP:
		return TierKernelContributor
	default:
		return TierJuniorArchitect
	}
}

// Player is the input row for a ranked user.
type Player struct {
	ID       string
	Username string
	XP       int
	Streak   int
}

// Entry is one row of the board.
type Entry struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	XP            int    `json:"xp"`
	Streak        int    `json:"streakCount"`
	Status        Tier   `json:"status"`
	IsCurrentUser bool   `json:"isCurrentUser"`
}

// Standing is the requesting user's position among all users.
type Standing struct {
	Rank       int    `json:"rank"`
	Percentile string `json:"percentile"`
	TotalUsers int    `json:"totalUsers"`
}

// Board is the leaderboard response.
type Board struct {
	Users     []Entry  `json:"users"`
	UserStats Standing `json:"userStats"`
}

// Build assembles the board. top must already be sorted by XP descending;
// higher is the number of users with strictly more XP than the current user
// and total the number of users overall.
func Build(top []Player, currentUserID string, higher, total int) Board {
	entries := make([]Entry, 0, len(top))
	for _, p := range top {
		entries = append(entries, Entry{
			ID:            p.ID,
			Username:      p.Username,
			XP:            p.XP,
			Streak:        p.Streak,
			Status:        TierFor(p.XP),
			IsCurrentUser: p.ID == currentUserID,
		})
	}
	rank := higher + 1
	return Board{
		Users: entries,
		UserStats: Standing{
			Rank:       rank,
			Percentile: PercentileLabel(Percentile(rank, total)),
			TotalUsers: total,
		},
	}
}

// Percentile returns ceil(rank/total*100), at least 1. A zero total counts
// as a board of one.
func Percentile(rank, total int) int {
	if total < 1 {
		total = 1
	}
	if rank < 1 {
		rank = 1
	}
	p := int(math.Ceil(float64(rank) / float64(total) * 100))
	if p < 1 {
		p = 1
	}
	return p
}

// PercentileLabel renders a percentile as "Top N%" for the upper half and
// "Bottom N%" otherwise.
func PercentileLabel(p int) string {
	if p > 50 {
		return fmt.Sprintf("Bottom %d%%", 100-p)
	}
	return fmt.Sprintf("Top %d%%", p)
}
