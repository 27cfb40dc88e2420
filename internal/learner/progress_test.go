package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressComplete(t *testing.T) {
	p := NewUnlocked("u1", "l1")

	p.Complete(70, now)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, 70, p.BestScore)
	assert.Equal(t, 1, p.Attempts)
	require.NotNil(t, p.LastAttemptAt)
	assert.Equal(t, now, *p.LastAttemptAt)

	p.Complete(40, now)
	assert.Equal(t, 70, p.BestScore, "best score must not decrease")
	assert.Equal(t, 2, p.Attempts)
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestProgressUnlock(t *testing.T) {
	p := Progress{Status: StatusLocked}
	p.Unlock()
	assert.Equal(t, StatusUnlocked, p.Status)

	done := Progress{Status: StatusCompleted}
	done.Unlock()
	assert.Equal(t, StatusCompleted, done.Status)
}

func TestEffectiveStatus(t *testing.T) {
	tests := []struct {
		name    string
		p       *Progress
		ordinal int
		want    Status
	}{
		{"first lesson no record", nil, 0, StatusUnlocked},
		{"later lesson no record", nil, 3, StatusLocked},
		{"record wins", &Progress{Status: StatusCompleted}, 0, StatusCompleted},
		{"unlocked record", &Progress{Status: StatusUnlocked}, 5, StatusUnlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveStatus(tt.p, tt.ordinal))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}
