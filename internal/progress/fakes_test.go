package progress

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/abhisek/codepath/internal/curriculum"
	"github.com/abhisek/codepath/internal/learner"
	"github.com/abhisek/codepath/internal/store"
)

// memRepos is an in-memory implementation of every repository the service
// uses. Records are copied on the way in and out, like a real store.
type memRepos struct {
	mu        sync.Mutex
	lessons   []curriculum.Lesson
	questions map[string]curriculum.Question
	users     map[string]*learner.User
	progress  map[string]learner.Progress

	saveErr   error
	saveCalls int
	unlockErr error
}

func newMemRepos(lessons []curriculum.Lesson, questions []curriculum.Question) *memRepos {
	m := &memRepos{
		lessons:   lessons,
		questions: make(map[string]curriculum.Question),
		users:     make(map[string]*learner.User),
		progress:  make(map[string]learner.Progress),
	}
	for _, q := range questions {
		m.questions[q.ID] = q
	}
	return m
}

func (m *memRepos) repos() Repos {
	return Repos{
		Lessons:   memLessons{m},
		Questions: memQuestions{m},
		Users:     memUsers{m},
		Progress:  memProgress{m},
	}
}

func cloneUser(u *learner.User) *learner.User {
	c := *u
	c.History = append([]learner.QuestionHistory(nil), u.History...)
	c.Concepts = append([]learner.ConceptMastery(nil), u.Concepts...)
	if u.LastActiveAt != nil {
		t := *u.LastActiveAt
		c.LastActiveAt = &t
	}
	return &c
}

type memLessons struct{ m *memRepos }

func (r memLessons) find(match func(curriculum.Lesson) bool, desc string) (*curriculum.Lesson, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, l := range r.m.lessons {
		if match(l) {
			cp := l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("lesson %s: %w", desc, store.ErrNotFound)
}

func (r memLessons) ByID(_ context.Context, id string) (*curriculum.Lesson, error) {
	return r.find(func(l curriculum.Lesson) bool { return l.ID == id }, id)
}

func (r memLessons) BySlug(_ context.Context, slug string) (*curriculum.Lesson, error) {
	return r.find(func(l curriculum.Lesson) bool { return l.Slug == slug }, slug)
}

func (r memLessons) ByOrdinal(_ context.Context, ordinal int) (*curriculum.Lesson, error) {
	return r.find(func(l curriculum.Lesson) bool { return l.Ordinal == ordinal }, fmt.Sprint(ordinal))
}

func (r memLessons) List(_ context.Context) ([]curriculum.Lesson, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := append([]curriculum.Lesson(nil), r.m.lessons...)
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

type memQuestions struct{ m *memRepos }

func (r memQuestions) ByID(_ context.Context, id string) (*curriculum.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	q, ok := r.m.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, store.ErrNotFound)
	}
	return &q, nil
}

func (r memQuestions) ByLesson(_ context.Context, lessonID string) ([]curriculum.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []curriculum.Question
	for _, q := range r.m.questions {
		if q.LessonID == lessonID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memUsers struct{ m *memRepos }

func (r memUsers) Create(_ context.Context, u *learner.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; ok {
		return fmt.Errorf("user %s exists", u.ID)
	}
	u.Version = 1
	r.m.users[u.ID] = cloneUser(u)
	return nil
}

func (r memUsers) Get(_ context.Context, id string) (*learner.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r memUsers) Save(_ context.Context, u *learner.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.saveCalls++
	if r.m.saveErr != nil {
		return r.m.saveErr
	}
	cur, ok := r.m.users[u.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
	}
	if cur.Version != u.Version {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrConflict)
	}
	u.Version++
	r.m.users[u.ID] = cloneUser(u)
	return nil
}

func (r memUsers) Top(_ context.Context, n int) ([]learner.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []learner.User
	for _, u := range r.m.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r memUsers) CountAbove(_ context.Context, xp int) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, u := range r.m.users {
		if u.XP > xp {
			n++
		}
	}
	return n, nil
}

func (r memUsers) Count(_ context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.m.users), nil
}

func (r memUsers) Reset(_ context.Context, _ string) error {
	return fmt.Errorf("reset not supported")
}

type memProgress struct{ m *memRepos }

func progressKey(userID, lessonID string) string { return userID + "/" + lessonID }

func (r memProgress) Get(_ context.Context, userID, lessonID string) (*learner.Progress, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.progress[progressKey(userID, lessonID)]
	if !ok {
		return nil, fmt.Errorf("progress: %w", store.ErrNotFound)
	}
	return &p, nil
}

func (r memProgress) ListByUser(_ context.Context, userID string) ([]learner.Progress, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []learner.Progress
	for _, p := range r.m.progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonID < out[j].LessonID })
	return out, nil
}

// Complete stages both writes and applies them only if both succeed.
// unlockErr fails the second write.
func (r memProgress) Complete(_ context.Context, done, next *learner.Progress) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	staged := make(map[string]learner.Progress, len(r.m.progress)+2)
	for k, v := range r.m.progress {
		staged[k] = v
	}
	staged[progressKey(done.UserID, done.LessonID)] = *done

	inserted := false
	if next != nil {
		if r.m.unlockErr != nil {
			return false, r.m.unlockErr
		}
		key := progressKey(next.UserID, next.LessonID)
		if _, ok := staged[key]; !ok {
			staged[key] = *next
			inserted = true
		}
	}
	r.m.progress = staged
	return inserted, nil
}
