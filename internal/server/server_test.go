package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codepath/internal/curriculum"
	"github.com/abhisek/codepath/internal/progress"
	"github.com/abhisek/codepath/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	srv *Server
	st  *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c, err := curriculum.Default()
	require.NoError(t, err)
	require.NoError(t, st.Curriculum().Import(context.Background(), c))

	svc := progress.NewService(progress.Repos{
		Lessons:   st.Lessons(),
		Questions: st.Questions(),
		Users:     st.Users(),
		Progress:  st.Progress(),
	}, progress.Options{})
	return &testEnv{srv: New(svc, Options{Ping: st.Ping}), st: st}
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	var res response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return rec, res
}

// newUser issues an anonymous user and returns its id.
func (e *testEnv) newUser(t *testing.T) string {
	t.Helper()
	rec, _ := e.do(t, http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(UserHeader)
	require.NotEmpty(t, id)
	return id
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	rec, res := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, res.Success)
	assert.Empty(t, rec.Header().Get(UserHeader))

	n, err := e.st.Users().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEnsureUser(t *testing.T) {
	e := newTestEnv(t)

	id := e.newUser(t)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	rec, res := e.do(t, http.MethodGet, "/api/me", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Header().Get(UserHeader))
	var me progress.Profile
	require.NoError(t, json.Unmarshal(res.Data, &me))
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "JUNIOR_ARCHITECT", string(me.Status))

	rec, res = e.do(t, http.MethodGet, "/api/me", "not a uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "invalid_user", res.Error.Code)
}

func TestCurriculumRoutes(t *testing.T) {
	e := newTestEnv(t)
	id := e.newUser(t)

	rec, res := e.do(t, http.MethodGet, "/api/curriculum", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lessons []progress.LessonSummary
	require.NoError(t, json.Unmarshal(res.Data, &lessons))
	require.NotEmpty(t, lessons)
	assert.Equal(t, "UNLOCKED", string(lessons[0].Status))
	assert.Equal(t, "LOCKED", string(lessons[1].Status))

	rec, res = e.do(t, http.MethodGet, "/api/curriculum/hello-world", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(res.Data), "solution")
	var detail progress.LessonDetail
	require.NoError(t, json.Unmarshal(res.Data, &detail))
	assert.Equal(t, "hello-world", detail.Lesson.Slug)
	assert.Len(t, detail.Questions, 3)

	rec, res = e.do(t, http.MethodGet, "/api/curriculum/nope", id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "not_found", res.Error.Code)
}

func TestValidateAnswer(t *testing.T) {
	e := newTestEnv(t)
	id := e.newUser(t)
	qid := curriculum.QuestionID("hello-world", 0)

	rec, res := e.do(t, http.MethodPost, "/api/progress/validate", id, map[string]any{"questionId": qid, "answer": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result progress.AnswerResult
	require.NoError(t, json.Unmarshal(res.Data, &result))
	assert.True(t, result.IsCorrect)
	assert.True(t, result.IsFirstAttempt)
	assert.Equal(t, 15, result.XPEarned)
	assert.Equal(t, 1, result.Streak)
	require.NotNil(t, result.Multipliers)
	assert.Equal(t, "1.50", result.Multipliers.FirstTime)

	rec, res = e.do(t, http.MethodPost, "/api/progress/validate", id, map[string]any{"questionId": qid, "answer": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	result = progress.AnswerResult{}
	require.NoError(t, json.Unmarshal(res.Data, &result))
	assert.False(t, result.IsCorrect)
	assert.Zero(t, result.XPEarned)
	assert.Nil(t, result.Multipliers)

	parsons := curriculum.QuestionID("hello-world", 2)
	rec, res = e.do(t, http.MethodPost, "/api/progress/validate", id, map[string]any{"questionId": parsons, "answer": []int{0, 1, 2}})
	require.Equal(t, http.StatusOK, rec.Code)
	result = progress.AnswerResult{}
	require.NoError(t, json.Unmarshal(res.Data, &result))
	assert.True(t, result.IsCorrect)

	rec, res = e.do(t, http.MethodGet, "/api/me", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me progress.Profile
	require.NoError(t, json.Unmarshal(res.Data, &me))
	assert.Equal(t, 15+39, me.XP) // 25 × 1.05 × 1.0 × 1.5 = 39.375
	assert.Equal(t, 2, me.Answered)
}

func TestValidateAnswer_BadRequests(t *testing.T) {
	e := newTestEnv(t)
	id := e.newUser(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed json", `{"questionId":`, http.StatusBadRequest},
		{"missing question", map[string]any{"answer": 1}, http.StatusBadRequest},
		{"unknown question", map[string]any{"questionId": "x", "answer": 1}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, res := e.do(t, http.MethodPost, "/api/progress/validate", id, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.False(t, res.Success)
			assert.NotNil(t, res.Error)
		})
	}
}

func TestValidateAnswer_MisshapedAnswersAreIncorrect(t *testing.T) {
	e := newTestEnv(t)
	id := e.newUser(t)
	qid := curriculum.QuestionID("hello-world", 0)

	bodies := map[string]string{
		"null":          fmt.Sprintf(`{"questionId":%q,"answer":null}`, qid),
		"missing":       fmt.Sprintf(`{"questionId":%q}`, qid),
		"object":        fmt.Sprintf(`{"questionId":%q,"answer":{}}`, qid),
		"nested object": fmt.Sprintf(`{"questionId":%q,"answer":[{"a":1}]}`, qid),
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec, res := e.do(t, http.MethodPost, "/api/progress/validate", id, body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var result progress.AnswerResult
			require.NoError(t, json.Unmarshal(res.Data, &result))
			assert.False(t, result.IsCorrect)
			assert.Zero(t, result.XPEarned)
			assert.NotEmpty(t, result.Concepts, "concepts are rescheduled as a lapse")
		})
	}

	rec, res := e.do(t, http.MethodGet, "/api/me", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me progress.Profile
	require.NoError(t, json.Unmarshal(res.Data, &me))
	assert.Zero(t, me.XP)
	assert.Zero(t, me.Answered)
}

func TestCompleteLesson(t *testing.T) {
	e := newTestEnv(t)
	id := e.newUser(t)
	lessonID := curriculum.LessonID("hello-world")

	for i := 0; i < 2; i++ {
		rec, _ := e.do(t, http.MethodPost, "/api/progress/complete-lesson", id, map[string]any{"lessonId": lessonID, "score": 90})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	_, res := e.do(t, http.MethodGet, "/api/curriculum", id, nil)
	var lessons []progress.LessonSummary
	require.NoError(t, json.Unmarshal(res.Data, &lessons))
	assert.Equal(t, "COMPLETED", string(lessons[0].Status))
	assert.Equal(t, 90, lessons[0].BestScore)
	assert.Equal(t, "UNLOCKED", string(lessons[1].Status))
	assert.Equal(t, "LOCKED", string(lessons[2].Status))

	records, err := e.st.Progress().ListByUser(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	rec, _ := e.do(t, http.MethodPost, "/api/progress/complete-lesson", id, map[string]any{"lessonId": lessonID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = e.do(t, http.MethodPost, "/api/progress/complete-lesson", id, map[string]any{"lessonId": lessonID, "score": 101})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = e.do(t, http.MethodPost, "/api/progress/complete-lesson", id, map[string]any{"lessonId": "missing", "score": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboardAndReview(t *testing.T) {
	e := newTestEnv(t)
	id := e.newUser(t)
	other := e.newUser(t)

	qid := curriculum.QuestionID("hello-world", 0)
	rec, _ := e.do(t, http.MethodPost, "/api/progress/validate", id, map[string]any{"questionId": qid, "answer": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, res := e.do(t, http.MethodGet, "/api/leaderboard", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Users []struct {
			ID            string `json:"id"`
			IsCurrentUser bool   `json:"isCurrentUser"`
		} `json:"users"`
		UserStats struct {
			Rank       int    `json:"rank"`
			Percentile string `json:"percentile"`
			TotalUsers int    `json:"totalUsers"`
		} `json:"userStats"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &board))
	require.Len(t, board.Users, 2)
	assert.Equal(t, id, board.Users[0].ID)
	assert.True(t, board.Users[1].IsCurrentUser)
	assert.Equal(t, 2, board.UserStats.Rank)
	assert.Equal(t, 2, board.UserStats.TotalUsers)
	assert.Equal(t, "Bottom 0%", board.UserStats.Percentile)

	rec, res = e.do(t, http.MethodGet, "/api/review", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var due []progress.DueConcept
	require.NoError(t, json.Unmarshal(res.Data, &due))
	assert.Empty(t, due)
}

func TestCORS(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", UserHeader)
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("load: %w", store.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("save: %w", store.ErrConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("x: %w", progress.ErrInvalidUserID), http.StatusBadRequest, "invalid_user"},
		{badRequest(errors.New("nope")), http.StatusBadRequest, "bad_request"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		got := classify(tt.err)
		if got.Status != tt.status || got.Code != tt.code {
			t.Errorf("classify(%v) = %d %s, want %d %s", tt.err, got.Status, got.Code, tt.status, tt.code)
		}
	}
	assert.Equal(t, "internal error", classify(errors.New("secret detail")).Error())
}

func TestRunShutdown(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
