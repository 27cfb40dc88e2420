package server

import (
	"github.com/gin-gonic/gin"

	"github.com/abhisek/codepath/internal/answer"
)

type validateRequest struct {
	QuestionID string       `json:"questionId" binding:"required"`
	Answer     answer.Value `json:"answer"`
}

type completeRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
	Score    *int   `json:"score" binding:"required,min=0,max=100"`
}

func (s *Server) health(c *gin.Context) {
	if s.ping != nil {
		if err := s.ping(c.Request.Context()); err != nil {
			s.respondError(c, err)
			return
		}
	}
	respondOK(c, gin.H{"status": "ok"})
}

func (s *Server) curriculum(c *gin.Context) {
	view, err := s.svc.Curriculum(c.Request.Context(), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, view)
}

func (s *Server) lesson(c *gin.Context) {
	d, err := s.svc.Lesson(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, d)
}

func (s *Server) validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	res, err := s.svc.SubmitAnswer(c.Request.Context(), userID(c), req.QuestionID, req.Answer)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, res)
}

func (s *Server) completeLesson(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	p, err := s.svc.CompleteLesson(c.Request.Context(), userID(c), req.LessonID, *req.Score)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"message":  "Lesson marked as complete and next lesson unlocked.",
		"progress": p,
	})
}

func (s *Server) review(c *gin.Context) {
	due, err := s.svc.DueConcepts(c.Request.Context(), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, due)
}

func (s *Server) leaderboard(c *gin.Context) {
	board, err := s.svc.Leaderboard(c.Request.Context(), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, board)
}

func (s *Server) me(c *gin.Context) {
	p, err := s.svc.Me(c.Request.Context(), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, p)
}
