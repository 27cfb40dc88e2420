package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/codepath/internal/progress"
	"github.com/abhisek/codepath/internal/store"
)

// APIError carries the HTTP status and machine-readable code for an error.
type APIError struct {
	Status int
	Code   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }

func badRequest(err error) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "bad_request", Err: err}
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

// classify maps an error to its API form. Unexpected errors become a 500
// with a generic message.
func classify(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, store.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Err: err}
	case errors.Is(err, store.ErrConflict):
		return &APIError{Status: http.StatusConflict, Code: "conflict", Err: err}
	case errors.Is(err, progress.ErrInvalidUserID):
		return &APIError{Status: http.StatusBadRequest, Code: "invalid_user", Err: err}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal", Err: errors.New("internal error")}
	}
}

func (s *Server) respondError(c *gin.Context, err error) {
	apiErr := classify(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(apiErr.Status, envelope{
		Error: &errorBody{Message: apiErr.Error(), Code: apiErr.Code},
	})
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}
