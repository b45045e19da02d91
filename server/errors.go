package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallnest/pitchgraph/rag"
	"github.com/smallnest/pitchgraph/store"
	"github.com/smallnest/pitchgraph/templates"
)

type errorBody struct {
	Detail string `json:"detail"`
}

// statusFor maps an error to the response status and detail message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, rag.ErrEmptyPrompt):
		return http.StatusBadRequest, "Prompt cannot be empty"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "Analysis timed out"
	case errors.Is(err, store.ErrReportNotFound):
		return http.StatusNotFound, "Report not found"
	case errors.Is(err, templates.ErrTemplateNotFound):
		return http.StatusNotFound, "Template not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request %s failed: %v", RequestIDFrom(c.Request.Context()), err)
	}
	c.AbortWithStatusJSON(status, errorBody{Detail: detail})
}
