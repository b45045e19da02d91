package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallnest/pitchgraph/analysis"
	"github.com/smallnest/pitchgraph/rag"
	"github.com/smallnest/pitchgraph/render"
	"github.com/smallnest/pitchgraph/store"
	"github.com/smallnest/pitchgraph/templates"
)

// PromptRequest is the body of /view and /panel.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// ViewResponse is the body returned by /view.
type ViewResponse struct {
	Analysis     string       `json:"analysis"`
	AnalysisHTML string       `json:"analysis_html,omitempty"`
	ID           string       `json:"id,omitempty"`
	Probability  *int         `json:"success_probability,omitempty"`
	Coverage     rag.Coverage `json:"coverage"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) bindPrompt(c *gin.Context) (string, bool) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Detail: "Request body must be JSON with a prompt field"})
		return "", false
	}
	return req.Prompt, true
}

func (s *Server) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
}

func (s *Server) view(c *gin.Context) {
	prompt, ok := s.bindPrompt(c)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(c)
	defer cancel()

	res, err := s.assessor.Analyze(ctx, prompt)
	if err != nil {
		s.fail(c, err)
		return
	}

	report := store.NewReport(store.KindView, prompt)
	report.Analysis = res.Text
	report.Probability = res.Probability
	report.Coverage = res.Coverage
	report.Chunks = res.Chunks
	report.ElapsedMS = res.Elapsed.Milliseconds()

	resp := ViewResponse{
		Analysis:    res.Text,
		ID:          s.save(ctx, report),
		Probability: res.Probability,
		Coverage:    res.Coverage,
	}
	if c.Query("format") == "html" {
		resp.AnalysisHTML = render.Markdown(res.Text)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) runPanel(c *gin.Context) {
	prompt, ok := s.bindPrompt(c)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(c)
	defer cancel()

	res, err := s.panel.Run(ctx, prompt)
	if err != nil {
		s.fail(c, err)
		return
	}

	report := store.NewReport(store.KindPanel, prompt)
	report.Sections = res.Sections
	report.Coverage = res.Coverage
	report.Chunks = res.Chunks
	report.ElapsedMS = res.Elapsed.Milliseconds()

	body := gin.H{"coverage": res.Coverage}
	if id := s.save(ctx, report); id != "" {
		body["id"] = id
	}
	for _, role := range analysis.Roles {
		body[role.Key] = res.Sections[role.Key]
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) panelGraph(c *gin.Context) {
	out, err := s.panel.Diagram(c.Query("format"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Detail: err.Error()})
		return
	}
	c.String(http.StatusOK, out)
}

// save stores report and returns its id, or "" when it could not be saved.
// A failed save does not fail the analysis that produced it.
func (s *Server) save(ctx context.Context, report *store.Report) string {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.reports.Save(saveCtx, report); err != nil {
		s.logger.Warn("failed to save report %s: %v", report.ID, err)
		return ""
	}
	return report.ID
}

func (s *Server) listReports(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Detail: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	reports, err := s.reports.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) getReport(c *gin.Context) {
	report, err := s.reports.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) deleteReport(c *gin.Context) {
	if err := s.reports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listTemplates(c *gin.Context) {
	ts, err := templates.All()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": ts})
}

func (s *Server) getTemplate(c *gin.Context) {
	t, err := templates.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
