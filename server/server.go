// Package server exposes the analysis endpoints over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallnest/pitchgraph/analysis"
	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/store"
	"github.com/smallnest/pitchgraph/store/memory"
)

// Assessor runs the single success assessment.
type Assessor interface {
	Analyze(ctx context.Context, prompt string) (*analysis.Assessment, error)
}

// PanelRunner runs the five-analyst panel.
type PanelRunner interface {
	Run(ctx context.Context, prompt string) (*analysis.PanelReport, error)
	Diagram(format string) (string, error)
}

// Config configures the HTTP server.
type Config struct {
	Addr            string
	Mode            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowOrigins    []string
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

// Server serves the pitchgraph API.
type Server struct {
	cfg      Config
	assessor Assessor
	panel    PanelRunner
	reports  store.ReportStore
	logger   log.Logger
	engine   *gin.Engine
}

// New builds the gin engine and registers every route.
// A nil reports store keeps reports in memory.
func New(cfg Config, assessor Assessor, panel PanelRunner, reports store.ReportStore, logger log.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	if reports == nil {
		reports = memory.NewReportStore()
	}

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(RequestID(), Logger(logger, "/health"), Recovery(logger), CORS(cfg.AllowOrigins))

	s := &Server{
		cfg:      cfg,
		assessor: assessor,
		panel:    panel,
		reports:  reports,
		logger:   logger,
		engine:   engine,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	s.engine.POST("/view", s.view)
	s.engine.POST("/panel", s.runPanel)
	s.engine.GET("/panel/graph", s.panelGraph)

	reports := s.engine.Group("/reports")
	reports.GET("", s.listReports)
	reports.GET("/:id", s.getReport)
	reports.DELETE("/:id", s.deleteReport)

	tpl := s.engine.Group("/templates")
	tpl.GET("", s.listTemplates)
	tpl.GET("/:id", s.getTemplate)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down, waiting up to %s for in-flight requests", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
