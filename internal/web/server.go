// Package web serves a read-only JSON API over dry-run results.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routemend/internal/model"
	"routemend/internal/rewrite"
	"routemend/internal/runner"
)

// Planner runs a stage over files. The server only ever asks for dry-runs.
type Planner interface {
	Run(ctx context.Context, opts runner.Options) (runner.Report, error)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RuleInfo describes one rule.
type RuleInfo struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Template    string `json:"template"`
	Replacement string `json:"replacement"`
}

// RulesResponse is returned by GET /api/rules.
type RulesResponse struct {
	Version string     `json:"version"`
	Imports string     `json:"imports"`
	Rules   []RuleInfo `json:"rules"`
}

// DiffResponse is returned by GET /api/diff.
type DiffResponse struct {
	Path   string          `json:"path"`
	Result model.RunResult `json:"result"`
	Diff   string          `json:"diff"`
}

// Server holds the API dependencies.
type Server struct {
	planner Planner
	root    string
	jobs    int
	imports rewrite.ImportRewriter
	rules   []rewrite.Rule
	log     *zap.Logger
}

// NewServer creates a Server planning over root with the given engine's rules.
func NewServer(planner Planner, engine *rewrite.Engine, root string, jobs int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		planner: planner,
		root:    root,
		jobs:    jobs,
		imports: engine.Imports(),
		rules:   engine.Rules(),
		log:     log,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	api := r.Group("/api")
	api.GET("/plan", s.handlePlan)
	api.GET("/diff", s.handleDiff)
	api.GET("/rules", s.handleRules)
	api.GET("/line-context", s.handleLineContext)
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", zap.String("addr", addr), zap.String("root", s.root))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func (s *Server) plan(c *gin.Context, diff bool) (runner.Report, bool) {
	rep, err := s.planner.Run(c.Request.Context(), runner.Options{
		Root: s.root,
		Mode: model.ModeDryRun,
		Jobs: s.jobs,
		Diff: diff,
	})
	if err != nil {
		s.log.Warn("plan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "PLAN_FAILED"})
		return rep, false
	}
	return rep, true
}

// handlePlan handles GET /api/plan.
func (s *Server) handlePlan(c *gin.Context) {
	rep, ok := s.plan(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

// handleDiff handles GET /api/diff?path=. Only discovered files are served.
func (s *Server) handleDiff(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "path is required", Code: "INVALID_REQUEST"})
		return
	}
	rep, ok := s.plan(c, true)
	if !ok {
		return
	}
	res, found := rep.Result(path)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not a discovered route file: " + path, Code: "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, DiffResponse{Path: path, Result: res, Diff: res.Diff})
}

// handleRules handles GET /api/rules.
func (s *Server) handleRules(c *gin.Context) {
	resp := RulesResponse{Version: rewrite.RulesVersion, Imports: s.imports.Describe()}
	for _, r := range s.rules {
		resp.Rules = append(resp.Rules, RuleInfo{
			ID:          r.ID,
			Category:    string(r.Category),
			Template:    r.Template,
			Replacement: r.Replacement,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// handleLineContext handles GET /api/line-context?path=&line=, used to show
// where a verification failure points.
func (s *Server) handleLineContext(c *gin.Context) {
	path := c.Query("path")
	line, err := strconv.Atoi(c.Query("line"))
	if path == "" || err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "path and a numeric line are required", Code: "INVALID_REQUEST"})
		return
	}
	rep, ok := s.plan(c, false)
	if !ok {
		return
	}
	if _, found := rep.Result(path); !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not a discovered route file: " + path, Code: "NOT_FOUND"})
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, model.GetLineContext(string(content), line))
}
