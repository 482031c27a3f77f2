// Package ui exposes the simulation engine over HTTP as a JSON API, with
// rendered reports for humans.
package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carepath/adapters/report"
	"carepath/adapters/scenario"
	"carepath/app"
	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/errors"
	"carepath/internal/logging"
)

// Server represents the care path analysis web server
type Server struct {
	router      *gin.Engine
	comparisons *app.ComparisonService
	sweeps      *app.SweepService
	scenarios   *scenario.File
	html        *report.HTMLRenderer
	markdown    *report.MarkdownRenderer
	log         *logging.Logger

	defaultSeed int64
	defaultN    int
}

// NewServer creates a new web server instance. scenarios may be nil, in
// which case only the built-in bundles resolve.
func NewServer(comparisons *app.ComparisonService, sweeps *app.SweepService, scenarios *scenario.File, defaultSeed int64, defaultN int) *Server {
	s := &Server{
		router:      gin.New(),
		comparisons: comparisons,
		sweeps:      sweeps,
		scenarios:   scenarios,
		html:        report.NewHTMLRenderer(),
		markdown:    report.NewMarkdownRenderer(),
		log:         logging.DefaultLogger,
		defaultSeed: defaultSeed,
		defaultN:    defaultN,
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/scenarios", s.handleListScenarios)
		api.POST("/runs", s.handleCreateRun)
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
		api.GET("/runs/:id/report", s.handleRunReport)
		api.POST("/sweeps", s.handleCreateSweep)
		api.GET("/sweeps/:id", s.handleGetSweep)
	}
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListScenarios(c *gin.Context) {
	names := make([]string, 0)
	if s.scenarios != nil {
		for _, cfg := range s.scenarios.Scenarios {
			names = append(names, cfg.Name.String())
		}
	}
	for _, n := range carepath.BuiltinScenarioNames() {
		names = append(names, n.String())
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": names})
}

// runRequest is the POST /api/runs payload. Scenario names resolve against
// the loaded scenario file, then the built-ins.
type runRequest struct {
	Before string  `json:"before" binding:"required"`
	After  string  `json:"after" binding:"required"`
	N      int     `json:"n"`
	Seed   *int64  `json:"seed"`
	Alpha  float64 `json:"alpha"`
}

func (s *Server) handleCreateRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, errors.InvalidInput(err.Error()))
		return
	}

	before, err := scenario.Resolve(s.scenarios, core.ScenarioName(req.Before))
	if err != nil {
		s.renderError(c, err)
		return
	}
	after, err := scenario.Resolve(s.scenarios, core.ScenarioName(req.After))
	if err != nil {
		s.renderError(c, err)
		return
	}

	n := req.N
	if n == 0 {
		n = s.defaultN
	}
	seed := s.defaultSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	record, err := s.comparisons.Run(c.Request.Context(), app.ComparisonRequest{
		Before: before,
		After:  after,
		N:      n,
		Seed:   seed,
		Alpha:  req.Alpha,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 50
	records, err := s.comparisons.List(c.Request.Context(), limit)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": records})
}

func (s *Server) handleGetRun(c *gin.Context) {
	record, err := s.comparisons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleRunReport(c *gin.Context) {
	record, err := s.comparisons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	if c.Query("format") == "markdown" {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		if err := s.markdown.RenderComparison(c.Writer, record); err != nil {
			s.renderError(c, err)
		}
		return
	}

	page, err := s.html.ComparisonHTML(record)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// sweepRequest is the POST /api/sweeps payload.
type sweepRequest struct {
	Kind           string    `json:"kind" binding:"required"`
	Before         string    `json:"before"`
	After          string    `json:"after" binding:"required"`
	Factors        []float64 `json:"factors"`
	Sizes          []int     `json:"sizes"`
	Seeds          []int64   `json:"seeds"`
	Baselines      []string  `json:"baselines"`
	ErrorRates     []float64 `json:"error_rates"`
	OversightRates []float64 `json:"oversight_rates"`
	N              int       `json:"n"`
	Seed           *int64    `json:"seed"`
}

func (s *Server) handleCreateSweep(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, errors.InvalidInput(err.Error()))
		return
	}

	after, err := scenario.Resolve(s.scenarios, core.ScenarioName(req.After))
	if err != nil {
		s.renderError(c, err)
		return
	}

	var before *carepath.ScenarioConfig
	if req.Before != "" {
		before, err = scenario.Resolve(s.scenarios, core.ScenarioName(req.Before))
		if err != nil {
			s.renderError(c, err)
			return
		}
	}

	baselines := make([]*carepath.ScenarioConfig, 0, len(req.Baselines))
	for _, name := range req.Baselines {
		cfg, err := scenario.Resolve(s.scenarios, core.ScenarioName(name))
		if err != nil {
			s.renderError(c, err)
			return
		}
		baselines = append(baselines, cfg)
	}

	n := req.N
	if n == 0 {
		n = s.defaultN
	}
	seed := s.defaultSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	summary, err := s.sweeps.Run(c.Request.Context(), app.SweepRequest{
		Kind:           compare.SweepKind(req.Kind),
		Before:         before,
		After:          after,
		Factors:        req.Factors,
		Sizes:          req.Sizes,
		Seeds:          req.Seeds,
		Baselines:      baselines,
		ErrorRates:     req.ErrorRates,
		OversightRates: req.OversightRates,
		N:              n,
		Seed:           seed,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (s *Server) handleGetSweep(c *gin.Context) {
	summary, err := s.sweeps.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// renderError maps application error codes to HTTP statuses.
func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.HasCode(err, errors.CodeNotFound):
		status = http.StatusNotFound
	case errors.HasCode(err, errors.CodeInvalidInput),
		errors.HasCode(err, errors.CodeConfigInvalid),
		errors.HasCode(err, errors.CodeStatPrecondition):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
