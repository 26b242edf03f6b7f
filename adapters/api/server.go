// Package api exposes the fitting, characteristic, and test-interval
// operations over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"golact/adapters/characteristics"
	"golact/adapters/fitting"
	"golact/adapters/icar"
	"golact/adapters/milkbot"
	"golact/domain/core"
	"golact/internal"
	"golact/ports"
)

// Server wires the engines behind a gin router.
type Server struct {
	router *gin.Engine
	fits   *fitting.Engine
	chars  *characteristics.Engine
	tim    *icar.Calculator
	mb     *milkbot.Client
	repo   ports.YieldRepository
	apiKey string
	log    *internal.Logger
}

// Deps carries the server dependencies. Repo and MilkBot are optional;
// the routes that need them answer with an error when absent.
type Deps struct {
	Fits    *fitting.Engine
	Chars   *characteristics.Engine
	TIM     *icar.Calculator
	MilkBot *milkbot.Client
	Repo    ports.YieldRepository
	APIKey  string
	Log     *internal.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = internal.DefaultLogger
	}
	s := &Server{
		router: gin.Default(),
		fits:   deps.Fits,
		chars:  deps.Chars,
		tim:    deps.TIM,
		mb:     deps.MilkBot,
		repo:   deps.Repo,
		apiKey: deps.APIKey,
		log:    deps.Log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/models", s.handleModels)
	s.router.POST("/fit", s.handleFit)
	s.router.POST("/characteristics", s.handleCharacteristics)
	s.router.POST("/test-interval", s.handleTestInterval)
	s.router.POST("/milkbot/evaluate", s.handleEvaluateMilkBot)
	s.router.GET("/milkbot/version", s.handleMilkBotVersion)
	s.router.GET("/yields", s.handleListYields)
}

// Router exposes the underlying router for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the server on the given address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// writeError maps domain error classes to HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsValidationError(err) || core.IsSupportError(err):
		status = http.StatusBadRequest
	case core.IsRemoteError(err):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
