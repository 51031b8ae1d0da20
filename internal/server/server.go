// Package server exposes the debate engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/roomai/agora/config"
	"github.com/roomai/agora/internal/cache"
	"github.com/roomai/agora/internal/debate"
	"github.com/roomai/agora/internal/llm"
	"github.com/roomai/agora/internal/sandbox"
	"github.com/roomai/agora/internal/search"
	"github.com/roomai/agora/internal/telemetry"
)

const version = "2.0.0"

// DebateRunner is the engine surface the HTTP layer depends on.
type DebateRunner interface {
	Run(ctx context.Context, req debate.Request) (*debate.Result, error)
}

// Server holds the handler dependencies.
type Server struct {
	cfg      *config.Config
	logger   *log.Logger
	engine   DebateRunner
	provider llm.Provider
	tele     *telemetry.Telemetry
	started  time.Time
}

// New wires a server from explicitly constructed dependencies.
func New(cfg *config.Config, logger *log.Logger, engine DebateRunner, provider llm.Provider, tele *telemetry.Telemetry) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		provider: provider,
		tele:     tele,
		started:  time.Now(),
	}
}

// Echo builds the routed echo instance. Exposed so tests can drive handlers
// through httptest without binding a port.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"success": false, "error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)
	e.GET("/models", s.handleModels)
	if s.tele != nil {
		e.GET("/metrics", echo.WrapHandler(s.tele.Handler()))
	}

	api := e.Group("/api")
	api.POST("/debate", s.handleDebate)

	return e
}

// Run builds every dependency from config and serves until the listener
// stops. This is the composition root: the engine, cache, and providers are
// constructed here and passed down, never pulled from globals.
func Run(cfg *config.Config) error {
	logger := log.New(log.Writer(), "[AGORA] ", log.LstdFlags)
	tele := telemetry.NewTelemetry(cfg.Telemetry)

	provider, err := llm.New(cfg.LLM, cfg.General.RunMode)
	if err != nil {
		return err
	}

	// MOCK mode stays fully offline: no search, no sandbox.
	var searcher debate.Searcher
	var runner debate.CodeRunner
	if cfg.General.RunMode == config.RunModeLive {
		if s := search.New(cfg.Search); s != nil {
			searcher = s
		} else {
			logger.Printf("no search API key configured, grounding disabled")
		}
		runner = sandbox.NewRunner(cfg.Sandbox)
	}

	ctx := context.Background()
	store := cache.New(ctx, cfg.Cache, logger)

	engineLogger := log.New(log.Writer(), "[DEBATE] ", log.LstdFlags)
	engine := debate.NewEngine(cfg, engineLogger, tele, provider, searcher, runner, store)

	srv := New(cfg, logger, engine, provider, tele)
	e := srv.Echo()

	logger.Printf("agora %s listening on %s (mode=%s)", version, cfg.Server.Address, cfg.General.RunMode)
	return e.Start(cfg.Server.Address)
}
