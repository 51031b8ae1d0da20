package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roomai/agora/internal/debate"
	"github.com/roomai/agora/internal/llm"
)

type debateRequest struct {
	Prompt         string        `json:"prompt"`
	SelectedModels []string      `json:"selectedModels"`
	History        []llm.Message `json:"history"`
	Preset         string        `json:"preset"`
}

func (s *Server) handleDebate(c echo.Context) error {
	var req debateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.engine.Run(c.Request().Context(), debate.Request{
		Prompt:  req.Prompt,
		Models:  req.SelectedModels,
		History: req.History,
		Preset:  req.Preset,
	})
	if err != nil {
		if errors.Is(err, debate.ErrEmptyPrompt) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Prompt is required",
				"example": map[string]string{"prompt": "Explain quantum computing"},
			})
		}
		if errors.Is(err, debate.ErrNoModels) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "healthy",
		"uptime":    time.Since(s.started).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleModels(c echo.Context) error {
	var models []llm.ModelInfo
	if s.provider != nil {
		models = s.provider.Models()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"provider": s.cfg.LLM.Provider,
		"models":   models,
	})
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"project":     "agora",
		"description": "Multi-LLM Debate & Collaboration Engine",
		"status":      "online",
		"version":     version,
		"endpoints": map[string]string{
			"debate": "POST /api/debate",
			"health": "GET /health",
			"models": "GET /models",
		},
	})
}
