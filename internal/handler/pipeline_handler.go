package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"veillellm/internal/domain"
	"veillellm/internal/usecase"
)

const (
	serviceName     = "Veille LLM Agent System"
	defaultHistory  = 10
	maxHistoryLimit = 50
)

// PipelineRunner is the slice of the orchestrator the handlers need.
type PipelineRunner interface {
	Run(ctx context.Context) (domain.PipelineRun, error)
	IsRunning() bool
}

// RunHistory reads persisted run records.
type RunHistory interface {
	List(ctx context.Context, limit int) ([]domain.PipelineRun, error)
	Last(ctx context.Context) (*domain.PipelineRun, error)
}

// ScheduleReader exposes the next planned trigger.
type ScheduleReader interface {
	NextRun() time.Time
}

// PipelineHandler exposes the control surface over the orchestrator.
type PipelineHandler struct {
	pipeline PipelineRunner
	history  RunHistory
	schedule ScheduleReader
	logger   *slog.Logger
}

// NewPipelineHandler wires the handler dependencies.
func NewPipelineHandler(pipeline PipelineRunner, history RunHistory, schedule ScheduleReader, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{pipeline: pipeline, history: history, schedule: schedule, logger: logger}
}

// Register attaches all routes to the engine.
func (h *PipelineHandler) Register(r *gin.Engine) {
	r.GET("/", h.GetHealth)
	r.POST("/trigger", h.Trigger)
	r.GET("/status", h.GetStatus)
	r.GET("/history", h.GetHistory)
}

// GetHealth answers the health check.
func (h *PipelineHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Trigger runs the pipeline synchronously. A busy pipeline yields 409;
// a failed run yields 500 with the terminal record.
func (h *PipelineHandler) Trigger(c *gin.Context) {
	run, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrPipelineBusy) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		h.error("trigger failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	if run.Status == domain.RunFailed {
		c.JSON(http.StatusInternalServerError, TriggerResponse{
			Message:   "Pipeline execution failed",
			Execution: run,
		})
		return
	}

	c.JSON(http.StatusOK, TriggerResponse{
		Message:   "Pipeline executed successfully",
		Execution: run,
	})
}

// GetStatus reports whether a run is active, the last terminal run and
// the next scheduled trigger.
func (h *PipelineHandler) GetStatus(c *gin.Context) {
	last, err := h.history.Last(c.Request.Context())
	if err != nil {
		h.error("load last execution", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}

	resp := StatusResponse{
		IsRunning:     h.pipeline.IsRunning(),
		LastExecution: last,
	}
	if h.schedule != nil {
		if next := h.schedule.NextRun(); !next.IsZero() {
			resp.NextScheduledRun = next.Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetHistory lists recent runs; limit must be in 1..50.
func (h *PipelineHandler) GetHistory(c *gin.Context) {
	limit := defaultHistory
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be between 1 and 50",
			})
			return
		}
		limit = parsed
	}

	runs, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		h.error("load history", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}
	if runs == nil {
		runs = []domain.PipelineRun{}
	}

	c.JSON(http.StatusOK, HistoryResponse{Count: len(runs), Executions: runs})
}

func (h *PipelineHandler) error(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Error(msg, args...)
	}
}
