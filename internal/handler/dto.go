package handler

import "veillellm/internal/domain"

// HealthResponse answers the root health check.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// TriggerResponse wraps a manually triggered run.
type TriggerResponse struct {
	Message   string             `json:"message"`
	Execution domain.PipelineRun `json:"execution"`
}

// StatusResponse reports the pipeline's current state.
type StatusResponse struct {
	IsRunning        bool                `json:"is_running"`
	LastExecution    *domain.PipelineRun `json:"last_execution"`
	NextScheduledRun string              `json:"next_scheduled_run,omitempty"`
}

// HistoryResponse lists recent runs, most recent first.
type HistoryResponse struct {
	Count      int                  `json:"count"`
	Executions []domain.PipelineRun `json:"executions"`
}

// ErrorResponse carries a request failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
