package ports

import (
	"context"
	"time"

	"veillellm/internal/domain"
)

// ArticleSource pulls fresh articles from upstream news providers.
type ArticleSource interface {
	FetchRecent(ctx context.Context, keywords []string, limit int) ([]domain.RawArticle, error)
}

// GenerateRequest carries everything a model backend needs for one
// text-generation call.
type GenerateRequest struct {
	Prompt          string
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// TextGenerator executes a single generation request against a model
// backend and returns the raw response text.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Notifier delivers a formatted message through the outbound channel.
// It reports success as a boolean so the orchestrator can record a
// delivery failure without failing the whole run.
type Notifier interface {
	Send(ctx context.Context, message string) bool
}

// HistoryStore keeps the bounded pipeline-run history. Append trims to
// the most recent entries; List returns newest first.
type HistoryStore interface {
	Append(ctx context.Context, run domain.PipelineRun) error
	List(ctx context.Context, limit int) ([]domain.PipelineRun, error)
	Last(ctx context.Context) (*domain.PipelineRun, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
	NextRun() time.Time
}
