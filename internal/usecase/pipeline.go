package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"veillellm/internal/agent"
	"veillellm/internal/domain"
	"veillellm/internal/ports"
)

// ErrPipelineBusy is returned when a run is requested while another is
// still active. No run record is created in that case.
var ErrPipelineBusy = errors.New("pipeline run already in progress")

// PipelineDeps wires all driven adapters into the orchestrator.
type PipelineDeps struct {
	Source   ports.ArticleSource
	Stages   *agent.Runner
	Notifier ports.Notifier
	History  ports.HistoryStore
	Keywords []string
	Limit    int
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline sequences the four stages end to end with single-flight
// execution. It owns the running flag and is the only writer to the
// history store.
type Pipeline struct {
	source   ports.ArticleSource
	stages   *agent.Runner
	notifier ports.Notifier
	history  ports.HistoryStore
	keywords []string
	limit    int
	logger   *slog.Logger
	now      func() time.Time

	running atomic.Bool
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	limit := deps.Limit
	if limit <= 0 {
		limit = 20
	}
	return &Pipeline{
		source:   deps.Source,
		stages:   deps.Stages,
		notifier: deps.Notifier,
		history:  deps.History,
		keywords: deps.Keywords,
		limit:    limit,
		logger:   deps.Logger,
		now:      now,
	}
}

// IsRunning reports whether a run is currently active.
func (p *Pipeline) IsRunning() bool {
	return p.running.Load()
}

// Run executes the full pipeline: fetch articles, then the four stages
// in strict sequence, then delivery. A failed step stops the sequence
// and yields a failed run record; delivery failure alone does not fail
// the run. The terminal record is appended to history on every exit
// path, and the single-flight flag is always cleared.
func (p *Pipeline) Run(ctx context.Context) (domain.PipelineRun, error) {
	if !p.running.CompareAndSwap(false, true) {
		p.warn("pipeline trigger rejected, run already active")
		return domain.PipelineRun{}, ErrPipelineBusy
	}

	run := domain.PipelineRun{
		ExecutionID: uuid.NewString(),
		StartedAt:   p.now(),
		Status:      domain.RunRunning,
	}
	p.info("pipeline started", "execution_id", run.ExecutionID)

	defer func() {
		p.running.Store(false)
		// The caller's context may already be cancelled here; the
		// terminal record must still be persisted.
		if err := p.history.Append(context.Background(), run); err != nil {
			p.warn("failed to persist run history", "execution_id", run.ExecutionID, "error", err)
		}
	}()

	if err := p.execute(ctx, &run); err != nil {
		run.Status = domain.RunFailed
		run.ErrorMessage = err.Error()
		run.CompletedAt = p.now()
		p.warn("pipeline failed", "execution_id", run.ExecutionID, "error", err)
		p.notifyFailure(ctx, run)
		return run, nil
	}

	run.Status = domain.RunCompleted
	run.CompletedAt = p.now()
	p.info("pipeline completed", "execution_id", run.ExecutionID,
		"articles_fetched", run.ArticlesFetched,
		"ideas_extracted", run.IdeasExtracted,
		"delivery_sent", run.DeliverySent)
	return run, nil
}

func (p *Pipeline) execute(ctx context.Context, run *domain.PipelineRun) error {
	p.info("fetching articles", "keywords", len(p.keywords), "limit", p.limit)
	articles, err := p.source.FetchRecent(ctx, p.keywords, p.limit)
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}
	run.ArticlesFetched = len(articles)
	if len(articles) == 0 {
		return fmt.Errorf("no articles fetched")
	}

	p.info("stage started", "stage", agent.StageAnalyze, "articles", len(articles))
	analyzed, err := p.stages.Analyze(ctx, articles)
	if err != nil {
		return err
	}
	p.info("stage completed", "stage", agent.StageAnalyze, "analyzed", len(analyzed.Articles))

	p.info("stage started", "stage", agent.StageExtract)
	ideas, err := p.stages.ExtractIdeas(ctx, analyzed)
	if err != nil {
		return err
	}
	run.IdeasExtracted = len(ideas.Ideas)
	p.info("stage completed", "stage", agent.StageExtract, "ideas", len(ideas.Ideas))

	p.info("stage started", "stage", agent.StageRank)
	ranked, err := p.stages.RankIdeas(ctx, ideas)
	if err != nil {
		return err
	}
	p.info("stage completed", "stage", agent.StageRank, "top_ideas", len(ranked.TopIdeas))

	p.info("stage started", "stage", agent.StageTranslate)
	translated, err := p.stages.Translate(ctx, ranked)
	if err != nil {
		return err
	}
	p.info("stage completed", "stage", agent.StageTranslate, "explained", len(translated.Explained))

	message := formatMessage(translated, p.now())
	run.DeliverySent = p.notifier.Send(ctx, message)
	if !run.DeliverySent {
		p.warn("delivery failed", "execution_id", run.ExecutionID)
	}

	return nil
}

// notifyFailure pushes a best-effort failure notice. Its own outcome
// is discarded and never changes the already-decided run status.
func (p *Pipeline) notifyFailure(ctx context.Context, run domain.PipelineRun) {
	if p.notifier == nil {
		return
	}
	notice := formatFailureNotice(run)
	_ = p.notifier.Send(ctx, notice)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
