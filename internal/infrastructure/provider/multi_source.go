package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veillellm/internal/config"
	"veillellm/internal/domain"
	"veillellm/internal/ports"
	"veillellm/internal/source"
)

// MultiSource implements ports.ArticleSource over the provider
// registry: each configured source is resolved to its strategy and the
// results are aggregated, deduplicated by URL, and trimmed to the
// requested limit.
type MultiSource struct {
	registry *source.Registry
	sources  []config.SourceConfig
	days     int
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.ArticleSource = (*MultiSource)(nil)

// NewMultiSource wires the registry with config-defined sources.
// days bounds the recency window.
func NewMultiSource(reg *source.Registry, sources []config.SourceConfig, days int, logger *slog.Logger) *MultiSource {
	if days <= 0 {
		days = 7
	}
	return &MultiSource{
		registry: reg,
		sources:  sources,
		days:     days,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchRecent iterates over configured sources and executes their providers.
func (m *MultiSource) FetchRecent(ctx context.Context, keywords []string, limit int) ([]domain.RawArticle, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("provider registry is not configured")
	}

	until := m.now()
	since := until.AddDate(0, 0, -m.days)
	m.debug("fetch recent", "sources", len(m.sources), "since", since.Format("2006-01-02"), "limit", limit)

	seen := map[string]struct{}{}
	var aggregated []domain.RawArticle
	for _, src := range m.sources {
		strategy, err := m.registry.Resolve(src.Provider)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		req := source.Request{
			Keywords: keywords,
			Limit:    limit,
			Since:    since,
			Until:    until,
			Feeds:    src.Feeds,
			Options:  src.Options,
		}

		results, err := strategy.Fetch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("fetch source %s: %w", src.Name, err)
		}

		for _, article := range results {
			if _, ok := seen[article.URL]; ok {
				continue
			}
			seen[article.URL] = struct{}{}
			if article.Source == "" {
				article.Source = src.Name
			}
			aggregated = append(aggregated, article)
		}
		m.debug("source produced articles", "source", src.Name, "count", len(results))
	}

	if len(aggregated) > limit {
		aggregated = aggregated[:limit]
	}
	m.debug("multi source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (m *MultiSource) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
