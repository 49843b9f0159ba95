package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"veillellm/internal/domain"
	"veillellm/internal/ports"
)

// PostgresStore persists run history to a pipeline_runs table,
// trimmed to the same bound as the file store.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.HistoryStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Append inserts the terminal run record and deletes everything older
// than the retained window.
func (s *PostgresStore) Append(ctx context.Context, run domain.PipelineRun) error {
	if s.db == nil {
		return fmt.Errorf("postgres history store has no database")
	}

	insert := s.builder.
		Insert("pipeline_runs").
		Columns("execution_id", "started_at", "completed_at", "status",
			"error_message", "articles_fetched", "ideas_extracted", "delivery_sent").
		Values(run.ExecutionID, run.StartedAt, run.CompletedAt, string(run.Status),
			run.ErrorMessage, run.ArticlesFetched, run.IdeasExtracted, run.DeliverySent)

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	trim := `DELETE FROM pipeline_runs
             WHERE execution_id NOT IN (
                 SELECT execution_id FROM pipeline_runs
                 ORDER BY started_at DESC LIMIT $1
             )`
	if _, err := s.db.ExecContext(ctx, trim, maxEntries); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return nil
}

// List returns up to limit runs, most recent first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("postgres history store has no database")
	}
	if limit <= 0 || limit > maxEntries {
		limit = maxEntries
	}

	query, args, err := s.builder.
		Select("execution_id", "started_at", "completed_at", "status",
			"error_message", "articles_fetched", "ideas_extracted", "delivery_sent").
		From("pipeline_runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun
	for rows.Next() {
		var run domain.PipelineRun
		var status string
		if err := rows.Scan(&run.ExecutionID, &run.StartedAt, &run.CompletedAt, &status,
			&run.ErrorMessage, &run.ArticlesFetched, &run.IdeasExtracted, &run.DeliverySent); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = domain.RunStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return runs, nil
}

// Last returns the most recent run, or nil when the table is empty.
func (s *PostgresStore) Last(ctx context.Context) (*domain.PipelineRun, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
