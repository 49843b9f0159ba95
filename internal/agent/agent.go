// Package agent holds the four pipeline stages. Each stage composes a
// prompt from the previous stage's validated output, invokes the model
// once (transport retries live inside the invoker), repairs and
// validates the JSON response, and returns the next typed record.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"veillellm/internal/llm"
	"veillellm/internal/schema"
)

// Failure tags carried by StageError.
const (
	TagModel         = "model"
	TagInvalidJSON   = "invalid_json"
	TagInvalidSchema = "invalid_schema"
)

// StageError wraps a stage failure with the stage identity and the
// class of failure. JSON and schema failures are terminal for the run;
// they are never repaired by re-invoking the model.
type StageError struct {
	Stage string
	Tag   string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed (%s): %v", e.Stage, e.Tag, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Runner executes stages against a shared model invoker.
type Runner struct {
	invoker *llm.Invoker
	logger  *slog.Logger
}

// NewRunner wires the invoker used by every stage.
func NewRunner(invoker *llm.Invoker, logger *slog.Logger) *Runner {
	return &Runner{invoker: invoker, logger: logger}
}

// runStage drives the shared stage lifecycle: invoke, parse with a
// single repair pass, then schema-validate into the target record.
func runStage[T any](ctx context.Context, r *Runner, stage, prompt string, temperature float64, decodeFn func([]byte) (T, error)) (T, error) {
	var zero T

	text, err := r.invoker.Invoke(ctx, prompt, true, temperature)
	if err != nil {
		return zero, &StageError{Stage: stage, Tag: TagModel, Err: err}
	}

	raw := []byte(text)
	if !json.Valid(raw) {
		repaired := llm.ExtractJSON(text)
		raw = []byte(repaired)
		if !json.Valid(raw) {
			return zero, &StageError{Stage: stage, Tag: TagInvalidJSON,
				Err: fmt.Errorf("response is not valid JSON after repair")}
		}
		if r.logger != nil {
			r.logger.Debug("repaired model response", "stage", stage)
		}
	}

	record, err := decodeFn(raw)
	if err != nil {
		var vErr *schema.ValidationError
		if errors.As(err, &vErr) {
			return zero, &StageError{Stage: stage, Tag: TagInvalidSchema, Err: err}
		}
		return zero, &StageError{Stage: stage, Tag: TagInvalidJSON, Err: err}
	}

	return record, nil
}
