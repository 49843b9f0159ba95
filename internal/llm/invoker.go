package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veillellm/internal/ports"
)

// Fixed sampling parameters for every backend call; only the
// temperature varies per stage.
const (
	topP            = 0.95
	topK            = 40
	maxOutputTokens = 8192
)

const jsonInstruction = "\n\nIMPORTANT: Return ONLY valid JSON, no markdown formatting, no explanations."

// InvocationError reports that a backend call failed after exhausting
// all retry attempts.
type InvocationError struct {
	Attempts int
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("model invocation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// RetryPolicy decides how many times a backend call is attempted and
// how long to wait between attempts. Sleep is injectable for tests.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy retries up to maxAttempts with uncapped 2^attempt
// second backoff and no jitter.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
		Sleep: sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Invoker wraps a single call to the text-generation backend with
// retry on transient failure. It returns the raw response text
// unvalidated; parsing and schema checks belong to the caller.
type Invoker struct {
	backend ports.TextGenerator
	retry   RetryPolicy
	logger  *slog.Logger
}

// NewInvoker wires a backend with a retry policy.
func NewInvoker(backend ports.TextGenerator, retry RetryPolicy, logger *slog.Logger) *Invoker {
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryPolicy(3)
	}
	if retry.Backoff == nil {
		retry.Backoff = DefaultRetryPolicy(retry.MaxAttempts).Backoff
	}
	if retry.Sleep == nil {
		retry.Sleep = sleepContext
	}
	return &Invoker{backend: backend, retry: retry, logger: logger}
}

// Invoke executes one generation request. When expectJSON is set an
// explicit raw-JSON instruction is appended to the prompt. Any backend
// error is retried with backoff; after the last attempt the final
// error is wrapped in InvocationError.
func (inv *Invoker) Invoke(ctx context.Context, prompt string, expectJSON bool, temperature float64) (string, error) {
	if expectJSON {
		prompt += jsonInstruction
	}

	req := ports.GenerateRequest{
		Prompt:          prompt,
		Temperature:     temperature,
		TopP:            topP,
		TopK:            topK,
		MaxOutputTokens: maxOutputTokens,
	}

	var lastErr error
	for attempt := 0; attempt < inv.retry.MaxAttempts; attempt++ {
		inv.debug("calling model backend", "attempt", attempt+1, "max_attempts", inv.retry.MaxAttempts)

		text, err := inv.backend.Generate(ctx, req)
		if err == nil {
			return text, nil
		}

		lastErr = err
		inv.warn("model backend call failed", "attempt", attempt+1, "error", err)

		if attempt < inv.retry.MaxAttempts-1 {
			wait := inv.retry.Backoff(attempt)
			inv.debug("retrying backend call", "wait", wait)
			if sleepErr := inv.retry.Sleep(ctx, wait); sleepErr != nil {
				return "", &InvocationError{Attempts: attempt + 1, Err: sleepErr}
			}
		}
	}

	return "", &InvocationError{Attempts: inv.retry.MaxAttempts, Err: lastErr}
}

func (inv *Invoker) debug(msg string, args ...any) {
	if inv.logger != nil {
		inv.logger.Debug(msg, args...)
	}
}

func (inv *Invoker) warn(msg string, args ...any) {
	if inv.logger != nil {
		inv.logger.Warn(msg, args...)
	}
}
