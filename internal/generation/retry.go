package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/introbird/internal/logging"
)

// Retry policy defaults.
const (
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultAttemptTimeout = 60 * time.Second

	// maxLoggedErrorLen bounds the error text written to retry logs.
	maxLoggedErrorLen = 200
)

// RetryPolicy bounds how a single operation is retried.
type RetryPolicy struct {
	MaxAttempts    int           // total attempts, including the first
	Delay          time.Duration // fixed wait between attempts
	AttemptTimeout time.Duration // per-attempt deadline; zero disables it
}

// DefaultRetryPolicy returns 3 attempts, 2s apart, each bounded to 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultMaxAttempts,
		Delay:          DefaultRetryDelay,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.AttemptTimeout < 0 {
		p.AttemptTimeout = 0
	}
	return p
}

// EventKind identifies a progress event.
type EventKind string

const (
	// EventAttempt is emitted before every attempt
	EventAttempt EventKind = "attempt"
	// EventRetry is emitted after a transient failure, before the delay
	EventRetry EventKind = "retry"
)

// Event reports retry-loop progress to an optional observer.
type Event struct {
	Kind        EventKind `json:"kind"`
	Operation   string    `json:"operation"`
	Attempt     int       `json:"attempt"`
	MaxAttempts int       `json:"maxAttempts"`
	DelayMs     int64     `json:"delayMs,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// ProgressFunc receives progress events. It is called synchronously from the retry loop.
type ProgressFunc func(Event)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier runs an operation under a RetryPolicy. It holds no per-call state, so one
// Retrier serves any number of concurrent calls.
type Retrier struct {
	policy   RetryPolicy
	logger   *zap.Logger
	metrics  *Metrics
	sleep    SleepFunc
	classify func(error) bool
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithSleep replaces the delay function. Tests use it to observe delays without waiting.
func WithSleep(sleep SleepFunc) RetrierOption {
	return func(r *Retrier) { r.sleep = sleep }
}

// WithMetrics records attempts and retries.
func WithMetrics(m *Metrics) RetrierOption {
	return func(r *Retrier) { r.metrics = m }
}

// WithClassifier replaces IsRetryable.
func WithClassifier(classify func(error) bool) RetrierOption {
	return func(r *Retrier) { r.classify = classify }
}

// NewRetrier creates a Retrier.
func NewRetrier(policy RetryPolicy, logger *zap.Logger, opts ...RetrierOption) *Retrier {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Retrier{
		policy:   policy.normalized(),
		logger:   logger.Named("invoker"),
		sleep:    Sleep,
		classify: IsRetryable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the effective policy.
func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the attempt budget is spent.
// Any failure is returned as a *GenerationError wrapping the last underlying error.
func (r *Retrier) Do(ctx context.Context, operation string, progress ProgressFunc, fn func(ctx context.Context) error) error {
	maxAttempts := r.policy.MaxAttempts

	for attempt := 1; ; attempt++ {
		emit(progress, Event{Kind: EventAttempt, Operation: operation, Attempt: attempt, MaxAttempts: maxAttempts})

		start := time.Now()
		err := r.runAttempt(ctx, fn)
		r.metrics.observeAttempt(operation, time.Since(start), err)

		if err == nil {
			r.metrics.observeOutcome(operation, "success")
			return nil
		}

		retryable := r.classify(err)
		if retryable && attempt < maxAttempts {
			r.logger.Warn("Generation attempt failed, retrying",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Duration("delay", r.policy.Delay),
				zap.String("error", logging.Truncate(err.Error(), maxLoggedErrorLen)),
			)
			emit(progress, Event{
				Kind:        EventRetry,
				Operation:   operation,
				Attempt:     attempt,
				MaxAttempts: maxAttempts,
				DelayMs:     r.policy.Delay.Milliseconds(),
				Error:       err.Error(),
			})
			r.metrics.observeRetry(operation)

			if sleepErr := r.sleep(ctx, r.policy.Delay); sleepErr != nil {
				r.logger.Error("Generation abandoned while waiting to retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt),
					zap.Error(sleepErr),
				)
				r.metrics.observeOutcome(operation, "canceled")
				return &GenerationError{
					Operation: operation,
					Attempts:  attempt,
					Cause:     fmt.Errorf("%w (last error: %v)", sleepErr, err),
				}
			}
			continue
		}

		r.logger.Error("Generation failed",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Bool("retryable", retryable),
			zap.String("error", logging.Truncate(err.Error(), maxLoggedErrorLen)),
		)
		outcome := "fatal_error"
		if retryable {
			outcome = "retries_exhausted"
		}
		r.metrics.observeOutcome(operation, outcome)
		return &GenerationError{
			Operation: operation,
			Attempts:  attempt,
			Retryable: retryable,
			Cause:     err,
		}
	}
}

func (r *Retrier) runAttempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.policy.AttemptTimeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.AttemptTimeout)
	defer cancel()
	return fn(attemptCtx)
}

func emit(progress ProgressFunc, e Event) {
	if progress != nil {
		progress(e)
	}
}
