package supplier

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// RetryPolicy is shared by every connector: up to MaxAttempts tries with
// exponential backoff starting at InitialDelay, multiplied by Multiplier,
// capped at MaxDelay and randomized by ±Jitter.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
}

// DefaultRetryPolicy returns 3 attempts, 1s doubling to at most 10s, ±30% jitter
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		Jitter:       0.3,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.Jitter < 0 || p.Jitter >= 1 {
		p.Jitter = def.Jitter
	}
	return p
}

// BaseDelay returns the un-jittered delay before retry n (1-based)
func (p RetryPolicy) BaseDelay(retry int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 1; i < retry; i++ {
		d *= p.Multiplier
		if d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Delay returns the jittered delay before retry n. r must be in [0,1).
func (p RetryPolicy) Delay(retry int, r float64) time.Duration {
	base := float64(p.BaseDelay(retry))
	factor := 1 + p.Jitter*(2*r-1)
	d := time.Duration(base * factor)
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

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

// RetryObserver is notified before each retry, for logging and metrics
type RetryObserver func(supplier integration.SupplierID, attempt int, delay time.Duration, err error)

// Retryer applies a RetryPolicy to connector operations
type Retryer struct {
	policy   RetryPolicy
	sleep    SleepFunc
	random   func() float64
	logger   *zap.Logger
	observer RetryObserver
}

// RetryerOption configures a Retryer
type RetryerOption func(*Retryer)

// WithSleep replaces the wait between attempts
func WithSleep(sleep SleepFunc) RetryerOption {
	return func(r *Retryer) {
		r.sleep = sleep
	}
}

// WithRandom replaces the jitter source; f must return values in [0,1)
func WithRandom(f func() float64) RetryerOption {
	return func(r *Retryer) {
		r.random = f
	}
}

// WithRetryLogger sets the logger used for retry warnings
func WithRetryLogger(logger *zap.Logger) RetryerOption {
	return func(r *Retryer) {
		r.logger = logger
	}
}

// WithRetryObserver registers a callback invoked before every retry
func WithRetryObserver(obs RetryObserver) RetryerOption {
	return func(r *Retryer) {
		r.observer = obs
	}
}

// NewRetryer creates a Retryer; zero policy fields take their defaults
func NewRetryer(policy RetryPolicy, opts ...RetryerOption) *Retryer {
	r := &Retryer{
		policy: policy.withDefaults(),
		sleep:  sleepContext,
		random: rand.Float64,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the effective policy
func (r *Retryer) Policy() RetryPolicy {
	return r.policy
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// attempts are exhausted. The returned ConnectorError carries the number of
// attempts made and the last observed status and message.
func (r *Retryer) Do(ctx context.Context, supplier integration.SupplierID, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !integration.IsRetryable(err) || attempt == r.policy.MaxAttempts {
			return withAttempts(err, attempt)
		}

		delay := r.policy.Delay(attempt, r.random())
		r.logger.Warn("Supplier request failed, retrying",
			zap.String("supplier_id", supplier.String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if r.observer != nil {
			r.observer(supplier, attempt, delay, err)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return withAttempts(integration.NetworkError(supplier, err), attempt)
		}
	}
	return lastErr
}

func withAttempts(err error, attempts int) error {
	var ce *integration.ConnectorError
	if errors.As(err, &ce) {
		out := *ce
		out.Attempts = attempts
		return &out
	}
	return err
}
