package aimux

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	defaultRetryInitialInterval = 500 * time.Millisecond
	defaultRetryMaxInterval     = 15 * time.Second
	defaultRetryMaxElapsedTime  = 1 * time.Minute
)

// RetryConfig configures a RetryCompleter.
type RetryConfig struct {
	// ShouldRetry decides whether an error is transient and worth
	// retrying. If nil, defaultShouldRetry is used, which retries on
	// transport errors, timeouts, and provider errors with 429 or 5xx
	// status codes.
	ShouldRetry func(err error) bool

	// Failsafe, when non-empty, is returned as the completion text once
	// retries are exhausted, instead of the final error. The returned
	// Completion carries no provider identity.
	Failsafe string
}

// RetryCompleter wraps another Completer and retries Complete according to a
// backoff policy. It typically wraps an entire failover chain, not an
// individual adapter: adapters never retry internally, so the wrapper is the
// only place a candidate can be attempted twice.
//
// A fresh backoff policy is built for every Complete call, so one
// RetryCompleter is safe for concurrent use.
type RetryCompleter struct {
	completer    Completer
	newBackOff   func() backoff.BackOff
	retryOptions []backoff.RetryOption
	config       RetryConfig
}

// NewRetryCompleter creates a RetryCompleter.
//
// newBackOff produces the backoff policy for one call; it is invoked once
// per Complete so concurrent calls never share interval state. If nil, an
// ExponentialBackOff with standard intervals (Initial: 500ms, Max: 15s) is
// used. If no opts are provided, a default MaxElapsedTime of 1 minute is
// applied; if opts are provided they are used as given. Do not include
// backoff.WithBackOff in opts, as newBackOff is always applied as the
// primary policy.
func NewRetryCompleter(completer Completer, config *RetryConfig, newBackOff func() backoff.BackOff, opts ...backoff.RetryOption) *RetryCompleter {
	if newBackOff == nil {
		newBackOff = func() backoff.BackOff {
			exp := backoff.NewExponentialBackOff()
			exp.InitialInterval = defaultRetryInitialInterval
			exp.MaxInterval = defaultRetryMaxInterval
			return exp
		}
	}

	finalOpts := opts
	if len(opts) == 0 {
		finalOpts = []backoff.RetryOption{
			backoff.WithMaxElapsedTime(defaultRetryMaxElapsedTime),
		}
	}

	actualConfig := RetryConfig{}
	if config != nil {
		actualConfig = *config
	}
	if actualConfig.ShouldRetry == nil {
		actualConfig.ShouldRetry = defaultShouldRetry
	}

	return &RetryCompleter{
		completer:    completer,
		newBackOff:   newBackOff,
		retryOptions: finalOpts,
		config:       actualConfig,
	}
}

// defaultShouldRetry retries on transient failures: transport errors and
// timeouts, provider errors with 429 or 5xx status codes, and aggregated
// failures containing at least one such error.
func defaultShouldRetry(err error) bool {
	var transportErr TransportErr
	if errors.As(err, &transportErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var providerErr ProviderErr
	if errors.As(err, &providerErr) {
		return providerErr.StatusCode == 429 ||
			(providerErr.StatusCode >= 500 && providerErr.StatusCode < 600)
	}
	return false
}

// Complete implements Completer, retrying the wrapped completer on transient
// errors. The provided context is respected by the retry loop: if ctx is
// cancelled, retries stop.
func (rc *RetryCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	operation := func() (Completion, error) {
		if err := ctx.Err(); err != nil {
			return Completion{}, backoff.Permanent(err)
		}

		completion, err := rc.completer.Complete(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return completion, backoff.Permanent(err)
			}
			if rc.config.ShouldRetry(err) {
				return completion, err
			}
			return completion, backoff.Permanent(err)
		}
		return completion, nil
	}

	callOpts := make([]backoff.RetryOption, 0, 1+len(rc.retryOptions))
	callOpts = append(callOpts, backoff.WithBackOff(rc.newBackOff()))
	callOpts = append(callOpts, rc.retryOptions...)

	completion, err := backoff.Retry(ctx, operation, callOpts...)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		if rc.config.Failsafe != "" && !errors.Is(err, context.Canceled) {
			return Completion{Text: rc.config.Failsafe}, nil
		}
		return completion, err
	}
	return completion, nil
}

// Identity reports the wrapped completer's identity, if it has one.
func (rc *RetryCompleter) Identity() (Provider, string) {
	return identityOf(rc.completer)
}

var _ Completer = (*RetryCompleter)(nil)
