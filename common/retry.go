package common

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

type IsRecoverableErrorFn func(err error) bool

type BackoffConfig struct {
	Initial    time.Duration `json:"initial" mapstructure:"initial"`
	Max        time.Duration `json:"max" mapstructure:"max"`
	MaxRetries uint64        `json:"maxRetries" mapstructure:"maxRetries"`
}

// NewBackoff builds a fresh exponential backoff. A zero MaxRetries means no retry limit
func (c BackoffConfig) NewBackoff() retry.Backoff {
	initial := c.Initial
	if initial <= 0 {
		initial = time.Second
	}

	backoff := retry.NewExponential(initial)

	if c.Max > 0 {
		backoff = retry.WithCappedDuration(c.Max, backoff)
	}

	if c.MaxRetries > 0 {
		backoff = retry.WithMaxRetries(c.MaxRetries, backoff)
	}

	return backoff
}

// RetryForever calls fn with a constant interval until it succeeds or ctx is done
func RetryForever(ctx context.Context, interval time.Duration, fn func(context.Context) error) error {
	return retry.Do(ctx, retry.NewConstant(interval), func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			if IsContextDoneErr(err) {
				return err
			}

			return retry.RetryableError(err)
		}

		return nil
	})
}

// ExecuteWithRetry runs fn until it succeeds, ctx is done, the backoff is exhausted or fn returns
// an error that isRecoverableError rejects. When no classifier is given every error is recoverable.
// The error of the last attempt is returned.
func ExecuteWithRetry(
	ctx context.Context, backoff retry.Backoff,
	fn func(context.Context) error, isRecoverableError ...IsRecoverableErrorFn,
) error {
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		if len(isRecoverableError) > 0 && !isRecoverableError[0](err) {
			return err
		}

		return retry.RetryableError(err)
	})
}
