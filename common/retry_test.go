package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecuteWithRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")
	isRecoverable := func(err error) bool { return errors.Is(err, errTransient) }

	t.Run("succeeds after transient errors", func(t *testing.T) {
		calls := 0

		err := ExecuteWithRetry(context.Background(),
			BackoffConfig{Initial: time.Millisecond, MaxRetries: 5}.NewBackoff(),
			func(context.Context) error {
				calls++
				if calls < 3 {
					return errTransient
				}

				return nil
			}, isRecoverable)

		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("exhausted returns last error", func(t *testing.T) {
		calls := 0

		err := ExecuteWithRetry(context.Background(),
			BackoffConfig{Initial: time.Millisecond, MaxRetries: 2}.NewBackoff(),
			func(context.Context) error {
				calls++

				return errTransient
			}, isRecoverable)

		require.ErrorIs(t, err, errTransient)
		require.Equal(t, 3, calls)
	})

	t.Run("unrecoverable stops immediately", func(t *testing.T) {
		calls := 0

		err := ExecuteWithRetry(context.Background(),
			BackoffConfig{Initial: time.Millisecond, MaxRetries: 5}.NewBackoff(),
			func(context.Context) error {
				calls++

				return errFatal
			}, isRecoverable)

		require.ErrorIs(t, err, errFatal)
		require.Equal(t, 1, calls)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := ExecuteWithRetry(ctx,
			BackoffConfig{Initial: time.Millisecond}.NewBackoff(),
			func(context.Context) error {
				return errTransient
			})

		require.True(t, IsContextDoneErr(err))
	})
}

func TestRetryForever(t *testing.T) {
	calls := 0

	err := RetryForever(context.Background(), time.Millisecond, func(context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("not yet")
		}

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 4, calls)
}

func TestExecuteWithRetry_InnerTimeoutIsRetried(t *testing.T) {
	calls := 0

	err := ExecuteWithRetry(context.Background(),
		BackoffConfig{Initial: time.Millisecond, MaxRetries: 3}.NewBackoff(),
		func(context.Context) error {
			calls++
			if calls == 1 {
				return context.DeadlineExceeded
			}

			return nil
		})

	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
