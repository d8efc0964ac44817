package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/lensline/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")
	err := NewUserError("Login failed", cause)

	assert.Equal(t, "Login failed", err.Error())
	assert.ErrorIs(t, err, cause)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Login failed", userErr.UserMessage)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(Permanent(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestWithRetry(t *testing.T) {
	fast := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), fast, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), fast, func(context.Context) error {
			calls++
			return errors.New("still broken")
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		boom := errors.New("bad request")
		err := WithRetry(context.Background(), fast, func(context.Context) error {
			calls++
			return Permanent(boom)
		})
		assert.Equal(t, boom, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour}
		err := WithRetry(ctx, slow, func(context.Context) error {
			cancel()
			return errors.New("fail")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDefaultRetryOptions(t *testing.T) {
	opts := DefaultRetryOptions(service.RetryOptions{})
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, opts.InitialDelay)
	assert.Equal(t, 30*time.Second, opts.MaxDelay)
	assert.InDelta(t, 2.0, opts.Multiplier, 0.001)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer

	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	slog.New(h).Info("hello", "analysis_id", "a-1")
	assert.Contains(t, buf.String(), `"analysis_id":"a-1"`)

	_, err = NewHandler(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	handler, err := NewHandler(&buf, slog.LevelDebug, "json")
	require.NoError(t, err)

	prev := slog.Default()
	slog.SetDefault(slog.New(handler))
	t.Cleanup(func() { slog.SetDefault(prev) })

	LogError(errors.New("disk full"), "Failed to close database", nil)
	LogInfo("Persisted session expired", Fields{"expired_at": "2026-01-01"})
	LogDebug("Session changed", nil)

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"expired_at":"2026-01-01"`)
	assert.Contains(t, out, `"msg":"Session changed"`)
}
