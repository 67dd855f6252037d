package retryutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRetriesTransientErrors(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 3, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("rate limit exceeded (429)")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoAbortsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := errors.New("invalid request payload")
	err := Do(context.Background(), 5, func() error {
		attempts++
		return permanent
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoExhaustsRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 2, func() error {
		attempts++
		return errors.New("service unavailable")
	})
	require.Error(t, err)
	// First attempt plus two retries.
	assert.Equal(t, 3, attempts)
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, 5, func() error {
		return errors.New("timeout while dialing")
	})
	assert.Error(t, err)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"rate limit", errors.New("429 too many requests"), true},
		{"unavailable", errors.New("503 service unavailable"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"validation", errors.New("field is required"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
