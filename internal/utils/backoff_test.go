package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := NewBackoff(time.Millisecond, 3).Do(context.Background(), func(i int) error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestBackoffReturnsLastError(t *testing.T) {
	want := errors.New("still broken")
	attempts := 0
	err := NewBackoff(time.Millisecond, 2).Do(context.Background(), func(i int) error {
		attempts++
		return want
	})
	require.ErrorIs(t, err, want)
	require.Equal(t, 3, attempts)
}

func TestBackoffStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := NewBackoff(time.Hour, 5).Do(ctx, func(i int) error {
		attempts++
		cancel() // cancellation must interrupt the pending wait
		return errors.New("flaky")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}
