package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientBudget_UnderLimit(t *testing.T) {
	b := NewClientBudget(5, time.Minute)

	err := b.Check("client-1", "compare_files")
	require.NoError(t, err)

	b.Record("client-1", "compare_files")
	b.Record("client-1", "compare_files")

	err = b.Check("client-1", "compare_files")
	assert.NoError(t, err)
}

func TestClientBudget_ExceedsLimit(t *testing.T) {
	b := NewClientBudget(2, time.Minute)

	b.Record("client-1", "compare_files")
	b.Record("client-1", "compare_files")

	err := b.Check("client-1", "compare_files")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "budget exceeded")
}

func TestClientBudget_WindowReset(t *testing.T) {
	b := NewClientBudget(2, time.Minute)

	now := time.Now()
	b.now = func() time.Time { return now }

	b.Record("client-1", "sync_folders")
	b.Record("client-1", "sync_folders")
	assert.Error(t, b.Check("client-1", "sync_folders"))
	assert.Equal(t, time.Minute, b.RetryAfter("client-1", "sync_folders"))

	// Advance time past window.
	b.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.NoError(t, b.Check("client-1", "sync_folders"))
	assert.Zero(t, b.RetryAfter("client-1", "sync_folders"))
}

func TestClientBudget_DifferentClients(t *testing.T) {
	b := NewClientBudget(1, time.Minute)

	b.Record("client-1", "merge_files")
	assert.Error(t, b.Check("client-1", "merge_files"))

	// Different client and different route have their own budgets.
	assert.NoError(t, b.Check("client-2", "merge_files"))
	assert.NoError(t, b.Check("client-1", "compare_files"))
}

func TestClientBudget_Disabled(t *testing.T) {
	b := NewClientBudget(0, time.Minute)

	for i := 0; i < 100; i++ {
		b.Record("client-1", "compare_files")
	}
	assert.NoError(t, b.Check("client-1", "compare_files"))
}
