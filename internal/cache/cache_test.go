package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHandle = nodeid.NewHandle(nodeid.ID{Graph: 1, Seq: 0}, "out")

func populated(t *testing.T) *Cache {
	t.Helper()
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Begin(ctx, ModePopulate))
	require.NoError(t, c.Batch(0).Store(ctx, testHandle, 20.0))
	c.Commit(ctx)
	require.Equal(t, StatePopulated, c.State())
	return c
}

func requireStateError(t *testing.T, err error, msg string) {
	t.Helper()
	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr), "expected *StateError, got %v", err)
	assert.Equal(t, msg, stateErr.Msg)
}

func TestModeFromFlags(t *testing.T) {
	testCases := []struct {
		name     string
		cache    bool
		useCache bool
		expected Mode
		errMsg   string
	}{
		{name: "neither", expected: ModeNone},
		{name: "cache", cache: true, expected: ModePopulate},
		{name: "use_cache", useCache: true, expected: ModeConsume},
		{name: "both", cache: true, useCache: true, errMsg: "cache and use_cache were both set."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mode, err := ModeFromFlags(tc.cache, tc.useCache)
			if tc.errMsg != "" {
				requireStateError(t, err, tc.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, mode)
		})
	}
}

func TestBegin_ConsumeOnDisabledFails(t *testing.T) {
	c := New()
	err := c.Begin(context.Background(), ModeConsume)
	requireStateError(t, err, "use_cache was set, but cache was empty")
	assert.Equal(t, StateDisabled, c.State())
}

func TestBegin_PopulateTwiceFails(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Begin(ctx, ModePopulate))

	err := c.Begin(ctx, ModePopulate)
	requireStateError(t, err, "cache was set but was not empty")
	assert.Equal(t, StatePopulating, c.State())

	require.NoError(t, c.Batch(0).Store(ctx, testHandle, 1.0))
	c.Commit(ctx)
	err = c.Begin(ctx, ModePopulate)
	requireStateError(t, err, "cache was set but was not empty")
	assert.Equal(t, StatePopulated, c.State())
}

func TestCommit_EmptyPopulationLeavesCacheDisabled(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Begin(ctx, ModePopulate))
	c.Commit(ctx)

	assert.Equal(t, StateDisabled, c.State())
	assert.Equal(t, 0, c.Batches())
	requireStateError(t, c.Begin(ctx, ModeConsume), "use_cache was set, but cache was empty")
	require.NoError(t, c.Begin(ctx, ModePopulate), "an empty cache can be populated again")
}

func TestBegin_PopulateWhileConsumingFails(t *testing.T) {
	ctx := context.Background()
	c := populated(t)
	require.NoError(t, c.Begin(ctx, ModeConsume))
	c.Commit(ctx)

	err := c.Begin(ctx, ModePopulate)
	requireStateError(t, err, "cache was set but was not empty")
	assert.Equal(t, StateConsuming, c.State())
}

func TestConsume_ReadsRecordedValues(t *testing.T) {
	ctx := context.Background()
	c := populated(t)

	require.NoError(t, c.Begin(ctx, ModeConsume))
	assert.Equal(t, StateConsuming, c.State())

	v := c.Batch(0)
	assert.True(t, v.Consuming())
	got, ok := v.Lookup(ctx, testHandle)
	require.True(t, ok)
	assert.Equal(t, 20.0, got)
	assert.True(t, v.HasAll(ctx, []nodeid.Handle{testHandle}))

	// Consuming views are read-only.
	other := nodeid.NewHandle(nodeid.ID{Graph: 1, Seq: 1}, "out")
	require.NoError(t, v.Store(ctx, other, 1.0))
	_, ok = v.Lookup(ctx, other)
	assert.False(t, ok)

	// Out of range batches are empty.
	_, ok = c.Batch(5).Lookup(ctx, testHandle)
	assert.False(t, ok)

	c.Commit(ctx)
	assert.Equal(t, StateConsuming, c.State())
	require.NoError(t, c.Begin(ctx, ModeConsume), "repeated consumes are allowed")
}

func TestModeNone_LeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	c := populated(t)

	require.NoError(t, c.Begin(ctx, ModeNone))
	v := c.Batch(0)
	_, ok := v.Lookup(ctx, testHandle)
	assert.False(t, ok)
	c.Commit(ctx)
	assert.Equal(t, StatePopulated, c.State())
	assert.Equal(t, 1, c.Batches())
}

func TestAbort_ClearsPartialPopulation(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Begin(ctx, ModePopulate))
	require.NoError(t, c.Batch(0).Store(ctx, testHandle, 1.0))

	c.Abort(ctx)
	assert.Equal(t, StateDisabled, c.State())
	assert.Equal(t, 0, c.Batches())
	require.NoError(t, c.Begin(ctx, ModePopulate), "cache can be populated again after abort")
}

func TestAbort_KeepsPopulatedEntriesOnFailedConsume(t *testing.T) {
	ctx := context.Background()
	c := populated(t)
	require.NoError(t, c.Begin(ctx, ModeConsume))
	c.Abort(ctx)
	assert.Equal(t, StateConsuming, c.State())
	assert.Equal(t, 1, c.Batches())
}

func TestClear_AlwaysDisables(t *testing.T) {
	ctx := context.Background()

	c := New()
	c.Clear(ctx)
	c.Clear(ctx)
	assert.Equal(t, StateDisabled, c.State())

	c = populated(t)
	c.Clear(ctx)
	assert.Equal(t, StateDisabled, c.State())
	assert.Equal(t, 0, c.Batches())

	c = populated(t)
	require.NoError(t, c.Begin(ctx, ModeConsume))
	c.Clear(ctx)
	assert.Equal(t, StateDisabled, c.State())
	requireStateError(t, c.Begin(ctx, ModeConsume), "use_cache was set, but cache was empty")
}

func TestZeroView(t *testing.T) {
	ctx := context.Background()
	var v View
	require.NoError(t, v.Store(ctx, testHandle, 1))
	_, ok := v.Lookup(ctx, testHandle)
	assert.False(t, ok)
	assert.Equal(t, ModeNone, v.Mode())
}
