package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/kv/badgerkv"
)

type recordingObserver struct {
	commands []string
	errs     int
}

func (o *recordingObserver) ObserveOp(command string, duration time.Duration, err error) {
	o.commands = append(o.commands, command)
	if err != nil {
		o.errs++
	}
}

func TestInstrumentNilObserver(t *testing.T) {
	store, err := badgerkv.Open(badgerkv.Options{InMemory: true})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Equal(t, kv.Store(store), kv.Instrument(store, nil))
}

func TestInstrumentObservesCommands(t *testing.T) {
	store, err := badgerkv.Open(badgerkv.Options{InMemory: true})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	obs := &recordingObserver{}
	wrapped := kv.Instrument(store, obs)
	ctx := context.Background()

	require.NoError(t, wrapped.HSet(ctx, "k", "f", "v"))
	_, _, err = wrapped.HGet(ctx, "k", "f")
	require.NoError(t, err)
	require.NoError(t, wrapped.SAdd(ctx, "s", "m"))
	_, err = wrapped.SMembers(ctx, "s")
	require.NoError(t, err)

	assert.Equal(t, []string{"HSET", "HGET", "SADD", "SMEMBERS"}, obs.commands)
	assert.Zero(t, obs.errs)
}

func TestUnwrap(t *testing.T) {
	store, err := badgerkv.Open(badgerkv.Options{InMemory: true})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	wrapped := kv.Instrument(store, &recordingObserver{})
	assert.Equal(t, kv.Store(store), kv.Unwrap(wrapped))
	assert.Equal(t, kv.Store(store), kv.Unwrap(store))
}
