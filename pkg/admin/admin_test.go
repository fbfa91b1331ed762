package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adswafford/redbiom/internal/keys"
	"github.com/adswafford/redbiom/pkg/biom"
	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/kv/badgerkv"
	"github.com/adswafford/redbiom/pkg/metadata"
)

func newTestStore(t *testing.T) kv.Store {
	t.Helper()
	store, err := badgerkv.Open(badgerkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestValidContextName(t *testing.T) {
	assert.True(t, ValidContextName("test"))
	assert.True(t, ValidContextName("Deblur-NA"))
	assert.True(t, ValidContextName("ctx.v1_2"))

	assert.False(t, ValidContextName(""))
	assert.False(t, ValidContextName("state"))
	assert.False(t, ValidContextName("metadata"))
	assert.False(t, ValidContextName("has:colon"))
	assert.False(t, ValidContextName("has space"))
	assert.False(t, ValidContextName(".leading"))
}

func TestCreateContext(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, CreateContext(ctx, store, "test", "a test context"))

	description, ok, err := store.HGet(ctx, keys.Contexts, "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a test context", description)

	// Re-creating updates the description.
	require.NoError(t, CreateContext(ctx, store, "test", "updated"))
	description, _, err = store.HGet(ctx, keys.Contexts, "test")
	require.NoError(t, err)
	assert.Equal(t, "updated", description)

	err = CreateContext(ctx, store, "state", "reserved")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLoadSampleMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table := metadata.NewTable(nil)
	require.NoError(t, table.AddSample("S1", map[string]string{
		"BODY_SITE": "gut",
		"AGE":       "30",
	}))
	require.NoError(t, table.AddSample("S2", map[string]string{
		"BODY_SITE": "skin",
		"AGE":       "NA",
	}))

	n, err := LoadSampleMetadata(ctx, store, table)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	values, err := store.HGetAll(ctx, keys.MetadataCategory("BODY_SITE"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"S1": "gut", "S2": "skin"}, values)

	// The null AGE cell for S2 is never persisted.
	values, err = store.HGetAll(ctx, keys.MetadataCategory("AGE"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"S1": "30"}, values)

	categories, err := store.SMembers(ctx, keys.MetadataCategories)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BODY_SITE", "AGE"}, categories)

	samples, err := store.SMembers(ctx, keys.MetadataSamples)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"S1", "S2"}, samples)

	// Loads leave an audit record.
	n, err = store.HLen(ctx, loadsKey)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoadSampleData(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, CreateContext(ctx, store, "test", ""))

	table := biom.FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1, "F2": 2},
		"S2": {"F2": 3},
	})

	n, err := LoadSampleData(ctx, store, table, "test", "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	samples, err := store.SMembers(ctx, keys.ContextSamples("test"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"UNTAGGED_S1", "UNTAGGED_S2"}, samples)

	features, err := store.SMembers(ctx, keys.ContextFeatures("test"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"F1", "F2"}, features)

	counts, err := store.HGetAll(ctx, keys.ContextSampleData("test", "UNTAGGED_S1"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"F1": "1", "F2": "2"}, counts)
}

func TestLoadSampleDataTagged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, CreateContext(ctx, store, "test", ""))

	table := biom.FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1},
	})

	n, err := LoadSampleData(ctx, store, table, "test", "run2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	samples, err := store.SMembers(ctx, keys.ContextSamples("test"))
	require.NoError(t, err)
	assert.Equal(t, []string{"run2_S1"}, samples)
}

func TestLoadSampleDataErrors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table := biom.FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1},
	})

	_, err := LoadSampleData(ctx, store, table, "nonexistent", "")
	assert.ErrorIs(t, err, ErrUnknownContext)

	require.NoError(t, CreateContext(ctx, store, "test", ""))

	// Tags must not contain the stored-identifier separator.
	_, err = LoadSampleData(ctx, store, table, "test", "bad_tag")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLoadSampleDataSkipsEmptySamples(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, CreateContext(ctx, store, "test", ""))

	table, err := biom.New([]string{"F1"}, []string{"S1", "S2"})
	require.NoError(t, err)
	require.NoError(t, table.Set("F1", "S1", 4))

	n, err := LoadSampleData(ctx, store, table, "test", "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	samples, err := store.SMembers(ctx, keys.ContextSamples("test"))
	require.NoError(t, err)
	assert.Equal(t, []string{"UNTAGGED_S1"}, samples)
}
