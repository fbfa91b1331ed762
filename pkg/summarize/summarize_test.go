package summarize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adswafford/redbiom/pkg/admin"
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

func TestContextsEmpty(t *testing.T) {
	store := newTestStore(t)

	summaries, err := Contexts(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestContexts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, admin.CreateContext(ctx, store, "deblur-100nt", "Deblur at 100nt"))
	require.NoError(t, admin.CreateContext(ctx, store, "closed-ref", "Closed reference"))

	table := biom.FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1, "F2": 2},
		"S2": {"F1": 3},
	})
	_, err := admin.LoadSampleData(ctx, store, table, "deblur-100nt", "")
	require.NoError(t, err)

	summaries, err := Contexts(ctx, store)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Sorted by name.
	assert.Equal(t, "closed-ref", summaries[0].Name)
	assert.Equal(t, 0, summaries[0].Samples)
	assert.Equal(t, 0, summaries[0].Features)

	assert.Equal(t, "deblur-100nt", summaries[1].Name)
	assert.Equal(t, "Deblur at 100nt", summaries[1].Description)
	assert.Equal(t, 2, summaries[1].Samples)
	assert.Equal(t, 2, summaries[1].Features)
}

func TestMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table := metadata.NewTable(nil)
	require.NoError(t, table.AddSample("S1", map[string]string{"A": "1", "B": "2"}))
	require.NoError(t, table.AddSample("S2", map[string]string{"A": "3"}))
	_, err := admin.LoadSampleMetadata(ctx, store, table)
	require.NoError(t, err)

	summary, err := Metadata(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Samples)
	assert.Equal(t, 2, summary.Categories)
}
