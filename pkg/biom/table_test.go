package biom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]string{"F1", "F1"}, []string{"S1"})
	assert.Error(t, err)

	_, err = New([]string{"F1"}, []string{"S1", "S1"})
	assert.Error(t, err)
}

func TestFromSampleCounts(t *testing.T) {
	table := FromSampleCounts(map[string]map[string]float64{
		"S2": {"F1": 3, "F2": 0},
		"S1": {"F1": 1, "F3": 5},
	})

	// Axes are lexicographic; zero counts never enter the table.
	assert.Equal(t, []string{"F1", "F3"}, table.FeatureIDs())
	assert.Equal(t, []string{"S1", "S2"}, table.SampleIDs())
	assert.Equal(t, 1.0, table.Get("F1", "S1"))
	assert.Equal(t, 3.0, table.Get("F1", "S2"))
	assert.Equal(t, 5.0, table.Get("F3", "S1"))
	assert.Equal(t, 0.0, table.Get("F2", "S1"))
	assert.Equal(t, 3, table.NonzeroEntries())
}

func TestSetAndRemove(t *testing.T) {
	table, err := New([]string{"F1"}, []string{"S1"})
	require.NoError(t, err)

	require.NoError(t, table.Set("F1", "S1", 7))
	assert.Equal(t, 7.0, table.Get("F1", "S1"))

	// Setting zero removes the stored entry.
	require.NoError(t, table.Set("F1", "S1", 0))
	assert.Equal(t, 0, table.NonzeroEntries())

	assert.Error(t, table.Set("FX", "S1", 1))
	assert.Error(t, table.Set("F1", "SX", 1))
}

func TestFilterSamples(t *testing.T) {
	table := FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1},
		"S2": {"F2": 2},
		"S3": {"F1": 3, "F2": 4},
	})

	filtered := table.FilterSamples("S1", "S3")
	assert.Equal(t, []string{"S1", "S3"}, filtered.SampleIDs())
	assert.Equal(t, []string{"F1", "F2"}, filtered.FeatureIDs())

	// F2 only appears in S2; dropping S2 and S3 drops the feature.
	filtered = table.FilterSamples("S1")
	assert.Equal(t, []string{"F1"}, filtered.FeatureIDs())
	assert.Equal(t, 1.0, filtered.Get("F1", "S1"))
}

func TestUpdateSampleIDs(t *testing.T) {
	table := FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1},
		"S2": {"F1": 2},
	})

	require.NoError(t, table.UpdateSampleIDs(map[string]string{"S1": "S1.tag"}))
	assert.Equal(t, []string{"S1.tag", "S2"}, table.SampleIDs())
	assert.Equal(t, 1.0, table.Get("F1", "S1.tag"))
	assert.Equal(t, 2.0, table.Get("F1", "S2"))

	err := table.UpdateSampleIDs(map[string]string{"S1.tag": "S2"})
	assert.Error(t, err)
}

func TestSortOrders(t *testing.T) {
	table := FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1, "F2": 2},
		"S2": {"F2": 3},
	})

	require.NoError(t, table.SortFeatureOrder([]string{"F2", "F1"}))
	require.NoError(t, table.SortSampleOrder([]string{"S2", "S1"}))
	assert.Equal(t, []string{"F2", "F1"}, table.FeatureIDs())
	assert.Equal(t, []string{"S2", "S1"}, table.SampleIDs())

	assert.Error(t, table.SortFeatureOrder([]string{"F1"}))
	assert.Error(t, table.SortFeatureOrder([]string{"F1", "FX"}))
	assert.Error(t, table.SortSampleOrder([]string{"S1", "S1"}))
}

func TestEqual(t *testing.T) {
	a := FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1},
		"S2": {"F2": 2},
	})
	b := FromSampleCounts(map[string]map[string]float64{
		"S2": {"F2": 2},
		"S1": {"F1": 1},
	})
	assert.True(t, a.Equal(b))

	require.NoError(t, b.SortSampleOrder([]string{"S2", "S1"}))
	assert.False(t, a.Equal(b))

	assert.False(t, a.Equal(nil))
}

func TestParseTSV(t *testing.T) {
	input := "# Constructed from biom file\n" +
		"#OTU ID\tS1\tS2\n" +
		"F1\t1\t0\n" +
		"F2\t0\t2.5\n"

	table, err := ParseTSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"F1", "F2"}, table.FeatureIDs())
	assert.Equal(t, []string{"S1", "S2"}, table.SampleIDs())
	assert.Equal(t, 1.0, table.Get("F1", "S1"))
	assert.Equal(t, 2.5, table.Get("F2", "S2"))
	assert.Equal(t, 2, table.NonzeroEntries())
}

func TestParseTSVErrors(t *testing.T) {
	_, err := ParseTSV(strings.NewReader("#OTU ID\n"))
	assert.Error(t, err)

	_, err = ParseTSV(strings.NewReader("#OTU ID\tS1\nF1\t1\t2\n"))
	assert.Error(t, err)

	_, err = ParseTSV(strings.NewReader("#OTU ID\tS1\nF1\tabc\n"))
	assert.Error(t, err)
}

func TestWriteTSVRoundTrip(t *testing.T) {
	table := FromSampleCounts(map[string]map[string]float64{
		"S1": {"F1": 1, "F2": 2},
		"S2": {"F2": 3.5},
	})

	var buf strings.Builder
	require.NoError(t, table.WriteTSV(&buf))

	parsed, err := ParseTSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.True(t, table.Equal(parsed))
}
