// Package biom provides a sparse features-by-samples count table, the
// in-memory exchange format for sample data. Only the classic
// tab-separated representation is parsed and written; the binary BIOM
// encodings are out of scope.
package biom

import (
	"fmt"
	"sort"
)

// Table is a sparse matrix of per-sample feature counts. The feature axis
// corresponds to BIOM observations (e.g. sequence variants), the sample
// axis to sample identifiers. Zero counts are never stored.
type Table struct {
	featureIDs []string
	sampleIDs  []string

	featureIndex map[string]int
	sampleIndex  map[string]int

	// counts[featureID][sampleID] = count; entries are always nonzero
	counts map[string]map[string]float64
}

// New creates an empty table with the given axis orders. Duplicate
// identifiers on either axis are an error.
func New(featureIDs, sampleIDs []string) (*Table, error) {
	t := &Table{
		featureIDs:   append([]string(nil), featureIDs...),
		sampleIDs:    append([]string(nil), sampleIDs...),
		featureIndex: make(map[string]int, len(featureIDs)),
		sampleIndex:  make(map[string]int, len(sampleIDs)),
		counts:       make(map[string]map[string]float64),
	}
	for i, id := range t.featureIDs {
		if _, dup := t.featureIndex[id]; dup {
			return nil, fmt.Errorf("duplicate feature identifier %q", id)
		}
		t.featureIndex[id] = i
	}
	for i, id := range t.sampleIDs {
		if _, dup := t.sampleIndex[id]; dup {
			return nil, fmt.Errorf("duplicate sample identifier %q", id)
		}
		t.sampleIndex[id] = i
	}
	return t, nil
}

// FromSampleCounts builds a table from per-sample feature counts
// (sampleID -> featureID -> count). Axis orders are lexicographic. Zero
// counts are dropped.
func FromSampleCounts(counts map[string]map[string]float64) *Table {
	sampleSet := make([]string, 0, len(counts))
	featureSet := make(map[string]struct{})
	for sample, features := range counts {
		sampleSet = append(sampleSet, sample)
		for feature, count := range features {
			if count != 0 {
				featureSet[feature] = struct{}{}
			}
		}
	}
	sort.Strings(sampleSet)

	featureIDs := make([]string, 0, len(featureSet))
	for feature := range featureSet {
		featureIDs = append(featureIDs, feature)
	}
	sort.Strings(featureIDs)

	t, _ := New(featureIDs, sampleSet)
	for sample, features := range counts {
		for feature, count := range features {
			if count != 0 {
				t.mustSet(feature, sample, count)
			}
		}
	}
	return t
}

// FeatureIDs returns the feature axis in order. The slice is shared; do
// not mutate.
func (t *Table) FeatureIDs() []string {
	return t.featureIDs
}

// SampleIDs returns the sample axis in order. The slice is shared; do not
// mutate.
func (t *Table) SampleIDs() []string {
	return t.sampleIDs
}

// NumFeatures returns the number of features.
func (t *Table) NumFeatures() int {
	return len(t.featureIDs)
}

// NumSamples returns the number of samples.
func (t *Table) NumSamples() int {
	return len(t.sampleIDs)
}

// Get returns the count for (feature, sample); absent entries are 0.
func (t *Table) Get(feature, sample string) float64 {
	return t.counts[feature][sample]
}

// HasSample reports whether the sample axis contains id.
func (t *Table) HasSample(id string) bool {
	_, ok := t.sampleIndex[id]
	return ok
}

// HasFeature reports whether the feature axis contains id.
func (t *Table) HasFeature(id string) bool {
	_, ok := t.featureIndex[id]
	return ok
}

// Set stores a count for (feature, sample). Setting 0 removes the entry.
func (t *Table) Set(feature, sample string, count float64) error {
	if _, ok := t.featureIndex[feature]; !ok {
		return fmt.Errorf("unknown feature identifier %q", feature)
	}
	if _, ok := t.sampleIndex[sample]; !ok {
		return fmt.Errorf("unknown sample identifier %q", sample)
	}
	t.mustSet(feature, sample, count)
	return nil
}

func (t *Table) mustSet(feature, sample string, count float64) {
	if count == 0 {
		if row, ok := t.counts[feature]; ok {
			delete(row, sample)
			if len(row) == 0 {
				delete(t.counts, feature)
			}
		}
		return
	}
	row, ok := t.counts[feature]
	if !ok {
		row = make(map[string]float64)
		t.counts[feature] = row
	}
	row[sample] = count
}

// FilterSamples returns a new table restricted to the given samples, in
// the order they appear on the receiver's sample axis. Features left with
// no nonzero count among the kept samples are dropped.
func (t *Table) FilterSamples(samples ...string) *Table {
	keep := make(map[string]struct{}, len(samples))
	for _, id := range samples {
		keep[id] = struct{}{}
	}

	keptSamples := make([]string, 0, len(samples))
	for _, id := range t.sampleIDs {
		if _, ok := keep[id]; ok {
			keptSamples = append(keptSamples, id)
		}
	}

	keptFeatures := make([]string, 0, len(t.featureIDs))
	for _, feature := range t.featureIDs {
		row := t.counts[feature]
		for _, sample := range keptSamples {
			if row[sample] != 0 {
				keptFeatures = append(keptFeatures, feature)
				break
			}
		}
	}

	out, _ := New(keptFeatures, keptSamples)
	for _, feature := range keptFeatures {
		for _, sample := range keptSamples {
			if count := t.counts[feature][sample]; count != 0 {
				out.mustSet(feature, sample, count)
			}
		}
	}
	return out
}

// UpdateSampleIDs renames sample identifiers in place. Identifiers absent
// from the mapping are kept. Renames that would collide are an error.
func (t *Table) UpdateSampleIDs(mapping map[string]string) error {
	renamed := make([]string, len(t.sampleIDs))
	index := make(map[string]int, len(t.sampleIDs))
	for i, id := range t.sampleIDs {
		newID := id
		if mapped, ok := mapping[id]; ok {
			newID = mapped
		}
		if _, dup := index[newID]; dup {
			return fmt.Errorf("sample identifier collision on %q", newID)
		}
		renamed[i] = newID
		index[newID] = i
	}

	counts := make(map[string]map[string]float64, len(t.counts))
	for feature, row := range t.counts {
		newRow := make(map[string]float64, len(row))
		for sample, count := range row {
			newID := sample
			if mapped, ok := mapping[sample]; ok {
				newID = mapped
			}
			newRow[newID] = count
		}
		counts[feature] = newRow
	}

	t.sampleIDs = renamed
	t.sampleIndex = index
	t.counts = counts
	return nil
}

// SortFeatureOrder reorders the feature axis to match order, which must be
// a permutation of the current feature identifiers.
func (t *Table) SortFeatureOrder(order []string) error {
	return t.reorder(order, &t.featureIDs, &t.featureIndex)
}

// SortSampleOrder reorders the sample axis to match order, which must be a
// permutation of the current sample identifiers.
func (t *Table) SortSampleOrder(order []string) error {
	return t.reorder(order, &t.sampleIDs, &t.sampleIndex)
}

func (t *Table) reorder(order []string, ids *[]string, index *map[string]int) error {
	if len(order) != len(*ids) {
		return fmt.Errorf("order has %d identifiers, axis has %d", len(order), len(*ids))
	}
	newIndex := make(map[string]int, len(order))
	for i, id := range order {
		if _, ok := (*index)[id]; !ok {
			return fmt.Errorf("unknown identifier %q in order", id)
		}
		if _, dup := newIndex[id]; dup {
			return fmt.Errorf("duplicate identifier %q in order", id)
		}
		newIndex[id] = i
	}
	*ids = append([]string(nil), order...)
	*index = newIndex
	return nil
}

// Equal reports whether both tables have identical axis orders and counts.
// Callers must normalize axis order first when comparing results of
// operations that leave it unspecified.
func (t *Table) Equal(other *Table) bool {
	if other == nil {
		return false
	}
	if len(t.featureIDs) != len(other.featureIDs) || len(t.sampleIDs) != len(other.sampleIDs) {
		return false
	}
	for i, id := range t.featureIDs {
		if other.featureIDs[i] != id {
			return false
		}
	}
	for i, id := range t.sampleIDs {
		if other.sampleIDs[i] != id {
			return false
		}
	}
	for _, feature := range t.featureIDs {
		for _, sample := range t.sampleIDs {
			if t.counts[feature][sample] != other.counts[feature][sample] {
				return false
			}
		}
	}
	return true
}

// SampleCounts returns the nonzero feature counts for one sample.
func (t *Table) SampleCounts(sample string) map[string]float64 {
	out := make(map[string]float64)
	for feature, row := range t.counts {
		if count, ok := row[sample]; ok {
			out[feature] = count
		}
	}
	return out
}

// NonzeroEntries returns the number of stored (nonzero) entries.
func (t *Table) NonzeroEntries() int {
	n := 0
	for _, row := range t.counts {
		n += len(row)
	}
	return n
}
