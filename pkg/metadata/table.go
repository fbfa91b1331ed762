// Package metadata provides the samples-by-categories metadata table and
// its null-value policy.
//
// Metadata arrives as tab-separated text keyed by a #SampleID column.
// Cells whose value is in the null set are treated as absent: they are
// never persisted to the store and never round-trip. Consumers that need
// a placeholder render absent cells with a sentinel such as "Unspecified".
package metadata

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// IDColumn is the row-key column of metadata input files.
const IDColumn = "#SampleID"

// Unspecified is the conventional sentinel consumers substitute for
// absent cells. It is itself a null value and is never stored.
const Unspecified = "Unspecified"

// nullValues is the set of cell values treated as absent. Mirrors the
// litany of null spellings that show up in practice in sample metadata.
var nullValues = map[string]struct{}{
	"":               {},
	"Unspecified":    {},
	"Unknown":        {},
	"unknown":        {},
	"no_data":        {},
	"not applicable": {},
	"NA":             {},
	"na":             {},
	"null":           {},
	"NULL":           {},
	"Null":           {},
	"NaN":            {},
	"nan":            {},
	"none":           {},
	"None":           {},
}

// IsNull reports whether a cell value is in the null set.
func IsNull(value string) bool {
	_, ok := nullValues[value]
	return ok
}

// Table is a samples-by-categories metadata table. Absent cells are
// simply not stored.
type Table struct {
	sampleIDs  []string
	categories []string

	sampleIndex   map[string]int
	categoryIndex map[string]int

	// values[sampleID][category] = value; null values are never stored
	values map[string]map[string]string
}

// NewTable creates an empty table with the given category order.
func NewTable(categories []string) *Table {
	t := &Table{
		categories:    append([]string(nil), categories...),
		sampleIndex:   make(map[string]int),
		categoryIndex: make(map[string]int, len(categories)),
		values:        make(map[string]map[string]string),
	}
	for i, c := range t.categories {
		t.categoryIndex[c] = i
	}
	return t
}

// ParseTSV reads a metadata table from tab-separated text. The header must
// contain the #SampleID column; it becomes the row key and is not listed
// among the categories. Null-valued cells are dropped at parse time.
func ParseTSV(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read metadata header: %w", err)
		}
		return nil, fmt.Errorf("empty metadata input")
	}

	header := strings.Split(scanner.Text(), "\t")
	idIdx := -1
	for i, col := range header {
		if col == IDColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("metadata header missing %s column", IDColumn)
	}

	categories := make([]string, 0, len(header)-1)
	for i, col := range header {
		if i == idIdx {
			continue
		}
		categories = append(categories, col)
	}

	t := NewTable(categories)

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		if len(cells) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNo, len(header), len(cells))
		}

		id := cells[idIdx]
		row := make(map[string]string, len(categories))
		for i, cell := range cells {
			if i == idIdx || IsNull(cell) {
				continue
			}
			row[header[i]] = cell
		}
		if err := t.AddSample(id, row); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	return t, nil
}

// AddSample appends a sample row. Null values in the row are dropped.
// Values under categories the table does not know yet extend the category
// axis.
func (t *Table) AddSample(id string, row map[string]string) error {
	if _, dup := t.sampleIndex[id]; dup {
		return fmt.Errorf("duplicate sample identifier %q", id)
	}
	t.sampleIndex[id] = len(t.sampleIDs)
	t.sampleIDs = append(t.sampleIDs, id)

	stored := make(map[string]string, len(row))
	for category, value := range row {
		if IsNull(value) {
			continue
		}
		if _, known := t.categoryIndex[category]; !known {
			t.categoryIndex[category] = len(t.categories)
			t.categories = append(t.categories, category)
		}
		stored[category] = value
	}
	t.values[id] = stored
	return nil
}

// SampleIDs returns the sample axis in order. The slice is shared; do not
// mutate.
func (t *Table) SampleIDs() []string {
	return t.sampleIDs
}

// Categories returns the category axis in order. The slice is shared; do
// not mutate.
func (t *Table) Categories() []string {
	return t.categories
}

// NumSamples returns the number of samples.
func (t *Table) NumSamples() int {
	return len(t.sampleIDs)
}

// HasSample reports whether the table has a row for id.
func (t *Table) HasSample(id string) bool {
	_, ok := t.sampleIndex[id]
	return ok
}

// HasCategory reports whether the category axis contains name.
func (t *Table) HasCategory(name string) bool {
	_, ok := t.categoryIndex[name]
	return ok
}

// Get returns the stored value for (sample, category). The boolean is
// false for absent cells.
func (t *Table) Get(sample, category string) (string, bool) {
	value, ok := t.values[sample][category]
	return value, ok
}

// SampleValues returns the stored (non-null) values for one sample.
func (t *Table) SampleValues(sample string) map[string]string {
	out := make(map[string]string, len(t.values[sample]))
	for category, value := range t.values[sample] {
		out[category] = value
	}
	return out
}

// CategoryValues returns sampleID -> value for every sample with a stored
// value in the category.
func (t *Table) CategoryValues(category string) map[string]string {
	out := make(map[string]string)
	for sample, row := range t.values {
		if value, ok := row[category]; ok {
			out[sample] = value
		}
	}
	return out
}

// Restrict returns a new table limited to the given categories, keeping
// the sample axis. Unknown categories are an error.
func (t *Table) Restrict(categories ...string) (*Table, error) {
	for _, category := range categories {
		if _, ok := t.categoryIndex[category]; !ok {
			return nil, fmt.Errorf("unknown category %q", category)
		}
	}
	out := NewTable(categories)
	for _, sample := range t.sampleIDs {
		row := make(map[string]string, len(categories))
		for _, category := range categories {
			if value, ok := t.values[sample][category]; ok {
				row[category] = value
			}
		}
		if err := out.AddSample(sample, row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CommonCategories returns the categories holding a stored value for
// every sample in the table, in axis order.
func (t *Table) CommonCategories() []string {
	common := make([]string, 0, len(t.categories))
	for _, category := range t.categories {
		populated := true
		for _, sample := range t.sampleIDs {
			if _, ok := t.values[sample][category]; !ok {
				populated = false
				break
			}
		}
		if populated {
			common = append(common, category)
		}
	}
	return common
}

// SortSampleOrder reorders the sample axis to match order, which must be
// a permutation of the current sample identifiers.
func (t *Table) SortSampleOrder(order []string) error {
	if len(order) != len(t.sampleIDs) {
		return fmt.Errorf("order has %d identifiers, table has %d", len(order), len(t.sampleIDs))
	}
	index := make(map[string]int, len(order))
	for i, id := range order {
		if _, ok := t.sampleIndex[id]; !ok {
			return fmt.Errorf("unknown sample identifier %q in order", id)
		}
		if _, dup := index[id]; dup {
			return fmt.Errorf("duplicate sample identifier %q in order", id)
		}
		index[id] = i
	}
	t.sampleIDs = append([]string(nil), order...)
	t.sampleIndex = index
	return nil
}

// SortedSampleIDs returns the sample identifiers in lexicographic order.
func (t *Table) SortedSampleIDs() []string {
	ids := append([]string(nil), t.sampleIDs...)
	sort.Strings(ids)
	return ids
}

// WriteTSV writes the table as tab-separated text with a #SampleID key
// column. Absent cells are rendered with the sentinel (Unspecified when
// empty).
func (t *Table) WriteTSV(w io.Writer, sentinel string) error {
	if sentinel == "" {
		sentinel = Unspecified
	}

	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(IDColumn); err != nil {
		return err
	}
	for _, category := range t.categories {
		if _, err := bw.WriteString("\t" + category); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	for _, sample := range t.sampleIDs {
		if _, err := bw.WriteString(sample); err != nil {
			return err
		}
		for _, category := range t.categories {
			cell, ok := t.values[sample][category]
			if !ok {
				cell = sentinel
			}
			if _, err := bw.WriteString("\t" + cell); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}
