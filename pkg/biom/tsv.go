package biom

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseTSV reads a table in the classic tab-separated representation:
// one header row of sample identifiers (first cell is the feature axis
// label, conventionally "#OTU ID"), then one row per feature. A leading
// "# Constructed from biom file" comment line is tolerated.
func ParseTSV(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			continue
		}
		header = strings.Split(line, "\t")
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("table header needs at least one sample column")
	}

	sampleIDs := header[1:]

	var featureIDs []string
	type row struct {
		feature string
		counts  []float64
	}
	var rows []row

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

		counts := make([]float64, len(sampleIDs))
		for i, cell := range cells[1:] {
			count, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid count %q: %w", lineNo, cell, err)
			}
			counts[i] = count
		}
		featureIDs = append(featureIDs, cells[0])
		rows = append(rows, row{feature: cells[0], counts: counts})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	t, err := New(featureIDs, sampleIDs)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		for i, count := range r.counts {
			if count != 0 {
				t.mustSet(r.feature, sampleIDs[i], count)
			}
		}
	}
	return t, nil
}

// WriteTSV writes the table in the classic tab-separated representation.
func (t *Table) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("#OTU ID"); err != nil {
		return err
	}
	for _, sample := range t.sampleIDs {
		if _, err := bw.WriteString("\t" + sample); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	for _, feature := range t.featureIDs {
		if _, err := bw.WriteString(feature); err != nil {
			return err
		}
		for _, sample := range t.sampleIDs {
			cell := strconv.FormatFloat(t.counts[feature][sample], 'f', -1, 64)
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
