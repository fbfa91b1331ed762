package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"JSON":  FormatJSON,
		"yaml":  FormatYAML,
		"yml":   FormatYAML,
		" json": FormatJSON,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "invalid output format")
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("NAME", "SAMPLES")
	table.AddRow("test", "10")
	table.AddRow("other", "3")

	var buf strings.Builder
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "test")
	assert.Contains(t, out, "10")
}

func TestPrinterJSON(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf, FormatJSON)

	require.NoError(t, printer.Print(map[string]int{"LATITUDE": 10}))
	assert.Contains(t, buf.String(), `"LATITUDE": 10`)
}

func TestPrinterYAML(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf, FormatYAML)

	require.NoError(t, printer.Print(map[string]int{"LATITUDE": 10}))
	assert.Contains(t, buf.String(), "LATITUDE: 10")
}

func TestPrinterTableFallsBackToJSON(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf, FormatTable)

	// Data without a table rendering is emitted as JSON.
	require.NoError(t, printer.Print(map[string]int{"x": 1}))
	assert.Contains(t, buf.String(), `"x": 1`)
}
