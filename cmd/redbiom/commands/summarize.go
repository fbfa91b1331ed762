package commands

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adswafford/redbiom/internal/cli/output"
	"github.com/adswafford/redbiom/pkg/fetch"
	"github.com/adswafford/redbiom/pkg/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize what the store holds",
}

var summarizeCategories []string

var summarizeContextsCmd = &cobra.Command{
	Use:   "contexts",
	Short: "List the known contexts with their sample and feature counts",
	RunE:  runSummarizeContexts,
}

var summarizeMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Report how many samples carry a value per metadata category",
	Long: `Report per-category sample counts. Without --category, all known
categories are reported. Categories never loaded report zero.`,
	RunE: runSummarizeMetadata,
}

func init() {
	summarizeMetadataCmd.Flags().StringSliceVar(&summarizeCategories, "category", nil, "Restrict the report to these categories")

	summarizeCmd.AddCommand(summarizeContextsCmd)
	summarizeCmd.AddCommand(summarizeMetadataCmd)
}

// contextTable renders context summaries for table output.
type contextTable []summarize.ContextSummary

func (t contextTable) Headers() []string {
	return []string{"NAME", "DESCRIPTION", "SAMPLES", "FEATURES"}
}

func (t contextTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{
			c.Name,
			c.Description,
			strconv.Itoa(c.Samples),
			strconv.Itoa(c.Features),
		})
	}
	return rows
}

func runSummarizeContexts(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summaries, err := summarize.Contexts(cmd.Context(), store)
	if err != nil {
		return err
	}

	printer, err := newPrinter()
	if err != nil {
		return err
	}
	if printer.Format() == output.FormatTable {
		return printer.Print(contextTable(summaries))
	}
	return printer.Print(summaries)
}

func runSummarizeMetadata(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	counts, err := fetch.SampleCountsPerCategory(cmd.Context(), store, summarizeCategories)
	if err != nil {
		return err
	}

	printer, err := newPrinter()
	if err != nil {
		return err
	}
	if printer.Format() != output.FormatTable {
		return printer.Print(counts)
	}

	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	table := output.NewTableData("CATEGORY", "SAMPLES")
	for _, category := range categories {
		table.AddRow(category, strconv.Itoa(counts[category]))
	}
	return printer.Print(table)
}
