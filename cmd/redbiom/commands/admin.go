package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adswafford/redbiom/pkg/admin"
	"github.com/adswafford/redbiom/pkg/biom"
	"github.com/adswafford/redbiom/pkg/metadata"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Load data and manage contexts",
}

var (
	createContextDescription string

	loadMetadataFile string

	loadDataContext string
	loadDataTable   string
	loadDataTag     string
)

var createContextCmd = &cobra.Command{
	Use:   "create-context NAME",
	Short: "Register a new context",
	Long: `Register a named context. Contexts partition sample data so that the
same sample can be loaded under different processing parameters. Creating
a context that already exists is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateContext,
}

var loadSampleMetadataCmd = &cobra.Command{
	Use:   "load-sample-metadata",
	Short: "Load a sample metadata table",
	Long: `Load a tab-separated sample metadata table. The first column must be
the sample identifier. Null-like values (empty, "Unspecified", "NA" and
friends) are not stored.`,
	RunE: runLoadSampleMetadata,
}

var loadSampleDataCmd = &cobra.Command{
	Use:   "load-sample-data",
	Short: "Load a feature count table into a context",
	Long: `Load a tab-separated feature count table into an existing context.
Samples are stored under the given tag (default UNTAGGED) so the same
sample identifier can be loaded more than once.`,
	RunE: runLoadSampleData,
}

func init() {
	createContextCmd.Flags().StringVar(&createContextDescription, "description", "", "Human-readable context description")

	loadSampleMetadataCmd.Flags().StringVar(&loadMetadataFile, "metadata", "", "Path to the metadata TSV (required)")
	_ = loadSampleMetadataCmd.MarkFlagRequired("metadata")

	loadSampleDataCmd.Flags().StringVar(&loadDataContext, "context", "", "Context to load into (required)")
	loadSampleDataCmd.Flags().StringVar(&loadDataTable, "table", "", "Path to the count table TSV (required)")
	loadSampleDataCmd.Flags().StringVar(&loadDataTag, "tag", "", "Tag to store samples under (default UNTAGGED)")
	_ = loadSampleDataCmd.MarkFlagRequired("context")
	_ = loadSampleDataCmd.MarkFlagRequired("table")

	adminCmd.AddCommand(createContextCmd)
	adminCmd.AddCommand(loadSampleMetadataCmd)
	adminCmd.AddCommand(loadSampleDataCmd)
}

func runCreateContext(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := admin.CreateContext(cmd.Context(), store, args[0], createContextDescription); err != nil {
		return err
	}
	fmt.Printf("Context %q is ready\n", args[0])
	return nil
}

func runLoadSampleMetadata(cmd *cobra.Command, args []string) error {
	f, err := os.Open(loadMetadataFile)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	table, err := metadata.ParseTSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", loadMetadataFile, err)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := admin.LoadSampleMetadata(cmd.Context(), store, table)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded metadata for %d samples\n", n)
	return nil
}

func runLoadSampleData(cmd *cobra.Command, args []string) error {
	f, err := os.Open(loadDataTable)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	table, err := biom.ParseTSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", loadDataTable, err)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := admin.LoadSampleData(cmd.Context(), store, table, loadDataContext, loadDataTag)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d samples into %q\n", n, loadDataContext)
	return nil
}
