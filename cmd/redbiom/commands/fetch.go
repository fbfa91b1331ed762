package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/adswafford/redbiom/pkg/fetch"
	"github.com/adswafford/redbiom/pkg/metadata"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Recover sample data and metadata",
}

var (
	fetchSamplesContext string
	fetchSamplesFrom    string
	fetchSamplesOutput  string

	fetchMetadataContext  string
	fetchMetadataFrom     string
	fetchMetadataOutput   string
	fetchMetadataCommon   bool
	fetchMetadataRestrict []string
)

var fetchSamplesCmd = &cobra.Command{
	Use:   "samples [SAMPLE...]",
	Short: "Recover a feature count table for the given samples",
	Long: `Recover the feature count table for the requested samples from a
context. Samples loaded under a tag are reported as "<id>.<tag>".
Identifiers can be passed as arguments or read one per line with --from
("-" for stdin). The table is written as classic tab-separated text.`,
	RunE: runFetchSamples,
}

var fetchSampleMetadataCmd = &cobra.Command{
	Use:   "sample-metadata [SAMPLE...]",
	Short: "Recover the metadata table for the given samples",
	Long: `Recover sample metadata. With --context, identifiers are resolved
within that context and reported as "<id>.<tag>". --common keeps only
categories known for every sample; --restrict-to keeps exactly the named
categories. Cells without a stored value are written as Unspecified.`,
	RunE: runFetchSampleMetadata,
}

func init() {
	fetchSamplesCmd.Flags().StringVar(&fetchSamplesContext, "context", "", "Context to fetch from (required)")
	fetchSamplesCmd.Flags().StringVar(&fetchSamplesFrom, "from", "", "File of sample identifiers, one per line (\"-\" for stdin)")
	fetchSamplesCmd.Flags().StringVar(&fetchSamplesOutput, "output-file", "", "Write the table here instead of stdout")
	_ = fetchSamplesCmd.MarkFlagRequired("context")

	fetchSampleMetadataCmd.Flags().StringVar(&fetchMetadataContext, "context", "", "Resolve identifiers within this context")
	fetchSampleMetadataCmd.Flags().StringVar(&fetchMetadataFrom, "from", "", "File of sample identifiers, one per line (\"-\" for stdin)")
	fetchSampleMetadataCmd.Flags().StringVar(&fetchMetadataOutput, "output-file", "", "Write the table here instead of stdout")
	fetchSampleMetadataCmd.Flags().BoolVar(&fetchMetadataCommon, "common", false, "Keep only categories present for every sample")
	fetchSampleMetadataCmd.Flags().StringSliceVar(&fetchMetadataRestrict, "restrict-to", nil, "Keep exactly these categories")

	fetchCmd.AddCommand(fetchSamplesCmd)
	fetchCmd.AddCommand(fetchSampleMetadataCmd)
}

func runFetchSamples(cmd *cobra.Command, args []string) error {
	samples, err := readSampleIDs(args, fetchSamplesFrom)
	if err != nil {
		return err
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	table, idMap, err := fetch.TableFromSamples(cmd.Context(), store, fetchSamplesContext, samples)
	if err != nil {
		return err
	}

	out, err := openOutput(fetchSamplesOutput)
	if err != nil {
		return err
	}
	if err := table.WriteTSV(out); err != nil {
		_ = closeOutput(out)
		return err
	}
	if err := closeOutput(out); err != nil {
		return err
	}

	// Report ambiguous identifiers so callers can disambiguate with tags.
	requested := make([]string, 0, len(idMap))
	for id := range idMap {
		requested = append(requested, id)
	}
	sort.Strings(requested)
	for _, id := range requested {
		if len(idMap[id]) > 1 {
			fmt.Fprintf(os.Stderr, "%s resolved to %d stored samples\n", id, len(idMap[id]))
		}
	}
	return nil
}

func runFetchSampleMetadata(cmd *cobra.Command, args []string) error {
	samples, err := readSampleIDs(args, fetchMetadataFrom)
	if err != nil {
		return err
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	table, unresolved, err := fetch.SampleMetadata(cmd.Context(), store, samples, fetch.MetadataOptions{
		Context:    fetchMetadataContext,
		Common:     fetchMetadataCommon,
		RestrictTo: fetchMetadataRestrict,
	})
	if err != nil {
		return err
	}

	out, err := openOutput(fetchMetadataOutput)
	if err != nil {
		return err
	}
	if err := table.WriteTSV(out, metadata.Unspecified); err != nil {
		_ = closeOutput(out)
		return err
	}
	if err := closeOutput(out); err != nil {
		return err
	}

	for _, id := range unresolved {
		fmt.Fprintf(os.Stderr, "%s did not resolve to a unique stored sample\n", id)
	}
	return nil
}
