// Package fetch implements the read side of redbiom: recovering count
// tables and metadata tables for sets of samples from the key-value
// store.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/adswafford/redbiom/internal/keys"
	"github.com/adswafford/redbiom/internal/logger"
	"github.com/adswafford/redbiom/pkg/biom"
	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/metadata"
)

// TableFromSamples recovers the count table for the requested samples
// within a context.
//
// Requested identifiers may be base sample IDs (matching every tagged
// load of the sample) or fully tagged stored IDs. The result's sample
// axis uses <id>.<tag> identifiers; its order is unspecified. Features
// are restricted to those with at least one nonzero count among the
// requested samples.
//
// The identifier map relates each requested identifier that resolved to
// the stored identifiers it matched (one-to-many under multiple tags).
//
// Returns ErrNoSamplesInContext when none of the requested samples exist
// in the context.
func TableFromSamples(ctx context.Context, store kv.Store, contextName string, samples []string) (*biom.Table, map[string][]string, error) {
	start := time.Now()

	matches, _, err := resolveInContext(ctx, store, contextName, samples)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoSamplesInContext, contextName)
	}

	idMap := make(map[string][]string)
	sampleCounts := make(map[string]map[string]float64, len(matches))

	for _, m := range matches {
		fields, err := store.HGetAll(ctx, keys.ContextSampleData(contextName, m.stored))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch sample %q: %w", m.stored, err)
		}

		counts := make(map[string]float64, len(fields))
		for feature, raw := range fields {
			count, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("corrupt count for sample %q feature %q: %w", m.stored, feature, err)
			}
			counts[feature] = count
		}

		sampleCounts[m.fetched] = counts
		idMap[m.request] = append(idMap[m.request], m.stored)
	}

	table := biom.FromSampleCounts(sampleCounts)

	logger.Debug("fetched count table",
		logger.KeyContext, contextName,
		logger.KeySamples, table.NumSamples(),
		logger.KeyFeatures, table.NumFeatures(),
		logger.KeyDuration, time.Since(start).Milliseconds())

	return table, idMap, nil
}

// MetadataOptions controls SampleMetadata.
type MetadataOptions struct {
	// Context scopes resolution to samples loaded into the named context.
	// When set, stored identifiers carry tags and result rows are keyed
	// <id>.<tag>. Empty means resolution against the global metadata
	// index.
	Context string

	// Common keeps only the categories with a stored value for every
	// matched sample.
	Common bool

	// RestrictTo limits the result to an explicit category list. Unknown
	// categories yield ErrUnknownCategory.
	RestrictTo []string
}

// SampleMetadata recovers the metadata table for the requested samples.
//
// Without a context, identifiers are matched directly against the global
// metadata index. With a context, tagged loads are matched by base
// identifier and rows come back keyed <id>.<tag>.
//
// The returned list holds requested identifiers that did not resolve
// uniquely (missing, or ambiguous across tags).
//
// Returns ErrNoSampleMetadata when nothing resolves, and
// ErrUnknownCategory for unknown RestrictTo entries.
func SampleMetadata(ctx context.Context, store kv.Store, samples []string, opts MetadataOptions) (*metadata.Table, []string, error) {
	start := time.Now()

	// rows maps the output row key to the base identifier metadata is
	// stored under.
	type row struct {
		out  string
		base string
	}
	var rows []row
	var unresolved []string

	if opts.Context != "" {
		matches, missing, err := resolveInContext(ctx, store, opts.Context, samples)
		if err != nil {
			return nil, nil, err
		}
		unresolved = missing
		for _, m := range matches {
			has, err := store.SIsMember(ctx, keys.MetadataSamples, m.base)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to check metadata for %q: %w", m.base, err)
			}
			if has {
				rows = append(rows, row{out: m.fetched, base: m.base})
			}
		}
	} else {
		seen := make(map[string]struct{}, len(samples))
		for _, id := range samples {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			has, err := store.SIsMember(ctx, keys.MetadataSamples, id)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to check metadata for %q: %w", id, err)
			}
			if has {
				rows = append(rows, row{out: id, base: id})
			} else {
				unresolved = append(unresolved, id)
			}
		}
	}

	if len(rows) == 0 {
		if opts.Context != "" {
			return nil, nil, fmt.Errorf("%w in context %q", ErrNoSampleMetadata, opts.Context)
		}
		return nil, nil, ErrNoSampleMetadata
	}

	categories, err := resolveCategories(ctx, store, opts.RestrictTo)
	if err != nil {
		return nil, nil, err
	}

	bases := make([]string, len(rows))
	for i, r := range rows {
		bases[i] = r.base
	}

	table := metadata.NewTable(categories)
	cells := make(map[string]map[string]string, len(rows))
	for _, r := range rows {
		cells[r.out] = make(map[string]string)
	}

	for _, category := range categories {
		values, err := store.HMGet(ctx, keys.MetadataCategory(category), bases...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch category %q: %w", category, err)
		}
		for _, r := range rows {
			if value, ok := values[r.base]; ok {
				cells[r.out][category] = value
			}
		}
	}

	for _, r := range rows {
		if err := table.AddSample(r.out, cells[r.out]); err != nil {
			return nil, nil, err
		}
	}

	if opts.Common {
		table, err = table.Restrict(table.CommonCategories()...)
		if err != nil {
			return nil, nil, err
		}
	} else if len(opts.RestrictTo) == 0 {
		// Drop categories with no stored value for any matched sample;
		// columns are returned on an any-present basis.
		present := make([]string, 0, len(table.Categories()))
		for _, category := range table.Categories() {
			if len(table.CategoryValues(category)) > 0 {
				present = append(present, category)
			}
		}
		table, err = table.Restrict(present...)
		if err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("fetched sample metadata",
		logger.KeyContext, opts.Context,
		logger.KeySamples, table.NumSamples(),
		"categories", len(table.Categories()),
		logger.KeyDuration, time.Since(start).Milliseconds())

	return table, unresolved, nil
}

// resolveCategories validates an explicit restriction list or returns
// every known category sorted.
func resolveCategories(ctx context.Context, store kv.Store, restrictTo []string) ([]string, error) {
	if len(restrictTo) > 0 {
		for _, category := range restrictTo {
			known, err := store.SIsMember(ctx, keys.MetadataCategories, category)
			if err != nil {
				return nil, fmt.Errorf("failed to check category %q: %w", category, err)
			}
			if !known {
				return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
			}
		}
		return append([]string(nil), restrictTo...), nil
	}

	categories, err := store.SMembers(ctx, keys.MetadataCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	sort.Strings(categories)
	return categories, nil
}

// SampleCountsPerCategory reports, per category, how many samples hold a
// stored (non-null) value. A nil or empty category list means every known
// category. Unknown names report a count of 0; the store cannot
// distinguish an unknown category from one with no stored values.
func SampleCountsPerCategory(ctx context.Context, store kv.Store, categories []string) (map[string]int, error) {
	if len(categories) == 0 {
		known, err := store.SMembers(ctx, keys.MetadataCategories)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		categories = known
	}

	counts := make(map[string]int, len(categories))
	for _, category := range categories {
		n, err := store.HLen(ctx, keys.MetadataCategory(category))
		if err != nil {
			return nil, fmt.Errorf("failed to count category %q: %w", category, err)
		}
		counts[category] = n
	}
	return counts, nil
}
