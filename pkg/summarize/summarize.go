// Package summarize reports on what has been loaded into the store.
package summarize

import (
	"context"
	"fmt"
	"sort"

	"github.com/adswafford/redbiom/internal/keys"
	"github.com/adswafford/redbiom/pkg/kv"
)

// ContextSummary describes one loaded context.
type ContextSummary struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Samples     int    `json:"samples" yaml:"samples"`
	Features    int    `json:"features" yaml:"features"`
}

// Contexts lists every known context with the number of samples and
// features loaded into it, sorted by name.
func Contexts(ctx context.Context, store kv.Store) ([]ContextSummary, error) {
	known, err := store.HGetAll(ctx, keys.Contexts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}

	summaries := make([]ContextSummary, 0, len(known))
	for name, description := range known {
		samples, err := store.SCard(ctx, keys.ContextSamples(name))
		if err != nil {
			return nil, fmt.Errorf("failed to count samples in %q: %w", name, err)
		}
		features, err := store.SCard(ctx, keys.ContextFeatures(name))
		if err != nil {
			return nil, fmt.Errorf("failed to count features in %q: %w", name, err)
		}
		summaries = append(summaries, ContextSummary{
			Name:        name,
			Description: description,
			Samples:     samples,
			Features:    features,
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// MetadataSummary describes the metadata corpus.
type MetadataSummary struct {
	Samples    int `json:"samples" yaml:"samples"`
	Categories int `json:"categories" yaml:"categories"`
}

// Metadata reports the size of the loaded metadata corpus.
func Metadata(ctx context.Context, store kv.Store) (MetadataSummary, error) {
	samples, err := store.SCard(ctx, keys.MetadataSamples)
	if err != nil {
		return MetadataSummary{}, fmt.Errorf("failed to count metadata samples: %w", err)
	}
	categories, err := store.SCard(ctx, keys.MetadataCategories)
	if err != nil {
		return MetadataSummary{}, fmt.Errorf("failed to count categories: %w", err)
	}
	return MetadataSummary{Samples: samples, Categories: categories}, nil
}
