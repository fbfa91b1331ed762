// Package admin implements the load side of redbiom: registering
// contexts and ingesting sample data and sample metadata into the
// key-value store.
package admin

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/adswafford/redbiom/internal/keys"
	"github.com/adswafford/redbiom/internal/logger"
	"github.com/adswafford/redbiom/pkg/biom"
	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/metadata"
)

// ErrUnknownContext is returned when sample data is loaded into a context
// that has not been created.
var ErrUnknownContext = errors.New("unknown context")

// ErrInvalidName is returned for context names or tags that would break
// the key layout.
var ErrInvalidName = errors.New("invalid name")

// loadsKey is the hash of load audit records (load ID -> summary).
const loadsKey = "state:loads"

// Context names become key prefixes, so they must stay clear of the
// reserved namespaces and the ':' separator. Tags additionally must not
// contain '_', the stored-identifier separator.
var contextNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var reservedPrefixes = map[string]struct{}{
	"state":    {},
	"metadata": {},
}

// ValidContextName reports whether name is usable as a context.
func ValidContextName(name string) bool {
	if !contextNameRe.MatchString(name) {
		return false
	}
	_, reserved := reservedPrefixes[name]
	return !reserved
}

// CreateContext registers a named context with a description. Creating an
// existing context updates its description.
func CreateContext(ctx context.Context, store kv.Store, name, description string) error {
	if !ValidContextName(name) {
		return fmt.Errorf("%w: context %q", ErrInvalidName, name)
	}

	if err := store.HSet(ctx, keys.Contexts, name, description); err != nil {
		return fmt.Errorf("failed to create context %q: %w", name, err)
	}

	logger.Info("context created", logger.KeyContext, name)
	return nil
}

// LoadSampleMetadata ingests a metadata table. Every non-null cell is
// written to its category hash keyed by sample ID; null cells are never
// persisted. Returns the number of samples loaded.
func LoadSampleMetadata(ctx context.Context, store kv.Store, table *metadata.Table) (int, error) {
	start := time.Now()

	for _, category := range table.Categories() {
		values := table.CategoryValues(category)
		if len(values) == 0 {
			continue
		}
		if err := store.HSetMulti(ctx, keys.MetadataCategory(category), values); err != nil {
			return 0, fmt.Errorf("failed to load category %q: %w", category, err)
		}
	}

	if len(table.Categories()) > 0 {
		if err := store.SAdd(ctx, keys.MetadataCategories, table.Categories()...); err != nil {
			return 0, fmt.Errorf("failed to register categories: %w", err)
		}
	}
	if table.NumSamples() > 0 {
		if err := store.SAdd(ctx, keys.MetadataSamples, table.SampleIDs()...); err != nil {
			return 0, fmt.Errorf("failed to register samples: %w", err)
		}
	}

	if err := recordLoad(ctx, store, fmt.Sprintf("metadata: %d samples, %d categories",
		table.NumSamples(), len(table.Categories()))); err != nil {
		return 0, err
	}

	logger.Info("sample metadata loaded",
		logger.KeySamples, table.NumSamples(),
		"categories", len(table.Categories()),
		logger.KeyDuration, time.Since(start).Milliseconds())

	return table.NumSamples(), nil
}

// LoadSampleData ingests a count table into a context under a tag. The
// context must already exist. An empty tag loads samples as UNTAGGED.
// Each sample's nonzero counts are stored under the tagged identifier
// <tag>_<id>. Returns the number of samples loaded.
func LoadSampleData(ctx context.Context, store kv.Store, table *biom.Table, contextName, tag string) (int, error) {
	start := time.Now()

	if tag == "" {
		tag = keys.DefaultTag
	}
	if !contextNameRe.MatchString(tag) || containsUnderscore(tag) {
		return 0, fmt.Errorf("%w: tag %q", ErrInvalidName, tag)
	}

	_, exists, err := store.HGet(ctx, keys.Contexts, contextName)
	if err != nil {
		return 0, fmt.Errorf("failed to look up context %q: %w", contextName, err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: %q", ErrUnknownContext, contextName)
	}

	tagged := make([]string, 0, table.NumSamples())
	for _, sample := range table.SampleIDs() {
		counts := table.SampleCounts(sample)
		if len(counts) == 0 {
			continue
		}

		fields := make(map[string]string, len(counts))
		for feature, count := range counts {
			fields[feature] = strconv.FormatFloat(count, 'g', -1, 64)
		}

		taggedID := keys.Tagged(tag, sample)
		if err := store.HSetMulti(ctx, keys.ContextSampleData(contextName, taggedID), fields); err != nil {
			return 0, fmt.Errorf("failed to load sample %q: %w", sample, err)
		}
		tagged = append(tagged, taggedID)
	}

	if len(tagged) > 0 {
		if err := store.SAdd(ctx, keys.ContextSamples(contextName), tagged...); err != nil {
			return 0, fmt.Errorf("failed to register samples in context %q: %w", contextName, err)
		}
	}
	if table.NumFeatures() > 0 {
		if err := store.SAdd(ctx, keys.ContextFeatures(contextName), table.FeatureIDs()...); err != nil {
			return 0, fmt.Errorf("failed to register features in context %q: %w", contextName, err)
		}
	}

	if err := recordLoad(ctx, store, fmt.Sprintf("data: %d samples into %s tag %s",
		len(tagged), contextName, tag)); err != nil {
		return 0, err
	}

	logger.Info("sample data loaded",
		logger.KeyContext, contextName,
		logger.KeyTag, tag,
		logger.KeySamples, len(tagged),
		logger.KeyFeatures, table.NumFeatures(),
		logger.KeyDuration, time.Since(start).Milliseconds())

	return len(tagged), nil
}

// recordLoad appends an audit record for a completed load.
func recordLoad(ctx context.Context, store kv.Store, summary string) error {
	id := uuid.NewString()
	record := time.Now().UTC().Format(time.RFC3339) + " " + summary
	if err := store.HSet(ctx, loadsKey, id, record); err != nil {
		return fmt.Errorf("failed to record load: %w", err)
	}
	return nil
}

func containsUnderscore(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			return true
		}
	}
	return false
}
