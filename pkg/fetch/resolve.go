package fetch

import (
	"context"
	"fmt"

	"github.com/adswafford/redbiom/internal/keys"
	"github.com/adswafford/redbiom/pkg/kv"
)

// resolved is one stored sample matched by a request.
type resolved struct {
	stored  string // stored identifier, <tag>_<id>
	base    string // base sample identifier
	tag     string // load tag
	fetched string // externally visible identifier, <id>.<tag>
	request string // the request identifier that matched
}

// resolveInContext matches requested identifiers against the tagged
// identifiers stored in a context. A request matches either a stored
// identifier verbatim or, more commonly, the base identifier of one or
// more tagged loads.
//
// The second return lists request identifiers that did not resolve
// uniquely: missing entirely, or ambiguous across multiple tags.
func resolveInContext(ctx context.Context, store kv.Store, contextName string, requests []string) ([]resolved, []string, error) {
	represented, err := store.SMembers(ctx, keys.ContextSamples(contextName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list samples in context %q: %w", contextName, err)
	}

	storedSet := make(map[string]struct{}, len(represented))
	byBase := make(map[string][]string, len(represented))
	for _, stored := range represented {
		storedSet[stored] = struct{}{}
		_, base, ok := keys.SplitTagged(stored)
		if !ok {
			continue
		}
		byBase[base] = append(byBase[base], stored)
	}

	var matches []resolved
	var unresolved []string
	seen := make(map[string]struct{})

	for _, request := range requests {
		var stored []string
		if _, ok := storedSet[request]; ok {
			stored = []string{request}
		} else {
			stored = byBase[request]
		}

		if len(stored) != 1 {
			unresolved = append(unresolved, request)
		}
		for _, s := range stored {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}

			tag, base, _ := keys.SplitTagged(s)
			matches = append(matches, resolved{
				stored:  s,
				base:    base,
				tag:     tag,
				fetched: keys.Fetched(base, tag),
				request: request,
			})
		}
	}

	return matches, unresolved, nil
}
