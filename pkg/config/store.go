package config

import (
	"fmt"

	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/kv/badgerkv"
	"github.com/adswafford/redbiom/pkg/kv/webdis"
)

// OpenStore opens the configured key-value backend. The observer, when
// non-nil, receives per-command latency observations (see pkg/metrics).
func OpenStore(cfg *Config, obs kv.OpObserver) (kv.Store, error) {
	var store kv.Store

	switch cfg.Store.Backend {
	case "badger":
		s, err := badgerkv.Open(badgerkv.Options{Path: cfg.Store.Badger.Path})
		if err != nil {
			return nil, err
		}
		store = s
	case "webdis":
		store = webdis.New(cfg.Store.Webdis.Host)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return kv.Instrument(store, obs), nil
}
