// Package badgerkv implements the kv.Store contract on an embedded
// BadgerDB database.
//
// Hashes and sets are flattened onto Badger's flat keyspace using
// NUL-separated composite keys:
//
//	h\x00<key>\x00<field> -> value    (hash entry)
//	s\x00<key>\x00<member> -> ""      (set member)
//
// The NUL separator keeps prefix scans unambiguous for any key that is
// itself NUL-free, which the kv contract guarantees.
package badgerkv

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

const (
	prefixHash byte = 'h'
	prefixSet  byte = 's'
)

// Store is a BadgerDB-backed kv.Store.
type Store struct {
	db *badger.DB
}

// Options configures a badgerkv Store.
type Options struct {
	// Path is the directory for the Badger value log and LSM tree.
	// Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory. Useful for tests.
	InMemory bool
}

// Open opens (creating if necessary) a Badger database at the configured
// path. Badger's own logger is silenced; operational logging happens at
// the redbiom layer.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithInMemory(opts.InMemory)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %q: %w", opts.Path, err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying Badger handle for metrics collection.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Close closes the underlying Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// hashKey builds the composite key for one hash field.
func hashKey(key, field string) []byte {
	return compositeKey(prefixHash, key, field)
}

// setKey builds the composite key for one set member.
func setKey(key, member string) []byte {
	return compositeKey(prefixSet, key, member)
}

func compositeKey(ns byte, key, sub string) []byte {
	buf := make([]byte, 0, 2+len(key)+1+len(sub))
	buf = append(buf, ns, 0)
	buf = append(buf, key...)
	buf = append(buf, 0)
	buf = append(buf, sub...)
	return buf
}

// scanPrefix builds the iteration prefix covering every entry of a hash
// or set.
func scanPrefix(ns byte, key string) []byte {
	buf := make([]byte, 0, 2+len(key)+1)
	buf = append(buf, ns, 0)
	buf = append(buf, key...)
	buf = append(buf, 0)
	return buf
}

// HSet stores field=value in the hash at key.
func (s *Store) HSet(ctx context.Context, key, field, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(hashKey(key, field), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("hset %s %s: %w", key, field, err)
	}
	return nil
}

// HSetMulti stores all fields in the hash at key in a single transaction.
func (s *Store) HSetMulti(ctx context.Context, key string, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for field, value := range fields {
			if err := txn.Set(hashKey(key, field), []byte(value)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("hset %s (%d fields): %w", key, len(fields), err)
	}
	return nil
}

// HGet returns the value of field in the hash at key.
func (s *Store) HGet(ctx context.Context, key, field string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value string
	var found bool

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hashKey(key, field))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("hget %s %s: %w", key, field, err)
	}
	return value, found, nil
}

// HMGet returns the present fields among the requested ones.
func (s *Store) HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(fields))

	err := s.db.View(func(txn *badger.Txn) error {
		for _, field := range fields {
			item, err := txn.Get(hashKey(key, field))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				values[field] = string(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hmget %s: %w", key, err)
	}
	return values, nil
}

// HGetAll returns every field of the hash at key.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := scanPrefix(prefixHash, key)
	values := make(map[string]string)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			field := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				values[field] = string(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return values, nil
}

// HLen returns the number of fields in the hash at key.
func (s *Store) HLen(ctx context.Context, key string) (int, error) {
	return s.countPrefix(ctx, scanPrefix(prefixHash, key))
}

// SAdd adds members to the set at key.
func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, member := range members {
			if err := txn.Set(setKey(key, member), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sadd %s (%d members): %w", key, len(members), err)
	}
	return nil
}

// SMembers returns all members of the set at key.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := scanPrefix(prefixSet, key)
	var members []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			members = append(members, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	return members, nil
}

// SCard returns the cardinality of the set at key.
func (s *Store) SCard(ctx context.Context, key string) (int, error) {
	return s.countPrefix(ctx, scanPrefix(prefixSet, key))
}

// SIsMember reports whether member is in the set at key.
func (s *Store) SIsMember(ctx context.Context, key, member string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(setKey(key, member))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("sismember %s %s: %w", key, member, err)
	}
	return found, nil
}

// Exists reports whether key holds a hash or a set with at least one entry.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		for _, prefix := range [][]byte{scanPrefix(prefixHash, key), scanPrefix(prefixSet, key)} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			it.Rewind()
			valid := it.Valid()
			it.Close()
			if valid {
				found = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return found, nil
}

// FlushAll drops every key in the database.
func (s *Store) FlushAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("flushall: %w", err)
	}
	return nil
}

func (s *Store) countPrefix(ctx context.Context, prefix []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", prefix, err)
	}
	return count, nil
}
