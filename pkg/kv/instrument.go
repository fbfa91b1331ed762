package kv

import (
	"context"
	"time"
)

// OpObserver receives one observation per store command. Implementations
// live outside this package (pkg/metrics provides a Prometheus-backed one)
// so that store implementations carry no metrics dependency.
type OpObserver interface {
	// ObserveOp records a completed store command with its duration and
	// outcome.
	ObserveOp(command string, duration time.Duration, err error)
}

// Instrument wraps a Store so that every command is reported to obs.
// A nil observer returns the store unchanged.
func Instrument(s Store, obs OpObserver) Store {
	if obs == nil {
		return s
	}
	return &instrumentedStore{next: s, obs: obs}
}

// Unwrap returns the store beneath any instrumentation wrapper.
func Unwrap(s Store) Store {
	if w, ok := s.(*instrumentedStore); ok {
		return w.next
	}
	return s
}

type instrumentedStore struct {
	next Store
	obs  OpObserver
}

func (s *instrumentedStore) observe(command string, start time.Time, err error) {
	s.obs.ObserveOp(command, time.Since(start), err)
}

func (s *instrumentedStore) HSet(ctx context.Context, key, field, value string) error {
	start := time.Now()
	err := s.next.HSet(ctx, key, field, value)
	s.observe("HSET", start, err)
	return err
}

func (s *instrumentedStore) HSetMulti(ctx context.Context, key string, fields map[string]string) error {
	start := time.Now()
	err := s.next.HSetMulti(ctx, key, fields)
	s.observe("HSET", start, err)
	return err
}

func (s *instrumentedStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	start := time.Now()
	value, ok, err := s.next.HGet(ctx, key, field)
	s.observe("HGET", start, err)
	return value, ok, err
}

func (s *instrumentedStore) HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	start := time.Now()
	values, err := s.next.HMGet(ctx, key, fields...)
	s.observe("HMGET", start, err)
	return values, err
}

func (s *instrumentedStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	start := time.Now()
	values, err := s.next.HGetAll(ctx, key)
	s.observe("HGETALL", start, err)
	return values, err
}

func (s *instrumentedStore) HLen(ctx context.Context, key string) (int, error) {
	start := time.Now()
	n, err := s.next.HLen(ctx, key)
	s.observe("HLEN", start, err)
	return n, err
}

func (s *instrumentedStore) SAdd(ctx context.Context, key string, members ...string) error {
	start := time.Now()
	err := s.next.SAdd(ctx, key, members...)
	s.observe("SADD", start, err)
	return err
}

func (s *instrumentedStore) SMembers(ctx context.Context, key string) ([]string, error) {
	start := time.Now()
	members, err := s.next.SMembers(ctx, key)
	s.observe("SMEMBERS", start, err)
	return members, err
}

func (s *instrumentedStore) SCard(ctx context.Context, key string) (int, error) {
	start := time.Now()
	n, err := s.next.SCard(ctx, key)
	s.observe("SCARD", start, err)
	return n, err
}

func (s *instrumentedStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	start := time.Now()
	ok, err := s.next.SIsMember(ctx, key, member)
	s.observe("SISMEMBER", start, err)
	return ok, err
}

func (s *instrumentedStore) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := s.next.Exists(ctx, key)
	s.observe("EXISTS", start, err)
	return ok, err
}

func (s *instrumentedStore) FlushAll(ctx context.Context) error {
	start := time.Now()
	err := s.next.FlushAll(ctx)
	s.observe("FLUSHALL", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
