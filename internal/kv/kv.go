// Package kv provides the typed, corruption tolerant key-value store that every
// inkstand collection is persisted through.
//
// Values are JSON documents. Reads never fail: an absent key, an empty value, a
// backend error or an undecodable document all yield the caller's default.
// Writes are fire-and-forget: failures are logged and counted, never returned.
package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/metrics"
)

// ErrNotFound is returned by a Backend when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Backend is a raw byte-oriented key-value store.
type Backend interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes all keys in a single call. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Close releases backend resources.
	Close() error
}

// Store namespaces keys with a prefix and adds decoding, logging and metrics
// on top of a Backend.
type Store struct {
	backend Backend
	prefix  string
	logger  zerolog.Logger
	metrics metrics.Recorder
}

// NewStore creates a new Store.
func NewStore(backend Backend, prefix string, logger zerolog.Logger, rec metrics.Recorder) *Store {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  logger.With().Str("component", "kv").Logger(),
		metrics: rec,
	}
}

// Key returns the physical key for a logical name.
func (s *Store) Key(name string) string {
	return s.prefix + name
}

// Backend exposes the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// GetRaw returns the stored document for name, or nil if it is absent or unreadable.
func (s *Store) GetRaw(ctx context.Context, name string) []byte {
	data, err := s.backend.Get(ctx, s.Key(name))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().Err(err).Str("key", name).Msg("failed to read key")
			s.metrics.RecordReadFailure(name)
		}
		return nil
	}
	return data
}

// SetRaw writes an already encoded document. Failures are logged and swallowed.
func (s *Store) SetRaw(ctx context.Context, name string, data []byte) {
	if err := s.backend.Set(ctx, s.Key(name), data); err != nil {
		s.logger.Error().Err(err).Str("key", name).Msg("failed to write key")
		s.metrics.RecordWriteFailure(name)
	}
}

// Remove deletes the named keys in one backend call. Failures are logged and swallowed.
func (s *Store) Remove(ctx context.Context, names ...string) {
	if len(names) == 0 {
		return
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.Key(name)
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.logger.Error().Err(err).Strs("keys", names).Msg("failed to remove keys")
		for _, name := range names {
			s.metrics.RecordWriteFailure(name)
		}
	}
}

// Get decodes the document stored under name into a T.
// It returns def when the key is absent, empty or not decodable as T.
func Get[T any](ctx context.Context, s *Store, name string, def T) T {
	data := s.GetRaw(ctx, name)
	if len(data) == 0 {
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn().Err(err).Str("key", name).Msg("discarding undecodable value")
		s.metrics.RecordDecodeFailure(name)
		return def
	}
	return v
}

// Set encodes v and stores it under name. Failures are logged and swallowed.
func Set[T any](ctx context.Context, s *Store, name string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Str("key", name).Msg("failed to encode value")
		s.metrics.RecordWriteFailure(name)
		return
	}
	s.SetRaw(ctx, name, data)
}
