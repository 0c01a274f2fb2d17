package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Source reports where a collection was read from.
type Source string

const (
	SourceStored  Source = "stored"
	SourceDefault Source = "default"
)

const tracerName = "github.com/digitalbiztech/bizsite/content"

// Store is the data-access facade for content collections. Reads prefer the
// edited copy in the KV, then the bundled defaults. Results are cached with a
// TTL and invalidated on every write.
type Store struct {
	kv       KV
	defaults fs.FS
	logger   *zap.Logger
	tracer   trace.Tracer
	ttl      time.Duration
	onSave   func(Kind)

	mu       sync.RWMutex
	entries  map[Kind]cacheEntry
	fallback map[Kind][]byte
}

type cacheEntry struct {
	data    []byte
	source  Source
	fetched time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for recoverable read failures.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithCacheTTL sets how long a loaded collection is served from memory.
// A zero TTL disables caching.
func WithCacheTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// WithSaveHook registers fn to run after every successful save or reset.
func WithSaveHook(fn func(Kind)) StoreOption {
	return func(s *Store) { s.onSave = fn }
}

// NewStore returns a Store reading edits from kv and defaults from the
// <kind>.json files in defaults.
func NewStore(kv KV, defaults fs.FS, opts ...StoreOption) *Store {
	s := &Store{
		kv:       kv,
		defaults: defaults,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
		ttl:      5 * time.Minute,
		entries:  make(map[Kind]cacheEntry),
		fallback: make(map[Kind][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) cached(kind Kind) (cacheEntry, bool) {
	e, ok := s.entries[kind]
	if !ok || s.ttl <= 0 || time.Since(e.fetched) >= s.ttl {
		return cacheEntry{}, false
	}
	return e, true
}

// Raw returns the JSON array for kind and where it came from.
func (s *Store) Raw(ctx context.Context, kind Kind) ([]byte, Source, error) {
	s.mu.RLock()
	if e, ok := s.cached(kind); ok {
		s.mu.RUnlock()
		return e.data, e.source, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.cached(kind); ok {
		return e.data, e.source, nil
	}
	data, src, err := s.load(ctx, kind)
	if err != nil {
		return nil, "", err
	}
	s.entries[kind] = cacheEntry{data: data, source: src, fetched: time.Now()}
	return data, src, nil
}

// load must be called with s.mu held for writing.
func (s *Store) load(ctx context.Context, kind Kind) ([]byte, Source, error) {
	ctx, span := s.tracer.Start(ctx, "content.load", trace.WithAttributes(attribute.String("content.kind", string(kind))))
	defer span.End()

	stored, err := s.kv.Get(ctx, kind.StorageKey())
	switch {
	case err == nil:
		var records []json.RawMessage
		if jerr := json.Unmarshal(stored, &records); jerr == nil {
			span.SetAttributes(attribute.String("content.source", string(SourceStored)))
			return stored, SourceStored, nil
		} else {
			s.logger.Error("stored collection is not valid JSON, using defaults",
				zap.String("kind", string(kind)), zap.Error(jerr))
		}
	case errors.Is(err, ErrNotFound):
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "kv get")
		return nil, "", err
	}
	span.SetAttributes(attribute.String("content.source", string(SourceDefault)))
	return s.defaultsLocked(kind), SourceDefault, nil
}

// defaultsLocked must be called with s.mu held for writing.
func (s *Store) defaultsLocked(kind Kind) []byte {
	if data, ok := s.fallback[kind]; ok {
		return data
	}
	data := []byte("[]")
	if s.defaults != nil {
		raw, err := fs.ReadFile(s.defaults, kind.DefaultFile())
		switch {
		case err == nil:
			var records []json.RawMessage
			if jerr := json.Unmarshal(raw, &records); jerr != nil {
				s.logger.Error("default collection is not valid JSON",
					zap.String("file", kind.DefaultFile()), zap.Error(jerr))
			} else {
				data = raw
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			s.logger.Warn("read default collection", zap.String("file", kind.DefaultFile()), zap.Error(err))
		}
	}
	s.fallback[kind] = data
	return data
}

func (s *Store) defaultData(kind Kind) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultsLocked(kind)
}

// List decodes the collection for kind into a slice of T. A stored copy that
// does not decode into T is logged and the defaults are used instead.
func List[T any](ctx context.Context, s *Store, kind Kind) ([]T, error) {
	data, src, err := s.Raw(ctx, kind)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		if src != SourceStored {
			return nil, fmt.Errorf("decode %s defaults: %w", kind, err)
		}
		s.logger.Error("stored collection does not match record type, using defaults",
			zap.String("kind", string(kind)), zap.Error(err))
		items = nil
		if err := json.Unmarshal(s.defaultData(kind), &items); err != nil {
			return nil, fmt.Errorf("decode %s defaults: %w", kind, err)
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save replaces the whole collection for kind.
func Save[T any](ctx context.Context, s *Store, kind Kind, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return s.put(ctx, kind, data)
}

// Append adds item to the end of the current collection.
func Append[T any](ctx context.Context, s *Store, kind Kind, item T) error {
	items, err := List[T](ctx, s, kind)
	if err != nil {
		return err
	}
	return Save(ctx, s, kind, append(items, item))
}

func (s *Store) put(ctx context.Context, kind Kind, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "content.save", trace.WithAttributes(
		attribute.String("content.kind", string(kind)),
		attribute.Int("content.bytes", len(data)),
	))
	defer span.End()

	if err := s.kv.Put(ctx, kind.StorageKey(), data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "kv put")
		return err
	}
	s.Invalidate(kind)
	if s.onSave != nil {
		s.onSave(kind)
	}
	return nil
}

// Reset removes the stored copy so the defaults are served again.
func (s *Store) Reset(ctx context.Context, kind Kind) error {
	if err := s.kv.Delete(ctx, kind.StorageKey()); err != nil {
		return err
	}
	s.Invalidate(kind)
	if s.onSave != nil {
		s.onSave(kind)
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context, kind Kind) (int, error) {
	data, _, err := s.Raw(ctx, kind)
	if err != nil {
		return 0, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Source reports whether kind is served from the stored copy or defaults.
func (s *Store) Source(ctx context.Context, kind Kind) (Source, error) {
	_, src, err := s.Raw(ctx, kind)
	return src, err
}

// Invalidate drops the cached collection for kind.
func (s *Store) Invalidate(kind Kind) {
	s.mu.Lock()
	delete(s.entries, kind)
	s.mu.Unlock()
}

// InvalidateDefaults drops every cached collection and the parsed defaults,
// so the next read goes back to the default files.
func (s *Store) InvalidateDefaults() {
	s.mu.Lock()
	s.entries = make(map[Kind]cacheEntry)
	s.fallback = make(map[Kind][]byte)
	s.mu.Unlock()
}
