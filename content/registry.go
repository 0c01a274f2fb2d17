package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Normalizer is implemented by pointers to records that fill derived fields
// and validate themselves before being saved.
type Normalizer[T any] interface {
	*T
	Record
	Normalize(now time.Time) error
}

// Import decodes data as a collection of kind's record type, normalizes every
// record and replaces the stored collection. It returns the number of records.
func Import(ctx context.Context, s *Store, kind Kind, data []byte, now time.Time) (int, error) {
	switch kind {
	case KindBlogs:
		return importAs[Blog](ctx, s, kind, data, now)
	case KindCaseStudies:
		return importAs[CaseStudy](ctx, s, kind, data, now)
	case KindServices:
		return importAs[Service](ctx, s, kind, data, now)
	case KindProducts:
		return importAs[Product](ctx, s, kind, data, now)
	case KindCareers:
		return importAs[Career](ctx, s, kind, data, now)
	case KindTeam:
		return importAs[TeamMember](ctx, s, kind, data, now)
	case KindClients:
		return importAs[Client](ctx, s, kind, data, now)
	case KindLegalDocs:
		return importAs[LegalDoc](ctx, s, kind, data, now)
	}
	return 0, fmt.Errorf("unknown content kind %q", kind)
}

func importAs[T any, PT Normalizer[T]](ctx context.Context, s *Store, kind Kind, data []byte, now time.Time) (int, error) {
	items, err := DecodeAll[T, PT](data, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kind, err)
	}
	if err := Save(ctx, s, kind, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// DecodeAll decodes a JSON array of records and normalizes each one. Records
// must have distinct keys.
func DecodeAll[T any, PT Normalizer[T]](data []byte, now time.Time) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("expected a JSON array of records: %w", err)
	}
	seen := make(map[string]int, len(items))
	for i := range items {
		if err := PT(&items[i]).Normalize(now); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		key := PT(&items[i]).Key()
		if j, dup := seen[key]; dup {
			return nil, fmt.Errorf("records %d and %d share the key %q", j+1, i+1, key)
		}
		seen[key] = i
	}
	return items, nil
}

// Keys lists the record keys of a collection in stored order.
func Keys(ctx context.Context, s *Store, kind Kind) ([]string, error) {
	data, _, err := s.Raw(ctx, kind)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	field := kind.KeyField()
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, fmt.Sprint(r[field]))
	}
	return keys, nil
}
