package content

import "fmt"

// Find returns the record with the given key.
func Find[T Record](items []T, key string) (T, bool) {
	for _, it := range items {
		if it.Key() == key {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Upsert replaces the record sharing item's key, or appends item when the
// key is new. The input slice is not modified.
func Upsert[T Record](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	replaced := false
	for _, it := range items {
		if !replaced && it.Key() == item.Key() {
			out = append(out, item)
			replaced = true
			continue
		}
		out = append(out, it)
	}
	if !replaced {
		out = append(out, item)
	}
	return out
}

// Replace swaps the record stored under oldKey for item, keeping its
// position. Other records sharing item's key are dropped. It falls back to
// Upsert when oldKey is not present.
func Replace[T Record](items []T, oldKey string, item T) []T {
	i := IndexOf(items, oldKey)
	if i < 0 {
		return Upsert(items, item)
	}
	out := make([]T, 0, len(items))
	for j, it := range items {
		switch {
		case j == i:
			out = append(out, item)
		case it.Key() != item.Key():
			out = append(out, it)
		}
	}
	return out
}

// Remove drops every record with the given key.
func Remove[T Record](items []T, key string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.Key() != key {
			out = append(out, it)
		}
	}
	return out
}

// Move relocates the element at index from to index to.
func Move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, fmt.Errorf("move %d -> %d: index out of range [0,%d)", from, to, len(items))
	}
	out := make([]T, len(items))
	copy(out, items)
	if from == to {
		return out, nil
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out, nil
}

// IndexOf returns the position of the record with key, or -1.
func IndexOf[T Record](items []T, key string) int {
	for i, it := range items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}
