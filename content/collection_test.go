package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keys[T Record](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func TestUpsert(t *testing.T) {
	items := []Service{{Slug: "a", Title: "A"}, {Slug: "b", Title: "B"}}

	got := Upsert(items, Service{Slug: "b", Title: "B2"})
	if diff := cmp.Diff([]string{"a", "b"}, keys(got)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if got[1].Title != "B2" {
		t.Errorf("Title = %q, want B2", got[1].Title)
	}
	if items[1].Title != "B" {
		t.Error("Upsert modified its input")
	}

	got = Upsert(items, Service{Slug: "c"})
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys(got)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}

func TestReplaceKeepsPosition(t *testing.T) {
	items := []Service{{Slug: "a"}, {Slug: "b"}, {Slug: "c"}}

	got := Replace(items, "b", Service{Slug: "renamed"})
	if diff := cmp.Diff([]string{"a", "renamed", "c"}, keys(got)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}

	// renaming onto an existing key collapses the duplicate
	got = Replace(items, "a", Service{Slug: "c"})
	if diff := cmp.Diff([]string{"c", "b"}, keys(got)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}

	got = Replace(items, "c", Service{Slug: "a", Title: "A2"})
	if diff := cmp.Diff([]string{"b", "a"}, keys(got)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if got[1].Title != "A2" {
		t.Errorf("Title = %q, want A2", got[1].Title)
	}

	got = Replace(items, "missing", Service{Slug: "d"})
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, keys(got)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}

func TestRemoveAndFind(t *testing.T) {
	items := []Client{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}

	if c, ok := Find(items, "2"); !ok || c.Name != "Two" {
		t.Errorf("Find(2) = %+v, %v", c, ok)
	}
	if _, ok := Find(items, "3"); ok {
		t.Error("Find(3) should miss")
	}
	got := Remove(items, "1")
	if diff := cmp.Diff([]string{"2"}, keys(got)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if IndexOf(items, "2") != 1 || IndexOf(items, "x") != -1 {
		t.Error("IndexOf returned wrong position")
	}
}

func TestMove(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"b", "c", "a", "d"}},
		{3, 0, []string{"d", "a", "b", "c"}},
		{1, 1, []string{"a", "b", "c", "d"}},
		{2, 3, []string{"a", "b", "d", "c"}},
	}
	for _, tt := range tests {
		got, err := Move(items, tt.from, tt.to)
		if err != nil {
			t.Fatalf("Move(%d, %d): %v", tt.from, tt.to, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Move(%d, %d) (-want +got):\n%s", tt.from, tt.to, diff)
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, items); diff != "" {
		t.Errorf("Move modified its input:\n%s", diff)
	}
	if _, err := Move(items, -1, 0); err == nil {
		t.Error("expected error for negative index")
	}
	if _, err := Move(items, 0, 4); err == nil {
		t.Error("expected error for index past end")
	}
}
