package bizsite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/digitalbiztech/bizsite/content"
)

func newBlogIndex(t *testing.T, posts []content.Blog) (*BlogIndex, *content.Store) {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	kv, err := content.NewSQLiteKV(db)
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	s := content.NewStore(kv, fstest.MapFS{}, content.WithCacheTTL(0))
	if err := content.Save(context.Background(), s, content.KindBlogs, posts); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return NewBlogIndex(s, time.Minute), s
}

func slugs(posts []content.Blog) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

var samplePosts = []content.Blog{
	{Slug: "old", Category: "AI", Date: "2024-01-01", Content: "# Old"},
	{Slug: "new", Category: "Salesforce", Date: "2025-06-01"},
	{Slug: "mid", Category: "ai ", Date: "2024-09-15"},
	{Slug: "loose", Date: "2023-03-03"},
}

func TestBlogIndexOrderAndFilter(t *testing.T) {
	idx, _ := newBlogIndex(t, samplePosts)
	ctx := context.Background()

	all, err := idx.ListPosts(ctx, "")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old", "loose"}, slugs(all)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}

	same, _ := idx.ListPosts(ctx, "All")
	if len(same) != len(all) {
		t.Errorf("All returned %d posts, want %d", len(same), len(all))
	}

	ai, _ := idx.ListPosts(ctx, "ai")
	if diff := cmp.Diff([]string{"mid", "old"}, slugs(ai)); diff != "" {
		t.Errorf("ai filter (-want +got):\n%s", diff)
	}

	cats, _ := idx.Categories(ctx)
	if diff := cmp.Diff([]string{"Salesforce", "ai"}, cats); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
}

func TestBlogIndexGetPostAndRelated(t *testing.T) {
	idx, _ := newBlogIndex(t, samplePosts)
	ctx := context.Background()

	post, err := idx.GetPost(ctx, "old")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if body := string(idx.Body(post)); !strings.Contains(body, "<h1") {
		t.Errorf("Body = %q, want rendered heading", body)
	}

	related, _ := idx.Related(ctx, post, 3)
	if diff := cmp.Diff([]string{"mid"}, slugs(related)); diff != "" {
		t.Errorf("related (-want +got):\n%s", diff)
	}

	if _, err := idx.GetPost(ctx, "missing"); err != ErrNotFound {
		t.Errorf("GetPost(missing) err = %v, want ErrNotFound", err)
	}
}

func TestBlogIndexInvalidate(t *testing.T) {
	idx, s := newBlogIndex(t, samplePosts[:1])
	ctx := context.Background()

	if posts, _ := idx.ListPosts(ctx, ""); len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if err := content.Save(ctx, s, content.KindBlogs, samplePosts); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if posts, _ := idx.ListPosts(ctx, ""); len(posts) != 1 {
		t.Errorf("index reloaded before invalidation: %d posts", len(posts))
	}
	idx.Invalidate()
	if posts, _ := idx.ListPosts(ctx, ""); len(posts) != len(samplePosts) {
		t.Errorf("after Invalidate got %d posts, want %d", len(posts), len(samplePosts))
	}
}
