package bizsite

import (
	"context"
	"html/template"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/digitalbiztech/bizsite/content"
	"github.com/digitalbiztech/bizsite/markdown"
)

// BlogIndex is an in-memory view of the blog collection: posts sorted by
// date, the categories in use, and rendered post bodies. It reloads after ttl
// or when invalidated by a save.
type BlogIndex struct {
	mu         sync.RWMutex
	posts      []content.Blog
	categories []string
	bodies     map[string]template.HTML
	fetched    time.Time
	ttl        time.Duration
	store      *content.Store
}

// NewBlogIndex creates a BlogIndex backed by the given content store.
func NewBlogIndex(s *content.Store, ttl time.Duration) *BlogIndex {
	return &BlogIndex{store: s, ttl: ttl}
}

func (b *BlogIndex) valid() bool {
	return b.posts != nil && time.Since(b.fetched) < b.ttl
}

// Invalidate clears the index so the next read triggers a fresh load.
func (b *BlogIndex) Invalidate() {
	b.mu.Lock()
	b.posts = nil
	b.categories = nil
	b.bodies = nil
	b.mu.Unlock()
}

func (b *BlogIndex) load(ctx context.Context) error {
	if b.valid() {
		return nil
	}
	posts, err := content.List[content.Blog](ctx, b.store, content.KindBlogs)
	if err != nil {
		return err
	}
	sorted := make([]content.Blog, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	seen := make(map[string]struct{})
	var categories []string
	for _, p := range sorted {
		c := strings.TrimSpace(p.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[normalizeCategory(c)]; ok {
			continue
		}
		seen[normalizeCategory(c)] = struct{}{}
		categories = append(categories, c)
	}
	sort.Strings(categories)

	b.posts = sorted
	b.categories = categories
	b.bodies = make(map[string]template.HTML)
	b.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached posts and categories after making sure the
// index is fresh. Only a reload takes the write lock.
func (b *BlogIndex) ensureLoaded(ctx context.Context) ([]content.Blog, []string, error) {
	b.mu.RLock()
	if b.valid() {
		posts, cats := b.posts, b.categories
		b.mu.RUnlock()
		return posts, cats, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(ctx); err != nil {
		return nil, nil, err
	}
	return b.posts, b.categories, nil
}

// ListPosts returns posts newest first, filtered by category unless category
// is empty or "All".
func (b *BlogIndex) ListPosts(ctx context.Context, category string) ([]content.Blog, error) {
	posts, _, err := b.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" || strings.EqualFold(category, "All") {
		return posts, nil
	}
	want := normalizeCategory(category)
	var filtered []content.Blog
	for _, p := range posts {
		if normalizeCategory(p.Category) == want {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Categories returns the distinct categories used by posts, sorted.
func (b *BlogIndex) Categories(ctx context.Context) ([]string, error) {
	_, cats, err := b.ensureLoaded(ctx)
	return cats, err
}

// GetPost returns a post by slug.
func (b *BlogIndex) GetPost(ctx context.Context, slug string) (content.Blog, error) {
	posts, _, err := b.ensureLoaded(ctx)
	if err != nil {
		return content.Blog{}, err
	}
	if p, ok := content.Find(posts, slug); ok {
		return p, nil
	}
	return content.Blog{}, ErrNotFound
}

// Body returns the post's markdown rendered to sanitized HTML, rendering it
// at most once per load.
func (b *BlogIndex) Body(post content.Blog) template.HTML {
	b.mu.RLock()
	html, ok := b.bodies[post.Slug]
	b.mu.RUnlock()
	if ok {
		return html
	}
	html = markdown.HTML(post.Content)
	b.mu.Lock()
	if b.bodies != nil {
		b.bodies[post.Slug] = html
	}
	b.mu.Unlock()
	return html
}

// Related returns up to n other posts in the same category as post.
func (b *BlogIndex) Related(ctx context.Context, post content.Blog, n int) ([]content.Blog, error) {
	posts, err := b.ListPosts(ctx, post.Category)
	if err != nil {
		return nil, err
	}
	var related []content.Blog
	for _, p := range posts {
		if p.Slug == post.Slug {
			continue
		}
		related = append(related, p)
		if len(related) == n {
			break
		}
	}
	return related, nil
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
