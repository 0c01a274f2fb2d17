package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReportsJSONChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	changed := make(chan struct{}, 4)
	w := &Watcher{
		Dir:      dir,
		Debounce: 20 * time.Millisecond,
		OnChange: func() { changed <- struct{}{} },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blogs.json"), []byte("[]"), 0o644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported for blogs.json")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"blogs.json", fsnotify.Write, true},
		{"blogs.json", fsnotify.Remove, true},
		{"blogs.json", fsnotify.Chmod, false},
		{"site.yaml", fsnotify.Write, false},
		{"notes.txt", fsnotify.Create, false},
	}
	for _, tt := range tests {
		got := relevant(fsnotify.Event{Name: filepath.Join("defaults", tt.name), Op: tt.op})
		if got != tt.want {
			t.Errorf("relevant(%s %s) = %v, want %v", tt.name, tt.op, got, tt.want)
		}
	}
}

func TestWatcherMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &Watcher{Dir: filepath.Join(t.TempDir(), "missing")}
	require.Error(t, w.Run(context.Background()))
}
