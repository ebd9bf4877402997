package watcher

import (
	"slices"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"smellcheck/internal/config"
)

func TestDebouncerCoalescesEvents(t *testing.T) {
	t.Parallel()

	d := newDebouncer(20*time.Millisecond, zap.NewNop())
	defer d.stop()

	batches := make(chan []string, 4)
	handler := func(files []string) error {
		batches <- files
		return nil
	}

	for _, path := range []string{"b.sexp", "a.sexp", "b.sexp"} {
		d.add(FileChangeEvent{Path: path, Op: fsnotify.Write}, handler)
	}

	select {
	case got := <-batches:
		if want := []string{"a.sexp", "b.sexp"}; !slices.Equal(got, want) {
			t.Errorf("flushed %v, want %v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	select {
	case extra := <-batches:
		t.Errorf("unexpected second flush %v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFileFilters(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Files.Exclude = append(cfg.Files.Exclude, "*_generated.sexp")
	fw := &FileWatcher{config: cfg, logger: zap.NewNop()}

	tests := []struct {
		path     string
		tree     bool
		skipFile bool
	}{
		{"lib/user.sexp", true, false},
		{"lib/user.rb", false, false},
		{"lib/.user.sexp", true, true},
		{"lib/user.sexp~", false, true},
		{"lib/user_generated.sexp", true, true},
		{"vendor/gem/user.sexp", true, true},
	}
	for _, tt := range tests {
		if got := fw.isTreeFile(tt.path); got != tt.tree {
			t.Errorf("isTreeFile(%q) = %v, want %v", tt.path, got, tt.tree)
		}
		if got := fw.shouldSkipFile(tt.path); got != tt.skipFile {
			t.Errorf("shouldSkipFile(%q) = %v, want %v", tt.path, got, tt.skipFile)
		}
	}

	for _, dir := range []string{"project/.git", "project/node_modules", "project/vendor"} {
		if !fw.shouldSkipDir(dir) {
			t.Errorf("shouldSkipDir(%q) = false, want true", dir)
		}
	}
	if fw.shouldSkipDir("project/lib") {
		t.Error("shouldSkipDir(project/lib) = true, want false")
	}
}
