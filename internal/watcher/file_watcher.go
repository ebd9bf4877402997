package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"smellcheck/internal/ast"
	"smellcheck/internal/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// ignoredDirs are never watched, whatever the exclude patterns say.
var ignoredDirs = map[string]bool{
	"vendor": true, ".git": true, "node_modules": true, ".vscode": true,
	".idea": true, "build": true, "dist": true, "tmp": true, "temp": true,
}

// editorLeftovers are suffixes of swap and backup files written by editors.
var editorLeftovers = []string{".tmp", "~", ".swp", ".swo"}

// FileWatcher re-runs analysis when serialized syntax trees change.
// Directories created while watching are picked up as they appear.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	config    *config.Config
	logger    *zap.Logger
	debouncer *debouncer

	mu   sync.Mutex
	dirs map[string]bool
}

// FileChangeEvent is one observed change to a tree file.
type FileChangeEvent struct {
	Path string
	Op   fsnotify.Op
}

// FileChangeHandler receives the sorted paths of one debounced batch.
type FileChangeHandler func([]string) error

func NewFileWatcher(cfg *config.Config, logger *zap.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileWatcher{
		watcher:   watcher,
		config:    cfg,
		logger:    logger,
		debouncer: newDebouncer(debounceDelay, logger),
		dirs:      make(map[string]bool),
	}, nil
}

// Watch registers every directory below paths and starts delivering
// batches of changed tree files to handler.
func (fw *FileWatcher) Watch(paths []string, handler FileChangeHandler) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
		if !info.IsDir() {
			path = filepath.Dir(path)
		}
		if _, err := fw.watchTree(path); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
	}
	go fw.eventLoop(handler)
	return nil
}

// watchTree adds root and its subdirectories to the watcher and returns the
// tree files already present below root.
func (fw *FileWatcher) watchTree(root string) ([]string, error) {
	var existing []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if fw.isTreeFile(path) && !fw.shouldSkipFile(path) {
				existing = append(existing, path)
			}
			return nil
		}
		if fw.shouldSkipDir(path) {
			return filepath.SkipDir
		}
		return fw.addDir(path)
	})
	return existing, err
}

func (fw *FileWatcher) addDir(dir string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.dirs[dir] {
		return nil
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	fw.dirs[dir] = true
	return nil
}

func (fw *FileWatcher) eventLoop(handler FileChangeHandler) {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event, handler)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event, handler FileChangeHandler) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			fw.handleNewDir(event.Name, handler)
			return
		}
	}
	if !fw.isTreeFile(event.Name) || fw.shouldSkipFile(event.Name) {
		return
	}
	fw.logger.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
	fw.debouncer.add(FileChangeEvent{Path: event.Name, Op: event.Op}, handler)
}

// handleNewDir starts watching a directory created after Watch. Files
// written into it before registration produced no event, so they are queued
// directly.
func (fw *FileWatcher) handleNewDir(dir string, handler FileChangeHandler) {
	if fw.shouldSkipDir(dir) {
		return
	}
	files, err := fw.watchTree(dir)
	if err != nil {
		fw.logger.Warn("cannot watch new directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	fw.logger.Debug("watching new directory", zap.String("dir", dir), zap.Int("files", len(files)))
	for _, file := range files {
		fw.debouncer.add(FileChangeEvent{Path: file, Op: fsnotify.Create}, handler)
	}
}

func (fw *FileWatcher) isTreeFile(path string) bool {
	return strings.HasSuffix(path, ast.FileExtension)
}

func (fw *FileWatcher) excluded(path string) bool {
	return fw.config != nil && config.IsExcluded(fw.config.Files.Exclude, path)
}

func (fw *FileWatcher) shouldSkipDir(path string) bool {
	return ignoredDirs[filepath.Base(path)] || fw.excluded(path)
}

// shouldSkipFile rejects hidden files, editor leftovers and excluded paths.
func (fw *FileWatcher) shouldSkipFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, suffix := range editorLeftovers {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return fw.excluded(path)
}

func (fw *FileWatcher) Close() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

// GetWatchedPaths returns the watched directories in lexical order.
func (fw *FileWatcher) GetWatchedPaths() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	paths := make([]string, 0, len(fw.dirs))
	for path := range fw.dirs {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}
