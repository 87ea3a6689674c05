// Package logs reads the per-pipeline log files written by a run: it
// streams them while the executor is working and extracts the METHODS
// block each rule prints before its commands.
package logs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultPollInterval backs up fsnotify, which can miss events on some
// network filesystems that cluster runs commonly write to.
const defaultPollInterval = 250 * time.Millisecond

// Tailer streams lines of a pipeline log file as the rule appends to it.
type Tailer struct {
	path     string
	interval time.Duration
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	closed   bool
}

// TailerOption configures a Tailer.
type TailerOption func(*Tailer)

// WithPollInterval sets how often the file is re-read between events.
func WithPollInterval(d time.Duration) TailerOption {
	return func(t *Tailer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// NewTailer creates a Tailer for path. The file may not exist yet: when
// following, the tailer waits for the rule to create it.
func NewTailer(path string, opts ...TailerOption) (*Tailer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	t := &Tailer{path: path, interval: defaultPollInterval, watcher: watcher}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Path returns the path being tailed.
func (t *Tailer) Path() string {
	return t.path
}

// Tail returns a channel of log lines. Without follow, the current content
// is sent and the channel closed; a missing file is an error. With follow,
// complete lines are sent as they appear until ctx is done or Close is
// called.
func (t *Tailer) Tail(ctx context.Context, follow bool) (<-chan string, error) {
	if !follow {
		if _, err := os.Stat(t.path); err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
	}

	lines := make(chan string, 100)
	go t.tailLoop(ctx, lines, follow)
	return lines, nil
}

func (t *Tailer) tailLoop(ctx context.Context, lines chan<- string, follow bool) {
	defer close(lines)

	if follow {
		if err := t.waitForFile(ctx); err != nil {
			return
		}
	}

	offset, pending, err := t.readFrom(ctx, lines, 0)
	if err != nil {
		return
	}
	if !follow {
		if len(pending) > 0 {
			send(ctx, lines, string(pending))
		}
		return
	}

	t.follow(ctx, lines, offset)
}

// waitForFile blocks until the log file exists.
func (t *Tailer) waitForFile(ctx context.Context) error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	}

	// The rule creates its log directory late; poll alone until it exists.
	_ = t.watcher.Add(filepath.Dir(t.path))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-t.watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if event.Name == t.path && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				return nil
			}
		case <-ticker.C:
			if _, err := os.Stat(t.path); err == nil {
				return nil
			}
			_ = t.watcher.Add(filepath.Dir(t.path))
		case _, ok := <-t.watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
		}
	}
}

func (t *Tailer) follow(ctx context.Context, lines chan<- string, offset int64) {
	if err := t.watcher.Add(t.path); err != nil {
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if event.Name == t.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				offset = t.readNew(ctx, lines, offset)
			}
		case <-ticker.C:
			offset = t.readNew(ctx, lines, offset)
		case _, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// readNew sends complete lines past offset and returns the new offset. A
// file shorter than offset was truncated and is re-read from the start.
func (t *Tailer) readNew(ctx context.Context, lines chan<- string, offset int64) int64 {
	info, err := os.Stat(t.path)
	if err != nil {
		return offset
	}
	if info.Size() < offset {
		offset = 0
	}
	newOffset, _, _ := t.readFrom(ctx, lines, offset)
	return newOffset
}

// readFrom sends every complete line after offset. It returns the offset
// just past the last complete line and any trailing partial line.
func (t *Tailer) readFrom(ctx context.Context, lines chan<- string, offset int64) (int64, []byte, error) {
	file, err := os.Open(t.path)
	if err != nil {
		return offset, nil, fmt.Errorf("opening log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, nil, fmt.Errorf("seeking log file: %w", err)
	}

	r := bufio.NewReader(file)
	for {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return offset, line, nil
		}
		if err != nil {
			return offset, nil, fmt.Errorf("reading log file: %w", err)
		}
		if !send(ctx, lines, string(bytes.TrimRight(line, "\r\n"))) {
			return offset, nil, ctx.Err()
		}
		offset += int64(len(line))
	}
}

func send(ctx context.Context, lines chan<- string, line string) bool {
	select {
	case <-ctx.Done():
		return false
	case lines <- line:
		return true
	}
}

// Close stops the tailer and releases the watcher.
func (t *Tailer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.watcher.Close()
}
