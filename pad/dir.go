package pad

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// DirStore serves pads from markdown files in a directory. Each file carries
// YAML front matter with the pad's title and selection criteria; the body is
// the pad content and the file name without extension is its id.
type DirStore struct {
	*MemoryStore

	dir      string
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// DirOption configures a DirStore.
type DirOption func(*DirStore)

// WithLogger sets the logger for load and watch failures.
func WithLogger(l *slog.Logger) DirOption {
	return func(s *DirStore) { s.logger = l }
}

// WithDebounce sets how long the watcher waits for changes to settle.
func WithDebounce(d time.Duration) DirOption {
	return func(s *DirStore) { s.debounce = d }
}

// OpenDir loads the pads in dir.
func OpenDir(dir string, opts ...DirOption) (*DirStore, error) {
	s := &DirStore{
		MemoryStore: NewMemoryStore(),
		dir:         dir,
		logger:      slog.Default(),
		debounce:    250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rereads every pad file. Files that fail to parse are skipped with a
// warning so one bad pad does not hide the rest.
func (s *DirStore) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("pad: read dir: %w", err)
	}
	var pads []Pad
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		p, err := ParseFile(path)
		if err != nil {
			s.logger.Warn("skipping pad file", "path", path, "error", err)
			continue
		}
		pads = append(pads, p)
	}
	s.Replace(pads)
	return nil
}

// Watch reloads the store whenever a file in the directory changes, until
// ctx is done or Close is called.
func (s *DirStore) Watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pad: create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return fmt.Errorf("pad: watch %s: %w", s.dir, err)
	}
	s.watcher = w
	s.wg.Add(1)
	go s.watchLoop(ctx, w)
	return nil
}

// Close stops watching.
func (s *DirStore) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	err := w.Close()
	s.wg.Wait()
	return err
}

func (s *DirStore) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer s.wg.Done()

	var mu sync.Mutex
	var timer *time.Timer
	scheduleReload := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(s.debounce, func() {
			if err := s.Reload(); err != nil {
				s.logger.Warn("pad reload failed", "dir", s.dir, "error", err)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				scheduleReload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("pad watch error", "dir", s.dir, "error", err)
		}
	}
}

// ParseFile reads a pad from a markdown file.
func ParseFile(path string) (Pad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pad{}, fmt.Errorf("read file: %w", err)
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(id, data)
}

// Parse reads a pad from markdown with YAML front matter.
func Parse(id string, data []byte) (Pad, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return Pad{}, fmt.Errorf("split frontmatter: %w", err)
	}
	var p Pad
	if err := yaml.Unmarshal(front, &p); err != nil {
		return Pad{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	if p.ID == "" {
		p.ID = id
	}
	if p.Title == "" {
		p.Title = p.ID
	}
	if p.Criteria != nil {
		if err := p.Criteria.Validate(); err != nil {
			return Pad{}, err
		}
	}
	p.Content = strings.TrimSpace(string(body))
	return p, nil
}

func splitFrontmatter(data []byte) ([]byte, []byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, nil, fmt.Errorf("empty file")
	}
	if strings.TrimSpace(scanner.Text()) != frontmatterDelimiter {
		return nil, nil, fmt.Errorf("missing opening frontmatter delimiter")
	}

	var front []string
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == frontmatterDelimiter {
			closed = true
			break
		}
		front = append(front, line)
	}
	if !closed {
		return nil, nil, fmt.Errorf("missing closing frontmatter delimiter")
	}

	var body []string
	for scanner.Scan() {
		body = append(body, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanner error: %w", err)
	}
	return []byte(strings.Join(front, "\n")), []byte(strings.Join(body, "\n")), nil
}
