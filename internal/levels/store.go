package levels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/tngrm/tngrm/internal/core/observability/log"
)

// Store persists levels by name.
type Store interface {
	// Save inserts the level or replaces the one with the same name.
	Save(ctx context.Context, level Level) error
	Get(ctx context.Context, name string) (Level, error)
	List(ctx context.Context) ([]Level, error)
	Close() error
}

var _ Store = (*FileStore)(nil)

type writeRequest struct {
	level  Level
	result chan error
}

// FileStore keeps all levels in one JSON array file. Writes go through a
// single writer goroutine, so concurrent saves are applied one at a time in
// arrival order and never lose each other's updates.
type FileStore struct {
	path   string
	logger log.Log

	mu     sync.RWMutex // guards the file between the writer and readers
	queue  chan writeRequest
	done   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewFileStore starts a store backed by path. The file is created on the
// first save.
func NewFileStore(path string, logger log.Log) *FileStore {
	s := &FileStore{
		path:   path,
		logger: logger.With(log.String("component", "levels"), log.String("path", path)),
		queue:  make(chan writeRequest),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.writer()
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(ctx context.Context, level Level) error {
	if err := level.Validate(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}

	req := writeRequest{level: level, result: make(chan error, 1)}
	select {
	case s.queue <- req:
	case <-s.done:
		return ErrStoreClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *FileStore) Get(ctx context.Context, name string) (Level, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Level{}, err
	}
	for _, l := range all {
		if l.Name == name {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %q", ErrLevelNotFound, name)
}

func (s *FileStore) List(ctx context.Context) ([]Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

// Close stops the writer after the write in progress, if any.
func (s *FileStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)
	s.wg.Wait()
	return nil
}

func (s *FileStore) writer() {
	defer s.wg.Done()
	for {
		select {
		case req := <-s.queue:
			req.result <- s.upsert(req.level)
		case <-s.done:
			return
		}
	}
}

func (s *FileStore) upsert(level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		s.logger.Error("Failed to read levels", log.Error(err))
		return err
	}

	replaced := false
	for i := range all {
		if all[i].Name == level.Name {
			all[i] = level
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, level)
	}

	if err = s.write(all); err != nil {
		s.logger.Error("Failed to save level", log.String("level", level.Name), log.Error(err))
		return err
	}
	s.logger.Debug("Level saved",
		log.String("level", level.Name),
		log.Bool("replaced", replaced),
		log.Int("total", len(all)))
	return nil
}

// read loads the file. A missing or empty file is an empty list.
func (s *FileStore) read() ([]Level, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Level{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read levels: %w", err)
	}
	if len(data) == 0 {
		return []Level{}, nil
	}
	var all []Level
	if err = json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode levels: %w", err)
	}
	if all == nil {
		all = []Level{}
	}
	return all, nil
}

// write replaces the file through a temp file and rename.
func (s *FileStore) write(all []Level) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode levels: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".levels-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write levels: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write levels: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace levels: %w", err)
	}
	return nil
}
