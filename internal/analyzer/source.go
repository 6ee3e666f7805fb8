package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/JonMunkholm/coursestats/internal/course"
	"golang.org/x/sync/singleflight"
)

// Source supplies the complete record set for one query. Implementations
// register parsed rows into catalog. Returned slices are shared and must be
// treated as read-only.
type Source interface {
	Records(ctx context.Context, catalog *course.Catalog) ([]course.Record, error)
}

// FileSource reads the dataset from a file path.
//
// Without caching the file is re-read and re-parsed on every call. With
// caching the parsed snapshot is reused for as long as the file's size and
// modification time are unchanged; concurrent misses share a single load
// that no single caller can cancel.
type FileSource struct {
	path     string
	cache    bool
	loadFile func(ctx context.Context, path string, catalog *course.Catalog) ([]course.Record, error)

	group singleflight.Group
	mu    sync.Mutex
	snap  *snapshot
}

// snapshot is an immutable parsed copy of the dataset.
type snapshot struct {
	modTime time.Time
	size    int64
	records []course.Record
}

func (s *snapshot) matches(info os.FileInfo) bool {
	return s != nil && s.size == info.Size() && s.modTime.Equal(info.ModTime())
}

// NewFileSource creates a source for path. cache enables snapshot reuse.
func NewFileSource(path string, cache bool) *FileSource {
	return &FileSource{path: path, cache: cache, loadFile: course.LoadFile}
}

// Path returns the dataset path.
func (s *FileSource) Path() string {
	return s.path
}

// Records implements Source.
func (s *FileSource) Records(ctx context.Context, catalog *course.Catalog) ([]course.Record, error) {
	if !s.cache {
		return s.load(ctx, catalog)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		datasetLoadsTotal.WithLabelValues("error").Inc()
		return nil, &course.FileAccessError{Path: s.path, Err: err}
	}

	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()
	if snap.matches(info) {
		datasetLoadsTotal.WithLabelValues("hit").Inc()
		return snap.records, nil
	}

	ch := s.group.DoChan(s.path, func() (any, error) {
		records, err := s.load(context.WithoutCancel(ctx), catalog)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snap = &snapshot{modTime: info.ModTime(), size: info.Size(), records: records}
		s.mu.Unlock()
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for dataset load: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]course.Record), nil
	}
}

func (s *FileSource) load(ctx context.Context, catalog *course.Catalog) ([]course.Record, error) {
	records, err := s.loadFile(ctx, s.path, catalog)
	if err != nil {
		datasetLoadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	datasetLoadsTotal.WithLabelValues("miss").Inc()
	datasetRows.Set(float64(len(records)))
	return records, nil
}

// BytesSource parses an in-memory dataset on every call.
type BytesSource struct {
	data []byte
}

// NewBytesSource returns a source over a copy of data.
func NewBytesSource(data []byte) *BytesSource {
	return &BytesSource{data: bytes.Clone(data)}
}

// Records implements Source.
func (s *BytesSource) Records(ctx context.Context, catalog *course.Catalog) ([]course.Record, error) {
	return course.Load(ctx, bytes.NewReader(s.data), catalog)
}
