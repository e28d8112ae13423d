package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/iliyamo/activity-tracker/internal/storage"
)

// Files is an in-memory document storage.
type Files struct {
	mu    sync.Mutex
	next  int
	blobs map[string][]byte
}

func NewFiles() *Files { return &Files{blobs: map[string][]byte{}} }

func (f *Files) Save(_ context.Context, originalName string, r io.Reader, limit int64) (string, int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	if limit > 0 && int64(len(b)) > limit {
		return "", 0, storage.ErrTooLarge
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	key := fmt.Sprintf("blob-%d%s", f.next, filepath.Ext(originalName))
	f.blobs[key] = b
	return key, int64(len(b)), nil
}

func (f *Files) Open(key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *Files) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

// Len reports how many blobs are stored.
func (f *Files) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}
