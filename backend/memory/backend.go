// Package memory implements a Backend over an in-process tree built directly
// from Go values: nested map[string]any nodes are directories, []byte or
// string leaves are files. It exists mainly as a fixture for exercising the
// protocol frontend without touching disk, the same role the nested-dict
// MemoryBackend plays in the implementation this one was modeled on: a tree
// with no native resource to guard.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/vfs/backend"
	"github.com/tidwall/btree"
)

var errClosed = errors.New("memory: backend closed")

type entry struct {
	isDir   bool
	content []byte
	modTime time.Time
}

// Backend is a read-only Backend over a tree that was entirely resident in
// memory at construction time. The tree is immutable once built, so Info,
// List and Get need no locking against each other; mu only guards against
// use after Close.
type Backend struct {
	mu     sync.RWMutex
	closed bool

	index *btree.Map[string, entry]
}

// New flattens tree into a queryable index. Values must be map[string]any
// (a subdirectory), []byte, or string (UTF-8 encoded on read); any other
// value type is rejected.
func New(tree map[string]any) (*Backend, error) {
	now := time.Now()
	idx := btree.NewMap[string, entry](0)
	idx.Set("", entry{isDir: true, modTime: now})

	if err := flatten(idx, "", tree, now); err != nil {
		return nil, err
	}
	return &Backend{index: idx}, nil
}

func flatten(idx *btree.Map[string, entry], prefix string, node map[string]any, at time.Time) error {
	for name, value := range node {
		if name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("memory: invalid segment name %q", name)
		}
		key := name
		if prefix != "" {
			key = prefix + "/" + name
		}

		switch v := value.(type) {
		case map[string]any:
			idx.Set(key, entry{isDir: true, modTime: at})
			if err := flatten(idx, key, v, at); err != nil {
				return err
			}
		case []byte:
			idx.Set(key, entry{isDir: false, content: v, modTime: at})
		case string:
			idx.Set(key, entry{isDir: false, content: []byte(v), modTime: at})
		default:
			return fmt.Errorf("memory: unsupported value at %q: %T", key, value)
		}
	}
	return nil
}

func key(path []string) string {
	return strings.Join(path, "/")
}

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return backend.Info{}, errClosed
	}

	e, ok := b.index.Get(key(path))
	if !ok {
		return backend.Info{}, backend.NotFound(path)
	}
	if e.isDir {
		return backend.Info{Kind: backend.KindDirectory, ModTime: e.modTime}, nil
	}
	return backend.Info{
		Kind:        backend.KindFile,
		Size:        int64(len(e.content)),
		ModTime:     e.modTime,
		ContentType: backend.GuessContentType(path),
	}, nil
}

// List returns the direct children of path in lexical order, relying on a
// prefix scan over the flat key index rather than a nested map lookup.
func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, errClosed
	}

	e, ok := b.index.Get(key(path))
	if !ok || !e.isDir {
		return nil, backend.NotFound(path)
	}

	prefix := key(path)
	if prefix != "" {
		prefix += "/"
	}

	var names []string
	b.index.Scan(func(k string, _ entry) bool {
		if k == "" || k == strings.TrimSuffix(prefix, "/") || !strings.HasPrefix(k, prefix) {
			return true
		}
		rel := strings.TrimPrefix(k, prefix)
		if rel != "" && !strings.Contains(rel, "/") {
			names = append(names, rel)
		}
		return true
	})

	return names, nil
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, errClosed
	}

	e, ok := b.index.Get(key(path))
	if !ok || e.isDir {
		return nil, backend.NotFound(path)
	}

	out := make([]byte, len(e.content))
	copy(out, e.content)
	return out, nil
}

func (b *Backend) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}
