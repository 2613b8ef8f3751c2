// Package jsonfile implements a Backend over a single JSON document. A
// scalar value at a key becomes a file whose body is the value's textual
// form; a JSON object becomes a directory whose children are its keys; a
// JSON array becomes a directory whose children are the decimal indices
// 0..n-1.
package jsonfile

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mwantia/vfs/backend"
)

const name = "json"

// node is either a directory (children non-nil) or a file (body set).
type node struct {
	children map[string]*node
	order    []string
	body     []byte
	isScalar bool
}

// Backend is a read-only view over a JSON document parsed once at
// construction. The parsed tree is immutable, so no locking is needed.
type Backend struct {
	root   *node
	opened time.Time
}

// New reads and parses the JSON document at path.
func New(path string) (*Backend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, backend.Wrap(name, err)
	}

	root, err := build(v)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}
	return &Backend{root: root, opened: time.Now()}, nil
}

func build(v any) (*node, error) {
	switch t := v.(type) {
	case map[string]any:
		n := &node{children: make(map[string]*node, len(t))}
		for k, cv := range t {
			child, err := build(cv)
			if err != nil {
				return nil, err
			}
			n.children[k] = child
			n.order = append(n.order, k)
		}
		return n, nil
	case []any:
		n := &node{children: make(map[string]*node, len(t))}
		for i, cv := range t {
			child, err := build(cv)
			if err != nil {
				return nil, err
			}
			idx := strconv.Itoa(i)
			n.children[idx] = child
			n.order = append(n.order, idx)
		}
		return n, nil
	default:
		return &node{body: scalarText(v), isScalar: true}, nil
	}
}

func scalarText(v any) []byte {
	switch t := v.(type) {
	case nil:
		return []byte("null")
	case string:
		return []byte(t)
	case bool:
		if t {
			return []byte("true")
		}
		return []byte("false")
	case float64:
		return []byte(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		b, _ := json.Marshal(v)
		return b
	}
}

func (b *Backend) resolve(path []string) (*node, bool) {
	n := b.root
	for _, seg := range path {
		if n.children == nil {
			return nil, false
		}
		child, ok := n.children[seg]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	n, ok := b.resolve(path)
	if !ok {
		return backend.Info{}, backend.NotFound(path)
	}
	if n.children != nil {
		return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
	}
	return backend.Info{
		Kind:        backend.KindFile,
		Size:        int64(len(n.body)),
		ModTime:     b.opened,
		ContentType: "text/plain",
	}, nil
}

func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	n, ok := b.resolve(path)
	if !ok || n.children == nil {
		return nil, backend.NotFound(path)
	}
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out, nil
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	n, ok := b.resolve(path)
	if !ok || n.children != nil {
		return nil, backend.NotFound(path)
	}
	out := make([]byte, len(n.body))
	copy(out, n.body)
	return out, nil
}

func (b *Backend) Close(ctx context.Context) error { return nil }
