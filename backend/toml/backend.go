// Package toml implements a Backend over a single TOML document, using the
// same directory/file mapping rules as the jsonfile backend: tables become
// directories, arrays become directories with decimal indices, scalars
// become files.
package toml

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/mwantia/vfs/backend"
	tomlv2 "github.com/pelletier/go-toml/v2"
)

const name = "toml"

type node struct {
	children map[string]*node
	order    []string
	body     []byte
}

// Backend is a read-only view over a TOML document parsed once at
// construction.
type Backend struct {
	root   *node
	opened time.Time
}

// New reads and parses the TOML document at path.
func New(path string) (*Backend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}

	var v map[string]any
	if err := tomlv2.Unmarshal(raw, &v); err != nil {
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
		return &node{body: scalarText(v)}, nil
	}
}

func scalarText(v any) []byte {
	switch t := v.(type) {
	case nil:
		return []byte("")
	case string:
		return []byte(t)
	case bool:
		if t {
			return []byte("true")
		}
		return []byte("false")
	case int64:
		return []byte(strconv.FormatInt(t, 10))
	case float64:
		return []byte(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		// time.Time and the go-toml local date/time types render via their
		// String method; a value with no String method renders as empty.
		return []byte(toText(v))
	}
}

func toText(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return ""
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
