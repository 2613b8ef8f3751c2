// Package ini implements a Backend over an INI file: the root lists one
// directory per section, and each section directory contains one file per
// key, body being the key's raw string value.
package ini

import (
	"context"
	"time"

	"github.com/go-ini/ini"
	"github.com/mwantia/vfs/backend"
)

const name = "ini"

// Backend is a read-only view over an INI document parsed once at
// construction. Sections and keys are copied into plain maps that are never
// modified afterwards, so no locking is needed.
type Backend struct {
	sections map[string]map[string]string
	order    []string
	secOrder map[string][]string
	opened   time.Time
}

// New parses the INI file at path.
func New(path string) (*Backend, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}

	b := &Backend{
		sections: make(map[string]map[string]string),
		secOrder: make(map[string][]string),
		opened:   time.Now(),
	}

	for _, sec := range cfg.Sections() {
		keys := make(map[string]string)
		var keyOrder []string
		for _, k := range sec.Keys() {
			keys[k.Name()] = k.Value()
			keyOrder = append(keyOrder, k.Name())
		}
		secName := sectionName(sec.Name())
		b.sections[secName] = keys
		b.secOrder[secName] = keyOrder
		b.order = append(b.order, secName)
	}

	return b, nil
}

// sectionName maps go-ini's DEFAULT pseudo-section to a path-safe name.
func sectionName(raw string) string {
	if raw == ini.DefaultSection {
		return "DEFAULT"
	}
	return raw
}

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	switch len(path) {
	case 0:
		return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
	case 1:
		if _, ok := b.sections[path[0]]; ok {
			return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
		}
	case 2:
		if keys, ok := b.sections[path[0]]; ok {
			if v, ok := keys[path[1]]; ok {
				return backend.Info{
					Kind:        backend.KindFile,
					Size:        int64(len(v)),
					ModTime:     b.opened,
					ContentType: "text/plain",
				}, nil
			}
		}
	}
	return backend.Info{}, backend.NotFound(path)
}

func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	switch len(path) {
	case 0:
		out := make([]string, len(b.order))
		copy(out, b.order)
		return out, nil
	case 1:
		if keys, ok := b.secOrder[path[0]]; ok {
			out := make([]string, len(keys))
			copy(out, keys)
			return out, nil
		}
	}
	return nil, backend.NotFound(path)
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	if len(path) != 2 {
		return nil, backend.NotFound(path)
	}
	keys, ok := b.sections[path[0]]
	if !ok {
		return nil, backend.NotFound(path)
	}
	v, ok := keys[path[1]]
	if !ok {
		return nil, backend.NotFound(path)
	}
	return []byte(v), nil
}

func (b *Backend) Close(ctx context.Context) error { return nil }
