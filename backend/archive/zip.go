// Package archive implements Backends over ZIP and TAR archives (with
// optional gzip/bzip2/xz compression for TAR). Archive entries partition
// into directories, explicit or inferred from path prefixes, and files;
// entry path separators map to virtual segments.
package archive

import (
	"archive/zip"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/vfs/backend"
	"github.com/tidwall/btree"
)

const zipName = "zip"

type zipEntry struct {
	isDir   bool
	size    int64
	modTime time.Time
	open    func() ([]byte, error)
}

// ZipBackend is a read-only Backend over a ZIP archive. The directory
// index is built once at construction by walking the archive's central
// directory; file bodies are decompressed lazily on Get and cached.
type ZipBackend struct {
	mu     sync.Mutex
	reader *zip.ReadCloser
	index  *btree.Map[string, *zipEntry]
	cache  map[string][]byte
	opened time.Time
}

// NewZip opens the ZIP archive at path.
func NewZip(path string) (*ZipBackend, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, backend.Wrap(zipName, err)
	}

	idx := btree.NewMap[string, *zipEntry](0)
	idx.Set("", &zipEntry{isDir: true})

	now := time.Now()
	for _, f := range r.File {
		key := strings.TrimSuffix(f.Name, "/")
		isDir := f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/")

		ensureDirs(idx, key, now)

		file := f
		idx.Set(key, &zipEntry{
			isDir:   isDir,
			size:    int64(file.UncompressedSize64),
			modTime: file.Modified,
			open: func() ([]byte, error) {
				rc, err := file.Open()
				if err != nil {
					return nil, err
				}
				defer rc.Close()
				return readAll(rc, int64(file.UncompressedSize64))
			},
		})
	}

	return &ZipBackend{reader: r, index: idx, cache: make(map[string][]byte), opened: now}, nil
}

// ensureDirs synthesizes directory entries for every prefix of key that the
// archive did not list explicitly, the same "explicit or inferred" rule
// a virtual filesystem view needs.
func ensureDirs(idx *btree.Map[string, *zipEntry], key string, at time.Time) {
	parts := strings.Split(key, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/")
		if _, ok := idx.Get(dir); !ok {
			idx.Set(dir, &zipEntry{isDir: true, modTime: at})
		}
	}
}

func (b *ZipBackend) Info(ctx context.Context, path []string) (backend.Info, error) {
	e, ok := b.index.Get(joinKey(path))
	if !ok {
		return backend.Info{}, backend.NotFound(path)
	}
	if e.isDir {
		return backend.Info{Kind: backend.KindDirectory, ModTime: orNow(e.modTime, b.opened)}, nil
	}
	return backend.Info{
		Kind:        backend.KindFile,
		Size:        e.size,
		ModTime:     orNow(e.modTime, b.opened),
		ContentType: backend.GuessContentType(path),
	}, nil
}

func orNow(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

func (b *ZipBackend) List(ctx context.Context, path []string) ([]string, error) {
	e, ok := b.index.Get(joinKey(path))
	if !ok || !e.isDir {
		return nil, backend.NotFound(path)
	}

	prefix := joinKey(path)
	if prefix != "" {
		prefix += "/"
	}

	var names []string
	b.index.Scan(func(k string, _ *zipEntry) bool {
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

func (b *ZipBackend) Get(ctx context.Context, path []string) ([]byte, error) {
	key := joinKey(path)
	e, ok := b.index.Get(key)
	if !ok || e.isDir {
		return nil, backend.NotFound(path)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if cached, ok := b.cache[key]; ok {
		out := make([]byte, len(cached))
		copy(out, cached)
		return out, nil
	}

	data, err := e.open()
	if err != nil {
		return nil, backend.Wrap(zipName, err)
	}
	b.cache[key] = data

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *ZipBackend) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reader == nil {
		return nil
	}
	err := b.reader.Close()
	b.reader = nil
	return err
}

func joinKey(path []string) string {
	return strings.Join(path, "/")
}
