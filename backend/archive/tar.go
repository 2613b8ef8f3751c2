package archive

import (
	"archive/tar"
	"compress/bzip2"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/mwantia/vfs/backend"
	"github.com/tidwall/btree"
	"github.com/ulikunitz/xz"
)

const tarName = "tar"

type tarEntry struct {
	isDir   bool
	size    int64
	modTime time.Time
	offset  int // index into the flattened entry slice this backend keeps
}

// TarBackend is a read-only Backend over a TAR archive, optionally wrapped
// in gzip, bzip2, or xz compression. Because a tar.Reader only scans
// forward, the whole archive is decompressed and materialised into memory
// at construction, the same "precompute an index" approach as the other
// container backends.
type TarBackend struct {
	mu     sync.Mutex
	index  *btree.Map[string, *tarEntry]
	bodies [][]byte
	opened time.Time
}

// Compression names the outer compression layer wrapping the tar stream.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
)

// NewTar opens the (optionally compressed) TAR archive at path.
func NewTar(path string, compression Compression) (*TarBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, backend.Wrap(tarName, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch compression {
	case CompressionGzip:
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, backend.Wrap(tarName, err)
		}
		defer gr.Close()
		r = gr
	case CompressionBzip2:
		r = bzip2.NewReader(f)
	case CompressionXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, backend.Wrap(tarName, err)
		}
		r = xr
	}

	tr := tar.NewReader(r)
	idx := btree.NewMap[string, *tarEntry](0)
	idx.Set("", &tarEntry{isDir: true})

	now := time.Now()
	var bodies [][]byte

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, backend.Wrap(tarName, err)
		}

		key := strings.TrimSuffix(strings.TrimPrefix(hdr.Name, "./"), "/")
		if key == "" {
			continue
		}
		isDir := hdr.Typeflag == tar.TypeDir

		ensureTarDirs(idx, key, now)

		if isDir {
			idx.Set(key, &tarEntry{isDir: true, modTime: hdr.ModTime})
			continue
		}

		body, err := readAll(tr, hdr.Size)
		if err != nil {
			return nil, backend.Wrap(tarName, err)
		}
		bodies = append(bodies, body)
		idx.Set(key, &tarEntry{size: hdr.Size, modTime: hdr.ModTime, offset: len(bodies) - 1})
	}

	return &TarBackend{index: idx, bodies: bodies, opened: now}, nil
}

func ensureTarDirs(idx *btree.Map[string, *tarEntry], key string, at time.Time) {
	parts := strings.Split(key, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/")
		if _, ok := idx.Get(dir); !ok {
			idx.Set(dir, &tarEntry{isDir: true, modTime: at})
		}
	}
}

func readAll(r io.Reader, sizeHint int64) ([]byte, error) {
	return io.ReadAll(r)
}

func (b *TarBackend) Info(ctx context.Context, path []string) (backend.Info, error) {
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

func (b *TarBackend) List(ctx context.Context, path []string) ([]string, error) {
	e, ok := b.index.Get(joinKey(path))
	if !ok || !e.isDir {
		return nil, backend.NotFound(path)
	}

	prefix := joinKey(path)
	if prefix != "" {
		prefix += "/"
	}

	var names []string
	b.index.Scan(func(k string, _ *tarEntry) bool {
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

func (b *TarBackend) Get(ctx context.Context, path []string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.index.Get(joinKey(path))
	if !ok || e.isDir {
		return nil, backend.NotFound(path)
	}
	body := b.bodies[e.offset]
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func (b *TarBackend) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies = nil
	return nil
}
