// Package osinfo implements a Backend over a synthetic, live-resampled
// tree of small text files describing the host: kernel, hostname, uptime,
// environment variables. Every Get re-samples the underlying value; Info
// also samples it to report the current exact size, so a later Get may
// return a body of a different length when the value has changed.
package osinfo

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/mwantia/vfs/backend"
)

const name = "osinfo"

var opened = time.Now()

// Backend requires no construction-time work: every field is resampled on
// demand, so there is no index to build and no resource to hold.
type Backend struct{}

// New returns a ready-to-use osinfo backend. It takes no source because
// the dispatch shell permits `--type osinfo` with no positional file argument.
func New() *Backend { return &Backend{} }

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	switch len(path) {
	case 0:
		return backend.Info{Kind: backend.KindDirectory, ModTime: opened}, nil
	case 1:
		if path[0] == "environ" {
			return backend.Info{Kind: backend.KindDirectory, ModTime: opened}, nil
		}
		if _, ok := rootFiles[path[0]]; ok {
			return backend.Info{Kind: backend.KindFile, Size: sampleSize(path), ModTime: time.Now(), ContentType: "text/plain"}, nil
		}
	case 2:
		if path[0] == "environ" {
			if _, ok := os.LookupEnv(path[1]); ok {
				return backend.Info{Kind: backend.KindFile, Size: sampleSize(path), ModTime: time.Now(), ContentType: "text/plain"}, nil
			}
		}
	}
	return backend.Info{}, backend.NotFound(path)
}

var rootFiles = map[string]func() string{
	"kernel":     func() string { return runtime.GOOS },
	"arch":       func() string { return runtime.GOARCH },
	"hostname":   func() string { s, _ := os.Hostname(); return s },
	"uptime":     func() string { return fmt.Sprintf("%.0fs", time.Since(opened).Seconds()) },
	"pid":        func() string { return fmt.Sprintf("%d", os.Getpid()) },
	"numcpu":     func() string { return fmt.Sprintf("%d", runtime.NumCPU()) },
	"goroutines": func() string { return fmt.Sprintf("%d", runtime.NumGoroutine()) },
}

func sampleSize(path []string) int64 {
	body, _ := sample(path)
	return int64(len(body))
}

func sample(path []string) ([]byte, error) {
	if len(path) == 1 {
		if f, ok := rootFiles[path[0]]; ok {
			return []byte(f()), nil
		}
	}
	if len(path) == 2 && path[0] == "environ" {
		if v, ok := os.LookupEnv(path[1]); ok {
			return []byte(v), nil
		}
	}
	return nil, backend.NotFound(path)
}

func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	switch len(path) {
	case 0:
		names := []string{"environ"}
		for k := range rootFiles {
			names = append(names, k)
		}
		sort.Strings(names)
		return names, nil
	case 1:
		if path[0] == "environ" {
			var names []string
			for _, kv := range os.Environ() {
				if i := strings.IndexByte(kv, '='); i >= 0 {
					names = append(names, kv[:i])
				}
			}
			sort.Strings(names)
			return names, nil
		}
	}
	return nil, backend.NotFound(path)
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	return sample(path)
}

func (b *Backend) Close(ctx context.Context) error { return nil }
