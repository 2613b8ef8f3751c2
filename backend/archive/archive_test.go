package archive_test

import (
	"archive/tar"
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vfs/backend/archive"
	"github.com/mwantia/vfs/backend/backendtest"
)

func zipFixture(t *testing.T) *archive.ZipBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	zw := zip.NewWriter(f)
	files := map[string]string{
		"readme.txt":      "hello zip",
		"src/main.go":     "package main",
		"src/util/lib.go": "package util",
	}
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zw.Create(%s): %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zw.Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("f.Close: %v", err)
	}

	b, err := archive.NewZip(path)
	if err != nil {
		t.Fatalf("NewZip: %v", err)
	}
	return b
}

func TestZipBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := zipFixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"readme.txt"})
}

func TestZipBackend_InfersDirectories(t *testing.T) {
	ctx := context.Background()
	b := zipFixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"readme.txt", "src"})
	backendtest.AssertChildren(t, ctx, b, []string{"src"}, []string{"main.go", "util"})
	backendtest.AssertChildren(t, ctx, b, []string{"src", "util"}, []string{"lib.go"})
}

func TestZipBackend_FileBodies(t *testing.T) {
	ctx := context.Background()
	b := zipFixture(t)

	backendtest.AssertBody(t, ctx, b, []string{"readme.txt"}, "hello zip")
	backendtest.AssertBody(t, ctx, b, []string{"src", "main.go"}, "package main")
	backendtest.AssertBody(t, ctx, b, []string{"src", "util", "lib.go"}, "package util")
}

func tarFixture(t *testing.T) *archive.TarBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.tar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tw := tar.NewWriter(f)
	files := map[string]string{
		"a.txt":       "alpha",
		"dir/b.txt":   "beta",
		"dir/c/d.txt": "delta",
	}
	for name, body := range files {
		hdr := &tar.Header{Name: name, Size: int64(len(body)), Mode: 0o644}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s): %v", name, err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tw.Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("f.Close: %v", err)
	}

	b, err := archive.NewTar(path, archive.CompressionNone)
	if err != nil {
		t.Fatalf("NewTar: %v", err)
	}
	return b
}

func TestTarBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := tarFixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"a.txt"})
}

func TestTarBackend_InfersDirectories(t *testing.T) {
	ctx := context.Background()
	b := tarFixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"a.txt", "dir"})
	backendtest.AssertChildren(t, ctx, b, []string{"dir"}, []string{"b.txt", "c"})
	backendtest.AssertChildren(t, ctx, b, []string{"dir", "c"}, []string{"d.txt"})
}

func TestTarBackend_FileBodies(t *testing.T) {
	ctx := context.Background()
	b := tarFixture(t)

	backendtest.AssertBody(t, ctx, b, []string{"a.txt"}, "alpha")
	backendtest.AssertBody(t, ctx, b, []string{"dir", "b.txt"}, "beta")
	backendtest.AssertBody(t, ctx, b, []string{"dir", "c", "d.txt"}, "delta")
}
