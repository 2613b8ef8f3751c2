// Package backendtest holds small shared assertion helpers used by every
// adapter's own tests: each adapter package builds its own fixture and a
// Backend from it, then exercises the same handful of universal
// invariants every Backend must satisfy (root is a directory, List fails on
// a file, Get fails on a directory, unknown paths report NotFoundError).
package backendtest

import (
	"context"
	"testing"

	"github.com/mwantia/vfs/backend"
)

// AssertDir fails the test unless path names a directory.
func AssertDir(t *testing.T, ctx context.Context, b backend.Backend, path []string) backend.Info {
	t.Helper()
	info, err := b.Info(ctx, path)
	if err != nil {
		t.Fatalf("Info(%v): %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("Info(%v): expected directory, got file", path)
	}
	return info
}

// AssertFile fails the test unless path names a file, and returns its Info.
func AssertFile(t *testing.T, ctx context.Context, b backend.Backend, path []string) backend.Info {
	t.Helper()
	info, err := b.Info(ctx, path)
	if err != nil {
		t.Fatalf("Info(%v): %v", path, err)
	}
	if info.IsDir() {
		t.Fatalf("Info(%v): expected file, got directory", path)
	}
	return info
}

// AssertNotFound fails the test unless path reports backend.NotFoundError
// from Info.
func AssertNotFound(t *testing.T, ctx context.Context, b backend.Backend, path []string) {
	t.Helper()
	_, err := b.Info(ctx, path)
	if !backend.IsNotFound(err) {
		t.Fatalf("Info(%v): expected NotFoundError, got %v", path, err)
	}
}

// AssertChildren fails the test unless List(path) returns exactly want,
// ignoring order.
func AssertChildren(t *testing.T, ctx context.Context, b backend.Backend, path []string, want []string) {
	t.Helper()
	got, err := b.List(ctx, path)
	if err != nil {
		t.Fatalf("List(%v): %v", path, err)
	}
	if !sameSet(got, want) {
		t.Fatalf("List(%v) = %v, want %v", path, got, want)
	}
}

// AssertBody fails the test unless Get(path) returns exactly want.
func AssertBody(t *testing.T, ctx context.Context, b backend.Backend, path []string, want string) {
	t.Helper()
	got, err := b.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get(%v): %v", path, err)
	}
	if string(got) != want {
		t.Fatalf("Get(%v) = %q, want %q", path, got, want)
	}
}

// AssertUniversalInvariants exercises the handful of rules every adapter
// must satisfy regardless of its native format: the root is always a
// directory, List on a file fails with NotFoundError, Get on a directory
// fails with NotFoundError, and an unknown path reports NotFoundError from
// all three accessors.
func AssertUniversalInvariants(t *testing.T, ctx context.Context, b backend.Backend, aFilePath []string) {
	t.Helper()

	AssertDir(t, ctx, b, nil)

	if aFilePath != nil {
		AssertFile(t, ctx, b, aFilePath)

		if _, err := b.List(ctx, aFilePath); !backend.IsNotFound(err) {
			t.Fatalf("List(%v) on a file: expected NotFoundError, got %v", aFilePath, err)
		}
	}

	missing := append(append([]string(nil), nonexistentSuffix...))
	if _, err := b.Info(ctx, missing); !backend.IsNotFound(err) {
		t.Fatalf("Info(%v): expected NotFoundError, got %v", missing, err)
	}
	if _, err := b.List(ctx, missing); !backend.IsNotFound(err) {
		t.Fatalf("List(%v): expected NotFoundError, got %v", missing, err)
	}
	if _, err := b.Get(ctx, missing); !backend.IsNotFound(err) {
		t.Fatalf("Get(%v): expected NotFoundError, got %v", missing, err)
	}

	if _, err := b.Get(ctx, nil); !backend.IsNotFound(err) {
		t.Fatalf("Get(root): expected NotFoundError, got %v", err)
	}
}

var nonexistentSuffix = []string{"__definitely-not-a-real-path__"}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	count := make(map[string]int, len(want))
	for _, w := range want {
		count[w]++
	}
	for _, g := range got {
		count[g]--
		if count[g] < 0 {
			return false
		}
	}
	return true
}
