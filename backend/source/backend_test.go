package source_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/source"
)

const fixturePy = `import os


def top_level(x):
    return x + 1


class Greeter:
    def __init__(self, name):
        self.name = name

    def greet(self):
        return "hello " + self.name


def another():
    pass
`

func fixture(t *testing.T) *source.Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.py")
	if err := os.WriteFile(path, []byte(fixturePy), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := source.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestSourceBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"top_level.src"})
}

func TestSourceBackend_TopLevelDefsAndClasses(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"top_level.src", "another.src", "Greeter"})
	backendtest.AssertChildren(t, ctx, b, []string{"Greeter"}, []string{"__init__.src", "greet.src"})
}

func TestSourceBackend_MethodBodies(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	body, err := b.Get(ctx, []string{"Greeter", "greet.src"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(string(body), `return "hello " + self.name`) {
		t.Fatalf("greet.src body = %q, missing expected return line", body)
	}

	top, err := b.Get(ctx, []string{"top_level.src"})
	if err != nil {
		t.Fatalf("Get top_level.src: %v", err)
	}
	if !strings.Contains(string(top), "return x + 1") {
		t.Fatalf("top_level.src body = %q, missing expected return line", top)
	}
}
