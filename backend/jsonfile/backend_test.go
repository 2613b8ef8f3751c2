package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/jsonfile"
)

const fixtureJSON = `{
	"name": "sample",
	"active": true,
	"count": 3,
	"tags": ["a", "b"],
	"nested": {"x": 1, "y": null}
}`

func fixture(t *testing.T) *jsonfile.Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixtureJSON), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := jsonfile.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestJSONBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"name"})
}

func TestJSONBackend_ObjectsAndArrays(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"name", "active", "count", "tags", "nested"})
	backendtest.AssertChildren(t, ctx, b, []string{"tags"}, []string{"0", "1"})
	backendtest.AssertChildren(t, ctx, b, []string{"nested"}, []string{"x", "y"})
}

func TestJSONBackend_ScalarBodies(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertBody(t, ctx, b, []string{"name"}, "sample")
	backendtest.AssertBody(t, ctx, b, []string{"active"}, "true")
	backendtest.AssertBody(t, ctx, b, []string{"count"}, "3")
	backendtest.AssertBody(t, ctx, b, []string{"tags", "0"}, "a")
	backendtest.AssertBody(t, ctx, b, []string{"nested", "y"}, "null")
}
