package toml_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/toml"
)

const fixtureTOML = `
title = "example"
enabled = true
retries = 3

[server]
host = "localhost"
ports = [80, 443]

[[server.routes]]
path = "/a"

[[server.routes]]
path = "/b"
`

func fixture(t *testing.T) *toml.Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.toml")
	if err := os.WriteFile(path, []byte(fixtureTOML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := toml.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestTOMLBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"title"})
}

func TestTOMLBackend_TablesAndArrays(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"title", "enabled", "retries", "server"})
	backendtest.AssertChildren(t, ctx, b, []string{"server"}, []string{"host", "ports", "routes"})
	backendtest.AssertChildren(t, ctx, b, []string{"server", "ports"}, []string{"0", "1"})
	backendtest.AssertChildren(t, ctx, b, []string{"server", "routes"}, []string{"0", "1"})
}

func TestTOMLBackend_ScalarBodies(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertBody(t, ctx, b, []string{"title"}, "example")
	backendtest.AssertBody(t, ctx, b, []string{"enabled"}, "true")
	backendtest.AssertBody(t, ctx, b, []string{"retries"}, "3")
	backendtest.AssertBody(t, ctx, b, []string{"server", "ports", "1"}, "443")
	backendtest.AssertBody(t, ctx, b, []string{"server", "routes", "0", "path"}, "/a")
}
