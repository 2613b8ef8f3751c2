package ini_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/ini"
)

const fixtureINI = `
global_key = top

[server]
host = localhost
port = 8080

[database]
driver = sqlite
`

func fixture(t *testing.T) *ini.Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.ini")
	if err := os.WriteFile(path, []byte(fixtureINI), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := ini.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestINIBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"server", "host"})
}

func TestINIBackend_SectionsBecomeDirectories(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"DEFAULT", "server", "database"})
	backendtest.AssertChildren(t, ctx, b, []string{"server"}, []string{"host", "port"})
	backendtest.AssertChildren(t, ctx, b, []string{"DEFAULT"}, []string{"global_key"})
}

func TestINIBackend_KeyBodies(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertBody(t, ctx, b, []string{"server", "host"}, "localhost")
	backendtest.AssertBody(t, ctx, b, []string{"server", "port"}, "8080")
	backendtest.AssertBody(t, ctx, b, []string{"database", "driver"}, "sqlite")
	backendtest.AssertBody(t, ctx, b, []string{"DEFAULT", "global_key"}, "top")
}
