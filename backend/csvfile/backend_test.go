package csvfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/csvfile"
)

const fixtureCSV = "name,age\nalice,30\nbob,25\ncarol,40\n"

func fixture(t *testing.T) *csvfile.Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.csv")
	if err := os.WriteFile(path, []byte(fixtureCSV), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := csvfile.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestCSVBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"_headers.txt"})
}

func TestCSVBackend_RootListing(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertChildren(t, ctx, b, nil, []string{"_headers.txt", "row_0.json", "row_1.json", "row_2.json"})
}

func TestCSVBackend_RowBodies(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertBody(t, ctx, b, []string{"_headers.txt"}, "name\nage\n")
	backendtest.AssertBody(t, ctx, b, []string{"row_0.json"}, `{"age":"30","name":"alice"}`)
	backendtest.AssertBody(t, ctx, b, []string{"row_2.json"}, `{"age":"40","name":"carol"}`)
}

func TestCSVBackend_RejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := csvfile.New(path); err == nil {
		t.Fatal("expected error for an empty CSV file")
	}
}
