package memory_test

import (
	"context"
	"testing"

	"github.com/mwantia/vfs/backend"
	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/memory"
)

func fixture(t *testing.T) *memory.Backend {
	t.Helper()
	b, err := memory.New(map[string]any{
		"readme.txt": "hello world",
		"data": map[string]any{
			"a.bin": []byte{0x01, 0x02, 0x03},
			"nested": map[string]any{
				"deep.txt": "deep",
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestMemoryBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"readme.txt"})
}

func TestMemoryBackend_Listing(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"readme.txt", "data"})
	backendtest.AssertChildren(t, ctx, b, []string{"data"}, []string{"a.bin", "nested"})
	backendtest.AssertChildren(t, ctx, b, []string{"data", "nested"}, []string{"deep.txt"})
}

func TestMemoryBackend_FileBodies(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertBody(t, ctx, b, []string{"readme.txt"}, "hello world")
	backendtest.AssertBody(t, ctx, b, []string{"data", "nested", "deep.txt"}, "deep")

	got, err := b.Get(ctx, []string{"data", "a.bin"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03}
	if len(got) != len(want) {
		t.Fatalf("Get(a.bin) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Get(a.bin)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMemoryBackend_RejectsInvalidSegments(t *testing.T) {
	if _, err := memory.New(map[string]any{"a/b": "x"}); err == nil {
		t.Fatal("expected error for segment containing a slash")
	}
	if _, err := memory.New(map[string]any{"": "x"}); err == nil {
		t.Fatal("expected error for empty segment name")
	}
	if _, err := memory.New(map[string]any{"bad": 42}); err == nil {
		t.Fatal("expected error for unsupported value type")
	}
}

func TestMemoryBackend_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	if err := b.Close(ctx); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := b.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := b.Info(ctx, nil); !backend.IsNotFound(err) && err == nil {
		t.Fatalf("Info after Close: expected an error, got nil")
	}
}
