package xmlfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/xmlfile"
)

const fixtureXML = `<?xml version="1.0"?>
<catalog id="c1">
  <book isbn="111"><title>Go in Action</title></book>
  <book isbn="222"><title>The Go Programming Language</title></book>
  <note>hand-curated</note>
</catalog>`

func fixture(t *testing.T) *xmlfile.Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.xml")
	if err := os.WriteFile(path, []byte(fixtureXML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := xmlfile.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestXMLBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"catalog", "_attribs.json"})
}

func TestXMLBackend_RootIsTagName(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)
	backendtest.AssertChildren(t, ctx, b, nil, []string{"catalog"})
	backendtest.AssertDir(t, ctx, b, []string{"catalog"})
}

func TestXMLBackend_RepeatedTagsDisambiguated(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	backendtest.AssertChildren(t, ctx, b, []string{"catalog"},
		[]string{"book_0", "book_1", "note", "_attribs.json"})

	backendtest.AssertBody(t, ctx, b, []string{"catalog", "book_0", "title", "_text"}, "Go in Action")
	backendtest.AssertBody(t, ctx, b, []string{"catalog", "book_1", "title", "_text"}, "The Go Programming Language")
	backendtest.AssertBody(t, ctx, b, []string{"catalog", "note", "_text"}, "hand-curated")
}

func TestXMLBackend_AttributesBecomeJSON(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	body, err := b.Get(ctx, []string{"catalog", "book_0", "_attribs.json"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"isbn":"111"}` {
		t.Fatalf("_attribs.json = %s, want {\"isbn\":\"111\"}", body)
	}
}
