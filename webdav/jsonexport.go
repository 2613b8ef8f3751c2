package webdav

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/mwantia/vfs/backend"
)

// buildJSONSubtree exports a directory subtree as JSON: directories become JSON
// objects keyed by child name; files become UTF-8 strings if their
// content-type begins with "text/" or is "application/json", otherwise
// base64-encoded strings.
func buildJSONSubtree(ctx context.Context, b backend.Backend, path []string, depth int) (any, error) {
	if depth > maxEnumerationDepth {
		return nil, nil
	}

	info, err := b.Info(ctx, path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		body, err := b.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		if isTextContentType(info.ContentType) {
			return decodeUTF8Lenient(body), nil
		}
		return base64.StdEncoding.EncodeToString(body), nil
	}

	children, err := b.List(ctx, path)
	if err != nil {
		return nil, err
	}

	obj := make(map[string]any, len(children))
	for _, name := range children {
		childPath := append(append([]string(nil), path...), name)
		v, err := buildJSONSubtree(ctx, b, childPath, depth+1)
		if err != nil {
			continue
		}
		obj[name] = v
	}
	return obj, nil
}

func isTextContentType(ct string) bool {
	return strings.HasPrefix(ct, "text/") || ct == "application/json"
}

// decodeUTF8Lenient decodes body as UTF-8, substituting the Unicode
// replacement character for invalid byte sequences rather than failing.
func decodeUTF8Lenient(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	var b strings.Builder
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRune(body[i:])
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
