package webdav

import (
	"fmt"
	"strings"

	"github.com/mwantia/vfs/backend"
)

// ErrBadPath reports a URL that canonicalizePath rejects: a "." or ".."
// segment, or an embedded NUL byte.
type ErrBadPath struct {
	Reason string
}

func (e *ErrBadPath) Error() string {
	return fmt.Sprintf("bad path: %s", e.Reason)
}

// canonicalizePath turns a request URL path (already percent-decoded by
// net/http) into a canonical segment sequence, rejecting "." and ".."
// segments and embedded NUL bytes.
func canonicalizePath(urlPath string) ([]string, error) {
	if strings.ContainsRune(urlPath, 0) {
		return nil, &ErrBadPath{Reason: "embedded NUL"}
	}

	segs := backend.SplitPath(urlPath)
	for _, seg := range segs {
		if seg == "." || seg == ".." {
			return nil, &ErrBadPath{Reason: "dot segment"}
		}
	}
	return segs, nil
}

func joinPath(path []string) string {
	return backend.JoinPath(path)
}
