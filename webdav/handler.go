// Package webdav implements a read-only WebDAV protocol frontend over a
// single backend: OPTIONS, GET, HEAD, and PROPFIND, plus a ?json and a
// ?zip subtree export on directories, and a uniform 405 for every
// mutating verb.
package webdav

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/vfs/backend"
	vlog "github.com/mwantia/vfs/log"
)

const allowedMethods = "OPTIONS, GET, HEAD, PROPFIND"

// Handler serves a single backend over HTTP. It holds no per-request
// state; Backend must be safe for concurrent use.
type Handler struct {
	Backend backend.Backend
	Logger  *vlog.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		h.handleOptions(w, r)
	case http.MethodGet, http.MethodHead:
		h.handleGetHead(w, r)
	case "PROPFIND":
		h.handlePropfind(w, r)
	default:
		h.handleMethodNotAllowed(w, r)
	}
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("DAV", "1")
	w.Header().Set("Allow", allowedMethods)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", allowedMethods)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (h *Handler) handleGetHead(w http.ResponseWriter, r *http.Request) {
	path, err := canonicalizePath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	info, err := h.Backend.Info(ctx, path)
	if backend.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serveBackendError(w, err)
		return
	}

	if info.IsDir() {
		h.serveDirectory(w, r, path)
		return
	}
	h.serveFile(w, r, path, info)
}

func (h *Handler) serveDirectory(w http.ResponseWriter, r *http.Request, path []string) {
	ctx := r.Context()
	q := r.URL.Query()

	switch {
	case q.Has("json"):
		tree, err := buildJSONSubtree(ctx, h.Backend, path, 0)
		if err != nil {
			h.serveBackendError(w, err)
			return
		}
		body, err := marshalJSON(tree)
		if err != nil {
			h.serveBackendError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(body)
		}
		return

	case q.Has("zip"):
		var buf bytes.Buffer
		if err := writeZipSubtree(ctx, &buf, h.Backend, path); err != nil {
			h.serveBackendError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(buf.Bytes())
		}
		return
	}

	children, err := h.Backend.List(ctx, path)
	if err != nil {
		h.serveBackendError(w, err)
		return
	}
	body := renderIndex(path, children)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(body)
	}
}

// renderIndex builds a minimal HTML directory index: one anchor per List
// entry, in the order List returns it. This resolves an open
// question on the exact HTML index format, documented in DESIGN.md.
func renderIndex(path []string, children []string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body>\n", html.EscapeString(joinPath(path)))
	fmt.Fprintf(&b, "<h1>%s</h1>\n<ul>\n", html.EscapeString(joinPath(path)))
	for _, name := range children {
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(name), html.EscapeString(name))
	}
	b.WriteString("</ul>\n</body></html>\n")
	return b.Bytes()
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, path []string, info backend.Info) {
	ctx := r.Context()

	if r.URL.Query().Has("json") {
		body, err := h.Backend.Get(ctx, path)
		if err != nil {
			h.serveBackendError(w, err)
			return
		}
		w.Header().Set("Content-Type", info.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(body)
		}
		return
	}

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if !info.ModTime.IsZero() {
		w.Header().Set("Last-Modified", info.ModTime.UTC().Format(time.RFC1123))
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := h.Backend.Get(ctx, path)
	if err != nil {
		h.serveBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) handlePropfind(w http.ResponseWriter, r *http.Request) {
	path, err := canonicalizePath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, err := parsePropfindBody(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d := parseDepth(r.Header.Get("Depth"))
	entries := enumerate(r.Context(), h.Backend, path, d)
	body := buildMultistatus(entries, req)

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusMultiStatus)
	w.Write(body)
}

func (h *Handler) serveBackendError(w http.ResponseWriter, err error) {
	if h.Logger != nil {
		h.Logger.Error("backend error: %v", err)
	}
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(msg))
}
