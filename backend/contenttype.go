package backend

import (
	"path/filepath"
	"strings"
)

// extensionToMIME maps a lowercased file extension to the content type an
// adapter should report for a leaf with that name. Adapters that synthesize
// a fixed content type (e.g. "application/json" for a derived row file) set
// Info.ContentType directly instead of calling GuessContentType.
var extensionToMIME = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".csv":  "text/csv",
	".py":   "text/x-python",
	".ini":  "text/plain",
	".cfg":  "text/plain",
	".toml": "application/toml",
	".sql":  "application/sql",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".json": "application/json",
	".xml":  "application/xml",
}

// GuessContentType derives a content type from the final path segment's
// extension, the same extension-table approach the frontend's adapters use
// in place of sniffing file contents. It falls back to
// "application/octet-stream" for unknown or missing extensions.
func GuessContentType(path []string) string {
	if len(path) == 0 {
		return "application/octet-stream"
	}
	ext := strings.ToLower(filepath.Ext(path[len(path)-1]))
	if ct, ok := extensionToMIME[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
