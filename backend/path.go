package backend

import "strings"

// SplitPath turns a '/'-separated string into a canonical segment sequence,
// dropping empty segments produced by leading, trailing, or doubled
// separators. It performs no percent-decoding; that happens at the protocol
// boundary before a path ever reaches a Backend.
func SplitPath(s string) []string {
	raw := strings.Split(s, "/")
	segs := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// JoinPath renders a segment sequence back into a '/'-prefixed string, "/"
// for the root.
func JoinPath(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	return "/" + strings.Join(path, "/")
}
