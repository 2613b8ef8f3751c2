// Package source implements a Backend over a Python source file. The root
// contains one file per top-level function (name.src) and one directory
// per top-level class; a class directory contains one file per method.
// File bodies are the verbatim source span of that definition. No Go or
// ecosystem library parses Python syntax, so this is a hand-rolled
// indentation scanner rather than a real AST: it tracks "def "/"class "
// lines at a known indentation level and closes a span at the first
// subsequent line that dedents back to or below that level.
package source

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/mwantia/vfs/backend"
)

const name = "source"

type def struct {
	funcName string
	lines    []string
}

type class struct {
	className string
	methods   []def
}

// Backend is a read-only view over the functions and classes extracted
// from a Python source file at construction time.
type Backend struct {
	funcs    map[string]def
	funcOrd  []string
	classes  map[string]class
	classOrd []string
	opened   time.Time
}

// New scans the Python source file at path for top-level def/class spans.
func New(path string) (*Backend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}

	lines := strings.Split(string(raw), "\n")

	b := &Backend{
		funcs:   make(map[string]def),
		classes: make(map[string]class),
		opened:  time.Now(),
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		indent := leadingSpaces(line)
		trimmed := strings.TrimSpace(line)

		switch {
		case indent == 0 && strings.HasPrefix(trimmed, "def "):
			fname := funcName(trimmed)
			end := spanEnd(lines, i+1, 0)
			b.funcs[fname] = def{funcName: fname, lines: lines[i:end]}
			b.funcOrd = append(b.funcOrd, fname)
			i = end
		case indent == 0 && strings.HasPrefix(trimmed, "class "):
			cname := className(trimmed)
			end := spanEnd(lines, i+1, 0)
			methods := extractMethods(lines[i+1 : end])
			b.classes[cname] = class{className: cname, methods: methods}
			b.classOrd = append(b.classOrd, cname)
			i = end
		default:
			i++
		}
	}

	return b, nil
}

func leadingSpaces(s string) int {
	n := 0
	for _, r := range s {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 8
		} else {
			break
		}
	}
	return n
}

// spanEnd returns the index (exclusive) of the line at which a definition
// started before `from` closes: the first later line with non-whitespace
// content indented at or below baseIndent, or len(lines) if none.
func spanEnd(lines []string, from, baseIndent int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		if leadingSpaces(lines[j]) <= baseIndent {
			return j
		}
	}
	return len(lines)
}

func extractMethods(body []string) []def {
	var methods []def
	// Methods are "def " lines at the class's own indentation level: the
	// indentation of the first non-blank line in the class body.
	methodIndent := -1
	for _, l := range body {
		if strings.TrimSpace(l) == "" {
			continue
		}
		methodIndent = leadingSpaces(l)
		break
	}
	if methodIndent < 0 {
		return nil
	}

	i := 0
	for i < len(body) {
		line := body[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		indent := leadingSpaces(line)
		trimmed := strings.TrimSpace(line)
		if indent == methodIndent && strings.HasPrefix(trimmed, "def ") {
			mname := funcName(trimmed)
			end := spanEnd(body, i+1, methodIndent)
			methods = append(methods, def{funcName: mname, lines: body[i:end]})
			i = end
			continue
		}
		i++
	}
	return methods
}

func funcName(defLine string) string {
	rest := strings.TrimPrefix(defLine, "def ")
	if idx := strings.IndexByte(rest, '('); idx >= 0 {
		return strings.TrimSpace(rest[:idx])
	}
	return strings.TrimSpace(rest)
}

func className(classLine string) string {
	rest := strings.TrimPrefix(classLine, "class ")
	for _, sep := range []string{"(", ":"} {
		if idx := strings.IndexByte(rest, sep[0]); idx >= 0 {
			rest = rest[:idx]
		}
	}
	return strings.TrimSpace(rest)
}

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	switch len(path) {
	case 0:
		return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
	case 1:
		if strings.HasSuffix(path[0], ".src") {
			if d, ok := b.funcs[strings.TrimSuffix(path[0], ".src")]; ok {
				return fileInfo(d.lines, b.opened), nil
			}
		}
		if _, ok := b.classes[path[0]]; ok {
			return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
		}
	case 2:
		if c, ok := b.classes[path[0]]; ok && strings.HasSuffix(path[1], ".src") {
			mname := strings.TrimSuffix(path[1], ".src")
			for _, m := range c.methods {
				if m.funcName == mname {
					return fileInfo(m.lines, b.opened), nil
				}
			}
		}
	}
	return backend.Info{}, backend.NotFound(path)
}

func fileInfo(lines []string, at time.Time) backend.Info {
	body := strings.Join(lines, "\n")
	return backend.Info{Kind: backend.KindFile, Size: int64(len(body)), ModTime: at, ContentType: "text/x-python"}
}

func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	switch len(path) {
	case 0:
		var out []string
		for _, f := range b.funcOrd {
			out = append(out, f+".src")
		}
		out = append(out, b.classOrd...)
		return out, nil
	case 1:
		if c, ok := b.classes[path[0]]; ok {
			var out []string
			for _, m := range c.methods {
				out = append(out, m.funcName+".src")
			}
			return out, nil
		}
	}
	return nil, backend.NotFound(path)
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	switch len(path) {
	case 1:
		if strings.HasSuffix(path[0], ".src") {
			if d, ok := b.funcs[strings.TrimSuffix(path[0], ".src")]; ok {
				return []byte(strings.Join(d.lines, "\n")), nil
			}
		}
	case 2:
		if c, ok := b.classes[path[0]]; ok && strings.HasSuffix(path[1], ".src") {
			mname := strings.TrimSuffix(path[1], ".src")
			for _, m := range c.methods {
				if m.funcName == mname {
					return []byte(strings.Join(m.lines, "\n")), nil
				}
			}
		}
	}
	return nil, backend.NotFound(path)
}

func (b *Backend) Close(ctx context.Context) error { return nil }
