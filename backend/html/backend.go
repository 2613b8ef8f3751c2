// Package html implements a Backend over a single HTML document, lenient-
// parsed with golang.org/x/net/html and mapped onto the same directory
// rules as the xmlfile backend: one directory per element, an optional
// _text file, an optional _attribs.json file, and child element
// directories disambiguated as tag_0, tag_1, ... when a tag repeats among
// its siblings.
package html

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mwantia/vfs/backend"
	xhtml "golang.org/x/net/html"
)

const name = "html"

const (
	textFile    = "_text"
	attribsFile = "_attribs.json"
)

type node struct {
	isDir    bool
	content  []byte
	children map[string]*node
	order    []string
}

// Backend is a read-only view over an HTML document parsed once at
// construction.
type Backend struct {
	root   *node
	opened time.Time
}

// New parses the HTML document at path. The root of the served tree holds a
// single directory for the document's root <html> element (or the first
// element x/net/html synthesizes if the source has no explicit <html> tag),
// named after its tag.
func New(path string) (*Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}
	defer f.Close()

	doc, err := xhtml.Parse(f)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}

	root := findHTMLElement(doc)
	if root == nil {
		return nil, backend.Wrap(name, errEmptyDocument)
	}

	n := elementToNode(root)
	top := &node{isDir: true, children: map[string]*node{root.Data: n}, order: []string{root.Data}}

	return &Backend{root: top, opened: time.Now()}, nil
}

var errEmptyDocument = xmlErr("empty document")

type xmlErr string

func (e xmlErr) Error() string { return string(e) }

func findHTMLElement(doc *xhtml.Node) *xhtml.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.ElementNode {
			return c
		}
	}
	return nil
}

func elementToNode(el *xhtml.Node) *node {
	n := &node{isDir: true, children: make(map[string]*node)}

	var childEls []*xhtml.Node
	var text strings.Builder
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xhtml.ElementNode:
			childEls = append(childEls, c)
		case xhtml.TextNode:
			text.WriteString(c.Data)
		}
	}

	names := disambiguate(childEls)
	for i, child := range childEls {
		n.children[names[i]] = elementToNode(child)
		n.order = append(n.order, names[i])
	}

	textName := mangle(textFile, n.children)
	if strings.TrimSpace(text.String()) != "" {
		n.children[textName] = &node{content: []byte(text.String())}
		n.order = append(n.order, textName)
	}

	attribsName := mangle(attribsFile, n.children)
	if len(el.Attr) > 0 {
		obj := make(map[string]string, len(el.Attr))
		for _, a := range el.Attr {
			obj[a.Key] = a.Val
		}
		body, _ := json.Marshal(obj)
		n.children[attribsName] = &node{content: body}
		n.order = append(n.order, attribsName)
	}

	return n
}

func mangle(want string, existing map[string]*node) string {
	name := want
	for {
		if _, taken := existing[name]; !taken {
			return name
		}
		name = "_" + name
	}
}

func disambiguate(children []*xhtml.Node) []string {
	counts := make(map[string]int)
	for _, c := range children {
		counts[c.Data]++
	}
	seen := make(map[string]int)
	names := make([]string, len(children))
	for i, c := range children {
		if counts[c.Data] == 1 {
			names[i] = c.Data
			continue
		}
		names[i] = c.Data + "_" + strconv.Itoa(seen[c.Data])
		seen[c.Data]++
	}
	return names
}

func (b *Backend) resolve(path []string) (*node, bool) {
	n := b.root
	for _, seg := range path {
		if n.children == nil {
			return nil, false
		}
		child, ok := n.children[seg]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	n, ok := b.resolve(path)
	if !ok {
		return backend.Info{}, backend.NotFound(path)
	}
	if n.isDir {
		return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
	}
	ct := "text/plain"
	if len(path) > 0 && strings.HasSuffix(path[len(path)-1], attribsFile) {
		ct = "application/json"
	}
	return backend.Info{Kind: backend.KindFile, Size: int64(len(n.content)), ModTime: b.opened, ContentType: ct}, nil
}

func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	n, ok := b.resolve(path)
	if !ok || !n.isDir {
		return nil, backend.NotFound(path)
	}
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out, nil
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	n, ok := b.resolve(path)
	if !ok || n.isDir {
		return nil, backend.NotFound(path)
	}
	out := make([]byte, len(n.content))
	copy(out, n.content)
	return out, nil
}

func (b *Backend) Close(ctx context.Context) error { return nil }
