// Package xmlfile implements a Backend over a single XML document. The
// root element becomes a directory named after its tag; inside any element
// directory: an optional _text file if the element has non-whitespace
// character data, an optional _attribs.json file if it has attributes, and
// one child directory per child element, with repeated tags disambiguated
// as tag_0, tag_1, ... in document order.
package xmlfile

import (
	"context"
	"encoding/xml"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mwantia/vfs/backend"
)

const name = "xml"

const (
	textFile    = "_text"
	attribsFile = "_attribs.json"
)

type element struct {
	attrs    map[string]string
	attrOrd  []string
	text     string
	children []*element
	tag      string
}

// node is the flattened, path-addressable form of an element: either a
// directory (an element's own contents) or a file (_text/_attribs.json).
type node struct {
	isDir    bool
	content  []byte
	children map[string]*node
	order    []string
}

// Backend is a read-only view over an XML document parsed once at
// construction.
type Backend struct {
	root   *node
	opened time.Time
}

// New parses the XML document at path.
func New(path string) (*Backend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}

	dec := xml.NewDecoder(strings.NewReader(string(raw)))
	root, err := parseElement(dec, nil)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}
	if root == nil {
		return nil, backend.Wrap(name, xmlErr("empty document"))
	}

	n := elementToNode(root)
	// The container root's single child is the document's root element,
	// named after its tag.
	top := &node{isDir: true, children: map[string]*node{root.tag: n}, order: []string{root.tag}}

	return &Backend{root: top, opened: time.Now()}, nil
}

type xmlErr string

func (e xmlErr) Error() string { return string(e) }

// parseElement reads tokens until it has consumed one complete element
// (the first StartElement found, or the one named by start if already
// consumed by the caller).
func parseElement(dec *xml.Decoder, start *xml.StartElement) (*element, error) {
	var tok xml.Token
	var err error
	if start == nil {
		for {
			tok, err = dec.Token()
			if err != nil {
				return nil, err
			}
			if se, ok := tok.(xml.StartElement); ok {
				start = &se
				break
			}
		}
	}

	el := &element{
		attrs: make(map[string]string),
		tag:   start.Name.Local,
	}
	for _, a := range start.Attr {
		el.attrs[a.Name.Local] = a.Value
		el.attrOrd = append(el.attrOrd, a.Name.Local)
	}

	var text strings.Builder
	for {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, &t)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			el.text = text.String()
			return el, nil
		}
	}
}

func elementToNode(el *element) *node {
	n := &node{isDir: true, children: make(map[string]*node)}

	names := disambiguate(el.children)
	for i, child := range el.children {
		cn := elementToNode(child)
		n.children[names[i]] = cn
		n.order = append(n.order, names[i])
	}

	textName := mangle(textFile, n.children)
	if strings.TrimSpace(el.text) != "" {
		n.children[textName] = &node{content: []byte(el.text)}
		n.order = append(n.order, textName)
	}

	attribsName := mangle(attribsFile, n.children)
	if len(el.attrOrd) > 0 {
		obj := make(map[string]string, len(el.attrOrd))
		for _, k := range el.attrOrd {
			obj[k] = el.attrs[k]
		}
		body, _ := json.Marshal(obj)
		n.children[attribsName] = &node{content: body}
		n.order = append(n.order, attribsName)
	}

	return n
}

// mangle returns name, or a doubled-leading-underscore variant if name
// already names a real child, per the collision rule: the synthetic file
// gives way, never the user-facing element.
func mangle(want string, existing map[string]*node) string {
	name := want
	for {
		if _, taken := existing[name]; !taken {
			return name
		}
		name = "_" + name
	}
}

// disambiguate assigns each child its path segment name: the bare tag if
// it is unique among its siblings, or tag_0, tag_1, ... in document order
// if the tag repeats.
func disambiguate(children []*element) []string {
	counts := make(map[string]int)
	for _, c := range children {
		counts[c.tag]++
	}
	seen := make(map[string]int)
	names := make([]string, len(children))
	for i, c := range children {
		tag := c.tag
		if counts[tag] == 1 {
			names[i] = tag
			continue
		}
		names[i] = tag + "_" + strconv.Itoa(seen[tag])
		seen[tag]++
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
	if strings.HasSuffix(lastSegment(path), attribsFile) {
		ct = "application/json"
	}
	return backend.Info{Kind: backend.KindFile, Size: int64(len(n.content)), ModTime: b.opened, ContentType: ct}, nil
}

func lastSegment(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
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
