package webdav

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/vfs/backend"
)

// maxEnumerationDepth bounds Depth-infinity traversal against pathological
// tree depth, per the configurable depth cap guidance for unbounded traversals.
const maxEnumerationDepth = 1024

type depth int

const (
	depthZero depth = iota
	depthOne
	depthInfinity
)

func parseDepth(raw string) depth {
	switch raw {
	case "0":
		return depthZero
	case "1":
		return depthOne
	case "", "infinity":
		return depthInfinity
	default:
		return depthInfinity
	}
}

// xmlMultistatus and friends mirror RFC 4918's multistatus shape closely
// enough to serialize the five properties this server claims to support.
type xmlMultistatus struct {
	XMLName   xml.Name      `xml:"D:multistatus"`
	DAVNS     string        `xml:"xmlns:D,attr"`
	Responses []xmlResponse `xml:"D:response"`
}

type xmlResponse struct {
	Href      string         `xml:"D:href"`
	Propstats []xmlPropstat  `xml:"D:propstat"`
}

// Prop holds either an xmlProp (the successful propstat) or an
// xmlUnknownProp (the 404 propstat listing names the request asked for
// that this server doesn't support). Both marshal under the "D:prop" tag
// this field carries, since neither declares its own XMLName.
type xmlPropstat struct {
	Prop   any    `xml:"D:prop"`
	Status string `xml:"D:status"`
}

type xmlProp struct {
	DisplayName     string   `xml:"D:displayname,omitempty"`
	ContentLength   string   `xml:"D:getcontentlength,omitempty"`
	ContentType     string   `xml:"D:getcontenttype,omitempty"`
	ResourceType    *struct {
		Collection *struct{} `xml:"D:collection,omitempty"`
	} `xml:"D:resourcetype,omitempty"`
	LastModified string `xml:"D:getlastmodified,omitempty"`
}

// xmlUnknownProp renders a flat list of empty elements, one per property
// name a PROPFIND request asked for that this server doesn't recognize.
// Built via ,innerxml rather than a typed field list since the set of
// names is only known at request time.
type xmlUnknownProp struct {
	Inner string `xml:",innerxml"`
}

// standardProps is the fixed set of properties this server reports for
// every resource, regardless of what a request's <prop> element names.
var standardProps = map[string]bool{
	"displayname":      true,
	"getcontentlength": true,
	"getcontenttype":   true,
	"resourcetype":     true,
	"getlastmodified":  true,
}

var errMalformedPropfindBody = errors.New("malformed PROPFIND request body")

// requestedProps is the parsed shape of a PROPFIND request body: which of
// the named properties (if any) this server doesn't recognize. An
// <allprop/> request, a <propname/> request, and an empty or missing body
// all resolve to a zero requestedProps, since this server always reports
// the same standard property set regardless of which of those three forms
// was used.
type requestedProps struct {
	unknown []string
}

type xmlNamedElem struct {
	XMLName xml.Name
}

type xmlPropfindRequest struct {
	XMLName  xml.Name      `xml:"propfind"`
	AllProp  *struct{}     `xml:"allprop"`
	PropName *struct{}     `xml:"propname"`
	Prop     *xmlPropElems `xml:"prop"`
}

type xmlPropElems struct {
	Items []xmlNamedElem `xml:",any"`
}

// parsePropfindBody reads and classifies a PROPFIND request body. A body
// that is empty, absent, or an <allprop/>/<propname/> request all request
// the standard property set. A <prop> request naming properties outside
// standardProps surfaces those names so buildResponse can report them as
// 404 in a separate propstat block, per RFC 4918's multistatus model for
// a resource missing a requested property.
func parsePropfindBody(body io.Reader) (requestedProps, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return requestedProps{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return requestedProps{}, nil
	}

	var req xmlPropfindRequest
	if err := xml.Unmarshal(data, &req); err != nil {
		return requestedProps{}, errMalformedPropfindBody
	}
	if req.Prop == nil {
		return requestedProps{}, nil
	}

	var unknown []string
	for _, item := range req.Prop.Items {
		if !standardProps[item.XMLName.Local] {
			unknown = append(unknown, item.XMLName.Local)
		}
	}
	return requestedProps{unknown: unknown}, nil
}

func unknownPropInnerXML(names []string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString("<")
		b.WriteString(name)
		b.WriteString("/>")
	}
	return b.String()
}

// resourceEntry pairs a canonical path with its resolved info. When the
// lookup fails, info is left zero and notFound is set for a missing path,
// failed for any other error.
type resourceEntry struct {
	path     []string
	info     backend.Info
	notFound bool
	failed   bool
}

// enumerate walks path to the requested depth, issuing List calls only
// where the depth mode requires descending.
func enumerate(ctx context.Context, b backend.Backend, path []string, d depth) []resourceEntry {
	info, err := b.Info(ctx, path)
	if backend.IsNotFound(err) {
		return []resourceEntry{{path: path, notFound: true}}
	}
	if err != nil {
		return []resourceEntry{{path: path, failed: true}}
	}

	entries := []resourceEntry{{path: path, info: info}}
	if d == depthZero || !info.IsDir() {
		return entries
	}

	if d == depthOne {
		children, err := b.List(ctx, path)
		if err != nil {
			return entries
		}
		for _, name := range children {
			childPath := append(append([]string(nil), path...), name)
			ci, err := b.Info(ctx, childPath)
			if backend.IsNotFound(err) {
				entries = append(entries, resourceEntry{path: childPath, notFound: true})
				continue
			}
			if err != nil {
				entries = append(entries, resourceEntry{path: childPath, failed: true})
				continue
			}
			entries = append(entries, resourceEntry{path: childPath, info: ci})
		}
		return entries
	}

	// depthInfinity: explicit stack-based traversal bounded by
	// maxEnumerationDepth.
	type frame struct {
		path []string
	}
	stack := []frame{{path: path}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(f.path) > maxEnumerationDepth {
			continue
		}

		children, err := b.List(ctx, f.path)
		if err != nil {
			continue
		}
		for _, name := range children {
			childPath := append(append([]string(nil), f.path...), name)
			ci, err := b.Info(ctx, childPath)
			switch {
			case backend.IsNotFound(err):
				entries = append(entries, resourceEntry{path: childPath, notFound: true})
			case err != nil:
				entries = append(entries, resourceEntry{path: childPath, failed: true})
			default:
				entries = append(entries, resourceEntry{path: childPath, info: ci})
				if ci.IsDir() {
					stack = append(stack, frame{path: childPath})
				}
			}
		}
	}

	return entries
}

func buildMultistatus(entries []resourceEntry, req requestedProps) []byte {
	ms := xmlMultistatus{DAVNS: "DAV:"}
	for _, e := range entries {
		ms.Responses = append(ms.Responses, buildResponse(e, req))
	}

	out, _ := xml.MarshalIndent(ms, "", "  ")
	return append([]byte(xml.Header), out...)
}

func buildResponse(e resourceEntry, req requestedProps) xmlResponse {
	href := "/" + strings.TrimPrefix(encodeHref(joinPath(e.path)), "/")

	if e.notFound {
		return xmlResponse{
			Href:      href,
			Propstats: []xmlPropstat{{Prop: xmlProp{}, Status: status(http.StatusNotFound)}},
		}
	}
	if e.failed {
		return xmlResponse{
			Href:      href,
			Propstats: []xmlPropstat{{Prop: xmlProp{}, Status: status(http.StatusInternalServerError)}},
		}
	}

	prop := xmlProp{
		DisplayName:  displayName(e.path),
		LastModified: e.info.ModTime.UTC().Format(time.RFC1123),
	}
	if e.info.IsDir() {
		prop.ResourceType = &struct {
			Collection *struct{} `xml:"D:collection,omitempty"`
		}{Collection: &struct{}{}}
	} else {
		prop.ContentLength = strconv.FormatInt(e.info.Size, 10)
		prop.ContentType = e.info.ContentType
	}

	propstats := []xmlPropstat{{Prop: prop, Status: status(http.StatusOK)}}
	if len(req.unknown) > 0 {
		propstats = append(propstats, xmlPropstat{
			Prop:   xmlUnknownProp{Inner: unknownPropInnerXML(req.unknown)},
			Status: status(http.StatusNotFound),
		})
	}

	return xmlResponse{Href: href, Propstats: propstats}
}

func displayName(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	return path[len(path)-1]
}

func status(code int) string {
	return "HTTP/1.1 " + strconv.Itoa(code) + " " + http.StatusText(code)
}

func encodeHref(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
