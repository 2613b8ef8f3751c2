// Package csvfile implements a Backend over a single CSV file. The root
// contains _headers.txt (one column name per line) and one row_NNNN.json
// per data row, zero-padded to the width of the largest row index; body is
// a JSON object keyed by header name.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mwantia/vfs/backend"
)

const name = "csv"

const headersFile = "_headers.txt"

// Backend is a read-only view over a CSV file parsed once at construction.
type Backend struct {
	headers []byte
	rows    map[string][]byte
	order   []string
	opened  time.Time
}

// New reads and parses the CSV file at path. The first record is treated
// as the header row.
func New(path string) (*Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, backend.Wrap(name, err)
	}
	if len(records) == 0 {
		return nil, backend.Wrap(name, fmt.Errorf("empty CSV"))
	}

	header := records[0]
	dataRows := records[1:]

	width := len(strconv.Itoa(max(len(dataRows)-1, 0)))

	b := &Backend{
		headers: []byte(joinLines(header)),
		rows:    make(map[string][]byte, len(dataRows)),
		opened:  time.Now(),
	}

	for i, row := range dataRows {
		obj := make(map[string]string, len(header))
		for c, col := range header {
			if c < len(row) {
				obj[col] = row[c]
			} else {
				obj[col] = ""
			}
		}
		body, err := json.Marshal(obj)
		if err != nil {
			return nil, backend.Wrap(name, err)
		}
		fname := fmt.Sprintf("row_%0*d.json", width, i)
		b.rows[fname] = body
		b.order = append(b.order, fname)
	}

	return b, nil
}

func joinLines(cols []string) string {
	out := ""
	for _, c := range cols {
		out += c + "\n"
	}
	return out
}

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	switch len(path) {
	case 0:
		return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
	case 1:
		if path[0] == headersFile {
			return backend.Info{Kind: backend.KindFile, Size: int64(len(b.headers)), ModTime: b.opened, ContentType: "text/plain"}, nil
		}
		if body, ok := b.rows[path[0]]; ok {
			return backend.Info{Kind: backend.KindFile, Size: int64(len(body)), ModTime: b.opened, ContentType: "application/json"}, nil
		}
	}
	return backend.Info{}, backend.NotFound(path)
}

func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	if len(path) != 0 {
		return nil, backend.NotFound(path)
	}
	out := make([]string, 0, len(b.order)+1)
	out = append(out, headersFile)
	out = append(out, b.order...)
	return out, nil
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	if len(path) != 1 {
		return nil, backend.NotFound(path)
	}
	if path[0] == headersFile {
		out := make([]byte, len(b.headers))
		copy(out, b.headers)
		return out, nil
	}
	if body, ok := b.rows[path[0]]; ok {
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	}
	return nil, backend.NotFound(path)
}

func (b *Backend) Close(ctx context.Context) error { return nil }
