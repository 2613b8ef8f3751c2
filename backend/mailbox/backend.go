// Package mailbox implements a Backend over an mbox file. The root
// contains one file per message, named NNNN_<sanitised subject>.eml
// (zero-padded ordinal, subject flattened to filesystem-safe characters,
// truncated); body is the raw RFC 822 message.
package mailbox

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-mbox"
	"github.com/mwantia/vfs/backend"
)

const name = "mailbox"

const maxSubjectLen = 48

// Backend is a read-only view over an mbox file split into messages once
// at construction.
type Backend struct {
	messages map[string][]byte
	order    []string
	opened   time.Time
}

// New splits the mbox file at path on its "From " envelope lines and
// parses each message's headers to derive a display name.
func New(path string) (*Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}
	defer f.Close()

	raw, err := splitMessages(f)
	if err != nil {
		return nil, backend.Wrap(name, err)
	}

	width := len(strconv.Itoa(max(len(raw)-1, 0)))

	b := &Backend{messages: make(map[string][]byte, len(raw)), opened: time.Now()}

	for i, body := range raw {
		subject := subjectOf(body)
		fname := fmt.Sprintf("%0*d_%s.eml", width, i, sanitizeSubject(subject))
		b.messages[fname] = body
		b.order = append(b.order, fname)
	}

	return b, nil
}

// splitMessages breaks an mbox stream into per-message byte slices using
// the "From " envelope framing convention, via go-mbox's reader.
func splitMessages(f *os.File) ([][]byte, error) {
	r := mbox.NewReader(f)

	var messages [][]byte
	for {
		mr, err := r.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(mr)
		if err != nil {
			return nil, err
		}
		messages = append(messages, body)
	}

	return messages, nil
}

func subjectOf(raw []byte) string {
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return "no_subject"
	}
	subject := msg.Header.Get("Subject")
	if subject == "" {
		return "no_subject"
	}
	return subject
}

func sanitizeSubject(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "no_subject"
	}
	if len(out) > maxSubjectLen {
		out = out[:maxSubjectLen]
	}
	return out
}

func (b *Backend) Info(ctx context.Context, path []string) (backend.Info, error) {
	if len(path) == 0 {
		return backend.Info{Kind: backend.KindDirectory, ModTime: b.opened}, nil
	}
	if len(path) == 1 {
		if body, ok := b.messages[path[0]]; ok {
			return backend.Info{Kind: backend.KindFile, Size: int64(len(body)), ModTime: b.opened, ContentType: "message/rfc822"}, nil
		}
	}
	return backend.Info{}, backend.NotFound(path)
}

func (b *Backend) List(ctx context.Context, path []string) ([]string, error) {
	if len(path) != 0 {
		return nil, backend.NotFound(path)
	}
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out, nil
}

func (b *Backend) Get(ctx context.Context, path []string) ([]byte, error) {
	if len(path) != 1 {
		return nil, backend.NotFound(path)
	}
	body, ok := b.messages[path[0]]
	if !ok {
		return nil, backend.NotFound(path)
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func (b *Backend) Close(ctx context.Context) error { return nil }
