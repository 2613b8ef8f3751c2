// Package backend defines the narrow, read-only virtual filesystem contract
// that every data-format adapter implements. A Backend never exposes the
// native shape of its source directly; it maps that shape onto a tree of
// path segments, the same contract regardless of whether the source is a
// ZIP archive, a SQLite database, or a JSON document.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes the two resource shapes a Backend can report.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Info is the descriptor returned by Info. Size and ContentType are only
// meaningful for KindFile; ModTime falls back to the backend's open time
// when the source has no native timestamp.
type Info struct {
	Kind        Kind
	Size        int64
	ModTime     time.Time
	ContentType string
}

// IsDir reports whether this Info describes a directory.
func (i Info) IsDir() bool {
	return i.Kind == KindDirectory
}

// NotFoundError reports that a virtual path does not exist, or that an
// operation was attempted against a path of the wrong kind (e.g. List on
// a file). It is distinct from BackendError: it never indicates source
// corruption or I/O failure.
type NotFoundError struct {
	Path []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: /%s", strings.Join(e.Path, "/"))
}

// NotFound builds a NotFoundError for path.
func NotFound(path []string) error {
	return &NotFoundError{Path: append([]string(nil), path...)}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// BackendError reports that the backend could not satisfy a request because
// of source corruption, an I/O failure, or a format violation encountered
// mid-read. Name identifies the backend so the frontend can render a short,
// attributable diagnostic.
type BackendError struct {
	Name string
	Err  error
}

func (e *BackendError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Wrap builds a BackendError attributed to the given adapter name. Returns
// nil if err is nil, so it composes with `return backend.Wrap(name, err)`.
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Name: name, Err: err}
}

// Backend is the complete read-only contract an adapter implements. Every
// method takes a canonical path: an ordered sequence of non-empty segments,
// with the empty slice denoting the root directory.
//
// Implementations must make Info/List/Get safe for concurrent invocation;
// serialize internally around any native resource that is not already safe
// for concurrent use (a single SQL connection, a mailbox cursor). Backends
// with no such resource (parsed JSON/XML/TOML trees) need no locking.
type Backend interface {
	// Info classifies the resource at path. It must not perform heavy
	// work; adapters that cannot answer in near-constant time are
	// expected to have built an index at construction.
	Info(ctx context.Context, path []string) (Info, error)

	// List returns the direct child names of the directory at path, in
	// an order that is stable across calls against the same handle
	// state. It fails with NotFoundError if path is not a directory.
	List(ctx context.Context, path []string) ([]string, error)

	// Get returns the complete body of the file at path. It fails with
	// NotFoundError if path is not a file.
	Get(ctx context.Context, path []string) ([]byte, error)

	// Close releases any resource the backend holds (open archive,
	// database connection, mailbox file). Close is idempotent.
	Close(ctx context.Context) error
}
