// Command davall serves a single structured data file as a read-only
// WebDAV tree over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mwantia/vfs/backend"
	"github.com/mwantia/vfs/backend/archive"
	"github.com/mwantia/vfs/backend/csvfile"
	"github.com/mwantia/vfs/backend/html"
	"github.com/mwantia/vfs/backend/ini"
	"github.com/mwantia/vfs/backend/jsonfile"
	"github.com/mwantia/vfs/backend/mailbox"
	"github.com/mwantia/vfs/backend/osinfo"
	"github.com/mwantia/vfs/backend/source"
	"github.com/mwantia/vfs/backend/sqlite"
	"github.com/mwantia/vfs/backend/toml"
	"github.com/mwantia/vfs/backend/xmlfile"
	vlog "github.com/mwantia/vfs/log"
	"github.com/mwantia/vfs/webdav"
)

const defaultPort = 8080

const (
	exitOK           = 0
	exitConfigError  = 1
	exitBackendError = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("davall", flag.ContinueOnError)
	port := fs.Int("p", defaultPort, "listen port")
	fs.IntVar(port, "port", defaultPort, "listen port")
	host := fs.String("host", "0.0.0.0", "listen host")
	typeTag := fs.String("t", "", "backend type override")
	fs.StringVar(typeTag, "type", "", "backend type override")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, or error")

	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "davall:", err)
		return exitConfigError
	}

	positional := fs.Args()
	var source string
	if len(positional) > 0 {
		source = positional[0]
	}

	if source == "" && *typeTag != "osinfo" {
		fmt.Fprintln(os.Stderr, "davall: a file argument is required unless --type osinfo")
		return exitConfigError
	}

	tag := *typeTag
	if tag == "" {
		var err error
		tag, err = detectType(source)
		if err != nil {
			fmt.Fprintln(os.Stderr, "davall:", err)
			return exitConfigError
		}
	}

	logger := vlog.NewLogger("davall", level, "", false)

	b, err := construct(tag, source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "davall:", err)
		return exitBackendError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.Close(closeCtx); err != nil {
			logger.Warn("error closing backend: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	srv := &http.Server{
		Addr:    addr,
		Handler: webdav.NewRouter(b, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s (backend: %s)", addr, tag)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error: %v", err)
			return exitBackendError
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}

	return exitOK
}

// parseLogLevel validates the -log-level flag value. vlog.Parse panics on
// an unrecognized name since a logger's own level isn't something to
// silently default around; recover here to turn that into an ordinary
// config error the flag-parsing path above already knows how to report.
func parseLogLevel(raw string) (level vlog.LogLevel, err error) {
	defer func() {
		if r := recover(); r != nil {
			level = vlog.Info
			err = fmt.Errorf("invalid -log-level %q", raw)
		}
	}()
	return vlog.Parse(raw), nil
}

// detectType maps a file extension to an adapter tag, per the CLI's
// extension table.
func detectType(path string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tar.xz"),
		strings.HasSuffix(lower, ".tar"):
		return "tar", nil
	}

	switch filepath.Ext(lower) {
	case ".zip":
		return "zip", nil
	case ".sqlite", ".db":
		return "sqlite", nil
	case ".json":
		return "json", nil
	case ".csv":
		return "csv", nil
	case ".ini", ".cfg":
		return "ini", nil
	case ".xml":
		return "xml", nil
	case ".toml":
		return "toml", nil
	case ".html", ".htm":
		return "html", nil
	case ".mbox":
		return "mailbox", nil
	case ".py":
		return "ast", nil
	default:
		return "", fmt.Errorf("unrecognized extension for %q; use -t to specify a type", path)
	}
}

func construct(tag, source string) (backend.Backend, error) {
	switch tag {
	case "zip":
		return archive.NewZip(source)
	case "tar":
		return archive.NewTar(source, tarCompressionFor(source))
	case "sqlite", "db":
		return sqlite.New(source)
	case "json":
		return jsonfile.New(source)
	case "csv":
		return csvfile.New(source)
	case "ini", "cfg":
		return ini.New(source)
	case "xml":
		return xmlfile.New(source)
	case "toml":
		return toml.New(source)
	case "html", "htm":
		return html.New(source)
	case "mailbox", "mbox":
		return mailbox.New(source)
	case "ast", "source":
		return source0(source)
	case "osinfo":
		return osinfo.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend type %q", tag)
	}
}

// source0 avoids a name collision between the "source" package import and
// the source-string local variable used throughout run/construct.
func source0(path string) (backend.Backend, error) {
	return source.New(path)
}

func tarCompressionFor(path string) archive.Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return archive.CompressionGzip
	case strings.HasSuffix(lower, ".tar.bz2"):
		return archive.CompressionBzip2
	case strings.HasSuffix(lower, ".tar.xz"):
		return archive.CompressionXz
	default:
		return archive.CompressionNone
	}
}
