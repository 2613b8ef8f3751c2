package webdav

import (
	"archive/zip"
	"context"
	"io"

	"github.com/mwantia/vfs/backend"
)

// writeZipSubtree streams a ZIP archive of the subtree rooted at path to w.
// Archive entry names are relative to path.
func writeZipSubtree(ctx context.Context, w io.Writer, b backend.Backend, path []string) error {
	zw := zip.NewWriter(w)
	if err := addZipEntries(ctx, zw, b, path, ""); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func addZipEntries(ctx context.Context, zw *zip.Writer, b backend.Backend, path []string, rel string) error {
	info, err := b.Info(ctx, path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		body, err := b.Get(ctx, path)
		if err != nil {
			return err
		}
		f, err := zw.Create(rel)
		if err != nil {
			return err
		}
		_, err = f.Write(body)
		return err
	}

	children, err := b.List(ctx, path)
	if err != nil {
		return err
	}
	for _, name := range children {
		childPath := append(append([]string(nil), path...), name)
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		if err := addZipEntries(ctx, zw, b, childPath, childRel); err != nil {
			return err
		}
	}
	return nil
}
