// Package blobstore stores complaint images and hands back an opaque
// reference path. The rest of the server only ever sees the reference.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store persists an uploaded image and returns its reference path.
type Store interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// Disk writes uploads to a local directory served at /uploads/.
type Disk struct {
	dir string
}

// NewDisk creates the upload directory if needed and returns a disk store.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1e9), safeExt(filename))

	f, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}

	return "/uploads/" + name, nil
}

// safeExt keeps only a plain lower-case extension; anything surprising is
// dropped rather than written into a filename.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
