// Package storage keeps document binaries. The document records only hold the object
// name, size, checksum and URL returned here.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"path"
	"strings"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// Object describes a stored binary.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Checksum    string
	URL         string
}

type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (Object, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	// URL returns a link clients can fetch the object from.
	URL(ctx context.Context, name string) (string, error)
}

// ObjectName builds a collision free name like uploads/<id>/<unix>_<file>.
func ObjectName(kind, id, filename string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = "file"
	}

	base = strings.Map(func(r rune) rune {
		if r == ' ' || r < 0x20 {
			return '_'
		}

		return r
	}, base)

	return fmt.Sprintf("%s/%s/%d_%s", kind, id, now.Unix(), base)
}

// checksumReader counts and hashes everything read through it.
type checksumReader struct {
	r    io.Reader
	h    hash.Hash
	size int64
}

func newChecksumReader(r io.Reader) *checksumReader {
	return &checksumReader{r: r, h: sha256.New()}
}

func (c *checksumReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.h.Write(p[:n])
		c.size += int64(n)
	}

	return n, err
}

func (c *checksumReader) Sum() string {
	return "sha256:" + hex.EncodeToString(c.h.Sum(nil))
}
