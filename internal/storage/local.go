package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const localScheme = "local://"

// Local stores objects below a directory on disk.
type Local struct {
	dir string
}

var _ Store = (*Local)(nil)

func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving storage dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}

	return &Local{dir: abs}, nil
}

func (l *Local) path(name string) (string, error) {
	p := filepath.Join(l.dir, filepath.FromSlash(name))
	if p != l.dir && !strings.HasPrefix(p, l.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("object name %q escapes the storage dir", name)
	}

	return p, nil
}

func (l *Local) Put(_ context.Context, name, contentType string, r io.Reader) (Object, error) {
	p, err := l.path(name)
	if err != nil {
		return Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return Object{}, fmt.Errorf("creating object dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	cr := newChecksumReader(r)
	if _, err := io.Copy(f, cr); err != nil {
		f.Close()
		return Object{}, fmt.Errorf("writing object: %w", err)
	}

	if err := f.Close(); err != nil {
		return Object{}, fmt.Errorf("closing object: %w", err)
	}

	if err := os.Rename(f.Name(), p); err != nil {
		return Object{}, fmt.Errorf("moving object into place: %w", err)
	}

	return Object{
		Name:        name,
		ContentType: contentType,
		Size:        cr.size,
		Checksum:    cr.Sum(),
		URL:         localScheme + name,
	}, nil
}

func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := l.path(strings.TrimPrefix(name, localScheme))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}

		return nil, fmt.Errorf("opening object: %w", err)
	}

	return f, nil
}

func (l *Local) Delete(_ context.Context, name string) error {
	p, err := l.path(strings.TrimPrefix(name, localScheme))
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}

		return fmt.Errorf("deleting object: %w", err)
	}

	return nil
}

// URL returns the local:// reference; the API serves the bytes through its download route.
func (l *Local) URL(_ context.Context, name string) (string, error) {
	return localScheme + strings.TrimPrefix(name, localScheme), nil
}
