package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCS struct {
	client     *storage.Client
	bucketName string
	signedTTL  time.Duration
	now        func() time.Time
}

var _ Store = (*GCS)(nil)

func NewGCS(ctx context.Context, bucketName, projectID, credentialsPath string, signedTTL time.Duration) (*GCS, error) {
	var opts []option.ClientOption

	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	if projectID != "" {
		opts = append(opts, option.WithQuotaProject(projectID))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCS{client: client, bucketName: bucketName, signedTTL: signedTTL, now: time.Now}, nil
}

func (g *GCS) Put(ctx context.Context, name, contentType string, r io.Reader) (Object, error) {
	writer := g.client.Bucket(g.bucketName).Object(name).NewWriter(ctx)

	if contentType != "" {
		writer.ContentType = contentType
	}

	cr := newChecksumReader(r)
	if _, err := io.Copy(writer, cr); err != nil {
		writer.Close()
		return Object{}, fmt.Errorf("failed to copy data to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return Object{
		Name:        name,
		ContentType: contentType,
		Size:        cr.size,
		Checksum:    cr.Sum(),
		URL:         fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, name),
	}, nil
}

func (g *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(g.bucketName).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}

		return nil, fmt.Errorf("opening GCS object: %w", err)
	}

	return r, nil
}

func (g *GCS) Delete(ctx context.Context, name string) error {
	if err := g.client.Bucket(g.bucketName).Object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}

		return fmt.Errorf("deleting GCS object: %w", err)
	}

	return nil
}

// URL returns a V4 signed GET link valid for the configured TTL.
func (g *GCS) URL(_ context.Context, name string) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: g.now().Add(g.signedTTL),
	}

	u, err := g.client.Bucket(g.bucketName).SignedURL(name, opts)
	if err != nil {
		return "", fmt.Errorf("signing GCS url: %w", err)
	}

	return u, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
