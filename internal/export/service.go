package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

const manifestName = "manifest.json"

// Item is a single exported document with the local copy of its file.
type Item struct {
	View     document.UnifiedView
	Name     string
	FilePath string
}

type Request struct {
	EntityType document.EntityType
	EntityID   string
	Viewer     document.Viewer
}

type ManifestEntry struct {
	Source   document.Source `json:"source"`
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Number   string          `json:"number,omitempty"`
	Status   string          `json:"status"`
	Version  int             `json:"version"`
	File     string          `json:"file"`
	Size     int64           `json:"size"`
	Checksum string          `json:"checksum,omitempty"`
}

type Manifest struct {
	EntityType document.EntityType `json:"entityType"`
	EntityID   string              `json:"entityId,omitempty"`
	ExportedAt time.Time           `json:"exportedAt"`
	ExportedBy string              `json:"exportedBy"`
	Documents  []ManifestEntry     `json:"documents"`
}

// Service bundles the current documents of one entity.
type Service struct {
	docs  *document.Service
	store storage.Store
	now   func() time.Time
}

func NewService(docs *document.Service, store storage.Store) *Service {
	return &Service{docs: docs, store: store, now: time.Now}
}

// WithClock replaces time.Now for the manifest timestamp.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Export copies the downloadable documents of an entity into outputDir, four at a time.
// Items keep the unified view order.
func (s *Service) Export(ctx context.Context, req Request, outputDir string) ([]Item, error) {
	views, err := s.docs.ListUnified(ctx, document.UnifiedFilter{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	}, req.Viewer)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(views))

	for _, v := range views {
		if !v.CanDownload || v.Object == "" {
			continue
		}

		items = append(items, Item{View: v, Name: archiveName(v)})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i := range items {
		g.Go(func() error {
			p, err := s.download(ctx, items[i], outputDir)
			if err != nil {
				return fmt.Errorf("downloading %s %s: %w", items[i].View.Source, items[i].View.ID, err)
			}

			items[i].FilePath = p

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *Service) download(ctx context.Context, item Item, dir string) (string, error) {
	rc, err := s.store.Open(ctx, item.View.Object)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	p := filepath.Join(dir, filepath.FromSlash(item.Name))

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return p, nil
}

// archiveName places a file under its source, e.g. uploaded/NATIONAL_ID_1a2b3c4d.pdf.
func archiveName(v document.UnifiedView) string {
	ext := path.Ext(v.File.Name)
	if ext == "" {
		ext = path.Ext(v.Object)
	}

	label := v.Number
	if label == "" {
		label = v.ID.String()[:8]
	}

	base := sanitize(v.Type + "_" + label)

	return strings.ToLower(string(v.Source)) + "/" + base + strings.ToLower(ext)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, s)
}

// Manifest describes the exported items.
func (s *Service) Manifest(req Request, items []Item) Manifest {
	m := Manifest{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		ExportedAt: s.now().UTC(),
		ExportedBy: req.Viewer.UserID,
		Documents:  make([]ManifestEntry, 0, len(items)),
	}

	for _, item := range items {
		m.Documents = append(m.Documents, ManifestEntry{
			Source:   item.View.Source,
			ID:       item.View.ID.String(),
			Type:     item.View.Type,
			Title:    item.View.Title,
			Number:   item.View.Number,
			Status:   item.View.Status,
			Version:  item.View.Version,
			File:     item.Name,
			Size:     item.View.File.Size,
			Checksum: item.View.File.Checksum,
		})
	}

	return m
}

// GenerateSummary renders one line per exported document.
func (s *Service) GenerateSummary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		expires := "no expiry"
		if item.View.ExpiresAt != nil {
			expires = "expires " + item.View.ExpiresAt.Format(time.DateOnly)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s\n",
			item.View.CreatedAt.Format(time.DateOnly), item.View.Title, item.View.Status, expires, item.Name)
	}

	return sb.String()
}

// WriteZip streams the items, the manifest and the summary as a zip archive.
func (s *Service) WriteZip(w io.Writer, manifest Manifest, items []Item) error {
	zw := zip.NewWriter(w)

	for _, item := range items {
		if err := addFile(zw, item.Name, item.FilePath); err != nil {
			return fmt.Errorf("adding %s: %w", item.Name, err)
		}
	}

	mf, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}

	enc := json.NewEncoder(mf)
	enc.SetIndent("", "  ")

	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	sf, err := zw.Create("summary.txt")
	if err != nil {
		return fmt.Errorf("creating summary: %w", err)
	}

	if _, err := io.WriteString(sf, s.GenerateSummary(items)); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	zf, err := zw.Create(name)
	if err != nil {
		return err
	}

	_, err = io.Copy(zf, f)

	return err
}
