package document

import (
	"cmp"
	"context"
	"iter"
	"mime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

// Source tells which lifecycle a unified view entry came from.
type Source string

const (
	SourceGenerated Source = "GENERATED"
	SourceUploaded  Source = "UPLOADED"
)

// Upload statuses shown in the unified view next to the verification states.
const (
	ViewStatusActive   = "ACTIVE"
	ViewStatusReplaced = "REPLACED"
	ViewStatusDeleted  = "DELETED"
)

// Viewer is the user a view is computed for.
type Viewer struct {
	UserID string
	Admin  bool
}

type UnifiedFilter struct {
	Source         Source
	Category       catalog.Category
	Status         string
	Search         string
	EntityType     EntityType
	EntityID       string
	IncludeHistory bool
}

type ViewFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
	URL      string `json:"url,omitempty"`
}

// UnifiedView is the common listing shape of generated and uploaded documents.
type UnifiedView struct {
	Source        Source           `json:"source"`
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      catalog.Category `json:"category"`
	Type          string           `json:"type"`
	Number        string           `json:"number,omitempty"`
	File          ViewFile         `json:"file"`
	CreatedAt     time.Time        `json:"createdAt"`
	CreatedBy     string           `json:"createdBy"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
	Status        string           `json:"status"`
	Version       int              `json:"version"`
	Tags          []string         `json:"tags"`
	EntityType    EntityType       `json:"entityType,omitempty"`
	EntityID      string           `json:"entityId,omitempty"`
	CanDownload   bool             `json:"canDownload"`
	CanDelete     bool             `json:"canDelete"`
	CanRegenerate bool             `json:"canRegenerate"`
	CanReplace    bool             `json:"canReplace"`

	// Object is the storage object name of the file, empty when nothing was stored.
	Object string `json:"-"`

	memberName string
}

// Unified yields the merged view of both stores, newest first. Each range re-reads the
// stores, so the sequence can be iterated again after a mutation.
func (s *Service) Unified(ctx context.Context, filter UnifiedFilter, viewer Viewer) iter.Seq2[UnifiedView, error] {
	return func(yield func(UnifiedView, error) bool) {
		views, err := s.loadUnified(ctx, filter, viewer)
		if err != nil {
			yield(UnifiedView{}, err)
			return
		}

		for _, v := range views {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// ListUnified collects Unified into a slice.
func (s *Service) ListUnified(ctx context.Context, filter UnifiedFilter, viewer Viewer) ([]UnifiedView, error) {
	views := []UnifiedView{}

	for v, err := range s.Unified(ctx, filter, viewer) {
		if err != nil {
			return nil, err
		}

		views = append(views, v)
	}

	return views, nil
}

func (s *Service) loadUnified(ctx context.Context, filter UnifiedFilter, viewer Viewer) ([]UnifiedView, error) {
	var (
		generated []*GeneratedDocument
		uploaded  []*UploadedDocument
	)

	g, gctx := errgroup.WithContext(ctx)

	if filter.Source == "" || filter.Source == SourceGenerated {
		g.Go(func() error {
			if filter.EntityType != "" && filter.EntityType != EntityMember {
				return nil
			}

			docs, err := s.repo.ListGenerated(gctx, GeneratedFilter{Category: filter.Category, MemberID: filter.EntityID})
			if err != nil {
				return storageErr("listing generated documents", err)
			}

			generated = docs

			return nil
		})
	}

	if filter.Source == "" || filter.Source == SourceUploaded {
		g.Go(func() error {
			docs, err := s.repo.ListUploaded(gctx, UploadFilter{
				EntityType: filter.EntityType,
				EntityID:   filter.EntityID,
				ActiveOnly: !filter.IncludeHistory,
			})
			if err != nil {
				return storageErr("listing uploads", err)
			}

			uploaded = docs

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]UnifiedView, 0, len(generated)+len(uploaded))

	for _, d := range generated {
		if !filter.IncludeHistory && d.Status == StatusSuperseded {
			continue
		}

		views = append(views, s.generatedView(d, viewer, now))
	}

	for _, u := range uploaded {
		views = append(views, s.uploadedView(u, viewer, now))
	}

	views = slices.DeleteFunc(views, func(v UnifiedView) bool {
		return !filter.matches(v)
	})

	slices.SortFunc(views, func(a, b UnifiedView) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(a.ID.String(), b.ID.String()))
	})

	return views, nil
}

func (f UnifiedFilter) matches(v UnifiedView) bool {
	if f.Category != "" && v.Category != f.Category {
		return false
	}

	if f.Status != "" && !strings.EqualFold(v.Status, f.Status) {
		return false
	}

	if f.EntityType != "" && v.EntityType != f.EntityType {
		return false
	}

	if f.EntityID != "" && v.EntityID != f.EntityID {
		return false
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}

	haystack := append([]string{v.Title, v.Description, v.Number, v.memberName, v.File.Name}, v.Tags...)

	return slices.ContainsFunc(haystack, func(s string) bool {
		return strings.Contains(strings.ToLower(s), term)
	})
}

func (s *Service) generatedView(d *GeneratedDocument, viewer Viewer, now time.Time) UnifiedView {
	tpl, known := s.catalog.Template(d.TemplateType)
	status := EffectiveStatus(d, now)

	v := UnifiedView{
		Source:      SourceGenerated,
		ID:          d.ID,
		Title:       d.Title,
		Description: tpl.Description,
		Category:    d.Category,
		Type:        d.TemplateType,
		Number:      d.DocumentNumber,
		File: ViewFile{
			Name:     d.DocumentNumber + "." + string(d.Artifact.Format),
			MIMEType: mime.TypeByExtension("." + string(d.Artifact.Format)),
			Size:     d.Artifact.Size,
			Checksum: d.Artifact.Checksum,
			URL:      d.Artifact.Location,
		},
		CreatedAt:  d.GeneratedAt,
		CreatedBy:  d.GeneratedBy,
		ExpiresAt:  d.ValidUntil,
		Status:     string(status),
		Version:    d.Version,
		Tags:       []string{},
		Object:     d.Artifact.Location,
		memberName: d.MemberName,
	}

	if d.MemberID != "" {
		v.EntityType = EntityMember
		v.EntityID = d.MemberID
	}

	v.CanDownload = d.Artifact.Location != "" && d.Status != StatusRevoked
	v.CanRegenerate = viewer.Admin && known && tpl.AllowRegeneration && status == StatusIssued

	return v
}

func (s *Service) uploadedView(u *UploadedDocument, viewer Viewer, now time.Time) UnifiedView {
	cfg, known := s.catalog.UploadConfig(u.DocumentType)

	title := u.File.OriginalName
	if known {
		title = cfg.Name
	}

	v := UnifiedView{
		Source:      SourceUploaded,
		ID:          u.ID,
		Title:       title,
		Description: cfg.Description,
		Category:    u.Category,
		Type:        u.DocumentType,
		File: ViewFile{
			Name:     u.File.OriginalName,
			MIMEType: u.File.MIMEType,
			Size:     u.File.Size,
			Checksum: u.File.Checksum,
			URL:      u.File.URL,
		},
		CreatedAt:  u.UploadedAt,
		CreatedBy:  u.UploadedBy,
		ExpiresAt:  u.ExpiryDate,
		Status:     uploadStatus(u, now),
		Version:    max(u.Version, 1),
		Tags:       slices.Clone(u.Tags),
		EntityType: u.LinkedEntityType,
		EntityID:   u.LinkedEntityID,
		Object:     u.File.StoredName,
	}

	if v.Tags == nil {
		v.Tags = []string{}
	}

	v.CanDownload = u.File.URL != ""
	v.CanDelete = canDelete(u, cfg, viewer)
	v.CanReplace = u.IsActive

	return v
}

func uploadStatus(u *UploadedDocument, now time.Time) string {
	if !u.IsActive {
		if u.ReplacedByID != nil {
			return ViewStatusReplaced
		}

		return ViewStatusDeleted
	}

	status := EffectiveVerification(u, now)
	if status == VerificationNotApplicable {
		return ViewStatusActive
	}

	return string(status)
}

// canDelete allows the uploader or an admin to remove an active upload, except the copy
// that satisfies a required configuration, which may only go once it was rejected.
func canDelete(u *UploadedDocument, cfg catalog.UploadConfig, viewer Viewer) bool {
	if !u.IsActive {
		return false
	}

	if !viewer.Admin && (viewer.UserID == "" || viewer.UserID != u.UploadedBy) {
		return false
	}

	return !cfg.Required || u.VerificationStatus == VerificationRejected
}
