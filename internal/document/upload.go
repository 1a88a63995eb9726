package document

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

type UploadRequest struct {
	DocumentType     string
	File             FileInfo
	UploadedBy       string
	LinkedEntityType EntityType
	LinkedEntityID   string
	Metadata         map[string]string
	Tags             []string
}

// Upload validates and stores a user supplied document. An active upload already occupying
// the same slot is deactivated and pointed at the new record in the same write.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadedDocument, error) {
	cfg, err := s.ValidateUpload(req)
	if err != nil {
		return nil, err
	}

	now := s.now()

	doc := &UploadedDocument{
		ID:                 uuid.New(),
		DocumentType:       cfg.Type,
		Category:           cfg.Category,
		Scope:              cfg.Scope,
		File:               req.File,
		UploadedBy:         req.UploadedBy,
		UploadedAt:         now,
		LinkedEntityType:   EntityTypeForScope(cfg.Scope),
		LinkedEntityID:     strings.TrimSpace(req.LinkedEntityID),
		Tags:               mergeTags(cfg.Tags, req.Tags),
		Metadata:           maps.Clone(req.Metadata),
		VerificationStatus: VerificationNotApplicable,
		IsActive:           true,
		Version:            1,
		UpdatedAt:          now,
	}

	if cfg.Scope == catalog.ScopeAssociation {
		doc.LinkedEntityID = ""
	}

	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}

	if cfg.RequiresVerification {
		doc.VerificationStatus = VerificationPending
	}

	if cfg.ExpiryField != "" {
		if v := strings.TrimSpace(doc.Metadata[cfg.ExpiryField]); v != "" {
			expiry, err := time.Parse(time.DateOnly, v)
			if err != nil {
				return nil, &ValidationError{Field: cfg.ExpiryField, Rule: string(catalog.RuleDate), Message: cfg.ExpiryField + " must be a date (YYYY-MM-DD)"}
			}

			doc.ExpiryDate = &expiry
		}
	}

	prev, err := s.repo.FindActiveUpload(ctx, doc.Slot())
	if err != nil {
		return nil, storageErr("finding active upload", err)
	}

	if prev == nil {
		if err := s.repo.CreateUploaded(ctx, doc); err != nil {
			return nil, s.slotWriteErr(ctx, "creating upload", err, doc)
		}
	} else {
		prev.IsActive = false
		prev.ReplacedByID = new(doc.ID)
		prev.UpdatedAt = now
		doc.Version = prev.Version + 1

		if err := s.repo.ReplaceUploaded(ctx, prev, doc); err != nil {
			return nil, s.uploadWriteErr(ctx, "replacing upload", err, prev, ViewStatusReplaced)
		}
	}

	s.recorder.Uploaded(cfg.Type, prev != nil)
	s.logger.InfoContext(ctx, "document uploaded",
		"id", doc.ID, "type", cfg.Type, "entity", doc.LinkedEntityID, "replaced", prev != nil)

	return doc, nil
}

// ValidateUpload runs every upload check without touching the store.
func (s *Service) ValidateUpload(req UploadRequest) (catalog.UploadConfig, error) {
	cfg, ok := s.catalog.UploadConfig(req.DocumentType)
	if !ok {
		return catalog.UploadConfig{}, &UnknownUploadTypeError{Type: req.DocumentType}
	}

	format := FileFormat(req.File)
	if !cfg.AllowsFormat(format) {
		return cfg, &InvalidFileFormatError{Format: format, Allowed: cfg.AllowedFormats}
	}

	if req.File.Size <= 0 {
		return cfg, &ValidationError{Field: "file", Rule: string(catalog.RuleRequired), Message: "file is empty"}
	}

	if limit := cfg.MaxFileSizeBytes(); req.File.Size > limit {
		return cfg, &FileTooLargeError{Size: req.File.Size, Limit: limit}
	}

	if err := checkLink(cfg, req); err != nil {
		return cfg, err
	}

	now := s.now()
	for _, rule := range cfg.Rules {
		if !rule.Check(req.Metadata[rule.Field], now) {
			return cfg, &ValidationError{Field: rule.Field, Rule: string(rule.Kind), Message: rule.Message}
		}
	}

	return cfg, nil
}

func checkLink(cfg catalog.UploadConfig, req UploadRequest) error {
	if cfg.Scope == catalog.ScopeAssociation {
		return nil
	}

	want := EntityTypeForScope(cfg.Scope)
	if req.LinkedEntityType != "" && req.LinkedEntityType != want {
		return &ValidationError{
			Field:   "linkedEntityType",
			Rule:    "scope",
			Message: fmt.Sprintf("%s must be linked to a %s", cfg.Name, want),
		}
	}

	if strings.TrimSpace(req.LinkedEntityID) == "" {
		return &ValidationError{
			Field:   "linkedEntityId",
			Rule:    "scope",
			Message: fmt.Sprintf("%s must be linked to a %s", cfg.Name, want),
		}
	}

	return nil
}

var formatByMIME = map[string]catalog.Format{
	"application/pdf": catalog.FormatPDF,
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"text/plain":      catalog.FormatTXT,
	"text/html":       catalog.FormatHTML,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// FileFormat derives the format from the file extension, falling back to the MIME type.
func FileFormat(f FileInfo) catalog.Format {
	if ext := strings.TrimPrefix(filepath.Ext(f.OriginalName), "."); ext != "" {
		return catalog.Format(strings.ToLower(ext))
	}

	mediaType, _, err := mime.ParseMediaType(f.MIMEType)
	if err != nil {
		return ""
	}

	if format, ok := formatByMIME[mediaType]; ok {
		return format
	}

	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return catalog.Format(strings.TrimPrefix(exts[0], "."))
	}

	return ""
}

func mergeTags(sets ...[]string) []string {
	var out []string

	for _, set := range sets {
		for _, t := range set {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" || slices.Contains(out, t) {
				continue
			}

			out = append(out, t)
		}
	}

	return out
}

func (s *Service) GetUploaded(ctx context.Context, id uuid.UUID) (*UploadedDocument, error) {
	doc, err := s.repo.GetUploaded(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Kind: "uploaded document", ID: id}
		}

		return nil, storageErr("getting upload", err)
	}

	return doc, nil
}

func (s *Service) ListUploaded(ctx context.Context, filter UploadFilter) ([]*UploadedDocument, error) {
	docs, err := s.repo.ListUploaded(ctx, filter)
	if err != nil {
		return nil, storageErr("listing uploads", err)
	}

	return docs, nil
}

// Verify records a reviewer's decision on a PENDING upload.
func (s *Service) Verify(
	ctx context.Context,
	id uuid.UUID,
	verifier string,
	decision VerificationStatus,
	notes string,
) (*UploadedDocument, error) {
	if decision != VerificationVerified && decision != VerificationRejected {
		return nil, &ValidationError{
			Field:   "decision",
			Rule:    "enum",
			Message: fmt.Sprintf("decision must be %s or %s", VerificationVerified, VerificationRejected),
		}
	}

	notes = strings.TrimSpace(notes)
	if decision == VerificationRejected && notes == "" {
		return nil, &ValidationError{Field: "notes", Rule: string(catalog.RuleRequired), Message: "a rejection needs a reason"}
	}

	doc, err := s.GetUploaded(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.VerificationStatus != VerificationPending {
		return nil, &InvalidStateTransitionError{ID: id, From: string(doc.VerificationStatus), To: string(decision)}
	}

	from := doc.State()
	now := s.now()
	doc.VerificationStatus = decision
	doc.VerifiedBy = new(verifier)
	doc.VerifiedAt = new(now)
	doc.UpdatedAt = now

	if notes != "" {
		doc.VerificationNotes = new(notes)
	}

	if err := s.repo.UpdateUploaded(ctx, doc, from); err != nil {
		return nil, s.uploadWriteErr(ctx, "updating upload", err, doc, string(decision))
	}

	s.recorder.Transitioned(SourceUploaded, string(VerificationPending), string(decision))
	s.logger.InfoContext(ctx, "upload verified", "id", id, "decision", decision, "verifier", verifier)

	return doc, nil
}

// Deactivate soft deletes an upload. It is allowed exactly when the unified view would
// offer deletion to the viewer.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, viewer Viewer) (*UploadedDocument, error) {
	doc, err := s.GetUploaded(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, _ := s.catalog.UploadConfig(doc.DocumentType)
	if !canDelete(doc, cfg, viewer) {
		return nil, fmt.Errorf("%w: %s", ErrDeleteNotPermitted, id)
	}

	from := doc.State()
	doc.IsActive = false
	doc.UpdatedAt = s.now()

	if err := s.repo.UpdateUploaded(ctx, doc, from); err != nil {
		return nil, s.uploadWriteErr(ctx, "deactivating upload", err, doc, ViewStatusDeleted)
	}

	s.logger.InfoContext(ctx, "upload deactivated", "id", id, "by", viewer.UserID)

	return doc, nil
}

// UploadHistory returns every upload that occupied the same slot, newest first.
func (s *Service) UploadHistory(ctx context.Context, id uuid.UUID) ([]*UploadedDocument, error) {
	doc, err := s.GetUploaded(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.ListUploaded(ctx, UploadFilter{
		DocumentType: doc.DocumentType,
		EntityType:   doc.LinkedEntityType,
		EntityID:     doc.LinkedEntityID,
	})
	if err != nil {
		return nil, err
	}

	// Association scoped uploads have no entity id, so the filter above cannot narrow them.
	docs = slices.DeleteFunc(docs, func(d *UploadedDocument) bool {
		return d.Slot() != doc.Slot()
	})

	slices.SortFunc(docs, func(a, b *UploadedDocument) int {
		return cmp.Or(b.Version-a.Version, b.UploadedAt.Compare(a.UploadedAt))
	})

	return docs, nil
}

// ExpiringUploaded lists active uploads whose expiry date falls within days from now.
func (s *Service) ExpiringUploaded(ctx context.Context, days int) ([]*UploadedDocument, error) {
	uploads, err := s.ListUploaded(ctx, UploadFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	return ExpiringUploads(uploads, days, s.now()), nil
}
