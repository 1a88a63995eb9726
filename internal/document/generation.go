package document

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

const (
	metaCopies          = "copies"
	metaUrgent          = "urgent"
	metaRevocation      = "revocationReason"
	metaRegeneratedFrom = "regeneratedFrom"
)

type GenerateRequest struct {
	TemplateType string
	RequestedBy  string
	MemberID     string
	MemberName   string
	Fields       map[string]string
	Format       catalog.Format
	Copies       int
	Urgent       bool
}

type RegenerateRequest struct {
	RequestedBy string
	Fields      map[string]string
	Format      catalog.Format
}

// Generate creates a document from a template. Templates that require approval start
// as DRAFT, the others are ISSUED immediately.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GeneratedDocument, error) {
	tpl, ok := s.catalog.Template(req.TemplateType)
	if !ok {
		return nil, &UnknownTemplateError{Type: req.TemplateType}
	}

	if err := checkRequiredFields(tpl, req.Fields); err != nil {
		return nil, err
	}

	format, err := resolveFormat(tpl, req.Format)
	if err != nil {
		return nil, err
	}

	copies := req.Copies
	if copies == 0 {
		copies = 1
	}

	if copies < 1 || copies > tpl.MaxCopies {
		return nil, &ValidationError{
			Field:   "copies",
			Rule:    "range",
			Message: fmt.Sprintf("copies must be between 1 and %d", tpl.MaxCopies),
		}
	}

	memberName := req.MemberName
	if memberName == "" {
		memberName = strings.TrimSpace(req.Fields["memberName"])
	}

	now := s.now()

	doc, err := s.newGenerated(ctx, tpl, req.RequestedBy, format, maps.Clone(req.Fields), now)
	if err != nil {
		return nil, err
	}

	doc.MemberID = req.MemberID
	doc.MemberName = memberName
	doc.Metadata[metaCopies] = strconv.Itoa(copies)

	if req.Urgent {
		doc.Metadata[metaUrgent] = "true"
	}

	if err := s.render(ctx, tpl, doc); err != nil {
		return nil, err
	}

	if err := s.repo.CreateGenerated(ctx, doc); err != nil {
		s.discard(ctx, doc)
		return nil, storageErr("creating generated document", err)
	}

	s.recorder.Generated(tpl.Type, doc.Status)
	s.logger.InfoContext(ctx, "document generated",
		"id", doc.ID, "number", doc.DocumentNumber, "template", tpl.Type, "status", doc.Status)

	return doc, nil
}

// newGenerated allocates a document number and builds a version 1 record.
func (s *Service) newGenerated(
	ctx context.Context,
	tpl catalog.Template,
	requestedBy string,
	format catalog.Format,
	fields map[string]string,
	now time.Time,
) (*GeneratedDocument, error) {
	seq, err := s.repo.NextSequence(ctx, tpl.Prefix, now.Year())
	if err != nil {
		return nil, storageErr("allocating document number", err)
	}

	status := StatusIssued
	if tpl.RequiresApproval {
		status = StatusDraft
	}

	if fields == nil {
		fields = map[string]string{}
	}

	doc := &GeneratedDocument{
		ID:             uuid.New(),
		DocumentNumber: FormatNumber(tpl.Prefix, now.Year(), seq),
		TemplateType:   tpl.Type,
		Category:       tpl.Category,
		Title:          tpl.Name,
		Status:         status,
		GeneratedBy:    requestedBy,
		GeneratedAt:    now,
		Artifact:       Artifact{Format: format},
		Fields:         fields,
		Metadata:       map[string]string{},
		Version:        1,
		UpdatedAt:      now,
	}

	if tpl.ValidityDays != nil {
		doc.ValidUntil = new(now.AddDate(0, 0, *tpl.ValidityDays))
	}

	return doc, nil
}

// FormatNumber renders a document number, e.g. MC-2026-0042.
func FormatNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

func (s *Service) render(ctx context.Context, tpl catalog.Template, doc *GeneratedDocument) error {
	if s.renderer == nil {
		return nil
	}

	artifact, err := s.renderer.Render(ctx, tpl, doc)
	if errors.Is(err, ErrArtifactDeferred) {
		s.logger.DebugContext(ctx, "artifact rendering deferred", "number", doc.DocumentNumber, "format", doc.Artifact.Format)
		return nil
	}

	if err != nil {
		return fmt.Errorf("rendering %s: %w", doc.DocumentNumber, err)
	}

	doc.Artifact = artifact

	return nil
}

// discard removes the artifact rendered for a document that failed to persist.
func (s *Service) discard(ctx context.Context, doc *GeneratedDocument) {
	if s.renderer == nil || doc.Artifact.Location == "" {
		return
	}

	if err := s.renderer.Discard(ctx, doc.Artifact); err != nil {
		s.logger.WarnContext(ctx, "failed to remove orphaned artifact",
			"number", doc.DocumentNumber, "location", doc.Artifact.Location, "error", err)
	}
}

// checkRequiredFields fails on the first required field, in template order, that is blank.
func checkRequiredFields(tpl catalog.Template, fields map[string]string) error {
	for _, f := range tpl.RequiredFields {
		if strings.TrimSpace(fields[f]) == "" {
			return &MissingRequiredFieldError{Field: f}
		}
	}

	return nil
}

func resolveFormat(tpl catalog.Template, requested catalog.Format) (catalog.Format, error) {
	if requested == "" {
		return tpl.Formats[0], nil
	}

	requested = catalog.Format(strings.ToLower(string(requested)))
	if !tpl.SupportsFormat(requested) {
		return "", &InvalidFileFormatError{Format: requested, Allowed: tpl.Formats}
	}

	return requested, nil
}

func (s *Service) GetGenerated(ctx context.Context, id uuid.UUID) (*GeneratedDocument, error) {
	doc, err := s.repo.GetGenerated(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Kind: "generated document", ID: id}
		}

		return nil, storageErr("getting generated document", err)
	}

	return doc, nil
}

func (s *Service) ListGenerated(ctx context.Context, filter GeneratedFilter) ([]*GeneratedDocument, error) {
	docs, err := s.repo.ListGenerated(ctx, filter)
	if err != nil {
		return nil, storageErr("listing generated documents", err)
	}

	return docs, nil
}

// SubmitForApproval moves a draft into the approval queue.
func (s *Service) SubmitForApproval(ctx context.Context, id uuid.UUID, actor string) (*GeneratedDocument, error) {
	return s.transition(ctx, id, StatusPendingApproval, func(doc *GeneratedDocument, _ time.Time) {
		doc.Metadata["submittedBy"] = actor
	})
}

// Approve is legal from DRAFT and PENDING_APPROVAL. Issuing is a separate step.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, approver string) (*GeneratedDocument, error) {
	return s.transition(ctx, id, StatusApproved, func(doc *GeneratedDocument, now time.Time) {
		doc.ApprovedBy = new(approver)
		doc.ApprovedAt = new(now)
	})
}

func (s *Service) Issue(ctx context.Context, id uuid.UUID, actor string) (*GeneratedDocument, error) {
	return s.transition(ctx, id, StatusIssued, func(doc *GeneratedDocument, _ time.Time) {
		doc.Metadata["issuedBy"] = actor
	})
}

func (s *Service) Revoke(ctx context.Context, id uuid.UUID, actor, reason string) (*GeneratedDocument, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Rule: "required", Message: "a revocation needs a reason"}
	}

	return s.transition(ctx, id, StatusRevoked, func(doc *GeneratedDocument, _ time.Time) {
		doc.Metadata["revokedBy"] = actor
		doc.Metadata[metaRevocation] = reason
	})
}

// MarkExpired stores EXPIRED on an issued document. Reads never need it: expiry is derived.
func (s *Service) MarkExpired(ctx context.Context, id uuid.UUID, actor string) (*GeneratedDocument, error) {
	return s.transition(ctx, id, StatusExpired, func(doc *GeneratedDocument, _ time.Time) {
		doc.Metadata["expiredBy"] = actor
	})
}

func (s *Service) transition(
	ctx context.Context,
	id uuid.UUID,
	to Status,
	apply func(doc *GeneratedDocument, now time.Time),
) (*GeneratedDocument, error) {
	doc, err := s.GetGenerated(ctx, id)
	if err != nil {
		return nil, err
	}

	from := doc.Status
	if !from.CanTransition(to) {
		return nil, &InvalidStateTransitionError{ID: id, From: string(from), To: string(to)}
	}

	now := s.now()
	doc.Status = to
	doc.UpdatedAt = now

	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}

	if apply != nil {
		apply(doc, now)
	}

	if err := s.repo.UpdateGenerated(ctx, doc, from); err != nil {
		return nil, s.generatedWriteErr(ctx, "updating generated document", err, id, from, to)
	}

	s.recorder.Transitioned(SourceGenerated, string(from), string(to))
	s.logger.InfoContext(ctx, "document status changed", "id", id, "from", from, "to", to)

	return doc, nil
}

// Regenerate issues a new version of an ISSUED document and supersedes the old one.
// Fields not present in req are carried over from the previous version.
func (s *Service) Regenerate(ctx context.Context, id uuid.UUID, req RegenerateRequest) (*GeneratedDocument, error) {
	prev, err := s.GetGenerated(ctx, id)
	if err != nil {
		return nil, err
	}

	tpl, ok := s.catalog.Template(prev.TemplateType)
	if !ok {
		return nil, &UnknownTemplateError{Type: prev.TemplateType}
	}

	if !tpl.AllowRegeneration {
		return nil, fmt.Errorf("%w: %s", ErrRegenerationDisabled, tpl.Type)
	}

	if !prev.Status.CanTransition(StatusSuperseded) {
		return nil, &InvalidStateTransitionError{ID: id, From: string(prev.Status), To: string(StatusSuperseded)}
	}

	fields := maps.Clone(prev.Fields)
	if fields == nil {
		fields = map[string]string{}
	}

	maps.Copy(fields, req.Fields)

	if err := checkRequiredFields(tpl, fields); err != nil {
		return nil, err
	}

	requested := req.Format
	if requested == "" {
		requested = prev.Artifact.Format
	}

	format, err := resolveFormat(tpl, requested)
	if err != nil {
		return nil, err
	}

	now := s.now()

	next, err := s.newGenerated(ctx, tpl, req.RequestedBy, format, fields, now)
	if err != nil {
		return nil, err
	}

	next.MemberID = prev.MemberID
	next.MemberName = prev.MemberName
	if name := strings.TrimSpace(req.Fields["memberName"]); name != "" {
		next.MemberName = name
	}

	next.Version = prev.Version + 1
	next.PreviousVersionID = new(prev.ID)
	next.Metadata[metaRegeneratedFrom] = prev.DocumentNumber

	if copies, ok := prev.Metadata[metaCopies]; ok {
		next.Metadata[metaCopies] = copies
	}

	if err := s.render(ctx, tpl, next); err != nil {
		return nil, err
	}

	from := prev.Status
	prev.Status = StatusSuperseded
	prev.UpdatedAt = now

	if err := s.repo.Supersede(ctx, prev, next, from); err != nil {
		s.discard(ctx, next)
		return nil, s.generatedWriteErr(ctx, "superseding generated document", err, id, from, StatusSuperseded)
	}

	s.recorder.Generated(tpl.Type, next.Status)
	s.recorder.Transitioned(SourceGenerated, string(from), string(StatusSuperseded))
	s.logger.InfoContext(ctx, "document regenerated",
		"previous", prev.DocumentNumber, "number", next.DocumentNumber, "version", next.Version)

	return next, nil
}

// History returns the version chain of a generated document, newest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*GeneratedDocument, error) {
	doc, err := s.GetGenerated(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []*GeneratedDocument{doc}
	seen := map[uuid.UUID]bool{doc.ID: true}

	for doc.PreviousVersionID != nil {
		prevID := *doc.PreviousVersionID
		if seen[prevID] {
			return nil, fmt.Errorf("version chain of %s loops at %s", id, prevID)
		}

		seen[prevID] = true

		doc, err = s.GetGenerated(ctx, prevID)
		if err != nil {
			return nil, err
		}

		chain = append(chain, doc)
	}

	return chain, nil
}

// Expiring lists ISSUED and APPROVED documents whose validity ends within days from now.
func (s *Service) Expiring(ctx context.Context, days int) ([]*GeneratedDocument, error) {
	docs, err := s.ListGenerated(ctx, GeneratedFilter{Statuses: []Status{StatusIssued, StatusApproved}})
	if err != nil {
		return nil, err
	}

	return ExpiringWithin(docs, days, s.now()), nil
}
