package document

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=document
type Repository interface {
	// NextSequence atomically increments and returns the counter for prefix and year.
	NextSequence(ctx context.Context, prefix string, year int) (int64, error)
	ListCounters(ctx context.Context) ([]Counter, error)

	CreateGenerated(ctx context.Context, doc *GeneratedDocument) error
	GetGenerated(ctx context.Context, id uuid.UUID) (*GeneratedDocument, error)
	// UpdateGenerated stores doc while the stored status is still from, else ErrConflict.
	UpdateGenerated(ctx context.Context, doc *GeneratedDocument, from Status) error
	ListGenerated(ctx context.Context, filter GeneratedFilter) ([]*GeneratedDocument, error)
	// Supersede stores the updated previous version and inserts the next one in a single write.
	// It returns ErrConflict and writes nothing unless prev's stored status is still from.
	Supersede(ctx context.Context, prev, next *GeneratedDocument, from Status) error

	CreateUploaded(ctx context.Context, doc *UploadedDocument) error
	GetUploaded(ctx context.Context, id uuid.UUID) (*UploadedDocument, error)
	// UpdateUploaded stores doc while the stored record still has state from, else ErrConflict.
	UpdateUploaded(ctx context.Context, doc *UploadedDocument, from UploadState) error
	ListUploaded(ctx context.Context, filter UploadFilter) ([]*UploadedDocument, error)
	// FindActiveUpload returns nil without error when the slot is empty.
	FindActiveUpload(ctx context.Context, slot Slot) (*UploadedDocument, error)
	// ReplaceUploaded stores the deactivated previous upload and inserts the next one in a single write.
	// It returns ErrConflict and writes nothing unless the stored prev is still active.
	// Inserts into an occupied slot also return ErrConflict.
	ReplaceUploaded(ctx context.Context, prev, next *UploadedDocument) error
}

// Counter is the state of one document number sequence.
type Counter struct {
	Prefix string
	Year   int
	Value  int64
}

type GeneratedFilter struct {
	TemplateType string
	MemberID     string
	Category     catalog.Category
	Statuses     []Status
}

type UploadFilter struct {
	DocumentType string
	EntityType   EntityType
	EntityID     string
	ActiveOnly   bool
	Verification *VerificationStatus
}

// Catalog is the read-only template and upload configuration registry.
type Catalog interface {
	Template(typ string) (catalog.Template, bool)
	UploadConfig(typ string) (catalog.UploadConfig, bool)
	RequiredUploads(scope catalog.Scope) []catalog.UploadConfig
}

// Renderer produces the output artifact of a generated document.
type Renderer interface {
	Render(ctx context.Context, tpl catalog.Template, doc *GeneratedDocument) (Artifact, error)
	// Discard removes a rendered artifact whose document was never persisted.
	Discard(ctx context.Context, artifact Artifact) error
}

// Recorder observes lifecycle events, typically to export metrics.
type Recorder interface {
	Generated(templateType string, status Status)
	Uploaded(documentType string, replaced bool)
	Transitioned(source Source, from, to string)
}

type nopRecorder struct{}

func (nopRecorder) Generated(string, Status)            {}
func (nopRecorder) Uploaded(string, bool)               {}
func (nopRecorder) Transitioned(Source, string, string) {}

type Service struct {
	repo     Repository
	catalog  Catalog
	renderer Renderer
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithRenderer(r Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, cat Catalog, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		catalog:  cat,
		recorder: nopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Counters lists the document number sequences.
func (s *Service) Counters(ctx context.Context) ([]Counter, error) {
	counters, err := s.repo.ListCounters(ctx)
	if err != nil {
		return nil, storageErr("listing counters", err)
	}

	return counters, nil
}
