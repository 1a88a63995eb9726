package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

var (
	// ErrNotFound is returned by repositories for unknown ids.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned by repositories when a conditional write finds the stored
	// record no longer in the state the caller read.
	ErrConflict = errors.New("document changed concurrently")

	ErrRegenerationDisabled = errors.New("template does not allow regeneration")
	ErrDeleteNotPermitted   = errors.New("document cannot be deleted")

	// ErrArtifactDeferred is returned by a Renderer that leaves the format to an external renderer.
	ErrArtifactDeferred = errors.New("artifact rendering deferred")
)

type UnknownTemplateError struct {
	Type string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Type)
}

type UnknownUploadTypeError struct {
	Type string
}

func (e *UnknownUploadTypeError) Error() string {
	return fmt.Sprintf("unknown upload type %q", e.Type)
}

type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

type InvalidFileFormatError struct {
	Format  catalog.Format
	Allowed []catalog.Format
}

func (e *InvalidFileFormatError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, f := range e.Allowed {
		allowed[i] = string(f)
	}

	return fmt.Sprintf("file format %q not allowed (allowed: %s)", e.Format, strings.Join(allowed, ", "))
}

type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file of %d bytes exceeds the limit of %d bytes", e.Size, e.Limit)
}

// ValidationError reports the first metadata rule a request violated.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s (%s): %s", e.Field, e.Rule, e.Message)
}

type InvalidStateTransitionError struct {
	ID   uuid.UUID
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("document %s cannot move from %s to %s", e.ID, e.From, e.To)
}

// NotFoundError names the kind of record that was looked up. It matches ErrNotFound.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps a failure of the record store. Callers may retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

// generatedWriteErr turns a lost conditional write into the transition the current state
// no longer allows. Other failures are storage errors.
func (s *Service) generatedWriteErr(ctx context.Context, op string, err error, id uuid.UUID, from, to Status) error {
	if !errors.Is(err, ErrConflict) {
		return storageErr(op, err)
	}

	if cur, getErr := s.repo.GetGenerated(ctx, id); getErr == nil {
		from = cur.Status
	}

	return &InvalidStateTransitionError{ID: id, From: string(from), To: string(to)}
}

// uploadWriteErr is generatedWriteErr for uploads; to is the view status the write aimed for.
func (s *Service) uploadWriteErr(ctx context.Context, op string, err error, read *UploadedDocument, to string) error {
	if !errors.Is(err, ErrConflict) {
		return storageErr(op, err)
	}

	cur := read
	if got, getErr := s.repo.GetUploaded(ctx, read.ID); getErr == nil {
		cur = got
	}

	return &InvalidStateTransitionError{ID: read.ID, From: uploadStatus(cur, s.now()), To: to}
}

// slotWriteErr reports an upload that lost its empty slot to a concurrent upload as the
// replacement of the record now occupying it.
func (s *Service) slotWriteErr(ctx context.Context, op string, err error, doc *UploadedDocument) error {
	if !errors.Is(err, ErrConflict) {
		return storageErr(op, err)
	}

	occupant, findErr := s.repo.FindActiveUpload(ctx, doc.Slot())
	if findErr != nil || occupant == nil {
		return &InvalidStateTransitionError{ID: doc.ID, From: ViewStatusActive, To: ViewStatusReplaced}
	}

	return &InvalidStateTransitionError{ID: occupant.ID, From: uploadStatus(occupant, s.now()), To: ViewStatusReplaced}
}
