package document

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

// Status is the lifecycle state of a generated document.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusIssued          Status = "ISSUED"
	StatusRevoked         Status = "REVOKED"
	StatusExpired         Status = "EXPIRED"
	StatusSuperseded      Status = "SUPERSEDED"
)

// transitions lists the legal next states for each status.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusPendingApproval, StatusApproved},
	StatusPendingApproval: {StatusApproved},
	StatusApproved:        {StatusIssued},
	StatusIssued:          {StatusRevoked, StatusExpired, StatusSuperseded},
}

// CanTransition reports whether a generated document may move from s to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// VerificationStatus is the review state of an uploaded document.
type VerificationStatus string

const (
	VerificationNotApplicable VerificationStatus = "NOT_APPLICABLE"
	VerificationPending       VerificationStatus = "PENDING"
	VerificationVerified      VerificationStatus = "VERIFIED"
	VerificationRejected      VerificationStatus = "REJECTED"
	VerificationExpired       VerificationStatus = "EXPIRED"
)

// EntityType names the kind of record an upload is attached to.
type EntityType string

const (
	EntityAssociation EntityType = "association"
	EntityMember      EntityType = "member"
	EntityParcel      EntityType = "parcel"
	EntityTransaction EntityType = "transaction"
)

// EntityTypeForScope maps an upload scope to the entity kind its documents link to.
func EntityTypeForScope(s catalog.Scope) EntityType {
	switch s {
	case catalog.ScopeMember:
		return EntityMember
	case catalog.ScopeParcel:
		return EntityParcel
	case catalog.ScopeTransaction:
		return EntityTransaction
	}

	return EntityAssociation
}

// Artifact is the rendered output of a generated document.
// Location is empty while rendering is deferred to an external renderer.
type Artifact struct {
	Format   catalog.Format
	Location string
	Size     int64
	Checksum string
}

// GeneratedDocument is a certificate or report produced from a template.
type GeneratedDocument struct {
	ID                uuid.UUID
	DocumentNumber    string
	TemplateType      string
	Category          catalog.Category
	Title             string
	MemberID          string
	MemberName        string
	Status            Status
	GeneratedBy       string
	GeneratedAt       time.Time
	ApprovedBy        *string
	ApprovedAt        *time.Time
	Artifact          Artifact
	ValidUntil        *time.Time
	Fields            map[string]string
	Metadata          map[string]string
	Version           int
	PreviousVersionID *uuid.UUID
	UpdatedAt         time.Time
}

// Clone returns a deep copy so stores never share maps or pointers with callers.
func (d *GeneratedDocument) Clone() *GeneratedDocument {
	if d == nil {
		return nil
	}

	c := *d
	c.Fields = maps.Clone(d.Fields)
	c.Metadata = maps.Clone(d.Metadata)

	if d.ApprovedBy != nil {
		c.ApprovedBy = new(*d.ApprovedBy)
	}

	if d.ApprovedAt != nil {
		c.ApprovedAt = new(*d.ApprovedAt)
	}

	if d.ValidUntil != nil {
		c.ValidUntil = new(*d.ValidUntil)
	}

	if d.PreviousVersionID != nil {
		c.PreviousVersionID = new(*d.PreviousVersionID)
	}

	return &c
}

// FileInfo describes a stored binary; the subsystem never reads the bytes.
type FileInfo struct {
	OriginalName string
	StoredName   string
	MIMEType     string
	Size         int64
	Checksum     string
	URL          string
}

// UploadedDocument is a user supplied file attached to the association's records.
type UploadedDocument struct {
	ID                 uuid.UUID
	DocumentType       string
	Category           catalog.Category
	Scope              catalog.Scope
	File               FileInfo
	UploadedBy         string
	UploadedAt         time.Time
	LinkedEntityType   EntityType
	LinkedEntityID     string
	Tags               []string
	Metadata           map[string]string
	VerificationStatus VerificationStatus
	VerifiedBy         *string
	VerifiedAt         *time.Time
	VerificationNotes  *string
	ExpiryDate         *time.Time
	IsActive           bool
	ReplacedByID       *uuid.UUID
	Version            int
	UpdatedAt          time.Time
}

// Clone returns a deep copy of the upload record.
func (u *UploadedDocument) Clone() *UploadedDocument {
	if u == nil {
		return nil
	}

	c := *u
	c.Tags = slices.Clone(u.Tags)
	c.Metadata = maps.Clone(u.Metadata)

	if u.VerifiedBy != nil {
		c.VerifiedBy = new(*u.VerifiedBy)
	}

	if u.VerifiedAt != nil {
		c.VerifiedAt = new(*u.VerifiedAt)
	}

	if u.VerificationNotes != nil {
		c.VerificationNotes = new(*u.VerificationNotes)
	}

	if u.ExpiryDate != nil {
		c.ExpiryDate = new(*u.ExpiryDate)
	}

	if u.ReplacedByID != nil {
		c.ReplacedByID = new(*u.ReplacedByID)
	}

	return &c
}

// Slot identifies the logical position an upload occupies: one active record per slot.
type Slot struct {
	DocumentType string
	EntityType   EntityType
	EntityID     string
}

func (u *UploadedDocument) Slot() Slot {
	return Slot{DocumentType: u.DocumentType, EntityType: u.LinkedEntityType, EntityID: u.LinkedEntityID}
}

// UploadState is the part of an upload lifecycle writes are conditioned on.
type UploadState struct {
	Active       bool
	Verification VerificationStatus
}

func (u *UploadedDocument) State() UploadState {
	return UploadState{Active: u.IsActive, Verification: u.VerificationStatus}
}
