package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type Store struct {
	db *sql.DB
}

var _ document.Repository = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO document_counters (prefix, year, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET value = document_counters.value + 1
		RETURNING value
	`

	var value int64
	if err := s.db.QueryRowContext(ctx, query, prefix, year).Scan(&value); err != nil {
		return 0, fmt.Errorf("incrementing counter %s/%d: %w", prefix, year, err)
	}

	return value, nil
}

func (s *Store) ListCounters(ctx context.Context) ([]document.Counter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prefix, year, value FROM document_counters ORDER BY prefix, year`)
	if err != nil {
		return nil, fmt.Errorf("listing counters: %w", err)
	}
	defer rows.Close()

	var counters []document.Counter

	for rows.Next() {
		var c document.Counter
		if err := rows.Scan(&c.Prefix, &c.Year, &c.Value); err != nil {
			return nil, fmt.Errorf("scanning counter: %w", err)
		}

		counters = append(counters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counters: %w", err)
	}

	return counters, nil
}

// Generated documents.

var generatedColumns = []string{
	"id", "document_number", "template_type", "category", "title", "member_id", "member_name",
	"status", "generated_by", "generated_at", "approved_by", "approved_at",
	"artifact_format", "artifact_location", "artifact_size", "artifact_checksum",
	"valid_until", "fields", "metadata", "version", "previous_version_id", "updated_at",
}

// scanGenerated expects the columns in generatedColumns order.
func scanGenerated(s scanner) (*document.GeneratedDocument, error) {
	var (
		d                      document.GeneratedDocument
		category, status       string
		format                 string
		approvedBy             sql.NullString
		approvedAt, validUntil sql.NullTime
		fields, metadata       []byte
	)

	if err := s.Scan(
		&d.ID, &d.DocumentNumber, &d.TemplateType, &category, &d.Title, &d.MemberID, &d.MemberName,
		&status, &d.GeneratedBy, &d.GeneratedAt, &approvedBy, &approvedAt,
		&format, &d.Artifact.Location, &d.Artifact.Size, &d.Artifact.Checksum,
		&validUntil, &fields, &metadata, &d.Version, &d.PreviousVersionID, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d.Category = catalog.Category(category)
	d.Status = document.Status(status)
	d.Artifact.Format = catalog.Format(format)

	if approvedBy.Valid {
		d.ApprovedBy = new(approvedBy.String)
	}

	if approvedAt.Valid {
		d.ApprovedAt = new(approvedAt.Time)
	}

	if validUntil.Valid {
		d.ValidUntil = new(validUntil.Time)
	}

	if err := json.Unmarshal(fields, &d.Fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}

	if err := json.Unmarshal(metadata, &d.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}

	return &d, nil
}

func encodeMap(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}

	return json.Marshal(m)
}

func insertGenerated(ctx context.Context, db execer, d *document.GeneratedDocument) error {
	fields, err := encodeMap(d.Fields)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}

	metadata, err := encodeMap(d.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query, args, err := psql.Insert("generated_documents").
		Columns(generatedColumns...).
		Values(
			d.ID, d.DocumentNumber, d.TemplateType, d.Category, d.Title, d.MemberID, d.MemberName,
			d.Status, d.GeneratedBy, d.GeneratedAt, d.ApprovedBy, d.ApprovedAt,
			d.Artifact.Format, d.Artifact.Location, d.Artifact.Size, d.Artifact.Checksum,
			d.ValidUntil, fields, metadata, d.Version, d.PreviousVersionID, d.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting generated document: %w", err)
	}

	return nil
}

// updateGenerated writes the mutable columns of a generated document whose stored status
// is still from.
func updateGenerated(ctx context.Context, db execer, d *document.GeneratedDocument, from document.Status) error {
	metadata, err := encodeMap(d.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query, args, err := psql.Update("generated_documents").
		Set("status", d.Status).
		Set("approved_by", d.ApprovedBy).
		Set("approved_at", d.ApprovedAt).
		Set("artifact_location", d.Artifact.Location).
		Set("artifact_size", d.Artifact.Size).
		Set("artifact_checksum", d.Artifact.Checksum).
		Set("metadata", metadata).
		Set("updated_at", d.UpdatedAt).
		Where(sq.Eq{"id": d.ID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating generated document: %w", err)
	}

	return expectOne(res, d.ID)
}

// expectOne maps a conditional update that matched nothing to ErrConflict. Records are
// never deleted and callers read them first, so a miss means the condition failed.
func expectOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", document.ErrConflict, id)
	}

	return nil
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// slotTaken reports whether err is the active slot index rejecting a second active upload.
func slotTaken(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeSlotIndex
}

const activeSlotIndex = "uploaded_documents_active_slot_idx"

func (s *Store) CreateGenerated(ctx context.Context, d *document.GeneratedDocument) error {
	return insertGenerated(ctx, s.db, d)
}

func (s *Store) GetGenerated(ctx context.Context, id uuid.UUID) (*document.GeneratedDocument, error) {
	query, args, err := psql.Select(generatedColumns...).
		From("generated_documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	d, err := scanGenerated(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting generated document: %w", err)
	}

	return d, nil
}

func (s *Store) UpdateGenerated(ctx context.Context, d *document.GeneratedDocument, from document.Status) error {
	return updateGenerated(ctx, s.db, d, from)
}

func generatedQuery(filter document.GeneratedFilter) sq.SelectBuilder {
	q := psql.Select(generatedColumns...).From("generated_documents")

	if filter.TemplateType != "" {
		q = q.Where(sq.Eq{"template_type": filter.TemplateType})
	}

	if filter.MemberID != "" {
		q = q.Where(sq.Eq{"member_id": filter.MemberID})
	}

	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}

		q = q.Where(sq.Eq{"status": statuses})
	}

	return q.OrderBy("generated_at ASC", "id ASC")
}

func (s *Store) ListGenerated(ctx context.Context, filter document.GeneratedFilter) ([]*document.GeneratedDocument, error) {
	query, args, err := generatedQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing generated documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.GeneratedDocument

	for rows.Next() {
		d, err := scanGenerated(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning generated document: %w", err)
		}

		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generated documents: %w", err)
	}

	return docs, nil
}

// Supersede stores the superseded version and inserts the next one in a single transaction.
// The conditional update takes the row lock first, so a concurrent supersede of the same
// record waits and then matches nothing.
func (s *Store) Supersede(ctx context.Context, prev, next *document.GeneratedDocument, from document.Status) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := updateGenerated(ctx, dbTx, prev, from); err != nil {
		return err
	}

	if err := insertGenerated(ctx, dbTx, next); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Uploaded documents.

var uploadedColumns = []string{
	"id", "document_type", "category", "scope",
	"original_name", "stored_name", "mime_type", "size", "checksum", "url",
	"uploaded_by", "uploaded_at", "linked_entity_type", "linked_entity_id", "tags", "metadata",
	"verification_status", "verified_by", "verified_at", "verification_notes",
	"expiry_date", "is_active", "replaced_by_id", "version", "updated_at",
}

// scanUploaded expects the columns in uploadedColumns order.
func scanUploaded(s scanner) (*document.UploadedDocument, error) {
	var (
		u                                     document.UploadedDocument
		category, scope, entityType, verified string
		verifiedBy, notes                     sql.NullString
		verifiedAt, expiry                    sql.NullTime
		tags, metadata                        []byte
	)

	if err := s.Scan(
		&u.ID, &u.DocumentType, &category, &scope,
		&u.File.OriginalName, &u.File.StoredName, &u.File.MIMEType, &u.File.Size, &u.File.Checksum, &u.File.URL,
		&u.UploadedBy, &u.UploadedAt, &entityType, &u.LinkedEntityID, &tags, &metadata,
		&verified, &verifiedBy, &verifiedAt, &notes,
		&expiry, &u.IsActive, &u.ReplacedByID, &u.Version, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	u.Category = catalog.Category(category)
	u.Scope = catalog.Scope(scope)
	u.LinkedEntityType = document.EntityType(entityType)
	u.VerificationStatus = document.VerificationStatus(verified)

	if verifiedBy.Valid {
		u.VerifiedBy = new(verifiedBy.String)
	}

	if verifiedAt.Valid {
		u.VerifiedAt = new(verifiedAt.Time)
	}

	if notes.Valid {
		u.VerificationNotes = new(notes.String)
	}

	if expiry.Valid {
		u.ExpiryDate = new(expiry.Time)
	}

	if err := json.Unmarshal(tags, &u.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}

	if err := json.Unmarshal(metadata, &u.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}

	return &u, nil
}

func insertUploaded(ctx context.Context, db execer, u *document.UploadedDocument) error {
	tags := u.Tags
	if tags == nil {
		tags = []string{}
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	metadata, err := encodeMap(u.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query, args, err := psql.Insert("uploaded_documents").
		Columns(uploadedColumns...).
		Values(
			u.ID, u.DocumentType, u.Category, u.Scope,
			u.File.OriginalName, u.File.StoredName, u.File.MIMEType, u.File.Size, u.File.Checksum, u.File.URL,
			u.UploadedBy, u.UploadedAt, u.LinkedEntityType, u.LinkedEntityID, tagsJSON, metadata,
			u.VerificationStatus, u.VerifiedBy, u.VerifiedAt, u.VerificationNotes,
			u.ExpiryDate, u.IsActive, u.ReplacedByID, u.Version, u.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		if slotTaken(err) {
			return fmt.Errorf("%w: slot %s/%s/%s already has an active upload",
				document.ErrConflict, u.DocumentType, u.LinkedEntityType, u.LinkedEntityID)
		}

		return fmt.Errorf("inserting upload: %w", err)
	}

	return nil
}

// updateUploaded writes the mutable columns of an upload whose stored state is still from.
func updateUploaded(ctx context.Context, db execer, u *document.UploadedDocument, from document.UploadState) error {
	query, args, err := psql.Update("uploaded_documents").
		Set("verification_status", u.VerificationStatus).
		Set("verified_by", u.VerifiedBy).
		Set("verified_at", u.VerifiedAt).
		Set("verification_notes", u.VerificationNotes).
		Set("is_active", u.IsActive).
		Set("replaced_by_id", u.ReplacedByID).
		Set("updated_at", u.UpdatedAt).
		Where(sq.Eq{
			"id":                  u.ID,
			"is_active":           from.Active,
			"verification_status": from.Verification,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating upload: %w", err)
	}

	return expectOne(res, u.ID)
}

func (s *Store) CreateUploaded(ctx context.Context, u *document.UploadedDocument) error {
	return insertUploaded(ctx, s.db, u)
}

func (s *Store) GetUploaded(ctx context.Context, id uuid.UUID) (*document.UploadedDocument, error) {
	query, args, err := psql.Select(uploadedColumns...).
		From("uploaded_documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	u, err := scanUploaded(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting upload: %w", err)
	}

	return u, nil
}

func (s *Store) UpdateUploaded(ctx context.Context, u *document.UploadedDocument, from document.UploadState) error {
	return updateUploaded(ctx, s.db, u, from)
}

func uploadedQuery(filter document.UploadFilter) sq.SelectBuilder {
	q := psql.Select(uploadedColumns...).From("uploaded_documents")

	if filter.DocumentType != "" {
		q = q.Where(sq.Eq{"document_type": filter.DocumentType})
	}

	if filter.EntityType != "" {
		q = q.Where(sq.Eq{"linked_entity_type": filter.EntityType})
	}

	if filter.EntityID != "" {
		q = q.Where(sq.Eq{"linked_entity_id": filter.EntityID})
	}

	if filter.ActiveOnly {
		q = q.Where(sq.Eq{"is_active": true})
	}

	if filter.Verification != nil {
		q = q.Where(sq.Eq{"verification_status": *filter.Verification})
	}

	return q.OrderBy("uploaded_at ASC", "id ASC")
}

func (s *Store) ListUploaded(ctx context.Context, filter document.UploadFilter) ([]*document.UploadedDocument, error) {
	query, args, err := uploadedQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*document.UploadedDocument

	for rows.Next() {
		u, err := scanUploaded(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}

		uploads = append(uploads, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uploads: %w", err)
	}

	return uploads, nil
}

func (s *Store) FindActiveUpload(ctx context.Context, slot document.Slot) (*document.UploadedDocument, error) {
	query, args, err := psql.Select(uploadedColumns...).
		From("uploaded_documents").
		Where(sq.Eq{
			"document_type":      slot.DocumentType,
			"linked_entity_type": slot.EntityType,
			"linked_entity_id":   slot.EntityID,
			"is_active":          true,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	u, err := scanUploaded(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding active upload: %w", err)
	}

	return u, nil
}

// ReplaceUploaded deactivates prev before inserting next so the partial unique index on
// active slots holds at every statement.
func (s *Store) ReplaceUploaded(ctx context.Context, prev, next *document.UploadedDocument) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	// prev arrives deactivated; the stored row must still be the active one that was read.
	if err := updateUploaded(ctx, dbTx, prev, document.UploadState{Active: true, Verification: prev.VerificationStatus}); err != nil {
		return err
	}

	if err := insertUploaded(ctx, dbTx, next); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
