package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type rowsAffected int64

func (r rowsAffected) LastInsertId() (int64, error) { return 0, nil }
func (r rowsAffected) RowsAffected() (int64, error) { return int64(r), nil }

type recordingExecer struct {
	query string
	args  []any
	rows  int64
	err   error
}

func (e *recordingExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	e.query, e.args = query, args
	if e.err != nil {
		return nil, e.err
	}

	return rowsAffected(e.rows), nil
}

func TestUpdateGenerated_ConditionalOnStatus(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "status still matches", rows: 1},
		{name: "status moved on", rows: 0, wantErr: document.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &recordingExecer{rows: tt.rows}
			doc := &document.GeneratedDocument{ID: uuid.New(), Status: document.StatusSuperseded}

			err := updateGenerated(context.Background(), db, doc, document.StatusIssued)

			assert.Contains(t, db.query, "WHERE id = $")
			assert.Contains(t, db.query, "status = $")
			assert.Contains(t, db.args, document.StatusIssued)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestUpdateUploaded_ConditionalOnState(t *testing.T) {
	db := &recordingExecer{rows: 0}
	doc := &document.UploadedDocument{ID: uuid.New(), VerificationStatus: document.VerificationVerified}

	err := updateUploaded(context.Background(), db, doc, document.UploadState{
		Active:       true,
		Verification: document.VerificationPending,
	})

	require.ErrorIs(t, err, document.ErrConflict)
	assert.Contains(t, db.query, "is_active = $")
	assert.Contains(t, db.query, "verification_status = $")
	assert.Contains(t, db.args, document.VerificationPending)
}

func TestInsertUploaded_OccupiedSlot(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{
			name:         "active slot index",
			err:          fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: activeSlotIndex}),
			wantConflict: true,
		},
		{
			name: "other unique index",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "uploaded_documents_pkey"},
		},
		{
			name: "other failure",
			err:  &pgconn.PgError{Code: "23502"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &recordingExecer{err: tt.err}
			doc := &document.UploadedDocument{
				ID:               uuid.New(),
				DocumentType:     "NATIONAL_ID",
				LinkedEntityType: document.EntityMember,
				LinkedEntityID:   "m-1",
				IsActive:         true,
			}

			err := insertUploaded(context.Background(), db, doc)
			require.Error(t, err)
			assert.Equal(t, tt.wantConflict, errors.Is(err, document.ErrConflict))
		})
	}
}
