package memstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/document/memstore"
)

func TestStore_NextSequence_Concurrent(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	const n = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{}
	)

	for range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			v, err := s.NextSequence(ctx, "MC", 2026)
			assert.NoError(t, err)

			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Len(t, seen, n)

	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing %d", i)
	}

	other, err := s.NextSequence(ctx, "MC", 2027)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	counters, err := s.ListCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []document.Counter{
		{Prefix: "MC", Year: 2026, Value: n},
		{Prefix: "MC", Year: 2027, Value: 1},
	}, counters)
}

func TestStore_GetGenerated_ReturnsCopy(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	doc := &document.GeneratedDocument{ID: uuid.New(), Fields: map[string]string{"a": "1"}}
	require.NoError(t, s.CreateGenerated(ctx, doc))

	doc.Fields["a"] = "changed"

	got, err := s.GetGenerated(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", got.Fields["a"])

	got.Fields["a"] = "again"

	again, err := s.GetGenerated(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", again.Fields["a"])
}

func TestStore_NotFound(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	_, err := s.GetGenerated(ctx, uuid.New())
	assert.ErrorIs(t, err, document.ErrNotFound)

	_, err = s.GetUploaded(ctx, uuid.New())
	assert.ErrorIs(t, err, document.ErrNotFound)

	err = s.UpdateUploaded(ctx, &document.UploadedDocument{ID: uuid.New()}, document.UploadState{})
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestStore_ReplaceUploaded(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	prev := &document.UploadedDocument{
		ID:               uuid.New(),
		DocumentType:     "NATIONAL_ID",
		LinkedEntityType: document.EntityMember,
		LinkedEntityID:   "m-1",
		IsActive:         true,
		UploadedAt:       time.Now(),
	}
	require.NoError(t, s.CreateUploaded(ctx, prev))

	slot := prev.Slot()

	active, err := s.FindActiveUpload(ctx, slot)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, prev.ID, active.ID)

	dup := *prev
	dup.ID = uuid.New()
	assert.Error(t, s.CreateUploaded(ctx, &dup), "second active record in one slot")

	next := dup
	prev.IsActive = false
	prev.ReplacedByID = new(next.ID)
	require.NoError(t, s.ReplaceUploaded(ctx, prev, &next))

	active, err = s.FindActiveUpload(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, next.ID, active.ID)

	all, err := s.ListUploaded(ctx, document.UploadFilter{DocumentType: "NATIONAL_ID"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := s.ListUploaded(ctx, document.UploadFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, onlyActive, 1)
}

func TestStore_ReplaceUploaded_RollsBack(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	a := &document.UploadedDocument{ID: uuid.New(), DocumentType: "BYLAWS", LinkedEntityType: document.EntityAssociation, IsActive: true}
	require.NoError(t, s.CreateUploaded(ctx, a))

	deactivated := *a
	deactivated.IsActive = false

	// Reusing an existing id makes the insert fail.
	err := s.ReplaceUploaded(ctx, &deactivated, &document.UploadedDocument{ID: a.ID, IsActive: true})
	require.Error(t, err)

	got, err := s.GetUploaded(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestStore_FindActiveUpload_Empty(t *testing.T) {
	s := memstore.New()

	got, err := s.FindActiveUpload(context.Background(), document.Slot{DocumentType: "BYLAWS"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ConditionalWrites(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		write func(s *memstore.Store, issued *document.GeneratedDocument) error
	}{
		{
			name: "update from a status the record no longer has",
			write: func(s *memstore.Store, issued *document.GeneratedDocument) error {
				doc := issued.Clone()
				doc.Status = document.StatusApproved

				return s.UpdateGenerated(ctx, doc, document.StatusPendingApproval)
			},
		},
		{
			name: "second supersede of the same version",
			write: func(s *memstore.Store, issued *document.GeneratedDocument) error {
				supersede := func() error {
					prev := issued.Clone()
					prev.Status = document.StatusSuperseded

					next := issued.Clone()
					next.ID = uuid.New()
					next.PreviousVersionID = new(issued.ID)

					return s.Supersede(ctx, prev, next, document.StatusIssued)
				}

				require.NoError(t, supersede())

				return supersede()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memstore.New()

			issued := &document.GeneratedDocument{ID: uuid.New(), Status: document.StatusIssued}
			require.NoError(t, s.CreateGenerated(ctx, issued))

			err := tt.write(s, issued)
			require.ErrorIs(t, err, document.ErrConflict)

			generated, _ := s.Len()
			assert.LessOrEqual(t, generated, 2, "a refused write must not add a version")
		})
	}
}

func TestStore_UpdateUploaded_StaleState(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	doc := &document.UploadedDocument{
		ID:                 uuid.New(),
		DocumentType:       "NATIONAL_ID",
		IsActive:           true,
		VerificationStatus: document.VerificationPending,
	}
	require.NoError(t, s.CreateUploaded(ctx, doc))

	read := doc.State()

	verified := doc.Clone()
	verified.VerificationStatus = document.VerificationVerified
	require.NoError(t, s.UpdateUploaded(ctx, verified, read))

	rejected := doc.Clone()
	rejected.VerificationStatus = document.VerificationRejected
	require.ErrorIs(t, s.UpdateUploaded(ctx, rejected, read), document.ErrConflict)

	got, err := s.GetUploaded(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, document.VerificationVerified, got.VerificationStatus)
}

func TestStore_ReplaceUploaded_InactivePrev(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	prev := &document.UploadedDocument{ID: uuid.New(), DocumentType: "BYLAWS", LinkedEntityType: document.EntityAssociation, IsActive: true}
	require.NoError(t, s.CreateUploaded(ctx, prev))

	replace := func() error {
		old := prev.Clone()
		old.IsActive = false

		return s.ReplaceUploaded(ctx, old, &document.UploadedDocument{
			ID:               uuid.New(),
			DocumentType:     "BYLAWS",
			LinkedEntityType: document.EntityAssociation,
			IsActive:         true,
		})
	}

	require.NoError(t, replace())
	require.ErrorIs(t, replace(), document.ErrConflict)

	_, uploaded := s.Len()
	assert.Equal(t, 2, uploaded)
}
