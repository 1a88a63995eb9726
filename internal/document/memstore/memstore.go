// Package memstore is an in-process document.Repository. Records live in append-only
// slices indexed by id; every read and write copies, so callers never alias stored state.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type counterKey struct {
	prefix string
	year   int
}

type Store struct {
	mu sync.RWMutex

	generated    []*document.GeneratedDocument
	generatedIdx map[uuid.UUID]int

	uploaded    []*document.UploadedDocument
	uploadedIdx map[uuid.UUID]int

	counters map[counterKey]int64
}

var _ document.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		generatedIdx: make(map[uuid.UUID]int),
		uploadedIdx:  make(map[uuid.UUID]int),
		counters:     make(map[counterKey]int64),
	}
}

func (s *Store) NextSequence(_ context.Context, prefix string, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := counterKey{prefix: prefix, year: year}
	s.counters[k]++

	return s.counters[k], nil
}

func (s *Store) ListCounters(_ context.Context) ([]document.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]document.Counter, 0, len(s.counters))
	for k, v := range s.counters {
		out = append(out, document.Counter{Prefix: k.prefix, Year: k.year, Value: v})
	}

	slices.SortFunc(out, func(a, b document.Counter) int {
		return cmp.Or(cmp.Compare(a.Prefix, b.Prefix), cmp.Compare(a.Year, b.Year))
	})

	return out, nil
}

func (s *Store) CreateGenerated(_ context.Context, doc *document.GeneratedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertGenerated(doc)
}

func (s *Store) insertGenerated(doc *document.GeneratedDocument) error {
	if _, ok := s.generatedIdx[doc.ID]; ok {
		return fmt.Errorf("generated document %s already exists", doc.ID)
	}

	s.generatedIdx[doc.ID] = len(s.generated)
	s.generated = append(s.generated, doc.Clone())

	return nil
}

func (s *Store) GetGenerated(_ context.Context, id uuid.UUID) (*document.GeneratedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.generatedIdx[id]
	if !ok {
		return nil, document.ErrNotFound
	}

	return s.generated[i].Clone(), nil
}

func (s *Store) UpdateGenerated(_ context.Context, doc *document.GeneratedDocument, from document.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.generatedAt(doc.ID, from)
	if err != nil {
		return err
	}

	s.generated[i] = doc.Clone()

	return nil
}

func (s *Store) ListGenerated(_ context.Context, filter document.GeneratedFilter) ([]*document.GeneratedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*document.GeneratedDocument

	for _, d := range s.generated {
		if filter.TemplateType != "" && d.TemplateType != filter.TemplateType {
			continue
		}

		if filter.MemberID != "" && d.MemberID != filter.MemberID {
			continue
		}

		if filter.Category != "" && d.Category != filter.Category {
			continue
		}

		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, d.Status) {
			continue
		}

		out = append(out, d.Clone())
	}

	return out, nil
}

func (s *Store) Supersede(_ context.Context, prev, next *document.GeneratedDocument, from document.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.generatedAt(prev.ID, from)
	if err != nil {
		return err
	}

	if err := s.insertGenerated(next); err != nil {
		return err
	}

	s.generated[i] = prev.Clone()

	return nil
}

// generatedAt returns the index of id while its stored status is still from.
func (s *Store) generatedAt(id uuid.UUID, from document.Status) (int, error) {
	i, ok := s.generatedIdx[id]
	if !ok {
		return 0, document.ErrNotFound
	}

	if s.generated[i].Status != from {
		return 0, fmt.Errorf("%w: %s is %s, not %s", document.ErrConflict, id, s.generated[i].Status, from)
	}

	return i, nil
}

func (s *Store) CreateUploaded(_ context.Context, doc *document.UploadedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertUploaded(doc)
}

func (s *Store) insertUploaded(doc *document.UploadedDocument) error {
	if _, ok := s.uploadedIdx[doc.ID]; ok {
		return fmt.Errorf("upload %s already exists", doc.ID)
	}

	if doc.IsActive && s.activeIndex(doc.Slot()) >= 0 {
		return fmt.Errorf("%w: slot %s/%s/%s already has an active upload",
			document.ErrConflict, doc.DocumentType, doc.LinkedEntityType, doc.LinkedEntityID)
	}

	s.uploadedIdx[doc.ID] = len(s.uploaded)
	s.uploaded = append(s.uploaded, doc.Clone())

	return nil
}

func (s *Store) activeIndex(slot document.Slot) int {
	return slices.IndexFunc(s.uploaded, func(u *document.UploadedDocument) bool {
		return u.IsActive && u.Slot() == slot
	})
}

func (s *Store) GetUploaded(_ context.Context, id uuid.UUID) (*document.UploadedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.uploadedIdx[id]
	if !ok {
		return nil, document.ErrNotFound
	}

	return s.uploaded[i].Clone(), nil
}

func (s *Store) UpdateUploaded(_ context.Context, doc *document.UploadedDocument, from document.UploadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.uploadedAt(doc.ID, from)
	if err != nil {
		return err
	}

	s.uploaded[i] = doc.Clone()

	return nil
}

// uploadedAt returns the index of id while its stored state is still from.
func (s *Store) uploadedAt(id uuid.UUID, from document.UploadState) (int, error) {
	i, ok := s.uploadedIdx[id]
	if !ok {
		return 0, document.ErrNotFound
	}

	if cur := s.uploaded[i].State(); cur != from {
		return 0, fmt.Errorf("%w: upload %s is %+v, not %+v", document.ErrConflict, id, cur, from)
	}

	return i, nil
}

func (s *Store) ListUploaded(_ context.Context, filter document.UploadFilter) ([]*document.UploadedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*document.UploadedDocument

	for _, u := range s.uploaded {
		if filter.DocumentType != "" && u.DocumentType != filter.DocumentType {
			continue
		}

		if filter.EntityType != "" && u.LinkedEntityType != filter.EntityType {
			continue
		}

		if filter.EntityID != "" && u.LinkedEntityID != filter.EntityID {
			continue
		}

		if filter.ActiveOnly && !u.IsActive {
			continue
		}

		if filter.Verification != nil && u.VerificationStatus != *filter.Verification {
			continue
		}

		out = append(out, u.Clone())
	}

	return out, nil
}

func (s *Store) FindActiveUpload(_ context.Context, slot document.Slot) (*document.UploadedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.activeIndex(slot)
	if i < 0 {
		return nil, nil
	}

	return s.uploaded[i].Clone(), nil
}

func (s *Store) ReplaceUploaded(_ context.Context, prev, next *document.UploadedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.uploadedIdx[prev.ID]
	if !ok {
		return document.ErrNotFound
	}

	if !s.uploaded[i].IsActive {
		return fmt.Errorf("%w: upload %s is no longer active", document.ErrConflict, prev.ID)
	}

	old := s.uploaded[i]
	s.uploaded[i] = prev.Clone()

	if err := s.insertUploaded(next); err != nil {
		s.uploaded[i] = old
		return err
	}

	return nil
}

// Len reports how many records each collection holds.
func (s *Store) Len() (generated, uploaded int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.generated), len(s.uploaded)
}
