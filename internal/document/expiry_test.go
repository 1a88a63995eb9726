package document_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

func TestEffectiveStatus(t *testing.T) {
	until := baseTime.AddDate(0, 0, 10)

	tests := []struct {
		name string
		doc  document.GeneratedDocument
		asOf time.Time
		want document.Status
	}{
		{name: "IssuedBeforeExpiry", doc: document.GeneratedDocument{Status: document.StatusIssued, ValidUntil: &until}, asOf: baseTime, want: document.StatusIssued},
		{name: "IssuedAtExpiry", doc: document.GeneratedDocument{Status: document.StatusIssued, ValidUntil: &until}, asOf: until, want: document.StatusIssued},
		{name: "IssuedAfterExpiry", doc: document.GeneratedDocument{Status: document.StatusIssued, ValidUntil: &until}, asOf: until.Add(time.Second), want: document.StatusExpired},
		{name: "ApprovedAfterExpiry", doc: document.GeneratedDocument{Status: document.StatusApproved, ValidUntil: &until}, asOf: until.AddDate(1, 0, 0), want: document.StatusExpired},
		{name: "RevokedStaysRevoked", doc: document.GeneratedDocument{Status: document.StatusRevoked, ValidUntil: &until}, asOf: until.AddDate(1, 0, 0), want: document.StatusRevoked},
		{name: "DraftStaysDraft", doc: document.GeneratedDocument{Status: document.StatusDraft, ValidUntil: &until}, asOf: until.AddDate(1, 0, 0), want: document.StatusDraft},
		{name: "Permanent", doc: document.GeneratedDocument{Status: document.StatusIssued}, asOf: until.AddDate(50, 0, 0), want: document.StatusIssued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, document.EffectiveStatus(&tt.doc, tt.asOf))
			assert.Equal(t, tt.want == document.StatusExpired, document.IsExpired(&tt.doc, tt.asOf))
		})
	}
}

func TestExpiringWithin(t *testing.T) {
	at := func(days int) *time.Time {
		return new(baseTime.AddDate(0, 0, days))
	}

	doc := func(status document.Status, until *time.Time) *document.GeneratedDocument {
		return &document.GeneratedDocument{ID: uuid.New(), Status: status, ValidUntil: until}
	}

	in20 := doc(document.StatusIssued, at(20))
	in5 := doc(document.StatusApproved, at(5))
	today := doc(document.StatusIssued, at(0))
	edge := doc(document.StatusIssued, at(30))

	docs := []*document.GeneratedDocument{
		in20,
		doc(document.StatusIssued, at(31)),
		in5,
		doc(document.StatusIssued, at(-1)),
		doc(document.StatusDraft, at(3)),
		doc(document.StatusRevoked, at(3)),
		doc(document.StatusIssued, nil),
		today,
		edge,
	}

	got := document.ExpiringWithin(docs, 30, baseTime)
	assert.Equal(t, []*document.GeneratedDocument{today, in5, in20, edge}, got)

	assert.Empty(t, document.ExpiringWithin(nil, 30, baseTime))
}

func TestUploadExpired(t *testing.T) {
	expiry := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	active := &document.UploadedDocument{IsActive: true, ExpiryDate: &expiry, VerificationStatus: document.VerificationVerified}

	assert.False(t, document.UploadExpired(active, expiry.Add(23*time.Hour+59*time.Minute)))
	assert.True(t, document.UploadExpired(active, expiry.AddDate(0, 0, 1)))
	assert.Equal(t, document.VerificationExpired, document.EffectiveVerification(active, expiry.AddDate(0, 0, 1)))

	rejected := *active
	rejected.VerificationStatus = document.VerificationRejected
	assert.Equal(t, document.VerificationRejected, document.EffectiveVerification(&rejected, expiry.AddDate(0, 0, 1)))

	inactive := *active
	inactive.IsActive = false
	assert.False(t, document.UploadExpired(&inactive, expiry.AddDate(1, 0, 0)))

	noExpiry := &document.UploadedDocument{IsActive: true}
	assert.False(t, document.UploadExpired(noExpiry, expiry.AddDate(10, 0, 0)))
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to document.Status
		want     bool
	}{
		{document.StatusDraft, document.StatusPendingApproval, true},
		{document.StatusDraft, document.StatusApproved, true},
		{document.StatusDraft, document.StatusIssued, false},
		{document.StatusPendingApproval, document.StatusApproved, true},
		{document.StatusApproved, document.StatusIssued, true},
		{document.StatusIssued, document.StatusRevoked, true},
		{document.StatusIssued, document.StatusExpired, true},
		{document.StatusIssued, document.StatusSuperseded, true},
		{document.StatusApproved, document.StatusSuperseded, false},
		{document.StatusSuperseded, document.StatusIssued, false},
		{document.StatusRevoked, document.StatusIssued, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, document.StatusSuperseded.Terminal())
	assert.False(t, document.StatusIssued.Terminal())
}
