package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/document/memstore"
)

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		satisfied, required int
		want                int
	}{
		{0, 0, 100},
		{0, 4, 0},
		{4, 4, 100},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{5, 8, 63}, // 62.5 rounds up
		{1, 6, 17},
		{1, 200, 1}, // 0.5 rounds up
		{1, 201, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, document.CompletionPercentage(tt.satisfied, tt.required), "%d/%d", tt.satisfied, tt.required)
	}
}

func TestService_CheckRequirements_Member(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ignore := cmpopts.IgnoreFields(document.RequirementsCheckResult{}, "CheckedAt")

	res, err := f.svc.CheckRequirements(ctx, catalog.ScopeMember, "m-1")
	require.NoError(t, err)

	want := &document.RequirementsCheckResult{
		Scope:     catalog.ScopeMember,
		EntityID:  "m-1",
		Required:  []string{"NATIONAL_ID", "PASSPORT_PHOTO"},
		Satisfied: []string{},
		Missing:   []string{"NATIONAL_ID", "PASSPORT_PHOTO"},
		Expired:   []string{},
		Pending:   []string{},
	}
	if diff := cmp.Diff(want, res, ignore); diff != "" {
		t.Errorf("CheckRequirements() mismatch (-want +got):\n%s", diff)
	}

	_, err = f.svc.Upload(ctx, passportPhoto("m-1", "ana"))
	require.NoError(t, err)

	// Another member's upload does not count.
	_, err = f.svc.Upload(ctx, nationalID("m-2", "rui"))
	require.NoError(t, err)

	res, err = f.svc.CheckRequirements(ctx, catalog.ScopeMember, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 50, res.CompletionPercentage)
	assert.Equal(t, []string{"NATIONAL_ID"}, res.Missing)
	assert.False(t, res.IsComplete)

	id, err := f.svc.Upload(ctx, nationalID("m-1", "ana"))
	require.NoError(t, err)

	res, err = f.svc.CheckRequirements(ctx, catalog.ScopeMember, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 100, res.CompletionPercentage)
	assert.True(t, res.IsComplete)
	assert.Equal(t, []string{"NATIONAL_ID"}, res.Pending)
	assert.Empty(t, res.Missing)
	assert.Equal(t, baseTime, res.CheckedAt)

	_, err = f.svc.Verify(ctx, id.ID, "officer", document.VerificationRejected, "unreadable")
	require.NoError(t, err)

	res, err = f.svc.CheckRequirements(ctx, catalog.ScopeMember, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 50, res.CompletionPercentage)
	assert.Equal(t, []string{"NATIONAL_ID"}, res.Missing)
	assert.Empty(t, res.Pending)
}

func TestService_CheckRequirements_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := nationalID("m-1", "ana")
	req.Metadata["expiryDate"] = "2026-06-30"

	id, err := f.svc.Upload(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, id.ID, "officer", document.VerificationVerified, "")
	require.NoError(t, err)

	_, err = f.svc.Upload(ctx, passportPhoto("m-1", "ana"))
	require.NoError(t, err)

	// The expiry date itself is still valid.
	f.clock.t = time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC)

	res, err := f.svc.CheckRequirements(ctx, catalog.ScopeMember, "m-1")
	require.NoError(t, err)
	assert.True(t, res.IsComplete)

	f.clock.advance(time.Hour)

	res, err = f.svc.CheckRequirements(ctx, catalog.ScopeMember, "m-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"NATIONAL_ID"}, res.Expired)
	assert.Equal(t, []string{"NATIONAL_ID"}, res.Missing)
	assert.Equal(t, []string{"PASSPORT_PHOTO"}, res.Satisfied)
	assert.Equal(t, 50, res.CompletionPercentage)
}

func TestService_CheckRequirements_Association(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, document.UploadRequest{DocumentType: "BYLAWS", File: pdf(100), UploadedBy: "secretary"})
	require.NoError(t, err)

	res, err := f.svc.CheckRequirements(ctx, catalog.ScopeAssociation, "whatever")
	require.NoError(t, err)
	assert.Empty(t, res.EntityID)
	assert.Equal(t, []string{"ASSOCIATION_REGISTRATION", "BYLAWS"}, res.Required)
	assert.Equal(t, []string{"BYLAWS"}, res.Satisfied)
	assert.Equal(t, 50, res.CompletionPercentage)
}

func TestService_CheckRequirements_NothingRequired(t *testing.T) {
	reg, err := catalog.New(nil, []catalog.UploadConfig{{
		Type:           "SITE_PHOTO",
		Name:           "Site photo",
		Scope:          catalog.ScopeParcel,
		AllowedFormats: []catalog.Format{"jpg"},
		MaxFileSizeMB:  decimalOne(),
	}})
	require.NoError(t, err)

	svc := document.NewService(memstore.New(), reg)

	res, err := svc.CheckRequirements(context.Background(), catalog.ScopeParcel, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 100, res.CompletionPercentage)
	assert.True(t, res.IsComplete)
	assert.Empty(t, res.Required)
	assert.Empty(t, res.Missing)
}

func TestService_CheckRequirements_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckRequirements(context.Background(), catalog.Scope("galaxy"), "x")

	var target *document.ValidationError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "scope", target.Field)

	_, err = f.svc.CheckRequirements(context.Background(), catalog.ScopeParcel, " ")
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "entityId", target.Field)
}
