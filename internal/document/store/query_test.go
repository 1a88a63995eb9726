package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
)

func TestGeneratedQuery(t *testing.T) {
	query, args, err := generatedQuery(document.GeneratedFilter{
		MemberID: "m-1",
		Category: catalog.CategoryMembership,
		Statuses: []document.Status{document.StatusIssued, document.StatusApproved},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM generated_documents WHERE member_id = $1 AND category = $2 AND status IN ($3,$4)")
	assert.Contains(t, query, "ORDER BY generated_at ASC, id ASC")
	assert.Equal(t, []any{"m-1", catalog.CategoryMembership, "ISSUED", "APPROVED"}, args)
}

func TestGeneratedQuery_NoFilter(t *testing.T) {
	query, args, err := generatedQuery(document.GeneratedFilter{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestUploadedQuery(t *testing.T) {
	pending := document.VerificationPending

	query, args, err := uploadedQuery(document.UploadFilter{
		DocumentType: "NATIONAL_ID",
		EntityType:   document.EntityMember,
		EntityID:     "m-1",
		ActiveOnly:   true,
		Verification: &pending,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query,
		"WHERE document_type = $1 AND linked_entity_type = $2 AND linked_entity_id = $3 AND is_active = $4 AND verification_status = $5")
	assert.Equal(t, []any{"NATIONAL_ID", document.EntityMember, "m-1", true, document.VerificationPending}, args)
}
