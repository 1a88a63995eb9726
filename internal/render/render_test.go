package render_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/render"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

func setup(t *testing.T) (*render.Renderer, storage.Store, catalog.Template) {
	t.Helper()

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	r, err := render.New(store)
	require.NoError(t, err)

	reg, err := catalog.Default()
	require.NoError(t, err)

	tpl, ok := reg.Template("MEMBERSHIP_CERTIFICATE")
	require.True(t, ok)

	return r, store, tpl
}

func certificate(format catalog.Format) *document.GeneratedDocument {
	generated := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	return &document.GeneratedDocument{
		ID:             uuid.New(),
		DocumentNumber: "MC-2026-0007",
		GeneratedBy:    "clerk",
		GeneratedAt:    generated,
		ValidUntil:     new(generated.AddDate(1, 0, 0)),
		Version:        2,
		Artifact:       document.Artifact{Format: format},
		Fields: map[string]string{
			"memberName":       "Ana <Silva>",
			"membershipNumber": "M-0042",
			"joinDate":         "2019-05-01",
			"unknown":          "not printed",
		},
	}
}

func read(t *testing.T, store storage.Store, location string) string {
	t.Helper()

	rc, err := store.Open(context.Background(), location)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)

	return string(body)
}

func TestRenderer_HTML(t *testing.T) {
	r, store, tpl := setup(t)

	doc := certificate(catalog.FormatHTML)

	artifact, err := r.Render(context.Background(), tpl, doc)
	require.NoError(t, err)

	assert.Equal(t, catalog.FormatHTML, artifact.Format)
	assert.True(t, strings.HasPrefix(artifact.Location, "generated/"+doc.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(artifact.Location, "MC-2026-0007.html"))
	assert.True(t, strings.HasPrefix(artifact.Checksum, "sha256:"))

	body := read(t, store, artifact.Location)
	assert.Equal(t, int64(len(body)), artifact.Size)
	assert.Contains(t, body, "<h1>Membership Certificate</h1>")
	assert.Contains(t, body, "MC-2026-0007 (version 2)")
	assert.Contains(t, body, "<dt>Membership number</dt><dd>M-0042</dd>")
	assert.Contains(t, body, "Ana &lt;Silva&gt;")
	assert.Contains(t, body, "Valid until 10 March 2027")
	assert.NotContains(t, body, "not printed")
}

func TestRenderer_Text(t *testing.T) {
	r, store, tpl := setup(t)

	artifact, err := r.Render(context.Background(), tpl, certificate(catalog.FormatTXT))
	require.NoError(t, err)

	body := read(t, store, artifact.Location)
	assert.True(t, strings.HasPrefix(body, "MEMBERSHIP CERTIFICATE\n"))
	assert.Contains(t, body, "Member name          Ana <Silva>")
	assert.Contains(t, body, "Issued 10 March 2026 by clerk. Valid until 10 March 2027.")
}

func TestRenderer_Discard(t *testing.T) {
	r, store, tpl := setup(t)
	ctx := context.Background()

	artifact, err := r.Render(ctx, tpl, certificate(catalog.FormatTXT))
	require.NoError(t, err)

	require.NoError(t, r.Discard(ctx, artifact))

	_, err = store.Open(ctx, artifact.Location)
	assert.Error(t, err)
}

func TestRenderer_PDFDeferred(t *testing.T) {
	r, _, tpl := setup(t)

	_, err := r.Render(context.Background(), tpl, certificate(catalog.FormatPDF))
	assert.ErrorIs(t, err, document.ErrArtifactDeferred)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Membership number", render.Label("membershipNumber"))
	assert.Equal(t, "Area sqm", render.Label("areaSqm"))
	assert.Equal(t, "Purpose", render.Label("purpose"))
}
