package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/document/memstore"
	"github.com/MrJamesThe3rd/dossier/internal/export"
	"github.com/MrJamesThe3rd/dossier/internal/render"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	docs   *document.Service
	store  *storage.Local
	export *export.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	reg, err := catalog.Default()
	require.NoError(t, err)

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	renderer, err := render.New(store)
	require.NoError(t, err)

	c := &clock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	docs := document.NewService(memstore.New(), reg, document.WithRenderer(renderer), document.WithClock(c.now))

	return fixture{
		docs:   docs,
		store:  store,
		export: export.NewService(docs, store).WithClock(c.now),
	}
}

func (f fixture) upload(t *testing.T, memberID string) *document.UploadedDocument {
	t.Helper()

	ctx := context.Background()
	name := storage.ObjectName("uploads", memberID, "id card.pdf", time.Now())

	obj, err := f.store.Put(ctx, name, "application/pdf", strings.NewReader("%PDF-1.7 national id"))
	require.NoError(t, err)

	doc, err := f.docs.Upload(ctx, document.UploadRequest{
		DocumentType: "NATIONAL_ID",
		File: document.FileInfo{
			OriginalName: "id card.pdf",
			StoredName:   obj.Name,
			MIMEType:     obj.ContentType,
			Size:         obj.Size,
			Checksum:     obj.Checksum,
			URL:          obj.URL,
		},
		UploadedBy:       "clerk",
		LinkedEntityType: document.EntityMember,
		LinkedEntityID:   memberID,
		Metadata:         map[string]string{"idNumber": "AB123456", "expiryDate": "2030-01-01"},
	})
	require.NoError(t, err)

	return doc
}

func TestService_Export(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cert, err := f.docs.Generate(ctx, document.GenerateRequest{
		TemplateType: "MEMBERSHIP_CERTIFICATE",
		RequestedBy:  "clerk",
		MemberID:     "m-1",
		MemberName:   "Ana Silva",
		Fields: map[string]string{
			"memberName":       "Ana Silva",
			"membershipNumber": "M-0042",
			"joinDate":         "2019-05-01",
		},
		Format: catalog.FormatHTML,
	})
	require.NoError(t, err)

	// PDF rendering is deferred, so the receipt has no file to export.
	_, err = f.docs.Generate(ctx, document.GenerateRequest{
		TemplateType: "PAYMENT_RECEIPT",
		RequestedBy:  "clerk",
		MemberID:     "m-1",
		Fields: map[string]string{
			"payerName":   "Ana Silva",
			"amount":      "25.00",
			"paymentDate": "2026-03-01",
			"reference":   "TRX-1",
		},
		Format: catalog.FormatPDF,
	})
	require.NoError(t, err)

	id := f.upload(t, "m-1")
	f.upload(t, "m-2")

	req := export.Request{
		EntityType: document.EntityMember,
		EntityID:   "m-1",
		Viewer:     document.Viewer{UserID: "auditor", Admin: true},
	}

	items, err := f.export.Export(ctx, req, t.TempDir())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, id.ID, items[0].View.ID)
	assert.Equal(t, "uploaded/NATIONAL_ID_"+id.ID.String()[:8]+".pdf", items[0].Name)
	assert.Equal(t, cert.ID, items[1].View.ID)
	assert.Equal(t, "generated/MEMBERSHIP_CERTIFICATE_"+cert.DocumentNumber+".html", items[1].Name)

	content, err := os.ReadFile(items[0].FilePath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 national id", string(content))

	manifest := f.export.Manifest(req, items)
	assert.Equal(t, "auditor", manifest.ExportedBy)
	require.Len(t, manifest.Documents, 2)
	assert.Equal(t, cert.Artifact.Checksum, manifest.Documents[1].Checksum)

	var buf bytes.Buffer
	require.NoError(t, f.export.WriteZip(&buf, manifest, items))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := map[string]*zip.File{}
	for _, zf := range zr.File {
		files[zf.Name] = zf
	}

	assert.Contains(t, files, items[0].Name)
	assert.Contains(t, files, items[1].Name)
	assert.Contains(t, files, "summary.txt")
	require.Contains(t, files, "manifest.json")

	rc, err := files["manifest.json"].Open()
	require.NoError(t, err)
	defer rc.Close()

	var decoded export.Manifest
	require.NoError(t, json.NewDecoder(rc).Decode(&decoded))
	assert.Equal(t, document.EntityMember, decoded.EntityType)
	assert.Equal(t, "m-1", decoded.EntityID)
	assert.Len(t, decoded.Documents, 2)
}

func TestService_ExportMissingObject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	doc := f.upload(t, "m-1")
	require.NoError(t, f.store.Delete(ctx, doc.File.StoredName))

	_, err := f.export.Export(ctx, export.Request{
		EntityType: document.EntityMember,
		EntityID:   "m-1",
		Viewer:     document.Viewer{Admin: true},
	}, t.TempDir())
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestService_GenerateSummary(t *testing.T) {
	s := &export.Service{}

	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []export.Item{
		{
			View: document.UnifiedView{
				Title:     "National ID",
				Status:    "PENDING",
				CreatedAt: created,
				ExpiresAt: &expires,
			},
			Name: "uploaded/NATIONAL_ID_1a2b3c4d.pdf",
		},
		{
			View: document.UnifiedView{
				Title:     "Membership Certificate",
				Status:    "ISSUED",
				CreatedAt: created,
			},
			Name: "generated/MEMBERSHIP_CERTIFICATE_MC-2026-0001.html",
		},
	}

	body := s.GenerateSummary(items)

	for _, want := range []string{
		"* 2026-03-10 | National ID | PENDING | expires 2030-01-01 | uploaded/NATIONAL_ID_1a2b3c4d.pdf",
		"* 2026-03-10 | Membership Certificate | ISSUED | no expiry | generated/MEMBERSHIP_CERTIFICATE_MC-2026-0001.html",
	} {
		assert.Contains(t, body, want)
	}
}

func TestService_ExportEmpty(t *testing.T) {
	f := setup(t)
	dir := filepath.Join(t.TempDir(), "out")

	items, err := f.export.Export(context.Background(), export.Request{
		EntityType: document.EntityParcel,
		EntityID:   "p-9",
	}, dir)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = os.Stat(dir)
	assert.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.export.WriteZip(&buf, f.export.Manifest(export.Request{}, items), items))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Len(t, zr.File, 2)

}
