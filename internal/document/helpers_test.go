package document_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/document/memstore"
)

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func defaultCatalog(t *testing.T) *catalog.Registry {
	t.Helper()

	reg, err := catalog.Default()
	require.NoError(t, err)

	return reg
}

type fixture struct {
	svc   *document.Service
	store *memstore.Store
	clock *clock
}

func newFixture(t *testing.T, opts ...document.Option) fixture {
	t.Helper()

	c := &clock{t: baseTime}
	store := memstore.New()
	svc := document.NewService(store, defaultCatalog(t), append([]document.Option{document.WithClock(c.now)}, opts...)...)

	return fixture{svc: svc, store: store, clock: c}
}

func membershipFields() map[string]string {
	return map[string]string{
		"memberName":       "Ana Silva",
		"membershipNumber": "M-0042",
		"joinDate":         "2019-05-01",
	}
}

func landFields() map[string]string {
	return map[string]string{
		"ownerName":    "Ana Silva",
		"parcelNumber": "P-17",
		"areaSqm":      "450",
		"location":     "North block",
	}
}

func pdf(size int64) document.FileInfo {
	return document.FileInfo{OriginalName: "scan.pdf", MIMEType: "application/pdf", Size: size, URL: "local://scan.pdf"}
}

func png(size int64) document.FileInfo {
	return document.FileInfo{OriginalName: "photo.png", MIMEType: "image/png", Size: size, URL: "local://photo.png"}
}

func nationalID(memberID, uploadedBy string) document.UploadRequest {
	return document.UploadRequest{
		DocumentType:     "NATIONAL_ID",
		File:             pdf(2048),
		UploadedBy:       uploadedBy,
		LinkedEntityType: document.EntityMember,
		LinkedEntityID:   memberID,
		Metadata:         map[string]string{"idNumber": "AB123456", "expiryDate": "2030-01-01"},
	}
}

func passportPhoto(memberID, uploadedBy string) document.UploadRequest {
	return document.UploadRequest{
		DocumentType:     "PASSPORT_PHOTO",
		File:             png(512 * 1024),
		UploadedBy:       uploadedBy,
		LinkedEntityType: document.EntityMember,
		LinkedEntityID:   memberID,
	}
}

func decimalOne() decimal.Decimal {
	return decimal.NewFromInt(1)
}
