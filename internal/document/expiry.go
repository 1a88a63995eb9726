package document

import (
	"slices"
	"time"
)

// Expiry is derived on read: stored records keep their status and these helpers decide
// whether a record is past its validity at a given instant.

func live(s Status) bool {
	return s == StatusIssued || s == StatusApproved
}

// IsExpired reports whether a live document is past its ValidUntil at asOf.
func IsExpired(doc *GeneratedDocument, asOf time.Time) bool {
	return live(doc.Status) && doc.ValidUntil != nil && doc.ValidUntil.Before(asOf)
}

// EffectiveStatus is the stored status, or EXPIRED for live documents past their validity.
func EffectiveStatus(doc *GeneratedDocument, asOf time.Time) Status {
	if IsExpired(doc, asOf) {
		return StatusExpired
	}

	return doc.Status
}

// ExpiringWithin returns the ISSUED and APPROVED documents whose ValidUntil falls in
// [asOf, asOf+days], soonest first.
func ExpiringWithin(docs []*GeneratedDocument, days int, asOf time.Time) []*GeneratedDocument {
	end := asOf.AddDate(0, 0, days)

	var out []*GeneratedDocument

	for _, d := range docs {
		if !live(d.Status) || d.ValidUntil == nil {
			continue
		}

		if d.ValidUntil.Before(asOf) || d.ValidUntil.After(end) {
			continue
		}

		out = append(out, d)
	}

	slices.SortStableFunc(out, func(a, b *GeneratedDocument) int {
		return a.ValidUntil.Compare(*b.ValidUntil)
	})

	return out
}

// UploadExpired reports whether an active upload is past its expiry date. The expiry date
// is the last valid day.
func UploadExpired(u *UploadedDocument, asOf time.Time) bool {
	if !u.IsActive || u.ExpiryDate == nil {
		return false
	}

	return !asOf.Before(u.ExpiryDate.AddDate(0, 0, 1))
}

// EffectiveVerification is the stored verification status, or EXPIRED for an expired upload
// that was not rejected.
func EffectiveVerification(u *UploadedDocument, asOf time.Time) VerificationStatus {
	if u.VerificationStatus != VerificationRejected && UploadExpired(u, asOf) {
		return VerificationExpired
	}

	return u.VerificationStatus
}

// ExpiringUploads returns active uploads whose expiry date falls in [asOf, asOf+days].
func ExpiringUploads(uploads []*UploadedDocument, days int, asOf time.Time) []*UploadedDocument {
	end := asOf.AddDate(0, 0, days)

	var out []*UploadedDocument

	for _, u := range uploads {
		if !u.IsActive || u.ExpiryDate == nil || UploadExpired(u, asOf) {
			continue
		}

		if u.ExpiryDate.After(end) {
			continue
		}

		out = append(out, u)
	}

	slices.SortStableFunc(out, func(a, b *UploadedDocument) int {
		return a.ExpiryDate.Compare(*b.ExpiryDate)
	})

	return out
}
