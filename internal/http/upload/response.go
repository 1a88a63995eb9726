package upload

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type fileResponse struct {
	OriginalName string `json:"originalName"`
	MIMEType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	Checksum     string `json:"checksum"`
	DownloadURL  string `json:"downloadUrl"`
}

type uploadResponse struct {
	ID                    uuid.UUID                   `json:"id"`
	DocumentType          string                      `json:"documentType"`
	Category              catalog.Category            `json:"category"`
	Scope                 catalog.Scope               `json:"scope"`
	File                  fileResponse                `json:"file"`
	UploadedBy            string                      `json:"uploadedBy"`
	UploadedAt            time.Time                   `json:"uploadedAt"`
	LinkedEntityType      document.EntityType         `json:"linkedEntityType,omitempty"`
	LinkedEntityID        string                      `json:"linkedEntityId,omitempty"`
	Tags                  []string                    `json:"tags"`
	Metadata              map[string]string           `json:"metadata"`
	VerificationStatus    document.VerificationStatus `json:"verificationStatus"`
	EffectiveVerification document.VerificationStatus `json:"effectiveVerification"`
	VerifiedBy            *string                     `json:"verifiedBy,omitempty"`
	VerifiedAt            *time.Time                  `json:"verifiedAt,omitempty"`
	VerificationNotes     *string                     `json:"verificationNotes,omitempty"`
	ExpiryDate            *time.Time                  `json:"expiryDate,omitempty"`
	IsActive              bool                        `json:"isActive"`
	ReplacedByID          *uuid.UUID                  `json:"replacedById,omitempty"`
	Version               int                         `json:"version"`
}

func toResponse(doc *document.UploadedDocument, now time.Time) uploadResponse {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	return uploadResponse{
		ID:           doc.ID,
		DocumentType: doc.DocumentType,
		Category:     doc.Category,
		Scope:        doc.Scope,
		File: fileResponse{
			OriginalName: doc.File.OriginalName,
			MIMEType:     doc.File.MIMEType,
			Size:         doc.File.Size,
			Checksum:     doc.File.Checksum,
			DownloadURL:  "/api/v1/uploads/" + doc.ID.String() + "/download",
		},
		UploadedBy:            doc.UploadedBy,
		UploadedAt:            doc.UploadedAt,
		LinkedEntityType:      doc.LinkedEntityType,
		LinkedEntityID:        doc.LinkedEntityID,
		Tags:                  tags,
		Metadata:              doc.Metadata,
		VerificationStatus:    doc.VerificationStatus,
		EffectiveVerification: document.EffectiveVerification(doc, now),
		VerifiedBy:            doc.VerifiedBy,
		VerifiedAt:            doc.VerifiedAt,
		VerificationNotes:     doc.VerificationNotes,
		ExpiryDate:            doc.ExpiryDate,
		IsActive:              doc.IsActive,
		ReplacedByID:          doc.ReplacedByID,
		Version:               doc.Version,
	}
}

func toResponseList(docs []*document.UploadedDocument, now time.Time) []uploadResponse {
	resp := make([]uploadResponse, len(docs))
	for i, doc := range docs {
		resp[i] = toResponse(doc, now)
	}

	return resp
}
