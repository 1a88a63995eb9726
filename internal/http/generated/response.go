package generated

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type artifactResponse struct {
	Format      catalog.Format `json:"format"`
	Size        int64          `json:"size"`
	Checksum    string         `json:"checksum,omitempty"`
	DownloadURL string         `json:"downloadUrl,omitempty"`
}

type generatedResponse struct {
	ID                uuid.UUID         `json:"id"`
	DocumentNumber    string            `json:"documentNumber"`
	TemplateType      string            `json:"templateType"`
	Category          catalog.Category  `json:"category"`
	Title             string            `json:"title"`
	MemberID          string            `json:"memberId,omitempty"`
	MemberName        string            `json:"memberName,omitempty"`
	Status            document.Status   `json:"status"`
	EffectiveStatus   document.Status   `json:"effectiveStatus"`
	GeneratedBy       string            `json:"generatedBy"`
	GeneratedAt       time.Time         `json:"generatedAt"`
	ApprovedBy        *string           `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time        `json:"approvedAt,omitempty"`
	Artifact          artifactResponse  `json:"artifact"`
	ValidUntil        *time.Time        `json:"validUntil,omitempty"`
	Fields            map[string]string `json:"fields"`
	Metadata          map[string]string `json:"metadata"`
	Version           int               `json:"version"`
	PreviousVersionID *uuid.UUID        `json:"previousVersionId,omitempty"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

func toResponse(doc *document.GeneratedDocument, now time.Time) generatedResponse {
	resp := generatedResponse{
		ID:              doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		TemplateType:    doc.TemplateType,
		Category:        doc.Category,
		Title:           doc.Title,
		MemberID:        doc.MemberID,
		MemberName:      doc.MemberName,
		Status:          doc.Status,
		EffectiveStatus: document.EffectiveStatus(doc, now),
		GeneratedBy:     doc.GeneratedBy,
		GeneratedAt:     doc.GeneratedAt,
		ApprovedBy:      doc.ApprovedBy,
		ApprovedAt:      doc.ApprovedAt,
		Artifact: artifactResponse{
			Format:   doc.Artifact.Format,
			Size:     doc.Artifact.Size,
			Checksum: doc.Artifact.Checksum,
		},
		ValidUntil:        doc.ValidUntil,
		Fields:            doc.Fields,
		Metadata:          doc.Metadata,
		Version:           doc.Version,
		PreviousVersionID: doc.PreviousVersionID,
		UpdatedAt:         doc.UpdatedAt,
	}

	if doc.Artifact.Location != "" {
		resp.Artifact.DownloadURL = "/api/v1/generated/" + doc.ID.String() + "/download"
	}

	return resp
}

func toResponseList(docs []*document.GeneratedDocument, now time.Time) []generatedResponse {
	resp := make([]generatedResponse, len(docs))
	for i, doc := range docs {
		resp[i] = toResponse(doc, now)
	}

	return resp
}
