package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/auth"
	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/encoding"
	"github.com/MrJamesThe3rd/dossier/internal/http/actor"
	"github.com/MrJamesThe3rd/dossier/internal/http/apierror"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

const multipartMemory = 8 << 20

type Handler struct {
	svc        *document.Service
	store      storage.Store
	maxBytes   int64
	expiryDays int
	now        func() time.Time
}

func NewHandler(svc *document.Service, store storage.Store, maxBytes int64, expiryDays int) *Handler {
	return &Handler{svc: svc, store: store, maxBytes: maxBytes, expiryDays: expiryDays, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/expiring", h.expiring)
	r.Get("/{id}", h.get)
	r.Get("/{id}/history", h.history)
	r.Get("/{id}/download", h.download)
	r.Delete("/{id}", h.delete)
	r.With(auth.RequireAdmin).Post("/{id}/verify", h.verify)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	metadata, err := parseMetadata(r.FormValue("metadata"))
	if err != nil {
		http.Error(w, "metadata must be a JSON object of strings", http.StatusBadRequest)
		return
	}

	req := document.UploadRequest{
		DocumentType:     r.FormValue("type"),
		UploadedBy:       actor.ID(r),
		LinkedEntityType: document.EntityType(r.FormValue("linkedEntityType")),
		LinkedEntityID:   strings.TrimSpace(r.FormValue("linkedEntityId")),
		Metadata:         metadata,
		Tags:             splitTags(r.FormValue("tags")),
		File: document.FileInfo{
			OriginalName: header.Filename,
			Size:         header.Size,
		},
	}

	detected, err := sniff(file)
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return
	}

	req.File.MIMEType = detected.String()

	cfg, err := h.svc.ValidateUpload(req)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	if err := checkContent(cfg, req.File, detected); err != nil {
		apierror.Write(w, r, err)
		return
	}

	var body io.Reader = file

	if detected.Is("text/plain") || document.FileFormat(req.File) == catalog.FormatTXT {
		utf8Body, charset, err := encoding.ToUTF8(file)
		if err != nil {
			http.Error(w, "could not decode text file", http.StatusBadRequest)
			return
		}

		slog.Debug("normalised text upload", "file", header.Filename, "charset", charset)

		body = utf8Body
		req.File.MIMEType = "text/plain; charset=utf-8"
	}

	owner := req.LinkedEntityID
	if owner == "" {
		owner = string(document.EntityAssociation)
	}

	name := storage.ObjectName("uploads", url.PathEscape(owner), header.Filename, h.now())

	obj, err := h.store.Put(r.Context(), name, req.File.MIMEType, body)
	if err != nil {
		apierror.Write(w, r, fmt.Errorf("storing upload: %w", err))
		return
	}

	req.File.StoredName = obj.Name
	req.File.Size = obj.Size
	req.File.Checksum = obj.Checksum
	req.File.URL = obj.URL

	doc, err := h.svc.Upload(r.Context(), req)
	if err != nil {
		if derr := h.store.Delete(r.Context(), obj.Name); derr != nil {
			slog.Warn("failed to remove orphaned object", "object", obj.Name, "error", derr)
		}

		apierror.Write(w, r, err)

		return
	}

	apierror.JSON(w, http.StatusCreated, toResponse(doc, h.now()))
}

func sniff(f multipart.File) (*mimetype.MIME, error) {
	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	return detected, nil
}

// checkContent rejects files whose bytes are of a format the config does not accept,
// whatever their extension claims.
func checkContent(cfg catalog.UploadConfig, file document.FileInfo, detected *mimetype.MIME) error {
	declared := document.FileFormat(file)
	sniffed := document.FileFormat(document.FileInfo{MIMEType: detected.String()})

	if detected.Is("application/octet-stream") || sniffed == "" || sniffed == declared || cfg.AllowsFormat(sniffed) {
		return nil
	}

	if (sniffed == "jpg" || sniffed == "jpeg") && (declared == "jpg" || declared == "jpeg") {
		return nil
	}

	return &document.InvalidFileFormatError{Format: sniffed, Allowed: cfg.AllowedFormats}
}

func parseMetadata(raw string) (map[string]string, error) {
	metadata := map[string]string{}

	if strings.TrimSpace(raw) == "" {
		return metadata, nil
	}

	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, err
	}

	return metadata, nil
}

func splitTags(raw string) []string {
	var tags []string

	for t := range strings.SplitSeq(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := document.UploadFilter{
		DocumentType: q.Get("type"),
		EntityType:   document.EntityType(q.Get("entityType")),
		EntityID:     q.Get("entityId"),
		ActiveOnly:   q.Get("includeInactive") != "true",
	}

	if s := q.Get("verification"); s != "" {
		filter.Verification = new(document.VerificationStatus(s))
	}

	docs, err := h.svc.ListUploaded(r.Context(), filter)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, toResponseList(docs, h.now()))
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	days := h.expiryDays

	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}

		days = n
	}

	docs, err := h.svc.ExpiringUploaded(r.Context(), days)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, toResponseList(docs, h.now()))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.GetUploaded(r.Context(), id)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, toResponse(doc, h.now()))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	docs, err := h.svc.UploadHistory(r.Context(), id)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, toResponseList(docs, h.now()))
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.GetUploaded(r.Context(), id)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	rc, err := h.store.Open(r.Context(), doc.File.StoredName)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}
	defer rc.Close()

	contentType := doc.File.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.File.OriginalName))

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to stream upload", "id", doc.ID, "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Deactivate(r.Context(), id, actor.Viewer(r)); err != nil {
		apierror.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type verifyRequest struct {
	Decision document.VerificationStatus `json:"decision"`
	Notes    string                      `json:"notes"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Verify(r.Context(), id, actor.ID(r), req.Decision, req.Notes)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, toResponse(doc, h.now()))
}
