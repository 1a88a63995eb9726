package generated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dossier/internal/auth"
	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/http/actor"
	"github.com/MrJamesThe3rd/dossier/internal/http/apierror"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

type Handler struct {
	svc        *document.Service
	store      storage.Store
	expiryDays int
	now        func() time.Time
}

func NewHandler(svc *document.Service, store storage.Store, expiryDays int) *Handler {
	return &Handler{svc: svc, store: store, expiryDays: expiryDays, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/expiring", h.expiring)
	r.Get("/{id}", h.get)
	r.Get("/{id}/history", h.history)
	r.Get("/{id}/download", h.download)
	r.Post("/{id}/submit", h.action(h.svc.SubmitForApproval))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/{id}/regenerate", h.regenerate)
		r.Post("/{id}/approve", h.action(h.svc.Approve))
		r.Post("/{id}/issue", h.action(h.svc.Issue))
		r.Post("/{id}/revoke", h.revoke)
		r.Post("/{id}/expire", h.action(h.svc.MarkExpired))
	})
}

type generateRequest struct {
	TemplateType string            `json:"templateType"`
	MemberID     string            `json:"memberId,omitempty"`
	MemberName   string            `json:"memberName,omitempty"`
	Fields       map[string]string `json:"fields"`
	Format       catalog.Format    `json:"format,omitempty"`
	Copies       int               `json:"copies,omitempty"`
	Urgent       bool              `json:"urgent,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Generate(r.Context(), document.GenerateRequest{
		TemplateType: req.TemplateType,
		RequestedBy:  actor.ID(r),
		MemberID:     req.MemberID,
		MemberName:   req.MemberName,
		Fields:       req.Fields,
		Format:       req.Format,
		Copies:       req.Copies,
		Urgent:       req.Urgent,
	})
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusCreated, toResponse(doc, h.now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := document.GeneratedFilter{
		TemplateType: q.Get("template"),
		MemberID:     q.Get("member"),
		Category:     catalog.Category(q.Get("category")),
	}

	for _, s := range q["status"] {
		filter.Statuses = append(filter.Statuses, document.Status(s))
	}

	docs, err := h.svc.ListGenerated(r.Context(), filter)
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

	docs, err := h.svc.Expiring(r.Context(), days)
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

	doc, err := h.svc.GetGenerated(r.Context(), id)
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

	docs, err := h.svc.History(r.Context(), id)
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

	doc, err := h.svc.GetGenerated(r.Context(), id)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	if doc.Status == document.StatusRevoked {
		http.Error(w, "document was revoked", http.StatusGone)
		return
	}

	if doc.Artifact.Location == "" {
		http.Error(w, "artifact not rendered", http.StatusNotFound)
		return
	}

	rc, err := h.store.Open(r.Context(), doc.Artifact.Location)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}
	defer rc.Close()

	filename := doc.DocumentNumber + "." + string(doc.Artifact.Format)

	contentType := mime.TypeByExtension("." + string(doc.Artifact.Format))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to stream artifact", "id", doc.ID, "error", err)
	}
}

type actionFunc func(ctx context.Context, id uuid.UUID, actor string) (*document.GeneratedDocument, error)

// action adapts a lifecycle step that only needs the acting user.
func (h *Handler) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		doc, err := fn(r.Context(), id, actor.ID(r))
		if err != nil {
			apierror.Write(w, r, err)
			return
		}

		apierror.JSON(w, http.StatusOK, toResponse(doc, h.now()))
	}
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Revoke(r.Context(), id, actor.ID(r), req.Reason)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, toResponse(doc, h.now()))
}

type regenerateRequest struct {
	Fields map[string]string `json:"fields"`
	Format catalog.Format    `json:"format,omitempty"`
}

func (h *Handler) regenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Regenerate(r.Context(), id, document.RegenerateRequest{
		RequestedBy: actor.ID(r),
		Fields:      req.Fields,
		Format:      req.Format,
	})
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusCreated, toResponse(doc, h.now()))
}
