package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/export"
	"github.com/MrJamesThe3rd/dossier/internal/http/actor"
	"github.com/MrJamesThe3rd/dossier/internal/http/apierror"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	EntityType document.EntityType `json:"entityType"`
	EntityID   string              `json:"entityId"`
}

type exportMetadataResponse struct {
	Manifest export.Manifest `json:"manifest"`
	Summary  string          `json:"summary"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (export.Request, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return export.Request{}, false
	}

	if req.EntityType == "" {
		http.Error(w, "entityType is required", http.StatusBadRequest)
		return export.Request{}, false
	}

	if req.EntityType != document.EntityAssociation && req.EntityID == "" {
		http.Error(w, "entityId is required", http.StatusBadRequest)
		return export.Request{}, false
	}

	return export.Request{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Viewer:     actor.Viewer(r),
	}, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	tmpDir, err := os.MkdirTemp("", "dossier-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), req, tmpDir)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, exportMetadataResponse{
		Manifest: h.svc.Manifest(req, items),
		Summary:  h.svc.GenerateSummary(items),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	tmpDir, err := os.MkdirTemp("", "dossier-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), req, tmpDir)
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	name := string(req.EntityType)
	if req.EntityID != "" {
		name += "_" + req.EntityID
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"dossier_%s_%s.zip\"", sanitize(name), time.Now().Format("20060102")))

	if err := h.svc.WriteZip(w, h.svc.Manifest(req, items), items); err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '-' && r != '_' {
			out[i] = '_'
		}
	}

	return string(out)
}
