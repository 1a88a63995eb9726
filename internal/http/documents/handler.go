package documents

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/http/actor"
	"github.com/MrJamesThe3rd/dossier/internal/http/apierror"
)

type Handler struct {
	svc *document.Service
}

func NewHandler(svc *document.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) RequirementsRoutes(r chi.Router) {
	r.Get("/{scope}", h.requirements)
	r.Get("/{scope}/{entityID}", h.requirements)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := document.UnifiedFilter{
		Source:         document.Source(q.Get("source")),
		Category:       catalog.Category(q.Get("category")),
		Status:         q.Get("status"),
		Search:         q.Get("q"),
		EntityType:     document.EntityType(q.Get("entityType")),
		EntityID:       q.Get("entityId"),
		IncludeHistory: q.Get("history") == "true",
	}

	views := []document.UnifiedView{}

	for v, err := range h.svc.Unified(r.Context(), filter, actor.Viewer(r)) {
		if err != nil {
			apierror.Write(w, r, err)
			return
		}

		v.File.URL = downloadURL(v)
		views = append(views, v)
	}

	apierror.JSON(w, http.StatusOK, views)
}

// downloadURL points clients at the API instead of the storage backend.
func downloadURL(v document.UnifiedView) string {
	if !v.CanDownload {
		return ""
	}

	switch v.Source {
	case document.SourceGenerated:
		return "/api/v1/generated/" + v.ID.String() + "/download"
	case document.SourceUploaded:
		return "/api/v1/uploads/" + v.ID.String() + "/download"
	}

	return ""
}

func (h *Handler) requirements(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CheckRequirements(r.Context(), catalog.Scope(chi.URLParam(r, "scope")), chi.URLParam(r, "entityID"))
	if err != nil {
		apierror.Write(w, r, err)
		return
	}

	apierror.JSON(w, http.StatusOK, res)
}
