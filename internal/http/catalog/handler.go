package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/http/apierror"
)

type Handler struct {
	reg *catalog.Registry
}

func NewHandler(reg *catalog.Registry) *Handler {
	return &Handler{reg: reg}
}

func (h *Handler) TemplateRoutes(r chi.Router) {
	r.Get("/", h.listTemplates)
	r.Get("/{type}", h.getTemplate)
}

func (h *Handler) UploadRoutes(r chi.Router) {
	r.Get("/", h.listUploads)
	r.Get("/{type}", h.getUpload)
}

type templateResponse struct {
	Type              string           `json:"type"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Category          catalog.Category `json:"category"`
	Prefix            string           `json:"prefix"`
	RequiredFields    []string         `json:"requiredFields"`
	OptionalFields    []string         `json:"optionalFields"`
	Formats           []catalog.Format `json:"formats"`
	RequiresApproval  bool             `json:"requiresApproval"`
	ValidityDays      *int             `json:"validityDays,omitempty"`
	AllowRegeneration bool             `json:"allowRegeneration"`
	TriggerEvents     []string         `json:"triggerEvents"`
	MaxCopies         int              `json:"maxCopies"`
}

type ruleResponse struct {
	Field   string           `json:"field"`
	Kind    catalog.RuleKind `json:"kind"`
	Param   string           `json:"param,omitempty"`
	Message string           `json:"message,omitempty"`
}

type uploadResponse struct {
	Type                 string           `json:"type"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	Category             catalog.Category `json:"category"`
	Scope                catalog.Scope    `json:"scope"`
	AllowedFormats       []catalog.Format `json:"allowedFormats"`
	MaxFileSizeMB        decimal.Decimal  `json:"maxFileSizeMb"`
	MaxFileSizeBytes     int64            `json:"maxFileSizeBytes"`
	Required             bool             `json:"required"`
	RequiresVerification bool             `json:"requiresVerification"`
	ExpiryField          string           `json:"expiryField,omitempty"`
	Rules                []ruleResponse   `json:"rules"`
	Tags                 []string         `json:"tags"`
}

func toTemplateResponse(t catalog.Template) templateResponse {
	return templateResponse{
		Type:              t.Type,
		Name:              t.Name,
		Description:       t.Description,
		Category:          t.Category,
		Prefix:            t.Prefix,
		RequiredFields:    orEmpty(t.RequiredFields),
		OptionalFields:    orEmpty(t.OptionalFields),
		Formats:           t.Formats,
		RequiresApproval:  t.RequiresApproval,
		ValidityDays:      t.ValidityDays,
		AllowRegeneration: t.AllowRegeneration,
		TriggerEvents:     orEmpty(t.TriggerEvents),
		MaxCopies:         t.MaxCopies,
	}
}

func toUploadResponse(u catalog.UploadConfig) uploadResponse {
	rules := make([]ruleResponse, len(u.Rules))
	for i, rule := range u.Rules {
		rules[i] = ruleResponse{Field: rule.Field, Kind: rule.Kind, Param: rule.Param, Message: rule.Message}
	}

	return uploadResponse{
		Type:                 u.Type,
		Name:                 u.Name,
		Description:          u.Description,
		Category:             u.Category,
		Scope:                u.Scope,
		AllowedFormats:       u.AllowedFormats,
		MaxFileSizeMB:        u.MaxFileSizeMB,
		MaxFileSizeBytes:     u.MaxFileSizeBytes(),
		Required:             u.Required,
		RequiresVerification: u.RequiresVerification,
		ExpiryField:          u.ExpiryField,
		Rules:                rules,
		Tags:                 orEmpty(u.Tags),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	category := catalog.Category(r.URL.Query().Get("category"))

	resp := []templateResponse{}

	for _, t := range h.reg.Templates() {
		if category != "" && t.Category != category {
			continue
		}

		resp = append(resp, toTemplateResponse(t))
	}

	apierror.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := h.reg.Template(chi.URLParam(r, "type"))
	if !ok {
		http.Error(w, "template not found", http.StatusNotFound)
		return
	}

	apierror.JSON(w, http.StatusOK, toTemplateResponse(t))
}

func (h *Handler) listUploads(w http.ResponseWriter, r *http.Request) {
	scope := catalog.Scope(r.URL.Query().Get("scope"))
	required := r.URL.Query().Get("required") == "true"

	resp := []uploadResponse{}

	for _, u := range h.reg.UploadConfigs() {
		if scope != "" && u.Scope != scope {
			continue
		}

		if required && !u.Required {
			continue
		}

		resp = append(resp, toUploadResponse(u))
	}

	apierror.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.reg.UploadConfig(chi.URLParam(r, "type"))
	if !ok {
		http.Error(w, "upload config not found", http.StatusNotFound)
		return
	}

	apierror.JSON(w, http.StatusOK, toUploadResponse(u))
}
