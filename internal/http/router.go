package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/dossier/internal/auth"
	"github.com/MrJamesThe3rd/dossier/internal/http/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/http/documents"
	"github.com/MrJamesThe3rd/dossier/internal/http/export"
	"github.com/MrJamesThe3rd/dossier/internal/http/generated"
	"github.com/MrJamesThe3rd/dossier/internal/http/upload"
	"github.com/MrJamesThe3rd/dossier/internal/metrics"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	Tokens         *auth.Tokens
	// Metrics is optional; without it /metrics is not mounted.
	Metrics *metrics.Metrics
}

func New(
	opts Options,
	catalogV1 *catalog.Handler,
	generatedV1 *generated.Handler,
	uploadsV1 *upload.Handler,
	documentsV1 *documents.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Use(middleware.Heartbeat("/healthz"))

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle("/metrics", opts.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(opts.Tokens.Middleware)

		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Route("/templates", catalogV1.TemplateRoutes)
		r.Route("/upload-configs", catalogV1.UploadRoutes)

		r.Route("/generated", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			generatedV1.Routes(r)
		})

		r.Route("/uploads", uploadsV1.Routes)
		r.Route("/documents", documentsV1.Routes)
		r.Route("/requirements", documentsV1.RequirementsRoutes)

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			exportV1.Routes(r)
		})
	})

	return router
}
