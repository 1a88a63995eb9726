package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/metrics"
)

func TestMetrics_Recorder(t *testing.T) {
	m := metrics.New()

	m.Generated("MEMBERSHIP_CERTIFICATE", document.StatusIssued)
	m.Generated("MEMBERSHIP_CERTIFICATE", document.StatusIssued)
	m.Uploaded("NATIONAL_ID", true)
	m.Transitioned(document.SourceUploaded, "PENDING", "VERIFIED")

	expected := `
# HELP dossier_documents_generated_total Generated documents by template and initial status.
# TYPE dossier_documents_generated_total counter
dossier_documents_generated_total{status="ISSUED",template="MEMBERSHIP_CERTIFICATE"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "dossier_documents_generated_total"))

	count, err := testutil.GatherAndCount(m.Registry(), "dossier_documents_uploaded_total", "dossier_document_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_Middleware(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/generated/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generated/42", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/generated/{id}"`)
	assert.Contains(t, rec.Body.String(), `code="418"`)
}
