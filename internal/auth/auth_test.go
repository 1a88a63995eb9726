package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dossier/internal/auth"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func tokens() *auth.Tokens {
	return auth.NewTokens("secret", "dossier", time.Hour).WithClock(func() time.Time { return now })
}

func TestTokens_RoundTrip(t *testing.T) {
	tok, err := tokens().Issue("ana", true)
	require.NoError(t, err)

	id, err := tokens().Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{UserID: "ana", Admin: true}, id)
}

func TestTokens_Rejects(t *testing.T) {
	valid, err := tokens().Issue("ana", false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		parser *auth.Tokens
		token  string
	}{
		{name: "WrongSecret", parser: auth.NewTokens("other", "dossier", time.Hour).WithClock(func() time.Time { return now }), token: valid},
		{name: "WrongIssuer", parser: auth.NewTokens("secret", "elsewhere", time.Hour).WithClock(func() time.Time { return now }), token: valid},
		{name: "Expired", parser: auth.NewTokens("secret", "dossier", time.Hour).WithClock(func() time.Time { return now.Add(2 * time.Hour) }), token: valid},
		{name: "Garbage", parser: tokens(), token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(tt.token)
			assert.ErrorIs(t, err, auth.ErrUnauthenticated)
		})
	}

	_, err = tokens().Issue(" ", false)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	tok, err := tokens().Issue("ana", false)
	require.NoError(t, err)

	var got auth.Identity

	h := tokens().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "Valid", header: "Bearer " + tok, want: http.StatusNoContent},
		{name: "Missing", want: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "Invalid", header: "Bearer abc", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, auth.Identity{UserID: "ana"}, got)
}

func TestRequireAdmin(t *testing.T) {
	h := auth.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		id   *auth.Identity
		want int
	}{
		{id: nil, want: http.StatusForbidden},
		{id: &auth.Identity{UserID: "ana"}, want: http.StatusForbidden},
		{id: &auth.Identity{UserID: "root", Admin: true}, want: http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.id != nil {
			req = req.WithContext(auth.WithIdentity(req.Context(), *tc.id))
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code)
	}
}
