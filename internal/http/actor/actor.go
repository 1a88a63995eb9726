// Package actor reads the acting user of a request.
package actor

import (
	"net/http"

	"github.com/MrJamesThe3rd/dossier/internal/auth"
	"github.com/MrJamesThe3rd/dossier/internal/document"
)

const anonymous = "anonymous"

// ID is the authenticated user id, or "anonymous" on routes without auth.
func ID(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return id.UserID
	}

	return anonymous
}

func Viewer(r *http.Request) document.Viewer {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return document.Viewer{UserID: anonymous}
	}

	return document.Viewer{UserID: id.UserID, Admin: id.Admin}
}
