// Package render turns generated documents into HTML or plain text artifacts and stores
// them. PDF output is left to an external renderer.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
	"unicode"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

//go:embed layouts/*.tmpl
var layouts embed.FS

var contentTypes = map[catalog.Format]string{
	catalog.FormatHTML: "text/html; charset=utf-8",
	catalog.FormatTXT:  "text/plain; charset=utf-8",
}

type Field struct {
	Name  string
	Value string
}

// view is the data handed to the layouts.
type view struct {
	Title       string
	Description string
	Number      string
	Version     int
	GeneratedBy string
	GeneratedAt time.Time
	ValidUntil  *time.Time
	Fields      []Field
}

type Renderer struct {
	store storage.Store
	html  *htmltemplate.Template
	text  *texttemplate.Template
}

var _ document.Renderer = (*Renderer)(nil)

var funcs = map[string]any{
	"label": Label,
	"upper": strings.ToUpper,
	"date": func(v any) string {
		switch t := v.(type) {
		case time.Time:
			return t.Format("2 January 2006")
		case *time.Time:
			if t != nil {
				return t.Format("2 January 2006")
			}
		}

		return ""
	},
}

func New(store storage.Store) (*Renderer, error) {
	html, err := htmltemplate.New("document.html.tmpl").Funcs(funcs).ParseFS(layouts, "layouts/document.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html layout: %w", err)
	}

	text, err := texttemplate.New("document.txt.tmpl").Funcs(funcs).ParseFS(layouts, "layouts/document.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text layout: %w", err)
	}

	return &Renderer{store: store, html: html, text: text}, nil
}

// Render writes the artifact of doc and returns where it was stored.
func (r *Renderer) Render(ctx context.Context, tpl catalog.Template, doc *document.GeneratedDocument) (document.Artifact, error) {
	format := doc.Artifact.Format

	var buf bytes.Buffer

	switch format {
	case catalog.FormatHTML:
		if err := r.html.Execute(&buf, newView(tpl, doc)); err != nil {
			return document.Artifact{}, fmt.Errorf("execute html layout: %w", err)
		}
	case catalog.FormatTXT:
		if err := r.text.Execute(&buf, newView(tpl, doc)); err != nil {
			return document.Artifact{}, fmt.Errorf("execute text layout: %w", err)
		}
	default:
		return document.Artifact{}, document.ErrArtifactDeferred
	}

	name := storage.ObjectName("generated", doc.ID.String(), doc.DocumentNumber+"."+string(format), doc.GeneratedAt)

	obj, err := r.store.Put(ctx, name, contentTypes[format], &buf)
	if err != nil {
		return document.Artifact{}, fmt.Errorf("store artifact: %w", err)
	}

	return document.Artifact{
		Format:   format,
		Location: obj.Name,
		Size:     obj.Size,
		Checksum: obj.Checksum,
	}, nil
}

// Discard deletes a stored artifact.
func (r *Renderer) Discard(ctx context.Context, artifact document.Artifact) error {
	if err := r.store.Delete(ctx, artifact.Location); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}

	return nil
}

// newView lists the declared fields with a value, required ones first.
func newView(tpl catalog.Template, doc *document.GeneratedDocument) view {
	v := view{
		Title:       tpl.Name,
		Description: tpl.Description,
		Number:      doc.DocumentNumber,
		Version:     doc.Version,
		GeneratedBy: doc.GeneratedBy,
		GeneratedAt: doc.GeneratedAt,
		ValidUntil:  doc.ValidUntil,
	}

	for _, names := range [][]string{tpl.RequiredFields, tpl.OptionalFields} {
		for _, name := range names {
			if value := strings.TrimSpace(doc.Fields[name]); value != "" {
				v.Fields = append(v.Fields, Field{Name: name, Value: value})
			}
		}
	}

	return v
}

// Label turns a camelCase field name into words: membershipNumber becomes "Membership number".
func Label(name string) string {
	var b strings.Builder

	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
