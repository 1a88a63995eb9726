package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type file struct {
	Templates []Template     `yaml:"templates"`
	Uploads   []UploadConfig `yaml:"uploads"`
}

// Registry is the immutable set of document templates and upload configurations.
// It is safe for concurrent use.
type Registry struct {
	templates   []Template
	uploads     []UploadConfig
	templateIdx map[string]int
	uploadIdx   map[string]int
}

// Default loads the catalog shipped with the binary.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// Load parses and validates a YAML catalog.
func Load(r io.Reader) (*Registry, error) {
	var f file

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	return New(f.Templates, f.Uploads)
}

// New builds a registry from already decoded definitions.
func New(templates []Template, uploads []UploadConfig) (*Registry, error) {
	reg := &Registry{
		templates:   make([]Template, 0, len(templates)),
		uploads:     make([]UploadConfig, 0, len(uploads)),
		templateIdx: make(map[string]int, len(templates)),
		uploadIdx:   make(map[string]int, len(uploads)),
	}

	for _, t := range templates {
		if err := validateTemplate(t); err != nil {
			return nil, err
		}

		if _, dup := reg.templateIdx[t.Type]; dup {
			return nil, fmt.Errorf("duplicate template %s", t.Type)
		}

		if t.MaxCopies == 0 {
			t.MaxCopies = 1
		}

		reg.templateIdx[t.Type] = len(reg.templates)
		reg.templates = append(reg.templates, t)
	}

	for _, u := range uploads {
		if err := validateUpload(&u); err != nil {
			return nil, err
		}

		if _, dup := reg.uploadIdx[u.Type]; dup {
			return nil, fmt.Errorf("duplicate upload config %s", u.Type)
		}

		reg.uploadIdx[u.Type] = len(reg.uploads)
		reg.uploads = append(reg.uploads, u)
	}

	return reg, nil
}

func validateTemplate(t Template) error {
	switch {
	case t.Type == "":
		return fmt.Errorf("template without type")
	case t.Prefix == "":
		return fmt.Errorf("template %s: prefix is required", t.Type)
	case len(t.Formats) == 0:
		return fmt.Errorf("template %s: at least one format is required", t.Type)
	case t.ValidityDays != nil && *t.ValidityDays <= 0:
		return fmt.Errorf("template %s: validity_days must be positive", t.Type)
	case t.MaxCopies < 0:
		return fmt.Errorf("template %s: max_copies must not be negative", t.Type)
	}

	return nil
}

func validateUpload(u *UploadConfig) error {
	switch {
	case u.Type == "":
		return fmt.Errorf("upload config without type")
	case !u.Scope.Valid():
		return fmt.Errorf("upload config %s: invalid scope %q", u.Type, u.Scope)
	case len(u.AllowedFormats) == 0:
		return fmt.Errorf("upload config %s: at least one format is required", u.Type)
	case !u.MaxFileSizeMB.IsPositive():
		return fmt.Errorf("upload config %s: max_file_size_mb must be positive", u.Type)
	}

	rules := make([]Rule, len(u.Rules))
	for i, rule := range u.Rules {
		if err := rule.compile(); err != nil {
			return fmt.Errorf("upload config %s: %w", u.Type, err)
		}

		rules[i] = rule
	}

	u.Rules = rules

	return nil
}

// Template looks up a template by type.
func (r *Registry) Template(typ string) (Template, bool) {
	i, ok := r.templateIdx[typ]
	if !ok {
		return Template{}, false
	}

	return r.templates[i], true
}

// UploadConfig looks up an upload configuration by type.
func (r *Registry) UploadConfig(typ string) (UploadConfig, bool) {
	i, ok := r.uploadIdx[typ]
	if !ok {
		return UploadConfig{}, false
	}

	return r.uploads[i], true
}

func (r *Registry) Templates() []Template {
	return slices.Clone(r.templates)
}

func (r *Registry) UploadConfigs() []UploadConfig {
	return slices.Clone(r.uploads)
}

// RequiredUploads returns the required upload configurations of a scope in catalog order.
func (r *Registry) RequiredUploads(scope Scope) []UploadConfig {
	var out []UploadConfig

	for _, u := range r.uploads {
		if u.Required && u.Scope == scope {
			out = append(out, u)
		}
	}

	return out
}
