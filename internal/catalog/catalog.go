package catalog

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Category groups documents for listing and filtering.
type Category string

const (
	CategoryMembership Category = "membership"
	CategoryFinancial  Category = "financial"
	CategoryLand       Category = "land"
	CategoryIdentity   Category = "identity"
	CategoryGovernance Category = "governance"
)

// Scope is the granularity a document applies to.
type Scope string

const (
	ScopeAssociation Scope = "association"
	ScopeMember      Scope = "member"
	ScopeParcel      Scope = "parcel"
	ScopeTransaction Scope = "transaction"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeAssociation, ScopeMember, ScopeParcel, ScopeTransaction:
		return true
	}

	return false
}

// Format is a file format identified by its lowercase extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatTXT  Format = "txt"
)

// Template describes a certificate or report the system can generate.
type Template struct {
	Type              string   `yaml:"type"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	Category          Category `yaml:"category"`
	Prefix            string   `yaml:"prefix"`
	RequiredFields    []string `yaml:"required_fields"`
	OptionalFields    []string `yaml:"optional_fields"`
	Formats           []Format `yaml:"formats"`
	RequiresApproval  bool     `yaml:"requires_approval"`
	ValidityDays      *int     `yaml:"validity_days"`
	AllowRegeneration bool     `yaml:"allow_regeneration"`
	TriggerEvents     []string `yaml:"trigger_events"`
	MaxCopies         int      `yaml:"max_copies"`
}

// SupportsFormat reports whether the template can be produced in f.
func (t Template) SupportsFormat(f Format) bool {
	for _, tf := range t.Formats {
		if tf == f {
			return true
		}
	}

	return false
}

// UploadConfig describes a document type users may upload.
type UploadConfig struct {
	Type                 string          `yaml:"type"`
	Name                 string          `yaml:"name"`
	Description          string          `yaml:"description"`
	Category             Category        `yaml:"category"`
	Scope                Scope           `yaml:"scope"`
	AllowedFormats       []Format        `yaml:"allowed_formats"`
	MaxFileSizeMB        decimal.Decimal `yaml:"max_file_size_mb"`
	Required             bool            `yaml:"required"`
	RequiresVerification bool            `yaml:"requires_verification"`
	ExpiryField          string          `yaml:"expiry_field"`
	Rules                []Rule          `yaml:"rules"`
	Tags                 []string        `yaml:"tags"`
}

var bytesPerMB = decimal.NewFromInt(1 << 20)

// MaxFileSizeBytes converts the configured megabyte limit to bytes, rounding down.
func (c UploadConfig) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB.Mul(bytesPerMB).Floor().IntPart()
}

// AllowsFormat reports whether f is one of the accepted upload formats.
func (c UploadConfig) AllowsFormat(f Format) bool {
	for _, af := range c.AllowedFormats {
		if af == f {
			return true
		}
	}

	return false
}

// RuleKind selects the check a Rule performs.
type RuleKind string

const (
	RuleRequired   RuleKind = "required"
	RuleDate       RuleKind = "date"
	RulePastDate   RuleKind = "past_date"
	RuleFutureDate RuleKind = "future_date"
	RulePattern    RuleKind = "pattern"
	RuleMaxLength  RuleKind = "max_length"
)

// Rule is a single metadata validation rule of an upload configuration.
type Rule struct {
	Field   string   `yaml:"field"`
	Kind    RuleKind `yaml:"kind"`
	Param   string   `yaml:"param"`
	Message string   `yaml:"message"`

	pattern   *regexp.Regexp
	maxLength int
}
