package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

// RequirementsCheckResult compares an entity's active uploads with the required
// upload configurations of its scope. Lists hold upload config types.
type RequirementsCheckResult struct {
	Scope                catalog.Scope `json:"scope"`
	EntityID             string        `json:"entityId"`
	Required             []string      `json:"required"`
	Satisfied            []string      `json:"satisfied"`
	Missing              []string      `json:"missing"`
	Expired              []string      `json:"expired"`
	Pending              []string      `json:"pending"`
	CompletionPercentage int           `json:"completionPercentage"`
	IsComplete           bool          `json:"isComplete"`
	CheckedAt            time.Time     `json:"checkedAt"`
}

// CheckRequirements reports which required uploads an entity has. An upload satisfies its
// configuration while it is active, not expired and not rejected; pending uploads count
// as satisfied and are also listed under Pending. Expired and rejected uploads are missing.
func (s *Service) CheckRequirements(ctx context.Context, scope catalog.Scope, entityID string) (*RequirementsCheckResult, error) {
	if !scope.Valid() {
		return nil, &ValidationError{Field: "scope", Rule: "enum", Message: fmt.Sprintf("unknown scope %q", scope)}
	}

	entityID = strings.TrimSpace(entityID)

	if scope == catalog.ScopeAssociation {
		entityID = ""
	} else if entityID == "" {
		return nil, &ValidationError{Field: "entityId", Rule: string(catalog.RuleRequired), Message: "entityId is required"}
	}

	uploads, err := s.ListUploaded(ctx, UploadFilter{
		EntityType: EntityTypeForScope(scope),
		EntityID:   entityID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	active := make(map[string]*UploadedDocument, len(uploads))
	for _, u := range uploads {
		if u.IsActive && u.LinkedEntityID == entityID {
			active[u.DocumentType] = u
		}
	}

	now := s.now()
	res := &RequirementsCheckResult{
		Scope:     scope,
		EntityID:  entityID,
		Required:  []string{},
		Satisfied: []string{},
		Missing:   []string{},
		Expired:   []string{},
		Pending:   []string{},
		CheckedAt: now,
	}

	for _, cfg := range s.catalog.RequiredUploads(scope) {
		res.Required = append(res.Required, cfg.Type)

		u, ok := active[cfg.Type]

		switch {
		case !ok:
			res.Missing = append(res.Missing, cfg.Type)
		case UploadExpired(u, now):
			res.Expired = append(res.Expired, cfg.Type)
			res.Missing = append(res.Missing, cfg.Type)
		case u.VerificationStatus == VerificationRejected:
			res.Missing = append(res.Missing, cfg.Type)
		default:
			res.Satisfied = append(res.Satisfied, cfg.Type)

			if u.VerificationStatus == VerificationPending {
				res.Pending = append(res.Pending, cfg.Type)
			}
		}
	}

	res.CompletionPercentage = CompletionPercentage(len(res.Satisfied), len(res.Required))
	res.IsComplete = len(res.Missing) == 0

	return res, nil
}

// CompletionPercentage is round(100*satisfied/required) with halves rounded up.
// No requirements means complete.
func CompletionPercentage(satisfied, required int) int {
	if required <= 0 {
		return 100
	}

	pct := decimal.NewFromInt(int64(100 * satisfied)).
		Div(decimal.NewFromInt(int64(required))).
		Round(0)

	return int(pct.IntPart())
}
