// Package relation implements the relationship pair engine: creation-request
// validation and the bidirectional coordinator that keeps the A→B and B→A
// directions of every relationship consistent.
package relation

import (
	"fmt"
	"strings"

	"github.com/kinshiphq/kinship/internal/catalog"
	"github.com/kinshiphq/kinship/pkg/types"
)

// ValidationError is the only error the pair engine surfaces to callers.
// It carries the full list of rule violations; nothing was written.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// ValidationResult is the outcome of ValidateCreate.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateCreate checks a pair-creation request against the catalog. All
// rules are evaluated and all violations collected; the function has no side
// effects. A strength of zero means "not provided" and is not validated.
func ValidateCreate(cat *catalog.Catalog, contactAID, contactBID, typeKey string, strength int) ValidationResult {
	var errs []string

	if contactAID == contactBID {
		errs = append(errs, "a contact cannot have a relationship with themselves")
	}
	if !cat.Has(typeKey) {
		errs = append(errs, fmt.Sprintf("unknown relationship type %q", typeKey))
	}
	if strength != 0 && !types.IsValidStrength(strength) {
		errs = append(errs, fmt.Sprintf("strength %d is outside the valid range [%d,%d]",
			strength, types.StrengthMin, types.StrengthMax))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
