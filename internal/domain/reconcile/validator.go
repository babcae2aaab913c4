package reconcile

import (
	"fmt"

	"stockdesk/internal/core/apperror"
)

// EditMode selects which rule set applies to a rejected/short edit.
type EditMode string

const (
	// EditModeMove applies when newly-discovered rejects are moved from
	// received into rejected.
	EditModeMove EditMode = "move"

	// EditModeReduceOnly applies to the correction workflow: previously
	// recorded rejected/short values may only be reduced.
	EditModeReduceOnly EditMode = "reduce_only"
)

// ValidateEdit checks a proposed rejected/short edit against the last known
// quantities. Rules apply in order; the first violation is returned. A nil
// result means the caller may issue the mutation.
//
// Validation is purely local: no network call is attempted on failure.
func ValidateEdit(original, proposed Quantities, mode EditMode) error {
	if proposed.Rejected < 0 || proposed.Short < 0 {
		return apperror.NewValidation("rejected and short quantities must not be negative")
	}

	if proposed.Rejected > original.Received {
		return apperror.NewValidation(
			fmt.Sprintf("rejected quantity %d exceeds received quantity %d",
				proposed.Rejected, original.Received)).
			WithDetail("field", "rejected")
	}

	available := ComputeAvailable(original.Received, proposed.Rejected, original.TotalQuantity, proposed.Short)
	if available < 0 {
		return apperror.NewValidation("available stock would go negative").
			WithDetail("available", available)
	}

	if mode == EditModeReduceOnly {
		if proposed.Rejected > original.Rejected {
			return apperror.NewValidation(
				fmt.Sprintf("rejected quantity can only be reduced (current %d)", original.Rejected)).
				WithDetail("field", "rejected")
		}
		if proposed.Short > original.Short {
			return apperror.NewValidation(
				fmt.Sprintf("short quantity can only be reduced (current %d)", original.Short)).
				WithDetail("field", "short")
		}
		if proposed.Rejected == original.Rejected && proposed.Short == original.Short {
			return apperror.NewBusinessRule(apperror.CodeNoChanges, "no changes detected")
		}
	}

	return nil
}

// ValidateMoveToRejected checks moving quantity units from received into
// rejected after inspection. The resulting rejected count must stay within
// received and availability must not go negative.
func ValidateMoveToRejected(current Quantities, quantity int64) error {
	if quantity <= 0 {
		return apperror.NewValidation("quantity to reject must be positive")
	}

	proposed := current
	proposed.Rejected = current.Rejected + quantity
	return ValidateEdit(current, proposed, EditModeMove)
}
