package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/core/apperror"
)

func TestValidateEdit_RejectedExceedsReceived(t *testing.T) {
	original := Quantities{TotalQuantity: 40, Received: 40, Rejected: 0, Short: 0}
	proposed := original
	proposed.Rejected = 50

	err := ValidateEdit(original, proposed, EditModeReduceOnly)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds received quantity 40")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestValidateEdit_NegativeValues(t *testing.T) {
	original := Quantities{TotalQuantity: 100, Received: 100}

	for _, proposed := range []Quantities{
		{TotalQuantity: 100, Received: 100, Rejected: -1},
		{TotalQuantity: 100, Received: 100, Short: -1},
	} {
		err := ValidateEdit(original, proposed, EditModeReduceOnly)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be negative")
	}
}

func TestValidateEdit_ReduceOnly(t *testing.T) {
	original := Quantities{TotalQuantity: 120, Received: 100, Rejected: 10, Short: 20}

	tests := []struct {
		name     string
		rejected int64
		short    int64
		wantErr  string
		wantCode string
	}{
		{
			name:     "reduce rejected",
			rejected: 5, short: 20,
		},
		{
			name:     "reduce short",
			rejected: 10, short: 15,
		},
		{
			name:     "reduce both",
			rejected: 0, short: 0,
		},
		{
			name:     "increase rejected",
			rejected: 12, short: 20,
			wantErr: "rejected quantity can only be reduced (current 10)",
		},
		{
			name:     "increase short",
			rejected: 10, short: 25,
			wantErr: "short quantity can only be reduced (current 20)",
		},
		{
			name:     "no-op edit",
			rejected: 10, short: 20,
			wantErr:  "no changes detected",
			wantCode: apperror.CodeNoChanges,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposed := original
			proposed.Rejected = tt.rejected
			proposed.Short = tt.short

			err := ValidateEdit(original, proposed, EditModeReduceOnly)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantCode != "" {
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, appErr.Code)
			}
		})
	}
}

func TestValidateEdit_MoveModeAllowsIncrease(t *testing.T) {
	original := Quantities{TotalQuantity: 120, Received: 100, Rejected: 10, Short: 20}
	proposed := original
	proposed.Rejected = 30

	assert.NoError(t, ValidateEdit(original, proposed, EditModeMove))
}

func TestValidateMoveToRejected(t *testing.T) {
	current := Quantities{TotalQuantity: 120, Received: 100, Rejected: 10, Short: 20}

	assert.NoError(t, ValidateMoveToRejected(current, 5))
	assert.NoError(t, ValidateMoveToRejected(current, 90))

	err := ValidateMoveToRejected(current, 91)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds received quantity 100")

	err = ValidateMoveToRejected(current, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")

	err = ValidateMoveToRejected(current, -3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}
