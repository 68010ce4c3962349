package verification

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int  { return &v }
func boolPtr(v bool) *bool { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestEvaluateMeritRequiresEveryCheck(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		units    *int
		swa      *decimal.Decimal
		inc      *bool
		failed   *bool
		eligible bool
	}{
		{"all requirements met", intPtr(18), decPtr("90.00"), boolPtr(false), boolPtr(false), true},
		{"exactly at thresholds", intPtr(15), decPtr("88.75"), boolPtr(false), boolPtr(false), true},
		{"units below minimum", intPtr(12), decPtr("90.00"), boolPtr(false), boolPtr(false), false},
		{"swa below minimum", intPtr(18), decPtr("88.74"), boolPtr(false), boolPtr(false), false},
		{"has inc or withdrawn", intPtr(18), decPtr("90.00"), boolPtr(true), boolPtr(false), false},
		{"has failed or dropped", intPtr(18), decPtr("90.00"), boolPtr(false), boolPtr(true), false},
		{"units missing", nil, decPtr("90.00"), boolPtr(false), boolPtr(false), false},
		{"swa missing", intPtr(18), nil, boolPtr(false), boolPtr(false), false},
		{"flags missing", intPtr(18), decPtr("90.00"), nil, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := policy.Evaluate(tc.units, tc.swa, tc.inc, tc.failed)

			assert.Equal(t, tc.eligible, decision.Eligible)
			assert.Equal(t, "5000.00", decision.BaseAllowance.StringFixed(2))
			if tc.eligible {
				assert.Equal(t, "5000.00", decision.MeritIncentive.StringFixed(2))
				assert.Equal(t, "10000.00", decision.TotalAllowance.StringFixed(2))
			} else {
				assert.Equal(t, "0.00", decision.MeritIncentive.StringFixed(2))
				assert.Equal(t, "5000.00", decision.TotalAllowance.StringFixed(2))
			}
			assert.True(t, decision.TotalAllowance.Equal(decision.BaseAllowance.Add(decision.MeritIncentive)))
			assert.Len(t, decision.Checks, 4)
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	policy := DefaultPolicy()
	units, swa := intPtr(24), decPtr("95.00")
	inc, failed := boolPtr(false), boolPtr(false)

	first := policy.Evaluate(units, swa, inc, failed)
	second := policy.Evaluate(units, swa, inc, failed)

	assert.Equal(t, first, second)
}

func TestEvaluateChecklistDetails(t *testing.T) {
	decision := DefaultPolicy().Evaluate(intPtr(12), decPtr("92.00"), boolPtr(false), boolPtr(true))

	byLabel := map[string]Check{}
	for _, c := range decision.Checks {
		byLabel[c.Label] = c
	}

	assert.False(t, byLabel["units"].Passed)
	assert.Contains(t, byLabel["units"].Detail, "need >=15")
	assert.True(t, byLabel["swa"].Passed)
	assert.True(t, byLabel["no_inc_withdrawn"].Passed)
	assert.False(t, byLabel["no_failed_dropped"].Passed)
}
