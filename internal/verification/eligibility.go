// internal/verification/eligibility.go
package verification

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy carries the allowance amounts and merit requirements. The zero
// value is useless; build one with DefaultPolicy or from configuration.
type Policy struct {
	BaseAllowance  decimal.Decimal
	MeritIncentive decimal.Decimal
	MinUnits       int
	MinSWA         decimal.Decimal
}

// DefaultPolicy returns the official TCU amounts: 5,000 base for every
// student, 5,000 merit incentive at 15 units and an SWA of 88.75 or better.
func DefaultPolicy() Policy {
	return Policy{
		BaseAllowance:  decimal.RequireFromString("5000.00"),
		MeritIncentive: decimal.RequireFromString("5000.00"),
		MinUnits:       15,
		MinSWA:         decimal.RequireFromString("88.75"),
	}
}

// Check is one line of the merit eligibility checklist.
type Check struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Decision is the full allowance determination for one application.
type Decision struct {
	Eligible       bool            `json:"eligible"`
	BaseAllowance  decimal.Decimal `json:"base_allowance"`
	MeritIncentive decimal.Decimal `json:"merit_incentive"`
	TotalAllowance decimal.Decimal `json:"total_allowance"`
	Checks         []Check         `json:"checks"`
}

// Evaluate is a pure function over the four academic inputs. The merit
// incentive is granted only when every input is present and every
// requirement holds; the base allowance is unconditional and the total is
// always base + merit. Calling it twice with the same inputs yields the
// same decision.
func (p Policy) Evaluate(units *int, swa *decimal.Decimal, hasIncWithdrawn, hasFailedDropped *bool) Decision {
	checks := make([]Check, 0, 4)

	unitsOK := units != nil && *units >= p.MinUnits
	if units == nil {
		checks = append(checks, Check{Label: "units", Detail: fmt.Sprintf("Units: not extracted (need >=%d)", p.MinUnits)})
	} else if unitsOK {
		checks = append(checks, Check{Label: "units", Passed: true, Detail: fmt.Sprintf("Units: %d (>=%d)", *units, p.MinUnits)})
	} else {
		checks = append(checks, Check{Label: "units", Detail: fmt.Sprintf("Units: %d (need >=%d)", *units, p.MinUnits)})
	}

	swaOK := swa != nil && swa.GreaterThanOrEqual(p.MinSWA)
	if swa == nil {
		checks = append(checks, Check{Label: "swa", Detail: fmt.Sprintf("SWA: not extracted (need >=%s)", p.MinSWA)})
	} else if swaOK {
		checks = append(checks, Check{Label: "swa", Passed: true, Detail: fmt.Sprintf("SWA: %s (>=%s)", swa, p.MinSWA)})
	} else {
		checks = append(checks, Check{Label: "swa", Detail: fmt.Sprintf("SWA: %s (need >=%s)", swa, p.MinSWA)})
	}

	incOK := hasIncWithdrawn != nil && !*hasIncWithdrawn
	if incOK {
		checks = append(checks, Check{Label: "no_inc_withdrawn", Passed: true, Detail: "No INC/withdrawn/blank subjects"})
	} else {
		checks = append(checks, Check{Label: "no_inc_withdrawn", Detail: "Has INC/withdrawn/blank subjects"})
	}

	failOK := hasFailedDropped != nil && !*hasFailedDropped
	if failOK {
		checks = append(checks, Check{Label: "no_failed_dropped", Passed: true, Detail: "No failed or dropped subjects"})
	} else {
		checks = append(checks, Check{Label: "no_failed_dropped", Detail: "Has failed or dropped subjects"})
	}

	eligible := unitsOK && swaOK && incOK && failOK

	merit := decimal.Zero
	if eligible {
		merit = p.MeritIncentive
	}

	return Decision{
		Eligible:       eligible,
		BaseAllowance:  p.BaseAllowance,
		MeritIncentive: merit,
		TotalAllowance: p.BaseAllowance.Add(merit),
		Checks:         checks,
	}
}
