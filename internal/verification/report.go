// internal/verification/report.go
package verification

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	highConfidenceThreshold = decimal.NewFromInt(90)
	goodConfidenceThreshold = decimal.NewFromInt(75)
)

// BuildReport renders the human-readable verification notes stored on the
// application and shown to reviewers. Plain ASCII only; the admin panel
// renders it inside a <pre> block.
func BuildReport(doc *Document, extraction ExtractionResult, decision Decision) string {
	var b strings.Builder

	b.WriteString("GRADE DOCUMENT VERIFICATION REPORT\n")
	b.WriteString("==================================\n\n")

	b.WriteString("Document Information:\n")
	fmt.Fprintf(&b, "- File: %s\n", doc.Name)
	fmt.Fprintf(&b, "- Size: %d bytes\n", doc.Size)
	fmt.Fprintf(&b, "- Type: %s\n", doc.Extension())
	fmt.Fprintf(&b, "- Quality: %s\n\n", qualityLabel(extraction.HighQuality))

	b.WriteString("Extracted Academic Data:\n")
	fmt.Fprintf(&b, "- Units Enrolled: %d\n", extraction.UnitsEnrolled)
	fmt.Fprintf(&b, "- SWA Grade: %s\n", extraction.SWAGrade.StringFixed(2))
	fmt.Fprintf(&b, "- Has INC/Withdrawn: %s\n", yesNo(extraction.HasIncWithdrawn))
	fmt.Fprintf(&b, "- Has Failed/Dropped: %s\n\n", yesNo(extraction.HasFailedDropped))

	b.WriteString("Eligibility Assessment:\n")
	for _, check := range decision.Checks {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", check.Label, passFail(check.Passed), check.Detail)
	}
	b.WriteString("\n")

	b.WriteString("Financial Assessment:\n")
	fmt.Fprintf(&b, "- Base Allowance: PHP %s\n", decision.BaseAllowance.StringFixed(2))
	fmt.Fprintf(&b, "- Merit Incentive: PHP %s\n", decision.MeritIncentive.StringFixed(2))
	fmt.Fprintf(&b, "- Total Allowance: PHP %s\n\n", decision.TotalAllowance.StringFixed(2))

	fmt.Fprintf(&b, "Analysis Confidence: %s%%\n", extraction.Confidence.StringFixed(0))
	fmt.Fprintf(&b, "Recommendation: %s\n", recommendation(extraction.Confidence))

	return b.String()
}

func recommendation(confidence decimal.Decimal) string {
	switch {
	case confidence.GreaterThanOrEqual(highConfidenceThreshold):
		return "HIGH CONFIDENCE - Recommend approval pending registrar confirmation"
	case confidence.GreaterThanOrEqual(goodConfidenceThreshold):
		return "GOOD CONFIDENCE - Standard review recommended"
	default:
		return "REQUIRES MANUAL REVIEW - Low extraction confidence"
	}
}

func qualityLabel(high bool) string {
	if high {
		return "High"
	}
	return "Standard"
}

func passFail(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
