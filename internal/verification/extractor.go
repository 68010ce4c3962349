// internal/verification/extractor.go
package verification

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Quality-tier boundaries.
const (
	highQualitySizeBytes     = 300_000
	largeDocumentSizeBytes   = 500_000
	highQualityValConfidence = 80.0

	extractionBaseConfidence = 60
	extractionMaxConfidence  = 98

	highTierIssueRate     = 0.05
	standardTierIssueRate = 0.25
)

// Unit-load distributions reflect typical TCU course loads: most students
// carry 8 subjects x 3 units.
var highTierUnits = []intWeight{
	{24, 0.60},
	{21, 0.20},
	{18, 0.15},
	{27, 0.05},
}

var standardTierUnits = []intWeight{
	{24, 0.45},
	{21, 0.25},
	{18, 0.20},
	{15, 0.10},
}

var highTierSWA = []decimalWeight{
	{decimal.RequireFromString("95.00"), 0.08},
	{decimal.RequireFromString("92.50"), 0.12},
	{decimal.RequireFromString("90.00"), 0.25},
	{decimal.RequireFromString("89.50"), 0.20},
	{decimal.RequireFromString("88.75"), 0.15},
	{decimal.RequireFromString("87.50"), 0.10},
	{decimal.RequireFromString("85.00"), 0.10},
}

var standardTierSWA = []decimalWeight{
	{decimal.RequireFromString("90.00"), 0.15},
	{decimal.RequireFromString("89.00"), 0.20},
	{decimal.RequireFromString("88.75"), 0.25},
	{decimal.RequireFromString("87.00"), 0.20},
	{decimal.RequireFromString("85.00"), 0.15},
	{decimal.RequireFromString("82.00"), 0.05},
}

// Grade bands used to condition the disciplinary-flag probabilities.
var (
	excellentSWA = decimal.RequireFromString("95.00")
	meritBandSWA = decimal.RequireFromString("88.75")
	goodBandSWA  = decimal.RequireFromString("85.00")
)

// ExtractionResult holds the simulated academic fields for one document,
// plus the expected allowance amounts for cross-check logging. The caller
// persists; extraction itself has no side effects.
type ExtractionResult struct {
	UnitsEnrolled    int             `json:"units_enrolled"`
	SWAGrade         decimal.Decimal `json:"swa_grade"`
	HasIncWithdrawn  bool            `json:"has_inc_withdrawn"`
	HasFailedDropped bool            `json:"has_failed_dropped"`

	HighQuality   bool            `json:"high_quality"`
	Confidence    decimal.Decimal `json:"confidence"`
	AnalysisNotes string          `json:"analysis_notes"`

	MeritEligible bool            `json:"merit_eligible"`
	ExpectedBase  decimal.Decimal `json:"expected_base_allowance"`
	ExpectedMerit decimal.Decimal `json:"expected_merit_incentive"`
	ExpectedTotal decimal.Decimal `json:"expected_total_allowance"`
}

// Extractor simulates reading academic fields out of a validated grade
// document. There is no OCR behind it: fields are drawn from weighted
// distributions conditioned on a document quality tier, which is the
// contract this service has always had.
type Extractor struct {
	random RandomSource
	policy Policy
}

func NewExtractor(random RandomSource, policy Policy) *Extractor {
	return &Extractor{random: random, policy: policy}
}

func (e *Extractor) Extract(doc *Document, validationConfidence decimal.Decimal) ExtractionResult {
	ext := doc.Extension()
	confFloat, _ := validationConfidence.Float64()

	highQuality := doc.Size > highQualitySizeBytes ||
		ext == "pdf" || ext == "png" ||
		confFloat >= highQualityValConfidence

	unitChoices, swaChoices := standardTierUnits, standardTierSWA
	issueRate := standardTierIssueRate
	if highQuality {
		unitChoices, swaChoices = highTierUnits, highTierSWA
		issueRate = highTierIssueRate
	}

	units := pickInt(e.random, unitChoices)

	// Grade documents and large scans usually show the standard 8-course
	// load, so re-bias toward 24 units for them.
	if strings.Contains(strings.ToLower(doc.Name), "grades") || doc.Size > largeDocumentSizeBytes {
		if e.random.Float64() < 0.75 {
			units = 24
		} else if e.random.Float64() < 0.20 {
			units = 21
		}
	}

	swa := pickDecimal(e.random, swaChoices)

	// Disciplinary flags are conditioned on the sampled grade band, not
	// drawn independently: excellent students almost never carry issues.
	var hasIncWithdrawn, hasFailedDropped bool
	switch {
	case swa.GreaterThanOrEqual(excellentSWA):
		hasIncWithdrawn = e.random.Float64() < 0.02
		hasFailedDropped = false
	case swa.GreaterThanOrEqual(meritBandSWA):
		hasIncWithdrawn = e.random.Float64() < 0.05
		hasFailedDropped = e.random.Float64() < 0.03
	case swa.GreaterThanOrEqual(goodBandSWA):
		hasIncWithdrawn = e.random.Float64() < issueRate
		hasFailedDropped = e.random.Float64() < issueRate*0.5
	default:
		hasIncWithdrawn = e.random.Float64() < issueRate*1.5
		hasFailedDropped = e.random.Float64() < issueRate
	}

	decision := e.policy.Evaluate(&units, &swa, &hasIncWithdrawn, &hasFailedDropped)

	confidence := e.scoreConfidence(highQuality, ext, units, swa)

	return ExtractionResult{
		UnitsEnrolled:    units,
		SWAGrade:         swa,
		HasIncWithdrawn:  hasIncWithdrawn,
		HasFailedDropped: hasFailedDropped,
		HighQuality:      highQuality,
		Confidence:       decimal.NewFromInt(int64(confidence)),
		AnalysisNotes: fmt.Sprintf("Document analysis completed with %d%% confidence. Merit eligible: %s",
			confidence, yesNo(decision.Eligible)),
		MeritEligible: decision.Eligible,
		ExpectedBase:  decision.BaseAllowance,
		ExpectedMerit: decision.MeritIncentive,
		ExpectedTotal: decision.TotalAllowance,
	}
}

// scoreConfidence is a display number computed after the draw; it is not
// the sampling probability.
func (e *Extractor) scoreConfidence(highQuality bool, ext string, units int, swa decimal.Decimal) int {
	confidence := extractionBaseConfidence

	if highQuality {
		confidence += 25
	} else {
		confidence += 15
	}

	switch ext {
	case "pdf":
		confidence += 20
	case "png", "jpg", "jpeg":
		confidence += 15
	default:
		confidence += 10
	}

	if swa.GreaterThanOrEqual(e.policy.MinSWA) {
		confidence += 15
	}
	if units >= e.policy.MinUnits {
		confidence += 10
	}

	return min(confidence, extractionMaxConfidence)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
