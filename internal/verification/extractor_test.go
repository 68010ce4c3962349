package verification

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// scriptedSource replays a fixed sequence of draws and panics if the code
// under test draws more than the script provides.
type scriptedSource struct {
	vals []float64
	next int
}

func (s *scriptedSource) Float64() float64 {
	if s.next >= len(s.vals) {
		panic(fmt.Sprintf("scripted source exhausted after %d draws", s.next))
	}
	v := s.vals[s.next]
	s.next++
	return v
}

func TestExtractHighQualityMeritEligible(t *testing.T) {
	// Draws: units (first choice 24), rebias (<0.75 keeps 24),
	// SWA (first choice 95.00), INC flag (0.5 is above the 2% band rate).
	src := &scriptedSource{vals: []float64{0.0, 0.5, 0.0, 0.5}}
	e := NewExtractor(src, DefaultPolicy())

	doc := NewBytesDocument("TCU_Grades_2025_Midterm.pdf", nil)
	doc.Size = 600_000

	result := e.Extract(doc, decimal.NewFromInt(100))

	assert.True(t, result.HighQuality)
	assert.Equal(t, 24, result.UnitsEnrolled)
	assert.Equal(t, "95.00", result.SWAGrade.StringFixed(2))
	assert.False(t, result.HasIncWithdrawn)
	assert.False(t, result.HasFailedDropped)
	assert.True(t, result.MeritEligible)
	assert.Equal(t, "5000.00", result.ExpectedBase.StringFixed(2))
	assert.Equal(t, "5000.00", result.ExpectedMerit.StringFixed(2))
	assert.Equal(t, "10000.00", result.ExpectedTotal.StringFixed(2))
	assert.Equal(t, "98", result.Confidence.StringFixed(0))
	assert.Contains(t, result.AnalysisNotes, "Merit eligible: Yes")
}

func TestExtractStandardQualityBelowMerit(t *testing.T) {
	// All draws at 0.99: last units choice (15), last SWA choice (82.00),
	// and both flag draws miss their thresholds.
	src := &scriptedSource{vals: []float64{0.99, 0.99, 0.99, 0.99}}
	e := NewExtractor(src, DefaultPolicy())

	doc := NewBytesDocument("upload.jpg", nil)
	doc.Size = 100_000

	result := e.Extract(doc, decimal.NewFromInt(70))

	assert.False(t, result.HighQuality)
	assert.Equal(t, 15, result.UnitsEnrolled)
	assert.Equal(t, "82.00", result.SWAGrade.StringFixed(2))
	assert.False(t, result.HasIncWithdrawn)
	assert.False(t, result.HasFailedDropped)
	assert.False(t, result.MeritEligible)
	assert.Equal(t, "5000.00", result.ExpectedBase.StringFixed(2))
	assert.Equal(t, "0.00", result.ExpectedMerit.StringFixed(2))
	assert.Equal(t, "5000.00", result.ExpectedTotal.StringFixed(2))
	assert.Contains(t, result.AnalysisNotes, "Merit eligible: No")
}

func TestExtractRebiasSecondBranch(t *testing.T) {
	// Large scan without "grades" in the name still triggers the re-bias:
	// units first lands on 27, the first re-bias draw misses 0.75, the
	// second hits 0.20 and pins 21 units.
	src := &scriptedSource{vals: []float64{0.99, 0.80, 0.10, 0.5, 0.5, 0.5}}
	e := NewExtractor(src, DefaultPolicy())

	doc := NewBytesDocument("scan.pdf", nil)
	doc.Size = 600_000

	result := e.Extract(doc, decimal.NewFromInt(90))

	assert.Equal(t, 21, result.UnitsEnrolled)
	assert.Equal(t, "89.50", result.SWAGrade.StringFixed(2))
	assert.True(t, result.MeritEligible)
	assert.Equal(t, "10000.00", result.ExpectedTotal.StringFixed(2))
}

func TestExtractFlagsLowGradeBand(t *testing.T) {
	// Standard tier, SWA 82.00 sits below the 85 band: INC at 1.5x the
	// 0.25 issue rate and failed/dropped at the full rate.
	src := &scriptedSource{vals: []float64{0.99, 0.99, 0.30, 0.10}}
	e := NewExtractor(src, DefaultPolicy())

	doc := NewBytesDocument("upload.jpg", nil)
	doc.Size = 100_000

	result := e.Extract(doc, decimal.NewFromInt(70))

	assert.Equal(t, "82.00", result.SWAGrade.StringFixed(2))
	assert.True(t, result.HasIncWithdrawn)
	assert.True(t, result.HasFailedDropped)
	assert.False(t, result.MeritEligible)
}

func TestExtractQualityTier(t *testing.T) {
	cases := []struct {
		name     string
		size     int64
		valConf  int64
		expected bool
	}{
		{"big_photo.jpg", 400_000, 70, true},
		{"report.pdf", 100_000, 70, true},
		{"report_card.png", 100_000, 70, true},
		{"sharp_scan.jpg", 100_000, 85, true},
		{"upload.jpg", 100_000, 70, false},
	}

	for _, tc := range cases {
		src := &scriptedSource{vals: []float64{0, 0, 0, 0, 0, 0}}
		e := NewExtractor(src, DefaultPolicy())
		doc := NewBytesDocument(tc.name, nil)
		doc.Size = tc.size

		result := e.Extract(doc, decimal.NewFromInt(tc.valConf))
		assert.Equal(t, tc.expected, result.HighQuality, tc.name)
	}
}
