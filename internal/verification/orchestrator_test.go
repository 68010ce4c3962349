package verification

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcuscholar/scholarship-backend/internal/models"
)

type fakeStore struct {
	saves   []models.ScholarshipApplication
	logs    []models.VerificationLog
	saveErr error
	logErr  error
}

func (f *fakeStore) SaveVerification(_ context.Context, app *models.ScholarshipApplication) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, *app)
	return nil
}

func (f *fakeStore) AppendLog(_ context.Context, entry *models.VerificationLog) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestOrchestrator(store ApplicationStore, src RandomSource) *Orchestrator {
	policy := DefaultPolicy()
	return NewOrchestrator(
		NewDocumentValidator(time.Second),
		NewExtractor(src, policy),
		policy,
		store,
		quietLogger(),
	)
}

func TestProcessWithoutDocument(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, NewRandomSource(1))
	app := &models.ScholarshipApplication{}

	outcome := o.Process(context.Background(), app, nil)

	assert.Equal(t, models.VerificationStatusUnderReview, outcome.Status)
	assert.True(t, outcome.Confidence.IsZero())
	assert.Contains(t, outcome.Notes, "No document submitted")
	assert.False(t, outcome.EligibleForMerit)

	require.Len(t, store.saves, 1)
	assert.Nil(t, store.saves[0].UnitsEnrolled)
	assert.Nil(t, store.saves[0].SWAGrade)

	// Even the no-document attempt is logged.
	require.Len(t, store.logs, 1)
	assert.Equal(t, "document_validation", store.logs[0].VerificationType)
	assert.Equal(t, false, store.logs[0].InputData["document_provided"])
	assert.True(t, store.logs[0].ConfidenceScore.IsZero())
}

func TestProcessRejectsInvalidDocument(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, NewRandomSource(1))
	app := &models.ScholarshipApplication{}
	doc := NewBytesDocument("random.png", make([]byte, 5_000))

	outcome := o.Process(context.Background(), app, doc)

	assert.Equal(t, models.VerificationStatusRejected, outcome.Status)
	assert.True(t, outcome.Confidence.IsZero())
	assert.Contains(t, outcome.Notes, "Document rejected")
	assert.False(t, outcome.EligibleForMerit)

	require.Len(t, store.saves, 1)
	assert.Nil(t, store.saves[0].UnitsEnrolled)
	assert.Nil(t, store.saves[0].HasIncWithdrawn)

	require.Len(t, store.logs, 1)
	assert.Equal(t, "document_validation", store.logs[0].VerificationType)
	assert.Equal(t, false, store.logs[0].Result["valid"])
}

func TestProcessRejectionPersistsZeroConfidence(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store, NewRandomSource(1))
	app := &models.ScholarshipApplication{}
	// A well-formed PDF whose name lacks any grade keyword: the validator
	// rejects it with a partial score, but the application record must
	// still carry zero confidence.
	doc := NewBytesDocument("document.pdf", pdfBytes(600_000))

	outcome := o.Process(context.Background(), app, doc)

	assert.Equal(t, models.VerificationStatusRejected, outcome.Status)
	assert.True(t, outcome.Confidence.IsZero())

	require.Len(t, store.saves, 1)
	assert.True(t, store.saves[0].ConfidenceScore.IsZero())

	// The raw validator score stays in the audit log.
	require.Len(t, store.logs, 1)
	assert.Equal(t, "24.55", store.logs[0].ConfidenceScore.StringFixed(2))
}

func TestProcessAcceptedDocument(t *testing.T) {
	store := &fakeStore{}
	// First units choice, re-bias keeps 24, first SWA choice 95.00, INC
	// draw misses the band rate.
	src := &scriptedSource{vals: []float64{0.0, 0.5, 0.0, 0.5}}
	o := newTestOrchestrator(store, src)
	app := &models.ScholarshipApplication{}
	doc := NewBytesDocument("TCU_Grades_2025_Midterm.pdf", pdfBytes(600_000))

	outcome := o.Process(context.Background(), app, doc)

	assert.Equal(t, models.VerificationStatusUnderReview, outcome.Status)
	assert.Equal(t, "98", outcome.Confidence.StringFixed(0))
	assert.True(t, outcome.EligibleForMerit)
	assert.Contains(t, outcome.Notes, "GRADE DOCUMENT VERIFICATION REPORT")

	require.Len(t, store.saves, 1)
	saved := store.saves[0]
	require.NotNil(t, saved.UnitsEnrolled)
	assert.Equal(t, 24, *saved.UnitsEnrolled)
	require.NotNil(t, saved.SWAGrade)
	assert.Equal(t, "95.00", saved.SWAGrade.StringFixed(2))
	require.NotNil(t, saved.HasIncWithdrawn)
	assert.False(t, *saved.HasIncWithdrawn)
	require.NotNil(t, saved.HasFailedDropped)
	assert.False(t, *saved.HasFailedDropped)
	assert.Equal(t, "5000.00", saved.BaseAllowance.StringFixed(2))
	assert.Equal(t, "5000.00", saved.MeritIncentive.StringFixed(2))
	assert.Equal(t, "10000.00", saved.TotalAllowance.StringFixed(2))
	assert.True(t, saved.TotalAllowance.Equal(saved.BaseAllowance.Add(saved.MeritIncentive)))

	require.Len(t, store.logs, 2)
	assert.Equal(t, "document_validation", store.logs[0].VerificationType)
	assert.Equal(t, "grade_extraction", store.logs[1].VerificationType)
}

func TestProcessDegradesOnSaveFailure(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("connection reset")}
	src := &scriptedSource{vals: []float64{0.0, 0.5, 0.0, 0.5}}
	o := newTestOrchestrator(store, src)
	app := &models.ScholarshipApplication{}
	doc := NewBytesDocument("TCU_Grades_2025_Midterm.pdf", pdfBytes(600_000))

	outcome := o.Process(context.Background(), app, doc)

	assert.Equal(t, models.VerificationStatusUnderReview, outcome.Status)
	assert.True(t, outcome.Confidence.IsZero())
	assert.Contains(t, outcome.Notes, "manual review")
	assert.False(t, outcome.EligibleForMerit)
}

func TestProcessSwallowsLogFailure(t *testing.T) {
	store := &fakeStore{logErr: errors.New("log table locked")}
	src := &scriptedSource{vals: []float64{0.0, 0.5, 0.0, 0.5}}
	o := newTestOrchestrator(store, src)
	app := &models.ScholarshipApplication{}
	doc := NewBytesDocument("TCU_Grades_2025_Midterm.pdf", pdfBytes(600_000))

	outcome := o.Process(context.Background(), app, doc)

	assert.Equal(t, models.VerificationStatusUnderReview, outcome.Status)
	assert.True(t, outcome.EligibleForMerit)
	require.Len(t, store.saves, 1)
	assert.Empty(t, store.logs)
}

func TestProcessRecoversFromPanic(t *testing.T) {
	store := &fakeStore{}
	// Empty script: the extractor's first draw panics.
	o := newTestOrchestrator(store, &scriptedSource{})
	app := &models.ScholarshipApplication{}
	doc := NewBytesDocument("TCU_Grades_2025_Midterm.pdf", pdfBytes(600_000))

	outcome := o.Process(context.Background(), app, doc)

	assert.Equal(t, models.VerificationStatusUnderReview, outcome.Status)
	assert.True(t, outcome.Confidence.IsZero())
	assert.Contains(t, outcome.Notes, "Verification error")

	// The degraded outcome is still persisted, without academic fields.
	require.NotEmpty(t, store.saves)
	last := store.saves[len(store.saves)-1]
	assert.Nil(t, last.UnitsEnrolled)
	assert.Equal(t, models.VerificationStatusUnderReview, last.VerificationStatus)
}

func TestBuildReportRecommendation(t *testing.T) {
	doc := NewBytesDocument("TCU_Grades_2025_Midterm.pdf", nil)
	doc.Size = 600_000

	policy := DefaultPolicy()
	units, swa := 24, decimal.RequireFromString("95.00")
	inc, failed := false, false
	decision := policy.Evaluate(&units, &swa, &inc, &failed)

	extraction := ExtractionResult{
		UnitsEnrolled: units,
		SWAGrade:      swa,
		HighQuality:   true,
		Confidence:    decimal.NewFromInt(98),
	}

	report := BuildReport(doc, extraction, decision)
	assert.Contains(t, report, "HIGH CONFIDENCE")
	assert.Contains(t, report, "Units Enrolled: 24")
	assert.Contains(t, report, "Total Allowance: PHP 10000.00")

	extraction.Confidence = decimal.NewFromInt(80)
	assert.Contains(t, BuildReport(doc, extraction, decision), "GOOD CONFIDENCE")

	extraction.Confidence = decimal.NewFromInt(60)
	assert.Contains(t, BuildReport(doc, extraction, decision), "REQUIRES MANUAL REVIEW")
}
