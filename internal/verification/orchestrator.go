// internal/verification/orchestrator.go
package verification

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tcuscholar/scholarship-backend/internal/models"
)

// ApplicationStore persists verification outcomes. SaveVerification must
// write the academic fields, money fields and status in one transaction so
// readers never observe a half-applied outcome.
type ApplicationStore interface {
	SaveVerification(ctx context.Context, app *models.ScholarshipApplication) error
	AppendLog(ctx context.Context, entry *models.VerificationLog) error
}

// Outcome is what Process decided for one verification attempt.
type Outcome struct {
	Status           models.VerificationStatus `json:"status"`
	Confidence       decimal.Decimal           `json:"confidence"`
	Notes            string                    `json:"notes"`
	EligibleForMerit bool                      `json:"eligible_for_merit"`
}

// Orchestrator runs the validate -> extract -> evaluate -> persist pipeline
// for a submitted grade document. A successful run always lands the
// application in under_review: final approval stays with a human admin.
type Orchestrator struct {
	validator *DocumentValidator
	extractor *Extractor
	policy    Policy
	store     ApplicationStore
	log       *logrus.Logger
}

func NewOrchestrator(validator *DocumentValidator, extractor *Extractor, policy Policy, store ApplicationStore, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		validator: validator,
		extractor: extractor,
		policy:    policy,
		store:     store,
		log:       log,
	}
}

// Process verifies doc for app. It never returns an error to the caller:
// every failure mode degrades to a persisted under_review or rejected
// outcome so a submission is never lost to an internal fault.
func (o *Orchestrator) Process(ctx context.Context, app *models.ScholarshipApplication, doc *Document) (outcome *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.log.WithFields(logrus.Fields{
				"application_id": app.ID,
				"panic":          r,
			}).Error("verification pipeline panicked")
			outcome = o.fail(ctx, app, fmt.Sprintf("Verification error: %v. Document flagged for manual review.", r))
		}
	}()

	if doc == nil {
		app.VerificationStatus = models.VerificationStatusUnderReview
		app.ConfidenceScore = decimal.Zero
		app.VerificationNotes = "No document submitted. Manual review required."
		outcome = &Outcome{
			Status:     app.VerificationStatus,
			Confidence: app.ConfidenceScore,
			Notes:      app.VerificationNotes,
		}
		o.appendLog(ctx, app, "document_validation", models.JSONB{
			"document_provided": false,
		}, models.JSONB{
			"valid":  false,
			"status": string(app.VerificationStatus),
		}, decimal.Zero, nil)
		if err := o.store.SaveVerification(ctx, app); err != nil {
			o.log.WithError(err).WithField("application_id", app.ID).Error("failed to persist no-document outcome")
		}
		return outcome
	}

	validation := o.validator.Validate(ctx, doc)

	o.appendLog(ctx, app, "document_validation", models.JSONB{
		"file_name": doc.Name,
		"file_size": doc.Size,
	}, models.JSONB{
		"valid":            validation.Valid,
		"rejection_reason": validation.RejectionReason,
	}, validation.Confidence, validation.Reasons)

	if !validation.Valid {
		// The raw validator score stays in the log entry above; the
		// application record carries zero confidence on rejection.
		app.VerificationStatus = models.VerificationStatusRejected
		app.ConfidenceScore = decimal.Zero
		app.VerificationNotes = fmt.Sprintf("Document rejected: %s", validation.RejectionReason)
		outcome = &Outcome{
			Status:     app.VerificationStatus,
			Confidence: app.ConfidenceScore,
			Notes:      app.VerificationNotes,
		}
		if err := o.store.SaveVerification(ctx, app); err != nil {
			o.log.WithError(err).WithField("application_id", app.ID).Error("failed to persist rejection")
			return o.fail(ctx, app, "Verification error: could not record rejection. Document flagged for manual review.")
		}
		return outcome
	}

	extraction := o.extractor.Extract(doc, validation.Confidence)
	decision := o.policy.Evaluate(
		&extraction.UnitsEnrolled,
		&extraction.SWAGrade,
		&extraction.HasIncWithdrawn,
		&extraction.HasFailedDropped,
	)

	// All seven fields and the status land in one write.
	units := extraction.UnitsEnrolled
	swa := extraction.SWAGrade
	inc := extraction.HasIncWithdrawn
	failed := extraction.HasFailedDropped
	app.UnitsEnrolled = &units
	app.SWAGrade = &swa
	app.HasIncWithdrawn = &inc
	app.HasFailedDropped = &failed
	app.BaseAllowance = decision.BaseAllowance
	app.MeritIncentive = decision.MeritIncentive
	app.TotalAllowance = decision.TotalAllowance
	app.VerificationStatus = models.VerificationStatusUnderReview
	app.ConfidenceScore = extraction.Confidence
	app.VerificationNotes = BuildReport(doc, extraction, decision)

	if err := o.store.SaveVerification(ctx, app); err != nil {
		o.log.WithError(err).WithField("application_id", app.ID).Error("failed to persist verification outcome")
		return o.fail(ctx, app, "Verification error: could not record results. Document flagged for manual review.")
	}

	o.appendLog(ctx, app, "grade_extraction", models.JSONB{
		"file_name":    doc.Name,
		"high_quality": extraction.HighQuality,
	}, models.JSONB{
		"units_enrolled":     extraction.UnitsEnrolled,
		"swa_grade":          extraction.SWAGrade.StringFixed(2),
		"has_inc_withdrawn":  extraction.HasIncWithdrawn,
		"has_failed_dropped": extraction.HasFailedDropped,
		"merit_eligible":     decision.Eligible,
		"total_allowance":    decision.TotalAllowance.StringFixed(2),
	}, extraction.Confidence, nil)

	return &Outcome{
		Status:           app.VerificationStatus,
		Confidence:       app.ConfidenceScore,
		Notes:            app.VerificationNotes,
		EligibleForMerit: decision.Eligible,
	}
}

// fail parks the application in under_review with zero confidence. The
// academic and money fields are left at whatever they already were.
func (o *Orchestrator) fail(ctx context.Context, app *models.ScholarshipApplication, notes string) *Outcome {
	app.VerificationStatus = models.VerificationStatusUnderReview
	app.ConfidenceScore = decimal.Zero
	app.VerificationNotes = notes
	if err := o.store.SaveVerification(ctx, app); err != nil {
		o.log.WithError(err).WithField("application_id", app.ID).Error("failed to persist degraded outcome")
	}
	return &Outcome{
		Status:     models.VerificationStatusUnderReview,
		Confidence: decimal.Zero,
		Notes:      notes,
	}
}

// appendLog records a pipeline step. Log-write failures never affect the
// verification outcome.
func (o *Orchestrator) appendLog(ctx context.Context, app *models.ScholarshipApplication, verificationType string, input, result models.JSONB, confidence decimal.Decimal, reasons []string) {
	entry := &models.VerificationLog{
		ApplicationID:     app.ID,
		VerificationType:  verificationType,
		InputData:         input,
		Result:            result,
		ConfidenceScore:   confidence,
		ValidationReasons: reasons,
	}
	if err := o.store.AppendLog(ctx, entry); err != nil {
		o.log.WithError(err).WithFields(logrus.Fields{
			"application_id":    app.ID,
			"verification_type": verificationType,
		}).Warn("failed to append verification log")
	}
}
