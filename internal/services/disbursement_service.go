// internal/services/disbursement_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/payout"
	"gorm.io/gorm"

	"github.com/tcuscholar/scholarship-backend/internal/config"
	"github.com/tcuscholar/scholarship-backend/internal/models"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
)

var decimalHundred = decimal.NewFromInt(100)

// DisbursementService releases the approved allowance to the student.
// Without a Stripe key it records the disbursement locally, which is how
// development and the manual-payout fallback run.
type DisbursementService struct {
	db     *gorm.DB
	config *config.Config
}

func NewDisbursementService(db *gorm.DB, config *config.Config) *DisbursementService {
	if config.Stripe.SecretKey != "" {
		stripe.Key = config.Stripe.SecretKey
	}

	return &DisbursementService{
		db:     db,
		config: config,
	}
}

// ReleaseAllowance creates and executes a disbursement for an approved
// application. One release per application.
func (s *DisbursementService) ReleaseAllowance(app *models.ScholarshipApplication, adminID uuid.UUID) (*models.Disbursement, error) {
	if app.VerificationStatus != models.VerificationStatusApproved {
		return nil, errors.New("only approved applications can be disbursed")
	}

	var existing models.Disbursement
	err := s.db.Where("application_id = ? AND status IN ?", app.ID,
		[]models.DisbursementStatus{models.DisbursementStatusPending, models.DisbursementStatusReleased}).
		First(&existing).Error
	if err == nil {
		return nil, errors.New("a disbursement for this application already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	reference, err := utils.GenerateDisbursementReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference: %w", err)
	}

	disb := &models.Disbursement{
		ApplicationID: app.ID,
		Amount:        app.TotalAllowance,
		Currency:      "php",
		Status:        models.DisbursementStatusPending,
		Reference:     reference,
		ReleasedBy:    &adminID,
	}

	if err := s.db.Create(disb).Error; err != nil {
		return nil, fmt.Errorf("failed to create disbursement: %w", err)
	}

	if s.config.Stripe.SecretKey != "" {
		if err := s.executePayout(disb); err != nil {
			disb.Status = models.DisbursementStatusFailed
			s.db.Save(disb)
			return disb, fmt.Errorf("payout failed: %w", err)
		}
	}

	now := time.Now()
	disb.Status = models.DisbursementStatusReleased
	disb.ReleasedAt = &now
	if err := s.db.Save(disb).Error; err != nil {
		return nil, fmt.Errorf("failed to update disbursement: %w", err)
	}

	return disb, nil
}

func (s *DisbursementService) executePayout(disb *models.Disbursement) error {
	// Stripe wants the amount in centavos
	amountInCentavos := disb.Amount.Mul(decimalHundred).IntPart()

	params := &stripe.PayoutParams{
		Amount:      stripe.Int64(amountInCentavos),
		Currency:    stripe.String(disb.Currency),
		Description: stripe.String(fmt.Sprintf("TCU scholarship allowance %s", disb.Reference)),
	}
	params.AddMetadata("application_id", disb.ApplicationID.String())
	params.AddMetadata("reference", disb.Reference)

	p, err := payout.New(params)
	if err != nil {
		return err
	}

	disb.Reference = p.ID
	return nil
}

func (s *DisbursementService) GetByApplication(applicationID uuid.UUID) (*models.Disbursement, error) {
	var disb models.Disbursement
	if err := s.db.Where("application_id = ?", applicationID).Order("created_at DESC").First(&disb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("disbursement not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &disb, nil
}
