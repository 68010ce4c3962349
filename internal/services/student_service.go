// internal/services/student_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tcuscholar/scholarship-backend/internal/config"
	"github.com/tcuscholar/scholarship-backend/internal/database"
	"github.com/tcuscholar/scholarship-backend/internal/models"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
)

type StudentService struct {
	db  *gorm.DB
	cfg *config.Config
}

// StudentDashboard is everything the student landing page shows in one
// payload: the profile, the newest application, lifetime totals and the
// current merit requirements.
type StudentDashboard struct {
	Profile           *models.StudentProfile         `json:"profile"`
	LatestApplication *models.ScholarshipApplication `json:"latest_application,omitempty"`
	TotalApplications int64                          `json:"total_applications"`
	ApprovedCount     int64                          `json:"approved_count"`
	TotalAwarded      decimal.Decimal                `json:"total_awarded"`
	HasActiveSemester bool                           `json:"has_active_semester"`
	Requirements      []string                       `json:"requirements"`
}

type UpdateStudentProfileRequest struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Course    string `json:"course,omitempty" validate:"omitempty,max=100"`
	YearLevel string `json:"year_level,omitempty" validate:"omitempty,max=20"`
}

func NewStudentService(db *gorm.DB, cfg *config.Config) *StudentService {
	return &StudentService{db: db, cfg: cfg}
}

func (s *StudentService) GetProfile(userID uuid.UUID) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	err := s.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &profile, nil
}

// UpdateProfile updates the account and profile fields a student may edit
// themselves. Changing the email re-checks uniqueness.
func (s *StudentService) UpdateProfile(userID uuid.UUID, req *UpdateStudentProfileRequest) (*models.StudentProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	userUpdates := map[string]interface{}{}
	if req.Email != "" && req.Email != profile.User.Email {
		var count int64
		s.db.Model(&models.User{}).Where("email = ? AND id <> ?", req.Email, userID).Count(&count)
		if count > 0 {
			return nil, errors.New("email is already in use")
		}
		userUpdates["email"] = req.Email
	}
	if req.FirstName != "" {
		userUpdates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		userUpdates["last_name"] = req.LastName
	}

	profileUpdates := map[string]interface{}{}
	if req.Course != "" {
		profileUpdates["course"] = req.Course
	}
	if req.YearLevel != "" {
		profileUpdates["year_level"] = req.YearLevel
	}

	if len(userUpdates) == 0 && len(profileUpdates) == 0 {
		return profile, nil
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(userUpdates).Error; err != nil {
				return fmt.Errorf("failed to update account: %w", err)
			}
		}
		if len(profileUpdates) > 0 {
			if err := tx.Model(profile).Updates(profileUpdates).Error; err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProfile(userID)
}

func (s *StudentService) GetDashboard(userID uuid.UUID) (*StudentDashboard, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	policy := s.cfg.Scholarship
	dashboard := &StudentDashboard{
		Profile:      profile,
		TotalAwarded: decimal.Zero,
		Requirements: []string{
			fmt.Sprintf("Enrolled in at least %d units", policy.MinUnits),
			fmt.Sprintf("Semestral weighted average of at least %s", policy.MinSWA.StringFixed(2)),
			"No incomplete or withdrawn subjects",
			"No failed or dropped subjects",
		},
	}

	var latest models.ScholarshipApplication
	err = s.db.Where("student_id = ?", profile.ID).
		Order("created_at DESC").First(&latest).Error
	if err == nil {
		dashboard.LatestApplication = &latest
		dashboard.HasActiveSemester = latest.VerificationStatus == models.VerificationStatusPending ||
			latest.VerificationStatus == models.VerificationStatusUnderReview
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.db.Model(&models.ScholarshipApplication{}).
		Where("student_id = ?", profile.ID).Count(&dashboard.TotalApplications)
	s.db.Model(&models.ScholarshipApplication{}).
		Where("student_id = ? AND verification_status = ?", profile.ID, models.VerificationStatusApproved).
		Count(&dashboard.ApprovedCount)

	var awarded string
	s.db.Model(&models.ScholarshipApplication{}).
		Where("student_id = ? AND verification_status = ?", profile.ID, models.VerificationStatusApproved).
		Select("COALESCE(SUM(total_allowance), 0)").Scan(&awarded)
	dashboard.TotalAwarded, _ = decimal.NewFromString(awarded)

	return dashboard, nil
}
