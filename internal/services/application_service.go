// internal/services/application_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tcuscholar/scholarship-backend/internal/config"
	"github.com/tcuscholar/scholarship-backend/internal/database"
	"github.com/tcuscholar/scholarship-backend/internal/models"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
	"github.com/tcuscholar/scholarship-backend/internal/verification"
)

var (
	ErrProfileNotFound      = errors.New("student profile not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("an application for this semester already exists")
)

// ApplicationService owns the submission flow: store the grade document,
// create the application row, and run the verification pipeline on it.
type ApplicationService struct {
	db           *gorm.DB
	cfg          *config.Config
	storage      *StorageService
	notification *NotificationService
	orchestrator *verification.Orchestrator
	log          *logrus.Logger
}

type SubmitApplicationRequest struct {
	Semester     string `json:"semester" validate:"required,max=50"`
	AcademicYear string `json:"academic_year" validate:"required,academic_year"`
}

func NewApplicationService(db *gorm.DB, cfg *config.Config, storage *StorageService, notification *NotificationService, random verification.RandomSource, log *logrus.Logger) *ApplicationService {
	policy := verification.Policy{
		BaseAllowance:  cfg.Scholarship.BaseAllowance,
		MeritIncentive: cfg.Scholarship.MeritIncentive,
		MinUnits:       cfg.Scholarship.MinUnits,
		MinSWA:         cfg.Scholarship.MinSWA,
	}

	store := &gormApplicationStore{db: db}
	orchestrator := verification.NewOrchestrator(
		verification.NewDocumentValidator(analysisTimeout(cfg)),
		verification.NewExtractor(random, policy),
		policy,
		store,
		log,
	)

	return &ApplicationService{
		db:           db,
		cfg:          cfg,
		storage:      storage,
		notification: notification,
		orchestrator: orchestrator,
		log:          log,
	}
}

// SubmitApplication creates the application and verifies the uploaded grade
// document synchronously. The returned application already carries the
// verification outcome.
func (s *ApplicationService) SubmitApplication(ctx context.Context, userID uuid.UUID, req *SubmitApplicationRequest, header *multipart.FileHeader) (*models.ScholarshipApplication, *verification.Outcome, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	profile, err := s.profileForUser(userID)
	if err != nil {
		return nil, nil, err
	}

	var existing models.ScholarshipApplication
	err = s.db.Where("student_id = ? AND semester = ? AND academic_year = ?",
		profile.ID, req.Semester, req.AcademicYear).First(&existing).Error
	if err == nil {
		return nil, nil, ErrDuplicateApplication
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	app := &models.ScholarshipApplication{
		StudentID:      profile.ID,
		Semester:       req.Semester,
		AcademicYear:   req.AcademicYear,
		BaseAllowance:  s.cfg.Scholarship.BaseAllowance,
		TotalAllowance: s.cfg.Scholarship.BaseAllowance,
	}

	var doc *verification.Document

	if header != nil {
		file, err := header.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open uploaded document: %w", err)
		}
		fileBytes, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read uploaded document: %w", err)
		}

		sha, err := utils.HashReader(bytes.NewReader(fileBytes))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash uploaded document: %w", err)
		}

		upload, err := s.uploadDocument(header)
		if err != nil {
			return nil, nil, err
		}

		app.DocumentName = header.Filename
		app.DocumentKey = upload.Key
		app.DocumentURL = upload.URL
		app.DocumentSize = header.Size
		app.DocumentSHA256 = sha

		doc = verification.NewBytesDocument(header.Filename, fileBytes)
	}

	if err := s.db.Create(app).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create application: %w", err)
	}

	outcome := s.orchestrator.Process(ctx, app, doc)
	s.log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"status":         outcome.Status,
		"confidence":     outcome.Confidence,
	}).Info("application verified")

	if err := s.notification.SendApplicationSubmittedNotification(app, profile); err != nil {
		s.log.WithError(err).Warn("failed to notify admins of new application")
	}

	return app, outcome, nil
}

func (s *ApplicationService) GetApplication(userID, applicationID uuid.UUID) (*models.ScholarshipApplication, error) {
	profile, err := s.profileForUser(userID)
	if err != nil {
		return nil, err
	}

	var app models.ScholarshipApplication
	err = s.db.Preload("Logs").Where("id = ? AND student_id = ?", applicationID, profile.ID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &app, nil
}

func (s *ApplicationService) ListMyApplications(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	profile, err := s.profileForUser(userID)
	if err != nil {
		return nil, err
	}

	query := s.db.Model(&models.ScholarshipApplication{}).Where("student_id = ?", profile.ID)
	if params.Status != "" {
		query = query.Where("verification_status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var apps []models.ScholarshipApplication
	query = utils.ApplySort(query, params, []string{"created_at", "academic_year", "verification_status"})
	if err := utils.ApplyPagination(query, params).Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	result := utils.CreatePaginationResult(apps, total, params)
	return &result, nil
}

func (s *ApplicationService) profileForUser(userID uuid.UUID) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &profile, nil
}

func (s *ApplicationService) uploadDocument(header *multipart.FileHeader) (*UploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded document: %w", err)
	}
	defer file.Close()

	upload, err := s.storage.UploadFile(file, header, s.storage.GradeDocumentOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	return upload, nil
}

func analysisTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Scholarship.AnalysisTimeoutMS) * time.Millisecond
}

// gormApplicationStore persists verification outcomes. The seven academic
// and money fields go out in a single update so the invariant
// total = base + merit is never observable half-written.
type gormApplicationStore struct {
	db *gorm.DB
}

func (g *gormApplicationStore) SaveVerification(ctx context.Context, app *models.ScholarshipApplication) error {
	return database.WithTransaction(g.db.WithContext(ctx), func(tx *gorm.DB) error {
		return tx.Model(app).Select(
			"units_enrolled", "swa_grade", "has_inc_withdrawn", "has_failed_dropped",
			"base_allowance", "merit_incentive", "total_allowance",
			"verification_status", "confidence_score", "verification_notes",
		).Updates(app).Error
	})
}

func (g *gormApplicationStore) AppendLog(ctx context.Context, entry *models.VerificationLog) error {
	return g.db.WithContext(ctx).Create(entry).Error
}
