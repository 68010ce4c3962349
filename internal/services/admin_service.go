// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tcuscholar/scholarship-backend/internal/database"
	"github.com/tcuscholar/scholarship-backend/internal/models"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
)

type AdminService struct {
	db                  *gorm.DB
	notificationService *NotificationService
	disbursementService *DisbursementService
	storageService      *StorageService
}

type AdminDashboardStats struct {
	TotalStudents        int64           `json:"total_students"`
	TotalApplications    int64           `json:"total_applications"`
	PendingReview        int64           `json:"pending_review"`
	ApprovedApplications int64           `json:"approved_applications"`
	RejectedApplications int64           `json:"rejected_applications"`
	ApprovedThisMonth    int64           `json:"approved_this_month"`
	MeritAwards          int64           `json:"merit_awards"`
	TotalDisbursed       decimal.Decimal `json:"total_disbursed"`
	DisbursedThisMonth   decimal.Decimal `json:"disbursed_this_month"`
	AverageConfidence    float64         `json:"average_confidence"`
}

type AdminApplicationFilter struct {
	utils.PaginationParams
	Status       *models.VerificationStatus `json:"status,omitempty"`
	Semester     string                     `json:"semester,omitempty"`
	AcademicYear string                     `json:"academic_year,omitempty"`
	StudentID    *uuid.UUID                 `json:"student_id,omitempty"`
}

type AdminStudentFilter struct {
	utils.PaginationParams
	Course    string `json:"course,omitempty"`
	YearLevel string `json:"year_level,omitempty"`
}

type UpdateStatusRequest struct {
	Status models.VerificationStatus `json:"status" validate:"required"`
	Notes  string                    `json:"notes,omitempty"`
}

func NewAdminService(db *gorm.DB, notificationService *NotificationService, disbursementService *DisbursementService, storageService *StorageService) *AdminService {
	return &AdminService{
		db:                  db,
		notificationService: notificationService,
		disbursementService: disbursementService,
		storageService:      storageService,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	s.db.Model(&models.StudentProfile{}).Count(&stats.TotalStudents)
	s.db.Model(&models.ScholarshipApplication{}).Count(&stats.TotalApplications)
	s.db.Model(&models.ScholarshipApplication{}).
		Where("verification_status IN ?", []models.VerificationStatus{
			models.VerificationStatusPending, models.VerificationStatusUnderReview,
		}).Count(&stats.PendingReview)
	s.db.Model(&models.ScholarshipApplication{}).
		Where("verification_status = ?", models.VerificationStatusApproved).
		Count(&stats.ApprovedApplications)
	s.db.Model(&models.ScholarshipApplication{}).
		Where("verification_status = ?", models.VerificationStatusRejected).
		Count(&stats.RejectedApplications)
	s.db.Model(&models.ScholarshipApplication{}).
		Where("verification_status = ? AND updated_at >= ?", models.VerificationStatusApproved, monthStart).
		Count(&stats.ApprovedThisMonth)
	s.db.Model(&models.ScholarshipApplication{}).
		Where("merit_incentive > 0").Count(&stats.MeritAwards)

	var totalDisbursed, monthDisbursed string
	s.db.Model(&models.Disbursement{}).
		Where("status = ?", models.DisbursementStatusReleased).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalDisbursed)
	s.db.Model(&models.Disbursement{}).
		Where("status = ? AND released_at >= ?", models.DisbursementStatusReleased, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthDisbursed)
	stats.TotalDisbursed, _ = decimal.NewFromString(totalDisbursed)
	stats.DisbursedThisMonth, _ = decimal.NewFromString(monthDisbursed)

	s.db.Model(&models.ScholarshipApplication{}).
		Select("COALESCE(AVG(confidence_score), 0)").Scan(&stats.AverageConfidence)

	return stats, nil
}

// Application Management
func (s *AdminService) GetApplications(filter AdminApplicationFilter) ([]models.ScholarshipApplication, int64, error) {
	query := s.db.Model(&models.ScholarshipApplication{}).Preload("Student").Preload("Student.User")

	if filter.Status != nil {
		query = query.Where("verification_status = ?", *filter.Status)
	}
	if filter.Semester != "" {
		query = query.Where("semester = ?", filter.Semester)
	}
	if filter.AcademicYear != "" {
		query = query.Where("academic_year = ?", filter.AcademicYear)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Search != "" {
		query = query.Joins("JOIN student_profiles ON student_profiles.id = scholarship_applications.student_id").
			Where("student_profiles.student_id ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var apps []models.ScholarshipApplication
	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "verification_status", "confidence_score", "total_allowance"})
	if err := utils.ApplyPagination(query, filter.PaginationParams).Find(&apps).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return apps, total, nil
}

func (s *AdminService) GetApplication(applicationID uuid.UUID) (*models.ScholarshipApplication, error) {
	var app models.ScholarshipApplication
	err := s.db.Preload("Student").Preload("Student.User").Preload("Logs").
		First(&app, applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &app, nil
}

// DocumentDownloadURL returns a short-lived link to the stored grade
// document for reviewer access.
func (s *AdminService) DocumentDownloadURL(app *models.ScholarshipApplication) (string, error) {
	if app.DocumentKey == "" {
		return "", errors.New("application has no stored document")
	}
	return s.storageService.GeneratePresignedURL(app.DocumentKey, 15*time.Minute)
}

// UpdateApplicationStatus moves an application to a reviewed status. An
// approval also triggers the allowance disbursement.
func (s *AdminService) UpdateApplicationStatus(applicationID uuid.UUID, req *UpdateStatusRequest, adminID uuid.UUID) (*models.ScholarshipApplication, error) {
	if !models.ValidStatusTransition(req.Status) {
		return nil, errors.New("invalid application status")
	}

	app, err := s.GetApplication(applicationID)
	if err != nil {
		return nil, err
	}

	oldStatus := app.VerificationStatus
	app.VerificationStatus = req.Status
	if req.Notes != "" {
		app.VerificationNotes = app.VerificationNotes + "\n\nReviewer notes: " + req.Notes
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		return tx.Model(app).Select("verification_status", "verification_notes").Updates(app).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	go s.createAuditLog(adminID, "UPDATE_APPLICATION_STATUS", "scholarship_application", &applicationID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": req.Status, "notes": req.Notes})

	if user := s.applicantUser(app); user != nil {
		go func() {
			if err := s.notificationService.SendStatusChangeNotification(app, user); err != nil {
				logrus.WithError(err).Warn("failed to send status change notification")
			}
		}()
	}

	if req.Status == models.VerificationStatusApproved {
		disbursement, err := s.disbursementService.ReleaseAllowance(app, adminID)
		if err != nil {
			logrus.WithError(err).WithField("application_id", app.ID).
				Error("allowance disbursement failed, needs manual release")
		} else if user := s.applicantUser(app); user != nil {
			go func() {
				if err := s.notificationService.SendDisbursementNotification(disbursement, user); err != nil {
					logrus.WithError(err).Warn("failed to send disbursement notification")
				}
			}()
		}
	}

	return app, nil
}

// DeleteApplication removes an application, its verification logs through
// the cascade, and the stored grade document.
func (s *AdminService) DeleteApplication(applicationID uuid.UUID, adminID uuid.UUID) error {
	app, err := s.GetApplication(applicationID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(app).Error; err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	if app.DocumentKey != "" {
		if err := s.storageService.DeleteFile(app.DocumentKey); err != nil {
			logrus.WithError(err).WithField("key", app.DocumentKey).Warn("failed to delete stored document")
		}
	}

	go s.createAuditLog(adminID, "DELETE_APPLICATION", "scholarship_application", &applicationID,
		map[string]interface{}{"status": app.VerificationStatus, "student_id": app.StudentID.String()},
		nil)

	return nil
}

// AdminStudentRow is a roster entry with per-student application
// aggregates alongside the profile.
type AdminStudentRow struct {
	models.StudentProfile
	ApplicationCount int64           `json:"application_count"`
	TotalAwarded     decimal.Decimal `json:"total_awarded"`
}

// Student Management
func (s *AdminService) GetStudents(filter AdminStudentFilter) ([]AdminStudentRow, int64, error) {
	query := s.db.Model(&models.StudentProfile{}).Preload("User")

	if filter.Course != "" {
		query = query.Where("course = ?", filter.Course)
	}
	if filter.YearLevel != "" {
		query = query.Where("year_level = ?", filter.YearLevel)
	}
	if filter.Search != "" {
		query = query.Joins("JOIN users ON users.id = student_profiles.user_id").
			Where("student_profiles.student_id ILIKE ? OR users.first_name ILIKE ? OR users.last_name ILIKE ?",
				"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var students []models.StudentProfile
	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "student_id", "year_level"})
	if err := utils.ApplyPagination(query, filter.PaginationParams).Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	rows := make([]AdminStudentRow, len(students))
	ids := make([]uuid.UUID, len(students))
	for i, student := range students {
		rows[i] = AdminStudentRow{StudentProfile: student, TotalAwarded: decimal.Zero}
		ids[i] = student.ID
	}
	if len(ids) == 0 {
		return rows, total, nil
	}

	var aggregates []struct {
		StudentID    uuid.UUID
		Applications int64
		Awarded      decimal.Decimal
	}
	err := s.db.Model(&models.ScholarshipApplication{}).
		Select("student_id, COUNT(*) AS applications, "+
			"COALESCE(SUM(total_allowance) FILTER (WHERE verification_status = ?), 0) AS awarded",
			models.VerificationStatusApproved).
		Where("student_id IN ?", ids).
		Group("student_id").
		Scan(&aggregates).Error
	if err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	byStudent := map[uuid.UUID]int{}
	for i := range rows {
		byStudent[rows[i].ID] = i
	}
	for _, agg := range aggregates {
		if i, ok := byStudent[agg.StudentID]; ok {
			rows[i].ApplicationCount = agg.Applications
			rows[i].TotalAwarded = agg.Awarded
		}
	}

	return rows, total, nil
}

func (s *AdminService) createAuditLog(userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues map[string]interface{}) {
	auditLog := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    models.JSONB(oldValues),
		NewValues:    models.JSONB(newValues),
	}

	s.db.Create(auditLog)
}

func (s *AdminService) applicantUser(app *models.ScholarshipApplication) *models.User {
	if app.Student.User.ID != uuid.Nil {
		return &app.Student.User
	}

	var user models.User
	if err := s.db.First(&user, app.Student.UserID).Error; err != nil {
		return nil
	}
	return &user
}
