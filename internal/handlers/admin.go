// internal/handlers/admin.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tcuscholar/scholarship-backend/internal/i18n"
	"github.com/tcuscholar/scholarship-backend/internal/models"
	"github.com/tcuscholar/scholarship-backend/internal/services"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
)

type AdminHandler struct {
	adminService        *services.AdminService
	disbursementService *services.DisbursementService
}

func NewAdminHandler(adminService *services.AdminService, disbursementService *services.DisbursementService) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		disbursementService: disbursementService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/applications
func (h *AdminHandler) GetApplications(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	// Build filter parameters
	filter := services.AdminApplicationFilter{
		PaginationParams: params,
	}

	// Parse filters
	if status := c.Query("verification_status"); status != "" {
		vStatus := models.VerificationStatus(status)
		filter.Status = &vStatus
	}

	filter.Semester = c.Query("semester")
	filter.AcademicYear = c.Query("academic_year")

	if studentID := c.Query("student_id"); studentID != "" {
		if id, err := uuid.Parse(studentID); err == nil {
			filter.StudentID = &id
		}
	}

	// Get applications
	apps, total, err := h.adminService.GetApplications(filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(apps, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/applications/:id
func (h *AdminHandler) GetApplication(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	app, err := h.adminService.GetApplication(applicationID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	response := gin.H{
		"application": app,
	}
	if url, err := h.adminService.DocumentDownloadURL(app); err == nil {
		response["document_download_url"] = url
	}

	utils.SuccessResponse(c, response)
}

// PUT /admin/applications/:id/status
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	app, err := h.adminService.UpdateApplicationStatus(applicationID, &req, adminID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyAdminStatusUpdated),
		"application": app,
	})
}

// DELETE /admin/applications/:id
func (h *AdminHandler) DeleteApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.DeleteApplication(applicationID, adminID); err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyApplicationDeleted),
	})
}

// GET /admin/applications/:id/disbursement
func (h *AdminHandler) GetDisbursement(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	disbursement, err := h.disbursementService.GetByApplication(applicationID)
	if err != nil {
		utils.NotFoundResponse(c, "disbursement")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"disbursement": disbursement,
	})
}

// POST /admin/applications/:id/disbursement
// Manual release for approved applications whose automatic payout failed.
func (h *AdminHandler) ReleaseDisbursement(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	app, err := h.adminService.GetApplication(applicationID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	disbursement, err := h.disbursementService.ReleaseAllowance(app, adminID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyDisbursementReleased),
		"disbursement": disbursement,
	})
}

// GET /admin/students
func (h *AdminHandler) GetStudents(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AdminStudentFilter{
		PaginationParams: params,
		Course:           c.Query("course"),
		YearLevel:        c.Query("year_level"),
	}

	students, total, err := h.adminService.GetStudents(filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(students, total, params)
	utils.PaginatedResponse(c, result)
}
