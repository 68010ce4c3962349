// internal/handlers/student.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tcuscholar/scholarship-backend/internal/i18n"
	"github.com/tcuscholar/scholarship-backend/internal/models"
	"github.com/tcuscholar/scholarship-backend/internal/services"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
)

type StudentHandler struct {
	studentService *services.StudentService
}

func NewStudentHandler(studentService *services.StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
	}
}

// GET /students/dashboard
// Admins use /admin/dashboard/stats instead.
func (h *StudentHandler) GetDashboard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if userType, _ := utils.GetUserTypeFromContext(c); userType != string(models.UserTypeStudent) {
		utils.ForbiddenResponse(c, "")
		return
	}

	dashboard, err := h.studentService.GetDashboard(userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			utils.NotFoundResponse(c, "student")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"dashboard": dashboard,
	})
}

// GET /students/profile
func (h *StudentHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.studentService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			utils.NotFoundResponse(c, "student")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"profile": profile,
	})
}

// PUT /students/profile
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.UpdateStudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	profile, err := h.studentService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			utils.NotFoundResponse(c, "student")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyStudentProfileUpdated),
		"profile": profile,
	})
}
