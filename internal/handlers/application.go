// internal/handlers/application.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tcuscholar/scholarship-backend/internal/i18n"
	"github.com/tcuscholar/scholarship-backend/internal/services"
	"github.com/tcuscholar/scholarship-backend/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// POST /applications
// Multipart form: semester, academic_year and the grade document under
// the "document" field. Verification runs before the response is written,
// so the returned application already carries its outcome.
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	req := &services.SubmitApplicationRequest{
		Semester:     c.PostForm("semester"),
		AcademicYear: c.PostForm("academic_year"),
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	// The document is optional at the HTTP layer; an absent one still
	// creates the application, flagged for manual review.
	header, err := c.FormFile("document")
	if err != nil {
		header = nil
	}

	app, outcome, err := h.applicationService.SubmitApplication(c.Request.Context(), userID, req, header)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateApplication):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyApplicationDuplicate))
		case errors.Is(err, services.ErrProfileNotFound):
			utils.NotFoundResponse(c, "student")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyApplicationSubmitted),
		"application":  app,
		"verification": outcome,
	})
}

// GET /applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	result, err := h.applicationService.ListMyApplications(userID, params)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			utils.NotFoundResponse(c, "student")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	app, err := h.applicationService.GetApplication(userID, applicationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrProfileNotFound):
			utils.NotFoundResponse(c, "student")
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"application": app,
	})
}

// requireUserID resolves the authenticated user ID or writes the error
// response itself.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}
