// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"
	KeyWarning = "warning"
	KeyInfo    = "info"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordChanged    = "auth.password_changed"

	// Student profiles
	KeyStudentProfileUpdated = "student.profile_updated"
	KeyStudentNotFound       = "student.not_found"
	KeyStudentIDTaken        = "student.id_taken"

	// Applications
	KeyApplicationSubmitted   = "application.submitted"
	KeyApplicationNotFound    = "application.not_found"
	KeyApplicationDuplicate   = "application.duplicate"
	KeyApplicationDeleted     = "application.deleted"
	KeyApplicationUnderReview = "application.under_review"
	KeyApplicationApproved    = "application.approved"
	KeyApplicationRejected    = "application.rejected"

	// Document verification
	KeyDocumentRequired    = "document.required"
	KeyDocumentTooLarge    = "document.too_large"
	KeyDocumentInvalidType = "document.invalid_type"
	KeyDocumentRejected    = "document.rejected"

	// Disbursements
	KeyDisbursementReleased = "disbursement.released"
	KeyDisbursementFailed   = "disbursement.failed"
	KeyDisbursementNotFound = "disbursement.not_found"

	// Admin
	KeyAdminActionSuccess  = "admin.action_success"
	KeyAdminAccessDenied   = "admin.access_denied"
	KeyAdminStatusUpdated  = "admin.status_updated"
	KeyAdminInvalidStatus  = "admin.invalid_status"
	KeyAdminStudentRemoved = "admin.student_removed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooShort = "validation.too_short"
	KeyValidationTooLong  = "validation.too_long"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPassword = "validation.invalid_password"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"
)
