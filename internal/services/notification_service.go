// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"gorm.io/gorm"

	"github.com/tcuscholar/scholarship-backend/internal/config"
	"github.com/tcuscholar/scholarship-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	template := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":       user.FullName(),
		"PortalURL":  s.config.Frontend.BaseURL,
		"OfficeName": s.config.Email.FromName,
	}

	subject := "Welcome to the TCU Scholarship Portal"
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// SendApplicationSubmittedNotification queues an in-app notice for the
// scholarship office when a new application lands in review.
func (s *NotificationService) SendApplicationSubmittedNotification(app *models.ScholarshipApplication, student *models.StudentProfile) error {
	priority := "medium"
	if app.VerificationStatus == models.VerificationStatusRejected {
		priority = "low"
	}

	notification := &models.AdminNotification{
		Type:                "application_submitted",
		Title:               "New Scholarship Application",
		Message:             fmt.Sprintf("Student %s submitted an application for %s %s", student.StudentID, app.Semester, app.AcademicYear),
		Priority:            priority,
		RelatedResourceType: "scholarship_application",
		RelatedResourceID:   &app.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (s *NotificationService) SendStatusChangeNotification(app *models.ScholarshipApplication, user *models.User) error {
	var templateType, subject string
	switch app.VerificationStatus {
	case models.VerificationStatusApproved:
		templateType = "application_approved"
		subject = "Your Scholarship Application Has Been Approved"
	case models.VerificationStatusRejected:
		templateType = "application_rejected"
		subject = "Update on Your Scholarship Application"
	default:
		templateType = "application_update"
		subject = "Your Scholarship Application Status Changed"
	}

	data := map[string]interface{}{
		"Name":           user.FullName(),
		"Semester":       app.Semester,
		"AcademicYear":   app.AcademicYear,
		"Status":         string(app.VerificationStatus),
		"TotalAllowance": app.TotalAllowance.StringFixed(2),
		"PortalURL":      s.config.Frontend.BaseURL,
	}

	emailTemplate := s.getEmailTemplate(templateType)
	body, err := s.renderTemplate(emailTemplate.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) SendDisbursementNotification(disb *models.Disbursement, user *models.User) error {
	data := map[string]interface{}{
		"Name":      user.FullName(),
		"Amount":    disb.Amount.StringFixed(2),
		"Reference": disb.Reference,
		"PortalURL": s.config.Frontend.BaseURL,
	}

	emailTemplate := s.getEmailTemplate("disbursement_released")
	body, err := s.renderTemplate(emailTemplate.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, "Your Scholarship Allowance Has Been Released", body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		// Email not configured, just log
		fmt.Printf("Email would be sent to %s: %s\n", to, subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to the TCU Scholarship Portal",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Your TCU Scholarship Portal account is ready. You can now submit your grade documents and track your allowance applications.</p>
	<a href="{{.PortalURL}}">Open the Portal</a>
	<p>Best regards,<br>{{.OfficeName}}</p>
</body>
</html>`,
		},
		"application_approved": {
			Subject: "Application Approved",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Congratulations {{.Name}}!</h2>
	<p>Your scholarship application for {{.Semester}}, {{.AcademicYear}} has been approved.</p>
	<p>Total allowance: PHP {{.TotalAllowance}}</p>
	<a href="{{.PortalURL}}">View Your Application</a>
	<p>Best regards,<br>TCU Scholarship Office</p>
</body>
</html>`,
		},
		"application_rejected": {
			Subject: "Update on Your Application",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your scholarship application for {{.Semester}}, {{.AcademicYear}} was not approved. Please check the portal for the reviewer's notes and re-submit with a valid grade document.</p>
	<a href="{{.PortalURL}}">View Your Application</a>
	<p>Best regards,<br>TCU Scholarship Office</p>
</body>
</html>`,
		},
		"disbursement_released": {
			Subject: "Allowance Released",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your scholarship allowance of PHP {{.Amount}} has been released. Reference: {{.Reference}}</p>
	<a href="{{.PortalURL}}">View Details</a>
	<p>Best regards,<br>TCU Scholarship Office</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
