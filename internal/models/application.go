// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ScholarshipApplication is one submission per (student, semester, academic
// year). The academic fields stay nil until verification extracts them; the
// three money fields are only ever written together with the four academic
// fields so total_allowance == base_allowance + merit_incentive holds at
// every observable point.
type ScholarshipApplication struct {
	BaseModel
	StudentID    uuid.UUID `json:"student_id" gorm:"type:uuid;not null;index"`
	Semester     string    `json:"semester" gorm:"size:50;not null;index"`
	AcademicYear string    `json:"academic_year" gorm:"size:20;not null;index"`

	// Extracted by verification, nil until then
	UnitsEnrolled    *int             `json:"units_enrolled"`
	SWAGrade         *decimal.Decimal `json:"swa_grade" gorm:"type:decimal(5,2)"`
	HasIncWithdrawn  *bool            `json:"has_inc_withdrawn"`
	HasFailedDropped *bool            `json:"has_failed_dropped"`

	// Uploaded grade document reference
	DocumentName   string `json:"document_name" gorm:"size:255"`
	DocumentKey    string `json:"document_key" gorm:"size:512"`
	DocumentURL    string `json:"document_url" gorm:"size:1024"`
	DocumentSize   int64  `json:"document_size"`
	DocumentSHA256 string `json:"document_sha256" gorm:"size:64"`

	// Verification results
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"type:varchar(20);default:'pending';index"`
	ConfidenceScore    decimal.Decimal    `json:"confidence_score" gorm:"type:decimal(5,2);default:0"`
	VerificationNotes  string             `json:"verification_notes" gorm:"type:text"`

	// Allowance calculation
	BaseAllowance  decimal.Decimal `json:"base_allowance" gorm:"type:decimal(10,2);default:5000.00"`
	MeritIncentive decimal.Decimal `json:"merit_incentive" gorm:"type:decimal(10,2);default:0.00"`
	TotalAllowance decimal.Decimal `json:"total_allowance" gorm:"type:decimal(10,2);default:5000.00"`

	// Relationships
	Student StudentProfile    `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Logs    []VerificationLog `json:"logs,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

func (a *ScholarshipApplication) HasDocument() bool {
	return a.DocumentKey != "" || a.DocumentName != ""
}

// VerificationLog is an append-only audit record of one verification attempt.
// Rows are never updated; deleting an application cascades to its logs.
type VerificationLog struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ApplicationID     uuid.UUID       `json:"application_id" gorm:"type:uuid;not null;index"`
	VerificationType  string          `json:"verification_type" gorm:"size:50;not null"`
	InputData         JSONB           `json:"input_data" gorm:"type:jsonb"`
	Result            JSONB           `json:"result" gorm:"type:jsonb"`
	ConfidenceScore   decimal.Decimal `json:"confidence_score" gorm:"type:decimal(5,2)"`
	ValidationReasons pq.StringArray  `json:"validation_reasons" gorm:"type:text[]"`
	CreatedAt         time.Time       `json:"created_at"`

	Application *ScholarshipApplication `json:"application,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

// Disbursement records an allowance release for an approved application.
type Disbursement struct {
	BaseModel
	ApplicationID uuid.UUID          `json:"application_id" gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal    `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency      string             `json:"currency" gorm:"size:3;default:'php'"`
	Status        DisbursementStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Reference     string             `json:"reference" gorm:"size:255"`
	ReleasedBy    *uuid.UUID         `json:"released_by" gorm:"type:uuid"`
	ReleasedAt    *time.Time         `json:"released_at"`

	Application *ScholarshipApplication `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
}
