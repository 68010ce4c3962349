// internal/models/student.go
package models

import (
	"github.com/google/uuid"
)

// StudentProfile is created once per student account at registration.
// Administrator accounts never get one.
type StudentProfile struct {
	BaseModel
	UserID               uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	StudentID            string    `json:"student_id" gorm:"uniqueIndex;size:20;not null"`
	University           string    `json:"university" gorm:"size:100;default:'Taguig City University'"`
	Course               string    `json:"course" gorm:"size:100"`
	YearLevel            string    `json:"year_level" gorm:"size:20"`
	IsFirstTimeApplicant bool      `json:"is_first_time_applicant" gorm:"default:true"`

	// Relationships
	User         User                     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Applications []ScholarshipApplication `json:"applications,omitempty" gorm:"foreignKey:StudentID"`
}
