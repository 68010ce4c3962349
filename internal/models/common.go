// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeAdmin   UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type VerificationStatus string

const (
	VerificationStatusPending     VerificationStatus = "pending"
	VerificationStatusUnderReview VerificationStatus = "under_review"
	VerificationStatusApproved    VerificationStatus = "approved"
	VerificationStatusRejected    VerificationStatus = "rejected"
)

// ValidStatusTransition reports whether an administrator may move an
// application into the given status.
func ValidStatusTransition(status VerificationStatus) bool {
	switch status {
	case VerificationStatusPending, VerificationStatusUnderReview,
		VerificationStatusApproved, VerificationStatusRejected:
		return true
	}
	return false
}

type DisbursementStatus string

const (
	DisbursementStatusPending  DisbursementStatus = "pending"
	DisbursementStatusReleased DisbursementStatus = "released"
	DisbursementStatusFailed   DisbursementStatus = "failed"
)
