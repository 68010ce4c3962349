// internal/utils/validator.go
package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	usernameRegex     = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	studentIDRegex    = regexp.MustCompile(`^\d{2}-\d{4,6}$`)
	academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("student_id", validateStudentID)
	validate.RegisterValidation("academic_year", validateAcademicYear)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSpecial
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	// Alphanumeric and underscores, 3-50 characters
	if len(username) < 3 || len(username) > 50 {
		return false
	}

	return usernameRegex.MatchString(username)
}

// TCU student numbers look like 21-12345: two-digit entry year, dash,
// registrar sequence.
func validateStudentID(fl validator.FieldLevel) bool {
	return studentIDRegex.MatchString(fl.Field().String())
}

// Academic years are consecutive, e.g. 2024-2025.
func validateAcademicYear(fl validator.FieldLevel) bool {
	matches := academicYearRegex.FindStringSubmatch(fl.Field().String())
	if matches == nil {
		return false
	}
	start, _ := strconv.Atoi(matches[1])
	end, _ := strconv.Atoi(matches[2])
	return end == start+1
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase, number, and special character"
	case "username":
		return "Username must be 3-50 characters and contain only letters, numbers, and underscores"
	case "student_id":
		return "Student ID must follow the TCU format, e.g. 21-12345"
	case "academic_year":
		return "Academic year must be consecutive years, e.g. 2024-2025"
	default:
		return e.Field() + " is invalid"
	}
}
