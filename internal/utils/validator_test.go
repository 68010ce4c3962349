// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationInput struct {
	Username     string `validate:"required,username"`
	Password     string `validate:"required,strong_password"`
	StudentID    string `validate:"required,student_id"`
	AcademicYear string `validate:"required,academic_year"`
}

func validInput() registrationInput {
	return registrationInput{
		Username:     "juan_delacruz",
		Password:     "Str0ng!Pass",
		StudentID:    "21-12345",
		AcademicYear: "2024-2025",
	}
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, ValidateStruct(validInput()))
}

func TestStudentIDFormat(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"21-12345", true},
		{"09-1234", true},
		{"21-123456", true},
		{"2112345", false},
		{"21-123", false},
		{"211-12345", false},
		{"ab-12345", false},
	}

	for _, tc := range cases {
		in := validInput()
		in.StudentID = tc.id
		err := ValidateStruct(in)
		if tc.valid {
			assert.NoError(t, err, tc.id)
		} else {
			assert.Error(t, err, tc.id)
		}
	}
}

func TestAcademicYearMustBeConsecutive(t *testing.T) {
	cases := []struct {
		year  string
		valid bool
	}{
		{"2024-2025", true},
		{"1999-2000", true},
		{"2024-2026", false},
		{"2025-2024", false},
		{"2024-25", false},
		{"2024/2025", false},
	}

	for _, tc := range cases {
		in := validInput()
		in.AcademicYear = tc.year
		err := ValidateStruct(in)
		if tc.valid {
			assert.NoError(t, err, tc.year)
		} else {
			assert.Error(t, err, tc.year)
		}
	}
}

func TestStrongPasswordRequiresAllClasses(t *testing.T) {
	for _, password := range []string{"short1!A", "Str0ng!Pass"} {
		in := validInput()
		in.Password = password
		assert.NoError(t, ValidateStruct(in), password)
	}

	for _, password := range []string{"alllowercase1!", "ALLUPPERCASE1!", "NoNumbers!", "NoSpecial123", "Ab1!x"} {
		in := validInput()
		in.Password = password
		assert.Error(t, ValidateStruct(in), password)
	}
}

func TestGetValidationErrorsMessages(t *testing.T) {
	in := registrationInput{
		Username:     "x",
		Password:     "weak",
		StudentID:    "nope",
		AcademicYear: "2024-2026",
	}

	err := ValidateStruct(in)
	require.Error(t, err)

	validationErrors := GetValidationErrors(err)
	require.Len(t, validationErrors, 4)

	byField := map[string]ValidationError{}
	for _, ve := range validationErrors {
		byField[ve.Field] = ve
	}

	assert.Equal(t, "username", byField["username"].Tag)
	assert.Equal(t, "strong_password", byField["password"].Tag)
	assert.Contains(t, byField["studentid"].Message, "21-12345")
	assert.Contains(t, byField["academicyear"].Message, "consecutive")
}
