// Package validate holds the field-level rules applied to every submission
// before it reaches the store. Checks are pure: uniqueness is pre-checked
// by the callers against the store and finally enforced by the database
// unique constraints.
package validate

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"waterline/pkg/types"
)

// FieldErrors maps a form field name to the message shown next to it.
// A submission is rejected whole when any field is present.
type FieldErrors map[string]string

const (
	MsgIDNumberFormat     = "ID number must be exactly 13 digits."
	MsgIDNumberTaken      = "This ID number is already registered."
	MsgPhoneFormat        = "Phone number must be exactly 10 digits."
	MsgFirstNameLetters   = "First name should contain only letters."
	MsgLastNameLetters    = "Last name should contain only letters."
	MsgEmailInvalid       = "Enter a valid email address."
	MsgEmailTaken         = "This email is already registered."
	MsgPasswordTooShort   = "Password must be at least 6 characters."
	MsgPasswordMismatch   = "Passwords do not match."
	MsgIssueTypeInvalid   = "Select a valid issue type."
	MsgDescriptionMissing = "Describe the issue in detail."
)

var (
	digits13 = regexp.MustCompile(`^[0-9]{13}$`)
	digits10 = regexp.MustCompile(`^[0-9]{10}$`)
)

func alphaOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// RegisterInput is the self-service registration payload.
type RegisterInput struct {
	IDNumber        string `form:"id_number"`
	FirstName       string `form:"first_name"`
	LastName        string `form:"last_name"`
	PhoneNumber     string `form:"phone_number"`
	Address         string `form:"address"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func (in *RegisterInput) Normalize() {
	in.IDNumber = strings.TrimSpace(in.IDNumber)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = strings.TrimSpace(in.Email)
}

func Register(in *RegisterInput) FieldErrors {
	in.Normalize()
	errs := FieldErrors{}

	if !digits13.MatchString(in.IDNumber) {
		errs["id_number"] = MsgIDNumberFormat
	}

	if in.PhoneNumber != "" && !digits10.MatchString(in.PhoneNumber) {
		errs["phone_number"] = MsgPhoneFormat
	}

	if in.FirstName != "" && !alphaOnly(in.FirstName) {
		errs["first_name"] = MsgFirstNameLetters
	}

	if in.LastName != "" && !alphaOnly(in.LastName) {
		errs["last_name"] = MsgLastNameLetters
	}

	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			errs["email"] = MsgEmailInvalid
		}
	}

	if len(in.Password) < 6 {
		errs["password"] = MsgPasswordTooShort
	}

	if in.Password != in.ConfirmPassword {
		errs["confirm_password"] = MsgPasswordMismatch
	}

	return errs
}

// ProfileInput is the self-service details update payload. The ID number
// is immutable and deliberately absent.
type ProfileInput struct {
	FirstName   string `form:"first_name"`
	LastName    string `form:"last_name"`
	PhoneNumber string `form:"phone_number"`
	Address     string `form:"address"`
	Email       string `form:"email"`
}

func (in *ProfileInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = strings.TrimSpace(in.Email)
}

func Profile(in *ProfileInput) FieldErrors {
	in.Normalize()
	errs := FieldErrors{}

	if in.PhoneNumber != "" && !digits10.MatchString(in.PhoneNumber) {
		errs["phone_number"] = MsgPhoneFormat
	}

	if in.FirstName != "" && !alphaOnly(in.FirstName) {
		errs["first_name"] = MsgFirstNameLetters
	}

	if in.LastName != "" && !alphaOnly(in.LastName) {
		errs["last_name"] = MsgLastNameLetters
	}

	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			errs["email"] = MsgEmailInvalid
		}
	}

	return errs
}

// IncidentInput is the report submission payload. Latitude and longitude
// arrive from hidden form fields populated by the map picker.
type IncidentInput struct {
	IssueType   string   `form:"issue_type"`
	Description string   `form:"description"`
	Latitude    *float64 `form:"latitude"`
	Longitude   *float64 `form:"longitude"`
}

func Incident(in *IncidentInput) FieldErrors {
	in.Description = strings.TrimSpace(in.Description)
	errs := FieldErrors{}

	if !types.IssueType(in.IssueType).Valid() {
		errs["issue_type"] = MsgIssueTypeInvalid
	}

	if in.Description == "" {
		errs["description"] = MsgDescriptionMissing
	}

	return errs
}

// PasswordPair validates the reset form's new password and confirmation.
func PasswordPair(password, confirm string) FieldErrors {
	errs := FieldErrors{}

	if len(password) < 6 {
		errs["password"] = MsgPasswordTooShort
	}

	if password != confirm {
		errs["confirm_password"] = MsgPasswordMismatch
	}

	return errs
}
