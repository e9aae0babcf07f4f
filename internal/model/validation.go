package model

import (
	"sort"
	"strings"
)

// ValidationError is a client-side validation failure. Its text is shown to the user
// as-is, and none of these ever reach the network layer.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	ErrUsernameRequired     = ValidationError("Username is required")
	ErrPasswordRequired     = ValidationError("Password is required")
	ErrFullNameRequired     = ValidationError("Full name is required")
	ErrPasswordTooShort     = ValidationError("Password must be at least 6 characters")
	ErrInvalidProfilePicURL = ValidationError("Profile picture must be a valid URL")
	ErrCaptionRequired      = ValidationError("Caption is required")
	ErrInvalidImageURL      = ValidationError("Image URL must be valid")
	ErrCommentEmpty         = ValidationError("Comment cannot be empty")
	ErrMessageEmpty         = ValidationError("Message cannot be empty")
)

// MinPasswordLength is enforced on signup only.
const MinPasswordLength = 6

// FieldErrors maps a form field to the validation error it failed with.
type FieldErrors map[string]error

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, field := range fe.fields() {
		parts = append(parts, field+": "+fe[field].Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match any of the field errors.
func (fe FieldErrors) Unwrap() []error {
	errs := make([]error, 0, len(fe))
	for _, field := range fe.fields() {
		errs = append(errs, fe[field])
	}
	return errs
}

// Field returns the message for one field, or "" when the field is valid.
func (fe FieldErrors) Field(name string) string {
	if err, ok := fe[name]; ok && err != nil {
		return err.Error()
	}
	return ""
}

func (fe FieldErrors) fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// orNil keeps callers from returning a typed-nil error.
func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// IsHTTPURL reports whether value starts with http:// or https://.
func IsHTTPURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
