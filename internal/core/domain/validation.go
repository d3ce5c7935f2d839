package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidationError is a field-level invariant violation. Saves that would
// break an invariant are rejected with one of these before any write.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// ValidateEmail checks that the value parses as a bare RFC 5322 address.
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return newValidationError("email", "blank", "can't be blank")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || addr.Name != "" {
		return newValidationError("email", "invalid", "is invalid")
	}
	if !strings.Contains(strings.SplitN(trimmed, "@", 2)[1], ".") {
		return newValidationError("email", "invalid", "is invalid")
	}
	return nil
}

// ValidateLocale checks membership in the supported registry. An absent or
// empty locale always passes; the preference is simply unset.
func ValidateLocale(locale *string) error {
	if locale == nil || *locale == "" {
		return nil
	}
	if !SupportedLocale(*locale) {
		return newValidationError("locale", "inclusion", "is not included in the list")
	}
	return nil
}

// ValidateUsername checks the handle charset used for account creation.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return newValidationError("username", "blank", "can't be blank")
	}
	if len(username) > 30 {
		return newValidationError("username", "too_long", "is too long (maximum is 30 characters)")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return newValidationError("username", "invalid", "only letters, numbers and underscores")
		}
	}
	return nil
}

// ValidateDefaultPrivacy checks a visibility preference against the known
// levels. Empty clears the preference and passes.
func ValidateDefaultPrivacy(value string) error {
	switch value {
	case "", PrivacyPublic, PrivacyUnlisted, PrivacyPrivate, PrivacyDirect:
		return nil
	default:
		return newValidationError("default_privacy", "inclusion", "is not included in the list")
	}
}

// SanitizeFilteredLanguages drops blank entries before persistence,
// preserving the relative order of the rest.
func SanitizeFilteredLanguages(languages []string) []string {
	sanitized := make([]string, 0, len(languages))
	for _, lang := range languages {
		if strings.TrimSpace(lang) == "" {
			continue
		}
		sanitized = append(sanitized, lang)
	}
	return sanitized
}
