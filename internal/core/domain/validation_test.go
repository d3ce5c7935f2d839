package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestValidateEmailAcceptsValidAddresses(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"alice+tag@example.co.jp",
		"a.b_c@sub.example.org",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("expected %q to validate, got %v", email, err)
		}
	}
}

func TestValidateEmailRejectsInvalidAddresses(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"plainaddress",
		"@missing-local.example.com",
		"missing-at.example.com",
		"spaces in@example.com",
		"alice@localhost",
		"Alice <alice@example.com>",
		"two@@example.com",
	}
	for _, email := range invalid {
		err := ValidateEmail(email)
		if err == nil {
			t.Fatalf("expected %q to be rejected", email)
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for %q, got %T", email, err)
		}
		if vErr.Field != "email" {
			t.Fatalf("expected email field error, got %q", vErr.Field)
		}
	}
}

func TestValidateLocale(t *testing.T) {
	if err := ValidateLocale(nil); err != nil {
		t.Fatalf("expected absent locale to pass, got %v", err)
	}

	empty := ""
	if err := ValidateLocale(&empty); err != nil {
		t.Fatalf("expected empty locale to pass, got %v", err)
	}

	ja := "ja"
	if err := ValidateLocale(&ja); err != nil {
		t.Fatalf("expected supported locale to pass, got %v", err)
	}

	unknown := "xx"
	err := ValidateLocale(&unknown)
	if err == nil {
		t.Fatalf("expected unsupported locale to fail")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "locale" {
		t.Fatalf("expected locale field error, got %v", err)
	}
}

func TestSanitizeFilteredLanguagesDropsBlanksKeepingOrder(t *testing.T) {
	input := []string{"en", "", "fr", "   ", "ja"}
	got := SanitizeFilteredLanguages(input)
	want := []string{"en", "fr", "ja"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := SanitizeFilteredLanguages(nil); len(got) != 0 {
		t.Fatalf("expected empty result for nil input, got %v", got)
	}

	if got := SanitizeFilteredLanguages([]string{"", "  "}); len(got) != 0 {
		t.Fatalf("expected all-blank input to sanitize to empty, got %v", got)
	}
}

func TestValidateUsername(t *testing.T) {
	for _, username := range []string{"alice", "Alice_99", "a"} {
		if err := ValidateUsername(username); err != nil {
			t.Fatalf("expected %q to validate, got %v", username, err)
		}
	}
	for _, username := range []string{"", "  ", "with space", "héllo", "dash-ed", "waaaaaaaaaaaaaaaaaaaaaaaaaaaytoolong"} {
		if err := ValidateUsername(username); err == nil {
			t.Fatalf("expected %q to be rejected", username)
		}
	}
}

func TestValidateDefaultPrivacy(t *testing.T) {
	for _, value := range []string{"", PrivacyPublic, PrivacyUnlisted, PrivacyPrivate, PrivacyDirect} {
		if err := ValidateDefaultPrivacy(value); err != nil {
			t.Fatalf("expected %q to validate, got %v", value, err)
		}
	}
	if err := ValidateDefaultPrivacy("friends-only"); err == nil {
		t.Fatalf("expected unknown visibility to be rejected")
	}
}
