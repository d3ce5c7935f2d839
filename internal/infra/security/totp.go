package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrMissingSecret indicates no shared secret is stored for the user.
var ErrMissingSecret = errors.New("totp: secret is required")

// TOTPIssuer provisions and verifies time-based one-time passwords.
type TOTPIssuer struct {
	issuer string
	skew   uint
}

// NewTOTPIssuer constructs an issuer. skew is the number of 30-second periods
// accepted on either side of the current one to absorb clock drift.
func NewTOTPIssuer(issuer string, skew uint) *TOTPIssuer {
	if issuer == "" {
		issuer = "social-platform"
	}
	return &TOTPIssuer{issuer: issuer, skew: skew}
}

// TOTPProvisioning carries the generated secret and the otpauth:// URL that
// authenticator apps consume.
type TOTPProvisioning struct {
	Secret string
	URL    string
}

// Generate provisions a fresh base32 secret bound to the account name.
func (i *TOTPIssuer) Generate(accountName string) (TOTPProvisioning, error) {
	if accountName == "" {
		return TOTPProvisioning{}, fmt.Errorf("totp: account name is required")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      i.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return TOTPProvisioning{}, fmt.Errorf("generate totp secret: %w", err)
	}

	return TOTPProvisioning{Secret: key.Secret(), URL: key.URL()}, nil
}

// Verify checks the code against the stored secret within the skew window.
func (i *TOTPIssuer) Verify(code, secret string) (bool, error) {
	if secret == "" {
		return false, ErrMissingSecret
	}
	if code == "" {
		return false, nil
	}

	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      i.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("validate totp code: %w", err)
	}

	return ok, nil
}
