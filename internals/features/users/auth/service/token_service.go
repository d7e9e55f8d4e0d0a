package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"k9medics_backend/internals/constants"
)

const AccessTokenTTL = 12 * time.Hour

var ErrInvalidCredentials = errors.New("invalid email or password")

// CheckAdminCredentials compares the submitted login with the configured admin account.
func CheckAdminCredentials(email, password, adminEmail, adminHash string) error {
	if adminEmail == "" || adminHash == "" {
		return ErrInvalidCredentials
	}
	given := strings.ToLower(strings.TrimSpace(email))
	want := strings.ToLower(strings.TrimSpace(adminEmail))
	emailOK := subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1

	// bcrypt runs even for a wrong email
	pwErr := bcrypt.CompareHashAndPassword([]byte(adminHash), []byte(password))
	if !emailOK || pwErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueAccessToken signs an HS256 admin token for subject.
func IssueAccessToken(secret, subject string, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("JWT secret is not configured")
	}
	exp := now.Add(AccessTokenTTL)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": constants.RoleAdmin,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}
