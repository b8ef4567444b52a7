// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128
	UsernameMaxLength = 30
	BioMaxLength      = 500
	WebsiteMaxLength  = 200
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	githubRegex   = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?$`)
	websiteRegex  = regexp.MustCompile(`^https?://[^\s/$.?#][^\s]*$`)
)

var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"password12": {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"11111111":   {},
	"abc12345":   {},
	"letmein1":   {},
	"sunshine":   {},
	"football":   {},
	"baseball":   {},
	"welcome1":   {},
	"admin123":   {},
}

// ValidatePassword checks length, that the password is not purely numeric,
// not a common password, and not derived from the email's local part.
func ValidatePassword(password, email string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLength)
	}
	if n > PasswordMaxLength {
		return fmt.Errorf("password must not exceed %d characters", PasswordMaxLength)
	}

	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return fmt.Errorf("password cannot be entirely numeric")
	}

	if _, common := commonPasswords[strings.ToLower(password)]; common {
		return fmt.Errorf("password is too common")
	}

	if local, _, ok := strings.Cut(strings.ToLower(email), "@"); ok && len(local) >= 3 {
		if strings.Contains(strings.ToLower(password), local) {
			return fmt.Errorf("password is too similar to the email address")
		}
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > UsernameMaxLength {
		return fmt.Errorf("username must not exceed %d characters", UsernameMaxLength)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidateGithubHandle accepts an empty handle or a valid GitHub login.
func ValidateGithubHandle(handle string) error {
	if handle == "" {
		return nil
	}
	if strings.Contains(handle, "--") || !githubRegex.MatchString(handle) {
		return fmt.Errorf("invalid GitHub username")
	}
	return nil
}

// ValidateWebsite accepts an empty value or an http(s) URL.
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}
	if len(website) > WebsiteMaxLength {
		return fmt.Errorf("website must not exceed %d characters", WebsiteMaxLength)
	}
	if !websiteRegex.MatchString(website) {
		return fmt.Errorf("website must be a valid http or https URL")
	}
	return nil
}

// ValidateBio limits the profile bio length.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > BioMaxLength {
		return fmt.Errorf("bio must not exceed %d characters", BioMaxLength)
	}
	return nil
}
