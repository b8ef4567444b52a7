package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		email    string
		wantErr  bool
	}{
		{"Valid", "correct-horse-battery", "kim@example.com", false},
		{"Exactly Min Length", "abcdef1!", "", false},
		{"Exactly Max Length", strings.Repeat("a", 127) + "1", "", false},
		{"Too Short", "abc12!", "", true},
		{"Too Long", strings.Repeat("a", 129), "", true},
		{"Entirely Numeric", "4815162342", "", true},
		{"Common", "Password1", "", true},
		{"Similar To Email", "xkimberly99", "kimberly@example.com", true},
		{"Short Local Part Ignored", "jo-secret-words", "jo@example.com", false},
		{"Unicode Characters", "비밀번호입니다안전", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Generated", "user-a7b3c9d2", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProfileFields(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateGithubHandle(""))
	assert.NoError(t, ValidateGithubHandle("octo-cat"))
	assert.Error(t, ValidateGithubHandle("-octo"))
	assert.Error(t, ValidateGithubHandle("octo--cat"))

	assert.NoError(t, ValidateWebsite(""))
	assert.NoError(t, ValidateWebsite("https://example.com/me"))
	assert.Error(t, ValidateWebsite("ftp://example.com"))
	assert.Error(t, ValidateWebsite("https://"+strings.Repeat("a", 200)+".com"))

	assert.NoError(t, ValidateBio(strings.Repeat("가", BioMaxLength)))
	assert.Error(t, ValidateBio(strings.Repeat("가", BioMaxLength+1)))
}
