package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultAvatarColor1 = "#6B73FF"
	DefaultAvatarColor2 = "#9EE5FF"
)

// User is an account. Email is the login identifier.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Password     string     `gorm:"not null" json:"-"`
	AvatarColor1 string     `gorm:"size:7;not null;default:'#6B73FF'" json:"avatar_color1"`
	AvatarColor2 string     `gorm:"size:7;not null;default:'#9EE5FF'" json:"avatar_color2"`
	Bio          string     `gorm:"type:text;not null;default:''" json:"bio"`
	Location     string     `gorm:"size:100;not null;default:''" json:"location"`
	GithubHandle string     `gorm:"size:39;not null;default:''" json:"github_handle"`
	Website      string     `gorm:"size:200;not null;default:''" json:"website"`
	AvatarURL    string     `gorm:"size:500;not null;default:''" json:"avatar_url"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Initial is the first character of the username, upper-cased, for avatar
// placeholders.
func (u *User) Initial() string {
	r, _ := utf8.DecodeRuneInString(u.Username)
	if r == utf8.RuneError {
		return "U"
	}
	return strings.ToUpper(string(r))
}

// UserSettings stores per-user preferences. One row per user.
type UserSettings struct {
	ID                        uint      `gorm:"primaryKey" json:"-"`
	UserID                    uint      `gorm:"uniqueIndex;not null" json:"-"`
	EmailNotificationsEnabled bool      `gorm:"not null" json:"email_notifications_enabled"`
	InAppNotificationsEnabled bool      `gorm:"not null" json:"in_app_notifications_enabled"`
	PublicProfile             bool      `gorm:"not null" json:"public_profile"`
	DataSharing               bool      `gorm:"not null" json:"data_sharing"`
	TwoFactorAuthEnabled      bool      `gorm:"not null" json:"two_factor_auth_enabled"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the settings a new account starts with.
func DefaultUserSettings(userID uint) UserSettings {
	return UserSettings{
		UserID:                    userID,
		EmailNotificationsEnabled: true,
		InAppNotificationsEnabled: true,
		PublicProfile:             true,
	}
}

// UserSession tracks one login. Clients identify it with the X-Session-Key header.
type UserSession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index:idx_sessions_user_created" json:"-"`
	Key        string     `gorm:"column:session_key;size:64;uniqueIndex;not null" json:"key"`
	JTI        string     `gorm:"size:100;index;not null;default:''" json:"-"`
	UserAgent  string     `gorm:"type:text;not null;default:''" json:"user_agent"`
	IPAddress  string     `gorm:"size:45;not null;default:''" json:"ip_address"`
	Device     string     `gorm:"size:100;not null;default:''" json:"device"`
	Browser    string     `gorm:"size:100;not null;default:''" json:"browser"`
	OS         string     `gorm:"size:100;not null;default:''" json:"os"`
	Location   string     `gorm:"size:100;not null;default:''" json:"location"`
	ExpiresAt  time.Time  `json:"-"`
	CreatedAt  time.Time  `gorm:"index:idx_sessions_user_created" json:"created_at"`
	LastActive time.Time  `json:"last_active"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// IsActive reports whether the session has not been revoked.
func (s *UserSession) IsActive() bool {
	return s.RevokedAt == nil
}
