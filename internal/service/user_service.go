package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"prompthub/internal/featureflags"
	"prompthub/internal/geo"
	"prompthub/internal/middleware"
	"prompthub/internal/models"
	"prompthub/internal/repository"
	"prompthub/internal/validation"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"
)

// DeleteConfirmation is the phrase that confirms account deletion.
const DeleteConfirmation = "계정 삭제"

const (
	locationMaxLength   = 100
	usernameAttempts    = 10
	generatedNamePrefix = "user-"
)

func invalidCredentials() *models.AppError {
	return models.NewUnauthorizedError("Invalid email or password")
}

type UserService struct {
	users           repository.UserRepository
	sessions        repository.SessionRepository
	stats           repository.StatsRepository
	tokens          *TokenService
	locator         geo.Locator
	flags           *featureflags.Manager
	defaultLocation string
	now             func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	stats repository.StatsRepository,
	tokens *TokenService,
	locator geo.Locator,
	flags *featureflags.Manager,
	defaultLocation string,
) *UserService {
	return &UserService{
		users:           users,
		sessions:        sessions,
		stats:           stats,
		tokens:          tokens,
		locator:         locator,
		flags:           flags,
		defaultLocation: defaultLocation,
		now:             time.Now,
	}
}

type RegisterInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	ClientIP        string `json:"-"`
}

type LoginInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	ClientIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResult is returned by register, login and password changes.
type AuthResult struct {
	User    *models.User        `json:"user"`
	Token   string              `json:"token"`
	Session *models.UserSession `json:"session,omitempty"`
}

// Profile is a user with their post totals.
type Profile struct {
	*models.User
	PostsCount     int64                `json:"posts_count"`
	TotalLikes     int64                `json:"total_likes"`
	TotalViews     int64                `json:"total_views"`
	TotalBookmarks int64                `json:"total_bookmarks"`
	Settings       *models.UserSettings `json:"settings,omitempty"`
}

type UpdateProfileInput struct {
	UserID       uint    `json:"-"`
	Username     *string `json:"username"`
	Bio          *string `json:"bio"`
	Location     *string `json:"location"`
	GithubHandle *string `json:"github_handle"`
	Website      *string `json:"website"`
}

type ChangePasswordInput struct {
	UserID             uint        `json:"-"`
	Claims             TokenClaims `json:"-"`
	CurrentPassword    string      `json:"current_password"`
	NewPassword        string      `json:"new_password"`
	NewPasswordConfirm string      `json:"new_password_confirm"`
}

type UpdateSettingsInput struct {
	EmailNotificationsEnabled *bool `json:"email_notifications_enabled"`
	InAppNotificationsEnabled *bool `json:"in_app_notifications_enabled"`
	PublicProfile             *bool `json:"public_profile"`
	DataSharing               *bool `json:"data_sharing"`
	TwoFactorAuthEnabled      *bool `json:"two_factor_auth_enabled"`
}

// SessionView marks which listed session made the request.
type SessionView struct {
	models.UserSession
	IsCurrent bool `json:"is_current"`
}

// Register creates an account with a generated username and signs it in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	verr := models.NewValidationError("Validation failed")
	if email == "" {
		verr.AddField("email", "Email is required")
	} else if err := validation.ValidateEmail(email); err != nil {
		verr.AddField("email", err.Error())
	}
	if in.Password == "" {
		verr.AddField("password", "Password is required")
	} else if err := validation.ValidatePassword(in.Password, email); err != nil {
		verr.AddField("password", err.Error())
	}
	if in.Password != in.PasswordConfirm {
		verr.AddField("password_confirm", "Passwords do not match")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if taken {
		return nil, models.NewConflictError("An account with this email already exists").
			AddField("email", "An account with this email already exists")
	}

	username, err := s.generateUsername(ctx)
	if err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	c1, c2 := models.AvatarColors(email)
	user := &models.User{
		Email:        email,
		Username:     username,
		Password:     string(hashed),
		AvatarColor1: c1,
		AvatarColor2: c2,
		Location:     s.locate(ctx, in.ClientIP),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("An account with this email already exists")
		}
		return nil, models.NewInternalError(err)
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) generateUsername(ctx context.Context) (string, error) {
	for range usernameAttempts {
		candidate := generatedNamePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		taken, err := s.users.UsernameTaken(ctx, candidate, 0)
		if err != nil {
			return "", models.NewInternalError(err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", models.NewInternalError(errors.New("could not generate a unique username"))
}

// locate resolves the client's location when geolocation is enabled.
func (s *UserService) locate(ctx context.Context, ip string) string {
	if s.locator == nil || !s.flags.Enabled(featureflags.IPGeolocation, 0) {
		return s.defaultLocation
	}
	return s.locator.Locate(ctx, ip)
}

// Login checks credentials and opens a session.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	verr := models.NewValidationError("Email and password are required")
	if email == "" {
		verr.AddField("email", "Email is required")
	}
	if in.Password == "" {
		verr.AddField("password", "Password is required")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, models.NewInternalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, invalidCredentials()
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record last login",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	}

	session := newSession(user.ID, claims, in.UserAgent, in.ClientIP)
	// the profile location set at registration, no lookup per login
	session.Location = user.Location
	if session.Location == "" {
		session.Location = s.defaultLocation
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, models.NewInternalError(err)
	}

	return &AuthResult{User: user, Token: token, Session: session}, nil
}

func newSession(userID uint, claims TokenClaims, userAgent, ip string) *models.UserSession {
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	if version != "" {
		browser += " " + version
	}

	device := "Desktop"
	switch {
	case ua.Bot():
		device = "Bot"
	case ua.Mobile():
		device = "Mobile"
	case userAgent == "":
		device = "Unknown"
	}

	return &models.UserSession{
		UserID:    userID,
		Key:       strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		JTI:       claims.JTI,
		UserAgent: userAgent,
		IPAddress: ip,
		Device:    device,
		Browser:   truncate(browser, 100),
		OS:        truncate(ua.OS(), 100),
		ExpiresAt: claims.ExpiresAt,
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Logout revokes the token and, when known, the session. Failures are
// logged and never returned.
func (s *UserService) Logout(ctx context.Context, claims TokenClaims, sessionKey string) {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke token on logout",
			slog.Uint64("user_id", uint64(claims.UserID)),
			slog.String("error", err.Error()),
		)
	}
	if sessionKey == "" {
		return
	}
	if _, err := s.sessions.Revoke(ctx, claims.UserID, sessionKey); err != nil && !repository.IsNotFound(err) {
		middleware.Logger.WarnContext(ctx, "failed to revoke session on logout",
			slog.Uint64("user_id", uint64(claims.UserID)),
			slog.String("error", err.Error()),
		)
	}
}

// Me returns the current user.
func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Profile returns the user with their post totals, and settings when asked.
func (s *UserService) Profile(ctx context.Context, userID uint, withSettings bool) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.stats.Totals(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	p := &Profile{
		User:           user,
		PostsCount:     totals.Posts,
		TotalLikes:     totals.Likes,
		TotalViews:     totals.Views,
		TotalBookmarks: totals.Bookmarks,
	}
	if withSettings {
		if p.Settings, err = s.Settings(ctx, userID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Profile, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	verr := models.NewValidationError("Validation failed")
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			verr.AddField("username", err.Error())
		} else if username != user.Username {
			taken, err := s.users.UsernameTaken(ctx, username, user.ID)
			if err != nil {
				return nil, models.NewInternalError(err)
			}
			if taken {
				return nil, models.NewConflictError("Username is already taken").
					AddField("username", "Username is already taken")
			}
		}
		user.Username = username
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			verr.AddField("bio", err.Error())
		}
		user.Bio = *in.Bio
	}
	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if utf8.RuneCountInString(location) > locationMaxLength {
			verr.AddField("location", "location must not exceed 100 characters")
		}
		user.Location = location
	}
	if in.GithubHandle != nil {
		handle := strings.TrimPrefix(strings.TrimSpace(*in.GithubHandle), "@")
		if err := validation.ValidateGithubHandle(handle); err != nil {
			verr.AddField("github_handle", err.Error())
		}
		user.GithubHandle = handle
	}
	if in.Website != nil {
		website := strings.TrimSpace(*in.Website)
		if err := validation.ValidateWebsite(website); err != nil {
			verr.AddField("website", err.Error())
		}
		user.Website = website
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("Username is already taken")
		}
		return nil, models.NewInternalError(err)
	}
	return s.Profile(ctx, user.ID, false)
}

// ChangePassword replaces the password, revokes the token used for the
// request and returns a fresh one.
func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return nil, models.NewFieldError("current_password", "Current password is incorrect")
	}

	verr := models.NewValidationError("Validation failed")
	if err := validation.ValidatePassword(in.NewPassword, user.Email); err != nil {
		verr.AddField("new_password", err.Error())
	} else if in.NewPassword == in.CurrentPassword {
		verr.AddField("new_password", "New password must differ from the current password")
	}
	if in.NewPassword != in.NewPasswordConfirm {
		verr.AddField("new_password_confirm", "Passwords do not match")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.tokens.Revoke(ctx, in.Claims); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke old token after password change",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	}
	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// DeleteAccount removes the user. A confirmation, when sent, must be the
// exact deletion phrase.
func (s *UserService) DeleteAccount(ctx context.Context, claims TokenClaims, confirmation *string) error {
	if confirmation != nil && strings.TrimSpace(*confirmation) != DeleteConfirmation {
		return models.NewFieldError("confirmation", "Type '"+DeleteConfirmation+"' to confirm")
	}
	if err := s.users.Delete(ctx, claims.UserID); err != nil {
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("User", claims.UserID)
		}
		return models.NewInternalError(err)
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke token of deleted account",
			slog.Uint64("user_id", uint64(claims.UserID)),
			slog.String("error", err.Error()),
		)
	}
	middleware.Logger.InfoContext(ctx, "account deleted", slog.Uint64("user_id", uint64(claims.UserID)))
	return nil
}

// CheckUsername reports whether username is valid and free.
func (s *UserService) CheckUsername(ctx context.Context, username string, excludeID uint) (bool, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, "", models.NewFieldError("username", "username is required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return false, err.Error(), nil
	}
	taken, err := s.users.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return false, "", models.NewInternalError(err)
	}
	if taken {
		return false, "Username is already taken", nil
	}
	return true, "Username is available", nil
}

func (s *UserService) Settings(ctx context.Context, userID uint) (*models.UserSettings, error) {
	settings, err := s.users.GetSettings(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return settings, nil
}

func (s *UserService) UpdateSettings(ctx context.Context, userID uint, in UpdateSettingsInput) (*models.UserSettings, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&settings.EmailNotificationsEnabled, in.EmailNotificationsEnabled)
	set(&settings.InAppNotificationsEnabled, in.InAppNotificationsEnabled)
	set(&settings.PublicProfile, in.PublicProfile)
	set(&settings.DataSharing, in.DataSharing)
	set(&settings.TwoFactorAuthEnabled, in.TwoFactorAuthEnabled)

	if err := s.users.SaveSettings(ctx, settings); err != nil {
		return nil, models.NewInternalError(err)
	}
	return settings, nil
}

// Sessions lists the user's active sessions, flagging currentKey.
func (s *UserService) Sessions(ctx context.Context, userID uint, currentKey string) ([]SessionView, error) {
	sessions, err := s.sessions.ListActive(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	views := make([]SessionView, len(sessions))
	for i := range sessions {
		views[i] = SessionView{UserSession: sessions[i], IsCurrent: currentKey != "" && sessions[i].Key == currentKey}
	}
	return views, nil
}

// RevokeSessions ends one session by key, or with all set every session
// except currentKey. Tokens of ended sessions are revoked as well.
func (s *UserService) RevokeSessions(ctx context.Context, userID uint, key string, all bool, currentKey string) (int, error) {
	var ended []models.UserSession
	switch {
	case all:
		list, err := s.sessions.RevokeAll(ctx, userID, currentKey)
		if err != nil {
			return 0, models.NewInternalError(err)
		}
		ended = list
	case key != "":
		session, err := s.sessions.Revoke(ctx, userID, key)
		if err != nil {
			if repository.IsNotFound(err) {
				return 0, models.NewNotFoundError("Session", key)
			}
			return 0, models.NewInternalError(err)
		}
		ended = []models.UserSession{*session}
	default:
		return 0, models.NewValidationError("session_key or all is required")
	}

	for _, session := range ended {
		claims := TokenClaims{UserID: userID, JTI: session.JTI, ExpiresAt: session.ExpiresAt}
		if err := s.tokens.Revoke(ctx, claims); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to revoke session token",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return len(ended), nil
}

// TouchSession records activity for the session key sent by the client.
func (s *UserService) TouchSession(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.sessions.Touch(ctx, key); err != nil {
		middleware.Logger.DebugContext(ctx, "session touch failed", slog.String("error", err.Error()))
	}
}

// RegenerateAvatar resets the avatar gradient to the one derived from the email.
func (s *UserService) RegenerateAvatar(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.AvatarColor1, user.AvatarColor2 = models.AvatarColors(user.Email)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}
