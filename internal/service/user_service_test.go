package service

import (
	"context"
	"strings"
	"testing"

	"prompthub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

func register(t *testing.T, e *env, email, password string) *AuthResult {
	t.Helper()
	res, err := e.users.Register(context.Background(), RegisterInput{
		Email: email, Password: password, PasswordConfirm: password, ClientIP: "8.8.8.8",
	})
	require.NoError(t, err)
	return res
}

func TestUserService_Register(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := register(t, e, "  Carol@Example.com ", "correct-horse-battery")
	assert.Equal(t, "carol@example.com", res.User.Email)
	assert.True(t, strings.HasPrefix(res.User.Username, "user-"))
	assert.Len(t, res.User.Username, len("user-")+8)
	assert.Equal(t, "#45B7D1", res.User.AvatarColor1)
	// Geolocation is switched off in the test flags.
	assert.Equal(t, "Seoul, South Korea", res.User.Location)
	assert.NotEmpty(t, res.Token)

	claims, err := e.tokens.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := e.users.Register(ctx, RegisterInput{Email: "carol@example.com", Password: "another-good-pass", PasswordConfirm: "another-good-pass"})
		assertAppError(t, err, models.ErrCodeConflict)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := e.users.Register(ctx, RegisterInput{Email: "not-an-email", Password: "12345678", PasswordConfirm: "different"})
		appErr := assertAppError(t, err, models.ErrCodeValidation)
		assert.Contains(t, appErr.Fields, "email")
		assert.Contains(t, appErr.Fields, "password")
		assert.Contains(t, appErr.Fields, "password_confirm")
	})
}

func TestUserService_LoginLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	register(t, e, "dave@example.com", "correct-horse-battery")

	_, err := e.users.Login(ctx, LoginInput{Email: "dave@example.com", Password: "wrong-password"})
	assertAppError(t, err, models.ErrCodeUnauthorized)
	_, err = e.users.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever-pass"})
	assertAppError(t, err, models.ErrCodeUnauthorized)
	_, err = e.users.Login(ctx, LoginInput{})
	assertAppError(t, err, models.ErrCodeValidation)

	require.NoError(t, e.db.Model(&models.User{}).Where("email = ?", "dave@example.com").
		Update("location", "Jeju, South Korea").Error)

	res, err := e.users.Login(ctx, LoginInput{
		Email: "DAVE@example.com", Password: "correct-horse-battery", ClientIP: "10.0.0.1", UserAgent: chromeUA,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Len(t, res.Session.Key, 64)
	assert.Equal(t, "Desktop", res.Session.Device)
	assert.True(t, strings.HasPrefix(res.Session.Browser, "Chrome"))
	assert.Equal(t, "Jeju, South Korea", res.Session.Location)
	assert.NotNil(t, res.User.LastLoginAt)

	claims, err := e.tokens.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.JTI, claims.JTI)

	e.users.Logout(ctx, claims, res.Session.Key)
	_, err = e.tokens.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	sessions, err := e.users.Sessions(ctx, res.User.ID, "")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Logging out with an unknown session key still succeeds.
	e.users.Logout(ctx, claims, "missing-key")
}

func TestUserService_Sessions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	register(t, e, "erin@example.com", "correct-horse-battery")

	login := func(ua string) *AuthResult {
		res, err := e.users.Login(ctx, LoginInput{Email: "erin@example.com", Password: "correct-horse-battery", UserAgent: ua})
		require.NoError(t, err)
		return res
	}
	desktop := login(chromeUA)
	phone := login(iphoneUA)
	laptop := login(chromeUA)
	assert.Equal(t, "Mobile", phone.Session.Device)

	sessions, err := e.users.Sessions(ctx, desktop.User.ID, desktop.Session.Key)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	current := 0
	for _, s := range sessions {
		if s.IsCurrent {
			current++
			assert.Equal(t, desktop.Session.Key, s.Key)
		}
	}
	assert.Equal(t, 1, current)

	n, err := e.users.RevokeSessions(ctx, desktop.User.ID, phone.Session.Key, false, desktop.Session.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = e.tokens.Verify(ctx, phone.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	n, err = e.users.RevokeSessions(ctx, desktop.User.ID, "", true, desktop.Session.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = e.tokens.Verify(ctx, laptop.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = e.tokens.Verify(ctx, desktop.Token)
	assert.NoError(t, err)

	_, err = e.users.RevokeSessions(ctx, desktop.User.ID, "nope", false, "")
	assertAppError(t, err, models.ErrCodeNotFound)
	_, err = e.users.RevokeSessions(ctx, desktop.User.ID, "", false, "")
	assertAppError(t, err, models.ErrCodeValidation)
}

func TestUserService_Profile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createPost(t, e.alice, "Profile counted post")

	profile, err := e.users.Profile(ctx, e.alice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.PostsCount)
	require.NotNil(t, profile.Settings)
	assert.True(t, profile.Settings.PublicProfile)

	updated, err := e.users.UpdateProfile(ctx, UpdateProfileInput{
		UserID:       e.alice.ID,
		Username:     ptr("alice_dev"),
		Bio:          ptr("Prompt tinkerer"),
		GithubHandle: ptr("@alice-dev"),
		Website:      ptr("https://alice.dev"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_dev", updated.Username)
	assert.Equal(t, "alice-dev", updated.GithubHandle)

	_, err = e.users.UpdateProfile(ctx, UpdateProfileInput{UserID: e.bob.ID, Username: ptr("ALICE_DEV")})
	assertAppError(t, err, models.ErrCodeConflict)

	_, err = e.users.UpdateProfile(ctx, UpdateProfileInput{UserID: e.bob.ID, Website: ptr("ftp://bob"), Username: ptr("-bob")})
	appErr := assertAppError(t, err, models.ErrCodeValidation)
	assert.Contains(t, appErr.Fields, "website")
	assert.Contains(t, appErr.Fields, "username")

	ok, msg, err := e.users.CheckUsername(ctx, "alice_dev", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
	ok, _, err = e.users.CheckUsername(ctx, "alice_dev", e.alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _, err = e.users.CheckUsername(ctx, "x", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserService_ChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reg := register(t, e, "frank@example.com", "correct-horse-battery")
	claims, err := e.tokens.Verify(ctx, reg.Token)
	require.NoError(t, err)

	_, err = e.users.ChangePassword(ctx, ChangePasswordInput{
		UserID: reg.User.ID, Claims: claims,
		CurrentPassword: "wrong", NewPassword: "fresh-horse-battery", NewPasswordConfirm: "fresh-horse-battery",
	})
	appErr := assertAppError(t, err, models.ErrCodeValidation)
	assert.Contains(t, appErr.Fields, "current_password")

	res, err := e.users.ChangePassword(ctx, ChangePasswordInput{
		UserID: reg.User.ID, Claims: claims,
		CurrentPassword: "correct-horse-battery", NewPassword: "fresh-horse-battery", NewPasswordConfirm: "fresh-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token, res.Token)

	_, err = e.tokens.Verify(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = e.tokens.Verify(ctx, res.Token)
	assert.NoError(t, err)

	_, err = e.users.Login(ctx, LoginInput{Email: "frank@example.com", Password: "fresh-horse-battery"})
	assert.NoError(t, err)
}

func TestUserService_DeleteAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reg := register(t, e, "gina@example.com", "correct-horse-battery")
	claims, err := e.tokens.Verify(ctx, reg.Token)
	require.NoError(t, err)

	err = e.users.DeleteAccount(ctx, claims, ptr("delete"))
	assertAppError(t, err, models.ErrCodeValidation)

	require.NoError(t, e.users.DeleteAccount(ctx, claims, ptr(DeleteConfirmation)))
	_, err = e.users.Me(ctx, reg.User.ID)
	assertAppError(t, err, models.ErrCodeNotFound)
	_, err = e.tokens.Verify(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestUserService_SettingsAndAvatar(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	settings, err := e.users.UpdateSettings(ctx, e.alice.ID, UpdateSettingsInput{DataSharing: ptr(true), PublicProfile: ptr(false)})
	require.NoError(t, err)
	assert.True(t, settings.DataSharing)
	assert.False(t, settings.PublicProfile)
	assert.True(t, settings.EmailNotificationsEnabled)

	reloaded, err := e.users.Settings(ctx, e.alice.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.PublicProfile)

	require.NoError(t, e.db.Model(&e.alice).Updates(map[string]any{"avatar_color1": "#000000", "avatar_color2": "#FFFFFF"}).Error)
	user, err := e.users.RegenerateAvatar(ctx, e.alice.ID)
	require.NoError(t, err)
	c1, c2 := models.AvatarColors("alice@example.com")
	assert.Equal(t, c1, user.AvatarColor1)
	assert.Equal(t, c2, user.AvatarColor2)
}
