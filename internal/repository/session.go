package repository

import (
	"context"
	"time"

	"prompthub/internal/models"

	"gorm.io/gorm"
)

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	FindByKey(ctx context.Context, userID uint, key string) (*models.UserSession, error)
	ListActive(ctx context.Context, userID uint) ([]models.UserSession, error)
	Touch(ctx context.Context, key string) error
	Revoke(ctx context.Context, userID uint, key string) (*models.UserSession, error)
	RevokeAll(ctx context.Context, userID uint, exceptKey string) ([]models.UserSession, error)
}

type sessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db, now: time.Now}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastActive.IsZero() {
		session.LastActive = now
	}
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByKey(ctx context.Context, userID uint, key string) (*models.UserSession, error) {
	var session models.UserSession
	if err := r.db.WithContext(ctx).Where("user_id = ? AND session_key = ?", userID, key).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ListActive returns unrevoked, unexpired sessions, newest first.
func (r *sessionRepository) ListActive(ctx context.Context, userID uint) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, r.now()).
		Order("last_active DESC").Order("id DESC").
		Find(&sessions).Error
	return sessions, err
}

// Touch records activity on an active session.
func (r *sessionRepository) Touch(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("session_key = ? AND revoked_at IS NULL", key).
		UpdateColumn("last_active", r.now()).Error
}

// Revoke ends one session of the user and returns it. Revoking an already
// revoked session is a no-op that still returns the row.
func (r *sessionRepository) Revoke(ctx context.Context, userID uint, key string) (*models.UserSession, error) {
	session, err := r.FindByKey(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if session.RevokedAt != nil {
		return session, nil
	}
	now := r.now()
	if err := r.db.WithContext(ctx).Model(session).UpdateColumn("revoked_at", now).Error; err != nil {
		return nil, err
	}
	session.RevokedAt = &now
	return session, nil
}

// RevokeAll ends every active session of the user except exceptKey and
// returns the sessions it ended.
func (r *sessionRepository) RevokeAll(ctx context.Context, userID uint, exceptKey string) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("user_id = ? AND revoked_at IS NULL", userID)
		if exceptKey != "" {
			q = q.Where("session_key <> ?", exceptKey)
		}
		if err := q.Find(&sessions).Error; err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}

		ids := make([]uint, len(sessions))
		for i := range sessions {
			ids[i] = sessions[i].ID
		}
		now := r.now()
		if err := tx.Model(&models.UserSession{}).Where("id IN ?", ids).UpdateColumn("revoked_at", now).Error; err != nil {
			return err
		}
		for i := range sessions {
			sessions[i].RevokedAt = &now
		}
		return nil
	})
	return sessions, err
}
