package repository

import (
	"context"
	"errors"
	"strings"

	"prompthub/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and their settings.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	GetSettings(ctx context.Context, userID uint) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, settings *models.UserSettings) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := r.first(ctx, "id = ?", id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, err
}

// GetByEmail matches case-insensitively. Returns gorm.ErrRecordNotFound when absent.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByUsername returns gorm.ErrRecordNotFound when absent.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(username))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the user and its default settings.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		settings := models.DefaultUserSettings(user.ID)
		return tx.Create(&settings).Error
	})
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user with everything they own. Counters of posts the
// user had liked or bookmarked are recomputed from the remaining rows.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var touched []uint
		if err := tx.Model(&models.PostInteraction{}).
			Where("user_id = ?", id).
			Pluck("post_id", &touched).Error; err != nil {
			return err
		}

		ownPosts := tx.Session(&gorm.Session{NewDB: true}).Model(&models.Post{}).Select("id").Where("author_id = ?", id)
		steps := []*gorm.DB{
			tx.Where("user_id = ? OR post_id IN (?)", id, ownPosts).Delete(&models.PostInteraction{}),
			tx.Where("author_id = ?", id).Delete(&models.Post{}),
			tx.Where("user_id = ?", id).Delete(&models.UserSession{}),
			tx.Where("user_id = ?", id).Delete(&models.UserSettings{}),
		}
		for _, step := range steps {
			if step.Error != nil {
				return step.Error
			}
		}

		if len(touched) > 0 {
			if err := tx.Model(&models.Post{}).Where("id IN ?", touched).UpdateColumns(map[string]interface{}{
				"like_count":     gorm.Expr("(SELECT COUNT(*) FROM post_interactions pi WHERE pi.post_id = posts.id AND pi.is_liked = ?)", true),
				"bookmark_count": gorm.Expr("(SELECT COUNT(*) FROM post_interactions pi WHERE pi.post_id = posts.id AND pi.is_bookmarked = ?)", true),
			}).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetSettings returns the user's settings, creating the defaults if missing.
func (r *userRepository) GetSettings(ctx context.Context, userID uint) (*models.UserSettings, error) {
	settings := models.DefaultUserSettings(userID)
	if err := r.db.WithContext(ctx).Where(models.UserSettings{UserID: userID}).
		Attrs(settings).FirstOrCreate(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *userRepository) SaveSettings(ctx context.Context, settings *models.UserSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
