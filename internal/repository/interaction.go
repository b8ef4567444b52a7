package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prompthub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult is the state after a like or bookmark toggle.
type ToggleResult struct {
	Active bool
	Count  int
	// Self is set when the author acted on their own post; nothing changed.
	Self bool
}

// InteractionFlags are one viewer's flags for one post.
type InteractionFlags struct {
	Liked      bool
	Bookmarked bool
}

// LastInteraction holds the latest like and bookmark times of a user.
type LastInteraction struct {
	LastLike     *time.Time
	LastBookmark *time.Time
}

// InteractionRepository defines like/bookmark persistence.
type InteractionRepository interface {
	Toggle(ctx context.Context, userID, postID uint, kind models.InteractionKind) (ToggleResult, error)
	Flags(ctx context.Context, userID uint, postIDs []uint) (map[uint]InteractionFlags, error)
	LastInteraction(ctx context.Context, userID uint) (LastInteraction, error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// Toggle flips the user's flag for the post and moves the post counter by
// one, floored at zero, inside a transaction holding a row lock on the post.
// Returns gorm.ErrRecordNotFound when the post does not exist.
func (r *interactionRepository) Toggle(ctx context.Context, userID, postID uint, kind models.InteractionKind) (ToggleResult, error) {
	var result ToggleResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var post models.Post
		if err := locked.Select("id", "author_id", "like_count", "bookmark_count").
			First(&post, postID).Error; err != nil {
			return err
		}

		if post.AuthorID == userID {
			result = ToggleResult{Self: true, Count: kind.Counter(&post)}
			return nil
		}

		var interaction models.PostInteraction
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&interaction).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			interaction = models.PostInteraction{UserID: userID, PostID: postID}
			kind.SetFlag(&interaction, true)
			if err := tx.Omit(clause.Associations).Create(&interaction).Error; err != nil {
				return fmt.Errorf("create interaction: %w", err)
			}
		case err != nil:
			return err
		default:
			kind.SetFlag(&interaction, !kind.Flag(&interaction))
			if err := tx.Model(&interaction).Update(kind.Column(), kind.Flag(&interaction)).Error; err != nil {
				return fmt.Errorf("update interaction: %w", err)
			}
		}

		active := kind.Flag(&interaction)
		counter := kind.CounterColumn()
		expr := gorm.Expr(counter + " + 1")
		if !active {
			expr = gorm.Expr(fmt.Sprintf("CASE WHEN %s > 0 THEN %s - 1 ELSE 0 END", counter, counter))
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn(counter, expr).Error; err != nil {
			return fmt.Errorf("update %s: %w", counter, err)
		}

		var count int
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Select(counter).Scan(&count).Error; err != nil {
			return err
		}

		result = ToggleResult{Active: active, Count: count}
		return nil
	})

	return result, err
}

// Flags returns the viewer's flags keyed by post id. Posts without an
// interaction row are absent.
func (r *interactionRepository) Flags(ctx context.Context, userID uint, postIDs []uint) (map[uint]InteractionFlags, error) {
	flags := make(map[uint]InteractionFlags, len(postIDs))
	if userID == 0 || len(postIDs) == 0 {
		return flags, nil
	}

	var rows []models.PostInteraction
	if err := r.db.WithContext(ctx).
		Select("post_id", "is_liked", "is_bookmarked").
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		flags[row.PostID] = InteractionFlags{Liked: row.IsLiked, Bookmarked: row.IsBookmarked}
	}
	return flags, nil
}

func (r *interactionRepository) LastInteraction(ctx context.Context, userID uint) (LastInteraction, error) {
	var out LastInteraction
	for _, kind := range []models.InteractionKind{models.InteractionLike, models.InteractionBookmark} {
		var row models.PostInteraction
		err := readDB(r.db).WithContext(ctx).
			Where("user_id = ?", userID).
			Where(kind.Column()+" = ?", true).
			Order("updated_at DESC").
			Limit(1).Find(&row).Error
		if err != nil {
			return out, err
		}
		if row.ID == 0 {
			continue
		}
		t := row.UpdatedAt
		if kind == models.InteractionLike {
			out.LastLike = &t
		} else {
			out.LastBookmark = &t
		}
	}
	return out, nil
}
