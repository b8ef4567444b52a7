package models

import "time"

// PostInteraction holds one user's like and bookmark flags for one post.
type PostInteraction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_interactions_user_post" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID       uint      `gorm:"not null;uniqueIndex:idx_interactions_user_post;index" json:"post_id"`
	Post         Post      `gorm:"foreignKey:PostID" json:"-"`
	IsLiked      bool      `gorm:"not null" json:"is_liked"`
	IsBookmarked bool      `gorm:"not null" json:"is_bookmarked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`
}

// InteractionKind selects which flag a toggle flips.
type InteractionKind string

const (
	InteractionLike     InteractionKind = "like"
	InteractionBookmark InteractionKind = "bookmark"
)

// Column is the interaction flag column.
func (k InteractionKind) Column() string {
	if k == InteractionBookmark {
		return "is_bookmarked"
	}
	return "is_liked"
}

// CounterColumn is the denormalized counter on posts.
func (k InteractionKind) CounterColumn() string {
	if k == InteractionBookmark {
		return "bookmark_count"
	}
	return "like_count"
}

// Flag reads the kind's flag from i.
func (k InteractionKind) Flag(i *PostInteraction) bool {
	if k == InteractionBookmark {
		return i.IsBookmarked
	}
	return i.IsLiked
}

// SetFlag writes the kind's flag on i.
func (k InteractionKind) SetFlag(i *PostInteraction, v bool) {
	if k == InteractionBookmark {
		i.IsBookmarked = v
		return
	}
	i.IsLiked = v
}

// Counter reads the kind's counter from p.
func (k InteractionKind) Counter(p *Post) int {
	if k == InteractionBookmark {
		return p.BookmarkCount
	}
	return p.LikeCount
}
