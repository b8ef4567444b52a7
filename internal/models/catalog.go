package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Platform is an AI vendor such as OpenAI or Anthropic.
type Platform struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"size:60;uniqueIndex;not null" json:"slug"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Models []AiModel `gorm:"foreignKey:PlatformID;constraint:OnDelete:CASCADE" json:"models,omitempty"`
}

func (p *Platform) BeforeSave(tx *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	if strings.TrimSpace(p.Slug) != "" {
		return nil
	}
	slug, err := uniqueSlug(tx, &Platform{}, baseSlug(p.Name, "platform"), p.ID, nil)
	if err != nil {
		return err
	}
	p.Slug = slug
	return nil
}

// AiModel is a model offered by a platform. Name and slug are unique per platform.
type AiModel struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	PlatformID             uint       `gorm:"not null;uniqueIndex:idx_ai_models_platform_name;uniqueIndex:idx_ai_models_platform_slug" json:"platform_id"`
	Platform               *Platform  `gorm:"foreignKey:PlatformID" json:"platform,omitempty"`
	Name                   string     `gorm:"size:100;not null;uniqueIndex:idx_ai_models_platform_name" json:"name"`
	Slug                   string     `gorm:"size:120;not null;uniqueIndex:idx_ai_models_platform_slug" json:"slug"`
	SortOrder              int        `gorm:"not null;default:0;index" json:"sort_order"`
	ReleasedAt             *time.Time `json:"released_at,omitempty"`
	IsActive               bool       `gorm:"not null;default:true" json:"is_active"`
	IsDeprecated           bool       `gorm:"not null" json:"is_deprecated"`
	DeletedAt              *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	VariantFreeTextAllowed bool       `gorm:"not null" json:"variant_free_text_allowed"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// IsOther reports whether the model is the platform's free-text entry.
func (m *AiModel) IsOther() bool {
	return IsOtherName(m.Name)
}

func (m *AiModel) BeforeSave(tx *gorm.DB) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.IsOther() {
		m.VariantFreeTextAllowed = false
	}
	if strings.TrimSpace(m.Slug) != "" {
		return nil
	}
	platformID := m.PlatformID
	slug, err := uniqueSlug(tx, &AiModel{}, baseSlug(m.Name, "model"), m.ID, func(q *gorm.DB) *gorm.DB {
		return q.Where("platform_id = ?", platformID)
	})
	if err != nil {
		return err
	}
	m.Slug = slug
	return nil
}

// Category is a post topic.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOther reports whether the category is the free-text entry.
func (c *Category) IsOther() bool {
	return IsOtherName(c.Name)
}
