package models

import "time"

// TrendingCategory groups ranking entries shown on the trending page.
type TrendingCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Subtitle  string    `gorm:"size:200;not null;default:''" json:"subtitle"`
	IconName  string    `gorm:"size:50;not null;default:''" json:"icon_name"`
	Order     int       `gorm:"column:display_order;not null;default:0" json:"order"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rankings []TrendingRanking `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"rankings,omitempty"`
}

// TrendingRanking is one ranked entry. Rank is unique within a category.
type TrendingRanking struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	CategoryID          uint              `gorm:"not null;uniqueIndex:idx_trending_rank" json:"category_id"`
	Category            *TrendingCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Rank                int               `gorm:"not null;uniqueIndex:idx_trending_rank" json:"rank"`
	Name                string            `gorm:"size:100;not null;index" json:"name"`
	Score               string            `gorm:"size:50;not null;default:''" json:"score"`
	Provider            string            `gorm:"size:50;not null;default:''" json:"provider"`
	IsActive            bool              `gorm:"not null;default:true" json:"is_active"`
	RelatedModelID      *uint             `gorm:"index" json:"related_model_id"`
	RelatedModel        *AiModel          `gorm:"foreignKey:RelatedModelID;constraint:OnDelete:SET NULL" json:"related_model,omitempty"`
	UseExactMatching    bool              `gorm:"not null" json:"use_exact_matching"`
	ModelDetailContains string            `gorm:"size:100;not null;default:''" json:"model_detail_contains"`
	ModelEtcContains    string            `gorm:"size:100;not null;default:''" json:"model_etc_contains"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}
