package models

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	TitleMinLength    = 5
	TitleMaxLength    = 200
	BodyMinLength     = 10
	FreeTextMaxLength = 100
	MaxTags           = 10
	MaxTagLength      = 50
	SatisfactionMin   = 0.5
	SatisfactionMax   = 5.0
)

// Post is a shared prompt together with the AI response it produced.
type Post struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"size:200;not null" json:"title"`
	AuthorID          uint      `gorm:"not null;index" json:"author_id"`
	Author            User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	PlatformID        uint      `gorm:"not null;index" json:"platform_id"`
	Platform          Platform  `gorm:"foreignKey:PlatformID" json:"platform"`
	ModelID           *uint     `gorm:"index" json:"model_id"`
	Model             *AiModel  `gorm:"foreignKey:ModelID;constraint:OnDelete:SET NULL" json:"model,omitempty"`
	ModelEtc          string    `gorm:"size:100;not null;default:''" json:"model_etc"`
	ModelDetail       string    `gorm:"size:100;not null;default:''" json:"model_detail"`
	CategoryID        uint      `gorm:"not null;index" json:"category_id"`
	Category          Category  `gorm:"foreignKey:CategoryID" json:"category"`
	CategoryEtc       string    `gorm:"size:100;not null;default:''" json:"category_etc"`
	Tags              string    `gorm:"type:text;not null;default:''" json:"tags"`
	Prompt            string    `gorm:"type:text;not null" json:"prompt"`
	AIResponse        string    `gorm:"column:ai_response;type:text;not null" json:"ai_response"`
	AdditionalOpinion string    `gorm:"type:text;not null;default:''" json:"additional_opinion"`
	Satisfaction      *float64  `gorm:"type:decimal(3,1)" json:"satisfaction"`
	ViewCount         int       `gorm:"not null;default:0" json:"view_count"`
	LikeCount         int       `gorm:"not null;default:0" json:"like_count"`
	BookmarkCount     int       `gorm:"not null;default:0" json:"bookmark_count"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Interactions []PostInteraction `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// ModelDisplayName is the model label shown on cards.
func (p *Post) ModelDisplayName() string {
	if p.ModelDetail != "" {
		return p.ModelDetail
	}
	if p.Model != nil {
		if p.Model.IsOther() && p.ModelEtc != "" {
			return p.ModelEtc
		}
		return p.Model.Name
	}
	if p.ModelEtc != "" {
		return p.ModelEtc
	}
	return OtherName
}

// CategoryDisplayName is the category label shown on cards.
func (p *Post) CategoryDisplayName() string {
	if p.Category.IsOther() && p.CategoryEtc != "" {
		return p.CategoryEtc
	}
	return p.Category.Name
}

// TagList splits the stored comma-joined tags.
func (p *Post) TagList() []string {
	return SplitTags(p.Tags)
}

// SplitTags splits a comma-joined tag string, dropping blanks.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags stores tags in their persisted comma-joined form.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ", ")
}

// PostDraft is a post's content after catalog lookups, before persistence.
type PostDraft struct {
	Title             string
	Platform          PlatformSelection
	Model             ModelSelection
	ModelDetail       string
	Category          CategorySelection
	Tags              []string
	Prompt            string
	AIResponse        string
	AdditionalOpinion string
	Satisfaction      *float64
}

// Validate enforces the post content rules and returns a validation
// AppError listing every offending field.
func (d *PostDraft) Validate() error {
	verr := NewValidationError("")
	add := func(field, msg string) {
		if verr.Message == "" {
			verr.Message = msg
		}
		verr.AddField(field, msg)
	}

	title := strings.TrimSpace(d.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		add("title", "Title is required")
	case n < TitleMinLength:
		add("title", "Title must be at least 5 characters")
	case n > TitleMaxLength:
		add("title", "Title must be at most 200 characters")
	}

	if utf8.RuneCountInString(strings.TrimSpace(d.Prompt)) < BodyMinLength {
		add("prompt", "Prompt must be at least 10 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.AIResponse)) < BodyMinLength {
		add("ai_response", "AI response must be at least 10 characters")
	}

	detail := strings.TrimSpace(d.ModelDetail)
	if utf8.RuneCountInString(d.Model.FreeText) > FreeTextMaxLength {
		add("model_etc", "Custom model name must be at most 100 characters")
	}
	if utf8.RuneCountInString(detail) > FreeTextMaxLength {
		add("model_detail", "Model detail must be at most 100 characters")
	}

	switch d.Platform.Kind {
	case SelectionNone:
		add("platform", "Platform is required")
	case SelectionOther:
		if d.Model.Kind == SelectionNamed {
			add("model", "Only the Other model can be chosen for the Other platform")
		}
		if d.Model.FreeText == "" {
			add("model_etc", "A custom model name is required for the Other platform")
		}
		if detail != "" {
			add("model_detail", "Model detail cannot be set for the Other platform")
		}
	case SelectionNamed:
		if d.Model.Kind == SelectionNone && d.Model.FreeText == "" {
			add("model", "Select a model or enter a custom model name")
		}
	}

	if d.Model.Model != nil && d.Platform.Platform != nil && d.Model.Model.PlatformID != d.Platform.Platform.ID {
		add("model", "Model does not belong to the selected platform")
	}

	switch d.Model.Kind {
	case SelectionOther:
		if d.Model.FreeText == "" && d.Platform.Kind != SelectionOther {
			add("model_etc", "A custom model name is required when the model is Other")
		}
		if detail != "" && d.Platform.Kind != SelectionOther {
			add("model_detail", "Model detail cannot be set when the model is Other")
		}
	case SelectionNone:
		if detail != "" {
			add("model_detail", "Model detail requires a concrete model")
		}
	case SelectionNamed:
		if detail != "" && !d.Model.Model.VariantFreeTextAllowed {
			add("model_detail", "This model does not accept a detail name")
		}
	}

	switch d.Category.Kind {
	case SelectionNone:
		add("category", "Category is required")
	case SelectionOther:
		if d.Category.FreeText == "" {
			add("category_etc", "A custom category name is required when the category is Other")
		}
	}
	if utf8.RuneCountInString(d.Category.FreeText) > FreeTextMaxLength {
		add("category_etc", "Custom category name must be at most 100 characters")
	}

	if len(d.Tags) > MaxTags {
		add("tags", "At most 10 tags are allowed")
	}
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			add("tags", "Tags cannot be blank")
			break
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			add("tags", "Each tag must be at most 50 characters")
			break
		}
	}

	if d.Satisfaction != nil && !ValidSatisfaction(*d.Satisfaction) {
		add("satisfaction", "Satisfaction must be between 0.5 and 5.0 in steps of 0.5")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// ValidSatisfaction reports whether v is a multiple of 0.5 within [0.5, 5.0].
func ValidSatisfaction(v float64) bool {
	if v < SatisfactionMin || v > SatisfactionMax {
		return false
	}
	doubled := v * 2
	return math.Abs(doubled-math.Round(doubled)) < 1e-9
}

// Apply copies the validated draft onto p.
func (d *PostDraft) Apply(p *Post) {
	p.Title = strings.TrimSpace(d.Title)
	if d.Platform.Platform != nil {
		p.PlatformID = d.Platform.Platform.ID
		p.Platform = *d.Platform.Platform
	}
	p.Model = d.Model.Model
	p.ModelID = nil
	if d.Model.Model != nil {
		id := d.Model.Model.ID
		p.ModelID = &id
	}
	p.ModelEtc = d.Model.FreeText
	p.ModelDetail = strings.TrimSpace(d.ModelDetail)
	if d.Category.Category != nil {
		p.CategoryID = d.Category.Category.ID
		p.Category = *d.Category.Category
	}
	p.CategoryEtc = d.Category.FreeText
	p.Tags = JoinTags(d.Tags)
	p.Prompt = d.Prompt
	p.AIResponse = d.AIResponse
	p.AdditionalOpinion = d.AdditionalOpinion
	p.Satisfaction = d.Satisfaction
}
