package seed

import (
	"fmt"

	"prompthub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInPlatform is a platform and its models in release order.
type BuiltInPlatform struct {
	Name   string
	Models []string
}

// BuiltInPlatforms defines the default catalog. Every platform ends with the
// free-text "기타" model.
var BuiltInPlatforms = []BuiltInPlatform{
	{Name: "OpenAI", Models: []string{
		"GPT-3.5 Turbo", "GPT-4", "GPT-4 Turbo", "GPT-4.1", "GPT-4.1 mini", "GPT-4.1 nano",
		"GPT-4.5", "GPT-4o", "GPT-4o mini", "o1", "o3", "o3-mini", "o3-pro", "o4-mini",
		"GPT OSS 20B", "GPT OSS 120B", "GPT-5 nano", "GPT-5 mini", "GPT-5",
	}},
	{Name: "Anthropic", Models: []string{
		"Claude 3 Haiku", "Claude 3 Sonnet", "Claude 3 Opus", "Claude 3.5 Haiku", "Claude 3.5 Sonnet",
		"Claude 3.7 Sonnet", "Claude 4 Sonnet", "Claude 4 Opus", "Claude 4.1 Opus",
	}},
	{Name: "Google", Models: []string{
		"Gemini 1.0 Pro", "Gemini 1.5 Pro", "Gemini 1.5 Flash", "Gemini 1.5 Flash 8B",
		"Gemini 2.0 Flash", "Gemini 2.0 Flash-Lite", "Gemini 2.0 Flash Thinking",
		"Gemini 2.5 Pro", "Gemini 2.5 Flash", "Gemini 2.5 Flash-Lite",
		"Gemma 2 9B", "Gemma 2 27B", "Gemma 3 4B", "Gemma 3 12B", "Gemma 3 27B",
	}},
	{Name: "xAI", Models: []string{
		"Grok-1.5", "Grok-2 mini", "Grok-2", "Grok-3 Mini", "Grok-3", "Grok-4", "Grok-4 Heavy",
	}},
	{Name: "Meta", Models: []string{
		"Llama 3.1 8B Instruct", "Llama 3.1 70B Instruct", "Llama 3.1 405B Instruct",
		"Llama 3.2 3B Instruct", "Llama 3.2 90B Instruct", "Llama 3.3 70B Instruct",
		"Llama 4 Maverick", "Llama 4 Scout",
	}},
	{Name: "Mistral", Models: []string{
		"Mistral Small", "Mistral NeMo Instruct", "Mistral Large 2", "Pixtral Large",
		"Codestral-22B", "Magistral Medium", "Devstral Medium",
	}},
	{Name: "DeepSeek", Models: []string{
		"DeepSeek-V2.5", "DeepSeek-V3", "DeepSeek-R1", "DeepSeek-R1-0528",
	}},
	{Name: models.OtherName},
}

// BuiltInCategories are the post categories, "기타" last.
var BuiltInCategories = []string{
	"코딩/프로그래밍",
	"일반지식/학습",
	"글쓰기/번역",
	"AI/자연어처리",
	"취업/커리어",
	"생활정보/상담",
	"문화/엔터테인먼트/게임",
	"비즈니스/경제",
	"기술문서/요약",
	"데이터분석/통계",
	models.OtherName,
}

// Catalog seeds the built-in platforms, models and categories. Existing rows
// keep their IDs; sort orders are refreshed. Safe to run repeatedly.
func Catalog(db *gorm.DB) error {
	for _, item := range BuiltInPlatforms {
		err := db.Transaction(func(tx *gorm.DB) error {
			platform := models.Platform{Name: item.Name, IsActive: true}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
			}).Create(&platform).Error; err != nil {
				return err
			}
			if platform.ID == 0 {
				if err := tx.Where("name = ?", item.Name).First(&platform).Error; err != nil {
					return err
				}
			}

			names := append(append([]string{}, item.Models...), models.OtherName)
			for i, name := range names {
				model := models.AiModel{
					PlatformID:             platform.ID,
					Name:                   name,
					SortOrder:              i + 1,
					IsActive:               true,
					VariantFreeTextAllowed: !models.IsOtherName(name),
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "platform_id"}, {Name: "name"}},
					DoUpdates: clause.AssignmentColumns([]string{"sort_order", "updated_at"}),
				}).Create(&model).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed platform %s: %w", item.Name, err)
		}
	}

	for _, name := range BuiltInCategories {
		category := models.Category{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	return nil
}
