package service

import (
	"fmt"
	"time"

	"prompthub/internal/markdown"
	"prompthub/internal/models"
	"prompthub/internal/repository"
)

const excerptLength = 120

// PostCard is a post as listed in feeds.
type PostCard struct {
	ID                  uint      `json:"id"`
	Title               string    `json:"title"`
	Author              string    `json:"author"`
	AuthorInitial       string    `json:"authorInitial"`
	AvatarSrc           *string   `json:"avatarSrc"`
	AuthorAvatarColor1  string    `json:"authorAvatarColor1"`
	AuthorAvatarColor2  string    `json:"authorAvatarColor2"`
	CreatedAt           time.Time `json:"createdAt"`
	RelativeTime        string    `json:"relativeTime"`
	Views               int       `json:"views"`
	PlatformID          uint      `json:"platformId"`
	ModelID             *uint     `json:"modelId"`
	CategoryID          uint      `json:"categoryId"`
	ModelEtc            string    `json:"modelEtc"`
	ModelDetail         string    `json:"modelDetail"`
	CategoryEtc         string    `json:"categoryEtc"`
	ModelDisplayName    string    `json:"modelDisplayName"`
	CategoryDisplayName string    `json:"categoryDisplayName"`
	Likes               int       `json:"likes"`
	IsLiked             bool      `json:"isLiked"`
	Bookmarks           int       `json:"bookmarks"`
	IsBookmarked        bool      `json:"isBookmarked"`
	Satisfaction        *float64  `json:"satisfaction"`
	Tags                []string  `json:"tags"`
	Excerpt             string    `json:"excerpt"`
}

// PostDetail is a single post with its full content.
type PostDetail struct {
	PostCard
	Prompt                string `json:"prompt"`
	AIResponse            string `json:"aiResponse"`
	AdditionalOpinion     string `json:"additionalOpinion"`
	AIResponseHTML        string `json:"aiResponseHtml,omitempty"`
	AdditionalOpinionHTML string `json:"additionalOpinionHtml,omitempty"`
	IsAuthor              bool   `json:"isAuthor"`
}

// RelativeTime renders how long ago t was, in Korean.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "날짜 없음"
	}
	seconds := now.Sub(t).Seconds()
	days := int(seconds / 86400)
	switch {
	case seconds < 60:
		return "방금 전"
	case seconds < 3600:
		return fmt.Sprintf("%d분 전", int(seconds/60))
	case seconds < 86400:
		return fmt.Sprintf("%d시간 전", int(seconds/3600))
	case seconds < 7*86400:
		return fmt.Sprintf("%d일 전", days)
	case days < 30:
		return fmt.Sprintf("%d주 전", days/7)
	case days < 365:
		return fmt.Sprintf("%d개월 전", days/30)
	default:
		return fmt.Sprintf("%d년 전", days/365)
	}
}

func newPostCard(p *models.Post, flags repository.InteractionFlags, now time.Time) PostCard {
	card := PostCard{
		ID:                  p.ID,
		Title:               p.Title,
		Author:              p.Author.Username,
		AuthorInitial:       p.Author.Initial(),
		AuthorAvatarColor1:  p.Author.AvatarColor1,
		AuthorAvatarColor2:  p.Author.AvatarColor2,
		CreatedAt:           p.CreatedAt,
		RelativeTime:        RelativeTime(p.CreatedAt, now),
		Views:               p.ViewCount,
		PlatformID:          p.PlatformID,
		ModelID:             p.ModelID,
		CategoryID:          p.CategoryID,
		ModelEtc:            p.ModelEtc,
		ModelDetail:         p.ModelDetail,
		CategoryEtc:         p.CategoryEtc,
		ModelDisplayName:    p.ModelDisplayName(),
		CategoryDisplayName: p.CategoryDisplayName(),
		Likes:               p.LikeCount,
		IsLiked:             flags.Liked,
		Bookmarks:           p.BookmarkCount,
		IsBookmarked:        flags.Bookmarked,
		Satisfaction:        p.Satisfaction,
		Tags:                p.TagList(),
		Excerpt:             markdown.Excerpt(p.AIResponse, excerptLength),
	}
	if p.Author.AvatarURL != "" {
		src := p.Author.AvatarURL
		card.AvatarSrc = &src
	}
	return card
}

func newPostDetail(p *models.Post, flags repository.InteractionFlags, viewerID uint, renderHTML bool, now time.Time) *PostDetail {
	detail := &PostDetail{
		PostCard:          newPostCard(p, flags, now),
		Prompt:            p.Prompt,
		AIResponse:        p.AIResponse,
		AdditionalOpinion: p.AdditionalOpinion,
		IsAuthor:          viewerID != 0 && viewerID == p.AuthorID,
	}
	if renderHTML {
		detail.AIResponseHTML = markdown.Render(p.AIResponse)
		detail.AdditionalOpinionHTML = markdown.Render(p.AdditionalOpinion)
	}
	return detail
}
