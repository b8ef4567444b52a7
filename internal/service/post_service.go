// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"prompthub/internal/cache"
	"prompthub/internal/featureflags"
	"prompthub/internal/matching"
	"prompthub/internal/middleware"
	"prompthub/internal/models"
	"prompthub/internal/observability"
	"prompthub/internal/repository"
)

type PostService struct {
	posts        repository.PostRepository
	interactions repository.InteractionRepository
	catalog      repository.CatalogRepository
	store        cache.Store
	flags        *featureflags.Manager
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
	now          func() time.Time
}

// TagsInput accepts tags either as a JSON array or as one comma-separated string.
type TagsInput []string

func (t *TagsInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*t = models.SplitTags(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = list
	return nil
}

// PostInput is the writable part of a post. Nil fields keep the current value
// on update. A zero model id clears the model.
type PostInput struct {
	Title             *string    `json:"title"`
	PlatformID        *uint      `json:"platform"`
	ModelID           *uint      `json:"model"`
	ModelEtc          *string    `json:"model_etc"`
	ModelDetail       *string    `json:"model_detail"`
	CategoryID        *uint      `json:"category"`
	CategoryEtc       *string    `json:"category_etc"`
	Tags              *TagsInput `json:"tags"`
	Prompt            *string    `json:"prompt"`
	AIResponse        *string    `json:"ai_response"`
	AdditionalOpinion *string    `json:"additional_opinion"`
	Satisfaction      *float64   `json:"satisfaction"`
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	PostInput
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// ToggleOutcome is the state of one flag after a like or bookmark toggle.
type ToggleOutcome struct {
	Kind    models.InteractionKind
	Active  bool
	Count   int
	Message string
}

// Payload is the response body, keyed by kind as clients expect.
func (o ToggleOutcome) Payload() map[string]any {
	if o.Kind == models.InteractionBookmark {
		return map[string]any{"is_bookmarked": o.Active, "bookmark_count": o.Count}
	}
	return map[string]any{"is_liked": o.Active, "like_count": o.Count}
}

func NewPostService(
	posts repository.PostRepository,
	interactions repository.InteractionRepository,
	catalog repository.CatalogRepository,
	store cache.Store,
	flags *featureflags.Manager,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		posts:        posts,
		interactions: interactions,
		catalog:      catalog,
		store:        store,
		flags:        flags,
		isAdmin:      isAdmin,
		now:          time.Now,
	}
}

// Cards converts posts to feed cards carrying the viewer's like and bookmark
// state. viewerID 0 is an anonymous viewer.
func (s *PostService) Cards(ctx context.Context, posts []models.Post, viewerID uint) ([]PostCard, error) {
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	flags, err := s.interactions.Flags(ctx, viewerID, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now()
	cards := make([]PostCard, len(posts))
	for i := range posts {
		cards[i] = newPostCard(&posts[i], flags[posts[i].ID], now)
	}
	return cards, nil
}

func (s *PostService) page(ctx context.Context, posts []models.Post, meta repository.PageMeta, viewerID uint) (repository.Page[PostCard], error) {
	cards, err := s.Cards(ctx, posts, viewerID)
	if err != nil {
		return repository.Page[PostCard]{}, err
	}
	return repository.Page[PostCard]{Results: cards, Pagination: meta}, nil
}

// ListPosts runs the feed pipeline.
func (s *PostService) ListPosts(ctx context.Context, q repository.PostQuery, page repository.PageRequest, viewerID uint) (repository.Page[PostCard], error) {
	posts, meta, err := s.posts.List(ctx, q, page)
	if err != nil {
		return repository.Page[PostCard]{}, models.NewInternalError(err)
	}
	return s.page(ctx, posts, meta, viewerID)
}

// ListInteracted lists the posts the user liked or bookmarked.
func (s *PostService) ListInteracted(ctx context.Context, userID uint, kind models.InteractionKind, q repository.PostQuery, page repository.PageRequest) (repository.Page[PostCard], error) {
	posts, meta, err := s.posts.ListInteracted(ctx, userID, kind, q, page)
	if err != nil {
		return repository.Page[PostCard]{}, models.NewInternalError(err)
	}
	return s.page(ctx, posts, meta, userID)
}

// ListMatching lists the posts a trending rule selects.
func (s *PostService) ListMatching(ctx context.Context, rule matching.KeywordRule, q repository.PostQuery, page repository.PageRequest, viewerID uint) (repository.Page[PostCard], error) {
	posts, meta, err := s.posts.ListMatching(ctx, rule, q, page)
	if err != nil {
		return repository.Page[PostCard]{}, models.NewInternalError(err)
	}
	return s.page(ctx, posts, meta, viewerID)
}

// GetPost counts a view and returns the post as the viewer sees it.
func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*PostDetail, error) {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return s.detail(ctx, id, viewerID)
}

func (s *PostService) detail(ctx context.Context, id, viewerID uint) (*PostDetail, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	flags, err := s.interactions.Flags(ctx, viewerID, []uint{id})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	render := s.flags.Enabled(featureflags.MarkdownRendering, viewerID)
	return newPostDetail(post, flags[id], viewerID, render, s.now()), nil
}

func (s *PostService) load(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint, in PostInput) (*PostDetail, error) {
	draft, err := s.draft(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: authorID}
	draft.Apply(post)
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.PostsCreated.Inc()
	s.invalidate(ctx, cache.DashboardStatsKey, cache.PopularTagsKey)
	middleware.Logger.InfoContext(ctx, "post created",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("author_id", uint64(authorID)),
	)
	return s.detail(ctx, post.ID, authorID)
}

// UpdatePost applies in to a post owned by in.UserID.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*PostDetail, error) {
	post, err := s.load(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You do not have permission to edit this post")
	}

	draft, err := s.draft(ctx, in.PostInput, post)
	if err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	draft.Apply(post)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.invalidate(ctx, cache.DashboardStatsKey, cache.PopularTagsKey)
	return s.detail(ctx, post.ID, in.UserID)
}

// DeletePost removes a post. Only its author or an admin may do so.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.load(ctx, in.PostID)
	if err != nil {
		return err
	}

	if post.AuthorID != in.UserID {
		admin := false
		if s.isAdmin != nil {
			if admin, err = s.isAdmin(ctx, in.UserID); err != nil {
				return models.NewInternalError(err)
			}
		}
		if !admin {
			return models.NewForbiddenError("You do not have permission to delete this post")
		}
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("Post", post.ID)
		}
		return models.NewInternalError(err)
	}

	s.invalidate(ctx, cache.DashboardStatsKey, cache.PopularTagsKey)
	return nil
}

// Toggle flips the viewer's like or bookmark on a post. Authors acting on
// their own post get the unchanged state and an explanatory message.
func (s *PostService) Toggle(ctx context.Context, userID, postID uint, kind models.InteractionKind) (ToggleOutcome, error) {
	res, err := s.interactions.Toggle(ctx, userID, postID, kind)
	if err != nil {
		if repository.IsNotFound(err) {
			return ToggleOutcome{}, models.NewNotFoundError("Post", postID)
		}
		return ToggleOutcome{}, models.NewInternalError(err)
	}

	out := ToggleOutcome{Kind: kind, Active: res.Active, Count: res.Count}
	if res.Self {
		if kind == models.InteractionBookmark {
			out.Message = "You cannot bookmark your own post"
		} else {
			out.Message = "You cannot like your own post"
		}
		return out, nil
	}

	state := "off"
	if res.Active {
		state = "on"
	}
	observability.InteractionToggles.WithLabelValues(string(kind), state).Inc()
	s.invalidate(ctx, cache.DashboardStatsKey)
	return out, nil
}

// Tags returns every tag with its usage count, cached.
func (s *PostService) Tags(ctx context.Context) ([]repository.TagCount, error) {
	var tags []repository.TagCount
	_, err := cache.Aside(ctx, s.store, cache.PopularTagsKey, &tags, cache.PopularTagsTTL, func() error {
		var err error
		tags, err = s.posts.TagCounts(ctx, 0)
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (s *PostService) invalidate(ctx context.Context, keys ...string) {
	if s.store != nil {
		cache.Invalidate(ctx, s.store, keys...)
	}
}

// draft merges in over base (nil when creating) and resolves the catalog
// references into tagged selections.
func (s *PostService) draft(ctx context.Context, in PostInput, base *models.Post) (*models.PostDraft, error) {
	d := &models.PostDraft{}
	var (
		platformID, categoryID        uint
		modelID                       *uint
		modelEtc, modelDetail, catEtc string
	)
	if base != nil {
		d.Title = base.Title
		d.Tags = base.TagList()
		d.Prompt = base.Prompt
		d.AIResponse = base.AIResponse
		d.AdditionalOpinion = base.AdditionalOpinion
		d.Satisfaction = base.Satisfaction
		platformID, modelID, categoryID = base.PlatformID, base.ModelID, base.CategoryID
		modelEtc, modelDetail, catEtc = base.ModelEtc, base.ModelDetail, base.CategoryEtc
	}

	if in.Title != nil {
		d.Title = *in.Title
	}
	if in.PlatformID != nil {
		// A model of the previous platform cannot follow a platform change.
		if *in.PlatformID != platformID && in.ModelID == nil {
			modelID = nil
		}
		platformID = *in.PlatformID
	}
	if in.ModelID != nil {
		modelID = nil
		if *in.ModelID != 0 {
			id := *in.ModelID
			modelID = &id
		}
	}
	if in.ModelEtc != nil {
		modelEtc = *in.ModelEtc
	}
	if in.ModelDetail != nil {
		modelDetail = *in.ModelDetail
	}
	if in.CategoryID != nil {
		categoryID = *in.CategoryID
	}
	if in.CategoryEtc != nil {
		catEtc = *in.CategoryEtc
	}
	if in.Tags != nil {
		d.Tags = []string(*in.Tags)
	}
	if in.Prompt != nil {
		d.Prompt = *in.Prompt
	}
	if in.AIResponse != nil {
		d.AIResponse = *in.AIResponse
	}
	if in.AdditionalOpinion != nil {
		d.AdditionalOpinion = *in.AdditionalOpinion
	}
	if in.Satisfaction != nil {
		v := *in.Satisfaction
		d.Satisfaction = &v
	}

	verr := models.NewValidationError("Validation failed")
	var (
		platform *models.Platform
		model    *models.AiModel
		category *models.Category
		err      error
	)
	if platformID != 0 {
		if platform, err = s.catalog.GetPlatform(ctx, platformID); err != nil {
			if !repository.IsNotFound(err) {
				return nil, models.NewInternalError(err)
			}
			verr.AddField("platform", "Selected platform does not exist")
		}
	}
	if modelID != nil {
		if model, err = s.catalog.GetModel(ctx, *modelID); err != nil {
			if !repository.IsNotFound(err) {
				return nil, models.NewInternalError(err)
			}
			verr.AddField("model", "Selected model does not exist")
		}
	}
	if categoryID != 0 {
		if category, err = s.catalog.GetCategory(ctx, categoryID); err != nil {
			if !repository.IsNotFound(err) {
				return nil, models.NewInternalError(err)
			}
			verr.AddField("category", "Selected category does not exist")
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	d.Platform = models.SelectPlatform(platform)
	d.Model = models.SelectModel(model, modelEtc)
	d.ModelDetail = modelDetail
	d.Category = models.SelectCategory(category, catEtc)
	return d, nil
}

// IsAppError reports whether err already carries an API error code.
func IsAppError(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr)
}
