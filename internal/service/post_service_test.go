package service

import (
	"context"
	"encoding/json"
	"testing"

	"prompthub/internal/cache"
	"prompthub/internal/models"
	"prompthub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want TagsInput
	}{
		{name: "array", raw: `["go", "fiber"]`, want: TagsInput{"go", "fiber"}},
		{name: "comma string", raw: `"go, fiber,,gorm "`, want: TagsInput{"go", "fiber", "gorm"}},
		{name: "empty string", raw: `""`, want: TagsInput{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got TagsInput
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &got))
			assert.Equal(t, tc.want, got)
		})
	}

	var bad TagsInput
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestPostService_CreatePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	in := e.validInput("Goroutine basics")
	in.Tags = &TagsInput{"go", "concurrency"}
	in.Satisfaction = ptr(4.5)
	in.ModelDetail = ptr("GPT-4o mini")

	detail, err := e.posts.CreatePost(ctx, e.alice.ID, in)
	require.NoError(t, err)
	assert.NotZero(t, detail.ID)
	assert.Equal(t, "alice", detail.Author)
	assert.Equal(t, "A", detail.AuthorInitial)
	assert.Equal(t, "GPT-4o mini", detail.ModelDisplayName)
	assert.Equal(t, "개발", detail.CategoryDisplayName)
	assert.Equal(t, []string{"go", "concurrency"}, detail.Tags)
	assert.True(t, detail.IsAuthor)
	assert.Equal(t, "방금 전", detail.RelativeTime)
	assert.Contains(t, detail.AIResponseHTML, "<strong>lightweight</strong>")
	assert.Equal(t, 4.5, *detail.Satisfaction)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*PostInput)
		field string
	}{
		{name: "short title", edit: func(in *PostInput) { in.Title = ptr("abc") }, field: "title"},
		{name: "short prompt", edit: func(in *PostInput) { in.Prompt = ptr("too short") }, field: "prompt"},
		{name: "missing platform", edit: func(in *PostInput) { in.PlatformID = nil; in.ModelID = nil }, field: "platform"},
		{name: "unknown platform", edit: func(in *PostInput) { in.PlatformID = ptr(uint(999)) }, field: "platform"},
		{name: "unknown model", edit: func(in *PostInput) { in.ModelID = ptr(uint(999)) }, field: "model"},
		{name: "unknown category", edit: func(in *PostInput) { in.CategoryID = ptr(uint(999)) }, field: "category"},
		{name: "other model without text", edit: func(in *PostInput) { in.ModelID = ptr(e.gptOther.ID) }, field: "model_etc"},
		{name: "model of another platform", edit: func(in *PostInput) { in.ModelID = ptr(e.claude.ID) }, field: "model"},
		{name: "detail on model without variants", edit: func(in *PostInput) {
			in.ModelID = ptr(e.o1.ID)
			in.ModelDetail = ptr("o1-preview")
		}, field: "model_detail"},
		{name: "satisfaction off step", edit: func(in *PostInput) { in.Satisfaction = ptr(4.3) }, field: "satisfaction"},
		{name: "other category without text", edit: func(in *PostInput) { in.CategoryID = ptr(e.otherCategory.ID) }, field: "category_etc"},
		{name: "blank tag", edit: func(in *PostInput) { in.Tags = &TagsInput{"go", " "} }, field: "tags"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := e.validInput("A valid title")
			tc.edit(&in)
			_, err := e.posts.CreatePost(ctx, e.alice.ID, in)
			appErr := assertAppError(t, err, models.ErrCodeValidation)
			assert.Contains(t, appErr.Fields, tc.field)
		})
	}
}

func TestPostService_CreatePost_OtherPlatform(t *testing.T) {
	e := newEnv(t)
	in := e.validInput("Local llama run")
	in.PlatformID = ptr(e.otherPlatform.ID)
	in.ModelID = ptr(e.otherModel.ID)
	in.ModelEtc = ptr("Llama 3 70B")

	detail, err := e.posts.CreatePost(context.Background(), e.bob.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Llama 3 70B", detail.ModelDisplayName)
}

func TestPostService_GetPost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	created := e.createPost(t, e.alice, "Counting views")

	detail, err := e.posts.GetPost(ctx, created.ID, e.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Views)
	assert.False(t, detail.IsAuthor)

	detail, err = e.posts.GetPost(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Views)
	assert.False(t, detail.IsAuthor)

	_, err = e.posts.GetPost(ctx, 9999, 0)
	assertAppError(t, err, models.ErrCodeNotFound)
}

func TestPostService_UpdatePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	created := e.createPost(t, e.alice, "Original title")

	t.Run("non author is forbidden", func(t *testing.T) {
		_, err := e.posts.UpdatePost(ctx, UpdatePostInput{UserID: e.bob.ID, PostID: created.ID, PostInput: PostInput{Title: ptr("Hijacked title")}})
		assertAppError(t, err, models.ErrCodeForbidden)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := e.posts.UpdatePost(ctx, UpdatePostInput{UserID: e.alice.ID, PostID: created.ID, PostInput: PostInput{Title: ptr("Renamed title")}})
		require.NoError(t, err)
		assert.Equal(t, "Renamed title", updated.Title)
		assert.Equal(t, created.Prompt, updated.Prompt)
		require.NotNil(t, updated.ModelID)
		assert.Equal(t, e.gpt4o.ID, *updated.ModelID)
	})

	t.Run("platform change drops the old model", func(t *testing.T) {
		updated, err := e.posts.UpdatePost(ctx, UpdatePostInput{UserID: e.alice.ID, PostID: created.ID, PostInput: PostInput{
			PlatformID: ptr(e.anthropic.ID),
			ModelEtc:   ptr("Claude 4 Opus"),
		}})
		require.NoError(t, err)
		assert.Nil(t, updated.ModelID)
		assert.Equal(t, e.anthropic.ID, updated.PlatformID)
		assert.Equal(t, "Claude 4 Opus", updated.ModelDisplayName)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := e.posts.UpdatePost(ctx, UpdatePostInput{UserID: e.alice.ID, PostID: 9999})
		assertAppError(t, err, models.ErrCodeNotFound)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	own := e.createPost(t, e.alice, "Delete me please")
	err := e.posts.DeletePost(ctx, DeletePostInput{UserID: e.bob.ID, PostID: own.ID})
	assertAppError(t, err, models.ErrCodeForbidden)

	require.NoError(t, e.posts.DeletePost(ctx, DeletePostInput{UserID: e.alice.ID, PostID: own.ID}))
	_, err = e.posts.GetPost(ctx, own.ID, 0)
	assertAppError(t, err, models.ErrCodeNotFound)

	// Admins may delete anyone's post.
	other := e.createPost(t, e.alice, "Moderated post")
	require.NoError(t, e.db.Model(&e.bob).Update("is_admin", true).Error)
	require.NoError(t, e.posts.DeletePost(ctx, DeletePostInput{UserID: e.bob.ID, PostID: other.ID}))
}

func TestPostService_Toggle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	post := e.createPost(t, e.alice, "Like target")

	t.Run("author cannot like own post", func(t *testing.T) {
		out, err := e.posts.Toggle(ctx, e.alice.ID, post.ID, models.InteractionLike)
		require.NoError(t, err)
		assert.False(t, out.Active)
		assert.Equal(t, 0, out.Count)
		assert.NotEmpty(t, out.Message)
		assert.Equal(t, map[string]any{"is_liked": false, "like_count": 0}, out.Payload())
	})

	t.Run("double toggle restores state", func(t *testing.T) {
		out, err := e.posts.Toggle(ctx, e.bob.ID, post.ID, models.InteractionBookmark)
		require.NoError(t, err)
		assert.True(t, out.Active)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, map[string]any{"is_bookmarked": true, "bookmark_count": 1}, out.Payload())

		detail, err := e.posts.GetPost(ctx, post.ID, e.bob.ID)
		require.NoError(t, err)
		assert.True(t, detail.IsBookmarked)

		out, err = e.posts.Toggle(ctx, e.bob.ID, post.ID, models.InteractionBookmark)
		require.NoError(t, err)
		assert.False(t, out.Active)
		assert.Equal(t, 0, out.Count)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := e.posts.Toggle(ctx, e.bob.ID, 9999, models.InteractionLike)
		assertAppError(t, err, models.ErrCodeNotFound)
	})
}

func TestPostService_ListInteracted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.createPost(t, e.alice, "First liked post")
	second := e.createPost(t, e.alice, "Second liked post")
	e.createPost(t, e.alice, "Never liked post")

	for _, id := range []uint{first.ID, second.ID} {
		_, err := e.posts.Toggle(ctx, e.bob.ID, id, models.InteractionLike)
		require.NoError(t, err)
	}

	page, err := e.posts.ListInteracted(ctx, e.bob.ID, models.InteractionLike, repository.PostQuery{},
		repository.ParsePageRequest("", "", repository.UserPageSize))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.TotalCount)
	for _, card := range page.Results {
		assert.True(t, card.IsLiked)
		assert.Equal(t, 1, card.Likes)
	}
}

func TestPostService_Tags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	in := e.validInput("Tagged post one")
	in.Tags = &TagsInput{"go", "fiber"}
	_, err := e.posts.CreatePost(ctx, e.alice.ID, in)
	require.NoError(t, err)

	tags, err := e.posts.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repository.TagCount{{Name: "fiber", Count: 1}, {Name: "go", Count: 1}}, tags)

	// Creating a post drops the cached list.
	in = e.validInput("Tagged post two")
	in.Tags = &TagsInput{"go"}
	_, err = e.posts.CreatePost(ctx, e.bob.ID, in)
	require.NoError(t, err)

	_, cached, err := e.store.Get(ctx, cache.PopularTagsKey)
	require.NoError(t, err)
	assert.False(t, cached)

	tags, err = e.posts.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.TagCount{Name: "go", Count: 2}, tags[0])
}
