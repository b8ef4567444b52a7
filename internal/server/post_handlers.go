package server

import (
	"prompthub/internal/models"
	"prompthub/internal/repository"
	"prompthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary Post feed
// @Description Filter by category, platform and model ids (comma separated), search, and sort.
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Param search query string false "Search text (alias q)"
// @Param search_type query string false "all, title, content or title_content"
// @Param categories query string false "Category ids"
// @Param platforms query string false "Platform ids"
// @Param models query string false "Model ids"
// @Param exclude_id query int false "Post id to leave out"
// @Param author query string false "Author username"
// @Param sort query string false "latest, oldest, popular, satisfaction or views (alias sort_by)"
// @Success 200 {object} models.SuccessResponse{data=repository.Page[service.PostCard]}
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), postQuery(c), pageRequest(c, repository.DefaultPageSize), s.optionalUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// SearchPosts handles GET /api/posts/search
// @Summary Search posts
// @Description Same pipeline as the feed, keyed on q.
// @Tags posts
// @Produce json
// @Param q query string false "Search text"
// @Param search_type query string false "all, title, content or title_content"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.SuccessResponse{data=repository.Page[service.PostCard]}
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	q := postQuery(c)
	if q.SearchType == "" {
		q.SearchType = repository.SearchAll
	}
	page, err := s.postService.ListPosts(c.UserContext(), q, pageRequest(c, repository.DefaultPageSize), s.optionalUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// GetSortOptions handles GET /api/posts/sort-options
// @Summary Feed orderings
// @Tags posts
// @Produce json
// @Success 200 {object} models.SuccessResponse{data=[]repository.Option}
// @Router /posts/sort-options [get]
func (s *Server) GetSortOptions(c *fiber.Ctx) error {
	return models.RespondWithData(c, fiber.StatusOK, repository.SortOptions)
}

// GetPost handles GET /api/posts/:id
// @Summary Post detail
// @Description Counts a view and returns the post with rendered markdown.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.SuccessResponse{data=service.PostDetail}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id, s.optionalUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PostInput true "Post"
// @Success 201 {object} models.SuccessResponse{data=service.PostDetail}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.CreatePost(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusCreated, "Post created", post)
}

// UpdatePost handles PUT and PATCH /api/posts/:id. Omitted fields are kept.
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.PostInput true "Changed fields"
// @Success 200 {object} models.SuccessResponse{data=service.PostDetail}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:    currentUserID(c),
		PostID:    id,
		PostInput: req,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Post updated", post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Authors and admins only.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: id,
	}); err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Post deleted", nil)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Toggle like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.SuccessResponse{data=object{is_liked=bool,like_count=int}}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.toggle(c, models.InteractionLike)
}

// BookmarkPost handles POST /api/posts/:id/bookmark
// @Summary Toggle bookmark
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.SuccessResponse{data=object{is_bookmarked=bool,bookmark_count=int}}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/bookmark [post]
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	return s.toggle(c, models.InteractionBookmark)
}

func (s *Server) toggle(c *fiber.Ctx, kind models.InteractionKind) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	out, err := s.postService.Toggle(c.UserContext(), currentUserID(c), id, kind)
	if err != nil {
		return respondAppError(c, err)
	}
	if out.Message != "" {
		return models.RespondWithMessage(c, fiber.StatusOK, out.Message, out.Payload())
	}
	return models.RespondWithData(c, fiber.StatusOK, out.Payload())
}

// GetLikedPosts handles GET /api/posts/liked
// @Summary Liked posts
// @Description Most recently liked first unless sort is given.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort query string false "Sort key"
// @Success 200 {object} models.SuccessResponse{data=repository.Page[service.PostCard]}
// @Router /posts/liked [get]
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	return s.interacted(c, models.InteractionLike)
}

// GetBookmarkedPosts handles GET /api/posts/bookmarked
// @Summary Bookmarked posts
// @Description Most recently bookmarked first unless sort is given.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort query string false "Sort key"
// @Success 200 {object} models.SuccessResponse{data=repository.Page[service.PostCard]}
// @Router /posts/bookmarked [get]
func (s *Server) GetBookmarkedPosts(c *fiber.Ctx) error {
	return s.interacted(c, models.InteractionBookmark)
}

func (s *Server) interacted(c *fiber.Ctx, kind models.InteractionKind) error {
	page, err := s.postService.ListInteracted(c.UserContext(), currentUserID(c), kind, postQuery(c), pageRequest(c, repository.UserPageSize))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// GetMyPosts handles GET /api/posts/my
// @Summary My posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (default 20)"
// @Param sort query string false "latest, oldest, popular or views"
// @Param search query string false "Search text"
// @Success 200 {object} models.SuccessResponse{data=repository.Page[service.PostCard]}
// @Router /posts/my [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	q := postQuery(c)
	q.AuthorID = userID
	q.AuthorUsername = ""
	page, err := s.postService.ListPosts(c.UserContext(), q, pageRequest(c, repository.UserPageSize), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}
