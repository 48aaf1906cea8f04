package blogservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blogmhq/blogm/internal/common"
)

func NewBlogService(db *sql.DB, c *common.Cache) *BlogService {
	return &BlogService{m: newBlogModel(db), c: c}
}

type CreateBlogRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	ImageURL    string `json:"blog_image_url"`
	IsPublished bool   `json:"is_published"`
	AuthorID    string `json:"-"`
}

// CreateBlog derives the slug from the title and rejects the blog before
// persistence when another blog already owns that slug. The unique constraint
// on slug catches the remaining create/create race.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateUUID(v, req.AuthorID, "author")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	slug := GenerateSlug(req.Title)

	exists, err := s.m.slugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSlug
	}

	blog := Blog{
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Content:     sanitizeMarkdown(req.Content),
		ImageURL:    req.ImageURL,
		AuthorID:    req.AuthorID,
		IsPublished: req.IsPublished,
	}

	if err := s.m.insert(ctx, &blog); err != nil {
		return nil, err
	}

	return &blog, nil
}

// GetBlogByID returns a blog post with its author name, reading through the
// cache.
func (s *BlogService) GetBlogByID(ctx context.Context, id string) (*Blog, error) {
	v := common.NewValidator()
	validateUUID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		return cached.(*Blog), nil
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), blog)

	return blog, nil
}

// GetBlogs returns all blog posts. Default limit is 10 and default offset is 0.
func (s *BlogService) GetBlogs(ctx context.Context, limit, offset int) ([]Blog, error) {
	if limit < 1 {
		limit = 10
	}

	if offset < 0 {
		offset = 0
	}

	return s.m.getBlogs(ctx, limit, offset)
}

type UpdateBlogRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

// UpdateBlog applies the provided fields to an existing blog. Only the author
// may update it; ownership is checked by the caller against the fetched blog.
func (s *BlogService) UpdateBlog(ctx context.Context, id string, req *UpdateBlogRequest) (*Blog, error) {
	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Description != nil {
		blog.Description = *req.Description
	}
	if req.Content != nil {
		blog.Content = sanitizeMarkdown(*req.Content)
	}
	if req.IsPublished != nil {
		blog.IsPublished = *req.IsPublished
	}

	v := common.NewValidator()
	validateTitle(v, blog.Title)
	validateContent(v, blog.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.updateBlog(ctx, blog); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlog(id))

	return blog, nil
}

// DeleteBlog soft-deletes a blog post.
func (s *BlogService) DeleteBlog(ctx context.Context, id string) error {
	v := common.NewValidator()
	validateUUID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.deleteBlog(ctx, id); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(id))
	s.c.Delete(common.CacheKeyBlogLikes(id))

	return nil
}

// AddComment creates a comment against an existing blog. A missing blog is
// reported before any insert happens.
func (s *BlogService) AddComment(ctx context.Context, blogID, authorID, content string) (*Comment, error) {
	v := common.NewValidator()
	validateUUID(v, blogID, "blog_id")
	validateUUID(v, authorID, "author")
	validateContent(v, content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	exists, err := s.m.blogExists(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}

	comment := Comment{
		Content:  content,
		AuthorID: authorID,
		BlogID:   blogID,
	}

	if err := s.m.insertComment(ctx, &comment); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (s *BlogService) GetComments(ctx context.Context, blogID string) ([]Comment, error) {
	v := common.NewValidator()
	validateUUID(v, blogID, "blog_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getComments(ctx, blogID)
}

// ToggleLike flips the liked state for the (user, blog) pair: absent creates,
// present deletes. The blog must exist before the like table is touched. When
// a concurrent toggle wins the insert race the unique constraint fires and the
// pair is already in the liked state, so that outcome is returned as liked.
func (s *BlogService) ToggleLike(ctx context.Context, userID, blogID string) (*LikeOutcome, error) {
	v := common.NewValidator()
	validateUUID(v, userID, "user")
	validateUUID(v, blogID, "blog_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	exists, err := s.m.blogExists(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}

	existing, err := s.m.getLike(ctx, userID, blogID)
	switch {
	case err == nil:
		if err := s.m.deleteLike(ctx, existing.ID); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return nil, err
		}
		s.c.Delete(common.CacheKeyBlogLikes(blogID))
		return &LikeOutcome{Liked: false}, nil
	case errors.Is(err, ErrRecordNotFound):
		like := Like{UserID: userID, BlogID: blogID}
		err := s.m.insertLike(ctx, &like)
		if errors.Is(err, ErrDuplicateLike) {
			won, err := s.m.getLike(ctx, userID, blogID)
			if err != nil {
				return nil, err
			}
			s.c.Delete(common.CacheKeyBlogLikes(blogID))
			return &LikeOutcome{Liked: true, Like: won}, nil
		}
		if err != nil {
			return nil, err
		}
		s.c.Delete(common.CacheKeyBlogLikes(blogID))
		return &LikeOutcome{Liked: true, Like: &like}, nil
	default:
		return nil, err
	}
}

// GetLikes lists likes for a blog. An unknown blog id yields an empty list,
// not an error.
func (s *BlogService) GetLikes(ctx context.Context, blogID string) ([]Like, error) {
	v := common.NewValidator()
	validateUUID(v, blogID, "blog_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlogLikes(blogID)); ok {
		return cached.([]Like), nil
	}

	likes, err := s.m.getLikes(ctx, blogID)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlogLikes(blogID), likes)

	return likes, nil
}
