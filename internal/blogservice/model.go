package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("duplicate slug")
	ErrDuplicateLike  = errors.New("duplicate like")
	ErrUserForeignKey = errors.New("user does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// constraintError is a helper function to check if the error carries the named
// postgres constraint with one of the given codes.
func constraintError(err error, code pq.ErrorCode, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == code && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, slug, description, content, blog_image_url, author, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	args := []any{
		blog.Title,
		blog.Slug,
		blog.Description,
		blog.Content,
		blog.ImageURL,
		blog.AuthorID,
		blog.IsPublished,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		switch {
		case constraintError(err, "23505", "blogs_slug_key"):
			return ErrDuplicateSlug
		case constraintError(err, "23503", "blogs_author_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// slugExists short-circuits creation before the insert is attempted; the
// unique constraint on slug remains the backstop for concurrent creates.
func (m *BlogModel) slugExists(ctx context.Context, slug string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM blogs WHERE slug = $1)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// getBlogById joins the users table for the author display name. Soft-deleted
// blogs are treated as missing.
func (m *BlogModel) getBlogById(ctx context.Context, id string) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.slug, b.description, b.content, b.blog_image_url, b.author, b.is_published, b.created_at, b.updated_at, u.name
		FROM blogs b
		JOIN users u ON b.author = u.id
		WHERE b.id = $1 AND b.deleted_at IS NULL`

	row := m.db.QueryRowContext(ctx, query, id)

	var blog Blog
	err := row.Scan(&blog.ID, &blog.Title, &blog.Slug, &blog.Description, &blog.Content, &blog.ImageURL, &blog.AuthorID, &blog.IsPublished, &blog.CreatedAt, &blog.UpdatedAt, &blog.AuthorName)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

func (m *BlogModel) getBlogs(ctx context.Context, limit, offset int) ([]Blog, error) {
	query := `
		SELECT b.id, b.title, b.slug, b.description, b.content, b.blog_image_url, b.author, b.is_published, b.created_at, b.updated_at, u.name
		FROM blogs b
		JOIN users u ON b.author = u.id
		WHERE b.deleted_at IS NULL
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var blog Blog
		err := rows.Scan(&blog.ID, &blog.Title, &blog.Slug, &blog.Description, &blog.Content, &blog.ImageURL, &blog.AuthorID, &blog.IsPublished, &blog.CreatedAt, &blog.UpdatedAt, &blog.AuthorName)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) updateBlog(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, description = $2, content = $3, is_published = $4, updated_at = now()
		WHERE id = $5 AND deleted_at IS NULL
		RETURNING created_at, updated_at`

	err := m.db.QueryRowContext(ctx, query, blog.Title, blog.Description, blog.Content, blog.IsPublished, blog.ID).Scan(&blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// deleteBlog soft-deletes: the row stays for its comments and likes, reads
// filter it out.
func (m *BlogModel) deleteBlog(ctx context.Context, id string) error {
	query := `
		UPDATE blogs
		SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogModel) blogExists(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM blogs WHERE id = $1 AND deleted_at IS NULL)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (m *BlogModel) insertComment(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (content, author, blog_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := m.db.QueryRowContext(ctx, query, comment.Content, comment.AuthorID, comment.BlogID).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		switch {
		case constraintError(err, "23503", "comments_blog_id_fkey"):
			return ErrRecordNotFound
		case constraintError(err, "23503", "comments_author_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) getComments(ctx context.Context, blogID string) ([]Comment, error) {
	query := `
		SELECT id, content, author, blog_id, created_at
		FROM comments
		WHERE blog_id = $1
		ORDER BY created_at ASC`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.Content, &c.AuthorID, &c.BlogID, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (m *BlogModel) getLike(ctx context.Context, userID, blogID string) (*Like, error) {
	query := `
		SELECT id, user_id, blog_id, created_at
		FROM likes
		WHERE user_id = $1 AND blog_id = $2`

	var like Like
	err := m.db.QueryRowContext(ctx, query, userID, blogID).Scan(&like.ID, &like.UserID, &like.BlogID, &like.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &like, nil
}

func (m *BlogModel) insertLike(ctx context.Context, like *Like) error {
	query := `
		INSERT INTO likes (user_id, blog_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := m.db.QueryRowContext(ctx, query, like.UserID, like.BlogID).Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		switch {
		case constraintError(err, "23505", "likes_user_id_blog_id_key"):
			return ErrDuplicateLike
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) deleteLike(ctx context.Context, id string) error {
	query := `
		DELETE FROM likes
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// getLikes never checks blog existence: likes for an unknown blog are simply
// an empty set.
func (m *BlogModel) getLikes(ctx context.Context, blogID string) ([]Like, error) {
	query := `
		SELECT id, user_id, blog_id, created_at
		FROM likes
		WHERE blog_id = $1
		ORDER BY created_at DESC`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []Like{}
	for rows.Next() {
		var like Like
		err := rows.Scan(&like.ID, &like.UserID, &like.BlogID, &like.CreatedAt)
		if err != nil {
			return nil, err
		}
		likes = append(likes, like)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return likes, nil
}
