package blogservice

import (
	"database/sql"
	"time"

	"github.com/blogmhq/blogm/internal/common"
)

type Blog struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	// Content is stored in Markdown format.
	Content     string     `json:"content"`
	ImageURL    string     `json:"blog_image_url,omitempty"`
	AuthorID    string     `json:"author"`
	AuthorName  string     `json:"author_name,omitempty"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author"`
	BlogID    string    `json:"blog_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	BlogID    string    `json:"blog_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeOutcome reports which way a toggle flipped the (user, blog) pair.
type LikeOutcome struct {
	Liked bool  `json:"liked"`
	Like  *Like `json:"like,omitempty"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
	c *common.Cache
}
