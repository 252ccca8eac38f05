package models

import (
	"strings"
	"time"
)

// NewsArticle is a piece of club news published to the members of an association.
type NewsArticle struct {
	ID            int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AssociationID int64      `gorm:"not null;index" json:"association_id"`
	AuthorID      int64      `gorm:"not null;default:0" json:"author_id"`
	Title         string     `gorm:"not null" json:"title" form:"title"`
	Slug          string     `gorm:"not null;index" json:"slug" form:"slug"`
	Summary       string     `gorm:"type:text" json:"summary" form:"summary"`
	Body          string     `gorm:"type:text" json:"body" form:"body"`
	ImageURL      string     `gorm:"default:''" json:"image_url" form:"image_url"`
	Category      string     `gorm:"not null;default:'general';index" json:"category" form:"category"`
	Published     bool       `gorm:"not null;default:false;index" json:"published" form:"published"`
	PublishedAt   *time.Time `json:"published_at"`
	Views         int64      `gorm:"not null;default:0" json:"views"`
	CommentsCount int64      `gorm:"-" json:"comments_count"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

func (n NewsArticle) TableName() string {
	return "news"
}

func (n NewsArticle) MissingFields() string {
	if strings.TrimSpace(n.Title) == "" {
		return "title"
	} else if strings.TrimSpace(n.Body) == "" {
		return "body"
	}
	return ""
}

const COMMENT_MAX_LEN = 1000

// Comment is a member's comment on a news article.
type Comment struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	NewsID     int64      `gorm:"not null;index" json:"news_id"`
	MemberID   int64      `gorm:"not null;index" json:"member_id"`
	MemberName string     `gorm:"not null;default:''" json:"member_name"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}
