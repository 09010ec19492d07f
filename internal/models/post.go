package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post lifecycle statuses. A post is always in exactly one of these.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusScheduled = "scheduled"
)

// Field length bounds enforced on create and update.
const (
	MaxTitleLength   = 200
	MaxContentLength = 10000
	MaxExcerptLength = 500
	MaxTagLength     = 30

	// Average reading speed used for the read-time estimate.
	WordsPerMinute = 200
)

// Categories a post may belong to.
var Categories = []string{
	"Entertainment",
	"Education",
	"Fun",
	"Movies",
	"Technology",
	"Lifestyle",
	"Travel",
	"Food",
	"Sports",
	"Other",
}

const DefaultCategory = "Other"

// Like records a single user's like on a post. A user appears at most once
// in a post's like set.
type Like struct {
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	ID            uuid.UUID  `json:"id"`
	AuthorID      uuid.UUID  `json:"authorId"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Status        string     `json:"status"`
	PublishedAt   time.Time  `json:"publishedAt"`
	ScheduledFor  *time.Time `json:"scheduledFor,omitempty"`
	IsPublic      bool       `json:"isPublic"`
	AllowComments bool       `json:"allowComments"`
	Likes         []Like     `json:"likes"`
	Views         int        `json:"views"`
	ReadTime      int        `json:"readTime"`
	CommentsCount int        `json:"commentsCount"`
	Slug          string     `json:"slug"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ValidStatus reports whether s is one of the three lifecycle statuses.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusScheduled
}

// ValidCategory reports whether c is in the fixed category set.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// CalculateReadTime estimates reading time in minutes from the content word
// count, rounding up. Recomputed on every content-affecting write.
func CalculateReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// LikedBy reports whether the given user is in the post's like set.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	for _, like := range p.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}

// Clone returns a deep copy of the post, safe to hand outside the owning
// actor while the original keeps being mutated.
func (p *Post) Clone() *Post {
	cp := *p
	if p.Tags != nil {
		cp.Tags = append([]string(nil), p.Tags...)
	}
	if p.Likes != nil {
		cp.Likes = append([]Like(nil), p.Likes...)
	}
	if p.ScheduledFor != nil {
		t := *p.ScheduledFor
		cp.ScheduledFor = &t
	}
	return &cp
}
