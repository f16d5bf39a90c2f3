package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusPosted    = "posted"
	StatusFailed    = "failed"
)

const (
	MaxTitleLength   = 300
	MaxContentLength = 40000
)

// Subreddit names allow letters, digits, and underscores. Validation runs on
// the normalized (lowercased) form.
var subredditPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type Post struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	RedditAccountID *primitive.ObjectID `bson:"redditAccountId,omitempty" json:"redditAccountId,omitempty"`
	Title           string              `bson:"title" json:"title"`
	Content         string              `bson:"content" json:"content"`
	Subreddit       string              `bson:"subreddit" json:"subreddit"`
	PostNow         bool                `bson:"postNow" json:"postNow"`
	ScheduledAt     int64               `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	Status          string              `bson:"status" json:"status"`
	RedditPostID    string              `bson:"redditPostId,omitempty" json:"redditPostId,omitempty"`
	RedditURL       string              `bson:"redditUrl,omitempty" json:"redditUrl,omitempty"`
	ErrorMessage    string              `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt       int64               `bson:"createdAt" json:"createdAt"`
	UpdatedAt       int64               `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeSubreddit trims whitespace, lowercases, and strips an "r/" prefix
// so "r/GoLang " and "golang" target the same subreddit.
func NormalizeSubreddit(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "r/")
}

// Validate checks the fields that must hold for any stored post.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if len(p.Title) > MaxTitleLength {
		return errors.New("title must be 300 characters or less")
	}
	if strings.TrimSpace(p.Subreddit) == "" {
		return errors.New("subreddit is required")
	}
	if !subredditPattern.MatchString(NormalizeSubreddit(p.Subreddit)) {
		return errors.New("subreddit name can only contain letters, numbers, and underscores")
	}
	if len(p.Content) > MaxContentLength {
		return errors.New("content must be 40000 characters or less")
	}
	if p.PostNow && p.ScheduledAt != 0 {
		return errors.New("cannot set scheduled time when posting now")
	}
	if !p.PostNow && p.ScheduledAt == 0 {
		return errors.New("scheduled time is required when not posting now")
	}
	if p.ScheduledAt != 0 && p.ScheduledAt <= time.Now().Unix() {
		return errors.New("scheduled time must be in the future")
	}
	return nil
}

// CanPublish reports whether the post has everything a Reddit submission
// needs. The account check is separate because an account can be attached at
// publish time.
func (p *Post) CanPublish() bool {
	return strings.TrimSpace(p.Title) != "" &&
		strings.TrimSpace(p.Subreddit) != "" &&
		p.Status != StatusPosted
}

// CanSchedule reports whether the post is in a state scheduling may start from.
func (p *Post) CanSchedule() bool {
	return p.Status == StatusPending || p.Status == StatusFailed
}

func (p *Post) IsPublished() bool {
	return p.Status == StatusPosted
}
