package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubreddit(t *testing.T) {
	assert.Equal(t, "golang", NormalizeSubreddit("golang"))
	assert.Equal(t, "golang", NormalizeSubreddit("r/golang"))
	assert.Equal(t, "golang", NormalizeSubreddit("  R/GoLang  "))
	assert.Equal(t, "askreddit", NormalizeSubreddit("AskReddit"))
	assert.Equal(t, "", NormalizeSubreddit("   "))
}

func TestPostValidate(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	tests := []struct {
		name    string
		post    Post
		wantErr string
	}{
		{
			name: "valid immediate post",
			post: Post{Title: "hello", Subreddit: "golang", PostNow: true},
		},
		{
			name: "valid scheduled post",
			post: Post{Title: "hello", Subreddit: "golang", ScheduledAt: future},
		},
		{
			name:    "missing title",
			post:    Post{Title: "  ", Subreddit: "golang", PostNow: true},
			wantErr: "title is required",
		},
		{
			name:    "title too long",
			post:    Post{Title: strings.Repeat("x", MaxTitleLength+1), Subreddit: "golang", PostNow: true},
			wantErr: "title must be 300 characters or less",
		},
		{
			name:    "missing subreddit",
			post:    Post{Title: "hello", PostNow: true},
			wantErr: "subreddit is required",
		},
		{
			name: "subreddit with underscore",
			post: Post{Title: "hello", Subreddit: "ask_reddit", PostNow: true},
		},
		{
			name:    "subreddit with hyphen",
			post:    Post{Title: "hello", Subreddit: "go-lang", PostNow: true},
			wantErr: "subreddit name can only contain letters, numbers, and underscores",
		},
		{
			name:    "subreddit with inner space",
			post:    Post{Title: "hello", Subreddit: "go lang", PostNow: true},
			wantErr: "subreddit name can only contain letters, numbers, and underscores",
		},
		{
			name: "content at the limit",
			post: Post{Title: "hello", Content: strings.Repeat("x", MaxContentLength), Subreddit: "golang", PostNow: true},
		},
		{
			name:    "content too long",
			post:    Post{Title: "hello", Content: strings.Repeat("x", MaxContentLength+1), Subreddit: "golang", PostNow: true},
			wantErr: "content must be 40000 characters or less",
		},
		{
			name:    "post now with scheduled time",
			post:    Post{Title: "hello", Subreddit: "golang", PostNow: true, ScheduledAt: future},
			wantErr: "cannot set scheduled time when posting now",
		},
		{
			name:    "scheduled without time",
			post:    Post{Title: "hello", Subreddit: "golang", PostNow: false},
			wantErr: "scheduled time is required when not posting now",
		},
		{
			name:    "scheduled in the past",
			post:    Post{Title: "hello", Subreddit: "golang", ScheduledAt: past},
			wantErr: "scheduled time must be in the future",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestPostCanPublish(t *testing.T) {
	post := Post{Title: "hello", Subreddit: "golang", Status: StatusPending}
	assert.True(t, post.CanPublish())

	post.Status = StatusPosted
	assert.False(t, post.CanPublish())

	post = Post{Title: "", Subreddit: "golang", Status: StatusPending}
	assert.False(t, post.CanPublish())
}

func TestPostCanSchedule(t *testing.T) {
	assert.True(t, (&Post{Status: StatusPending}).CanSchedule())
	assert.True(t, (&Post{Status: StatusFailed}).CanSchedule())
	assert.False(t, (&Post{Status: StatusScheduled}).CanSchedule())
	assert.False(t, (&Post{Status: StatusPosted}).CanSchedule())
}
