package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"redditsync/database"
	"redditsync/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreatePostRequest struct {
	Title           string     `json:"title" binding:"required,max=300"`
	Content         string     `json:"content"`
	Subreddit       string     `json:"subreddit" binding:"required"`
	RedditAccountID string     `json:"redditAccountId"`
	PostNow         bool       `json:"postNow"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
}

type UpdatePostRequest struct {
	Title           *string    `json:"title"`
	Content         *string    `json:"content"`
	Subreddit       *string    `json:"subreddit"`
	RedditAccountID *string    `json:"redditAccountId"`
	PostNow         *bool      `json:"postNow"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
}

// resolveAccountRef validates that a caller-supplied account id refers to one
// of the caller's own active accounts.
func resolveAccountRef(ctx context.Context, userID primitive.ObjectID, hexID string) (*primitive.ObjectID, error) {
	accountID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, err
	}
	err = database.RedditAccounts.FindOne(ctx, bson.M{
		"_id":      accountID,
		"userId":   userID,
		"isActive": true,
	}).Err()
	if err != nil {
		return nil, err
	}
	return &accountID, nil
}

func CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().Unix()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Subreddit: models.NormalizeSubreddit(req.Subreddit),
		PostNow:   req.PostNow,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.ScheduledAt != nil {
		post.ScheduledAt = req.ScheduledAt.Unix()
		if !req.PostNow {
			post.Status = models.StatusScheduled
		}
	}

	if req.RedditAccountID != "" {
		accountID, err := resolveAccountRef(ctx, userID, req.RedditAccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selected Reddit account not found or inactive"})
			return
		}
		post.RedditAccountID = accountID
	}

	// Posting now needs an account up front; fall back to the most
	// recently linked active one, the same way explicit publish does.
	if post.PostNow && post.RedditAccountID == nil {
		accountID, err := defaultAccountID(ctx, userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No active Reddit account available for posting"})
			return
		}
		post.RedditAccountID = accountID
	}

	if err := post.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		log.Printf("CreatePost insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	if post.PostNow {
		if err := publishPost(ctx, &post); err != nil {
			c.JSON(http.StatusMultiStatus, gin.H{
				"error": "Post created but failed to publish: " + err.Error(),
				"post":  post,
			})
			return
		}
	}

	c.JSON(http.StatusCreated, post)
}

func listPosts(c *gin.Context, filter bson.M, sort bson.D) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	filter["userId"] = userID

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Posts.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

func ListPosts(c *gin.Context) {
	listPosts(c, bson.M{}, bson.D{{Key: "createdAt", Value: -1}})
}

func ListPostedPosts(c *gin.Context) {
	listPosts(c, bson.M{"status": models.StatusPosted}, bson.D{{Key: "createdAt", Value: -1}})
}

// ListScheduledPosts returns future-dated scheduled posts, soonest first.
func ListScheduledPosts(c *gin.Context) {
	listPosts(c, bson.M{
		"status":      models.StatusScheduled,
		"scheduledAt": bson.M{"$gt": time.Now().Unix()},
	}, bson.D{{Key: "scheduledAt", Value: 1}})
}

func ListFailedPosts(c *gin.Context) {
	listPosts(c, bson.M{"status": models.StatusFailed}, bson.D{{Key: "createdAt", Value: -1}})
}

// findUserPost loads a post owned by the caller, writing the error response
// on failure. Other users' posts read as not found.
func findUserPost(ctx context.Context, c *gin.Context, userID primitive.ObjectID) (*models.Post, bool) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return nil, false
	}

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID, "userId": userID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	return &post, true
}

func GetPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findUserPost(ctx, c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, post)
}

func UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findUserPost(ctx, c, userID)
	if !ok {
		return
	}

	if post.IsPublished() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Published posts cannot be edited"})
		return
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Subreddit != nil {
		post.Subreddit = models.NormalizeSubreddit(*req.Subreddit)
	}
	if req.PostNow != nil && *req.PostNow && req.ScheduledAt != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot set a scheduled time when posting immediately"})
		return
	}
	if req.ScheduledAt != nil {
		post.ScheduledAt = req.ScheduledAt.Unix()
		post.PostNow = false
		post.Status = models.StatusScheduled
	}
	if req.PostNow != nil && *req.PostNow {
		post.PostNow = true
		post.ScheduledAt = 0
		if post.Status == models.StatusScheduled {
			post.Status = models.StatusPending
		}
	}
	if req.RedditAccountID != nil {
		if *req.RedditAccountID == "" {
			post.RedditAccountID = nil
		} else {
			accountID, err := resolveAccountRef(ctx, userID, *req.RedditAccountID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Selected Reddit account not found or inactive"})
				return
			}
			post.RedditAccountID = accountID
		}
	}

	if err := post.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post.UpdatedAt = time.Now().Unix()
	if _, err := database.Posts.ReplaceOne(ctx, bson.M{"_id": post.ID}, post); err != nil {
		log.Printf("UpdatePost replace error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

func DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findUserPost(ctx, c, userID)
	if !ok {
		return
	}

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": post.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully deleted post '" + post.Title + "'",
	})
}

type PublishPostRequest struct {
	RedditAccountID string `json:"redditAccountId"`
}

// PublishPost publishes a post right away, optionally overriding the Reddit
// account. Without an attached account the most recently linked active
// account is used.
func PublishPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req PublishPostRequest
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post, ok := findUserPost(ctx, c, userID)
	if !ok {
		return
	}

	if post.IsPublished() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post is already published"})
		return
	}

	if req.RedditAccountID != "" {
		accountID, err := resolveAccountRef(ctx, userID, req.RedditAccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selected Reddit account not found or inactive"})
			return
		}
		post.RedditAccountID = accountID
	}

	if post.RedditAccountID == nil {
		accountID, err := defaultAccountID(ctx, userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No Reddit account available for posting"})
			return
		}
		post.RedditAccountID = accountID
	}

	post.PostNow = true
	post.ScheduledAt = 0
	post.Status = models.StatusPending

	if err := publishPost(ctx, post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to publish to Reddit: " + err.Error(),
			"post":  post,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post successfully published to Reddit",
		"post":    post,
	})
}

type SchedulePostRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	RedditAccountID string    `json:"redditAccountId"`
}

func SchedulePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SchedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scheduled time is required (RFC 3339)"})
		return
	}

	if !req.ScheduledAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scheduled time must be in the future"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findUserPost(ctx, c, userID)
	if !ok {
		return
	}

	if !post.CanSchedule() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending or failed posts can be scheduled"})
		return
	}

	if req.RedditAccountID != "" {
		accountID, err := resolveAccountRef(ctx, userID, req.RedditAccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selected Reddit account not found or inactive"})
			return
		}
		post.RedditAccountID = accountID
	}

	post.PostNow = false
	post.ScheduledAt = req.ScheduledAt.Unix()
	post.Status = models.StatusScheduled
	post.UpdatedAt = time.Now().Unix()

	if _, err := database.Posts.ReplaceOne(ctx, bson.M{"_id": post.ID}, post); err != nil {
		log.Printf("SchedulePost replace error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post scheduled successfully",
		"post":    post,
	})
}

// RetryPost re-attempts a failed or pending post, optionally with a
// different Reddit account.
func RetryPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req PublishPostRequest
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post, ok := findUserPost(ctx, c, userID)
	if !ok {
		return
	}

	if post.Status != models.StatusFailed && post.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Can only retry failed or pending posts"})
		return
	}

	if req.RedditAccountID != "" {
		accountID, err := resolveAccountRef(ctx, userID, req.RedditAccountID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selected Reddit account not found or inactive"})
			return
		}
		post.RedditAccountID = accountID
	}

	if post.RedditAccountID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No Reddit account available for posting"})
		return
	}

	post.Status = models.StatusPending
	if err := publishPost(ctx, post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to publish to Reddit: " + err.Error(),
			"post":  post,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post successfully published to Reddit",
		"post":    post,
	})
}
