package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"redditsync/database"
	"redditsync/models"
	"redditsync/reddit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// defaultAccountID returns the user's most recently linked active account.
func defaultAccountID(ctx context.Context, userID primitive.ObjectID) (*primitive.ObjectID, error) {
	var account models.RedditAccount
	err := database.RedditAccounts.FindOne(ctx,
		bson.M{"userId": userID, "isActive": true},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&account)
	if err != nil {
		return nil, err
	}
	return &account.ID, nil
}

// publishPost submits a post to Reddit through its attached account and
// persists the outcome. On failure the post is marked failed with the error
// recorded, and the error is returned to the caller.
func publishPost(ctx context.Context, post *models.Post) error {
	if !post.CanPublish() {
		return errors.New("post cannot be published - missing required fields")
	}
	if post.RedditAccountID == nil {
		return errors.New("post has no Reddit account attached")
	}

	var account models.RedditAccount
	err := database.RedditAccounts.FindOne(ctx, bson.M{
		"_id":      *post.RedditAccountID,
		"isActive": true,
	}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return markPostFailed(ctx, post, errors.New("reddit account not found or inactive"))
	}
	if err != nil {
		return err
	}

	client := reddit.NewClient(reddit.GetApp(account.AppIdentifier))
	submission, err := client.Submit(ctx,
		reddit.TokenFromRefresh(account.RefreshToken),
		post.Subreddit, post.Title, post.Content)
	if err != nil {
		return markPostFailed(ctx, post, err)
	}

	now := time.Now().Unix()
	post.Status = models.StatusPosted
	post.RedditPostID = submission.ID
	post.RedditURL = submission.URL
	post.ErrorMessage = ""
	post.ScheduledAt = 0
	post.UpdatedAt = now

	_, err = database.Posts.UpdateOne(ctx,
		bson.M{"_id": post.ID},
		bson.M{
			"$set": bson.M{
				"status":       models.StatusPosted,
				"redditPostId": submission.ID,
				"redditUrl":    submission.URL,
				"updatedAt":    now,
			},
			"$unset": bson.M{"errorMessage": "", "scheduledAt": ""},
		},
	)
	if err != nil {
		log.Printf("publishPost: posted to Reddit but failed to update record %s: %v", post.ID.Hex(), err)
	}

	log.Printf("publishPost: posted %s to r/%s as %s", post.ID.Hex(), post.Subreddit, submission.ID)
	return nil
}

// markPostFailed records a publish failure and returns the original error.
func markPostFailed(ctx context.Context, post *models.Post, cause error) error {
	post.Status = models.StatusFailed
	post.ErrorMessage = cause.Error()
	post.UpdatedAt = time.Now().Unix()

	_, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": post.ID},
		bson.M{"$set": bson.M{
			"status":       models.StatusFailed,
			"errorMessage": cause.Error(),
			"updatedAt":    post.UpdatedAt,
		}},
	)
	if err != nil {
		log.Printf("markPostFailed: failed to update record %s: %v", post.ID.Hex(), err)
	}
	return cause
}

// PublishDuePosts finds scheduled posts whose time has come and publishes
// each one. It is the scheduler's tick callback. Returns how many posts were
// attempted.
func PublishDuePosts(ctx context.Context) (int, error) {
	cursor, err := database.Posts.Find(ctx, bson.M{
		"status":      models.StatusScheduled,
		"scheduledAt": bson.M{"$lte": time.Now().Unix()},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var due []models.Post
	if err := cursor.All(ctx, &due); err != nil {
		return 0, err
	}

	for i := range due {
		post := &due[i]
		if post.RedditAccountID == nil {
			if accountID, err := defaultAccountID(ctx, post.UserID); err == nil {
				post.RedditAccountID = accountID
			} else {
				_ = markPostFailed(ctx, post, errors.New("no Reddit account available for posting"))
				continue
			}
		}
		if err := publishPost(ctx, post); err != nil {
			log.Printf("PublishDuePosts: post %s failed: %v", post.ID.Hex(), err)
		}
	}

	return len(due), nil
}
