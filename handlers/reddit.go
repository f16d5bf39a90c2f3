package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"redditsync/database"
	"redditsync/models"
	"redditsync/reddit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListRedditApps lists the Reddit app configurations available for linking.
func ListRedditApps(c *gin.Context) {
	apps := reddit.AvailableApps()
	c.JSON(http.StatusOK, gin.H{
		"apps":      apps,
		"totalApps": len(apps),
	})
}

// ListRedditAccounts lists the caller's linked Reddit accounts, newest first.
func ListRedditAccounts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.RedditAccounts.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Reddit accounts"})
		return
	}
	defer cursor.Close(ctx)

	accounts := []models.RedditAccount{}
	if err := cursor.All(ctx, &accounts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode Reddit accounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":      accounts,
		"totalAccounts": len(accounts),
	})
}

type ConnectRedditRequest struct {
	AppName string `json:"appName"`
}

// ConnectReddit starts the OAuth flow: stores a CSRF state and returns the
// Reddit authorize URL the frontend should redirect to.
func ConnectReddit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ConnectRedditRequest
	// Body is optional; default app is used when absent.
	_ = c.ShouldBindJSON(&req)
	appName := req.AppName
	if appName == "" {
		appName = reddit.DefaultAppKey
	}

	app := reddit.GetApp(appName)
	if !app.IsConfigured() {
		available := make([]string, 0)
		for _, a := range reddit.AvailableApps() {
			available = append(available, a.Key)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Reddit app '" + appName + "' is not configured",
			"availableApps": available,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Garbage-collect expired states for this user before adding a new one
	cutoff := time.Now().Add(-models.OAuthStateTTLMinutes * time.Minute).Unix()
	_, _ = database.OAuthStates.DeleteMany(ctx, bson.M{
		"userId":    userID,
		"createdAt": bson.M{"$lt": cutoff},
	})

	state := uuid.NewString()
	oauthState := models.OAuthState{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		State:         state,
		Provider:      "reddit",
		AppIdentifier: appName,
		CreatedAt:     time.Now().Unix(),
	}

	if _, err := database.OAuthStates.InsertOne(ctx, oauthState); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start OAuth flow"})
		return
	}

	client := reddit.NewClient(app)
	c.JSON(http.StatusOK, gin.H{
		"authUrl":        client.AuthCodeURL(state),
		"state":          state,
		"appName":        appName,
		"appDisplayName": app.DisplayName,
		"redirectUri":    app.RedirectURI,
	})
}

func callbackRedirect(c *gin.Context, params map[string]string) {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	c.Redirect(http.StatusFound, frontendURL()+"?"+values.Encode())
}

// RedditCallback finishes the OAuth flow. Reddit redirects the user's browser
// here, so there is no bearer token; the state token identifies the user.
func RedditCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		callbackRedirect(c, map[string]string{"error": "Missing code or state parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-models.OAuthStateTTLMinutes * time.Minute).Unix()

	var oauthState models.OAuthState
	err := database.OAuthStates.FindOne(ctx, bson.M{
		"state":     state,
		"provider":  "reddit",
		"createdAt": bson.M{"$gte": cutoff},
	}).Decode(&oauthState)
	if err != nil {
		log.Printf("RedditCallback: invalid or expired state %q", state)
		callbackRedirect(c, map[string]string{"error": "Invalid or expired state. Please try again."})
		return
	}

	app := reddit.GetApp(oauthState.AppIdentifier)
	client := reddit.NewClient(app)

	token, err := client.Exchange(ctx, code)
	if err != nil {
		log.Printf("RedditCallback: token exchange failed: %v", err)
		callbackRedirect(c, map[string]string{"error": "Failed to exchange authorization code"})
		return
	}
	if token.RefreshToken == "" {
		callbackRedirect(c, map[string]string{"error": "Reddit did not return a refresh token"})
		return
	}

	me, err := client.Me(ctx, token)
	if err != nil {
		log.Printf("RedditCallback: identity fetch failed: %v", err)
		callbackRedirect(c, map[string]string{"error": "Could not fetch Reddit user info"})
		return
	}

	now := time.Now().Unix()
	filter := bson.M{
		"userId":         oauthState.UserID,
		"redditUsername": me.Name,
		"appIdentifier":  oauthState.AppIdentifier,
	}
	update := bson.M{
		"$set": bson.M{
			"redditId":     me.ID,
			"refreshToken": token.RefreshToken,
			"scopes":       reddit.DefaultScopes,
			"isActive":     true,
			"linkKarma":    me.LinkKarma,
			"commentKarma": me.CommentKarma,
			"hasPremium":   me.IsGold,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	result, err := database.RedditAccounts.UpdateOne(ctx, filter, update,
		options.Update().SetUpsert(true))
	if err != nil {
		log.Printf("RedditCallback: account upsert failed: %v", err)
		callbackRedirect(c, map[string]string{"error": "Failed to save Reddit account"})
		return
	}

	_, _ = database.OAuthStates.DeleteOne(ctx, bson.M{"_id": oauthState.ID})

	created := "false"
	if result.UpsertedCount > 0 {
		created = "true"
	}
	log.Printf("RedditCallback: linked u/%s (created=%s) for user %s", me.Name, created, oauthState.UserID.Hex())

	callbackRedirect(c, map[string]string{
		"status":   "success",
		"username": me.Name,
		"created":  created,
		"appName":  oauthState.AppIdentifier,
	})
}

func findUserRedditAccount(ctx context.Context, c *gin.Context, userID primitive.ObjectID) (*models.RedditAccount, bool) {
	accountID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return nil, false
	}

	var account models.RedditAccount
	err = database.RedditAccounts.FindOne(ctx, bson.M{"_id": accountID, "userId": userID}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reddit account not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	return &account, true
}

// DisconnectReddit removes a linked account. Posts that referenced it keep
// their record but can no longer publish through it.
func DisconnectReddit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, ok := findUserRedditAccount(ctx, c, userID)
	if !ok {
		return
	}

	if _, err := database.RedditAccounts.DeleteOne(ctx, bson.M{"_id": account.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully disconnected u/" + account.RedditUsername,
	})
}

type SwitchRedditAppRequest struct {
	NewAppName string `json:"newAppName" binding:"required"`
}

// SwitchRedditApp moves a linked account to a different Reddit app
// configuration. The refresh token is kept; Reddit honors it across apps
// registered to the same account.
func SwitchRedditApp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SwitchRedditAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "newAppName is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, ok := findUserRedditAccount(ctx, c, userID)
	if !ok {
		return
	}

	app := reddit.GetApp(req.NewAppName)
	if !app.IsConfigured() {
		available := make([]string, 0)
		for _, a := range reddit.AvailableApps() {
			available = append(available, a.Key)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Reddit app '" + req.NewAppName + "' is not configured",
			"availableApps": available,
		})
		return
	}

	if account.AppIdentifier == req.NewAppName {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Account is already using app '" + req.NewAppName + "'",
		})
		return
	}

	oldApp := account.AppIdentifier
	_, err := database.RedditAccounts.UpdateOne(ctx,
		bson.M{"_id": account.ID},
		bson.M{"$set": bson.M{
			"appIdentifier": req.NewAppName,
			"updatedAt":     time.Now().Unix(),
		}},
	)
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "u/" + account.RedditUsername + " is already linked through app '" + req.NewAppName + "'",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to switch app"})
		return
	}

	account.AppIdentifier = req.NewAppName
	c.JSON(http.StatusOK, gin.H{
		"message": "Switched u/" + account.RedditUsername + " from '" + oldApp + "' to '" + req.NewAppName + "'",
		"oldApp":  oldApp,
		"newApp":  req.NewAppName,
		"account": account,
	})
}

// TestRedditConnection verifies the stored refresh token still works and
// refreshes the cached karma numbers.
func TestRedditConnection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	account, ok := findUserRedditAccount(ctx, c, userID)
	if !ok {
		return
	}

	client := reddit.NewClient(reddit.GetApp(account.AppIdentifier))
	me, err := client.Me(ctx, reddit.TokenFromRefresh(account.RefreshToken))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Connection test failed: " + err.Error()})
		return
	}

	if !strings.EqualFold(me.Name, account.RedditUsername) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Token belongs to a different Reddit user: u/" + me.Name,
		})
		return
	}

	_, _ = database.RedditAccounts.UpdateOne(ctx,
		bson.M{"_id": account.ID},
		bson.M{"$set": bson.M{
			"linkKarma":    me.LinkKarma,
			"commentKarma": me.CommentKarma,
			"hasPremium":   me.IsGold,
			"updatedAt":    time.Now().Unix(),
		}},
	)

	c.JSON(http.StatusOK, gin.H{
		"status":         "connected",
		"redditUsername": me.Name,
		"linkKarma":      me.LinkKarma,
		"commentKarma":   me.CommentKarma,
		"hasPremium":     me.IsGold,
		"appName":        account.AppIdentifier,
		"scopes":         account.Scopes,
	})
}
