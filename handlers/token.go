package handlers

import (
	"context"
	"net/http"
	"time"

	"redditsync/database"
	"redditsync/middleware"
	"redditsync/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func signToken(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(middleware.JWTSecret())
}

// GenerateTokenPair issues a fresh access + refresh token for a user.
func GenerateTokenPair(userID string) (*TokenPair, error) {
	access, err := signToken(userID, middleware.TokenTypeAccess, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(userID, middleware.TokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func blacklistRefreshToken(ctx context.Context, claims *middleware.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	return database.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

type ObtainTokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ObtainTokenPair is the username+password token endpoint.
func ObtainTokenPair(c *gin.Context) {
	var req ObtainTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"username": req.Username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	pair, err := GenerateTokenPair(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, pair)
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// RefreshTokenPair rotates a refresh token: the old one is blacklisted and a
// new pair is issued, so a leaked refresh token can be used at most once.
func RefreshTokenPair(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := middleware.ParseToken(req.Refresh)
	if err != nil || claims.TokenType != middleware.TokenTypeRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if database.IsTokenBlacklisted(ctx, claims.ID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token has been revoked"})
		return
	}

	pair, err := GenerateTokenPair(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	if err := blacklistRefreshToken(ctx, claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate token"})
		return
	}

	c.JSON(http.StatusOK, pair)
}
