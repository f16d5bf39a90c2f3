package handlers

import (
	"testing"
	"time"

	"redditsync/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenPair(t *testing.T) {
	pair, err := GenerateTokenPair("507f1f77bcf86cd799439011")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	access, err := middleware.ParseToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", access.UserID)
	assert.Equal(t, middleware.TokenTypeAccess, access.TokenType)
	assert.NotEmpty(t, access.ID)

	refresh, err := middleware.ParseToken(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", refresh.UserID)
	assert.Equal(t, middleware.TokenTypeRefresh, refresh.TokenType)
	assert.NotEmpty(t, refresh.ID)

	// Each token gets its own jti so they can be revoked independently
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestTokenPairExpiries(t *testing.T) {
	pair, err := GenerateTokenPair("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	access, err := middleware.ParseToken(pair.Access)
	require.NoError(t, err)
	refresh, err := middleware.ParseToken(pair.Refresh)
	require.NoError(t, err)

	accessTTL := time.Until(access.ExpiresAt.Time)
	refreshTTL := time.Until(refresh.ExpiresAt.Time)

	assert.InDelta(t, accessTokenTTL.Seconds(), accessTTL.Seconds(), 10)
	assert.InDelta(t, refreshTokenTTL.Seconds(), refreshTTL.Seconds(), 10)
	assert.Greater(t, refreshTTL, accessTTL)
}
