package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testApp() AppConfig {
	return AppConfig{
		Key:          "app1",
		DisplayName:  "Test App",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/api/reddit/callback/",
		UserAgent:    "redditsync-test/1.0",
	}
}

// testToken is pre-minted and unexpired so no refresh round trip happens.
func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: "test-access-token",
		TokenType:   "bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
}

func TestAuthCodeURL(t *testing.T) {
	client := NewClient(testApp())

	rawURL := client.AuthCodeURL("my-state")
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	assert.Equal(t, "www.reddit.com", parsed.Host)
	assert.Equal(t, "/api/v1/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "my-state", q.Get("state"))
	assert.Equal(t, "permanent", q.Get("duration"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Contains(t, q.Get("scope"), "submit")
	assert.Contains(t, q.Get("scope"), "identity")
}

func TestMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/me", r.URL.Path)
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		assert.Equal(t, "redditsync-test/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"abc123","name":"gopher","link_karma":42,"comment_karma":7,"is_gold":true,"created_utc":1500000000}`))
	}))
	defer server.Close()

	client := NewClient(testApp())
	client.BaseURL = server.URL

	me, err := client.Me(context.Background(), testToken())
	require.NoError(t, err)
	assert.Equal(t, "gopher", me.Name)
	assert.Equal(t, "abc123", me.ID)
	assert.Equal(t, 42, me.LinkKarma)
	assert.Equal(t, 7, me.CommentKarma)
	assert.True(t, me.IsGold)
}

func TestMeMissingUsername(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(testApp())
	client.BaseURL = server.URL

	_, err := client.Me(context.Background(), testToken())
	assert.Error(t, err)
}

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/submit", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "golang", r.PostForm.Get("sr"))
		assert.Equal(t, "self", r.PostForm.Get("kind"))
		assert.Equal(t, "Hello world", r.PostForm.Get("title"))
		assert.Equal(t, "body text", r.PostForm.Get("text"))
		assert.Equal(t, "json", r.PostForm.Get("api_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"json":{"errors":[],"data":{"id":"1abcd","name":"t3_1abcd","url":"https://www.reddit.com/r/golang/comments/1abcd/hello_world/"}}}`))
	}))
	defer server.Close()

	client := NewClient(testApp())
	client.BaseURL = server.URL

	sub, err := client.Submit(context.Background(), testToken(), "golang", "Hello world", "body text")
	require.NoError(t, err)
	assert.Equal(t, "1abcd", sub.ID)
	assert.Equal(t, "t3_1abcd", sub.Name)
	assert.Contains(t, sub.URL, "/r/golang/")
}

func TestSubmitRedditErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"json":{"errors":[["SUBREDDIT_NOEXIST","that subreddit doesn't exist","sr"]],"data":{}}}`))
	}))
	defer server.Close()

	client := NewClient(testApp())
	client.BaseURL = server.URL

	_, err := client.Submit(context.Background(), testToken(), "nope", "title", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBREDDIT_NOEXIST")
}

func TestSubmitHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(testApp())
	client.BaseURL = server.URL

	_, err := client.Submit(context.Background(), testToken(), "golang", "title", "")
	assert.Error(t, err)
}

func TestGetAppFromEnv(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "id-1")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret-1")
	t.Setenv("REDDIT_REDIRECT_URI", "http://localhost/cb")
	t.Setenv("REDDIT_APP2_CLIENT_ID", "id-2")

	app1 := GetApp("app1")
	assert.True(t, app1.IsConfigured())
	assert.Equal(t, "id-1", app1.ClientID)
	assert.Equal(t, "Reddit App app1", app1.DisplayName)
	assert.Equal(t, "redditsync/1.0", app1.UserAgent)

	// app2 has no secret or redirect, so it is not usable
	app2 := GetApp("app2")
	assert.False(t, app2.IsConfigured())

	apps := AvailableApps()
	require.Len(t, apps, 1)
	assert.Equal(t, "app1", apps[0].Key)
}
