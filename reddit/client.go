package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	authorizeURL = "https://www.reddit.com/api/v1/authorize"
	tokenURL     = "https://www.reddit.com/api/v1/access_token"
	apiBaseURL   = "https://oauth.reddit.com"
)

// DefaultScopes are requested when linking an account.
var DefaultScopes = []string{"identity", "read", "submit", "mysubreddits", "history"}

// Client talks to the Reddit OAuth and data APIs for one app config.
type Client struct {
	app  AppConfig
	conf *oauth2.Config

	// BaseURL is overridable in tests; defaults to oauth.reddit.com.
	BaseURL string
}

func NewClient(app AppConfig) *Client {
	return &Client{
		app: app,
		conf: &oauth2.Config{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			RedirectURL:  app.RedirectURI,
			Scopes:       DefaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authorizeURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		BaseURL: apiBaseURL,
	}
}

// userAgentTransport sets the User-Agent Reddit requires on every request.
// Requests with a default Go user agent are heavily throttled.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(clone)
}

func (c *Client) httpContext(ctx context.Context) context.Context {
	base := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &userAgentTransport{
			agent: c.app.UserAgent,
			base:  http.DefaultTransport,
		},
	}
	return context.WithValue(ctx, oauth2.HTTPClient, base)
}

// AuthCodeURL builds the authorize URL for the connect flow. Reddit only
// issues a refresh token when duration=permanent is set.
func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("duration", "permanent"))
}

// Exchange trades the callback code for an access + refresh token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.conf.Exchange(c.httpContext(ctx), code)
}

// TokenFromRefresh wraps a stored refresh token so API calls can mint access
// tokens on demand.
func TokenFromRefresh(refreshToken string) *oauth2.Token {
	return &oauth2.Token{RefreshToken: refreshToken}
}

func (c *Client) apiClient(ctx context.Context, tok *oauth2.Token) *http.Client {
	return oauth2.NewClient(c.httpContext(ctx), c.conf.TokenSource(c.httpContext(ctx), tok))
}

// Identity is the authenticated user per GET /api/v1/me.
type Identity struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
	IsGold       bool    `json:"is_gold"`
	CreatedUTC   float64 `json:"created_utc"`
}

func (c *Client) Me(ctx context.Context, tok *oauth2.Token) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/me", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.apiClient(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit identity request failed: %s", resp.Status)
	}

	var me Identity
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, err
	}
	if me.Name == "" {
		return nil, fmt.Errorf("reddit identity response missing username")
	}
	return &me, nil
}

// Submission is the result of a successful POST /api/submit.
type Submission struct {
	ID   string
	Name string
	URL  string
}

// submitResponse mirrors Reddit's api_type=json envelope. Errors arrive as
// triples of [code, message, field].
type submitResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}

// Submit creates a self (text) post in the given subreddit.
func (c *Client) Submit(ctx context.Context, tok *oauth2.Token, subreddit, title, text string) (*Submission, error) {
	form := url.Values{
		"sr":       {subreddit},
		"kind":     {"self"},
		"title":    {title},
		"text":     {text},
		"api_type": {"json"},
		"resubmit": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/submit",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.apiClient(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit submit request failed: %s", resp.Status)
	}

	var body submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if len(body.JSON.Errors) > 0 {
		msgs := make([]string, 0, len(body.JSON.Errors))
		for _, e := range body.JSON.Errors {
			msgs = append(msgs, strings.Join(e, ": "))
		}
		return nil, fmt.Errorf("reddit rejected submission: %s", strings.Join(msgs, "; "))
	}

	if body.JSON.Data.ID == "" {
		return nil, fmt.Errorf("reddit submit response missing post id")
	}

	return &Submission{
		ID:   body.JSON.Data.ID,
		Name: body.JSON.Data.Name,
		URL:  body.JSON.Data.URL,
	}, nil
}
