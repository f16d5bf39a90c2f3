package reddit

import (
	"fmt"
	"os"
)

// AppConfig is one registered Reddit OAuth application. Several can be
// configured so linked accounts can be spread across apps:
//
//	app1: REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_REDIRECT_URI,
//	      REDDIT_USER_AGENT, REDDIT_DISPLAY_NAME
//	appN: REDDIT_APP<N>_CLIENT_ID, ... (N = 2..5)
type AppConfig struct {
	Key          string `json:"appKey"`
	DisplayName  string `json:"displayName"`
	ClientID     string `json:"-"`
	ClientSecret string `json:"-"`
	RedirectURI  string `json:"redirectUri"`
	UserAgent    string `json:"userAgent"`
}

const DefaultAppKey = "app1"

const maxApps = 5

func envPrefix(key string) string {
	if key == DefaultAppKey {
		return "REDDIT_"
	}
	return fmt.Sprintf("REDDIT_%s_", map[string]string{
		"app2": "APP2", "app3": "APP3", "app4": "APP4", "app5": "APP5",
	}[key])
}

// GetApp loads the configuration for one app key from the environment.
func GetApp(key string) AppConfig {
	prefix := envPrefix(key)

	displayName := os.Getenv(prefix + "DISPLAY_NAME")
	if displayName == "" {
		displayName = "Reddit App " + key
	}

	userAgent := os.Getenv(prefix + "USER_AGENT")
	if userAgent == "" {
		userAgent = "redditsync/1.0"
	}

	return AppConfig{
		Key:          key,
		DisplayName:  displayName,
		ClientID:     os.Getenv(prefix + "CLIENT_ID"),
		ClientSecret: os.Getenv(prefix + "CLIENT_SECRET"),
		RedirectURI:  os.Getenv(prefix + "REDIRECT_URI"),
		UserAgent:    userAgent,
	}
}

func (a AppConfig) IsConfigured() bool {
	return a.ClientID != "" && a.ClientSecret != "" && a.RedirectURI != ""
}

// AvailableApps returns every app key that has credentials configured.
func AvailableApps() []AppConfig {
	var apps []AppConfig
	for i := 1; i <= maxApps; i++ {
		key := fmt.Sprintf("app%d", i)
		if app := GetApp(key); app.IsConfigured() {
			apps = append(apps, app)
		}
	}
	return apps
}
