package oauth

import (
	"github.com/garrettladley/fitmetrics/internal/config"
	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token" //nolint:gosec // not credentials, just endpoint URL
)

// Strava expects a single comma separated scope value.
var scopes = []string{"read,activity:read_all"}

func NewConfig(strava config.Strava) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     strava.ClientID,
		ClientSecret: strava.ClientSecret,
		RedirectURL:  strava.RedirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
