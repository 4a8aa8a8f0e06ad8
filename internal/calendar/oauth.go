package calendar

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/kolapsis/vocalboard/internal/store"
)

// Enabled reports whether an OAuth client is configured at all.
func (g *GoogleSync) Enabled() bool {
	return g.oauth.ClientID != ""
}

// CalendarID returns the configured target calendar.
func (g *GoogleSync) CalendarID() string {
	return g.calendarID
}

// ConsentURL returns the Google consent page URL. Offline access with
// forced consent so a refresh token is issued every time.
func (g *GoogleSync) ConsentURL() string {
	return g.oauth.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades a consent code for a stored grant.
func (g *GoogleSync) Exchange(ctx context.Context, code string) (*store.CalendarLink, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return &store.CalendarLink{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}
