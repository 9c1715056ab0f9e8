package graph

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// graphScope requests the application permissions granted to the client.
const graphScope = "https://graph.microsoft.com/.default"

// tokenSource hands out access tokens obtained with the OAuth2 client
// credentials grant. Tokens are cached by oauth2 until shortly before expiry.
// It is safe for concurrent use.
type tokenSource struct {
	mu         sync.Mutex
	creds      *clientcredentials.Config
	httpClient *http.Client
	src        oauth2.TokenSource
}

// newTokenSource creates a token source for the given client credentials.
func newTokenSource(tokenURL, clientID, clientSecret string, httpClient *http.Client) *tokenSource {
	ts := &tokenSource{
		creds: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{graphScope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
	ts.src = ts.newSource()
	return ts
}

// newSource returns a fresh caching source that fetches through httpClient.
func (ts *tokenSource) newSource() oauth2.TokenSource {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, ts.httpClient)
	return ts.creds.TokenSource(ctx)
}

// Token returns a valid access token, fetching a new one if necessary.
func (ts *tokenSource) Token() (string, error) {
	ts.mu.Lock()
	src := ts.src
	ts.mu.Unlock()

	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to acquire token: %w", err)
	}
	return tok.AccessToken, nil
}

// ForceRefresh discards the cached token and acquires a new one.
// This is used when a 401 response indicates the token is invalid.
func (ts *tokenSource) ForceRefresh() (string, error) {
	ts.mu.Lock()
	ts.src = ts.newSource()
	ts.mu.Unlock()

	return ts.Token()
}
