package paypal

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// newTokenSource returns a caching token source for the client-credentials
// grant at {base}/v1/oauth2/token. The returned source holds the token until
// its expiry and serializes concurrent refreshes, so overlapping API calls
// within the validity window never trigger duplicate token requests. A
// transport failure during acquisition propagates to the caller; nothing
// empty is ever cached.
func newTokenSource(baseURL, clientID, secret string, hc *http.Client) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
	return cc.TokenSource(ctx)
}
