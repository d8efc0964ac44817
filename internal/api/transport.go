package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

// bearerTransport attaches the session token when one exists. Without a
// token the request goes out unauthenticated, which login and signup need.
type bearerTransport struct {
	base   http.RoundTripper
	tokens oauth2.TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}

	tok, err := t.tokens.Token()
	if err != nil || tok == nil || tok.AccessToken == "" {
		if err != nil {
			slog.Debug("Sending request without credentials", "path", req.URL.Path, "reason", err)
		}
		return t.base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	tok.SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}
