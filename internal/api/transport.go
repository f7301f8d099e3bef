package api

import (
	"context"
	"net/http"
)

// TokenSource yields the identity token to attach, read at send time.
type TokenSource interface {
	IDToken(ctx context.Context) (string, bool)
}

type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		if tok, ok := t.tokens.IDToken(req.Context()); ok && tok != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return t.base.RoundTrip(req)
}
