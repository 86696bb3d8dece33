package gcpauth

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the manager to a golang.org/x/oauth2 TokenSource for
// the given scopes, for interoperability with libraries that consume
// x/oauth2 credentials. The returned source shares the manager's cache and
// single-flight refresh; no extra oauth2.ReuseTokenSource layer is needed.
func (m *AuthenticationManager) TokenSource(ctx context.Context, scopes ...string) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, manager: m, scopes: scopes}
}

type managerTokenSource struct {
	ctx     context.Context
	manager *AuthenticationManager
	scopes  []string
}

// Token implements oauth2.TokenSource.
func (s *managerTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.manager.GetToken(s.ctx, s.scopes...)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		Expiry:      token.ExpiresAt,
	}, nil
}
