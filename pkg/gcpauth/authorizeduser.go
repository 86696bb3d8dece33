package gcpauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// grantTypeRefreshToken is the OAuth2 grant for trading a long-lived
	// refresh token for a short-lived access token.
	grantTypeRefreshToken = "refresh_token"

	// userTokenURI is the Google OAuth2 token endpoint used for the
	// refresh-token grant.
	userTokenURI = "https://oauth2.googleapis.com/token"

	// adcFileName is the application-default-credentials file written by
	// `gcloud auth application-default login`.
	adcFileName = "application_default_credentials.json"
)

// AuthorizedUserRecord is a parsed application-default-credentials file for a
// local developer. Immutable after load. The refresh token is a standing
// credential; only access tokens derived from it expire.
type AuthorizedUserRecord struct {
	// ClientID identifies the gcloud OAuth client.
	ClientID string `json:"client_id"`

	// ClientSecret is the matching client secret.
	ClientSecret string `json:"client_secret"`

	// RefreshToken is the long-lived developer refresh token.
	RefreshToken string `json:"refresh_token"`
}

// ParseAuthorizedUserRecord parses and validates ADC file contents.
func ParseAuthorizedUserRecord(data []byte) (*AuthorizedUserRecord, error) {
	var rec AuthorizedUserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrConfig("malformed application default credentials file").
			WithCause(err).WithSource(SourceAuthorizedUser)
	}

	for _, field := range []struct{ name, value string }{
		{"client_id", rec.ClientID},
		{"client_secret", rec.ClientSecret},
		{"refresh_token", rec.RefreshToken},
	} {
		if field.value == "" {
			return nil, ErrConfig(fmt.Sprintf("application default credentials missing %s", field.name)).
				WithSource(SourceAuthorizedUser)
		}
	}

	return &rec, nil
}

// adcPath locates the ADC file, honoring the CLOUDSDK_CONFIG override the
// gcloud SDK itself uses.
func adcPath() (string, error) {
	if dir := os.Getenv("CLOUDSDK_CONFIG"); dir != "" {
		return filepath.Join(dir, adcFileName), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", ErrConfig("locating user configuration directory").
			WithCause(err).WithSource(SourceAuthorizedUser)
	}
	return filepath.Join(dir, "gcloud", adcFileName), nil
}

// AuthorizedUserSource produces tokens for a local developer by exchanging
// the gcloud refresh token at the Google OAuth2 token endpoint.
type AuthorizedUserSource struct {
	record   *AuthorizedUserRecord
	client   *http.Client
	tokenURI string
}

// NewAuthorizedUserSource builds a source from an already-parsed record.
func NewAuthorizedUserSource(record *AuthorizedUserRecord, client *http.Client) *AuthorizedUserSource {
	return &AuthorizedUserSource{
		record:   record,
		client:   client,
		tokenURI: userTokenURI,
	}
}

// LoadAuthorizedUserSource reads the ADC file from its well-known location.
func LoadAuthorizedUserSource(client *http.Client) (*AuthorizedUserSource, error) {
	path, err := adcPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrConfig(fmt.Sprintf("reading application default credentials %q", path)).
			WithCause(err).WithSource(SourceAuthorizedUser)
	}

	rec, err := ParseAuthorizedUserRecord(data)
	if err != nil {
		return nil, err
	}
	return NewAuthorizedUserSource(rec, client), nil
}

// Kind implements CredentialSource.
func (s *AuthorizedUserSource) Kind() SourceKind {
	return SourceAuthorizedUser
}

// Token implements CredentialSource.
func (s *AuthorizedUserSource) Token(ctx context.Context, scopes []string) (*Token, error) {
	form := url.Values{
		"grant_type":    {grantTypeRefreshToken},
		"client_id":     {s.record.ClientID},
		"client_secret": {s.record.ClientSecret},
		"refresh_token": {s.record.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, ErrTransport("building token request").
			WithCause(err).WithSource(SourceAuthorizedUser)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, ErrTransport("refresh token exchange failed").
			WithCause(err).WithSource(SourceAuthorizedUser)
	}
	return decodeTokenResponse(res, scopes, SourceAuthorizedUser)
}
