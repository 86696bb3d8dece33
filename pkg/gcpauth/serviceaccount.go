package gcpauth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// grantTypeJWTBearer is the OAuth2 grant for trading a self-signed JWT
	// assertion for an access token.
	grantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// jwtLifetime is the fixed lifetime claimed in self-signed assertions.
	jwtLifetime = 3600 * time.Second
)

// ServiceAccountKey is a parsed service account key file as downloaded from
// the IAM console. Immutable after load.
type ServiceAccountKey struct {
	// Type is the credential type discriminator ("service_account").
	Type string `json:"type"`

	// ProjectID is the project the service account belongs to.
	ProjectID string `json:"project_id"`

	// PrivateKey is the PEM-encoded RSA signing key.
	PrivateKey string `json:"private_key"`

	// ClientEmail is the service account's email, used as the JWT issuer.
	ClientEmail string `json:"client_email"`

	// TokenURI is the OAuth2 token endpoint for the assertion exchange.
	TokenURI string `json:"token_uri"`
}

// ParseServiceAccountKey parses and validates key file contents.
func ParseServiceAccountKey(data []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, ErrConfig("malformed service account key file").
			WithCause(err).WithSource(SourceServiceAccount)
	}

	for _, field := range []struct{ name, value string }{
		{"client_email", key.ClientEmail},
		{"private_key", key.PrivateKey},
		{"token_uri", key.TokenURI},
		{"project_id", key.ProjectID},
	} {
		if field.value == "" {
			return nil, ErrConfig(fmt.Sprintf("service account key missing %s", field.name)).
				WithSource(SourceServiceAccount)
		}
	}

	return &key, nil
}

// ServiceAccountSource produces tokens for a keyed service account by signing
// a JWT assertion with the account's private key and exchanging it at the
// key's token endpoint.
type ServiceAccountSource struct {
	key        *ServiceAccountKey
	signingKey *rsa.PrivateKey
	client     *http.Client
	now        func() time.Time
}

// NewServiceAccountSource builds a source from an already-parsed key.
func NewServiceAccountSource(key *ServiceAccountKey, client *http.Client) (*ServiceAccountSource, error) {
	signingKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, ErrSigning("unusable private key").
			WithCause(err).WithSource(SourceServiceAccount)
	}

	return &ServiceAccountSource{
		key:        key,
		signingKey: signingKey,
		client:     client,
		now:        time.Now,
	}, nil
}

// LoadServiceAccountSource reads, parses, and validates a key file at path.
func LoadServiceAccountSource(path string, client *http.Client) (*ServiceAccountSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrConfig(fmt.Sprintf("reading service account key %q", path)).
			WithCause(err).WithSource(SourceServiceAccount)
	}

	key, err := ParseServiceAccountKey(data)
	if err != nil {
		return nil, err
	}
	return NewServiceAccountSource(key, client)
}

// Kind implements CredentialSource.
func (s *ServiceAccountSource) Kind() SourceKind {
	return SourceServiceAccount
}

// ProjectID returns the project the key belongs to.
func (s *ServiceAccountSource) ProjectID() string {
	return s.key.ProjectID
}

// assertionClaims builds the claim set for a self-signed assertion. The
// result is deterministic for a fixed issue time: jwt.MapClaims marshals with
// sorted keys and nothing random is claimed.
func (s *ServiceAccountSource) assertionClaims(scopes []string, issuedAt time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":   s.key.ClientEmail,
		"scope": strings.Join(scopes, " "),
		"aud":   s.key.TokenURI,
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(jwtLifetime).Unix(),
	}
}

// signAssertion signs the claim set into a compact RS256 JWT.
func (s *ServiceAccountSource) signAssertion(scopes []string, issuedAt time.Time) (string, error) {
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, s.assertionClaims(scopes, issuedAt)).
		SignedString(s.signingKey)
	if err != nil {
		return "", ErrSigning("signing assertion").
			WithCause(err).WithSource(SourceServiceAccount)
	}
	return assertion, nil
}

// Token implements CredentialSource.
func (s *ServiceAccountSource) Token(ctx context.Context, scopes []string) (*Token, error) {
	assertion, err := s.signAssertion(scopes, s.now())
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {grantTypeJWTBearer},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.key.TokenURI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, ErrTransport("building token request").
			WithCause(err).WithSource(SourceServiceAccount)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, ErrTransport("token exchange request failed").
			WithCause(err).WithSource(SourceServiceAccount)
	}
	return decodeTokenResponse(res, scopes, SourceServiceAccount)
}
