package gcpauth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// expiryMargin is subtracted from a token's expiry when deciding whether
	// it is still usable, so a token is never handed out only to expire
	// mid-flight.
	expiryMargin = 30 * time.Second

	// maxResponseBytes bounds how much of a token-endpoint response is read.
	maxResponseBytes = 1 << 20
)

// Token is an immutable bearer credential. A new Token always replaces a
// cached one; fields are never mutated after construction.
type Token struct {
	// Value is the opaque access token string.
	Value string

	// Scopes are the scopes the token was requested for, in caller order.
	Scopes []string

	// ExpiresAt is the absolute expiry instant reported by the issuer.
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used, leaving the safety
// margin before the actual expiry.
func (t *Token) Valid() bool {
	return t.validAt(time.Now())
}

func (t *Token) validAt(now time.Time) bool {
	return t != nil && t.Value != "" && now.Before(t.ExpiresAt.Add(-expiryMargin))
}

// scopeKey normalizes a scope list into the order-independent cache key.
// Scope strings are opaque and case-sensitive; sorting a copy is the whole
// normalization.
func scopeKey(scopes []string) string {
	if len(scopes) == 0 {
		return ""
	}
	sorted := make([]string, len(scopes))
	copy(sorted, scopes)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// tokenResponse is the common success body of all three token protocols.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// decodeTokenResponse turns a token-endpoint HTTP response into a Token or an
// exchange/transport error. All three sources parse the same shape.
func decodeTokenResponse(res *http.Response, scopes []string, kind SourceKind) (*Token, error) {
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, ErrTransport("reading token response").WithCause(err).WithSource(kind)
	}

	if res.StatusCode != http.StatusOK {
		return nil, ErrTransport(fmt.Sprintf("token endpoint returned status %d", res.StatusCode)).
			WithCause(fmt.Errorf("%s", strings.TrimSpace(string(body)))).
			WithSource(kind)
	}

	return parseTokenJSON(body, scopes, kind)
}

// parseTokenJSON decodes the {access_token, expires_in} body shared by the
// JWT-bearer, refresh-token, and metadata protocols.
func parseTokenJSON(body []byte, scopes []string, kind SourceKind) (*Token, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, ErrExchange("unparsable token response").WithCause(err).WithSource(kind)
	}
	if tr.AccessToken == "" {
		return nil, ErrExchange("token response missing access_token").WithSource(kind)
	}
	if tr.ExpiresIn <= 0 {
		return nil, ErrExchange("token response missing expires_in").WithSource(kind)
	}

	return &Token{
		Value:     tr.AccessToken,
		Scopes:    append([]string(nil), scopes...),
		ExpiresAt: time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
