package gcpauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeKeyOrderIndependent(t *testing.T) {
	a := scopeKey([]string{
		"https://www.googleapis.com/auth/devstorage.read_only",
		"https://www.googleapis.com/auth/cloud-platform",
	})
	b := scopeKey([]string{
		"https://www.googleapis.com/auth/cloud-platform",
		"https://www.googleapis.com/auth/devstorage.read_only",
	})
	assert.Equal(t, a, b)
}

func TestScopeKeyDoesNotMutateInput(t *testing.T) {
	scopes := []string{"b", "a"}
	scopeKey(scopes)
	assert.Equal(t, []string{"b", "a"}, scopes)
}

func TestScopeKeyCaseSensitive(t *testing.T) {
	assert.NotEqual(t, scopeKey([]string{"Scope"}), scopeKey([]string{"scope"}))
}

func TestTokenValidAt(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{"nil token", nil, false},
		{"empty value", &Token{ExpiresAt: now.Add(time.Hour)}, false},
		{"plenty of lifetime", &Token{Value: "tok", ExpiresAt: now.Add(time.Hour)}, true},
		{"inside the safety margin", &Token{Value: "tok", ExpiresAt: now.Add(expiryMargin - time.Second)}, false},
		{"just outside the margin", &Token{Value: "tok", ExpiresAt: now.Add(expiryMargin + time.Second)}, true},
		{"already expired", &Token{Value: "tok", ExpiresAt: now.Add(-time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.validAt(now))
		})
	}
}

func TestParseTokenJSON(t *testing.T) {
	scopes := []string{"https://www.googleapis.com/auth/cloud-platform"}

	t.Run("success", func(t *testing.T) {
		before := time.Now()
		token, err := parseTokenJSON([]byte(`{"access_token":"ya29.tok","expires_in":3599}`), scopes, SourceMetadata)
		require.NoError(t, err)
		assert.Equal(t, "ya29.tok", token.Value)
		assert.Equal(t, scopes, token.Scopes)
		assert.WithinDuration(t, before.Add(3599*time.Second), token.ExpiresAt, 5*time.Second)
	})

	t.Run("unparsable body", func(t *testing.T) {
		_, err := parseTokenJSON([]byte(`not json`), scopes, SourceMetadata)
		require.Error(t, err)
		assert.True(t, IsCategory(err, ErrCategoryExchange))
	})

	t.Run("missing access_token", func(t *testing.T) {
		_, err := parseTokenJSON([]byte(`{"expires_in":3600}`), scopes, SourceMetadata)
		require.Error(t, err)
		assert.True(t, IsCategory(err, ErrCategoryExchange))
	})

	t.Run("missing expires_in", func(t *testing.T) {
		_, err := parseTokenJSON([]byte(`{"access_token":"tok"}`), scopes, SourceMetadata)
		require.Error(t, err)
		assert.True(t, IsCategory(err, ErrCategoryExchange))
	})
}
