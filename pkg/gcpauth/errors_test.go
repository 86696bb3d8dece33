package gcpauth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthErrorFormat(t *testing.T) {
	err := ErrTransport("token endpoint returned status 503").
		WithCause(fmt.Errorf("service unavailable")).
		WithSource(SourceServiceAccount)

	assert.Equal(t,
		"[service_account:transport] token endpoint returned status 503: service unavailable",
		err.Error())
}

func TestAuthErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := ErrTransport("request failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
}

func TestIsCategory(t *testing.T) {
	assert.True(t, IsCategory(ErrConfig("missing field"), ErrCategoryConfig))
	assert.False(t, IsCategory(ErrConfig("missing field"), ErrCategoryTransport))
	assert.False(t, IsCategory(fmt.Errorf("plain"), ErrCategoryConfig))

	// Category survives wrapping.
	wrapped := fmt.Errorf("init: %w", ErrSigning("bad key"))
	assert.True(t, IsCategory(wrapped, ErrCategorySigning))
}

func TestRetryableByCategory(t *testing.T) {
	assert.True(t, IsRetryable(ErrTransport("timeout")))
	assert.True(t, IsRetryable(ErrExchange("bad body")))
	assert.False(t, IsRetryable(ErrConfig("missing file")))
	assert.False(t, IsRetryable(ErrSigning("bad key")))
}

func TestNoAuthMethodErrorCarriesBothCauses(t *testing.T) {
	mdErr := ErrTransport("metadata service unavailable").WithSource(SourceMetadata)
	userErr := ErrConfig("reading application default credentials").WithSource(SourceAuthorizedUser)

	var err error = &NoAuthMethodError{MetadataErr: mdErr, AuthorizedUserErr: userErr}

	var noAuth *NoAuthMethodError
	require.ErrorAs(t, err, &noAuth)
	assert.Same(t, mdErr, noAuth.MetadataErr)
	assert.Same(t, userErr, noAuth.AuthorizedUserErr)

	// Both causes remain reachable through the error chain.
	assert.ErrorIs(t, err, mdErr)
	assert.ErrorIs(t, err, userErr)

	assert.Contains(t, err.Error(), "metadata service unavailable")
	assert.Contains(t, err.Error(), "application default credentials")
}

func TestNoAuthMethodErrorUnwrapOrder(t *testing.T) {
	e := &NoAuthMethodError{
		MetadataErr:       errors.New("md"),
		AuthorizedUserErr: errors.New("user"),
	}
	unwrapped := e.Unwrap()
	require.Len(t, unwrapped, 2)
	assert.Equal(t, "md", unwrapped[0].Error())
	assert.Equal(t, "user", unwrapped[1].Error())
}
