package gcpauth

import (
	"context"
)

// SourceKind identifies a credential source variant.
type SourceKind string

const (
	// SourceServiceAccount is a service account key file; tokens are produced
	// by self-signed JWT exchange.
	SourceServiceAccount SourceKind = "service_account"
	// SourceMetadata is the runtime metadata service; tokens issued by the
	// surrounding environment are relayed, never signed locally.
	SourceMetadata SourceKind = "metadata"
	// SourceAuthorizedUser is a local developer credential; tokens are
	// produced by refresh-token exchange.
	SourceAuthorizedUser SourceKind = "authorized_user"
)

// CredentialSource produces bearer tokens for a requested scope set.
//
// The variant set is closed: the resolver commits to exactly one source per
// AuthenticationManager, and credential material behind a source is read-only
// after load, so Token may be called concurrently.
type CredentialSource interface {
	// Kind returns the source variant identifier.
	Kind() SourceKind

	// Token acquires a fresh token for the given scopes. Implementations
	// perform exactly one outbound exchange per call and never retry
	// internally.
	Token(ctx context.Context, scopes []string) (*Token, error)
}
