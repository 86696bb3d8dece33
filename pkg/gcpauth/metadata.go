package gcpauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/compute/metadata"
)

const (
	// metadataTokenPath serves the default account's access token. Scopes go
	// in the query string, comma-joined.
	metadataTokenPath = "instance/service-accounts/default/token"

	// metadataProbePath is the cheapest request that proves a default
	// account is attached to the environment.
	metadataProbePath = "instance/service-accounts/default/email"

	// metadataProbeTimeout bounds the resolver's availability probe. Off GCE
	// the metadata host does not resolve or refuses quickly; the bound keeps
	// the worst case short.
	metadataProbeTimeout = 2 * time.Second
)

// MetadataSource relays tokens issued by the runtime metadata service for the
// environment's default service account. It never signs anything itself.
//
// The underlying client targets the fixed internal metadata host and attaches
// the Metadata-Flavor header that marks the request as coming from inside the
// environment.
type MetadataSource struct {
	client *metadata.Client
}

// NewMetadataSource builds a source over the given HTTP client.
func NewMetadataSource(client *http.Client) *MetadataSource {
	return &MetadataSource{client: metadata.NewClient(client)}
}

// Kind implements CredentialSource.
func (s *MetadataSource) Kind() SourceKind {
	return SourceMetadata
}

// probe checks that the metadata service is reachable and has a default
// account attached. Any failure means "environment absent" to the resolver.
func (s *MetadataSource) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, metadataProbeTimeout)
	defer cancel()

	if _, err := s.client.GetWithContext(ctx, metadataProbePath); err != nil {
		return ErrTransport("metadata service unavailable").
			WithCause(err).WithSource(SourceMetadata)
	}
	return nil
}

// Token implements CredentialSource.
func (s *MetadataSource) Token(ctx context.Context, scopes []string) (*Token, error) {
	suffix := metadataTokenPath
	if len(scopes) > 0 {
		suffix += "?scopes=" + url.QueryEscape(strings.Join(scopes, ","))
	}

	body, err := s.client.GetWithContext(ctx, suffix)
	if err != nil {
		return nil, ErrTransport("metadata token request failed").
			WithCause(err).WithSource(SourceMetadata)
	}
	return parseTokenJSON([]byte(body), scopes, SourceMetadata)
}
