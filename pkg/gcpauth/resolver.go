package gcpauth

import (
	"context"
	"os"
)

// envCredentials names a service account key file, taking effect when no
// explicit path is passed to Init.
const envCredentials = "GOOGLE_APPLICATION_CREDENTIALS"

// resolveSource runs the fallback chain and commits to the first usable
// credential source.
//
// Explicit configuration wins outright: a path given via options or the
// environment variable is loaded as a service account key, and any failure
// there is fatal — falling through would hide a broken configuration behind
// whatever the environment happens to offer. The metadata and authorized-user
// steps are environment detection: their failures mean "not this environment"
// and advance the chain, and if both fail the aggregate NoAuthMethodError
// reports why each was rejected.
func resolveSource(ctx context.Context, opts *options) (CredentialSource, error) {
	if opts.credentialsFile != "" {
		return LoadServiceAccountSource(opts.credentialsFile, opts.client)
	}

	if path := os.Getenv(envCredentials); path != "" {
		return LoadServiceAccountSource(path, opts.client)
	}

	md := NewMetadataSource(opts.client)
	mdErr := md.probe(ctx)
	if mdErr == nil {
		return md, nil
	}

	user, userErr := LoadAuthorizedUserSource(opts.client)
	if userErr == nil {
		return user, nil
	}

	return nil, &NoAuthMethodError{
		MetadataErr:       mdErr,
		AuthorizedUserErr: userErr,
	}
}
