// Package gcpauth resolves, issues, and caches short-lived Google Cloud
// bearer tokens.
//
// # Overview
//
// gcpauth probes the credential sources available in the runtime environment,
// commits to the first usable one, and serves access tokens from a
// concurrency-safe in-memory cache keyed by scope set. Callers see a single
// stable accessor regardless of which source is active.
//
// The sources, in resolution order:
//
//  1. A service account key file named explicitly via Init options.
//  2. A service account key file named by the GOOGLE_APPLICATION_CREDENTIALS
//     environment variable.
//  3. The GCE/Cloud Run metadata service of the surrounding environment.
//  4. Application default credentials created with `gcloud auth
//     application-default login`.
//
// Steps 1 and 2 are explicit configuration: any failure there is fatal and
// never falls through, so a broken key file is reported instead of silently
// masked by a working metadata service. Steps 3 and 4 are environment
// detection: failures there advance to the next source, and if both fail Init
// returns a NoAuthMethodError carrying both causes.
//
// # Usage
//
//	manager, err := gcpauth.Init(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := manager.GetToken(ctx, "https://www.googleapis.com/auth/cloud-platform")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	req.Header.Set("Authorization", "Bearer "+token.Value)
//
// # Caching
//
// Tokens are cached per normalized scope set for their remaining lifetime
// minus a safety margin. Concurrent callers that find a missing or expiring
// entry share a single outbound refresh; access tokens are rate-limited
// upstream, so the at-most-one-refresh-per-scope-set guarantee is part of the
// package contract, not an optimization. Nothing is persisted across
// processes.
//
// # Interoperability
//
// AuthenticationManager.TokenSource adapts the manager to a
// golang.org/x/oauth2 TokenSource for libraries that consume x/oauth2
// credentials.
package gcpauth
