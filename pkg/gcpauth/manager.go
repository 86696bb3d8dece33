package gcpauth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// defaultHTTPTimeout bounds every outbound token exchange.
const defaultHTTPTimeout = 30 * time.Second

// options collects Init configuration.
type options struct {
	credentialsFile string
	client          *http.Client
}

// Option configures Init.
type Option func(*options)

// WithCredentialsFile names a service account key file explicitly. The file
// must load cleanly: unlike the environment fallback chain, an explicit path
// that fails is a fatal Init error.
func WithCredentialsFile(path string) Option {
	return func(o *options) {
		o.credentialsFile = path
	}
}

// WithHTTPClient sets the HTTP client used for all outbound calls. The
// default client carries a 30 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// AuthenticationManager is the public facade: one committed credential source
// plus an in-memory token cache keyed by normalized scope set. It is safe for
// concurrent use and lives for the process; nothing is persisted.
type AuthenticationManager struct {
	source CredentialSource

	mu     sync.RWMutex
	tokens map[string]*Token

	// group guarantees at most one in-flight refresh per scope-set key.
	// Tokens are rate-limited upstream, so concurrent callers that miss the
	// cache must share one outbound exchange rather than issue their own.
	group singleflight.Group
}

// Init resolves a credential source via the fallback chain and returns a
// manager bound to it. The chain, in order: explicit key file (option), key
// file named by GOOGLE_APPLICATION_CREDENTIALS, runtime metadata service,
// gcloud application default credentials. With no explicit path and neither
// environment source usable, the error is a *NoAuthMethodError carrying both
// probe failures.
func Init(ctx context.Context, opts ...Option) (*AuthenticationManager, error) {
	o := &options{
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}

	source, err := resolveSource(ctx, o)
	if err != nil {
		return nil, err
	}
	return NewManager(source), nil
}

// NewManager builds a manager around an already-constructed source.
func NewManager(source CredentialSource) *AuthenticationManager {
	return &AuthenticationManager{
		source: source,
		tokens: make(map[string]*Token),
	}
}

// Kind returns the committed credential source variant.
func (m *AuthenticationManager) Kind() SourceKind {
	return m.source.Kind()
}

// GetToken returns a valid token for the given scopes, from cache when the
// cached token has lifetime left beyond the safety margin, otherwise via
// exactly one refresh shared by all concurrent callers of the same scope set.
//
// A failed refresh is surfaced to the callers of that refresh round only; the
// previous cache entry, even if expired, stays in place so a later call can
// retry without the manager forgetting what it had.
func (m *AuthenticationManager) GetToken(ctx context.Context, scopes ...string) (*Token, error) {
	key := scopeKey(scopes)

	if token := m.cached(key); token.Valid() {
		return token, nil
	}

	result, err, _ := m.group.Do(key, func() (interface{}, error) {
		// A refresh that finished while this caller was queueing may have
		// installed a fresh token already.
		if token := m.cached(key); token.Valid() {
			return token, nil
		}

		token, err := m.source.Token(ctx, scopes)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.tokens[key] = token
		m.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Token), nil
}

func (m *AuthenticationManager) cached(key string) *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[key]
}
