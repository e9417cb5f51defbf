package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/imamik/psclink/internal/platform/cloud"
)

// Side is the administrative boundary a client acts on.
type Side string

const (
	Management Side = "management"
	Customer   Side = "customer"
)

// Identity is the principal a client acts as.
type Identity struct {
	Side      Side
	Principal string
}

func (i Identity) String() string {
	if i.Principal == "" {
		return string(i.Side)
	}
	return fmt.Sprintf("%s/%s", i.Side, i.Principal)
}

// Token is an opaque credential. A zero Expiry never expires.
type Token struct {
	Value  string
	Expiry time.Time
}

// expiryLeeway refreshes tokens slightly before they expire.
const expiryLeeway = 30 * time.Second

// Valid reports whether the token can still be used at now.
func (t Token) Valid(now time.Time) bool {
	if t.Value == "" {
		return false
	}
	return t.Expiry.IsZero() || now.Add(expiryLeeway).Before(t.Expiry)
}

// TokenSource issues tokens for a project and identity.
type TokenSource interface {
	Token(ctx context.Context, project string, id Identity) (Token, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context, project string, id Identity) (Token, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context, project string, id Identity) (Token, error) {
	return f(ctx, project, id)
}

// StaticTokenSource returns the same non-expiring token for every request.
func StaticTokenSource(value string) TokenSource {
	return TokenSourceFunc(func(context.Context, string, Identity) (Token, error) {
		return Token{Value: value}, nil
	})
}

// Connector builds a provider client from a token.
type Connector func(ctx context.Context, project string, id Identity, token Token) (cloud.Client, error)

type cacheKey struct {
	project string
	id      Identity
}

type entry struct {
	client cloud.Client
	token  Token
}

// Factory produces and caches project-scoped clients.
type Factory struct {
	tokens  TokenSource
	connect Connector
	now     func() time.Time

	mu    sync.Mutex
	cache map[cacheKey]entry
	group singleflight.Group
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithClock replaces time.Now for token expiry checks.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		f.now = now
	}
}

// NewFactory creates a Factory.
func NewFactory(tokens TokenSource, connect Connector, opts ...FactoryOption) *Factory {
	f := &Factory{
		tokens:  tokens,
		connect: connect,
		now:     time.Now,
		cache:   make(map[cacheKey]entry),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ClientFor returns a client authorized only for project acting as id.
// Concurrent calls for the same pair share one token exchange. Errors are
// *cloud.ClassifiedError; an unclassifiable credential failure is reported
// as PermissionDenied.
func (f *Factory) ClientFor(ctx context.Context, project string, id Identity) (cloud.Client, error) {
	if project == "" {
		return nil, cloud.NewClassifiedError(cloud.ErrorValidation, "credentials", id.String(), errors.New("project is required"))
	}
	if id.Side != Management && id.Side != Customer {
		return nil, cloud.NewClassifiedError(cloud.ErrorValidation, "credentials", project, fmt.Errorf("unknown side %q", id.Side))
	}

	key := cacheKey{project: project, id: id}
	f.mu.Lock()
	cached, ok := f.cache[key]
	f.mu.Unlock()
	if ok && cached.token.Valid(f.now()) {
		return cached.client, nil
	}

	v, err, _ := f.group.Do(project+"|"+id.String(), func() (any, error) {
		token, err := f.tokens.Token(ctx, project, id)
		if err != nil {
			return nil, fmt.Errorf("obtaining token for %s in %s: %w", id, project, err)
		}
		client, err := f.connect(ctx, project, id, token)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s as %s: %w", project, id, err)
		}
		scoped := &scopedClient{inner: client, project: project}

		f.mu.Lock()
		f.cache[key] = entry{client: scoped, token: token}
		f.mu.Unlock()
		return scoped, nil
	})
	if err != nil {
		if kind := cloud.Classify(err); kind != cloud.ErrorUnknown {
			return nil, cloud.NewClassifiedError(kind, "credentials", project, err)
		}
		return nil, cloud.NewClassifiedError(cloud.ErrorPermissionDenied, "credentials", project, err)
	}
	return v.(cloud.Client), nil
}

// Invalidate drops the cached client of a project and identity.
func (f *Factory) Invalidate(project string, id Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, cacheKey{project: project, id: id})
}
