package magpie

import (
	"context"
	"strings"
	"sync"
)

// CredentialResolver supplies the public key used by endpoints that reject
// secret keys.
type CredentialResolver interface {
	PublicKey(ctx context.Context) (string, error)
	// Reset drops any cached key, e.g. after the secret key was rotated.
	Reset()
}

// OrganizationKeyResolver looks the public key up through the organization
// endpoint the first time it is needed and caches it. Failed lookups are not
// cached. Concurrent first calls share a single lookup.
type OrganizationKeyResolver struct {
	org        *OrganizationService
	credential func() string

	mu  sync.Mutex
	key string
}

// NewOrganizationKeyResolver returns a resolver that reads the current
// credential through credential on every lookup.
func NewOrganizationKeyResolver(org *OrganizationService, credential func() string) *OrganizationKeyResolver {
	return &OrganizationKeyResolver{org: org, credential: credential}
}

// PublicKey returns the cached key or fetches it. A credential that is
// already a public key is returned as is.
func (r *OrganizationKeyResolver) PublicKey(ctx context.Context) (string, error) {
	current := r.credential()
	if strings.HasPrefix(current, "pk_") {
		return current, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.key != "" {
		return r.key, nil
	}

	org, err := r.org.Me(ctx)
	if err != nil {
		return "", err
	}
	key, err := org.PublicKey(current)
	if err != nil {
		return "", err
	}
	r.key = key
	return key, nil
}

func (r *OrganizationKeyResolver) Reset() {
	r.mu.Lock()
	r.key = ""
	r.mu.Unlock()
}

// StaticKeyResolver always returns the same public key.
type StaticKeyResolver string

func (k StaticKeyResolver) PublicKey(context.Context) (string, error) {
	return string(k), nil
}

func (StaticKeyResolver) Reset() {}
