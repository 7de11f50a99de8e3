package auth

import (
	"sync"
)

// TokenCache holds at most one bearer token. When empty, Token signs a new
// one from the current Identity and keeps it until Set or Reset.
// Safe for concurrent use.
type TokenCache struct {
	issuer TokenIssuer

	mu       sync.Mutex
	identity Identity
	token    string
}

func NewTokenCache(issuer TokenIssuer, identity Identity) *TokenCache {
	return &TokenCache{
		issuer:   issuer,
		identity: identity,
	}
}

// Token returns the held token, issuing one first if none is held.
func (c *TokenCache) Token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	tok, err := c.issueLocked()
	if err != nil {
		return "", err
	}
	c.token = tok
	return tok, nil
}

// Refresh always issues a new token and holds it. It also returns the
// identity the token was signed as.
func (c *TokenCache) Refresh() (string, Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.identityLocked()
	tok, err := c.issueLocked()
	if err != nil {
		return "", id, err
	}
	c.token = tok
	return tok, id, nil
}

func (c *TokenCache) issueLocked() (string, error) {
	id := c.identity
	return c.issuer.Issue(id.Subject, id.Roles, id.Secret, id.ttl())
}

// Current returns the held token without issuing; "" when none is held.
func (c *TokenCache) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Set replaces the held token. Setting "" is the same as Reset.
func (c *TokenCache) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *TokenCache) Reset() {
	c.Set("")
}

func (c *TokenCache) Identity() Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identityLocked()
}

func (c *TokenCache) identityLocked() Identity {
	id := c.identity
	id.Roles = append([]string(nil), id.Roles...)
	return id
}

// SetIdentity changes what future tokens are signed as. A token already
// held is kept.
func (c *TokenCache) SetIdentity(id Identity) {
	id.Roles = append([]string(nil), id.Roles...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = id
}
