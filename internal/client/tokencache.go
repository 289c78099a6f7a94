package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTokenTTL is how long a Shiprocket token is reused before a fresh
// login. The carrier's tokens live 10 days; 12 hours keeps a wide margin.
const DefaultTokenTTL = 12 * time.Hour

// TokenCache hands out a carrier bearer token, logging in lazily on first use
// or expiry. Concurrent misses share a single login via singleflight. A
// failed login never clobbers a previously cached token.
type TokenCache struct {
	carrier ShiprocketClient
	ttl     time.Duration
	now     func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	token     string
	fetchedAt time.Time
}

func NewTokenCache(carrier ShiprocketClient, ttl time.Duration, now func() time.Time) *TokenCache {
	if now == nil {
		now = time.Now
	}
	return &TokenCache{
		carrier: carrier,
		ttl:     ttl,
		now:     now,
	}
}

func (t *TokenCache) Token(ctx context.Context) (string, error) {
	if tok, ok := t.cached(); ok {
		return tok, nil
	}

	v, err, _ := t.group.Do("login", func() (interface{}, error) {
		// A caller that queued behind the winning refresh sees the fresh
		// token here without a second login.
		if tok, ok := t.cached(); ok {
			return tok, nil
		}

		tok, err := t.carrier.Login(ctx)
		if err != nil {
			return nil, err
		}

		t.mu.Lock()
		t.token = tok
		t.fetchedAt = t.now()
		t.mu.Unlock()

		return tok, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (t *TokenCache) cached() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != "" && t.now().Sub(t.fetchedAt) < t.ttl {
		return t.token, true
	}
	return "", false
}
