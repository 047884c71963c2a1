package exchange

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/quaylabs/exchangekit/internal/crypto"
	"github.com/quaylabs/exchangekit/internal/logx"
	"github.com/quaylabs/exchangekit/internal/prefs"
)

// TokenStore keeps the access/refresh token pair: process-local cached copies
// plus an encrypted-at-rest persisted copy in the preference store.
type TokenStore struct {
	prefs  *prefs.Store
	sealer *crypto.Sealer

	mu      sync.Mutex
	access  string
	refresh string
}

// NewTokenStore builds a token store over the given preference store and
// sealer, then tries to load any previously persisted pair. A load failure is
// logged and leaves the in-memory tokens empty; it does not fail construction.
func NewTokenStore(p *prefs.Store, sealer *crypto.Sealer) *TokenStore {
	t := &TokenStore{prefs: p, sealer: sealer}
	if err := t.Load(); err != nil {
		logx.Warnf("could not load exchange tokens: %v", err)
	}
	return t
}

// Save caches the pair in memory, seals each token, base64-encodes the
// ciphertext and writes both preference keys. Both values are sealed before
// anything is written, so a sealing failure persists nothing. The two
// preference writes are still separate statements: a failure on the second
// leaves only the access token updated. That ordering dependency matches the
// host contract and is not a transactional guarantee.
func (t *TokenStore) Save(access, refresh string) error {
	t.mu.Lock()
	t.access = access
	t.refresh = refresh
	t.mu.Unlock()

	sealedAccess, err := t.sealer.Seal(access)
	if err != nil {
		logx.Errorf("could not encrypt exchange access token: %v", err)
		return fmt.Errorf("seal access token: %w", err)
	}
	sealedRefresh, err := t.sealer.Seal(refresh)
	if err != nil {
		logx.Errorf("could not encrypt exchange refresh token: %v", err)
		return fmt.Errorf("seal refresh token: %w", err)
	}

	if err := t.prefs.Set(prefs.KeyAccessToken, base64.StdEncoding.EncodeToString(sealedAccess)); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if err := t.prefs.Set(prefs.KeyRefreshToken, base64.StdEncoding.EncodeToString(sealedRefresh)); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	return nil
}

// Load reads the persisted pair, base64-decodes and unseals it. Any failure
// is logged and returned, leaving the in-memory tokens untouched.
func (t *TokenStore) Load() error {
	encodedAccess, err := t.prefs.Get(prefs.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("read access token preference: %w", err)
	}
	encodedRefresh, err := t.prefs.Get(prefs.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("read refresh token preference: %w", err)
	}
	if encodedAccess == "" && encodedRefresh == "" {
		return nil
	}

	sealedAccess, err := base64.StdEncoding.DecodeString(encodedAccess)
	if err != nil {
		logx.Errorf("could not decode exchange token info: %v", err)
		return fmt.Errorf("decode access token: %w", err)
	}
	sealedRefresh, err := base64.StdEncoding.DecodeString(encodedRefresh)
	if err != nil {
		logx.Errorf("could not decode exchange token info: %v", err)
		return fmt.Errorf("decode refresh token: %w", err)
	}

	access, err := t.sealer.Open(sealedAccess)
	if err != nil {
		logx.Errorf("could not decrypt exchange access token: %v", err)
		return fmt.Errorf("unseal access token: %w", err)
	}
	refresh, err := t.sealer.Open(sealedRefresh)
	if err != nil {
		logx.Errorf("could not decrypt exchange refresh token: %v", err)
		return fmt.Errorf("unseal refresh token: %w", err)
	}

	t.mu.Lock()
	t.access = access
	t.refresh = refresh
	t.mu.Unlock()
	return nil
}

// Clear drops the cached pair and persists empty strings in its place.
func (t *TokenStore) Clear() error {
	return t.Save("", "")
}

// AccessToken returns the cached access token, possibly empty.
func (t *TokenStore) AccessToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.access
}

// RefreshToken returns the cached refresh token, possibly empty.
func (t *TokenStore) RefreshToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refresh
}
