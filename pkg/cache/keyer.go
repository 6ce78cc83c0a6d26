package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex SHA-256 digest of data. File entries are sharded by
// its first two characters.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Keyer derives cache keys for API responses.
type Keyer interface {
	// ResponseKey returns the key for a response to method on rawURL. The
	// URL must include the encoded query string.
	ResponseKey(method, rawURL string) string
}

// DefaultKeyer keys a response as "response:" followed by the digest of
// the upper-cased method and the full URL, separated by a space.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResponseKey implements [Keyer].
func (DefaultKeyer) ResponseKey(method, rawURL string) string {
	return "response:" + Hash([]byte(strings.ToUpper(method)+" "+rawURL))
}

// ScopedKeyer wraps a Keyer with a prefix so that callers with different
// credentials keep separate namespaces.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), APIKeyScope(apiKey))
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses the
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResponseKey implements [Keyer].
func (k *ScopedKeyer) ResponseKey(method, rawURL string) string {
	return k.prefix + k.inner.ResponseKey(method, rawURL)
}

// APIKeyScope returns the key prefix for an API key. The key itself never
// appears in the prefix; an empty key maps to the anonymous scope.
func APIKeyScope(apiKey string) string {
	if apiKey == "" {
		return "anon:"
	}
	return "key:" + Hash([]byte(apiKey))[:16] + ":"
}
