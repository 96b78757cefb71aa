// Package token mints room access tokens for media-server joins.
//
// Tokens are HMAC-SHA256 JWTs carrying the room grant as flat claims, signed
// with the server API secret and keyed by the API key in the issuer claim.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is used when no validity window is set on the builder.
const DefaultTTL = 6 * time.Hour

// AccessToken accumulates a room grant and signs it as a JWT. Setters return
// the receiver so calls chain.
type AccessToken struct {
	apiKey    string
	apiSecret string
	identity  string
	name      string
	room      string
	ttl       time.Duration

	canPublish   bool
	canSubscribe bool

	now func() time.Time
}

// New creates a token builder for the given API credentials. Publish and
// subscribe permissions default to granted.
func New(apiKey, apiSecret string) *AccessToken {
	return &AccessToken{
		apiKey:       apiKey,
		apiSecret:    apiSecret,
		ttl:          DefaultTTL,
		canPublish:   true,
		canSubscribe: true,
		now:          time.Now,
	}
}

// WithIdentity sets the participant identity. The display name defaults to
// the identity unless WithName is also called.
func (t *AccessToken) WithIdentity(identity string) *AccessToken {
	t.identity = identity
	if t.name == "" {
		t.name = identity
	}
	return t
}

// WithName sets the participant display name.
func (t *AccessToken) WithName(name string) *AccessToken {
	t.name = name
	return t
}

// WithRoom names the room the token grants access to.
func (t *AccessToken) WithRoom(room string) *AccessToken {
	t.room = room
	return t
}

// WithTTL sets how long the token stays valid.
func (t *AccessToken) WithTTL(ttl time.Duration) *AccessToken {
	if ttl > 0 {
		t.ttl = ttl
	}
	return t
}

// WithCanPublish controls the publish permission.
func (t *AccessToken) WithCanPublish(v bool) *AccessToken {
	t.canPublish = v
	return t
}

// WithCanSubscribe controls the subscribe permission.
func (t *AccessToken) WithCanSubscribe(v bool) *AccessToken {
	t.canSubscribe = v
	return t
}

// WithClock overrides the time source, for tests.
func (t *AccessToken) WithClock(now func() time.Time) *AccessToken {
	t.now = now
	return t
}

// JWT signs and returns the token.
func (t *AccessToken) JWT() (string, error) {
	if t.apiKey == "" || t.apiSecret == "" {
		return "", fmt.Errorf("token: api key and secret are required")
	}
	if t.identity == "" {
		return "", fmt.Errorf("token: identity is required")
	}
	if t.room == "" {
		return "", fmt.Errorf("token: room is required")
	}

	now := t.now()
	claims := jwt.MapClaims{
		"iss":          t.apiKey,
		"sub":          t.identity,
		"name":         t.name,
		"nbf":          now.Unix(),
		"exp":          now.Add(t.ttl).Unix(),
		"room":         t.room,
		"video":        true,
		"audio":        true,
		"canPublish":   t.canPublish,
		"canSubscribe": t.canSubscribe,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(t.apiSecret))
}

// Verify parses a token signed with the given secret and returns its claims.
func Verify(raw, apiSecret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("token: unexpected signing method %v", tok.Header["alg"])
		}
		return []byte(apiSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
