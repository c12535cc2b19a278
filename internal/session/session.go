// Package session implements cookie-carried, server-side sessions. The cookie
// value is a signed HS256 token naming a session id; the authoritative record
// lives in the Store, so a token alone is never enough after logout.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "session"

type Manager struct {
	secret []byte
	ttl    time.Duration
	store  Store
}

func NewManager(secret []byte, ttl time.Duration, store Store) *Manager {
	return &Manager{secret: secret, ttl: ttl, store: store}
}

// Issue creates a server-side session for userID and returns the signed
// cookie token together with its expiry.
func (m *Manager) Issue(ctx context.Context, userID uint) (string, time.Time, error) {
	sid, err := newSID()
	if err != nil {
		return "", time.Time{}, err
	}

	exp := time.Now().Add(m.ttl)
	claims := jwt.MapClaims{
		"sid": sid,
		"sub": userID,
		"exp": exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	if err := m.store.Save(ctx, sid, userID, m.ttl); err != nil {
		return "", time.Time{}, err
	}

	return token, exp, nil
}

// Resolve validates the cookie token and returns the user id of the live
// session it names. ErrNotFound is returned for revoked or expired sessions.
func (m *Manager) Resolve(ctx context.Context, token string) (uint, error) {
	sid, userID, err := m.parse(token)
	if err != nil {
		return 0, err
	}

	stored, err := m.store.Lookup(ctx, sid)
	if err != nil {
		return 0, err
	}
	if stored != userID {
		return 0, ErrNotFound
	}
	return stored, nil
}

// Revoke deletes the server-side record of the session the token names.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	sid, _, err := m.parse(token)
	if err != nil {
		return err
	}
	return m.store.Destroy(ctx, sid)
}

func (m *Manager) parse(token string) (string, uint, error) {
	t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("invalid session token: %w", err)
	}
	if !t.Valid {
		return "", 0, fmt.Errorf("invalid session token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, fmt.Errorf("invalid session claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", 0, fmt.Errorf("invalid session id claim")
	}
	subRaw, ok := claims["sub"].(float64)
	if !ok {
		return "", 0, fmt.Errorf("invalid subject claim")
	}

	return sid, uint(subRaw), nil
}

func newSID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
