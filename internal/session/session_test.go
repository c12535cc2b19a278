package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndResolve(t *testing.T) {
	m := NewManager([]byte("secret"), time.Hour, NewMemoryStore())

	token, exp, err := m.Issue(t.Context(), 7)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	userID, err := m.Resolve(t.Context(), token)
	require.NoError(t, err)
	require.Equal(t, uint(7), userID)
}

func TestRevoke(t *testing.T) {
	m := NewManager([]byte("secret"), time.Hour, NewMemoryStore())

	token, _, err := m.Issue(t.Context(), 7)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(t.Context(), token))

	_, err = m.Resolve(t.Context(), token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveRejectsTamperedToken(t *testing.T) {
	m := NewManager([]byte("secret"), time.Hour, NewMemoryStore())
	other := NewManager([]byte("other-secret"), time.Hour, NewMemoryStore())

	token, _, err := other.Issue(t.Context(), 7)
	require.NoError(t, err)

	_, err = m.Resolve(t.Context(), token)
	require.Error(t, err)

	_, err = m.Resolve(t.Context(), "not-a-token")
	require.Error(t, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Save(t.Context(), "sid", 1, -time.Second))
	_, err := s.Lookup(t.Context(), "sid")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDestroyUnknownSID(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Destroy(t.Context(), "missing"))
}
