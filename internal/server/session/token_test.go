package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/codenames-arena/internal/apperrors"
)

func TestTokenIssuer(t *testing.T) {
	t.Parallel()
	ti := NewTokenIssuer("secret", time.Minute)

	token, err := ti.Issue("ABCDE", "p1")
	require.NoError(t, err)
	assert.NoError(t, ti.Verify(token, "ABCDE", "p1"))

	tests := []struct {
		name     string
		token    string
		room     string
		playerID string
	}{
		{"wrong room", token, "ZZZZZ", "p1"},
		{"wrong player", token, "ABCDE", "p2"},
		{"tampered", token + "x", "ABCDE", "p1"},
		{"garbage", "not-a-token", "ABCDE", "p1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, ti.Verify(tt.token, tt.room, tt.playerID), apperrors.ErrUnauthorized)
		})
	}
}

func TestTokenIssuer_OtherSecret(t *testing.T) {
	t.Parallel()
	token, err := NewTokenIssuer("a", time.Minute).Issue("ABCDE", "p1")
	require.NoError(t, err)

	err = NewTokenIssuer("b", time.Minute).Verify(token, "ABCDE", "p1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ti := NewTokenIssuer("secret", time.Minute)
	ti.now = func() time.Time { return now }

	token, err := ti.Issue("ABCDE", "p1")
	require.NoError(t, err)

	ti.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.ErrorIs(t, ti.Verify(token, "ABCDE", "p1"), apperrors.ErrUnauthorized)
}

func TestPresence(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	p := NewPresence(clock.Now)

	p.SetOnline("ROOM1", "a")
	p.SetOnline("ROOM1", "b")
	p.SetOnline("ROOM2", "c")
	assert.True(t, p.IsOnline("a"))
	assert.False(t, p.IsOnline("nobody"))

	p.SetOffline("a")
	assert.False(t, p.IsOnline("a"))
	clock.Advance(time.Minute)
	p.SetOffline("a") // 重复离线不刷新时间
	clock.Advance(30 * time.Second)
	assert.Equal(t, map[string]string{"a": "ROOM1"}, p.Expired(time.Minute))

	p.SetOnline("ROOM1", "a")
	assert.Empty(t, p.Expired(time.Minute))

	p.DropRoom("ROOM1")
	assert.False(t, p.IsOnline("a"))
	assert.False(t, p.IsOnline("b"))
	assert.True(t, p.IsOnline("c"))

	p.Remove("c")
	assert.False(t, p.IsOnline("c"))
}
