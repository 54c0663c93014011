package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMatchesByKind(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", ErrDuplicateEmail)
	require.ErrorIs(t, wrapped, ErrDuplicateEmail)
	require.NotErrorIs(t, wrapped, ErrDuplicateUsername)

	same := &Error{Kind: KindDuplicateEmail, Message: "other text"}
	require.ErrorIs(t, same, ErrDuplicateEmail)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(fmt.Errorf("x: %w", ErrInvalidToken))
	require.True(t, ok)
	require.Equal(t, KindInvalidToken, kind)

	_, ok = KindOf(errors.New("boom"))
	require.False(t, ok)
}

func TestUserViewMirrorsMetadata(t *testing.T) {
	name := "Alice"
	u := &User{ID: 7, Email: "a@example.com", Username: "alice", FullName: &name}
	v := u.View()
	require.Equal(t, "alice", v.UserMetadata.Username)
	require.Equal(t, &name, v.UserMetadata.FullName)
	require.Nil(t, v.AvatarURL)
}
