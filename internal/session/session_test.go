package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/internal/domain"
	"tutorhub/internal/pkg/cache"
	"tutorhub/internal/pkg/jwt"
)

func TestAuthenticator_LifeCycle(t *testing.T) {
	ctx := context.Background()
	tokens := jwt.New("secret", time.Hour)
	auth := NewAuthenticator(tokens, NewStore(cache.NewMemory()))

	token, _, err := tokens.GenerateToken(5, "student", "s@x.sa")
	require.NoError(t, err)

	sess, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sess.UserID)
	assert.True(t, sess.Is(domain.RoleStudent))
	assert.NotEmpty(t, sess.TokenID)

	require.NoError(t, auth.End(ctx, sess))
	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestAuthenticator_RejectsUnknownRole(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	auth := NewAuthenticator(tokens, nil)

	token, _, err := tokens.GenerateToken(5, "root", "")
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestContextRoundTrip(t *testing.T) {
	s := &Session{UserID: 9, Role: domain.RoleTeacher}
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
