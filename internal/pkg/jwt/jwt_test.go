package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("secret", time.Hour)

	token, claims, err := svc.GenerateToken(42, "student", "a@b.sa")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.UserID)
	assert.Equal(t, "student", parsed.Role)
	assert.Equal(t, "a@b.sa", parsed.Email)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestValidateRejectsForeignSecretAndExpiry(t *testing.T) {
	svc := New("secret", time.Hour)
	token, _, err := svc.GenerateToken(1, "teacher", "")
	require.NoError(t, err)

	_, err = New("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := New("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.GenerateToken(1, "teacher", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
