package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elektropregled/internal/domain"
)

func TestJWTIssuer_RoundTrip(t *testing.T) {
	j := NewJWTIssuer("secret", time.Hour)
	raw, err := j.Issue(5, "ivan")
	require.NoError(t, err)

	claims, err := j.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "ivan", claims.Username)
	assert.Equal(t, "5", claims.Subject)
}

func TestJWTIssuer_Rejects(t *testing.T) {
	j := NewJWTIssuer("secret", time.Hour)

	expired := NewJWTIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue(1, "demo")
	require.NoError(t, err)

	foreign, err := NewJWTIssuer("other", time.Hour).Issue(1, "demo")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired":      old,
		"foreign key":  foreign,
		"alg none":     none,
		"missing user": noUser,
		"garbage":      "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := j.Verify(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
			assert.Equal(t, domain.MsgInvalidToken, domain.Message(err))
		})
	}
}
