package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/repository"
)

// plainVerifier compares passwords verbatim so tests skip bcrypt.
type plainVerifier struct{}

func (plainVerifier) Verify(hash, password string) bool { return hash == password }

func TestAuthService_Login(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, repository.SeedDemo(context.Background(), store, "secret"))
	tokens := NewJWTIssuer("k", 2*time.Hour)
	svc := NewAuthService(store, plainVerifier{}, tokens, zap.NewNop())

	resp, err := svc.Login(context.Background(), LoginRequest{Username: " demo ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(7200), resp.ExpiresIn)
	assert.Equal(t, repository.DemoUsername, resp.Username)
	assert.Equal(t, int64(1), resp.UserID)

	claims, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "demo", claims.Username)

	tests := []struct {
		name    string
		req     LoginRequest
		target  error
		message string
	}{
		{"missing username", LoginRequest{Password: "secret"}, domain.ErrValidation, domain.MsgUsernameRequired},
		{"missing password", LoginRequest{Username: "demo"}, domain.ErrValidation, domain.MsgPasswordRequired},
		{"unknown user", LoginRequest{Username: "nobody", Password: "secret"}, domain.ErrNotFound, domain.MsgBadCredentials},
		{"wrong password", LoginRequest{Username: "demo", Password: "nope"}, domain.ErrNotFound, domain.MsgBadCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			assert.Equal(t, tt.message, domain.Message(err))
		})
	}
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := HashPassword("demo123")
	require.NoError(t, err)
	assert.True(t, BcryptVerifier{}.Verify(hash, "demo123"))
	assert.False(t, BcryptVerifier{}.Verify(hash, "demo124"))
	assert.False(t, BcryptVerifier{}.Verify("not-a-hash", "demo123"))
}
