package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/repository"
)

// AuthService logs users in.
type AuthService interface {
	// Login reports an unknown user and a wrong password the same way:
	// domain.ErrNotFound with one message.
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type LoginRequest struct {
	Username string `json:"korisnicko_ime"`
	Password string `json:"lozinka"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
	UserID      int64  `json:"user_id"`
}

type authService struct {
	users    repository.UsersRepository
	verifier PasswordVerifier
	tokens   *JWTIssuer
	logger   *zap.Logger
}

func NewAuthService(users repository.UsersRepository, verifier PasswordVerifier, tokens *JWTIssuer, logger *zap.Logger) AuthService {
	return &authService{users: users, verifier: verifier, tokens: tokens, logger: logger}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, domain.Validation(domain.MsgUsernameRequired)
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.Validation(domain.MsgPasswordRequired)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if isNoRows(err) {
			s.logger.Warn("User login failed",
				zap.String("username", username),
				zap.String("reason", "unknown_user"),
			)
			return nil, domain.NotFound(domain.MsgBadCredentials)
		}
		return nil, err
	}
	if !s.verifier.Verify(user.PasswordHash, req.Password) {
		s.logger.Warn("User login failed",
			zap.String("username", username),
			zap.String("reason", "invalid_password"),
		)
		return nil, domain.NotFound(domain.MsgBadCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		Username:    user.Username,
		UserID:      user.ID,
	}, nil
}
