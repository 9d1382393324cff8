package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/service"
)

const maxLoginBody = 16 << 10

type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := readBodyJSON(r, maxLoginBody, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, h.logger, domain.Validation(msgInvalidBody))
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
