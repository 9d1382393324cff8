package httpapi

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/models"
)

// ErrorResult is the body of every non-2xx response.
type ErrorResult struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Timestamp models.Timestamp `json:"timestamp"`
}

func Fail(message string) ErrorResult {
	return ErrorResult{Success: false, Message: message, Timestamp: models.Timestamp{Time: time.Now().UTC()}}
}

// statusFor maps an error category to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err as the error envelope. Uncategorised errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	msg := domain.Message(err)
	if status == http.StatusInternalServerError {
		logger.Error("Unexpected error", zap.Error(err))
		msg = domain.MsgUnexpected + err.Error()
	}
	writeJSON(w, status, Fail(msg))
}
