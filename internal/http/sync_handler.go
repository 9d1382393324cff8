package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/service"
)

// A batch carries one inspection with all its items.
const maxSyncBody = 8 << 20

type SyncHandler struct {
	syncService service.SyncService
	logger      *zap.Logger
}

func NewSyncHandler(syncService service.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{syncService: syncService, logger: logger}
}

// Sync handles POST /api/v1/pregled/sync. The caller must be authenticated.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.Unauthorized(domain.MsgMissingToken))
		return
	}

	var req service.SyncRequest
	if err := readBodyJSON(r, maxSyncBody, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, h.logger, domain.Validation(msgInvalidBody))
		return
	}
	if req.Inspection != nil && req.Inspection.UserID != caller.UserID {
		h.logger.Info("Inspection uploaded on behalf of another user",
			zap.Int64("caller_id", caller.UserID),
			zap.Int64("id_korisnika", req.Inspection.UserID),
		)
	}

	resp, err := h.syncService.Sync(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
