package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/service"
)

const (
	msgInvalidBody       = "Neispravan JSON zahtjev"
	msgInvalidFacilityID = "Neispravan ID postrojenja"
	msgInvalidFieldID    = "Parametar id_polje mora biti cijeli broj"
)

const facilitiesPath = "/api/v1/postrojenja"

// FacilityHandler serves /api/v1/postrojenja and its sub-resources.
type FacilityHandler struct {
	facilities service.FacilityService
	logger     *zap.Logger
}

func NewFacilityHandler(facilities service.FacilityService, logger *zap.Logger) *FacilityHandler {
	return &FacilityHandler{facilities: facilities, logger: logger}
}

func (h *FacilityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == facilitiesPath || r.URL.Path == facilitiesPath+"/" {
		h.List(w, r)
		return
	}

	id, rest, ok := pathID(r.URL.Path, facilitiesPath+"/")
	if !ok {
		writeError(w, h.logger, domain.Validation(msgInvalidFacilityID))
		return
	}
	switch rest {
	case "polja":
		h.Fields(w, r, id)
	case "checklist":
		h.Checklist(w, r, id)
	case "pregledi/export":
		h.Export(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.facilities.ListFacilities(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FacilityHandler) Fields(w http.ResponseWriter, r *http.Request, facilityID int64) {
	out, err := h.facilities.ListFields(r.Context(), facilityID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FacilityHandler) Checklist(w http.ResponseWriter, r *http.Request, facilityID int64) {
	var fieldID *int64
	if raw := r.URL.Query().Get("id_polje"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, h.logger, domain.Validation(msgInvalidFieldID))
			return
		}
		fieldID = &v
	}
	out, err := h.facilities.BuildChecklist(r.Context(), facilityID, fieldID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Export streams the facility's inspection history as an XLSX workbook.
func (h *FacilityHandler) Export(w http.ResponseWriter, r *http.Request, facilityID int64) {
	rows, err := h.facilities.InspectionHistory(r.Context(), facilityID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	data, err := GenerateInspectionExport(rows)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	filename := fmt.Sprintf("pregledi_%d_%s.xlsx", facilityID, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
