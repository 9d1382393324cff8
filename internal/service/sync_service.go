package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/models"
	"elektropregled/internal/repository"
)

// SyncService accepts completed inspections uploaded by the mobile client.
type SyncService interface {
	// Sync stores the inspection and all its items atomically. A client-local
	// id seen before yields domain.ErrConflict and nothing is stored.
	Sync(ctx context.Context, req SyncRequest) (*SyncResponse, error)
}

type SyncRequest struct {
	Inspection *InspectionPayload `json:"pregled"`
	Items      []ItemPayload      `json:"stavke"`
}

type InspectionPayload struct {
	LocalID    string            `json:"lokalni_id"`
	UserID     int64             `json:"id_korisnika"`
	FacilityID int64             `json:"id_postr"`
	Start      *models.Timestamp `json:"pocetak"`
	End        *models.Timestamp `json:"kraj"`
	Note       string            `json:"napomena"`
}

type ItemPayload struct {
	LocalID     string            `json:"lokalni_id"`
	EquipmentID int64             `json:"id_ured"`
	ParameterID int64             `json:"id_parametra"`
	Bool        *bool             `json:"vrijednost_bool"`
	Number      *float64          `json:"vrijednost_num"`
	Text        *string           `json:"vrijednost_txt"`
	Note        string            `json:"napomena"`
	EnteredAt   *models.Timestamp `json:"vrijeme_unosa"`
}

type SyncResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	ServerID  int64            `json:"server_pregled_id"`
	Mappings  IDMappings       `json:"id_mappings"`
	Timestamp models.Timestamp `json:"timestamp"`
}

type IDMappings struct {
	Inspection IDMapping   `json:"pregled"`
	Items      []IDMapping `json:"stavke"`
}

// IDMapping pairs a client-local id with the id the server assigned.
type IDMapping struct {
	LocalID  uuid.UUID `json:"lokalni_id"`
	ServerID int64     `json:"server_id"`
}

type syncService struct {
	inspections repository.InspectionsRepository
	notifier    SyncNotifier
	now         func() time.Time
	logger      *zap.Logger
}

// NewSyncService creates the sync coordinator. notifier may be nil.
func NewSyncService(inspections repository.InspectionsRepository, notifier SyncNotifier, logger *zap.Logger) SyncService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &syncService{
		inspections: inspections,
		notifier:    notifier,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

func parseLocalID(raw, missingMsg string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, domain.Validation(missingMsg)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.Validation(domain.MsgInvalidLocalID)
	}
	return id, nil
}

func (s *syncService) Sync(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	if req.Inspection == nil {
		return nil, domain.Validation(domain.MsgInspectionRequired)
	}
	inspectionLID, err := parseLocalID(req.Inspection.LocalID, domain.MsgInspectionLocalID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	resp := &SyncResponse{
		Success:  true,
		Message:  domain.MsgSyncOK,
		Mappings: IDMappings{Items: make([]IDMapping, 0, len(req.Items))},
	}

	err = s.inspections.WithinTx(ctx, func(tx repository.SyncTx) error {
		dup, err := tx.InspectionExists(ctx, inspectionLID)
		if err != nil {
			return err
		}
		if dup {
			return domain.Conflict(domain.MsgInspectionSynced)
		}
		if req.Inspection.Start == nil {
			return domain.Validation(domain.MsgStartRequired)
		}
		if len(req.Items) == 0 {
			return domain.Validation(domain.MsgItemsRequired)
		}

		if ok, err := tx.UserExists(ctx, req.Inspection.UserID); err != nil {
			return err
		} else if !ok {
			return domain.NotFound(domain.MsgUserNotFound)
		}
		if ok, err := tx.FacilityExists(ctx, req.Inspection.FacilityID); err != nil {
			return err
		} else if !ok {
			return domain.NotFound(domain.MsgFacilityNotFound)
		}

		inspectionID, err := tx.InsertInspection(ctx, &domain.Inspection{
			LocalID:    inspectionLID,
			Status:     domain.SyncSynced,
			Start:      req.Inspection.Start.Time,
			End:        req.Inspection.End.Ptr(),
			Note:       req.Inspection.Note,
			UserID:     req.Inspection.UserID,
			FacilityID: req.Inspection.FacilityID,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		resp.ServerID = inspectionID
		resp.Mappings.Inspection = IDMapping{LocalID: inspectionLID, ServerID: inspectionID}

		for i := range req.Items {
			m, err := s.syncItem(ctx, tx, inspectionID, &req.Items[i], now)
			if err != nil {
				return err
			}
			resp.Mappings.Items = append(resp.Mappings.Items, m)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Inspection sync rejected",
			zap.String("lokalni_id", inspectionLID.String()),
			zap.Int64("facility_id", req.Inspection.FacilityID),
			zap.Int64("user_id", req.Inspection.UserID),
			zap.String("reason", domain.Message(err)),
		)
		return nil, err
	}

	resp.Timestamp = models.Timestamp{Time: s.now()}
	s.logger.Info("Inspection synced",
		zap.String("lokalni_id", inspectionLID.String()),
		zap.Int64("server_pregled_id", resp.ServerID),
		zap.Int("items", len(resp.Mappings.Items)),
	)

	s.notifier.Notify(ctx, SyncedEvent{
		InspectionID: resp.ServerID,
		LocalID:      inspectionLID,
		FacilityID:   req.Inspection.FacilityID,
		UserID:       req.Inspection.UserID,
		ItemCount:    len(resp.Mappings.Items),
		SyncedAt:     resp.Timestamp,
	})
	return resp, nil
}

func (s *syncService) syncItem(ctx context.Context, tx repository.SyncTx, inspectionID int64, p *ItemPayload, now time.Time) (IDMapping, error) {
	lid, err := parseLocalID(p.LocalID, domain.MsgItemLocalID)
	if err != nil {
		return IDMapping{}, err
	}
	dup, err := tx.ItemExists(ctx, lid)
	if err != nil {
		return IDMapping{}, err
	}
	if dup {
		return IDMapping{}, domain.Conflict(domain.MsgItemSynced)
	}

	if ok, err := tx.EquipmentExists(ctx, p.EquipmentID); err != nil {
		return IDMapping{}, err
	} else if !ok {
		return IDMapping{}, domain.NotFound(domain.MsgEquipmentNotFound)
	}
	param, err := tx.GetParameter(ctx, p.ParameterID)
	if err != nil {
		if isNoRows(err) {
			return IDMapping{}, domain.NotFound(domain.MsgParameterNotFound)
		}
		return IDMapping{}, err
	}

	value, err := domain.NewValue(p.Bool, p.Number, p.Text)
	if err != nil {
		return IDMapping{}, err
	}
	if err := ValidateItem(value, *param); err != nil {
		return IDMapping{}, err
	}

	enteredAt := now
	if p.EnteredAt != nil {
		enteredAt = p.EnteredAt.Time
	}
	id, err := tx.InsertItem(ctx, &domain.InspectionItem{
		LocalID:      lid,
		Value:        value,
		Note:         p.Note,
		EnteredAt:    enteredAt,
		InspectionID: inspectionID,
		EquipmentID:  p.EquipmentID,
		ParameterID:  p.ParameterID,
	})
	if err != nil {
		return IDMapping{}, err
	}
	return IDMapping{LocalID: lid, ServerID: id}, nil
}
