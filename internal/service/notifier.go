package service

import (
	"context"

	"github.com/google/uuid"

	"elektropregled/internal/models"
)

// SyncedEvent announces a committed inspection.
type SyncedEvent struct {
	InspectionID int64            `json:"inspection_id"`
	LocalID      uuid.UUID        `json:"lokalni_id"`
	FacilityID   int64            `json:"facility_id"`
	UserID       int64            `json:"user_id"`
	ItemCount    int              `json:"item_count"`
	SyncedAt     models.Timestamp `json:"synced_at"`
}

// SyncNotifier is told about every committed sync. Implementations handle
// their own failures; a notification never changes the sync outcome.
type SyncNotifier interface {
	Notify(ctx context.Context, evt SyncedEvent)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, SyncedEvent) {}
