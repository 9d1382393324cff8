package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/models"
	"elektropregled/internal/repository"
)

type recordingNotifier struct {
	events []SyncedEvent
}

func (r *recordingNotifier) Notify(_ context.Context, evt SyncedEvent) {
	r.events = append(r.events, evt)
}

func newDemoStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, repository.SeedDemo(context.Background(), store, "unused-hash"))
	return store
}

func newTestSyncService(store *repository.MemoryStore, n SyncNotifier) *syncService {
	svc := NewSyncService(store, n, zap.NewNop()).(*syncService)
	fixed := time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func ts(s string) *models.Timestamp {
	t, err := models.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return &models.Timestamp{Time: t}
}

func boolPtr(b bool) *bool      { return &b }
func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func validRequest() SyncRequest {
	return SyncRequest{
		Inspection: &InspectionPayload{
			LocalID:    uuid.NewString(),
			UserID:     1,
			FacilityID: repository.DemoFacilityID,
			Start:      ts("2026-01-26T10:30:00"),
			End:        ts("2026-01-26T11:00:00"),
		},
		Items: []ItemPayload{
			{LocalID: uuid.NewString(), EquipmentID: 1, ParameterID: 1, Bool: boolPtr(true)},
			{LocalID: uuid.NewString(), EquipmentID: 1, ParameterID: 2, Number: numPtr(45), EnteredAt: ts("2026-01-26T10:40:00")},
			{LocalID: uuid.NewString(), EquipmentID: 2, ParameterID: 4, Text: strPtr("Bez primjedbi"), Note: "ok"},
		},
	}
}

func historyLen(t *testing.T, store *repository.MemoryStore) int {
	t.Helper()
	rows, err := store.ListExportRows(context.Background(), repository.DemoFacilityID)
	require.NoError(t, err)
	return len(rows)
}

func TestSync_Success(t *testing.T) {
	store := newDemoStore(t)
	notifier := &recordingNotifier{}
	svc := newTestSyncService(store, notifier)
	req := validRequest()

	resp, err := svc.Sync(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.MsgSyncOK, resp.Message)
	assert.NotZero(t, resp.ServerID)
	assert.Equal(t, req.Inspection.LocalID, resp.Mappings.Inspection.LocalID.String())
	assert.Equal(t, resp.ServerID, resp.Mappings.Inspection.ServerID)

	require.Len(t, resp.Mappings.Items, len(req.Items))
	seen := map[int64]bool{}
	for i, m := range resp.Mappings.Items {
		assert.Equal(t, req.Items[i].LocalID, m.LocalID.String())
		assert.False(t, seen[m.ServerID], "server ids must be distinct")
		seen[m.ServerID] = true
	}

	require.Len(t, notifier.events, 1)
	evt := notifier.events[0]
	assert.Equal(t, resp.ServerID, evt.InspectionID)
	assert.Equal(t, 3, evt.ItemCount)
	assert.Equal(t, int64(repository.DemoFacilityID), evt.FacilityID)
	assert.Equal(t, 3, historyLen(t, store))
}

func TestSync_EntryTimeDefaultsToNow(t *testing.T) {
	store := newDemoStore(t)
	svc := newTestSyncService(store, nil)

	_, err := svc.Sync(context.Background(), validRequest())
	require.NoError(t, err)

	rows, err := store.ListExportRows(context.Background(), repository.DemoFacilityID)
	require.NoError(t, err)
	byParam := map[string]domain.ExportRow{}
	for _, r := range rows {
		byParam[r.ParameterName] = r
	}
	assert.Equal(t, svc.now(), byParam["Vizualna provjera"].EnteredAt.UTC())
	assert.Equal(t, time.Date(2026, 1, 26, 10, 40, 0, 0, time.UTC), byParam["Tlak SF6"].EnteredAt.UTC())
}

func TestSync_DuplicateInspection(t *testing.T) {
	store := newDemoStore(t)
	notifier := &recordingNotifier{}
	svc := newTestSyncService(store, notifier)
	req := validRequest()

	_, err := svc.Sync(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Sync(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, domain.MsgInspectionSynced, domain.Message(err))

	// resubmission wins over every other check
	req.Items = nil
	req.Inspection.Start = nil
	_, err = svc.Sync(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	assert.Len(t, notifier.events, 1)
	assert.Equal(t, 3, historyLen(t, store))
}

func TestSync_DuplicateItemRollsBack(t *testing.T) {
	store := newDemoStore(t)
	svc := newTestSyncService(store, nil)
	first := validRequest()
	_, err := svc.Sync(context.Background(), first)
	require.NoError(t, err)

	second := validRequest()
	second.Items[2].LocalID = first.Items[0].LocalID
	_, err = svc.Sync(context.Background(), second)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, domain.MsgItemSynced, domain.Message(err))
	assert.Equal(t, 3, historyLen(t, store))
}

func TestSync_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *SyncRequest)
		target  error
		message string
	}{
		{"no inspection", func(r *SyncRequest) { r.Inspection = nil }, domain.ErrValidation, domain.MsgInspectionRequired},
		{"blank local id", func(r *SyncRequest) { r.Inspection.LocalID = "  " }, domain.ErrValidation, domain.MsgInspectionLocalID},
		{"malformed local id", func(r *SyncRequest) { r.Inspection.LocalID = "abc" }, domain.ErrValidation, domain.MsgInvalidLocalID},
		{"no start", func(r *SyncRequest) { r.Inspection.Start = nil }, domain.ErrValidation, domain.MsgStartRequired},
		{"no items", func(r *SyncRequest) { r.Items = nil }, domain.ErrValidation, domain.MsgItemsRequired},
		{"unknown user", func(r *SyncRequest) { r.Inspection.UserID = 99 }, domain.ErrNotFound, domain.MsgUserNotFound},
		{"unknown facility", func(r *SyncRequest) { r.Inspection.FacilityID = 99 }, domain.ErrNotFound, domain.MsgFacilityNotFound},
		{"item without local id", func(r *SyncRequest) { r.Items[1].LocalID = "" }, domain.ErrValidation, domain.MsgItemLocalID},
		{"unknown equipment", func(r *SyncRequest) { r.Items[1].EquipmentID = 99 }, domain.ErrNotFound, domain.MsgEquipmentNotFound},
		{"unknown parameter", func(r *SyncRequest) { r.Items[1].ParameterID = 99 }, domain.ErrNotFound, domain.MsgParameterNotFound},
		{"two value columns", func(r *SyncRequest) { r.Items[1].Bool = boolPtr(false) }, domain.ErrValidation, domain.MsgSingleValue},
		{"no value column", func(r *SyncRequest) { r.Items[1].Number = nil }, domain.ErrValidation, domain.MsgNumberRequired},
		{"wrong kind", func(r *SyncRequest) { r.Items[1].Number, r.Items[1].Text = nil, strPtr("45") }, domain.ErrValidation, domain.MsgNumberRequired},
		{"above maximum", func(r *SyncRequest) { r.Items[1].Number = numPtr(200) }, domain.ErrValidation, domain.MsgAboveMaximum},
		{"below minimum", func(r *SyncRequest) { r.Items[1].Number = numPtr(5) }, domain.ErrValidation, domain.MsgBelowMinimum},
		{"blank text", func(r *SyncRequest) { r.Items[2].Text = strPtr("   ") }, domain.ErrValidation, domain.MsgTextRequired},
		{"same check twice", func(r *SyncRequest) { r.Items[2].EquipmentID, r.Items[2].ParameterID, r.Items[2].Text, r.Items[2].Bool = 1, 1, nil, boolPtr(false) }, domain.ErrValidation, domain.MsgDuplicateCheck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newDemoStore(t)
			notifier := &recordingNotifier{}
			svc := newTestSyncService(store, notifier)
			req := validRequest()
			tt.mutate(&req)

			resp, err := svc.Sync(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Equal(t, tt.message, domain.Message(err))
			assert.Empty(t, notifier.events)
			assert.Equal(t, 0, historyLen(t, store))
		})
	}
}
