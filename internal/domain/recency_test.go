package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func latest(id int64, start, end *time.Time) LatestItem {
	return LatestItem{
		Item:            InspectionItem{ID: id, EquipmentID: 1, ParameterID: 7},
		InspectionStart: start,
		InspectionEnd:   end,
	}
}

func TestReduceLatest_PrefersLatestEnd(t *testing.T) {
	early := latest(30, ts("2026-01-10T08:00:00Z"), ts("2026-01-10T09:00:00Z"))
	late := latest(10, ts("2026-01-20T08:00:00Z"), ts("2026-01-20T09:00:00Z"))
	// no end: ranks after every row that has one, even with a later start
	open := latest(50, ts("2026-02-01T08:00:00Z"), nil)

	got := ReduceLatest([]LatestItem{early, open, late})
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[ItemKey{EquipmentID: 1, ParameterID: 7}].Item.ID)
}

func TestReduceLatest_TieFallsBackToStartThenID(t *testing.T) {
	end := ts("2026-01-20T09:00:00Z")
	a := latest(1, ts("2026-01-20T07:00:00Z"), end)
	b := latest(2, ts("2026-01-20T08:00:00Z"), end)
	got := ReduceLatest([]LatestItem{b, a})
	assert.Equal(t, int64(2), got[ItemKey{1, 7}].Item.ID)

	c := latest(3, ts("2026-01-20T08:00:00Z"), end)
	got = ReduceLatest([]LatestItem{c, b, a})
	assert.Equal(t, int64(3), got[ItemKey{1, 7}].Item.ID)
}

func TestReduceLatest_AllNullUsesID(t *testing.T) {
	got := ReduceLatest([]LatestItem{latest(4, nil, nil), latest(9, nil, nil), latest(6, nil, nil)})
	assert.Equal(t, int64(9), got[ItemKey{1, 7}].Item.ID)

	withStart := latest(1, ts("2025-01-01T00:00:00Z"), nil)
	got = ReduceLatest([]LatestItem{latest(9, nil, nil), withStart})
	assert.Equal(t, int64(1), got[ItemKey{1, 7}].Item.ID)
}

func TestReduceLatest_KeepsPairsApart(t *testing.T) {
	a := latest(1, nil, nil)
	b := latest(2, nil, nil)
	b.Item.ParameterID = 8
	c := latest(3, nil, nil)
	c.Item.EquipmentID = 2
	assert.Len(t, ReduceLatest([]LatestItem{a, b, c}), 3)
}

func TestLatestItem_InspectedAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := LatestItem{InspectionCreated: created}
	assert.Equal(t, created, l.InspectedAt())

	l.InspectionStart = ts("2026-01-02T00:00:00Z")
	assert.Equal(t, *l.InspectionStart, l.InspectedAt())

	l.InspectionEnd = ts("2026-01-03T00:00:00Z")
	assert.Equal(t, *l.InspectionEnd, l.InspectedAt())
}
