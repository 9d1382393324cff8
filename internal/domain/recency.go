package domain

import "time"

// MoreRecent reports whether a is more recent than b: inspection end DESC
// NULLS LAST, then inspection start DESC NULLS LAST, then item id DESC.
func MoreRecent(a, b LatestItem) bool {
	if c := compareNullableDesc(a.InspectionEnd, b.InspectionEnd); c != 0 {
		return c > 0
	}
	if c := compareNullableDesc(a.InspectionStart, b.InspectionStart); c != 0 {
		return c > 0
	}
	return a.Item.ID > b.Item.ID
}

// compareNullableDesc returns 1 when a ranks first, -1 when b does, 0 on a tie.
// A non-null time always ranks before null.
func compareNullableDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.After(*b):
		return 1
	case b.After(*a):
		return -1
	}
	return 0
}

// ReduceLatest keeps the most recent candidate per (equipment, parameter).
func ReduceLatest(candidates []LatestItem) map[ItemKey]LatestItem {
	out := make(map[ItemKey]LatestItem, len(candidates))
	for _, c := range candidates {
		k := ItemKey{EquipmentID: c.Item.EquipmentID, ParameterID: c.Item.ParameterID}
		if cur, ok := out[k]; !ok || MoreRecent(c, cur) {
			out[k] = c
		}
	}
	return out
}
