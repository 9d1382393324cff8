package repository

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"elektropregled/internal/domain"
)

// MemoryStore keeps every table in process memory. It backs the server when
// the database is disabled and the service tests. Transactions are
// serialised by the store mutex.
type MemoryStore struct {
	mu sync.RWMutex
	memTables
}

type memTables struct {
	facilities  map[int64]domain.Facility
	fields      map[int64]domain.Field
	types       map[int64]domain.EquipmentType
	equipment   map[int64]domain.Equipment
	parameters  map[int64]domain.Parameter
	users       map[int64]domain.User
	inspections map[int64]domain.Inspection
	items       map[int64]domain.InspectionItem
	seq         map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memTables: memTables{
		facilities:  map[int64]domain.Facility{},
		fields:      map[int64]domain.Field{},
		types:       map[int64]domain.EquipmentType{},
		equipment:   map[int64]domain.Equipment{},
		parameters:  map[int64]domain.Parameter{},
		users:       map[int64]domain.User{},
		inspections: map[int64]domain.Inspection{},
		items:       map[int64]domain.InspectionItem{},
		seq:         map[string]int64{},
	}}
}

var (
	_ ReferenceRepository   = (*MemoryStore)(nil)
	_ ReferenceSeeder       = (*MemoryStore)(nil)
	_ UsersRepository       = (*MemoryStore)(nil)
	_ InspectionsRepository = (*MemoryStore)(nil)
)

func (t *memTables) clone() memTables {
	return memTables{
		facilities:  maps.Clone(t.facilities),
		fields:      maps.Clone(t.fields),
		types:       maps.Clone(t.types),
		equipment:   maps.Clone(t.equipment),
		parameters:  maps.Clone(t.parameters),
		users:       maps.Clone(t.users),
		inspections: maps.Clone(t.inspections),
		items:       maps.Clone(t.items),
		seq:         maps.Clone(t.seq),
	}
}

func (t *memTables) next(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

// bump keeps the sequence ahead of an explicitly assigned id.
func (t *memTables) bump(table string, id int64) {
	if id > t.seq[table] {
		t.seq[table] = id
	}
}

func (t *memTables) resolve(e domain.Equipment) domain.Equipment {
	e.Type = t.types[e.TypeID]
	e.Field = nil
	if e.FieldID != nil {
		if f, ok := t.fields[*e.FieldID]; ok {
			e.Field = &f
		}
	}
	return e
}

// ---- ReferenceRepository ----

func (s *MemoryStore) FacilityExists(_ context.Context, facilityID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.facilities[facilityID]
	return ok, nil
}

func (s *MemoryStore) ListFacilities(_ context.Context) ([]domain.FacilitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FacilitySummary, 0, len(s.facilities))
	for _, f := range s.facilities {
		sum := domain.FacilitySummary{Facility: f}
		var latest *domain.Inspection
		for _, in := range s.inspections {
			if in.FacilityID != f.ID {
				continue
			}
			in := in
			sum.InspectionCount++
			if latest == nil || inspectionAfter(in, *latest) {
				latest = &in
			}
		}
		if latest != nil {
			at := inspectionTime(*latest)
			sum.LastInspection = &at
			sum.LastInspector = s.users[latest.UserID].Username
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func inspectionTime(in domain.Inspection) time.Time {
	if in.End != nil {
		return *in.End
	}
	if !in.Start.IsZero() {
		return in.Start
	}
	return in.CreatedAt
}

func inspectionAfter(a, b domain.Inspection) bool {
	ta, tb := inspectionTime(a), inspectionTime(b)
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a.ID > b.ID
}

func (s *MemoryStore) ListFieldsWithCount(_ context.Context, facilityID int64) ([]domain.FieldWithCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.FieldWithCount{}
	for _, f := range s.fields {
		if f.FacilityID != facilityID {
			continue
		}
		fc := domain.FieldWithCount{Field: f}
		for _, e := range s.equipment {
			if e.FieldID != nil && *e.FieldID == f.ID {
				fc.EquipmentCount++
			}
		}
		out = append(out, fc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoltageLevel != out[j].VoltageLevel {
			return out[i].VoltageLevel > out[j].VoltageLevel
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) CountFieldlessEquipment(_ context.Context, facilityID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.equipment {
		if e.FacilityID == facilityID && e.FieldID == nil {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListEquipment(_ context.Context, facilityID, fieldID int64) ([]domain.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Equipment{}
	for _, e := range s.equipment {
		if e.FacilityID != facilityID {
			continue
		}
		if fieldID == domain.NoField {
			if e.FieldID != nil {
				continue
			}
		} else if e.FieldID == nil || *e.FieldID != fieldID {
			continue
		}
		out = append(out, s.resolve(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetEquipment(_ context.Context, ids ...int64) ([]domain.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Equipment{}
	for _, id := range ids {
		if e, ok := s.equipment[id]; ok {
			out = append(out, s.resolve(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ParametersByType(_ context.Context, typeID int64) ([]domain.Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Parameter{}
	for _, p := range s.parameters {
		if p.TypeID == typeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---- UsersRepository ----

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
}

// ---- InspectionsRepository ----

func (s *MemoryStore) LatestItems(_ context.Context, equipmentIDs []int64) ([]domain.LatestItem, error) {
	if len(equipmentIDs) == 0 {
		return []domain.LatestItem{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]bool, len(equipmentIDs))
	for _, id := range equipmentIDs {
		wanted[id] = true
	}
	var candidates []domain.LatestItem
	for _, it := range s.items {
		if !wanted[it.EquipmentID] {
			continue
		}
		in := s.inspections[it.InspectionID]
		start := in.Start
		candidates = append(candidates, domain.LatestItem{
			Item:              it,
			InspectionStart:   &start,
			InspectionEnd:     in.End,
			InspectionCreated: in.CreatedAt,
		})
	}

	reduced := domain.ReduceLatest(candidates)
	out := make([]domain.LatestItem, 0, len(reduced))
	for _, l := range reduced {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Item.EquipmentID != out[j].Item.EquipmentID {
			return out[i].Item.EquipmentID < out[j].Item.EquipmentID
		}
		return out[i].Item.ParameterID < out[j].Item.ParameterID
	})
	return out, nil
}

func (s *MemoryStore) ListExportRows(_ context.Context, facilityID int64) ([]domain.ExportRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type sortable struct {
		row   domain.ExportRow
		equip int64
		order int
		item  int64
	}
	var rows []sortable
	for _, it := range s.items {
		in := s.inspections[it.InspectionID]
		if in.FacilityID != facilityID {
			continue
		}
		e := s.equipment[it.EquipmentID]
		p := s.parameters[it.ParameterID]
		rows = append(rows, sortable{
			row: domain.ExportRow{
				InspectionID:   in.ID,
				InspectionLID:  in.LocalID,
				Start:          in.Start,
				End:            in.End,
				Username:       s.users[in.UserID].Username,
				EquipmentLabel: e.Label,
				SerialNumber:   e.SerialNumber,
				ParameterName:  p.Name,
				Kind:           p.Kind,
				Value:          it.Value,
				Unit:           p.Unit,
				Note:           it.Note,
				EnteredAt:      it.EnteredAt,
			},
			equip: e.ID,
			order: p.Order,
			item:  it.ID,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case !a.row.Start.Equal(b.row.Start):
			return a.row.Start.After(b.row.Start)
		case a.row.InspectionID != b.row.InspectionID:
			return a.row.InspectionID > b.row.InspectionID
		case a.equip != b.equip:
			return a.equip < b.equip
		case a.order != b.order:
			return a.order < b.order
		}
		return a.item < b.item
	})
	out := make([]domain.ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.row)
	}
	return out, nil
}

// WithinTx stages every write on a copy of the tables and swaps it in only
// when fn succeeds.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx SyncTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.memTables.clone()
	if err := fn(&memSyncTx{t: &staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.memTables = staged
	return nil
}

type memSyncTx struct {
	t *memTables
}

func (tx *memSyncTx) InspectionExists(_ context.Context, localID uuid.UUID) (bool, error) {
	for _, in := range tx.t.inspections {
		if in.LocalID == localID {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memSyncTx) ItemExists(_ context.Context, localID uuid.UUID) (bool, error) {
	for _, it := range tx.t.items {
		if it.LocalID == localID {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memSyncTx) UserExists(_ context.Context, userID int64) (bool, error) {
	_, ok := tx.t.users[userID]
	return ok, nil
}

func (tx *memSyncTx) FacilityExists(_ context.Context, facilityID int64) (bool, error) {
	_, ok := tx.t.facilities[facilityID]
	return ok, nil
}

func (tx *memSyncTx) EquipmentExists(_ context.Context, equipmentID int64) (bool, error) {
	_, ok := tx.t.equipment[equipmentID]
	return ok, nil
}

func (tx *memSyncTx) GetParameter(_ context.Context, parameterID int64) (*domain.Parameter, error) {
	p, ok := tx.t.parameters[parameterID]
	if !ok {
		return nil, fmt.Errorf("parameter %d not found: %w", parameterID, sql.ErrNoRows)
	}
	return &p, nil
}

func (tx *memSyncTx) InsertInspection(ctx context.Context, in *domain.Inspection) (int64, error) {
	if dup, _ := tx.InspectionExists(ctx, in.LocalID); dup {
		return 0, domain.Conflict(domain.MsgInspectionSynced)
	}
	row := *in
	row.ID = tx.t.next("pregled")
	tx.t.inspections[row.ID] = row
	return row.ID, nil
}

func (tx *memSyncTx) InsertItem(ctx context.Context, item *domain.InspectionItem) (int64, error) {
	if dup, _ := tx.ItemExists(ctx, item.LocalID); dup {
		return 0, domain.Conflict(domain.MsgItemSynced)
	}
	for _, it := range tx.t.items {
		if it.InspectionID == item.InspectionID && it.ParameterID == item.ParameterID && it.EquipmentID == item.EquipmentID {
			return 0, domain.Validation(domain.MsgDuplicateCheck)
		}
	}
	row := *item
	row.ID = tx.t.next("stavka_pregleda")
	tx.t.items[row.ID] = row
	return row.ID, nil
}

// ---- ReferenceSeeder ----

func (s *MemoryStore) Seed(_ context.Context, fn func(w ReferenceWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.memTables.clone()
	if err := fn(&memReferenceWriter{t: &staged}); err != nil {
		return err
	}
	s.memTables = staged
	return nil
}

type memReferenceWriter struct {
	t *memTables
}

func (w *memReferenceWriter) UpsertFacility(_ context.Context, f domain.Facility) error {
	w.t.facilities[f.ID] = f
	w.t.bump("postrojenje", f.ID)
	return nil
}

func (w *memReferenceWriter) UpsertField(_ context.Context, f domain.Field) error {
	if _, ok := w.t.facilities[f.FacilityID]; !ok {
		return fmt.Errorf("failed to upsert field %d: facility %d does not exist", f.ID, f.FacilityID)
	}
	w.t.fields[f.ID] = f
	w.t.bump("polje", f.ID)
	return nil
}

func (w *memReferenceWriter) UpsertEquipmentType(_ context.Context, code, name string) (int64, error) {
	for id, t := range w.t.types {
		if t.Code == code {
			t.Name = name
			w.t.types[id] = t
			return id, nil
		}
	}
	id := w.t.next("vrsta_uredaja")
	w.t.types[id] = domain.EquipmentType{ID: id, Code: code, Name: name}
	return id, nil
}

func (w *memReferenceWriter) UpsertParameter(_ context.Context, p domain.Parameter) error {
	if _, ok := w.t.types[p.TypeID]; !ok {
		return fmt.Errorf("failed to upsert parameter %q: equipment type %d does not exist", p.Name, p.TypeID)
	}
	for id, cur := range w.t.parameters {
		if cur.TypeID == p.TypeID && cur.Name == p.Name {
			p.ID = id
			w.t.parameters[id] = p
			return nil
		}
	}
	p.ID = w.t.next("parametar_provjere")
	w.t.parameters[p.ID] = p
	return nil
}

func (w *memReferenceWriter) UpsertEquipment(_ context.Context, e domain.Equipment) error {
	if _, ok := w.t.facilities[e.FacilityID]; !ok {
		return fmt.Errorf("failed to upsert equipment %d: facility %d does not exist", e.ID, e.FacilityID)
	}
	if _, ok := w.t.types[e.TypeID]; !ok {
		return fmt.Errorf("failed to upsert equipment %d: equipment type %d does not exist", e.ID, e.TypeID)
	}
	e.Field = nil
	e.Type = domain.EquipmentType{}
	w.t.equipment[e.ID] = e
	w.t.bump("uredaj", e.ID)
	return nil
}

func (w *memReferenceWriter) UpsertUser(_ context.Context, u domain.User) error {
	for id, cur := range w.t.users {
		if cur.Username == u.Username {
			u.ID = id
			w.t.users[id] = u
			return nil
		}
	}
	u.ID = w.t.next("korisnik")
	w.t.users[u.ID] = u
	return nil
}
