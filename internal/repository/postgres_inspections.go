package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"elektropregled/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresInspectionsRepository stores inspections and their items.
type PostgresInspectionsRepository struct {
	db *sql.DB
}

func NewPostgresInspectionsRepository(db *sql.DB) *PostgresInspectionsRepository {
	return &PostgresInspectionsRepository{db: db}
}

var _ InspectionsRepository = (*PostgresInspectionsRepository)(nil)

// LatestItems resolves every (equipment, parameter) pair in one round trip.
func (r *PostgresInspectionsRepository) LatestItems(ctx context.Context, equipmentIDs []int64) ([]domain.LatestItem, error) {
	if len(equipmentIDs) == 0 {
		return []domain.LatestItem{}, nil
	}
	query := `
		SELECT DISTINCT ON (s.id_ured, s.id_parametra)
			s.id_stavke, s.lokalni_id,
			s.vrijednost_bool, s.vrijednost_num, s.vrijednost_txt,
			s.napomena, s.vrijeme_unosa,
			s.id_preg, s.id_ured, s.id_parametra,
			p.pocetak, p.kraj, p.created_at
		FROM stavka_pregleda s
		JOIN pregled p ON p.id_preg = s.id_preg
		WHERE s.id_ured = ANY($1)
		ORDER BY s.id_ured, s.id_parametra,
			p.kraj DESC NULLS LAST, p.pocetak DESC NULLS LAST, s.id_stavke DESC
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(equipmentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest items: %w", err)
	}
	defer rows.Close()

	out := []domain.LatestItem{}
	for rows.Next() {
		var l domain.LatestItem
		var b sql.NullBool
		var n sql.NullFloat64
		var s, note sql.NullString
		var start, end sql.NullTime
		if err := rows.Scan(
			&l.Item.ID, &l.Item.LocalID,
			&b, &n, &s,
			&note, &l.Item.EnteredAt,
			&l.Item.InspectionID, &l.Item.EquipmentID, &l.Item.ParameterID,
			&start, &end, &l.InspectionCreated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan latest item: %w", err)
		}
		l.Item.Value, err = valueFromColumns(b, n, s)
		if err != nil {
			return nil, err
		}
		l.Item.Note = note.String
		l.InspectionStart = nullTimePtr(start)
		l.InspectionEnd = nullTimePtr(end)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresInspectionsRepository) ListExportRows(ctx context.Context, facilityID int64) ([]domain.ExportRow, error) {
	query := `
		SELECT
			p.id_preg, p.lokalni_id, p.pocetak, p.kraj, k.korisnicko_ime,
			u.natp_plocica, u.tv_broj,
			pp.naz_parametra, pp.tip_podataka,
			s.vrijednost_bool, s.vrijednost_num, s.vrijednost_txt,
			pp.mjerna_jedinica, s.napomena, s.vrijeme_unosa
		FROM pregled p
		JOIN korisnik k ON k.id_korisnika = p.id_korisnika
		JOIN stavka_pregleda s ON s.id_preg = p.id_preg
		JOIN uredaj u ON u.id_ured = s.id_ured
		JOIN parametar_provjere pp ON pp.id_parametra = s.id_parametra
		WHERE p.id_postr = $1
		ORDER BY p.pocetak DESC, p.id_preg DESC, u.id_ured, pp.redoslijed, s.id_stavke
	`
	rows, err := r.db.QueryContext(ctx, query, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	out := []domain.ExportRow{}
	for rows.Next() {
		var e domain.ExportRow
		var kind string
		var end sql.NullTime
		var b sql.NullBool
		var n sql.NullFloat64
		var s, unit, note sql.NullString
		if err := rows.Scan(
			&e.InspectionID, &e.InspectionLID, &e.Start, &end, &e.Username,
			&e.EquipmentLabel, &e.SerialNumber,
			&e.ParameterName, &kind,
			&b, &n, &s,
			&unit, &note, &e.EnteredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		e.Kind = domain.DataKind(kind)
		e.End = nullTimePtr(end)
		e.Value, err = valueFromColumns(b, n, s)
		if err != nil {
			return nil, err
		}
		e.Unit = unit.String
		e.Note = note.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// WithinTx runs fn in a read-committed transaction. Context cancellation
// rolls back.
func (r *PostgresInspectionsRepository) WithinTx(ctx context.Context, fn func(tx SyncTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgSyncTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translateUniqueViolation(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

type pgSyncTx struct {
	tx *sql.Tx
}

func (t *pgSyncTx) InspectionExists(ctx context.Context, localID uuid.UUID) (bool, error) {
	return exists(ctx, t.tx, `SELECT EXISTS (SELECT 1 FROM pregled WHERE lokalni_id = $1)`, localID)
}

func (t *pgSyncTx) ItemExists(ctx context.Context, localID uuid.UUID) (bool, error) {
	return exists(ctx, t.tx, `SELECT EXISTS (SELECT 1 FROM stavka_pregleda WHERE lokalni_id = $1)`, localID)
}

func (t *pgSyncTx) UserExists(ctx context.Context, userID int64) (bool, error) {
	return exists(ctx, t.tx, `SELECT EXISTS (SELECT 1 FROM korisnik WHERE id_korisnika = $1)`, userID)
}

func (t *pgSyncTx) FacilityExists(ctx context.Context, facilityID int64) (bool, error) {
	return facilityExists(ctx, t.tx, facilityID)
}

func (t *pgSyncTx) EquipmentExists(ctx context.Context, equipmentID int64) (bool, error) {
	return exists(ctx, t.tx, `SELECT EXISTS (SELECT 1 FROM uredaj WHERE id_ured = $1)`, equipmentID)
}

func (t *pgSyncTx) GetParameter(ctx context.Context, parameterID int64) (*domain.Parameter, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id_parametra, naz_parametra, tip_podataka, min_vrijednost, max_vrijednost,
		       mjerna_jedinica, obavezan, redoslijed, opis, id_vr_ured
		FROM parametar_provjere
		WHERE id_parametra = $1
	`, parameterID)
	p, err := scanParameter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("parameter %d not found: %w", parameterID, sql.ErrNoRows)
		}
		return nil, err
	}
	return p, nil
}

func (t *pgSyncTx) InsertInspection(ctx context.Context, in *domain.Inspection) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO pregled
			(lokalni_id, status_sync, pocetak, kraj, napomena, sync_error, id_korisnika, id_postr, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10)
		RETURNING id_preg
	`, in.LocalID, string(in.Status), in.Start, in.End, in.Note, in.SyncError,
		in.UserID, in.FacilityID, in.CreatedAt, in.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, translateUniqueViolation(fmt.Errorf("failed to insert inspection: %w", err))
	}
	return id, nil
}

func (t *pgSyncTx) InsertItem(ctx context.Context, item *domain.InspectionItem) (int64, error) {
	b, n, s := item.Value.Parts()
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO stavka_pregleda
			(lokalni_id, vrijednost_bool, vrijednost_num, vrijednost_txt, napomena, vrijeme_unosa, id_preg, id_ured, id_parametra)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING id_stavke
	`, item.LocalID, b, n, s, item.Note, item.EnteredAt,
		item.InspectionID, item.EquipmentID, item.ParameterID,
	).Scan(&id)
	if err != nil {
		return 0, translateUniqueViolation(fmt.Errorf("failed to insert inspection item: %w", err))
	}
	return id, nil
}

// translateUniqueViolation maps unique-constraint violations to domain errors
// and returns other errors unchanged.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "uq_pregled_lokalni_id":
		return domain.Conflict(domain.MsgInspectionSynced)
	case "uq_stavka_pregleda_lokalni_id":
		return domain.Conflict(domain.MsgItemSynced)
	case "uq_stavka_unique_check":
		return domain.Validation(domain.MsgDuplicateCheck)
	}
	return err
}

func valueFromColumns(b sql.NullBool, n sql.NullFloat64, s sql.NullString) (domain.Value, error) {
	var bp *bool
	var np *float64
	var sp *string
	if b.Valid {
		bp = &b.Bool
	}
	if n.Valid {
		np = &n.Float64
	}
	if s.Valid {
		sp = &s.String
	}
	v, err := domain.NewValue(bp, np, sp)
	if err != nil {
		return domain.Value{}, fmt.Errorf("stored item holds more than one value: %w", err)
	}
	return v, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
