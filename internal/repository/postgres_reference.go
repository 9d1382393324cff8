package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"elektropregled/internal/domain"
)

// PostgresReferenceRepository reads reference data from PostgreSQL.
type PostgresReferenceRepository struct {
	db *sql.DB
}

func NewPostgresReferenceRepository(db *sql.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{db: db}
}

var (
	_ ReferenceRepository = (*PostgresReferenceRepository)(nil)
	_ ReferenceSeeder     = (*PostgresReferenceRepository)(nil)
)

func (r *PostgresReferenceRepository) FacilityExists(ctx context.Context, facilityID int64) (bool, error) {
	return facilityExists(ctx, r.db, facilityID)
}

func (r *PostgresReferenceRepository) ListFacilities(ctx context.Context) ([]domain.FacilitySummary, error) {
	query := `
		SELECT
			p.id_postr,
			p.ozn_vr_postr,
			p.naz_postr,
			p.lokacija,
			COUNT(pr.id_preg) AS total_pregleda,
			MAX(COALESCE(pr.kraj, pr.pocetak, pr.created_at)) AS zadnji_pregled,
			(
				SELECT k.korisnicko_ime
				FROM pregled p2
				JOIN korisnik k ON k.id_korisnika = p2.id_korisnika
				WHERE p2.id_postr = p.id_postr
				ORDER BY COALESCE(p2.kraj, p2.pocetak, p2.created_at) DESC, p2.id_preg DESC
				LIMIT 1
			) AS zadnji_korisnik
		FROM postrojenje p
		LEFT JOIN pregled pr ON pr.id_postr = p.id_postr
		GROUP BY p.id_postr, p.ozn_vr_postr, p.naz_postr, p.lokacija
		ORDER BY p.id_postr
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer rows.Close()

	out := []domain.FacilitySummary{}
	for rows.Next() {
		var s domain.FacilitySummary
		var location, lastUser sql.NullString
		var last sql.NullTime
		if err := rows.Scan(&s.ID, &s.TypeCode, &s.Name, &location, &s.InspectionCount, &last, &lastUser); err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		s.Location = location.String
		s.LastInspector = lastUser.String
		if last.Valid {
			t := last.Time
			s.LastInspection = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListFieldsWithCount(ctx context.Context, facilityID int64) ([]domain.FieldWithCount, error) {
	query := `
		SELECT f.id_polje, f.id_postr, f.nap_razina, f.ozn_vr_polje, f.naz_polje, COUNT(u.id_ured)
		FROM polje f
		LEFT JOIN uredaj u ON u.id_polje = f.id_polje
		WHERE f.id_postr = $1
		GROUP BY f.id_polje, f.id_postr, f.nap_razina, f.ozn_vr_polje, f.naz_polje
		ORDER BY f.nap_razina DESC, f.naz_polje
	`
	rows, err := r.db.QueryContext(ctx, query, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	out := []domain.FieldWithCount{}
	for rows.Next() {
		var f domain.FieldWithCount
		if err := rows.Scan(&f.ID, &f.FacilityID, &f.VoltageLevel, &f.TypeCode, &f.Name, &f.EquipmentCount); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) CountFieldlessEquipment(ctx context.Context, facilityID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM uredaj WHERE id_postr = $1 AND id_polje IS NULL`, facilityID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count fieldless equipment: %w", err)
	}
	return n, nil
}

const equipmentSelect = `
		SELECT
			u.id_ured, u.natp_plocica, u.tv_broj, u.id_postr, u.id_polje, u.id_vr_ured,
			v.ozn_vr_ured, v.naz_vr_ured,
			f.nap_razina, f.ozn_vr_polje, f.naz_polje
		FROM uredaj u
		JOIN vrsta_uredaja v ON v.id_vr_ured = u.id_vr_ured
		LEFT JOIN polje f ON f.id_polje = u.id_polje
`

func (r *PostgresReferenceRepository) ListEquipment(ctx context.Context, facilityID, fieldID int64) ([]domain.Equipment, error) {
	query := equipmentSelect
	args := []any{facilityID}
	if fieldID == domain.NoField {
		query += ` WHERE u.id_postr = $1 AND u.id_polje IS NULL`
	} else {
		query += ` WHERE u.id_postr = $1 AND u.id_polje = $2`
		args = append(args, fieldID)
	}
	query += ` ORDER BY u.id_ured`
	return r.queryEquipment(ctx, query, args...)
}

func (r *PostgresReferenceRepository) GetEquipment(ctx context.Context, ids ...int64) ([]domain.Equipment, error) {
	if len(ids) == 0 {
		return []domain.Equipment{}, nil
	}
	query := equipmentSelect + ` WHERE u.id_ured = ANY($1) ORDER BY u.id_ured`
	return r.queryEquipment(ctx, query, pq.Array(ids))
}

func (r *PostgresReferenceRepository) queryEquipment(ctx context.Context, query string, args ...any) ([]domain.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	out := []domain.Equipment{}
	for rows.Next() {
		var e domain.Equipment
		var fieldID sql.NullInt64
		var voltage sql.NullFloat64
		var fieldCode, fieldName sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Label, &e.SerialNumber, &e.FacilityID, &fieldID, &e.TypeID,
			&e.Type.Code, &e.Type.Name,
			&voltage, &fieldCode, &fieldName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		e.Type.ID = e.TypeID
		if fieldID.Valid {
			id := fieldID.Int64
			e.FieldID = &id
			e.Field = &domain.Field{
				ID:           id,
				FacilityID:   e.FacilityID,
				VoltageLevel: voltage.Float64,
				TypeCode:     fieldCode.String,
				Name:         fieldName.String,
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ParametersByType(ctx context.Context, typeID int64) ([]domain.Parameter, error) {
	query := `
		SELECT id_parametra, naz_parametra, tip_podataka, min_vrijednost, max_vrijednost,
		       mjerna_jedinica, obavezan, redoslijed, opis, id_vr_ured
		FROM parametar_provjere
		WHERE id_vr_ured = $1
		ORDER BY redoslijed, id_parametra
	`
	rows, err := r.db.QueryContext(ctx, query, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	defer rows.Close()

	out := []domain.Parameter{}
	for rows.Next() {
		p, err := scanParameter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParameter(s rowScanner) (*domain.Parameter, error) {
	var p domain.Parameter
	var kind string
	var lo, hi sql.NullFloat64
	var unit, desc sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &kind, &lo, &hi, &unit, &p.Required, &p.Order, &desc, &p.TypeID); err != nil {
		return nil, fmt.Errorf("failed to scan parameter: %w", err)
	}
	p.Kind = domain.DataKind(kind)
	if lo.Valid {
		v := lo.Float64
		p.Min = &v
	}
	if hi.Valid {
		v := hi.Float64
		p.Max = &v
	}
	p.Unit = unit.String
	p.Description = desc.String
	return &p, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func facilityExists(ctx context.Context, q queryRower, facilityID int64) (bool, error) {
	return exists(ctx, q, `SELECT EXISTS (SELECT 1 FROM postrojenje WHERE id_postr = $1)`, facilityID)
}

func exists(ctx context.Context, q queryRower, query string, arg any) (bool, error) {
	var ok bool
	if err := q.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}
