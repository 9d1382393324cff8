package repository

import (
	"context"
	"database/sql"
	"fmt"

	"elektropregled/internal/domain"
)

// Seed runs fn inside one transaction and realigns the id sequences of the
// tables that received explicit ids.
func (r *PostgresReferenceRepository) Seed(ctx context.Context, fn func(w ReferenceWriter) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgReferenceWriter{tx: tx}); err != nil {
		return err
	}
	for _, t := range []struct{ table, column string }{
		{"postrojenje", "id_postr"},
		{"polje", "id_polje"},
		{"uredaj", "id_ured"},
	} {
		q := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 0) + 1, false)`,
			t.table, t.column, t.column, t.table)
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to reset sequence of %s: %w", t.table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}

type pgReferenceWriter struct {
	tx *sql.Tx
}

func (w *pgReferenceWriter) UpsertFacility(ctx context.Context, f domain.Facility) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT INTO postrojenje (id_postr, ozn_vr_postr, naz_postr, lokacija)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (id_postr) DO UPDATE SET
			ozn_vr_postr = EXCLUDED.ozn_vr_postr,
			naz_postr = EXCLUDED.naz_postr,
			lokacija = EXCLUDED.lokacija
	`, f.ID, f.TypeCode, f.Name, f.Location)
	if err != nil {
		return fmt.Errorf("failed to upsert facility %d: %w", f.ID, err)
	}
	return nil
}

func (w *pgReferenceWriter) UpsertField(ctx context.Context, f domain.Field) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT INTO polje (id_polje, nap_razina, ozn_vr_polje, naz_polje, id_postr)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id_polje) DO UPDATE SET
			nap_razina = EXCLUDED.nap_razina,
			ozn_vr_polje = EXCLUDED.ozn_vr_polje,
			naz_polje = EXCLUDED.naz_polje,
			id_postr = EXCLUDED.id_postr
	`, f.ID, f.VoltageLevel, f.TypeCode, f.Name, f.FacilityID)
	if err != nil {
		return fmt.Errorf("failed to upsert field %d: %w", f.ID, err)
	}
	return nil
}

func (w *pgReferenceWriter) UpsertEquipmentType(ctx context.Context, code, name string) (int64, error) {
	var id int64
	err := w.tx.QueryRowContext(ctx, `
		INSERT INTO vrsta_uredaja (ozn_vr_ured, naz_vr_ured)
		VALUES ($1, $2)
		ON CONFLICT (ozn_vr_ured) DO UPDATE SET naz_vr_ured = EXCLUDED.naz_vr_ured
		RETURNING id_vr_ured
	`, code, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert equipment type %s: %w", code, err)
	}
	return id, nil
}

func (w *pgReferenceWriter) UpsertParameter(ctx context.Context, p domain.Parameter) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT INTO parametar_provjere
			(naz_parametra, tip_podataka, min_vrijednost, max_vrijednost, mjerna_jedinica, obavezan, redoslijed, opis, id_vr_ured)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9)
		ON CONFLICT (id_vr_ured, naz_parametra) DO UPDATE SET
			tip_podataka = EXCLUDED.tip_podataka,
			min_vrijednost = EXCLUDED.min_vrijednost,
			max_vrijednost = EXCLUDED.max_vrijednost,
			mjerna_jedinica = EXCLUDED.mjerna_jedinica,
			obavezan = EXCLUDED.obavezan,
			redoslijed = EXCLUDED.redoslijed,
			opis = EXCLUDED.opis
	`, p.Name, string(p.Kind), nullFloat(p.Min), nullFloat(p.Max), p.Unit, p.Required, p.Order, p.Description, p.TypeID)
	if err != nil {
		return fmt.Errorf("failed to upsert parameter %q: %w", p.Name, err)
	}
	return nil
}

func (w *pgReferenceWriter) UpsertEquipment(ctx context.Context, e domain.Equipment) error {
	var fieldID sql.NullInt64
	if e.FieldID != nil {
		fieldID = sql.NullInt64{Int64: *e.FieldID, Valid: true}
	}
	_, err := w.tx.ExecContext(ctx, `
		INSERT INTO uredaj (id_ured, natp_plocica, tv_broj, id_postr, id_polje, id_vr_ured)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id_ured) DO UPDATE SET
			natp_plocica = EXCLUDED.natp_plocica,
			tv_broj = EXCLUDED.tv_broj,
			id_postr = EXCLUDED.id_postr,
			id_polje = EXCLUDED.id_polje,
			id_vr_ured = EXCLUDED.id_vr_ured
	`, e.ID, e.Label, e.SerialNumber, e.FacilityID, fieldID, e.TypeID)
	if err != nil {
		return fmt.Errorf("failed to upsert equipment %d: %w", e.ID, err)
	}
	return nil
}

func (w *pgReferenceWriter) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT INTO korisnik (ime, prezime, korisnicko_ime, lozinka, uloga)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (korisnicko_ime) DO UPDATE SET
			ime = EXCLUDED.ime,
			prezime = EXCLUDED.prezime,
			lozinka = EXCLUDED.lozinka,
			uloga = EXCLUDED.uloga
	`, u.FirstName, u.LastName, u.Username, u.PasswordHash, string(u.Role))
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.Username, err)
	}
	return nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
