package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elektropregled/internal/domain"
)

func setupMockInspectionsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresInspectionsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresInspectionsRepository(db)
}

func TestLatestItems_EmptyInputSkipsQuery(t *testing.T) {
	db, mock, repo := setupMockInspectionsDB(t)
	defer db.Close()

	got, err := repo.LatestItems(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestItems_ScansOneRowPerPair(t *testing.T) {
	db, mock, repo := setupMockInspectionsDB(t)
	defer db.Close()

	start := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 20, 9, 5, 0, 0, time.UTC)
	entered := time.Date(2026, 1, 20, 8, 30, 0, 0, time.UTC)
	lid := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id_stavke", "lokalni_id", "vrijednost_bool", "vrijednost_num", "vrijednost_txt",
		"napomena", "vrijeme_unosa", "id_preg", "id_ured", "id_parametra",
		"pocetak", "kraj", "created_at",
	}).
		AddRow(int64(11), lid.String(), true, nil, nil, nil, entered, int64(3), int64(1), int64(1), start, end, created).
		AddRow(int64(12), uuid.NewString(), nil, 45.5, nil, "ok", entered, int64(3), int64(1), int64(2), start, nil, created)

	mock.ExpectQuery(`SELECT DISTINCT ON`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	got, err := repo.LatestItems(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, lid, got[0].Item.LocalID)
	b, ok := got[0].Item.Value.Bool()
	assert.True(t, ok)
	assert.True(t, b)
	require.NotNil(t, got[0].InspectionEnd)
	assert.Equal(t, end, got[0].InspectedAt())

	n, ok := got[1].Item.Value.Number()
	assert.True(t, ok)
	assert.Equal(t, 45.5, n)
	assert.Equal(t, "ok", got[1].Item.Note)
	assert.Nil(t, got[1].InspectionEnd)
	assert.Equal(t, start, got[1].InspectedAt())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	db, mock, repo := setupMockInspectionsDB(t)
	defer db.Close()

	lid := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM pregled`).
		WithArgs(lid.String()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO pregled`).
		WillReturnRows(sqlmock.NewRows([]string{"id_preg"}).AddRow(int64(42)))
	mock.ExpectCommit()

	var id int64
	err := repo.WithinTx(context.Background(), func(tx SyncTx) error {
		dup, err := tx.InspectionExists(context.Background(), lid)
		if err != nil || dup {
			return errors.New("unexpected duplicate")
		}
		id, err = tx.InsertInspection(context.Background(), &domain.Inspection{
			LocalID: lid, Status: domain.SyncSynced, Start: time.Now(), UserID: 1, FacilityID: 1, CreatedAt: time.Now(),
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_DuplicateLocalIDRollsBackAsConflict(t *testing.T) {
	db, mock, repo := setupMockInspectionsDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO pregled`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_pregled_lokalni_id"})
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx SyncTx) error {
		_, err := tx.InsertInspection(context.Background(), &domain.Inspection{LocalID: uuid.New(), Start: time.Now()})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, domain.MsgInspectionSynced, domain.Message(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertItem_TripleUniqueIsValidation(t *testing.T) {
	db, mock, repo := setupMockInspectionsDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO stavka_pregleda`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_stavka_unique_check"})
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx SyncTx) error {
		_, err := tx.InsertItem(context.Background(), &domain.InspectionItem{
			LocalID: uuid.New(), Value: domain.BoolValue(true), EnteredAt: time.Now(),
			InspectionID: 1, EquipmentID: 1, ParameterID: 1,
		})
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetParameter_NotFound(t *testing.T) {
	db, mock, repo := setupMockInspectionsDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM parametar_provjere`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx SyncTx) error {
		_, err := tx.GetParameter(context.Background(), 99)
		return err
	})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateUniqueViolation(t *testing.T) {
	other := &pq.Error{Code: "23503", Constraint: "fk"}
	assert.Same(t, error(other), translateUniqueViolation(other))

	unknown := &pq.Error{Code: "23505", Constraint: "uq_korisnik_korisnicko_ime"}
	assert.False(t, errors.Is(translateUniqueViolation(unknown), domain.ErrConflict))

	item := translateUniqueViolation(&pq.Error{Code: "23505", Constraint: "uq_stavka_pregleda_lokalni_id"})
	assert.True(t, errors.Is(item, domain.ErrConflict))
	assert.Equal(t, domain.MsgItemSynced, domain.Message(item))
}

func TestListExportRows(t *testing.T) {
	db, mock, repo := setupMockInspectionsDB(t)
	defer db.Close()

	start := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id_preg", "lokalni_id", "pocetak", "kraj", "korisnicko_ime",
		"natp_plocica", "tv_broj", "naz_parametra", "tip_podataka",
		"vrijednost_bool", "vrijednost_num", "vrijednost_txt",
		"mjerna_jedinica", "napomena", "vrijeme_unosa",
	}).AddRow(int64(3), uuid.NewString(), start, nil, "demo", "PK-110-01", "SN-PK-0001",
		"Tlak SF6", "NUMERIC", nil, 45.0, nil, "bar", nil, start)

	mock.ExpectQuery(`FROM pregled p`).WithArgs(int64(1)).WillReturnRows(rows)

	got, err := repo.ListExportRows(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.KindNumeric, got[0].Kind)
	assert.Equal(t, "45", got[0].Value.String())
	assert.Nil(t, got[0].End)
	require.NoError(t, mock.ExpectationsWereMet())
}
