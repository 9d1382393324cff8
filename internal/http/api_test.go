package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"elektropregled/internal/domain"
	"elektropregled/internal/repository"
	"elektropregled/internal/service"
)

type testAPI struct {
	handler http.Handler
	store   *repository.MemoryStore
	token   string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	hash, err := bcrypt.GenerateFromPassword([]byte(repository.DemoPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	require.NoError(t, repository.SeedDemo(context.Background(), store, string(hash)))

	tokens := service.NewJWTIssuer("test-secret", time.Hour)
	auth := RequireAuth(tokens, logger)

	r := NewRouter(logger)
	r.RegisterHealthRoutes()
	r.RegisterAuthRoutes(NewAuthHandler(service.NewAuthService(store, service.BcryptVerifier{}, tokens, logger), logger))
	r.RegisterFacilityRoutes(NewFacilityHandler(service.NewFacilityService(store, store, logger), logger), auth)
	r.RegisterSyncRoutes(NewSyncHandler(service.NewSyncService(store, nil, logger), logger), auth)

	api := &testAPI{handler: AccessLog(r, logger), store: store}
	api.token = api.login(t, repository.DemoUsername, repository.DemoPassword)
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"korisnicko_ime": username, "lozinka": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp service.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	return resp.AccessToken
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResult {
	t.Helper()
	var e ErrorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.False(t, e.Success)
	return e
}

func TestLogin_Failures(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"korisnicko_ime": "demo", "lozinka": "wrong"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.MsgBadCredentials, decodeError(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"korisnicko_ime": "ghost", "lozinka": "x"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.MsgBadCredentials, decodeError(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"korisnicko_ime": "demo"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/auth/login", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/postrojenja", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.MsgMissingToken, decodeError(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/v1/pregled/sync", map[string]any{}, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := service.NewJWTIssuer("other-secret", time.Hour)
	forged, err := other.Issue(1, "demo")
	require.NoError(t, err)
	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFacilityEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/postrojenja", nil, api.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var facilities []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &facilities))
	require.Len(t, facilities, 1)
	assert.Equal(t, float64(0), facilities[0]["totalPregleda"])
	assert.Nil(t, facilities[0]["zadnjiPregled"])

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/1/polja", nil, api.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var fields []service.FieldDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	require.Len(t, fields, 2)
	assert.Nil(t, fields[1].ID)
	assert.Equal(t, domain.FieldlessName, fields[1].Name)

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/99/polja", nil, api.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.MsgFacilityNotFound, decodeError(t, rec).Message)

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/abc/polja", nil, api.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/1/checklist", nil, api.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgFieldRequired, decodeError(t, rec).Message)

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/1/checklist?id_polje=x", nil, api.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/1/checklist?id_polje=0", nil, api.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var devices []service.DeviceChecklistDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "TR", devices[0].TypeCode)
	assert.Nil(t, devices[0].FieldID)

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/1/unknown", nil, api.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func syncBody(inspectionLID string, num float64) map[string]any {
	return map[string]any{
		"pregled": map[string]any{
			"lokalni_id":   inspectionLID,
			"id_korisnika": 1,
			"id_postr":     1,
			"pocetak":      "2026-01-26T10:30:00",
			"kraj":         "2026-01-26T11:00:00",
			"napomena":     "Redovni pregled",
		},
		"stavke": []map[string]any{
			{"lokalni_id": uuid.NewString(), "id_ured": 1, "id_parametra": 1, "vrijednost_bool": true, "vrijeme_unosa": "2026-01-26T10:35:00"},
			{"lokalni_id": uuid.NewString(), "id_ured": 1, "id_parametra": 2, "vrijednost_num": num},
		},
	}
}

func TestSyncScenario(t *testing.T) {
	api := newTestAPI(t)
	lid := uuid.NewString()
	body := syncBody(lid, 45.0)

	rec := api.do(t, http.MethodPost, "/api/v1/pregled/sync", body, api.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp service.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.MsgSyncOK, resp.Message)
	assert.Equal(t, lid, resp.Mappings.Inspection.LocalID.String())
	assert.Equal(t, resp.ServerID, resp.Mappings.Inspection.ServerID)
	require.Len(t, resp.Mappings.Items, 2)
	items := body["stavke"].([]map[string]any)
	for i, m := range resp.Mappings.Items {
		assert.Equal(t, items[i]["lokalni_id"], m.LocalID.String())
	}

	rec = api.do(t, http.MethodPost, "/api/v1/pregled/sync", body, api.token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.MsgInspectionSynced, decodeError(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/v1/pregled/sync", syncBody(uuid.NewString(), 200.0), api.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgAboveMaximum, decodeError(t, rec).Message)

	// the rejected batch left nothing behind; the checklist shows the first sync
	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/1/checklist?id_polje=1", nil, api.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var devices []service.DeviceChecklistDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	require.Len(t, devices, 1)
	require.Len(t, devices[0].Parameters, 2)
	require.NotNil(t, devices[0].Parameters[1].DefaultNum)
	assert.Equal(t, 45.0, *devices[0].Parameters[1].DefaultNum)
	require.NotNil(t, devices[0].Parameters[1].LastInspectedAt)
	assert.Equal(t, time.Date(2026, 1, 26, 11, 0, 0, 0, time.UTC), devices[0].Parameters[1].LastInspectedAt.UTC())

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja", nil, api.token)
	var facilities []service.FacilitySummaryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &facilities))
	assert.Equal(t, int64(1), facilities[0].Inspections)
	require.NotNil(t, facilities[0].LastInspector)
	assert.Equal(t, repository.DemoUsername, *facilities[0].LastInspector)
}

func TestSync_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pregled/sync", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+api.token)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/pregled/sync", nil, api.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.MsgInspectionRequired, decodeError(t, rec).Message)
}

func TestExportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/api/v1/pregled/sync", syncBody(uuid.NewString(), 45.0), api.token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/1/pregledi/export", nil, api.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pregledi_1_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Pregledi")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, InspectionExportHeader, rows[0])
	assert.Equal(t, "Vizualna provjera", rows[1][7])
	assert.Equal(t, "DA", rows[1][9])
	assert.Equal(t, "45", rows[2][9])

	rec = api.do(t, http.MethodGet, "/api/v1/postrojenja/42/pregledi/export", nil, api.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
