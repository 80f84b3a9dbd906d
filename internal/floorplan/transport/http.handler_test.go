package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"mesaplan/internal/floorplan/application/usecase"
	"mesaplan/internal/floorplan/domain"
	"mesaplan/internal/floorplan/infrastructure"
)

func newTestServer(t *testing.T) (*echo.Echo, *infrastructure.MemoryRepository) {
	t.Helper()
	repo := infrastructure.NewMemoryRepository()
	model := usecase.NewLayoutModel()
	require.NoError(t, model.Load(context.Background(), repo))

	broadcast := usecase.NewBroadcastUseCase(nil)
	floor := usecase.NewFloorService(model, repo, broadcast)
	status := usecase.NewStatusChanger(model, repo, broadcast)
	reservations := usecase.NewReservationService(model, repo, repo, broadcast)
	detail := usecase.NewDetailPanel(model, repo, repo, status)

	e := echo.New()
	NewHTTPHandler(floor, status, reservations, detail).Register(e)
	return e, repo
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTableLifecycleOverREST(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/floor/tables",
		`{"name":"Mesa 1","capacity":4,"position":{"x":120,"y":140},"shape":{"kind":"square","width":80},"active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, 1, created.Number)
	require.Equal(t, domain.StatusFree, created.Status)

	rec = doJSON(t, e, http.MethodGet, "/api/floor/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tables []domain.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	require.Len(t, tables, 1)

	rec = doJSON(t, e, http.MethodPost, "/api/floor/tables/1/status", `{"status":"ocupada"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, "labels are not statuses")

	rec = doJSON(t, e, http.MethodPost, "/api/floor/tables/1/status", `{"status":"occupied"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, domain.StatusOccupied, updated.Status)

	rec = doJSON(t, e, http.MethodDelete, "/api/floor/tables/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/floor/tables/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAreaWithTablesReturnsConflict(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/floor/areas",
		`{"name":"Varanda","bounds":{"x":0,"y":0,"width":300,"height":200}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var area domain.Area
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &area))

	rec = doJSON(t, e, http.MethodPost, "/api/floor/tables",
		`{"capacity":2,"position":{"x":50,"y":50},"shape":{"kind":"circle","width":60},"area":"Varanda","active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/api/floor/areas/1", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/api/floor/tables/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/api/floor/areas/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReservationFlowOverREST(t *testing.T) {
	t.Parallel()
	e, repo := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/floor/tables",
		`{"capacity":4,"position":{"x":100,"y":100},"shape":{"kind":"square","width":80},"active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/floor/reservations",
		`{"tableId":1,"customerName":"Ana","customerPhone":"11999990000","date":"2026-09-01","time":"20:00","durationMinutes":90,"partySize":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reservation domain.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reservation))
	require.NotEmpty(t, reservation.ID)

	table, err := repo.GetTable(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusReserved, table.Status)

	rec = doJSON(t, e, http.MethodGet, "/api/floor/tables/1/detail", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail usecase.TableDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Len(t, detail.Reservations, 1)
	require.Equal(t, "Reservada", detail.Status.Label)

	rec = doJSON(t, e, http.MethodDelete, "/api/floor/reservations/"+reservation.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	table, err = repo.GetTable(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFree, table.Status)
}

func TestReservationTooShortRejected(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/floor/tables",
		`{"capacity":4,"position":{"x":100,"y":100},"shape":{"kind":"square","width":80},"active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/floor/reservations",
		`{"tableId":1,"customerName":"Ana","customerPhone":"11999990000","date":"2026-09-01","time":"20:00","durationMinutes":15,"partySize":2}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStatusesCarriesDisplayDescriptors(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/floor/statuses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []struct {
		Status string `json:"status"`
		Label  string `json:"label"`
		Color  string `json:"color"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 6)
	require.Equal(t, "FREE", statuses[0].Status)
	require.Equal(t, "Livre", statuses[0].Label)
	require.Equal(t, "success", statuses[0].Color)
}
