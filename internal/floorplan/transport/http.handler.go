package transport

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"mesaplan/internal/floorplan/application/usecase"
	"mesaplan/internal/floorplan/domain"
	"mesaplan/internal/shared/httputil"
)

// HTTPHandler mounts the back-office REST surface of the floor plan. It is
// the non-realtime counterpart of the WebSocket stream: the detail panel,
// the layout settings form and external integrations read and mutate
// through these routes.
type HTTPHandler struct {
	floor        *usecase.FloorService
	status       *usecase.StatusChanger
	reservations *usecase.ReservationService
	detail       *usecase.DetailPanel
	errors       *httputil.ErrorMapper
}

func NewHTTPHandler(
	floor *usecase.FloorService,
	status *usecase.StatusChanger,
	reservations *usecase.ReservationService,
	detail *usecase.DetailPanel,
) *HTTPHandler {
	mapper := httputil.NewErrorMapper().
		WithMapping(domain.ErrNotFound, http.StatusNotFound, "not found").
		WithMapping(domain.ErrValidation, http.StatusBadRequest, "invalid payload").
		WithMapping(domain.ErrAreaNotEmpty, http.StatusConflict, "area still has tables").
		WithMapping(usecase.ErrStatusPending, http.StatusConflict, "status change already pending").
		WithMapping(domain.ErrTransport, http.StatusBadGateway, "storage unavailable")
	return &HTTPHandler{
		floor:        floor,
		status:       status,
		reservations: reservations,
		detail:       detail,
		errors:       mapper,
	}
}

func (h *HTTPHandler) Register(e *echo.Echo) {
	api := e.Group("/api/floor")

	api.GET("/tables", h.listTables)
	api.POST("/tables", h.createTable)
	api.GET("/tables/:id", h.getTable)
	api.PUT("/tables/:id", h.updateTable)
	api.DELETE("/tables/:id", h.deleteTable)
	api.POST("/tables/:id/status", h.setTableStatus)
	api.GET("/tables/:id/detail", h.tableDetail)

	api.GET("/areas", h.listAreas)
	api.POST("/areas", h.createArea)
	api.PUT("/areas/:id", h.updateArea)
	api.DELETE("/areas/:id", h.deleteArea)

	api.GET("/layout", h.getLayout)
	api.PUT("/layout", h.updateLayout)

	api.GET("/reservations", h.listReservations)
	api.POST("/reservations", h.createReservation)
	api.DELETE("/reservations/:id", h.cancelReservation)

	api.GET("/orders", h.listOrders)
	api.GET("/statuses", h.listStatuses)
}

func (h *HTTPHandler) fail(err error) error {
	info := h.errors.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("floor request failed", slog.Any("error", err))
	}
	return echo.NewHTTPError(info.Status, info.Message)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *HTTPHandler) listTables(c echo.Context) error {
	if area := strings.TrimSpace(c.QueryParam("area")); area != "" {
		return c.JSON(http.StatusOK, h.floor.TablesInArea(area))
	}
	return c.JSON(http.StatusOK, h.floor.Tables())
}

func (h *HTTPHandler) getTable(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	table, err := h.floor.Table(id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, table)
}

func (h *HTTPHandler) createTable(c echo.Context) error {
	var table domain.Table
	if err := c.Bind(&table); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	created, err := h.floor.CreateTable(c.Request().Context(), table)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *HTTPHandler) updateTable(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var table domain.Table
	if err := c.Bind(&table); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.floor.UpdateTable(c.Request().Context(), id, table)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *HTTPHandler) deleteTable(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.floor.DeleteTable(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HTTPHandler) setTableStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	status := domain.NormalizeTableStatus(body.Status)
	if err := h.status.Execute(c.Request().Context(), id, status); err != nil {
		return h.fail(err)
	}
	table, err := h.floor.Table(id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, table)
}

func (h *HTTPHandler) tableDetail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	detail, err := h.detail.Load(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *HTTPHandler) listAreas(c echo.Context) error {
	return c.JSON(http.StatusOK, h.floor.Areas())
}

func (h *HTTPHandler) createArea(c echo.Context) error {
	var area domain.Area
	if err := c.Bind(&area); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	created, err := h.floor.CreateArea(c.Request().Context(), area)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *HTTPHandler) updateArea(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var area domain.Area
	if err := c.Bind(&area); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.floor.UpdateArea(c.Request().Context(), id, area)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *HTTPHandler) deleteArea(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.floor.DeleteArea(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HTTPHandler) getLayout(c echo.Context) error {
	return c.JSON(http.StatusOK, h.floor.Layout())
}

func (h *HTTPHandler) updateLayout(c echo.Context) error {
	var layout domain.Layout
	if err := c.Bind(&layout); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.floor.UpdateLayout(c.Request().Context(), layout)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *HTTPHandler) listReservations(c echo.Context) error {
	reservations, err := h.floor.Reservations(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, reservations)
}

func (h *HTTPHandler) createReservation(c echo.Context) error {
	var reservation domain.Reservation
	if err := c.Bind(&reservation); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	created, err := h.reservations.Create(c.Request().Context(), reservation)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *HTTPHandler) cancelReservation(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.reservations.Cancel(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HTTPHandler) listOrders(c echo.Context) error {
	orders, err := h.floor.Orders(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, orders)
}

// listStatuses returns the six states with their display descriptors so the
// UI renders labels and colors from one source of truth.
func (h *HTTPHandler) listStatuses(c echo.Context) error {
	type statusView struct {
		Status domain.TableStatus      `json:"status"`
		Label  string                  `json:"label"`
		Color  string                  `json:"color"`
	}
	statuses := domain.AllStatuses()
	out := make([]statusView, 0, len(statuses))
	for _, s := range statuses {
		d := s.Descriptor()
		out = append(out, statusView{Status: s, Label: d.Label, Color: d.Color})
	}
	return c.JSON(http.StatusOK, out)
}
