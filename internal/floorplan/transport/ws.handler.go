package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/application/usecase"
	"mesaplan/internal/floorplan/domain"
	"mesaplan/internal/floorplan/infrastructure"
	"mesaplan/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// floorTopics are the broadcast streams every floor session subscribes to.
var floorTopics = []string{
	"tables.created", "tables.updated", "tables.deleted",
	"tables.moved", "tables.resized", "tables.status",
	"areas.created", "areas.updated", "areas.deleted",
	"reservations.created", "reservations.cancelled",
	"layout.updated",
	"notices.commit-failed",
}

// NewFloorWebsocketHandler exposes /ws/floor(/:token), validates the JWT
// locally and binds a fresh InteractionController to the session so each
// operator gets an independent viewport, selection and gesture state.
func NewFloorWebsocketHandler(
	hub *infrastructure.Hub,
	validator auth.TokenValidator,
	model *usecase.LayoutModel,
	tables port.TableRepository,
	broadcast *usecase.BroadcastUseCase,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			token = auth.ExtractToken(c.Request(), "token")
		}

		claims, err := validator.Validate(token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				status = http.StatusBadRequest
				message = "missing token"
			}
			slog.Warn("ws floor connect rejected", slog.Int("status", status), slog.Any("error", err))
			return echo.NewHTTPError(status, message)
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws floor upgrade failed", slog.Any("error", err))
			return err
		}

		userID := claims.RegisteredClaims.Subject
		sessionID := claims.SessionID

		interactions := usecase.NewInteractionController(model, tables, broadcast)
		client := infrastructure.NewClient(hub, conn, userID, sessionID, token, 16, interactions)
		client.AddCloseHook(func(*infrastructure.Client) {
			interactions.WaitForCommits()
		})
		hub.AttachClient(client, floorTopics)

		go client.WritePump()
		go client.ReadPump()

		connected := &domain.Message{
			Topic:  "system.connected",
			Entity: "system",
			Action: "connected",
			Metadata: map[string]string{
				"userId":    userID,
				"sessionId": sessionID,
			},
			Data: map[string]interface{}{
				"tables":   model.Tables(),
				"areas":    model.Areas(),
				"layout":   model.Layout(),
				"state":    interactions.State(),
				"statuses": domain.AllStatuses(),
				"topics":   floorTopics,
			},
			Timestamp: time.Now().UTC(),
		}
		client.SendDomainMessage(connected)
		slog.Info("ws floor connected", slog.String("userId", userID), slog.String("sessionId", sessionID))
		return nil
	}
}
