package handler

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/application/usecase"
	"mesaplan/internal/floorplan/domain"
	"mesaplan/internal/shared/normalization"
)

// OrderEventHandler folds a POS order lifecycle topic into a table status.
// The floor plan itself never edits orders; it only mirrors what the POS
// reports.
type OrderEventHandler struct {
	topic  string
	status domain.TableStatus
	change *usecase.StatusChanger
}

// Order topics and the statuses they imply.
var orderTopicStatus = map[string]domain.TableStatus{
	"order.opened": domain.StatusOccupied,
	"order.closed": domain.StatusWaitingPayment,
	"order.paid":   domain.StatusCleaning,
}

func NewOrderEventHandler(topic string, change *usecase.StatusChanger) *OrderEventHandler {
	status, ok := orderTopicStatus[strings.TrimSpace(topic)]
	if !ok {
		status = domain.StatusOccupied
	}
	return &OrderEventHandler{topic: strings.TrimSpace(topic), status: status, change: change}
}

func (h *OrderEventHandler) Topic() string { return h.topic }

func (h *OrderEventHandler) Handle(ctx context.Context, msg *domain.Message) error {
	tableID := tableIDFromMessage(msg)
	if tableID == 0 {
		slog.Debug("order event without table id", slog.String("topic", h.topic))
		return nil
	}
	if err := h.change.Execute(ctx, tableID, h.status); err != nil {
		slog.Warn("order event status change failed",
			slog.String("topic", h.topic),
			slog.Int64("tableId", tableID),
			slog.Any("error", err))
	}
	return nil
}

// ReservationEventHandler folds reservation lifecycle events into table
// statuses. A cancellation frees the table only while it is still reserved;
// a table that was seated in the meantime keeps its occupied status.
type ReservationEventHandler struct {
	topic  string
	model  *usecase.LayoutModel
	change *usecase.StatusChanger
}

func NewReservationEventHandler(topic string, model *usecase.LayoutModel, change *usecase.StatusChanger) *ReservationEventHandler {
	return &ReservationEventHandler{topic: strings.TrimSpace(topic), model: model, change: change}
}

func (h *ReservationEventHandler) Topic() string { return h.topic }

func (h *ReservationEventHandler) Handle(ctx context.Context, msg *domain.Message) error {
	tableID := tableIDFromMessage(msg)
	if tableID == 0 {
		return nil
	}

	switch {
	case strings.HasSuffix(h.topic, ".created"):
		return h.apply(ctx, tableID, domain.StatusReserved)
	case strings.HasSuffix(h.topic, ".cancelled"):
		table, err := h.model.FindTable(tableID)
		if err != nil {
			return nil
		}
		if table.Status != domain.StatusReserved {
			return nil
		}
		return h.apply(ctx, tableID, domain.StatusFree)
	}
	return nil
}

func (h *ReservationEventHandler) apply(ctx context.Context, tableID int64, status domain.TableStatus) error {
	if err := h.change.Execute(ctx, tableID, status); err != nil {
		slog.Warn("reservation event status change failed",
			slog.String("topic", h.topic),
			slog.Int64("tableId", tableID),
			slog.Any("error", err))
	}
	return nil
}

// tableIDFromMessage digs the table id out of the event, accepting the
// resource id, metadata, or a payload field, in that order.
func tableIDFromMessage(msg *domain.Message) int64 {
	if id := parseID(msg.ResourceID); id != 0 && msg.Entity == "tables" {
		return id
	}
	if msg.Metadata != nil {
		if id := parseID(msg.Metadata["tableId"]); id != 0 {
			return id
		}
	}
	if payload := normalization.MapFromPayload(msg.Data); payload != nil {
		for _, key := range []string{"tableId", "table_id", "mesaId"} {
			if raw, ok := payload[key]; ok {
				if id := int64(normalization.AsFloat64(raw)); id != 0 {
					return id
				}
				if id := parseID(normalization.AsString(raw)); id != 0 {
					return id
				}
			}
		}
	}
	return 0
}

func parseID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

var (
	_ port.TopicHandler = (*OrderEventHandler)(nil)
	_ port.TopicHandler = (*ReservationEventHandler)(nil)
)
