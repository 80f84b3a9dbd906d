package domain

import (
	"strconv"
	"strings"
	"time"
)

// Message is the realtime envelope relayed between Kafka, the usecases and
// the WebSocket hub.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Floor broadcast actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionMoved    = "moved"
	ActionResized  = "resized"
	ActionStatus   = "status"
	ActionRejected = "rejected"
)

// BuildTableMessage composes a broadcast message for a table mutation.
func BuildTableMessage(action string, table Table, at time.Time) *Message {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil
	}
	return &Message{
		Topic:      "tables." + action,
		Entity:     "tables",
		Action:     action,
		ResourceID: strconv.FormatInt(table.ID, 10),
		Metadata: map[string]string{
			"tableId": strconv.FormatInt(table.ID, 10),
			"status":  string(table.Status),
			"area":    table.Area,
		},
		Data:      table,
		Timestamp: at.UTC(),
	}
}

// BuildAreaMessage composes a broadcast message for an area mutation.
func BuildAreaMessage(action string, area Area, at time.Time) *Message {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil
	}
	return &Message{
		Topic:      "areas." + action,
		Entity:     "areas",
		Action:     action,
		ResourceID: strconv.FormatInt(area.ID, 10),
		Metadata:   map[string]string{"areaId": strconv.FormatInt(area.ID, 10), "name": area.Name},
		Data:       area,
		Timestamp:  at.UTC(),
	}
}

// BuildReservationMessage composes a broadcast message for a reservation
// lifecycle event.
func BuildReservationMessage(action string, reservation Reservation, at time.Time) *Message {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil
	}
	return &Message{
		Topic:      "reservations." + action,
		Entity:     "reservations",
		Action:     action,
		ResourceID: reservation.ID,
		Metadata: map[string]string{
			"reservationId": reservation.ID,
			"tableId":       strconv.FormatInt(reservation.TableID, 10),
			"status":        string(reservation.Status),
		},
		Data:      reservation,
		Timestamp: at.UTC(),
	}
}

// BuildNoticeMessage composes a non-blocking notification, e.g. a failed
// gesture commit that was rolled back.
func BuildNoticeMessage(kind, text string, metadata map[string]string, at time.Time) *Message {
	return &Message{
		Topic:     "notices." + kind,
		Entity:    "notices",
		Action:    kind,
		Metadata:  metadata,
		Data:      map[string]string{"message": text},
		Timestamp: at.UTC(),
	}
}
