package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"mesaplan/internal/floorplan/application/usecase"
	"mesaplan/internal/floorplan/domain"
)

// Command is one client-to-server frame. Gesture commands carry pointer
// samples in the payload; session state goes back after every one.
type Command struct {
	Action  string          `json:"action"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (c Command) actionKey() string {
	return normalizeAction(c.Action)
}

type CommandHandler func(ctx context.Context, client *Client, cmd Command)

// CommandProcessor routes incoming frames to their handlers. Pointer and
// zoom actions drive the client's own InteractionController; subscribe,
// unsubscribe and ping manage the stream itself.
type CommandProcessor struct {
	hub      *Hub
	handlers map[string]CommandHandler
}

func NewCommandProcessor(hub *Hub) *CommandProcessor {
	p := &CommandProcessor{
		hub:      hub,
		handlers: make(map[string]CommandHandler),
	}
	p.Register("subscribe", p.handleSubscribe)
	p.Register("unsubscribe", p.handleUnsubscribe)
	p.Register("ping", p.handlePing)

	p.Register("pointer.down", gestureCommand(func(ctx context.Context, ic *usecase.InteractionController, cmd Command) usecase.InteractionState {
		return ic.PointerDown(ctx, decodePointer(cmd))
	}))
	p.Register("pointer.move", gestureCommand(func(ctx context.Context, ic *usecase.InteractionController, cmd Command) usecase.InteractionState {
		return ic.PointerMove(ctx, decodePointer(cmd))
	}))
	p.Register("pointer.up", gestureCommand(func(ctx context.Context, ic *usecase.InteractionController, cmd Command) usecase.InteractionState {
		return ic.PointerUp(ctx, decodePointer(cmd))
	}))
	p.Register("pointer.leave", gestureCommand(func(ctx context.Context, ic *usecase.InteractionController, _ Command) usecase.InteractionState {
		return ic.PointerLeave(ctx)
	}))
	p.Register("zoom.in", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, _ Command) usecase.InteractionState {
		return ic.ZoomIn()
	}))
	p.Register("zoom.out", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, _ Command) usecase.InteractionState {
		return ic.ZoomOut()
	}))
	p.Register("zoom.set", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, cmd Command) usecase.InteractionState {
		var payload struct {
			Percent float64 `json:"percent"`
		}
		decodePayload(cmd, &payload)
		return ic.SetZoomPercent(payload.Percent)
	}))
	p.Register("zoom.wheel", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, cmd Command) usecase.InteractionState {
		var payload struct {
			Delta float64 `json:"delta"`
		}
		decodePayload(cmd, &payload)
		return ic.Wheel(payload.Delta)
	}))
	p.Register("place.start", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, cmd Command) usecase.InteractionState {
		var payload struct {
			Shape domain.Shape `json:"shape"`
		}
		decodePayload(cmd, &payload)
		return ic.BeginPlacement(payload.Shape)
	}))
	p.Register("place.clear", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, _ Command) usecase.InteractionState {
		return ic.ClearPlacementDraft()
	}))
	p.Register("gesture.cancel", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, _ Command) usecase.InteractionState {
		return ic.CancelGesture()
	}))
	p.Register("menu.close", gestureCommand(func(_ context.Context, ic *usecase.InteractionController, _ Command) usecase.InteractionState {
		return ic.CloseMenu()
	}))
	return p
}

func (p *CommandProcessor) Register(action string, handler CommandHandler) {
	if handler == nil {
		return
	}
	key := normalizeAction(action)
	if key == "" {
		return
	}
	p.handlers[key] = handler
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if client == nil {
		return
	}
	action := cmd.actionKey()
	if action == "" {
		return
	}
	if handler, ok := p.handlers[action]; ok {
		handler(context.Background(), client, cmd)
		return
	}
	slog.Debug("ws command ignored", slog.String("userId", client.userID), slog.String("sessionId", client.sessionID), slog.String("action", action))
}

// gestureCommand wraps an interaction mutation so the resulting session
// state snapshot always goes back to the issuing client.
func gestureCommand(fn func(context.Context, *usecase.InteractionController, Command) usecase.InteractionState) CommandHandler {
	return func(ctx context.Context, client *Client, cmd Command) {
		if client.interactions == nil {
			return
		}
		state := fn(ctx, client.interactions, cmd)
		client.sendState(state)
	}
}

func (c *Client) sendState(state usecase.InteractionState) {
	msg := domain.Message{
		Topic:     "session.state",
		Entity:    "session",
		Action:    "state",
		Data:      state,
		Timestamp: time.Now().UTC(),
	}
	c.SendDomainMessage(&msg)
}

func decodePointer(cmd Command) usecase.PointerEvent {
	var ev usecase.PointerEvent
	decodePayload(cmd, &ev)
	if ev.Button == "" {
		ev.Button = usecase.ButtonPrimary
	}
	return ev
}

func decodePayload(cmd Command, out any) {
	if len(cmd.Payload) == 0 {
		return
	}
	if err := json.Unmarshal(cmd.Payload, out); err != nil {
		slog.Debug("ws payload decode failed", slog.String("action", cmd.Action), slog.Any("error", err))
	}
}

func (p *CommandProcessor) handleSubscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		return
	}
	p.hub.subscribe(client, topic)
	slog.Debug("ws subscribe", slog.String("userId", client.userID), slog.String("sessionId", client.sessionID), slog.String("topic", topic))
}

func (p *CommandProcessor) handleUnsubscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		return
	}
	p.hub.unsubscribe(client, topic)
}

func (p *CommandProcessor) handlePing(_ context.Context, client *Client, _ Command) {
	ack := domain.Message{
		Topic:     "system.pong",
		Entity:    "system",
		Action:    "pong",
		Timestamp: time.Now().UTC(),
	}
	client.SendDomainMessage(&ack)
}

func normalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
