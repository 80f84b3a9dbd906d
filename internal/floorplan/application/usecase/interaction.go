package usecase

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/domain"
)

// GestureKind identifies the single gesture a session may have active.
type GestureKind string

const (
	GestureNone   GestureKind = "idle"
	GesturePan    GestureKind = "pan"
	GestureDrag   GestureKind = "drag"
	GestureResize GestureKind = "resize"
	GesturePlace  GestureKind = "place"
)

// PointerButton distinguishes the primary (select/pan/drag) button from the
// secondary (context menu) button.
type PointerButton string

const (
	ButtonPrimary   PointerButton = "primary"
	ButtonSecondary PointerButton = "secondary"
)

// PointerEvent is one pointer sample in screen coordinates.
type PointerEvent struct {
	Position domain.Point  `json:"position"`
	Button   PointerButton `json:"button,omitempty"`
}

// ContextMenu is the transient right-click overlay, anchored at the click
// point in screen space.
type ContextMenu struct {
	TableID int64        `json:"tableId"`
	At      domain.Point `json:"at"`
}

// PlacementDraft pre-fills the table creation form after a placement click.
type PlacementDraft struct {
	Position domain.Point `json:"position"`
	Shape    domain.Shape `json:"shape"`
	Number   int          `json:"number"`
	Capacity int          `json:"capacity"`
}

// InteractionState is the complete, explicit gesture state of one session.
// It is returned by every controller mutation so the transport can ship a
// snapshot after each event; nothing about the live gesture is ambient.
type InteractionState struct {
	Gesture          GestureKind     `json:"gesture"`
	Viewport         domain.Viewport `json:"viewport"`
	SelectedTableID  int64           `json:"selectedTableId,omitempty"`
	Menu             *ContextMenu    `json:"menu,omitempty"`
	PlacementPreview *domain.Point   `json:"placementPreview,omitempty"`
	PlacementDraft   *PlacementDraft `json:"placementDraft,omitempty"`

	// gesture bookkeeping, never serialized
	dragTableID   int64
	dragOffset    domain.Point
	resizeDir     domain.ResizeDirection
	resizeBase    domain.Table
	placeShape    domain.Shape
	lastScreen    domain.Point
	pendingSelect int64
	moved         bool
}

// handleHitRadius is the pick distance around an edge handle, in canvas
// units.
const handleHitRadius = 10.0

const commitTimeout = 10 * time.Second

// InteractionController owns the live pointer-driven gestures of a single
// session. At most one gesture is active; starting a new one cancels the
// previous. During drag and resize it mutates only the model's working
// copy, committing through the repository when the gesture ends; a failed
// commit discards the optimistic change and the canvas stays responsive.
type InteractionController struct {
	mu        sync.Mutex
	model     *LayoutModel
	tables    port.TableRepository
	broadcast *BroadcastUseCase
	commits   *commitTracker
	state     InteractionState
	now       func() time.Time
}

func NewInteractionController(model *LayoutModel, tables port.TableRepository, broadcast *BroadcastUseCase) *InteractionController {
	return &InteractionController{
		model:     model,
		tables:    tables,
		broadcast: broadcast,
		commits:   newCommitTracker(),
		state:     InteractionState{Gesture: GestureNone, Viewport: domain.DefaultViewport()},
		now:       time.Now,
	}
}

// State returns a snapshot of the current interaction state.
func (c *InteractionController) State() InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PointerDown routes a button press. Any press dismisses an open context
// menu before the gesture logic runs.
func (c *InteractionController) PointerDown(ctx context.Context, ev PointerEvent) InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Menu = nil
	c.state.lastScreen = ev.Position
	c.state.moved = false
	canvas := c.toCanvas(ev.Position)

	if c.state.Gesture == GesturePlace {
		if ev.Button == ButtonPrimary {
			c.finishPlacementLocked(canvas)
		}
		return c.state
	}

	c.cancelGestureLocked()

	table, hit := c.model.TableAt(canvas)

	if ev.Button == ButtonSecondary {
		if hit {
			c.state.SelectedTableID = table.ID
			c.state.Menu = &ContextMenu{TableID: table.ID, At: ev.Position}
		}
		return c.state
	}

	// Resize handles are live only for the selected table on an unlocked
	// layout.
	if c.state.SelectedTableID != 0 && !c.model.Locked() {
		if selected, err := c.model.FindTable(c.state.SelectedTableID); err == nil {
			if dir, ok := handleAt(selected, canvas); ok {
				c.state.Gesture = GestureResize
				c.state.resizeDir = dir
				c.state.resizeBase = selected
				c.state.dragTableID = selected.ID
				return c.state
			}
		}
	}

	if hit {
		// Selection resolves on release if the pointer never moves;
		// movement turns the press into a drag on an unlocked layout.
		c.state.pendingSelect = table.ID
		if !c.model.Locked() {
			c.state.Gesture = GestureDrag
			c.state.dragTableID = table.ID
			c.state.dragOffset = table.Position.Sub(canvas)
		}
		return c.state
	}

	c.state.Gesture = GesturePan
	return c.state
}

// PointerMove advances the active gesture; it is a no-op while idle.
func (c *InteractionController) PointerMove(_ context.Context, ev PointerEvent) InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := ev.Position.Sub(c.state.lastScreen)
	c.state.lastScreen = ev.Position
	canvas := c.toCanvas(ev.Position)

	switch c.state.Gesture {
	case GesturePan:
		// Pan tracks the pointer 1:1 in screen space, independent of zoom.
		c.state.Viewport.Pan = c.state.Viewport.Pan.Add(delta)
		c.markMoved(delta)
	case GestureDrag:
		c.markMoved(delta)
		if c.state.moved {
			if err := c.model.StageMove(c.state.dragTableID, canvas.Add(c.state.dragOffset)); err != nil {
				slog.Warn("drag stage failed", slog.Int64("tableId", c.state.dragTableID), slog.Any("error", err))
			}
		}
	case GestureResize:
		c.markMoved(delta)
		reqW, reqH := requestedDimensions(c.state.resizeBase, c.state.resizeDir, canvas)
		if err := c.model.StageResize(c.state.dragTableID, c.state.resizeDir, reqW, reqH); err != nil {
			slog.Warn("resize stage failed", slog.Int64("tableId", c.state.dragTableID), slog.Any("error", err))
		}
	case GesturePlace:
		preview := canvas
		c.state.PlacementPreview = &preview
	}
	return c.state
}

// PointerUp ends the active gesture: pans stop, selections resolve, drags
// and resizes commit through the repository.
func (c *InteractionController) PointerUp(ctx context.Context, ev PointerEvent) InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Gesture {
	case GesturePan:
		if !c.state.moved {
			c.state.SelectedTableID = 0
		}
		c.state.Gesture = GestureNone
	case GestureDrag:
		tableID := c.state.dragTableID
		if !c.state.moved {
			c.state.SelectedTableID = c.state.pendingSelect
			c.model.DiscardWorking(tableID)
			c.state.Gesture = GestureNone
			break
		}
		c.state.SelectedTableID = tableID
		c.state.Gesture = GestureNone
		if staged, ok := c.model.Working(tableID); ok {
			c.commitPosition(tableID, staged.Position)
		}
	case GestureResize:
		tableID := c.state.dragTableID
		c.state.Gesture = GestureNone
		if staged, ok := c.model.Working(tableID); ok && c.state.moved {
			c.commitShape(tableID, staged.Position, staged.Shape)
		} else {
			c.model.DiscardWorking(tableID)
		}
	case GesturePlace:
		// Placement finishes on the press, not the release.
	default:
		if c.state.pendingSelect != 0 {
			c.state.SelectedTableID = c.state.pendingSelect
		}
	}
	c.state.pendingSelect = 0
	c.state.moved = false
	return c.state
}

// PointerLeave ends a pan exactly like a release would, so the controller
// can never get stuck mid-pan. In-flight drags and resizes are discarded:
// the working copy reverts and nothing is committed.
func (c *InteractionController) PointerLeave(_ context.Context) InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelGestureLocked()
	return c.state
}

// ZoomIn raises the zoom one step, clamped, without recentering.
func (c *InteractionController) ZoomIn() InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Viewport = c.state.Viewport.ZoomIn()
	return c.state
}

// ZoomOut lowers the zoom one step, clamped.
func (c *InteractionController) ZoomOut() InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Viewport = c.state.Viewport.ZoomOut()
	return c.state
}

// SetZoomPercent maps a slider percentage (50..200) onto the scale.
func (c *InteractionController) SetZoomPercent(percent float64) InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Viewport = c.state.Viewport.WithScale(domain.ScaleFromPercent(percent))
	return c.state
}

// Wheel applies a scroll zoom: one step per notch, clamped at the bounds
// instead of erroring past them.
func (c *InteractionController) Wheel(delta float64) InteractionState {
	if delta > 0 {
		return c.ZoomIn()
	}
	if delta < 0 {
		return c.ZoomOut()
	}
	return c.State()
}

// BeginPlacement toggles add-table mode: a preview shape follows the
// pointer until the placement click. Any other gesture in progress is
// cancelled first.
func (c *InteractionController) BeginPlacement(shape domain.Shape) InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelGestureLocked()
	if shape.Kind == "" {
		shape = ShapeDefault
	}
	c.state.Gesture = GesturePlace
	c.state.placeShape = shape
	c.state.PlacementDraft = nil
	return c.state
}

// ShapeDefault is the preview shape used when placement starts without an
// explicit one.
var ShapeDefault = domain.Shape{Kind: domain.ShapeSquare, Width: 80}

// CancelGesture aborts whatever gesture is active, discarding any staged
// working copy.
func (c *InteractionController) CancelGesture() InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelGestureLocked()
	return c.state
}

// ClearPlacementDraft drops the pre-filled creation form data once the
// client has consumed it.
func (c *InteractionController) ClearPlacementDraft() InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PlacementDraft = nil
	return c.state
}

// CloseMenu dismisses the context menu; called on outside clicks and after
// every menu action.
func (c *InteractionController) CloseMenu() InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Menu = nil
	return c.state
}

// WaitForCommits blocks until every pending gesture commit has resolved.
// Used on session teardown and in tests.
func (c *InteractionController) WaitForCommits() {
	c.commits.Wait()
}

func (c *InteractionController) cancelGestureLocked() {
	switch c.state.Gesture {
	case GestureDrag, GestureResize:
		c.model.DiscardWorking(c.state.dragTableID)
	}
	c.state.Gesture = GestureNone
	c.state.PlacementPreview = nil
	c.state.pendingSelect = 0
	c.state.moved = false
}

func (c *InteractionController) finishPlacementLocked(canvas domain.Point) {
	c.state.PlacementDraft = &PlacementDraft{
		Position: canvas,
		Shape:    c.state.placeShape,
		Number:   c.model.NextTableNumber(),
		Capacity: 4,
	}
	c.state.Gesture = GestureNone
	c.state.PlacementPreview = nil
}

func (c *InteractionController) toCanvas(screen domain.Point) domain.Point {
	return domain.ScreenToCanvas(screen, c.state.Viewport.Pan, c.state.Viewport.Scale)
}

func (c *InteractionController) markMoved(delta domain.Point) {
	if delta.X != 0 || delta.Y != 0 {
		c.state.moved = true
	}
}

// commitPosition persists the staged center through the repository. The
// visible table keeps the optimistic position until the commit resolves; on
// failure the working copy is discarded so the table snaps back to its last
// committed spot and a non-blocking notice goes out.
func (c *InteractionController) commitPosition(tableID int64, position domain.Point) {
	c.commits.Submit(tableID, func(seq uint64) {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		updated, err := c.tables.UpdateTablePosition(ctx, tableID, position)
		if c.commits.Stale(tableID, seq) {
			// A newer commit superseded this one; drop the result silently.
			return
		}
		if err != nil {
			slog.Warn("position commit failed", slog.Int64("tableId", tableID), slog.Any("error", err))
			c.model.DiscardWorking(tableID)
			c.notifyCommitFailure(ctx, tableID, "não foi possível mover a mesa")
			return
		}
		c.model.ApplyCommitted(updated)
		c.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionMoved, updated, c.now()))
	})
}

// commitShape persists a staged resize with the same rollback contract as
// commitPosition.
func (c *InteractionController) commitShape(tableID int64, position domain.Point, shape domain.Shape) {
	c.commits.Submit(tableID, func(seq uint64) {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		updated, err := c.tables.UpdateTableShape(ctx, tableID, position, shape)
		if c.commits.Stale(tableID, seq) {
			return
		}
		if err != nil {
			slog.Warn("shape commit failed", slog.Int64("tableId", tableID), slog.Any("error", err))
			c.model.DiscardWorking(tableID)
			c.notifyCommitFailure(ctx, tableID, "não foi possível redimensionar a mesa")
			return
		}
		c.model.ApplyCommitted(updated)
		c.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionResized, updated, c.now()))
	})
}

func (c *InteractionController) notifyCommitFailure(ctx context.Context, tableID int64, text string) {
	if c.broadcast == nil {
		return
	}
	meta := map[string]string{"tableId": strconv.FormatInt(tableID, 10)}
	c.broadcast.Execute(ctx, domain.BuildNoticeMessage("commit-failed", text, meta, c.now()))
}

// handleAt picks the resize handle under the canvas point, if any. Handles
// sit at the midpoint of each edge of the table's bounds.
func handleAt(table domain.Table, p domain.Point) (domain.ResizeDirection, bool) {
	bounds := table.Bounds()
	center := bounds.Center()
	handles := map[domain.ResizeDirection]domain.Point{
		domain.ResizeNorth: {X: center.X, Y: bounds.Y},
		domain.ResizeSouth: {X: center.X, Y: bounds.Y + bounds.Height},
		domain.ResizeWest:  {X: bounds.X, Y: center.Y},
		domain.ResizeEast:  {X: bounds.X + bounds.Width, Y: center.Y},
	}
	for dir, at := range handles {
		if math.Hypot(p.X-at.X, p.Y-at.Y) <= handleHitRadius {
			return dir, true
		}
	}
	return "", false
}

// requestedDimensions derives the width/height the pointer is asking for
// from the gesture's base geometry, measuring from the stationary opposite
// edge.
func requestedDimensions(base domain.Table, dir domain.ResizeDirection, pointer domain.Point) (float64, float64) {
	bounds := base.Bounds()
	switch dir {
	case domain.ResizeEast:
		return pointer.X - bounds.X, base.Shape.EffectiveHeight()
	case domain.ResizeWest:
		return bounds.X + bounds.Width - pointer.X, base.Shape.EffectiveHeight()
	case domain.ResizeSouth:
		return base.Shape.Width, pointer.Y - bounds.Y
	case domain.ResizeNorth:
		return base.Shape.Width, bounds.Y + bounds.Height - pointer.Y
	}
	return base.Shape.Width, base.Shape.EffectiveHeight()
}
