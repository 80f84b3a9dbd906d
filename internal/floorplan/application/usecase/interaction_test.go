package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mesaplan/internal/floorplan/domain"
)

func newController(t *testing.T, tables ...domain.Table) (*InteractionController, *stubRepo, *recordingBroadcaster) {
	t.Helper()
	model, repo := loadedModel(t, tables...)
	recorder := &recordingBroadcaster{}
	controller := NewInteractionController(model, repo, NewBroadcastUseCase(recorder))
	return controller, repo, recorder
}

func TestDragCommitsExactlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(2, 2, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, repo, recorder := newController(t, table)

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 280, Y: 140}})
	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 350, Y: 180}})
	state := controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 350, Y: 180}})
	controller.WaitForCommits()

	require.Equal(t, GestureNone, state.Gesture)
	require.Equal(t, int64(2), state.SelectedTableID, "dragged table stays selected")

	calls := repo.callsTo("UpdateTablePosition")
	require.Len(t, calls, 1, "exactly one position commit per drag")
	require.Equal(t, "UpdateTablePosition(2,{350 180})", calls[0])

	committed, err := repo.GetTable(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, domain.Point{X: 350, Y: 180}, committed.Position)
	require.Contains(t, recorder.topics(), "tables.moved")
}

func TestDragRollsBackOnCommitFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(2, 2, "")
	controller, repo, recorder := newController(t, table)
	repo.failWith("UpdateTablePosition", domain.ErrTransport)

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 350, Y: 180}})
	controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 350, Y: 180}})
	controller.WaitForCommits()

	// The optimistic move is discarded: the model shows the last committed
	// position again and a non-blocking notice went out.
	model := controllerModel(controller)
	reverted, err := model.FindTable(2)
	require.NoError(t, err)
	require.Equal(t, domain.Point{X: 200, Y: 100}, reverted.Position)
	require.Contains(t, recorder.topics(), "notices.commit-failed")

	// The canvas stays responsive: a new gesture starts cleanly.
	state := controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	require.Equal(t, GestureDrag, state.Gesture)
}

func controllerModel(c *InteractionController) *LayoutModel {
	return c.model
}

func TestDragPreservesGrabPoint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(1, 1, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, _, _ := newController(t, table)

	// Grab the table 20 units right of its center.
	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 220, Y: 100}, Button: ButtonPrimary})
	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 320, Y: 150}})

	staged, ok := controllerModel(controller).Working(1)
	require.True(t, ok)
	require.Equal(t, domain.Point{X: 300, Y: 150}, staged.Position, "grab offset preserved, no jump to cursor")
}

func TestPanTracksPointerAndEndsOnLeave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	controller, _, _ := newController(t, seedTable(1, 1, ""))

	state := controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 500, Y: 400}, Button: ButtonPrimary})
	require.Equal(t, GesturePan, state.Gesture)

	state = controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 530, Y: 380}})
	require.Equal(t, domain.Point{X: 30, Y: -20}, state.Viewport.Pan, "pan follows pointer 1:1 in screen space")

	state = controller.PointerLeave(ctx)
	require.Equal(t, GestureNone, state.Gesture, "leaving the canvas must not leave the controller mid-pan")
	require.Equal(t, domain.Point{X: 30, Y: -20}, state.Viewport.Pan)
}

func TestPanIsScreenSpaceRegardlessOfZoom(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	controller, _, _ := newController(t, seedTable(1, 1, ""))
	controller.SetZoomPercent(200)

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 700, Y: 500}, Button: ButtonPrimary})
	state := controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 710, Y: 510}})
	require.Equal(t, domain.Point{X: 10, Y: 10}, state.Viewport.Pan)
}

func TestClickSelectsAndEmptyClickClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(1, 1, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, _, _ := newController(t, table)

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	state := controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}})
	require.Equal(t, int64(1), state.SelectedTableID)

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 600, Y: 500}, Button: ButtonPrimary})
	state = controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 600, Y: 500}})
	require.Zero(t, state.SelectedTableID, "empty canvas click clears selection")
}

func TestContextMenuOpensAndDismisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(1, 1, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, _, _ := newController(t, table)

	state := controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonSecondary})
	require.NotNil(t, state.Menu)
	require.Equal(t, int64(1), state.Menu.TableID)
	require.Equal(t, domain.Point{X: 200, Y: 100}, state.Menu.At)

	// Any outside press dismisses the menu.
	state = controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 600, Y: 500}, Button: ButtonPrimary})
	require.Nil(t, state.Menu)
}

func TestLockedLayoutDisablesDragButNotSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(1, 1, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, _, _ := newController(t, table)
	layout := controllerModel(controller).Layout()
	layout.Locked = true
	controllerModel(controller).SetLayout(layout)

	state := controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	require.Equal(t, GestureNone, state.Gesture, "locked layout refuses drags")

	state = controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}})
	require.Equal(t, int64(1), state.SelectedTableID, "selection still works when locked")
}

func TestResizeCommitsShape(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(1, 1, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, repo, _ := newController(t, table)

	// Select the table first; handles only show on the selected table.
	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}})

	// East handle sits at (240, 100) for an 80-wide square centered at 200.
	state := controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 240, Y: 100}, Button: ButtonPrimary})
	require.Equal(t, GestureResize, state.Gesture)

	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 360, Y: 100}})
	controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 360, Y: 100}})
	controller.WaitForCommits()

	require.Len(t, repo.callsTo("UpdateTableShape"), 1)
	committed, err := repo.GetTable(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 200.0, committed.Shape.Width, "width measured from the stationary west edge")
	require.Equal(t, 160.0, committed.Position.X-committed.Shape.Width/2, "west edge never moved")
}

func TestResizeNeverShrinksBelowFloor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(1, 1, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, repo, _ := newController(t, table)

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}})

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 240, Y: 100}, Button: ButtonPrimary})
	// Pointer crosses far past the opposite edge; the floor wins.
	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 100, Y: 100}})
	controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 100, Y: 100}})
	controller.WaitForCommits()

	committed, err := repo.GetTable(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.MinTableDimension, committed.Shape.Width)
}

func TestPlacementFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	controller, _, _ := newController(t,
		seedTable(1, 1, ""),
		seedTable(2, 2, ""),
		seedTable(3, 3, ""),
		seedTable(5, 5, ""),
	)

	state := controller.BeginPlacement(domain.Shape{Kind: domain.ShapeCircle, Width: 70})
	require.Equal(t, GesturePlace, state.Gesture)

	state = controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 420, Y: 330}})
	require.NotNil(t, state.PlacementPreview, "preview follows the pointer")

	state = controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 420, Y: 330}, Button: ButtonPrimary})
	require.Equal(t, GestureNone, state.Gesture)
	require.NotNil(t, state.PlacementDraft)
	require.Equal(t, domain.Point{X: 420, Y: 330}, state.PlacementDraft.Position)
	require.Equal(t, domain.ShapeCircle, state.PlacementDraft.Shape.Kind)
	require.Equal(t, 6, state.PlacementDraft.Number, "draft number is max+1")
}

func TestStartingGestureCancelsActiveOne(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	table := seedTable(1, 1, "")
	table.Position = domain.Point{X: 200, Y: 100}
	controller, repo, _ := newController(t, table)

	state := controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 200, Y: 100}, Button: ButtonPrimary})
	require.Equal(t, GestureDrag, state.Gesture)
	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 300, Y: 200}})

	// Toggling placement mid-drag cancels the drag without a commit.
	state = controller.BeginPlacement(domain.Shape{})
	require.Equal(t, GesturePlace, state.Gesture)
	controller.WaitForCommits()

	_, staged := controllerModel(controller).Working(1)
	require.False(t, staged, "cancelled drag discards the working copy")
	require.Empty(t, repo.callsTo("UpdateTablePosition"))
}

func TestZoomClamping(t *testing.T) {
	t.Parallel()

	controller, _, _ := newController(t, seedTable(1, 1, ""))

	for range 40 {
		controller.ZoomIn()
	}
	require.Equal(t, domain.MaxScale, controller.State().Viewport.Scale)

	for range 40 {
		controller.Wheel(-1)
	}
	require.Equal(t, domain.MinScale, controller.State().Viewport.Scale)

	state := controller.SetZoomPercent(130)
	require.InDelta(t, 1.3, state.Viewport.Scale, 1e-9)
}

func TestZoomDoesNotRecenter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	controller, _, _ := newController(t, seedTable(1, 1, ""))

	controller.PointerDown(ctx, PointerEvent{Position: domain.Point{X: 500, Y: 400}, Button: ButtonPrimary})
	controller.PointerMove(ctx, PointerEvent{Position: domain.Point{X: 540, Y: 420}})
	controller.PointerUp(ctx, PointerEvent{Position: domain.Point{X: 540, Y: 420}})

	before := controller.State().Viewport.Pan
	state := controller.ZoomIn()
	require.Equal(t, before, state.Viewport.Pan)
}
