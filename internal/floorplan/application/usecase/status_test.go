package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mesaplan/internal/floorplan/domain"
)

func newStatusChanger(t *testing.T, tables ...domain.Table) (*StatusChanger, *stubRepo, *recordingBroadcaster) {
	t.Helper()
	model, repo := loadedModel(t, tables...)
	recorder := &recordingBroadcaster{}
	return NewStatusChanger(model, repo, NewBroadcastUseCase(recorder)), repo, recorder
}

func TestChangeStatusPersistsThenReflects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, repo, recorder := newStatusChanger(t, seedTable(1, 1, ""))

	require.NoError(t, uc.Execute(ctx, 1, domain.StatusOccupied))

	committed, err := repo.GetTable(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOccupied, committed.Status)
	require.Contains(t, recorder.topics(), "tables.status")
}

func TestChangeStatusIdempotentNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, repo, recorder := newStatusChanger(t, seedTable(1, 1, ""))

	require.NoError(t, uc.Execute(ctx, 1, domain.StatusFree), "same-status change is a no-op, not an error")
	require.Empty(t, repo.callsTo("SetTableStatus"), "no repository call on a no-op")
	require.Empty(t, recorder.topics(), "no broadcast on a no-op")
}

func TestChangeStatusUnknownTable(t *testing.T) {
	t.Parallel()

	uc, _, _ := newStatusChanger(t, seedTable(1, 1, ""))
	err := uc.Execute(context.Background(), 42, domain.StatusCleaning)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeStatusInvalidStatus(t *testing.T) {
	t.Parallel()

	uc, _, _ := newStatusChanger(t, seedTable(1, 1, ""))
	err := uc.Execute(context.Background(), 1, "PARTY")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestChangeStatusFailureLeavesModelUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, repo, _ := newStatusChanger(t, seedTable(1, 1, ""))
	repo.failWith("SetTableStatus", domain.ErrTransport)

	err := uc.Execute(ctx, 1, domain.StatusCleaning)
	require.ErrorIs(t, err, domain.ErrTransport)
	require.False(t, uc.Pending(1), "pending flag released after a failed commit")
}

func TestAnyStatusReachableFromAnyOther(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, repo, _ := newStatusChanger(t, seedTable(1, 1, ""))

	// Fully connected graph: walk an arbitrary path through all six states.
	path := []domain.TableStatus{
		domain.StatusCleaning,
		domain.StatusOccupied,
		domain.StatusReserved,
		domain.StatusWaitingPayment,
		domain.StatusWaitingService,
		domain.StatusFree,
	}
	for _, next := range path {
		require.NoError(t, uc.Execute(ctx, 1, next))
	}
	committed, err := repo.GetTable(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFree, committed.Status)
}
