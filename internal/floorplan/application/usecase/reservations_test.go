package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mesaplan/internal/floorplan/domain"
)

func newReservationService(t *testing.T, tables ...domain.Table) (*ReservationService, *stubRepo) {
	t.Helper()
	model, repo := loadedModel(t, tables...)
	return NewReservationService(model, repo, repo, NewBroadcastUseCase(&recordingBroadcaster{})), repo
}

func validReservation(tableID int64) domain.Reservation {
	return domain.Reservation{
		TableID:         tableID,
		CustomerName:    "Ana Souza",
		CustomerPhone:   "+55 11 98888-7777",
		Date:            "2026-09-12",
		Time:            "20:00",
		DurationMinutes: 90,
		PartySize:       2,
	}
}

func TestCreateReservationMarksTableReserved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newReservationService(t, seedTable(3, 3, ""))

	created, err := svc.Create(ctx, validReservation(3))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, domain.ReservationConfirmed, created.Status)

	table, err := repo.GetTable(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, domain.StatusReserved, table.Status)
	require.Equal(t, created.ID, table.CurrentReservationID)
}

func TestCreateReservationValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newReservationService(t, seedTable(1, 1, ""))

	short := validReservation(1)
	short.DurationMinutes = 20
	_, err := svc.Create(context.Background(), short)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateReservationUnknownTable(t *testing.T) {
	t.Parallel()

	svc, _ := newReservationService(t, seedTable(1, 1, ""))
	_, err := svc.Create(context.Background(), validReservation(99))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCompensatesWhenTableUpdateFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newReservationService(t, seedTable(4, 4, ""))
	repo.failWith("UpdateTable", domain.ErrTransport)

	created, err := svc.Create(ctx, validReservation(4))
	require.ErrorIs(t, err, domain.ErrTransport)
	require.Empty(t, created.ID, "no reservation is handed out on failure")

	require.Len(t, repo.callsTo("CancelReservation"), 1, "the stored reservation is cancelled")

	table, err := repo.GetTable(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFree, table.Status, "table status untouched")
}

func TestCancelRevertsTableOnlyWhileReserved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newReservationService(t, seedTable(1, 1, ""))
	created, err := svc.Create(ctx, validReservation(1))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, created.ID))

	table, err := repo.GetTable(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFree, table.Status, "still-reserved table reverts to FREE")
	require.Empty(t, table.CurrentReservationID)
}

func TestCancelDoesNotClobberOccupiedTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newReservationService(t, seedTable(1, 1, ""))
	created, err := svc.Create(ctx, validReservation(1))
	require.NoError(t, err)

	// The party arrived: the table moved on from RESERVED before the
	// cancellation came in.
	_, err = repo.SetTableStatus(ctx, 1, domain.StatusOccupied)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, created.ID))

	table, err := repo.GetTable(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOccupied, table.Status, "occupied table must not revert to FREE")

	cancelled, err := repo.GetReservation(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationCancelled, cancelled.Status)
}

func TestCancelUnknownReservation(t *testing.T) {
	t.Parallel()

	svc, _ := newReservationService(t, seedTable(1, 1, ""))
	err := svc.Cancel(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
