package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/domain"
)

// ReservationService drives the booking lifecycle and its coupling to table
// status: creating a reservation marks the table RESERVED; cancelling
// reverts the table to FREE only while it is still RESERVED, so a table
// that became OCCUPIED in the meantime is never clobbered.
type ReservationService struct {
	model        *LayoutModel
	tables       port.TableRepository
	reservations port.ReservationRepository
	broadcast    *BroadcastUseCase
	now          func() time.Time
}

func NewReservationService(model *LayoutModel, tables port.TableRepository, reservations port.ReservationRepository, broadcast *BroadcastUseCase) *ReservationService {
	return &ReservationService{
		model:        model,
		tables:       tables,
		reservations: reservations,
		broadcast:    broadcast,
		now:          time.Now,
	}
}

// Create validates and stores a reservation, then marks the owning table
// RESERVED with the reservation attached.
func (s *ReservationService) Create(ctx context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	if err := reservation.Validate(); err != nil {
		return domain.Reservation{}, err
	}
	table, err := s.tables.GetTable(ctx, reservation.TableID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("reservation table: %w", err)
	}

	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	if reservation.Status == "" {
		reservation.Status = domain.ReservationConfirmed
	}

	created, err := s.reservations.CreateReservation(ctx, reservation)
	if err != nil {
		return domain.Reservation{}, err
	}

	table.Status = domain.StatusReserved
	table.CurrentReservationID = created.ID
	updated, err := s.tables.UpdateTable(ctx, table.ID, table)
	if err != nil {
		// The reservation must not outlive a failed table update, so it is
		// cancelled before the error surfaces.
		slog.Warn("reservation created but table update failed, cancelling", slog.String("reservationId", created.ID), slog.Int64("tableId", table.ID), slog.Any("error", err))
		if cancelErr := s.reservations.CancelReservation(ctx, created.ID); cancelErr != nil {
			slog.Error("reservation compensation failed", slog.String("reservationId", created.ID), slog.Any("error", cancelErr))
		}
		return domain.Reservation{}, fmt.Errorf("reserve table %d: %w", table.ID, err)
	}

	s.model.ApplyCommitted(updated)
	s.broadcast.Execute(ctx, domain.BuildReservationMessage(domain.ActionCreated, created, s.now()))
	s.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionStatus, updated, s.now()))
	slog.Info("reservation created", slog.String("reservationId", created.ID), slog.Int64("tableId", table.ID), slog.Int("partySize", created.PartySize))
	return created, nil
}

// Cancel marks the reservation cancelled. The owning table reverts to FREE
// only if it is still RESERVED.
func (s *ReservationService) Cancel(ctx context.Context, id string) error {
	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reservations.CancelReservation(ctx, id); err != nil {
		return err
	}
	reservation.Status = domain.ReservationCancelled
	s.broadcast.Execute(ctx, domain.BuildReservationMessage("cancelled", reservation, s.now()))

	table, err := s.tables.GetTable(ctx, reservation.TableID)
	if err != nil {
		slog.Warn("cancelled reservation references missing table", slog.String("reservationId", id), slog.Int64("tableId", reservation.TableID), slog.Any("error", err))
		return nil
	}
	if table.Status != domain.StatusReserved {
		slog.Info("reservation cancelled, table status untouched", slog.String("reservationId", id), slog.Int64("tableId", table.ID), slog.String("status", string(table.Status)))
		return nil
	}

	table.Status = domain.StatusFree
	table.CurrentReservationID = ""
	updated, err := s.tables.UpdateTable(ctx, table.ID, table)
	if err != nil {
		return err
	}
	s.model.ApplyCommitted(updated)
	s.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionStatus, updated, s.now()))
	slog.Info("reservation cancelled, table freed", slog.String("reservationId", id), slog.Int64("tableId", table.ID))
	return nil
}
