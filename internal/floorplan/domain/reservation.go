package domain

import (
	"fmt"
	"strings"
)

// ReservationStatus tracks the lifecycle of a booking.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Valid reports whether the status is a known reservation state.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationConfirmed, ReservationPending, ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

// MinReservationMinutes is the shortest bookable slot.
const MinReservationMinutes = 30

// Reservation is a booking attached to a table. Creating one marks the
// table RESERVED; cancelling reverts the table to FREE only while it is
// still RESERVED so an occupied table is never clobbered.
type Reservation struct {
	ID              string            `json:"id"`
	TableID         int64             `json:"tableId"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	CustomerEmail   string            `json:"customerEmail,omitempty"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	DurationMinutes int               `json:"durationMinutes"`
	PartySize       int               `json:"partySize"`
	Status          ReservationStatus `json:"status"`
}

// Validate checks the form-level invariants of a reservation.
func (r Reservation) Validate() error {
	if r.TableID <= 0 {
		return fmt.Errorf("%w: reservation requires a table", ErrValidation)
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if strings.TrimSpace(r.CustomerPhone) == "" {
		return fmt.Errorf("%w: customer phone is required", ErrValidation)
	}
	if strings.TrimSpace(r.Date) == "" || strings.TrimSpace(r.Time) == "" {
		return fmt.Errorf("%w: reservation date and time are required", ErrValidation)
	}
	if r.DurationMinutes < MinReservationMinutes {
		return fmt.Errorf("%w: duration must be at least %d minutes", ErrValidation, MinReservationMinutes)
	}
	if r.PartySize < 1 {
		return fmt.Errorf("%w: party size must be at least 1", ErrValidation)
	}
	return nil
}
