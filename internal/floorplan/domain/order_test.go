package domain

import (
	"errors"
	"math"
	"testing"
)

func TestOrderTotalRecomputed(t *testing.T) {
	t.Parallel()

	order := Order{
		ID:      "ord-1",
		TableID: 2,
		Status:  OrderOpen,
		Items: []OrderItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: 12.50},
			{ProductID: "p2", Quantity: 1, UnitPrice: 8.00},
			{ProductID: "p3", Quantity: 3, UnitPrice: 4.25},
		},
	}

	if got := order.Total(); math.Abs(got-45.75) > 1e-9 {
		t.Fatalf("expected 45.75, got %v", got)
	}

	order.Items = order.Items[:1]
	if got := order.Total(); math.Abs(got-25.0) > 1e-9 {
		t.Fatalf("total not recomputed from items: %v", got)
	}
}

func TestOrderValidate(t *testing.T) {
	t.Parallel()

	order := Order{TableID: 1, Items: []OrderItem{{Quantity: 0, UnitPrice: 5}}}
	if err := order.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero quantity, got %v", err)
	}

	order = Order{TableID: 1, Items: []OrderItem{{Quantity: 1, UnitPrice: -1}}}
	if err := order.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative price, got %v", err)
	}
}

func TestReservationValidate(t *testing.T) {
	t.Parallel()

	valid := Reservation{
		TableID:         3,
		CustomerName:    "Ana",
		CustomerPhone:   "+55 11 99999-0000",
		Date:            "2026-09-12",
		Time:            "20:00",
		DurationMinutes: 90,
		PartySize:       2,
		Status:          ReservationConfirmed,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Reservation)
	}{
		{name: "short duration", mutate: func(r *Reservation) { r.DurationMinutes = 15 }},
		{name: "empty party", mutate: func(r *Reservation) { r.PartySize = 0 }},
		{name: "missing name", mutate: func(r *Reservation) { r.CustomerName = "  " }},
		{name: "missing phone", mutate: func(r *Reservation) { r.CustomerPhone = "" }},
		{name: "missing table", mutate: func(r *Reservation) { r.TableID = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			if err := r.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
