package usecase

import (
	"context"
	"sync"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/domain"
)

// TableDetail is the detail-panel view of a selected table. Order and
// reservations are fetched independently; a failure on one side leaves the
// other populated and records an inline error instead of blocking the view.
type TableDetail struct {
	Table            domain.Table            `json:"table"`
	Status           domain.StatusDescriptor `json:"statusDisplay"`
	Order            *domain.Order           `json:"order,omitempty"`
	OrderTotal       float64                 `json:"orderTotal"`
	Reservations     []domain.Reservation    `json:"reservations"`
	OrderError       string                  `json:"orderError,omitempty"`
	ReservationError string                  `json:"reservationError,omitempty"`
	StatusPending    bool                    `json:"statusPending"`
}

// DetailPanel loads everything the selected-table panel renders.
type DetailPanel struct {
	model        *LayoutModel
	orders       port.OrderRepository
	reservations port.ReservationRepository
	status       *StatusChanger
}

func NewDetailPanel(model *LayoutModel, orders port.OrderRepository, reservations port.ReservationRepository, status *StatusChanger) *DetailPanel {
	return &DetailPanel{
		model:        model,
		orders:       orders,
		reservations: reservations,
		status:       status,
	}
}

// Load fetches the current order and the reservation list concurrently and
// waits for both. Only an unknown table fails the whole call.
func (p *DetailPanel) Load(ctx context.Context, tableID int64) (TableDetail, error) {
	table, err := p.model.FindTable(tableID)
	if err != nil {
		return TableDetail{}, err
	}

	detail := TableDetail{
		Table:        table,
		Status:       table.Status.Descriptor(),
		Reservations: []domain.Reservation{},
	}
	if p.status != nil {
		detail.StatusPending = p.status.Pending(tableID)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		order, err := p.orders.CurrentOrderByTable(ctx, tableID)
		if err != nil {
			detail.OrderError = err.Error()
			return
		}
		if order != nil {
			detail.Order = order
			detail.OrderTotal = order.Total()
		}
	}()

	go func() {
		defer wg.Done()
		reservations, err := p.reservations.ReservationsByTable(ctx, tableID)
		if err != nil {
			detail.ReservationError = err.Error()
			return
		}
		detail.Reservations = reservations
	}()

	wg.Wait()
	return detail, nil
}
