package port

import (
	"context"

	"mesaplan/internal/floorplan/domain"
)

// TableRepository is the authoritative store for tables. Implementations
// return domain.ErrNotFound for unknown ids and wrap infrastructure
// failures in domain.ErrTransport so callers can roll back optimistic
// changes without inspecting driver errors.
type TableRepository interface {
	ListTables(ctx context.Context) ([]domain.Table, error)
	GetTable(ctx context.Context, id int64) (domain.Table, error)
	CreateTable(ctx context.Context, table domain.Table) (domain.Table, error)
	UpdateTable(ctx context.Context, id int64, table domain.Table) (domain.Table, error)
	DeleteTable(ctx context.Context, id int64) error
	SetTableStatus(ctx context.Context, id int64, status domain.TableStatus) (domain.Table, error)
	UpdateTablePosition(ctx context.Context, id int64, position domain.Point) (domain.Table, error)
	UpdateTableShape(ctx context.Context, id int64, position domain.Point, shape domain.Shape) (domain.Table, error)
}

// AreaRepository stores the named floor zones. DeleteArea fails with
// domain.ErrAreaNotEmpty while any table still references the area by name.
type AreaRepository interface {
	ListAreas(ctx context.Context) ([]domain.Area, error)
	GetArea(ctx context.Context, id int64) (domain.Area, error)
	CreateArea(ctx context.Context, area domain.Area) (domain.Area, error)
	UpdateArea(ctx context.Context, id int64, area domain.Area) (domain.Area, error)
	DeleteArea(ctx context.Context, id int64) error
}

// LayoutRepository persists the shared floor-plan settings.
type LayoutRepository interface {
	GetLayout(ctx context.Context) (domain.Layout, error)
	UpdateLayout(ctx context.Context, layout domain.Layout) (domain.Layout, error)
}

// ReservationRepository stores bookings.
type ReservationRepository interface {
	ListReservations(ctx context.Context) ([]domain.Reservation, error)
	ReservationsByTable(ctx context.Context, tableID int64) ([]domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	CreateReservation(ctx context.Context, reservation domain.Reservation) (domain.Reservation, error)
	UpdateReservation(ctx context.Context, id string, reservation domain.Reservation) (domain.Reservation, error)
	CancelReservation(ctx context.Context, id string) error
}

// OrderRepository exposes the orders opened against tables.
// CurrentOrderByTable returns (nil, nil) when the table has no open order.
type OrderRepository interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	CurrentOrderByTable(ctx context.Context, tableID int64) (*domain.Order, error)
}

// Repository aggregates every collection the floor plan consumes.
type Repository interface {
	TableRepository
	AreaRepository
	LayoutRepository
	ReservationRepository
	OrderRepository
}
