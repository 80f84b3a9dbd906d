package infrastructure

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"mesaplan/internal/floorplan/domain"
)

// MemoryRepository is the in-memory implementation of the repository
// contract, used for local runs and tests. Collections are id-keyed maps
// behind a single RWMutex, so interleaved writes to distinct entities never
// corrupt each other.
type MemoryRepository struct {
	mu           sync.RWMutex
	tables       map[int64]domain.Table
	areas        map[int64]domain.Area
	reservations map[string]domain.Reservation
	orders       map[string]domain.Order
	layout       domain.Layout
	nextTableID  int64
	nextAreaID   int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tables:       make(map[int64]domain.Table),
		areas:        make(map[int64]domain.Area),
		reservations: make(map[string]domain.Reservation),
		orders:       make(map[string]domain.Order),
		layout:       domain.DefaultLayout(),
	}
}

// SeedDemoFloor loads a small floor plan so a fresh memory-backed server
// has something to render.
func (r *MemoryRepository) SeedDemoFloor() {
	ctx := context.Background()
	varanda, _ := r.CreateArea(ctx, domain.Area{Name: "Varanda", Bounds: domain.Rect{X: 20, Y: 20, Width: 360, Height: 260}, Color: "#e8f5e9"})
	salao, _ := r.CreateArea(ctx, domain.Area{Name: "Salão Principal", Bounds: domain.Rect{X: 400, Y: 20, Width: 380, Height: 560}, Color: "#e3f2fd"})

	seed := []domain.Table{
		{Name: "Mesa 1", Capacity: 2, Position: domain.Point{X: 100, Y: 100}, Shape: domain.Shape{Kind: domain.ShapeCircle, Width: 60}, Area: varanda.Name},
		{Name: "Mesa 2", Capacity: 4, Position: domain.Point{X: 260, Y: 100}, Shape: domain.Shape{Kind: domain.ShapeSquare, Width: 80}, Area: varanda.Name},
		{Name: "Mesa 3", Capacity: 6, Position: domain.Point{X: 500, Y: 140}, Shape: domain.Shape{Kind: domain.ShapeRectangle, Width: 140, Height: 80}, Area: salao.Name},
		{Name: "Mesa 4", Capacity: 4, Position: domain.Point{X: 680, Y: 140}, Shape: domain.Shape{Kind: domain.ShapeSquare, Width: 80}, Area: salao.Name},
		{Name: "Mesa 5", Capacity: 8, Position: domain.Point{X: 580, Y: 360}, Shape: domain.Shape{Kind: domain.ShapeRectangle, Width: 180, Height: 90}, Area: salao.Name},
	}
	for _, t := range seed {
		t.Status = domain.StatusFree
		t.Active = true
		_, _ = r.CreateTable(ctx, t)
	}
}

func (r *MemoryRepository) ListTables(context.Context) ([]domain.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tables := make([]domain.Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, nil
}

func (r *MemoryRepository) GetTable(_ context.Context, id int64) (domain.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func (r *MemoryRepository) CreateTable(_ context.Context, table domain.Table) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if table.Number == 0 {
		table.Number = r.nextNumberLocked()
	}
	if table.Status == "" {
		table.Status = domain.StatusFree
	}
	if err := table.Validate(); err != nil {
		return domain.Table{}, err
	}
	r.nextTableID++
	table.ID = r.nextTableID
	r.tables[table.ID] = table
	return table, nil
}

func (r *MemoryRepository) UpdateTable(_ context.Context, id int64, table domain.Table) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[id]; !ok {
		return domain.Table{}, fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	table.ID = id
	if err := table.Validate(); err != nil {
		return domain.Table{}, err
	}
	r.tables[id] = table
	return table, nil
}

func (r *MemoryRepository) DeleteTable(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[id]; !ok {
		return fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	delete(r.tables, id)
	return nil
}

func (r *MemoryRepository) SetTableStatus(_ context.Context, id int64, status domain.TableStatus) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	if !status.Valid() {
		return domain.Table{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	t.Status = status
	r.tables[id] = t
	return t, nil
}

func (r *MemoryRepository) UpdateTablePosition(_ context.Context, id int64, position domain.Point) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	if !position.Finite() {
		return domain.Table{}, fmt.Errorf("%w: position must be finite", domain.ErrValidation)
	}
	t.Position = position
	r.tables[id] = t
	return t, nil
}

func (r *MemoryRepository) UpdateTableShape(_ context.Context, id int64, position domain.Point, shape domain.Shape) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	t.Position = position
	t.Shape = shape
	if err := t.Validate(); err != nil {
		return domain.Table{}, err
	}
	r.tables[id] = t
	return t, nil
}

func (r *MemoryRepository) nextNumberLocked() int {
	max := 0
	for _, t := range r.tables {
		if t.Number > max {
			max = t.Number
		}
	}
	return max + 1
}

func (r *MemoryRepository) ListAreas(context.Context) ([]domain.Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	areas := make([]domain.Area, 0, len(r.areas))
	for _, a := range r.areas {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].ID < areas[j].ID })
	return areas, nil
}

func (r *MemoryRepository) GetArea(_ context.Context, id int64) (domain.Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.areas[id]
	if !ok {
		return domain.Area{}, fmt.Errorf("area %d: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (r *MemoryRepository) CreateArea(_ context.Context, area domain.Area) (domain.Area, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := area.Validate(); err != nil {
		return domain.Area{}, err
	}
	r.nextAreaID++
	area.ID = r.nextAreaID
	r.areas[area.ID] = area
	return area, nil
}

// UpdateArea renames cascade to member tables so a rename can never orphan
// them silently.
func (r *MemoryRepository) UpdateArea(_ context.Context, id int64, area domain.Area) (domain.Area, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.areas[id]
	if !ok {
		return domain.Area{}, fmt.Errorf("area %d: %w", id, domain.ErrNotFound)
	}
	area.ID = id
	if err := area.Validate(); err != nil {
		return domain.Area{}, err
	}
	if existing.Name != area.Name {
		for tid, t := range r.tables {
			if t.Area == existing.Name {
				t.Area = area.Name
				r.tables[tid] = t
			}
		}
	}
	r.areas[id] = area
	return area, nil
}

func (r *MemoryRepository) DeleteArea(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	area, ok := r.areas[id]
	if !ok {
		return fmt.Errorf("area %d: %w", id, domain.ErrNotFound)
	}
	for _, t := range r.tables {
		if t.Area == area.Name {
			return fmt.Errorf("area %q: %w", area.Name, domain.ErrAreaNotEmpty)
		}
	}
	delete(r.areas, id)
	return nil
}

func (r *MemoryRepository) GetLayout(context.Context) (domain.Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layout, nil
}

func (r *MemoryRepository) UpdateLayout(_ context.Context, layout domain.Layout) (domain.Layout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if layout.CanvasWidth <= 0 || layout.CanvasHeight <= 0 {
		return domain.Layout{}, fmt.Errorf("%w: canvas dimensions must be positive", domain.ErrValidation)
	}
	r.layout = layout
	return layout, nil
}

func (r *MemoryRepository) ListReservations(context.Context) ([]domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Reservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) ReservationsByTable(_ context.Context, tableID int64) ([]domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Reservation, 0)
	for _, res := range r.reservations {
		if res.TableID == tableID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	return res, nil
}

func (r *MemoryRepository) CreateReservation(_ context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := reservation.Validate(); err != nil {
		return domain.Reservation{}, err
	}
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	if reservation.Status == "" {
		reservation.Status = domain.ReservationConfirmed
	}
	r.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (r *MemoryRepository) UpdateReservation(_ context.Context, id string, reservation domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[id]; !ok {
		return domain.Reservation{}, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	reservation.ID = id
	if err := reservation.Validate(); err != nil {
		return domain.Reservation{}, err
	}
	r.reservations[id] = reservation
	return reservation, nil
}

func (r *MemoryRepository) CancelReservation(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	res.Status = domain.ReservationCancelled
	r.reservations[id] = res
	return nil
}

func (r *MemoryRepository) ListOrders(context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) CurrentOrderByTable(_ context.Context, tableID int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.TableID == tableID && o.Status != domain.OrderPaid && o.Status != domain.OrderCancelled {
			order := o
			return &order, nil
		}
	}
	return nil, nil
}

// PutOrder upserts an order; used by the POS event handlers and tests.
func (r *MemoryRepository) PutOrder(order domain.Order) domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	r.orders[order.ID] = order
	return order
}
