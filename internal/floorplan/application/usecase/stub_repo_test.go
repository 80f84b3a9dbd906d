package usecase

import (
	"context"
	"fmt"
	"sync"

	"mesaplan/internal/floorplan/domain"
)

// stubRepo implements port.Repository in memory and records mutating calls
// so tests can assert on commit behavior. Failures are injected per method
// name.
type stubRepo struct {
	mu           sync.Mutex
	tables       map[int64]domain.Table
	areas        map[int64]domain.Area
	reservations map[string]domain.Reservation
	orders       map[int64]domain.Order
	layout       domain.Layout
	calls        []string
	failures     map[string]error
}

func newStubRepo(tables ...domain.Table) *stubRepo {
	r := &stubRepo{
		tables:       make(map[int64]domain.Table),
		areas:        make(map[int64]domain.Area),
		reservations: make(map[string]domain.Reservation),
		orders:       make(map[int64]domain.Order),
		layout:       domain.DefaultLayout(),
		failures:     make(map[string]error),
	}
	for _, t := range tables {
		r.tables[t.ID] = t
	}
	return r
}

func (r *stubRepo) failWith(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = err
}

func (r *stubRepo) callsTo(method string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]string, 0)
	for _, c := range r.calls {
		if len(c) >= len(method) && c[:len(method)] == method {
			matched = append(matched, c)
		}
	}
	return matched
}

func (r *stubRepo) record(call string) error {
	r.calls = append(r.calls, call)
	for method, err := range r.failures {
		if len(call) >= len(method) && call[:len(method)] == method {
			return err
		}
	}
	return nil
}

func (r *stubRepo) ListTables(context.Context) ([]domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tables := make([]domain.Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	return tables, nil
}

func (r *stubRepo) GetTable(_ context.Context, id int64) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("GetTable(%d)", id)); err != nil {
		return domain.Table{}, err
	}
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, domain.ErrNotFound
	}
	return t, nil
}

func (r *stubRepo) CreateTable(_ context.Context, table domain.Table) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("CreateTable(%d)", table.Number)); err != nil {
		return domain.Table{}, err
	}
	r.tables[table.ID] = table
	return table, nil
}

func (r *stubRepo) UpdateTable(_ context.Context, id int64, table domain.Table) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("UpdateTable(%d)", id)); err != nil {
		return domain.Table{}, err
	}
	if _, ok := r.tables[id]; !ok {
		return domain.Table{}, domain.ErrNotFound
	}
	table.ID = id
	r.tables[id] = table
	return table, nil
}

func (r *stubRepo) DeleteTable(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("DeleteTable(%d)", id)); err != nil {
		return err
	}
	delete(r.tables, id)
	return nil
}

func (r *stubRepo) SetTableStatus(_ context.Context, id int64, status domain.TableStatus) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("SetTableStatus(%d,%s)", id, status)); err != nil {
		return domain.Table{}, err
	}
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, domain.ErrNotFound
	}
	t.Status = status
	r.tables[id] = t
	return t, nil
}

func (r *stubRepo) UpdateTablePosition(_ context.Context, id int64, position domain.Point) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("UpdateTablePosition(%d,{%g %g})", id, position.X, position.Y)); err != nil {
		return domain.Table{}, err
	}
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, domain.ErrNotFound
	}
	t.Position = position
	r.tables[id] = t
	return t, nil
}

func (r *stubRepo) UpdateTableShape(_ context.Context, id int64, position domain.Point, shape domain.Shape) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("UpdateTableShape(%d)", id)); err != nil {
		return domain.Table{}, err
	}
	t, ok := r.tables[id]
	if !ok {
		return domain.Table{}, domain.ErrNotFound
	}
	t.Position = position
	t.Shape = shape
	r.tables[id] = t
	return t, nil
}

func (r *stubRepo) ListAreas(context.Context) ([]domain.Area, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	areas := make([]domain.Area, 0, len(r.areas))
	for _, a := range r.areas {
		areas = append(areas, a)
	}
	return areas, nil
}

func (r *stubRepo) GetArea(_ context.Context, id int64) (domain.Area, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.areas[id]
	if !ok {
		return domain.Area{}, domain.ErrNotFound
	}
	return a, nil
}

func (r *stubRepo) CreateArea(_ context.Context, area domain.Area) (domain.Area, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.areas[area.ID] = area
	return area, nil
}

func (r *stubRepo) UpdateArea(_ context.Context, id int64, area domain.Area) (domain.Area, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	area.ID = id
	r.areas[id] = area
	return area, nil
}

func (r *stubRepo) DeleteArea(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	area, ok := r.areas[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, t := range r.tables {
		if t.Area == area.Name {
			return domain.ErrAreaNotEmpty
		}
	}
	delete(r.areas, id)
	return nil
}

func (r *stubRepo) GetLayout(context.Context) (domain.Layout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout, nil
}

func (r *stubRepo) UpdateLayout(_ context.Context, layout domain.Layout) (domain.Layout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout = layout
	return layout, nil
}

func (r *stubRepo) ListReservations(context.Context) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Reservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		out = append(out, res)
	}
	return out, nil
}

func (r *stubRepo) ReservationsByTable(_ context.Context, tableID int64) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("ReservationsByTable(%d)", tableID)); err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0)
	for _, res := range r.reservations {
		if res.TableID == tableID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *stubRepo) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return res, nil
}

func (r *stubRepo) CreateReservation(_ context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateReservation(" + reservation.ID + ")"); err != nil {
		return domain.Reservation{}, err
	}
	r.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (r *stubRepo) UpdateReservation(_ context.Context, id string, reservation domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation.ID = id
	r.reservations[id] = reservation
	return reservation, nil
}

func (r *stubRepo) CancelReservation(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CancelReservation(" + id + ")"); err != nil {
		return err
	}
	res, ok := r.reservations[id]
	if !ok {
		return domain.ErrNotFound
	}
	res.Status = domain.ReservationCancelled
	r.reservations[id] = res
	return nil
}

func (r *stubRepo) ListOrders(context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *stubRepo) CurrentOrderByTable(_ context.Context, tableID int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("CurrentOrderByTable(%d)", tableID)); err != nil {
		return nil, err
	}
	order, ok := r.orders[tableID]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

// recordingBroadcaster captures broadcast messages for assertions.
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, msg *domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *recordingBroadcaster) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	topics := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		topics = append(topics, m.Topic)
	}
	return topics
}
