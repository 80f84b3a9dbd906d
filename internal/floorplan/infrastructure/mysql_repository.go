package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mesaplan/internal/floorplan/domain"
)

// MySQLRepository implements the repository contract on top of database/sql.
// Driver failures are wrapped in domain.ErrTransport so use cases can treat
// any storage outage uniformly.
type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrTransport, err)
}

const tableColumns = `id, number, name, capacity, status, position_x, position_y, shape, width, height, area, current_order_id, current_reservation_id, active`

func scanTable(row interface{ Scan(...any) error }) (domain.Table, error) {
	var t domain.Table
	var shape string
	err := row.Scan(
		&t.ID, &t.Number, &t.Name, &t.Capacity, &t.Status,
		&t.Position.X, &t.Position.Y, &shape, &t.Shape.Width, &t.Shape.Height,
		&t.Area, &t.CurrentOrderID, &t.CurrentReservationID, &t.Active,
	)
	if err != nil {
		return domain.Table{}, err
	}
	t.Shape.Kind = domain.ShapeKind(shape)
	return t, nil
}

func (r *MySQLRepository) ListTables(ctx context.Context) ([]domain.Table, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tableColumns+` FROM floor_tables ORDER BY number`)
	if err != nil {
		return nil, transportErr("list tables", err)
	}
	defer rows.Close()

	tables := make([]domain.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, transportErr("scan table", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, transportErr("list tables", err)
	}
	return tables, nil
}

func (r *MySQLRepository) GetTable(ctx context.Context, id int64) (domain.Table, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM floor_tables WHERE id = ?`, id)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Table{}, fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Table{}, transportErr("get table", err)
	}
	return t, nil
}

func (r *MySQLRepository) CreateTable(ctx context.Context, table domain.Table) (domain.Table, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Table{}, transportErr("create table", err)
	}
	defer tx.Rollback()

	if table.Number == 0 {
		row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(number), 0) + 1 FROM floor_tables`)
		if err := row.Scan(&table.Number); err != nil {
			return domain.Table{}, transportErr("next table number", err)
		}
	}
	if table.Status == "" {
		table.Status = domain.StatusFree
	}
	if err := table.Validate(); err != nil {
		return domain.Table{}, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO floor_tables
			(number, name, capacity, status, position_x, position_y, shape, width, height, area, current_order_id, current_reservation_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		table.Number, table.Name, table.Capacity, table.Status,
		table.Position.X, table.Position.Y, string(table.Shape.Kind), table.Shape.Width, table.Shape.Height,
		table.Area, table.CurrentOrderID, table.CurrentReservationID, table.Active,
	)
	if err != nil {
		return domain.Table{}, transportErr("insert table", err)
	}
	table.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Table{}, transportErr("insert table", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Table{}, transportErr("create table", err)
	}
	return table, nil
}

func (r *MySQLRepository) UpdateTable(ctx context.Context, id int64, table domain.Table) (domain.Table, error) {
	table.ID = id
	if err := table.Validate(); err != nil {
		return domain.Table{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE floor_tables SET
			number = ?, name = ?, capacity = ?, status = ?,
			position_x = ?, position_y = ?, shape = ?, width = ?, height = ?,
			area = ?, current_order_id = ?, current_reservation_id = ?, active = ?
		WHERE id = ?`,
		table.Number, table.Name, table.Capacity, table.Status,
		table.Position.X, table.Position.Y, string(table.Shape.Kind), table.Shape.Width, table.Shape.Height,
		table.Area, table.CurrentOrderID, table.CurrentReservationID, table.Active,
		id,
	)
	if err != nil {
		return domain.Table{}, transportErr("update table", err)
	}
	if err := requireRow(res, fmt.Sprintf("table %d", id)); err != nil {
		return domain.Table{}, err
	}
	return table, nil
}

func (r *MySQLRepository) DeleteTable(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM floor_tables WHERE id = ?`, id)
	if err != nil {
		return transportErr("delete table", err)
	}
	return requireRow(res, fmt.Sprintf("table %d", id))
}

func (r *MySQLRepository) SetTableStatus(ctx context.Context, id int64, status domain.TableStatus) (domain.Table, error) {
	if !status.Valid() {
		return domain.Table{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE floor_tables SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return domain.Table{}, transportErr("set table status", err)
	}
	if err := requireRow(res, fmt.Sprintf("table %d", id)); err != nil {
		return domain.Table{}, err
	}
	return r.GetTable(ctx, id)
}

func (r *MySQLRepository) UpdateTablePosition(ctx context.Context, id int64, position domain.Point) (domain.Table, error) {
	if !position.Finite() {
		return domain.Table{}, fmt.Errorf("%w: position must be finite", domain.ErrValidation)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE floor_tables SET position_x = ?, position_y = ? WHERE id = ?`, position.X, position.Y, id)
	if err != nil {
		return domain.Table{}, transportErr("update table position", err)
	}
	if err := requireRow(res, fmt.Sprintf("table %d", id)); err != nil {
		return domain.Table{}, err
	}
	return r.GetTable(ctx, id)
}

func (r *MySQLRepository) UpdateTableShape(ctx context.Context, id int64, position domain.Point, shape domain.Shape) (domain.Table, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE floor_tables SET position_x = ?, position_y = ?, shape = ?, width = ?, height = ?
		WHERE id = ?`,
		position.X, position.Y, string(shape.Kind), shape.Width, shape.Height, id,
	)
	if err != nil {
		return domain.Table{}, transportErr("update table shape", err)
	}
	if err := requireRow(res, fmt.Sprintf("table %d", id)); err != nil {
		return domain.Table{}, err
	}
	return r.GetTable(ctx, id)
}

func requireRow(res sql.Result, what string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return transportErr("rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

const areaColumns = `id, name, description, x, y, width, height, color`

func scanArea(row interface{ Scan(...any) error }) (domain.Area, error) {
	var a domain.Area
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Bounds.X, &a.Bounds.Y, &a.Bounds.Width, &a.Bounds.Height, &a.Color)
	return a, err
}

func (r *MySQLRepository) ListAreas(ctx context.Context) ([]domain.Area, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+areaColumns+` FROM floor_areas ORDER BY id`)
	if err != nil {
		return nil, transportErr("list areas", err)
	}
	defer rows.Close()

	areas := make([]domain.Area, 0)
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, transportErr("scan area", err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, transportErr("list areas", err)
	}
	return areas, nil
}

func (r *MySQLRepository) GetArea(ctx context.Context, id int64) (domain.Area, error) {
	a, err := scanArea(r.db.QueryRowContext(ctx, `SELECT `+areaColumns+` FROM floor_areas WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Area{}, fmt.Errorf("area %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Area{}, transportErr("get area", err)
	}
	return a, nil
}

func (r *MySQLRepository) CreateArea(ctx context.Context, area domain.Area) (domain.Area, error) {
	if err := area.Validate(); err != nil {
		return domain.Area{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO floor_areas (name, description, x, y, width, height, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		area.Name, area.Description, area.Bounds.X, area.Bounds.Y, area.Bounds.Width, area.Bounds.Height, area.Color,
	)
	if err != nil {
		return domain.Area{}, transportErr("insert area", err)
	}
	area.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Area{}, transportErr("insert area", err)
	}
	return area, nil
}

func (r *MySQLRepository) UpdateArea(ctx context.Context, id int64, area domain.Area) (domain.Area, error) {
	area.ID = id
	if err := area.Validate(); err != nil {
		return domain.Area{}, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Area{}, transportErr("update area", err)
	}
	defer tx.Rollback()

	var oldName string
	row := tx.QueryRowContext(ctx, `SELECT name FROM floor_areas WHERE id = ?`, id)
	if err := row.Scan(&oldName); errors.Is(err, sql.ErrNoRows) {
		return domain.Area{}, fmt.Errorf("area %d: %w", id, domain.ErrNotFound)
	} else if err != nil {
		return domain.Area{}, transportErr("update area", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE floor_areas SET name = ?, description = ?, x = ?, y = ?, width = ?, height = ?, color = ?
		WHERE id = ?`,
		area.Name, area.Description, area.Bounds.X, area.Bounds.Y, area.Bounds.Width, area.Bounds.Height, area.Color, id,
	)
	if err != nil {
		return domain.Area{}, transportErr("update area", err)
	}

	// Rename cascades to member tables inside the same transaction.
	if oldName != area.Name {
		if _, err := tx.ExecContext(ctx, `UPDATE floor_tables SET area = ? WHERE area = ?`, area.Name, oldName); err != nil {
			return domain.Area{}, transportErr("cascade area rename", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Area{}, transportErr("update area", err)
	}
	return area, nil
}

func (r *MySQLRepository) DeleteArea(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return transportErr("delete area", err)
	}
	defer tx.Rollback()

	var name string
	row := tx.QueryRowContext(ctx, `SELECT name FROM floor_areas WHERE id = ?`, id)
	if err := row.Scan(&name); errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("area %d: %w", id, domain.ErrNotFound)
	} else if err != nil {
		return transportErr("delete area", err)
	}

	var members int
	row = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM floor_tables WHERE area = ?`, name)
	if err := row.Scan(&members); err != nil {
		return transportErr("delete area", err)
	}
	if members > 0 {
		return fmt.Errorf("area %q: %w", name, domain.ErrAreaNotEmpty)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM floor_areas WHERE id = ?`, id); err != nil {
		return transportErr("delete area", err)
	}
	return tx.Commit()
}

func (r *MySQLRepository) GetLayout(ctx context.Context) (domain.Layout, error) {
	var l domain.Layout
	row := r.db.QueryRowContext(ctx, `SELECT canvas_width, canvas_height, show_grid, locked, background FROM floor_layout WHERE id = 1`)
	err := row.Scan(&l.CanvasWidth, &l.CanvasHeight, &l.ShowGrid, &l.Locked, &l.Background)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultLayout(), nil
	}
	if err != nil {
		return domain.Layout{}, transportErr("get layout", err)
	}
	return l, nil
}

func (r *MySQLRepository) UpdateLayout(ctx context.Context, layout domain.Layout) (domain.Layout, error) {
	if layout.CanvasWidth <= 0 || layout.CanvasHeight <= 0 {
		return domain.Layout{}, fmt.Errorf("%w: canvas dimensions must be positive", domain.ErrValidation)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO floor_layout (id, canvas_width, canvas_height, show_grid, locked, background)
		VALUES (1, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			canvas_width = VALUES(canvas_width), canvas_height = VALUES(canvas_height),
			show_grid = VALUES(show_grid), locked = VALUES(locked), background = VALUES(background)`,
		layout.CanvasWidth, layout.CanvasHeight, layout.ShowGrid, layout.Locked, layout.Background,
	)
	if err != nil {
		return domain.Layout{}, transportErr("update layout", err)
	}
	return layout, nil
}

const reservationColumns = `id, table_id, customer_name, customer_phone, customer_email, reservation_date, reservation_time, duration_minutes, party_size, status`

func scanReservation(row interface{ Scan(...any) error }) (domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID, &res.TableID, &res.CustomerName, &res.CustomerPhone, &res.CustomerEmail,
		&res.Date, &res.Time, &res.DurationMinutes, &res.PartySize, &res.Status,
	)
	return res, err
}

func (r *MySQLRepository) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM floor_reservations ORDER BY id`)
}

func (r *MySQLRepository) ReservationsByTable(ctx context.Context, tableID int64) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM floor_reservations WHERE table_id = ? ORDER BY id`, tableID)
}

func (r *MySQLRepository) queryReservations(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, transportErr("list reservations", err)
	}
	defer rows.Close()

	out := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, transportErr("scan reservation", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, transportErr("list reservations", err)
	}
	return out, nil
}

func (r *MySQLRepository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM floor_reservations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reservation{}, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Reservation{}, transportErr("get reservation", err)
	}
	return res, nil
}

func (r *MySQLRepository) CreateReservation(ctx context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	if err := reservation.Validate(); err != nil {
		return domain.Reservation{}, err
	}
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	if reservation.Status == "" {
		reservation.Status = domain.ReservationConfirmed
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO floor_reservations
			(id, table_id, customer_name, customer_phone, customer_email, reservation_date, reservation_time, duration_minutes, party_size, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID, reservation.TableID, reservation.CustomerName, reservation.CustomerPhone, reservation.CustomerEmail,
		reservation.Date, reservation.Time, reservation.DurationMinutes, reservation.PartySize, reservation.Status,
	)
	if err != nil {
		return domain.Reservation{}, transportErr("insert reservation", err)
	}
	return reservation, nil
}

func (r *MySQLRepository) UpdateReservation(ctx context.Context, id string, reservation domain.Reservation) (domain.Reservation, error) {
	reservation.ID = id
	if err := reservation.Validate(); err != nil {
		return domain.Reservation{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE floor_reservations SET
			table_id = ?, customer_name = ?, customer_phone = ?, customer_email = ?,
			reservation_date = ?, reservation_time = ?, duration_minutes = ?, party_size = ?, status = ?
		WHERE id = ?`,
		reservation.TableID, reservation.CustomerName, reservation.CustomerPhone, reservation.CustomerEmail,
		reservation.Date, reservation.Time, reservation.DurationMinutes, reservation.PartySize, reservation.Status,
		id,
	)
	if err != nil {
		return domain.Reservation{}, transportErr("update reservation", err)
	}
	if err := requireRow(res, fmt.Sprintf("reservation %s", id)); err != nil {
		return domain.Reservation{}, err
	}
	return reservation, nil
}

func (r *MySQLRepository) CancelReservation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE floor_reservations SET status = ? WHERE id = ?`, domain.ReservationCancelled, id)
	if err != nil {
		return transportErr("cancel reservation", err)
	}
	return requireRow(res, fmt.Sprintf("reservation %s", id))
}

func (r *MySQLRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, table_id, status FROM floor_orders ORDER BY id`)
	if err != nil {
		return nil, transportErr("list orders", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.TableID, &o.Status); err != nil {
			return nil, transportErr("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, transportErr("list orders", err)
	}
	for i := range orders {
		items, err := r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *MySQLRepository) CurrentOrderByTable(ctx context.Context, tableID int64) (*domain.Order, error) {
	var o domain.Order
	row := r.db.QueryRowContext(ctx, `
		SELECT id, table_id, status FROM floor_orders
		WHERE table_id = ? AND status NOT IN (?, ?)
		ORDER BY id DESC LIMIT 1`,
		tableID, domain.OrderPaid, domain.OrderCancelled,
	)
	err := row.Scan(&o.ID, &o.TableID, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, transportErr("current order", err)
	}
	items, err := r.orderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *MySQLRepository) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price, status
		FROM floor_order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, transportErr("order items", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Status); err != nil {
			return nil, transportErr("scan order item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, transportErr("order items", err)
	}
	return items, nil
}
