package domain

import "fmt"

// OrderStatus is the aggregate state of a table's order.
type OrderStatus string

const (
	OrderOpen      OrderStatus = "open"
	OrderPreparing OrderStatus = "preparing"
	OrderServed    OrderStatus = "served"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem is a single line on an order.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Status      string  `json:"status,omitempty"`
}

// Validate checks the line-item invariants.
func (i OrderItem) Validate() error {
	if i.Quantity < 1 {
		return fmt.Errorf("%w: item quantity must be at least 1", ErrValidation)
	}
	if i.UnitPrice < 0 {
		return fmt.Errorf("%w: item unit price must be non-negative", ErrValidation)
	}
	return nil
}

// Order is the ordered sequence of items currently open on a table. The
// total is always recomputed from the items, never stored, so it cannot
// drift from the line data.
type Order struct {
	ID      string      `json:"id"`
	TableID int64       `json:"tableId"`
	Items   []OrderItem `json:"items"`
	Status  OrderStatus `json:"status"`
}

// Total sums quantity x unit price across all items.
func (o Order) Total() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}

// Validate checks the order and every line item.
func (o Order) Validate() error {
	if o.TableID <= 0 {
		return fmt.Errorf("%w: order requires a table", ErrValidation)
	}
	for idx, item := range o.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx, err)
		}
	}
	return nil
}
