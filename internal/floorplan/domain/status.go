package domain

import "strings"

// TableStatus represents the operational state of a table on the floor.
// Every status is reachable from every other by explicit operator action;
// the only automatic transition is RESERVED -> FREE when the backing
// reservation is cancelled.
type TableStatus string

const (
	StatusFree           TableStatus = "FREE"
	StatusOccupied       TableStatus = "OCCUPIED"
	StatusReserved       TableStatus = "RESERVED"
	StatusWaitingService TableStatus = "WAITING_SERVICE"
	StatusWaitingPayment TableStatus = "WAITING_PAYMENT"
	StatusCleaning       TableStatus = "CLEANING"
)

// StatusDescriptor carries the display attributes of a status.
type StatusDescriptor struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusDescriptors = map[TableStatus]StatusDescriptor{
	StatusFree:           {Label: "Livre", Color: "success"},
	StatusOccupied:       {Label: "Ocupada", Color: "danger"},
	StatusReserved:       {Label: "Reservada", Color: "info"},
	StatusWaitingService: {Label: "Aguardando Atendimento", Color: "warning"},
	StatusWaitingPayment: {Label: "Aguardando Pagamento", Color: "accent"},
	StatusCleaning:       {Label: "Limpeza", Color: "neutral"},
}

// Valid reports whether the status is one of the six known states.
func (s TableStatus) Valid() bool {
	_, ok := statusDescriptors[s]
	return ok
}

// Descriptor returns the display label and color role for the status.
// Unknown statuses fall back to a neutral descriptor with the raw value as
// label.
func (s TableStatus) Descriptor() StatusDescriptor {
	if d, ok := statusDescriptors[s]; ok {
		return d
	}
	return StatusDescriptor{Label: string(s), Color: "neutral"}
}

// AllStatuses lists the six states in display order.
func AllStatuses() []TableStatus {
	return []TableStatus{
		StatusFree,
		StatusOccupied,
		StatusReserved,
		StatusWaitingService,
		StatusWaitingPayment,
		StatusCleaning,
	}
}

// NormalizeTableStatus coerces loosely typed input (Kafka payloads, query
// params) into a canonical status. Unknown values are uppercased and
// returned so upstream additions pass through.
func NormalizeTableStatus(value any) TableStatus {
	s, ok := value.(string)
	if !ok {
		return TableStatus("")
	}
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "" {
		return TableStatus("")
	}
	return TableStatus(trimmed)
}
