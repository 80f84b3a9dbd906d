package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/domain"
)

// ErrStatusPending rejects a concurrent status change for a table whose
// previous change has not resolved yet. The detail panel disables its
// buttons on this signal.
var ErrStatusPending = errors.New("status change already pending")

// StatusChanger applies operator-driven table status transitions. The graph
// is fully connected: any status may follow any other. The repository
// persists first; only then does the in-memory model reflect the change, so
// a rejected backend write never shows an optimistic state.
type StatusChanger struct {
	model     *LayoutModel
	tables    port.TableRepository
	broadcast *BroadcastUseCase
	now       func() time.Time

	mu      sync.Mutex
	pending map[int64]bool
}

func NewStatusChanger(model *LayoutModel, tables port.TableRepository, broadcast *BroadcastUseCase) *StatusChanger {
	return &StatusChanger{
		model:     model,
		tables:    tables,
		broadcast: broadcast,
		now:       time.Now,
		pending:   make(map[int64]bool),
	}
}

// Pending reports whether a status change for the table is awaiting its
// repository commit.
func (uc *StatusChanger) Pending(tableID int64) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.pending[tableID]
}

// Execute transitions the table to newStatus. Requesting the current status
// is an idempotent no-op with no repository call and no side effects.
func (uc *StatusChanger) Execute(ctx context.Context, tableID int64, newStatus domain.TableStatus) error {
	if !newStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, newStatus)
	}

	table, err := uc.model.FindTable(tableID)
	if err != nil {
		return err
	}
	if table.Status == newStatus {
		return nil
	}

	uc.mu.Lock()
	if uc.pending[tableID] {
		uc.mu.Unlock()
		return fmt.Errorf("table %d: %w", tableID, ErrStatusPending)
	}
	uc.pending[tableID] = true
	uc.mu.Unlock()

	defer func() {
		uc.mu.Lock()
		delete(uc.pending, tableID)
		uc.mu.Unlock()
	}()

	updated, err := uc.tables.SetTableStatus(ctx, tableID, newStatus)
	if err != nil {
		slog.Warn("status commit failed",
			slog.Int64("tableId", tableID),
			slog.String("from", string(table.Status)),
			slog.String("to", string(newStatus)),
			slog.Any("error", err))
		return err
	}

	uc.model.ApplyCommitted(updated)
	uc.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionStatus, updated, uc.now()))
	slog.Info("table status changed",
		slog.Int64("tableId", tableID),
		slog.String("from", string(table.Status)),
		slog.String("to", string(newStatus)))
	return nil
}
