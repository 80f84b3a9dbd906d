package usecase

import (
	"context"
	"time"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/domain"
)

// FloorService is the CRUD surface of the floor plan: tables, areas and the
// shared layout settings. Every mutation persists first, then updates the
// in-memory projection, then broadcasts, so subscribers never see state the
// repository rejected.
type FloorService struct {
	model     *LayoutModel
	repo      port.Repository
	broadcast *BroadcastUseCase
	now       func() time.Time
}

func NewFloorService(model *LayoutModel, repo port.Repository, broadcast *BroadcastUseCase) *FloorService {
	return &FloorService{model: model, repo: repo, broadcast: broadcast, now: time.Now}
}

func (s *FloorService) Tables() []domain.Table { return s.model.Tables() }
func (s *FloorService) Areas() []domain.Area   { return s.model.Areas() }
func (s *FloorService) Layout() domain.Layout  { return s.model.Layout() }

func (s *FloorService) Table(id int64) (domain.Table, error) {
	return s.model.FindTable(id)
}

func (s *FloorService) TablesInArea(areaName string) []domain.Table {
	return s.model.TablesInArea(areaName)
}

// CreateTable persists a new table. A zero Number gets the next free one
// (highest existing plus one, gaps never reused).
func (s *FloorService) CreateTable(ctx context.Context, table domain.Table) (domain.Table, error) {
	if table.Number == 0 {
		table.Number = s.model.NextTableNumber()
	}
	created, err := s.repo.CreateTable(ctx, table)
	if err != nil {
		return domain.Table{}, err
	}
	s.model.ApplyCommitted(created)
	s.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionCreated, created, s.now()))
	return created, nil
}

func (s *FloorService) UpdateTable(ctx context.Context, id int64, table domain.Table) (domain.Table, error) {
	if _, err := s.model.FindTable(id); err != nil {
		return domain.Table{}, err
	}
	updated, err := s.repo.UpdateTable(ctx, id, table)
	if err != nil {
		return domain.Table{}, err
	}
	s.model.ApplyCommitted(updated)
	s.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionUpdated, updated, s.now()))
	return updated, nil
}

func (s *FloorService) DeleteTable(ctx context.Context, id int64) error {
	table, err := s.model.FindTable(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTable(ctx, id); err != nil {
		return err
	}
	s.model.RemoveTable(id)
	s.broadcast.Execute(ctx, domain.BuildTableMessage(domain.ActionDeleted, table, s.now()))
	return nil
}

func (s *FloorService) CreateArea(ctx context.Context, area domain.Area) (domain.Area, error) {
	created, err := s.repo.CreateArea(ctx, area)
	if err != nil {
		return domain.Area{}, err
	}
	s.model.ReplaceArea(created)
	s.broadcast.Execute(ctx, domain.BuildAreaMessage(domain.ActionCreated, created, s.now()))
	return created, nil
}

func (s *FloorService) UpdateArea(ctx context.Context, id int64, area domain.Area) (domain.Area, error) {
	existing, err := s.model.FindArea(id)
	if err != nil {
		return domain.Area{}, err
	}
	updated, err := s.repo.UpdateArea(ctx, id, area)
	if err != nil {
		return domain.Area{}, err
	}
	s.model.ReplaceArea(updated)
	s.model.RenameAreaMembers(existing.Name, updated.Name)
	s.broadcast.Execute(ctx, domain.BuildAreaMessage(domain.ActionUpdated, updated, s.now()))
	return updated, nil
}

// DeleteArea removes an empty area. An area still holding tables is
// rejected by the repository with domain.ErrAreaNotEmpty.
func (s *FloorService) DeleteArea(ctx context.Context, id int64) error {
	area, err := s.model.FindArea(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteArea(ctx, id); err != nil {
		return err
	}
	s.model.RemoveArea(id)
	s.broadcast.Execute(ctx, domain.BuildAreaMessage(domain.ActionDeleted, area, s.now()))
	return nil
}

func (s *FloorService) UpdateLayout(ctx context.Context, layout domain.Layout) (domain.Layout, error) {
	updated, err := s.repo.UpdateLayout(ctx, layout)
	if err != nil {
		return domain.Layout{}, err
	}
	s.model.SetLayout(updated)
	s.broadcast.Execute(ctx, &domain.Message{
		Topic:     "layout.updated",
		Entity:    "layout",
		Action:    domain.ActionUpdated,
		Data:      updated,
		Timestamp: s.now().UTC(),
	})
	return updated, nil
}

func (s *FloorService) Reservations(ctx context.Context) ([]domain.Reservation, error) {
	return s.repo.ListReservations(ctx)
}

func (s *FloorService) Orders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx)
}
