package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/domain"
)

// LayoutModel is the in-memory projection of the floor plan that gestures
// and rendering read from. Authoritative state lives in the repository; a
// gesture mutates a working-copy overlay keyed by table id, which is
// reconciled (committed or discarded) when the gesture ends. The overlay
// never leaks into the base collection on its own.
type LayoutModel struct {
	mu      sync.RWMutex
	tables  map[int64]domain.Table
	areas   map[int64]domain.Area
	working map[int64]domain.Table
	layout  domain.Layout
}

func NewLayoutModel() *LayoutModel {
	return &LayoutModel{
		tables:  make(map[int64]domain.Table),
		areas:   make(map[int64]domain.Area),
		working: make(map[int64]domain.Table),
		layout:  domain.DefaultLayout(),
	}
}

// Load replaces the projection with the repository's current contents.
func (m *LayoutModel) Load(ctx context.Context, repo port.Repository) error {
	tables, err := repo.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	areas, err := repo.ListAreas(ctx)
	if err != nil {
		return fmt.Errorf("load areas: %w", err)
	}
	layout, err := repo.GetLayout(ctx)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[int64]domain.Table, len(tables))
	for _, t := range tables {
		m.tables[t.ID] = t
	}
	m.areas = make(map[int64]domain.Area, len(areas))
	for _, a := range areas {
		m.areas[a.ID] = a
	}
	m.working = make(map[int64]domain.Table)
	m.layout = layout
	return nil
}

// FindTable looks a table up by id. Working-copy state wins over the base
// collection so a mid-gesture table renders at its staged position.
func (m *LayoutModel) FindTable(id int64) (domain.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if staged, ok := m.working[id]; ok {
		return staged, nil
	}
	table, ok := m.tables[id]
	if !ok {
		return domain.Table{}, fmt.Errorf("table %d: %w", id, domain.ErrNotFound)
	}
	return table, nil
}

// FindArea looks an area up by id.
func (m *LayoutModel) FindArea(id int64) (domain.Area, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	area, ok := m.areas[id]
	if !ok {
		return domain.Area{}, fmt.Errorf("area %d: %w", id, domain.ErrNotFound)
	}
	return area, nil
}

// Tables returns the full table set ordered by display number, with staged
// working copies applied.
func (m *LayoutModel) Tables() []domain.Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tables := make([]domain.Table, 0, len(m.tables))
	for id, t := range m.tables {
		if staged, ok := m.working[id]; ok {
			t = staged
		}
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables
}

// Areas returns all areas ordered by id.
func (m *LayoutModel) Areas() []domain.Area {
	m.mu.RLock()
	defer m.mu.RUnlock()
	areas := make([]domain.Area, 0, len(m.areas))
	for _, a := range m.areas {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].ID < areas[j].ID })
	return areas
}

// TablesInArea filters by exact, case-sensitive area name match.
func (m *LayoutModel) TablesInArea(areaName string) []domain.Table {
	matches := make([]domain.Table, 0)
	for _, t := range m.Tables() {
		if t.Area == areaName {
			matches = append(matches, t)
		}
	}
	return matches
}

// TableAt hit-tests the canvas point against table bounds, topmost (highest
// id) first so overlapping tables resolve deterministically.
func (m *LayoutModel) TableAt(p domain.Point) (domain.Table, bool) {
	tables := m.Tables()
	for i := len(tables) - 1; i >= 0; i-- {
		if tables[i].Bounds().Contains(p) {
			return tables[i], true
		}
	}
	return domain.Table{}, false
}

// NextTableNumber assigns max(existing)+1, or 1 when the floor is empty.
// Gaps in the sequence are not reused.
func (m *LayoutModel) NextTableNumber() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for _, t := range m.tables {
		if t.Number > max {
			max = t.Number
		}
	}
	return max + 1
}

// StageMove places a working copy of the table at the new center position.
// No clamping to the canvas edges: the canvas is the source of truth for
// extent, not a hard wall.
func (m *LayoutModel) StageMove(id int64, position domain.Point) error {
	table, err := m.FindTable(id)
	if err != nil {
		return err
	}
	table.Position = position
	m.mu.Lock()
	m.working[id] = table
	m.mu.Unlock()
	return nil
}

// StageResize applies an edge-drag with the requested dimensions to the
// working copy. The 40-unit floor always wins over the pointer delta.
func (m *LayoutModel) StageResize(id int64, dir domain.ResizeDirection, requestedWidth, requestedHeight float64) error {
	if !dir.Valid() {
		return fmt.Errorf("%w: unknown resize direction %q", domain.ErrValidation, dir)
	}
	table, err := m.FindTable(id)
	if err != nil {
		return err
	}
	table.Position, table.Shape = domain.ResizeShape(table.Position, table.Shape, dir, requestedWidth, requestedHeight)
	m.mu.Lock()
	m.working[id] = table
	m.mu.Unlock()
	return nil
}

// Working returns the staged copy for a table, if any.
func (m *LayoutModel) Working(id int64) (domain.Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	staged, ok := m.working[id]
	return staged, ok
}

// DiscardWorking drops the staged copy, reverting the table to its last
// committed state.
func (m *LayoutModel) DiscardWorking(id int64) {
	m.mu.Lock()
	delete(m.working, id)
	m.mu.Unlock()
}

// ApplyCommitted replaces the base entry with the repository's committed
// version and clears any staged copy.
func (m *LayoutModel) ApplyCommitted(table domain.Table) {
	m.mu.Lock()
	m.tables[table.ID] = table
	delete(m.working, table.ID)
	m.mu.Unlock()
}

// ReplaceArea upserts an area in the projection.
func (m *LayoutModel) ReplaceArea(area domain.Area) {
	m.mu.Lock()
	m.areas[area.ID] = area
	m.mu.Unlock()
}

// RenameAreaMembers retargets every table referencing oldName so an area
// rename keeps the projection consistent with the cascaded repository
// update.
func (m *LayoutModel) RenameAreaMembers(oldName, newName string) {
	if oldName == newName {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tables {
		if t.Area == oldName {
			t.Area = newName
			m.tables[id] = t
		}
	}
	for id, t := range m.working {
		if t.Area == oldName {
			t.Area = newName
			m.working[id] = t
		}
	}
}

// RemoveTable drops a table from the projection.
func (m *LayoutModel) RemoveTable(id int64) {
	m.mu.Lock()
	delete(m.tables, id)
	delete(m.working, id)
	m.mu.Unlock()
}

// RemoveArea drops an area from the projection.
func (m *LayoutModel) RemoveArea(id int64) {
	m.mu.Lock()
	delete(m.areas, id)
	m.mu.Unlock()
}

// Layout returns the shared floor settings.
func (m *LayoutModel) Layout() domain.Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layout
}

// SetLayout replaces the shared floor settings.
func (m *LayoutModel) SetLayout(layout domain.Layout) {
	m.mu.Lock()
	m.layout = layout
	m.mu.Unlock()
}

// Locked reports whether drag/resize gestures are currently disabled.
func (m *LayoutModel) Locked() bool {
	return m.Layout().Locked
}
