package domain

import (
	"fmt"
	"strings"
)

// Area is a named rectangular zone on the floor plan that groups tables by
// physical location. Its bounds are top-left anchored, unlike table
// positions which are center-anchored. Tables reference areas by name.
type Area struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Bounds      Rect   `json:"bounds"`
	Color       string `json:"color,omitempty"`
}

// Validate checks the structural invariants of an area.
func (a Area) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: area name is required", ErrValidation)
	}
	if a.Bounds.Width < 0 || a.Bounds.Height < 0 {
		return fmt.Errorf("%w: area bounds must have non-negative dimensions", ErrValidation)
	}
	return nil
}

// MemberTables filters the given table set by exact, case-sensitive area
// name match.
func (a Area) MemberTables(tables []Table) []Table {
	members := make([]Table, 0)
	for _, t := range tables {
		if t.Area == a.Name {
			members = append(members, t)
		}
	}
	return members
}
