package domain

import "time"

type GroupKind string

const (
	// GroupKindCategory is a named collection of instruments published as one board.
	GroupKindCategory GroupKind = "category"
	// GroupKindSpecial wraps a single standalone instrument.
	GroupKindSpecial GroupKind = "special"
)

type Group struct {
	ID        string
	Name      string
	Slug      string
	Kind      GroupKind
	CreatedAt time.Time
}

// IsSpecial reports whether the group is a standalone special quote rather
// than a category board.
func (g Group) IsSpecial() bool { return g.Kind == GroupKindSpecial }
