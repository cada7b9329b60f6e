package models

// EntityState is the lifecycle of a soft-deletable row.
type EntityState string

const (
	StateActive  EntityState = "active"
	StateDeleted EntityState = "deleted"
)

// IsActive reports whether the entity is visible to normal reads.
func (s EntityState) IsActive() bool {
	return s == StateActive
}
