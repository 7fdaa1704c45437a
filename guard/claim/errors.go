package claim

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no region with the id passed exists.
	ErrNotFound = errors.New("claim: region not found")
	// ErrInsufficientBlocks is returned when the owner's remaining claim
	// block budget does not cover the area of a created or grown region.
	ErrInsufficientBlocks = errors.New("claim: insufficient claim blocks")
	// ErrNotResizable is returned when Manager.Resize is called on a region
	// whose policy forbids resizing.
	ErrNotResizable = errors.New("claim: region is not resizable")
)

// GeometryError is returned when a create or resize operation would violate a
// geometry invariant: overlapping another region, leaving the world bounds,
// or pushing a child subdivision outside its parent. The operation it is
// returned from never partially mutates state.
type GeometryError struct {
	// Conflict is the id of the region the proposed bounds collide with or
	// the child that would no longer be contained. It is uuid.Nil when the
	// conflict is with the world bounds instead of another region.
	Conflict uuid.UUID
	// Reason is a short description of the violated invariant.
	Reason string
}

// Error ...
func (err GeometryError) Error() string {
	if err.Conflict == uuid.Nil {
		return "claim: " + err.Reason
	}
	return fmt.Sprintf("claim: %v (region %v)", err.Reason, err.Conflict)
}

// SizeError is returned when proposed bounds fall outside the size limits
// configured for the region's type.
type SizeError struct {
	// Dimension names the limit violated: "width", "length", "area" or
	// "depth".
	Dimension string
	// Limit is the configured boundary and Actual the offending value.
	Limit, Actual int
	// TooLarge is true if Actual exceeded a maximum rather than falling
	// short of a minimum.
	TooLarge bool
}

// Error ...
func (err SizeError) Error() string {
	if err.TooLarge {
		return fmt.Sprintf("claim: %v %v exceeds maximum of %v", err.Dimension, err.Actual, err.Limit)
	}
	return fmt.Sprintf("claim: %v %v below minimum of %v", err.Dimension, err.Actual, err.Limit)
}
