package claim

import (
	"slices"
	"time"

	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/google/uuid"
)

// Region is a spatial ownership record over a 3D or 2D-columnar area of one
// world. Its shape is only mutable through Manager.Resize so that the spatial
// index and the geometry invariants stay consistent; metadata such as trust,
// flags and activity timestamps may be mutated directly.
//
// A Region must only be used from the goroutine designated for its world.
type Region struct {
	id     uuid.UUID
	world  string
	bounds cube.BBox
	cuboid bool
	t      Type
	owner  uuid.UUID

	parent   *Region
	children []*Region

	// trust holds one actor set per trust level, indexed by TrustLevel-1.
	trust [4]map[uuid.UUID]struct{}
	flags map[string]FlagValue

	inheritParent  bool
	allowOverrides bool
	allowExpire    bool
	resizable      bool
	requiresBlocks bool
	sizeRestricted bool

	created    time.Time
	lastActive time.Time
	seq        uint64

	economy EconomyData
}

// ID returns the stable unique identifier of the region. It is assigned at
// creation and never reused.
func (r *Region) ID() uuid.UUID {
	return r.id
}

// World returns the name of the world the region lives in.
func (r *Region) World() string {
	return r.world
}

// Bounds returns the bounding box of the region. For non-cuboid regions the
// vertical component covers the full world range and is ignored for
// containment.
func (r *Region) Bounds() cube.BBox {
	return r.bounds
}

// Cuboid reports if the region is bounded vertically. Non-cuboid regions span
// the full vertical column of the world.
func (r *Region) Cuboid() bool {
	return r.cuboid
}

// Type returns the Type of the region.
func (r *Region) Type() Type {
	return r.t
}

// Owner returns the UUID of the player owning the region. It is uuid.Nil for
// wilderness and admin regions.
func (r *Region) Owner() uuid.UUID {
	return r.owner
}

// Parent returns the parent region of a subdivision, or nil for top-level
// regions.
func (r *Region) Parent() *Region {
	return r.parent
}

// Children returns the subdivisions nested inside the region.
func (r *Region) Children() []*Region {
	return slices.Clone(r.children)
}

// Contains checks if the block position passed falls inside the region. For
// non-cuboid regions the y coordinate is ignored. The wilderness region
// contains every position of its world.
func (r *Region) Contains(pos cube.Pos) bool {
	if r.t == TypeWilderness {
		return true
	}
	if r.cuboid {
		return r.bounds.Contains(pos)
	}
	return r.bounds.ContainsColumn(pos)
}

// Trust adds the actor passed to the trust list of the level passed. Adding
// an actor at TrustNone is a no-op.
func (r *Region) Trust(actor uuid.UUID, level TrustLevel) {
	if level == TrustNone || actor == uuid.Nil {
		return
	}
	if r.trust[level-1] == nil {
		r.trust[level-1] = make(map[uuid.UUID]struct{})
	}
	r.trust[level-1][actor] = struct{}{}
}

// Untrust removes the actor passed from the trust list of the level passed.
func (r *Region) Untrust(actor uuid.UUID, level TrustLevel) {
	if level == TrustNone {
		return
	}
	delete(r.trust[level-1], actor)
}

// UntrustAll removes the actor passed from all trust lists of the region.
func (r *Region) UntrustAll(actor uuid.UUID) {
	for i := range r.trust {
		delete(r.trust[i], actor)
	}
}

// Trusted checks if the actor passed is present in the trust list of exactly
// the level passed. It does not consider the owner, parent inheritance or
// higher trust levels; use TrustResolver for resolution.
func (r *Region) Trusted(actor uuid.UUID, level TrustLevel) bool {
	if level == TrustNone {
		return false
	}
	_, ok := r.trust[level-1][actor]
	return ok
}

// TrustList returns the actors in the trust list of the level passed, in
// unspecified order.
func (r *Region) TrustList(level TrustLevel) []uuid.UUID {
	if level == TrustNone {
		return nil
	}
	list := make([]uuid.UUID, 0, len(r.trust[level-1]))
	for actor := range r.trust[level-1] {
		list = append(list, actor)
	}
	return list
}

// Flag returns the value of the flag with the permission string passed.
// FlagUndefined is returned for flags that have not been set.
func (r *Region) Flag(permission string) FlagValue {
	return r.flags[permission]
}

// SetFlag sets the flag with the permission string passed. Setting a flag to
// FlagUndefined removes it.
func (r *Region) SetFlag(permission string, v FlagValue) {
	if v == FlagUndefined {
		delete(r.flags, permission)
		return
	}
	if r.flags == nil {
		r.flags = make(map[string]FlagValue)
	}
	r.flags[permission] = v
}

// Flags returns a copy of all flags set on the region.
func (r *Region) Flags() map[string]FlagValue {
	m := make(map[string]FlagValue, len(r.flags))
	for k, v := range r.flags {
		m[k] = v
	}
	return m
}

// InheritsParent reports if unresolved flags and trust of the region fall
// through to its parent before falling through to the defaults.
func (r *Region) InheritsParent() bool {
	return r.inheritParent && r.parent != nil
}

// SetInheritParent sets whether the region inherits flags and trust from its
// parent.
func (r *Region) SetInheritParent(inherit bool) {
	r.inheritParent = inherit
}

// AllowsFlagOverrides reports if administrative overrides apply to the
// region.
func (r *Region) AllowsFlagOverrides() bool {
	return r.allowOverrides
}

// AllowsExpiration reports if the region may be removed by the expiration
// sweep.
func (r *Region) AllowsExpiration() bool {
	return r.allowExpire
}

// Resizable reports if Manager.Resize accepts the region.
func (r *Region) Resizable() bool {
	return r.resizable
}

// RequiresClaimBlocks reports if the region's area counts against its owner's
// claim block budget.
func (r *Region) RequiresClaimBlocks() bool {
	return r.requiresBlocks
}

// SizeRestricted reports if the per-type size limits apply to the region.
func (r *Region) SizeRestricted() bool {
	return r.sizeRestricted
}

// Created returns the time at which the region was created.
func (r *Region) Created() time.Time {
	return r.created
}

// LastActive returns the time of the last recorded player activity inside
// the region. The expiration sweep compares it against the configured
// inactivity thresholds.
func (r *Region) LastActive() time.Time {
	return r.lastActive
}

// SetLastActive sets the last activity time of the region. It is used by the
// persistence layer when loading regions and by Touch.
func (r *Region) SetLastActive(t time.Time) {
	r.lastActive = t
}

// Touch records player activity inside the region at the time passed.
// Activity inside a subdivision also counts as activity in its parent.
func (r *Region) Touch(now time.Time) {
	r.lastActive = now
	if r.parent != nil {
		r.parent.lastActive = now
	}
}

// Economy returns the economy data hung off the region, for use by tax and
// sale add-ons. The core only stores and round-trips these fields.
func (r *Region) Economy() *EconomyData {
	return &r.economy
}

// Boundary returns the positions making up the horizontal perimeter of the
// region at the y level passed, for consumption by visualizers. The corners
// are always included; edge positions are emitted every step blocks.
func (r *Region) Boundary(y, step int) []cube.Pos {
	if step < 1 {
		step = 1
	}
	minP, maxP := r.bounds.Min(), r.bounds.Max()
	var out []cube.Pos
	for x := minP[0]; x < maxP[0]; x += step {
		out = append(out, cube.Pos{x, y, minP[2]}, cube.Pos{x, y, maxP[2]})
	}
	for z := minP[2]; z < maxP[2]; z += step {
		out = append(out, cube.Pos{minP[0], y, z}, cube.Pos{maxP[0], y, z})
	}
	out = append(out,
		cube.Pos{maxP[0], y, minP[2]},
		cube.Pos{minP[0], y, maxP[2]},
		cube.Pos{maxP[0], y, maxP[2]},
	)
	return out
}

// area returns the horizontal area the region occupies for claim block
// accounting.
func (r *Region) area() int {
	return r.bounds.Area()
}
