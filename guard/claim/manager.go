package claim

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/dm-vev/claimguard/guard/ledger"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrInvalidType is returned when a region is created with a type that
// cannot be created directly, such as TypeWilderness.
var ErrInvalidType = errors.New("claim: region type cannot be created")

// SizeLimits holds the size restrictions of one region type.
type SizeLimits struct {
	// MinWidth is the minimum size of a region along both horizontal axes.
	MinWidth int
	// MinArea is the minimum horizontal area of a region.
	MinArea int
	// MaxArea is the maximum horizontal area of a region. A value of 0
	// disables the maximum.
	MaxArea int
}

// Config holds the options of a Manager.
type Config struct {
	// Log is the logger used for provider failures and audit information. If
	// nil, Log is set to slog.Default().
	Log *slog.Logger
	// World is the name of the world the manager owns the regions of.
	World string
	// Range is the vertical block range of the world. Non-cuboid regions
	// span it entirely.
	Range cube.Range
	// SurfaceY is the reference surface height used for depth checks of
	// cuboid regions.
	SurfaceY int
	// MaxDepth is the maximum distance below SurfaceY a cuboid region may
	// extend. A value of 0 disables the check.
	MaxDepth int
	// Limits holds the size restrictions per region type. Types without an
	// entry are not size restricted.
	Limits map[Type]SizeLimits
	// AbandonReturnRatio is the fraction of a deleted region's area credited
	// back to the owner's ledger, in the range [0,1].
	AbandonReturnRatio float64
	// Ledger is the claim block ledger debited and credited by create,
	// resize and delete operations. If nil, regions are free.
	Ledger *ledger.Ledger
	// Provider persists region records. If nil, NopProvider is used.
	Provider Provider
}

// New creates a Manager for the world named in conf and loads all stored
// regions of that world from the Provider.
func (conf Config) New() *Manager {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Provider == nil {
		conf.Provider = NopProvider{}
	}
	if conf.Range == (cube.Range{}) {
		conf.Range = cube.Range{-64, 319}
	}
	wilderness := &Region{
		id:             uuid.New(),
		world:          conf.World,
		bounds:         cube.Box(cube.Pos{-1 << 29, conf.Range.Min(), -1 << 29}, cube.Pos{1<<29 - 1, conf.Range.Max(), 1<<29 - 1}),
		t:              TypeWilderness,
		allowOverrides: true,
		created:        time.Now(),
	}
	m := &Manager{
		conf:       conf,
		log:        conf.Log,
		wilderness: wilderness,
		idx:        newSpatialIndex(wilderness),
		regions:    make(map[uuid.UUID]*Region),
	}
	m.load()
	return m
}

// Manager owns all regions of one world. It enforces the overlap, size and
// budget invariants on every mutation and delegates point and overlap
// queries to its spatial index.
//
// A Manager must only be used from the goroutine designated for its world.
type Manager struct {
	conf Config
	log  *slog.Logger

	idx        *spatialIndex
	regions    map[uuid.UUID]*Region
	wilderness *Region
	seq        uint64
}

// World returns the name of the world the manager belongs to.
func (m *Manager) World() string {
	return m.conf.World
}

// Wilderness returns the wilderness region of the world. It is returned by
// ClaimAt for positions not inside any created region.
func (m *Manager) Wilderness() *Region {
	return m.wilderness
}

// Region returns the region with the id passed.
func (m *Manager) Region(id uuid.UUID) (*Region, bool) {
	r, ok := m.regions[id]
	return r, ok
}

// Regions returns a snapshot of all regions of the world. Background tasks
// iterate this snapshot rather than the live collection, so that deleting
// regions during iteration cannot corrupt the index or skip entries.
func (m *Manager) Regions() []*Region {
	out := make([]*Region, 0, len(m.regions))
	for _, r := range m.regions {
		out = append(out, r)
	}
	return out
}

// Count returns the number of regions of the world, excluding wilderness.
func (m *Manager) Count() int {
	return len(m.regions)
}

// ClaimAt returns the region containing the block position passed. It never
// returns nil: positions outside every created region resolve to the
// wilderness region.
func (m *Manager) ClaimAt(pos cube.Pos) *Region {
	return m.idx.queryAt(pos)
}

// At returns the region containing the entity position passed.
func (m *Manager) At(vec mgl64.Vec3) *Region {
	return m.idx.queryAt(cube.PosFromVec3(vec))
}

// PlayerClaims returns all regions owned by the actor passed.
func (m *Manager) PlayerClaims(owner uuid.UUID) []*Region {
	var out []*Region
	for _, r := range m.regions {
		if r.owner == owner {
			out = append(out, r)
		}
	}
	return out
}

// Create creates a region of the type passed with the bounds passed, owned
// by owner. The bounds are validated against the world range, the size
// limits of the type, the owner's claim block budget and the overlap
// invariant before anything is mutated. Subdivisions additionally require an
// enclosing parent region.
func (m *Manager) Create(owner uuid.UUID, bounds cube.BBox, t Type, cuboid bool) (*Region, error) {
	if t == TypeWilderness {
		return nil, ErrInvalidType
	}
	bounds, err := m.normalise(bounds, cuboid)
	if err != nil {
		return nil, err
	}
	if err := m.checkSize(bounds, t, cuboid); err != nil {
		return nil, err
	}
	parent, err := m.checkOverlap(nil, bounds, t, cuboid)
	if err != nil {
		return nil, err
	}

	requiresBlocks := t == TypeBasic || t == TypeTown
	if requiresBlocks && m.conf.Ledger != nil {
		if !m.conf.Ledger.Debit(owner, bounds.Area()) {
			return nil, ErrInsufficientBlocks
		}
	}

	now := time.Now()
	m.seq++
	r := &Region{
		id:             uuid.New(),
		world:          m.conf.World,
		bounds:         bounds,
		cuboid:         cuboid,
		t:              t,
		owner:          owner,
		parent:         parent,
		allowOverrides: true,
		allowExpire:    t == TypeBasic || t == TypeTown,
		resizable:      true,
		requiresBlocks: requiresBlocks,
		sizeRestricted: m.sizeRestricted(t),
		inheritParent:  t == TypeSubdivision,
		created:        now,
		lastActive:     now,
		seq:            m.seq,
	}
	if t == TypeAdmin {
		r.owner = uuid.Nil
	}
	if parent != nil {
		parent.children = append(parent.children, r)
	}
	m.regions[r.id] = r
	m.idx.insert(r)
	m.persist(r)
	return r, nil
}

// Resize changes the bounds of the region with the id passed. The new bounds
// go through the same validation as Create, must keep all children of the
// region fully contained, and the difference in area is settled against the
// owner's ledger. State is only mutated after every check has passed.
func (m *Manager) Resize(id uuid.UUID, bounds cube.BBox) (*Region, error) {
	r, ok := m.regions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !r.resizable {
		return nil, ErrNotResizable
	}
	bounds, err := m.normalise(bounds, r.cuboid)
	if err != nil {
		return nil, err
	}
	if err := m.checkSize(bounds, r.t, r.cuboid); err != nil {
		return nil, err
	}
	if _, err := m.checkOverlap(r, bounds, r.t, r.cuboid); err != nil {
		return nil, err
	}
	for _, child := range r.children {
		if !encloses(bounds, r.cuboid, child.bounds, child.cuboid) {
			return nil, GeometryError{Conflict: child.id, Reason: "child subdivision out of bounds"}
		}
	}
	if r.requiresBlocks && m.conf.Ledger != nil {
		if diff := bounds.Area() - r.bounds.Area(); diff > 0 {
			if !m.conf.Ledger.Debit(r.owner, diff) {
				return nil, ErrInsufficientBlocks
			}
		} else if diff < 0 {
			m.conf.Ledger.Credit(r.owner, -diff)
		}
	}
	m.idx.resize(r, bounds)
	m.persist(r)
	return r, nil
}

// Delete removes the region with the id passed. Deleting a parent cascades
// to its subdivisions: an orphaned subdivision would violate the containment
// invariant, so children are deleted first. The owner's ledger is credited
// the region's area multiplied by the abandon return ratio. Deleting an
// unknown id returns ErrNotFound without further effect.
func (m *Manager) Delete(id uuid.UUID) error {
	r, ok := m.regions[id]
	if !ok {
		return ErrNotFound
	}
	for _, child := range slices.Clone(r.children) {
		if err := m.Delete(child.id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if r.requiresBlocks && m.conf.Ledger != nil {
		m.conf.Ledger.Credit(r.owner, int(float64(r.bounds.Area())*m.conf.AbandonReturnRatio))
	}
	if r.parent != nil {
		r.parent.children = slices.DeleteFunc(r.parent.children, func(other *Region) bool {
			return other == r
		})
		r.parent = nil
	}
	m.idx.remove(r)
	delete(m.regions, id)
	if err := m.conf.Provider.RemoveRegion(id); err != nil {
		m.log.Error("remove region record: "+err.Error(), "region", id)
	}
	return nil
}

// Save persists the current state of the region passed. It should be called
// after metadata mutations such as trust or flag changes, which do not go
// through the manager.
func (m *Manager) Save(r *Region) {
	m.persist(r)
}

// normalise validates the vertical extent of the bounds passed and, for
// non-cuboid regions, stretches them over the full world range.
func (m *Manager) normalise(bounds cube.BBox, cuboid bool) (cube.BBox, error) {
	ra := m.conf.Range
	minP, maxP := bounds.Min(), bounds.Max()
	if !cuboid {
		return cube.Box(cube.Pos{minP[0], ra.Min(), minP[2]}, cube.Pos{maxP[0], ra.Max(), maxP[2]}), nil
	}
	if minP[1] < ra.Min() || maxP[1] > ra.Max() {
		return bounds, GeometryError{Reason: "bounds outside world range"}
	}
	return bounds, nil
}

// checkSize validates the bounds against the size limits of the type and the
// maximum depth below the surface reference.
func (m *Manager) checkSize(bounds cube.BBox, t Type, cuboid bool) error {
	if limits, ok := m.conf.Limits[t]; ok && t != TypeAdmin {
		if w := bounds.Width(); w < limits.MinWidth {
			return SizeError{Dimension: "width", Limit: limits.MinWidth, Actual: w}
		}
		if l := bounds.Length(); l < limits.MinWidth {
			return SizeError{Dimension: "length", Limit: limits.MinWidth, Actual: l}
		}
		if a := bounds.Area(); a < limits.MinArea {
			return SizeError{Dimension: "area", Limit: limits.MinArea, Actual: a}
		} else if limits.MaxArea > 0 && a > limits.MaxArea {
			return SizeError{Dimension: "area", Limit: limits.MaxArea, Actual: a, TooLarge: true}
		}
	}
	if cuboid && m.conf.MaxDepth > 0 {
		if depth := m.conf.SurfaceY - bounds.Min().Y(); depth > m.conf.MaxDepth {
			return SizeError{Dimension: "depth", Limit: m.conf.MaxDepth, Actual: depth, TooLarge: true}
		}
	}
	return nil
}

// checkOverlap enforces the overlap invariant for the proposed bounds of
// self, which is nil at creation time. For top-level regions any intersecting
// top-level region is a conflict. For subdivisions, exactly one overlapping
// region must fully enclose the bounds: that region becomes, or already is,
// the parent. Sibling subdivisions of the parent must not intersect.
func (m *Manager) checkOverlap(self *Region, bounds cube.BBox, t Type, cuboid bool) (*Region, error) {
	overlapping := m.idx.queryOverlapping(bounds, cuboid)
	if t != TypeSubdivision {
		for _, other := range overlapping {
			if other == self {
				continue
			}
			return nil, GeometryError{Conflict: other.id, Reason: "bounds overlap existing region"}
		}
		return nil, nil
	}

	var parent *Region
	if self != nil {
		parent = self.parent
	}
	for _, other := range overlapping {
		if encloses(other.bounds, other.cuboid, bounds, cuboid) {
			if parent == nil {
				parent = other
				continue
			}
			if other == parent {
				continue
			}
		}
		return nil, GeometryError{Conflict: other.id, Reason: "bounds overlap existing region"}
	}
	if parent == nil {
		return nil, GeometryError{Reason: "subdivision requires an enclosing parent region"}
	}
	if parent.t == TypeSubdivision {
		return nil, GeometryError{Conflict: parent.id, Reason: "subdivisions cannot be nested"}
	}
	if self != nil && !encloses(parent.bounds, parent.cuboid, bounds, cuboid) {
		return nil, GeometryError{Conflict: parent.id, Reason: "bounds escape parent region"}
	}
	for _, sibling := range parent.children {
		if sibling == self {
			continue
		}
		if intersects(sibling, bounds, cuboid) {
			return nil, GeometryError{Conflict: sibling.id, Reason: "bounds overlap sibling subdivision"}
		}
	}
	return parent, nil
}

// encloses checks if outer fully contains inner, comparing in three
// dimensions only when both boxes are vertically bounded.
func encloses(outer cube.BBox, outerCuboid bool, inner cube.BBox, innerCuboid bool) bool {
	if outerCuboid && innerCuboid {
		return outer.EnclosesCuboid(inner)
	}
	if outerCuboid {
		// A full-column region cannot fit inside a vertically bounded one.
		return false
	}
	return outer.Encloses(inner)
}

// sizeRestricted reports if size limits are configured for the type passed.
func (m *Manager) sizeRestricted(t Type) bool {
	if t == TypeAdmin {
		return false
	}
	_, ok := m.conf.Limits[t]
	return ok
}

// persist saves the region through the provider, logging failures. Storage
// failures do not fail the in-memory operation.
func (m *Manager) persist(r *Region) {
	if err := m.conf.Provider.SaveRegion(r.Data()); err != nil {
		m.log.Error("save region record: "+err.Error(), "region", r.id)
	}
}

// load restores all stored regions of the world from the provider. Regions
// are created in a first pass and linked to their parents in a second, since
// records may be returned in any order.
func (m *Manager) load() {
	records, err := m.conf.Provider.LoadRegions(m.conf.World)
	if err != nil {
		m.log.Error("load regions: " + err.Error())
		return
	}
	parents := make(map[uuid.UUID]uuid.UUID)
	for _, d := range records {
		r, ok := regionFromData(d)
		if !ok {
			m.log.Error("load regions: record with unknown type", "region", d.ID, "type", d.Type)
			continue
		}
		m.seq++
		r.seq = m.seq
		m.regions[r.id] = r
		if d.Parent != uuid.Nil {
			parents[r.id] = d.Parent
		}
	}
	for id, parentID := range parents {
		r := m.regions[id]
		parent, ok := m.regions[parentID]
		if !ok {
			m.log.Error("load regions: parent record missing, dropping subdivision", "region", id, "parent", parentID)
			delete(m.regions, id)
			continue
		}
		r.parent = parent
		parent.children = append(parent.children, r)
	}
	for _, r := range m.regions {
		m.idx.insert(r)
	}
	if len(m.regions) > 0 {
		m.log.Debug("Loaded regions from provider.", "world", m.conf.World, "count", len(m.regions))
	}
}
