package claim

import (
	"time"

	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/google/uuid"
)

// Data is the serialisable snapshot of a Region. A provider stores and loads
// Data records; Manager converts between Data and live regions, re-linking
// parents and children after all regions of a world have been loaded.
type Data struct {
	ID     uuid.UUID `json:"id"`
	World  string    `json:"world"`
	Min    [3]int    `json:"min"`
	Max    [3]int    `json:"max"`
	Cuboid bool      `json:"cuboid"`
	Type   string    `json:"type"`
	Owner  uuid.UUID `json:"owner"`
	Parent uuid.UUID `json:"parent"`

	Trust map[string][]uuid.UUID `json:"trust,omitempty"`
	Flags map[string]string      `json:"flags,omitempty"`

	InheritParent  bool `json:"inherit_parent"`
	AllowOverrides bool `json:"allow_overrides"`
	AllowExpire    bool `json:"allow_expiration"`
	Resizable      bool `json:"resizable"`
	RequiresBlocks bool `json:"requires_blocks"`
	SizeRestricted bool `json:"size_restricted"`

	Created    time.Time `json:"created"`
	LastActive time.Time `json:"last_active"`

	Economy EconomyData `json:"economy"`
}

// Data returns the serialisable snapshot of the region.
func (r *Region) Data() Data {
	d := Data{
		ID:             r.id,
		World:          r.world,
		Min:            [3]int(r.bounds.Min()),
		Max:            [3]int(r.bounds.Max()),
		Cuboid:         r.cuboid,
		Type:           r.t.String(),
		Owner:          r.owner,
		InheritParent:  r.inheritParent,
		AllowOverrides: r.allowOverrides,
		AllowExpire:    r.allowExpire,
		Resizable:      r.resizable,
		RequiresBlocks: r.requiresBlocks,
		SizeRestricted: r.sizeRestricted,
		Created:        r.created,
		LastActive:     r.lastActive,
		Economy:        r.economy,
	}
	if r.parent != nil {
		d.Parent = r.parent.id
	}
	for level := TrustAccess; level <= TrustManager; level++ {
		if len(r.trust[level-1]) == 0 {
			continue
		}
		if d.Trust == nil {
			d.Trust = make(map[string][]uuid.UUID, 4)
		}
		d.Trust[level.String()] = r.TrustList(level)
	}
	if len(r.flags) > 0 {
		d.Flags = make(map[string]string, len(r.flags))
		for k, v := range r.flags {
			d.Flags[k] = v.String()
		}
	}
	return d
}

// regionFromData rebuilds a Region from its snapshot. Parent and child links
// are left unset; the manager re-links them once all regions are present.
func regionFromData(d Data) (*Region, bool) {
	t, ok := TypeByName(d.Type)
	if !ok {
		return nil, false
	}
	r := &Region{
		id:             d.ID,
		world:          d.World,
		bounds:         cube.Box(cube.Pos(d.Min), cube.Pos(d.Max)),
		cuboid:         d.Cuboid,
		t:              t,
		owner:          d.Owner,
		inheritParent:  d.InheritParent,
		allowOverrides: d.AllowOverrides,
		allowExpire:    d.AllowExpire,
		resizable:      d.Resizable,
		requiresBlocks: d.RequiresBlocks,
		sizeRestricted: d.SizeRestricted,
		created:        d.Created,
		lastActive:     d.LastActive,
		economy:        d.Economy,
	}
	for name, actors := range d.Trust {
		level, ok := TrustLevelByName(name)
		if !ok {
			continue
		}
		for _, actor := range actors {
			r.Trust(actor, level)
		}
	}
	for permission, name := range d.Flags {
		if v, ok := FlagValueByName(name); ok {
			r.SetFlag(permission, v)
		}
	}
	return r, true
}
