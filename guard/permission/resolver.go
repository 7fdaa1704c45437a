package permission

import (
	"log/slog"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/google/uuid"
)

// UserPermissions is an actor-scoped permission store, such as one backed by
// a permission plugin. Values are scoped to the context of a region: the
// resolver consults the parent's context before a subdivision's own when the
// subdivision inherits from its parent.
type UserPermissions interface {
	// Value returns the value of the permission string for the actor within
	// the context of the region passed, or claim.FlagUndefined if the store
	// holds no entry for it.
	Value(actor uuid.UUID, region *claim.Region, permission string) claim.FlagValue
}

// Event is one world-mutation event to be resolved against a region.
type Event struct {
	// Kind is the category of the event.
	Kind Kind
	// Region is the region the event happens in, as returned by
	// Manager.ClaimAt. It must not be nil; pass the wilderness region for
	// unclaimed positions.
	Region *claim.Region
	// Target is the identifier of the object acted upon, such as
	// "minecraft:chest". It may be empty.
	Target string
	// Source is the identifier of the object causing the event, such as
	// "minecraft:tnt". It may be empty.
	Source string
	// Actor is the player performing the action, or uuid.Nil for events
	// without an acting player.
	Actor uuid.UUID
	// CheckOverrides makes the resolver consult the administrative override
	// tier first. Event dispatch sets this; internal queries that must see
	// the owner-configured state leave it false.
	CheckOverrides bool
	// Tick is the current world tick, used to throttle deny logging of
	// high-frequency kinds.
	Tick int64
}

// Config holds the options of a Resolver.
type Config struct {
	// Log is the logger deny audit entries are written to. If nil, Log is
	// set to slog.Default().
	Log *slog.Logger
	// Trust resolves actor trust levels for the trust tier.
	Trust claim.TrustResolver
	// Overrides is the administrative override store. If nil, the override
	// tier is skipped.
	Overrides *Overrides
	// UserPermissions is the actor-scoped permission store. If nil, the
	// actor permission tier is skipped.
	UserPermissions UserPermissions
	// Defaults holds the flag defaults per claim type, the factory settings
	// of a fresh claim, keyed by bare permission string.
	Defaults map[claim.Type]map[string]claim.FlagValue
	// DenyLogWindow is the number of ticks within which repeated denials of
	// a high-frequency kind in the same claim are logged only once.
	// Defaults to 100.
	DenyLogWindow int64
}

// New creates a Resolver using the settings of conf.
func (conf Config) New() *Resolver {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.DenyLogWindow <= 0 {
		conf.DenyLogWindow = 100
	}
	return &Resolver{
		conf:  conf,
		audit: newDenyLog(conf.Log, conf.DenyLogWindow),
	}
}

// Resolver answers whether a world event is permitted in a region. A
// Resolver must only be used from the goroutine designated for world events;
// resolution never blocks and never returns an error, so a decision is
// always available synchronously.
type Resolver struct {
	conf  Config
	audit *denyLog
}

// Resolve walks the resolution tiers for the event passed and returns the
// first defined value. The override tier is final when it matches: it is
// returned without consulting trust, flags or defaults. An undefined result
// leaves the decision to the caller's fail-open policy; use Allowed for the
// combined answer.
func (r *Resolver) Resolve(ev Event) claim.FlagValue {
	region := ev.Region
	if region == nil {
		return claim.FlagUndefined
	}
	key := NewKey(ev.Kind, ev.Target, ev.Source)
	if key.Malformed() {
		r.conf.Log.Debug("Malformed event identifier degraded to empty.", "kind", ev.Kind.Name, "target", ev.Target, "source", ev.Source)
	}
	candidates := key.Candidates()

	// Tier 1: administrative overrides. A match is final.
	if ev.CheckOverrides && region.AllowsFlagOverrides() {
		if v, permission := r.conf.Overrides.value(region.World(), region.Type(), candidates); v != claim.FlagUndefined {
			if v == claim.FlagDeny {
				r.audit.record(ev, permission, "override")
			}
			return v
		}
	}

	// Tier 2: actor trust. Sufficient trust short-circuits to allow.
	if ev.Actor != uuid.Nil && ev.Kind.Trust != claim.TrustNone {
		if r.conf.Trust.HasTrust(ev.Actor, region, ev.Kind.Trust) {
			return claim.FlagAllow
		}
	}

	// Tier 3: actor-scoped permissions, parent context first for inheriting
	// subdivisions.
	if r.conf.UserPermissions != nil && ev.Actor != uuid.Nil {
		contexts := make([]*claim.Region, 0, 2)
		if region.InheritsParent() {
			contexts = append(contexts, region.Parent())
		}
		contexts = append(contexts, region)
		for _, ctx := range contexts {
			for _, permission := range candidates {
				if v := r.conf.UserPermissions.Value(ev.Actor, ctx, permission); v != claim.FlagUndefined {
					if v == claim.FlagDeny {
						r.audit.record(ev, permission, "user")
					}
					return v
				}
			}
		}
	}

	// Tier 4: the region's own flags, most specific key first, falling
	// through to the parent's flags for inheriting subdivisions.
	for cur := region; cur != nil; {
		for _, permission := range candidates {
			if v := cur.Flag(permission); v != claim.FlagUndefined {
				if v == claim.FlagDeny {
					r.audit.record(ev, permission, "flag")
				}
				return v
			}
		}
		if !cur.InheritsParent() {
			break
		}
		cur = cur.Parent()
	}

	// Tier 5: type defaults.
	if defaults, ok := r.conf.Defaults[region.Type()]; ok {
		if v, ok := defaults[key.Bare()]; ok && v != claim.FlagUndefined {
			if v == claim.FlagDeny {
				r.audit.record(ev, key.Bare(), "default")
			}
			return v
		}
	}
	return claim.FlagUndefined
}

// Allowed resolves the event and applies the caller-side undefined policy:
// an undefined result allows the event unless its kind is marked
// deny-by-default.
func (r *Resolver) Allowed(ev Event) bool {
	switch r.Resolve(ev) {
	case claim.FlagAllow:
		return true
	case claim.FlagDeny:
		return false
	}
	if ev.Kind.DenyByDefault {
		r.audit.record(ev, NewKey(ev.Kind, ev.Target, ev.Source).Bare(), "policy")
		return false
	}
	return true
}
