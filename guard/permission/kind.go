// Package permission implements the permission decision engine of claimguard.
// Given a world event, the region it happens in and the objects and actor
// involved, a Resolver walks a fixed sequence of tiers, administrative
// overrides, actor trust, actor permissions, region flags and type defaults,
// and produces an allow, deny or undefined decision.
package permission

import "github.com/dm-vev/claimguard/guard/claim"

// Kind describes one category of world event that may be gated by claims.
// The set below is representative rather than exhaustive; hosts may define
// further kinds for events the core does not know about.
type Kind struct {
	// Name is the event category as it appears in composed permission
	// strings, such as "block-break".
	Name string
	// Trust is the minimum trust level that short-circuits resolution to
	// allow for the acting player. TrustNone disables the trust tier for the
	// kind.
	Trust claim.TrustLevel
	// DenyByDefault inverts the fail-open policy: an undefined result denies
	// the event instead of allowing it.
	DenyByDefault bool
	// HighFrequency marks kinds fired many times per second, such as
	// collision and neighbour-notify events. Deny logging for these kinds is
	// throttled to one entry per time window.
	HighFrequency bool
}

// Builtin event kinds.
var (
	BlockBreak        = Kind{Name: "block-break", Trust: claim.TrustBuilder}
	BlockPlace        = Kind{Name: "block-place", Trust: claim.TrustBuilder}
	BlockModify       = Kind{Name: "block-modify", Trust: claim.TrustBuilder}
	InteractBlock     = Kind{Name: "interact-block", Trust: claim.TrustAccess}
	InteractInventory = Kind{Name: "interact-inventory", Trust: claim.TrustContainer}
	InteractEntity    = Kind{Name: "interact-entity", Trust: claim.TrustContainer}
	ItemUse           = Kind{Name: "item-use", Trust: claim.TrustAccess}
	ItemDrop          = Kind{Name: "item-drop", Trust: claim.TrustAccess}
	ItemPickup        = Kind{Name: "item-pickup", Trust: claim.TrustAccess}
	EntityDamage      = Kind{Name: "entity-damage", Trust: claim.TrustBuilder}
	EntityRiding      = Kind{Name: "entity-riding", Trust: claim.TrustAccess}
	EntitySpawn       = Kind{Name: "entity-spawn"}
	Explosion         = Kind{Name: "explosion", DenyByDefault: true}
	ExplosionBlock    = Kind{Name: "explosion-block", DenyByDefault: true}
	FireSpread        = Kind{Name: "fire-spread"}
	LiquidFlow        = Kind{Name: "liquid-flow", HighFrequency: true}
	CollideBlock      = Kind{Name: "collide-block", Trust: claim.TrustAccess, HighFrequency: true}
	CollideEntity     = Kind{Name: "collide-entity", Trust: claim.TrustAccess, HighFrequency: true}
	BlockNotify       = Kind{Name: "block-notify", HighFrequency: true}
	EnterClaim        = Kind{Name: "enter-claim", Trust: claim.TrustAccess}
	ExitClaim         = Kind{Name: "exit-claim", Trust: claim.TrustAccess}
	Portal            = Kind{Name: "portal-use", Trust: claim.TrustAccess}
	ProjectileImpact  = Kind{Name: "projectile-impact-block", Trust: claim.TrustBuilder}
)
