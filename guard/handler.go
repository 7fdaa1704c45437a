package guard

import (
	"time"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/dm-vev/claimguard/guard/permission"
	"github.com/google/uuid"
)

// Event is one world-mutation event forwarded by the host. The host builds
// one from each of its own handler hooks and cancels the hook if Allowed
// returns false.
type Event struct {
	// World is the name of the world the event happens in.
	World string
	// Kind is the category of the event.
	Kind permission.Kind
	// Pos is the block position the event happens at.
	Pos cube.Pos
	// Target is the identifier of the object acted upon. It may be empty.
	Target string
	// Source is the identifier of the object causing the event. It may be
	// empty.
	Source string
	// Actor is the player performing the action, or uuid.Nil for events
	// without an acting player, such as liquid flow.
	Actor uuid.UUID
	// Tick is the current tick of the world, used to throttle repeated deny
	// logging of high-frequency kinds.
	Tick int64
}

// Allowed reports if the event passed is permitted. It resolves the region
// at the event's position and runs the permission tiers against it. Events
// of owners inside their own claims refresh the claim's activity time, so
// claims in active use never expire.
//
// Allowed must be called on the goroutine designated for the event's world.
func (e *Engine) Allowed(ev Event) bool {
	if e.Mode(ev.World) == ModeDisabled {
		return true
	}
	region := e.World(ev.World).ClaimAt(ev.Pos)
	if ev.Actor != uuid.Nil && region.Owner() == ev.Actor {
		region.Touch(time.Now())
	}
	if !e.resolver.Allowed(permission.Event{
		Kind:           ev.Kind,
		Region:         region,
		Target:         ev.Target,
		Source:         ev.Source,
		Actor:          ev.Actor,
		CheckOverrides: true,
		Tick:           ev.Tick,
	}) {
		return false
	}
	// Creative-mode worlds confine building to claims: trust-gated build
	// events in the wilderness are denied unless the actor bypasses claims.
	if region.Type() == claim.TypeWilderness && e.Mode(ev.World) == ModeCreative &&
		ev.Kind.Trust >= claim.TrustBuilder && !e.IgnoringClaims(ev.Actor) {
		return false
	}
	return true
}

// ClaimAt returns the region containing the block position passed in the
// world named. It never returns nil: unclaimed positions resolve to the
// world's wilderness region.
func (e *Engine) ClaimAt(world string, pos cube.Pos) *claim.Region {
	return e.World(world).ClaimAt(pos)
}
