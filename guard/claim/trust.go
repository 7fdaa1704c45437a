package claim

import "github.com/google/uuid"

// TrustResolver evaluates the trust level an actor holds on a region. The
// zero value is ready to use and resolves explicit trust lists, ownership and
// parent inheritance.
type TrustResolver struct {
	// Bypass reports if the actor passed holds the administrative
	// ignore-claims capability. An actor for which Bypass returns true
	// resolves to TrustManager on every region. Bypass is consulted exactly
	// once per resolution so that a capability change mid-resolution cannot
	// produce inconsistent results across tiers.
	Bypass func(actor uuid.UUID) bool
}

// Level returns the highest trust level the actor holds on the region. The
// owner of a region implicitly holds TrustManager. If the region inherits
// from a parent, unresolved trust falls through to the parent; regions nest
// at most one subdivision deep, so the walk terminates after two hops.
func (t TrustResolver) Level(actor uuid.UUID, r *Region) TrustLevel {
	if r == nil || actor == uuid.Nil {
		return TrustNone
	}
	if t.Bypass != nil && t.Bypass(actor) {
		return TrustManager
	}
	for cur := r; cur != nil; {
		if cur.owner != uuid.Nil && cur.owner == actor {
			return TrustManager
		}
		for level := TrustManager; level >= TrustAccess; level-- {
			if cur.Trusted(actor, level) {
				return level
			}
		}
		if !cur.InheritsParent() {
			break
		}
		cur = cur.parent
	}
	return TrustNone
}

// HasTrust checks if the actor holds at least the trust level passed on the
// region.
func (t TrustResolver) HasTrust(actor uuid.UUID, r *Region, min TrustLevel) bool {
	if min == TrustNone {
		return true
	}
	return t.Level(actor, r) >= min
}
