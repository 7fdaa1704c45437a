package permission

import "github.com/dm-vev/claimguard/guard/claim"

// overrideScope keys override entries by claim type and world. An entry with
// an empty world applies to every world.
type overrideScope struct {
	world string
	t     claim.Type
}

// Overrides is the administrative override store. Entries outrank every
// other resolution tier, including the region owner's own flags, so that
// server operators can forcibly allow or ban specific interactions per claim
// type and world. Overrides are populated from configuration at startup and
// treated as immutable afterwards.
type Overrides struct {
	entries map[overrideScope]map[string]claim.FlagValue
}

// NewOverrides creates an empty override store.
func NewOverrides() *Overrides {
	return &Overrides{entries: make(map[overrideScope]map[string]claim.FlagValue)}
}

// Set stores an override for the permission string passed, scoped to the
// claim type and world passed. An empty world scopes the override to all
// worlds. Setting claim.FlagUndefined removes the entry.
func (o *Overrides) Set(world string, t claim.Type, permission string, v claim.FlagValue) {
	scope := overrideScope{world: world, t: t}
	if v == claim.FlagUndefined {
		delete(o.entries[scope], permission)
		return
	}
	if o.entries[scope] == nil {
		o.entries[scope] = make(map[string]claim.FlagValue)
	}
	o.entries[scope][permission] = v
}

// value returns the first defined override for the candidate permission
// strings passed, preferring the world-scoped entry over the global one per
// candidate.
func (o *Overrides) value(world string, t claim.Type, candidates []string) (claim.FlagValue, string) {
	if o == nil {
		return claim.FlagUndefined, ""
	}
	scoped, global := o.entries[overrideScope{world: world, t: t}], o.entries[overrideScope{t: t}]
	for _, permission := range candidates {
		if v, ok := scoped[permission]; ok {
			return v, permission
		}
		if v, ok := global[permission]; ok {
			return v, permission
		}
	}
	return claim.FlagUndefined, ""
}
