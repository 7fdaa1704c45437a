package claim

// Type classifies a Region. The type determines which size limits apply to
// the region, which flag defaults it starts out with and whether it consumes
// claim blocks from its owner's ledger.
type Type uint8

const (
	// TypeWilderness is the implicit region covering all unclaimed space in a
	// world. Exactly one wilderness region exists per world and it has no
	// owner.
	TypeWilderness Type = iota
	// TypeAdmin is a region owned by the server rather than a player. Admin
	// regions are exempt from claim block budgets and never expire.
	TypeAdmin
	// TypeBasic is a standard player claim.
	TypeBasic
	// TypeTown is a larger player claim intended to hold the claims of
	// multiple players.
	TypeTown
	// TypeSubdivision is a region nested fully inside a parent region,
	// optionally inheriting the parent's flags and trust.
	TypeSubdivision
)

// String returns the lowercase name of the Type.
func (t Type) String() string {
	switch t {
	case TypeWilderness:
		return "wilderness"
	case TypeAdmin:
		return "admin"
	case TypeBasic:
		return "basic"
	case TypeTown:
		return "town"
	case TypeSubdivision:
		return "subdivision"
	}
	return "unknown"
}

// TypeByName returns the Type with the name passed. The second return value
// is false if no type with that name exists.
func TypeByName(name string) (Type, bool) {
	switch name {
	case "wilderness":
		return TypeWilderness, true
	case "admin":
		return TypeAdmin, true
	case "basic":
		return TypeBasic, true
	case "town":
		return TypeTown, true
	case "subdivision":
		return TypeSubdivision, true
	}
	return 0, false
}

// TrustLevel is a capability tier grantable to an actor on a region. A higher
// trust level does not imply membership of the lower lists: each list is
// granted independently, but resolution checks from the highest level down.
type TrustLevel uint8

const (
	// TrustNone is the zero TrustLevel, held by actors without any trust on a
	// region.
	TrustNone TrustLevel = iota
	// TrustAccess allows basic interaction inside a region, such as using
	// doors and buttons.
	TrustAccess
	// TrustContainer additionally allows opening inventories such as chests.
	TrustContainer
	// TrustBuilder additionally allows placing and breaking blocks.
	TrustBuilder
	// TrustManager additionally allows granting trust to others and changing
	// region flags. The owner of a region implicitly holds TrustManager.
	TrustManager
)

// String returns the lowercase name of the TrustLevel.
func (l TrustLevel) String() string {
	switch l {
	case TrustNone:
		return "none"
	case TrustAccess:
		return "access"
	case TrustContainer:
		return "container"
	case TrustBuilder:
		return "builder"
	case TrustManager:
		return "manager"
	}
	return "unknown"
}

// TrustLevelByName returns the TrustLevel with the name passed. The second
// return value is false if no level with that name exists.
func TrustLevelByName(name string) (TrustLevel, bool) {
	switch name {
	case "none":
		return TrustNone, true
	case "access":
		return TrustAccess, true
	case "container":
		return TrustContainer, true
	case "builder", "build":
		return TrustBuilder, true
	case "manager", "manage":
		return TrustManager, true
	}
	return 0, false
}

// FlagValue is the tri-state value of a region flag. The zero value is
// FlagUndefined, which makes a flag lookup fall through to the next
// resolution tier.
type FlagValue int8

const (
	// FlagUndefined leaves the decision to a lower resolution tier.
	FlagUndefined FlagValue = iota
	// FlagAllow explicitly permits the action.
	FlagAllow
	// FlagDeny explicitly forbids the action.
	FlagDeny
)

// String returns the lowercase name of the FlagValue.
func (v FlagValue) String() string {
	switch v {
	case FlagAllow:
		return "allow"
	case FlagDeny:
		return "deny"
	}
	return "undefined"
}

// FlagValueByName returns the FlagValue with the name passed. The second
// return value is false if no value with that name exists.
func FlagValueByName(name string) (FlagValue, bool) {
	switch name {
	case "allow", "true":
		return FlagAllow, true
	case "deny", "false":
		return FlagDeny, true
	case "undefined", "none", "unset":
		return FlagUndefined, true
	}
	return 0, false
}
