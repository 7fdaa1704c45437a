package permission

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/google/uuid"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWorld(t *testing.T) (*claim.Manager, *claim.Region, uuid.UUID) {
	t.Helper()
	m := claim.Config{Log: discardLog(), World: "world"}.New()
	owner := uuid.New()
	r, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), claim.TypeBasic, false)
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	return m, r, owner
}

func newTestResolver(conf Config) *Resolver {
	if conf.Log == nil {
		conf.Log = discardLog()
	}
	return conf.New()
}

func TestResolverTrustShortCircuits(t *testing.T) {
	_, r, owner := newTestWorld(t)
	r.SetFlag("flag.block-break", claim.FlagDeny)
	res := newTestResolver(Config{})

	if got := res.Resolve(Event{Kind: BlockBreak, Region: r, Actor: owner}); got != claim.FlagAllow {
		t.Fatalf("expected owner to be allowed past the deny flag, got %v", got)
	}
	if got := res.Resolve(Event{Kind: BlockBreak, Region: r, Actor: uuid.New()}); got != claim.FlagDeny {
		t.Fatalf("expected stranger to hit the deny flag, got %v", got)
	}

	trusted := uuid.New()
	r.Trust(trusted, claim.TrustBuilder)
	if !res.Allowed(Event{Kind: BlockBreak, Region: r, Actor: trusted}) {
		t.Fatalf("expected builder trust to allow block breaking")
	}
	accessOnly := uuid.New()
	r.Trust(accessOnly, claim.TrustAccess)
	if res.Allowed(Event{Kind: BlockBreak, Region: r, Actor: accessOnly}) {
		t.Fatalf("expected access trust to be insufficient for block breaking")
	}
}

func TestResolverFlagSpecificity(t *testing.T) {
	_, r, _ := newTestWorld(t)
	r.SetFlag("flag.block-break", claim.FlagDeny)
	r.SetFlag("flag.block-break.minecraft.dirt", claim.FlagAllow)
	res := newTestResolver(Config{})
	stranger := uuid.New()

	if got := res.Resolve(Event{Kind: BlockBreak, Region: r, Actor: stranger, Target: "minecraft:dirt"}); got != claim.FlagAllow {
		t.Fatalf("expected specific allow to beat bare deny, got %v", got)
	}
	if got := res.Resolve(Event{Kind: BlockBreak, Region: r, Actor: stranger, Target: "minecraft:stone"}); got != claim.FlagDeny {
		t.Fatalf("expected bare deny for other targets, got %v", got)
	}
}

func TestResolverOverridesAreFinal(t *testing.T) {
	_, r, owner := newTestWorld(t)
	overrides := NewOverrides()
	overrides.Set("", claim.TypeBasic, "flag.explosion", claim.FlagDeny)
	res := newTestResolver(Config{Overrides: overrides})

	ev := Event{Kind: Explosion, Region: r, Actor: owner, CheckOverrides: true}
	if got := res.Resolve(ev); got != claim.FlagDeny {
		t.Fatalf("expected override deny to bind even the owner, got %v", got)
	}
	// Without the override tier the owner's manager trust applies again.
	ev.CheckOverrides = false
	r.SetFlag("flag.explosion", claim.FlagAllow)
	if got := res.Resolve(ev); got != claim.FlagAllow {
		t.Fatalf("expected owner flag to apply without overrides, got %v", got)
	}
}

func TestResolverWorldScopedOverride(t *testing.T) {
	_, r, _ := newTestWorld(t)
	overrides := NewOverrides()
	overrides.Set("", claim.TypeBasic, "flag.fire-spread", claim.FlagAllow)
	overrides.Set("world", claim.TypeBasic, "flag.fire-spread", claim.FlagDeny)
	res := newTestResolver(Config{Overrides: overrides})

	ev := Event{Kind: FireSpread, Region: r, CheckOverrides: true}
	if got := res.Resolve(ev); got != claim.FlagDeny {
		t.Fatalf("expected world-scoped override to win over the global one, got %v", got)
	}
}

type fakePerms struct {
	values map[string]claim.FlagValue
}

func (f fakePerms) Value(_ uuid.UUID, _ *claim.Region, permission string) claim.FlagValue {
	return f.values[permission]
}

func TestResolverUserPermissionsBeatFlags(t *testing.T) {
	_, r, _ := newTestWorld(t)
	r.SetFlag("flag.interact-inventory", claim.FlagAllow)
	res := newTestResolver(Config{
		UserPermissions: fakePerms{values: map[string]claim.FlagValue{"flag.interact-inventory": claim.FlagDeny}},
	})

	if got := res.Resolve(Event{Kind: InteractInventory, Region: r, Actor: uuid.New()}); got != claim.FlagDeny {
		t.Fatalf("expected actor permission to outrank the region flag, got %v", got)
	}
}

func TestResolverParentFlagInheritance(t *testing.T) {
	m, parent, owner := newTestWorld(t)
	parent.SetFlag("flag.fire-spread", claim.FlagDeny)
	child, err := m.Create(owner, cube.Box(cube.Pos{8, 0, 8}, cube.Pos{15, 0, 15}), claim.TypeSubdivision, false)
	if err != nil {
		t.Fatalf("create subdivision: %v", err)
	}
	res := newTestResolver(Config{})

	if got := res.Resolve(Event{Kind: FireSpread, Region: child}); got != claim.FlagDeny {
		t.Fatalf("expected subdivision to inherit the parent flag, got %v", got)
	}
	child.SetFlag("flag.fire-spread", claim.FlagAllow)
	if got := res.Resolve(Event{Kind: FireSpread, Region: child}); got != claim.FlagAllow {
		t.Fatalf("expected the subdivision's own flag to win, got %v", got)
	}
	child.SetFlag("flag.fire-spread", claim.FlagUndefined)
	child.SetInheritParent(false)
	if got := res.Resolve(Event{Kind: FireSpread, Region: child}); got != claim.FlagUndefined {
		t.Fatalf("expected non-inheriting subdivision to isolate flags, got %v", got)
	}
}

func TestResolverTypeDefaults(t *testing.T) {
	_, r, _ := newTestWorld(t)
	res := newTestResolver(Config{
		Defaults: map[claim.Type]map[string]claim.FlagValue{
			claim.TypeBasic: {"flag.entity-damage": claim.FlagDeny},
		},
	})

	if got := res.Resolve(Event{Kind: EntityDamage, Region: r, Actor: uuid.New()}); got != claim.FlagDeny {
		t.Fatalf("expected type default to apply, got %v", got)
	}
	// Defaults are matched by the bare permission only.
	if got := res.Resolve(Event{Kind: EntityDamage, Region: r, Actor: uuid.New(), Target: "minecraft:cow"}); got != claim.FlagDeny {
		t.Fatalf("expected bare default to match targeted events, got %v", got)
	}
}

func TestResolverUndefinedPolicy(t *testing.T) {
	m, r, _ := newTestWorld(t)
	res := newTestResolver(Config{})
	stranger := uuid.New()

	// Fail-open: an undefined result allows unless the kind denies by
	// default.
	if !res.Allowed(Event{Kind: FireSpread, Region: r}) {
		t.Fatalf("expected undefined fire spread to be allowed")
	}
	if res.Allowed(Event{Kind: Explosion, Region: r}) {
		t.Fatalf("expected undefined explosion to be denied by default")
	}
	if res.Allowed(Event{Kind: Explosion, Region: m.Wilderness(), Actor: stranger}) {
		t.Fatalf("expected wilderness explosion to follow the same fail-closed policy")
	}
	if got := res.Resolve(Event{Kind: BlockBreak, Region: nil}); got != claim.FlagUndefined {
		t.Fatalf("expected nil region to resolve undefined, got %v", got)
	}
}

func TestResolverBypassTrust(t *testing.T) {
	_, r, _ := newTestWorld(t)
	r.SetFlag("flag.block-break", claim.FlagDeny)
	admin := uuid.New()
	res := newTestResolver(Config{
		Trust: claim.TrustResolver{Bypass: func(actor uuid.UUID) bool { return actor == admin }},
	})

	if !res.Allowed(Event{Kind: BlockBreak, Region: r, Actor: admin}) {
		t.Fatalf("expected bypassing actor to be allowed everywhere")
	}
}
