package claim

import (
	"testing"
	"time"

	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/google/uuid"
)

func TestTrustResolverOwner(t *testing.T) {
	owner := uuid.New()
	r := testRegion(TypeBasic, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), 1)
	r.owner = owner

	var res TrustResolver
	if got := res.Level(owner, r); got != TrustManager {
		t.Fatalf("expected owner to hold manager trust, got %v", got)
	}
	if got := res.Level(uuid.New(), r); got != TrustNone {
		t.Fatalf("expected stranger to hold no trust, got %v", got)
	}
	if got := res.Level(uuid.Nil, r); got != TrustNone {
		t.Fatalf("expected nil actor to hold no trust, got %v", got)
	}
}

func TestTrustResolverLevels(t *testing.T) {
	r := testRegion(TypeBasic, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), 1)
	actor := uuid.New()
	r.Trust(actor, TrustContainer)

	var res TrustResolver
	if got := res.Level(actor, r); got != TrustContainer {
		t.Fatalf("expected container trust, got %v", got)
	}
	if !res.HasTrust(actor, r, TrustAccess) {
		t.Fatalf("expected container trust to satisfy access")
	}
	if res.HasTrust(actor, r, TrustBuilder) {
		t.Fatalf("expected container trust not to satisfy builder")
	}
	if !res.HasTrust(uuid.New(), r, TrustNone) {
		t.Fatalf("expected TrustNone to always be satisfied")
	}

	r.UntrustAll(actor)
	if got := res.Level(actor, r); got != TrustNone {
		t.Fatalf("expected no trust after revocation, got %v", got)
	}
}

func TestTrustResolverParentInheritance(t *testing.T) {
	parent := testRegion(TypeBasic, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), 1)
	child := testRegion(TypeSubdivision, cube.Box(cube.Pos{8, 0, 8}, cube.Pos{15, 0, 15}), 2)
	child.parent, child.inheritParent = parent, true

	actor := uuid.New()
	parent.Trust(actor, TrustBuilder)

	var res TrustResolver
	if got := res.Level(actor, child); got != TrustBuilder {
		t.Fatalf("expected trust to flow from the parent, got %v", got)
	}
	if got := res.Level(parent.owner, child); got != TrustManager {
		t.Fatalf("expected parent owner to manage the subdivision, got %v", got)
	}

	child.inheritParent = false
	if got := res.Level(actor, child); got != TrustNone {
		t.Fatalf("expected non-inheriting subdivision to isolate trust, got %v", got)
	}
}

func TestTrustResolverBypass(t *testing.T) {
	r := testRegion(TypeAdmin, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), 1)
	r.owner = uuid.Nil
	admin := uuid.New()

	res := TrustResolver{Bypass: func(actor uuid.UUID) bool { return actor == admin }}
	if got := res.Level(admin, r); got != TrustManager {
		t.Fatalf("expected bypassing actor to resolve to manager, got %v", got)
	}
	if got := res.Level(uuid.New(), r); got != TrustNone {
		t.Fatalf("expected other actors to be unaffected by bypass, got %v", got)
	}
}

func TestRegionTouchBubbles(t *testing.T) {
	parent := testRegion(TypeBasic, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), 1)
	child := testRegion(TypeSubdivision, cube.Box(cube.Pos{8, 0, 8}, cube.Pos{15, 0, 15}), 2)
	child.parent = parent

	now := time.Now().Add(time.Hour)
	child.Touch(now)
	if !parent.LastActive().Equal(now) {
		t.Fatalf("expected activity to bubble to the parent")
	}
}
