package claim

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/dm-vev/claimguard/guard/ledger"
	"github.com/google/uuid"
)

// memProvider keeps region records in memory so that load behaviour can be
// tested without a database.
type memProvider struct {
	records map[uuid.UUID]Data
}

func newMemProvider() *memProvider {
	return &memProvider{records: make(map[uuid.UUID]Data)}
}

func (p *memProvider) LoadRegions(world string) ([]Data, error) {
	var out []Data
	for _, d := range p.records {
		if d.World == world {
			out = append(out, d)
		}
	}
	return out, nil
}

func (p *memProvider) SaveRegion(d Data) error {
	p.records[d.ID] = d
	return nil
}

func (p *memProvider) RemoveRegion(id uuid.UUID) error {
	delete(p.records, id)
	return nil
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(initialBlocks int, provider Provider) (*Manager, *ledger.Ledger) {
	led := ledger.Config{Log: discardLog(), InitialBlocks: initialBlocks}.New()
	m := Config{
		Log:   discardLog(),
		World: "world",
		Range: cube.Range{-64, 319},
		Limits: map[Type]SizeLimits{
			TypeBasic:       {MinWidth: 5, MinArea: 100, MaxArea: 10000},
			TypeSubdivision: {MinWidth: 1, MinArea: 1},
		},
		AbandonReturnRatio: 1,
		Ledger:             led,
		Provider:           provider,
	}.New()
	return m, led
}

func TestManagerCreateDebitsLedger(t *testing.T) {
	m, led := newTestManager(150, nil)
	owner := uuid.New()

	r, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), TypeBasic, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Bounds().Area() != 100 {
		t.Fatalf("expected area 100, got %d", r.Bounds().Area())
	}
	if got := led.Remaining(owner); got != 50 {
		t.Fatalf("expected 50 blocks remaining after debit, got %d", got)
	}
	if got := m.ClaimAt(cube.Pos{5, 64, 5}); got != r {
		t.Fatalf("expected created claim at inside position")
	}
	// Non-cuboid claims span the full vertical range.
	if got := m.ClaimAt(cube.Pos{5, -60, 5}); got != r {
		t.Fatalf("expected full-column claim to contain deep position")
	}
}

func TestManagerCreateRejectsOverlap(t *testing.T) {
	m, _ := newTestManager(1000, nil)
	first, err := m.Create(uuid.New(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), TypeBasic, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = m.Create(uuid.New(), cube.Box(cube.Pos{5, 0, 5}, cube.Pos{20, 0, 20}), TypeBasic, false)
	var geoErr GeometryError
	if !errors.As(err, &geoErr) {
		t.Fatalf("expected GeometryError, got %v", err)
	}
	if geoErr.Conflict != first.ID() {
		t.Fatalf("expected conflict with %v, got %v", first.ID(), geoErr.Conflict)
	}
	if m.Count() != 1 {
		t.Fatalf("expected failed create to leave no region behind")
	}
}

func TestManagerCreateSizeLimits(t *testing.T) {
	m, led := newTestManager(100000, nil)
	owner := uuid.New()

	_, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{3, 0, 30}), TypeBasic, false)
	var sizeErr SizeError
	if !errors.As(err, &sizeErr) || sizeErr.TooLarge {
		t.Fatalf("expected too-small SizeError, got %v", err)
	}

	_, err = m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{199, 0, 199}), TypeBasic, false)
	if !errors.As(err, &sizeErr) || !sizeErr.TooLarge {
		t.Fatalf("expected too-large SizeError, got %v", err)
	}
	if got := led.Remaining(owner); got != 100000 {
		t.Fatalf("expected failed creates not to debit, got %d remaining", got)
	}
}

func TestManagerCreateInsufficientBlocks(t *testing.T) {
	m, _ := newTestManager(50, nil)
	_, err := m.Create(uuid.New(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), TypeBasic, false)
	if !errors.Is(err, ErrInsufficientBlocks) {
		t.Fatalf("expected ErrInsufficientBlocks, got %v", err)
	}
}

func TestManagerCreateAdminIsFree(t *testing.T) {
	m, led := newTestManager(0, nil)
	owner := uuid.New()
	r, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{99, 0, 99}), TypeAdmin, false)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if r.Owner() != uuid.Nil {
		t.Fatalf("expected admin claim to be server-owned, got %v", r.Owner())
	}
	if got := led.Remaining(owner); got != 0 {
		t.Fatalf("expected admin create not to touch the ledger, got %d", got)
	}
	if r.AllowsExpiration() {
		t.Fatalf("expected admin claim not to expire")
	}
}

func TestManagerSubdivision(t *testing.T) {
	m, _ := newTestManager(10000, nil)
	owner := uuid.New()
	parent, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), TypeBasic, false)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	child, err := m.Create(owner, cube.Box(cube.Pos{8, 0, 8}, cube.Pos{15, 0, 15}), TypeSubdivision, false)
	if err != nil {
		t.Fatalf("create subdivision: %v", err)
	}
	if child.Parent() != parent {
		t.Fatalf("expected subdivision to be linked to enclosing claim")
	}
	if !child.InheritsParent() {
		t.Fatalf("expected subdivision to inherit from its parent")
	}
	if got := m.ClaimAt(cube.Pos{10, 64, 10}); got != child {
		t.Fatalf("expected subdivision to win the point query")
	}

	// A subdivision escaping the parent has no single enclosing region.
	if _, err = m.Create(owner, cube.Box(cube.Pos{60, 0, 60}, cube.Pos{70, 0, 70}), TypeSubdivision, false); err == nil {
		t.Fatalf("expected escaping subdivision to be rejected")
	}
	// Subdivisions cannot hold further subdivisions.
	if _, err = m.Create(owner, cube.Box(cube.Pos{9, 0, 9}, cube.Pos{12, 0, 12}), TypeSubdivision, false); err == nil {
		t.Fatalf("expected nested subdivision to be rejected")
	}
	// Siblings may not overlap each other.
	if _, err = m.Create(owner, cube.Box(cube.Pos{12, 0, 12}, cube.Pos{20, 0, 20}), TypeSubdivision, false); err == nil {
		t.Fatalf("expected overlapping sibling subdivision to be rejected")
	}
}

func TestManagerResize(t *testing.T) {
	m, led := newTestManager(1000, nil)
	owner := uuid.New()
	r, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), TypeBasic, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err = m.Resize(r.ID(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{19, 0, 9})); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if got := led.Remaining(owner); got != 1000-200 {
		t.Fatalf("expected grow to debit the difference, got %d remaining", got)
	}

	if _, err = m.Resize(r.ID(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9})); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if got := led.Remaining(owner); got != 900 {
		t.Fatalf("expected shrink to credit the difference, got %d remaining", got)
	}
	if got := m.ClaimAt(cube.Pos{15, 64, 5}); got.Type() != TypeWilderness {
		t.Fatalf("expected shrunk area to be wilderness again")
	}

	if _, err = m.Resize(uuid.New(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9})); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestManagerResizeKeepsChildrenContained(t *testing.T) {
	m, _ := newTestManager(100000, nil)
	owner := uuid.New()
	parent, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), TypeBasic, false)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := m.Create(owner, cube.Box(cube.Pos{40, 0, 40}, cube.Pos{50, 0, 50}), TypeSubdivision, false)
	if err != nil {
		t.Fatalf("create subdivision: %v", err)
	}

	_, err = m.Resize(parent.ID(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{31, 0, 31}))
	var geoErr GeometryError
	if !errors.As(err, &geoErr) || geoErr.Conflict != child.ID() {
		t.Fatalf("expected resize to fail on the escaping child, got %v", err)
	}
	if parent.Bounds().Max() != (cube.Pos{63, 319, 63}) {
		t.Fatalf("expected failed resize to leave bounds untouched, got %v", parent.Bounds())
	}
}

func TestManagerDeleteCascades(t *testing.T) {
	m, led := newTestManager(10000, nil)
	owner := uuid.New()
	parent, _ := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), TypeBasic, false)
	child, _ := m.Create(owner, cube.Box(cube.Pos{8, 0, 8}, cube.Pos{15, 0, 15}), TypeSubdivision, false)
	before := led.Remaining(owner)

	if err := m.Delete(parent.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := m.Region(child.ID()); ok {
		t.Fatalf("expected subdivision to be deleted with its parent")
	}
	if got := m.ClaimAt(cube.Pos{10, 64, 10}); got.Type() != TypeWilderness {
		t.Fatalf("expected deleted area to resolve to wilderness")
	}
	if got := led.Remaining(owner); got != before+64*64 {
		t.Fatalf("expected full refund of the parent area, got %d, want %d", got, before+64*64)
	}

	if err := m.Delete(parent.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second delete to return ErrNotFound, got %v", err)
	}
}

func TestManagerDeleteRefundRatio(t *testing.T) {
	led := ledger.Config{Log: discardLog(), InitialBlocks: 200}.New()
	m := Config{
		Log:                discardLog(),
		World:              "world",
		Limits:             map[Type]SizeLimits{TypeBasic: {MinWidth: 5, MinArea: 100}},
		AbandonReturnRatio: 0.5,
		Ledger:             led,
	}.New()
	owner := uuid.New()
	r, err := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), TypeBasic, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Delete(r.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// 100 spent, 50 refunded.
	if got := led.Remaining(owner); got != 150 {
		t.Fatalf("expected 150 blocks after half refund, got %d", got)
	}
}

func TestManagerLoadRelinksParents(t *testing.T) {
	provider := newMemProvider()
	m, _ := newTestManager(10000, provider)
	owner := uuid.New()
	parent, _ := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), TypeBasic, false)
	child, _ := m.Create(owner, cube.Box(cube.Pos{8, 0, 8}, cube.Pos{15, 0, 15}), TypeSubdivision, false)
	parent.Trust(uuid.New(), TrustBuilder)
	parent.SetFlag("flag.explosion", FlagDeny)
	m.Save(parent)

	restored, _ := newTestManager(10000, provider)
	if restored.Count() != 2 {
		t.Fatalf("expected 2 regions after reload, got %d", restored.Count())
	}
	rc, ok := restored.Region(child.ID())
	if !ok {
		t.Fatalf("expected subdivision to survive reload")
	}
	if rc.Parent() == nil || rc.Parent().ID() != parent.ID() {
		t.Fatalf("expected parent link to be restored")
	}
	rp, _ := restored.Region(parent.ID())
	if rp.Flag("flag.explosion") != FlagDeny {
		t.Fatalf("expected flags to survive reload")
	}
	if len(rp.TrustList(TrustBuilder)) != 1 {
		t.Fatalf("expected trust lists to survive reload")
	}
	if got := restored.ClaimAt(cube.Pos{10, 64, 10}); got.ID() != child.ID() {
		t.Fatalf("expected reloaded index to resolve the subdivision")
	}
}

func TestManagerLoadDropsOrphans(t *testing.T) {
	provider := newMemProvider()
	m, _ := newTestManager(10000, provider)
	owner := uuid.New()
	parent, _ := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{63, 0, 63}), TypeBasic, false)
	child, _ := m.Create(owner, cube.Box(cube.Pos{8, 0, 8}, cube.Pos{15, 0, 15}), TypeSubdivision, false)
	delete(provider.records, parent.ID())

	restored, _ := newTestManager(10000, provider)
	if restored.Count() != 0 {
		t.Fatalf("expected orphaned subdivision to be dropped, got %d regions", restored.Count())
	}
	if _, ok := restored.Region(child.ID()); ok {
		t.Fatalf("expected orphaned subdivision to be absent")
	}
}
