package claim

import (
	"testing"
	"time"

	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/google/uuid"
)

func TestExpiredRegions(t *testing.T) {
	m, _ := newTestManager(100000, nil)
	owner := uuid.New()
	now := time.Now()
	policy := ExpiryPolicy{Threshold: 30 * 24 * time.Hour, ChestThreshold: 7 * 24 * time.Hour, ChestArea: 100}

	stale, _ := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{19, 0, 19}), TypeBasic, false)
	stale.SetLastActive(now.Add(-31 * 24 * time.Hour))
	active, _ := m.Create(owner, cube.Box(cube.Pos{100, 0, 0}, cube.Pos{119, 0, 19}), TypeBasic, false)
	active.SetLastActive(now.Add(-1 * 24 * time.Hour))
	admin, _ := m.Create(uuid.New(), cube.Box(cube.Pos{200, 0, 0}, cube.Pos{219, 0, 19}), TypeAdmin, false)
	admin.SetLastActive(now.Add(-100 * 24 * time.Hour))

	expired := m.ExpiredRegions(now, policy)
	if len(expired) != 1 || expired[0] != stale {
		t.Fatalf("expected only the stale claim to expire, got %d regions", len(expired))
	}
}

func TestExpiredRegionsChestThreshold(t *testing.T) {
	m, _ := newTestManager(100000, nil)
	owner := uuid.New()
	now := time.Now()
	policy := ExpiryPolicy{Threshold: 30 * 24 * time.Hour, ChestThreshold: 7 * 24 * time.Hour, ChestArea: 100}

	// 10x10 = 100 blocks, at the chest area limit: the shorter threshold
	// applies.
	chest, _ := m.Create(owner, cube.Box(cube.Pos{0, 0, 0}, cube.Pos{9, 0, 9}), TypeBasic, false)
	chest.SetLastActive(now.Add(-8 * 24 * time.Hour))
	large, _ := m.Create(owner, cube.Box(cube.Pos{100, 0, 0}, cube.Pos{119, 0, 19}), TypeBasic, false)
	large.SetLastActive(now.Add(-8 * 24 * time.Hour))

	expired := m.ExpiredRegions(now, policy)
	if len(expired) != 1 || expired[0] != chest {
		t.Fatalf("expected only the chest-sized claim to expire, got %d regions", len(expired))
	}
}

func TestExpiredRegionsEconomyFlag(t *testing.T) {
	m, _ := newTestManager(100000, nil)
	r, _ := m.Create(uuid.New(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{19, 0, 19}), TypeBasic, false)
	r.Economy().Expired = true

	expired := m.ExpiredRegions(time.Now(), ExpiryPolicy{})
	if len(expired) != 1 || expired[0] != r {
		t.Fatalf("expected tax-expired claim to be selected, got %d regions", len(expired))
	}
}

func TestExpiredRegionsZeroThreshold(t *testing.T) {
	m, _ := newTestManager(100000, nil)
	r, _ := m.Create(uuid.New(), cube.Box(cube.Pos{0, 0, 0}, cube.Pos{19, 0, 19}), TypeBasic, false)
	r.SetLastActive(time.Now().Add(-365 * 24 * time.Hour))

	if expired := m.ExpiredRegions(time.Now(), ExpiryPolicy{}); len(expired) != 0 {
		t.Fatalf("expected zero thresholds to disable expiry, got %d regions", len(expired))
	}
}
