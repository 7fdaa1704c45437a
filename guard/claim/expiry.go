package claim

import "time"

// ExpiryPolicy holds the inactivity thresholds of the expiration sweep.
type ExpiryPolicy struct {
	// Threshold is the inactivity duration after which a region expires. A
	// value of 0 disables expiry for regions governed by it.
	Threshold time.Duration
	// ChestThreshold is the separate, usually shorter threshold applied to
	// regions no larger than ChestArea, the small starter claims created
	// around a first placed chest.
	ChestThreshold time.Duration
	// ChestArea is the maximum horizontal area of a region for
	// ChestThreshold to apply.
	ChestArea int
}

// ExpiredRegions returns the regions whose owners have been inactive longer
// than the applicable threshold of the policy passed, and regions marked
// expired by a tax task. Admin regions, subdivisions and regions whose
// policy forbids expiration are never returned. The selection runs over a
// snapshot of the region list, so the caller may delete the returned regions
// while iterating. Like every other Manager method, ExpiredRegions must only
// be called from the world's goroutine.
func (m *Manager) ExpiredRegions(now time.Time, p ExpiryPolicy) []*Region {
	var out []*Region
	for _, r := range m.Regions() {
		if r.t == TypeAdmin || r.t == TypeSubdivision || !r.allowExpire {
			continue
		}
		if r.economy.Expired {
			out = append(out, r)
			continue
		}
		threshold := p.Threshold
		if p.ChestArea > 0 && r.bounds.Area() <= p.ChestArea && p.ChestThreshold > 0 {
			threshold = p.ChestThreshold
		}
		if threshold <= 0 {
			continue
		}
		if now.Sub(r.lastActive) > threshold {
			out = append(out, r)
		}
	}
	return out
}
