package claim

import (
	"slices"

	"github.com/brentp/intintmap"
	"github.com/dm-vev/claimguard/guard/cube"
)

// spatialIndex maps chunk positions to the regions intersecting them. Every
// region, including subdivisions, is registered in each 16x16 chunk bucket
// its bounds touch, so that a point query only has to scan the typically
// small candidate list of one bucket.
//
// Bucket slots are looked up through an intintmap keyed by the packed chunk
// position, which stays allocation-free on the hot query path.
type spatialIndex struct {
	slots   *intintmap.Map
	buckets [][]*Region
	free    []int64

	wilderness *Region
}

// newSpatialIndex creates a spatialIndex with the wilderness region passed as
// the fallback of every point query.
func newSpatialIndex(wilderness *Region) *spatialIndex {
	return &spatialIndex{
		slots:      intintmap.New(1024, 0.6),
		wilderness: wilderness,
	}
}

// insert registers the region in every chunk bucket its bounds touch.
func (idx *spatialIndex) insert(r *Region) {
	cube.Chunks(r.bounds, func(pos cube.ChunkPos) bool {
		slot := idx.bucket(pos)
		idx.buckets[slot] = append(idx.buckets[slot], r)
		return true
	})
}

// remove deletes the region from every chunk bucket its bounds touch. Empty
// buckets are returned to the free list.
func (idx *spatialIndex) remove(r *Region) {
	cube.Chunks(r.bounds, func(pos cube.ChunkPos) bool {
		key := pos.Packed()
		slot, ok := idx.slots.Get(key)
		if !ok {
			return true
		}
		idx.buckets[slot] = slices.DeleteFunc(idx.buckets[slot], func(other *Region) bool {
			return other == r
		})
		if len(idx.buckets[slot]) == 0 {
			idx.slots.Del(key)
			idx.free = append(idx.free, slot)
		}
		return true
	})
}

// resize moves the region from its current buckets into those of the new
// bounds. The caller must have validated the new bounds beforehand.
func (idx *spatialIndex) resize(r *Region, bounds cube.BBox) {
	idx.remove(r)
	r.bounds = bounds
	idx.insert(r)
}

// queryAt returns the region containing the block position passed. Among the
// candidates of the position's bucket, the region with the smallest
// horizontal area wins, so that a subdivision is matched before the parent it
// is nested in. Ties are broken towards the most recently created region.
// The wilderness region is returned when no candidate contains the position.
func (idx *spatialIndex) queryAt(pos cube.Pos) *Region {
	slot, ok := idx.slots.Get(cube.ChunkPosFromPos(pos).Packed())
	if !ok {
		return idx.wilderness
	}
	best := idx.wilderness
	for _, r := range idx.buckets[slot] {
		if !r.Contains(pos) {
			continue
		}
		if best.t == TypeWilderness {
			best = r
			continue
		}
		if a, b := r.area(), best.area(); a < b || (a == b && r.seq > best.seq) {
			best = r
		}
	}
	return best
}

// queryOverlapping returns every top-level region whose bounds intersect the
// box passed. It is used at creation and resize time to reject illegal
// overlaps; subdivisions are not returned since their containment is governed
// by their parent.
func (idx *spatialIndex) queryOverlapping(bounds cube.BBox, cuboid bool) []*Region {
	seen := make(map[*Region]struct{})
	var out []*Region
	cube.Chunks(bounds, func(pos cube.ChunkPos) bool {
		slot, ok := idx.slots.Get(pos.Packed())
		if !ok {
			return true
		}
		for _, r := range idx.buckets[slot] {
			if r.t == TypeSubdivision {
				continue
			}
			if _, ok := seen[r]; ok {
				continue
			}
			if intersects(r, bounds, cuboid) {
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
		return true
	})
	return out
}

// intersects checks if the region overlaps the proposed bounds, taking the
// cuboid flags of both sides into account: a pair only separates vertically
// if both are bounded in y.
func intersects(r *Region, bounds cube.BBox, cuboid bool) bool {
	if r.cuboid && cuboid {
		return r.bounds.IntersectsCuboid(bounds)
	}
	return r.bounds.Intersects(bounds)
}

// bucket returns the slot of the bucket at the chunk position passed,
// creating one if none exists yet.
func (idx *spatialIndex) bucket(pos cube.ChunkPos) int64 {
	key := pos.Packed()
	if slot, ok := idx.slots.Get(key); ok {
		return slot
	}
	var slot int64
	if n := len(idx.free); n > 0 {
		slot = idx.free[n-1]
		idx.free = idx.free[:n-1]
	} else {
		slot = int64(len(idx.buckets))
		idx.buckets = append(idx.buckets, nil)
	}
	idx.slots.Put(key, slot)
	return slot
}
