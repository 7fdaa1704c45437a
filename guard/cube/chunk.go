package cube

// ChunkPos holds the position of a 16x16 chunk of a world. The first value is
// the x coordinate, the second the z coordinate. Block coordinates map to
// chunk coordinates by an arithmetic shift right of four.
type ChunkPos [2]int32

// X returns the x coordinate of the chunk position.
func (p ChunkPos) X() int32 {
	return p[0]
}

// Z returns the z coordinate of the chunk position.
func (p ChunkPos) Z() int32 {
	return p[1]
}

// Packed returns the ChunkPos packed into a single int64, suitable as a key
// in integer keyed maps.
func (p ChunkPos) Packed() int64 {
	return int64(p[0])<<32 | int64(uint32(p[1]))
}

// ChunkPosFromPos returns the position of the chunk that the block position
// passed falls in.
func ChunkPosFromPos(pos Pos) ChunkPos {
	return ChunkPos{int32(pos[0] >> 4), int32(pos[2] >> 4)}
}

// Chunks calls f for the position of every chunk that the BBox passed
// touches. Iteration stops early if f returns false.
func Chunks(box BBox, f func(pos ChunkPos) bool) {
	minX, maxX := int32(box.Min()[0]>>4), int32(box.Max()[0]>>4)
	minZ, maxZ := int32(box.Min()[2]>>4), int32(box.Max()[2]>>4)
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			if !f(ChunkPos{x, z}) {
				return
			}
		}
	}
}
