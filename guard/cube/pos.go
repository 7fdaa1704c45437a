package cube

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pos holds the position of a block within a world. The position is held as
// integer x, y and z coordinates.
type Pos [3]int

// X returns the x coordinate of the block position.
func (p Pos) X() int {
	return p[0]
}

// Y returns the y coordinate of the block position.
func (p Pos) Y() int {
	return p[1]
}

// Z returns the z coordinate of the block position.
func (p Pos) Z() int {
	return p[2]
}

// String converts the Pos to a string in the format (1,2,3) and returns it.
func (p Pos) String() string {
	return fmt.Sprintf("(%v,%v,%v)", p[0], p[1], p[2])
}

// Add adds two block positions together and returns a new one with the sum of
// both positions.
func (p Pos) Add(other Pos) Pos {
	return Pos{p[0] + other[0], p[1] + other[1], p[2] + other[2]}
}

// Vec3 returns a vector of the centre of the block position.
func (p Pos) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]) + 0.5, float64(p[1]) + 0.5, float64(p[2]) + 0.5}
}

// OutOfBounds checks if the position passed is out of the vertical Range r.
func (p Pos) OutOfBounds(r Range) bool {
	return p[1] > r[1] || p[1] < r[0]
}

// PosFromVec3 returns the block position of the mgl64.Vec3 passed. Note that
// for negative coordinates, this is not a simple truncation.
func PosFromVec3(vec mgl64.Vec3) Pos {
	return Pos{floorInt(vec[0]), floorInt(vec[1]), floorInt(vec[2])}
}

func floorInt(v float64) int {
	i := int(v)
	if v < float64(i) {
		return i - 1
	}
	return i
}

// Range represents the height range of a world in blocks. The first value of
// the Range holds the minimum y value, the second value holds the maximum y
// value.
type Range [2]int

// Min returns the minimum y value of the Range.
func (r Range) Min() int {
	return r[0]
}

// Max returns the maximum y value of the Range.
func (r Range) Max() int {
	return r[1]
}

// Height returns the total height of the Range, being r.Max() - r.Min().
func (r Range) Height() int {
	return r[1] - r[0]
}
