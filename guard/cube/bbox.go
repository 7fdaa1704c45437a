package cube

import "fmt"

// BBox is an axis aligned bounding box over integer block coordinates. The
// lesser corner is always component-wise smaller than or equal to the greater
// corner; Box normalises the corners passed to it.
type BBox struct {
	min, max Pos
}

// Box creates a BBox spanning the two corners passed. The corners may be
// passed in any order: the box normalises them into a lesser and a greater
// corner.
func Box(a, b Pos) BBox {
	box := BBox{min: a, max: b}
	for i := 0; i < 3; i++ {
		if box.min[i] > box.max[i] {
			box.min[i], box.max[i] = box.max[i], box.min[i]
		}
	}
	return box
}

// Min returns the lesser corner of the BBox.
func (box BBox) Min() Pos {
	return box.min
}

// Max returns the greater corner of the BBox.
func (box BBox) Max() Pos {
	return box.max
}

// String converts the BBox to a readable string of both corners.
func (box BBox) String() string {
	return fmt.Sprintf("%v-%v", box.min, box.max)
}

// Width returns the size of the BBox along the x axis, in blocks.
func (box BBox) Width() int {
	return box.max[0] - box.min[0] + 1
}

// Height returns the size of the BBox along the y axis, in blocks.
func (box BBox) Height() int {
	return box.max[1] - box.min[1] + 1
}

// Length returns the size of the BBox along the z axis, in blocks.
func (box BBox) Length() int {
	return box.max[2] - box.min[2] + 1
}

// Area returns the horizontal area covered by the BBox, ignoring the y axis.
func (box BBox) Area() int {
	return box.Width() * box.Length()
}

// Volume returns the amount of blocks within the BBox.
func (box BBox) Volume() int {
	return box.Area() * box.Height()
}

// Contains checks if a block position is within the BBox on all three axes.
func (box BBox) Contains(pos Pos) bool {
	return pos[0] >= box.min[0] && pos[0] <= box.max[0] &&
		pos[1] >= box.min[1] && pos[1] <= box.max[1] &&
		pos[2] >= box.min[2] && pos[2] <= box.max[2]
}

// ContainsColumn checks if a block position is within the BBox on the x and z
// axes, ignoring the y axis. It is used for claims that span the full
// vertical column of a world.
func (box BBox) ContainsColumn(pos Pos) bool {
	return pos[0] >= box.min[0] && pos[0] <= box.max[0] &&
		pos[2] >= box.min[2] && pos[2] <= box.max[2]
}

// Intersects checks if the BBox overlaps another BBox on the x and z axes.
// Vertical separation is handled by the cuboid flags of the claims holding
// the boxes, not here.
func (box BBox) Intersects(other BBox) bool {
	return box.min[0] <= other.max[0] && box.max[0] >= other.min[0] &&
		box.min[2] <= other.max[2] && box.max[2] >= other.min[2]
}

// IntersectsCuboid checks if the BBox overlaps another BBox on all three
// axes.
func (box BBox) IntersectsCuboid(other BBox) bool {
	return box.Intersects(other) &&
		box.min[1] <= other.max[1] && box.max[1] >= other.min[1]
}

// Encloses checks if the BBox fully contains another BBox on the x and z
// axes.
func (box BBox) Encloses(other BBox) bool {
	return box.min[0] <= other.min[0] && box.max[0] >= other.max[0] &&
		box.min[2] <= other.min[2] && box.max[2] >= other.max[2]
}

// EnclosesCuboid checks if the BBox fully contains another BBox on all three
// axes.
func (box BBox) EnclosesCuboid(other BBox) bool {
	return box.Encloses(other) &&
		box.min[1] <= other.min[1] && box.max[1] >= other.max[1]
}
