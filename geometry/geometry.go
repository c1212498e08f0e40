// Package geometry holds the static piece table: the seven shape families,
// their symmetry counts and the packed cell sets of every rotation state.
package geometry

// Color is the value stored in a playfield cell. Zero means the cell is empty.
type Color uint8

const (
	Empty Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
)

// Hues lists every non-empty color a piece can take.
var Hues = [...]Color{Red, Green, Yellow, Blue, Magenta, Cyan}

// Shape identifies one of the seven shape families.
type Shape uint8

const (
	Square Shape = iota
	Line
	S
	Z
	L
	MirroredL
	T
)

// ShapeCount is the number of shape families in the table.
const ShapeCount = 7

var shapeNames = [ShapeCount]string{"square", "line", "S", "Z", "L", "mirrored-L", "T"}

func (s Shape) String() string {
	if int(s) >= ShapeCount {
		return "unknown"
	}
	return shapeNames[s]
}

// Point is a cell coordinate. Offsets inside a cell set range over 0-3 on both
// axes; absolute board cells use the same type.
type Point struct {
	X, Y int
}

// CellSet packs the four cells of one rotation state into 16 bits. Cell i
// keeps its dx in bits [4i, 4i+2) and its dy in bits [4i+2, 4i+4).
type CellSet uint16

const (
	cellBits  = 4
	axisBits  = 2
	axisMask  = 1<<axisBits - 1
	cellCount = 4
)

// Offsets unpacks the four local (dx, dy) offsets.
func (c CellSet) Offsets() [cellCount]Point {
	var offsets [cellCount]Point
	for i := range cellCount {
		shift := uint(cellBits * i)
		offsets[i] = Point{
			X: int(c>>shift) & axisMask,
			Y: int(c>>(shift+axisBits)) & axisMask,
		}
	}
	return offsets
}

// EncodeCellSet packs four local offsets. Coordinates outside 0-3 are
// truncated to their low two bits.
func EncodeCellSet(offsets [cellCount]Point) CellSet {
	var c CellSet
	for i, p := range offsets {
		shift := uint(cellBits * i)
		c |= CellSet(p.X&axisMask) << shift
		c |= CellSet(p.Y&axisMask) << (shift + axisBits)
	}
	return c
}

type family struct {
	symmetry     int
	orientations [4]CellSet
}

var table = [ShapeCount]family{
	Square:    {symmetry: 1, orientations: [4]CellSet{0x1256}},
	Line:      {symmetry: 2, orientations: [4]CellSet{0x159d, 0x4567}},
	S:         {symmetry: 2, orientations: [4]CellSet{0x4512, 0x0459}},
	Z:         {symmetry: 2, orientations: [4]CellSet{0x0156, 0x1548}},
	L:         {symmetry: 4, orientations: [4]CellSet{0x159a, 0x8456, 0x0159, 0x2654}},
	MirroredL: {symmetry: 4, orientations: [4]CellSet{0x1598, 0x0456, 0x2159, 0xa654}},
	T:         {symmetry: 4, orientations: [4]CellSet{0x1456, 0x1596, 0x4569, 0x4159}},
}

// Symmetry returns the number of distinct rotation states of a shape: 1, 2 or 4.
func Symmetry(s Shape) int {
	return table[s].symmetry
}

// Orientation returns the packed cell set for a rotation state. The index is
// reduced modulo the shape's symmetry first, so rotating a square is a no-op
// and a line cycles through two states.
func Orientation(s Shape, orientation int) CellSet {
	f := &table[s]
	return f.orientations[wrap(orientation, f.symmetry)]
}

// Offsets returns the four local offsets of a shape in a rotation state.
func Offsets(s Shape, orientation int) [cellCount]Point {
	return Orientation(s, orientation).Offsets()
}

func wrap(orientation, symmetry int) int {
	o := orientation % symmetry
	if o < 0 {
		o += symmetry
	}
	return o
}
