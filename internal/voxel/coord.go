package voxel

// Vec3i is an integer 3-vector used for chunk coordinates and voxel indices.
type Vec3i struct {
	X, Y, Z int
}

// Splat returns a vector with all three components set to v.
func Splat(v int) Vec3i {
	return Vec3i{v, v, v}
}

// FromArray converts a [3]int (as found in config files) to a Vec3i.
func FromArray(a [3]int) Vec3i {
	return Vec3i{a[0], a[1], a[2]}
}

func (v Vec3i) Add(o Vec3i) Vec3i {
	return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3i) Sub(o Vec3i) Vec3i {
	return Vec3i{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul multiplies componentwise.
func (v Vec3i) Mul(o Vec3i) Vec3i {
	return Vec3i{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// Min returns the componentwise minimum.
func (v Vec3i) Min(o Vec3i) Vec3i {
	return Vec3i{min(v.X, o.X), min(v.Y, o.Y), min(v.Z, o.Z)}
}

// Max returns the componentwise maximum.
func (v Vec3i) Max(o Vec3i) Vec3i {
	return Vec3i{max(v.X, o.X), max(v.Y, o.Y), max(v.Z, o.Z)}
}

// Clamp clamps every component into [lo, hi].
func (v Vec3i) Clamp(lo, hi Vec3i) Vec3i {
	return v.Max(lo).Min(hi)
}

// Within reports whether lo <= v <= hi on every axis.
func (v Vec3i) Within(lo, hi Vec3i) bool {
	return v == v.Clamp(lo, hi)
}

// LenSq is the squared Euclidean length.
func (v Vec3i) LenSq() int {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// DistSq is the squared Euclidean distance between two coordinates.
func DistSq(a, b Vec3i) int {
	return a.Sub(b).LenSq()
}

// Volume returns X*Y*Z.
func (v Vec3i) Volume() int {
	return v.X * v.Y * v.Z
}

// MinComponent returns the smallest of the three components.
func (v Vec3i) MinComponent() int {
	return min(v.X, v.Y, v.Z)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod is the positive modulo ((a % n) + n) % n; never negative for n > 0.
func Mod(a, n int) int {
	return ((a % n) + n) % n
}
