package value

// Vec2 is a 2D vector scalar.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector scalar.
type Vec3 struct {
	X, Y, Z float64
}

// Vec4 is a 4D vector scalar.
type Vec4 struct {
	X, Y, Z, W float64
}
