package math3d

// Vec2 holds texture coordinates and normalized device coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// PixelToNDC maps a pixel measured from the top-left of a width x height
// viewport into [-1, 1] device coordinates with +Y up. Degenerate sizes are
// treated as 1.
func PixelToNDC(x, y, width, height float64) Vec2 {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return Vec2{2*x/width - 1, 1 - 2*y/height}
}

// FlipV converts a top-left texture origin to bottom-left.
func (a Vec2) FlipV() Vec2 {
	return Vec2{a.X, 1 - a.Y}
}
