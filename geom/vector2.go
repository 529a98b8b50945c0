package geom

// Vector2 is a texture coordinate or any other 2D value.
type Vector2 struct {
	X Element
	Y Element
}

func NewVector2FromArray(arr [2]Element) *Vector2 {
	return &Vector2{X: arr[0], Y: arr[1]}
}
