package geom

import "math"

// HPR holds heading, attitude (pitch) and bank (roll) in radians.
// Heading turns about Y, attitude about Z and bank about X.
type HPR struct {
	Heading  float64
	Attitude float64
	Bank     float64
}

// NewHPRFromQuaternion decomposes a unit quaternion. Near the poles
// (|attitude| == 90deg) the bank is folded into the heading.
func NewHPRFromQuaternion(q *Quaternion) *HPR {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)
	t := x*y + z*w
	if t > 0.4999 {
		return &HPR{Heading: 2 * math.Atan2(x, w), Attitude: math.Pi / 2}
	}
	if t < -0.4999 {
		return &HPR{Heading: -2 * math.Atan2(x, w), Attitude: -math.Pi / 2}
	}
	sqx, sqy, sqz := x*x, y*y, z*z
	return &HPR{
		Heading:  math.Atan2(2*y*w-2*x*z, 1-2*sqy-2*sqz),
		Attitude: math.Asin(2 * t),
		Bank:     math.Atan2(2*x*w-2*y*z, 1-2*sqx-2*sqz),
	}
}

func (e *HPR) Degrees() *HPR {
	return &HPR{
		Heading:  e.Heading * 180 / math.Pi,
		Attitude: e.Attitude * 180 / math.Pi,
		Bank:     e.Bank * 180 / math.Pi,
	}
}
