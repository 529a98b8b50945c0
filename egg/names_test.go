package egg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	for in, want := range map[string]string{
		`My "Hip"`:  `"My _Hip_"`,
		`Hip`:       `Hip`,
		`"Hip"`:     `_Hip_`,
		"left\tArm": "\"left\tArm\"",
		``:          ``,
		`Skin}`:     `"Skin}"`,
		`<hip>`:     `"<hip>"`,
	} {
		assert.Equal(t, want, SafeName(in), in)
	}
}

func TestFixName(t *testing.T) {
	assert.Equal(t, "leftThigh", FixName("left Thigh"))
	assert.Equal(t, "abc", FixName(" a\tb\nc "))
	assert.Equal(t, "hip", FixName("hip"))
}

func TestFloat(t *testing.T) {
	assert.Equal(t, "1.000000", Float(1))
	assert.Equal(t, "-0.250000", Float(-0.25))
	assert.Equal(t, "0.000000", SafeFloat(float32(math.NaN())))
	assert.Equal(t, "0.000000", SafeFloat(float32(math.Inf(1))))
	assert.Equal(t, "0.500000", SafeFloat(0.5))
}
