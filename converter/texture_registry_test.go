package converter

import (
	"testing"

	"github.com/isblackhole/poser2egg/egg"
	"github.com/stretchr/testify/assert"
)

func TestTextureRegistry(t *testing.T) {
	reg := NewTextureRegistry(`C:\Poser\Runtime`)

	name, ok := reg.Register(`C:\tex\skin.png`, "Skin_texture", egg.TextureModeModulate)
	assert.True(t, ok)
	assert.Equal(t, "Skin_texture", name)

	name, ok = reg.Register("C:/tex/skin.png", "Cloth_texture", egg.TextureModeAlpha)
	assert.True(t, ok)
	assert.Equal(t, "Skin_texture", name, "first registration wins")

	_, ok = reg.Register("", "None_texture", egg.TextureModeModulate)
	assert.False(t, ok)
	_, ok = reg.Register("C:/Poser/Runtime", "Root_texture", egg.TextureModeModulate)
	assert.False(t, ok, "content root means no texture")

	name, ok = reg.Register(`D:\bump.jpg`, "Skin_bump", egg.TextureModeNormal)
	assert.True(t, ok)
	assert.Equal(t, "Skin_bump", name)

	textures := reg.Textures()
	if assert.Len(t, textures, 2) {
		assert.Equal(t, "C/tex/skin.png", textures[0].Path)
		assert.Equal(t, `C:\tex\skin.png`, textures[0].Source)
		assert.Equal(t, egg.TextureModeModulate, textures[0].Mode)
		assert.Equal(t, "D/bump.jpg", textures[1].Path)
	}
	assert.Same(t, textures[1], reg.Lookup("Skin_bump"))
	assert.Nil(t, reg.Lookup("Cloth_texture"))
}

func TestTextureRegistryFresh(t *testing.T) {
	a := NewTextureRegistry("")
	a.Register("a.png", "A", egg.TextureModeModulate)
	b := NewTextureRegistry("")
	name, _ := b.Register("a.png", "B", egg.TextureModeModulate)
	assert.Equal(t, "B", name)
}

func TestTextureRegistryNameCollision(t *testing.T) {
	reg := NewTextureRegistry("")

	a, _ := reg.Register("C:/tex/skin.png", "Skin_texture", egg.TextureModeModulate)
	b, _ := reg.Register("C:/tex/other.png", "Skin_texture", egg.TextureModeModulate)
	c, _ := reg.Register("C:/tex/third.png", "Skin_texture", egg.TextureModeModulate)
	assert.Equal(t, "Skin_texture", a)
	assert.Equal(t, "Skin_texture_2", b)
	assert.Equal(t, "Skin_texture_3", c)
	assert.Equal(t, "C/tex/other.png", reg.Lookup(b).Path)

	q1, _ := reg.Register("a.png", `"My Skin_texture"`, egg.TextureModeModulate)
	q2, _ := reg.Register("b.png", `"My Skin_texture"`, egg.TextureModeModulate)
	assert.Equal(t, `"My Skin_texture"`, q1)
	assert.Equal(t, `"My Skin_texture_2"`, q2)
}
