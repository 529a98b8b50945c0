package converter

import (
	"testing"

	"github.com/isblackhole/poser2egg/egg"
	"github.com/isblackhole/poser2egg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectMaterials(t *testing.T) {
	sc := testScene(t)
	reg := NewTextureRegistry(sc.ContentRootLocation())
	mats, err := CollectMaterials(sc.CurrentFigure().Materials(), reg, nil)
	require.NoError(t, err)

	require.Len(t, mats, 2)
	skin, cloth := mats[0], mats[1]
	assert.Equal(t, "Skin", skin.Name)
	assert.Equal(t, [3]float32{1, 0.5, 0.25}, skin.Diffuse)
	assert.InDelta(t, 0.2, skin.Specular[0], 1e-6)
	assert.Equal(t, []string{"Skin_texture", "Skin_bump"}, skin.Textures)
	assert.Equal(t, []string{"Skin_texture"}, cloth.Textures)

	require.Len(t, reg.Textures(), 2)
	assert.Equal(t, egg.TextureModeNormal, reg.Lookup("Skin_bump").Mode)
}

func TestCollectMaterialsOptions(t *testing.T) {
	data := &scene.SceneData{Figures: []*scene.FigureData{{
		Name: "F",
		Materials: []*scene.MaterialData{
			{Name: "Glass", TransparencyMap: "glass.png", Specular: [3]float32{1, 0, 0}},
			{Name: "Glass", TextureMap: "glass2.png"},
			{Name: "Preview"},
		},
		Actors: []*scene.ActorData{{Name: "Body"}},
	}}}
	sc := buildScene(t, data)

	mats, err := CollectMaterials(sc.CurrentFigure().Materials(), NewTextureRegistry(""), &MaterialOption{
		SpecularScale:       1,
		IncludeTransparency: true,
	})
	require.NoError(t, err)
	require.Len(t, mats, 2, "Preview is only skipped when listed")
	assert.Equal(t, []string{"Glass_texture"}, mats[0].Textures, "later duplicate replaces the record")
	assert.Equal(t, "Preview", mats[1].Name)

	reg := NewTextureRegistry("")
	mats, err = CollectMaterials(sc.CurrentFigure().Materials()[:1], reg, &MaterialOption{})
	require.NoError(t, err)
	assert.Empty(t, mats[0].Textures)
	assert.Empty(t, reg.Textures())
	assert.Equal(t, [3]float32{0, 0, 0}, mats[0].Specular)
}

func TestCollectMaterialsQuotedName(t *testing.T) {
	data := &scene.SceneData{Figures: []*scene.FigureData{{
		Name:      "F",
		Materials: []*scene.MaterialData{{Name: `Hair "Long"`, TextureMap: "hair.png"}},
		Actors:    []*scene.ActorData{{Name: "Body"}},
	}}}
	sc := buildScene(t, data)
	mats, err := CollectMaterials(sc.CurrentFigure().Materials(), NewTextureRegistry(""), nil)
	require.NoError(t, err)
	assert.Equal(t, `"Hair _Long_"`, mats[0].EggName)
	assert.Equal(t, []string{`"Hair _Long__texture"`}, mats[0].Textures)
}

func TestCollectMaterialsDuplicateTextures(t *testing.T) {
	data := &scene.SceneData{Figures: []*scene.FigureData{{
		Name: "F",
		Materials: []*scene.MaterialData{
			{Name: "Skin", TextureMap: "C:/tex/skin.png"},
			{Name: "Skin", TextureMap: "C:/tex/other.png"},
		},
		Actors: []*scene.ActorData{{Name: "Body"}},
	}}}
	sc := buildScene(t, data)

	reg := NewTextureRegistry("")
	mats, err := CollectMaterials(sc.CurrentFigure().Materials(), reg, nil)
	require.NoError(t, err)
	require.Len(t, mats, 1)
	assert.Equal(t, []string{"Skin_texture_2"}, mats[0].Textures)

	names := map[string]bool{}
	for _, tex := range reg.Textures() {
		assert.False(t, names[tex.Name], "texture names are unique: %s", tex.Name)
		names[tex.Name] = true
	}
	assert.Equal(t, "C:/tex/other.png", reg.Lookup("Skin_texture_2").Source)
}
