package converter

import (
	"testing"

	"github.com/isblackhole/poser2egg/scene"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

// testSceneData is a figure with a hoisted hand below a non body part actor,
// an excluded morph actor, three materials and a rotation keyframe.
func testSceneData() *scene.SceneData {
	return &scene.SceneData{
		Frames:      3,
		ContentRoot: `C:\Poser\Runtime`,
		Figures: []*scene.FigureData{{
			Name: "Andy Figure",
			Materials: []*scene.MaterialData{
				{Name: "Preview", Diffuse: [3]float32{1, 1, 1}},
				{
					Name:       "Skin",
					Diffuse:    [3]float32{1, 0.5, 0.25},
					Specular:   [3]float32{1, 1, 1},
					TextureMap: `C:\tex\skin.png`,
					BumpMap:    `C:\tex\skin_bump.png`,
				},
				{
					Name:            "Cloth",
					Diffuse:         [3]float32{0, 0, 1},
					TextureMap:      "C:/tex/skin.png",
					TransparencyMap: `C:\Poser\Runtime`,
				},
			},
			Actors: []*scene.ActorData{
				{
					Name:        "hip",
					Translation: [3]float32{0, 1, 0},
					Geometry: &scene.GeometryData{
						Vertices:    [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
						Normals:     [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
						TexVertices: [][2]float32{{0, 0}, {1, 0}, {0, 1}},
						Polygons:    []scene.PolygonData{{Start: 0, Count: 3, Material: "Skin"}},
						TexPolygons: []scene.TexPolygonData{{Start: 0, Count: 3}},
						Sets:        []int{0, 1, 2},
						TexSets:     []int{2, 1, 0},
					},
					Parameters: []*scene.ParameterData{
						{Name: "Smile", Morph: true, Value: 0.5, Deltas: map[int][3]float32{1: {0, 0.5, 0}}},
						{Name: "EMPTY1", Morph: true, Value: 1, Deltas: map[int][3]float32{0: {1, 0, 0}}},
						{Name: "Weak", Morph: true, Value: 0.05, Deltas: map[int][3]float32{2: {1, 1, 1}}},
						{Name: "xTran", Value: 3},
					},
				},
				{
					Name:        "CenterOfMass",
					Parent:      "hip",
					BodyPart:    boolPtr(false),
					Translation: [3]float32{0, 0, 1},
				},
				{
					Name:        "left hand",
					Parent:      "CenterOfMass",
					Translation: [3]float32{1, 0, 0},
					Geometry: &scene.GeometryData{
						Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
						Polygons: []scene.PolygonData{{Start: 0, Count: 4, Material: "Skin"}},
						Sets:     []int{3, 2, 1, 0},
					},
				},
				{
					Name:         "left thigh",
					InternalName: "lThigh",
					Parent:       "hip",
					Translation:  [3]float32{0.5, 0, 0},
					Geometry: &scene.GeometryData{
						Vertices:    [][3]float32{{0, 0, 0}, {0, -1, 0}},
						Normals:     [][3]float32{{1, 0, 0}, {1, 0, 0}},
						TexVertices: [][2]float32{{0.25, 0.75}},
						Polygons:    []scene.PolygonData{{Start: 0, Count: 2, Material: "Cloth"}},
						TexPolygons: []scene.TexPolygonData{{Start: 0, Count: 2}},
						Sets:        []int{0, 1},
						TexSets:     []int{0, 0},
					},
					Keyframes: []*scene.KeyframeData{
						{Frame: 1, Rotation: &[4]float32{0, 0.70710678, 0, 0.70710678}},
					},
				},
				{Name: "BodyMorphs", Parent: "hip"},
			},
		}},
	}
}

func buildScene(t *testing.T, data *scene.SceneData) *scene.MemScene {
	t.Helper()
	sc, err := scene.Build(data)
	require.NoError(t, err)
	return sc
}

func testScene(t *testing.T) *scene.MemScene {
	return buildScene(t, testSceneData())
}
