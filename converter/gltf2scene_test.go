package converter

import (
	"path/filepath"
	"testing"

	"github.com/isblackhole/poser2egg/scene"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGLTF is a skinned body on Hips and Spine, a rigid hat below Spine,
// a morph target and an animation turning Spine about Y.
func testGLTF() *gltf.Document {
	doc := gltf.NewDocument()

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 0, 1}, {0, 1, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}, {0, 0}, {1, 0}, {0, 1}})
	joints := modeler.WriteJoints(doc, [][4]uint16{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 1, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}})
	weights := modeler.WriteWeights(doc, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}, {0.2, 0.8, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2, 3, 4, 5})
	target := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {0, 0.1, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}})
	hat := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}})

	doc.Meshes = []*gltf.Mesh{
		{
			Name: "BodyMesh",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]uint32{"POSITION": pos, "TEXCOORD_0": uv, "JOINTS_0": joints, "WEIGHTS_0": weights},
				Indices:    gltf.Index(indices),
				Material:   gltf.Index(0),
				Targets:    []map[string]uint32{{"POSITION": target}},
			}},
			Weights: []float32{0.5},
			Extras:  map[string]interface{}{"targetNames": []string{"Smile"}},
		},
		{
			Name:       "HatMesh",
			Primitives: []*gltf.Primitive{{Attributes: map[string]uint32{"POSITION": hat}, Material: gltf.Index(1)}},
		},
	}

	rough := float32(0.75)
	doc.Materials = []*gltf.Material{
		{Name: "Skin", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float32{1, 0.5, 0.25, 1},
			RoughnessFactor:  &rough,
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		}},
		{Name: "Hat"},
	}
	doc.Images = []*gltf.Image{{URI: "skin.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}

	doc.Nodes = []*gltf.Node{
		{Name: "Armature", Children: []uint32{1, 3}},
		{Name: "Hips", Translation: [3]float32{0, 1, 0}, Children: []uint32{2}},
		{Name: "Spine", Translation: [3]float32{0, 0.5, 0}, Children: []uint32{4}},
		{Name: "Body", Mesh: gltf.Index(0), Skin: gltf.Index(0)},
		{Name: "Hat", Mesh: gltf.Index(1), Translation: [3]float32{0, 0.2, 0}},
	}
	doc.Skins = []*gltf.Skin{{Joints: []uint32{1, 2}}}

	times := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, []float32{0, 1})
	rotations := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, [][4]float32{{0, 0, 0, 1}, {0, 0.70710678, 0, 0.70710678}})
	morphWeights := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, []float32{0, 1})
	doc.Animations = []*gltf.Animation{{
		Name: "Turn",
		Samplers: []*gltf.AnimationSampler{
			{Input: gltf.Index(times), Output: gltf.Index(rotations), Interpolation: gltf.InterpolationLinear},
			{Input: gltf.Index(times), Output: gltf.Index(morphWeights), Interpolation: gltf.InterpolationLinear},
		},
		Channels: []*gltf.Channel{
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(2), Path: gltf.TRSRotation}},
			{Sampler: gltf.Index(1), Target: gltf.ChannelTarget{Node: gltf.Index(3), Path: gltf.TRSWeights}},
		},
	}}
	return doc
}

func findActor(fig *scene.FigureData, id string) *scene.ActorData {
	for _, a := range fig.Actors {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

func TestGLTFToScene(t *testing.T) {
	data, err := NewGLTFToSceneConverter(&GLTFToSceneOption{FPS: 2, SourceDir: "assets"}).Convert(testGLTF(), "Robot")
	require.NoError(t, err)

	assert.Equal(t, 3, data.Frames)
	require.Len(t, data.Figures, 1)
	fig := data.Figures[0]
	assert.Equal(t, "Robot", fig.Name)
	assert.Equal(t, "node1", fig.Root)
	assert.Len(t, fig.Actors, 5)
	assert.Equal(t, []string{"node1", "node2"}, fig.Unimesh)

	assert.False(t, findActor(fig, "node0").IsBodyPart())
	assert.True(t, findActor(fig, "node1").IsBodyPart())
	assert.False(t, findActor(fig, "node4").IsBodyPart())
	assert.Nil(t, findActor(fig, "node3").Geometry, "skinned triangles go to the joints")

	require.Len(t, fig.Materials, 2)
	skin := fig.Materials[0]
	assert.Equal(t, [3]float32{1, 0.5, 0.25}, skin.Diffuse)
	assert.Equal(t, [3]float32{0.25, 0.25, 0.25}, skin.Specular)
	assert.Equal(t, filepath.Join("assets", "skin.png"), skin.TextureMap)
	assert.Equal(t, [3]float32{1, 1, 1}, fig.Materials[1].Diffuse)

	hips := findActor(fig, "node1")
	require.NotNil(t, hips.Geometry)
	assert.Len(t, hips.Geometry.Vertices, 3)
	assert.Equal(t, []scene.PolygonData{{Start: 0, Count: 3, Material: "Skin"}}, hips.Geometry.Polygons)
	require.Len(t, hips.Parameters, 1)
	assert.Equal(t, "Smile", hips.Parameters[0].Name)
	assert.Equal(t, float32(0.5), hips.Parameters[0].Value)
	assert.Equal(t, map[int][3]float32{1: {0, 0.1, 0}}, hips.Parameters[0].Deltas)

	spine := findActor(fig, "node2")
	require.NotNil(t, spine.Geometry)
	assert.Len(t, spine.Geometry.Vertices, 6)
	assert.Equal(t, "Hat", spine.Geometry.Polygons[1].Material)
	assert.InDelta(t, 1.7, spine.Geometry.Vertices[3][1], 1e-5, "rigid meshes are moved to world space")
	assert.Equal(t, [2]float32{0, 1}, spine.Geometry.TexVertices[2])
	assert.Empty(t, spine.Parameters)

	require.Len(t, spine.Keyframes, 3)
	r := spine.Keyframes[1].Rotation
	require.NotNil(t, r)
	assert.InDelta(t, 0.38268, r[1], 1e-4)
	assert.InDelta(t, 0.92388, r[3], 1e-4)

	var smile []float32
	for _, k := range hips.Keyframes {
		smile = append(smile, k.Values["Smile"])
	}
	assert.InDeltaSlice(t, []float32{0, 0.5, 1}, smile, 1e-6)
}

func TestGLTFToSceneExport(t *testing.T) {
	data, err := NewGLTFToSceneConverter(&GLTFToSceneOption{FPS: 2}).Convert(testGLTF(), "Robot")
	require.NoError(t, err)
	sc := buildScene(t, data)
	require.NoError(t, sc.SetFrame(1))
	sc.DrawAll()

	conv := NewPoserToEggConverter(nil)
	doc, err := conv.Convert(sc)
	require.NoError(t, err)
	require.Len(t, doc.Group.Joints, 1)
	assert.Equal(t, "Hips", doc.Group.Joints[0].Name)
	require.Len(t, doc.Group.Joints[0].Children, 1)
	assert.Equal(t, "Spine", doc.Group.Joints[0].Children[0].Name)
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, doc.Group.Joints[0].Children[0].VertexRefs)
	assert.Len(t, doc.Group.VertexPool.Vertices, 9)
	assert.InDelta(t, 0.05, doc.Group.VertexPool.Vertices[1].Position.Y, 1e-6, "morph weight at frame 1 is baked")

	bundle, err := conv.ConvertAnimation(sc)
	require.NoError(t, err)
	spine := bundle.Tables[0].Children[0]
	require.Len(t, spine.Frames, 2)
	assert.InDelta(t, 45, spine.Frames[1].Heading, 1e-2)
	assert.Equal(t, 1, sc.Frame())
	writeEgg(t, doc)
}

func TestGLTFToSceneRoots(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "a"}, {Translation: [3]float32{1, 0, 0}}}
	data, err := NewGLTFToSceneConverter(&GLTFToSceneOption{Animation: -1}).Convert(doc, "Two")
	require.NoError(t, err)
	fig := data.Figures[0]
	assert.Equal(t, "Body", fig.Root)
	require.Len(t, fig.Actors, 3)
	assert.Equal(t, "Body", findActor(fig, "node1").Parent)
	assert.Equal(t, "node1", findActor(fig, "node1").Name)
	assert.True(t, findActor(fig, "node1").IsBodyPart(), "without skins every node is a body part")
	assert.Equal(t, 1, data.Frames)

	_, err = scene.Build(data)
	assert.NoError(t, err)

	_, err = NewGLTFToSceneConverter(nil).Convert(gltf.NewDocument(), "Empty")
	assert.Error(t, err)
}

func TestGLTFToSceneInvalidIndices(t *testing.T) {
	for name, corrupt := range map[string]func(doc *gltf.Document){
		"skin joint":     func(doc *gltf.Document) { doc.Skins[0].Joints = []uint32{1, 9} },
		"skin skeleton":  func(doc *gltf.Document) { doc.Skins[0].Skeleton = gltf.Index(9) },
		"node mesh":      func(doc *gltf.Document) { doc.Nodes[4].Mesh = gltf.Index(7) },
		"node skin":      func(doc *gltf.Document) { doc.Nodes[3].Skin = gltf.Index(2) },
		"texture image":  func(doc *gltf.Document) { doc.Textures[0].Source = gltf.Index(3) },
		"channel target": func(doc *gltf.Document) { doc.Animations[0].Channels[0].Target.Node = gltf.Index(5) },
		"accessor": func(doc *gltf.Document) {
			doc.Meshes[1].Primitives[0].Attributes["POSITION"] = uint32(len(doc.Accessors))
		},
	} {
		doc := testGLTF()
		corrupt(doc)
		assert.NotPanics(t, func() {
			_, err := NewGLTFToSceneConverter(nil).Convert(doc, "Broken")
			assert.Error(t, err, name)
		}, name)
	}
}
