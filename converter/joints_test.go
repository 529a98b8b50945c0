package converter

import (
	"testing"

	"github.com/isblackhole/poser2egg/geom"
	"github.com/isblackhole/poser2egg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectJoints(t *testing.T) {
	sc := testScene(t)
	fig := sc.CurrentFigure()
	res, err := Flatten(fig.UnimeshActors(), nil)
	require.NoError(t, err)

	joints := CollectJoints(fig.ParentActor(), res.ActorVertices, nil)
	require.Len(t, joints, 1)
	hip := joints[0]
	assert.Equal(t, "hip", hip.Name)
	assert.Equal(t, []int{0, 1, 2}, hip.VertexRefs)
	assert.Equal(t, geom.Vector3{Y: 1}, *hip.Transform.Translation())
	assert.False(t, hip.hoisted)

	require.Len(t, hip.Children, 2, "CenterOfMass and BodyMorphs are not joints")
	hand, thigh := hip.Children[0], hip.Children[1]

	assert.Equal(t, "lefthand", hand.Name)
	assert.True(t, hand.hoisted)
	assert.Equal(t, []int{3, 4, 5, 6}, hand.VertexRefs)
	assert.Equal(t, geom.Vector3{X: 1, Z: 1}, *hand.Transform.Translation())

	assert.Equal(t, "leftthigh", thigh.Name)
	assert.Equal(t, "lThigh", thigh.Actor.InternalName())
	assert.Equal(t, []int{7, 8}, thigh.VertexRefs)
	assert.Equal(t, geom.Vector3{X: 0.5}, *thigh.Transform.Translation())
	assert.Empty(t, thigh.Children)

	var order []string
	WalkJoints(joints, func(j, parent *Joint) {
		if parent != nil {
			order = append(order, parent.Name+"/"+j.Name)
		} else {
			order = append(order, j.Name)
		}
	})
	assert.Equal(t, []string{"hip", "hip/lefthand", "hip/leftthigh"}, order)
}

func TestCollectJointsIndexConsistency(t *testing.T) {
	sc := testScene(t)
	fig := sc.CurrentFigure()
	res, err := Flatten(fig.UnimeshActors(), nil)
	require.NoError(t, err)

	inRun := map[int]int{}
	for _, g := range res.Groups {
		for _, run := range g.Polygons {
			for _, i := range run.vertexRange() {
				inRun[i]++
			}
		}
	}
	WalkJoints(CollectJoints(fig.ParentActor(), res.ActorVertices, nil), func(j, _ *Joint) {
		for _, i := range j.VertexRefs {
			assert.Less(t, i, len(res.Vertices))
			assert.Equal(t, 1, inRun[i])
		}
	})
}

func TestCollectJointsRootByName(t *testing.T) {
	data := &scene.SceneData{Figures: []*scene.FigureData{{
		Name: "F",
		Actors: []*scene.ActorData{
			{Name: "Body", Translation: [3]float32{0, 2, 0}},
			{Name: "Body", InternalName: "Body2", Parent: "Body", Translation: [3]float32{1, 0, 0}},
		},
	}}}
	sc := buildScene(t, data)
	root := sc.CurrentFigure().ParentActor()

	joints := CollectJoints(root, nil, &JointOption{})
	require.Len(t, joints[0].Children, 1)
	assert.Equal(t, geom.Vector3{X: 1}, *joints[0].Children[0].Transform.Translation())

	joints = CollectJoints(root, nil, &JointOption{RootByName: true})
	assert.Equal(t, geom.Vector3{X: 1, Y: 2}, *joints[0].Children[0].Transform.Translation())
}

func TestCollectJointsNonBodyPartRoot(t *testing.T) {
	data := &scene.SceneData{Figures: []*scene.FigureData{{
		Name: "F",
		Actors: []*scene.ActorData{
			{Name: "Universe", BodyPart: boolPtr(false)},
			{Name: "a", Parent: "Universe", Translation: [3]float32{1, 0, 0}},
			{Name: "b", Parent: "Universe", Translation: [3]float32{2, 0, 0}},
		},
	}}}
	sc := buildScene(t, data)
	joints := CollectJoints(sc.CurrentFigure().ParentActor(), nil, nil)
	require.Len(t, joints, 2)
	assert.Equal(t, "a", joints[0].Name)
	assert.Equal(t, geom.Vector3{X: 2}, *joints[1].Transform.Translation())
	assert.Nil(t, joints[0].VertexRefs)
}
