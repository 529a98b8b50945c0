package converter

import (
	"sort"

	"github.com/isblackhole/poser2egg/egg"
	"github.com/isblackhole/poser2egg/geom"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/scene"
	"go.uber.org/zap"
)

type Joint struct {
	Name       string
	Transform  geom.Matrix4
	Children   []*Joint
	VertexRefs []int
	Actor      scene.Actor

	// hoisted is set when the host parent of Actor is not the actor of the parent joint.
	hoisted bool
}

type JointOption struct {
	ExcludeActors []string
	// RootByName treats every actor named like the root as a root joint.
	RootByName bool
}

func DefaultJointOption() *JointOption {
	return &JointOption{ExcludeActors: []string{"BodyMorphs"}}
}

type jointCollector struct {
	opt   *JointOption
	root  scene.Actor
	verts map[string]map[int]int
}

// CollectJoints builds the joint tree below root. Actors that are not body
// parts or are excluded by name do not become joints; their body part
// descendants are attached to the nearest joint above them.
func CollectJoints(root scene.Actor, verts map[string]map[int]int, opt *JointOption) []*Joint {
	if opt == nil {
		opt = DefaultJointOption()
	}
	if root == nil {
		return nil
	}
	c := &jointCollector{opt: opt, root: root, verts: verts}
	return c.collect(root, nil, 0)
}

func sameActor(a, b scene.Actor) bool {
	return a != nil && b != nil && a.InternalName() == b.InternalName()
}

func (c *jointCollector) isRoot(actor scene.Actor) bool {
	if c.opt.RootByName {
		return actor.Name() == c.root.Name()
	}
	return sameActor(actor, c.root)
}

func (c *jointCollector) collect(actor scene.Actor, parent *Joint, level int) []*Joint {
	if !actor.IsBodyPart() || contains(c.opt.ExcludeActors, actor.Name()) {
		logger.Debug("skip actor", zap.String("actor", actor.Name()), zap.Bool("bodyPart", actor.IsBodyPart()))
		var hoisted []*Joint
		for _, child := range actor.Children() {
			hoisted = append(hoisted, c.collect(child, parent, level)...)
		}
		return hoisted
	}

	j := &Joint{
		Name:       egg.SafeName(egg.FixName(actor.Name())),
		Actor:      actor,
		VertexRefs: sortedRefs(c.verts[actor.InternalName()]),
	}
	switch {
	case c.isRoot(actor) || parent == nil:
		j.Transform = *actor.WorldMatrix()
	case sameActor(actor.Parent(), parent.Actor):
		j.Transform = *actor.LocalMatrix()
	default:
		j.hoisted = true
		j.Transform = *parent.Actor.WorldMatrix().Inverse().Mul(actor.WorldMatrix())
	}
	logger.Debug("joint", zap.String("joint", j.Name), zap.Int("level", level), zap.Int("vertices", len(j.VertexRefs)))

	for _, child := range actor.Children() {
		j.Children = append(j.Children, c.collect(child, j, level+1)...)
	}
	return []*Joint{j}
}

func sortedRefs(m map[int]int) []int {
	if len(m) == 0 {
		return nil
	}
	refs := make([]int, 0, len(m))
	for _, v := range m {
		refs = append(refs, v)
	}
	sort.Ints(refs)
	return refs
}

// WalkJoints visits joints depth first, parents before children.
func WalkJoints(joints []*Joint, f func(j, parent *Joint)) {
	var walk func(js []*Joint, parent *Joint)
	walk = func(js []*Joint, parent *Joint) {
		for _, j := range js {
			f(j, parent)
			walk(j.Children, j)
		}
	}
	walk(joints, nil)
}

func (j *Joint) toEgg() *egg.Joint {
	ej := &egg.Joint{Name: j.Name, Transform: j.Transform, VertexRefs: j.VertexRefs}
	for _, c := range j.Children {
		ej.Children = append(ej.Children, c.toEgg())
	}
	return ej
}
