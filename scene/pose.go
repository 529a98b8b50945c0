package scene

import "github.com/isblackhole/poser2egg/geom"

type pose struct {
	translation geom.Vector3
	rotation    geom.Quaternion
	scale       geom.Vector3
}

func (a *MemActor) restPose() pose {
	p := pose{
		translation: *geom.NewVector3FromArray(a.data.Translation),
		rotation:    geom.Quaternion{W: 1},
		scale:       geom.Vector3{X: 1, Y: 1, Z: 1},
	}
	if r := a.data.Rotation; r != nil && *r != [4]float32{} {
		p.rotation = *geom.NewQuaternionFromArray(*r).Normalize()
	}
	if s := a.data.Scale; s != nil {
		p.scale = *geom.NewVector3FromArray(*s)
	}
	return p
}

// poseAt applies every keyframe up to frame on top of the rest pose.
func (a *MemActor) poseAt(frame int) pose {
	p := a.restPose()
	for _, p2 := range a.params {
		p2.value = p2.data.Value
	}
	for _, k := range a.keyframes {
		if k.Frame > frame {
			break
		}
		if k.Translation != nil {
			p.translation = *geom.NewVector3FromArray(*k.Translation)
		}
		if k.Rotation != nil && *k.Rotation != [4]float32{} {
			p.rotation = *geom.NewQuaternionFromArray(*k.Rotation).Normalize()
		}
		if k.Scale != nil {
			p.scale = *geom.NewVector3FromArray(*k.Scale)
		}
		for _, p2 := range a.params {
			if v, ok := k.Values[p2.data.Name]; ok {
				p2.value = v
			}
		}
	}
	return p
}

func (f *MemFigure) pose(frame int) {
	for _, a := range f.order {
		p := a.poseAt(frame)
		a.rotation = &p.rotation
		a.local = geom.NewTRSMatrix4(&p.translation, &p.rotation, &p.scale)
		if a.parent != nil {
			a.world = a.parent.world.Mul(a.local)
		} else {
			a.world = a.local
		}
	}
}
