package converter

import (
	"github.com/isblackhole/poser2egg/geom"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/scene"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AnimationSample is the pose of one joint in one frame. HPR holds
// heading, attitude and bank in degrees.
type AnimationSample struct {
	Translation geom.Vector3
	HPR         geom.Vector3
}

// SampleAnimation poses the scene at frames 0 to frames-1 and records every
// joint. The current frame of the scene is restored before returning.
func SampleAnimation(sc scene.Scene, joints []*Joint, root scene.Actor, frames int) (result map[string][]AnimationSample, err error) {
	result = map[string][]AnimationSample{}
	var dup error
	WalkJoints(joints, func(j, _ *Joint) {
		if _, ok := result[j.Name]; ok && dup == nil {
			dup = errors.Errorf("duplicate joint name %s", j.Name)
		}
		result[j.Name] = make([]AnimationSample, 0, frames)
	})
	if dup != nil {
		return nil, dup
	}

	saved := sc.Frame()
	defer func() {
		if rerr := sc.SetFrame(saved); rerr != nil && err == nil {
			err = errors.Wrap(rerr, "restore frame")
		}
		sc.DrawAll()
	}()

	for frame := 0; frame < frames; frame++ {
		if err := sc.SetFrame(frame); err != nil {
			return nil, errors.Wrapf(err, "set frame %d", frame)
		}
		sc.DrawAll()
		WalkJoints(joints, func(j, parent *Joint) {
			result[j.Name] = append(result[j.Name], sampleJoint(j, parent, root))
		})
		logger.Debug("sampled frame", zap.Int("frame", frame))
	}
	return result, nil
}

func sampleJoint(j, parent *Joint, root scene.Actor) AnimationSample {
	var s AnimationSample
	origin := j.Actor.Origin()
	if parent != nil && !sameActor(j.Actor, root) {
		s.Translation = *origin.Sub(parent.Actor.Origin())
	}

	q := j.Actor.LocalQuaternion()
	if j.hoisted {
		_, q, _ = parent.Actor.WorldMatrix().Inverse().Mul(j.Actor.WorldMatrix()).Decompose()
	}
	hpr := geom.NewHPRFromQuaternion(q).Degrees()
	s.HPR = geom.Vector3{X: float32(hpr.Heading), Y: float32(hpr.Attitude), Z: float32(hpr.Bank)}
	return s
}
