package converter

import (
	"math"
	"strings"

	"github.com/isblackhole/poser2egg/egg"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/scene"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type MorphMode string

const (
	MorphSkip   MorphMode = "skip"
	MorphBake   MorphMode = "bake"
	MorphExport MorphMode = "export"
)

type FlattenOption struct {
	MorphMode            MorphMode
	MorphThreshold       float32
	MorphExcludeNames    []string
	MorphExcludePrefixes []string

	// Progress is called after each actor with the number of actors done.
	Progress func(done, total int)
}

func DefaultFlattenOption() *FlattenOption {
	return &FlattenOption{
		MorphMode:            MorphBake,
		MorphThreshold:       0.1,
		MorphExcludeNames:    []string{"-"},
		MorphExcludePrefixes: []string{"EMPTY", "V4"},
	}
}

// PolygonRun is one source polygon: Count vertices of the pool starting at Start.
type PolygonRun struct {
	Material string
	Start    int
	Count    int
}

type PolygonGroup struct {
	Name string
	// Actor is the internal name of the source actor.
	Actor    string
	Polygons []PolygonRun
}

type FlattenResult struct {
	Vertices []*egg.Vertex
	Groups   []*PolygonGroup
	// ActorVertices maps actor internal name to the pool indices created
	// from its geometry. The inner map is index to index.
	ActorVertices map[string]map[int]int
}

func (o *FlattenOption) morphTargets(params []scene.Parameter) []scene.Parameter {
	var morphs []scene.Parameter
	for _, p := range params {
		if !p.IsMorphTarget() || contains(o.MorphExcludeNames, p.Name()) {
			continue
		}
		excluded := false
		for _, prefix := range o.MorphExcludePrefixes {
			if strings.HasPrefix(p.Name(), prefix) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		if o.MorphMode == MorphBake && float32(math.Abs(float64(p.Value()))) <= o.MorphThreshold {
			continue
		}
		morphs = append(morphs, p)
	}
	return morphs
}

// Flatten merges the geometry of actors into one vertex pool. Every polygon
// corner gets its own vertex, numbered in actor, polygon and corner order.
func Flatten(actors []scene.Actor, opt *FlattenOption) (*FlattenResult, error) {
	if opt == nil {
		opt = DefaultFlattenOption()
	}
	result := &FlattenResult{ActorVertices: map[string]map[int]int{}}

	for n, actor := range actors {
		g := actor.Geometry()
		if g == nil {
			return nil, errors.Errorf("actor %s has no geometry", actor.Name())
		}
		var morphs []scene.Parameter
		if opt.MorphMode == MorphBake || opt.MorphMode == MorphExport {
			morphs = opt.morphTargets(actor.Parameters())
		}
		logger.Debug("flatten actor", zap.String("actor", actor.Name()), zap.Int("morphs", len(morphs)))

		refs := map[int]int{}
		result.ActorVertices[actor.InternalName()] = refs
		group := &PolygonGroup{
			Name:  egg.SafeName(egg.FixName(actor.Name())),
			Actor: actor.InternalName(),
		}

		vertices, normals, texVertices := g.Vertices(), g.Normals(), g.TexVertices()
		polygons, texPolygons := g.Polygons(), g.TexPolygons()
		sets, texSets := g.Sets(), g.TexSets()
		if len(texPolygons) > 0 && len(texPolygons) != len(polygons) {
			return nil, errors.Errorf("actor %s: %d polygons but %d texture polygons", actor.Name(), len(polygons), len(texPolygons))
		}

		for pi, poly := range polygons {
			if poly.Start < 0 || poly.NumVertices < 0 || poly.Start+poly.NumVertices > len(sets) {
				return nil, errors.Errorf("actor %s: polygon %d set range out of bounds", actor.Name(), pi)
			}
			var texSet []int
			if len(texPolygons) > 0 {
				tp := texPolygons[pi]
				if tp.Start < 0 || tp.NumTexVertices < poly.NumVertices || tp.Start+tp.NumTexVertices > len(texSets) {
					return nil, errors.Errorf("actor %s: texture polygon %d out of bounds", actor.Name(), pi)
				}
				texSet = texSets[tp.Start : tp.Start+tp.NumTexVertices]
			}

			start := len(result.Vertices)
			for k, vi := range sets[poly.Start : poly.Start+poly.NumVertices] {
				if vi < 0 || vi >= len(vertices) {
					return nil, errors.Errorf("actor %s: vertex index %d out of range", actor.Name(), vi)
				}
				index := len(result.Vertices)
				v := &egg.Vertex{Index: index, Position: vertices[vi]}
				if len(normals) > 0 {
					if vi >= len(normals) {
						return nil, errors.Errorf("actor %s: normal index %d out of range", actor.Name(), vi)
					}
					v.Normal = normals[vi]
				}
				if texSet != nil {
					ti := texSet[k]
					if ti < 0 || ti >= len(texVertices) {
						return nil, errors.Errorf("actor %s: texture vertex index %d out of range", actor.Name(), ti)
					}
					v.UV = texVertices[ti]
				}
				applyMorphs(v, vi, morphs, opt.MorphMode)
				result.Vertices = append(result.Vertices, v)
				refs[index] = index
			}
			group.Polygons = append(group.Polygons, PolygonRun{
				Material: poly.MaterialName,
				Start:    start,
				Count:    len(result.Vertices) - start,
			})
		}
		result.Groups = append(result.Groups, group)
		if opt.Progress != nil {
			opt.Progress(n+1, len(actors))
		}
	}
	return result, nil
}

func applyMorphs(v *egg.Vertex, vi int, morphs []scene.Parameter, mode MorphMode) {
	for _, m := range morphs {
		d := m.MorphTargetDelta(vi)
		if d.IsZero() {
			continue
		}
		switch mode {
		case MorphBake:
			v.Position = *v.Position.Add(d.Scale(m.Value()))
		case MorphExport:
			v.Morphs = append(v.Morphs, egg.MorphDelta{Name: egg.SafeName(m.Name()), Delta: d})
		}
	}
}

// vertexRange lists the pool indices of a polygon run.
func (r PolygonRun) vertexRange() []int {
	refs := make([]int, r.Count)
	for i := range refs {
		refs[i] = r.Start + i
	}
	return refs
}
