package converter

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/isblackhole/poser2egg/geom"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/scene"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

const syntheticRootName = "Body"

type GLTFToSceneOption struct {
	// FPS is the sampling rate of the animation. Default: 30
	FPS int `yaml:"fps"`
	// Animation is the index of the sampled animation. -1: none
	Animation int `yaml:"animation"`
	// SourceDir resolves relative image URIs.
	SourceDir string `yaml:"-"`
}

type gltfToScene struct {
	options *GLTFToSceneOption
	doc     *gltf.Document

	parent    []int
	bodyPart  []bool
	world     []*geom.Matrix4
	actors    []*scene.ActorData
	materials []string
	// meshParams lists the actors that received morph parameters from a node's mesh.
	meshParams map[int][]*scene.ActorData
}

func NewGLTFToSceneConverter(options *GLTFToSceneOption) *gltfToScene {
	if options == nil {
		options = &GLTFToSceneOption{}
	}
	if options.FPS <= 0 {
		options.FPS = 30
	}
	return &gltfToScene{options: options}
}

func nodeID(i int) string {
	return fmt.Sprintf("node%d", i)
}

func isZero4(v [4]float32) bool { return v == [4]float32{} }
func isZero3(v [3]float32) bool { return v == [3]float32{} }

func arr3(v *geom.Vector3) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

func restTRS(n *gltf.Node) (*geom.Vector3, *geom.Quaternion, *geom.Vector3) {
	if n.Matrix != [16]float32{} && n.Matrix != gltf.DefaultMatrix {
		return geom.NewMatrix4FromSlice(n.Matrix[:]).Decompose()
	}
	t := geom.NewVector3FromArray(n.Translation)
	r := geom.NewIdentityQuaternion()
	if !isZero4(n.Rotation) {
		r = geom.NewQuaternionFromArray(n.Rotation)
	}
	s := geom.NewVector3(1, 1, 1)
	if !isZero3(n.Scale) {
		s = geom.NewVector3FromArray(n.Scale)
	}
	return t, r, s
}

// Convert builds a scene with one figure named name from doc.
func (c *gltfToScene) Convert(doc *gltf.Document, name string) (*scene.SceneData, error) {
	c.doc = doc
	c.meshParams = map[int][]*scene.ActorData{}
	if len(doc.Nodes) == 0 {
		return nil, errors.New("gltf: document has no nodes")
	}
	if err := c.checkIndices(); err != nil {
		return nil, errors.Wrap(err, "gltf")
	}

	c.parent = make([]int, len(doc.Nodes))
	for i := range c.parent {
		c.parent[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, child := range n.Children {
			if int(child) >= len(doc.Nodes) {
				return nil, errors.Errorf("gltf: node %d has invalid child %d", i, child)
			}
			c.parent[child] = i
		}
	}

	c.bodyPart = make([]bool, len(doc.Nodes))
	for i := range c.bodyPart {
		c.bodyPart[i] = len(doc.Skins) == 0
	}
	for _, skin := range doc.Skins {
		for _, j := range skin.Joints {
			c.bodyPart[j] = true
		}
	}

	var roots []int
	for i := range doc.Nodes {
		if c.parent[i] < 0 {
			roots = append(roots, i)
		}
	}
	c.world = make([]*geom.Matrix4, len(doc.Nodes))
	c.actors = make([]*scene.ActorData, 0, len(doc.Nodes)+1)
	fig := &scene.FigureData{Name: name}
	synthetic := len(roots) > 1
	if synthetic {
		c.actors = append(c.actors, &scene.ActorData{Name: syntheticRootName, InternalName: syntheticRootName})
	}
	var visit func(i int) error
	visit = func(i int) error {
		n := doc.Nodes[i]
		t, r, s := restTRS(n)
		local := geom.NewTRSMatrix4(t, r, s)
		if p := c.parent[i]; p >= 0 {
			c.world[i] = c.world[p].Mul(local)
		} else {
			c.world[i] = local
		}
		a := &scene.ActorData{
			Name:         n.Name,
			InternalName: nodeID(i),
			BodyPart:     &c.bodyPart[i],
			Translation:  [3]float32{t.X, t.Y, t.Z},
			Rotation:     &[4]float32{r.X, r.Y, r.Z, r.W},
			Scale:        &[3]float32{s.X, s.Y, s.Z},
		}
		if a.Name == "" {
			a.Name = nodeID(i)
		}
		if p := c.parent[i]; p >= 0 {
			a.Parent = nodeID(p)
		} else if synthetic {
			a.Parent = syntheticRootName
		}
		c.actors = append(c.actors, a)
		for _, child := range n.Children {
			if err := visit(int(child)); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	if len(c.actors) < len(doc.Nodes) {
		return nil, errors.New("gltf: node hierarchy contains a cycle")
	}
	fig.Root = c.rootID(roots)
	fig.Actors = c.actors

	fig.Materials = c.convertMaterials()
	if err := c.convertMeshes(fig); err != nil {
		return nil, err
	}
	for _, a := range c.actors {
		if a.Geometry != nil {
			fig.Unimesh = append(fig.Unimesh, a.InternalName)
		}
	}

	data := &scene.SceneData{Frames: 1, ContentRoot: c.options.SourceDir, Figures: []*scene.FigureData{fig}}
	if idx := c.options.Animation; idx >= 0 && idx < len(doc.Animations) {
		frames, err := c.sampleAnimation(doc.Animations[idx])
		if err != nil {
			return nil, errors.Wrapf(err, "gltf: animation %d", idx)
		}
		data.Frames = frames
	}
	return data, nil
}

// checkIndices rejects references the converter follows without further checks.
func (c *gltfToScene) checkIndices() error {
	doc := c.doc
	for i, n := range doc.Nodes {
		if n.Mesh != nil && int(*n.Mesh) >= len(doc.Meshes) {
			return errors.Errorf("node %d has invalid mesh %d", i, *n.Mesh)
		}
		if n.Skin != nil && int(*n.Skin) >= len(doc.Skins) {
			return errors.Errorf("node %d has invalid skin %d", i, *n.Skin)
		}
	}
	for i, skin := range doc.Skins {
		for _, j := range skin.Joints {
			if int(j) >= len(doc.Nodes) {
				return errors.Errorf("skin %d has invalid joint %d", i, j)
			}
		}
		if skin.Skeleton != nil && int(*skin.Skeleton) >= len(doc.Nodes) {
			return errors.Errorf("skin %d has invalid skeleton %d", i, *skin.Skeleton)
		}
	}
	for i, t := range doc.Textures {
		if t.Source != nil && int(*t.Source) >= len(doc.Images) {
			return errors.Errorf("texture %d has invalid image %d", i, *t.Source)
		}
	}
	for ai, anim := range doc.Animations {
		for ci, ch := range anim.Channels {
			if ch.Target.Node != nil && int(*ch.Target.Node) >= len(doc.Nodes) {
				return errors.Errorf("animation %d channel %d targets invalid node %d", ai, ci, *ch.Target.Node)
			}
		}
	}
	return nil
}

func (c *gltfToScene) accessor(i uint32) (*gltf.Accessor, error) {
	if int(i) >= len(c.doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", i)
	}
	return c.doc.Accessors[i], nil
}

func (c *gltfToScene) actor(i int) *scene.ActorData {
	id := nodeID(i)
	for _, a := range c.actors {
		if a.InternalName == id {
			return a
		}
	}
	return nil
}

func (c *gltfToScene) depth(i int) int {
	d := 0
	for p := c.parent[i]; p >= 0; p = c.parent[p] {
		d++
	}
	return d
}

func (c *gltfToScene) rootID(roots []int) string {
	if len(c.doc.Skins) > 0 {
		skin := c.doc.Skins[0]
		if skin.Skeleton != nil {
			return nodeID(int(*skin.Skeleton))
		}
		best := -1
		for _, j := range skin.Joints {
			if best < 0 || c.depth(int(j)) < c.depth(best) {
				best = int(j)
			}
		}
		if best >= 0 {
			return nodeID(best)
		}
	}
	if len(roots) == 1 {
		return nodeID(roots[0])
	}
	return syntheticRootName
}

func (c *gltfToScene) convertMaterials() []*scene.MaterialData {
	var result []*scene.MaterialData
	used := map[string]bool{}
	for i, m := range c.doc.Materials {
		name := m.Name
		if name == "" || used[name] {
			name = fmt.Sprintf("material%d", i)
		}
		used[name] = true
		md := &scene.MaterialData{Name: name, Diffuse: [3]float32{1, 1, 1}}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			col := pbr.BaseColorFactorOrDefault()
			md.Diffuse = [3]float32{col[0], col[1], col[2]}
			spec := 1 - pbr.RoughnessFactorOrDefault()
			md.Specular = [3]float32{spec, spec, spec}
			if pbr.BaseColorTexture != nil {
				md.TextureMap = c.imagePath(pbr.BaseColorTexture.Index)
			}
		}
		if m.NormalTexture != nil && m.NormalTexture.Index != nil {
			md.BumpMap = c.imagePath(*m.NormalTexture.Index)
		}
		c.materials = append(c.materials, name)
		result = append(result, md)
	}
	return result
}

func (c *gltfToScene) imagePath(texture uint32) string {
	if int(texture) >= len(c.doc.Textures) || c.doc.Textures[texture].Source == nil {
		return ""
	}
	img := c.doc.Images[*c.doc.Textures[texture].Source]
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		logger.Warn("embedded image is not exported", zap.String("image", img.Name))
		return ""
	}
	if filepath.IsAbs(img.URI) || c.options.SourceDir == "" {
		return img.URI
	}
	return filepath.Join(c.options.SourceDir, filepath.FromSlash(img.URI))
}

// actorGeometry accumulates triangles for one actor.
type actorGeometry struct {
	data   *scene.GeometryData
	params map[string]*scene.ParameterData
}

func (c *gltfToScene) convertMeshes(fig *scene.FigureData) error {
	geoms := map[*scene.ActorData]*actorGeometry{}
	defaultMaterial := ""
	get := func(a *scene.ActorData) *actorGeometry {
		g, ok := geoms[a]
		if !ok {
			g = &actorGeometry{data: &scene.GeometryData{}, params: map[string]*scene.ParameterData{}}
			geoms[a] = g
			a.Geometry = g.data
		}
		return g
	}

	for ni, n := range c.doc.Nodes {
		if n.Mesh == nil {
			continue
		}
		mesh := c.doc.Meshes[*n.Mesh]
		var skin *gltf.Skin
		if n.Skin != nil {
			skin = c.doc.Skins[*n.Skin]
		}
		owner := c.ownerActor(ni, fig.Root)
		targetNames := morphTargetNames(mesh)

		for pi, p := range mesh.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				logger.Warn("skip non triangle primitive", zap.String("mesh", mesh.Name), zap.Int("primitive", pi))
				continue
			}
			prim, err := c.readPrimitive(p, skin != nil)
			if err != nil {
				return errors.Wrapf(err, "gltf: mesh %q primitive %d", mesh.Name, pi)
			}
			if skin == nil {
				prim.transform(c.world[ni])
			}
			material := ""
			if p.Material != nil && int(*p.Material) < len(c.materials) {
				material = c.materials[*p.Material]
			} else {
				if defaultMaterial == "" {
					defaultMaterial = "default"
					fig.Materials = append(fig.Materials, &scene.MaterialData{Name: defaultMaterial, Diffuse: [3]float32{1, 1, 1}})
				}
				material = defaultMaterial
			}

			// gltf vertex index to actor local index, per actor
			local := map[*scene.ActorData]map[uint32]int{}
			for t := 0; t+2 < len(prim.indices); t += 3 {
				tri := prim.indices[t : t+3]
				a := owner
				if skin != nil {
					if j := prim.dominantJoint(tri[0]); j >= 0 && j < len(skin.Joints) {
						a = c.actor(int(skin.Joints[j]))
					}
				}
				g := get(a)
				if local[a] == nil {
					local[a] = map[uint32]int{}
				}
				start := len(g.data.Sets)
				for _, vi := range tri {
					li, ok := local[a][vi]
					if !ok {
						li = len(g.data.Vertices)
						local[a][vi] = li
						g.data.Vertices = append(g.data.Vertices, prim.positions[vi])
						g.data.Normals = append(g.data.Normals, prim.normal(vi))
						g.data.TexVertices = append(g.data.TexVertices, prim.uv(vi))
						for ti, deltas := range prim.targets {
							if int(vi) < len(deltas) && !isZero3(deltas[vi]) {
								param := c.param(g, a, ni, mesh, targetNames[ti], ti)
								param.Deltas[li] = deltas[vi]
							}
						}
					}
					g.data.Sets = append(g.data.Sets, li)
					g.data.TexSets = append(g.data.TexSets, li)
				}
				g.data.Polygons = append(g.data.Polygons, scene.PolygonData{Start: start, Count: 3, Material: material})
				g.data.TexPolygons = append(g.data.TexPolygons, scene.TexPolygonData{Start: start, Count: 3})
			}
		}
	}
	return nil
}

// ownerActor is the actor of node i or of its nearest body part ancestor.
func (c *gltfToScene) ownerActor(i int, root string) *scene.ActorData {
	for n := i; n >= 0; n = c.parent[n] {
		if c.bodyPart[n] {
			return c.actor(n)
		}
	}
	for _, a := range c.actors {
		if a.InternalName == root {
			return a
		}
	}
	return c.actor(i)
}

func (c *gltfToScene) param(g *actorGeometry, a *scene.ActorData, node int, mesh *gltf.Mesh, name string, ti int) *scene.ParameterData {
	if p, ok := g.params[name]; ok {
		return p
	}
	p := &scene.ParameterData{Name: name, Morph: true, Deltas: map[int][3]float32{}}
	if ti < len(mesh.Weights) {
		p.Value = mesh.Weights[ti]
	}
	g.params[name] = p
	a.Parameters = append(a.Parameters, p)
	c.meshParams[node] = appendActor(c.meshParams[node], a)
	return p
}

func appendActor(list []*scene.ActorData, a *scene.ActorData) []*scene.ActorData {
	for _, v := range list {
		if v == a {
			return list
		}
	}
	return append(list, a)
}

func morphTargetNames(mesh *gltf.Mesh) []string {
	count := 0
	for _, p := range mesh.Primitives {
		if len(p.Targets) > count {
			count = len(p.Targets)
		}
	}
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("morph%d", i)
	}
	if extras, ok := mesh.Extras.(map[string]interface{}); ok {
		switch v := extras["targetNames"].(type) {
		case []string:
			copy(names, v)
		case []interface{}:
			for i, n := range v {
				if s, ok := n.(string); ok && i < len(names) {
					names[i] = s
				}
			}
		}
	}
	return names
}

type primitive struct {
	indices   []uint32
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	joints    [][4]uint16
	weights   [][4]float32
	targets   [][][3]float32
}

func (c *gltfToScene) readPrimitive(p *gltf.Primitive, skinned bool) (*primitive, error) {
	doc := c.doc
	prim := &primitive{}
	pos, ok := p.Attributes["POSITION"]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	acr, err := c.accessor(pos)
	if err != nil {
		return nil, err
	}
	if prim.positions, err = modeler.ReadPosition(doc, acr, nil); err != nil {
		return nil, err
	}
	if a, ok := p.Attributes["NORMAL"]; ok {
		if acr, err = c.accessor(a); err != nil {
			return nil, err
		}
		if prim.normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
			return nil, err
		}
	}
	if a, ok := p.Attributes["TEXCOORD_0"]; ok {
		if acr, err = c.accessor(a); err != nil {
			return nil, err
		}
		if prim.uvs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
			return nil, err
		}
	}
	if skinned {
		j, jok := p.Attributes["JOINTS_0"]
		w, wok := p.Attributes["WEIGHTS_0"]
		if jok && wok {
			if acr, err = c.accessor(j); err != nil {
				return nil, err
			}
			if prim.joints, err = modeler.ReadJoints(doc, acr, nil); err != nil {
				return nil, err
			}
			if acr, err = c.accessor(w); err != nil {
				return nil, err
			}
			if prim.weights, err = modeler.ReadWeights(doc, acr, nil); err != nil {
				return nil, err
			}
		}
	}
	if p.Indices != nil {
		if acr, err = c.accessor(*p.Indices); err != nil {
			return nil, err
		}
		if prim.indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return nil, err
		}
	} else {
		prim.indices = make([]uint32, len(prim.positions))
		for i := range prim.indices {
			prim.indices[i] = uint32(i)
		}
	}
	for _, idx := range prim.indices {
		if int(idx) >= len(prim.positions) {
			return nil, errors.Errorf("index %d out of range", idx)
		}
	}
	for _, t := range p.Targets {
		var deltas [][3]float32
		if a, ok := t["POSITION"]; ok {
			if acr, err = c.accessor(a); err != nil {
				return nil, err
			}
			if deltas, err = modeler.ReadPosition(doc, acr, nil); err != nil {
				return nil, err
			}
		}
		prim.targets = append(prim.targets, deltas)
	}
	return prim, nil
}

// transform moves the primitive from node space to world space.
func (p *primitive) transform(m *geom.Matrix4) {
	for i, v := range p.positions {
		p.positions[i] = arr3(m.ApplyTo(geom.NewVector3FromArray(v)))
	}
	for i, n := range p.normals {
		p.normals[i] = arr3(m.ApplyToDirection(geom.NewVector3FromArray(n)).Normalize())
	}
	for _, deltas := range p.targets {
		for i, d := range deltas {
			deltas[i] = arr3(m.ApplyToDirection(geom.NewVector3FromArray(d)))
		}
	}
}

func (p *primitive) normal(i uint32) [3]float32 {
	if int(i) < len(p.normals) {
		return p.normals[i]
	}
	return [3]float32{}
}

func (p *primitive) uv(i uint32) [2]float32 {
	if int(i) < len(p.uvs) {
		return p.uvs[i]
	}
	return [2]float32{}
}

// dominantJoint returns the skin joint slot with the largest weight on vertex i, or -1.
func (p *primitive) dominantJoint(i uint32) int {
	if int(i) >= len(p.joints) || int(i) >= len(p.weights) {
		return -1
	}
	best, slot := float32(0), -1
	for k, w := range p.weights[i] {
		if w > best {
			best, slot = w, k
		}
	}
	if slot < 0 {
		return -1
	}
	return int(p.joints[i][slot])
}

type channelSampler struct {
	node     int
	path     gltf.TRSProperty
	interp   gltf.Interpolation
	times    []float32
	values   []float32
	width    int
	duration float32
}

// at returns the value of the channel at time t.
func (s *channelSampler) at(t float32) []float32 {
	stride := s.width
	valueOffset := 0
	if s.interp == gltf.InterpolationCubicSpline {
		stride = s.width * 3
		valueOffset = s.width
	}
	key := func(k int) []float32 {
		off := k*stride + valueOffset
		return s.values[off : off+s.width]
	}
	n := len(s.times)
	if t <= s.times[0] || n == 1 {
		return key(0)
	}
	if t >= s.times[n-1] {
		return key(n - 1)
	}
	k := sort.Search(n, func(i int) bool { return s.times[i] > t }) - 1
	if s.interp == gltf.InterpolationStep {
		return key(k)
	}
	a := (t - s.times[k]) / (s.times[k+1] - s.times[k])
	v0, v1 := key(k), key(k+1)
	switch {
	case s.path == gltf.TRSRotation:
		q0 := mgl32.Quat{W: v0[3], V: mgl32.Vec3{v0[0], v0[1], v0[2]}}
		q1 := mgl32.Quat{W: v1[3], V: mgl32.Vec3{v1[0], v1[1], v1[2]}}
		if q0.Dot(q1) < 0 {
			q1 = q1.Scale(-1)
		}
		q := mgl32.QuatSlerp(q0, q1, a).Normalize()
		return []float32{q.V[0], q.V[1], q.V[2], q.W}
	case s.width == 3:
		p0, p1 := mgl32.Vec3{v0[0], v0[1], v0[2]}, mgl32.Vec3{v1[0], v1[1], v1[2]}
		p := p0.Add(p1.Sub(p0).Mul(a))
		return p[:]
	default:
		r := make([]float32, s.width)
		for i := range r {
			r[i] = v0[i] + (v1[i]-v0[i])*a
		}
		return r
	}
}

func (c *gltfToScene) readFloats(acr uint32) ([]float32, error) {
	a, err := c.accessor(acr)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(c.doc, a, nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []float32:
		return v, nil
	case [][3]float32:
		r := make([]float32, 0, len(v)*3)
		for _, e := range v {
			r = append(r, e[:]...)
		}
		return r, nil
	case [][4]float32:
		r := make([]float32, 0, len(v)*4)
		for _, e := range v {
			r = append(r, e[:]...)
		}
		return r, nil
	}
	return nil, errors.Errorf("accessor %d: unsupported component type", acr)
}

func (c *gltfToScene) channelSamplers(anim *gltf.Animation) ([]*channelSampler, error) {
	var result []*channelSampler
	for ci, ch := range anim.Channels {
		if ch.Sampler == nil || ch.Target.Node == nil || int(*ch.Sampler) >= len(anim.Samplers) {
			continue
		}
		smp := anim.Samplers[*ch.Sampler]
		if smp.Input == nil || smp.Output == nil {
			continue
		}
		s := &channelSampler{node: int(*ch.Target.Node), path: ch.Target.Path, interp: smp.Interpolation}
		var err error
		if s.times, err = c.readFloats(*smp.Input); err != nil {
			return nil, errors.Wrapf(err, "channel %d input", ci)
		}
		if s.values, err = c.readFloats(*smp.Output); err != nil {
			return nil, errors.Wrapf(err, "channel %d output", ci)
		}
		if len(s.times) == 0 {
			continue
		}
		switch s.path {
		case gltf.TRSTranslation, gltf.TRSScale:
			s.width = 3
		case gltf.TRSRotation:
			s.width = 4
		case gltf.TRSWeights:
			s.width = len(s.values) / len(s.times)
			if s.interp == gltf.InterpolationCubicSpline {
				s.width /= 3
			}
		}
		need := s.width * len(s.times)
		if s.interp == gltf.InterpolationCubicSpline {
			need *= 3
		}
		if s.width == 0 || len(s.values) < need {
			return nil, errors.Errorf("channel %d: %d values for %d keys", ci, len(s.values), len(s.times))
		}
		s.duration = s.times[len(s.times)-1]
		result = append(result, s)
	}
	return result, nil
}

// sampleAnimation writes one keyframe per frame for every animated node and
// returns the frame count.
func (c *gltfToScene) sampleAnimation(anim *gltf.Animation) (int, error) {
	samplers, err := c.channelSamplers(anim)
	if err != nil {
		return 0, err
	}
	var duration float32
	for _, s := range samplers {
		if s.duration > duration {
			duration = s.duration
		}
	}
	fps := float32(c.options.FPS)
	frames := int(math.Round(float64(duration*fps))) + 1
	logger.Debug("sample gltf animation", zap.String("animation", anim.Name), zap.Int("frames", frames), zap.Int("channels", len(samplers)))

	keys := map[int][]*scene.KeyframeData{}
	key := func(node, frame int) *scene.KeyframeData {
		ks := keys[node]
		if len(ks) <= frame {
			for f := len(ks); f < frames; f++ {
				ks = append(ks, &scene.KeyframeData{Frame: f})
			}
			keys[node] = ks
		}
		return ks[frame]
	}

	for frame := 0; frame < frames; frame++ {
		t := float32(frame) / fps
		for _, s := range samplers {
			v := s.at(t)
			switch s.path {
			case gltf.TRSTranslation:
				key(s.node, frame).Translation = &[3]float32{v[0], v[1], v[2]}
			case gltf.TRSRotation:
				key(s.node, frame).Rotation = &[4]float32{v[0], v[1], v[2], v[3]}
			case gltf.TRSScale:
				key(s.node, frame).Scale = &[3]float32{v[0], v[1], v[2]}
			case gltf.TRSWeights:
				c.weightKeys(s.node, frame, v)
			}
		}
	}

	for node, ks := range keys {
		if a := c.actor(node); a != nil {
			a.Keyframes = append(a.Keyframes, ks...)
		}
	}
	return frames, nil
}

func (c *gltfToScene) weightKeys(node, frame int, weights []float32) {
	n := c.doc.Nodes[node]
	if n.Mesh == nil {
		return
	}
	names := morphTargetNames(c.doc.Meshes[*n.Mesh])
	for _, a := range c.meshParams[node] {
		var k *scene.KeyframeData
		for _, e := range a.Keyframes {
			if e.Frame == frame {
				k = e
			}
		}
		if k == nil {
			k = &scene.KeyframeData{Frame: frame, Values: map[string]float32{}}
			a.Keyframes = append(a.Keyframes, k)
		}
		if k.Values == nil {
			k.Values = map[string]float32{}
		}
		for i, w := range weights {
			if i < len(names) {
				k.Values[names[i]] = w
			}
		}
	}
}
