package scene

import (
	"sort"

	"github.com/isblackhole/poser2egg/geom"
	"github.com/pkg/errors"
)

// MemScene is an in-memory Scene built from SceneData.
type MemScene struct {
	frames      int
	frame       int
	contentRoot string
	figures     []*MemFigure
	current     *MemFigure
}

type MemFigure struct {
	name      string
	root      *MemActor
	materials []*MemMaterial
	actors    []*MemActor
	order     []*MemActor // parents first
	unimesh   []*MemActor
}

type MemActor struct {
	data      *ActorData
	parent    *MemActor
	children  []*MemActor
	geometry  *MemGeometry
	params    []*MemParameter
	keyframes []*KeyframeData

	rotation *geom.Quaternion
	local    *geom.Matrix4
	world    *geom.Matrix4
}

type MemMaterial struct {
	data *MaterialData
}

type MemGeometry struct {
	vertices    []geom.Vector3
	normals     []geom.Vector3
	texVertices []geom.Vector2
	polygons    []Polygon
	texPolygons []TexPolygon
	sets        []int
	texSets     []int
}

type MemParameter struct {
	data  *ParameterData
	value float32
}

// Build validates the records and evaluates the pose for the initial frame.
func Build(data *SceneData) (*MemScene, error) {
	sc := &MemScene{
		frames:      data.Frames,
		frame:       data.Frame,
		contentRoot: data.ContentRoot,
	}
	if sc.frames <= 0 {
		sc.frames = 1
	}
	if sc.frame < 0 || sc.frame >= sc.frames {
		return nil, errors.Errorf("frame %d out of range [0, %d)", sc.frame, sc.frames)
	}
	for _, fd := range data.Figures {
		fig, err := buildFigure(fd)
		if err != nil {
			return nil, errors.Wrapf(err, "figure %q", fd.Name)
		}
		sc.figures = append(sc.figures, fig)
		if fd.Name == data.CurrentFigure {
			sc.current = fig
		}
	}
	if sc.current == nil && data.CurrentFigure != "" {
		return nil, errors.Errorf("current figure %q not found", data.CurrentFigure)
	}
	if sc.current == nil && len(sc.figures) > 0 {
		sc.current = sc.figures[0]
	}
	sc.DrawAll()
	return sc, nil
}

func buildFigure(fd *FigureData) (*MemFigure, error) {
	fig := &MemFigure{name: fd.Name}
	for _, md := range fd.Materials {
		fig.materials = append(fig.materials, &MemMaterial{data: md})
	}

	byID := map[string]*MemActor{}
	for _, ad := range fd.Actors {
		id := ad.ID()
		if id == "" {
			return nil, errors.New("actor without name")
		}
		if _, exist := byID[id]; exist {
			return nil, errors.Errorf("duplicate actor %q", id)
		}
		a, err := buildActor(ad)
		if err != nil {
			return nil, errors.Wrapf(err, "actor %q", id)
		}
		byID[id] = a
		fig.actors = append(fig.actors, a)
	}

	var roots []*MemActor
	for _, a := range fig.actors {
		if a.data.Parent == "" {
			roots = append(roots, a)
			continue
		}
		p, ok := byID[a.data.Parent]
		if !ok {
			return nil, errors.Errorf("actor %q: parent %q not found", a.data.ID(), a.data.Parent)
		}
		a.parent = p
		p.children = append(p.children, a)
	}

	var visit func(a *MemActor)
	visit = func(a *MemActor) {
		fig.order = append(fig.order, a)
		for _, c := range a.children {
			visit(c)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	if len(fig.order) != len(fig.actors) {
		return nil, errors.New("actor hierarchy contains a cycle")
	}

	if fd.Root != "" {
		fig.root = byID[fd.Root]
		if fig.root == nil {
			return nil, errors.Errorf("root actor %q not found", fd.Root)
		}
	} else if len(roots) > 0 {
		fig.root = roots[0]
	} else {
		return nil, errors.New("figure has no actors")
	}

	if fd.Unimesh != nil {
		for _, id := range fd.Unimesh {
			a, ok := byID[id]
			if !ok {
				return nil, errors.Errorf("unimesh actor %q not found", id)
			}
			if a.geometry == nil {
				return nil, errors.Errorf("unimesh actor %q has no geometry", id)
			}
			fig.unimesh = append(fig.unimesh, a)
		}
	} else {
		for _, a := range fig.actors {
			if a.geometry != nil {
				fig.unimesh = append(fig.unimesh, a)
			}
		}
	}
	return fig, nil
}

func buildActor(ad *ActorData) (*MemActor, error) {
	a := &MemActor{data: ad}
	if g := ad.Geometry; g != nil {
		a.geometry = buildGeometry(g)
	}
	seen := map[string]bool{}
	for _, pd := range ad.Parameters {
		if seen[pd.Name] {
			return nil, errors.Errorf("duplicate parameter %q", pd.Name)
		}
		seen[pd.Name] = true
		a.params = append(a.params, &MemParameter{data: pd, value: pd.Value})
	}
	a.keyframes = append(a.keyframes, ad.Keyframes...)
	sort.SliceStable(a.keyframes, func(i, j int) bool {
		return a.keyframes[i].Frame < a.keyframes[j].Frame
	})
	return a, nil
}

func buildGeometry(g *GeometryData) *MemGeometry {
	mg := &MemGeometry{
		sets:    append([]int(nil), g.Sets...),
		texSets: append([]int(nil), g.TexSets...),
	}
	for _, v := range g.Vertices {
		mg.vertices = append(mg.vertices, *geom.NewVector3FromArray(v))
	}
	for _, v := range g.Normals {
		mg.normals = append(mg.normals, *geom.NewVector3FromArray(v))
	}
	for _, v := range g.TexVertices {
		mg.texVertices = append(mg.texVertices, *geom.NewVector2FromArray(v))
	}
	for _, p := range g.Polygons {
		mg.polygons = append(mg.polygons, Polygon{Start: p.Start, NumVertices: p.Count, MaterialName: p.Material})
	}
	for _, p := range g.TexPolygons {
		mg.texPolygons = append(mg.texPolygons, TexPolygon{Start: p.Start, NumTexVertices: p.Count})
	}
	return mg
}

func (sc *MemScene) CurrentFigure() Figure {
	if sc.current == nil {
		return nil
	}
	return sc.current
}

// Figures returns every figure in declaration order.
func (sc *MemScene) Figures() []*MemFigure {
	return sc.figures
}

// SelectFigure makes the named figure current.
func (sc *MemScene) SelectFigure(name string) error {
	for _, f := range sc.figures {
		if f.name == name {
			sc.current = f
			return nil
		}
	}
	return errors.Errorf("figure %q not found", name)
}

func (sc *MemScene) NumFrames() int {
	return sc.frames
}

func (sc *MemScene) Frame() int {
	return sc.frame
}

func (sc *MemScene) SetFrame(frame int) error {
	if frame < 0 || frame >= sc.frames {
		return errors.Errorf("frame %d out of range [0, %d)", frame, sc.frames)
	}
	sc.frame = frame
	return nil
}

func (sc *MemScene) DrawAll() {
	for _, f := range sc.figures {
		f.pose(sc.frame)
	}
}

func (sc *MemScene) ContentRootLocation() string {
	return sc.contentRoot
}

func (f *MemFigure) Name() string {
	return f.name
}

func (f *MemFigure) ParentActor() Actor {
	return f.root
}

func (f *MemFigure) Materials() []Material {
	r := make([]Material, len(f.materials))
	for i, m := range f.materials {
		r[i] = m
	}
	return r
}

func (f *MemFigure) UnimeshActors() []Actor {
	r := make([]Actor, len(f.unimesh))
	for i, a := range f.unimesh {
		r[i] = a
	}
	return r
}

// Actor finds an actor by internal name.
func (f *MemFigure) Actor(id string) *MemActor {
	for _, a := range f.actors {
		if a.data.ID() == id {
			return a
		}
	}
	return nil
}

func (a *MemActor) Name() string {
	return a.data.Name
}

func (a *MemActor) InternalName() string {
	return a.data.ID()
}

func (a *MemActor) IsBodyPart() bool {
	return a.data.IsBodyPart()
}

func (a *MemActor) Parent() Actor {
	if a.parent == nil {
		return nil
	}
	return a.parent
}

func (a *MemActor) Children() []Actor {
	r := make([]Actor, len(a.children))
	for i, c := range a.children {
		r[i] = c
	}
	return r
}

func (a *MemActor) Geometry() Geometry {
	if a.geometry == nil {
		return nil
	}
	return a.geometry
}

func (a *MemActor) Parameters() []Parameter {
	r := make([]Parameter, len(a.params))
	for i, p := range a.params {
		r[i] = p
	}
	return r
}

func (a *MemActor) Origin() *geom.Vector3 {
	return a.world.Translation()
}

func (a *MemActor) WorldMatrix() *geom.Matrix4 {
	return a.world.Clone()
}

func (a *MemActor) LocalMatrix() *geom.Matrix4 {
	return a.local.Clone()
}

func (a *MemActor) LocalQuaternion() *geom.Quaternion {
	q := *a.rotation
	return &q
}

func (m *MemMaterial) Name() string {
	return m.data.Name
}

func (m *MemMaterial) DiffuseColor() [3]float32 {
	return m.data.Diffuse
}

func (m *MemMaterial) SpecularColor() [3]float32 {
	return m.data.Specular
}

func (m *MemMaterial) TextureMapFileName() string {
	return m.data.TextureMap
}

func (m *MemMaterial) BumpMapFileName() string {
	return m.data.BumpMap
}

func (m *MemMaterial) TransparencyMapFileName() string {
	return m.data.TransparencyMap
}

func (g *MemGeometry) Vertices() []geom.Vector3 {
	return g.vertices
}

func (g *MemGeometry) Normals() []geom.Vector3 {
	return g.normals
}

func (g *MemGeometry) TexVertices() []geom.Vector2 {
	return g.texVertices
}

func (g *MemGeometry) Polygons() []Polygon {
	return g.polygons
}

func (g *MemGeometry) TexPolygons() []TexPolygon {
	return g.texPolygons
}

func (g *MemGeometry) Sets() []int {
	return g.sets
}

func (g *MemGeometry) TexSets() []int {
	return g.texSets
}

func (p *MemParameter) Name() string {
	return p.data.Name
}

func (p *MemParameter) IsMorphTarget() bool {
	return p.data.Morph
}

func (p *MemParameter) Value() float32 {
	return p.value
}

func (p *MemParameter) MorphTargetDelta(v int) geom.Vector3 {
	d, ok := p.data.Deltas[v]
	if !ok {
		return geom.Vector3{}
	}
	return *geom.NewVector3FromArray(d)
}
