package converter

import (
	"path/filepath"
	"strings"

	"github.com/isblackhole/poser2egg/egg"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/scene"
	"github.com/isblackhole/poser2egg/texture"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrNoFigure = errors.New("no figure selected")

type PoserToEggOption struct {
	MorphMode            MorphMode `yaml:"morphMode"`
	MorphThreshold       float32   `yaml:"morphThreshold"`
	MorphExcludeNames    []string  `yaml:"morphExcludeNames"`
	MorphExcludePrefixes []string  `yaml:"morphExcludePrefixes"`

	Textures             bool         `yaml:"textures"`
	WrapMode             egg.WrapMode `yaml:"wrapMode"`
	IncludeTransparency  bool         `yaml:"includeTransparency"`
	RelativeTexturePaths bool         `yaml:"relativeTexturePaths"`
	SpecularScale        float32      `yaml:"specularScale"`
	Shininess            float32      `yaml:"shininess"`
	SkipMaterials        []string     `yaml:"skipMaterials"`

	ExcludeActors []string `yaml:"excludeActors"`
	RootByName    bool     `yaml:"rootByName"`

	IncludeLastFrame bool `yaml:"includeLastFrame"`
	AnimationFPS     int  `yaml:"animationFPS"`

	CoordinateSystem string `yaml:"coordinateSystem"`
	VertexPoolName   string `yaml:"vertexPoolName"`

	// Progress is called at safe points with the stage name.
	Progress func(stage string, done, total int) `yaml:"-"`
}

func DefaultPoserToEggOption() *PoserToEggOption {
	return &PoserToEggOption{
		MorphMode:            MorphBake,
		MorphThreshold:       0.1,
		MorphExcludeNames:    []string{"-"},
		MorphExcludePrefixes: []string{"EMPTY", "V4"},
		Textures:             true,
		WrapMode:             egg.WrapRepeat,
		IncludeTransparency:  true,
		SpecularScale:        0.2,
		Shininess:            25,
		SkipMaterials:        []string{"Preview"},
		ExcludeActors:        []string{"BodyMorphs"},
		AnimationFPS:         30,
		CoordinateSystem:     "Y-Up-Right",
		VertexPoolName:       "mesh",
	}
}

type poserToEgg struct {
	options *PoserToEggOption

	figure   scene.Figure
	name     string
	registry *TextureRegistry
	joints   []*Joint
}

func NewPoserToEggConverter(options *PoserToEggOption) *poserToEgg {
	if options == nil {
		options = DefaultPoserToEggOption()
	}
	if options.CoordinateSystem == "" {
		options.CoordinateSystem = "Y-Up-Right"
	}
	if options.VertexPoolName == "" {
		options.VertexPoolName = "mesh"
	}
	if options.AnimationFPS <= 0 {
		options.AnimationFPS = 30
	}
	return &poserToEgg{options: options}
}

func (c *poserToEgg) progress(stage string) func(done, total int) {
	if c.options.Progress == nil {
		return nil
	}
	return func(done, total int) { c.options.Progress(stage, done, total) }
}

// Joints returns the joint tree of the last Convert.
func (c *poserToEgg) Joints() []*Joint {
	return c.joints
}

// Convert builds the model document for the current figure of sc.
func (c *poserToEgg) Convert(sc scene.Scene) (*egg.Document, error) {
	fig := sc.CurrentFigure()
	if fig == nil {
		return nil, ErrNoFigure
	}
	c.figure = fig
	c.name = egg.SafeName(egg.FixName(fig.Name()))
	c.registry = NewTextureRegistry(sc.ContentRootLocation())
	logger.Info("export figure", zap.String("figure", fig.Name()))

	materials, err := CollectMaterials(fig.Materials(), c.registry, &MaterialOption{
		SkipMaterials:       c.options.SkipMaterials,
		IncludeTransparency: c.options.IncludeTransparency,
		SpecularScale:       c.options.SpecularScale,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("materials collected", zap.Int("materials", len(materials)), zap.Int("textures", len(c.registry.Textures())))

	flat, err := Flatten(fig.UnimeshActors(), &FlattenOption{
		MorphMode:            c.options.MorphMode,
		MorphThreshold:       c.options.MorphThreshold,
		MorphExcludeNames:    c.options.MorphExcludeNames,
		MorphExcludePrefixes: c.options.MorphExcludePrefixes,
		Progress:             c.progress("vertices"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "flatten geometry")
	}
	logger.Debug("vertices collected", zap.Int("vertices", len(flat.Vertices)))

	c.joints = CollectJoints(fig.ParentActor(), flat.ActorVertices, &JointOption{
		ExcludeActors: c.options.ExcludeActors,
		RootByName:    c.options.RootByName,
	})

	groups, err := c.polygonGroups(materials, flat.Groups)
	if err != nil {
		return nil, err
	}

	doc := &egg.Document{
		CoordinateSystem: c.options.CoordinateSystem,
		Comment:          "poser2egg - " + egg.FixName(fig.Name()),
	}
	for _, m := range materials {
		doc.Materials = append(doc.Materials, &egg.Material{
			Name:      m.EggName,
			Diffuse:   m.Diffuse,
			Specular:  m.Specular,
			Shininess: c.options.Shininess,
		})
	}
	if c.options.Textures {
		for _, t := range c.registry.Textures() {
			doc.Textures = append(doc.Textures, &egg.Texture{Name: t.Name, Path: t.Path, Mode: t.Mode, Wrap: c.options.WrapMode})
		}
	}

	g := &egg.Group{
		Name:       c.name,
		Dart:       true,
		VertexPool: &egg.VertexPool{Name: c.options.VertexPoolName, Vertices: flat.Vertices},
		Groups:     groups,
	}
	for _, j := range c.joints {
		g.Joints = append(g.Joints, j.toEgg())
	}
	doc.Group = g
	return doc, nil
}

func (c *poserToEgg) polygonGroups(materials []*MaterialRecord, groups []*PolygonGroup) ([]*egg.PolygonGroup, error) {
	byName := map[string]*MaterialRecord{}
	for _, m := range materials {
		byName[m.Name] = m
	}

	var result []*egg.PolygonGroup
	for n, g := range groups {
		pg := &egg.PolygonGroup{Name: g.Name}
		for _, run := range g.Polygons {
			m, ok := byName[run.Material]
			if !ok {
				return nil, errors.Errorf("group %s: unresolvable material reference %q", g.Name, run.Material)
			}
			poly := &egg.Polygon{MRef: m.EggName, VertexRefs: run.vertexRange()}
			if c.options.Textures {
				poly.TRefs = m.Textures
			}
			pg.Polygons = append(pg.Polygons, poly)
		}
		result = append(result, pg)
		if p := c.progress("polygons"); p != nil {
			p(n+1, len(groups))
		}
	}
	return result, nil
}

// ConvertAnimation samples the joints of the last Convert over the scene frames.
func (c *poserToEgg) ConvertAnimation(sc scene.Scene) (*egg.AnimationBundle, error) {
	if c.figure == nil {
		return nil, errors.New("ConvertAnimation called before Convert")
	}
	frames := sc.NumFrames() - 1
	if c.options.IncludeLastFrame {
		frames = sc.NumFrames()
	}
	if frames < 0 {
		frames = 0
	}
	logger.Info("sample animation", zap.Int("frames", frames), zap.Int("fps", c.options.AnimationFPS))

	samples, err := SampleAnimation(sc, c.joints, c.figure.ParentActor(), frames)
	if err != nil {
		return nil, err
	}

	bundle := &egg.AnimationBundle{
		Name:     c.name,
		FPS:      c.options.AnimationFPS,
		Order:    egg.DefaultAnimationOrder,
		Contents: egg.DefaultAnimationContents,
	}
	var table func(j *Joint) *egg.AnimationTable
	table = func(j *Joint) *egg.AnimationTable {
		t := &egg.AnimationTable{Name: j.Name}
		for _, s := range samples[j.Name] {
			t.Frames = append(t.Frames, egg.AnimationFrame{
				Roll:        s.HPR.Z,
				Pitch:       s.HPR.Y,
				Heading:     s.HPR.X,
				Translation: s.Translation,
			})
		}
		for _, child := range j.Children {
			t.Children = append(t.Children, table(child))
		}
		return t
	}
	for _, j := range c.joints {
		bundle.Tables = append(bundle.Tables, table(j))
	}
	return bundle, nil
}

// ResolveTexturePaths copies or converts the textures of doc with tc when it
// is not nil, and rewrites paths relative to baseDir when RelativeTexturePaths
// is set. Textures that cannot be read keep their path.
func (c *poserToEgg) ResolveTexturePaths(doc *egg.Document, baseDir string, tc *texture.Converter) error {
	for _, t := range doc.Textures {
		src := t.Path
		if c.registry != nil {
			if rec := c.registry.Lookup(t.Name); rec != nil {
				src = rec.Source
			}
		}
		path := filepath.FromSlash(strings.ReplaceAll(src, "\\", "/"))
		if tc != nil {
			dst, err := tc.Convert(path, strings.Trim(t.Name, `"`))
			if err != nil {
				logger.Warn("texture not converted", zap.String("texture", t.Name), zap.Error(err))
				continue
			}
			path = dst
		}
		if c.options.RelativeTexturePaths {
			abs, err := filepath.Abs(path)
			if err != nil {
				return errors.Wrapf(err, "texture %s", t.Name)
			}
			base, err := filepath.Abs(baseDir)
			if err != nil {
				return errors.Wrapf(err, "texture base %s", baseDir)
			}
			if rel, err := filepath.Rel(base, abs); err == nil {
				path = rel
			}
		}
		if tc != nil || c.options.RelativeTexturePaths {
			t.Path = filepath.ToSlash(path)
		}
	}
	return nil
}
