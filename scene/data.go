package scene

// SceneData is the serializable form of a scene. It is what the YAML loader
// reads and what the glTF adapter produces; Build turns it into a MemScene.
type SceneData struct {
	Frames        int           `yaml:"frames"`
	Frame         int           `yaml:"frame"`
	ContentRoot   string        `yaml:"contentRoot"`
	CurrentFigure string        `yaml:"currentFigure"`
	Figures       []*FigureData `yaml:"figures"`
}

type FigureData struct {
	Name string `yaml:"name"`
	// Root is the internal name of the parent actor. Defaults to the first actor without parent.
	Root string `yaml:"root"`
	// Unimesh lists internal names in unified mesh order. Defaults to every actor with geometry.
	Unimesh   []string        `yaml:"unimesh"`
	Materials []*MaterialData `yaml:"materials"`
	Actors    []*ActorData    `yaml:"actors"`
}

type MaterialData struct {
	Name            string     `yaml:"name"`
	Diffuse         [3]float32 `yaml:"diffuse"`
	Specular        [3]float32 `yaml:"specular"`
	TextureMap      string     `yaml:"textureMap"`
	BumpMap         string     `yaml:"bumpMap"`
	TransparencyMap string     `yaml:"transparencyMap"`
}

type ActorData struct {
	Name         string `yaml:"name"`
	InternalName string `yaml:"internalName"`
	// Parent is the internal name of the parent actor.
	Parent   string `yaml:"parent"`
	BodyPart *bool  `yaml:"bodyPart"`

	// Rest pose relative to the parent actor.
	Translation [3]float32  `yaml:"translation"`
	Rotation    *[4]float32 `yaml:"rotation"` // x, y, z, w
	Scale       *[3]float32 `yaml:"scale"`

	Geometry   *GeometryData    `yaml:"geometry"`
	Parameters []*ParameterData `yaml:"parameters"`
	Keyframes  []*KeyframeData  `yaml:"keyframes"`
}

type GeometryData struct {
	Vertices    [][3]float32     `yaml:"vertices"`
	Normals     [][3]float32     `yaml:"normals"`
	TexVertices [][2]float32     `yaml:"texVertices"`
	Polygons    []PolygonData    `yaml:"polygons"`
	TexPolygons []TexPolygonData `yaml:"texPolygons"`
	Sets        []int            `yaml:"sets"`
	TexSets     []int            `yaml:"texSets"`
}

type PolygonData struct {
	Start    int    `yaml:"start"`
	Count    int    `yaml:"count"`
	Material string `yaml:"material"`
}

type TexPolygonData struct {
	Start int `yaml:"start"`
	Count int `yaml:"count"`
}

type ParameterData struct {
	Name   string             `yaml:"name"`
	Morph  bool               `yaml:"morph"`
	Value  float32            `yaml:"value"`
	Deltas map[int][3]float32 `yaml:"deltas"`
}

// KeyframeData overrides the rest pose from Frame until the next keyframe.
type KeyframeData struct {
	Frame       int                `yaml:"frame"`
	Translation *[3]float32        `yaml:"translation"`
	Rotation    *[4]float32        `yaml:"rotation"`
	Scale       *[3]float32        `yaml:"scale"`
	Values      map[string]float32 `yaml:"values"`
}

func (a *ActorData) IsBodyPart() bool {
	return a.BodyPart == nil || *a.BodyPart
}

func (a *ActorData) ID() string {
	if a.InternalName != "" {
		return a.InternalName
	}
	return a.Name
}
