// Package egg models and writes Panda3D egg files.
package egg

import "github.com/isblackhole/poser2egg/geom"

type TextureMode string

const (
	TextureModeModulate TextureMode = "MODULATE"
	TextureModeNormal   TextureMode = "NORMAL"
	TextureModeGloss    TextureMode = "GLOSS"
	TextureModeAlpha    TextureMode = "ALPHA"
)

type WrapMode string

const (
	WrapRepeat WrapMode = "REPEAT"
	WrapClamp  WrapMode = "CLAMP"
)

type Document struct {
	CoordinateSystem string
	Comment          string
	Materials        []*Material
	Textures         []*Texture
	Group            *Group
}

type Material struct {
	Name      string
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
}

type Texture struct {
	Name string
	Path string
	Mode TextureMode
	Wrap WrapMode
}

// Group is the animated figure: a dart group holding the skeleton, the
// shared vertex pool and one polygon group per mesh.
type Group struct {
	Name       string
	Dart       bool
	Joints     []*Joint
	VertexPool *VertexPool
	Groups     []*PolygonGroup
}

type Joint struct {
	Name       string
	Transform  geom.Matrix4
	VertexRefs []int
	Children   []*Joint
}

type VertexPool struct {
	Name     string
	Vertices []*Vertex
}

type Vertex struct {
	Index    int
	Position geom.Vector3
	Normal   geom.Vector3
	UV       geom.Vector2
	Morphs   []MorphDelta
}

type MorphDelta struct {
	Name  string
	Delta geom.Vector3
}

type PolygonGroup struct {
	Name     string
	Polygons []*Polygon
}

type Polygon struct {
	TRefs      []string
	MRef       string
	VertexRefs []int
}

// AnimationBundle is the content of a character animation file.
type AnimationBundle struct {
	Name     string
	FPS      int
	Order    string
	Contents string
	Tables   []*AnimationTable
}

// AnimationTable holds the per-frame transform of one joint.
type AnimationTable struct {
	Name     string
	Frames   []AnimationFrame
	Children []*AnimationTable
}

type AnimationFrame struct {
	Roll, Pitch, Heading float32
	Translation          geom.Vector3
}
