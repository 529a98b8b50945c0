// Package scene describes the host scene graph the exporter reads from.
//
// The interfaces mirror the accessors of the host application. Values returned
// by them are snapshots: callers must not modify them.
package scene

import "github.com/isblackhole/poser2egg/geom"

type Scene interface {
	// CurrentFigure returns nil when no figure is selected.
	CurrentFigure() Figure
	NumFrames() int
	Frame() int
	SetFrame(frame int) error
	// DrawAll recomputes the pose of every actor for the current frame.
	DrawAll()
	// ContentRootLocation is reported by the host for texture slots without a file.
	ContentRootLocation() string
}

type Figure interface {
	Name() string
	// ParentActor is the root of the actor hierarchy.
	ParentActor() Actor
	Materials() []Material
	// UnimeshActors lists the mesh-bearing actors in unified mesh order.
	UnimeshActors() []Actor
}

type Actor interface {
	Name() string
	// InternalName is unique within a figure.
	InternalName() string
	IsBodyPart() bool
	// Parent returns nil for the root actor.
	Parent() Actor
	Children() []Actor
	// Geometry returns nil for actors without a mesh.
	Geometry() Geometry
	Parameters() []Parameter

	Origin() *geom.Vector3
	WorldMatrix() *geom.Matrix4
	LocalMatrix() *geom.Matrix4
	LocalQuaternion() *geom.Quaternion
}

type Material interface {
	Name() string
	DiffuseColor() [3]float32
	SpecularColor() [3]float32
	TextureMapFileName() string
	BumpMapFileName() string
	TransparencyMapFileName() string
}

// Polygon points into Geometry.Sets.
type Polygon struct {
	Start        int
	NumVertices  int
	MaterialName string
}

// TexPolygon points into Geometry.TexSets.
type TexPolygon struct {
	Start          int
	NumTexVertices int
}

type Geometry interface {
	Vertices() []geom.Vector3
	Normals() []geom.Vector3
	TexVertices() []geom.Vector2
	Polygons() []Polygon
	TexPolygons() []TexPolygon
	Sets() []int
	TexSets() []int
}

type Parameter interface {
	Name() string
	IsMorphTarget() bool
	Value() float32
	// MorphTargetDelta returns the offset of vertex v, zero when the target does not move it.
	MorphTargetDelta(v int) geom.Vector3
}
