package egg

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type writer struct {
	w     *bufio.Writer
	depth int
}

func newWriter(w io.Writer) *writer {
	return &writer{w: bufio.NewWriter(w)}
}

func (w *writer) line(format string, args ...interface{}) {
	w.w.WriteString(indent(w.depth))
	fmt.Fprintf(w.w, format, args...)
	w.w.WriteString("\n")
}

// begin opens "<tag> name {". name may be empty.
func (w *writer) begin(tag, name string) {
	if name != "" {
		w.line("<%s> %s {", tag, name)
	} else {
		w.line("<%s> {", tag)
	}
	w.depth++
}

func (w *writer) end() {
	w.depth--
	w.line("}")
}

func (w *writer) scalar(name, value string) {
	w.line("<Scalar> %s { %s }", name, value)
}

func (w *writer) finish() error {
	if w.depth != 0 {
		return errors.Errorf("unbalanced egg blocks: depth %d", w.depth)
	}
	return w.w.Flush()
}

func ints(v []int) string {
	var sb strings.Builder
	for i, n := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, n)
	}
	return sb.String()
}

// WriteEgg writes the model file.
func WriteEgg(doc *Document, ww io.Writer) error {
	w := newWriter(ww)
	if doc.CoordinateSystem != "" {
		w.line("<CoordinateSystem> { %s }", doc.CoordinateSystem)
	}
	if doc.Comment != "" {
		w.begin("Comment", "")
		for _, ln := range strings.Split(doc.Comment, "\n") {
			w.line("%q", ln)
		}
		w.end()
	}

	for _, mat := range doc.Materials {
		w.begin("Material", mat.Name)
		w.scalar("diffr", Float(mat.Diffuse[0]))
		w.scalar("diffg", Float(mat.Diffuse[1]))
		w.scalar("diffb", Float(mat.Diffuse[2]))
		w.scalar("specr", Float(mat.Specular[0]))
		w.scalar("specg", Float(mat.Specular[1]))
		w.scalar("specb", Float(mat.Specular[2]))
		w.scalar("shininess", Float(mat.Shininess))
		w.end()
	}

	for _, tex := range doc.Textures {
		w.begin("Texture", tex.Name)
		w.line("%q", tex.Path)
		envtype := tex.Mode
		if tex.Mode == TextureModeAlpha {
			// separate transparency maps are read as pure alpha
			w.scalar("format", "alpha")
			envtype = TextureModeModulate
		}
		w.scalar("envtype", string(envtype))
		wrap := tex.Wrap
		if wrap == "" {
			wrap = WrapRepeat
		}
		w.scalar("wrap", string(wrap))
		w.end()
	}

	if g := doc.Group; g != nil {
		writeGroup(w, g)
	}
	return w.finish()
}

func writeGroup(w *writer, g *Group) {
	pool := ""
	if g.VertexPool != nil {
		pool = g.VertexPool.Name
	}

	w.begin("Group", g.Name)
	if g.Dart {
		w.line("<Dart> { 1 }")
	}
	for _, j := range g.Joints {
		writeJoint(w, j, pool)
	}

	if p := g.VertexPool; p != nil {
		w.begin("VertexPool", p.Name)
		for _, v := range p.Vertices {
			writeVertex(w, v)
		}
		w.end()
	}

	for _, pg := range g.Groups {
		w.begin("Group", pg.Name)
		for _, poly := range pg.Polygons {
			w.begin("Polygon", "")
			for _, t := range poly.TRefs {
				w.line("<TRef> { %s }", t)
			}
			w.line("<MRef> { %s }", poly.MRef)
			w.line("<VertexRef> { %s <Ref> { %s } }", ints(poly.VertexRefs), pool)
			w.end()
		}
		w.end()
	}
	w.end()
}

func writeJoint(w *writer, j *Joint, pool string) {
	w.begin("Joint", j.Name)
	w.begin("Transform", "")
	w.begin("Matrix4", "")
	for _, row := range j.Transform.Rows() {
		w.line("%s %s %s %s", Float(row[0]), Float(row[1]), Float(row[2]), Float(row[3]))
	}
	w.end()
	w.end()

	w.begin("VertexRef", "")
	if len(j.VertexRefs) > 0 {
		w.line("%s", ints(j.VertexRefs))
	}
	w.line("<Ref> { %s }", pool)
	w.end()

	for _, c := range j.Children {
		writeJoint(w, c, pool)
	}
	w.end()
}

func writeVertex(w *writer, v *Vertex) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<Vertex> %d { %s %s %s", v.Index,
		Float(v.Position.X), Float(v.Position.Y), Float(v.Position.Z))
	for _, m := range v.Morphs {
		fmt.Fprintf(&sb, " <Dxyz> %s { %s %s %s }", m.Name,
			Float(m.Delta.X), Float(m.Delta.Y), Float(m.Delta.Z))
	}
	fmt.Fprintf(&sb, " <Normal> { %s %s %s }",
		SafeFloat(v.Normal.X), SafeFloat(v.Normal.Y), SafeFloat(v.Normal.Z))
	fmt.Fprintf(&sb, " <UV> { %s %s } }", Float(v.UV.X), Float(v.UV.Y))
	w.line("%s", sb.String())
}
