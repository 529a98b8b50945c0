package egg

import (
	"io"
	"strconv"
)

const (
	DefaultAnimationOrder    = "sprht"
	DefaultAnimationContents = "prhxyz"
)

// WriteAnimation writes a character animation file. Each row holds
// roll, pitch, heading and the translation of one frame.
func WriteAnimation(bundle *AnimationBundle, ww io.Writer) error {
	w := newWriter(ww)
	w.begin("Table", "")
	w.begin("Bundle", bundle.Name)
	w.begin("Table", `"<skeleton>"`)
	for _, t := range bundle.Tables {
		writeAnimationTable(w, bundle, t)
	}
	w.end()
	w.end()
	w.end()
	return w.finish()
}

func writeAnimationTable(w *writer, bundle *AnimationBundle, t *AnimationTable) {
	order, contents := bundle.Order, bundle.Contents
	if order == "" {
		order = DefaultAnimationOrder
	}
	if contents == "" {
		contents = DefaultAnimationContents
	}

	w.begin("Table", t.Name)
	w.begin("Xfm$Anim", "xform")
	w.scalar("order", order)
	w.scalar("contents", contents)
	w.scalar("fps", strconv.Itoa(bundle.FPS))
	w.begin("V", "")
	for _, f := range t.Frames {
		w.line("%s %s %s %s %s %s", Float(f.Roll), Float(f.Pitch), Float(f.Heading),
			Float(f.Translation.X), Float(f.Translation.Y), Float(f.Translation.Z))
	}
	w.end()
	w.end()
	for _, c := range t.Children {
		writeAnimationTable(w, bundle, c)
	}
	w.end()
}
