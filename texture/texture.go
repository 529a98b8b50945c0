// Package texture copies texture files next to an exported model, decoding
// formats the renderer cannot read and re-encoding them as PNG.
package texture

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/blezek/tga"
	"github.com/pkg/errors"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

type Option struct {
	// ResolutionLimit caps the larger side in pixels. 0: unlimited
	ResolutionLimit int `yaml:"resolutionLimit"`
	// ReEncode forces PNG output even for files that could be copied.
	ReEncode bool `yaml:"reEncode"`
}

type Converter struct {
	*Option
	outDir   string
	textures map[string]*textureInfo
}

type textureInfo struct {
	src  string
	dst  string
	img  image.Image
	err  error
	done bool
}

func NewConverter(outDir string, options *Option) *Converter {
	if options == nil {
		options = &Option{}
	}
	return &Converter{
		Option:   options,
		outDir:   outDir,
		textures: map[string]*textureInfo{},
	}
}

// copyable extensions are read by the renderer directly.
var copyable = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".tga": true}

func (c *Converter) get(src string) *textureInfo {
	if t, ok := c.textures[src]; ok {
		return t
	}
	t := &textureInfo{src: src}
	c.textures[src] = t
	return t
}

func (c *Converter) getImage(t *textureInfo) (image.Image, error) {
	if t.img != nil || t.err != nil {
		return t.img, t.err
	}

	f, err := os.Open(t.src)
	if err != nil {
		t.err = err
		return nil, err
	}
	defer f.Close()

	t.img, _, t.err = image.Decode(f)
	if t.err != nil && strings.ToLower(filepath.Ext(t.src)) == ".tga" {
		// retry
		f.Seek(0, io.SeekStart)
		t.img, t.err = tga.Decode(f)
	}
	return t.img, t.err
}

// Convert places src in the output directory as name plus an extension and
// returns the written path. A source converted before returns the first result.
func (c *Converter) Convert(src, name string) (string, error) {
	t := c.get(src)
	if t.done {
		return t.dst, t.err
	}
	t.done = true
	if err := os.MkdirAll(c.outDir, 0755); err != nil {
		t.err = err
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(src))
	if copyable[ext] && !c.ReEncode && c.ResolutionLimit == 0 {
		t.dst = filepath.Join(c.outDir, name+ext)
		t.err = copyFile(src, t.dst)
		return t.dst, t.err
	}

	img, err := c.getImage(t)
	if err != nil {
		t.err = errors.Wrapf(err, "decode %s", src)
		return "", t.err
	}
	img = scale(img, c.ResolutionLimit)

	dst := filepath.Join(c.outDir, name+".png")
	w, err := os.Create(dst)
	if err != nil {
		t.err = err
		return "", err
	}
	if err := png.Encode(w, img); err != nil {
		w.Close()
		t.err = errors.Wrapf(err, "encode %s", dst)
		return "", t.err
	}
	if err := w.Close(); err != nil {
		t.err = errors.Wrapf(err, "close %s", dst)
		return "", t.err
	}
	t.dst = dst
	return t.dst, nil
}

func scale(img image.Image, limit int) image.Image {
	rect := img.Bounds()
	sz := rect.Dx()
	if rect.Dy() > sz {
		sz = rect.Dy()
	}
	if limit <= 0 || sz <= limit {
		return img
	}
	s := float64(limit) / float64(sz)
	w, h := int(float64(rect.Dx())*s), int(float64(rect.Dy())*s)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
	return dst
}

func copyFile(src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return errors.Wrapf(err, "copy %s", src)
	}
	return w.Close()
}
