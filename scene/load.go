package scene

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
	yaml "gopkg.in/yaml.v2"
)

// Host dumps written on Windows are often in the system code page rather than UTF-8.
var encodings = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"shift_jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"cp932":        japanese.ShiftJIS,
}

// Parse reads a YAML scene dump. enc selects the source character set; "" and "utf-8" read as is.
func Parse(r io.Reader, enc string) (*SceneData, error) {
	enc = strings.ToLower(enc)
	if enc != "" && enc != "utf-8" && enc != "utf8" {
		e, ok := encodings[enc]
		if !ok {
			return nil, errors.Errorf("unsupported encoding %q", enc)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	data := &SceneData{}
	if err := yaml.UnmarshalStrict(buf, data); err != nil {
		return nil, errors.Wrap(err, "parse scene")
	}
	return data, nil
}

// Load parses and builds the scene stored at path.
func Load(path, enc string) (*MemScene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := Parse(f, enc)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return Build(data)
}
