package converter

import (
	"strconv"
	"strings"

	"github.com/isblackhole/poser2egg/egg"
)

type TextureRecord struct {
	Name string
	// Path is the normalized path written to the egg file.
	Path string
	// Source is the path as reported by the scene.
	Source string
	Mode   egg.TextureMode
}

// TextureRegistry deduplicates textures by normalized path within one export.
type TextureRegistry struct {
	emptyPath string
	byPath    map[string]*TextureRecord
	byName    map[string]*TextureRecord
	textures  []*TextureRecord
}

func NewTextureRegistry(emptyPath string) *TextureRegistry {
	return &TextureRegistry{
		emptyPath: NormalizeTexturePath(emptyPath),
		byPath:    map[string]*TextureRecord{},
		byName:    map[string]*TextureRecord{},
	}
}

// NormalizeTexturePath converts separators to "/" and drops drive colons.
func NormalizeTexturePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ReplaceAll(path, ":", "")
}

// Register returns the name of the texture stored for path, adding a record
// named candidate on first use. A candidate already taken by another path
// gets a numeric suffix. ok is false when path means "no texture".
func (r *TextureRegistry) Register(path, candidate string, mode egg.TextureMode) (string, bool) {
	if path == "" {
		return "", false
	}
	normalized := NormalizeTexturePath(path)
	if normalized == "" || normalized == r.emptyPath {
		return "", false
	}
	if t, ok := r.byPath[normalized]; ok {
		return t.Name, true
	}
	t := &TextureRecord{Name: r.uniqueName(candidate), Path: normalized, Source: path, Mode: mode}
	r.byPath[normalized] = t
	r.byName[t.Name] = t
	r.textures = append(r.textures, t)
	return t.Name, true
}

func (r *TextureRegistry) uniqueName(candidate string) string {
	if _, taken := r.byName[candidate]; !taken {
		return candidate
	}
	// keep the suffix inside quoted names
	base, quote := candidate, ""
	if len(base) >= 2 && strings.HasPrefix(base, `"`) && strings.HasSuffix(base, `"`) {
		base, quote = base[:len(base)-1], `"`
	}
	for i := 2; ; i++ {
		name := base + "_" + strconv.Itoa(i) + quote
		if _, taken := r.byName[name]; !taken {
			return name
		}
	}
}

// Textures returns the records in first-registration order.
func (r *TextureRegistry) Textures() []*TextureRecord {
	return r.textures
}

func (r *TextureRegistry) Lookup(name string) *TextureRecord {
	return r.byName[name]
}
