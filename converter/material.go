package converter

import (
	"github.com/isblackhole/poser2egg/egg"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/scene"
	"go.uber.org/zap"
)

type MaterialRecord struct {
	Name     string
	EggName  string
	Diffuse  [3]float32
	Specular [3]float32
	Textures []string
}

type MaterialOption struct {
	SkipMaterials       []string
	IncludeTransparency bool
	SpecularScale       float32
}

func DefaultMaterialOption() *MaterialOption {
	return &MaterialOption{
		SkipMaterials:       []string{"Preview"},
		IncludeTransparency: true,
		SpecularScale:       0.2,
	}
}

type textureChannel struct {
	path   string
	suffix string
	mode   egg.TextureMode
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// CollectMaterials builds material records in source order and registers their
// textures. A later material with an already used name replaces the earlier
// record in place.
func CollectMaterials(materials []scene.Material, reg *TextureRegistry, opt *MaterialOption) ([]*MaterialRecord, error) {
	if opt == nil {
		opt = DefaultMaterialOption()
	}
	var result []*MaterialRecord
	index := map[string]int{}
	for _, m := range materials {
		if m == nil {
			continue
		}
		if contains(opt.SkipMaterials, m.Name()) {
			logger.Debug("skip material", zap.String("material", m.Name()))
			continue
		}
		spec := m.SpecularColor()
		rec := &MaterialRecord{
			Name:     m.Name(),
			EggName:  egg.SafeName(m.Name()),
			Diffuse:  m.DiffuseColor(),
			Specular: [3]float32{spec[0] * opt.SpecularScale, spec[1] * opt.SpecularScale, spec[2] * opt.SpecularScale},
		}

		channels := []textureChannel{
			{m.TextureMapFileName(), "_texture", egg.TextureModeModulate},
			{m.BumpMapFileName(), "_bump", egg.TextureModeNormal},
		}
		if opt.IncludeTransparency {
			channels = append(channels, textureChannel{m.TransparencyMapFileName(), "_transparency", egg.TextureModeAlpha})
		}
		for _, ch := range channels {
			if reg == nil {
				break
			}
			if name, ok := reg.Register(ch.path, egg.SafeName(m.Name()+ch.suffix), ch.mode); ok {
				rec.Textures = append(rec.Textures, name)
			}
		}

		if i, ok := index[rec.Name]; ok {
			logger.Warn("duplicate material", zap.String("material", rec.Name))
			result[i] = rec
			continue
		}
		index[rec.Name] = len(result)
		result = append(result, rec)
	}
	return result, nil
}
