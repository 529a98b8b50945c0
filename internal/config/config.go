// Package config holds the exporter settings.
package config

import (
	"io"
	"os"

	"github.com/isblackhole/poser2egg/converter"
	"github.com/isblackhole/poser2egg/egg"
	"github.com/isblackhole/poser2egg/texture"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultFileName is looked up in the working directory when no file is given.
const DefaultFileName = "poser2egg.yaml"

type Config struct {
	Export  converter.PoserToEggOption  `yaml:"export"`
	GLTF    converter.GLTFToSceneOption `yaml:"gltf"`
	Texture TextureConfig               `yaml:"texture"`
	Log     LogConfig                   `yaml:"log"`

	// PostProcess commands run after the egg file is written. "{egg}" is
	// replaced by the output path.
	PostProcess []string `yaml:"postProcess,omitempty"`
	// SceneEncoding is the charset of YAML scene dumps. Empty means UTF-8.
	SceneEncoding string `yaml:"sceneEncoding"`
}

type TextureConfig struct {
	// Copy places textures next to the egg file.
	Copy bool `yaml:"copy"`
	// Dir is relative to the egg file.
	Dir            string `yaml:"dir"`
	texture.Option `yaml:",inline"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		Export: *converter.DefaultPoserToEggOption(),
		GLTF:   converter.GLTFToSceneOption{FPS: 30},
		Texture: TextureConfig{
			Dir: "textures",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path tries DefaultFileName and
// falls back to the defaults when it does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFileName); err != nil {
			return cfg, nil
		}
		path = DefaultFileName
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()
	if err := cfg.Read(f); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Read merges YAML from r into cfg. Unknown keys are an error.
func (cfg *Config) Read(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(b, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func (cfg *Config) Validate() error {
	switch cfg.Export.MorphMode {
	case converter.MorphSkip, converter.MorphBake, converter.MorphExport:
	default:
		return errors.Errorf("unknown morph mode %q", cfg.Export.MorphMode)
	}
	switch cfg.Export.WrapMode {
	case egg.WrapRepeat, egg.WrapClamp:
	default:
		return errors.Errorf("unknown wrap mode %q", cfg.Export.WrapMode)
	}
	if cfg.Export.MorphThreshold < 0 {
		return errors.New("morph threshold must not be negative")
	}
	return nil
}

// Write dumps cfg as YAML.
func (cfg *Config) Write(w io.Writer) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
