package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/isblackhole/poser2egg/converter"
	"github.com/isblackhole/poser2egg/egg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, converter.MorphBake, cfg.Export.MorphMode)
	assert.Equal(t, float32(0.1), cfg.Export.MorphThreshold)
	assert.Equal(t, []string{"Preview"}, cfg.Export.SkipMaterials)
	assert.Equal(t, []string{"BodyMorphs"}, cfg.Export.ExcludeActors)
	assert.Equal(t, egg.WrapRepeat, cfg.Export.WrapMode)
	assert.True(t, cfg.Export.Textures)
	assert.False(t, cfg.Export.IncludeLastFrame)
	assert.Equal(t, 30, cfg.GLTF.FPS)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestRead(t *testing.T) {
	cfg := Default()
	err := cfg.Read(strings.NewReader(`
export:
  morphMode: export
  wrapMode: CLAMP
  includeLastFrame: true
  animationFPS: 24
texture:
  copy: true
  resolutionLimit: 1024
postProcess:
  - egg-trans -nv 120 -o {egg} {egg}
sceneEncoding: shift_jis
`))
	require.NoError(t, err)
	assert.Equal(t, converter.MorphExport, cfg.Export.MorphMode)
	assert.Equal(t, egg.WrapClamp, cfg.Export.WrapMode)
	assert.True(t, cfg.Export.IncludeLastFrame)
	assert.Equal(t, 24, cfg.Export.AnimationFPS)
	assert.Equal(t, float32(0.2), cfg.Export.SpecularScale, "unset keys keep defaults")
	assert.True(t, cfg.Texture.Copy)
	assert.Equal(t, 1024, cfg.Texture.ResolutionLimit)
	assert.Equal(t, "textures", cfg.Texture.Dir)
	assert.Len(t, cfg.PostProcess, 1)
	assert.Equal(t, "shift_jis", cfg.SceneEncoding)
}

func TestReadErrors(t *testing.T) {
	assert.Error(t, Default().Read(strings.NewReader("export:\n  morphMode: melt\n")))
	assert.Error(t, Default().Read(strings.NewReader("export:\n  wrapMode: MIRROR\n")))
	assert.Error(t, Default().Read(strings.NewReader("unknown: 1\n")))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Write(&buf))
	cfg := Default()
	cfg.Export.Shininess = 1
	require.NoError(t, cfg.Read(&buf))
	assert.Equal(t, Default(), cfg)
}
