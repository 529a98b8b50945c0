package main

import (
	"path/filepath"
	"strings"

	"github.com/isblackhole/poser2egg/converter"
	"github.com/isblackhole/poser2egg/internal/config"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/scene"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

func loadScene(cfg *config.Config, input, figure string) (*scene.MemScene, error) {
	var sc *scene.MemScene
	if isGLTF(input) {
		doc, err := gltf.Open(input)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", input)
		}
		opt := cfg.GLTF
		opt.SourceDir = filepath.Dir(input)
		name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		data, err := converter.NewGLTFToSceneConverter(&opt).Convert(doc, name)
		if err != nil {
			return nil, err
		}
		if sc, err = scene.Build(data); err != nil {
			return nil, errors.Wrapf(err, "scene %s", input)
		}
	} else {
		var err error
		if sc, err = scene.Load(input, cfg.SceneEncoding); err != nil {
			return nil, err
		}
	}
	if figure != "" {
		if err := sc.SelectFigure(figure); err != nil {
			return nil, err
		}
	}
	logger.Info("scene loaded", zap.String("input", input), zap.Int("figures", len(sc.Figures())), zap.Int("frames", sc.NumFrames()))
	return sc, nil
}
