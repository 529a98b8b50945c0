package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/isblackhole/poser2egg/converter"
	"github.com/isblackhole/poser2egg/egg"
	"github.com/isblackhole/poser2egg/internal/config"
	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/isblackhole/poser2egg/texture"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func defaultOutputFile(input string) string {
	ext := filepath.Ext(input)
	return input[0:len(input)-len(ext)] + ".egg"
}

func defaultAnimationFile(output string) string {
	ext := filepath.Ext(output)
	return output[0:len(output)-len(ext)] + "-anim.egg"
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// createOutput refuses to replace an existing file unless force is set. "-" is stdout.
func createOutput(path string, force bool) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil, errors.Errorf("%s already exists (use -f to overwrite)", path)
		}
	}
	w, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create output")
	}
	return w, nil
}

func verify(path string) error {
	if path == "-" {
		return nil
	}
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return errors.Wrapf(egg.CheckBalance(r), "verify %s", path)
}

func writeFile(path string, force bool, write func(w io.Writer) error) error {
	w, err := createOutput(path, force)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(w.Close(), "close %s", path)
}

type options struct {
	output    string
	animation string
	figure    string
	force     bool
	verify    bool
	dump      bool
	post      string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] scene.yaml|model.glb [output.egg]\n", os.Args[0])
		flag.PrintDefaults()
	}
	var opt options
	confFile := flag.String("config", "", "config file (default ./"+config.DefaultFileName+" if present)")
	flag.StringVar(&opt.animation, "anim", "", "animation output file (\"auto\": <output>-anim.egg)")
	flag.StringVar(&opt.figure, "figure", "", "figure to export (default: current figure)")
	flag.BoolVar(&opt.force, "f", false, "overwrite existing files")
	flag.BoolVar(&opt.verify, "verify", false, "check block nesting of the written files")
	flag.BoolVar(&opt.dump, "dump", false, "dump the joint tree to stderr")
	flag.StringVar(&opt.post, "post", "", "post-process command, {egg} is the output file")
	morph := flag.String("morph", "", "morph mode: skip, bake or export")
	threshold := flag.Float64("threshold", 0, "minimum morph weight for baking")
	noTextures := flag.Bool("notex", false, "do not write textures")
	clamp := flag.Bool("clamp", false, "CLAMP texture wrap mode")
	lastFrame := flag.Bool("lastframe", false, "include the last frame in the animation")
	fps := flag.Int("fps", 0, "animation fps")
	rootByName := flag.Bool("rootbyname", false, "identify the root joint by name")
	copyTextures := flag.Bool("copytex", false, "copy textures next to the output")
	relTextures := flag.Bool("reltex", false, "write texture paths relative to the output")
	encoding := flag.String("encoding", "", "charset of YAML scenes (windows-1252, shift_jis, ...)")
	gltfAnim := flag.Int("gltfanim", 0, "glTF animation index, -1 for none")
	logLevel := flag.String("loglevel", "", "debug, info, warn or error")
	logFile := flag.String("logfile", "", "log file")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	cfg, err := config.Load(*confFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "morph":
			cfg.Export.MorphMode = converter.MorphMode(*morph)
		case "threshold":
			cfg.Export.MorphThreshold = float32(*threshold)
		case "notex":
			cfg.Export.Textures = !*noTextures
		case "clamp":
			if *clamp {
				cfg.Export.WrapMode = egg.WrapClamp
			}
		case "lastframe":
			cfg.Export.IncludeLastFrame = *lastFrame
		case "fps":
			cfg.Export.AnimationFPS = *fps
			cfg.GLTF.FPS = *fps
		case "rootbyname":
			cfg.Export.RootByName = *rootByName
		case "copytex":
			cfg.Texture.Copy = *copyTextures
		case "reltex":
			cfg.Export.RelativeTexturePaths = *relTextures
		case "encoding":
			cfg.SceneEncoding = *encoding
		case "gltfanim":
			cfg.GLTF.Animation = *gltfAnim
		case "loglevel":
			cfg.Log.Level = *logLevel
		case "logfile":
			cfg.Log.File = *logFile
		case "post":
			cfg.PostProcess = append(cfg.PostProcess, opt.post)
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.Init(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	input := flag.Arg(0)
	opt.output = defaultOutputFile(input)
	if flag.NArg() > 1 {
		opt.output = flag.Arg(1)
	}
	if opt.animation == "auto" {
		opt.animation = defaultAnimationFile(opt.output)
	}

	if err := run(cfg, input, &opt); err != nil {
		if errors.Cause(err) == converter.ErrNoFigure {
			logger.Error("no figure to export", zap.String("input", input))
		} else {
			logger.Error("export failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, input string, opt *options) error {
	sc, err := loadScene(cfg, input, opt.figure)
	if err != nil {
		return err
	}

	cfg.Export.Progress = func(stage string, done, total int) {
		logger.Debug("progress", zap.String("stage", stage), zap.Int("done", done), zap.Int("total", total))
	}
	conv := converter.NewPoserToEggConverter(&cfg.Export)
	doc, err := conv.Convert(sc)
	if err != nil {
		return err
	}
	if opt.dump {
		dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
		dumper.Fdump(os.Stderr, doc.Group.Joints)
	}

	outDir := filepath.Dir(opt.output)
	if opt.output == "-" {
		outDir = "."
	}
	var tc *texture.Converter
	if cfg.Texture.Copy {
		tc = texture.NewConverter(filepath.Join(outDir, cfg.Texture.Dir), &cfg.Texture.Option)
	}
	if tc != nil || cfg.Export.RelativeTexturePaths {
		if err := conv.ResolveTexturePaths(doc, outDir, tc); err != nil {
			return err
		}
	}

	logger.Info("write model", zap.String("output", opt.output), zap.Int("vertices", len(doc.Group.VertexPool.Vertices)))
	if err := writeFile(opt.output, opt.force, func(w io.Writer) error { return egg.WriteEgg(doc, w) }); err != nil {
		return err
	}
	if opt.verify {
		if err := verify(opt.output); err != nil {
			return err
		}
	}

	if opt.animation != "" {
		bundle, err := conv.ConvertAnimation(sc)
		if err != nil {
			return err
		}
		logger.Info("write animation", zap.String("output", opt.animation), zap.Int("tables", len(bundle.Tables)))
		if err := writeFile(opt.animation, opt.force, func(w io.Writer) error { return egg.WriteAnimation(bundle, w) }); err != nil {
			return err
		}
		if opt.verify {
			if err := verify(opt.animation); err != nil {
				return err
			}
		}
	}

	if opt.output != "-" && len(cfg.PostProcess) > 0 {
		return postProcess(cfg.PostProcess, opt.output)
	}
	return nil
}

func isGLTF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".glb" || ext == ".gltf" || ext == ".vrm"
}
