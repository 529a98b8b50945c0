package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/isblackhole/poser2egg/internal/logger"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const eggPlaceholder = "{egg}"

// expandCommand splits a command line and substitutes the egg path.
func expandCommand(command, eggPath string) ([]string, error) {
	args, err := shellwords.Parse(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", command)
	}
	for i, a := range args {
		args[i] = strings.ReplaceAll(a, eggPlaceholder, eggPath)
	}
	return args, nil
}

func postProcess(commands []string, eggPath string) error {
	for _, c := range commands {
		args, err := expandCommand(c, eggPath)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			continue
		}
		logger.Info("post process", zap.Strings("args", args))
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return errors.Wrapf(err, "run %s", args[0])
		}
	}
	return nil
}
