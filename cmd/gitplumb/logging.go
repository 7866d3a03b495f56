package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/gitplumb/pkg/repo"
)

// objectCacheSize bounds the decoded objects kept per command run.
const objectCacheSize = 256

// commandLogger builds a console logger on the command's stderr. Debug
// output is enabled by the root --verbose flag.
func commandLogger(cmd *cobra.Command) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(cmd.ErrOrStderr()),
		level,
	)
	return zap.New(core).Named("gitplumb")
}

func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	return repo.Open(".",
		repo.WithLogger(commandLogger(cmd)),
		repo.WithObjectCache(objectCacheSize),
	)
}
