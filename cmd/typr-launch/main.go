// Command typr-launch runs the installed typr executable that sits next to it,
// passing every argument, standard stream, exit code and fatal signal through.
// It has no flags of its own.
package main

import (
	"context"
	"os"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/typr-dist/internal/logger"
	"github.com/oshokin/typr-dist/internal/service/launcher"
)

func main() {
	// Stay silent unless the launch itself fails, the child owns the terminal.
	logger.SetLevel(zapcore.ErrorLevel)

	ctx := context.Background()

	termination, err := launcher.Run(ctx, &launcher.Options{
		Args:   os.Args[1:],
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		logger.Error(logger.WithName(ctx, "typr"), err.Error())
		logger.Sync()
		os.Exit(1)
	}

	launcher.Relay(termination)
}
