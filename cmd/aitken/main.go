// Command aitken evaluates slowly converging sequences and series with
// Aitken's delta-squared process, from the command line, an interactive
// session or an HTTP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/aitken/internal/app"
	apperrors "github.com/agbru/aitken/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
