package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/nixattr/cli"
	"github.com/ardnew/nixattr/log"
	"github.com/ardnew/nixattr/nix"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()

		// The structured record drops the caret line.
		var se *nix.SyntaxError
		if errors.As(err, &se) {
			fmt.Fprint(os.Stderr, se.Snippet())
		}

		os.Exit(1)
	}
}
