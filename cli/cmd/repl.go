package cmd

import (
	"context"

	"github.com/ardnew/nixattr/cli/cmd/repl"
	"github.com/ardnew/nixattr/log"
)

// Repl starts an interactive session over the input file.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := load(ctx)
	if err != nil {
		return err
	}

	// Documents read from stdin have nowhere to be written back to.
	var save repl.SaveFunc
	if doc.path != stdinSource {
		save = doc.replace
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, doc.Document, save, cacheDir, log.Default())
}
