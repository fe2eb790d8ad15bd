package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/nixattr/log"
	"github.com/ardnew/nixattr/nix"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-parse-retry loop. It
// writes the text of one value (or the whole document when path is empty) to
// a temp file, opens the user's editor, and re-parses the resulting document.
// On parse error the user is prompted to re-edit; declining returns
// [ErrEditDeclined] and leaves the document unchanged.
type editCommand struct {
	doc     *nix.Document
	path    string
	ctxFunc func() context.Context
	logger  log.Logger
	newDoc  *nix.Document
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	content := c.doc.Source()
	if c.path != "" {
		var err error
		if content, err = c.doc.Get(c.path); err != nil {
			return err
		}
	}

	f, err := os.CreateTemp(os.TempDir(), "nixattr-repl-*.nix")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		// An emptied file cancels the edit.
		edited := strings.TrimRight(string(data), "\r\n")
		if strings.TrimSpace(edited) == "" {
			return nil
		}

		doc, parseErr := c.apply(ctx, edited)

		c.logger.TraceContext(ctx, "editor parse attempt",
			slog.String("path", c.path),
			slog.Int("content_length", len(edited)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.newDoc = doc

			return nil
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", parseErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// apply returns the document that results from the edited text.
func (c *editCommand) apply(ctx context.Context, edited string) (*nix.Document, error) {
	text := edited + "\n"

	if c.path != "" {
		var err error
		if text, err = c.doc.Set(c.path, edited); err != nil {
			return nil, err
		}
	}

	return nix.Parse(ctx, text, nix.WithLogger(c.logger))
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
