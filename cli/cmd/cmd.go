package cmd

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/nixattr/log"
	"github.com/ardnew/nixattr/nix"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special file name for reading from stdin.
const stdinSource = "-"

type (
	sourceKey  struct{}
	streamsKey struct{}

	// Source is the document file the commands operate on.
	Source struct {
		// Path is the file to read, or "-" for stdin.
		Path string
		// InPlace writes set results back to Path instead of stdout.
		InPlace bool
	}

	streams struct {
		in  io.Reader
		out io.Writer
	}
)

// WithSource returns a new context.Context containing the input source.
func WithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, src)
}

func sourceFrom(ctx context.Context) Source {
	src, ok := ctx.Value(sourceKey{}).(Source)
	if !ok || src.Path == "" {
		src.Path = stdinSource
	}

	return src
}

// WithStreams returns a new context.Context whose commands read from in and
// write to out instead of os.Stdin and os.Stdout.
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams{in: in, out: out})
}

func streamsFrom(ctx context.Context) streams {
	s, _ := ctx.Value(streamsKey{}).(streams)

	if s.in == nil {
		s.in = os.Stdin
	}

	if s.out == nil {
		s.out = os.Stdout
	}

	return s
}

// document is a parsed input file with what is needed to replace it safely.
type document struct {
	*nix.Document

	path string
	mode fs.FileMode
	sum  uint64
}

// load reads and parses the source stored in ctx.
func load(ctx context.Context) (*document, error) {
	src := sourceFrom(ctx)
	file := slog.String("file", src.Path)
	opts := []nix.Option{nix.WithLogger(log.Default().With(file))}

	if src.Path == stdinSource {
		doc, err := nix.ParseReader(ctx, streamsFrom(ctx).in, opts...)
		if err != nil {
			return nil, ErrParse.With(file).Wrap(err)
		}

		return &document{Document: doc, path: stdinSource}, nil
	}

	info, err := os.Stat(src.Path)
	if err != nil {
		return nil, ErrReadFile.With(file).Wrap(err)
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, ErrReadFile.With(file).Wrap(err)
	}

	doc, err := nix.Parse(ctx, string(data),
		append(opts, nix.WithFilename(src.Path))...)
	if err != nil {
		return nil, ErrParse.With(file).Wrap(err)
	}

	log.DebugContext(ctx, "loaded document",
		slog.String("file", src.Path),
		slog.Int("bytes", len(data)),
	)

	return &document{
		Document: doc,
		path:     src.Path,
		mode:     info.Mode().Perm(),
		sum:      xxh3.Hash(data),
	}, nil
}

// replace atomically replaces the document's file with text. The file is
// left untouched if its content changed since it was loaded or last replaced.
func (d *document) replace(ctx context.Context, text string) (err error) {
	if d.path == stdinSource {
		return ErrInPlaceStdin
	}

	fail := func(err error) error {
		return ErrWriteFile.With(slog.String("file", d.path)).Wrap(err)
	}

	current, err := os.ReadFile(d.path)
	if err != nil {
		return fail(err)
	}

	if xxh3.Hash(current) != d.sum {
		return ErrFileChanged.With(slog.String("file", d.path))
	}

	dir, base := filepath.Split(d.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fail(err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.WriteString(tmp, text); err != nil {
		_ = tmp.Close()

		return fail(err)
	}

	if err = tmp.Chmod(d.mode); err != nil {
		_ = tmp.Close()

		return fail(err)
	}

	if err = tmp.Close(); err != nil {
		return fail(err)
	}

	if err = os.Rename(tmp.Name(), d.path); err != nil {
		return fail(err)
	}

	d.sum = xxh3.HashString(text)

	log.DebugContext(ctx, "replaced file",
		slog.String("file", d.path),
		slog.Int("bytes", len(text)),
	)

	return nil
}
