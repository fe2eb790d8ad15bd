package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/nixattr/nix"
)

const testConfig = `{ config, pkgs, ... }:
{
  networking.hostName = "nixos";
  networking.firewall = {
    enable = true;
    allowedTCPPorts = [ 22 80 ];
  };
  services.openssh.enable = true;
}
`

// writeConfig writes text to a new file in a temp directory and returns its
// path.
func writeConfig(t *testing.T, text string, mode os.FileMode) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "configuration.nix")
	require.NoError(t, os.WriteFile(path, []byte(text), mode))
	require.NoError(t, os.Chmod(path, mode))

	return path
}

// runCommand runs c against the given source with stdin and returns what it
// wrote to stdout.
func runCommand(
	t *testing.T,
	src Source,
	stdin string,
	c interface{ Run(context.Context) error },
) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := WithSource(t.Context(), src)
	ctx = WithStreams(ctx, strings.NewReader(stdin), &out)

	err := c.Run(ctx)

	return out.String(), err
}

func TestSourceFrom(t *testing.T) {
	require.Equal(t, Source{Path: stdinSource}, sourceFrom(context.Background()))

	ctx := WithSource(context.Background(), Source{InPlace: true})
	require.Equal(t, Source{Path: stdinSource, InPlace: true}, sourceFrom(ctx))

	ctx = WithSource(context.Background(), Source{Path: "a.nix"})
	require.Equal(t, "a.nix", sourceFrom(ctx).Path)
}

func TestStreamsFrom(t *testing.T) {
	s := streamsFrom(context.Background())
	require.Equal(t, os.Stdin, s.in)
	require.Equal(t, os.Stdout, s.out)

	var out bytes.Buffer

	in := strings.NewReader("x")

	s = streamsFrom(WithStreams(context.Background(), in, &out))
	require.Same(t, in, s.in)
	require.Same(t, &out, s.out)
}

func TestLoad(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := writeConfig(t, testConfig, 0o640)

		doc, err := load(WithSource(t.Context(), Source{Path: path}))
		require.NoError(t, err)
		require.Equal(t, path, doc.path)
		require.Equal(t, os.FileMode(0o640), doc.mode)
		require.Equal(t, testConfig, doc.Source())
	})

	t.Run("stdin", func(t *testing.T) {
		ctx := WithStreams(t.Context(), strings.NewReader(testConfig), nil)

		doc, err := load(ctx)
		require.NoError(t, err)
		require.Equal(t, stdinSource, doc.path)

		value, err := doc.Get("networking.hostName")
		require.NoError(t, err)
		require.Equal(t, `"nixos"`, value)
	})

	t.Run("missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.nix")

		_, err := load(WithSource(t.Context(), Source{Path: path}))
		require.ErrorIs(t, err, ErrReadFile)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("syntax", func(t *testing.T) {
		path := writeConfig(t, "{\n  a = 1\n}\n", 0o644)

		_, err := load(WithSource(t.Context(), Source{Path: path}))
		require.ErrorIs(t, err, nix.ErrSyntax)

		require.ErrorIs(t, err, ErrParse)

		var syntaxErr *nix.SyntaxError
		require.True(t, errors.As(err, &syntaxErr))
		require.Equal(t, 3, syntaxErr.Line)
		require.Equal(t, path, syntaxErr.File)
	})
}

func TestReplace(t *testing.T) {
	path := writeConfig(t, testConfig, 0o640)

	doc, err := load(WithSource(t.Context(), Source{Path: path}))
	require.NoError(t, err)

	first := strings.Replace(testConfig, `"nixos"`, `"laptop"`, 1)
	require.NoError(t, doc.replace(t.Context(), first))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, first, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// The document tracks its own writes.
	second := strings.Replace(first, `"laptop"`, `"desktop"`, 1)
	require.NoError(t, doc.replace(t.Context(), second))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file left behind")
}

func TestReplace_FileChanged(t *testing.T) {
	path := writeConfig(t, testConfig, 0o644)

	doc, err := load(WithSource(t.Context(), Source{Path: path}))
	require.NoError(t, err)

	changed := testConfig + "# edited elsewhere\n"
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o644))

	err = doc.replace(t.Context(), "{ }\n")
	require.ErrorIs(t, err, ErrFileChanged)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, changed, string(data))
}

func TestReplace_Stdin(t *testing.T) {
	ctx := WithStreams(t.Context(), strings.NewReader(testConfig), nil)

	doc, err := load(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, doc.replace(ctx, "{ }\n"), ErrInPlaceStdin)
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := ErrWriteFile.Wrap(cause)

	require.ErrorIs(t, err, ErrWriteFile)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrReadFile)
	require.Equal(t, "write file: boom", err.Error())

	// Attributes and wrapping keep the sentinel.
	require.ErrorIs(t, ErrWriteConfig.With().Wrap(ErrFileExists), ErrWriteConfig)
	require.ErrorIs(t, ErrWriteConfig.With().Wrap(ErrFileExists), ErrFileExists)
}
