// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/envflat/envflat/internal/config"
	"github.com/envflat/envflat/internal/decode"
	"github.com/envflat/envflat/internal/flatten"
	"github.com/envflat/envflat/internal/issue"
	"github.com/envflat/envflat/internal/render"
	"github.com/envflat/envflat/internal/tree"
)

// stdinPath is the input argument that selects standard input.
const stdinPath = "-"

var errRootNotMapping = errors.New("document root must be a mapping")

// input names the document to read.
type input struct {
	path  string
	stdin io.Reader
}

// name is used in decoder messages.
func (in input) name() string {
	if in.path == stdinPath {
		return "<stdin>"
	}
	return in.path
}

func (in input) read() ([]byte, error) {
	if in.path != stdinPath {
		return os.ReadFile(in.path)
	}
	if in.stdin == nil {
		return nil, nil
	}
	data, err := io.ReadAll(in.stdin)
	if err != nil {
		return nil, fmt.Errorf("read standard input: %w", err)
	}
	return data, nil
}

// convert reads, decodes, flattens and renders one document. Every failure
// to obtain a mapping from the input is reported as an issue.ParseError.
func convert(ctx context.Context, in input, cfg *config.Config, w io.Writer, logger *log.Logger) error {
	format, err := cfg.InputFormat()
	if err != nil {
		return err
	}
	format = decode.Resolve(format, in.path)

	parseError := func(cause error) error {
		return &issue.ParseError{Format: format.DisplayName(), Resource: in.path, Cause: cause}
	}

	data, err := in.read()
	if err != nil {
		return parseError(err)
	}
	logger.Debug("read input", "path", in.path, "format", format, "bytes", len(data))

	if err := ctx.Err(); err != nil {
		return err
	}

	root, err := decode.Decode(format, in.name(), data)
	if err != nil {
		return parseError(err)
	}

	switch {
	case root.IsEmpty():
		logger.Debug("document is empty", "kind", root.Kind())
		return nil
	case root.Kind() != tree.KindMapping:
		return parseError(fmt.Errorf("%w, got %s", errRootNotMapping, root.Kind()))
	}

	entries := flatten.Flatten(root, cfg.FlattenOptions())
	logger.Debug("flattened document", "keys", root.Len(), "entries", len(entries), "separator", cfg.Separator)

	opts := cfg.RenderOptions()
	if err := render.Render(w, entries, opts); err != nil {
		return err
	}
	logger.Debug("wrote assignments", "prefix", opts.Prefix, "export", opts.Export, "strict", opts.Strict)
	return nil
}
