// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/envflat/envflat/internal/config"
	"github.com/envflat/envflat/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// guideStyle is the glamour style used for the verbose guidance block.
const guideStyle = "notty"

// app holds the state of one invocation. Commands are built per run so tests
// can execute several in parallel.
type app struct {
	stdin      io.Reader
	configFile string
	// verbose is bound to the --verbose flag and updated once the
	// configuration is resolved. The error handler reads it.
	verbose bool
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "envflat [flags] <input-file> [prefix]",
		Short: "Flatten a configuration file into shell variable assignments",
		Long: TitleStyle.Render("envflat") + SubtitleStyle.Render(" - flatten configuration into shell assignments") + `

envflat reads a YAML, JSON, TOML, CUE or MessagePack document and prints
one PREFIXKEY="value" line per leaf. Nested keys are joined with the
separator, lists become space-separated values and null becomes "".

` + SubtitleStyle.Render("Examples:") + `
  envflat config.yaml                 CONFIG_db_host="localhost"
  envflat config.yaml APP_            APP_db_host="localhost"
  envflat --export config.toml        export CONFIG_db_host="localhost"
  envflat --strict cfg.json > cfg.env Fail unless every line is an assignment
  cat config.yaml | envflat -         Read standard input`,
		Args: validateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
		DisableFlagsInUseLine: true,
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &issue.UsageError{Reason: err.Error()}
	})

	flags := root.Flags()
	flags.StringP("separator", "s", "_", "string joining nested keys")
	flags.StringP("format", "f", "auto", "input format: auto, yaml, json, toml, cue or msgpack")
	flags.Bool("export", false, `prefix each line with "export "`)
	flags.Bool("strict", false, "fail unless every line is a valid shell assignment")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	flags.StringVar(&a.configFile, "config", "", "CUE config file with default settings")

	return root
}

// validateArgs accepts the input file and an optional prefix.
func validateArgs(_ *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return &issue.UsageError{}
	case len(args) > 2:
		return &issue.UsageError{Reason: fmt.Sprintf("expected at most 2 arguments, got %d", len(args))}
	default:
		return nil
	}
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{
		ConfigFilePath: a.configFile,
		Flags:          cmd.Flags(),
	})
	if err != nil {
		return err
	}
	a.verbose = cfg.Verbose

	if len(args) == 2 {
		cfg.Prefix = args[1]
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if a.configFile != "" {
		logger.Debug("loaded config file", "path", a.configFile)
	}

	err = convert(ctx, input{path: args[0], stdin: a.stdin}, cfg, cmd.OutOrStdout(), logger)
	if errors.Is(err, context.Canceled) {
		return &ExitError{Code: ExitCodeInterrupted, Err: err}
	}
	return err
}

// handleError writes the diagnostic for err. In verbose mode the matching
// guidance from the issue catalog follows it; a usage error shows the whole
// catalog.
func (a *app) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitCodeInterrupted {
		fmt.Fprintln(w, "interrupted")
		return
	}

	fmt.Fprintln(w, issue.Diagnostic(err, a.verbose))

	if !a.verbose {
		return
	}
	id, ok := issue.IDFor(err)
	if !ok {
		return
	}
	var (
		guide     string
		renderErr error
	)
	if id == issue.UsageID {
		guide, renderErr = issue.RenderCatalog(guideStyle)
	} else {
		guide, renderErr = issue.Get(id).Render(guideStyle)
	}
	if renderErr == nil {
		fmt.Fprint(w, guide)
	}
}

// Run executes envflat with the given arguments and streams and returns the
// process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(a.handleError),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
	)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Execute runs envflat on the process arguments and exits.
// This is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
