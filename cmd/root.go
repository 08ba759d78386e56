package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/batch"
	"github.com/agentic-research/jsonshape/internal/config"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	verbose bool
	silent  bool
	timeout time.Duration

	logger *zap.Logger
	cfg    config.Config

	// fsys is rooted at "/" and every path handed to it is made absolute
	// first, so inputs outside the working directory resolve.
	fsys billy.Filesystem = osfs.New("/")
)

var rootCmd = &cobra.Command{
	Use:   "jsonshape",
	Short: "jsonshape: reversible structural transforms for JSON documents",
	Long: `jsonshape shrinks JSON documents and restores them.

It abbreviates object keys through a persisted keymap, converts record
arrays to a keyed columnar form, flattens nested trees, and merges many
documents into one tree annotated with count markers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.ErrOrStderr())

		var err error
		path := cfgFile
		if path == "" {
			path = config.DefaultPath
		}
		if path, err = filepath.Abs(path); err != nil {
			return err
		}
		cfg, err = config.Load(fsys, path, cmd.Flags().Changed("config"))
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVarP(&silent, "silent", "q", false, "Log errors only")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Abort the run after this long")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case silent:
		level = zapcore.ErrorLevel
	case verbose:
		level = zapcore.DebugLevel
	}
	encoder := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.AddSync(w), level)
	return zap.New(core)
}

// operation is the shape shared by every batch entry point.
type operation func(context.Context, api.Options, batch.Env) *api.Result

// run executes op with absolute paths, prints its result as JSON and turns
// a failing result into a command error.
func run(cmd *cobra.Command, op operation, opts api.Options) error {
	if err := absolutize(&opts); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res := op(ctx, opts, batch.Env{
		FS:     fsys,
		Config: cfg,
		Logger: logger,
		Stdout: cmd.OutOrStdout(),
	})
	// Documents written to stdout keep it to themselves.
	w := cmd.OutOrStdout()
	if streamed(res) {
		w = cmd.ErrOrStderr()
	}
	return report(w, res)
}

func streamed(res *api.Result) bool {
	if res.OutputFile == "-" {
		return true
	}
	for _, fr := range res.Results {
		if fr.Output == "-" {
			return true
		}
	}
	return false
}

func report(w io.Writer, res *api.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return err
	}
	return exitError(res)
}

func exitError(res *api.Result) error {
	if res.Status == api.StatusError {
		return fmt.Errorf("%s failed: %s", res.Mode, res.Message)
	}
	if res.ExitCode != 0 {
		failed := 0
		if res.Stats != nil {
			failed = res.Stats.Failed
		}
		return fmt.Errorf("%s: %d file(s) failed", res.Mode, failed)
	}
	return nil
}

func absolutize(opts *api.Options) error {
	for i, in := range opts.Inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		opts.Inputs[i] = abs
	}
	for _, p := range []*string{&opts.OutputDir, &opts.OutputFile, &opts.KeymapPath} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return err
		}
		*p = abs
	}
	return nil
}
