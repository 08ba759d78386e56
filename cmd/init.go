package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/jsonshape/internal/config"
	"github.com/agentic-research/jsonshape/internal/ingest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var force bool

// initCmd: jsonshape init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Args:  cobra.NoArgs,
	// The file usually does not exist yet, so it is not loaded.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd.ErrOrStderr())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath
		}
		path, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if err := initConfigurationFile(path, force); err != nil {
			logger.Error("Error initializing config file", zap.String("file", path), zap.Error(err))
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
		return nil
	},
}

func initConfigurationFile(path string, overwrite bool) error {
	if _, err := fsys.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	d, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	return ingest.WriteFileAtomic(fsys, path, d)
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	rootCmd.AddCommand(initCmd)
}
