package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/batch"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	autoFix    bool
	verifyJSON bool
)

var (
	passStyle  = color.New(color.FgGreen, color.Bold)
	fixedStyle = color.New(color.FgYellow, color.Bold)
	failStyle  = color.New(color.FgRed, color.Bold)
	fileStyle  = color.New(color.FgCyan)
)

var verifyCmd = &cobra.Command{
	Use:   "verify [paths...]",
	Short: "Check that JSON files parse, optionally repairing them in place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := api.Options{Inputs: args, AutoFix: autoFix}
		if verifyJSON {
			return run(cmd, batch.Verify, opts)
		}
		if err := absolutize(&opts); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		res := batch.Verify(ctx, opts, batch.Env{FS: fsys, Config: cfg, Logger: logger})
		if res.Status == api.StatusError {
			return exitError(res)
		}
		printAudit(cmd.OutOrStdout(), res)
		return exitError(res)
	},
}

func printAudit(w io.Writer, res *api.Result) {
	for _, fr := range res.Results {
		var line strings.Builder
		switch fr.Status {
		case api.VerifyPass:
			line.WriteString(passStyle.Sprint("✓ "))
		case api.VerifyFixed:
			line.WriteString(fixedStyle.Sprint("⚙ "))
		default:
			line.WriteString(failStyle.Sprint("✗ "))
		}
		line.WriteString(fileStyle.Sprint(fr.File))
		if fr.Message != "" {
			line.WriteString(" | " + fr.Message)
		}
		_, _ = fmt.Fprintln(w, line.String())
	}
	s := res.Stats
	_, _ = fmt.Fprintf(w, "\nAUDIT: %dP %dF %dE\n", s.Succeeded-s.Fixed, s.Fixed, s.Failed)
}

func init() {
	verifyCmd.Flags().BoolVarP(&autoFix, "auto-fix", "a", false, "Repair failing files and write them back")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the structured result instead of the audit")

	rootCmd.AddCommand(verifyCmd)
}
