package cmd

import (
	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/batch"
	"github.com/spf13/cobra"
)

var (
	outputFile    string
	lengthKeys    []string
	sumKeys       []string
	wrap          string
	flat          bool
	autoSumPrefix string
)

var nestCmd = &cobra.Command{
	Use:   "nest [paths...]",
	Short: "Merge JSON documents into one tree with count markers",
	Long: `Merges every JSON input into one object. Each source becomes a
node named by its "key" member or its file name. Nodes listed with
--length get a direct child count; nodes listed with --sum get the sum
of the counts below them, recorded in the manifest.

Sources are repaired first: comments, trailing commas, single quotes and
missing commas between lines are fixed where possible. A source that
still cannot be decoded is skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, batch.Nest, api.Options{
			Inputs:        args,
			OutputFile:    outputFile,
			Length:        lengthKeys,
			Sum:           sumKeys,
			Wrap:          wrap,
			Flat:          flat,
			AutoSumPrefix: autoSumPrefix,
			Mode:          outputMode(),
		})
	},
}

var unnestCmd = &cobra.Command{
	Use:   "unnest [file]",
	Short: "Flatten one nested document to root-level joined keys",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, batch.Unnest, api.Options{
			Inputs:     args,
			OutputFile: outputFile,
			Mode:       outputMode(),
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{nestCmd, unnestCmd} {
		c.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
		c.Flags().BoolVar(&compact, "compact", false, "Single-line output")
		c.Flags().BoolVar(&pretty, "pretty", false, "Fully indented output (default)")
		c.MarkFlagsMutuallyExclusive("compact", "pretty")
	}

	nestCmd.Flags().StringSliceVar(&lengthKeys, "length", nil, "Node keys that get a direct child count")
	nestCmd.Flags().StringSliceVar(&sumKeys, "sum", nil, "Node keys that get the sum of their descendants' counts")
	nestCmd.Flags().StringVar(&wrap, "wrap", "", "JSON object whose members are placed first in the output")
	nestCmd.Flags().BoolVar(&flat, "flat", false, "Merge sources into the root without markers or manifest")
	nestCmd.Flags().StringVar(&autoSumPrefix, "auto-sum-prefix", "", "Sum the root when its name has this prefix (default from config)")

	rootCmd.AddCommand(nestCmd, unnestCmd)
}
