package cmd

import (
	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/batch"
	"github.com/spf13/cobra"
)

// firstKey is the --keyed value meaning "key by the first field of the
// first record".
const firstKey = "*"

var (
	outputDir  string
	keymapPath string
	compact    bool
	pretty     bool

	nullRemoval  bool
	boolCompress bool
	flatten      bool
	keyed        string
	keyField     string

	fromKeyed bool
	selector  string
)

var minifyCmd = &cobra.Command{
	Use:   "minify [paths...]",
	Short: "Shrink JSON, CSV and SQLite documents",
	Long: `Runs the selected steps over every input, in the fixed order
null-removal, bool-compress, abbrev-keys, to-keyed, flatten.
Keys are abbreviated only when --key-map is given; the keymap is
extended and rewritten once all inputs are done.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := api.Options{
			Inputs:           args,
			OutputDir:        outputDir,
			KeymapPath:       keymapPath,
			RemoveNulls:      nullRemoval,
			CompressBooleans: boolCompress,
			Flatten:          flatten,
			Keyed:            cmd.Flags().Changed("keyed") || keyField != "",
			Mode:             outputMode(),
		}
		switch {
		case keyField != "":
			opts.KeyField = keyField
		case keyed != firstKey:
			opts.KeyField = keyed
		}
		return run(cmd, batch.Minify, opts)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Build or extend a keymap from the keys of the inputs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, batch.Scan, api.Options{
			Inputs:     args,
			KeymapPath: keymapPath,
			Selector:   selector,
		})
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand [paths...]",
	Short: "Restore minified documents with an existing keymap",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, batch.Expand, api.Options{
			Inputs:     args,
			OutputDir:  outputDir,
			KeymapPath: keymapPath,
			FromKeyed:  fromKeyed,
			Mode:       outputMode(),
		})
	},
}

func outputMode() api.OutputMode {
	switch {
	case compact:
		return api.OutputCompact
	case pretty:
		return api.OutputPretty
	default:
		return ""
	}
}

func init() {
	for _, c := range []*cobra.Command{minifyCmd, expandCmd} {
		c.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: stdout)")
		c.Flags().BoolVar(&compact, "compact", false, "Single-line output")
		c.Flags().BoolVar(&pretty, "pretty", false, "Fully indented output")
		c.MarkFlagsMutuallyExclusive("compact", "pretty")
	}
	for _, c := range []*cobra.Command{minifyCmd, scanCmd, expandCmd} {
		c.Flags().StringVarP(&keymapPath, "key-map", "k", "", "Keymap file (.json, or .db for SQLite)")
	}
	_ = expandCmd.MarkFlagRequired("key-map")

	minifyCmd.Flags().BoolVar(&nullRemoval, "null-removal", false, "Drop null members and items")
	minifyCmd.Flags().BoolVar(&boolCompress, "bool-compress", false, "Rewrite true/false as 1/0")
	minifyCmd.Flags().BoolVar(&flatten, "flatten", false, "Flatten nested objects to joined keys")
	minifyCmd.Flags().StringVar(&keyed, "keyed", "",
		"Convert record arrays to keyed form; name the field as --keyed=FIELD, alone it keys by the first field")
	minifyCmd.Flags().Lookup("keyed").NoOptDefVal = firstKey
	minifyCmd.Flags().StringVar(&keyField, "key-field", "", "Field to key records by; implies --keyed")

	expandCmd.Flags().BoolVar(&fromKeyed, "from-keyed", false, "Convert keyed documents back to record arrays")

	scanCmd.Flags().StringVar(&selector, "select", "", "JSONPath selecting the subtrees to collect keys from")

	rootCmd.AddCommand(minifyCmd, scanCmd, expandCmd)
}
