package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatawa12/sai/internal/convert"
)

// CompareResult ranks two conversion targets for one source type.
type CompareResult struct {
	Source     string `json:"source"`
	First      string `json:"first"`
	Second     string `json:"second"`
	Comparison string `json:"comparison"`
	Preferred  string `json:"preferred,omitempty"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <specs-dir> <source-type> <first-target> <second-target>",
		Short: "Rank two conversion targets for a source type",
		Long: `Rank two host types as conversion targets for a script type.

Prints first, second or indeterminate, the same ranking the resolver
uses to break ties between overloads whose parameters differ only in
conversion cost.`,
		Example:       `  sai compare ./specs Integer int long`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runCompare(opts *RootOptions, specsDir string, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openLinkSession(cmd.Context(), opts, formatter, specsDir, "")
	if err != nil {
		return err
	}
	defer s.Close()

	ts, err := s.lookupTypes(names)
	if err != nil {
		code, message := firstLoadError(err)
		return commandError(formatter, code, message)
	}

	cmp := s.linker.CompareConversion(ts[0], ts[1], ts[2])
	result := CompareResult{
		Source:     ts[0].Name(),
		First:      ts[1].Name(),
		Second:     ts[2].Name(),
		Comparison: cmp.String(),
	}
	switch cmp {
	case convert.First:
		result.Preferred = result.First
	case convert.Second:
		result.Preferred = result.Second
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if result.Preferred == "" {
		fmt.Fprintf(formatter.Writer, "%s: %s and %s are indeterminate\n", result.Source, result.First, result.Second)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%s: %s is preferred (%s)\n", result.Source, result.Preferred, result.Comparison)
	return nil
}
