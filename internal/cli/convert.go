package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anatawa12/sai/internal/types"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	DBPath string
	Value  string // script value, YAML syntax
}

// ConvertResult describes the conversion chain for one pair of types and,
// when a value was given, what the chain made of it.
type ConvertResult struct {
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Convertible bool     `json:"convertible"`
	Direct      bool     `json:"direct"`
	Identity    bool     `json:"identity"`
	Steps       []string `json:"steps"`
	Value       string   `json:"value,omitempty"`
	Result      string   `json:"result,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <specs-dir> <source-type> <target-type>",
		Short: "Look up the conversion between two types",
		Long: `Look up the conversion chain from a script type to a host type.

With --value the chain is also run on a script value written in YAML
syntax (42, 2.5, true, [1, 2], {a: 1}, null). A String source takes the
value literally.

Exits with status 1 if the types are not convertible or the value fails
to convert.`,
		Example: `  sai convert ./specs String int --value 42
  sai convert ./specs Double Integer --value 2.5 --db ./journal.db`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "journal database (optional)")
	cmd.Flags().StringVar(&opts.Value, "value", "", "script value to convert (YAML)")

	return cmd
}

func runConvert(opts *ConvertOptions, specsDir, sourceName, targetName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	s, err := openLinkSession(ctx, opts.RootOptions, formatter, specsDir, opts.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	pair, err := s.lookupTypes([]string{sourceName, targetName})
	if err != nil {
		code, message := firstLoadError(err)
		return commandError(formatter, code, message)
	}
	source, target := pair[0], pair[1]

	var value any
	hasValue := cmd.Flags().Changed("value")
	if hasValue {
		value, err = parseScriptValue(opts.Value, source)
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("parsing value: %v", err))
		}
	}

	chain, lookupErr := s.linker.Convert(ctx, source, target)
	result := ConvertResult{
		Source:      source.Name(),
		Target:      target.Name(),
		Convertible: lookupErr == nil,
		Steps:       make([]string, 0),
	}
	if chain != nil {
		result.Direct = chain.IsDirect()
		result.Identity = chain.IsIdentity()
		result.Steps = chain.Steps()
	}
	if lookupErr != nil {
		result.Error = lookupErr.Error()
	}

	if hasValue {
		result.Value = formatValue(value)
		if chain != nil {
			out, err := chain.Convert(value)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Result = formatValue(out)
			}
		}
	}

	formatter.VerboseLog("Converted %s -> %s: convertible=%t", source.Name(), target.Name(), result.Convertible)

	if err := outputConvertResult(formatter, result, s.sessionID()); err != nil {
		return err
	}
	if result.Error != "" {
		return NewExitError(ExitFailure, fmt.Sprintf("%s -> %s: %s", result.Source, result.Target, result.Error))
	}
	return nil
}

// parseScriptValue decodes a YAML scalar, list or map. Strings are taken
// as-is when the source type is String, so "42" stays a string.
func parseScriptValue(raw string, source *types.Type) (any, error) {
	if source == types.String {
		return raw, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// formatValue renders a script or host value for display.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case types.Typed:
		return "<" + val.HostType().Name() + ">"
	case string:
		return fmt.Sprintf("%q", val)
	case uint16:
		return fmt.Sprintf("%q", string(rune(val)))
	default:
		return fmt.Sprintf("%v (%T)", val, val)
	}
}

func outputConvertResult(formatter *OutputFormatter, r ConvertResult, session string) error {
	if formatter.Format == "json" {
		return writeResponse(formatter.Writer, CLIResponse{Status: "ok", Data: r, Session: session})
	}

	if !r.Convertible {
		fmt.Fprintf(formatter.Writer, "✗ %s -> %s: not convertible\n", r.Source, r.Target)
	} else {
		kind := "rule chain"
		switch {
		case r.Identity:
			kind = "identity"
		case r.Direct:
			kind = "direct"
		}
		fmt.Fprintf(formatter.Writer, "✓ %s -> %s (%s)\n", r.Source, r.Target, kind)
		for i, step := range r.Steps {
			fmt.Fprintf(formatter.Writer, "  [%d] %s\n", i+1, step)
		}
	}

	if r.Value != "" {
		if r.Result != "" {
			fmt.Fprintf(formatter.Writer, "  %s => %s\n", r.Value, r.Result)
		} else if r.Convertible {
			fmt.Fprintf(formatter.Writer, "  %s => error: %s\n", r.Value, r.Error)
		}
	}
	if session != "" {
		fmt.Fprintf(formatter.Writer, "Session: %s\n", session)
	}
	return nil
}
