package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatawa12/sai/internal/overload"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	DBPath string
}

// ResolveResult is the outcome of one resolution.
type ResolveResult struct {
	Group      string   `json:"group"`
	Args       []string `json:"args"`
	Outcome    string   `json:"outcome"`
	Mode       string   `json:"mode"`
	Selected   string   `json:"selected,omitempty"`
	Candidates []string `json:"candidates"`
	// Callable lists the signatures callable with this many arguments
	// when nothing applies.
	Callable []string `json:"callable,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <specs-dir> <group> [arg-type...]",
		Short: "Resolve a call shape against an overload group",
		Long: `Resolve the argument types of a call against an overload group.

Prints the outcome (unique, ambiguous or no_match), the arity mode that
produced it and the selected or tied signatures. Array types are written
with a [] suffix and the null literal as "null".

Exits with status 1 unless exactly one signature is selected.`,
		Example: `  sai resolve ./specs area Square
  sai resolve ./specs area int int Integer --db ./journal.db`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], args[1], args[2:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "journal database (optional)")

	return cmd
}

func runResolve(opts *ResolveOptions, specsDir, group string, argNames []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	s, err := openLinkSession(ctx, opts.RootOptions, formatter, specsDir, opts.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	args, err := s.lookupTypes(argNames)
	if err != nil {
		code, message := firstLoadError(err)
		return commandError(formatter, code, message)
	}

	o, err := s.linker.Resolve(ctx, group, args)
	if err != nil {
		code, message := groupError(err)
		return commandError(formatter, code, message)
	}

	result := ResolveResult{
		Group:      group,
		Args:       args.Names(),
		Outcome:    o.Kind().String(),
		Mode:       o.Mode().String(),
		Candidates: make([]string, 0),
	}
	if sig := o.Signature(); sig != nil {
		result.Selected = sig.Display()
	}
	for _, c := range o.Candidates() {
		result.Candidates = append(result.Candidates, c.Display())
	}
	if o.Kind() == overload.NoMatch {
		g, err := s.linker.Group(group)
		if err != nil {
			code, message := groupError(err)
			return commandError(formatter, code, message)
		}
		for _, sig := range g.CallableByArity(len(args)) {
			result.Callable = append(result.Callable, sig.Display())
		}
	}

	formatter.VerboseLog("Resolved %s%s: %s", group, args.String(), result.Outcome)

	if err := outputResolveResult(formatter, result, s.sessionID()); err != nil {
		return err
	}
	if o.Kind() != overload.Unique {
		return NewExitError(ExitFailure, fmt.Sprintf("%s%s: %s", group, args.String(), result.Outcome))
	}
	return nil
}

func outputResolveResult(formatter *OutputFormatter, r ResolveResult, session string) error {
	if formatter.Format == "json" {
		return writeResponse(formatter.Writer, CLIResponse{Status: "ok", Data: r, Session: session})
	}

	call := fmt.Sprintf("%s(%s)", r.Group, strings.Join(r.Args, ", "))
	switch r.Outcome {
	case overload.Unique.String():
		fmt.Fprintf(formatter.Writer, "✓ %s -> %s [%s]\n", call, r.Selected, r.Mode)
	case overload.Ambiguous.String():
		fmt.Fprintf(formatter.Writer, "✗ %s is ambiguous [%s]\n", call, r.Mode)
		for _, c := range r.Candidates {
			fmt.Fprintf(formatter.Writer, "  %s\n", c)
		}
	default:
		fmt.Fprintf(formatter.Writer, "✗ %s: no applicable signature\n", call)
		if len(r.Callable) > 0 {
			fmt.Fprintf(formatter.Writer, "  Callable with %d argument(s):\n", len(r.Args))
			for _, c := range r.Callable {
				fmt.Fprintf(formatter.Writer, "    %s\n", c)
			}
		}
	}
	if session != "" {
		fmt.Fprintf(formatter.Writer, "Session: %s\n", session)
	}
	return nil
}
