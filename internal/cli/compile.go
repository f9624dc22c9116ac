package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatawa12/sai/internal/compiler"
	"github.com/anatawa12/sai/internal/types"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// TypeSummary describes one declared type.
type TypeSummary struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Abstract   bool     `json:"abstract,omitempty"`
	Extends    string   `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
	SAM        bool     `json:"sam,omitempty"`
}

// GroupSummary describes one overload group.
type GroupSummary struct {
	Name       string   `json:"name"`
	Signatures []string `json:"signatures"`
}

// CompilationResult holds the compiled types and overload groups.
type CompilationResult struct {
	Types  []TypeSummary  `json:"types"`
	Groups []GroupSummary `json:"groups"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	TypeCount      int
	GroupCount     int
	SignatureCount int
	VariadicCount  int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE declarations to a canonical catalog",
		Long: `Compile CUE type and overload group declarations.

Types are defined in supertype order, every signature is bound to the
declared types, and the resulting catalog can be written as canonical
JSON for diffing between releases.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil {
		code, message := firstLoadError(loadErrors[0])
		return commandError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	// Handle compilation errors
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := summarizeCatalog(loadResult.Catalog)
	for _, g := range result.Groups {
		formatter.VerboseLog("Compiled group: %s", g.Name)
	}

	// Calculate statistics
	stats := calculateStats(loadResult.Catalog)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeCatalogToFile(result, opts.Output); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	// Output success
	return outputCompileSuccess(formatter, result, stats, opts.Output)
}

// summarizeCatalog flattens a catalog into its JSON form.
func summarizeCatalog(cat *compiler.Catalog) *CompilationResult {
	sams := make(map[string]bool)
	for _, t := range cat.SingleMethodTypes() {
		sams[t.Name()] = true
	}

	result := &CompilationResult{
		Types:  make([]TypeSummary, 0),
		Groups: make([]GroupSummary, 0),
	}
	for _, t := range cat.Types() {
		ts := TypeSummary{
			Name:     t.Name(),
			Kind:     t.Kind().String(),
			Abstract: t.IsAbstract() && !t.IsInterface(),
			SAM:      sams[t.Name()],
		}
		if t.Super() != nil {
			ts.Extends = t.Super().Name()
		}
		for _, iface := range t.Interfaces() {
			ts.Implements = append(ts.Implements, iface.Name())
		}
		result.Types = append(result.Types, ts)
	}
	for _, name := range cat.Names() {
		sigs, _ := cat.Signatures(name)
		g := GroupSummary{Name: name, Signatures: make([]string, len(sigs))}
		for i, s := range sigs {
			g.Signatures[i] = s.Display()
		}
		result.Groups = append(result.Groups, g)
	}
	return result
}

// calculateStats computes summary statistics from a catalog.
func calculateStats(cat *compiler.Catalog) CompilationStats {
	stats := CompilationStats{
		TypeCount:  len(cat.Types()),
		GroupCount: len(cat.Names()),
	}

	for _, name := range cat.Names() {
		sigs, _ := cat.Signatures(name)
		stats.SignatureCount += len(sigs)
		for _, s := range sigs {
			if s.IsVariadic() {
				stats.VariadicCount++
			}
		}
	}

	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d type(s), %d group(s)\n\n",
		stats.TypeCount, stats.GroupCount)

	if len(result.Types) > 0 {
		fmt.Fprintln(formatter.Writer, "Types:")
		for _, t := range result.Types {
			fmt.Fprintf(formatter.Writer, "  %s: %s", t.Name, t.Kind)
			if t.Extends != "" {
				fmt.Fprintf(formatter.Writer, " extends %s", t.Extends)
			}
			if t.SAM {
				fmt.Fprint(formatter.Writer, " (single method)")
			}
			fmt.Fprintln(formatter.Writer)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if len(result.Groups) > 0 {
		fmt.Fprintf(formatter.Writer, "Groups (%d signature(s), %d variadic):\n", stats.SignatureCount, stats.VariadicCount)
		for _, g := range result.Groups {
			fmt.Fprintf(formatter.Writer, "  %s:\n", g.Name)
			for _, s := range g.Signatures {
				fmt.Fprintf(formatter.Writer, "    %s\n", s)
			}
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical catalog to %s\n", outputFile)
	}

	return nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		// JSON format - use CLIResponse with first error
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := firstLoadError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}
		if err := writeResponse(formatter.Writer, response); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := firstLoadError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// writeCatalogToFile writes the compilation result to a file in canonical
// JSON format, so two compilations of the same declarations are
// byte-identical.
func writeCatalogToFile(result *CompilationResult, filename string) error {
	data, err := types.MarshalCanonical(canonicalCatalog(result))
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// canonicalCatalog converts result to the value shapes MarshalCanonical
// accepts. Optional fields are omitted when empty.
func canonicalCatalog(result *CompilationResult) map[string]any {
	ts := make([]any, 0, len(result.Types))
	for _, t := range result.Types {
		m := map[string]any{
			"name": t.Name,
			"kind": t.Kind,
		}
		if t.Abstract {
			m["abstract"] = true
		}
		if t.Extends != "" {
			m["extends"] = t.Extends
		}
		if len(t.Implements) > 0 {
			m["implements"] = t.Implements
		}
		if t.SAM {
			m["sam"] = true
		}
		ts = append(ts, m)
	}

	gs := make([]any, 0, len(result.Groups))
	for _, g := range result.Groups {
		gs = append(gs, map[string]any{
			"name":       g.Name,
			"signatures": g.Signatures,
		})
	}

	return map[string]any{
		"types":  ts,
		"groups": gs,
	}
}
