package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/anatawa12/sai/internal/compiler"
	"github.com/anatawa12/sai/internal/types"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Catalog   *compiler.Catalog // nil when compilation failed
	Decls     *compiler.Decls
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads the CUE package in dir and compiles its declarations into
// a fresh universe.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, every group is compiled and all failures
// are returned.
//
// A nil result means the CUE package itself could not be loaded.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	value, fileCount, err := loadCUE(dir)
	if err != nil {
		return nil, []error{err}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: fileCount,
	}

	decls, err := compiler.ParseDecls(value)
	if err != nil {
		return result, []error{convertCompileError(err, "specs")}
	}
	result.Decls = decls

	if len(decls.Types) == 0 && len(decls.Groups) == 0 {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "no types or groups found in specs"}}
	}

	cat, err := compiler.CompileDecls(types.NewUniverse(), decls)
	if err == nil {
		result.Catalog = cat
		return result, nil
	}
	if mode == LoadModeFailFast {
		return result, []error{convertCompileError(err, "specs")}
	}
	return result, collectCompileErrors(decls)
}

// collectCompileErrors compiles every declaration of d into a scratch
// universe and returns one error per failing type set or group.
func collectCompileErrors(d *compiler.Decls) []error {
	u := types.NewUniverse()
	if _, err := compiler.CompileTypeDecls(u, d.Types); err != nil {
		// Groups would only repeat unknown type errors.
		return []error{convertCompileError(err, "types")}
	}

	var errs []error
	seen := make(map[string]bool, len(d.Groups))
	for _, gd := range d.Groups {
		if seen[gd.Name] {
			errs = append(errs, &LoadError{
				Code:    ErrCodeInvalidGroup,
				Message: fmt.Sprintf("groups.%s: duplicate group name", gd.Name),
				Pos:     gd.Pos,
			})
			continue
		}
		seen[gd.Name] = true
		if _, err := compiler.CompileGroupDecl(u, gd); err != nil {
			errs = append(errs, convertCompileError(err, "groups."+gd.Name))
		}
	}
	return errs
}

// loadCUE builds the CUE value of the package in dir.
func loadCUE(dir string) (cue.Value, int, error) {
	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}
	}
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}
	}
	if !info.IsDir() {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// firstLoadError returns the code and message of err.
func firstLoadError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeUnknownType  = "E008" // Argument or target type not declared
	ErrCodeUnknownGroup = "E009" // Overload group not declared
	ErrCodeDatabase     = "E010" // Journal database error

	// Declaration compile errors
	ErrCodeInvalidType  = "E120" // Type declaration failed to compile
	ErrCodeInvalidGroup = "E121" // Group declaration failed to compile
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case strings.HasPrefix(field, "types."), field == "types":
		return ErrCodeInvalidType
	case strings.HasPrefix(field, "groups."), field == "groups":
		return ErrCodeInvalidGroup
	case field == "cue":
		return ErrCodeBuildFailed
	default:
		return ErrCodeGeneric
	}
}
