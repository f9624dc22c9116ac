package compiler

import (
	"fmt"
	"strings"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedDecl = "E100" // unsupported declaration type

	// Type declaration errors (E101-E109)
	ErrInvalidTypeName  = "E101" // empty or reserved type name
	ErrInvalidKind      = "E102" // kind is not class, abstract or interface
	ErrInheritanceCycle = "E103" // type is its own supertype
	ErrInvalidTypeRef   = "E104" // empty or void type reference
	ErrDuplicateName    = "E105" // duplicate type name or signature
	ErrInvalidSAM       = "E106" // sam on a concrete class

	// Group declaration errors (E110-E119)
	ErrEmptyGroup       = "E110" // group without signatures
	ErrMisplacedVarargs = "E111" // "T..." outside the last position
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks parsed declarations without a type universe.
// Returns all errors found (does not fail-fast). Unknown type names are
// only detected by compilation.
func Validate(v any) []ValidationError {
	switch d := v.(type) {
	case *Decls:
		return validateDecls(d)
	case Decls:
		return validateDecls(&d)
	case TypeDecl:
		return validateType(d)
	case GroupDecl:
		return validateGroup(d)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported declaration type: %T", v),
			Code:    ErrUnsupportedDecl,
		}}
	}
}

func validateDecls(d *Decls) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(d.Types))
	for _, td := range d.Types {
		// E105: duplicate type name
		if names[td.Name] {
			errs = append(errs, ValidationError{
				Field:   "types." + td.Name,
				Message: fmt.Sprintf("duplicate type name: %q", td.Name),
				Code:    ErrDuplicateName,
				Line:    td.Pos.Line(),
			})
		}
		names[td.Name] = true
		errs = append(errs, validateType(td)...)
	}

	// E103: inheritance cycles
	byName := make(map[string]TypeDecl, len(d.Types))
	for _, td := range d.Types {
		byName[td.Name] = td
	}
	for _, c := range AnalyzeHierarchy(d.Types) {
		errs = append(errs, ValidationError{
			Field:   "types." + c.Path[0],
			Message: c.Message,
			Code:    ErrInheritanceCycle,
			Line:    byName[c.Path[0]].Pos.Line(),
		})
	}

	groups := make(map[string]bool, len(d.Groups))
	for _, gd := range d.Groups {
		if groups[gd.Name] {
			errs = append(errs, ValidationError{
				Field:   "groups." + gd.Name,
				Message: fmt.Sprintf("duplicate group name: %q", gd.Name),
				Code:    ErrDuplicateName,
				Line:    gd.Pos.Line(),
			})
		}
		groups[gd.Name] = true
		errs = append(errs, validateGroup(gd)...)
	}
	return errs
}

func validateType(td TypeDecl) []ValidationError {
	var errs []ValidationError
	field := "types." + td.Name
	line := td.Pos.Line()

	// E101: name must be usable as a type name
	if strings.TrimSpace(td.Name) == "" || td.Name == "null" || strings.ContainsAny(td.Name, "[].") {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid type name %q", td.Name),
			Code:    ErrInvalidTypeName,
			Line:    line,
		})
	}

	// E102: kind
	switch td.Kind {
	case KindClass, KindAbstract, KindInterface:
	default:
		errs = append(errs, ValidationError{
			Field:   field + ".kind",
			Message: fmt.Sprintf("invalid kind %q, must be %q, %q or %q", td.Kind, KindClass, KindAbstract, KindInterface),
			Code:    ErrInvalidKind,
			Line:    line,
		})
	}

	// E104: supertype references
	if td.Extends == "void" {
		errs = append(errs, ValidationError{
			Field:   field + ".extends",
			Message: "cannot extend void",
			Code:    ErrInvalidTypeRef,
			Line:    line,
		})
	}
	for i, name := range td.Implements {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.implements[%d]", field, i),
				Message: "empty interface name",
				Code:    ErrInvalidTypeRef,
				Line:    line,
			})
		}
	}

	// E106: sam
	if td.SAM && td.Kind == KindClass {
		errs = append(errs, ValidationError{
			Field:   field + ".sam",
			Message: "only abstract classes and interfaces can be single-method types",
			Code:    ErrInvalidSAM,
			Line:    line,
		})
	}
	return errs
}

func validateGroup(gd GroupDecl) []ValidationError {
	var errs []ValidationError
	field := "groups." + gd.Name

	// E110: at least one signature
	if len(gd.Signatures) == 0 {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("group %q has no signatures", gd.Name),
			Code:    ErrEmptyGroup,
			Line:    gd.Pos.Line(),
		})
	}

	seen := make(map[string]int, len(gd.Signatures))
	for i, sd := range gd.Signatures {
		sigField := fmt.Sprintf("%s[%d]", field, i)
		line := sd.Pos.Line()

		for j, p := range sd.Params {
			// E111: varargs only last
			if strings.HasSuffix(p, VariadicSuffix) && j != len(sd.Params)-1 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.params[%d]", sigField, j),
					Message: fmt.Sprintf("variadic parameter %q must be last", p),
					Code:    ErrMisplacedVarargs,
					Line:    line,
				})
			}
			// E104: parameter type
			base := strings.TrimSuffix(p, VariadicSuffix)
			if strings.TrimSpace(base) == "" || base == "void" || base == "null" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.params[%d]", sigField, j),
					Message: fmt.Sprintf("invalid parameter type %q", p),
					Code:    ErrInvalidTypeRef,
					Line:    line,
				})
			}
		}

		// E105: duplicate parameter list
		key := strings.Join(sd.Params, ",")
		if prev, dup := seen[key]; dup {
			errs = append(errs, ValidationError{
				Field:   sigField,
				Message: fmt.Sprintf("duplicate signature (%s), same as %s[%d]", key, field, prev),
				Code:    ErrDuplicateName,
				Line:    line,
			})
		} else {
			seen[key] = i
		}
	}
	return errs
}
