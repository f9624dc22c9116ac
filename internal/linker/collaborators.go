package linker

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatawa12/sai/internal/convert"
	"github.com/anatawa12/sai/internal/overload"
	"github.com/anatawa12/sai/internal/types"
)

var (
	// ErrUnknownGroup is returned when the harvester has no signatures for
	// a name.
	ErrUnknownGroup = errors.New("unknown overload group")

	// ErrNoInvoker is returned by Call when no Invoker is configured.
	ErrNoInvoker = errors.New("no invoker configured")
)

// Harvester produces the candidate signatures for a name. It returns an
// error wrapping ErrUnknownGroup when the name has none.
type Harvester interface {
	Signatures(name string) ([]*types.Signature, error)
}

// Signatures is a fixed Harvester backed by a map.
type Signatures map[string][]*types.Signature

// Signatures implements Harvester.
func (s Signatures) Signatures(name string) ([]*types.Signature, error) {
	sigs, ok := s[name]
	if !ok || len(sigs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, name)
	}
	return sigs, nil
}

// Invoker performs the call for a selected signature with arguments already
// converted to the parameter types. Trailing variadic arguments arrive
// packed in a []any.
type Invoker interface {
	Invoke(ctx context.Context, sig *types.Signature, args []any) (any, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, sig *types.Signature, args []any) (any, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, sig *types.Signature, args []any) (any, error) {
	return f(ctx, sig, args)
}

// HandleFunc is the handle type HandleInvoker calls.
type HandleFunc func(ctx context.Context, args []any) (any, error)

// HandleInvoker invokes signatures whose handle is a HandleFunc.
type HandleInvoker struct{}

// Invoke implements Invoker.
func (HandleInvoker) Invoke(ctx context.Context, sig *types.Signature, args []any) (any, error) {
	fn, ok := sig.Handle().(HandleFunc)
	if !ok {
		return nil, fmt.Errorf("signature %s has handle of type %T, want linker.HandleFunc", sig.Display(), sig.Handle())
	}
	return fn(ctx, args)
}

// Resolution is a journal entry for one resolved call shape.
type Resolution struct {
	Session string
	Seq     int64
	Group   string
	Args    types.ArgTypes
	Outcome *overload.Outcome
}

// Conversion is a journal entry for one (source, target) lookup.
type Conversion struct {
	Session     string
	Seq         int64
	Source      *types.Type
	Target      *types.Type
	Convertible bool
	Chain       *convert.Chain
}

// Recorder persists resolutions and conversions. Implemented by
// store.Store. Recording must be idempotent per call shape.
type Recorder interface {
	RecordResolution(ctx context.Context, r Resolution) error
	RecordConversion(ctx context.Context, c Conversion) error
}
