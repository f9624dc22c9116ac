package linker

import (
	"context"
	"fmt"

	"github.com/anatawa12/sai/internal/overload"
	"github.com/anatawa12/sai/internal/script"
	"github.com/anatawa12/sai/internal/types"
)

// Call selects the signature of group name for args, converts every
// argument to its parameter type, invokes it and converts the result back
// to a script-facing Object. A void signature returns script.Undefined.
//
// Wrapped host values are unwrapped before classification. For a variable
// arity selection the trailing arguments are converted to the element type
// and passed as one []any.
func (l *Linker) Call(ctx context.Context, name string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values := make([]any, len(args))
	for i, a := range args {
		if w, ok := a.(types.Wrapper); ok {
			a = w.Unwrap()
		}
		values[i] = a
	}
	argTypes := l.u.ArgTypesOf(values...)

	sig, mode, err := l.Select(ctx, name, argTypes)
	if err != nil {
		l.logger.Warn("call failed", "group", name, "args", argTypes.String(), "error", err)
		return nil, err
	}
	if l.invoker == nil {
		return nil, ErrNoInvoker
	}

	converted, err := l.convertArgs(ctx, sig, mode, values, argTypes)
	if err != nil {
		l.logger.Warn("call failed", "group", name, "signature", sig.Display(), "error", err)
		return nil, err
	}

	ret, err := l.invoker.Invoke(ctx, sig, converted)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", sig.Display(), err)
	}
	return l.convertReturn(ctx, sig, ret)
}

func (l *Linker) convertArgs(ctx context.Context, sig *types.Signature, mode overload.Mode, values []any, argTypes types.ArgTypes) ([]any, error) {
	fixed := len(values)
	if mode == overload.VarArity {
		fixed = sig.ParamCount() - 1
	}

	out := make([]any, 0, sig.ParamCount())
	for i := 0; i < fixed; i++ {
		v, err := l.convertArg(ctx, values[i], argTypes[i], sig.Param(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, sig.Display(), err)
		}
		out = append(out, v)
	}
	if mode != overload.VarArity {
		return out, nil
	}

	elem := sig.VarargElem()
	rest := make([]any, 0, len(values)-fixed)
	for i := fixed; i < len(values); i++ {
		v, err := l.convertArg(ctx, values[i], argTypes[i], elem)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, sig.Display(), err)
		}
		rest = append(rest, v)
	}
	return append(out, rest), nil
}

func (l *Linker) convertArg(ctx context.Context, v any, source, target *types.Type) (any, error) {
	c, err := l.Convert(ctx, source, target)
	if err != nil {
		return nil, err
	}
	return c.Convert(v)
}

func (l *Linker) convertReturn(ctx context.Context, sig *types.Signature, ret any) (any, error) {
	if sig.Return() == types.Void {
		return script.Undefined, nil
	}
	c, err := l.Convert(ctx, sig.Return(), types.Object)
	if err != nil {
		return nil, fmt.Errorf("return value of %s: %w", sig.Display(), err)
	}
	out, err := c.Convert(ret)
	if err != nil {
		return nil, fmt.Errorf("return value of %s: %w", sig.Display(), err)
	}
	return out, nil
}
