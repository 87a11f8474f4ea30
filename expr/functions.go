package expr

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Func is a registered function's implementation (§4.4).
type Func func(args []Value) (Value, error)

// FuncSpec describes a registered function's call contract: fixed arity
// unless Variadic, and Pure when it is safe to constant-fold a call whose
// arguments are all literals.
type FuncSpec struct {
	Arity    int
	Variadic bool
	Pure     bool
	Fn       Func
}

// Functions is the built-in function registry. It implements both
// FunctionRegistry (for the compiler's call-site validation) and Caller
// (for the VM/interpreter's invocation).
type Functions struct {
	mu    sync.RWMutex
	funcs map[string]FuncSpec
}

// NewFunctions returns a registry preloaded with §4.4's built-ins.
func NewFunctions() *Functions {
	f := &Functions{funcs: make(map[string]FuncSpec)}
	f.registerBuiltins()
	return f
}

// RegisterFunc adds or replaces a function. Returns the receiver so callers
// can chain registrations.
func (f *Functions) RegisterFunc(name string, spec FuncSpec) *Functions {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.funcs == nil {
		f.funcs = make(map[string]FuncSpec)
	}
	f.funcs[name] = spec
	return f
}

// getFunc retrieves a registered function by name.
func (f *Functions) getFunc(name string) (FuncSpec, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	spec, ok := f.funcs[name]
	return spec, ok
}

// Lookup implements FunctionRegistry.
func (f *Functions) Lookup(name string) (arity int, variadic bool, pure bool, ok bool) {
	spec, found := f.getFunc(name)
	if !found {
		return 0, false, false, false
	}
	return spec.Arity, spec.Variadic, spec.Pure, true
}

// Call implements Caller.
func (f *Functions) Call(name string, args []Value) (Value, error) {
	spec, ok := f.getFunc(name)
	if !ok {
		return Value{}, &EvaluationError{Kind: EvalUnknownFunction, Message: name}
	}
	if !spec.Variadic && len(args) != spec.Arity {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands,
			Message: fmt.Sprintf("%s expects %d argument(s), got %d", name, spec.Arity, len(args))}
	}
	if spec.Variadic && len(args) < spec.Arity {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands,
			Message: fmt.Sprintf("%s expects at least %d argument(s), got %d", name, spec.Arity, len(args))}
	}
	return spec.Fn(args)
}

func (f *Functions) registerBuiltins() {
	f.RegisterFunc("len", FuncSpec{Arity: 1, Pure: true, Fn: builtinLen})
	f.RegisterFunc("upper", FuncSpec{Arity: 1, Pure: true, Fn: builtinUpper})
	f.RegisterFunc("lower", FuncSpec{Arity: 1, Pure: true, Fn: builtinLower})
	f.RegisterFunc("contains", FuncSpec{Arity: 2, Pure: true, Fn: builtinContains})
	f.RegisterFunc("matches", FuncSpec{Arity: 2, Pure: true, Fn: builtinMatches})
	f.RegisterFunc("trim", FuncSpec{Arity: 1, Pure: true, Fn: builtinTrim})
	f.RegisterFunc("join", FuncSpec{Arity: 2, Pure: true, Fn: builtinJoin})
	f.RegisterFunc("abs", FuncSpec{Arity: 1, Pure: true, Fn: builtinAbs})
	f.RegisterFunc("max", FuncSpec{Arity: 2, Variadic: true, Pure: true, Fn: builtinMax})
	f.RegisterFunc("min", FuncSpec{Arity: 2, Variadic: true, Pure: true, Fn: builtinMin})
}

func builtinLen(args []Value) (Value, error) {
	switch args[0].Kind() {
	case KindString:
		return Number(float64(len([]rune(args[0].AsString())))), nil
	case KindArray:
		return Number(float64(len(args[0].AsArray()))), nil
	case KindObject:
		return Number(float64(len(args[0].AsObject()))), nil
	}
	return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "len requires a string, array, or object"}
}

func builtinUpper(args []Value) (Value, error) {
	if args[0].Kind() != KindString {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "upper requires a string"}
	}
	return String(strings.ToUpper(args[0].AsString())), nil
}

func builtinLower(args []Value) (Value, error) {
	if args[0].Kind() != KindString {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "lower requires a string"}
	}
	return String(strings.ToLower(args[0].AsString())), nil
}

func builtinContains(args []Value) (Value, error) {
	haystack, needle := args[0], args[1]
	switch haystack.Kind() {
	case KindString:
		if needle.Kind() != KindString {
			return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "contains on a string requires a string needle"}
		}
		return Bool(strings.Contains(haystack.AsString(), needle.AsString())), nil
	case KindArray:
		for _, item := range haystack.AsArray() {
			if Equal(item, needle) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	}
	return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "contains requires a string or array"}
}

func builtinMatches(args []Value) (Value, error) {
	if args[0].Kind() != KindString || args[1].Kind() != KindString {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "matches requires two strings"}
	}
	ok, err := matchRegexp(args[1].AsString(), args[0].AsString())
	if err != nil {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: err.Error()}
	}
	return Bool(ok), nil
}

func builtinTrim(args []Value) (Value, error) {
	if args[0].Kind() != KindString {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "trim requires a string"}
	}
	return String(strings.TrimSpace(args[0].AsString())), nil
}

func builtinJoin(args []Value) (Value, error) {
	if args[0].Kind() != KindArray || args[1].Kind() != KindString {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "join requires an array and a string separator"}
	}
	parts := make([]string, len(args[0].AsArray()))
	for i, v := range args[0].AsArray() {
		if v.Kind() != KindString {
			return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "join requires an array of strings"}
		}
		parts[i] = v.AsString()
	}
	return String(strings.Join(parts, args[1].AsString())), nil
}

func matchRegexp(pattern, s string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid pattern: %w", err)
	}
	return re.MatchString(s), nil
}

func builtinAbs(args []Value) (Value, error) {
	if args[0].Kind() != KindNumber {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "abs requires a number"}
	}
	n := args[0].AsNumber()
	if n < 0 {
		n = -n
	}
	return Number(n), nil
}

func builtinMax(args []Value) (Value, error) { return extremum(args, func(a, b float64) bool { return a > b }) }

func builtinMin(args []Value) (Value, error) { return extremum(args, func(a, b float64) bool { return a < b }) }

func extremum(args []Value, better func(a, b float64) bool) (Value, error) {
	best := args[0]
	if best.Kind() != KindNumber {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "max/min requires numeric arguments"}
	}
	bestN := best.AsNumber()
	for _, arg := range args[1:] {
		if arg.Kind() != KindNumber {
			return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "max/min requires numeric arguments"}
		}
		n := arg.AsNumber()
		if better(n, bestN) {
			best, bestN = arg, n
		}
	}
	return best, nil
}
