package expr

import "math"

// DefaultMaxStackDepth is the VM's default operand stack bound (§4.3).
const DefaultMaxStackDepth = 1024

// DefaultMaxIterations bounds the instruction loop against a malformed or
// maliciously long-running jump cycle (§4.3).
const DefaultMaxIterations = 1_000_000

// Context resolves a variable name to a Value for VariableNode/OpLoad.
// A Context returning ok=false for an accessed name yields Null, matching
// §4.3's "missing variable evaluates to null" rule.
type Context interface {
	Lookup(name string) (Value, bool)
}

// MapContext is a Context backed by a plain map, the common case for
// evaluating against a decoded JSON/YAML instance.
type MapContext map[string]Value

func (m MapContext) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Caller invokes a registered function by name during VM/interpreter
// evaluation (§4.4's built-in function surface).
type Caller interface {
	Call(name string, args []Value) (Value, error)
}

// VM executes a CompiledExpression's flat instruction stream against a
// Context and Caller (§4.3).
type VM struct {
	MaxStackDepth int
	MaxIterations int
}

// NewVM returns a VM with the spec's default bounds.
func NewVM() *VM {
	return &VM{MaxStackDepth: DefaultMaxStackDepth, MaxIterations: DefaultMaxIterations}
}

// Run executes ce's instructions and returns the final value on the stack.
func (vm *VM) Run(ce *CompiledExpression, ctx Context, caller Caller) (Value, error) {
	stack := make([]Value, 0, ce.MaxStackSize+1)
	push := func(v Value) error {
		if len(stack) >= vm.MaxStackDepth {
			return &EvaluationError{Kind: EvalStackOverflow, Message: "operand stack exceeded max_stack_depth"}
		}
		stack = append(stack, v)
		return nil
	}
	pop := func() (Value, error) {
		if len(stack) == 0 {
			return Value{}, &EvaluationError{Kind: EvalStackUnderflow}
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	pc := 0
	iterations := 0
	for pc < len(ce.Instructions) {
		iterations++
		if iterations > vm.MaxIterations {
			return Value{}, &EvaluationError{Kind: EvalMaxIterations}
		}
		instr := ce.Instructions[pc]
		switch instr.Op {
		case OpConst:
			if err := push(instr.Const); err != nil {
				return Value{}, err
			}
		case OpLoad:
			v, ok := ctx.Lookup(instr.Name)
			if !ok {
				v = Null()
			}
			if err := push(v); err != nil {
				return Value{}, err
			}
		case OpPop:
			if _, err := pop(); err != nil {
				return Value{}, err
			}
		case OpDup:
			if len(stack) == 0 {
				return Value{}, &EvaluationError{Kind: EvalStackUnderflow}
			}
			if err := push(stack[len(stack)-1]); err != nil {
				return Value{}, err
			}
		case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
			b, err := pop()
			if err != nil {
				return Value{}, err
			}
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			v, err := arith(a, b, instr.Op)
			if err != nil {
				return Value{}, err
			}
			if err := push(v); err != nil {
				return Value{}, err
			}
		case OpCmpEq, OpCmpNe, OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe:
			b, err := pop()
			if err != nil {
				return Value{}, err
			}
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			if err := push(compareOp(a, b, instr.Op)); err != nil {
				return Value{}, err
			}
		case OpAnd:
			b, err := pop()
			if err != nil {
				return Value{}, err
			}
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			if err := push(Bool(a.Truthy() && b.Truthy())); err != nil {
				return Value{}, err
			}
		case OpOr:
			b, err := pop()
			if err != nil {
				return Value{}, err
			}
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			if err := push(Bool(a.Truthy() || b.Truthy())); err != nil {
				return Value{}, err
			}
		case OpNot:
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			if err := push(Bool(!a.Truthy())); err != nil {
				return Value{}, err
			}
		case OpNegate:
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			if a.Kind() != KindNumber {
				return Value{}, &EvaluationError{Kind: EvalNonNumericNeg}
			}
			if err := push(Number(-a.AsNumber())); err != nil {
				return Value{}, err
			}
		case OpJump:
			pc = instr.Target
			continue
		case OpJumpIfTrue:
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			if a.Truthy() {
				pc = instr.Target
				continue
			}
		case OpJumpIfFalse:
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			if !a.Truthy() {
				pc = instr.Target
				continue
			}
		case OpCall:
			if len(stack) < instr.Argc {
				return Value{}, &EvaluationError{Kind: EvalStackUnderflow}
			}
			args := make([]Value, instr.Argc)
			copy(args, stack[len(stack)-instr.Argc:])
			stack = stack[:len(stack)-instr.Argc]
			if caller == nil {
				return Value{}, &EvaluationError{Kind: EvalUnknownFunction, Message: instr.Name}
			}
			v, err := caller.Call(instr.Name, args)
			if err != nil {
				return Value{}, err
			}
			if err := push(v); err != nil {
				return Value{}, err
			}
		case OpMakeArray:
			if len(stack) < instr.Argc {
				return Value{}, &EvaluationError{Kind: EvalStackUnderflow}
			}
			items := make([]Value, instr.Argc)
			copy(items, stack[len(stack)-instr.Argc:])
			stack = stack[:len(stack)-instr.Argc]
			if err := push(Array(items)); err != nil {
				return Value{}, err
			}
		case OpMakeObject:
			n := instr.Argc
			if len(stack) < 2*n {
				return Value{}, &EvaluationError{Kind: EvalStackUnderflow}
			}
			kvs := make([]KV, n)
			base := len(stack) - 2*n
			for i := 0; i < n; i++ {
				k := stack[base+2*i]
				v := stack[base+2*i+1]
				if k.Kind() != KindString {
					return Value{}, &EvaluationError{Kind: EvalNonStringKey}
				}
				kvs[i] = KV{Key: k.AsString(), Value: v}
			}
			stack = stack[:base]
			if err := push(Object(kvs)); err != nil {
				return Value{}, err
			}
		case OpIndex:
			idx, err := pop()
			if err != nil {
				return Value{}, err
			}
			container, err := pop()
			if err != nil {
				return Value{}, err
			}
			v, err := indexValue(container, idx)
			if err != nil {
				return Value{}, err
			}
			if err := push(v); err != nil {
				return Value{}, err
			}
		case OpGetField:
			obj, err := pop()
			if err != nil {
				return Value{}, err
			}
			if err := push(fieldValue(obj, instr.Name)); err != nil {
				return Value{}, err
			}
		case OpReturn:
			result, err := pop()
			if err != nil {
				return Value{}, err
			}
			return result, nil
		default:
			return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "unknown opcode"}
		}
		pc++
	}
	if len(stack) == 0 {
		return Null(), nil
	}
	return stack[len(stack)-1], nil
}

func arith(a, b Value, op OpCode) (Value, error) {
	if op == OpAdd && a.Kind() == KindString && b.Kind() == KindString {
		return String(a.AsString() + b.AsString()), nil
	}
	if a.Kind() != KindNumber || b.Kind() != KindNumber {
		return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "arithmetic requires two numbers"}
	}
	x, y := a.AsNumber(), b.AsNumber()
	var r float64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpDiv:
		if y == 0 {
			return Value{}, &EvaluationError{Kind: EvalDivisionByZero}
		}
		r = x / y
	case OpMod:
		if y == 0 {
			return Value{}, &EvaluationError{Kind: EvalModuloByZero}
		}
		r = math.Mod(x, y)
	case OpPow:
		r = math.Pow(x, y)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Value{}, &EvaluationError{Kind: EvalNotFinite}
	}
	return Number(r), nil
}

func compareOp(a, b Value, op OpCode) Value {
	switch op {
	case OpCmpEq:
		return Bool(Equal(a, b))
	case OpCmpNe:
		return Bool(!Equal(a, b))
	}
	c, ok := Compare(a, b)
	if !ok {
		return Bool(false)
	}
	switch op {
	case OpCmpLt:
		return Bool(c < 0)
	case OpCmpLe:
		return Bool(c <= 0)
	case OpCmpGt:
		return Bool(c > 0)
	case OpCmpGe:
		return Bool(c >= 0)
	}
	return Bool(false)
}

func indexValue(container, idx Value) (Value, error) {
	switch container.Kind() {
	case KindArray:
		if idx.Kind() != KindNumber {
			return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "array index must be a number"}
		}
		i := int(idx.AsNumber())
		arr := container.AsArray()
		if i < 0 || i >= len(arr) {
			return Null(), nil
		}
		return arr[i], nil
	case KindObject:
		if idx.Kind() != KindString {
			return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "object index must be a string"}
		}
		return fieldValue(container, idx.AsString()), nil
	}
	return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "index requires an array or object"}
}

func fieldValue(obj Value, name string) Value {
	if obj.Kind() != KindObject {
		return Null()
	}
	for _, kv := range obj.AsObject() {
		if kv.Key == name {
			return kv.Value
		}
	}
	return Null()
}
