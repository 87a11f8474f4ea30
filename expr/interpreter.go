package expr

// Interpreter walks the AST directly, skipping compilation entirely. The
// Engine dispatches here for expressions below the compilation_threshold
// (§4.5), where compiling to bytecode would cost more than it saves.
type Interpreter struct{}

// NewInterpreter returns a stateless AST interpreter.
func NewInterpreter() *Interpreter { return &Interpreter{} }

// Eval evaluates n against ctx and caller, reusing the VM's arithmetic,
// comparison, and indexing semantics so both evaluation paths agree exactly.
func (in *Interpreter) Eval(n Node, ctx Context, caller Caller) (Value, error) {
	switch t := n.(type) {
	case NullNode:
		return Null(), nil
	case BoolNode:
		return Bool(t.Value), nil
	case NumberNode:
		return Number(t.Value), nil
	case StringNode:
		return String(t.Value), nil
	case VariableNode:
		v, ok := ctx.Lookup(t.Name)
		if !ok {
			return Null(), nil
		}
		return v, nil
	case ArrayNode:
		items := make([]Value, len(t.Items))
		for i, item := range t.Items {
			v, err := in.Eval(item, ctx, caller)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Array(items), nil
	case ObjectNode:
		kvs := make([]KV, len(t.Entries))
		for i, e := range t.Entries {
			v, err := in.Eval(e.Value, ctx, caller)
			if err != nil {
				return Value{}, err
			}
			kvs[i] = KV{Key: e.Key, Value: v}
		}
		return Object(kvs), nil
	case BinaryNode:
		return in.evalBinary(t, ctx, caller)
	case UnaryNode:
		v, err := in.Eval(t.Operand, ctx, caller)
		if err != nil {
			return Value{}, err
		}
		if t.Op == OpNot {
			return Bool(!v.Truthy()), nil
		}
		if v.Kind() != KindNumber {
			return Value{}, &EvaluationError{Kind: EvalNonNumericNeg}
		}
		return Number(-v.AsNumber()), nil
	case ConditionalNode:
		cond, err := in.Eval(t.Cond, ctx, caller)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return in.Eval(t.Then, ctx, caller)
		}
		return in.Eval(t.Else, ctx, caller)
	case FunctionCallNode:
		args := make([]Value, len(t.Args))
		for i, a := range t.Args {
			v, err := in.Eval(a, ctx, caller)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		if caller == nil {
			return Value{}, &EvaluationError{Kind: EvalUnknownFunction, Message: t.Name}
		}
		return caller.Call(t.Name, args)
	case IndexNode:
		container, err := in.Eval(t.Container, ctx, caller)
		if err != nil {
			return Value{}, err
		}
		idx, err := in.Eval(t.Index, ctx, caller)
		if err != nil {
			return Value{}, err
		}
		return indexValue(container, idx)
	case FieldAccessNode:
		obj, err := in.Eval(t.Object, ctx, caller)
		if err != nil {
			return Value{}, err
		}
		return fieldValue(obj, t.Name), nil
	}
	return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "unsupported node"}
}

func (in *Interpreter) evalBinary(t BinaryNode, ctx Context, caller Caller) (Value, error) {
	left, err := in.Eval(t.Left, ctx, caller)
	if err != nil {
		return Value{}, err
	}
	if t.Op == OpAnd && !left.Truthy() {
		return Bool(false), nil
	}
	if t.Op == OpOr && left.Truthy() {
		return Bool(true), nil
	}
	right, err := in.Eval(t.Right, ctx, caller)
	if err != nil {
		return Value{}, err
	}
	switch t.Op {
	case OpAnd:
		return Bool(right.Truthy()), nil
	case OpOr:
		return Bool(right.Truthy()), nil
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return arith(left, right, binaryOpCode(t.Op))
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return compareOp(left, right, binaryOpCode(t.Op)), nil
	}
	return Value{}, &EvaluationError{Kind: EvalInvalidOperands, Message: "unsupported binary operator"}
}
