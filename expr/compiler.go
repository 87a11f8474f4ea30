package expr

import "fmt"

// DefaultCompilationThreshold is the complexity at or above which the
// Engine dispatches to the VM instead of the direct interpreter (§4.5).
const DefaultCompilationThreshold = 3

// complexityWeight assigns per-instruction weight for §4.2's complexity
// metric: Call=10, jumps=2, everything else=1.
func complexityWeight(op OpCode) int {
	switch op {
	case OpCall:
		return 10
	case OpJump, OpJumpIfTrue, OpJumpIfFalse:
		return 2
	default:
		return 1
	}
}

// FunctionRegistry resolves function names to arity/purity at compile time;
// an unregistered name is a compile error (§4.2).
type FunctionRegistry interface {
	Lookup(name string) (arity int, variadic bool, pure bool, ok bool)
}

type compiler struct {
	instructions []Instruction
	registry     FunctionRegistry
	optLevel     int
	accessed     map[string]bool
	called       map[string]bool
}

// Compile lowers an AST into a CompiledExpression at the given optimization
// level (0-3; clamped) using registry to validate function calls (§4.2).
func Compile(source string, n Node, registry FunctionRegistry, optLevel int) (*CompiledExpression, error) {
	if optLevel < 0 {
		optLevel = 0
	}
	if optLevel > 3 {
		optLevel = 3
	}
	c := &compiler{registry: registry, optLevel: optLevel, accessed: map[string]bool{}, called: map[string]bool{}}
	if err := c.emit(n); err != nil {
		return nil, err
	}
	c.instructions = append(c.instructions, Instruction{Op: OpReturn})

	if optLevel >= 1 {
		c.instructions = foldConstants(c.instructions)
	}
	if optLevel >= 2 {
		c.instructions = eliminateDeadCode(c.instructions)
		c.instructions = peephole(c.instructions)
	}
	// level 3 reserved, no-op.

	maxStack := computeMaxStackSize(c.instructions)
	complexity := 0
	for _, instr := range c.instructions {
		complexity += complexityWeight(instr.Op)
	}

	return &CompiledExpression{
		Source:            source,
		Instructions:      c.instructions,
		MaxStackSize:      maxStack,
		AccessedVariables: c.accessed,
		CalledFunctions:   c.called,
		IsPure:            len(c.called) == 0,
		Complexity:        complexity,
		OptimizationLevel: optLevel,
		ast:               n,
	}, nil
}

func (c *compiler) emit(n Node) error {
	switch t := n.(type) {
	case NullNode:
		c.instructions = append(c.instructions, Instruction{Op: OpConst, Const: Null()})
	case BoolNode:
		c.instructions = append(c.instructions, Instruction{Op: OpConst, Const: Bool(t.Value)})
	case NumberNode:
		c.instructions = append(c.instructions, Instruction{Op: OpConst, Const: Number(t.Value)})
	case StringNode:
		c.instructions = append(c.instructions, Instruction{Op: OpConst, Const: String(t.Value)})
	case VariableNode:
		c.accessed[t.Name] = true
		c.instructions = append(c.instructions, Instruction{Op: OpLoad, Name: t.Name})
	case ArrayNode:
		for _, item := range t.Items {
			if err := c.emit(item); err != nil {
				return err
			}
		}
		c.instructions = append(c.instructions, Instruction{Op: OpMakeArray, Argc: len(t.Items)})
	case ObjectNode:
		for _, e := range t.Entries {
			c.instructions = append(c.instructions, Instruction{Op: OpConst, Const: String(e.Key)})
			if err := c.emit(e.Value); err != nil {
				return err
			}
		}
		c.instructions = append(c.instructions, Instruction{Op: OpMakeObject, Argc: len(t.Entries)})
	case BinaryNode:
		return c.emitBinary(t)
	case UnaryNode:
		if err := c.emit(t.Operand); err != nil {
			return err
		}
		if t.Op == OpNot {
			c.instructions = append(c.instructions, Instruction{Op: OpNot})
		} else {
			c.instructions = append(c.instructions, Instruction{Op: OpNegate})
		}
	case ConditionalNode:
		return c.emitConditional(t)
	case FunctionCallNode:
		return c.emitCall(t)
	case IndexNode:
		if err := c.emit(t.Container); err != nil {
			return err
		}
		if err := c.emit(t.Index); err != nil {
			return err
		}
		c.instructions = append(c.instructions, Instruction{Op: OpIndex})
	case FieldAccessNode:
		if err := c.emit(t.Object); err != nil {
			return err
		}
		c.instructions = append(c.instructions, Instruction{Op: OpGetField, Name: t.Name})
	default:
		return &CompileError{Message: fmt.Sprintf("unsupported node type %T", n)}
	}
	return nil
}

func (c *compiler) emitBinary(t BinaryNode) error {
	if (t.Op == OpAnd || t.Op == OpOr) && c.optLevel >= 2 {
		return c.emitShortCircuit(t)
	}
	if err := c.emit(t.Left); err != nil {
		return err
	}
	if err := c.emit(t.Right); err != nil {
		return err
	}
	c.instructions = append(c.instructions, Instruction{Op: binaryOpCode(t.Op)})
	return nil
}

// emitShortCircuit implements §4.2's short-circuit lowering for && and ||
// at optimization level >= 2: compile LHS; Dup; JumpIfFalse/JumpIfTrue to
// end; Pop; compile RHS; label at end.
func (c *compiler) emitShortCircuit(t BinaryNode) error {
	if err := c.emit(t.Left); err != nil {
		return err
	}
	c.instructions = append(c.instructions, Instruction{Op: OpDup})
	jumpIdx := len(c.instructions)
	if t.Op == OpAnd {
		c.instructions = append(c.instructions, Instruction{Op: OpJumpIfFalse})
	} else {
		c.instructions = append(c.instructions, Instruction{Op: OpJumpIfTrue})
	}
	c.instructions = append(c.instructions, Instruction{Op: OpPop})
	if err := c.emit(t.Right); err != nil {
		return err
	}
	c.instructions[jumpIdx].Target = len(c.instructions)
	return nil
}

func binaryOpCode(op BinaryOp) OpCode {
	switch op {
	case OpAdd:
		return OpAdd
	case OpSub:
		return OpSub
	case OpMul:
		return OpMul
	case OpDiv:
		return OpDiv
	case OpMod:
		return OpMod
	case OpPow:
		return OpPow
	case OpEq:
		return OpCmpEq
	case OpNe:
		return OpCmpNe
	case OpLt:
		return OpCmpLt
	case OpLe:
		return OpCmpLe
	case OpGt:
		return OpCmpGt
	case OpGe:
		return OpCmpGe
	case OpAnd:
		return OpAnd
	case OpOr:
		return OpOr
	}
	return OpAdd
}

// emitConditional lowers `then if cond else else` (§4.2).
func (c *compiler) emitConditional(t ConditionalNode) error {
	if err := c.emit(t.Cond); err != nil {
		return err
	}
	jumpFalse := len(c.instructions)
	c.instructions = append(c.instructions, Instruction{Op: OpJumpIfFalse})
	if err := c.emit(t.Then); err != nil {
		return err
	}
	jumpEnd := len(c.instructions)
	c.instructions = append(c.instructions, Instruction{Op: OpJump})
	c.instructions[jumpFalse].Target = len(c.instructions)
	if err := c.emit(t.Else); err != nil {
		return err
	}
	c.instructions[jumpEnd].Target = len(c.instructions)
	return nil
}

func (c *compiler) emitCall(t FunctionCallNode) error {
	if c.registry != nil {
		if _, _, _, ok := c.registry.Lookup(t.Name); !ok {
			return &CompileError{Message: fmt.Sprintf("unknown function %q", t.Name)}
		}
	}
	c.called[t.Name] = true
	for _, arg := range t.Args {
		if err := c.emit(arg); err != nil {
			return err
		}
	}
	c.instructions = append(c.instructions, Instruction{Op: OpCall, Name: t.Name, Argc: len(t.Args)})
	return nil
}

// computeMaxStackSize performs symbolic execution over the instruction
// stream, taking the max over both branches of JumpIf* (§4.2).
func computeMaxStackSize(instrs []Instruction) int {
	var walk func(pc, depth int, visited map[int]bool) int
	walk = func(pc, depth int, visited map[int]bool) int {
		max := depth
		for pc < len(instrs) {
			if visited[pc] {
				return max
			}
			visited[pc] = true
			instr := instrs[pc]
			depth += stackDelta(instr)
			if depth > max {
				max = depth
			}
			switch instr.Op {
			case OpReturn:
				return max
			case OpJump:
				pc = instr.Target
				continue
			case OpJumpIfTrue, OpJumpIfFalse:
				branchMax := walk(instr.Target, depth, cloneVisited(visited))
				if branchMax > max {
					max = branchMax
				}
			}
			pc++
		}
		return max
	}
	return walk(0, 0, map[int]bool{})
}

func cloneVisited(v map[int]bool) map[int]bool {
	out := make(map[int]bool, len(v))
	for k := range v {
		out[k] = true
	}
	return out
}

func stackDelta(instr Instruction) int {
	switch instr.Op {
	case OpConst, OpLoad, OpDup:
		return 1
	case OpPop, OpJumpIfTrue, OpJumpIfFalse:
		return -1
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow,
		OpCmpEq, OpCmpNe, OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe,
		OpAnd, OpOr, OpIndex:
		return -1
	case OpNot, OpNegate, OpGetField:
		return 0
	case OpJump, OpReturn:
		return 0
	case OpCall:
		return 1 - instr.Argc
	case OpMakeArray:
		return 1 - instr.Argc
	case OpMakeObject:
		return 1 - 2*instr.Argc
	}
	return 0
}
