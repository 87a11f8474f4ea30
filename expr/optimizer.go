package expr

// foldConstants implements §4.2's level-1 optimization: Const Const
// BinaryOp → Const, Const UnaryOp → Const. It operates on the flat
// instruction stream by scanning for a trailing arithmetic/compare/logic op
// whose operands are both immediately preceding Const pushes with no
// intervening jump target, which would make the rewrite unsound.
func foldConstants(instrs []Instruction) []Instruction {
	targets := jumpTargets(instrs)
	out := make([]Instruction, 0, len(instrs))
	remap := make(map[int]int, len(instrs))
	i := 0
	for i < len(instrs) {
		if i+2 < len(instrs) && isConst(instrs[i]) && isConst(instrs[i+1]) && isBinaryArith(instrs[i+2].Op) &&
			!targets[i+1] && !targets[i+2] {
			if folded, ok := foldBinary(instrs[i].Const, instrs[i+1].Const, instrs[i+2].Op); ok {
				newIdx := len(out)
				out = append(out, Instruction{Op: OpConst, Const: folded})
				remap[i], remap[i+1], remap[i+2] = newIdx, newIdx, newIdx
				i += 3
				continue
			}
		}
		if i+1 < len(instrs) && isConst(instrs[i]) && (instrs[i+1].Op == OpNegate || instrs[i+1].Op == OpNot) && !targets[i+1] {
			if folded, ok := foldUnary(instrs[i].Const, instrs[i+1].Op); ok {
				newIdx := len(out)
				out = append(out, Instruction{Op: OpConst, Const: folded})
				remap[i], remap[i+1] = newIdx, newIdx
				i += 2
				continue
			}
		}
		remap[i] = len(out)
		out = append(out, instrs[i])
		i++
	}
	// len(instrs) itself is a valid jump target (one-past-the-end, used by
	// conditionals' end label); map it to the new end too.
	remap[len(instrs)] = len(out)

	for idx := range out {
		switch out[idx].Op {
		case OpJump, OpJumpIfTrue, OpJumpIfFalse:
			if newTarget, ok := remap[out[idx].Target]; ok {
				out[idx].Target = newTarget
			}
		}
	}
	return out
}

func isConst(instr Instruction) bool { return instr.Op == OpConst }

// isValueProducingNoEffect reports whether instr pushes a single value onto
// the stack with no side effect of its own, making it safe to drop together
// with an immediately following Pop. OpCall and OpLoad are excluded: a call
// may have side effects in a registered function, and dropping a Load would
// hide an undefined-variable error that should surface at evaluation time.
func isValueProducingNoEffect(instr Instruction) bool {
	switch instr.Op {
	case OpConst, OpDup:
		return true
	}
	return false
}

func isBinaryArith(op OpCode) bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow,
		OpCmpEq, OpCmpNe, OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe, OpAnd, OpOr:
		return true
	}
	return false
}

func foldBinary(a, b Value, op OpCode) (Value, bool) {
	switch op {
	case OpAdd:
		if a.Kind() == KindString && b.Kind() == KindString {
			return String(a.AsString() + b.AsString()), true
		}
		if a.Kind() == KindNumber && b.Kind() == KindNumber {
			return Number(a.AsNumber() + b.AsNumber()), true
		}
		return Value{}, false
	case OpSub, OpMul, OpDiv, OpMod, OpPow:
		if a.Kind() != KindNumber || b.Kind() != KindNumber {
			return Value{}, false
		}
		switch op {
		case OpSub:
			return Number(a.AsNumber() - b.AsNumber()), true
		case OpMul:
			return Number(a.AsNumber() * b.AsNumber()), true
		case OpDiv:
			if b.AsNumber() == 0 {
				return Value{}, false
			}
			return Number(a.AsNumber() / b.AsNumber()), true
		case OpMod, OpPow:
			// Same formula as the VM (math.Mod / math.Pow); an error stays unfolded.
			v, err := arith(a, b, op)
			return v, err == nil
		}
	case OpCmpEq:
		return Bool(Equal(a, b)), true
	case OpCmpNe:
		return Bool(!Equal(a, b)), true
	case OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe:
		cmp, ok := Compare(a, b)
		if !ok {
			return Bool(false), true
		}
		switch op {
		case OpCmpLt:
			return Bool(cmp < 0), true
		case OpCmpLe:
			return Bool(cmp <= 0), true
		case OpCmpGt:
			return Bool(cmp > 0), true
		case OpCmpGe:
			return Bool(cmp >= 0), true
		}
	case OpAnd:
		return Bool(a.Truthy() && b.Truthy()), true
	case OpOr:
		return Bool(a.Truthy() || b.Truthy()), true
	}
	return Value{}, false
}

func powFloat(base, exp float64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	whole := int64(exp)
	for i := int64(0); i < whole; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

func foldUnary(a Value, op OpCode) (Value, bool) {
	switch op {
	case OpNegate:
		if a.Kind() != KindNumber {
			return Value{}, false
		}
		return Number(-a.AsNumber()), true
	case OpNot:
		return Bool(!a.Truthy()), true
	}
	return Value{}, false
}

func jumpTargets(instrs []Instruction) map[int]bool {
	targets := map[int]bool{}
	for _, instr := range instrs {
		switch instr.Op {
		case OpJump, OpJumpIfTrue, OpJumpIfFalse:
			targets[instr.Target] = true
		}
	}
	return targets
}

// eliminateDeadCode implements §4.2's level-2 dead-code elimination:
// reachability analysis from entry, rewriting jump targets via an
// old-index→new-index mapping.
func eliminateDeadCode(instrs []Instruction) []Instruction {
	reachable := make([]bool, len(instrs))
	var mark func(pc int)
	mark = func(pc int) {
		for pc < len(instrs) && !reachable[pc] {
			reachable[pc] = true
			instr := instrs[pc]
			switch instr.Op {
			case OpReturn:
				return
			case OpJump:
				mark(instr.Target)
				return
			case OpJumpIfTrue, OpJumpIfFalse:
				mark(instr.Target)
				pc++
			default:
				pc++
			}
		}
	}
	mark(0)

	remap := make(map[int]int, len(instrs))
	var out []Instruction
	for i, instr := range instrs {
		if !reachable[i] {
			continue
		}
		remap[i] = len(out)
		out = append(out, instr)
	}
	for i := range out {
		switch out[i].Op {
		case OpJump, OpJumpIfTrue, OpJumpIfFalse:
			if newTarget, ok := remap[out[i].Target]; ok {
				out[i].Target = newTarget
			}
		}
	}
	return out
}

// peephole implements §4.2's level-2 peephole pass: drop a value-producing
// op immediately followed by Pop, and eliminate double Not.
func peephole(instrs []Instruction) []Instruction {
	changed := true
	for changed {
		changed = false
		targets := jumpTargets(instrs)
		out := make([]Instruction, 0, len(instrs))
		remap := make(map[int]int, len(instrs))
		i := 0
		for i < len(instrs) {
			if i+2 < len(instrs) && instrs[i+1].Op == OpNot && instrs[i+2].Op == OpNot &&
				!targets[i+1] && !targets[i+2] {
				newIdx := len(out)
				out = append(out, instrs[i])
				remap[i], remap[i+1], remap[i+2] = newIdx, newIdx, newIdx
				i += 3
				changed = true
				continue
			}
			if i+1 < len(instrs) && instrs[i+1].Op == OpPop && isValueProducingNoEffect(instrs[i]) && !targets[i+1] {
				newIdx := len(out)
				remap[i], remap[i+1] = newIdx, newIdx
				i += 2
				changed = true
				continue
			}
			remap[i] = len(out)
			out = append(out, instrs[i])
			i++
		}
		remap[len(instrs)] = len(out)
		for idx := range out {
			switch out[idx].Op {
			case OpJump, OpJumpIfTrue, OpJumpIfFalse:
				if newTarget, ok := remap[out[idx].Target]; ok {
					out[idx].Target = newTarget
				}
			}
		}
		instrs = out
	}
	return instrs
}
