package expr

import (
	"strconv"
	"strings"
)

// Print renders an AST node back to source text. For the node kinds the
// parser actually produces (everything but Array/Object, which have no
// surface literal syntax per §6.2's grammar) Parse(Print(n)) reproduces an
// AST equal to n — the round-trip property in §8.1.1.
func Print(n Node) string {
	var b strings.Builder
	printNode(&b, n, 0)
	return b.String()
}

// precedence mirrors the parser's climb: higher binds tighter.
func precOf(n Node) int {
	switch t := n.(type) {
	case ConditionalNode:
		return 0
	case BinaryNode:
		switch t.Op {
		case OpOr:
			return 1
		case OpAnd:
			return 2
		case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
			return 3
		case OpAdd, OpSub:
			return 4
		case OpMul, OpDiv, OpMod, OpPow:
			return 5
		}
	case UnaryNode:
		return 6
	}
	return 7
}

func printNode(b *strings.Builder, n Node, parentPrec int) {
	prec := precOf(n)
	needParens := prec < parentPrec
	if needParens {
		b.WriteByte('(')
	}
	switch t := n.(type) {
	case NullNode:
		b.WriteString("null")
	case BoolNode:
		if t.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case NumberNode:
		b.WriteString(strconv.FormatFloat(t.Value, 'f', -1, 64))
	case StringNode:
		b.WriteByte('"')
		b.WriteString(escapeString(t.Value))
		b.WriteByte('"')
	case VariableNode:
		b.WriteByte('{')
		b.WriteString(t.Name)
		b.WriteByte('}')
	case ArrayNode:
		b.WriteByte('[')
		for i, item := range t.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			printNode(b, item, 0)
		}
		b.WriteByte(']')
	case ObjectNode:
		b.WriteByte('{')
		for i, e := range t.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('"')
			b.WriteString(escapeString(e.Key))
			b.WriteString("\": ")
			printNode(b, e.Value, 0)
		}
		b.WriteByte('}')
	case BinaryNode:
		printNode(b, t.Left, prec)
		b.WriteByte(' ')
		b.WriteString(binaryOpText(t.Op))
		b.WriteByte(' ')
		printNode(b, t.Right, prec+1)
	case UnaryNode:
		b.WriteString(unaryOpText(t.Op))
		printNode(b, t.Operand, prec)
	case ConditionalNode:
		printNode(b, t.Then, 1)
		b.WriteString(" if ")
		printNode(b, t.Cond, 1)
		b.WriteString(" else ")
		printNode(b, t.Else, 0)
	case FunctionCallNode:
		b.WriteString(t.Name)
		b.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printNode(b, a, 0)
		}
		b.WriteByte(')')
	case IndexNode:
		printNode(b, t.Container, 7)
		b.WriteByte('[')
		printNode(b, t.Index, 0)
		b.WriteByte(']')
	case FieldAccessNode:
		printNode(b, t.Object, 7)
		b.WriteByte('.')
		b.WriteString(t.Name)
	}
	if needParens {
		b.WriteByte(')')
	}
}

func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

func binaryOpText(op BinaryOp) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpPow:
		return "^"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	}
	return "?"
}

func unaryOpText(op UnaryOp) string {
	if op == OpNot {
		return "!"
	}
	return "-"
}
