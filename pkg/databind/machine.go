package databind

import (
	"fmt"

	"github.com/go-drift/databind/pkg/value"
)

// opcode is one instruction of the expression machine. The mnemonics
// are single characters so a disassembled program reads as a compact
// string when debugging.
type opcode byte

const (
	opPush      opcode = 'P'
	opPop       opcode = 'o'
	opLiteral   opcode = 'D'
	opVariable  opcode = 'V'
	opAdd       opcode = '+'
	opSubtract  opcode = '-'
	opMultiply  opcode = '*'
	opDivide    opcode = '/'
	opNot       opcode = '!'
	opAnd       opcode = '&'
	opOr        opcode = '|'
	opEqual     opcode = '='
	opNotEqual  opcode = 'N'
	opLess      opcode = '<'
	opLessEq    opcode = 'L'
	opGreater   opcode = '>'
	opGreaterEq opcode = 'G'
	opTernary   opcode = '?'
	opArguments opcode = 'a'
	opFunction  opcode = 'F'
)

// instruction is an opcode with its immediate payload: the literal for
// opLiteral, the address index for opVariable, the register for opPop,
// the argument count for opArguments, the transform name for
// opFunction.
type instruction struct {
	op   opcode
	data value.Value
}

// Register indices for opPop payloads.
const (
	regR = iota
	regL
	regC
)

// machine evaluates a compiled program. R is the working register and
// holds the final result; L and C hold the left and center operands of
// binary and ternary operations; the stack carries saved intermediates
// across recursive sub-expressions; args is the staging area between
// opArguments and opFunction.
type machine struct {
	iface     ExpressionInterface
	program   []instruction
	addresses []Address

	r, l, c value.Value
	stack   []value.Value
	args    []value.Value
}

func (m *machine) run() (value.Value, error) {
	for _, ins := range m.program {
		if err := m.execute(ins); err != nil {
			return value.Value{}, err
		}
	}
	if len(m.stack) != 0 {
		return value.Value{}, fmt.Errorf("program finished with %d elements left on the stack", len(m.stack))
	}
	return m.r, nil
}

func (m *machine) execute(ins instruction) error {
	// Arithmetic is numeric except that '+' concatenates when either
	// operand is a string. Comparisons turn lexical on the same
	// condition so mixed operands compare consistently.
	anyString := func() bool {
		return m.l.IsString() || m.r.IsString()
	}

	switch ins.op {
	case opPush:
		m.stack = append(m.stack, m.r)
		m.r = value.Value{}

	case opPop:
		if len(m.stack) == 0 {
			return fmt.Errorf("cannot pop, the stack is empty")
		}
		top := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		switch register, _ := ins.data.AsInt(); register {
		case regR:
			m.r = top
		case regL:
			m.l = top
		case regC:
			m.c = top
		default:
			return fmt.Errorf("invalid register %d", register)
		}

	case opLiteral:
		m.r = ins.data

	case opVariable:
		index, _ := ins.data.AsInt()
		if index < 0 || index >= len(m.addresses) {
			return fmt.Errorf("invalid variable address index %d", index)
		}
		m.r = m.iface.variableValue(m.addresses[index])

	case opAdd:
		if anyString() {
			m.r = value.String(m.l.String() + m.r.String())
		} else {
			m.r = value.Float(m.l.Float() + m.r.Float())
		}

	case opSubtract:
		m.r = value.Float(m.l.Float() - m.r.Float())

	case opMultiply:
		m.r = value.Float(m.l.Float() * m.r.Float())

	case opDivide:
		m.r = value.Float(m.l.Float() / m.r.Float())

	case opNot:
		m.r = value.Bool(!m.r.Bool())

	case opAnd:
		m.r = value.Bool(m.l.Bool() && m.r.Bool())

	case opOr:
		m.r = value.Bool(m.l.Bool() || m.r.Bool())

	case opEqual:
		if anyString() {
			m.r = value.Bool(m.l.String() == m.r.String())
		} else {
			m.r = value.Bool(m.l.Float() == m.r.Float())
		}

	case opNotEqual:
		if anyString() {
			m.r = value.Bool(m.l.String() != m.r.String())
		} else {
			m.r = value.Bool(m.l.Float() != m.r.Float())
		}

	case opLess:
		if anyString() {
			m.r = value.Bool(m.l.String() < m.r.String())
		} else {
			m.r = value.Bool(m.l.Float() < m.r.Float())
		}

	case opLessEq:
		if anyString() {
			m.r = value.Bool(m.l.String() <= m.r.String())
		} else {
			m.r = value.Bool(m.l.Float() <= m.r.Float())
		}

	case opGreater:
		if anyString() {
			m.r = value.Bool(m.l.String() > m.r.String())
		} else {
			m.r = value.Bool(m.l.Float() > m.r.Float())
		}

	case opGreaterEq:
		if anyString() {
			m.r = value.Bool(m.l.String() >= m.r.String())
		} else {
			m.r = value.Bool(m.l.Float() >= m.r.Float())
		}

	case opTernary:
		if m.l.Bool() {
			m.r = m.c
		}

	case opArguments:
		if len(m.args) != 0 {
			return fmt.Errorf("argument list is not empty")
		}
		count, _ := ins.data.AsInt()
		if count < 0 {
			return fmt.Errorf("invalid argument count %d", count)
		}
		if len(m.stack) < count {
			return fmt.Errorf("cannot pop %d arguments, the stack contains only %d elements", count, len(m.stack))
		}
		// Arguments were pushed in call order; slicing off the top
		// keeps them ordered.
		m.args = append(m.args, m.stack[len(m.stack)-count:]...)
		m.stack = m.stack[:len(m.stack)-count]

	case opFunction:
		name, _ := ins.data.AsString()
		result, ok := m.iface.callTransform(name, m.r, m.args)
		if !ok {
			return fmt.Errorf("transform %q failed or is not registered", name)
		}
		m.r = result
		m.args = nil

	default:
		return fmt.Errorf("invalid instruction %q", byte(ins.op))
	}
	return nil
}
