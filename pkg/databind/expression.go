package databind

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/databind/pkg/document"
	"github.com/go-drift/databind/pkg/errors"
	"github.com/go-drift/databind/pkg/value"
)

// ExpressionInterface supplies an expression with its binding context:
// the model for address resolution, variable lookup, and transform
// calls, and the element whose ancestor chain carries alias overrides.
type ExpressionInterface struct {
	model   *Model
	element document.Ref
}

// NewExpressionInterface creates the binding context for expressions
// attached to the given element.
func NewExpressionInterface(m *Model, element document.Ref) ExpressionInterface {
	return ExpressionInterface{model: m, element: element}
}

func (ei ExpressionInterface) resolveAddress(addressStr string) Address {
	if ei.model == nil {
		return nil
	}
	return ei.model.ResolveAddress(addressStr, ei.element)
}

func (ei ExpressionInterface) variableValue(address Address) value.Value {
	if ei.model == nil || len(address) == 0 {
		return value.Value{}
	}
	return ei.model.GetValue(address)
}

func (ei ExpressionInterface) callTransform(name string, v value.Value, args []value.Value) (value.Value, bool) {
	if ei.model == nil {
		return value.Value{}, false
	}
	return ei.model.CallTransform(name, v, args)
}

// Expression is one compiled data expression. Compilation happens once
// against a binding context; the resulting program is immutable. A
// compile failure permanently disables the expression: it is reported
// once and thereafter evaluates to the empty value. A runtime failure
// falls back to the last successfully computed value.
type Expression struct {
	source    string
	program   []instruction
	addresses []Address
	compiled  bool
	failed    bool
	cache     value.Value
}

// NewExpression wraps an expression source string. Compile must be
// called before Run.
func NewExpression(source string) *Expression {
	return &Expression{source: source}
}

// Source returns the original expression string.
func (e *Expression) Source() string {
	return e.source
}

// Valid reports whether the expression compiled successfully.
func (e *Expression) Valid() bool {
	return e.compiled && !e.failed
}

// Compile parses the source into a program, resolving variable tokens
// to addresses through the binding context. Returns false on failure.
func (e *Expression) Compile(iface ExpressionInterface) bool {
	if e.compiled || e.failed {
		return e.Valid()
	}
	parser := parserContext{expression: e.source, iface: iface}
	if !parser.parse() {
		e.failed = true
		return false
	}
	e.program = parser.program
	e.addresses = parser.addresses
	e.compiled = true
	return true
}

// Run executes the compiled program, yielding the empty value for
// uncompiled or failed expressions and the cached previous result on a
// runtime failure.
func (e *Expression) Run(iface ExpressionInterface) value.Value {
	if !e.Valid() {
		return value.Value{}
	}
	m := machine{iface: iface, program: e.program, addresses: e.addresses}
	result, err := m.run()
	if err != nil {
		errors.Report(&errors.BindError{
			Op: "databind.RunExpression", Kind: errors.KindRun,
			Expression: e.source, Err: err,
		})
		return e.cache
	}
	e.cache = result
	return result
}

// VariableNames returns the distinct root names the expression's
// variable lookups depend on, post alias resolution.
func (e *Expression) VariableNames() []string {
	var names []string
	seen := map[string]struct{}{}
	for _, address := range e.addresses {
		if len(address) == 0 {
			continue
		}
		name := address[0].Name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// parserContext is the fused tokenizer and single-character-lookahead
// recursive-descent compiler. It emits the program for the abstract
// machine in machine.go while tracking the operand stack depth so
// malformed programs are caught at compile time.
type parserContext struct {
	expression string
	iface      ExpressionInterface

	index      int
	reachedEnd bool
	parseError bool
	stackSize  int

	program   []instruction
	addresses []Address
}

func (c *parserContext) parse() bool {
	c.skipWhitespace()
	c.parseExpression()
	if !c.reachedEnd && !c.parseError {
		c.errorf("unexpected character %q", c.look())
	}
	return !c.parseError
}

func (c *parserContext) look() byte {
	if c.index >= len(c.expression) {
		return 0
	}
	return c.expression[c.index]
}

func (c *parserContext) next() byte {
	c.index++
	return c.look()
}

func (c *parserContext) skipWhitespace() {
	for ch := c.look(); ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'; ch = c.next() {
	}
}

func (c *parserContext) match(ch byte, skipWhitespace bool) bool {
	if c.look() != ch {
		c.expectedChar(ch)
		return false
	}
	c.next()
	if skipWhitespace {
		c.skipWhitespace()
	}
	return true
}

func (c *parserContext) errorf(format string, args ...any) {
	if c.parseError {
		return
	}
	c.parseError = true
	errors.Report(&errors.BindError{
		Op: "databind.CompileExpression", Kind: errors.KindParse,
		Expression: c.expression,
		Err:        fmt.Errorf("at %d: %s", c.index, fmt.Sprintf(format, args...)),
	})
}

func (c *parserContext) expectedChar(ch byte) {
	if got := c.look(); got == 0 {
		c.errorf("expected %q but found end of string", ch)
	} else {
		c.errorf("expected %q but found %q", ch, got)
	}
}

func (c *parserContext) expected(symbols string) {
	c.errorf("expected %s but found %q", symbols, c.look())
}

func (c *parserContext) emit(op opcode, data value.Value) {
	c.program = append(c.program, instruction{op: op, data: data})
}

func (c *parserContext) push() {
	c.stackSize++
	c.program = append(c.program, instruction{op: opPush})
}

func (c *parserContext) pop(register int) {
	if c.stackSize <= 0 {
		c.errorf("internal parser error: tried to pop an empty stack")
		return
	}
	c.stackSize--
	c.program = append(c.program, instruction{op: opPop, data: value.Int(register)})
}

func (c *parserContext) collectArguments(count int) {
	if c.stackSize < count {
		c.errorf("internal parser error: popping %d arguments, but the stack contains only %d elements", count, c.stackSize)
		return
	}
	c.stackSize -= count
	c.program = append(c.program, instruction{op: opArguments, data: value.Int(count)})
}

func (c *parserContext) parseExpression() {
	c.parseTerm()
	for !c.parseError {
		switch c.look() {
		case '+':
			c.parseBinary('+', opAdd)
		case '-':
			c.parseBinary('-', opSubtract)
		case '?':
			c.parseTernary()
		case '|':
			c.match('|', false)
			if c.look() == '|' {
				c.parseBinary('|', opOr)
			} else {
				c.skipWhitespace()
				c.parseFunction()
			}
		case '&':
			c.match('&', false)
			c.parseBinary('&', opAnd)
		case '=':
			c.match('=', false)
			c.parseBinary('=', opEqual)
		case '!':
			c.match('!', false)
			c.parseBinary('=', opNotEqual)
		case '<':
			c.parseComparison('<', opLess, opLessEq)
		case '>':
			c.parseComparison('>', opGreater, opGreaterEq)
		case 0:
			c.reachedEnd = true
			return
		default:
			return
		}
	}
}

func (c *parserContext) parseTerm() {
	c.parseFactor()
	for !c.parseError {
		switch c.look() {
		case '*':
			c.parseFactorBinary('*', opMultiply)
		case '/':
			c.parseFactorBinary('/', opDivide)
		default:
			return
		}
	}
}

func (c *parserContext) parseFactor() {
	switch ch := c.look(); {
	case ch == '(':
		c.match('(', true)
		c.parseExpression()
		c.match(')', true)
	case ch == '\'':
		c.match('\'', false)
		c.parseStringLiteral()
		c.match('\'', true)
	case ch == '!':
		c.match('!', true)
		c.parseFactor()
		c.emit(opNot, value.Value{})
		c.skipWhitespace()
	case ch == '-' || (ch >= '0' && ch <= '9'):
		c.parseNumberLiteral()
		c.skipWhitespace()
	case isVariableCharacter(ch, true):
		c.parseVariable()
		c.skipWhitespace()
	default:
		c.expected("literal, variable name, parenthesis, or '!'")
	}
}

// parseBinary compiles the right-hand operand of an infix operator.
// The left-hand result is pushed around the recursive parse of the
// right-hand term and restored into the L register.
func (c *parserContext) parseBinary(ch byte, op opcode) {
	c.match(ch, true)
	c.push()
	c.parseTerm()
	c.pop(regL)
	c.emit(op, value.Value{})
}

func (c *parserContext) parseFactorBinary(ch byte, op opcode) {
	c.match(ch, true)
	c.push()
	c.parseFactor()
	c.pop(regL)
	c.emit(op, value.Value{})
}

func (c *parserContext) parseComparison(ch byte, op, opEq opcode) {
	c.match(ch, false)
	chosen := op
	if c.look() == '=' {
		c.match('=', true)
		chosen = opEq
	} else {
		c.skipWhitespace()
	}
	c.push()
	c.parseTerm()
	c.pop(regL)
	c.emit(chosen, value.Value{})
}

func (c *parserContext) parseTernary() {
	c.match('?', true)
	c.push()
	c.parseExpression()
	c.push()
	c.match(':', true)
	c.parseExpression()
	c.pop(regC)
	c.pop(regL)
	c.emit(opTernary, value.Value{})
}

func (c *parserContext) parseStringLiteral() {
	var sb strings.Builder
	for {
		ch := c.look()
		if ch == 0 || ch == '\'' {
			break
		}
		if ch == '\\' {
			// Backslash escapes the following character.
			ch = c.next()
			if ch == 0 {
				break
			}
		}
		sb.WriteByte(ch)
		c.next()
	}
	c.emit(opLiteral, value.String(sb.String()))
}

func (c *parserContext) parseNumberLiteral() {
	start := c.index
	hasDot := false
	matched := false
	ch := c.look()
	if ch == '-' {
		ch = c.next()
	}
	for (ch >= '0' && ch <= '9') || (ch == '.' && !hasDot) {
		matched = true
		if ch == '.' {
			hasDot = true
		}
		ch = c.next()
	}
	if !matched {
		c.errorf("invalid number literal: expected '0-9' or '.' but found %q", ch)
		return
	}
	number, err := strconv.ParseFloat(c.expression[start:c.index], 64)
	if err != nil {
		c.errorf("invalid number literal %q", c.expression[start:c.index])
		return
	}
	c.emit(opLiteral, value.Float(number))
}

func (c *parserContext) parseVariable() {
	name := c.variableName()
	if name == "" {
		c.errorf("expected a variable but got an empty name")
		return
	}

	// The keywords are scanned like variables, but compile as
	// literals, shadowing any binding of the same name.
	switch name {
	case "true":
		c.emit(opLiteral, value.Bool(true))
	case "false":
		c.emit(opLiteral, value.Bool(false))
	default:
		address := c.iface.resolveAddress(name)
		c.addresses = append(c.addresses, address)
		c.emit(opVariable, value.Int(len(c.addresses)-1))
	}
}

func (c *parserContext) parseFunction() {
	name := c.variableName()
	if name == "" {
		c.errorf("expected a transform name but got an empty name")
		return
	}

	if c.look() == '(' {
		numArguments := 0
		looping := true

		c.match('(', true)
		if c.look() == ')' {
			c.match(')', true)
			looping = false
		} else {
			// Save the piped-in value while assembling arguments.
			c.push()
		}

		for looping && !c.parseError {
			numArguments++
			c.parseExpression()
			c.push()

			switch c.look() {
			case ')':
				c.match(')', true)
				looping = false
			case ',':
				c.match(',', true)
			default:
				c.expected("one of ')' or ','")
				looping = false
			}
		}

		if numArguments > 0 && !c.parseError {
			c.collectArguments(numArguments)
			c.pop(regR)
		}
	} else {
		c.skipWhitespace()
	}

	c.emit(opFunction, value.String(name))
}

func (c *parserContext) variableName() string {
	start := c.index
	first := true
	for isVariableCharacter(c.look(), first) {
		c.next()
		first = false
	}
	return strings.TrimRight(c.expression[start:c.index], " ")
}

// isVariableCharacter defines the fused variable token: it starts with
// a letter and continues with letters, digits, and "_.[] " so that
// full data addresses can appear inline; trailing spaces are trimmed
// by the caller.
func isVariableCharacter(ch byte, first bool) bool {
	isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
	if first {
		return isAlpha
	}
	if isAlpha || (ch >= '0' && ch <= '9') {
		return true
	}
	switch ch {
	case '_', '.', '[', ']', ' ':
		return true
	}
	return false
}
