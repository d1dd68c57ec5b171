// Package eval implements the tree-walking expression evaluator.
//
// An Evaluator instance is created fresh per evaluation call and carries its
// own sanitized context and recursion budget; it holds no shared state and
// is discarded when the call returns. Missing data produces the soft
// "no value" result rather than an error; only sandbox violations, resource
// ceilings, and division by exact zero raise.
package eval

import (
	"fmt"
	"math"

	"hexbind/enclave/pkg/expr"
	"hexbind/enclave/pkg/expr/ast"
	exprErrors "hexbind/enclave/pkg/expr/errors"
	"hexbind/enclave/pkg/expr/sandbox"
	"hexbind/enclave/pkg/expr/value"
)

// Evaluator walks an AST against a sanitized context.
type Evaluator struct {
	ctx    map[string]value.Value
	limits expr.Limits
}

// New creates an evaluator over an already-sanitized context. The context
// must come from the sanitize package; the evaluator trusts that it exposes
// no deny-listed names and no functions.
func New(ctx map[string]value.Value, limits expr.Limits) *Evaluator {
	return &Evaluator{ctx: ctx, limits: limits}
}

// Evaluate computes the value of node. It raises a security error for a
// deny-listed identifier, a resource limit error when recursion exceeds its
// ceiling, and a division-by-zero error for an exact zero divisor; all
// ordinary missing-data conditions yield the soft no-value result instead.
func (e *Evaluator) Evaluate(node ast.Node) (value.Value, error) {
	return e.eval(node, 0)
}

// eval recursively evaluates node. Depth is threaded explicitly through
// every recursive descent and checked on node entry, which guarantees
// termination for arbitrarily nested trees without relying on exception
// bookkeeping.
func (e *Evaluator) eval(node ast.Node, depth int) (value.Value, error) {
	if depth >= e.limits.MaxRecursionDepth {
		return value.NoValue(), exprErrors.NewResourceLimit(fmt.Sprintf(
			"evaluation recursion depth exceeds maximum %d", e.limits.MaxRecursionDepth))
	}

	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.Identifier:
		return e.evalIdentifier(n)

	case *ast.Unary:
		return e.evalUnary(n, depth)

	case *ast.Binary:
		return e.evalBinary(n, depth)

	case *ast.Member:
		return e.evalMember(n, depth)

	case *ast.Index:
		return e.evalIndex(n, depth)

	case *ast.Conditional:
		return e.evalConditional(n, depth)

	default:
		return value.NoValue(), exprErrors.NewSyntax(
			fmt.Sprintf("unknown AST node %T", node), node.Pos())
	}
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier) (value.Value, error) {
	// The lexer rejects deny-listed identifiers, but a directly constructed
	// AST bypasses the lexer, so the check is repeated here.
	if sandbox.BlockedName(n.Name) {
		return value.NoValue(), exprErrors.NewSecurity(fmt.Sprintf(
			"identifier %q is not allowed", n.Name), n.Position)
	}

	v, ok := e.ctx[n.Name]
	if !ok {
		// Unknown name is ordinary missing data, not an error.
		return value.NoValue(), nil
	}
	return v, nil
}

func (e *Evaluator) evalUnary(n *ast.Unary, depth int) (value.Value, error) {
	operand, err := e.eval(n.Right, depth+1)
	if err != nil {
		return value.NoValue(), err
	}

	switch n.Op {
	case "!":
		return value.Bool(!operand.Truthy()), nil
	case "-":
		num, ok := operand.AsNumber()
		if !ok {
			return value.Number(math.NaN()), nil
		}
		return value.Number(-num), nil
	default:
		return value.NoValue(), exprErrors.NewSyntax(fmt.Sprintf(
			"unknown unary operator %q", n.Op), n.Position)
	}
}

// evalBinary always evaluates both operands; "&&" and "||" do not
// short-circuit. This mirrors the behavior of the system this engine
// replaces, so an error in the right operand surfaces even when the left
// operand already decides the result.
func (e *Evaluator) evalBinary(n *ast.Binary, depth int) (value.Value, error) {
	left, err := e.eval(n.Left, depth+1)
	if err != nil {
		return value.NoValue(), err
	}

	right, err := e.eval(n.Right, depth+1)
	if err != nil {
		return value.NoValue(), err
	}

	return applyBinary(n.Op, left, right, n.Position)
}

func (e *Evaluator) evalMember(n *ast.Member, depth int) (value.Value, error) {
	object, err := e.eval(n.Object, depth+1)
	if err != nil {
		return value.NoValue(), err
	}
	return accessProperty(object, n.Property, e.limits), nil
}

func (e *Evaluator) evalIndex(n *ast.Index, depth int) (value.Value, error) {
	object, err := e.eval(n.Object, depth+1)
	if err != nil {
		return value.NoValue(), err
	}

	key, err := e.eval(n.Key, depth+1)
	if err != nil {
		return value.NoValue(), err
	}

	switch key.Kind() {
	case value.KindNumber:
		num := key.NumberVal()
		if math.IsNaN(num) || num != math.Trunc(num) {
			return value.NoValue(), nil
		}
		idx := int(num)
		if idx < 0 || idx > e.limits.MaxArrayIndex {
			return value.NoValue(), nil
		}
		return accessIndex(object, idx), nil

	case value.KindString:
		name := key.StringVal()
		if len(name) > e.limits.MaxPropertyNameLength || sandbox.BlockedName(name) {
			return value.NoValue(), nil
		}
		return accessProperty(object, name, e.limits), nil

	default:
		return value.NoValue(), nil
	}
}

// evalConditional evaluates the test and then exactly one branch; the
// untaken branch is never evaluated.
func (e *Evaluator) evalConditional(n *ast.Conditional, depth int) (value.Value, error) {
	test, err := e.eval(n.Test, depth+1)
	if err != nil {
		return value.NoValue(), err
	}

	if test.Truthy() {
		return e.eval(n.Consequent, depth+1)
	}
	return e.eval(n.Alternate, depth+1)
}

// accessProperty resolves a property read on a value. Absent properties,
// non-container objects, and deny-listed names all produce the soft
// no-value result.
func accessProperty(object value.Value, name string, limits expr.Limits) value.Value {
	if len(name) > limits.MaxPropertyNameLength || sandbox.BlockedName(name) {
		return value.NoValue()
	}

	switch object.Kind() {
	case value.KindObject:
		if v, ok := object.Field(name); ok {
			return v
		}
		if name == "length" {
			return value.Number(float64(object.Len()))
		}
		return value.NoValue()

	case value.KindArray, value.KindString:
		if name == "length" {
			return value.Number(float64(object.Len()))
		}
		return value.NoValue()

	case value.KindHostRef:
		if v, ok := object.HostVal().Get(name); ok {
			return v
		}
		return value.NoValue()

	default:
		return value.NoValue()
	}
}

// accessIndex resolves an integer index on a value. Strings index by rune.
func accessIndex(object value.Value, idx int) value.Value {
	switch object.Kind() {
	case value.KindArray:
		if v, ok := object.Index(idx); ok {
			return v
		}
		return value.NoValue()

	case value.KindString:
		runes := []rune(object.StringVal())
		if idx >= len(runes) {
			return value.NoValue()
		}
		return value.String(string(runes[idx]))

	default:
		return value.NoValue()
	}
}
