package eval

import (
	"fmt"
	"math"

	exprErrors "hexbind/enclave/pkg/expr/errors"
	"hexbind/enclave/pkg/expr/value"
)

// applyBinary applies a binary operator to two already-evaluated operands.
//
// Soft operands (the no-value sentinel and NaN) collapse most operators to
// a reduced rule set: equality and inequality compare as-is, logical
// operators use truthiness, and arithmetic yields NaN. Division by an exact
// zero divisor is the one arithmetic case that raises instead.
func applyBinary(op string, left, right value.Value, pos int) (value.Value, error) {
	switch op {
	case "||":
		// Logical operators return the deciding operand, so expressions
		// like `name || "anonymous"` provide fallback values.
		if left.Truthy() {
			return left, nil
		}
		return right, nil

	case "&&":
		if left.Truthy() {
			return right, nil
		}
		return left, nil

	case "===":
		return value.Bool(value.Equal(left, right)), nil

	case "!==":
		return value.Bool(!value.Equal(left, right)), nil

	case "==":
		return value.Bool(looseEqual(left, right)), nil

	case "!=":
		return value.Bool(!looseEqual(left, right)), nil

	case "<", ">", "<=", ">=":
		return compareRelational(op, left, right), nil

	case "+", "-", "*", "/", "%":
		return applyArithmetic(op, left, right, pos)

	default:
		return value.NoValue(), exprErrors.NewSyntax(fmt.Sprintf(
			"unknown operator %q", op), pos)
	}
}

// applyArithmetic applies the numeric operators. "+" concatenates when
// either operand is a string.
func applyArithmetic(op string, left, right value.Value, pos int) (value.Value, error) {
	if left.IsSoft() || right.IsSoft() {
		return value.Number(math.NaN()), nil
	}

	if op == "+" && (left.Kind() == value.KindString || right.Kind() == value.KindString) {
		return value.String(left.Render() + right.Render()), nil
	}

	ln, lok := left.AsNumber()
	rn, rok := right.AsNumber()
	if !lok || !rok {
		return value.Number(math.NaN()), nil
	}

	switch op {
	case "+":
		return value.Number(ln + rn), nil
	case "-":
		return value.Number(ln - rn), nil
	case "*":
		return value.Number(ln * rn), nil
	case "/":
		if rn == 0 {
			return value.NoValue(), exprErrors.NewDivisionByZero(pos)
		}
		return value.Number(ln / rn), nil
	case "%":
		if rn == 0 {
			return value.Number(math.NaN()), nil
		}
		return value.Number(math.Mod(ln, rn)), nil
	}

	return value.Number(math.NaN()), nil
}

// compareRelational applies <, >, <=, >=. Two strings compare
// lexicographically; any other combination compares numerically after
// coercion, and an uncoercible or soft operand makes the comparison false.
func compareRelational(op string, left, right value.Value) value.Value {
	if left.Kind() == value.KindString && right.Kind() == value.KindString {
		ls, rs := left.StringVal(), right.StringVal()
		switch op {
		case "<":
			return value.Bool(ls < rs)
		case ">":
			return value.Bool(ls > rs)
		case "<=":
			return value.Bool(ls <= rs)
		case ">=":
			return value.Bool(ls >= rs)
		}
	}

	ln, lok := left.AsNumber()
	rn, rok := right.AsNumber()
	if !lok || !rok {
		return value.Bool(false)
	}

	switch op {
	case "<":
		return value.Bool(ln < rn)
	case ">":
		return value.Bool(ln > rn)
	case "<=":
		return value.Bool(ln <= rn)
	case ">=":
		return value.Bool(ln >= rn)
	}

	return value.Bool(false)
}

// looseEqual implements the loose equality operator with a minimal coercion
// table: null and no-value are mutually equal, numbers and numeric strings
// compare numerically, booleans coerce to 0/1, and everything else falls
// back to strict comparison.
func looseEqual(left, right value.Value) bool {
	lk, rk := left.Kind(), right.Kind()

	if lk == rk {
		return value.Equal(left, right)
	}

	// null == undefined (and vice versa), but neither equals anything else
	// except through the boolean coercion below.
	lNullish := lk == value.KindNull || lk == value.KindNoValue
	rNullish := rk == value.KindNull || rk == value.KindNoValue
	if lNullish || rNullish {
		return lNullish && rNullish
	}

	if lk == value.KindBool {
		return looseEqual(value.Number(boolToNumber(left)), right)
	}
	if rk == value.KindBool {
		return looseEqual(left, value.Number(boolToNumber(right)))
	}

	if (lk == value.KindNumber && rk == value.KindString) ||
		(lk == value.KindString && rk == value.KindNumber) {
		ln, lok := left.AsNumber()
		rn, rok := right.AsNumber()
		return lok && rok && ln == rn
	}

	return false
}

func boolToNumber(v value.Value) float64 {
	if v.BoolVal() {
		return 1
	}
	return 0
}
