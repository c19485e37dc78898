package money

import "fmt"

// Op is an arithmetic operator applied by [Apply].
type Op int

// Supported operators.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpQuo
)

// String returns the symbol of the operator.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpQuo:
		return "/"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// ParseOp converts "+", "-", "*" or "/" to an operator.
// "x" is accepted for multiplication, as "*" is awkward to pass on a shell.
func ParseOp(s string) (Op, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSub, nil
	case "*", "x":
		return OpMul, nil
	case "/":
		return OpQuo, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

// AsAmount resolves an operand that must be an amount.
// It accepts an [Amount], a non-nil *Amount, or a number equal to 0, which
// is resolved to the zero stand-in [Zero].
//
// AsAmount returns [ErrNotAmount] for any other value.
func AsAmount(v any) (Amount, error) {
	if a, ok := amountOf(v); ok {
		return a, nil
	}
	if f, ok := numberOf(v); ok && f == 0 {
		return Zero, nil
	}
	return Amount{}, fmt.Errorf("resolving %v (%T): %w", v, v, ErrNotAmount)
}

// amountOf returns the amount held by v, if any.
func amountOf(v any) (Amount, bool) {
	switch v := v.(type) {
	case Amount:
		return v, true
	case *Amount:
		if v == nil {
			return Amount{}, false
		}
		return *v, true
	default:
		return Amount{}, false
	}
}

// numberOf returns the value of v as a float64 if v has a numeric type.
func numberOf(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// Apply applies the operator to operands x and y, resolving their types
// once before dispatching to the methods of [Amount]:
//
//	| Operator | x             | y             | Result                     |
//	| -------- | ------------- | ------------- | -------------------------- |
//	| +, -     | amount or 0   | amount or 0   | [Amount.Add], [Amount.Sub] |
//	| *        | amount        | number        | [Amount.Mul]               |
//	| *        | number        | amount        | [Amount.Mul]               |
//	| /        | amount        | number        | [Amount.Quo]               |
//	| /        | amount        | amount        | [Amount.Rat] (float64)     |
//
// Apply returns an error wrapping [ErrNotAmount] for any other combination
// of operands, including the product of two amounts and the quotient of
// a number and an amount.
// Other errors are the ones returned by the methods of [Amount].
func Apply(op Op, x, y any) (any, error) {
	r, err := apply(op, x, y)
	if err != nil {
		return nil, fmt.Errorf("applying [%v %v %v]: %w", x, op, y, err)
	}
	return r, nil
}

func apply(op Op, x, y any) (any, error) {
	switch op {
	case OpAdd, OpSub:
		a, err := AsAmount(x)
		if err != nil {
			return nil, err
		}
		b, err := AsAmount(y)
		if err != nil {
			return nil, err
		}
		if op == OpAdd {
			return a.add(b)
		}
		return a.sub(b)

	case OpMul:
		a, aok := amountOf(x)
		b, bok := amountOf(y)
		switch {
		case aok && bok:
			return nil, fmt.Errorf("multiplying two amounts: %w", ErrNotAmount)
		case bok:
			a, y = b, x
		case !aok:
			return nil, fmt.Errorf("multiplying %T by %T: %w", x, y, ErrNotAmount)
		}
		f, ok := numberOf(y)
		if !ok {
			return nil, fmt.Errorf("multiplying by %T: %w", y, ErrNotAmount)
		}
		return a.mul(f)

	case OpQuo:
		a, ok := amountOf(x)
		if !ok {
			return nil, fmt.Errorf("dividing %T by %T: %w", x, y, ErrNotAmount)
		}
		if b, ok := amountOf(y); ok {
			return a.Rat(b)
		}
		f, ok := numberOf(y)
		if !ok {
			return nil, fmt.Errorf("dividing by %T: %w", y, ErrNotAmount)
		}
		return a.quo(f)

	default:
		return nil, fmt.Errorf("unknown operator %v", op)
	}
}

// Compare resolves operands x and y with [AsAmount] and compares them
// like [Amount.Cmp].
//
// Compare returns an error wrapping [ErrNotAmount] if an operand is neither
// an amount nor zero, or [ErrCurrencyMismatch] if both are non-zero amounts
// in different currencies.
func Compare(x, y any) (int, error) {
	a, err := AsAmount(x)
	if err != nil {
		return 0, fmt.Errorf("comparing [%v] and [%v]: %w", x, y, err)
	}
	b, err := AsAmount(y)
	if err != nil {
		return 0, fmt.Errorf("comparing [%v] and [%v]: %w", x, y, err)
	}
	return a.Cmp(b)
}

// Equal reports whether operands x and y resolve to equal amounts.
// Unlike [Compare], Equal never fails: operands that are not amounts or
// zero are simply not equal to anything.
func Equal(x, y any) bool {
	a, err := AsAmount(x)
	if err != nil {
		return false
	}
	b, err := AsAmount(y)
	if err != nil {
		return false
	}
	return a.Equal(b)
}
