package money

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/OneOfOne/xxhash"
	"github.com/govalues/decimal"
)

var (
	// ErrNotAmount is returned when an operand is neither an amount nor zero,
	// when two amounts are multiplied, or when a number is divided by an amount.
	ErrNotAmount = errors.New("operand is not an amount or zero")
	// ErrCurrencyMismatch is returned when two non-zero amounts denominated
	// in different currencies are added, subtracted, ordered or divided.
	ErrCurrencyMismatch = errors.New("incompatible currencies")
	// ErrDivByZero is returned when an amount is divided by zero.
	ErrDivByZero = errors.New("division by zero")
	// ErrInvalidCurrency is returned when the exponent of a currency cannot
	// be resolved.
	ErrInvalidCurrency = errors.New("invalid currency")
	// ErrOverflow is returned when the minor units of a result do not fit
	// into the range [-math.MaxInt64, math.MaxInt64].
	ErrOverflow = errors.New("amount overflow")

	errSpecialValue = errors.New("special value")
)

// unitsLimit is 2^63, the smallest float64 that does not fit into an int64.
const unitsLimit float64 = 1 << 63

// Zero is the zero stand-in: an amount without currency that is compatible
// with amounts in any currency.
// It is equal to the zero value of [Amount].
var Zero Amount

// Amount represents an exact monetary value as an integer number of minor
// units (e.g. cents) of its [Currency].
//
// The zero value is the zero stand-in: it has no currency and is compatible
// with every other amount, so it can be used as the neutral element of sums
// without choosing a currency.
// Any amount with zero minor units behaves the same way in arithmetic and
// comparisons.
//
// Amount also caches a float64 representation of its value for display and
// interoperability with generic numeric code. The minor units and the
// currency are the source of truth; the cached value is never used for
// arithmetic except by [Amount.Rat].
//
// Amount is immutable and safe for concurrent use by multiple goroutines.
type Amount struct {
	units int64     // value * 10^exponent
	curr  *Currency // nil for the zero stand-in
	value float64   // cached real value
}

// newAmountUnsafe creates a new amount from minor units without checking
// the currency or the range of units.
// The cached value is derived from the units.
func newAmountUnsafe(units int64, curr *Currency) Amount {
	return Amount{
		units: units,
		curr:  curr,
		value: float64(units) / math.Pow10(curr.Exponent()),
	}
}

// toUnits converts an integral float to minor units.
func toUnits(f float64) (int64, error) {
	if math.IsNaN(f) {
		return 0, errSpecialValue
	}
	if f >= unitsLimit || f <= -unitsLimit {
		return 0, ErrOverflow
	}
	return int64(f), nil
}

// NewAmount returns an amount equal to value in the given currency.
// The value is rounded to the exponent of the currency using
// [rounding half away from zero].
// The value itself is kept as given and returned by [Amount.Float64], even if
// it has more digits than the currency allows.
//
// NewAmount returns an error if:
//   - the currency is not valid;
//   - the value is a special value (NaN or Inf);
//   - the value does not fit into an int64 once expressed in minor units.
//
// [rounding half away from zero]: https://en.wikipedia.org/wiki/Rounding#Rounding_half_away_from_zero
func NewAmount(value float64, curr *Currency) (Amount, error) {
	if !curr.valid() {
		return Amount{}, fmt.Errorf("constructing amount: %w", ErrInvalidCurrency)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Amount{}, fmt.Errorf("constructing amount: %w %v", errSpecialValue, value)
	}
	units, err := toUnits(math.Round(value * math.Pow10(curr.Exponent())))
	if err != nil {
		return Amount{}, fmt.Errorf("constructing amount from %v: %w", value, err)
	}
	return Amount{units: units, curr: curr, value: value}, nil
}

// MustNewAmount is like [NewAmount] but panics if the amount cannot be constructed.
// It simplifies safe initialization of global variables holding amounts.
func MustNewAmount(value float64, curr *Currency) Amount {
	a, err := NewAmount(value, curr)
	if err != nil {
		panic(fmt.Sprintf("NewAmount(%v, %v) failed: %v", value, curr, err))
	}
	return a
}

// NewAmountFromMinorUnits converts an integer, representing minor units of
// currency (e.g. cents, pennies, fens), to an amount.
// See also method [Amount.MinorUnits].
//
// NewAmountFromMinorUnits returns an error if the currency is not valid
// or units is [math.MinInt64].
func NewAmountFromMinorUnits(units int64, curr *Currency) (Amount, error) {
	if !curr.valid() {
		return Amount{}, fmt.Errorf("converting minor units: %w", ErrInvalidCurrency)
	}
	if units == math.MinInt64 {
		return Amount{}, fmt.Errorf("converting minor units: %w", ErrOverflow)
	}
	return newAmountUnsafe(units, curr), nil
}

// MustNewAmountFromMinorUnits is like [NewAmountFromMinorUnits] but panics
// if the amount cannot be constructed.
func MustNewAmountFromMinorUnits(units int64, curr *Currency) Amount {
	a, err := NewAmountFromMinorUnits(units, curr)
	if err != nil {
		panic(fmt.Sprintf("NewAmountFromMinorUnits(%v, %v) failed: %v", units, curr, err))
	}
	return a
}

// NewAmountFromDecimal converts a decimal to an amount.
// The decimal is rounded to the exponent of the currency using
// rounding half away from zero, as [NewAmount] does.
// The cached value is the float64 nearest to the decimal before rounding.
// See also method [Amount.Decimal].
//
// NewAmountFromDecimal returns an error if the currency is not valid or the
// result does not fit into an int64 once expressed in minor units.
func NewAmountFromDecimal(d decimal.Decimal, curr *Currency) (Amount, error) {
	if !curr.valid() {
		return Amount{}, fmt.Errorf("converting decimal: %w", ErrInvalidCurrency)
	}
	e := curr.Exponent()
	r, err := roundHalfAway(d, e)
	if err != nil {
		return Amount{}, fmt.Errorf("converting decimal %v: %w", d, err)
	}
	units, err := decimalUnits(r, e)
	if err != nil {
		return Amount{}, fmt.Errorf("converting decimal %v: %w", d, err)
	}
	f, ok := d.Float64()
	if !ok {
		return Amount{}, fmt.Errorf("converting decimal %v: %w", d, ErrOverflow)
	}
	return Amount{units: units, curr: curr, value: f}, nil
}

// ParseAmount converts a decimal string to an amount in the given currency.
// See also [NewAmountFromDecimal] and [decimal.Parse].
func ParseAmount(s string, curr *Currency) (Amount, error) {
	d, err := decimal.Parse(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount: %w", err)
	}
	return NewAmountFromDecimal(d, curr)
}

// MustParseAmount is like [ParseAmount] but panics if the string cannot be parsed.
// It simplifies safe initialization of global variables holding amounts.
func MustParseAmount(s string, curr *Currency) Amount {
	a, err := ParseAmount(s, curr)
	if err != nil {
		panic(fmt.Sprintf("ParseAmount(%q, %v) failed: %v", s, curr, err))
	}
	return a
}

// roundHalfAway rounds d to the given scale, resolving ties away from zero.
// The result has at least the given scale.
func roundHalfAway(d decimal.Decimal, scale int) (decimal.Decimal, error) {
	if d.Scale() <= scale {
		return d.Pad(scale), nil
	}
	t := d.Trunc(scale)
	rem, err := d.Sub(t)
	if err != nil {
		return decimal.Decimal{}, err
	}
	half, err := decimal.New(5, scale+1)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if rem.CmpAbs(half) < 0 {
		return t.Pad(scale), nil
	}
	ulp, err := decimal.New(1, scale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	t, err = t.Add(ulp.CopySign(d))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return t.Pad(scale), nil
}

// decimalUnits returns the coefficient of d as minor units of a currency
// with the given exponent. The scale of d must not exceed the exponent.
func decimalUnits(d decimal.Decimal, scale int) (int64, error) {
	d = d.Pad(scale)
	if d.Scale() != scale {
		return 0, ErrOverflow
	}
	coef := d.Coef()
	if coef > math.MaxInt64 {
		return 0, ErrOverflow
	}
	units := int64(coef)
	if d.IsNeg() {
		units = -units
	}
	return units, nil
}

// MinorUnits returns the amount in minor units of its currency
// (e.g. cents, pennies, fens).
// See also constructor [NewAmountFromMinorUnits].
func (a Amount) MinorUnits() int64 {
	return a.units
}

// Curr returns the currency of the amount, or nil for the zero stand-in.
func (a Amount) Curr() *Currency {
	return a.curr
}

// Float64 returns the cached real value of the amount.
// For amounts built with [NewAmount] this is the value given to the
// constructor, which may carry more digits than the minor units do.
func (a Amount) Float64() float64 {
	return a.value
}

// Decimal returns the exact value of the amount as a decimal with the
// scale of its currency.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.MustNew(a.units, a.Curr().Exponent())
}

// IsStandIn returns true if the amount has no currency.
func (a Amount) IsStandIn() bool {
	return a.curr == nil
}

// Sign returns:
//
//	-1 if a < 0
//	 0 if a = 0
//	+1 if a > 0
func (a Amount) Sign() int {
	switch {
	case a.units < 0:
		return -1
	case a.units > 0:
		return 1
	default:
		return 0
	}
}

// IsZero returns true if the amount has zero minor units, whatever its
// currency. Such an amount is compatible with amounts in any currency.
func (a Amount) IsZero() bool {
	return a.units == 0
}

// IsNeg returns:
//
//	true  if a < 0
//	false otherwise
func (a Amount) IsNeg() bool {
	return a.units < 0
}

// IsPos returns:
//
//	true  if a > 0
//	false otherwise
func (a Amount) IsPos() bool {
	return a.units > 0
}

// Copy returns a new amount with the same minor units and currency.
// The currency is shared, and the cached value is derived from the units.
func (a Amount) Copy() Amount {
	return newAmountUnsafe(a.units, a.curr)
}

// Neg returns an amount with the opposite sign.
func (a Amount) Neg() Amount {
	return newAmountUnsafe(-a.units, a.curr)
}

// Abs returns the absolute value of the amount.
// Non-negative amounts are returned unchanged.
func (a Amount) Abs() Amount {
	if a.units >= 0 {
		return a
	}
	return a.Neg()
}

// addUnits returns x + y, or an error if the sum leaves the range
// [-math.MaxInt64, math.MaxInt64].
func addUnits(x, y int64) (int64, error) {
	z := x + y
	if (z > x) != (y > 0) || z == math.MinInt64 {
		return 0, ErrOverflow
	}
	return z, nil
}

// Add returns the sum of amounts a and b.
// If one of the amounts is zero, the other one is returned unchanged.
//
// Add returns an error if:
//   - both amounts are non-zero and denominated in different currencies;
//   - the sum does not fit into an int64 once expressed in minor units.
func (a Amount) Add(b Amount) (Amount, error) {
	c, err := a.add(b)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v + %v]: %w", a, b, err)
	}
	return c, nil
}

func (a Amount) add(b Amount) (Amount, error) {
	switch {
	case a.IsZero():
		return b, nil
	case b.IsZero():
		return a, nil
	case !a.SameCurr(b):
		return Amount{}, ErrCurrencyMismatch
	}
	u, err := addUnits(a.units, b.units)
	if err != nil {
		return Amount{}, err
	}
	return newAmountUnsafe(u, a.Curr()), nil
}

// Sub returns the difference between amounts a and b.
// If b is zero, a is returned unchanged; if a is zero, the negation of b
// is returned.
//
// Sub returns an error if:
//   - both amounts are non-zero and denominated in different currencies;
//   - the difference does not fit into an int64 once expressed in minor units.
func (a Amount) Sub(b Amount) (Amount, error) {
	c, err := a.sub(b)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v - %v]: %w", a, b, err)
	}
	return c, nil
}

func (a Amount) sub(b Amount) (Amount, error) {
	switch {
	case b.IsZero():
		return a, nil
	case a.IsZero():
		return b.Neg(), nil
	case !a.SameCurr(b):
		return Amount{}, ErrCurrencyMismatch
	}
	u, err := addUnits(a.units, -b.units)
	if err != nil {
		return Amount{}, err
	}
	return newAmountUnsafe(u, a.Curr()), nil
}

// Mul returns the product of amount a and factor f, rounded to the minor
// units of the currency using [rounding half to even].
// If the factor is 0, the result is the zero stand-in [Zero], which stays
// compatible with amounts in any currency.
//
// Mul returns an error if:
//   - the factor is a special value (NaN or Inf);
//   - the product does not fit into an int64 once expressed in minor units.
//
// [rounding half to even]: https://en.wikipedia.org/wiki/Rounding#Rounding_half_to_even
func (a Amount) Mul(f float64) (Amount, error) {
	c, err := a.mul(f)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v * %v]: %w", a, f, err)
	}
	return c, nil
}

func (a Amount) mul(f float64) (Amount, error) {
	if f == 0 {
		return Zero, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, errSpecialValue
	}
	var u int64
	var err error
	if n, ok := integral(f); ok {
		u, err = mulUnits(a.units, n)
	} else {
		u, err = toUnits(math.RoundToEven(float64(a.units) * f))
	}
	if err != nil {
		return Amount{}, err
	}
	return newAmountUnsafe(u, a.Curr()), nil
}

// Quo returns the quotient of amount a and divisor f, rounded to the minor
// units of the currency using [rounding half to even].
// See also methods [Amount.Rat] and [Amount.Split].
//
// Quo returns an error if:
//   - the divisor is 0;
//   - the divisor is a special value (NaN or Inf);
//   - the quotient does not fit into an int64 once expressed in minor units.
//
// [rounding half to even]: https://en.wikipedia.org/wiki/Rounding#Rounding_half_to_even
func (a Amount) Quo(f float64) (Amount, error) {
	c, err := a.quo(f)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v / %v]: %w", a, f, err)
	}
	return c, nil
}

func (a Amount) quo(f float64) (Amount, error) {
	if f == 0 {
		return Amount{}, ErrDivByZero
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, errSpecialValue
	}
	if n, ok := integral(f); ok {
		return newAmountUnsafe(quoUnits(a.units, n), a.Curr()), nil
	}
	u, err := toUnits(math.RoundToEven(float64(a.units) / f))
	if err != nil {
		return Amount{}, err
	}
	return newAmountUnsafe(u, a.Curr()), nil
}

// integral returns f as an int64 if f is a whole number within
// [-math.MaxInt64, math.MaxInt64].
// Products and quotients by such numbers are computed exactly, so amounts
// above 2^53 minor units do not lose precision.
func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= unitsLimit || f <= -unitsLimit {
		return 0, false
	}
	return int64(f), true
}

// mulUnits returns x * y, or an error if the product leaves the range
// [-math.MaxInt64, math.MaxInt64].
func mulUnits(x, y int64) (int64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	z := x * y
	if z/y != x || z == math.MinInt64 {
		return 0, ErrOverflow
	}
	return z, nil
}

// quoUnits returns x / y rounded half to even. y must not be 0.
// The quotient of two values in [-math.MaxInt64, math.MaxInt64] always
// stays in that range.
func quoUnits(x, y int64) int64 {
	q, r := x/y, x%y
	if r < 0 {
		r = -r
	}
	d := y
	if d < 0 {
		d = -d
	}
	// Compare 2r with d without overflowing.
	if r > d-r || (r == d-r && q%2 != 0) {
		if (x < 0) != (y < 0) {
			q--
		} else {
			q++
		}
	}
	return q
}

// Rat returns the ratio between amounts a and b as a plain number.
// The ratio is computed from the cached values, see [Amount.Float64].
// See also methods [Amount.Quo] and [Amount.Split].
//
// Rat returns an error if:
//   - both amounts are non-zero and denominated in different currencies;
//   - the value of b is 0.
func (a Amount) Rat(b Amount) (float64, error) {
	if !a.Compatible(b) {
		return 0, fmt.Errorf("computing [%v / %v]: %w", a, b, ErrCurrencyMismatch)
	}
	if b.value == 0 {
		return 0, fmt.Errorf("computing [%v / %v]: %w", a, b, ErrDivByZero)
	}
	return a.value / b.value, nil
}

// Split returns a slice of amounts that sum up to the original amount,
// ensuring the parts are as equal as possible.
// If the original amount cannot be divided equally among the specified number
// of parts, the remaining minor units are distributed among the first parts
// of the slice.
//
// Split returns an error if the number of parts is not a positive integer.
func (a Amount) Split(parts int) ([]Amount, error) {
	if parts <= 0 {
		return nil, fmt.Errorf("splitting %v into %v parts: number of parts must be positive", a, parts)
	}
	n := int64(parts)
	quo, rem := a.units/n, a.units%n
	ulp := int64(1)
	if rem < 0 {
		ulp, rem = -1, -rem
	}
	res := make([]Amount, parts)
	for i := range res {
		u := quo
		if int64(i) < rem {
			u += ulp
		}
		res[i] = newAmountUnsafe(u, a.curr)
	}
	return res, nil
}

// Sum returns the sum of the given amounts, starting from the zero stand-in.
// The sum of no amounts is [Zero].
//
// Sum returns an error if two non-zero amounts are denominated in different
// currencies or the sum overflows.
func Sum(amounts ...Amount) (Amount, error) {
	var s Amount
	for _, a := range amounts {
		t, err := s.add(a)
		if err != nil {
			return Amount{}, fmt.Errorf("summing %v amounts: computing [%v + %v]: %w", len(amounts), s, a, err)
		}
		s = t
	}
	return s, nil
}

// SameCurr returns true if amounts are denominated in the same currency.
// See also method [Amount.Compatible].
func (a Amount) SameCurr(b Amount) bool {
	return a.curr == b.curr
}

// Compatible returns true if amounts a and b can be added, subtracted,
// ordered or divided: either one of them is zero or both are denominated
// in the same currency.
func (a Amount) Compatible(b Amount) bool {
	return a.IsZero() || b.IsZero() || a.SameCurr(b)
}

func (a Amount) compare(b Amount) (int, error) {
	if !a.Compatible(b) {
		return 0, ErrCurrencyMismatch
	}
	switch {
	case a.units < b.units:
		return -1, nil
	case a.units > b.units:
		return 1, nil
	default:
		return 0, nil
	}
}

// Cmp compares amounts and returns:
//
//	-1 if a < b
//	 0 if a = b
//	+1 if a > b
//
// Zero amounts compare equal to each other whatever their currency.
//
// Cmp returns an error if both amounts are non-zero and denominated in
// different currencies.
func (a Amount) Cmp(b Amount) (int, error) {
	c, err := a.compare(b)
	if err != nil {
		return 0, fmt.Errorf("comparing [%v] and [%v]: %w", a, b, err)
	}
	return c, nil
}

// Less returns true if a < b.
// It returns an error under the same conditions as [Amount.Cmp].
func (a Amount) Less(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

// LessEq returns true if a <= b.
// It returns an error under the same conditions as [Amount.Cmp].
func (a Amount) LessEq(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return c <= 0, nil
}

// Greater returns true if a > b.
// It returns an error under the same conditions as [Amount.Cmp].
func (a Amount) Greater(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// GreaterEq returns true if a >= b.
// It returns an error under the same conditions as [Amount.Cmp].
func (a Amount) GreaterEq(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return c >= 0, nil
}

// Equal returns true if amounts a and b have the same minor units and the
// same currency, or if both are zero.
// Unlike [Amount.Cmp], Equal never fails: amounts in different currencies
// are simply not equal.
func (a Amount) Equal(b Amount) bool {
	c, err := a.compare(b)
	return err == nil && c == 0
}

// NotEqual is the negation of [Amount.Equal].
func (a Amount) NotEqual(b Amount) bool {
	return !a.Equal(b)
}

// Min returns the smaller amount.
// If the amounts are equal, a is returned.
//
// Min returns an error if both amounts are non-zero and denominated in
// different currencies.
func (a Amount) Min(b Amount) (Amount, error) {
	switch c, err := a.Cmp(b); {
	case err != nil:
		return Amount{}, err
	case c <= 0: // a <= b
		return a, nil
	default:
		return b, nil
	}
}

// Max returns the larger amount.
// If the amounts are equal, a is returned.
//
// Max returns an error if both amounts are non-zero and denominated in
// different currencies.
func (a Amount) Max(b Amount) (Amount, error) {
	switch c, err := a.Cmp(b); {
	case err != nil:
		return Amount{}, err
	case c >= 0: // a >= b
		return a, nil
	default:
		return b, nil
	}
}

// Key is a comparable representation of an amount that can be used as a map
// key. Two amounts have the same key if and only if they are [Amount.Equal].
type Key struct {
	units int64
	curr  *Currency
}

// Key returns the map key of the amount.
// All zero amounts share the same key, whatever their currency.
func (a Amount) Key() Key {
	if a.IsZero() {
		return Key{}
	}
	return Key{units: a.units, curr: a.curr}
}

// Hash returns a 64-bit hash of the amount consistent with [Amount.Equal]:
// equal amounts always have the same hash.
// All zero amounts hash alike, whatever their currency.
func (a Amount) Hash() uint64 {
	k := a.Key()
	code := k.curr.Code()
	buf := make([]byte, 8, 8+len(code))
	binary.BigEndian.PutUint64(buf, uint64(k.units))
	buf = append(buf, code...)
	return xxhash.Checksum64(buf)
}

// String implements the [fmt.Stringer] interface and returns a string
// representation of an amount, such as "USD 19.99".
// The digits are taken from the minor units, not from the cached value.
// The zero stand-in is represented as "0".
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (a Amount) String() string {
	if a.IsStandIn() {
		return "0"
	}
	return a.Curr().Code() + " " + a.Decimal().String()
}

// GoString implements the [fmt.GoStringer] interface and returns the cached
// value printed with the exponent of the currency, such as
// "Amount(19.99, USD)".
//
// [fmt.GoStringer]: https://pkg.go.dev/fmt#GoStringer
func (a Amount) GoString() string {
	if a.IsStandIn() {
		return "Amount(0)"
	}
	return fmt.Sprintf("Amount(%.*f, %v)", a.Curr().Exponent(), a.value, a.Curr())
}
