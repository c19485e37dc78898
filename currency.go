package money

import "fmt"

// MaxExponent is the largest supported currency exponent.
// With 18 fractional digits one major unit is 10^18 minor units,
// which still fits into an int64.
const MaxExponent = 18

// Currency represents a currency known to a [Registry].
//
// A Currency is immutable and always handled through a pointer.
// Two currencies are equal only if they are the same instance, which the
// registry guarantees for a given code.
// Amounts share the currency they reference and never modify it.
type Currency struct {
	code     string // upper case 3-letter code
	name     string
	exponent int // number of digits after the decimal point
}

// USD, EUR and CAD are registered in the default registry at start-up.
var (
	USD = mustRegister("USD", "U.S. dollar", 2)
	EUR = mustRegister("EUR", "European Euro", 2)
	CAD = mustRegister("CAD", "Canadian dollar", 2)
)

func mustRegister(code, name string, exponent int) *Currency {
	c, err := defaultRegistry.Register(code, name, exponent)
	if err != nil {
		panic(fmt.Sprintf("Register(%q, %q, %v) failed: %v", code, name, exponent, err))
	}
	return c
}

// ParseCurr returns the currency registered in the default registry under
// the given code. The code is case-insensitive.
//
// ParseCurr returns an error if the code is not registered.
func ParseCurr(code string) (*Currency, error) {
	return defaultRegistry.Lookup(code)
}

// MustParseCurr is like [ParseCurr] but panics if the code is not registered.
// It simplifies safe initialization of global variables holding currencies.
func MustParseCurr(code string) *Currency {
	c, err := ParseCurr(code)
	if err != nil {
		panic(fmt.Sprintf("ParseCurr(%q) failed: %v", code, err))
	}
	return c
}

// RegisterCurr registers a currency in the default registry.
// See also method [Registry.Register].
func RegisterCurr(code, name string, exponent int) (*Currency, error) {
	return defaultRegistry.Register(code, name, exponent)
}

// Code returns the 3-letter code of the currency.
func (c *Currency) Code() string {
	if c == nil {
		return ""
	}
	return c.code
}

// Name returns the full name of the currency.
func (c *Currency) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Exponent returns the number of digits after the decimal point required
// for representing the minor unit of the currency.
// For example, the exponent of the US Dollar is 2 because its minor unit,
// 1 cent, is 0.01 dollars.
func (c *Currency) Exponent() int {
	if c == nil {
		return 0
	}
	return c.exponent
}

// String implements the [fmt.Stringer] interface and returns the code of
// the currency.
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (c *Currency) String() string {
	return c.Code()
}

// valid reports whether the exponent of the currency can be resolved.
func (c *Currency) valid() bool {
	return c != nil &&
		c.code != "" &&
		c.exponent >= 0 &&
		c.exponent <= MaxExponent
}
