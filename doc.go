/*
Package money implements exact monetary amounts for a personal finance
application.
It stores amounts as integer numbers of minor units (e.g. cents) tagged with
a [Currency], so that money arithmetic never drifts the way float64
arithmetic does.

# Features

  - Immutable monetary values, ensuring safe usage across multiple goroutines
  - A zero stand-in that is compatible with amounts in any currency
  - Arithmetic and comparison operations that enforce currency compatibility
  - Hashing consistent with equality
  - A registry of currencies, loadable from YAML definitions

# Representation

An [Amount] consists of an int64 number of minor units, a pointer to its
[Currency] and a cached float64 value used for display and for
interoperability with generic numeric code.
The minor units are the value multiplied by 10^exponent, where the exponent
is the number of digits after the decimal point of the currency.

A [Currency] has a code, a name and an exponent.
Currencies are kept in a [Registry] which guarantees a single instance per
code, so currencies are compared by identity.
[USD], [EUR] and [CAD] are registered in the default registry.

# Zero stand-in

The zero value of [Amount], also available as [Zero], has no currency.
It stands for "no amount" and can be added to, subtracted from and compared
with amounts in any currency.
More generally, any amount with zero minor units is compatible with any
other amount, so sums of amounts can start from [Zero] without choosing
a currency. See [Sum].

# Rounding

[NewAmount] rounds values to the exponent of the currency using rounding
half away from zero, while [Amount.Mul] and [Amount.Quo] round the result
to minor units using rounding half to even.

# Equality and hashing

[Amount.Equal] never fails: amounts in different currencies are simply
not equal, and all zero amounts are equal whatever their currency.
[Amount.Hash] and [Amount.Key] follow the same rule, so equal amounts
always have the same hash and the same map key.

# Errors

Arithmetic and ordering operations return errors that can be matched with
[errors.Is]:

  - [ErrNotAmount]: an operand is neither an amount nor zero, see [Apply];
  - [ErrCurrencyMismatch]: non-zero amounts in different currencies;
  - [ErrDivByZero]: division by zero;
  - [ErrInvalidCurrency]: the exponent of a currency cannot be resolved;
  - [ErrOverflow]: the result does not fit into an int64 in minor units.

Minor units are kept within [-math.MaxInt64, math.MaxInt64] and the
package never wraps around silently.
*/
package money
