package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/moneyguru/money"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {

	// Command line parameter initialization.
	var (
		flagCurrencies string
		flagLevel      string
	)

	flags := pflag.NewFlagSet("moneycalc", pflag.ContinueOnError)
	flags.StringVarP(&flagCurrencies, "currencies", "c", "", "path to YAML file with additional currency definitions")
	flags.StringVarP(&flagLevel, "level", "l", "info", "log output level")

	// Flags end at the first operand, so later negative numbers are operands.
	flags.SetInterspersed(false)

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: moneycalc [flags] [--] OPERAND [OPERATOR OPERAND]...\n\n")
		fmt.Fprintf(os.Stderr, "An operand is an amount (USD:19.99) or a number (0.5).\n")
		fmt.Fprintf(os.Stderr, "Operators are +, -, * (or x) and /, evaluated from left to right.\n")
		fmt.Fprintf(os.Stderr, "Use -- before an expression starting with a negative number.\n\n")
		flags.PrintDefaults()
	}

	err := flags.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return success
	}
	if err != nil {
		return failure
	}

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	// The registry starts with the built-in currencies and is extended with
	// the currency definitions file, if any.
	reg := money.NewRegistry(money.WithLogger(log))
	for _, c := range money.DefaultRegistry().All() {
		_, err := reg.Register(c.Code(), c.Name(), c.Exponent())
		if err != nil {
			log.Error().Str("currency", c.Code()).Err(err).Msg("could not register built-in currency")
			return failure
		}
	}
	if flagCurrencies != "" {
		_, err := reg.LoadFile(flagCurrencies)
		if err != nil {
			log.Error().Str("currencies", flagCurrencies).Err(err).Msg("could not load currency definitions")
			return failure
		}
	}

	result, err := evaluate(reg, flags.Args())
	if err != nil {
		log.Error().Strs("expression", flags.Args()).Err(err).Msg("could not evaluate expression")
		return failure
	}

	log.Debug().Str("result", format(result)).Msg("expression evaluated")

	fmt.Fprintln(stdout, format(result))

	return success
}

// evaluate applies the operators of the expression from left to right.
func evaluate(reg *money.Registry, tokens []string) (any, error) {
	if len(tokens) == 0 || len(tokens)%2 == 0 {
		return nil, errors.New("expression must alternate operands and operators")
	}
	acc, err := parseOperand(reg, tokens[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(tokens); i += 2 {
		op, err := money.ParseOp(tokens[i])
		if err != nil {
			return nil, err
		}
		operand, err := parseOperand(reg, tokens[i+1])
		if err != nil {
			return nil, err
		}
		acc, err = money.Apply(op, acc, operand)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// parseOperand converts CODE:VALUE to an amount and VALUE to a number.
func parseOperand(reg *money.Registry, token string) (any, error) {
	code, value, ok := strings.Cut(token, ":")
	if !ok {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse number %q: %w", token, err)
		}
		return f, nil
	}
	curr, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	return money.ParseAmount(value, curr)
}

func format(v any) string {
	switch v := v.(type) {
	case money.Amount:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
