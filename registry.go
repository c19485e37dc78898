package money

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// defaultExponent is used for currencies loaded without an explicit exponent.
const defaultExponent = 2

var defaultRegistry = NewRegistry()

// Registry keeps track of the currencies known to the application.
// Each code maps to exactly one [Currency] instance for the lifetime of the
// registry, so currencies can be compared by identity.
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	log zerolog.Logger

	mu     sync.RWMutex
	byCode map[string]*Currency
	byName map[string]*Currency
}

// RegistryOption configures a [Registry].
type RegistryOption func(*Registry)

// WithLogger sets the logger used to report registrations.
func WithLogger(log zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = log.With().Str("component", "currency_registry").Logger()
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := Registry{
		log:    zerolog.Nop(),
		byCode: make(map[string]*Currency),
		byName: make(map[string]*Currency),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

// Register adds a currency to the registry and returns it.
// The code is converted to upper case.
// If a currency with the same code is already registered, it is returned
// unchanged and the given name and exponent are ignored.
//
// Register returns an error if:
//   - the code is empty;
//   - the exponent is negative or greater than [MaxExponent];
//   - the name is already used by a currency with another code.
func (r *Registry) Register(code, name string, exponent int) (*Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("registering currency: %w: empty code", ErrInvalidCurrency)
	}
	if exponent < 0 || exponent > MaxExponent {
		return nil, fmt.Errorf("registering currency %v: %w: exponent %v out of range [0, %v]", code, ErrInvalidCurrency, exponent, MaxExponent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byCode[code]; ok {
		return c, nil
	}
	if name == "" {
		name = code
	}
	if other, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("registering currency %v: %w: name %q is used by %v", code, ErrInvalidCurrency, name, other)
	}

	c := &Currency{code: code, name: name, exponent: exponent}
	r.byCode[code] = c
	r.byName[name] = c

	r.log.Debug().
		Str("code", code).
		Str("name", name).
		Int("exponent", exponent).
		Msg("currency registered")

	return c, nil
}

// Lookup returns the currency registered under the given code.
// The code is case-insensitive.
func (r *Registry) Lookup(code string) (*Currency, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	r.mu.RLock()
	c, ok := r.byCode[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown currency code %q: %w", code, ErrInvalidCurrency)
	}
	return c, nil
}

// LookupName returns the currency registered under the given full name.
func (r *Registry) LookupName(name string) (*Currency, error) {
	r.mu.RLock()
	c, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown currency name %q: %w", name, ErrInvalidCurrency)
	}
	return c, nil
}

// All returns the registered currencies sorted by code.
func (r *Registry) All() []*Currency {
	r.mu.RLock()
	all := make([]*Currency, 0, len(r.byCode))
	for _, c := range r.byCode {
		all = append(all, c)
	}
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		return all[i].code < all[j].code
	})
	return all
}

type currencyFile struct {
	Currencies []currencyEntry `yaml:"currencies"`
}

type currencyEntry struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Exponent *int   `yaml:"exponent"`
}

// Load registers the currencies defined in a YAML document of the form:
//
//	currencies:
//	  - code: JPY
//	    name: Japanese yen
//	    exponent: 0
//	  - code: GBP
//	    name: British pound
//
// A missing exponent defaults to 2.
// Load returns the currencies in the order of the document.
// Currencies registered before the first invalid entry stay registered.
func (r *Registry) Load(rd io.Reader) ([]*Currency, error) {
	var file currencyFile
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	err := dec.Decode(&file)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding currency definitions: %w", err)
	}

	currs := make([]*Currency, 0, len(file.Currencies))
	for i, entry := range file.Currencies {
		exponent := defaultExponent
		if entry.Exponent != nil {
			exponent = *entry.Exponent
		}
		c, err := r.Register(entry.Code, entry.Name, exponent)
		if err != nil {
			return currs, fmt.Errorf("loading currency definition %d: %w", i, err)
		}
		currs = append(currs, c)
	}

	r.log.Info().Int("currencies", len(currs)).Msg("currency definitions loaded")

	return currs, nil
}

// LoadFile is like [Registry.Load] but reads the definitions from a file.
func (r *Registry) LoadFile(path string) ([]*Currency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening currency definitions: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.Load(f)
}

// DefaultRegistry returns the registry used by [ParseCurr] and
// [RegisterCurr]. It contains [USD], [EUR] and [CAD].
func DefaultRegistry() *Registry {
	return defaultRegistry
}
