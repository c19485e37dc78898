package money

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestRegistry_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := NewRegistry()
		tests := []struct {
			code, name   string
			exponent     int
			wantCode     string
			wantName     string
			wantExponent int
		}{
			{"JPY", "Japanese yen", 0, "JPY", "Japanese yen", 0},
			{"omr", "Omani rial", 3, "OMR", "Omani rial", 3},
			{" gbp ", "", 2, "GBP", "GBP", 2},
			{"XXX", "Max", MaxExponent, "XXX", "Max", MaxExponent},
		}
		for _, tt := range tests {
			got, err := r.Register(tt.code, tt.name, tt.exponent)
			if err != nil {
				t.Errorf("Register(%q, %q, %v) failed: %v", tt.code, tt.name, tt.exponent, err)
				continue
			}
			if got.Code() != tt.wantCode || got.Name() != tt.wantName || got.Exponent() != tt.wantExponent {
				t.Errorf("Register(%q, %q, %v) = (%q, %q, %v), want (%q, %q, %v)",
					tt.code, tt.name, tt.exponent,
					got.Code(), got.Name(), got.Exponent(),
					tt.wantCode, tt.wantName, tt.wantExponent)
			}
		}
	})

	t.Run("existing", func(t *testing.T) {
		r := NewRegistry()
		first, err := r.Register("JPY", "Japanese yen", 0)
		if err != nil {
			t.Fatalf("Register(\"JPY\") failed: %v", err)
		}
		second, err := r.Register("jpy", "Yen", 2)
		if err != nil {
			t.Fatalf("Register(\"jpy\") failed: %v", err)
		}
		if first != second {
			t.Errorf("Register(\"jpy\") = %p, want %p", second, first)
		}
		if second.Exponent() != 0 {
			t.Errorf("Register(\"jpy\").Exponent() = %v, want 0", second.Exponent())
		}
	})

	t.Run("error", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.Register("USD", "U.S. dollar", 2); err != nil {
			t.Fatalf("Register(\"USD\") failed: %v", err)
		}
		tests := map[string]struct {
			code, name string
			exponent   int
		}{
			"code 1":     {"", "Nothing", 2},
			"code 2":     {"   ", "Blank", 2},
			"exponent 1": {"ABC", "Negative", -1},
			"exponent 2": {"ABC", "Too large", MaxExponent + 1},
			"name 1":     {"USN", "U.S. dollar", 2},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := r.Register(tt.code, tt.name, tt.exponent)
				if !errors.Is(err, ErrInvalidCurrency) {
					t.Errorf("Register(%q, %q, %v) = %v, want %v", tt.code, tt.name, tt.exponent, err, ErrInvalidCurrency)
				}
			})
		}
	})
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	jpy, err := r.Register("JPY", "Japanese yen", 0)
	if err != nil {
		t.Fatalf("Register(\"JPY\") failed: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		for _, code := range []string{"JPY", "jpy", " Jpy"} {
			got, err := r.Lookup(code)
			if err != nil {
				t.Errorf("Lookup(%q) failed: %v", code, err)
				continue
			}
			if got != jpy {
				t.Errorf("Lookup(%q) = %v, want %v", code, got, jpy)
			}
		}
		got, err := r.LookupName("Japanese yen")
		if err != nil {
			t.Fatalf("LookupName(\"Japanese yen\") failed: %v", err)
		}
		if got != jpy {
			t.Errorf("LookupName(\"Japanese yen\") = %v, want %v", got, jpy)
		}
	})

	t.Run("error", func(t *testing.T) {
		// Currencies of other registries are not visible.
		if _, err := r.Lookup("USD"); !errors.Is(err, ErrInvalidCurrency) {
			t.Errorf("Lookup(\"USD\") = %v, want %v", err, ErrInvalidCurrency)
		}
		if _, err := r.LookupName("japanese yen"); !errors.Is(err, ErrInvalidCurrency) {
			t.Errorf("LookupName(\"japanese yen\") = %v, want %v", err, ErrInvalidCurrency)
		}
	})
}

func TestRegistry_All(t *testing.T) {
	r := NewRegistry()
	for _, code := range []string{"USD", "CAD", "EUR"} {
		if _, err := r.Register(code, "", 2); err != nil {
			t.Fatalf("Register(%q) failed: %v", code, err)
		}
	}
	got := r.All()
	want := []string{"CAD", "EUR", "USD"}
	if len(got) != len(want) {
		t.Fatalf("All() returned %v currencies, want %v", len(got), len(want))
	}
	for i := range got {
		if got[i].Code() != want[i] {
			t.Errorf("All()[%v] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRegistry_Load(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		doc := `
currencies:
  - code: JPY
    name: Japanese yen
    exponent: 0
  - code: gbp
    name: British pound
  - code: OMR
    name: Omani rial
    exponent: 3
`
		r := NewRegistry()
		got, err := r.Load(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		want := []struct {
			code     string
			exponent int
		}{
			{"JPY", 0},
			{"GBP", 2},
			{"OMR", 3},
		}
		if len(got) != len(want) {
			t.Fatalf("Load() returned %v currencies, want %v", len(got), len(want))
		}
		for i, w := range want {
			if got[i].Code() != w.code || got[i].Exponent() != w.exponent {
				t.Errorf("Load()[%v] = (%v, %v), want (%v, %v)", i, got[i].Code(), got[i].Exponent(), w.code, w.exponent)
			}
			c, err := r.Lookup(w.code)
			if err != nil {
				t.Errorf("Lookup(%q) failed: %v", w.code, err)
				continue
			}
			if c != got[i] {
				t.Errorf("Lookup(%q) = %p, want %p", w.code, c, got[i])
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		r := NewRegistry()
		got, err := r.Load(strings.NewReader(""))
		if err != nil {
			t.Fatalf("Load(\"\") failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Load(\"\") returned %v currencies, want 0", len(got))
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			doc       string
			wantCount int
		}{
			"yaml 1":     {"currencies: [", 0},
			"yaml 2":     {"currencies:\n  - code: JPY\n    digits: 0\n", 0},
			"yaml 3":     {"currencies:\n  - code: JPY\n    exponent: zero\n", 0},
			"currency 1": {"currencies:\n  - code: JPY\n    exponent: 0\n  - name: No code\n", 1},
			"currency 2": {"currencies:\n  - code: JPY\n    exponent: 19\n", 0},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				r := NewRegistry()
				got, err := r.Load(strings.NewReader(tt.doc))
				if err == nil {
					t.Fatalf("Load(%q) did not fail", tt.doc)
				}
				if len(got) != tt.wantCount {
					t.Errorf("Load(%q) returned %v currencies, want %v", tt.doc, len(got), tt.wantCount)
				}
				if len(r.All()) != tt.wantCount {
					t.Errorf("Load(%q) registered %v currencies, want %v", tt.doc, len(r.All()), tt.wantCount)
				}
			})
		}
	})
}

func TestRegistry_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "currencies.yaml")
	doc := "currencies:\n  - code: BHD\n    name: Bahraini dinar\n    exponent: 3\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	r := NewRegistry()
	got, err := r.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(%q) failed: %v", path, err)
	}
	if len(got) != 1 || got[0].Code() != "BHD" || got[0].Exponent() != 3 {
		t.Errorf("LoadFile(%q) = %v, want [BHD]", path, got)
	}

	_, err = r.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() = %v, want %v", err, os.ErrNotExist)
	}
}

func TestRegistry_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	r := NewRegistry(WithLogger(log))

	if _, err := r.Register("JPY", "Japanese yen", 0); err != nil {
		t.Fatalf("Register(\"JPY\") failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"component":"currency_registry"`, `"code":"JPY"`, `"exponent":0`, `"message":"currency registered"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}

	// Known codes are not registered again.
	buf.Reset()
	if _, err := r.Register("JPY", "Japanese yen", 0); err != nil {
		t.Fatalf("Register(\"JPY\") failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("log output = %q, want empty", buf.String())
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	codes := []string{"AAA", "BBB", "CCC", "DDD"}
	got := make([]*Currency, 64)

	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := r.Register(codes[i%len(codes)], "", 2)
			if err != nil {
				t.Errorf("Register(%q) failed: %v", codes[i%len(codes)], err)
				return
			}
			got[i] = c
		}(i)
	}
	wg.Wait()

	for i, c := range got {
		want, err := r.Lookup(codes[i%len(codes)])
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", codes[i%len(codes)], err)
		}
		if c != want {
			t.Errorf("Register(%q) = %p, want %p", codes[i%len(codes)], c, want)
		}
	}
	if n := len(r.All()); n != len(codes) {
		t.Errorf("len(All()) = %v, want %v", n, len(codes))
	}
}
