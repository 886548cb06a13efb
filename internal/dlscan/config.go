package dlscan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/naoina/toml"

	"dlrho/internal/rho"
)

// Config is the effective configuration of one solve. Integers are kept as
// strings (decimal or 0x-hex) so the TOML file and the flags share a parser.
type Config struct {
	P     string
	A     string
	B     string
	Order string `toml:",omitempty"` // "" => p-1

	MaxIterations int
	TraceRounds   int
	Attempts      int
	Workers       int
	Branching     string // half|hashed
	Buckets       int
	Seed          int64  // 0 => time based
	Timeout       string // e.g. "30s", "" => none

	Format    string // text|json|yaml
	Out       string // "-" for stdout
	Color     string // auto|always|never
	Verbosity string // debug|info|warn|error
}

func DefaultConfig() Config {
	return Config{
		MaxIterations: rho.DefaultMaxIterations,
		TraceRounds:   rho.DefaultTraceRounds,
		Attempts:      rho.DefaultAttempts,
		Workers:       1,
		Branching:     rho.HalfSplit.String(),
		Buckets:       rho.DefaultBuckets,
		Format:        string(FormatText),
		Out:           "-",
		Color:         "auto",
		Verbosity:     "info",
	}
}

// TOML keys are the Go field names.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// LoadConfigFile overlays the TOML file at path onto cfg. Keys absent from
// the file keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	var lerr *toml.LineError
	if errors.As(err, &lerr) {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

// DumpConfig writes cfg as TOML.
func DumpConfig(w io.Writer, cfg *Config) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Params parses and validates P, A, B and Order.
func (c *Config) Params() (*rho.Params, error) {
	p, err := parseBig(c.P, "p")
	if err != nil {
		return nil, err
	}
	a, err := parseBig(c.A, "a")
	if err != nil {
		return nil, err
	}
	b, err := parseBig(c.B, "b")
	if err != nil {
		return nil, err
	}
	var order *big.Int
	if strings.TrimSpace(c.Order) != "" {
		if order, err = parseBig(c.Order, "order"); err != nil {
			return nil, err
		}
	}
	return rho.NewParams(p, a, b, order)
}

// Options maps the search settings onto rho.Options. Rand and Logger are
// left for the caller.
func (c *Config) Options() (rho.Options, error) {
	br, err := rho.ParseBranching(c.Branching)
	if err != nil {
		return rho.Options{}, fmt.Errorf("%w: %v", rho.ErrInvalidInput, err)
	}
	if c.MaxIterations <= 0 {
		return rho.Options{}, fmt.Errorf("%w: max iterations=%d must be positive", rho.ErrInvalidInput, c.MaxIterations)
	}
	return rho.Options{
		MaxIterations: c.MaxIterations,
		TraceRounds:   c.TraceRounds,
		Attempts:      c.Attempts,
		Workers:       c.Workers,
		Branching:     br,
		Buckets:       c.Buckets,
	}, nil
}

// TimeoutDuration parses Timeout; zero means no deadline.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: bad timeout: %v", rho.ErrInvalidInput, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative timeout %s", rho.ErrInvalidInput, d)
	}
	return d, nil
}

// Validate checks every field without running anything.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := parseColorMode(c.Color); err != nil {
		return err
	}
	if _, err := parseLevel(c.Verbosity); err != nil {
		return err
	}
	return nil
}

// parseBig accepts decimal or 0x-prefixed hex.
func parseBig(s, name string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: missing required %s", rho.ErrInvalidInput, name)
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	z, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("%w: invalid integer for %s: %q", rho.ErrInvalidInput, name, s)
	}
	return z, nil
}
