package dlscan

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"dlrho/internal/modarith"
	"dlrho/internal/rho"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatText, fmt.Errorf("%w: unknown format %q", rho.ErrInvalidInput, s)
	}
}

// Artifact is the machine-readable result of a solve. Big integers are
// decimal strings.
type Artifact struct {
	ID       string `json:"id" yaml:"id"`
	Equation string `json:"equation" yaml:"equation"`

	P               string `json:"p" yaml:"p"`
	A               string `json:"a" yaml:"a"`
	B               string `json:"b" yaml:"b"`
	Order           string `json:"order" yaml:"order"`
	OrderSupplied   bool   `json:"orderSupplied" yaml:"orderSupplied"`
	OrderConsistent bool   `json:"orderConsistent" yaml:"orderConsistent"`

	Branching     string `json:"branching" yaml:"branching"`
	MaxIterations int    `json:"maxIterations" yaml:"maxIterations"`

	Outcome string `json:"outcome" yaml:"outcome"`
	X       string `json:"x,omitempty" yaml:"x,omitempty"`
	Check   string `json:"check,omitempty" yaml:"check,omitempty"` // a^x mod p
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`

	Rounds    int              `json:"rounds" yaml:"rounds"`
	ElapsedMS int64            `json:"elapsedMs" yaml:"elapsedMs"`
	Attempts  []AttemptSummary `json:"attempts" yaml:"attempts"`
}

type AttemptSummary struct {
	Index      int    `json:"index" yaml:"index"`
	Seed       int64  `json:"seed" yaml:"seed"`
	Fast       bool   `json:"fast" yaml:"fast"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	Round      int    `json:"round,omitempty" yaml:"round,omitempty"`
	Congruence string `json:"congruence,omitempty" yaml:"congruence,omitempty"`
	Candidates int    `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func NewArtifact(rep *rho.Report) Artifact {
	p := rep.Params
	art := Artifact{
		ID:              rep.ID,
		Equation:        p.Equation(),
		P:               p.P.String(),
		A:               p.A.String(),
		B:               p.B.String(),
		Order:           p.Order.String(),
		OrderSupplied:   p.OrderSupplied,
		OrderConsistent: p.OrderConsistent(),
		Branching:       rep.Branching.String(),
		MaxIterations:   rep.MaxIterations,
		Outcome:         rep.Outcome.String(),
		Rounds:          rep.Rounds(),
		ElapsedMS:       rep.Elapsed.Milliseconds(),
		Attempts:        []AttemptSummary{},
	}
	if rep.X != nil {
		art.X = rep.X.String()
		art.Check = modarith.ModPow(p.A, rep.X, p.P).String()
	}
	if rep.Err != nil {
		art.Error = rep.Err.Error()
	}
	for _, a := range rep.Attempts {
		if a == nil {
			continue
		}
		s := AttemptSummary{Index: a.Index, Seed: a.Seed, Fast: a.Fast, Outcome: a.Outcome().String()}
		if a.Collision != nil {
			s.Round = a.Collision.Round
		}
		if a.Resolution != nil {
			s.Congruence = a.Resolution.Congruence.String()
			s.Candidates = len(a.Resolution.Candidates)
		}
		if a.Err != nil {
			s.Error = a.Err.Error()
		}
		art.Attempts = append(art.Attempts, s)
	}
	return art
}

// WriteReport renders rep to w in the given format. colored only affects
// the text verdict line.
func WriteReport(w io.Writer, rep *rho.Report, f Format, colored bool) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewArtifact(rep))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewArtifact(rep)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, rep, colored)
	}
}

func writeText(w io.Writer, rep *rho.Report, colored bool) error {
	p := rep.Params
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "id:        %s\n", rep.ID)
	fmt.Fprintf(bw, "equation:  %s\n", p.Equation())
	fmt.Fprintf(bw, "order:     %s", p.Order)
	if !p.OrderSupplied {
		fmt.Fprint(bw, " (p-1)")
	}
	if !p.OrderConsistent() {
		fmt.Fprint(bw, " (not the order of a)")
	}
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "branching: %s, budget %d rounds, %d attempt(s), %d rounds walked\n",
		rep.Branching, rep.MaxIterations, len(rep.Attempts), rep.Rounds())

	if a := shownAttempt(rep); a != nil {
		fmt.Fprintf(bw, "\nattempt %d (seed %d, start %s)\n", a.Index, a.Seed, a.Start)
		if len(a.Trace) > 0 {
			writeTrace(bw, a.Trace)
		}
		if c := a.Collision; c != nil {
			fmt.Fprintf(bw, "collision after %d rounds: slow %s, fast %s\n", c.Round, c.Slow, c.Fast)
		}
		if r := a.Resolution; r != nil {
			fmt.Fprintf(bw, "congruence: %s\n", r.Congruence)
			if r.Reduced != nil {
				fmt.Fprintf(bw, "reduced:    %s (gcd %s)\n", r.Reduced, r.GCD)
			}
			if len(r.Candidates) > 0 {
				fmt.Fprintf(bw, "candidates: %s\n", joinBig(r.Candidates))
			}
		}
	}

	fmt.Fprintln(bw)
	verdict := color.New(color.FgGreen, color.Bold)
	if !rep.Outcome.Found() {
		verdict = color.New(color.FgRed, color.Bold)
	}
	if colored {
		verdict.EnableColor()
	} else {
		verdict.DisableColor()
	}
	if rep.X != nil {
		verdict.Fprintf(bw, "x = %s", rep.X)
		fmt.Fprintf(bw, "  (check: %s^%s mod %s = %s)\n", p.A, rep.X, p.P, modarith.ModPow(p.A, rep.X, p.P))
	} else {
		verdict.Fprintf(bw, "%s", rep.Outcome)
		fmt.Fprintf(bw, ": %v\n", rep.Err)
	}
	return bw.Flush()
}

// shownAttempt is the winning attempt, or the last one that ran.
func shownAttempt(rep *rho.Report) *rho.Attempt {
	if a := rep.Winner(); a != nil {
		return a
	}
	for i := len(rep.Attempts) - 1; i >= 0; i-- {
		if rep.Attempts[i] != nil {
			return rep.Attempts[i]
		}
	}
	return nil
}

func writeTrace(w io.Writer, trace []rho.Round) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"round", "slow", "αs", "βs", "fast", "αf", "βf"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range trace {
		table.Append([]string{
			strconv.Itoa(r.N),
			r.Slow.Value.String(), r.Slow.Alpha.String(), r.Slow.Beta.String(),
			r.Fast.Value.String(), r.Fast.Alpha.String(), r.Fast.Beta.String(),
		})
	}
	table.Render()
}

func joinBig(xs []*big.Int) string {
	const show = 8
	parts := make([]string, 0, show+1)
	for i, x := range xs {
		if i == show {
			parts = append(parts, fmt.Sprintf("... (%d more)", len(xs)-show))
			break
		}
		parts = append(parts, x.String())
	}
	return strings.Join(parts, ", ")
}

type colorMode int

const (
	colorAuto colorMode = iota
	colorAlways
	colorNever
)

func parseColorMode(s string) (colorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return colorAuto, nil
	case "always", "on", "true":
		return colorAlways, nil
	case "never", "off", "false":
		return colorNever, nil
	default:
		return colorAuto, fmt.Errorf("%w: unknown color mode %q", rho.ErrInvalidInput, s)
	}
}

// useColor resolves auto against w: only a terminal gets escapes.
func useColor(m colorMode, w io.Writer) bool {
	switch m {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// openOutput returns stdout for "-" or a created file. The close func
// flushes and closes the file.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	bw := bufio.NewWriterSize(f, 64<<10)
	closeFn := func() error {
		if err := bw.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return bw, closeFn, nil
}
