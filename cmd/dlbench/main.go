// dlbench times the dlog binary over a fixed set of instances.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"dlrho/internal/dlscan"
)

type scenario struct {
	Name     string
	P, A, B  string
	Order    string
	Expected string   // known x, "" if none
	Args     []string // extra flags, e.g. {"--branching", "hashed"}
}

var scenarios = []scenario{
	{Name: "p=107 ord 53", P: "107", A: "10", B: "64", Order: "53", Expected: "20"},
	{Name: "p=107 full group", P: "107", A: "10", B: "64", Expected: "20"},
	{Name: "p=1019 ord 509", P: "1019", A: "16", B: "604", Order: "509", Expected: "300"},
	{Name: "p=2^61-1 ord 1321", P: "2305843009213693951", A: "234060095121088422", B: "2201032120489409544", Order: "1321", Expected: "777"},
	{Name: "p=2^61-1 ord 1321 hashed", P: "2305843009213693951", A: "234060095121088422", B: "2201032120489409544", Order: "1321", Expected: "777", Args: []string{"--branching", "hashed"}},
	{Name: "p=2^89-1 ord 2113", P: "618970019642690137449562111", A: "70828757824337175999249027", B: "349153447728114880098122215", Order: "2113", Expected: "1234"},
	{Name: "p=107 wrong order", P: "107", A: "10", B: "64", Order: "7"},
}

type runResult struct {
	duration time.Duration
	art      dlscan.Artifact
	exit     int
}

func (sc scenario) args(seed int64) []string {
	args := []string{"solve", "--p", sc.P, "--a", sc.A, "--b", sc.B, "--format", "json", "--out", "-", "--verbosity", "error"}
	if sc.Order != "" {
		args = append(args, "--order", sc.Order)
	}
	if seed != 0 {
		args = append(args, "--seed", strconv.FormatInt(seed, 10))
	}
	return append(args, sc.Args...)
}

func runOnce(ctx context.Context, bin string, args []string, timeout time.Duration) (runResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t0 := time.Now()
	err := cmd.Run()
	res := runResult{duration: time.Since(t0)}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("timeout after %v", timeout)
	}
	var ee *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &ee) && ee.ExitCode() == dlscan.ExitNotFound:
		res.exit = dlscan.ExitNotFound
	default:
		return res, fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String()))
	}
	if err := json.Unmarshal(stdout.Bytes(), &res.art); err != nil {
		return res, fmt.Errorf("parse json: %w (raw=%q)", err, stdout.String())
	}
	return res, nil
}

type stats struct {
	min, avg, max time.Duration
}

func summarize(ds []time.Duration) stats {
	var s stats
	if len(ds) == 0 {
		return s
	}
	var total time.Duration
	for i, d := range ds {
		if i == 0 || d < s.min {
			s.min = d
		}
		if d > s.max {
			s.max = d
		}
		total += d
	}
	s.avg = total / time.Duration(len(ds))
	return s
}

// check compares a run against the scenario's known answer.
func (sc scenario) check(res runResult) string {
	switch {
	case sc.Expected == "" && res.exit == dlscan.ExitNotFound:
		return "ok (" + res.art.Outcome + ")"
	case sc.Expected != "" && res.art.X == sc.Expected:
		return "ok"
	default:
		return fmt.Sprintf("MISMATCH (x=%q outcome=%s)", res.art.X, res.art.Outcome)
	}
}

func bench(ctx *cli.Context, w io.Writer, log *slog.Logger) error {
	bin := ctx.String("dlog")
	if _, err := os.Stat(bin); err != nil {
		return cli.Exit(fmt.Sprintf("dlog not found at %s (build it first)", bin), 2)
	}
	runs, warmup := ctx.Int("runs"), ctx.Int("warmup")
	timeout, seed := ctx.Duration("timeout"), ctx.Int64("seed")
	filter := ctx.String("filter")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"scenario", "runs", "min", "avg", "max", "rounds", "check"})
	table.SetAutoFormatHeaders(false)

	failed := 0
	for _, sc := range scenarios {
		if filter != "" && !strings.Contains(sc.Name, filter) {
			continue
		}
		args := sc.args(seed)
		log.Info("scenario", "name", sc.Name, "cmd", bin+" "+strings.Join(args, " "))
		for i := 0; i < warmup; i++ {
			_, _ = runOnce(ctx.Context, bin, args, timeout)
		}

		var ds []time.Duration
		var last runResult
		var runErr error
		for i := 0; i < runs; i++ {
			res, err := runOnce(ctx.Context, bin, args, timeout)
			if err != nil {
				runErr = err
				break
			}
			log.Debug("run", "name", sc.Name, "n", i+1, "elapsed", res.duration, "x", res.art.X)
			ds = append(ds, res.duration)
			last = res
		}
		if runErr != nil {
			failed++
			log.Error("scenario failed", "name", sc.Name, "err", runErr)
			table.Append([]string{sc.Name, strconv.Itoa(len(ds)), "-", "-", "-", "-", "ERROR: " + runErr.Error()})
			continue
		}
		st := summarize(ds)
		verdict := sc.check(last)
		if !strings.HasPrefix(verdict, "ok") {
			failed++
		}
		table.Append([]string{
			sc.Name, strconv.Itoa(len(ds)),
			st.min.Truncate(time.Microsecond).String(),
			st.avg.Truncate(time.Microsecond).String(),
			st.max.Truncate(time.Microsecond).String(),
			strconv.Itoa(last.art.Rounds),
			verdict,
		})
	}
	table.Render()
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d scenario(s) failed", failed), 1)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "dlbench",
		Usage: "time dlog over known instances",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dlog", Value: "./dlog", Usage: "path to the dlog binary"},
			&cli.IntFlag{Name: "runs", Value: 3, Usage: "timed runs per scenario"},
			&cli.IntFlag{Name: "warmup", Value: 1, Usage: "untimed warmup runs"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "per-run timeout (0 for none)"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "seed passed to dlog, 0 for time based"},
			&cli.StringFlag{Name: "filter", Usage: "only scenarios whose name contains this"},
			&cli.BoolFlag{Name: "quiet", Usage: "only print the summary"},
		},
		Action: func(ctx *cli.Context) error {
			lvl := slog.LevelInfo
			if ctx.Bool("quiet") {
				lvl = slog.LevelWarn
			}
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
			return bench(ctx, os.Stdout, log)
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
