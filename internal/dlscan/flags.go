package dlscan

import (
	"github.com/urfave/cli/v2"
)

const (
	ProblemCategory = "PROBLEM"
	SearchCategory  = "SEARCH"
	OutputCategory  = "OUTPUT"
)

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	PFlag = &cli.StringFlag{
		Name:     "p",
		Usage:    "prime modulus p (decimal or 0x-hex)",
		Category: ProblemCategory,
	}
	AFlag = &cli.StringFlag{
		Name:     "a",
		Usage:    "base a, 1 <= a < p",
		Category: ProblemCategory,
	}
	BFlag = &cli.StringFlag{
		Name:     "b",
		Usage:    "target b, 1 <= b < p",
		Category: ProblemCategory,
	}
	OrderFlag = &cli.StringFlag{
		Name:     "order",
		Usage:    "order of the subgroup generated by a (default p-1)",
		Category: ProblemCategory,
	}

	MaxIterationsFlag = &cli.IntFlag{
		Name:     "max-iterations",
		Usage:    "round budget per attempt",
		Value:    DefaultConfig().MaxIterations,
		Category: SearchCategory,
	}
	TraceRoundsFlag = &cli.IntFlag{
		Name:     "trace",
		Usage:    "number of leading rounds kept for diagnostics",
		Value:    DefaultConfig().TraceRounds,
		Category: SearchCategory,
	}
	AttemptsFlag = &cli.IntFlag{
		Name:     "attempts",
		Usage:    "randomized attempts before giving up",
		Value:    DefaultConfig().Attempts,
		Category: SearchCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "attempts run concurrently",
		Value:    DefaultConfig().Workers,
		Category: SearchCategory,
	}
	BranchingFlag = &cli.StringFlag{
		Name:     "branching",
		Usage:    "walk partition: half|hashed",
		Value:    DefaultConfig().Branching,
		Category: SearchCategory,
	}
	BucketsFlag = &cli.IntFlag{
		Name:     "buckets",
		Usage:    "partitions of the hashed walk",
		Value:    DefaultConfig().Buckets,
		Category: SearchCategory,
	}
	SeedFlag = &cli.Int64Flag{
		Name:     "seed",
		Usage:    "random seed, 0 for time based",
		Category: SearchCategory,
	}
	TimeoutFlag = &cli.StringFlag{
		Name:     "timeout",
		Usage:    "overall deadline, e.g. 30s (empty for none)",
		Category: SearchCategory,
	}

	FormatFlag = &cli.StringFlag{
		Name:     "format",
		Usage:    "result format: text|json|yaml",
		Value:    DefaultConfig().Format,
		Category: OutputCategory,
	}
	OutFlag = &cli.StringFlag{
		Name:     "out",
		Usage:    "result file, or - for stdout",
		Value:    DefaultConfig().Out,
		Category: OutputCategory,
	}
	ColorFlag = &cli.StringFlag{
		Name:     "color",
		Usage:    "colour the verdict: auto|always|never",
		Value:    DefaultConfig().Color,
		Category: OutputCategory,
	}
	VerbosityFlag = &cli.StringFlag{
		Name:     "verbosity",
		Usage:    "log level: debug|info|warn|error",
		Value:    DefaultConfig().Verbosity,
		Category: OutputCategory,
	}
)

// ProblemFlags are the flags describing the instance.
var ProblemFlags = []cli.Flag{
	ConfigFileFlag,
	PFlag,
	AFlag,
	BFlag,
	OrderFlag,
}

// SearchFlags tune the search and the output, independent of the instance.
var SearchFlags = []cli.Flag{
	MaxIterationsFlag,
	TraceRoundsFlag,
	AttemptsFlag,
	WorkersFlag,
	BranchingFlag,
	BucketsFlag,
	SeedFlag,
	TimeoutFlag,
	FormatFlag,
	OutFlag,
	ColorFlag,
	VerbosityFlag,
}

// SolveFlags is everything the solve command accepts.
var SolveFlags = append(append([]cli.Flag{}, ProblemFlags...), SearchFlags...)

// MakeConfig builds the effective Config: defaults, then the --config file,
// then every flag set explicitly on the command line.
func MakeConfig(ctx *cli.Context) (*Config, error) {
	cfg := DefaultConfig()
	if file := ctx.String(ConfigFileFlag.Name); file != "" {
		if err := LoadConfigFile(file, &cfg); err != nil {
			return nil, err
		}
	}
	setString(ctx, PFlag, &cfg.P)
	setString(ctx, AFlag, &cfg.A)
	setString(ctx, BFlag, &cfg.B)
	setString(ctx, OrderFlag, &cfg.Order)
	setInt(ctx, MaxIterationsFlag, &cfg.MaxIterations)
	setInt(ctx, TraceRoundsFlag, &cfg.TraceRounds)
	setInt(ctx, AttemptsFlag, &cfg.Attempts)
	setInt(ctx, WorkersFlag, &cfg.Workers)
	setString(ctx, BranchingFlag, &cfg.Branching)
	setInt(ctx, BucketsFlag, &cfg.Buckets)
	if ctx.IsSet(SeedFlag.Name) {
		cfg.Seed = ctx.Int64(SeedFlag.Name)
	}
	setString(ctx, TimeoutFlag, &cfg.Timeout)
	setString(ctx, FormatFlag, &cfg.Format)
	setString(ctx, OutFlag, &cfg.Out)
	setString(ctx, ColorFlag, &cfg.Color)
	setString(ctx, VerbosityFlag, &cfg.Verbosity)
	return &cfg, nil
}

func setString(ctx *cli.Context, f *cli.StringFlag, dst *string) {
	if ctx.IsSet(f.Name) {
		*dst = ctx.String(f.Name)
	}
}

func setInt(ctx *cli.Context, f *cli.IntFlag, dst *int) {
	if ctx.IsSet(f.Name) {
		*dst = ctx.Int(f.Name)
	}
}
