package main

import (
	"errors"
	"os"

	"github.com/urfave/cli/v2"

	"dlrho/internal/dlscan"
)

var xFlag = &cli.StringFlag{
	Name:     "x",
	Usage:    "claimed exponent",
	Required: true,
}

var commandSolve = &cli.Command{
	Name:  "solve",
	Usage: "find x with a^x ≡ b (mod p)",
	Description: `
Runs randomized Pollard rho walks until one yields a verified exponent.

Exit status is 0 when x was found, 2 when no verified x was found within
the budget and 1 on invalid input.`,
	Flags: dlscan.SolveFlags,
	Action: func(ctx *cli.Context) error {
		cfg, err := dlscan.MakeConfig(ctx)
		if err != nil {
			return cli.Exit(err, dlscan.ExitFailure)
		}
		_, err = dlscan.Run(ctx.Context, cfg, os.Stdout, os.Stderr)
		return exit(err)
	},
}

var commandExample = &cli.Command{
	Name:  "example",
	Usage: "solve the worked example 10^x ≡ 64 (mod 107), order 53",
	Description: `
Solves the instance from the manual and checks that the answer is x = 20.
Search and output flags work as for solve.`,
	Flags: append([]cli.Flag{dlscan.ConfigFileFlag}, dlscan.SearchFlags...),
	Action: func(ctx *cli.Context) error {
		cfg, err := dlscan.MakeConfig(ctx)
		if err != nil {
			return cli.Exit(err, dlscan.ExitFailure)
		}
		_, err = dlscan.RunExample(ctx.Context, cfg, os.Stdout, os.Stderr)
		return exit(err)
	},
}

var commandVerify = &cli.Command{
	Name:  "verify",
	Usage: "check a claimed exponent",
	Flags: append(append([]cli.Flag{}, dlscan.ProblemFlags...), xFlag),
	Action: func(ctx *cli.Context) error {
		cfg, err := dlscan.MakeConfig(ctx)
		if err != nil {
			return cli.Exit(err, dlscan.ExitFailure)
		}
		return exit(dlscan.Verify(cfg, ctx.String(xFlag.Name), os.Stdout))
	},
}

var commandDumpConfig = &cli.Command{
	Name:  "dumpconfig",
	Usage: "print the effective configuration as TOML",
	Description: `
Prints the configuration solve would use after merging defaults, the
--config file and flags. An invalid configuration is reported instead.`,
	Flags: dlscan.SolveFlags,
	Action: func(ctx *cli.Context) error {
		cfg, err := dlscan.MakeConfig(ctx)
		if err != nil {
			return cli.Exit(err, dlscan.ExitFailure)
		}
		if err := cfg.Validate(); err != nil {
			return cli.Exit(err, dlscan.ExitFailure)
		}
		if err := dlscan.DumpConfig(os.Stdout, cfg); err != nil {
			return cli.Exit(err, dlscan.ExitFailure)
		}
		return nil
	},
}

// exit turns a command error into a cli.ExitCoder carrying the status.
func exit(err error) error {
	if err == nil {
		return nil
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	return cli.Exit(err, dlscan.ExitCode(err))
}
