// dlog solves a^x ≡ b (mod p) with Pollard's rho.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var app = &cli.App{
	Name:  "dlog",
	Usage: "discrete logarithms modulo a prime with Pollard's rho",
	Commands: []*cli.Command{
		commandSolve,
		commandExample,
		commandVerify,
		commandDumpConfig,
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
