// Command llcsim replays a memory access trace through the compressed
// LLC / Hawkeye replacement model and reports end-of-run statistics.
//
// Flag handling follows calvinalkan-agent-task/internal/cli/command.go's
// pflag.FlagSet dispatch, flattened to a single command since llcsim has
// no subcommands.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/llcsim/hawkeye/internal/debugshell"
	"github.com/llcsim/hawkeye/internal/report"
	"github.com/llcsim/hawkeye/internal/simconfig"
	"github.com/llcsim/hawkeye/internal/trace"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("llcsim", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	configPath := flags.StringP("config", "c", "", "path to a JSONC config file (defaults apply if omitted)")
	tracePath := flags.StringP("trace", "t", "", "path to the access trace to replay (required)")
	reportPath := flags.StringP("report", "r", "report.txt", "path to write the end-of-run statistics report")
	interactive := flags.BoolP("interactive", "i", false, "pause for manual single-stepping instead of running to completion")
	historyPath := flags.String("history", "", "debug shell command history file")

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	if *tracePath == "" {
		fmt.Fprintln(os.Stderr, "error: -trace is required")
		flags.PrintDefaults()
		return 1
	}

	cfg, err := simconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	f, err := os.Open(*tracePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer f.Close()

	sim := newSimulator(cfg)
	reader := trace.NewReader(f)

	if *interactive {
		sh := debugshell.New(debugshell.Hooks{
			Step:  func() { sim.step(reader) },
			Stats: func() string { return sim.counters().String() },
			Cycle: func() uint64 { return sim.cycle },
		}, *historyPath)
		if err := sh.Run(); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
	} else {
		for sim.step(reader) {
		}
	}

	fmt.Print(sim.cache.CompressionSummary())

	if err := report.Write(*reportPath, sim.counters()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	return 0
}
