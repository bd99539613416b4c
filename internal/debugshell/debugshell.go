// Package debugshell implements the interactive trace stepper
// (-interactive) described in spec.md §5: a human can single-step the
// simulation loop, inspect stats, and resume free-running.
//
// Grounded on calvinalkan-agent-task/cmd/sloty/main.go's liner REPL
// (prompt, ReadHistory/WriteHistory, Ctrl-C aborts, a small verb
// dispatch table).
package debugshell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

func openForRead(path string) (*os.File, error)  { return os.Open(path) }
func openForWrite(path string) (*os.File, error) { return os.Create(path) }

// Hooks are the callbacks the shell drives the simulation through.
type Hooks struct {
	// Step advances the simulation by one cycle.
	Step func()
	// Stats renders the current cumulative statistics.
	Stats func() string
	// Cycle reports the current simulated cycle count.
	Cycle func() uint64
}

// Shell is a liner-backed REPL pausing a running simulation for manual
// single-stepping.
type Shell struct {
	hooks     Hooks
	historyPath string
}

// New allocates a shell. historyPath, if non-empty, is where command
// history is loaded from and saved to between sessions.
func New(hooks Hooks, historyPath string) *Shell {
	return &Shell{hooks: hooks, historyPath: historyPath}
}

// Run drives the REPL until the user quits or EOF is reached on stdin.
func (s *Shell) Run() error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if s.historyPath != "" {
		if f, err := openForRead(s.historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	for {
		input, err := line.Prompt("llcsim> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return fmt.Errorf("debugshell: read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := s.dispatch(input); quit {
			break
		}
	}

	if s.historyPath != "" {
		if f, err := openForWrite(s.historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

// dispatch runs one command, returning true when the shell should exit.
func (s *Shell) dispatch(input string) bool {
	fields := strings.Fields(input)
	verb := fields[0]

	switch verb {
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			if parsed, err := strconv.Atoi(fields[1]); err == nil && parsed > 0 {
				n = parsed
			}
		}
		for i := 0; i < n; i++ {
			s.hooks.Step()
		}
		fmt.Printf("cycle=%d\n", s.hooks.Cycle())
	case "stats":
		fmt.Println(s.hooks.Stats())
	case "cycle", "c":
		fmt.Printf("cycle=%d\n", s.hooks.Cycle())
	case "help", "h":
		printHelp()
	case "quit", "q", "exit":
		return true
	default:
		fmt.Printf("unknown command %q; try 'help'\n", verb)
	}
	return false
}

func printHelp() {
	fmt.Println("step [n]   advance n cycles (default 1)")
	fmt.Println("stats      print cumulative statistics")
	fmt.Println("cycle      print the current cycle count")
	fmt.Println("quit       exit the shell")
}
