// Package report writes the simulator's end-of-run statistics to disk,
// using an atomic rename so a reader never observes a half-written
// report file.
//
// Grounded on calvinalkan-agent-task/internal/fs.Real.WriteFileAtomic,
// adapted from its os.FileMode passthrough style to a fixed text report.
package report

import (
	"bytes"
	"fmt"

	"github.com/llcsim/hawkeye/internal/stats"
	"github.com/natefinch/atomic"
)

// Write renders counters as a human-readable report and writes it to
// path atomically (write-to-temp then rename).
func Write(path string, counters stats.Counters) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, counters.String())
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
