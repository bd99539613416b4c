package main

import "github.com/llcsim/hawkeye/internal/llc"

// sink is the upstream (CPU-side) endpoint a completed fill is returned
// to. It does no further work of its own beyond counting completions;
// the driving loop judges when the trace has drained from queue
// occupancy, not from this count.
type sink struct {
	completed uint64
}

func newSink() *sink { return &sink{} }

func (s *sink) ReturnData(llc.Packet) { s.completed++ }
