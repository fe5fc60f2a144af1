package main

import (
	"fmt"
	"io"
	"time"
)

type stats struct {
	Name  string
	Ops   int
	Start time.Time
	End   *time.Time
}

func newStats(name string) *stats {
	return &stats{Name: name, Start: time.Now()}
}

func (s *stats) finishOp() {
	s.Ops++
}

// done marks the phase finished.
func (s *stats) done() {
	if s.End != nil {
		panic("stats object marked done multiple times")
	}
	t := time.Now()
	s.End = &t
}

func (s stats) elapsed() time.Duration {
	return s.End.Sub(s.Start)
}

func (s stats) MicrosPerOp() float64 {
	return float64(s.elapsed().Microseconds()) / float64(s.Ops)
}

func (s stats) Report(w io.Writer) {
	switch {
	case s.End == nil:
		fmt.Fprintf(w, "%-24s not finished\n", s.Name)
	case s.Ops == 0:
		fmt.Fprintf(w, "%-24s no ops\n", s.Name)
	default:
		fmt.Fprintf(w, "%-24s %8d ops %9.3f micros/op\n", s.Name, s.Ops, s.MicrosPerOp())
	}
}
