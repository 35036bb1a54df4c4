package telemetry

import (
	"log/slog"

	"github.com/san-kum/regolith/internal/dynamo"
)

// Recorder keeps every stride-th tick as a Sample and optionally streams it
// to an Output. It implements sim.Observer.
type Recorder struct {
	stride  int
	samples []Sample
	out     *Output
	logger  *slog.Logger
}

// NewRecorder samples every stride ticks; stride below 1 records every tick.
func NewRecorder(stride int) *Recorder {
	if stride < 1 {
		stride = 1
	}
	return &Recorder{stride: stride, logger: slog.Default()}
}

// Stream sends samples to out as they are recorded. A write failure is
// logged once and streaming stops.
func (r *Recorder) Stream(out *Output) { r.out = out }

func (r *Recorder) OnStep(w *dynamo.World, in dynamo.ToolInput, stats dynamo.StepStats) {
	if w.Steps%r.stride != 0 {
		return
	}
	s := NewSample(w, stats)
	r.samples = append(r.samples, s)

	if r.out != nil {
		if err := r.out.Write(s); err != nil {
			r.logger.Warn("telemetry stream stopped", "err", err)
			r.out = nil
		}
	}
}

func (r *Recorder) Samples() []Sample { return r.samples }

func (r *Recorder) Reset() { r.samples = r.samples[:0] }
