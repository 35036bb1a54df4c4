// Package audio turns the tool load into a tone so an operator can hear the
// blade bite while watching the bed.
package audio

import (
	"log/slog"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	baseFreq  = 110.0
	delaySecs = 0.35
	volume    = 0.25
	// floor of the automatic gain so an idle tool stays silent
	minPeak = 1e-6
)

type Processor struct {
	stream *portaudio.Stream
	logger *slog.Logger

	mu       sync.Mutex
	force    float64
	contacts int

	peak   float64
	level  float64
	bright float64
	time   float64
	filter [2]float64
	delay  [2][]float64
	head   int

	Active bool
}

func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	n := int(SampleRate * delaySecs)
	return &Processor{
		logger: logger,
		peak:   minPeak,
		delay:  [2][]float64{make([]float64, n), make([]float64, n)},
	}
}

// Start opens the default output device, stereo and output only.
func (a *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.ProcessAudio)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}
	a.stream = stream
	a.Active = true
	a.logger.Info("audio started", "rate", SampleRate, "buffer", BufferSize)
	return nil
}

func (a *Processor) Stop() {
	if !a.Active {
		return
	}
	if a.stream != nil {
		a.stream.Stop()
		a.stream.Close()
		a.stream = nil
	}
	portaudio.Terminate()
	a.Active = false
}

// SetLoad is safe to call from the render loop while the stream runs.
func (a *Processor) SetLoad(force float64, contacts int) {
	a.mu.Lock()
	a.force, a.contacts = force, contacts
	a.mu.Unlock()
}

// Level is the smoothed load in [0, 1] relative to the recent peak.
func (a *Processor) Level() float64 { return a.level }

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// one-pole low pass
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// ProcessAudio fills one stereo buffer. Pitch and loudness follow the load,
// brightness follows the number of grains touching the blade.
func (a *Processor) ProcessAudio(out [][]float32) {
	a.mu.Lock()
	force, contacts := math.Abs(a.force), a.contacts
	a.mu.Unlock()
	if math.IsNaN(force) || math.IsInf(force, 0) {
		force = 0
	}

	if force > a.peak {
		a.peak = force
	} else {
		a.peak = math.Max(a.peak*0.995, minPeak)
	}
	target := math.Min(force/a.peak, 1)
	targetBright := float64(contacts) / float64(contacts+20)

	dt := 1.0 / SampleRate
	for i := range out[0] {
		a.level += (target - a.level) * 0.0005
		a.bright += (targetBright - a.bright) * 0.0005

		f := baseFreq * (1 + 2*a.level)
		left := triangle(a.time * f * 0.999)
		right := triangle(a.time * f * 1.001)

		cutoff := 300.0 + 1500.0*a.bright
		a.filter[0] = lpf(left, cutoff, dt, a.filter[0])
		a.filter[1] = lpf(right, cutoff, dt, a.filter[1])

		dl, dr := a.delay[0][a.head], a.delay[1][a.head]
		mixL := a.filter[0]*a.level + dl*0.3 + dr*0.1
		mixR := a.filter[1]*a.level + dr*0.3 + dl*0.1
		a.delay[0][a.head] = mixL * 0.6
		a.delay[1][a.head] = mixR * 0.6
		a.head = (a.head + 1) % len(a.delay[0])

		out[0][i] = float32(mixL * volume)
		out[1][i] = float32(mixR * volume)
		a.time += dt
	}
}
