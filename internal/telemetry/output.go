package telemetry

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// Output appends samples to a CSV stream, writing the header with the first
// record only.
type Output struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// CreateOutput truncates path and streams samples into it.
func CreateOutput(path string) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &Output{w: f, closer: f}, nil
}

func (o *Output) Write(s Sample) error {
	records := []Sample{s}

	if !o.headerWritten {
		if err := gocsv.Marshal(records, o.w); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		o.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, o.w); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// WriteAll writes samples with a header to w.
func WriteAll(w io.Writer, samples []Sample) error {
	return gocsv.Marshal(samples, w)
}

// ReadAll parses a CSV stream produced by Output or WriteAll.
func ReadAll(r io.Reader) ([]Sample, error) {
	var samples []Sample
	if err := gocsv.Unmarshal(r, &samples); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return samples, nil
}
