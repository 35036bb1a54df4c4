package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrShortSeries = errors.New("analysis: need at least four samples")

// Spectrum returns the one-sided amplitude spectrum of a uniformly sampled
// series and the bin spacing in Hz. The mean is removed first so bin 0 only
// carries numerical noise.
func Spectrum(series []float64, interval float64) ([]float64, float64, error) {
	n := len(series)
	if n < 4 {
		return nil, 0, ErrShortSeries
	}
	if !(interval > 0) {
		return nil, 0, errors.New("analysis: sample interval must be positive")
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)
	centred := make([]float64, n)
	for i, v := range series {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	amp := make([]float64, n/2+1)
	for k := range amp {
		amp[k] = 2 * cmplx.Abs(coeffs[k]) / float64(n)
	}
	return amp, 1 / (float64(n) * interval), nil
}

// DominantFrequency is the strongest non-zero frequency of the series and its
// amplitude.
func DominantFrequency(series []float64, interval float64) (float64, float64, error) {
	amp, df, err := Spectrum(series, interval)
	if err != nil {
		return 0, 0, err
	}
	best := 1
	for k := 2; k < len(amp); k++ {
		if amp[k] > amp[best] {
			best = k
		}
	}
	return float64(best) * df, amp[best], nil
}
