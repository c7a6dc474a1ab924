package audio

import (
	"math"
	"testing"

	"github.com/jinjor/desktop-synth/src/synth"
)

// filterGain is the steady state peak of a unit sine through the filter.
func filterGain(kind synth.FilterKind, cutoff float64, q float64, freq float64) float64 {
	f := &biquad{c: passThrough}
	f.setParams(kind, cutoff, q)
	peak := 0.0
	for i := 0; i < sampleRate; i++ {
		out := f.process(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
		if i >= sampleRate/2 {
			peak = math.Max(peak, math.Abs(out))
		}
	}
	return peak
}

func TestBiquadResponse(t *testing.T) {
	for _, c := range []struct {
		kind   synth.FilterKind
		cutoff float64
		freq   float64
		min    float64
		max    float64
	}{
		{synth.FilterNone, 500, 15000, 0.999, 1.001},
		{synth.FilterLowpass, 500, 100, 0.95, 1.05},
		{synth.FilterLowpass, 500, 15000, 0, 0.01},
		{synth.FilterHighpass, 500, 15000, 0.95, 1.05},
		{synth.FilterHighpass, 500, 100, 0, 0.06},
		{synth.FilterBandpass, 1000, 1000, 0.95, 1.05},
		{synth.FilterBandpass, 1000, 15000, 0, 0.1},
		{synth.FilterNotch, 1000, 1000, 0, 0.01},
		{synth.FilterNotch, 1000, 100, 0.95, 1.05},
	} {
		gain := filterGain(c.kind, c.cutoff, math.Sqrt2/2, c.freq)
		if gain < c.min || gain > c.max {
			t.Errorf("%v at %v Hz: expected gain in [%v, %v] for %v Hz, but got %v", c.kind, c.cutoff, c.min, c.max, c.freq, gain)
		}
	}
}

func TestBiquadKindChangeResetsState(t *testing.T) {
	f := &biquad{c: passThrough}
	f.setParams(synth.FilterLowpass, 1000, 1)
	for i := 0; i < 100; i++ {
		f.process(1)
	}
	c := f.c
	f.setParams(synth.FilterLowpass, 1000, 1)
	expectEqual(t, f.c, c)
	expectEqual(t, f.y1 != 0, true)

	f.setParams(synth.FilterHighpass, 1000, 1)
	expectEqual(t, f.y1, 0.0)
	expectEqual(t, f.x1, 0.0)
}

func TestCoefficientsStayStable(t *testing.T) {
	// cutoffs above Nyquist are pulled back below it
	c := makeCoefficients(synth.FilterLowpass, 30000.0/sampleRate, 30)
	expectEqual(t, math.IsNaN(c.b0), false)
	expectEqual(t, math.Abs(c.a2) < 1, true)
	expectEqual(t, makeCoefficients(synth.FilterNone, 0.1, 1), passThrough)
}
