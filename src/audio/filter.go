package audio

import (
	"math"

	"github.com/jinjor/desktop-synth/src/synth"
)

// ----- Biquad ----- //

type coefficients struct {
	b0, b1, b2 float64 // feedforward
	a1, a2     float64 // feedback
}

var passThrough = coefficients{b0: 1}

// biquad is a second order IIR filter whose coefficients follow the voice filter.
type biquad struct {
	kind   synth.FilterKind
	cutoff float64 // Hz
	q      float64
	c      coefficients
	x1, x2 float64
	y1, y2 float64
}

func (f *biquad) setParams(kind synth.FilterKind, cutoff float64, q float64) {
	if kind != f.kind {
		f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
	} else if cutoff == f.cutoff && q == f.q {
		return
	}
	f.kind = kind
	f.cutoff = cutoff
	f.q = q
	f.c = makeCoefficients(kind, cutoff/sampleRate, q)
}

func (f *biquad) process(in float64) float64 {
	c := &f.c
	out := c.b0*in + c.b1*f.x1 + c.b2*f.x2 - c.a1*f.y1 - c.a2*f.y2
	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, out
	return out
}

// fc is normalized by the sample rate
func makeCoefficients(kind synth.FilterKind, fc float64, q float64) coefficients {
	fc = math.Max(0, math.Min(fc, 0.49))
	if q <= 0 {
		q = 0.1
	}
	switch kind {
	case synth.FilterLowpass:
		return makeBiquadLowpass(fc, q)
	case synth.FilterHighpass:
		return makeBiquadHighpass(fc, q)
	case synth.FilterBandpass:
		return makeBiquadBandpass(fc, q)
	case synth.FilterNotch:
		return makeBiquadNotch(fc, q)
	default:
		return passThrough
	}
}

func normalize(b0, b1, b2, a0, a1, a2 float64) coefficients {
	return coefficients{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

func makeBiquadLowpass(fc float64, q float64) coefficients {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := (1 - math.Cos(w0)) / 2
	b1 := (1 - math.Cos(w0))
	b2 := (1 - math.Cos(w0)) / 2
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func makeBiquadHighpass(fc float64, q float64) coefficients {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := (1 + math.Cos(w0)) / 2
	b1 := -(1 + math.Cos(w0))
	b2 := (1 + math.Cos(w0)) / 2
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// constant 0 dB peak gain
func makeBiquadBandpass(fc float64, q float64) coefficients {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func makeBiquadNotch(fc float64, q float64) coefficients {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := 1.0
	b1 := -2 * math.Cos(w0)
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}
