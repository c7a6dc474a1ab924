package audio

import (
	"math"
	"math/rand"

	"github.com/jinjor/desktop-synth/src/synth"
)

// ----- OSC ----- //

// osc is the running state of one oscillator: two phases detuned against each other.
type osc struct {
	phases [2]float64 // 0-1
}

func newOsc() *osc {
	phase := rand.Float64()
	return &osc{phases: [2]float64{phase, phase}}
}

// step returns the sample at t and advances by one sample.
func (o *osc) step(p *synth.Oscillator, t float64) float64 {
	freq := p.Frequency.ValueAt(t)
	pulseWidth := p.PulseWidth.ValueAt(t)
	spread := math.Pow(2, p.Detune.ValueAt(t)/1200/2)
	kind := p.Waveform()
	value := (waveAt(kind, o.phases[0], pulseWidth) + waveAt(kind, o.phases[1], pulseWidth)) / 2
	o.phases[0] = advancePhase(o.phases[0], freq*spread)
	o.phases[1] = advancePhase(o.phases[1], freq/spread)
	return value * p.Gain.ValueAt(t)
}

func advancePhase(phase float64, freq float64) float64 {
	_, phase = math.Modf(phase + freq*secPerSample)
	return phase
}

// waveAt is the bipolar value of a waveform at phase p (0-1).
func waveAt(kind synth.Waveform, p float64, pulseWidth float64) float64 {
	switch kind {
	case synth.WaveTriangle:
		if p < 0.5 {
			return p*4 - 1
		}
		return p*(-4) + 3
	case synth.WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case synth.WavePulse:
		if p < pulseWidth {
			return 1
		}
		return -1
	case synth.WaveSaw:
		return p*2 - 1
	case synth.WaveSawRev:
		return p*(-2) + 1
	case synth.WaveNoise:
		return rand.Float64()*2 - 1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
