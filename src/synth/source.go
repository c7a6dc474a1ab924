package synth

import (
	"fmt"
	"math"
)

// ----- Modulation Source ----- //

// ModulationSource is a free-running, unipolar low-frequency oscillator.
// Once created it keeps oscillating; only its frequency and shape change.
type ModulationSource struct {
	name      string
	sg        SignalGenerator
	limits    *Limits
	shape     Waveform
	frequency float64 // Hz
	freq      AudioParam
	phase     float64 // 0-1
	value     float64 // 0-1
}

// NewModulationSource ...
func NewModulationSource(sg SignalGenerator, name string, limits *Limits) *ModulationSource {
	return &ModulationSource{
		name:      name,
		sg:        sg,
		limits:    limits,
		shape:     WaveSine,
		frequency: limits.LfoFrequencyDefault,
		freq:      sg.Param(name+".freq", limits.LfoFrequencyDefault),
		value:     unipolar(WaveSine, 0),
	}
}

// Name ...
func (s *ModulationSource) Name() string {
	return s.name
}

// Frequency ...
func (s *ModulationSource) Frequency() float64 {
	return s.frequency
}

// SetFrequency ramps smoothly to hz.
func (s *ModulationSource) SetFrequency(hz float64) error {
	if err := checkRange(s.name+" frequency", hz, s.limits.LfoFrequency); err != nil {
		return err
	}
	s.frequency = hz
	rampTo(s.freq, s.sg.Now(), hz, s.limits.LfoFrequencyRamp)
	return nil
}

// Waveform ...
func (s *ModulationSource) Waveform() Waveform {
	return s.shape
}

// SetWaveform ...
func (s *ModulationSource) SetWaveform(w Waveform) error {
	if !lfoShapes[w] {
		return fmt.Errorf("%w: %s cannot use waveform %v", ErrOutOfBounds, s.name, w)
	}
	s.shape = w
	return nil
}

// Value is the output computed by the last Step.
func (s *ModulationSource) Value() float64 {
	return s.value
}

// Step computes the output for time t and advances the phase by one sample.
func (s *ModulationSource) Step(t float64, sampleRate float64) float64 {
	s.value = unipolar(s.shape, s.phase)
	s.phase += s.freq.ValueAt(t) / sampleRate
	_, s.phase = math.Modf(s.phase)
	return s.value
}

func unipolar(shape Waveform, phase float64) float64 {
	switch shape {
	case WaveTriangle:
		if phase < 0.5 {
			return phase * 2
		}
		return 2 - phase*2
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return 0
	case WaveSaw:
		return phase
	default:
		return 0.5 + 0.5*math.Sin(2*math.Pi*phase)
	}
}

// ----- Source Pool ----- //

// SourcePool is the fixed set of modulation sources of the whole system.
// It is built once and handed to every router.
type SourcePool struct {
	sources []*ModulationSource
}

// NewSourcePool ...
func NewSourcePool(sources ...*ModulationSource) *SourcePool {
	return &SourcePool{sources: append([]*ModulationSource(nil), sources...)}
}

// NewDefaultSourcePool creates limits.SourceCount sources named lfo0, lfo1, ...
func NewDefaultSourcePool(sg SignalGenerator, limits *Limits) *SourcePool {
	sources := make([]*ModulationSource, limits.SourceCount)
	for i := range sources {
		sources[i] = NewModulationSource(sg, fmt.Sprintf("lfo%d", i), limits)
	}
	return NewSourcePool(sources...)
}

// Len ...
func (p *SourcePool) Len() int {
	return len(p.sources)
}

// Source ...
func (p *SourcePool) Source(index int) (*ModulationSource, error) {
	if index < 0 || index >= len(p.sources) {
		return nil, indexOutOfRange("modulation source", index, len(p.sources))
	}
	return p.sources[index], nil
}

// Step advances every source by one sample.
func (p *SourcePool) Step(t float64, sampleRate float64) {
	for _, s := range p.sources {
		s.Step(t, sampleRate)
	}
}
