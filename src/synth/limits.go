package synth

import "math"

// ----- Range ----- //

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains ...
func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// Clamp ...
func (r Range) Clamp(value float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, value))
}

// ----- Limits ----- //

// Limits is the table of every numeric bound and default the core works with.
// The core never writes to it.
type Limits struct {
	SourceCount     int `json:"sourceCount"`
	OscillatorCount int `json:"oscillatorCount"`

	LfoFrequency        Range   `json:"lfoFrequency"`        // Hz
	LfoFrequencyDefault float64 `json:"lfoFrequencyDefault"` // Hz
	LfoFrequencyRamp    float64 `json:"lfoFrequencyRamp"`    // sec
	CrossfadeTime       float64 `json:"crossfadeTime"`       // sec
	RouterRampTime      float64 `json:"routerRampTime"`      // sec
	ParameterRampTime   float64 `json:"parameterRampTime"`   // sec

	OscFrequency           Range   `json:"oscFrequency"`           // Hz
	OscFrequencyFixedRange float64 `json:"oscFrequencyFixedRange"` // Hz
	OscGain                Range   `json:"oscGain"`                // 0-1
	OscGainDefault         float64 `json:"oscGainDefault"`         // 0-1
	PulseWidth             Range   `json:"pulseWidth"`             // duty cycle
	PulseWidthDefault      float64 `json:"pulseWidthDefault"`      // duty cycle
	Detune                 Range   `json:"detune"`                 // cent
	Octave                 Range   `json:"octave"`                 // octave
	Semitone               Range   `json:"semitone"`               // semitone
	Fine                   Range   `json:"fine"`                   // cent
	MixerLevel             Range   `json:"mixerLevel"`             // 0-1
	MixerLevelDefault      float64 `json:"mixerLevelDefault"`      // 0-1
	FilterCutoff           Range   `json:"filterCutoff"`           // Hz
	FilterCutoffDefault    float64 `json:"filterCutoffDefault"`    // Hz
	FilterResonance        Range   `json:"filterResonance"`        // Q
	FilterResonanceDefault float64 `json:"filterResonanceDefault"` // Q
	FilterEnvelopeAmount   Range   `json:"filterEnvelopeAmount"`   // normalized
	MainGain               Range   `json:"mainGain"`               // 0-1
	MainGainDefault        float64 `json:"mainGainDefault"`        // 0-1
	MainGainRampTime       float64 `json:"mainGainRampTime"`       // sec
	GlideTime              Range   `json:"glideTime"`              // sec
	Tempo                  Range   `json:"tempo"`                  // bpm
	TempoDefault           float64 `json:"tempoDefault"`           // bpm
	SequencerStepsPerBeat  int     `json:"sequencerStepsPerBeat"`  // steps
	SequencerStepCount     int     `json:"sequencerStepCount"`     // steps
	Note                   Range   `json:"note"`                   // MIDI note number
	SequencerRootNote      int     `json:"sequencerRootNote"`      // MIDI note number
	AttackTime             Range   `json:"attackTime"`             // sec
	AttackTimeDefault      float64 `json:"attackTimeDefault"`      // sec
	DecayTime              Range   `json:"decayTime"`              // sec
	DecayTimeDefault       float64 `json:"decayTimeDefault"`       // sec
	SustainLevel           Range   `json:"sustainLevel"`           // 0-1, Min > 0
	SustainLevelDefault    float64 `json:"sustainLevelDefault"`    // 0-1
	ReleaseTime            Range   `json:"releaseTime"`            // sec
	ReleaseTimeDefault     float64 `json:"releaseTimeDefault"`     // sec
	EnvelopeMinLevel       float64 `json:"envelopeMinLevel"`       // 0-1
	EnvelopeMaxLevel       float64 `json:"envelopeMaxLevel"`       // 0-1
}

// DefaultLimits ...
func DefaultLimits() *Limits {
	return &Limits{
		SourceCount:     3,
		OscillatorCount: 2,

		LfoFrequency:        Range{0.01, 50},
		LfoFrequencyDefault: 2,
		LfoFrequencyRamp:    0.05,
		CrossfadeTime:       0.02,
		RouterRampTime:      0.02,
		ParameterRampTime:   0.02,

		OscFrequency:           Range{8, 20000},
		OscFrequencyFixedRange: 200,
		OscGain:                Range{0, 1},
		OscGainDefault:         1,
		PulseWidth:             Range{0.05, 0.95},
		PulseWidthDefault:      0.5,
		Detune:                 Range{0, 100},
		Octave:                 Range{-2, 2},
		Semitone:               Range{-12, 12},
		Fine:                   Range{-100, 100},
		MixerLevel:             Range{0, 1},
		MixerLevelDefault:      0.5,
		FilterCutoff:           Range{20, 20000},
		FilterCutoffDefault:    6000,
		FilterResonance:        Range{0.1, 30},
		FilterResonanceDefault: 1,
		FilterEnvelopeAmount:   Range{-1, 1},
		MainGain:               Range{0, 1},
		MainGainDefault:        0.5,
		MainGainRampTime:       0.05,
		GlideTime:              Range{0, 2},
		Tempo:                  Range{20, 300},
		TempoDefault:           120,
		SequencerStepsPerBeat:  4,
		SequencerStepCount:     16,
		Note:                   Range{0, 127},
		SequencerRootNote:      60,
		AttackTime:             Range{0, 10},
		AttackTimeDefault:      0.01,
		DecayTime:              Range{0, 10},
		DecayTimeDefault:       0.3,
		SustainLevel:           Range{0.0001, 1},
		SustainLevelDefault:    0.8,
		ReleaseTime:            Range{0, 10},
		ReleaseTimeDefault:     1.0,
		EnvelopeMinLevel:       0,
		EnvelopeMaxLevel:       1,
	}
}

// BeatDuration is the length of one beat at the given tempo.
// Out-of-range tempos fall back to the default tempo.
func (l *Limits) BeatDuration(tempo float64) float64 {
	if !l.Tempo.Contains(tempo) || tempo <= 0 {
		tempo = l.TempoDefault
	}
	return 60 / tempo
}
