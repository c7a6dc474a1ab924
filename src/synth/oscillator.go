package synth

import (
	"fmt"
	"math"
)

const baseFreq = 440.0

// NoteToFreq converts a (fractional) MIDI note number to Hz.
func NoteToFreq(note float64) float64 {
	return baseFreq * math.Pow(2, (note-69)/12)
}

// ----- Oscillator ----- //

// Oscillator is the parameter block of one melodic oscillator.
// The waveform itself is produced by the signal generator.
type Oscillator struct {
	index      int
	limits     *Limits
	Frequency  *Parameter
	Gain       *Parameter
	PulseWidth *Parameter
	Detune     *Parameter
	waveform   Waveform
	enabled    bool
	octave     int
	semitone   int
	fine       float64 // cent
	note       float64
	scheduled  []scheduledNote // notes issued ahead of now, by time
}

type scheduledNote struct {
	note float64
	t    float64 // sec
}

func newOscillator(sg SignalGenerator, pool *SourcePool, index int, limits *Limits, note float64) *Oscillator {
	name := fmt.Sprintf("osc%d", index)
	o := &Oscillator{
		index:    index,
		limits:   limits,
		waveform: WaveSaw,
		enabled:  index == 0,
		note:     note,
	}
	o.Frequency = newModulatedParameter(sg, pool, name+".freq", o.frequencyOf(note), limits.OscFrequency, limits, RangeFixed, limits.OscFrequencyFixedRange)
	o.Gain = newModulatedParameter(sg, pool, name+".gain", limits.OscGainDefault, limits.OscGain, limits, RangeVariable, 0)
	o.PulseWidth = newModulatedParameter(sg, pool, name+".pulse_width", limits.PulseWidthDefault, limits.PulseWidth, limits, RangeVariable, 0)
	o.Detune = newModulatedParameter(sg, pool, name+".detune", limits.Detune.Min, limits.Detune, limits, RangeVariable, 0)
	return o
}

// Index ...
func (o *Oscillator) Index() int {
	return o.index
}

// Parameters lists the modulatable parameters by their command name.
func (o *Oscillator) Parameters() map[string]*Parameter {
	return map[string]*Parameter{
		"freq":        o.Frequency,
		"gain":        o.Gain,
		"pulse_width": o.PulseWidth,
		"detune":      o.Detune,
	}
}

// Waveform ...
func (o *Oscillator) Waveform() Waveform {
	return o.waveform
}

// SetWaveform ...
func (o *Oscillator) SetWaveform(w Waveform) {
	o.waveform = w
}

// Enabled ...
func (o *Oscillator) Enabled() bool {
	return o.enabled
}

// SetEnabled ...
func (o *Oscillator) SetEnabled(enabled bool) {
	o.enabled = enabled
}

// Octave ...
func (o *Oscillator) Octave() int { return o.octave }

// Semitone ...
func (o *Oscillator) Semitone() int { return o.semitone }

// Fine ...
func (o *Oscillator) Fine() float64 { return o.fine }

// SetOctave retunes the current note.
func (o *Oscillator) SetOctave(octave int) error {
	if err := checkRange(fmt.Sprintf("osc%d octave", o.index), float64(octave), o.limits.Octave); err != nil {
		return err
	}
	o.octave = octave
	return o.retune()
}

// SetSemitone retunes the current note.
func (o *Oscillator) SetSemitone(semitone int) error {
	if err := checkRange(fmt.Sprintf("osc%d semitone", o.index), float64(semitone), o.limits.Semitone); err != nil {
		return err
	}
	o.semitone = semitone
	return o.retune()
}

// SetFine retunes the current note.
func (o *Oscillator) SetFine(cent float64) error {
	if err := checkRange(fmt.Sprintf("osc%d fine", o.index), cent, o.limits.Fine); err != nil {
		return err
	}
	o.fine = cent
	return o.retune()
}

// retune applies the tuning to the note playing now and to the notes issued ahead of now.
func (o *Oscillator) retune() error {
	o.settle(o.Frequency.sg.Now())
	if err := o.Frequency.SetValue(o.frequencyOf(o.note)); err != nil {
		return err
	}
	// the ramp above cancelled them
	for _, s := range o.scheduled {
		if err := o.Frequency.setValueAtTime(o.frequencyOf(s.note), s.t); err != nil {
			return err
		}
	}
	return nil
}

// tune moves to note, gliding over glide seconds (0 jumps).
func (o *Oscillator) tune(note float64, glide float64) error {
	o.note = note
	o.scheduled = o.scheduled[:0]
	return o.Frequency.rampValue(o.frequencyOf(note), glide)
}

// tuneAtTime jumps to note at t, replacing notes issued for t or later.
func (o *Oscillator) tuneAtTime(note float64, t float64) error {
	i := 0
	for i < len(o.scheduled) && o.scheduled[i].t < t {
		i++
	}
	o.scheduled = append(o.scheduled[:i], scheduledNote{note: note, t: t})
	return o.Frequency.setValueAtTime(o.frequencyOf(note), t)
}

// settle takes the notes whose time has come.
func (o *Oscillator) settle(now float64) {
	n := 0
	for n < len(o.scheduled) && o.scheduled[n].t <= now {
		o.note = o.scheduled[n].note
		n++
	}
	o.scheduled = o.scheduled[n:]
}

func (o *Oscillator) frequencyOf(note float64) float64 {
	n := note + float64(12*o.octave+o.semitone) + o.fine/100
	return o.limits.OscFrequency.Clamp(NoteToFreq(n))
}

// ----- Mixer ----- //

// Mixer holds the level of each oscillator and whether it goes through the filter.
type Mixer struct {
	levels   []*Parameter
	filtered []bool
}

func newMixer(sg SignalGenerator, count int, limits *Limits) *Mixer {
	m := &Mixer{
		levels:   make([]*Parameter, count),
		filtered: make([]bool, count),
	}
	for i := range m.levels {
		m.levels[i] = newParameter(sg, fmt.Sprintf("mixer%d.level", i), limits.MixerLevelDefault, limits.MixerLevel, limits.ParameterRampTime)
		m.filtered[i] = true
	}
	return m
}

// Len ...
func (m *Mixer) Len() int {
	return len(m.levels)
}

// Level ...
func (m *Mixer) Level(index int) (*Parameter, error) {
	if index < 0 || index >= len(m.levels) {
		return nil, indexOutOfRange("mixer channel", index, len(m.levels))
	}
	return m.levels[index], nil
}

// SetLevel ...
func (m *Mixer) SetLevel(index int, level float64) error {
	p, err := m.Level(index)
	if err != nil {
		return err
	}
	return p.SetValue(level)
}

// Filtered ...
func (m *Mixer) Filtered(index int) bool {
	if index < 0 || index >= len(m.filtered) {
		return false
	}
	return m.filtered[index]
}

// SetFiltered ...
func (m *Mixer) SetFiltered(index int, filtered bool) error {
	if index < 0 || index >= len(m.filtered) {
		return indexOutOfRange("mixer channel", index, len(m.filtered))
	}
	m.filtered[index] = filtered
	return nil
}
