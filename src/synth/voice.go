package synth

// ----- Voice ----- //

// Voice is one monophonic signal path: oscillators into a mixer, an optional filter stage,
// then the amplitude envelope and the main gain.
type Voice struct {
	sg             SignalGenerator
	limits         *Limits
	pool           *SourcePool
	oscillators    []*Oscillator
	mixer          *Mixer
	filter         *Filter
	ampEnvelope    *EnvelopeGenerator
	filterEnvelope *EnvelopeGenerator
	mainGain       *Parameter
	glideTime      float64 // sec
	note           int
	sequencerRoot  int
	keys           []int // held keys, latest first
}

// NewVoice ...
func NewVoice(sg SignalGenerator, pool *SourcePool, limits *Limits) *Voice {
	v := &Voice{
		sg:             sg,
		limits:         limits,
		pool:           pool,
		oscillators:    make([]*Oscillator, limits.OscillatorCount),
		mixer:          newMixer(sg, limits.OscillatorCount, limits),
		ampEnvelope:    NewEnvelopeGenerator(sg, "amp_env", limits),
		filterEnvelope: NewEnvelopeGenerator(sg, "filter_env", limits),
		mainGain:       newParameter(sg, "main_gain", limits.MainGainDefault, limits.MainGain, limits.MainGainRampTime),
		note:           limits.SequencerRootNote,
		sequencerRoot:  limits.SequencerRootNote,
		keys:           make([]int, 0, 128),
	}
	for i := range v.oscillators {
		v.oscillators[i] = newOscillator(sg, pool, i, limits, float64(v.note))
	}
	v.filter = newFilter(sg, pool, v.filterEnvelope, limits)
	return v
}

// Pool ...
func (v *Voice) Pool() *SourcePool { return v.pool }

// Limits ...
func (v *Voice) Limits() *Limits { return v.limits }

// Oscillators ...
func (v *Voice) Oscillators() []*Oscillator { return v.oscillators }

// Oscillator ...
func (v *Voice) Oscillator(index int) (*Oscillator, error) {
	if index < 0 || index >= len(v.oscillators) {
		return nil, indexOutOfRange("oscillator", index, len(v.oscillators))
	}
	return v.oscillators[index], nil
}

// Mixer ...
func (v *Voice) Mixer() *Mixer { return v.mixer }

// Filter ...
func (v *Voice) Filter() *Filter { return v.filter }

// AmpEnvelope ...
func (v *Voice) AmpEnvelope() *EnvelopeGenerator { return v.ampEnvelope }

// FilterEnvelope ...
func (v *Voice) FilterEnvelope() *EnvelopeGenerator { return v.filterEnvelope }

// MainGain ...
func (v *Voice) MainGain() *Parameter { return v.mainGain }

// Note is the last note the voice was tuned to.
func (v *Voice) Note() int { return v.note }

// GlideTime ...
func (v *Voice) GlideTime() float64 { return v.glideTime }

// SequencerRoot ...
func (v *Voice) SequencerRoot() int { return v.sequencerRoot }

// SetMainGain ...
func (v *Voice) SetMainGain(level float64) error {
	return v.mainGain.SetValue(level)
}

// SetGlideTime ...
func (v *Voice) SetGlideTime(sec float64) error {
	if err := checkRange("glide time", sec, v.limits.GlideTime); err != nil {
		return err
	}
	v.glideTime = sec
	return nil
}

// SetTempo sets the tempo both envelopes derive default note lengths from.
func (v *Voice) SetTempo(bpm float64) error {
	if err := v.ampEnvelope.SetTempo(bpm); err != nil {
		return err
	}
	return v.filterEnvelope.SetTempo(bpm)
}

// SetSequencerRoot sets the note sequencer offsets are relative to.
func (v *Voice) SetSequencerRoot(note int) error {
	if err := v.checkNote(note); err != nil {
		return err
	}
	v.sequencerRoot = note
	return nil
}

// NoteOn tunes every oscillator to note and starts both envelopes.
func (v *Voice) NoteOn(note int) error {
	if err := v.checkNote(note); err != nil {
		return err
	}
	v.tune(note, v.glideTime)
	v.ampEnvelope.Start()
	v.filterEnvelope.Start()
	return nil
}

// NoteOff releases both envelopes.
func (v *Voice) NoteOff() {
	v.ampEnvelope.Stop()
	v.filterEnvelope.Stop()
}

// PlayNote plays a note of fixed length starting now.
func (v *Voice) PlayNote(note int, duration float64) error {
	if err := v.checkNote(note); err != nil {
		return err
	}
	v.tune(note, 0)
	v.ampEnvelope.StartBeat(duration)
	v.filterEnvelope.StartBeat(duration)
	return nil
}

// PlaySequencerStep plays one step now; offsets[i] is the semitone offset of oscillator i
// from the sequencer root, missing offsets count as 0.
func (v *Voice) PlaySequencerStep(offsets []int, duration float64) error {
	return v.PlaySequencerStepAt(v.sg.Now(), offsets, duration)
}

// PlaySequencerStepAt plays one step at t.
func (v *Voice) PlaySequencerStepAt(t float64, offsets []int, duration float64) error {
	notes := make([]int, len(v.oscillators))
	for i := range notes {
		notes[i] = v.sequencerRoot
		if i < len(offsets) {
			notes[i] += offsets[i]
		}
		if err := v.checkNote(notes[i]); err != nil {
			return err
		}
	}
	for i, o := range v.oscillators {
		// notes are checked and the frequency is clamped into bounds
		_ = o.tuneAtTime(float64(notes[i]), t)
	}
	v.note = notes[0]
	v.ampEnvelope.StartBeatAtTime(t, duration)
	v.filterEnvelope.StartBeatAtTime(t, duration)
	return nil
}

// PressKey handles a key going down with last-note priority.
// While another key is held the pitch glides without retriggering the envelopes.
func (v *Voice) PressKey(note int) error {
	if err := v.checkNote(note); err != nil {
		return err
	}
	v.removeKey(note)
	v.keys = append(v.keys, 0)
	copy(v.keys[1:], v.keys)
	v.keys[0] = note
	if len(v.keys) == 1 {
		return v.NoteOn(note)
	}
	v.tune(note, v.glideTime)
	return nil
}

// ReleaseKey handles a key going up. The voice goes back to the previous held key if any.
func (v *Voice) ReleaseKey(note int) {
	if !v.removeKey(note) {
		return
	}
	if len(v.keys) > 0 {
		v.tune(v.keys[0], v.glideTime)
		return
	}
	v.NoteOff()
}

// HeldKeys ...
func (v *Voice) HeldKeys() []int {
	return append([]int(nil), v.keys...)
}

func (v *Voice) removeKey(note int) bool {
	removed := 0
	for i := 0; i < len(v.keys); i++ {
		if v.keys[i] == note {
			removed++
		} else {
			v.keys[i-removed] = v.keys[i]
		}
	}
	v.keys = v.keys[:len(v.keys)-removed]
	return removed > 0
}

func (v *Voice) tune(note int, glide float64) {
	v.note = note
	for _, o := range v.oscillators {
		// frequencies are clamped into bounds
		_ = o.tune(float64(note), glide)
	}
}

func (v *Voice) checkNote(note int) error {
	return checkRange("note", float64(note), v.limits.Note)
}
