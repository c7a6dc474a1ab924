package audio

import (
	"encoding/json"
	"log"

	"github.com/jinjor/desktop-synth/src/synth"
)

// ----- Patch JSON ----- //

type modJSON struct {
	Amount  float64 `json:"amount"`
	Sources []int   `json:"sources"`
}

type paramJSON struct {
	Value float64 `json:"value"`
	Mod   modJSON `json:"mod"`
}

type oscJSON struct {
	Enabled    bool      `json:"enabled"`
	Waveform   string    `json:"waveform"`
	Octave     int       `json:"octave"`
	Semitone   int       `json:"semitone"`
	Fine       float64   `json:"fine"`
	Level      float64   `json:"level"`
	Filtered   bool      `json:"filtered"`
	FreqMod    modJSON   `json:"freqMod"`
	Gain       paramJSON `json:"gain"`
	PulseWidth paramJSON `json:"pulseWidth"`
	Detune     paramJSON `json:"detune"`
}

type filterJSON struct {
	Kind      string    `json:"kind"`
	Cutoff    paramJSON `json:"cutoff"`
	Resonance paramJSON `json:"resonance"`
	EnvAmount float64   `json:"envAmount"`
}

type envelopeJSON struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

type lfoJSON struct {
	Freq float64 `json:"freq"`
	Wave string  `json:"wave"`
}

type stepJSON struct {
	Offsets []int `json:"offsets,omitempty"`
	Rest    bool  `json:"rest,omitempty"`
}

type sequencerJSON struct {
	Root  int        `json:"root"`
	Steps []stepJSON `json:"steps"`
}

// patchJSON is a complete sound. Fields missing from a file keep their current value.
type patchJSON struct {
	MainGain  float64       `json:"mainGain"`
	GlideTime float64       `json:"glideTime"`
	Tempo     float64       `json:"tempo"`
	Oscs      []oscJSON     `json:"oscs"`
	Filter    filterJSON    `json:"filter"`
	AmpEnv    envelopeJSON  `json:"ampEnv"`
	FilterEnv envelopeJSON  `json:"filterEnv"`
	Lfos      []lfoJSON     `json:"lfos"`
	Echo      echoJSON      `json:"echo"`
	Sequencer sequencerJSON `json:"sequencer"`
}

// ----- Read ----- //

func modToJSON(p *synth.Parameter) modJSON {
	r := p.ModulationRouter()
	j := modJSON{Amount: r.NormalizedAmount(), Sources: []int{}}
	for i := 0; i < r.Len(); i++ {
		if r.IsEnabled(i) {
			j.Sources = append(j.Sources, i)
		}
	}
	return j
}

func paramToJSON(p *synth.Parameter) paramJSON {
	return paramJSON{Value: p.Value(), Mod: modToJSON(p)}
}

func envelopeToJSON(env *synth.EnvelopeGenerator) envelopeJSON {
	return envelopeJSON{
		Attack:  env.AttackTime(),
		Decay:   env.DecayTime(),
		Sustain: env.SustainLevel(),
		Release: env.ReleaseTime(),
	}
}

func (e *engine) toPatch() *patchJSON {
	v := e.voice
	mixer := v.Mixer()
	oscs := make([]oscJSON, len(v.Oscillators()))
	for i, o := range v.Oscillators() {
		level, _ := mixer.Level(i)
		oscs[i] = oscJSON{
			Enabled:    o.Enabled(),
			Waveform:   o.Waveform().String(),
			Octave:     o.Octave(),
			Semitone:   o.Semitone(),
			Fine:       o.Fine(),
			Level:      level.Value(),
			Filtered:   mixer.Filtered(i),
			FreqMod:    modToJSON(o.Frequency),
			Gain:       paramToJSON(o.Gain),
			PulseWidth: paramToJSON(o.PulseWidth),
			Detune:     paramToJSON(o.Detune),
		}
	}
	lfos := make([]lfoJSON, e.pool.Len())
	for i := range lfos {
		s, _ := e.pool.Source(i)
		lfos[i] = lfoJSON{Freq: s.Frequency(), Wave: s.Waveform().String()}
	}
	steps := make([]stepJSON, e.sequencer.Len())
	for i := range steps {
		step, _ := e.sequencer.Step(i)
		steps[i] = stepJSON{Offsets: step.Offsets, Rest: step.Rest}
	}
	f := v.Filter()
	return &patchJSON{
		MainGain:  v.MainGain().Value(),
		GlideTime: v.GlideTime(),
		Tempo:     v.AmpEnvelope().Tempo(),
		Oscs:      oscs,
		Filter: filterJSON{
			Kind:      f.Kind().String(),
			Cutoff:    paramToJSON(f.Cutoff),
			Resonance: paramToJSON(f.Resonance),
			EnvAmount: f.EnvelopeAmount(),
		},
		AmpEnv:    envelopeToJSON(v.AmpEnvelope()),
		FilterEnv: envelopeToJSON(v.FilterEnvelope()),
		Lfos:      lfos,
		Echo:      e.echo.toJSON(),
		Sequencer: sequencerJSON{Root: v.SequencerRoot(), Steps: steps},
	}
}

// ----- Apply ----- //

// warn logs a rejected value; the rest of the patch still applies.
func warn(err error) {
	if err != nil {
		log.Printf("[WARN] patch: %v\n", err)
	}
}

func applyMod(j modJSON, p *synth.Parameter) {
	r := p.ModulationRouter()
	warn(r.SetNormalizedModulationAmount(j.Amount))
	enabled := make(map[int]bool)
	for _, index := range j.Sources {
		enabled[index] = true
		warn(r.EnableLfo(index))
	}
	for i := 0; i < r.Len(); i++ {
		if !enabled[i] {
			warn(r.DisableLfo(i))
		}
	}
}

func applyParam(j paramJSON, p *synth.Parameter) {
	warn(p.SetValue(j.Value))
	applyMod(j.Mod, p)
}

func applyEnvelope(j envelopeJSON, env *synth.EnvelopeGenerator) {
	warn(env.SetAttackTime(j.Attack))
	warn(env.SetDecayTime(j.Decay))
	warn(env.SetSustainLevel(j.Sustain))
	warn(env.SetReleaseTime(j.Release))
}

// applyJSON merges data over the current sound. Only malformed JSON is an error;
// out-of-range values are logged and skipped.
func (e *engine) applyJSON(data []byte) error {
	j := e.toPatch()
	// steps are replaced as a whole
	j.Sequencer.Steps = nil
	if err := json.Unmarshal(data, j); err != nil {
		return err
	}
	v := e.voice
	warn(v.SetMainGain(j.MainGain))
	warn(v.SetGlideTime(j.GlideTime))
	warn(v.SetTempo(j.Tempo))

	oscillators := v.Oscillators()
	if len(j.Oscs) != len(oscillators) {
		log.Printf("[WARN] patch: %d oscillators for %d\n", len(j.Oscs), len(oscillators))
	}
	for i, oj := range j.Oscs {
		if i >= len(oscillators) {
			break
		}
		o := oscillators[i]
		o.SetEnabled(oj.Enabled)
		if w, err := synth.ParseWaveform(oj.Waveform); err != nil {
			warn(err)
		} else {
			o.SetWaveform(w)
		}
		warn(o.SetOctave(oj.Octave))
		warn(o.SetSemitone(oj.Semitone))
		warn(o.SetFine(oj.Fine))
		warn(v.Mixer().SetLevel(i, oj.Level))
		warn(v.Mixer().SetFiltered(i, oj.Filtered))
		applyMod(oj.FreqMod, o.Frequency)
		applyParam(oj.Gain, o.Gain)
		applyParam(oj.PulseWidth, o.PulseWidth)
		applyParam(oj.Detune, o.Detune)
	}

	f := v.Filter()
	if kind, err := synth.ParseFilterKind(j.Filter.Kind); err != nil {
		warn(err)
	} else {
		f.SetKind(kind)
	}
	applyParam(j.Filter.Cutoff, f.Cutoff)
	applyParam(j.Filter.Resonance, f.Resonance)
	warn(f.SetEnvelopeAmount(j.Filter.EnvAmount))
	applyEnvelope(j.AmpEnv, v.AmpEnvelope())
	applyEnvelope(j.FilterEnv, v.FilterEnvelope())

	for i, lj := range j.Lfos {
		s, err := e.pool.Source(i)
		if err != nil {
			warn(err)
			break
		}
		warn(s.SetFrequency(lj.Freq))
		if w, err := synth.ParseWaveform(lj.Wave); err != nil {
			warn(err)
		} else {
			warn(s.SetWaveform(w))
		}
	}

	e.echo.setEnabled(j.Echo.Enabled)
	warn(e.echo.setDelay(j.Echo.Delay))
	warn(e.echo.setFeedback(j.Echo.Feedback))
	warn(e.echo.setMix(j.Echo.Mix))

	warn(v.SetSequencerRoot(j.Sequencer.Root))
	for i, sj := range j.Sequencer.Steps {
		if i >= e.sequencer.Len() {
			log.Printf("[WARN] patch: %d sequencer steps for %d\n", len(j.Sequencer.Steps), e.sequencer.Len())
			break
		}
		warn(e.sequencer.SetStep(i, synth.SequencerStep{Offsets: sj.Offsets, Rest: sj.Rest}))
	}
	return nil
}

func (e *engine) toJSON() ([]byte, error) {
	return json.MarshalIndent(e.toPatch(), "", "  ")
}
