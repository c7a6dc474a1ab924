package audio

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jinjor/desktop-synth/src/synth"
)

// ErrInvalidCommand is returned for a command that cannot be parsed.
var ErrInvalidCommand = errors.New("invalid command")

func invalid(command []string, reason string) error {
	return fmt.Errorf("%w %v: %s", ErrInvalidCommand, command, reason)
}

func parseInt(s string) (int, error) {
	value, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return int(value), nil
}

func parseFloat(s string) (float64, error) {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return value, nil
}

func parseBool(s string) (bool, error) {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return value, nil
}

// ----- Commands ----- //

// update applies one UI command. The caller holds the lock.
func (e *engine) update(command []string) error {
	if len(command) == 0 {
		return invalid(command, "empty")
	}
	args := command[1:]
	switch command[0] {
	case "note_on":
		if len(args) != 1 {
			return invalid(command, "expected a note")
		}
		note, err := parseInt(args[0])
		if err != nil {
			return err
		}
		return e.voice.PressKey(note)
	case "note_off":
		if len(args) != 1 {
			return invalid(command, "expected a note")
		}
		note, err := parseInt(args[0])
		if err != nil {
			return err
		}
		e.voice.ReleaseKey(note)
		return nil
	case "play":
		if len(args) != 2 {
			return invalid(command, "expected a note and a duration")
		}
		note, err := parseInt(args[0])
		if err != nil {
			return err
		}
		duration, err := parseFloat(args[1])
		if err != nil {
			return err
		}
		return e.voice.PlayNote(note, duration)
	case "step":
		if len(args) < 1 {
			return invalid(command, "expected a duration")
		}
		duration, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		offsets, err := parseOffsets(args[1:])
		if err != nil {
			return err
		}
		return e.voice.PlaySequencerStep(offsets, duration)
	case "set":
		return e.set(command, args)
	case "seq":
		return e.seq(command, args)
	case "preset":
		if len(args) != 1 {
			return invalid(command, "expected a preset name")
		}
		return e.loadPreset(args[0])
	case "save":
		if len(args) != 1 {
			return invalid(command, "expected a preset name")
		}
		return e.savePreset(args[0])
	default:
		return invalid(command, "unknown command")
	}
}

func (e *engine) set(command []string, args []string) error {
	if len(args) < 2 {
		return invalid(command, "expected a key and a value")
	}
	key, rest := args[0], args[1:]
	switch key {
	case "main_gain", "glide_time", "tempo":
		value, err := parseFloat(rest[0])
		if err != nil {
			return err
		}
		switch key {
		case "main_gain":
			return e.voice.SetMainGain(value)
		case "glide_time":
			return e.voice.SetGlideTime(value)
		default:
			return e.voice.SetTempo(value)
		}
	case "osc":
		index, err := parseInt(rest[0])
		if err != nil {
			return err
		}
		o, err := e.voice.Oscillator(index)
		if err != nil {
			return err
		}
		return e.setOsc(command, o, rest[1:])
	case "filter":
		return e.setFilter(command, rest)
	case "amp_env":
		return setEnvelope(command, e.voice.AmpEnvelope(), rest)
	case "filter_env":
		return setEnvelope(command, e.voice.FilterEnvelope(), rest)
	case "lfo":
		return e.setLfo(command, rest)
	case "echo":
		return e.setEcho(command, rest)
	default:
		return invalid(command, "unknown key")
	}
}

func (e *engine) setOsc(command []string, o *synth.Oscillator, args []string) error {
	if len(args) < 2 {
		return invalid(command, "expected a key and a value")
	}
	if args[0] == "mod" {
		return setModulation(command, o.Parameters(), args[1:])
	}
	key, value := args[0], args[1]
	switch key {
	case "waveform":
		w, err := synth.ParseWaveform(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		o.SetWaveform(w)
		return nil
	case "enabled":
		enabled, err := parseBool(value)
		if err != nil {
			return err
		}
		o.SetEnabled(enabled)
		return nil
	case "filtered":
		filtered, err := parseBool(value)
		if err != nil {
			return err
		}
		return e.voice.Mixer().SetFiltered(o.Index(), filtered)
	case "octave", "semitone":
		n, err := parseInt(value)
		if err != nil {
			return err
		}
		if key == "octave" {
			return o.SetOctave(n)
		}
		return o.SetSemitone(n)
	}
	v, err := parseFloat(value)
	if err != nil {
		return err
	}
	switch key {
	case "fine":
		return o.SetFine(v)
	case "level":
		return e.voice.Mixer().SetLevel(o.Index(), v)
	case "gain", "pulse_width", "detune":
		return o.Parameters()[key].SetValue(v)
	default:
		return invalid(command, "unknown oscillator key")
	}
}

func (e *engine) setFilter(command []string, args []string) error {
	if len(args) < 2 {
		return invalid(command, "expected a key and a value")
	}
	f := e.voice.Filter()
	if args[0] == "mod" {
		return setModulation(command, f.Parameters(), args[1:])
	}
	key, value := args[0], args[1]
	if key == "kind" {
		kind, err := synth.ParseFilterKind(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		f.SetKind(kind)
		return nil
	}
	v, err := parseFloat(value)
	if err != nil {
		return err
	}
	switch key {
	case "cutoff":
		return f.Cutoff.SetValue(v)
	case "resonance":
		return f.Resonance.SetValue(v)
	case "env_amount":
		return f.SetEnvelopeAmount(v)
	default:
		return invalid(command, "unknown filter key")
	}
}

// setModulation handles "<param> amount V", "<param> enable L" and "<param> disable L".
func setModulation(command []string, params map[string]*synth.Parameter, args []string) error {
	if len(args) != 3 {
		return invalid(command, "expected a destination, an action and a value")
	}
	p, ok := params[args[0]]
	if !ok || p.ModulationRouter() == nil {
		return invalid(command, "unknown modulation destination")
	}
	r := p.ModulationRouter()
	switch args[1] {
	case "amount":
		amount, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		return r.SetNormalizedModulationAmount(amount)
	case "enable", "disable":
		index, err := parseInt(args[2])
		if err != nil {
			return err
		}
		if args[1] == "enable" {
			return r.EnableLfo(index)
		}
		return r.DisableLfo(index)
	default:
		return invalid(command, "unknown modulation action")
	}
}

func setEnvelope(command []string, env *synth.EnvelopeGenerator, args []string) error {
	if len(args) != 2 {
		return invalid(command, "expected a key and a value")
	}
	value, err := parseFloat(args[1])
	if err != nil {
		return err
	}
	switch args[0] {
	case "attack":
		return env.SetAttackTime(value)
	case "decay":
		return env.SetDecayTime(value)
	case "sustain":
		return env.SetSustainLevel(value)
	case "release":
		return env.SetReleaseTime(value)
	default:
		return invalid(command, "unknown envelope key")
	}
}

func (e *engine) setLfo(command []string, args []string) error {
	if len(args) != 3 {
		return invalid(command, "expected an index, a key and a value")
	}
	index, err := parseInt(args[0])
	if err != nil {
		return err
	}
	source, err := e.pool.Source(index)
	if err != nil {
		return err
	}
	switch args[1] {
	case "freq":
		hz, err := parseFloat(args[2])
		if err != nil {
			return err
		}
		return source.SetFrequency(hz)
	case "wave":
		w, err := synth.ParseWaveform(args[2])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		return source.SetWaveform(w)
	default:
		return invalid(command, "unknown lfo key")
	}
}

func (e *engine) setEcho(command []string, args []string) error {
	if len(args) != 2 {
		return invalid(command, "expected a key and a value")
	}
	if args[0] == "enabled" {
		enabled, err := parseBool(args[1])
		if err != nil {
			return err
		}
		e.echo.setEnabled(enabled)
		return nil
	}
	value, err := parseFloat(args[1])
	if err != nil {
		return err
	}
	switch args[0] {
	case "delay":
		return e.echo.setDelay(value)
	case "feedback":
		return e.echo.setFeedback(value)
	case "mix":
		return e.echo.setMix(value)
	default:
		return invalid(command, "unknown echo key")
	}
}

// seq handles "start", "stop", "root N" and "step I (rest|OFFSET...)".
func (e *engine) seq(command []string, args []string) error {
	if len(args) == 0 {
		return invalid(command, "expected an action")
	}
	switch args[0] {
	case "start":
		e.sequencer.Start()
		return nil
	case "stop":
		e.sequencer.Stop()
		return nil
	case "root":
		if len(args) != 2 {
			return invalid(command, "expected a note")
		}
		note, err := parseInt(args[1])
		if err != nil {
			return err
		}
		return e.voice.SetSequencerRoot(note)
	case "step":
		if len(args) < 3 {
			return invalid(command, "expected an index and offsets")
		}
		index, err := parseInt(args[1])
		if err != nil {
			return err
		}
		if args[2] == "rest" {
			return e.sequencer.SetStep(index, synth.SequencerStep{Rest: true})
		}
		offsets, err := parseOffsets(args[2:])
		if err != nil {
			return err
		}
		if len(offsets) == 1 {
			// one offset moves every oscillator
			for len(offsets) < len(e.voice.Oscillators()) {
				offsets = append(offsets, offsets[0])
			}
		}
		return e.sequencer.SetStep(index, synth.SequencerStep{Offsets: offsets})
	default:
		return invalid(command, "unknown sequencer action")
	}
}

func parseOffsets(args []string) ([]int, error) {
	offsets := make([]int, len(args))
	for i, arg := range args {
		offset, err := parseInt(arg)
		if err != nil {
			return nil, err
		}
		offsets[i] = offset
	}
	return offsets, nil
}
