package synth

// ----- Envelope Phase ----- //

// Phase ...
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAttack
	PhaseDecay
	PhaseSustain
	PhaseRelease
)

func (p Phase) String() string {
	switch p {
	case PhaseAttack:
		return "attack"
	case PhaseDecay:
		return "decay"
	case PhaseSustain:
		return "sustain"
	case PhaseRelease:
		return "release"
	default:
		return "idle"
	}
}

// ----- Envelope Generator ----- //

/*
  max +     x
      |    / \
      |   /   \
  sus +  /     x------x
      | /              \
      |/                \
  min +-----+---+------+----+---
      |  a  | d |      | r  |
*/

// EnvelopeGenerator schedules an attack-decay-sustain-release trajectory on its output.
//
// Every trigger first cancels whatever is still pending and holds the value the output
// has at that instant, so retriggering never jumps. Duration changes apply to the next trigger.
type EnvelopeGenerator struct {
	name    string
	sg      SignalGenerator
	limits  *Limits
	out     AudioParam
	attack  float64 // sec
	decay   float64 // sec
	sustain float64 // 0-1
	release float64 // sec
	tempo   float64 // bpm

	triggers []trigger // by time
}

// trigger is one scheduled start or release with the bounds of its segments.
type trigger struct {
	release   bool
	at        float64
	attackEnd float64
	decayEnd  float64
	end       float64 // release end
}

// NewEnvelopeGenerator ...
func NewEnvelopeGenerator(sg SignalGenerator, name string, limits *Limits) *EnvelopeGenerator {
	return &EnvelopeGenerator{
		name:    name,
		sg:      sg,
		limits:  limits,
		out:     sg.Param(name, limits.EnvelopeMinLevel),
		attack:  limits.AttackTimeDefault,
		decay:   limits.DecayTimeDefault,
		sustain: limits.SustainLevelDefault,
		release: limits.ReleaseTimeDefault,
		tempo:   limits.TempoDefault,
	}
}

// Name ...
func (e *EnvelopeGenerator) Name() string {
	return e.name
}

// Output is the lane the trajectory is scheduled on.
func (e *EnvelopeGenerator) Output() AudioParam {
	return e.out
}

// AttackTime ...
func (e *EnvelopeGenerator) AttackTime() float64 { return e.attack }

// DecayTime ...
func (e *EnvelopeGenerator) DecayTime() float64 { return e.decay }

// SustainLevel ...
func (e *EnvelopeGenerator) SustainLevel() float64 { return e.sustain }

// ReleaseTime ...
func (e *EnvelopeGenerator) ReleaseTime() float64 { return e.release }

// Tempo ...
func (e *EnvelopeGenerator) Tempo() float64 { return e.tempo }

// SetAttackTime ...
func (e *EnvelopeGenerator) SetAttackTime(sec float64) error {
	if err := checkRange(e.name+" attack", sec, e.limits.AttackTime); err != nil {
		return err
	}
	e.attack = sec
	return nil
}

// SetDecayTime ...
func (e *EnvelopeGenerator) SetDecayTime(sec float64) error {
	if err := checkRange(e.name+" decay", sec, e.limits.DecayTime); err != nil {
		return err
	}
	e.decay = sec
	return nil
}

// SetSustainLevel rejects zero: some interpolations cannot reach it.
func (e *EnvelopeGenerator) SetSustainLevel(level float64) error {
	if err := checkRange(e.name+" sustain", level, e.limits.SustainLevel); err != nil {
		return err
	}
	if level <= 0 {
		return outOfBounds(e.name+" sustain", level, e.limits.SustainLevel.Min, e.limits.SustainLevel.Max)
	}
	e.sustain = level
	return nil
}

// SetReleaseTime ...
func (e *EnvelopeGenerator) SetReleaseTime(sec float64) error {
	if err := checkRange(e.name+" release", sec, e.limits.ReleaseTime); err != nil {
		return err
	}
	e.release = sec
	return nil
}

// SetTempo sets the tempo that StartBeat derives its default length from.
func (e *EnvelopeGenerator) SetTempo(bpm float64) error {
	if err := checkRange(e.name+" tempo", bpm, e.limits.Tempo); err != nil {
		return err
	}
	e.tempo = bpm
	return nil
}

// Start ...
func (e *EnvelopeGenerator) Start() {
	e.StartAtTime(e.sg.Now())
}

// StartAtTime schedules attack and decay from t.
func (e *EnvelopeGenerator) StartAtTime(t float64) {
	e.out.CancelAndHoldAtTime(t)
	tr := trigger{at: t, attackEnd: t + e.attack}
	tr.decayEnd = tr.attackEnd + e.decay
	e.push(tr, func(at float64) bool { return at < t })

	max := e.limits.EnvelopeMaxLevel
	if e.attack > 0 {
		e.out.LinearRampToValueAtTime(max, tr.attackEnd)
	} else {
		e.out.SetValueAtTime(max, t)
	}
	if e.decay > 0 {
		e.out.LinearRampToValueAtTime(e.sustain, tr.decayEnd)
	} else {
		e.out.SetValueAtTime(e.sustain, tr.attackEnd)
	}
}

// Stop ...
func (e *EnvelopeGenerator) Stop() {
	e.StopAtTime(e.sg.Now())
}

// StopAtTime schedules the release from whatever value the output has at t.
func (e *EnvelopeGenerator) StopAtTime(t float64) {
	e.out.CancelAndHoldAtTime(t)
	tr := trigger{release: true, at: t, end: t + e.release}
	e.push(tr, func(at float64) bool { return at <= t })

	min := e.limits.EnvelopeMinLevel
	if e.release > 0 {
		e.out.LinearRampToValueAtTime(min, tr.end)
	} else {
		e.out.SetValueAtTime(min, t)
	}
}

// StartBeat plays a note of fixed length starting now.
// A non-positive duration falls back to one beat at the current tempo.
func (e *EnvelopeGenerator) StartBeat(duration float64) {
	e.StartBeatAtTime(e.sg.Now(), duration)
}

// StartBeatAtTime ...
func (e *EnvelopeGenerator) StartBeatAtTime(t float64, duration float64) {
	duration = e.beatDuration(duration)
	e.StartAtTime(t)
	e.StopAtTime(t + duration)
}

func (e *EnvelopeGenerator) beatDuration(duration float64) float64 {
	if duration > 0 {
		return duration
	}
	return e.limits.BeatDuration(e.tempo)
}

// CurrentOutput is the value scheduled for now.
func (e *EnvelopeGenerator) CurrentOutput() float64 {
	return e.ValueAt(e.sg.Now())
}

// ValueAt reads the output lane at t.
func (e *EnvelopeGenerator) ValueAt(t float64) float64 {
	return e.out.ValueAt(t)
}

// push drops the triggers the output lane no longer holds and appends tr.
// keep reports whether a trigger at the given time survives.
func (e *EnvelopeGenerator) push(tr trigger, keep func(at float64) bool) {
	n := 0
	for n < len(e.triggers) && keep(e.triggers[n].at) {
		n++
	}
	e.triggers = append(e.triggers[:n], tr)

	// only the trigger in effect now and those after it are still needed
	now := e.sg.Now()
	first := 0
	for i, x := range e.triggers {
		if x.at <= now {
			first = i
		}
	}
	// keep one start before the latest release for PhaseTimestamps
	if first > 0 && e.triggers[first].release && !e.triggers[first-1].release {
		first--
	}
	e.triggers = e.triggers[first:]
}

// governing returns the latest trigger at or before t.
func (e *EnvelopeGenerator) governing(t float64) (trigger, bool) {
	for i := len(e.triggers) - 1; i >= 0; i-- {
		if e.triggers[i].at <= t {
			return e.triggers[i], true
		}
	}
	return trigger{}, false
}

// Phase reports where the trajectory is at t.
func (e *EnvelopeGenerator) Phase(t float64) Phase {
	tr, ok := e.governing(t)
	switch {
	case !ok:
		return PhaseIdle
	case tr.release && t < tr.end:
		return PhaseRelease
	case tr.release:
		return PhaseIdle
	case t < tr.attackEnd:
		return PhaseAttack
	case t < tr.decayEnd:
		return PhaseDecay
	default:
		return PhaseSustain
	}
}

// PhaseTimestamps returns attack start, attack end, decay end, release start and release end
// of the latest start and release scheduled.
func (e *EnvelopeGenerator) PhaseTimestamps() (float64, float64, float64, float64, float64) {
	var start, release trigger
	for _, tr := range e.triggers {
		if tr.release {
			release = tr
		} else {
			start = tr
		}
	}
	return start.at, start.attackEnd, start.decayEnd, release.at, release.end
}
