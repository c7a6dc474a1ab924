package audio

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"
	"github.com/jinjor/desktop-synth/src/automation"
	"github.com/jinjor/desktop-synth/src/synth"
)

// samples between two filter coefficient updates
const filterUpdateInterval = 16

// final attenuation so that two full-level oscillators with resonance do not clip
const outputGain = 0.3

// ----- Engine ----- //

// engine renders the synth voice and is the signal generator the voice schedules on.
// Every exported entry point of Audio locks it.
type engine struct {
	sync.Mutex
	limits    *synth.Limits
	pool      *synth.SourcePool
	voice     *synth.Voice
	sequencer *synth.Sequencer
	params    map[string]*automation.Param
	oscs      []*osc
	filter    *biquad
	echo      *echo
	presets   *presetManager
	pos       int64   // samples rendered so far
	lastRead  float64 // wall clock of the last Read
	clock     func() float64
	peak      float64

	// per-block buffers
	oscBufs   [][]float64
	levelBufs [][]float64
	filtered  []float64
	dry       []float64
	cutoffs   []float64
	qs        []float64
	gains     []float64
}

var _ synth.SignalGenerator = (*engine)(nil)

func newEngine(limits *synth.Limits, presets *presetManager) *engine {
	e := &engine{
		limits:  limits,
		params:  make(map[string]*automation.Param),
		filter:  &biquad{c: passThrough},
		echo:    newEcho(),
		presets: presets,
		clock:   now,
	}
	e.pool = synth.NewDefaultSourcePool(e, limits)
	e.voice = synth.NewVoice(e, e.pool, limits)
	e.sequencer = synth.NewSequencer(e.voice)
	e.oscs = make([]*osc, len(e.voice.Oscillators()))
	for i := range e.oscs {
		e.oscs[i] = newOsc()
	}
	e.ensure(samplesPerCycle)
	return e
}

// Now is the time new events get scheduled at: the end of what has been rendered, plus the
// wall time since the last buffer was handed over, plus one buffer so the event is not already
// in the past by the time the next buffer is rendered.
func (e *engine) Now() float64 {
	elapsed := 0.0
	if e.lastRead > 0 {
		elapsed = math.Max(0, math.Min(e.clock()-e.lastRead, responseDelay))
	}
	return float64(e.pos)*secPerSample + elapsed + responseDelay
}

// Param creates the automation lane of one destination.
func (e *engine) Param(name string, initial float64) synth.AudioParam {
	p := automation.NewParam(name, initial)
	e.params[name] = p
	return p
}

func (e *engine) ensure(n int) {
	if len(e.filtered) >= n {
		return
	}
	e.oscBufs = make([][]float64, len(e.oscs))
	e.levelBufs = make([][]float64, len(e.oscs))
	for i := range e.oscs {
		e.oscBufs[i] = make([]float64, n)
		e.levelBufs[i] = make([]float64, n)
	}
	e.filtered = make([]float64, n)
	e.dry = make([]float64, n)
	e.cutoffs = make([]float64, n)
	e.qs = make([]float64, n)
	e.gains = make([]float64, n)
}

func (e *engine) render(out []float64) {
	n := len(out)
	e.ensure(n)
	oscillators := e.voice.Oscillators()
	mixer := e.voice.Mixer()
	filter := e.voice.Filter()
	amp := e.voice.AmpEnvelope().Output()
	mainGain := e.voice.MainGain()

	for i := 0; i < n; i++ {
		t := float64(e.pos+int64(i)) * secPerSample
		e.pool.Step(t, sampleRate)
		for k, o := range oscillators {
			if !o.Enabled() {
				e.oscBufs[k][i] = 0
				continue
			}
			level, _ := mixer.Level(k)
			e.oscBufs[k][i] = e.oscs[k].step(o, t)
			e.levelBufs[k][i] = level.ValueAt(t)
		}
		e.cutoffs[i] = filter.CutoffAt(t)
		e.qs[i] = filter.Resonance.ValueAt(t)
		e.gains[i] = amp.ValueAt(t) * mainGain.ValueAt(t)
	}

	filtered := e.filtered[:n]
	dry := e.dry[:n]
	clear(filtered)
	clear(dry)
	for k, o := range oscillators {
		if !o.Enabled() {
			continue
		}
		dst := dry
		if mixer.Filtered(k) {
			dst = filtered
		}
		vecmath.MulAddBlock(dst, e.oscBufs[k][:n], e.levelBufs[k][:n], dst)
	}
	for i := 0; i < n; i++ {
		if i%filterUpdateInterval == 0 {
			e.filter.setParams(filter.Kind(), e.cutoffs[i], e.qs[i])
		}
		filtered[i] = e.filter.process(filtered[i])
	}
	vecmath.AddBlock(out, filtered, dry)
	vecmath.MulBlockInPlace(out, e.gains[:n])
	for i := 0; i < n; i++ {
		out[i] = e.echo.step(out[i])
	}
	vecmath.ScaleBlockInPlace(out, outputGain)
	e.peak = vecmath.MaxAbs(out)

	e.pos += int64(n)
	e.prune(float64(e.pos) * secPerSample)
}

// prune drops automation points older than t; nothing is ever scheduled before the render position.
func (e *engine) prune(t float64) {
	for _, p := range e.params {
		p.Prune(t)
	}
}
