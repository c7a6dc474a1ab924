package audio

import (
	"fmt"

	"github.com/jinjor/desktop-synth/src/synth"
)

var (
	echoDelayRange    = synth.Range{Min: 10, Max: 2000} // ms
	echoFeedbackRange = synth.Range{Min: 0, Max: 0.95}
	echoMixRange      = synth.Range{Min: 0, Max: 1}
)

// ----- Delay ----- //

type delay struct {
	cursor int
	past   []float64
}

func (d *delay) applyParams(millis float64) {
	if millis < echoDelayRange.Min {
		millis = echoDelayRange.Min
	}
	length := int(sampleRate * millis / 1000)
	if cap(d.past) >= length {
		d.past = d.past[0:length]
	} else {
		d.past = make([]float64, length)
	}
	if d.cursor >= len(d.past) {
		d.cursor = 0
	}
}

func (d *delay) step(in float64) {
	d.past[d.cursor] = in
	d.cursor++
	if d.cursor >= len(d.past) {
		d.cursor = 0
	}
}

func (d *delay) getDelayed() float64 {
	return d.past[d.cursor]
}

// ----- Echo ----- //

type echoJSON struct {
	Enabled  bool    `json:"enabled"`
	Delay    float64 `json:"delay"`
	Feedback float64 `json:"feedback"`
	Mix      float64 `json:"mix"`
}

type echo struct {
	enabled  bool
	delay    *delay
	millis   float64 // ms
	feedback float64 // [0,1)
	mix      float64 // [0,1]
}

func newEcho() *echo {
	e := &echo{
		delay:    &delay{},
		millis:   300,
		feedback: 0.3,
		mix:      0.3,
	}
	e.delay.applyParams(e.millis)
	return e
}

func (e *echo) setEnabled(enabled bool) {
	if enabled && !e.enabled {
		clear(e.delay.past)
	}
	e.enabled = enabled
}

func (e *echo) setDelay(millis float64) error {
	if !echoDelayRange.Contains(millis) {
		return outOfBounds("echo delay", millis, echoDelayRange)
	}
	e.millis = millis
	e.delay.applyParams(millis)
	return nil
}

func (e *echo) setFeedback(gain float64) error {
	if !echoFeedbackRange.Contains(gain) {
		return outOfBounds("echo feedback", gain, echoFeedbackRange)
	}
	e.feedback = gain
	return nil
}

func (e *echo) setMix(mix float64) error {
	if !echoMixRange.Contains(mix) {
		return outOfBounds("echo mix", mix, echoMixRange)
	}
	e.mix = mix
	return nil
}

func (e *echo) toJSON() echoJSON {
	return echoJSON{
		Enabled:  e.enabled,
		Delay:    e.millis,
		Feedback: e.feedback,
		Mix:      e.mix,
	}
}

func (e *echo) step(in float64) float64 {
	if !e.enabled {
		return in
	}
	delayed := e.delay.getDelayed()
	e.delay.step(in + delayed*e.feedback)
	return in + delayed*e.mix
}

func outOfBounds(name string, value float64, r synth.Range) error {
	return fmt.Errorf("%w: %s %v not in [%v, %v]", synth.ErrOutOfBounds, name, value, r.Min, r.Max)
}
