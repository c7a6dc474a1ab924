package automation

import (
	"sort"
)

// ----- Event Kind ----- //

const (
	eventSet = iota
	eventLinearRamp
)

type event struct {
	kind  int
	time  float64 // sec
	value float64
}

// ----- Param ----- //

// Param is a timeline of scheduled values for one destination parameter.
//
// Values between a point and a following linear-ramp point are interpolated linearly.
// A ramp always starts from the previous point, so there is always at least one point
// (the initial value at time 0).
type Param struct {
	name   string
	events []event
}

// NewParam ...
func NewParam(name string, initial float64) *Param {
	return &Param{
		name:   name,
		events: []event{{kind: eventSet, time: 0, value: initial}},
	}
}

// Name ...
func (p *Param) Name() string {
	return p.name
}

// Len returns the number of scheduled points.
func (p *Param) Len() int {
	return len(p.events)
}

// SetValueAtTime jumps to value at time t.
func (p *Param) SetValueAtTime(value float64, t float64) {
	p.insert(event{kind: eventSet, time: t, value: value})
}

// LinearRampToValueAtTime ramps from the previous point so that value is reached at time t.
func (p *Param) LinearRampToValueAtTime(value float64, t float64) {
	p.insert(event{kind: eventLinearRamp, time: t, value: value})
}

// CancelAndHoldAtTime drops every point after t and holds the value the timeline had at t.
func (p *Param) CancelAndHoldAtTime(t float64) {
	held := p.ValueAt(t)
	i := p.firstAfter(t)
	spanning := i < len(p.events) && p.events[i].kind == eventLinearRamp
	p.events = p.events[:i]
	if spanning {
		// the ramp that was in flight ends at t instead
		p.events = append(p.events, event{kind: eventLinearRamp, time: t, value: held})
	} else {
		p.events = append(p.events, event{kind: eventSet, time: t, value: held})
	}
}

// ValueAt evaluates the timeline at time t.
func (p *Param) ValueAt(t float64) float64 {
	i := p.firstAfter(t)
	if i == 0 {
		return p.events[0].value
	}
	prev := p.events[i-1]
	if i < len(p.events) {
		next := p.events[i]
		if next.kind == eventLinearRamp {
			return interpolate(prev, next, t)
		}
	}
	return prev.value
}

// Prune forgets points that can no longer affect values at or after t.
func (p *Param) Prune(t float64) {
	i := p.firstAfter(t)
	if i <= 1 {
		return
	}
	anchor := p.events[i-1]
	anchor.kind = eventSet
	n := copy(p.events, p.events[i-1:])
	p.events = p.events[:n]
	p.events[0] = anchor
}

func (p *Param) insert(e event) {
	i := p.firstAfter(e.time)
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

// index of the first point scheduled strictly after t
func (p *Param) firstAfter(t float64) int {
	return sort.Search(len(p.events), func(i int) bool {
		return p.events[i].time > t
	})
}

func interpolate(from event, to event, t float64) float64 {
	duration := to.time - from.time
	if duration <= 0 {
		return to.value
	}
	pos := (t - from.time) / duration
	return pos*to.value + (1-pos)*from.value
}
