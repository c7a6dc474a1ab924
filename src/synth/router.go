package synth

import (
	"fmt"
	"log"
)

// ----- Range Mode ----- //

// RangeMode selects how a normalized amount becomes an absolute one.
type RangeMode int

const (
	// RangeVariable scales the amount by the headroom left between the current value and the limit.
	RangeVariable RangeMode = iota
	// RangeFixed scales the amount by a constant range, falling back to RangeVariable
	// when that range would overshoot the limit.
	RangeFixed
)

// RouterConfig describes the destination a router modulates.
type RouterConfig struct {
	Lower      float64
	Upper      float64
	Current    float64
	Mode       RangeMode
	LowerFixed float64 // used by RangeFixed, positive
	UpperFixed float64 // used by RangeFixed, positive
}

// ----- Modulation Router ----- //

// ModulationRouter merges the enabled modulation sources of one destination into one signal.
// Each enabled source gets an equal share of the absolute modulation amount.
type ModulationRouter struct {
	name             string
	sg               SignalGenerator
	sources          []*ShareableModulationSource
	enabledCount     int
	normalizedAmount float64 // -1 to 1
	absoluteAmount   float64
	mergedAmount     float64
	merged           AudioParam
	lower            float64
	upper            float64
	current          float64
	mode             RangeMode
	lowerFixed       float64
	upperFixed       float64
	rampTime         float64 // sec

	// base values issued ahead of now, by time
	pending []pendingValue
}

type pendingValue struct {
	value float64
	t     float64 // sec
}

// NewModulationRouter wraps every source of pool with its own gate.
// An inverted limit pair is swapped and an out-of-range current value is re-centered.
func NewModulationRouter(sg SignalGenerator, pool *SourcePool, name string, c RouterConfig, limits *Limits) *ModulationRouter {
	if c.Lower > c.Upper {
		log.Printf("[WARN] %s: lower limit %v > upper limit %v, swapped\n", name, c.Lower, c.Upper)
		c.Lower, c.Upper = c.Upper, c.Lower
	}
	if c.Current < c.Lower || c.Current > c.Upper {
		mid := (c.Lower + c.Upper) / 2
		log.Printf("[WARN] %s: current value %v out of [%v, %v], reset to %v\n", name, c.Current, c.Lower, c.Upper, mid)
		c.Current = mid
	}
	r := &ModulationRouter{
		name:       name,
		sg:         sg,
		sources:    make([]*ShareableModulationSource, pool.Len()),
		merged:     sg.Param(name+".mod", 0),
		lower:      c.Lower,
		upper:      c.Upper,
		current:    c.Current,
		mode:       c.Mode,
		lowerFixed: c.LowerFixed,
		upperFixed: c.UpperFixed,
		rampTime:   limits.RouterRampTime,
	}
	for i, source := range pool.sources {
		r.sources[i] = newShareableModulationSource(sg, fmt.Sprintf("%s.lfo%d", name, i), source, limits.CrossfadeTime)
	}
	return r
}

// Name ...
func (r *ModulationRouter) Name() string {
	return r.name
}

// Len is the size of the source pool.
func (r *ModulationRouter) Len() int {
	return len(r.sources)
}

// Limits ...
func (r *ModulationRouter) Limits() (float64, float64) {
	return r.lower, r.upper
}

// EnabledCount ...
func (r *ModulationRouter) EnabledCount() int {
	return r.enabledCount
}

// IsEnabled ...
func (r *ModulationRouter) IsEnabled(index int) bool {
	if index < 0 || index >= len(r.sources) {
		return false
	}
	return r.sources[index].Enabled()
}

// NormalizedAmount ...
func (r *ModulationRouter) NormalizedAmount() float64 {
	return r.normalizedAmount
}

// AbsoluteAmount ...
func (r *ModulationRouter) AbsoluteAmount() float64 {
	r.refresh()
	return r.absoluteAmount
}

// MergedAmount is the gain applied to every enabled source.
func (r *ModulationRouter) MergedAmount() float64 {
	r.refresh()
	return r.mergedAmount
}

// ParameterCurrentValue is the destination's base value in effect now.
func (r *ModulationRouter) ParameterCurrentValue() float64 {
	r.refresh()
	return r.current
}

// EnableLfo ...
func (r *ModulationRouter) EnableLfo(index int) error {
	if index < 0 || index >= len(r.sources) {
		return indexOutOfRange(r.name+" source", index, len(r.sources))
	}
	s := r.sources[index]
	if s.Enabled() {
		return nil
	}
	s.Enable()
	r.enabledCount++
	r.update()
	return nil
}

// DisableLfo ...
func (r *ModulationRouter) DisableLfo(index int) error {
	if index < 0 || index >= len(r.sources) {
		return indexOutOfRange(r.name+" source", index, len(r.sources))
	}
	s := r.sources[index]
	if !s.Enabled() {
		return nil
	}
	s.Disable()
	r.enabledCount--
	r.update()
	return nil
}

// SetNormalizedModulationAmount ...
func (r *ModulationRouter) SetNormalizedModulationAmount(amount float64) error {
	if !(amount >= -1 && amount <= 1) {
		return outOfBounds(r.name+" amount", amount, -1, 1)
	}
	r.normalizedAmount = amount
	r.update()
	return nil
}

// SetParameterCurrentValue must be called whenever the destination's base value changes.
// Base values issued ahead of now are dropped, like the destination's own future points.
func (r *ModulationRouter) SetParameterCurrentValue(value float64) error {
	if err := r.checkCurrent(value); err != nil {
		return err
	}
	r.pending = r.pending[:0]
	r.current = value
	r.update()
	return nil
}

// setParameterCurrentValueAtTime follows a base value change scheduled at t.
// Changes already issued for t or later are replaced.
func (r *ModulationRouter) setParameterCurrentValueAtTime(value float64, t float64) error {
	if err := r.checkCurrent(value); err != nil {
		return err
	}
	if t <= r.sg.Now() {
		return r.SetParameterCurrentValue(value)
	}
	i := 0
	for i < len(r.pending) && r.pending[i].t < t {
		i++
	}
	r.pending = append(r.pending[:i], pendingValue{value: value, t: t})
	r.schedule(r.pending[i])
	return nil
}

func (r *ModulationRouter) checkCurrent(value float64) error {
	if !(value >= r.lower && value <= r.upper) {
		return outOfBounds(r.name+" current value", value, r.lower, r.upper)
	}
	return nil
}

// ValueAt is the merged modulation signal; valid for the sample the pool was last stepped to.
func (r *ModulationRouter) ValueAt(t float64) float64 {
	if r.enabledCount == 0 && r.merged.ValueAt(t) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range r.sources {
		sum += s.ValueAt(t)
	}
	return sum * r.merged.ValueAt(t)
}

func (r *ModulationRouter) update() {
	now := r.sg.Now()
	r.settle(now)
	r.absoluteAmount = r.computeAbsoluteAmount(r.current)
	r.mergedAmount = mergedAmount(r.absoluteAmount, r.enabledCount)
	rampTo(r.merged, now, r.mergedAmount, r.rampTime)
	// the ramp above cancelled them
	for _, p := range r.pending {
		r.schedule(p)
	}
}

// schedule moves the merged amount to the one of a future base value.
func (r *ModulationRouter) schedule(p pendingValue) {
	merged := mergedAmount(r.computeAbsoluteAmount(p.value), r.enabledCount)
	r.merged.CancelAndHoldAtTime(p.t)
	r.merged.LinearRampToValueAtTime(merged, p.t+r.rampTime)
}

// settle takes the base values whose time has come.
func (r *ModulationRouter) settle(now float64) bool {
	n := 0
	for n < len(r.pending) && r.pending[n].t <= now {
		r.current = r.pending[n].value
		n++
	}
	r.pending = r.pending[n:]
	return n > 0
}

// refresh brings the reported amounts up to now; the merged lane already has them.
func (r *ModulationRouter) refresh() {
	if r.settle(r.sg.Now()) {
		r.absoluteAmount = r.computeAbsoluteAmount(r.current)
		r.mergedAmount = mergedAmount(r.absoluteAmount, r.enabledCount)
	}
}

func (r *ModulationRouter) computeAbsoluteAmount(current float64) float64 {
	amount := r.normalizedAmount
	if r.mode == RangeFixed {
		if amount >= 0 {
			candidate := amount * r.upperFixed
			if current+candidate <= r.upper {
				return candidate
			}
		} else {
			candidate := amount * r.lowerFixed
			if current+candidate >= r.lower {
				return candidate
			}
		}
	}
	return variableAmount(amount, current, r.lower, r.upper)
}

// variableAmount lets full modulation reach, but never pass, the limits.
func variableAmount(amount float64, current float64, lower float64, upper float64) float64 {
	if amount >= 0 {
		return amount * (upper - current)
	}
	return amount * (current - lower)
}

func mergedAmount(absolute float64, enabledCount int) float64 {
	if enabledCount == 0 {
		return 0
	}
	return absolute / float64(enabledCount)
}
