package synth

// ----- Signal Generator ----- //

// AudioParam is one automatable destination of the signal generator.
// The core only ever issues the three scheduling primitives;
// ValueAt is there for whoever renders the signal.
type AudioParam interface {
	SetValueAtTime(value float64, t float64)
	LinearRampToValueAtTime(value float64, t float64)
	CancelAndHoldAtTime(t float64)
	ValueAt(t float64) float64
}

// Clock ...
type Clock interface {
	// Now returns the current time of the rendering timeline in seconds.
	Now() float64
}

// SignalGenerator is the rendering side seen from the core:
// one clock and a factory of automation lanes.
type SignalGenerator interface {
	Clock
	Param(name string, initial float64) AudioParam
}

// rampTo replaces everything scheduled from now on with a linear ramp.
func rampTo(p AudioParam, now float64, value float64, duration float64) {
	p.CancelAndHoldAtTime(now)
	if duration <= 0 {
		p.SetValueAtTime(value, now)
		return
	}
	p.LinearRampToValueAtTime(value, now+duration)
}
