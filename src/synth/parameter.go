package synth

// ----- Modulatable Parameter ----- //

// ModulatableParameter is a destination with a base value and an optional modulation router.
type ModulatableParameter interface {
	Value() float64
	SetValue(value float64) error
	ModulationRouter() *ModulationRouter
}

var _ ModulatableParameter = (*Parameter)(nil)

// Parameter is a base value lane plus the router that modulates around it.
type Parameter struct {
	name     string
	sg       SignalGenerator
	base     AudioParam
	value    float64
	bounds   Range
	rampTime float64 // sec
	router   *ModulationRouter
}

func newParameter(sg SignalGenerator, name string, value float64, bounds Range, rampTime float64) *Parameter {
	return &Parameter{
		name:     name,
		sg:       sg,
		base:     sg.Param(name, value),
		value:    value,
		bounds:   bounds,
		rampTime: rampTime,
	}
}

func newModulatedParameter(sg SignalGenerator, pool *SourcePool, name string, value float64, bounds Range, limits *Limits, mode RangeMode, fixed float64) *Parameter {
	p := newParameter(sg, name, value, bounds, limits.ParameterRampTime)
	p.router = NewModulationRouter(sg, pool, name, RouterConfig{
		Lower:      bounds.Min,
		Upper:      bounds.Max,
		Current:    value,
		Mode:       mode,
		LowerFixed: fixed,
		UpperFixed: fixed,
	}, limits)
	return p
}

// Name ...
func (p *Parameter) Name() string {
	return p.name
}

// Bounds ...
func (p *Parameter) Bounds() Range {
	return p.bounds
}

// Value ...
func (p *Parameter) Value() float64 {
	return p.value
}

// ModulationRouter is nil for parameters that cannot be modulated.
func (p *Parameter) ModulationRouter() *ModulationRouter {
	return p.router
}

// SetValue ramps the base value over a short window.
func (p *Parameter) SetValue(value float64) error {
	return p.rampValue(value, p.rampTime)
}

func (p *Parameter) rampValue(value float64, duration float64) error {
	if err := checkRange(p.name, value, p.bounds); err != nil {
		return err
	}
	rampTo(p.base, p.sg.Now(), value, duration)
	p.commit(value)
	return nil
}

// setValueAtTime jumps at a future time, used by pre-timed playback.
// Whatever was scheduled after t is dropped.
func (p *Parameter) setValueAtTime(value float64, t float64) error {
	if err := checkRange(p.name, value, p.bounds); err != nil {
		return err
	}
	p.base.CancelAndHoldAtTime(t)
	p.base.SetValueAtTime(value, t)
	p.value = value
	if p.router != nil {
		// the headroom follows the base value when it actually changes
		_ = p.router.setParameterCurrentValueAtTime(value, t)
	}
	return nil
}

func (p *Parameter) commit(value float64) {
	p.value = value
	if p.router != nil {
		// value is inside bounds and the router shares them
		_ = p.router.SetParameterCurrentValue(value)
	}
}

// ValueAt is the base value plus modulation, kept inside bounds.
func (p *Parameter) ValueAt(t float64) float64 {
	v := p.base.ValueAt(t)
	if p.router != nil {
		v += p.router.ValueAt(t)
	}
	return p.bounds.Clamp(v)
}
