package synth

import "fmt"

// ----- Filter Kind ----- //

// FilterKind ...
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterLowpass
	FilterHighpass
	FilterBandpass
	FilterNotch
)

var filterKindNames = []string{
	FilterNone:     "none",
	FilterLowpass:  "lowpass",
	FilterHighpass: "highpass",
	FilterBandpass: "bandpass",
	FilterNotch:    "notch",
}

func (k FilterKind) String() string {
	if k < 0 || int(k) >= len(filterKindNames) {
		return "unknown"
	}
	return filterKindNames[k]
}

// ParseFilterKind ...
func ParseFilterKind(s string) (FilterKind, error) {
	for i, name := range filterKindNames {
		if name == s {
			return FilterKind(i), nil
		}
	}
	return FilterNone, fmt.Errorf("unknown filter kind %q", s)
}

// ----- Filter ----- //

// Filter is the parameter block of the voice filter.
// The envelope amount is normalized and converted against the cutoff's headroom.
type Filter struct {
	kind           FilterKind
	limits         *Limits
	Cutoff         *Parameter
	Resonance      *Parameter
	envelope       *EnvelopeGenerator
	envelopeAmount float64 // -1 to 1
}

func newFilter(sg SignalGenerator, pool *SourcePool, envelope *EnvelopeGenerator, limits *Limits) *Filter {
	return &Filter{
		kind:      FilterLowpass,
		limits:    limits,
		Cutoff:    newModulatedParameter(sg, pool, "filter.cutoff", limits.FilterCutoffDefault, limits.FilterCutoff, limits, RangeVariable, 0),
		Resonance: newModulatedParameter(sg, pool, "filter.resonance", limits.FilterResonanceDefault, limits.FilterResonance, limits, RangeVariable, 0),
		envelope:  envelope,
	}
}

// Parameters lists the modulatable parameters by their command name.
func (f *Filter) Parameters() map[string]*Parameter {
	return map[string]*Parameter{
		"cutoff":    f.Cutoff,
		"resonance": f.Resonance,
	}
}

// Kind ...
func (f *Filter) Kind() FilterKind {
	return f.kind
}

// SetKind ...
func (f *Filter) SetKind(kind FilterKind) {
	f.kind = kind
}

// EnvelopeAmount ...
func (f *Filter) EnvelopeAmount() float64 {
	return f.envelopeAmount
}

// SetEnvelopeAmount ...
func (f *Filter) SetEnvelopeAmount(amount float64) error {
	if err := checkRange("filter envelope amount", amount, f.limits.FilterEnvelopeAmount); err != nil {
		return err
	}
	f.envelopeAmount = amount
	return nil
}

// EnvelopeDepth is the cutoff shift in Hz at full envelope output.
func (f *Filter) EnvelopeDepth() float64 {
	b := f.Cutoff.Bounds()
	return variableAmount(f.envelopeAmount, f.Cutoff.Value(), b.Min, b.Max)
}

// CutoffAt is the modulated cutoff including the filter envelope.
func (f *Filter) CutoffAt(t float64) float64 {
	v := f.Cutoff.ValueAt(t) + f.EnvelopeDepth()*f.envelope.Output().ValueAt(t)
	return f.Cutoff.Bounds().Clamp(v)
}
