package synth

// ----- Shareable Modulation Source ----- //

// ShareableModulationSource gates one ModulationSource for one destination.
// Disabling only mutes the gate; the source keeps running for everyone else.
type ShareableModulationSource struct {
	source  *ModulationSource
	sg      SignalGenerator
	gate    AudioParam
	enabled bool
	fade    float64 // sec
}

func newShareableModulationSource(sg SignalGenerator, name string, source *ModulationSource, fade float64) *ShareableModulationSource {
	return &ShareableModulationSource{
		source: source,
		sg:     sg,
		gate:   sg.Param(name+".gate", 0),
		fade:   fade,
	}
}

// Source ...
func (s *ShareableModulationSource) Source() *ModulationSource {
	return s.source
}

// Enabled ...
func (s *ShareableModulationSource) Enabled() bool {
	return s.enabled
}

// Enable fades the gate in.
func (s *ShareableModulationSource) Enable() {
	rampTo(s.gate, s.sg.Now(), 1, s.fade)
	s.enabled = true
}

// Disable fades the gate out.
func (s *ShareableModulationSource) Disable() {
	rampTo(s.gate, s.sg.Now(), 0, s.fade)
	s.enabled = false
}

// ValueAt is the gated source output; only meaningful for the sample last stepped.
func (s *ShareableModulationSource) ValueAt(t float64) float64 {
	return s.gate.ValueAt(t) * s.source.Value()
}
