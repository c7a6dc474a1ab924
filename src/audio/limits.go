package audio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jinjor/desktop-synth/src/synth"
)

// LoadLimits reads a JSON override of the default limits.
// Fields missing from the file keep their default value.
func LoadLimits(path string) (*synth.Limits, error) {
	limits := synth.DefaultLimits()
	if path == "" {
		return limits, nil
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bytes, limits); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := checkLimits(limits); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return limits, nil
}

func checkLimits(l *synth.Limits) error {
	if l.SourceCount < 0 || l.OscillatorCount < 1 {
		return fmt.Errorf("need at least one oscillator and no negative source count")
	}
	if l.SequencerStepCount < 1 || l.SequencerStepsPerBeat < 1 {
		return fmt.Errorf("sequencer needs at least one step")
	}
	if l.SustainLevel.Min <= 0 {
		return fmt.Errorf("sustain level must stay above zero")
	}
	if l.OscFrequency.Max >= sampleRate/2 {
		return fmt.Errorf("oscillator frequency must stay below %v Hz", sampleRate/2)
	}
	ranges := map[string]synth.Range{
		"lfoFrequency":    l.LfoFrequency,
		"oscFrequency":    l.OscFrequency,
		"filterCutoff":    l.FilterCutoff,
		"filterResonance": l.FilterResonance,
		"mainGain":        l.MainGain,
		"tempo":           l.Tempo,
		"note":            l.Note,
	}
	for name, r := range ranges {
		if r.Min > r.Max {
			return fmt.Errorf("%s: min %v > max %v", name, r.Min, r.Max)
		}
	}
	if l.Tempo.Min <= 0 {
		return fmt.Errorf("tempo must be positive")
	}
	return nil
}
