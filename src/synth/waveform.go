package synth

import "fmt"

// ----- Waveform ----- //

// Waveform is the shape of an oscillator or a modulation source.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WavePulse
	WaveSaw
	WaveSawRev
	WaveNoise
)

var waveformNames = []string{
	WaveSine:     "sine",
	WaveTriangle: "triangle",
	WaveSquare:   "square",
	WavePulse:    "pulse",
	WaveSaw:      "saw",
	WaveSawRev:   "saw-rev",
	WaveNoise:    "noise",
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return "unknown"
	}
	return waveformNames[w]
}

// ParseWaveform ...
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if name == s {
			return Waveform(i), nil
		}
	}
	return WaveSine, fmt.Errorf("unknown waveform %q", s)
}

// lfoShapes are the shapes a modulation source can take.
var lfoShapes = map[Waveform]bool{
	WaveSine:     true,
	WaveTriangle: true,
	WaveSquare:   true,
	WaveSaw:      true,
}
