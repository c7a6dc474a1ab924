package synth

import "testing"

func TestSourceFrequency(t *testing.T) {
	g := newTestGenerator()
	limits := DefaultLimits()
	s := NewModulationSource(g, "lfo0", limits)
	g.now = 1

	expectNoError(t, s.SetFrequency(5))
	expectNearlyEqual(t, s.Frequency(), 5)
	expectNearlyEqual(t, g.valueAt("lfo0.freq", 1), limits.LfoFrequencyDefault)
	expectNearlyEqual(t, g.valueAt("lfo0.freq", 1+limits.LfoFrequencyRamp), 5)

	expectError(t, s.SetFrequency(limits.LfoFrequency.Max+1), ErrOutOfBounds)
	expectError(t, s.SetFrequency(-1), ErrOutOfBounds)
	expectNearlyEqual(t, s.Frequency(), 5)
	expectNearlyEqual(t, g.valueAt("lfo0.freq", 10), 5)
}

func TestSourceIsUnipolar(t *testing.T) {
	g := newTestGenerator()
	limits := DefaultLimits()
	for _, shape := range []Waveform{WaveSine, WaveTriangle, WaveSquare, WaveSaw} {
		s := NewModulationSource(g, "lfo", limits)
		expectNoError(t, s.SetWaveform(shape))
		expectNoError(t, s.SetFrequency(limits.LfoFrequency.Max))
		for i := 0; i < 10000; i++ {
			v := s.Step(float64(i)/1000, 1000)
			if v < 0 || v > 1 {
				t.Fatalf("%v: value %v out of [0, 1]", shape, v)
			}
		}
	}
}

func TestSourceRejectsAudioShapes(t *testing.T) {
	s := NewModulationSource(newTestGenerator(), "lfo", DefaultLimits())
	expectError(t, s.SetWaveform(WaveNoise), ErrOutOfBounds)
	expectEqual(t, s.Waveform(), WaveSine)
}

func TestSourcePool(t *testing.T) {
	g := newTestGenerator()
	pool := NewDefaultSourcePool(g, DefaultLimits())
	expectEqual(t, pool.Len(), 3)
	s, err := pool.Source(2)
	expectNoError(t, err)
	expectEqual(t, s.Name(), "lfo2")
	_, err = pool.Source(3)
	expectError(t, err, ErrIndexOutOfRange)
	_, err = pool.Source(-1)
	expectError(t, err, ErrIndexOutOfRange)
}

func TestShareableDisableKeepsSourceRunning(t *testing.T) {
	g := newTestGenerator()
	limits := DefaultLimits()
	source := NewModulationSource(g, "lfo0", limits)
	expectNoError(t, source.SetWaveform(WaveSaw))
	a := newShareableModulationSource(g, "a", source, limits.CrossfadeTime)
	b := newShareableModulationSource(g, "b", source, limits.CrossfadeTime)
	a.Enable()
	b.Enable()
	g.now = 1
	b.Disable()
	expectEqual(t, a.Enabled(), true)
	expectEqual(t, b.Enabled(), false)

	sampleRate := 100.0
	for i := 0; i < 130; i++ {
		source.Step(float64(i)/sampleRate, sampleRate)
	}
	// sawtooth kept advancing while b was muted
	if source.Value() <= 0 {
		t.Errorf("expected source to keep running, but got: %v", source.Value())
	}
	expectNearlyEqual(t, a.ValueAt(2), source.Value())
	expectNearlyEqual(t, b.ValueAt(2), 0)
	expectNearlyEqual(t, g.valueAt("b.gate", 1+limits.CrossfadeTime/2), 0.5)
}
