package audio

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-vecmath"
	"github.com/jinjor/desktop-synth/src/synth"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func expectError(t *testing.T, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("expected %v, but got: %v", target, err)
	}
}

func newTestEngine() *engine {
	e := newEngine(synth.DefaultLimits(), nil)
	e.clock = func() float64 { return 100 }
	return e
}

func renderSeconds(e *engine, sec float64) float64 {
	out := make([]float64, samplesPerCycle)
	peak := 0.0
	for n := 0; n < int(sec*sampleRate/samplesPerCycle); n++ {
		e.render(out)
		peak = math.Max(peak, vecmath.MaxAbs(out))
	}
	return peak
}

func TestEngineClock(t *testing.T) {
	e := newTestEngine()
	expectNearlyEqual(t, e.Now(), responseDelay)
	e.render(make([]float64, samplesPerCycle))
	expectNearlyEqual(t, e.Now(), 2*responseDelay)

	e.lastRead = 99.999
	expectNearlyEqual(t, e.Now(), 2*responseDelay+0.001)
	// a stalled output does not push events further away than one buffer
	e.lastRead = 90
	expectNearlyEqual(t, e.Now(), 3*responseDelay)
}

func TestSilentUntilNoteOn(t *testing.T) {
	e := newTestEngine()
	expectEqual(t, renderSeconds(e, 0.1), 0.0)
	expectNoError(t, e.update([]string{"note_on", "60"}))
	if peak := renderSeconds(e, 0.2); peak <= 0.01 {
		t.Errorf("expected sound after note on, but got peak %v", peak)
	}
	expectEqual(t, e.peak > 0, true)
	expectNoError(t, e.update([]string{"note_off", "60"}))
	renderSeconds(e, e.voice.AmpEnvelope().ReleaseTime()+0.1)
	expectEqual(t, renderSeconds(e, 0.1), 0.0)
}

func TestMainGainScalesOutput(t *testing.T) {
	peakWith := func(gain string) float64 {
		e := newTestEngine()
		e.oscs[0].phases = [2]float64{0, 0}
		expectNoError(t, e.update([]string{"set", "osc", "0", "waveform", "square"}))
		expectNoError(t, e.update([]string{"set", "filter", "kind", "none"}))
		expectNoError(t, e.update([]string{"set", "main_gain", gain}))
		renderSeconds(e, 0.1)
		expectNoError(t, e.update([]string{"note_on", "69"}))
		return renderSeconds(e, 0.5)
	}
	full := peakWith("1")
	half := peakWith("0.5")
	expectNearlyEqual(t, full, outputGain*synth.DefaultLimits().MixerLevelDefault)
	expectNearlyEqual(t, half, full/2)
	expectEqual(t, peakWith("0"), 0.0)
}

func TestPruneKeepsTimelinesShort(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 50; i++ {
		expectNoError(t, e.update([]string{"note_on", fmt.Sprint(60 + i%12)}))
		e.render(make([]float64, samplesPerCycle))
		expectNoError(t, e.update([]string{"note_off", fmt.Sprint(60 + i%12)}))
		e.render(make([]float64, samplesPerCycle))
	}
	renderSeconds(e, 2)
	for name, p := range e.params {
		if p.Len() > 4 {
			t.Errorf("%s still has %d points", name, p.Len())
		}
	}
}

func TestSequencerPlaysThroughEngine(t *testing.T) {
	e := newTestEngine()
	expectNoError(t, e.update([]string{"set", "tempo", "240"}))
	expectNoError(t, e.update([]string{"seq", "step", "1", "rest"}))
	expectNoError(t, e.update([]string{"seq", "start"}))
	issued := e.sequencer.Advance(e.Now() + 0.1)
	expectEqual(t, issued, 2)
	if peak := renderSeconds(e, 0.2); peak <= 0.01 {
		t.Errorf("expected sound from the sequencer, but got peak %v", peak)
	}
}

func TestWriteBuffer(t *testing.T) {
	buf := make([]byte, 3*bytesPerSample)
	writeBuffer([]float64{0, 1, -2}, buf, 0)
	writeBuffer([]float64{0.5, 0, 0}, buf, 1)
	expectEqual(t, int16(uint16(buf[0])|uint16(buf[1])<<8), int16(0))
	expectEqual(t, int16(uint16(buf[2])|uint16(buf[3])<<8), int16(16383))
	expectEqual(t, int16(uint16(buf[4])|uint16(buf[5])<<8), int16(32767))
	expectEqual(t, int16(uint16(buf[8])|uint16(buf[9])<<8), int16(-32767))
}

func TestAudioReadWithoutDevice(t *testing.T) {
	a := newAudio(synth.DefaultLimits(), "")
	a.engine.clock = func() float64 { return 100 }
	expectNoError(t, a.Update([]string{"note_on", "64"}))
	buf := make([]byte, bufferSizeInBytes)
	for i := 0; i < 10; i++ {
		n, err := a.Read(buf)
		expectNoError(t, err)
		expectEqual(t, n, bufferSizeInBytes)
	}
	expectEqual(t, a.engine.pos, int64(10*samplesPerCycle))
	expectNearlyEqual(t, a.engine.lastRead, 100)
	amp, filter, peak := a.Levels()
	expectNearlyEqual(t, amp, filter)
	expectEqual(t, peak > 0, true)

	a.AddMidiEvent([]byte{0x80, 64, 0})
	expectEqual(t, len(a.engine.voice.HeldKeys()), 0)
	a.AddMidiEvent([]byte{0x90, 62, 100})
	expectEqual(t, a.engine.voice.Note(), 62)
	a.AddMidiEvent([]byte{0x90, 62, 0})
	expectEqual(t, len(a.engine.voice.HeldKeys()), 0)
	a.AddMidiEvent([]byte{0xB0, 1, 64})
	expectNoError(t, a.Close())
}

func BenchmarkRender(b *testing.B) {
	e := newEngine(synth.DefaultLimits(), nil)
	for _, command := range [][]string{
		{"set", "osc", "1", "enabled", "true"},
		{"set", "osc", "0", "mod", "freq", "enable", "0"},
		{"set", "osc", "1", "mod", "pulse_width", "enable", "1"},
		{"set", "filter", "mod", "cutoff", "enable", "2"},
		{"set", "echo", "enabled", "true"},
		{"note_on", "60"},
	} {
		if err := e.update(command); err != nil {
			b.Fatal(err)
		}
	}
	out := make([]float64, samplesPerCycle)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		e.render(out)
	}
}
