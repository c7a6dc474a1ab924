package synth

import "testing"

func newTestEnvelope() (*testGenerator, *EnvelopeGenerator) {
	g := newTestGenerator()
	return g, NewEnvelopeGenerator(g, "env", DefaultLimits())
}

func expectMatchesSchedule(t *testing.T, g *testGenerator, e *EnvelopeGenerator, from float64, to float64) {
	t.Helper()
	for x := from; x <= to; x += 0.001 {
		expectNearlyEqual(t, e.ValueAt(x), g.valueAt("env", x))
	}
}

func TestEnvelopeSetters(t *testing.T) {
	_, e := newTestEnvelope()
	expectNoError(t, e.SetAttackTime(0.5))
	expectNoError(t, e.SetDecayTime(0))
	expectNoError(t, e.SetSustainLevel(0.3))
	expectNoError(t, e.SetReleaseTime(10))
	expectNoError(t, e.SetTempo(90))
	expectEqual(t, e.AttackTime(), 0.5)
	expectEqual(t, e.DecayTime(), 0.0)
	expectEqual(t, e.SustainLevel(), 0.3)
	expectEqual(t, e.ReleaseTime(), 10.0)
	expectEqual(t, e.Tempo(), 90.0)

	expectError(t, e.SetAttackTime(-1), ErrOutOfBounds)
	expectError(t, e.SetDecayTime(10.5), ErrOutOfBounds)
	expectError(t, e.SetSustainLevel(0), ErrOutOfBounds)
	expectError(t, e.SetSustainLevel(1.2), ErrOutOfBounds)
	expectError(t, e.SetReleaseTime(-0.1), ErrOutOfBounds)
	expectError(t, e.SetTempo(0), ErrOutOfBounds)
	expectEqual(t, e.AttackTime(), 0.5)
	expectEqual(t, e.DecayTime(), 0.0)
	expectEqual(t, e.SustainLevel(), 0.3)
	expectEqual(t, e.ReleaseTime(), 10.0)
	expectEqual(t, e.Tempo(), 90.0)
}

func TestEnvelopeIdle(t *testing.T) {
	g, e := newTestEnvelope()
	expectNearlyEqual(t, e.CurrentOutput(), 0)
	expectEqual(t, e.Phase(0), PhaseIdle)
	e.Stop()
	expectNearlyEqual(t, g.valueAt("env", 1), 0)
	expectEqual(t, e.Phase(2), PhaseIdle)
}

func TestEnvelopeSchedule(t *testing.T) {
	g, e := newTestEnvelope()
	e.Start()
	expectNearlyEqual(t, g.valueAt("env", 0), 0)
	expectNearlyEqual(t, g.valueAt("env", 0.005), 0.5)
	expectNearlyEqual(t, g.valueAt("env", 0.01), 1)
	expectNearlyEqual(t, g.valueAt("env", 0.16), 0.9)
	expectNearlyEqual(t, g.valueAt("env", 0.31), 0.8)
	expectNearlyEqual(t, g.valueAt("env", 5), 0.8)

	g.now = 0.05
	e.Stop()
	expectNearlyEqual(t, g.valueAt("env", 0.05), 0.973333)
	expectNearlyEqual(t, g.valueAt("env", 0.55), 0.486667)
	expectNearlyEqual(t, g.valueAt("env", 1.05), 0)
	expectNearlyEqual(t, g.valueAt("env", 3), 0)
	expectMatchesSchedule(t, g, e, 0, 2)
}

func TestEnvelopeStopDuringAttack(t *testing.T) {
	g, e := newTestEnvelope()
	expectNoError(t, e.SetAttackTime(0.1))
	e.Start()
	g.now = 0.05
	e.Stop()
	expectNearlyEqual(t, g.valueAt("env", 0.05), 0.5)
	expectNearlyEqual(t, g.valueAt("env", 0.55), 0.25)
	expectNearlyEqual(t, g.valueAt("env", 1.05), 0)
	expectMatchesSchedule(t, g, e, 0, 1.5)
}

func TestEnvelopeRetriggerDropsRelease(t *testing.T) {
	g, e := newTestEnvelope()
	e.Start()
	g.now = 0.5
	e.Stop()
	g.now = 1.0
	expectNearlyEqual(t, e.CurrentOutput(), 0.4)
	e.Start()
	expectNearlyEqual(t, g.valueAt("env", 1.0), 0.4)
	expectNearlyEqual(t, g.valueAt("env", 1.005), 0.7)
	expectNearlyEqual(t, g.valueAt("env", 1.01), 1)
	expectNearlyEqual(t, g.valueAt("env", 1.5), 0.8)
	expectNearlyEqual(t, g.valueAt("env", 2), 0.8)
	expectNearlyEqual(t, g.valueAt("env", 10), 0.8)
	expectEqual(t, e.Phase(2), PhaseSustain)
	expectMatchesSchedule(t, g, e, 1.0, 3)
}

func TestEnvelopeRetriggerInRelease(t *testing.T) {
	g, e := newTestEnvelope()
	expectNoError(t, e.SetAttackTime(0.1))
	e.StartAtTime(0)
	e.StopAtTime(0.2)
	e.StartAtTime(0.7)
	expectNearlyEqual(t, g.valueAt("env", 0.7), 0.466667)
	expectNearlyEqual(t, g.valueAt("env", 0.8), 1)
	expectMatchesSchedule(t, g, e, 0.7, 2)
}

func TestEnvelopeZeroDurations(t *testing.T) {
	g, e := newTestEnvelope()
	expectNoError(t, e.SetAttackTime(0))
	expectNoError(t, e.SetDecayTime(0))
	expectNoError(t, e.SetReleaseTime(0))
	g.now = 1
	e.Start()
	expectNearlyEqual(t, g.valueAt("env", 1), 0.8)
	expectNearlyEqual(t, e.ValueAt(1), 0.8)
	g.now = 2
	e.Stop()
	expectNearlyEqual(t, g.valueAt("env", 2), 0)
	expectNearlyEqual(t, e.ValueAt(2), 0)
}

func TestEnvelopeStartBeat(t *testing.T) {
	for _, duration := range []float64{0, -1} {
		g, e := newTestEnvelope()
		g.now = 2
		e.StartBeat(duration)
		_, _, _, releaseStart, releaseEnd := e.PhaseTimestamps()
		expectNearlyEqual(t, releaseStart, 2.5)
		expectNearlyEqual(t, releaseEnd, 3.5)
		expectNearlyEqual(t, g.valueAt("env", 2.5), 0.8)
		expectNearlyEqual(t, g.valueAt("env", 3.5), 0)
	}
	g, e := newTestEnvelope()
	expectNoError(t, e.SetTempo(60))
	e.StartBeat(0)
	_, _, _, releaseStart, _ := e.PhaseTimestamps()
	expectNearlyEqual(t, releaseStart, 1)

	e.StartBeat(0.25)
	_, _, _, releaseStart, _ = e.PhaseTimestamps()
	expectNearlyEqual(t, releaseStart, 0.25)
	expectNearlyEqual(t, g.valueAt("env", 0.25), 0.8+0.2*(0.06/0.3))
}

func TestEnvelopePhases(t *testing.T) {
	_, e := newTestEnvelope()
	e.StartAtTime(1)
	e.StopAtTime(2)
	expectEqual(t, e.Phase(0.5), PhaseIdle)
	expectEqual(t, e.Phase(1.005), PhaseAttack)
	expectEqual(t, e.Phase(1.1), PhaseDecay)
	expectEqual(t, e.Phase(1.5), PhaseSustain)
	expectEqual(t, e.Phase(2.5), PhaseRelease)
	expectEqual(t, e.Phase(3.5), PhaseIdle)
	expectEqual(t, PhaseRelease.String(), "release")
}

func TestEnvelopeChangesApplyToNextStart(t *testing.T) {
	g, e := newTestEnvelope()
	e.Start()
	g.now = 0.1
	expectNoError(t, e.SetDecayTime(1))
	expectNoError(t, e.SetSustainLevel(0.5))
	expectNearlyEqual(t, g.valueAt("env", 0.31), 0.8)
	expectNearlyEqual(t, e.ValueAt(0.31), 0.8)

	g.now = 1
	e.Start()
	expectNearlyEqual(t, g.valueAt("env", 1.01), 1)
	expectNearlyEqual(t, g.valueAt("env", 2.01), 0.5)
	expectMatchesSchedule(t, g, e, 1, 3)
}

func TestEnvelopeQueuedStart(t *testing.T) {
	g, e := newTestEnvelope()
	e.Start()
	g.now = 0.5
	e.Stop()
	g.now = 0.9
	e.StartBeatAtTime(1.0, 0.2)

	// still releasing until the queued start
	g.now = 0.95
	expectNearlyEqual(t, e.ValueAt(0.95), 0.44)
	expectNearlyEqual(t, g.valueAt("env", 0.95), 0.44)
	expectEqual(t, e.Phase(0.95), PhaseRelease)
	expectEqual(t, e.Phase(1.005), PhaseAttack)
	expectEqual(t, e.Phase(1.25), PhaseRelease)
	attackStart, _, _, releaseStart, releaseEnd := e.PhaseTimestamps()
	expectNearlyEqual(t, attackStart, 1.0)
	expectNearlyEqual(t, releaseStart, 1.2)
	expectNearlyEqual(t, releaseEnd, 2.2)
	expectMatchesSchedule(t, g, e, 0.5, 2.5)

	// starting now replaces the queued note
	e.Start()
	expectEqual(t, e.Phase(0.955), PhaseAttack)
	expectEqual(t, e.Phase(1.5), PhaseSustain)
	attackStart, _, _, _, _ = e.PhaseTimestamps()
	expectNearlyEqual(t, attackStart, 0.95)
	expectNearlyEqual(t, g.valueAt("env", 0.955), 0.72)
	expectMatchesSchedule(t, g, e, 0.95, 3)
}
