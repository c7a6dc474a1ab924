package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/jinjor/desktop-synth/src/automation"
)

// ----- Test Helpers ----- //

type testGenerator struct {
	now    float64
	params map[string]*automation.Param
}

func newTestGenerator() *testGenerator {
	return &testGenerator{params: make(map[string]*automation.Param)}
}

func (g *testGenerator) Now() float64 {
	return g.now
}

func (g *testGenerator) Param(name string, initial float64) AudioParam {
	p := automation.NewParam(name, initial)
	g.params[name] = p
	return p
}

func (g *testGenerator) valueAt(name string, t float64) float64 {
	p, ok := g.params[name]
	if !ok {
		panic("no param " + name)
	}
	return p.ValueAt(t)
}

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
