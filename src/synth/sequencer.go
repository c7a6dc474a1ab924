package synth

import (
	"log"
	"math"
)

// portion of a step during which the note is held
const sequencerGate = 0.5

// ----- Sequencer ----- //

// SequencerStep is either a rest or a list of per-oscillator semitone offsets.
type SequencerStep struct {
	Offsets []int
	Rest    bool
}

// Sequencer plays a loop of steps on a voice.
// Steps are issued ahead of time with their exact start time, so callers only need to
// call Advance often enough to stay ahead of the clock.
type Sequencer struct {
	voice    *Voice
	steps    []SequencerStep
	playing  bool
	position int
	nextTime float64 // sec
}

// NewSequencer ...
func NewSequencer(voice *Voice) *Sequencer {
	steps := make([]SequencerStep, voice.limits.SequencerStepCount)
	for i := range steps {
		steps[i] = SequencerStep{Offsets: []int{0}}
	}
	return &Sequencer{
		voice: voice,
		steps: steps,
	}
}

// Len ...
func (s *Sequencer) Len() int {
	return len(s.steps)
}

// Step ...
func (s *Sequencer) Step(index int) (SequencerStep, error) {
	if index < 0 || index >= len(s.steps) {
		return SequencerStep{}, indexOutOfRange("sequencer step", index, len(s.steps))
	}
	step := s.steps[index]
	return SequencerStep{Offsets: append([]int(nil), step.Offsets...), Rest: step.Rest}, nil
}

// SetStep ...
func (s *Sequencer) SetStep(index int, step SequencerStep) error {
	if index < 0 || index >= len(s.steps) {
		return indexOutOfRange("sequencer step", index, len(s.steps))
	}
	if !step.Rest {
		for _, offset := range step.Offsets {
			if err := s.voice.checkNote(s.voice.sequencerRoot + offset); err != nil {
				return err
			}
		}
	}
	s.steps[index] = SequencerStep{Offsets: append([]int(nil), step.Offsets...), Rest: step.Rest}
	return nil
}

// Playing ...
func (s *Sequencer) Playing() bool {
	return s.playing
}

// Position is the index of the next step to be issued.
func (s *Sequencer) Position() int {
	return s.position
}

// Start plays from the first step, starting now.
func (s *Sequencer) Start() {
	s.playing = true
	s.position = 0
	s.nextTime = s.voice.sg.Now()
}

// Stop stops issuing steps; the note already issued plays out.
func (s *Sequencer) Stop() {
	s.playing = false
}

// StepDuration is one step at the voice tempo.
func (s *Sequencer) StepDuration() float64 {
	perBeat := s.voice.limits.SequencerStepsPerBeat
	if perBeat <= 0 {
		perBeat = 1
	}
	return s.voice.limits.BeatDuration(s.voice.ampEnvelope.Tempo()) / float64(perBeat)
}

// Advance issues every step starting before until and returns how many were issued.
// Steps whose time has already passed are skipped rather than played late.
func (s *Sequencer) Advance(until float64) int {
	if !s.playing || len(s.steps) == 0 {
		return 0
	}
	s.skipPast(s.voice.sg.Now())
	issued := 0
	for s.nextTime < until {
		stepDuration := s.StepDuration()
		step := s.steps[s.position]
		if !step.Rest {
			if err := s.voice.PlaySequencerStepAt(s.nextTime, step.Offsets, stepDuration*sequencerGate); err != nil {
				log.Printf("failed to play step %d: %v\n", s.position, err)
			}
		}
		s.nextTime += stepDuration
		s.position = (s.position + 1) % len(s.steps)
		issued++
	}
	return issued
}

// steps this close behind the clock still play
const sequencerLateTolerance = 1e-9

func (s *Sequencer) skipPast(now float64) {
	behind := now - s.nextTime
	if behind <= sequencerLateTolerance {
		return
	}
	stepDuration := s.StepDuration()
	skipped := int(math.Ceil(behind/stepDuration - sequencerLateTolerance))
	s.nextTime += float64(skipped) * stepDuration
	s.position = (s.position + skipped) % len(s.steps)
	log.Printf("[WARN] sequencer fell behind, %d step(s) skipped\n", skipped)
}
