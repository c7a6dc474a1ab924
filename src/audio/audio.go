package audio

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"github.com/hajimehoshi/oto"
	"github.com/jinjor/desktop-synth/src/synth"
)

const (
	sampleRate      = 48000
	channelNum      = 2
	bitDepthInBytes = 2
	samplesPerCycle = 1024
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096
const secPerSample = 1.0 / sampleRate
const responseDelay = secPerSample * samplesPerCycle

// one LSB of 16 bit output
const ditherGain = 1.0 / 32768

// ----- Utility ----- //

func now() float64 {
	return float64(time.Now().UnixNano()) / 1000 / 1000 / 1000
}

// ----- Audio ----- //

// Audio plays the synth through the default output device.
type Audio struct {
	ctx        context.Context
	otoContext *oto.Context
	CommandCh  chan []string
	engine     *engine
	out        []float64 // length: samplesPerCycle
	dither     *vecmath.DitherState
}

var _ io.Reader = (*Audio)(nil)

// NewAudio opens the output device. presetDir may be empty.
func NewAudio(limits *synth.Limits, presetDir string) (*Audio, error) {
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, err
	}
	audio := newAudio(limits, presetDir)
	audio.otoContext = otoContext
	go processCommands(audio, audio.CommandCh)
	return audio, nil
}

func newAudio(limits *synth.Limits, presetDir string) *Audio {
	var presets *presetManager
	if presetDir != "" {
		presets = newPresetManager(presetDir)
	}
	return &Audio{
		ctx:       context.Background(),
		CommandCh: make(chan []string, 256),
		engine:    newEngine(limits, presets),
		out:       make([]float64, samplesPerCycle),
		dither:    vecmath.NewDitherState(time.Now().UnixNano()),
	}
}

func processCommands(audio *Audio, commandCh <-chan []string) {
	for command := range commandCh {
		if err := audio.Update(command); err != nil {
			log.Printf("command %v rejected: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

// Update applies one command; nothing changes when it returns an error.
func (a *Audio) Update(command []string) error {
	a.engine.Lock()
	defer a.engine.Unlock()
	return a.engine.update(command)
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
		a.engine.Lock()
		defer a.engine.Unlock()
		timestamp := a.engine.clock()
		bufSamples := len(buf) / bytesPerSample
		if cap(a.out) < bufSamples {
			a.out = make([]float64, bufSamples)
		}
		out := a.out[:bufSamples]
		a.engine.render(out)
		vecmath.AddDitherTPDF(out, ditherGain, a.dither)
		writeBuffer(out, buf, 0)
		writeBuffer(out, buf, 1)
		a.engine.lastRead = timestamp
		return bufSamples * bytesPerSample, nil
	}
}

func writeBuffer(out []float64, buf []byte, ch int) {
	for i, value := range out {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		switch bitDepthInBytes {
		case 1:
			const max = 127
			b := int(value * max)
			buf[bytesPerSample*i+ch] = byte(b + 128)
		case 2:
			const max = 32767
			b := int16(value * max)
			buf[bytesPerSample*i+2*ch] = byte(b)
			buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
		}
	}
}

// Close ...
func (a *Audio) Close() error {
	log.Println("Closing Audio...")
	close(a.CommandCh)
	if a.otoContext == nil {
		return nil
	}
	return a.otoContext.Close()
}

// Start ...
func (a *Audio) Start(ctx context.Context) error {
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	a.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// ApplyJSON merges a patch over the current sound.
func (a *Audio) ApplyJSON(data []byte) error {
	a.engine.Lock()
	defer a.engine.Unlock()
	return a.engine.applyJSON(data)
}

// ToJSON ...
func (a *Audio) ToJSON() ([]byte, error) {
	a.engine.Lock()
	defer a.engine.Unlock()
	return a.engine.toJSON()
}

// LoadPreset ...
func (a *Audio) LoadPreset(name string) error {
	a.engine.Lock()
	defer a.engine.Unlock()
	return a.engine.loadPreset(name)
}

// AdvanceSequencer issues the sequencer steps that start within lookahead seconds from now.
func (a *Audio) AdvanceSequencer(lookahead float64) int {
	a.engine.Lock()
	defer a.engine.Unlock()
	return a.engine.sequencer.Advance(a.engine.Now() + lookahead)
}

// Levels returns the current amplitude envelope, filter envelope and output peak levels.
func (a *Audio) Levels() (float64, float64, float64) {
	a.engine.Lock()
	defer a.engine.Unlock()
	v := a.engine.voice
	return v.AmpEnvelope().CurrentOutput(), v.FilterEnvelope().CurrentOutput(), a.engine.peak
}

// AddMidiEvent handles a raw note-on or note-off message. Other messages are ignored.
func (a *Audio) AddMidiEvent(data []byte) {
	note, on, ok := parseNoteMessage(data)
	if !ok {
		return
	}
	a.engine.Lock()
	defer a.engine.Unlock()
	if on {
		log.Printf("got note-on: %v\n", data)
		if err := a.engine.voice.PressKey(note); err != nil {
			log.Printf("[WARN] %v\n", err)
		}
	} else {
		log.Printf("got note-off: %v\n", data)
		a.engine.voice.ReleaseKey(note)
	}
}
