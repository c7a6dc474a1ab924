package audio

import (
	"context"
	"log"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn forwards raw messages of the first MIDI input until ctx is done.
func ListenToMidiIn(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if len(ins) == 0 {
			log.Println("[WARN] MIDI IN not found")
			return
		}
		if err := listenTo(ctx, ins[0], ch); err != nil {
			log.Printf("failed to listen to MIDI IN: %v\n", err)
		}
	}()
	return ch
}

// listenTo blocks until ctx is done.
func listenTo(ctx context.Context, in midi.In, ch chan<- []byte) error {
	if err := in.Open(); err != nil {
		return err
	}
	log.Println("opened " + in.String())
	defer func() {
		err := in.Close()
		if err != nil {
			log.Printf("failed to close MIDI IN: %v\n", err)
		}
	}()
	log.Println("start listening MIDI IN...")
	if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
		// the driver reuses its buffer
		message := append([]byte(nil), data...)
		select {
		case ch <- message:
		default:
			log.Println("[WARN] MIDI message dropped")
		}
	}); err != nil {
		return err
	}
	defer func() {
		log.Println("stop listening MIDI IN...")
		err := in.StopListening()
		if err != nil {
			log.Printf("failed to stop listening: %v\n", err)
		}
	}()
	<-ctx.Done()
	return nil
}

// ----- MIDI Message ----- //

const (
	midiNoteOff = 0x8
	midiNoteOn  = 0x9
)

// parseNoteMessage returns the note of a note-on or note-off message.
// A note-on with zero velocity is a note-off.
func parseNoteMessage(data []byte) (note int, on bool, ok bool) {
	if len(data) < 3 {
		return 0, false, false
	}
	switch data[0] >> 4 {
	case midiNoteOff:
		return int(data[1]), false, true
	case midiNoteOn:
		return int(data[1]), data[2] > 0, true
	default:
		return 0, false, false
	}
}
