package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jinjor/desktop-synth/src/audio"
	"golang.org/x/sync/errgroup"
)

const sockFileName = "/tmp/desktop-synth.sock"

// how far ahead sequencer steps are scheduled
const sequencerLookahead = 0.1 // sec

var (
	presetDir  = flag.String("presets", "", "directory of preset files")
	presetName = flag.String("preset", "", "preset loaded at startup")
	limitsPath = flag.String("limits", "", "JSON file overriding the default limits")
	useMidi    = flag.Bool("midi", false, "play notes from the first MIDI input")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limits, err := audio.LoadLimits(*limitsPath)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	audio, err := audio.NewAudio(limits, *presetDir)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer audio.Close()
	if *presetName != "" {
		if err := audio.LoadPreset(*presetName); err != nil {
			log.Printf("[WARN] failed to load preset %s: %v\n", *presetName, err)
		}
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	err = withIPCConnection(ctx, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return audio.Start(ctx)
		})
		g.Go(func() error {
			return receiveCommands(ctx, conn, audio.CommandCh)
		})
		g.Go(func() error {
			return sendReports(ctx, conn, audio)
		})
		g.Go(func() error {
			return runSequencer(ctx, audio)
		})
		if *useMidi {
			g.Go(func() error {
				return forwardMidi(ctx, audio)
			})
		}
		return g.Wait()
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening...\n")
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn io.Reader, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			log.Printf("[WARN] bad command line %q: %v\n", string(line), err)
			line = []byte{}
			continue
		}
		commandCh <- command
		log.Printf("received: %s\n", string(line))
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

// formatReports renders the level lines sent to the UI on every frame.
func formatReports(amp float64, filter float64, peak float64) string {
	return fmt.Sprintf("env %s %s\npeak %s\n",
		strconv.FormatFloat(amp, 'f', 6, 64),
		strconv.FormatFloat(filter, 'f', 6, 64),
		strconv.FormatFloat(peak, 'f', 6, 64),
	)
}

func sendReports(ctx context.Context, conn io.Writer, audio *audio.Audio) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			s := formatReports(audio.Levels())
			select {
			case <-ctx.Done():
				log.Println("sendReports() interrupted")
				break loop
			default:
				if _, err := conn.Write([]byte(s)); err != nil {
					return err
				}
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}

// runSequencer keeps the sequencer scheduled ahead of the audio clock.
func runSequencer(ctx context.Context, audio *audio.Audio) error {
	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("runSequencer() ended.")
			return nil
		case <-t.C:
			audio.AdvanceSequencer(sequencerLookahead)
		}
	}
}

func forwardMidi(ctx context.Context, a *audio.Audio) error {
	for data := range audio.ListenToMidiIn(ctx) {
		a.AddMidiEvent(data)
	}
	log.Println("forwardMidi() ended.")
	return nil
}
