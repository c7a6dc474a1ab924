package main

import (
	"context"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	command, err := parseCommand("preset my%20bass")
	if err != nil {
		t.Fatal(err)
	}
	if len(command) != 2 || command[0] != "preset" || command[1] != "my bass" {
		t.Errorf("unexpected command: %q", command)
	}
	if _, err := parseCommand("preset %zz"); err == nil {
		t.Errorf("expected an error")
	}
}

func TestReceiveCommands(t *testing.T) {
	ch := make(chan []string, 4)
	input := "note_on 60\npreset %zz\nset main_gain 0.5\n"
	if err := receiveCommands(context.Background(), strings.NewReader(input), ch); err != nil {
		t.Fatal(err)
	}
	close(ch)
	var received [][]string
	for command := range ch {
		received = append(received, command)
	}
	if len(received) != 2 {
		t.Fatalf("expected 2 commands, but got: %q", received)
	}
	if strings.Join(received[1], " ") != "set main_gain 0.5" {
		t.Errorf("unexpected command: %q", received[1])
	}
}

func TestFormatReports(t *testing.T) {
	expected := "env 0.500000 0.250000\npeak 0.125000\n"
	if s := formatReports(0.5, 0.25, 0.125); s != expected {
		t.Errorf("expected %q, but got: %q", expected, s)
	}
}
