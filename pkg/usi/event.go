package usi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errEmptyLine = errors.New("empty line")

// command is one protocol line split into its leading word and arguments.
// Both directions of the protocol are tokenized this way.
type command struct {
	name string
	args []string
}

func splitCommand(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}
	return command{name: fields[0], args: fields[1:]}, true
}

// value returns the argument after key, if any.
func (c command) value(key string) (string, bool) {
	for i := 0; i+1 < len(c.args); i++ {
		if c.args[i] == key {
			return c.args[i+1], true
		}
	}
	return "", false
}

// rest joins every argument after the first n.
func (c command) rest(n int) string {
	if n >= len(c.args) {
		return ""
	}
	return strings.Join(c.args[n:], " ")
}

type EventType int

const (
	EventUnknown EventType = iota
	EventID
	EventUSIOK
	EventReadyOK
	EventInfo
	EventBestMove
)

// Event is one parsed engine line.
type Event struct {
	Type EventType

	// id name/author
	Key   string
	Value string

	Move   string
	Ponder string

	Info Info

	// Raw holds lines the client has no use for, for logging.
	Raw string
}

// Info is the part of an info line the client keeps. Fields the engine
// did not send stay zero.
type Info struct {
	Depth    int
	Nodes    int64
	Score    Score
	HasScore bool
}

// Score is an engine evaluation from the side to move.
type Score struct {
	Kind  string
	Value int
}

func (s Score) String() string {
	switch s.Kind {
	case "cp", "mate":
		return s.Kind + " " + strconv.Itoa(s.Value)
	}
	return "unknown"
}

// ParseLine converts a raw engine line into an event.
func ParseLine(line string) (Event, error) {
	c, ok := splitCommand(line)
	if !ok {
		return Event{}, errEmptyLine
	}
	switch c.name {
	case "id":
		if len(c.args) < 2 {
			return Event{}, fmt.Errorf("invalid id: %q", line)
		}
		return Event{Type: EventID, Key: c.args[0], Value: c.rest(1)}, nil
	case "usiok":
		return Event{Type: EventUSIOK}, nil
	case "readyok":
		return Event{Type: EventReadyOK}, nil
	case "bestmove":
		if len(c.args) == 0 {
			return Event{}, fmt.Errorf("invalid bestmove: %q", line)
		}
		ponder, _ := c.value("ponder")
		return Event{Type: EventBestMove, Move: c.args[0], Ponder: ponder}, nil
	case "info":
		return Event{Type: EventInfo, Info: parseInfo(c.args)}, nil
	}
	return Event{Type: EventUnknown, Raw: strings.TrimSpace(line)}, nil
}

// parseInfo reads depth, nodes and score from info arguments. Malformed
// values are skipped; pv and string swallow the rest of the line.
// "mate +" and "mate -" (mate of unknown length) read as 1 and -1.
func parseInfo(args []string) Info {
	var info Info
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				if v, err := strconv.Atoi(args[i+1]); err == nil {
					info.Depth = v
				}
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				if v, err := strconv.ParseInt(args[i+1], 10, 64); err == nil {
					info.Nodes = v
				}
				i++
			}
		case "score":
			if i+2 >= len(args) {
				return info
			}
			kind, raw := args[i+1], args[i+2]
			i += 2
			if kind != "cp" && kind != "mate" {
				continue
			}
			if kind == "mate" && (raw == "+" || raw == "-") {
				raw += "1"
			}
			if v, err := strconv.Atoi(raw); err == nil {
				info.Score = Score{Kind: kind, Value: v}
				info.HasScore = true
			}
		case "pv", "string":
			return info
		}
	}
	return info
}

// readEvents sends every parsed line of r to events. It returns io.EOF
// once r is exhausted.
func readEvents(r io.Reader, events chan<- Event) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		event, err := ParseLine(scanner.Text())
		if errors.Is(err, errEmptyLine) {
			continue
		}
		if err != nil {
			return err
		}
		events <- event
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
