package metrosim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Action is what an event records. Enter and Leave come from trains, Board
// and Alight from passengers.
type Action int

const (
	Enter Action = iota + 1
	Leave
	Board
	Alight
)

var actionNames = map[Action]string{
	Enter:  "enter",
	Leave:  "leave",
	Board:  "board",
	Alight: "alight",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "Action(" + strconv.Itoa(int(a)) + ")"
}

// IsTrain reports whether the action is performed by a train.
func (a Action) IsTrain() bool { return a == Enter || a == Leave }

// IsPassenger reports whether the action is performed by a passenger.
func (a Action) IsPassenger() bool { return a == Board || a == Alight }

func (a Action) MarshalText() ([]byte, error) {
	s, ok := actionNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown action %d", int(a))
	}
	return []byte(s), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	for k, v := range actionNames {
		if v == string(text) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", text)
}

// Event is one immutable entry of the event log. Train events leave
// Passenger empty. Seq is the 1-based log position assigned on append; the
// log order is the only notion of time the verifier uses.
type Event struct {
	Seq       uint64 `json:"seq" yaml:"seq"`
	Action    Action `json:"action" yaml:"action"`
	Line      string `json:"line" yaml:"line"`
	Train     int    `json:"train" yaml:"train"`
	Station   string `json:"station" yaml:"station"`
	Passenger string `json:"passenger,omitempty" yaml:"passenger,omitempty"`
}

// TrainEvent builds an Enter or Leave event.
func TrainEvent(action Action, line string, train int, station string) Event {
	return Event{Action: action, Line: line, Train: train, Station: station}
}

// PassengerEvent builds a Board or Alight event.
func PassengerEvent(action Action, passenger, line string, train int, station string) Event {
	return Event{Action: action, Passenger: passenger, Line: line, Train: train, Station: station}
}

// TrainID names the train that produced or is referenced by the event.
func (e Event) TrainID() TrainID {
	return TrainID{Line: e.Line, Number: e.Train}
}

// String renders the event in the line format shared with the display:
//
//	Train <line> <number> entering <station>
//	Train <line> <number> leaving <station>
//	<passenger> boarding train <line> <number> at <station>
//	<passenger> leaving train <line> <number> at <station>
func (e Event) String() string {
	switch e.Action {
	case Enter:
		return fmt.Sprintf("Train %s %d entering %s", e.Line, e.Train, e.Station)
	case Leave:
		return fmt.Sprintf("Train %s %d leaving %s", e.Line, e.Train, e.Station)
	case Board:
		return fmt.Sprintf("%s boarding train %s %d at %s", e.Passenger, e.Line, e.Train, e.Station)
	case Alight:
		return fmt.Sprintf("%s leaving train %s %d at %s", e.Passenger, e.Line, e.Train, e.Station)
	}
	return fmt.Sprintf("invalid event %d", int(e.Action))
}

var errMalformedEvent = errors.New("malformed event")

// ParseEvent parses one line produced by Event.String. Station names may
// contain spaces; line and passenger names may not. Seq is left zero.
func ParseEvent(s string) (Event, error) {
	fields := strings.Fields(s)
	if len(fields) >= 5 && fields[0] == "Train" && (fields[3] == "entering" || fields[3] == "leaving") {
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return Event{}, fmt.Errorf("%w: train number %q: %v", errMalformedEvent, fields[2], err)
		}
		action := Enter
		if fields[3] == "leaving" {
			action = Leave
		}
		return TrainEvent(action, fields[1], n, strings.Join(fields[4:], " ")), nil
	}
	if len(fields) >= 7 && fields[2] == "train" && fields[5] == "at" {
		var action Action
		switch fields[1] {
		case "boarding":
			action = Board
		case "leaving":
			action = Alight
		default:
			return Event{}, fmt.Errorf("%w: %q", errMalformedEvent, s)
		}
		n, err := strconv.Atoi(fields[4])
		if err != nil {
			return Event{}, fmt.Errorf("%w: train number %q: %v", errMalformedEvent, fields[4], err)
		}
		return PassengerEvent(action, fields[0], fields[3], n, strings.Join(fields[6:], " ")), nil
	}
	return Event{}, fmt.Errorf("%w: %q", errMalformedEvent, s)
}

// ReadLog parses a text trace, one event per line. Blank lines are skipped.
// Events are numbered in reading order.
func ReadLog(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		e, err := ParseEvent(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		e.Seq = uint64(len(events) + 1)
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return events, nil
}

// WriteLog writes events in text form, one per line.
func WriteLog(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		if _, err := fmt.Fprintln(bw, e.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
