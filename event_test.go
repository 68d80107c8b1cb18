package metrosim_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/comalice/metrosim"
)

func TestEventString(t *testing.T) {
	tests := []struct {
		event metrosim.Event
		want  string
	}{
		{metrosim.TrainEvent(metrosim.Enter, "Red", 2, "Metro Center"), "Train Red 2 entering Metro Center"},
		{metrosim.TrainEvent(metrosim.Leave, "Red", 2, "A"), "Train Red 2 leaving A"},
		{metrosim.PassengerEvent(metrosim.Board, "alice", "Blue", 1, "Pentagon"), "alice boarding train Blue 1 at Pentagon"},
		{metrosim.PassengerEvent(metrosim.Alight, "alice", "Blue", 1, "Navy Yard"), "alice leaving train Blue 1 at Navy Yard"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		parsed, err := metrosim.ParseEvent(tt.want)
		if err != nil {
			t.Errorf("ParseEvent(%q): %v", tt.want, err)
			continue
		}
		if parsed != tt.event {
			t.Errorf("ParseEvent(%q) = %+v, want %+v", tt.want, parsed, tt.event)
		}
	}
}

func TestParseEventMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"Train Red two entering A",
		"Train Red 1 idling A",
		"alice waving train Red 1 at A",
		"alice boarding train Red x at A",
		"alice boarding train Red 1",
	} {
		if _, err := metrosim.ParseEvent(s); err == nil {
			t.Errorf("ParseEvent(%q) should fail", s)
		}
	}
}

func TestReadWriteLog(t *testing.T) {
	text := `Train L 1 entering A
p boarding train L 1 at A

Train L 1 leaving A
Train L 1 entering Union Station
p leaving train L 1 at Union Station
Train L 1 leaving Union Station
`
	events, err := metrosim.ReadLog(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ReadLog: %v", err)
	}
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}
	for i, e := range events {
		if e.Seq != uint64(i+1) {
			t.Errorf("event %d has seq %d", i, e.Seq)
		}
	}
	if events[4].Action != metrosim.Alight || events[4].Station != "Union Station" {
		t.Errorf("event 5 = %+v", events[4])
	}

	var buf bytes.Buffer
	if err := metrosim.WriteLog(&buf, events); err != nil {
		t.Fatalf("WriteLog: %v", err)
	}
	if want := strings.ReplaceAll(text, "\n\n", "\n"); buf.String() != want {
		t.Errorf("WriteLog output:\n%s\nwant:\n%s", buf.String(), want)
	}

	if _, err := metrosim.ReadLog(strings.NewReader("Train L 1 entering A\nnonsense\n")); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected error naming line 2, got %v", err)
	}
}

func TestEventJSON(t *testing.T) {
	e := metrosim.PassengerEvent(metrosim.Board, "p", "L", 1, "A")
	e.Seq = 3
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"action":"board"`) {
		t.Errorf("action should marshal as text: %s", data)
	}
	var back metrosim.Event
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != e {
		t.Errorf("got %+v, want %+v", back, e)
	}
	if err := json.Unmarshal([]byte(`{"action":"jump"}`), &back); err == nil {
		t.Error("unknown action should not unmarshal")
	}
}
