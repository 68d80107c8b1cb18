package display_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/comalice/metrosim"
	"github.com/comalice/metrosim/display"
	"github.com/comalice/metrosim/testutil"
)

func row(station, people, trains string) string {
	return fmt.Sprintf("  %25s %10s %-10s\n", station, people, trains)
}

func TestInitialState(t *testing.T) {
	state := display.NewState(testutil.ScenarioB())
	want := "L\n" + row("A", "p ", "") + row("B", "", "") + "\n"
	if got := state.String(); got != want {
		t.Errorf("initial grid:\n%q\nwant:\n%q", got, want)
	}
}

func TestApplyBoardAndAlight(t *testing.T) {
	topo := testutil.ScenarioB()
	state := display.NewState(topo)
	events := testutil.NewTrace().
		Enter("L", 1, "A").
		Board("p", "L", 1, "A").
		Events()
	for _, e := range events {
		if err := state.Apply(e); err != nil {
			t.Fatal(err)
		}
	}
	want := "L\n" + row("A", "", "[L 1 p]") + row("B", "", "") + "\n"
	if got := state.String(); got != want {
		t.Errorf("after boarding:\n%q\nwant:\n%q", got, want)
	}

	more := testutil.NewTrace().
		Leave("L", 1, "A").
		Enter("L", 1, "B").
		Alight("p", "L", 1, "B").
		Events()
	for _, e := range more {
		if err := state.Apply(e); err != nil {
			t.Fatal(err)
		}
	}
	if got := state.Waiting("B"); !reflect.DeepEqual(got, []string{"p"}) {
		t.Errorf("Waiting(B) = %v", got)
	}
	if got := state.Riders(metrosim.TrainID{Line: "L", Number: 1}); len(got) != 0 {
		t.Errorf("train should be empty, riders = %v", got)
	}
	if got := state.TrainsAt("B", "L"); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("TrainsAt(B) = %v", got)
	}
}

func TestRenderSharedStation(t *testing.T) {
	topo := metrosim.NewTopologyBuilder().
		Line("Red", "A", "X").
		Line("Blue", "X", "B").
		Trains("Blue", 2).
		MustBuild()
	state := display.NewState(topo)
	for _, e := range testutil.NewTrace().Enter("Red", 1, "X").Enter("Blue", 2, "X").Events() {
		if err := state.Apply(e); err != nil {
			t.Fatal(err)
		}
	}
	want := "Blue\n" + row("X", "", "[Blue 2]") + row("B", "", "") +
		"Red\n" + row("A", "", "") + row("X", "", "[Red 1]") + "\n"
	if got := state.String(); got != want {
		t.Errorf("grid:\n%s\nwant:\n%s", got, want)
	}
}

func TestApplyRejectsUnknownStation(t *testing.T) {
	state := display.NewState(testutil.ScenarioA())
	err := state.Apply(metrosim.TrainEvent(metrosim.Enter, "L", 1, "Z"))
	if !errors.Is(err, metrosim.ErrUnknownStation) {
		t.Errorf("got %v, want ErrUnknownStation", err)
	}
	err = state.Apply(metrosim.TrainEvent(metrosim.Enter, "M", 1, "A"))
	if !errors.Is(err, metrosim.ErrUnknownLine) {
		t.Errorf("got %v, want ErrUnknownLine", err)
	}
}

func TestFrames(t *testing.T) {
	topo := testutil.ScenarioA()
	events := testutil.NewTrace().Walk("L", 1, "A", "B").Events()
	frames, err := display.Frames(topo, events)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != len(events)+1 {
		t.Fatalf("got %d frames, want %d", len(frames), len(events)+1)
	}
	if frames[0].Event != nil || frames[0].Header() != "" {
		t.Error("first frame should have no event")
	}
	if got := frames[1].Header(); got != "Train L 1 entering A" {
		t.Errorf("frame 1 header = %q", got)
	}
	if !strings.Contains(frames[1].Text, "[L 1]") {
		t.Errorf("frame 1 should show the train at A:\n%s", frames[1].Text)
	}
	if strings.Contains(frames[len(frames)-1].Text, "[L 1]") {
		t.Errorf("train left B in the last frame:\n%s", frames[len(frames)-1].Text)
	}
}

func TestReplayPacing(t *testing.T) {
	topo := testutil.ScenarioA()
	events := testutil.NewTrace().Walk("L", 1, "A", "B", "C").Events()

	start := time.Now()
	var n int
	err := display.Replay(context.Background(), topo, events, 5*time.Millisecond, func(display.Frame) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != len(events)+1 {
		t.Errorf("got %d frames, want %d", n, len(events)+1)
	}
	if elapsed := time.Since(start); elapsed < time.Duration(len(events))*5*time.Millisecond {
		t.Errorf("replay finished in %v, faster than one event per tick", elapsed)
	}
}

func TestReplayCancel(t *testing.T) {
	topo := testutil.ScenarioA()
	events := testutil.NewTrace().Walk("L", 1, "A", "B", "C", "B", "A").Events()
	ctx, cancel := context.WithCancel(context.Background())

	var n int
	err := display.Replay(ctx, topo, events, time.Hour, func(display.Frame) error {
		n++
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if n != 1 {
		t.Errorf("got %d frames before cancel, want 1", n)
	}
}

func TestReplayStopsOnCallbackError(t *testing.T) {
	topo := testutil.ScenarioA()
	events := testutil.NewTrace().Walk("L", 1, "A", "B").Events()
	stop := errors.New("stop")
	var n int
	err := display.Replay(context.Background(), topo, events, 0, func(display.Frame) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || n != 2 {
		t.Errorf("err = %v after %d frames", err, n)
	}
}
