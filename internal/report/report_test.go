package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/comalice/metrosim/testutil"
	"github.com/comalice/metrosim/verify"
)

func TestRenderPassingRun(t *testing.T) {
	topo := testutil.Metro()
	events := testutil.NewTrace().Walk("Red", 1, "Shady Grove", "Rockville").Events()
	rep := verify.Check(topo, events)

	data, err := Render(topo, rep, events)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
	if !bytes.Contains(data, []byte("%%EOF")) {
		t.Error("PDF trailer missing")
	}
}

func TestRenderManyViolations(t *testing.T) {
	topo := testutil.ScenarioA()
	b := testutil.NewTrace()
	for i := 0; i < 30; i++ {
		b.Leave("L", 1, "A")
	}
	events := b.Events()
	rep := verify.Check(topo, events)
	if rep.Passed() {
		t.Fatal("trace should fail")
	}

	data, err := RenderAt(topo, rep, events, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}
