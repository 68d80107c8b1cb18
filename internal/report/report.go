// Package report renders a verification report as a PDF document.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/comalice/metrosim"
	"github.com/comalice/metrosim/verify"
)

// maxListed caps how many violations are printed per property.
const maxListed = 5

// Render produces a one-document summary of a run: the topology, the verdict
// for each property with its first violations, and event counts.
func Render(topo *metrosim.Topology, rep verify.Report, events []metrosim.Event) ([]byte, error) {
	return RenderAt(topo, rep, events, time.Now())
}

// RenderAt is Render with an explicit generation time.
func RenderAt(topo *metrosim.Topology, rep verify.Report, events []metrosim.Event, at time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Metro simulation report", false)
	pdf.SetCreationDate(at)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "METRO SIMULATION REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Generated : "+at.Format("2006-01-02 15:04"))
	pdf.Ln(6)
	verdict := "FAIL"
	if rep.Passed() {
		verdict = "PASS"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Verdict   : "+verdict)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Topology:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range topo.LineNames() {
		text := fmt.Sprintf("%s (%d train%s): %s", line, topo.Trains[line], plural(topo.Trains[line]),
			strings.Join(topo.Lines[line], " - "))
		pdf.MultiCell(0, 5, text, "", "", false)
	}
	for _, name := range topo.PassengerNames() {
		pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", name, strings.Join(topo.Passengers[name], " > ")), "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Properties:")
	pdf.Ln(8)
	for _, res := range rep.Results {
		status := "PASS"
		switch {
		case res.Skipped:
			status = "SKIP"
		case !res.Passed:
			status = "FAIL"
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%d. %s: %s", int(res.Property), res.Property, status))
		pdf.Ln(6)
		if len(res.Violations) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "", 9)
		for i, v := range res.Violations {
			if i == maxListed {
				break
			}
			pdf.MultiCell(0, 5, "    "+v, "", "", false)
		}
		if more := len(res.Violations) + res.Truncated - maxListed; more > 0 {
			pdf.MultiCell(0, 5, fmt.Sprintf("    ... and %d more", more), "", "", false)
		}
	}
	pdf.Ln(4)

	var trainEvents, passengerEvents int
	for _, e := range events {
		if e.Action.IsTrain() {
			trainEvents++
		} else {
			passengerEvents++
		}
	}
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Events: %d (%d train, %d passenger).", len(events), trainEvents, passengerEvents), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
