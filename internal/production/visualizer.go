package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/comalice/metrosim"
)

// DOTVisualizer renders a topology as Graphviz DOT.
type DOTVisualizer struct{}

// Export generates DOT source for topo. Each line is a cluster of its
// stations in order; stations shared between lines are joined by dashed
// transfer edges. occupancy (line -> station -> train, as returned by
// Simulation.Occupancy) highlights the stations currently held; it may be
// nil.
func (v *DOTVisualizer) Export(topo *metrosim.Topology, occupancy map[string]map[string]int) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Metro {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9, dir=none];
`)

	for i, line := range topo.LineNames() {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", line+" ("+pluralTrains(topo.Trains[line])+")")
		stations := topo.Lines[line]
		for _, station := range stations {
			label := station
			style := ""
			if n, ok := occupancy[line][station]; ok && n != 0 {
				label = fmt.Sprintf("%s\n[%s]", station, metrosim.TrainID{Line: line, Number: n})
				style = ` style="rounded,filled" fillcolor=lightgreen`
			}
			fmt.Fprintf(&buf, "    %q [label=%q%s];\n", nodeID(line, station), label, style)
		}
		for j := 1; j < len(stations); j++ {
			fmt.Fprintf(&buf, "    %q -> %q;\n", nodeID(line, stations[j-1]), nodeID(line, stations[j]))
		}
		buf.WriteString("  }\n")
	}

	for _, t := range transfers(topo) {
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, label=%q];\n", nodeID(t.from, t.station), nodeID(t.to, t.station), "transfer")
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the topology to JSON.
func (v *DOTVisualizer) ExportJSON(topo *metrosim.Topology) ([]byte, error) {
	return json.MarshalIndent(topo, "", "  ")
}

func nodeID(line, station string) string {
	return line + "/" + station
}

func pluralTrains(n int) string {
	if n == 1 {
		return "1 train"
	}
	return fmt.Sprintf("%d trains", n)
}

type transfer struct {
	station  string
	from, to string
}

// transfers links each interchange station's line nodes in line-name order.
func transfers(topo *metrosim.Topology) []transfer {
	served := make(map[string][]string)
	for _, line := range topo.LineNames() {
		for _, station := range topo.Lines[line] {
			served[station] = append(served[station], line)
		}
	}
	var out []transfer
	for station, lines := range served {
		for i := 1; i < len(lines); i++ {
			out = append(out, transfer{station: station, from: lines[i-1], to: lines[i]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].station != out[j].station {
			return out[i].station < out[j].station
		}
		return out[i].from < out[j].from
	})
	return out
}
