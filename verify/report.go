package verify

import (
	"fmt"
	"strconv"
	"strings"
)

// Property identifies one of the eight safety checks.
type Property int

const (
	InitialStation Property = iota + 1
	EnterLeavePairing
	MutualExclusion
	ItineraryCompletion
	RoundTripShape
	RendezvousValidity
	NoPhantomDeparture
	PathContinuity
)

// Properties lists every property in check order.
var Properties = []Property{
	InitialStation,
	EnterLeavePairing,
	MutualExclusion,
	ItineraryCompletion,
	RoundTripShape,
	RendezvousValidity,
	NoPhantomDeparture,
	PathContinuity,
}

var propertyNames = map[Property]string{
	InitialStation:      "initial-station",
	EnterLeavePairing:   "enter-leave-pairing",
	MutualExclusion:     "mutual-exclusion",
	ItineraryCompletion: "itinerary-completion",
	RoundTripShape:      "round-trip-shape",
	RendezvousValidity:  "rendezvous-validity",
	NoPhantomDeparture:  "no-phantom-departure",
	PathContinuity:      "path-continuity",
}

func (p Property) String() string {
	if s, ok := propertyNames[p]; ok {
		return s
	}
	return "Property(" + strconv.Itoa(int(p)) + ")"
}

func (p Property) MarshalText() ([]byte, error) {
	if _, ok := propertyNames[p]; !ok {
		return nil, fmt.Errorf("unknown property %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Property) UnmarshalText(text []byte) error {
	for k, v := range propertyNames {
		if v == string(text) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown property %q", text)
}

// Result is the outcome of one property. Skipped results did not apply to
// this run and count as passed.
type Result struct {
	Property   Property `json:"property" yaml:"property"`
	Passed     bool     `json:"passed" yaml:"passed"`
	Skipped    bool     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Violations []string `json:"violations,omitempty" yaml:"violations,omitempty"`
	Truncated  int      `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// Report holds one Result per property, in Properties order.
type Report struct {
	Results []Result `json:"results" yaml:"results"`
}

// Passed is the overall verdict: the conjunction of every property.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return len(r.Results) > 0
}

// Failed lists the properties that did not hold.
func (r Report) Failed() []Property {
	var out []Property
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res.Property)
		}
	}
	return out
}

// Result returns the result for p.
func (r Report) Result(p Property) (Result, bool) {
	for _, res := range r.Results {
		if res.Property == p {
			return res, true
		}
	}
	return Result{}, false
}

// Holds reports whether p passed. Unknown properties do not hold.
func (r Report) Holds(p Property) bool {
	res, ok := r.Result(p)
	return ok && res.Passed
}

// String renders one line per property followed by its violations.
func (r Report) String() string {
	var b strings.Builder
	for _, res := range r.Results {
		status := "PASS"
		switch {
		case res.Skipped:
			status = "SKIP"
		case !res.Passed:
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%d %-22s %s\n", int(res.Property), res.Property, status)
		for _, v := range res.Violations {
			fmt.Fprintf(&b, "    %s\n", v)
		}
		if res.Truncated > 0 {
			fmt.Fprintf(&b, "    ... and %d more\n", res.Truncated)
		}
	}
	verdict := "FAIL"
	if r.Passed() {
		verdict = "PASS"
	}
	fmt.Fprintf(&b, "verdict: %s\n", verdict)
	return b.String()
}
