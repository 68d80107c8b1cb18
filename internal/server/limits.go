package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comalice/metrosim"
)

// Limits bounds what a single request may ask the server to build. A run
// allocates one condition per station and train and one goroutine per
// actor before any timeout applies.
type Limits struct {
	MaxBodyBytes       int64
	MaxLines           int
	MaxStationsPerLine int
	MaxTrainsPerLine   int
	MaxPassengers      int
	MaxItineraryStops  int
	MaxLogLines        int
}

// DefaultLimits are applied unless WithLimits overrides them.
var DefaultLimits = Limits{
	MaxBodyBytes:       1 << 20,
	MaxLines:           32,
	MaxStationsPerLine: 128,
	MaxTrainsPerLine:   32,
	MaxPassengers:      512,
	MaxItineraryStops:  64,
	MaxLogLines:        100_000,
}

var errTooLarge = errors.New("request exceeds server limits")

// Check reports the first limit topo exceeds.
func (l Limits) Check(topo *metrosim.Topology) error {
	if n := len(topo.Lines); n > l.MaxLines {
		return fmt.Errorf("%w: %d lines, at most %d", errTooLarge, n, l.MaxLines)
	}
	for _, line := range topo.LineNames() {
		if n := len(topo.Lines[line]); n > l.MaxStationsPerLine {
			return fmt.Errorf("%w: line %q has %d stations, at most %d", errTooLarge, line, n, l.MaxStationsPerLine)
		}
		if n := topo.Trains[line]; n > l.MaxTrainsPerLine {
			return fmt.Errorf("%w: line %q has %d trains, at most %d", errTooLarge, line, n, l.MaxTrainsPerLine)
		}
	}
	if n := len(topo.Passengers); n > l.MaxPassengers {
		return fmt.Errorf("%w: %d passengers, at most %d", errTooLarge, n, l.MaxPassengers)
	}
	for _, name := range topo.PassengerNames() {
		if n := len(topo.Passengers[name]); n > l.MaxItineraryStops {
			return fmt.Errorf("%w: passenger %q has %d stops, at most %d", errTooLarge, name, n, l.MaxItineraryStops)
		}
	}
	return nil
}

// BodyLimit caps the request body at n bytes.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// bindJSON decodes the body into obj, answering 413 for an oversized body
// and 400 for anything else that fails to bind.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
	return false
}

// checkTopology validates topo and applies the size limits, answering 422
// on failure.
func (s *Server) checkTopology(c *gin.Context, topo *metrosim.Topology) bool {
	err := topo.Validate()
	if err == nil {
		err = s.limits.Check(topo)
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return false
	}
	return true
}
