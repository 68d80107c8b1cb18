package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comalice/metrosim"
	"github.com/comalice/metrosim/display"
	"github.com/comalice/metrosim/internal/production"
	"github.com/comalice/metrosim/internal/report"
	"github.com/comalice/metrosim/verify"
)

type simulateRequest struct {
	Topology *metrosim.Topology `json:"topology" binding:"required"`
	DwellMS  *int64             `json:"dwell_ms"`
	Seed     int64              `json:"seed"`
}

type simulateResponse struct {
	ID      string        `json:"id,omitempty"`
	Events  []string      `json:"events"`
	Report  verify.Report `json:"report"`
	Passed  bool          `json:"passed"`
	Elapsed string        `json:"elapsed"`
}

type logRequest struct {
	Topology *metrosim.Topology `json:"topology" binding:"required"`
	Log      []string           `json:"log"`
}

type verifyResponse struct {
	Report verify.Report `json:"report"`
	Passed bool          `json:"passed"`
}

type frameDTO struct {
	Index  int    `json:"index"`
	Header string `json:"header,omitempty"`
	Text   string `json:"text"`
}

var traceSeq atomic.Uint64

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) simulate(c *gin.Context) {
	var req simulateRequest
	if !bindJSON(c, &req) {
		return
	}
	if !s.checkTopology(c, req.Topology) {
		return
	}

	run := *s.cfg
	run.Timeout = s.runTimeout
	if req.DwellMS != nil {
		run.Dwell = time.Duration(*req.DwellMS) * time.Millisecond
	}
	if run.Dwell < 0 || run.Dwell > maxDwell {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("dwell_ms must be between 0 and %d", maxDwell.Milliseconds())})
		return
	}
	if req.Seed != 0 {
		run.Seed = req.Seed
	}
	opts := append(run.Options(), metrosim.WithLogger(s.logger))

	start := time.Now()
	events, err := metrosim.Simulate(c.Request.Context(), req.Topology, opts...)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, metrosim.ErrStalled):
			status = http.StatusGatewayTimeout
		case errors.Is(err, context.Canceled):
			status = http.StatusRequestTimeout
		}
		s.logger.Printf("[HTTP] request_id=%s simulation failed: %v", GetRequestID(c), err)
		c.JSON(status, gin.H{"error": err.Error(), "events": eventLines(events)})
		return
	}
	rep := verify.Check(req.Topology, events)

	resp := simulateResponse{
		Events:  eventLines(events),
		Report:  rep,
		Passed:  rep.Passed(),
		Elapsed: time.Since(start).Round(time.Millisecond).String(),
	}
	if s.store != nil {
		trace := production.Trace{
			ID:        newTraceID(),
			Topology:  req.Topology,
			Events:    events,
			Report:    &rep,
			Timestamp: time.Now().UTC(),
		}
		if err := s.store.Save(c.Request.Context(), trace); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save trace: " + err.Error()})
			return
		}
		resp.ID = trace.ID
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) verifyLog(c *gin.Context) {
	topo, events, ok := s.bindLog(c)
	if !ok {
		return
	}
	rep := verify.Check(topo, events)
	c.JSON(http.StatusOK, verifyResponse{Report: rep, Passed: rep.Passed()})
}

func (s *Server) displayLog(c *gin.Context) {
	topo, events, ok := s.bindLog(c)
	if !ok {
		return
	}
	frames, err := display.Frames(topo, events)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	out := make([]frameDTO, len(frames))
	for i, f := range frames {
		out[i] = frameDTO{Index: f.Index, Header: f.Header(), Text: f.Text}
	}
	c.JSON(http.StatusOK, gin.H{"frames": out})
}

func (s *Server) getTrace(c *gin.Context) {
	trace, ok := s.loadTrace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, trace)
}

func (s *Server) getReportPDF(c *gin.Context) {
	trace, ok := s.loadTrace(c)
	if !ok {
		return
	}
	rep := verify.Check(trace.Topology, trace.Events)
	if trace.Report != nil {
		rep = *trace.Report
	}
	data, err := report.Render(trace.Topology, rep, trace.Events)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, trace.ID))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) getDOT(c *gin.Context) {
	trace, ok := s.loadTrace(c)
	if !ok {
		return
	}
	v := &production.DOTVisualizer{}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(v.Export(trace.Topology, nil)))
}

func (s *Server) loadTrace(c *gin.Context) (production.Trace, bool) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trace storage is disabled"})
		return production.Trace{}, false
	}
	id := c.Param("id")
	trace, err := s.store.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trace not found", "id": id})
			return production.Trace{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return production.Trace{}, false
	}
	return trace, true
}

func (s *Server) bindLog(c *gin.Context) (*metrosim.Topology, []metrosim.Event, bool) {
	var req logRequest
	if !bindJSON(c, &req) {
		return nil, nil, false
	}
	if !s.checkTopology(c, req.Topology) {
		return nil, nil, false
	}
	if n := len(req.Log); n > s.limits.MaxLogLines {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("%v: %d log lines, at most %d", errTooLarge, n, s.limits.MaxLogLines)})
		return nil, nil, false
	}
	events := make([]metrosim.Event, 0, len(req.Log))
	for i, line := range req.Log {
		e, err := metrosim.ParseEvent(line)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("log line %d: %v", i+1, err)})
			return nil, nil, false
		}
		e.Seq = uint64(len(events) + 1)
		events = append(events, e)
	}
	return req.Topology, events, true
}

func eventLines(events []metrosim.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

func newTraceID() string {
	return "run-" + strconv.FormatInt(time.Now().Unix(), 10) + "-" + strconv.FormatUint(traceSeq.Add(1), 10)
}
