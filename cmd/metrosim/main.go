// Command metrosim runs, verifies and renders metro simulations.
//
// Usage:
//
//	metrosim run -topology metro.yaml [-dwell 100ms] [-seed N] [-timeout d] [-stall d]
//	             [-live] [-v] [-log trace.log] [-store dir [-format json|yaml]] [-pdf report.pdf]
//	metrosim verify -topology metro.yaml -log trace.log
//	metrosim verify -store dir -id run-1 [-format json|yaml]
//	metrosim display -topology metro.yaml -log trace.log [-tick 100ms]
//	metrosim dot -topology metro.yaml [-json]
//	metrosim serve [-addr :8080] [-store dir]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comalice/metrosim"
	"github.com/comalice/metrosim/display"
	"github.com/comalice/metrosim/internal/config"
	"github.com/comalice/metrosim/internal/production"
	"github.com/comalice/metrosim/internal/report"
	"github.com/comalice/metrosim/internal/server"
	"github.com/comalice/metrosim/verify"
)

const usage = `usage: metrosim <command> [flags]

commands:
  run      simulate a topology and verify the trace
  verify   verify a saved trace
  display  replay a trace as an occupancy grid
  dot      export a topology as Graphviz DOT
  serve    start the HTTP API
`

// errVerification marks a run whose trace failed verification.
var errVerification = errors.New("verification failed")

func main() {
	log.SetPrefix("metrosim: ")
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCmd(ctx, cfg, args, os.Stdout)
	case "verify":
		err = verifyCmd(ctx, args, os.Stdout)
	case "display":
		err = displayCmd(ctx, args, os.Stdout)
	case "dot":
		err = dotCmd(args, os.Stdout)
	case "serve":
		err = serveCmd(cfg, args)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	switch {
	case err == nil:
	case errors.Is(err, errVerification):
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		log.Print(err)
		os.Exit(1)
	}
}

func runCmd(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	topoPath := fs.String("topology", "", "topology file (.yaml, .yml or .json)")
	dwell := fs.Duration("dwell", cfg.Dwell, "time each train holds a station")
	seed := fs.Int64("seed", cfg.Seed, "random seed for train choice (0 = random)")
	timeout := fs.Duration("timeout", cfg.Timeout, "abort the run after this long (0 = never)")
	stall := fs.Duration("stall", cfg.StallTimeout, "abort when no event is logged for this long (0 = never)")
	live := fs.Bool("live", false, "print events as they happen")
	verbose := fs.Bool("v", false, "log every event to stderr")
	logPath := fs.String("log", "", "write the text trace to this file")
	storeDir := fs.String("store", "", "save the trace in this directory")
	format := fs.String("format", "json", "trace store format: json or yaml")
	pdfPath := fs.String("pdf", "", "write a PDF report to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topoPath == "" {
		return errors.New("run: -topology is required")
	}
	topo, err := config.LoadTopology(*topoPath)
	if err != nil {
		return err
	}

	run := *cfg
	run.Dwell, run.Timeout, run.StallTimeout, run.Seed = *dwell, *timeout, *stall, *seed
	opts := run.Options()

	var publisher metrosim.Publisher
	var streamed chan struct{}
	var channel *production.ChannelPublisher
	if *live {
		ch := make(chan metrosim.Event, 4096)
		channel = production.NewChannelPublisher(ch)
		publisher = channel
		streamed = make(chan struct{})
		go func() {
			defer close(streamed)
			for e := range ch {
				fmt.Fprintln(stdout, e)
			}
		}()
	}
	if *verbose {
		publisher = production.NewLoggingPublisher(publisher, log.New(os.Stderr, "metrosim: ", log.LstdFlags))
	}
	if publisher != nil {
		opts = append(opts, metrosim.WithPublisher(publisher))
	}

	events, runErr := metrosim.Simulate(ctx, topo, opts...)
	if publisher != nil {
		publisher.Close()
	}
	if streamed != nil {
		<-streamed
		if n := channel.Dropped(); n > 0 {
			log.Printf("live output dropped %d events; the saved trace is complete", n)
		}
	} else if err := metrosim.WriteLog(stdout, events); err != nil {
		return err
	}
	// A failed run still leaves its partial trace behind for diagnosis.
	rep := verify.Check(topo, events)
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, rep)
	if err := saveRun(context.WithoutCancel(ctx), stdout, topo, events, rep, *logPath, *storeDir, *format, *pdfPath); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}

	if !rep.Passed() {
		return errVerification
	}
	return nil
}

// saveRun writes whichever trace artifacts were requested.
func saveRun(ctx context.Context, stdout io.Writer, topo *metrosim.Topology, events []metrosim.Event, rep verify.Report, logPath, storeDir, format, pdfPath string) error {
	if logPath != "" {
		if err := writeLogFile(logPath, events); err != nil {
			return err
		}
	}
	if storeDir != "" {
		store, err := openStore(storeDir, format)
		if err != nil {
			return err
		}
		trace := production.Trace{
			ID:        "run-" + time.Now().UTC().Format("20060102T150405.000"),
			Topology:  topo,
			Events:    events,
			Report:    &rep,
			Timestamp: time.Now().UTC(),
		}
		if err := store.Save(ctx, trace); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "saved trace %s\n", trace.ID)
	}
	if pdfPath != "" {
		data, err := report.Render(topo, rep, events)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", pdfPath, err)
		}
	}
	return nil
}

func verifyCmd(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	topoPath := fs.String("topology", "", "topology file")
	logPath := fs.String("log", "", "text trace to verify")
	storeDir := fs.String("store", "", "trace store directory")
	id := fs.String("id", "", "trace ID in the store")
	format := fs.String("format", "json", "trace store format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	topo, events, err := loadTrace(ctx, *topoPath, *logPath, *storeDir, *id, *format)
	if err != nil {
		return err
	}
	rep := verify.Check(topo, events)
	fmt.Fprint(stdout, rep)
	if !rep.Passed() {
		return errVerification
	}
	return nil
}

func displayCmd(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("display", flag.ContinueOnError)
	topoPath := fs.String("topology", "", "topology file")
	logPath := fs.String("log", "", "text trace to replay")
	storeDir := fs.String("store", "", "trace store directory")
	id := fs.String("id", "", "trace ID in the store")
	format := fs.String("format", "json", "trace store format: json or yaml")
	tick := fs.Duration("tick", 0, "pause between events (0 = no pause)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	topo, events, err := loadTrace(ctx, *topoPath, *logPath, *storeDir, *id, *format)
	if err != nil {
		return err
	}
	return display.Replay(ctx, topo, events, *tick, func(f display.Frame) error {
		if h := f.Header(); h != "" {
			fmt.Fprintln(stdout, h)
		}
		_, err := io.WriteString(stdout, f.Text)
		return err
	})
}

func dotCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("dot", flag.ContinueOnError)
	topoPath := fs.String("topology", "", "topology file")
	asJSON := fs.Bool("json", false, "print the topology as JSON instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topoPath == "" {
		return errors.New("dot: -topology is required")
	}
	topo, err := config.LoadTopology(*topoPath)
	if err != nil {
		return err
	}
	v := &production.DOTVisualizer{}
	if *asJSON {
		data, err := v.ExportJSON(topo)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	_, err = io.WriteString(stdout, v.Export(topo, nil))
	return err
}

func serveCmd(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	storeDir := fs.String("store", "", "save simulated traces in this directory")
	format := fs.String("format", "json", "trace store format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var opts []server.Option
	if *storeDir != "" {
		store, err := openStore(*storeDir, *format)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithStore(store))
	}
	setGinMode(cfg.GinMode)
	return server.New(cfg, opts...).ListenAndServe(*addr)
}

func loadTrace(ctx context.Context, topoPath, logPath, storeDir, id, format string) (*metrosim.Topology, []metrosim.Event, error) {
	if storeDir != "" {
		if id == "" {
			return nil, nil, errors.New("-id is required with -store")
		}
		store, err := openStore(storeDir, format)
		if err != nil {
			return nil, nil, err
		}
		trace, err := store.Load(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return trace.Topology, trace.Events, nil
	}

	if topoPath == "" || logPath == "" {
		return nil, nil, errors.New("-topology and -log are required unless -store is given")
	}
	topo, err := config.LoadTopology(topoPath)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	events, err := metrosim.ReadLog(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", logPath, err)
	}
	return topo, events, nil
}

func openStore(dir, format string) (production.TraceStore, error) {
	switch format {
	case "json":
		return production.NewJSONTraceStore(dir)
	case "yaml", "yml":
		return production.NewYAMLTraceStore(dir)
	}
	return nil, fmt.Errorf("unknown store format %q", format)
}

func writeLogFile(path string, events []metrosim.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := metrosim.WriteLog(f, events); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
