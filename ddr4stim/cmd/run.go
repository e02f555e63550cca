package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ddr4stim/datarecording"
	"github.com/sarchlab/ddr4stim/dimm"
	"github.com/sarchlab/ddr4stim/dimm/device/behavioral"
	"github.com/sarchlab/ddr4stim/dimm/signal"
	"github.com/sarchlab/ddr4stim/dimm/trace"
	"github.com/sarchlab/ddr4stim/dimm/workload"
	"github.com/sarchlab/ddr4stim/monitoring"
	"github.com/sarchlab/ddr4stim/sim/hooking"
	"github.com/sarchlab/ddr4stim/sim/simulation"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// runConfig holds the settings of one run.
type runConfig struct {
	seed           int64
	steps          int
	maxCycles      uint64
	readLatency    int
	refreshLatency int
	freqMHz        float64
	legacyBitMap   bool
	vcdPath        string
	dbPath         string
	statePath      string
	logCommands    bool
	monitor        bool
	monitorPort    int
	openBrowser    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the DIMM with a random, protocol-correct workload.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStimulus(cmd.Context(), readRunConfig(cmd))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.Int64("seed", 1, "Seed of the random workload.")
	flags.Int("steps", 1000, "Number of commands to issue.")
	flags.Uint64("max-cycles", 6000, "Simulation time bound, in cycles.")
	flags.Int("read-latency", 4, "Cycles between a read and its data.")
	flags.Int("refresh-latency", 16, "Cycles a refresh keeps the banks busy.")
	flags.Float64("freq-mhz", 100, "Clock frequency, in MHz.")
	flags.Bool("legacy-bitmap", false,
		"Use the command layout of the first hand-written testbench.")
	flags.String("vcd", "dump.vcd", "Waveform output. Empty disables it.")
	flags.String("db", "",
		"SQLite output, without the .sqlite3 suffix. Empty disables it.")
	flags.String("state", "", "Write the final bank state to this JSON file.")
	flags.Bool("log-commands", false, "Print every command to stdout.")
	flags.Bool("monitor", false, "Serve the run state over HTTP.")
	flags.Int("monitor-port", 0, "Port of the monitoring server.")
	flags.Bool("open-browser", false, "Open the monitoring page.")
}

func readRunConfig(cmd *cobra.Command) runConfig {
	flags := cmd.Flags()

	c := runConfig{}
	c.seed, _ = flags.GetInt64("seed")
	c.steps, _ = flags.GetInt("steps")
	c.maxCycles, _ = flags.GetUint64("max-cycles")
	c.readLatency, _ = flags.GetInt("read-latency")
	c.refreshLatency, _ = flags.GetInt("refresh-latency")
	c.freqMHz, _ = flags.GetFloat64("freq-mhz")
	c.legacyBitMap, _ = flags.GetBool("legacy-bitmap")
	c.vcdPath, _ = flags.GetString("vcd")
	c.dbPath, _ = flags.GetString("db")
	c.statePath, _ = flags.GetString("state")
	c.logCommands, _ = flags.GetBool("log-commands")
	c.monitor, _ = flags.GetBool("monitor")
	c.monitorPort, _ = flags.GetInt("monitor-port")
	c.openBrowser, _ = flags.GetBool("open-browser")

	return c
}

func (c runConfig) validate() error {
	if c.steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", c.steps)
	}

	if c.readLatency < 1 {
		return fmt.Errorf("read latency must be at least 1, got %d",
			c.readLatency)
	}

	if c.refreshLatency < 1 {
		return fmt.Errorf("refresh latency must be at least 1, got %d",
			c.refreshLatency)
	}

	if c.freqMHz <= 0 {
		return fmt.Errorf("frequency must be positive, got %g MHz", c.freqMHz)
	}

	return nil
}

func openSink(c runConfig, s *simulation.Simulation) (trace.Sink, error) {
	var sinks []trace.Sink

	if c.vcdPath != "" {
		vcd := trace.NewVCDWriter(timing.NS)
		if err := vcd.Open(c.vcdPath); err != nil {
			return nil, err
		}

		sinks = append(sinks, vcd)
	}

	if c.dbPath != "" {
		recorder := datarecording.New(c.dbPath)
		s.RegisterDataRecorder(recorder)

		samples := trace.NewRecorderSinkWith(recorder)
		if err := samples.Open(c.dbPath); err != nil {
			return nil, err
		}

		sinks = append(sinks, samples)
	}

	return trace.NewMultiSink(sinks...), nil
}

func runStimulus(ctx context.Context, c runConfig) error {
	if err := c.validate(); err != nil {
		return err
	}

	s := simulation.NewSimulation()

	sink, err := openSink(c, s)
	if err != nil {
		return err
	}

	model := behavioral.New(bitMap(c.legacyBitMap), c.readLatency)
	comp := dimm.MakeBuilder().
		WithModel(model).
		WithSink(sink).
		WithBitMap(bitMap(c.legacyBitMap)).
		WithReadLatency(c.readLatency).
		WithRefreshLatency(c.refreshLatency).
		WithMaxCycles(c.maxCycles).
		WithFreq(timing.Freq(c.freqMHz) * timing.MHz).
		WithIDGenerator(s.GetIDGenerator()).
		Build("DIMM")
	s.RegisterComponent(comp)

	tracers := newRunTracers(comp)
	tracers.attach(comp)

	if c.logCommands {
		comp.AcceptHook(trace.NewCommandLogger(log.New(os.Stdout, "", 0), comp))
	}

	if recorder := s.GetDataRecorder(); recorder != nil {
		comp.AcceptHook(trace.NewCommandRecorder(recorder, comp))
	}

	driver := workload.NewDriver("Driver", comp, workload.NewRandomPolicy(c.seed))
	s.RegisterComponent(driver)

	if c.monitor {
		startMonitor(c, s, driver)
	}

	ctx, stop := ossignal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "Simulation %s, seed %d\n", s.ID(), c.seed)

	var exec *datarecording.ExecRecorder
	if recorder := s.GetDataRecorder(); recorder != nil {
		exec = datarecording.NewExecRecorder(recorder)
		exec.Start()
		exec.Add("Simulation", s.ID())
		exec.Add("Seed", fmt.Sprint(c.seed))
		exec.Add("Steps", fmt.Sprint(c.steps))
	}

	comp.Reset()
	runErr := driver.Run(ctx, c.steps)

	if exec != nil {
		exec.Add("Cycles", fmt.Sprint(comp.Now()))
		exec.End()
	}

	closeErr := sink.Close()
	s.Terminate()

	var saveErr error
	if c.statePath != "" {
		saveErr = s.Save(c.statePath)
	}

	tracers.report(comp, driver.Stats())

	var faultErr error
	if faults := model.Faults(); len(faults) > 0 {
		for _, f := range faults {
			fmt.Fprintf(os.Stderr, "device fault: %s\n", f)
		}

		faultErr = fmt.Errorf("device model reported %d faults", len(faults))
	}

	return errors.Join(runErr, closeErr, saveErr, faultErr)
}

func startMonitor(c runConfig, s *simulation.Simulation, d *workload.Driver) {
	m := monitoring.NewMonitor().WithPortNumber(c.monitorPort)
	for _, comp := range s.Components() {
		m.RegisterComponent(comp)
	}

	m.StartServer()
	d.AddObserver(m)

	if c.openBrowser {
		m.OpenInBrowser()
	}
}

// runTracers collect the counters of the final report.
type runTracers struct {
	kinds *hooking.KindCountTracer
	tags  *hooking.TagCountTracer
	busy  *hooking.BusyTimeTracer
}

func newRunTracers(comp *dimm.Comp) runTracers {
	isCommand := func(ts hooking.TaskStart) bool { return ts.Kind == "cmd" }

	return runTracers{
		kinds: hooking.NewKindCountTracer(),
		tags:  hooking.NewTagCountTracer(isCommand),
		busy:  hooking.NewBusyTimeTracer(comp, isCommand),
	}
}

func (t runTracers) attach(comp *dimm.Comp) {
	comp.AcceptHook(t.kinds)
	comp.AcceptHook(t.tags)
	comp.AcceptHook(t.busy)
}

func (t runTracers) report(comp *dimm.Comp, stats workload.Stats) {
	now := comp.Now()
	fmt.Fprintf(os.Stderr, "Ran %d commands in %d cycles\n", stats.Steps, now)

	for _, kind := range t.kinds.KindNames() {
		fmt.Fprintf(os.Stderr, "  %-10s %6d issued, %d rejected\n",
			kind, t.kinds.Count(kind), t.kinds.ErrorCount(kind))
	}

	for _, tag := range t.tags.TagNames() {
		fmt.Fprintf(os.Stderr, "  tagged %s: %d\n", tag, t.tags.TagCount(tag))
	}

	if now > 0 {
		fmt.Fprintf(os.Stderr, "Command bus busy %d of %d cycles (%.1f%%)\n",
			t.busy.BusyCycles(), now,
			100*float64(t.busy.BusyCycles())/float64(now))
	}

	fmt.Fprintf(os.Stderr, "Verified %d of %d reads\n",
		stats.VerifiedReads, stats.Issued[signal.CmdKindRead])
}
