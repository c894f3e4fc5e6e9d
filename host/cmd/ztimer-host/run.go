package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ztimer/board"
	"ztimer/board/config"
	"ztimer/core"
	"ztimer/host/serial"
	"ztimer/metrics"
)

// simStep is the wall time between two advances of mock clocks
const simStep = 10 * time.Millisecond

type runParams struct {
	duration    time.Duration
	periods     map[string]int64
	debugPort   string
	baud        int
	metricsAddr string
}

func init() {
	var p runParams

	runCommand := &cobra.Command{
		Use:   "run",
		Short: "Drive the clock tree with a periodic timer on every clock",
		Long: `Builds the clock tree and keeps one timer pending on every clock, re-armed
each time it fires. Host clocks run in real time; mock clocks are advanced
in simulated time by the same amount. A summary is logged at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			_, err := run(ctx, p)
			return err
		},
	}

	flags := runCommand.Flags()
	flags.DurationVarP(&p.duration, "duration", "d", 3*time.Second, "how long to run, 0 runs until interrupted")
	flags.StringToInt64Var(&p.periods, "period", nil, "timer period in ticks per clock, e.g. msec=100 (default a quarter second)")
	flags.StringVar(&p.debugPort, "debug-port", "", "serial device for clock debug output")
	flags.IntVar(&p.baud, "baud", 115200, "baud rate of the debug port")
	flags.StringVar(&p.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	RootCommand.AddCommand(runCommand)
}

// run drives the configured board until ctx is done or the duration
// elapsed and returns the number of fired timers per clock
func run(ctx context.Context, p runParams) (map[string]uint64, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	closeDebug, err := setupDebug(p)
	if err != nil {
		return nil, err
	}
	defer closeDebug()

	b, err := config.Build(cfg, board.NewRegistry(), log)
	if err != nil {
		return nil, err
	}

	if p.metricsAddr != "" {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(metrics.NewCollector(b.Registry))
		srv, err := metrics.NewServer(p.metricsAddr, promReg)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
		defer srv.Close()
	}

	if p.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.duration)
		defer cancel()
	}

	log.WithFields(logrus.Fields{
		"board":    b.Name,
		"clocks":   b.Registry.Len(),
		"duration": p.duration,
	}).Info("Running clock tree")

	var (
		wg        sync.WaitGroup
		simulated []*pulse
	)
	for _, name := range b.Registry.Names() {
		info, _ := b.Registry.Info(name)
		period := periodFor(info, p.periods)

		if _, ok := b.Mocks[rootOf(b.Registry, name)]; ok {
			simulated = append(simulated, startPulse(info, period))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			wakeLoop(ctx, info, period)
		}()
	}

	if len(b.Mocks) > 0 {
		simulate(ctx, b)
	}
	wg.Wait()

	for _, sp := range simulated {
		sp.stop()
	}

	fired := make(map[string]uint64)
	for _, name := range b.Registry.Names() {
		clock := b.Registry.MustClock(name)
		stats := clock.Stats()
		fired[name] = stats.Fires

		log.WithFields(logrus.Fields{
			"clock":   name,
			"fires":   stats.Fires,
			"sets":    stats.Sets,
			"arms":    stats.Arms,
			"handler": stats.Handlers,
			"now":     clock.Now(),
		}).Info("Clock summary")
	}
	core.DumpTimingRing()

	return fired, nil
}

// setupDebug routes clock debug output to the serial port or the log
func setupDebug(p runParams) (func(), error) {
	core.SetDebugEnabled(params.verbose)
	core.ClearTimingRing()

	if p.debugPort == "" {
		core.SetDebugWriter(func(msg string) { log.Debug(msg) })
		core.InitAsyncDebug()
		return func() {}, nil
	}

	sc := serial.DefaultConfig(p.debugPort)
	sc.Baud = p.baud
	port, err := serial.Open(sc)
	if err != nil {
		return nil, err
	}
	core.SetDebugWriter(serial.DebugWriter(port, log))
	core.InitAsyncDebug()

	return func() {
		core.SetDebugWriter(func(string) {})
		port.Close()
	}, nil
}

// periodFor returns the configured period of a clock, or a quarter second
func periodFor(info board.Info, periods map[string]int64) uint32 {
	if ticks, ok := periods[info.Name]; ok && ticks > 0 {
		return uint32(ticks)
	}
	if period := info.Frequency / 4; period > 0 {
		return period
	}
	return 1
}

// rootOf follows lower clocks down to the hardware clock
func rootOf(reg *board.Registry, name string) string {
	for {
		info, ok := reg.Info(name)
		if !ok || info.Lower == "" {
			return name
		}
		name = info.Lower
	}
}

// wakeLoop waits for period ticks at a time in task context
func wakeLoop(ctx context.Context, info board.Info, period uint32) {
	w := core.NewWakeup()
	entry := log.WithField("clock", info.Name)

	for n := 1; ; n++ {
		w.Arm(info.Clock, period)

		select {
		case <-w.C():
			entry.WithFields(logrus.Fields{"n": n, "now": info.Clock.Now()}).Debug("Tick")
		case <-ctx.Done():
			w.Disarm(info.Clock)
			return
		}
	}
}

// pulse re-arms itself from alarm context
type pulse struct {
	entry  core.Entry
	clock  *core.Clock
	name   string
	period uint32
}

func startPulse(info board.Info, period uint32) *pulse {
	p := &pulse{clock: info.Clock, name: info.Name, period: period}
	p.entry.Callback = p.fire
	p.clock.Set(&p.entry, period)
	return p
}

func (p *pulse) fire(any) {
	p.clock.Set(&p.entry, p.period)
	core.DebugAsync("[RUN] tick " + p.name)
}

func (p *pulse) stop() {
	p.clock.Remove(&p.entry)
}

// simulate advances every mock clock by its frequency times the elapsed
// wall time. Alarm callbacks run on this goroutine.
func simulate(ctx context.Context, b *config.Board) {
	ticker := time.NewTicker(simStep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for name, m := range b.Mocks {
			info, _ := b.Registry.Info(name)
			step := uint32(uint64(info.Frequency) * uint64(simStep) / uint64(time.Second))
			if step == 0 {
				step = 1
			}
			m.Advance(step)
		}
	}
}
