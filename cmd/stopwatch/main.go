// Command stopwatch runs a dual-mode stopwatch on GPIO push-buttons and
// publishes its events to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/pflag"

	"github.com/sweeney/stopwatch/internal/config"
	"github.com/sweeney/stopwatch/internal/control"
	"github.com/sweeney/stopwatch/internal/gpio"
	"github.com/sweeney/stopwatch/internal/logger"
	"github.com/sweeney/stopwatch/internal/logic"
	"github.com/sweeney/stopwatch/internal/metrics"
	"github.com/sweeney/stopwatch/internal/mqtt"
	"github.com/sweeney/stopwatch/internal/notify"
	"github.com/sweeney/stopwatch/internal/status"
	"github.com/sweeney/stopwatch/internal/web"
)

func main() {
	cfg, printState, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "stopwatch: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, printState); err != nil {
		logger.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}

// parseFlags loads the config file named by --config and applies any
// explicitly set flags on top of it.
func parseFlags(args []string, errOut io.Writer) (*config.Config, bool, error) {
	fs := pflag.NewFlagSet("stopwatch", pflag.ContinueOnError)
	fs.SetOutput(errOut)

	def := config.DefaultConfig()
	path := fs.StringP("config", "c", "", "YAML config file")
	tick := fs.Duration("tick", def.TickInterval, "Tick interval (one second of stopwatch time)")
	debounce := fs.Duration("debounce", def.Debounce, "Button debounce guard interval")
	poll := fs.Duration("poll", def.PollInterval, "Button polling interval")
	heartbeat := fs.Duration("heartbeat", def.Heartbeat, "Heartbeat interval (0 to disable)")
	broker := fs.String("broker", def.MQTT.Broker, "MQTT broker address")
	httpAddr := fs.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)")
	policy := fs.String("adjust-policy", string(def.AdjustPolicy), "Adjustment bounds: wrap or clamp")
	logLevel := fs.String("log-level", def.Log.Level, "Log level: debug, info, warn, error")
	printState := fs.Bool("print-state", false, "Print current button levels and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return nil, false, err
	}

	if fs.Changed("tick") {
		cfg.TickInterval = *tick
	}
	if fs.Changed("debounce") {
		cfg.Debounce = *debounce
	}
	if fs.Changed("poll") {
		cfg.PollInterval = *poll
	}
	if fs.Changed("heartbeat") {
		cfg.Heartbeat = *heartbeat
	}
	if fs.Changed("broker") {
		cfg.MQTT.Broker = *broker
	}
	if fs.Changed("http") {
		cfg.HTTP.Addr = *httpAddr
	}
	if fs.Changed("adjust-policy") {
		cfg.AdjustPolicy = logic.AdjustPolicy(*policy)
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, *printState, nil
}

func run(cfg *config.Config, printState bool) error {
	level, _ := logger.ParseLevel(cfg.Log.Level)
	logger.SetLevel(level)
	if err := logger.Init(cfg.Log.File); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()

	m := metrics.New()
	queue := control.NewQueue()

	// Initialize GPIO
	board, err := gpio.NewRealBoard(cfg.GPIO, postControl(queue, m, metrics.SourceGPIO))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	// Print state mode
	if printState {
		b, err := board.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Println(formatButtons(b))
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:     cfg.MQTT.Broker,
		ClientID:   cfg.MQTT.ClientID,
		BufferSize: cfg.MQTT.BufferSize,
		OnCommand:  postControl(queue, m, metrics.SourceMQTT),
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	notifier := notify.NewShoutrrr(cfg.Notify.URLs, nil)
	defer notifier.Close()

	clk := clock.New()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(clk.Now(), status.Config{
		TickMs:       cfg.TickInterval.Milliseconds(),
		PollMs:       cfg.PollInterval.Milliseconds(),
		DebounceMs:   cfg.Debounce.Milliseconds(),
		HeartbeatMs:  cfg.Heartbeat.Milliseconds(),
		AdjustPolicy: string(cfg.AdjustPolicy),
		Broker:       cfg.MQTT.Broker,
		HTTPAddr:     cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warnf("failed to publish startup event: %v", err)
	} else {
		logger.Infof("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, m.Handler(), cfg.HTTP.LiveInterval)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("http server error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		logger.Infof("http status server listening on %s", cfg.HTTP.Addr)
	}

	logger.Infof("started: tick=%v poll=%v debounce=%v policy=%s broker=%s heartbeat=%v",
		cfg.TickInterval, cfg.PollInterval, cfg.Debounce, cfg.AdjustPolicy, cfg.MQTT.Broker, cfg.Heartbeat)

	tick := clk.Ticker(cfg.TickInterval)
	defer tick.Stop()
	poll := clk.Ticker(cfg.PollInterval)
	defer poll.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loopConfig{
		board:      board,
		publisher:  publisher,
		mqttStatus: publisher,
		notifier:   notifier,
		metrics:    m,
		tracker:    tracker,
		queue:      queue,
		policy:     cfg.AdjustPolicy,
		debounce:   cfg.Debounce,
		heartbeat:  cfg.Heartbeat,
		now:        clk.Now,
		tick:       tick.C,
		poll:       poll.C,
		sig:        sigCh,
	})
}

// postControl returns the callback GPIO edge handlers and MQTT commands use
// to hand control events to the run loop.
func postControl(q *control.Queue, m *metrics.Metrics, source string) func(logic.InputKind) {
	return func(kind logic.InputKind) {
		m.ObserveControl(kind, source)
		if !q.Post(kind) {
			m.CoalescedTotal.Inc()
			logger.Debugf("control: %s from %s coalesced", kind, source)
		}
	}
}

// loopConfig carries everything runLoop reads from. All fields are required.
type loopConfig struct {
	board      gpio.Board
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	tracker    *status.Tracker
	queue      *control.Queue

	policy    logic.AdjustPolicy
	debounce  time.Duration
	heartbeat time.Duration

	now  func() time.Time
	tick <-chan time.Time
	poll <-chan time.Time
	sig  <-chan os.Signal
}

// runLoop is the only goroutine that touches the stopwatch. Ticks, button
// polls and control events are applied one at a time in the order the loop
// receives them; pending control events are applied before a tick or poll.
func runLoop(lc loopConfig) error {
	sw := logic.NewStopwatch(lc.policy, lc.now())
	panel := logic.NewPanel(lc.debounce)

	var lastOut logic.Outputs
	outWritten := false

	apply := func(in logic.Input) {
		for _, event := range sw.Handle(in) {
			logEvent(event)
			lc.metrics.ObserveEvent(event)
			if err := lc.publisher.Publish(event); err != nil {
				// Don't crash on publish failure
				logger.Warnf("publish error: %v", err)
				lc.metrics.PublishErrors.Inc()
			}
			lc.notifier.Notify(event)
		}
	}

	drainControl := func(t time.Time) {
		for _, kind := range lc.queue.Drain() {
			apply(logic.Input{Kind: kind, Time: t})
		}
	}

	syncState := func() {
		st := sw.State()
		if !outWritten || st.Outputs != lastOut {
			if err := lc.board.Write(st.Outputs); err != nil {
				logger.Errorf("gpio write error: %v", err)
				lc.metrics.GPIOErrors.Inc()
			} else {
				lastOut = st.Outputs
				outWritten = true
			}
		}
		connected := lc.mqttStatus.IsConnected()
		lc.tracker.Update(st)
		lc.tracker.SetMQTTConnected(connected)
		lc.metrics.SetState(st)
		lc.metrics.SetMQTTConnected(connected)
	}

	syncState()

	for {
		select {
		case s := <-lc.sig:
			logger.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			lc.tracker.SetMQTTConnected(lc.mqttStatus.IsConnected())
			snap := lc.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  lc.now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := lc.publisher.PublishSystem(event); err != nil {
				logger.Warnf("failed to publish shutdown event: %v", err)
			} else {
				logger.Infof("published shutdown event")
			}
			return nil

		case <-lc.queue.Ready():
			drainControl(lc.now())
			syncState()

		case <-lc.tick:
			t := lc.now()
			drainControl(t)
			apply(logic.Input{Kind: logic.InputTick, Time: t})

			// Check for heartbeat
			if hb := sw.CheckHeartbeat(t, lc.heartbeat); hb != nil {
				c := hb.State.Counts
				logger.Infof("heartbeat: uptime=%v time=%s mode=%s status=%s ticks=%d alarms=%d",
					hb.Uptime, hb.State.Time, hb.State.Mode, hb.State.Status, c.Ticks, c.Alarms)

				lc.tracker.Update(hb.State)
				lc.tracker.SetMQTTConnected(lc.mqttStatus.IsConnected())
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					lc.tracker.SetNetwork(net)
				}
				snap := lc.tracker.Snapshot()
				hbEvent := mqtt.SystemEvent{
					Timestamp:  hb.Timestamp,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := lc.publisher.PublishSystem(hbEvent); err != nil {
					logger.Warnf("heartbeat publish error: %v", err)
				}
			}
			syncState()

		case <-lc.poll:
			t := lc.now()
			drainControl(t)
			b, err := lc.board.Read()
			if err != nil {
				logger.Errorf("gpio read error: %v", err)
				lc.metrics.GPIOErrors.Inc()
				syncState()
				continue
			}
			for _, in := range panel.Process(b, t) {
				apply(in)
			}
			syncState()
		}
	}
}

func logEvent(e logic.Event) {
	if e.Type == logic.EventAdjusted {
		logger.Infof("event: %s %s%+d (%s %s %s)", e.Type, e.Field, e.Delta, e.Time, e.Mode, e.Status)
		return
	}
	logger.Infof("event: %s (%s %s %s)", e.Type, e.Time, e.Mode, e.Status)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func formatButtons(b logic.Buttons) string {
	level := func(pressed bool) string {
		if pressed {
			return "PRESSED"
		}
		return "RELEASED"
	}
	return fmt.Sprintf("MODE: %s, HOUR+: %s, HOUR-: %s, MINUTE+: %s, MINUTE-: %s, SECOND+: %s, SECOND-: %s",
		level(b.Mode), level(b.HourUp), level(b.HourDown),
		level(b.MinuteUp), level(b.MinuteDown), level(b.SecondUp), level(b.SecondDown))
}
