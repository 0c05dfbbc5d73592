package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/sdnbridge/internal/events"
	"github.com/smazurov/sdnbridge/internal/led"
	"github.com/smazurov/sdnbridge/internal/metrics"
	"github.com/smazurov/sdnbridge/internal/panel"
)

const (
	minReadBackoff = 100 * time.Millisecond
	maxReadBackoff = 5 * time.Second
)

// Channel is the duplex line connection to the panel.
type Channel interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

// Config holds the loop's tunables.
type Config struct {
	Policy               Policy
	TemperatureThreshold float64
}

// Loop owns the bridge state and processes panel events one at a time.
type Loop struct {
	ch     Channel
	act    Actuator
	bus    *events.Bus
	logger *slog.Logger
	cfg    Config
	state  State
}

// NewLoop creates a loop in the startup state. bus may be nil.
func NewLoop(ch Channel, act Actuator, bus *events.Bus, logger *slog.Logger, cfg Config) *Loop {
	if cfg.Policy == "" {
		cfg.Policy = PolicyBestEffort
	}
	if cfg.TemperatureThreshold == 0 {
		cfg.TemperatureThreshold = DefaultTemperatureThreshold
	}
	return &Loop{
		ch:     ch,
		act:    act,
		bus:    bus,
		logger: logger,
		cfg:    cfg,
		state:  NewState(),
	}
}

type readResult struct {
	line string
	err  error
}

// Run sends the all-green frame and processes panel lines until ctx is
// cancelled. On cancellation it restores the all-green frame and closes the
// channel. Handler errors are logged and never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	lines := make(chan readResult)
	readCtx, stopReader := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.readLines(readCtx, lines)
	}()

	l.sendFrame(led.AllGreen)
	l.publishState("startup")
	l.logger.Info("Bridge running", "policy", l.cfg.Policy, "temperature_threshold", l.cfg.TemperatureThreshold)

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			stopReader()
			wg.Wait()
			return nil
		case r := <-lines:
			if r.err != nil {
				l.logger.Warn("Panel transport error, line dropped", "error", r.err)
				continue
			}
			l.handleLine(ctx, r.line)
		}
	}
}

// State returns the current state. It must not be called while Run is
// active on another goroutine.
func (l *Loop) State() State {
	return l.state
}

// readLines forwards panel lines to out until the channel is closed or ctx
// is done. Consecutive read errors are reported with exponential backoff.
func (l *Loop) readLines(ctx context.Context, out chan<- readResult) {
	backoff := minReadBackoff
	for {
		line, err := l.ch.ReadLine()
		if errors.Is(err, panel.ErrClosed) {
			return
		}

		select {
		case out <- readResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}

		if err == nil || errors.Is(err, panel.ErrMalformedLine) {
			backoff = minReadBackoff
			continue
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = min(backoff*2, maxReadBackoff)
	}
}

// handleLine decodes and dispatches one panel line.
func (l *Loop) handleLine(ctx context.Context, line string) {
	ev := panel.Parse(line)
	metrics.RecordPanelEvent(ev.Kind.String())
	if ev.Kind != panel.KindIgnore {
		l.publish(events.PanelInputEvent{
			Line:      ev.Raw,
			Kind:      ev.Kind.String(),
			Timestamp: now(),
		})
	}

	switch ev.Kind {
	case panel.KindIgnore:
	case panel.KindJoyUp:
		l.selectTarget(DirectionUp)
	case panel.KindJoyLeft:
		l.selectTarget(DirectionLeft)
	case panel.KindJoyRight:
		l.selectTarget(DirectionRight)
	case panel.KindJoyDown:
		l.selectTarget(DirectionDown)
	case panel.KindButton:
		l.toggle(ctx)
	case panel.KindTemperature:
		l.recordTemperature(ev.Value)
	case panel.KindMalformed:
		l.logger.Warn("Malformed panel input", "line", ev.Raw, "error", ev.Err)
	case panel.KindUnknown:
		l.logger.Warn("Unknown command", "command", ev.Raw)
	default:
		l.logger.Warn("Unhandled panel event", "kind", ev.Kind, "line", ev.Raw)
	}
}

func (l *Loop) selectTarget(d Direction) {
	l.state = Select(l.state, d)
	l.logger.Info("Device selected", "direction", d, "target", l.state.Target)
	l.report()
	l.emit("select")
}

func (l *Loop) toggle(ctx context.Context) {
	// The actuator bounds its own calls; shutdown must not abort one that
	// is already in flight.
	next, err := Toggle(context.WithoutCancel(ctx), l.state, l.act, l.cfg.Policy)
	l.state = next

	var actErr *ActuationError
	switch {
	case err == nil:
		l.logger.Info("Toggle applied", "target", l.state.Target)
	case errors.Is(err, ErrNoSelection):
		l.logger.Info("No device selected, use the joystick first")
	case errors.As(err, &actErr):
		l.logger.Error("Actuation failed", "target", actErr.Target, "action", actErr.Action, "error", err)
	default:
		l.logger.Error("Toggle failed", "target", l.state.Target, "error", err)
	}

	l.report()
	l.emit("toggle")
}

func (l *Loop) recordTemperature(celsius float64) {
	var level Level
	l.state, level = RecordTemperature(l.state, celsius, l.cfg.TemperatureThreshold)
	metrics.SetTemperature(celsius)

	if level == LevelHigh {
		l.logger.Warn("Panel temperature high", "celsius", celsius, "threshold", l.cfg.TemperatureThreshold)
	} else {
		l.logger.Debug("Panel temperature", "celsius", celsius)
	}
	l.publish(events.TemperatureEvent{
		Celsius:   celsius,
		Level:     string(level),
		Timestamp: now(),
	})
}

// report logs the status display.
func (l *Loop) report() {
	for _, line := range StatusLines(l.state) {
		l.logger.Info(line)
	}
}

// emit sends the full frame for the current state and publishes a snapshot.
func (l *Loop) emit(reason string) {
	l.sendFrame(Encode(l.state))
	l.publishState(reason)
}

func (l *Loop) sendFrame(f led.Frame) {
	for _, cmd := range f.Lines() {
		if err := l.ch.WriteLine(cmd); err != nil {
			l.logger.Error("Failed to send LED command", "command", cmd, "error", err)
		}
	}
	metrics.IncFeedbackFrames()
}

func (l *Loop) publishState(reason string) {
	for _, link := range Links {
		metrics.SetLinkConnected(link.String(), l.state.Connected[link])
	}
	metrics.SetCongested(l.state.Congested)

	f := Encode(l.state)
	l.publish(events.StateChangedEvent{
		Target:    l.state.Target.String(),
		LinkA:     l.state.Connected[LinkA],
		LinkB:     l.state.Connected[LinkB],
		Congested: l.state.Congested,
		LEDA:      string(f.A),
		LEDB:      string(f.B),
		LEDSwitch: string(f.Switch),
		Reason:    reason,
		Timestamp: now(),
	})
}

func (l *Loop) shutdown() {
	l.logger.Info("Shutting down, restoring LEDs")
	l.sendFrame(led.AllGreen)
	if err := l.ch.Close(); err != nil {
		l.logger.Warn("Failed to close panel channel", "error", err)
	}
}

func (l *Loop) publish(ev events.Event) {
	if l.bus != nil {
		l.bus.Publish(ev)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
