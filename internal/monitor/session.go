// Package monitor coordinates interface discovery, counter collection and
// history maintenance for a single bandwidth monitoring session.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i978sukhoi/nbwin/internal/collect"
	"github.com/i978sukhoi/nbwin/internal/history"
	"github.com/i978sukhoi/nbwin/internal/netif"
	"github.com/i978sukhoi/nbwin/internal/stats"
)

// ErrNoActiveInterfaces indicates that discovery found no usable interface.
var ErrNoActiveInterfaces = errors.New("no active network interfaces found")

// DefaultUpdateInterval is the time between automatic collection cycles.
const DefaultUpdateInterval = time.Second

// Options configures a monitoring session. Zero values select the defaults.
type Options struct {
	// UpdateInterval is the time between automatic collection cycles.
	UpdateInterval time.Duration
	// HistorySize is the number of samples each history window retains.
	HistorySize int
	// ScaleFloor is the minimum of the rendered rate scale, in bytes per second.
	ScaleFloor float64
	// ScaleHeadroom is the multiplier applied to window maxima at read time.
	ScaleHeadroom float64
}

func (o Options) withDefaults() Options {
	if o.UpdateInterval <= 0 {
		o.UpdateInterval = DefaultUpdateInterval
	}
	if o.HistorySize <= 0 {
		o.HistorySize = history.DefaultCapacity
	}
	if o.ScaleFloor <= 0 {
		o.ScaleFloor = history.DefaultFloor
	}
	if o.ScaleHeadroom <= 0 {
		o.ScaleHeadroom = history.DefaultHeadroom
	}
	return o
}

// Session tracks bandwidth for the active network interfaces of the host.
// It owns one history window and one snapshot chain per interface and moves
// through a small lifecycle state machine as it ticks.
//
// A Session is confined to a single goroutine. The driver loop calls Tick,
// Handle and the accessors from the same goroutine; none of them are safe
// for concurrent use.
type Session struct {
	id        uuid.UUID
	collector *collect.Collector
	source    netif.Source
	clock     stats.Clock
	opts      Options

	interfaces []netif.Interface
	selected   int

	previous map[int]stats.CounterSnapshot
	latest   map[int]stats.BandwidthSample
	windows  map[int]*history.Window

	state    SessionState
	started  time.Time
	lastTick time.Time

	onStateChange func(old, new SessionState)
}

// NewSession discovers the active interfaces, takes baseline snapshots and
// returns a session in the ready state. It fails if discovery fails or no
// interface is both up and non-loopback.
func NewSession(ctx context.Context, source netif.Source, opts Options) (*Session, error) {
	return NewSessionWithClock(ctx, source, stats.RealClock{}, opts)
}

// NewSessionWithClock creates a session with a custom clock.
// This is primarily used for testing.
func NewSessionWithClock(ctx context.Context, source netif.Source, clock stats.Clock, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	s := &Session{
		id:        uuid.New(),
		collector: collect.NewCollector(source),
		source:    source,
		clock:     clock,
		opts:      opts,
		previous:  make(map[int]stats.CounterSnapshot),
		latest:    make(map[int]stats.BandwidthSample),
		windows:   make(map[int]*history.Window),
		state:     StateInitializing,
	}

	if err := s.discover(ctx); err != nil {
		return nil, err
	}
	s.baseline(ctx)

	if err := s.setState(StateReady); err != nil {
		return nil, err
	}

	slog.Info("Monitoring session ready",
		"session", s.id,
		"interfaces", len(s.interfaces),
		"selected", s.Selected().DisplayName())

	return s, nil
}

// discover lists interfaces and keeps the ones worth monitoring,
// in discovery order.
func (s *Session) discover(ctx context.Context) error {
	all, err := s.source.ListInterfaces(ctx)
	if err != nil {
		return fmt.Errorf("interface discovery: %w", err)
	}

	for _, iface := range all {
		if iface.Up && !iface.Loopback {
			s.interfaces = append(s.interfaces, iface)
		}
	}

	if len(s.interfaces) == 0 {
		return ErrNoActiveInterfaces
	}

	return nil
}

// baseline takes the initial snapshot for every monitored interface. A failed
// read degrades to a zero-valued snapshot stamped now, so the first tick still
// has something to derive against.
func (s *Session) baseline(ctx context.Context) {
	now := s.clock.Now()
	s.started = now
	s.lastTick = now

	for _, result := range s.collector.Collect(ctx, s.interfaces) {
		index := result.Interface.Index
		snapshot := result.Snapshot
		if result.Err != nil {
			slog.Warn("Using zero baseline for interface",
				"interface", result.Interface.DisplayName(),
				"error", result.Err)
			snapshot = stats.NewBaseline(index, now)
		}

		s.previous[index] = snapshot
		s.windows[index] = history.NewWindow(s.opts.HistorySize, s.opts.ScaleFloor, s.opts.ScaleHeadroom)
	}
}

// TickDue reports whether enough time has passed since the last collection
// cycle for another one to run.
func (s *Session) TickDue(now time.Time) bool {
	return now.Sub(s.lastTick) >= s.opts.UpdateInterval
}

// Tick runs one collection cycle over every monitored interface: read the
// counters, derive a bandwidth sample against the previous snapshot and
// append it to the interface's history window. Interfaces whose read failed
// keep their previous snapshot, so the next successful read averages the
// rate over the gap. Tick is a no-op once shutdown has started.
func (s *Session) Tick(ctx context.Context) error {
	if s.state.IsShuttingDown() {
		return nil
	}
	if err := s.setState(StateTicking); err != nil {
		return err
	}

	s.collect(ctx)

	return s.setState(StateReady)
}

func (s *Session) collect(ctx context.Context) {
	for _, result := range s.collector.Collect(ctx, s.interfaces) {
		index := result.Interface.Index
		if result.Err != nil {
			continue // keep the previous snapshot, the collector already logged
		}

		if sample, ok := stats.Derive(result.Snapshot, s.previous[index]); ok {
			s.latest[index] = sample
			s.windows[index].Append(sample)
		}
		s.previous[index] = result.Snapshot
	}

	// Advance even when reads failed, so a flapping interface does not make
	// the driver retry in a tight loop.
	s.lastTick = s.clock.Now()
}

// Handle applies a command between ticks. Selection commands are ignored at
// the list boundaries and after shutdown has started.
func (s *Session) Handle(ctx context.Context, cmd Command) error {
	switch cmd {
	case CommandSelectPrevious:
		return s.moveSelection(-1)
	case CommandSelectNext:
		return s.moveSelection(1)
	case CommandForceUpdate:
		return s.Tick(ctx)
	case CommandResetHistory:
		if s.state != StateReady {
			return nil
		}
		s.selectedWindow().Clear()
		return nil
	case CommandQuit:
		if s.state.IsShuttingDown() {
			return nil
		}
		return s.setState(StateQuitting)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// moveSelection shifts the cursor by delta, clamped to the interface list.
// The newly selected interface starts with a cleared history window so its
// graph scale is rebuilt from fresh samples.
func (s *Session) moveSelection(delta int) error {
	if !s.state.CanSwitch() {
		return nil
	}

	target := s.selected + delta
	if target < 0 || target >= len(s.interfaces) {
		return nil
	}

	if err := s.setState(StateSwitching); err != nil {
		return err
	}

	s.selected = target
	s.selectedWindow().Clear()
	slog.Debug("Interface selection changed", "interface", s.Selected().DisplayName())

	return s.setState(StateReady)
}

// Stop terminates the session. It is safe to call multiple times.
func (s *Session) Stop() {
	if s.state.IsTerminal() {
		return
	}

	if !s.state.IsShuttingDown() {
		if err := s.setState(StateQuitting); err != nil {
			slog.Warn("Session stop from unexpected state", "state", s.state, "error", err)
			return
		}
	}

	if err := s.setState(StateStopped); err != nil {
		slog.Warn("Session stop from unexpected state", "state", s.state, "error", err)
		return
	}

	slog.Info("Monitoring session stopped", "session", s.id, "uptime", s.Uptime())
}

func (s *Session) setState(newState SessionState) error {
	if !IsValidTransition(s.state, newState) {
		return fmt.Errorf("invalid state transition from %s to %s", s.state, newState)
	}

	oldState := s.state
	s.state = newState

	if s.onStateChange != nil {
		s.onStateChange(oldState, newState)
	}

	return nil
}

// OnStateChange registers a callback invoked after every state transition.
func (s *Session) OnStateChange(callback func(old, new SessionState)) {
	s.onStateChange = callback
}

// ID returns the unique identifier of this session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Uptime returns how long the session has been running.
func (s *Session) Uptime() time.Duration {
	return s.clock.Now().Sub(s.started)
}

// Interfaces returns the monitored interfaces in discovery order.
func (s *Session) Interfaces() []netif.Interface {
	return append([]netif.Interface(nil), s.interfaces...)
}

// SelectedIndex returns the cursor position within Interfaces.
func (s *Session) SelectedIndex() int {
	return s.selected
}

// Selected returns the currently selected interface.
func (s *Session) Selected() netif.Interface {
	return s.interfaces[s.selected]
}

// Sample returns the most recent bandwidth sample for the interface with the
// given OS index. The second return value is false until the interface has
// produced its first sample.
func (s *Session) Sample(index int) (stats.BandwidthSample, bool) {
	sample, ok := s.latest[index]
	return sample, ok
}

// LatestSample returns the most recent bandwidth sample for the selected
// interface.
func (s *Session) LatestSample() (stats.BandwidthSample, bool) {
	return s.Sample(s.Selected().Index)
}

// SelectedWindow returns the history window of the selected interface.
func (s *Session) SelectedWindow() *history.Window {
	return s.selectedWindow()
}

func (s *Session) selectedWindow() *history.Window {
	return s.windows[s.interfaces[s.selected].Index]
}
