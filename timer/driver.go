package timer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"clementus360/focusflow/config"

	"github.com/sirupsen/logrus"
)

// SessionActions persists the sessions the timer creates. The user is bound
// by the implementation.
type SessionActions interface {
	StartSession(ctx context.Context, taskID *string, sessionType string, duration int) (string, error)
	CompleteSession(ctx context.Context, sessionID string, endTime time.Time) error
	CancelSession(ctx context.Context, sessionID string) error
}

// Notifier plays the end-of-countdown cue.
type Notifier interface {
	Notify()
}

// BellNotifier rings the terminal bell.
type BellNotifier struct {
	W io.Writer
}

func (b BellNotifier) Notify() {
	if b.W != nil {
		_, _ = io.WriteString(b.W, "\a")
	}
}

// TickerFunc calls tick every interval until stop is called. stop must not
// wait for a tick in progress.
type TickerFunc func(interval time.Duration, tick func()) (stop func())

func realTicker(interval time.Duration, tick func()) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C:
				tick()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

type DriverConfig struct {
	Actions  SessionActions
	Notifier Notifier
	// Confirm asks the user a yes/no question. Nil declines.
	Confirm  func(prompt string) bool
	Ticker   TickerFunc
	OnChange func(Machine)
	Now      func() time.Time
}

// Driver runs a Machine: it serialises events, executes effects and feeds
// repository results back into the machine.
type Driver struct {
	mu       sync.Mutex
	m        Machine
	cfg      DriverConfig
	gen      uint64
	stopTick func()
	log      *logrus.Entry
}

func NewDriver(m Machine, cfg DriverConfig) *Driver {
	if cfg.Ticker == nil {
		cfg.Ticker = realTicker
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Driver{m: m, cfg: cfg, log: config.Logger.WithField("component", "timer")}
}

// Snapshot returns the current machine.
func (d *Driver) Snapshot() Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.m
}

// Start creates a session and begins the countdown. On failure the timer
// stays idle and the repository error is returned.
func (d *Driver) Start(ctx context.Context, taskID *string, sessionType string, duration int) error {
	return d.send(ctx, Event{Kind: EventStart, TaskID: taskID, Type: sessionType, Duration: duration})
}

func (d *Driver) Pause(ctx context.Context) error {
	return d.send(ctx, Event{Kind: EventPause})
}

func (d *Driver) Resume(ctx context.Context) error {
	return d.send(ctx, Event{Kind: EventResume})
}

// Reset abandons the countdown. Cancelling the session is best effort.
func (d *Driver) Reset(ctx context.Context) error {
	return d.send(ctx, Event{Kind: EventReset})
}

// Tick advances the countdown by one second.
func (d *Driver) Tick(ctx context.Context) error {
	return d.send(ctx, Event{Kind: EventTick})
}

// ChangeType switches the session type. While a countdown is active the user
// is asked first; declining leaves the timer untouched and returns false.
func (d *Driver) ChangeType(ctx context.Context, sessionType string, duration int) (bool, error) {
	active := d.Snapshot().Active()
	if active {
		prompt := fmt.Sprintf("Switch to %s? The current session will be cancelled.", sessionType)
		if d.cfg.Confirm == nil || !d.cfg.Confirm(prompt) {
			return false, nil
		}
	}
	err := d.send(ctx, Event{Kind: EventChangeType, Type: sessionType, Duration: duration, Confirmed: active})
	if errors.Is(err, ErrConfirmationRequired) {
		// Started by another goroutine while we were asking.
		return false, nil
	}
	return err == nil, err
}

// Close stops the ticker without touching the session.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.haltTicker()
}

func (d *Driver) send(ctx context.Context, ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.apply(ctx, ev)
}

func (d *Driver) apply(ctx context.Context, ev Event) error {
	next, effects, err := Transition(d.m, ev)
	if err != nil {
		return err
	}
	d.m = next

	var firstErr error
	for _, eff := range effects {
		follow, err := d.run(ctx, eff)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if follow != nil {
			if err := d.apply(ctx, *follow); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if d.cfg.OnChange != nil {
		d.cfg.OnChange(d.m)
	}
	return firstErr
}

func (d *Driver) run(ctx context.Context, eff Effect) (*Event, error) {
	switch eff.Kind {
	case CreateSession:
		if d.cfg.Actions == nil {
			return &Event{Kind: EventStartFailed}, errors.New("timer: no session store")
		}
		id, err := d.cfg.Actions.StartSession(ctx, eff.TaskID, eff.Type, eff.Duration)
		if err != nil {
			d.log.WithError(err).Warn("Failed to start session")
			return &Event{Kind: EventStartFailed}, err
		}
		return &Event{Kind: EventStarted, SessionID: id, TaskID: eff.TaskID, Type: eff.Type, Duration: eff.Duration}, nil

	case CompleteSession:
		if d.cfg.Actions != nil {
			if err := d.cfg.Actions.CompleteSession(ctx, eff.SessionID, d.cfg.Now()); err != nil {
				d.log.WithError(err).WithField("session_id", eff.SessionID).Warn("Failed to complete session")
			}
		}

	case CancelSession:
		if d.cfg.Actions != nil {
			if err := d.cfg.Actions.CancelSession(ctx, eff.SessionID); err != nil {
				d.log.WithError(err).WithField("session_id", eff.SessionID).Warn("Failed to cancel session")
			}
		}

	case PlayTone:
		if d.cfg.Notifier != nil {
			d.cfg.Notifier.Notify()
		}

	case StartTicker:
		d.haltTicker()
		gen := d.gen
		d.stopTick = d.cfg.Ticker(time.Second, func() { d.tickFrom(ctx, gen) })

	case StopTicker:
		d.haltTicker()
	}
	return nil, nil
}

// tickFrom ignores ticks from a ticker that has since been stopped.
func (d *Driver) tickFrom(ctx context.Context, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	if err := d.apply(ctx, Event{Kind: EventTick}); err != nil {
		d.log.WithError(err).Debug("Dropped tick")
	}
}

func (d *Driver) haltTicker() {
	if d.stopTick != nil {
		d.stopTick()
		d.stopTick = nil
	}
	d.gen++
}
