// Package timer implements the focus countdown as a pure state machine and a
// driver that carries out its side effects.
package timer

import (
	"errors"
	"fmt"

	"clementus360/focusflow/types"
)

type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
)

var (
	ErrInvalidTransition    = errors.New("timer: invalid transition")
	ErrConfirmationRequired = errors.New("timer: confirmation required")
	ErrNoDuration           = errors.New("timer: custom session type needs a duration")
)

// Durations holds the default length in seconds of the built-in session types.
var Durations = map[string]int{
	types.SessionTypePomodoro:   1500,
	types.SessionTypeShortBreak: 300,
	types.SessionTypeLongBreak:  900,
}

// DurationFor returns requested when it is positive, otherwise the default
// for sessionType. Zero means no duration is known.
func DurationFor(sessionType string, requested int) int {
	if requested > 0 {
		return requested
	}
	return Durations[sessionType]
}

// Machine is the complete timer state. It is a value; transitions return a
// new Machine.
type Machine struct {
	State     State
	Type      string
	Duration  int // full length of the current type, seconds
	Remaining int // seconds
	SessionID string
	TaskID    *string
}

// New returns an idle machine for sessionType.
func New(sessionType string, duration int) (Machine, error) {
	full := DurationFor(sessionType, duration)
	if full <= 0 {
		return Machine{}, ErrNoDuration
	}
	return Machine{State: Idle, Type: sessionType, Duration: full, Remaining: full}, nil
}

// Active reports whether a countdown is in progress, running or paused.
func (m Machine) Active() bool {
	return m.State == Running || m.State == Paused
}

// Progress is the elapsed fraction of the current countdown in [0,1].
func (m Machine) Progress() float64 {
	if m.Duration <= 0 {
		return 0
	}
	p := float64(m.Duration-m.Remaining) / float64(m.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

type EventKind int

const (
	EventStart EventKind = iota
	EventStarted
	EventStartFailed
	EventPause
	EventResume
	EventReset
	EventTick
	EventChangeType
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStarted:
		return "started"
	case EventStartFailed:
		return "start-failed"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventReset:
		return "reset"
	case EventTick:
		return "tick"
	case EventChangeType:
		return "change-type"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is an input to Transition. Only the fields relevant to Kind are read.
type Event struct {
	Kind      EventKind
	TaskID    *string
	Type      string
	Duration  int
	SessionID string // EventStarted
	Confirmed bool   // EventChangeType
}

type EffectKind int

const (
	CreateSession EffectKind = iota
	CompleteSession
	CancelSession
	PlayTone
	StartTicker
	StopTicker
)

// Effect is a side effect requested by a transition. CreateSession answers
// with EventStarted or EventStartFailed.
type Effect struct {
	Kind      EffectKind
	SessionID string
	TaskID    *string
	Type      string
	Duration  int
}

// Transition applies ev to m. On error m is returned unchanged and no
// effects are produced.
func Transition(m Machine, ev Event) (Machine, []Effect, error) {
	invalid := func() (Machine, []Effect, error) {
		return m, nil, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev.Kind, m.State)
	}

	switch ev.Kind {
	case EventStart:
		if m.State != Idle {
			return invalid()
		}
		sessionType := ev.Type
		if sessionType == "" {
			sessionType = m.Type
		}
		full := DurationFor(sessionType, ev.Duration)
		if sessionType == m.Type && ev.Duration <= 0 {
			full = m.Duration
		}
		if full <= 0 {
			return m, nil, ErrNoDuration
		}
		return m, []Effect{{Kind: CreateSession, TaskID: ev.TaskID, Type: sessionType, Duration: full}}, nil

	case EventStarted:
		if m.State != Idle || ev.SessionID == "" || ev.Duration <= 0 {
			return invalid()
		}
		m.State = Running
		m.Type = ev.Type
		m.Duration = ev.Duration
		m.Remaining = ev.Duration
		m.SessionID = ev.SessionID
		m.TaskID = ev.TaskID
		return m, []Effect{{Kind: StartTicker}}, nil

	case EventStartFailed:
		if m.State != Idle {
			return invalid()
		}
		return m, nil, nil

	case EventPause:
		if m.State != Running {
			return invalid()
		}
		m.State = Paused
		return m, []Effect{{Kind: StopTicker}}, nil

	case EventResume:
		if m.State != Paused {
			return invalid()
		}
		m.State = Running
		return m, []Effect{{Kind: StartTicker}}, nil

	case EventReset:
		if !m.Active() {
			return invalid()
		}
		effects := []Effect{{Kind: StopTicker}}
		if m.SessionID != "" {
			effects = append(effects, Effect{Kind: CancelSession, SessionID: m.SessionID})
		}
		return m.rewound(), effects, nil

	case EventTick:
		if m.State != Running {
			return invalid()
		}
		m.Remaining--
		if m.Remaining > 0 {
			return m, nil, nil
		}
		effects := []Effect{{Kind: StopTicker}}
		if m.SessionID != "" {
			effects = append(effects, Effect{Kind: CompleteSession, SessionID: m.SessionID})
		}
		effects = append(effects, Effect{Kind: PlayTone})
		return m.rewound(), effects, nil

	case EventChangeType:
		full := DurationFor(ev.Type, ev.Duration)
		if ev.Type == "" || full <= 0 {
			return m, nil, ErrNoDuration
		}
		var effects []Effect
		if m.Active() {
			if !ev.Confirmed {
				return m, nil, ErrConfirmationRequired
			}
			effects = append(effects, Effect{Kind: StopTicker})
			if m.SessionID != "" {
				effects = append(effects, Effect{Kind: CancelSession, SessionID: m.SessionID})
			}
		}
		m = m.rewound()
		m.Type = ev.Type
		m.Duration = full
		m.Remaining = full
		return m, effects, nil
	}
	return invalid()
}

// rewound returns m idle with a full countdown and no session. Built-in types
// go back to their standard length; custom types keep the started length.
func (m Machine) rewound() Machine {
	if full, ok := Durations[m.Type]; ok {
		m.Duration = full
	}
	m.State = Idle
	m.Remaining = m.Duration
	m.SessionID = ""
	m.TaskID = nil
	return m
}
