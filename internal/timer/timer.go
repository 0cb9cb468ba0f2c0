// Package timer implements the per-exercise rest countdown.
//
// A Timer is idle until started with an exercise's rest text. While running
// it is decremented once per tick by a background goroutine; pausing,
// resetting, expiry and Close stop that goroutine. When the countdown reaches
// zero listeners observe an Expired snapshot, after which the timer is idle
// again.
package timer

import (
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/restinterval"
)

type State int

const (
	Idle State = iota
	Running
	Paused
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Snapshot is the observable state of a Timer.
type Snapshot struct {
	State     State   `json:"state"`
	Remaining int     `json:"remaining"`
	Initial   int     `json:"initial"`
	Fraction  float64 `json:"fraction"` // Remaining / Initial, 0 when Initial is 0
}

// Ticker is the part of *time.Ticker the countdown loop uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

// NewRealTicker is the default TickerFunc.
func NewRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

type Option func(*Timer)

// WithTick sets the tick period. Non-positive values are ignored.
func WithTick(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.tick = d
		}
	}
}

func WithTicker(f TickerFunc) Option {
	return func(t *Timer) {
		if f != nil {
			t.newTicker = f
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(t *Timer) {
		if l != nil {
			t.log = l
		}
	}
}

type Timer struct {
	mu        sync.Mutex
	state     State
	remaining int
	initial   int
	listeners []func(Snapshot)
	stop      chan struct{} // non-nil while a countdown loop owns the timer
	closed    bool

	tick      time.Duration
	newTicker TickerFunc
	log       *logger.Logger
	wg        sync.WaitGroup
}

func New(opts ...Option) *Timer {
	t := &Timer{
		tick:      time.Second,
		newTicker: NewRealTicker,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange registers fn to be called after every state change. fn runs
// without the timer's lock held and may call back into the Timer.
func (t *Timer) OnChange(fn func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Toggle starts the countdown from rest when idle, pauses it when running and
// resumes it when paused. Rest text that parses to zero seconds leaves an idle
// timer untouched.
func (t *Timer) Toggle(rest string) Snapshot {
	t.mu.Lock()
	if t.closed {
		s := t.snapshotLocked()
		t.mu.Unlock()
		return s
	}

	switch t.state {
	case Idle:
		secs := restinterval.ParseSeconds(rest)
		if secs <= 0 {
			s := t.snapshotLocked()
			t.mu.Unlock()
			return s
		}
		t.initial, t.remaining = secs, secs
		t.state = Running
		t.startLocked()
	case Running:
		t.state = Paused
		t.stopLocked()
	case Paused:
		t.state = Running
		t.startLocked()
	}

	s := t.snapshotLocked()
	t.mu.Unlock()
	t.emit(s)
	return s
}

// Reset returns the timer to idle and clears both durations.
func (t *Timer) Reset() Snapshot {
	t.mu.Lock()
	if t.remaining == 0 && t.state == Idle {
		s := t.snapshotLocked()
		t.mu.Unlock()
		return s
	}
	t.stopLocked()
	t.state = Idle
	t.remaining, t.initial = 0, 0
	s := t.snapshotLocked()
	t.mu.Unlock()
	t.emit(s)
	return s
}

// Tick advances a running timer by one second. It is a no-op in any other
// state.
func (t *Timer) Tick() Snapshot {
	t.mu.Lock()
	events := t.tickLocked()
	s := t.snapshotLocked()
	t.mu.Unlock()
	t.emit(events...)
	return s
}

// Close stops the countdown loop and waits for it to exit. The timer ignores
// Toggle afterwards.
func (t *Timer) Close() {
	t.mu.Lock()
	t.closed = true
	t.stopLocked()
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Timer) tickLocked() []Snapshot {
	if t.state != Running {
		return nil
	}
	t.remaining--
	if t.remaining > 0 {
		return []Snapshot{t.snapshotLocked()}
	}

	expired := Snapshot{State: Expired, Remaining: 0, Initial: t.initial, Fraction: 0}
	t.log.Debug("rest timer expired", "initial_seconds", t.initial)
	t.stopLocked()
	t.state = Idle
	t.remaining, t.initial = 0, 0
	return []Snapshot{expired, t.snapshotLocked()}
}

func (t *Timer) startLocked() {
	stop := make(chan struct{})
	t.stop = stop
	tk := t.newTicker(t.tick)
	t.wg.Add(1)
	go t.run(tk, stop)
}

func (t *Timer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) run(tk Ticker, stop chan struct{}) {
	defer t.wg.Done()
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C():
			if !t.advance(stop) {
				return
			}
		}
	}
}

// advance applies one tick for the loop that owns stop. It reports whether
// that loop should keep running.
func (t *Timer) advance(stop chan struct{}) bool {
	t.mu.Lock()
	if t.stop != stop {
		t.mu.Unlock()
		return false
	}
	events := t.tickLocked()
	running := t.stop == stop
	t.mu.Unlock()
	t.emit(events...)
	return running
}

func (t *Timer) snapshotLocked() Snapshot {
	s := Snapshot{State: t.state, Remaining: t.remaining, Initial: t.initial}
	if t.initial > 0 {
		s.Fraction = float64(t.remaining) / float64(t.initial)
	}
	return s
}

func (t *Timer) emit(snaps ...Snapshot) {
	if len(snaps) == 0 {
		return
	}
	t.mu.Lock()
	listeners := make([]func(Snapshot), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()
	for _, s := range snaps {
		for _, fn := range listeners {
			fn(s)
		}
	}
}
