package game

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// NameStore remembers display names between plays. Keys are PlayerTag strings.
// A session calls Set and Remove from its own writer goroutine, in order, so
// a slow store never holds up the session loop.
type NameStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

const (
	// nameLoadTimeout bounds how long NewSession waits for remembered names.
	nameLoadTimeout = 250 * time.Millisecond
	nameQueueSize   = 16
)

type nameOp struct {
	key    string
	value  string
	remove bool
}

// TelemetrySink is notified about session activity. Optional; may be nil.
type TelemetrySink interface {
	SessionStarted(sessionID string)
	SessionEnded(sessionID string)
	RoundStarted(sessionID string, roundID uint64)
	CardFlipped(sessionID string, kind OutcomeKind)
	RoundFinished(sessionID string, result RoundResult, duration time.Duration)
}

// Session owns one SessionState and applies actions to it sequentially on the
// goroutine running Run. All public methods are safe for concurrent use.
type Session struct {
	ID string

	// Telemetry records session activity; optional.
	Telemetry TelemetrySink
	// OnChange is called on the session goroutine after every accepted action
	// and once when Run starts. It must not block for long.
	OnChange func(SessionState)
	// OnRoundEnd is called on the session goroutine when a round reaches
	// GameOver, with the time since the deal.
	OnRoundEnd func(RoundResult, time.Duration)

	opts      Options
	scheduler Scheduler
	names     NameStore
	nameOps   chan nameOp

	mu    sync.RWMutex
	state SessionState

	// Owned by the Run goroutine.
	resolveTimer TimerToken
	finishTimer  TimerToken
	roundStarted time.Time

	actions chan Action
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSession creates a session. names may be nil, in which case names are not
// remembered. It returns an ErrConfiguration-wrapped error for options that
// cannot deal a board.
func NewSession(id string, opts Options, scheduler Scheduler, names NameStore) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if scheduler == nil {
		scheduler = NewTimerScheduler()
	}

	s := &Session{
		ID:        id,
		opts:      opts,
		scheduler: scheduler,
		names:     names,
		state:     NewSessionState(loadSuggested(id, names, nameLoadTimeout)),
		actions:   make(chan Action, 16),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if names != nil {
		s.nameOps = make(chan nameOp, nameQueueSize)
	}
	return s, nil
}

// loadSuggested reads the remembered names, giving up after timeout.
func loadSuggested(id string, names NameStore, timeout time.Duration) [2]string {
	var suggested [2]string
	if names == nil {
		return suggested
	}
	loaded := make(chan [2]string, 1)
	go func() {
		var got [2]string
		for _, tag := range []PlayerTag{Player1, Player2} {
			if name, ok := names.Get(tag.String()); ok {
				got[tag] = name
			}
		}
		loaded <- got
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case suggested = <-loaded:
	case <-timer.C:
		slog.Warn("name store too slow, starting without remembered names", "tag", "game", "session", id)
	}
	return suggested
}

// Run is the session loop. It processes actions until ctx is cancelled or
// Close is called. It should be run as a goroutine.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer s.cancelTimers()
	if s.nameOps != nil {
		go s.writeNames()
		defer close(s.nameOps)
	}

	if s.Telemetry != nil {
		s.Telemetry.SessionStarted(s.ID)
		defer s.Telemetry.SessionEnded(s.ID)
	}
	s.publish()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case a := <-s.actions:
			s.apply(a)
		}
	}
}

// Close stops the session loop. It does not wait for Run to return; use Done.
func (s *Session) Close() {
	s.once.Do(func() { close(s.stop) })
}

// Done is closed when Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the current state.
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Submit enqueues an action. It reports false if the session has stopped.
func (s *Session) Submit(a Action) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.actions <- a:
		return true
	case <-s.done:
		return false
	}
}

// Dispatch applies an action and waits for the resulting state. It reports
// false if the session stopped or ctx ended first.
func (s *Session) Dispatch(ctx context.Context, a Action) (SessionState, bool) {
	a.reply = make(chan SessionState, 1)
	select {
	case s.actions <- a:
	case <-s.done:
		return SessionState{}, false
	case <-ctx.Done():
		return SessionState{}, false
	}
	select {
	case st := <-a.reply:
		return st, true
	case <-s.done:
		return SessionState{}, false
	case <-ctx.Done():
		return SessionState{}, false
	}
}

// SubmitName enqueues a name for the seat currently being collected.
func (s *Session) SubmitName(name string) bool {
	return s.Submit(Action{Type: ActionSubmitName, Name: name})
}

// SelectFirstPlayer enqueues the choice of who flips first.
func (s *Session) SelectFirstPlayer(tag PlayerTag) bool {
	return s.Submit(Action{Type: ActionSelectFirstPlayer, Player: tag})
}

// FlipCard enqueues a card click.
func (s *Session) FlipCard(id int) bool {
	return s.Submit(Action{Type: ActionFlipCard, CardID: id})
}

// Reset enqueues a return to name entry.
func (s *Session) Reset() bool {
	return s.Submit(Action{Type: ActionReset})
}

func (s *Session) apply(a Action) {
	next, effects := s.opts.Reduce(s.Snapshot(), a)
	if len(effects) > 0 {
		s.mu.Lock()
		s.state = next
		s.mu.Unlock()
		for _, e := range effects {
			s.execute(e)
		}
		s.publish()
	}
	if a.reply != nil {
		a.reply <- next
	}
}

func (s *Session) execute(e Effect) {
	switch e.Type {
	case EffectStoreName:
		s.queueName(nameOp{key: e.Key, value: e.Value})
	case EffectClearNames:
		s.queueName(nameOp{key: Player1.String(), remove: true})
		s.queueName(nameOp{key: Player2.String(), remove: true})
	case EffectCancelTimers:
		s.cancelTimers()
	case EffectRoundStarted:
		s.roundStarted = time.Now()
		slog.Debug("round started", "tag", "game", "session", s.ID, "round", e.RoundID)
		if s.Telemetry != nil {
			s.Telemetry.RoundStarted(s.ID, e.RoundID)
		}
	case EffectCardFlipped:
		if e.Outcome.Kind == Matched || e.Outcome.Kind == Mismatched {
			s.resolveTimer = 0
		}
		if s.Telemetry != nil {
			s.Telemetry.CardFlipped(s.ID, e.Outcome.Kind)
		}
	case EffectScheduleResolve:
		s.resolveTimer = s.schedule(e.Delay, Action{Type: ActionResolveDue, RoundID: e.RoundID})
	case EffectScheduleFinish:
		s.finishTimer = s.schedule(e.Delay, Action{Type: ActionFinishDue, RoundID: e.RoundID})
	case EffectRoundFinished:
		s.finishTimer = 0
		duration := time.Since(s.roundStarted)
		slog.Info("round finished", "tag", "game", "session", s.ID, "round", e.RoundID,
			"winner", e.Result.Winner.String(), "score1", e.Result.Scores[Player1], "score2", e.Result.Scores[Player2])
		if s.Telemetry != nil {
			s.Telemetry.RoundFinished(s.ID, e.Result, duration)
		}
		if s.OnRoundEnd != nil {
			s.OnRoundEnd(e.Result, duration)
		}
	}
}

// schedule posts a back onto the action channel after d. The callback never
// touches state itself; the round check in Reduce rejects it if the round
// changed in the meantime.
func (s *Session) schedule(d time.Duration, a Action) TimerToken {
	return s.scheduler.ScheduleAfter(d, func() {
		s.Submit(a)
	})
}

func (s *Session) cancelTimers() {
	if s.resolveTimer != 0 {
		s.scheduler.Cancel(s.resolveTimer)
		s.resolveTimer = 0
	}
	if s.finishTimer != 0 {
		s.scheduler.Cancel(s.finishTimer)
		s.finishTimer = 0
	}
}

// queueName hands a write to the name writer. A full queue drops the write
// with a warning.
func (s *Session) queueName(op nameOp) {
	if s.nameOps == nil {
		return
	}
	select {
	case s.nameOps <- op:
	default:
		slog.Warn("name store queue full, dropping write", "tag", "game", "session", s.ID, "key", op.key)
	}
}

// writeNames applies queued writes in order until Run closes the queue.
func (s *Session) writeNames() {
	for op := range s.nameOps {
		if op.remove {
			s.names.Remove(op.key)
		} else {
			s.names.Set(op.key, op.value)
		}
	}
}

func (s *Session) publish() {
	if s.OnChange != nil {
		s.OnChange(s.Snapshot())
	}
}
