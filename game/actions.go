package game

import (
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"
)

// ActionType enumerates the kinds of actions a session can process.
type ActionType int

const (
	ActionSubmitName ActionType = iota
	ActionSelectFirstPlayer
	ActionFlipCard
	ActionReset
	ActionResolveDue // internal: fired after the reveal delay
	ActionFinishDue  // internal: fired after the game-over delay
)

// Action is one external or timer action applied to a session.
type Action struct {
	Type    ActionType
	Name    string    // SubmitName
	Player  PlayerTag // SelectFirstPlayer
	CardID  int       // FlipCard
	RoundID uint64    // ResolveDue, FinishDue

	reply chan SessionState
}

// EffectType enumerates the side effects a reducer step asks the session to run.
type EffectType int

const (
	EffectStoreName EffectType = iota
	EffectClearNames
	EffectCancelTimers
	EffectRoundStarted
	EffectCardFlipped
	EffectScheduleResolve
	EffectScheduleFinish
	EffectRoundFinished
)

// Effect is a side effect produced by Reduce. The reducer never performs
// effects itself.
type Effect struct {
	Type    EffectType
	RoundID uint64
	Delay   time.Duration
	Key     string
	Value   string
	Outcome FlipOutcome
	Result  RoundResult
}

// RoundResult is the final record of a completed round.
type RoundResult struct {
	RoundID uint64
	Names   [2]string
	Scores  Scores
	Winner  Winner
}

// Options holds the fixed rules of a session.
type Options struct {
	PairCount     int
	Symbols       []string
	RevealDelay   time.Duration
	GameOverDelay time.Duration
	// MaxNameLength limits names in runes; zero means unlimited.
	MaxNameLength int
	// Rand shuffles decks; nil uses the package-level source.
	Rand *rand.Rand
}

// DefaultOptions returns the standard rules: ten fruit pairs, one-second
// reveal and game-over delays and no cap on name length.
func DefaultOptions() Options {
	return Options{
		PairCount:     DefaultPairCount,
		Symbols:       DefaultSymbols,
		RevealDelay:   time.Second,
		GameOverDelay: time.Second,
	}
}

// Validate reports an ErrConfiguration-wrapped error for options that cannot
// deal a board.
func (o Options) Validate() error {
	return validateDeck(o.PairCount, o.Symbols)
}

// Reduce applies one action to state and returns the next state together with
// the effects to run. Actions that do not fit the current phase are ignored:
// the state comes back unchanged and the effect list is empty. Every accepted
// action produces at least one effect.
func (o Options) Reduce(s SessionState, a Action) (SessionState, []Effect) {
	if a.Type == ActionReset {
		return reset(s)
	}

	switch s.Phase {
	case CollectingFirstName:
		if a.Type == ActionSubmitName {
			return o.submitName(s, Player1, a.Name, CollectingSecondName)
		}
	case CollectingSecondName:
		if a.Type == ActionSubmitName {
			return o.submitName(s, Player2, a.Name, SelectingFirstPlayer)
		}
	case SelectingFirstPlayer:
		if a.Type == ActionSelectFirstPlayer {
			return o.startRound(s, a.Player)
		}
	case Playing:
		switch a.Type {
		case ActionFlipCard:
			return o.flip(s, a.CardID)
		case ActionResolveDue:
			return o.resolve(s, a.RoundID)
		case ActionFinishDue:
			return finish(s, a.RoundID)
		}
	case GameOver:
		// Only Reset leaves GameOver.
	}
	return s, nil
}

func (o Options) submitName(s SessionState, tag PlayerTag, raw string, next GamePhase) (SessionState, []Effect) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return s, nil
	}
	if o.MaxNameLength > 0 && utf8.RuneCountInString(name) > o.MaxNameLength {
		return s, nil
	}
	s.Names[tag] = name
	s.Phase = next
	return s, []Effect{{Type: EffectStoreName, Key: tag.String(), Value: name}}
}

func (o Options) startRound(s SessionState, first PlayerTag) (SessionState, []Effect) {
	if !first.Valid() {
		return s, nil
	}
	board, err := GenerateDeck(o.PairCount, o.Symbols, o.Rand)
	if err != nil {
		return s, nil
	}
	s.RoundID++
	s.Round = NewRound(s.RoundID, board, first)
	s.Phase = Playing
	s.Complete = false
	s.Winner = NoWinner
	s.LastOutcome = ignored(s.Round)
	return s, []Effect{{Type: EffectRoundStarted, RoundID: s.RoundID}}
}

func (o Options) flip(s SessionState, id int) (SessionState, []Effect) {
	if s.Complete {
		return s, nil
	}
	round, out := Flip(s.Round, id)
	if out.Kind == Ignored {
		return s, nil
	}
	s.Round = round
	s.LastOutcome = out
	effects := []Effect{{Type: EffectCardFlipped, RoundID: s.RoundID, Outcome: out}}
	if out.Kind == Revealed {
		effects = append(effects, Effect{Type: EffectScheduleResolve, RoundID: s.RoundID, Delay: o.RevealDelay})
	}
	return s, effects
}

func (o Options) resolve(s SessionState, roundID uint64) (SessionState, []Effect) {
	if roundID != s.RoundID || s.Complete {
		return s, nil
	}
	round, out := Resolve(s.Round)
	if out.Kind == Ignored {
		return s, nil
	}
	s.Round = round
	s.LastOutcome = out
	effects := []Effect{{Type: EffectCardFlipped, RoundID: s.RoundID, Outcome: out}}
	if out.RoundComplete {
		s.Complete = true
		effects = append(effects, Effect{Type: EffectScheduleFinish, RoundID: s.RoundID, Delay: o.GameOverDelay})
	}
	return s, effects
}

func finish(s SessionState, roundID uint64) (SessionState, []Effect) {
	if roundID != s.RoundID || !s.Complete {
		return s, nil
	}
	s.Phase = GameOver
	s.Winner = DecideWinner(s.Round.Scores)
	result := RoundResult{
		RoundID: s.RoundID,
		Names:   s.Names,
		Scores:  s.Round.Scores,
		Winner:  s.Winner,
	}
	return s, []Effect{{Type: EffectRoundFinished, RoundID: s.RoundID, Result: result}}
}

// reset returns to name entry from any phase. Bumping RoundID makes any timer
// action still in flight for the old round a no-op.
func reset(s SessionState) (SessionState, []Effect) {
	next := SessionState{Phase: CollectingFirstName, RoundID: s.RoundID + 1}
	return next, []Effect{
		{Type: EffectCancelTimers},
		{Type: EffectClearNames},
	}
}
