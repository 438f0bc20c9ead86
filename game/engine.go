package game

// OutcomeKind tags the result of a single engine step.
type OutcomeKind int

const (
	// Ignored means the step was a guarded no-op and the round is unchanged.
	Ignored OutcomeKind = iota
	// AwaitingSecond means one card is face-up and a second click is needed.
	AwaitingSecond
	// Revealed means two cards are face-up and the pair awaits Resolve.
	Revealed
	Matched
	Mismatched
)

// String returns the protocol string for an OutcomeKind.
func (k OutcomeKind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case AwaitingSecond:
		return "awaiting_second"
	case Revealed:
		return "revealed"
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	default:
		return "unknown"
	}
}

// Round is the board-level state of one play-through. Values are treated as
// immutable: engine functions return a modified copy and never write through
// the Board or Pending slices they receive.
type Round struct {
	ID    uint64
	Board Board
	// Pending holds the ids of face-up, unmatched cards in flip order (0-2).
	Pending []int
	Turn    PlayerTag
	Scores  Scores
}

// NewRound starts a round on board with first acting.
func NewRound(id uint64, board Board, first PlayerTag) Round {
	return Round{ID: id, Board: board, Turn: first}
}

// Clone returns a deep copy of the round.
func (r Round) Clone() Round {
	out := r
	out.Board = r.Board.Clone()
	if r.Pending != nil {
		out.Pending = append([]int(nil), r.Pending...)
	}
	return out
}

// Resolving reports whether a pair is face-up and waiting for resolution.
// No flips are accepted while it is true.
func (r Round) Resolving() bool {
	return len(r.Pending) == 2
}

// FlipOutcome describes what an engine step did.
type FlipOutcome struct {
	Kind OutcomeKind
	// Cards are the ids involved in this step; -1 marks an unused slot.
	Cards         [2]int
	RoundComplete bool
	Scores        Scores
	// Turn is the seat to act after this step.
	Turn PlayerTag
}

func ignored(r Round) FlipOutcome {
	return FlipOutcome{Kind: Ignored, Cards: [2]int{-1, -1}, Scores: r.Scores, Turn: r.Turn}
}

// Flip turns card id face-up. It is ignored while a pair is pending, for an
// unknown id, and for a card that is already face-up or matched.
func Flip(r Round, id int) (Round, FlipOutcome) {
	if r.Resolving() {
		return r, ignored(r)
	}
	idx := r.Board.indexOf(id)
	if idx < 0 {
		return r, ignored(r)
	}
	if card := r.Board[idx]; card.FaceUp || card.Matched {
		return r, ignored(r)
	}

	next := r.Clone()
	next.Board[idx].FaceUp = true
	next.Pending = append(next.Pending, id)

	out := FlipOutcome{Cards: [2]int{-1, -1}, Scores: next.Scores, Turn: next.Turn}
	copy(out.Cards[:], next.Pending)
	if len(next.Pending) == 1 {
		out.Kind = AwaitingSecond
	} else {
		out.Kind = Revealed
	}
	return next, out
}

// Resolve decides the pending pair. It reads only the ids captured in
// r.Pending, so a stale round value cannot resolve cards it never flipped.
// A match scores for the acting seat and keeps the turn; a mismatch turns
// both cards back down and passes the turn.
func Resolve(r Round) (Round, FlipOutcome) {
	if !r.Resolving() {
		return r, ignored(r)
	}
	first, second := r.Board.indexOf(r.Pending[0]), r.Board.indexOf(r.Pending[1])
	if first < 0 || second < 0 {
		return r, ignored(r)
	}

	next := r.Clone()
	out := FlipOutcome{Cards: [2]int{r.Pending[0], r.Pending[1]}}

	if next.Board[first].Value == next.Board[second].Value {
		next.Board[first].Matched = true
		next.Board[second].Matched = true
		next.Scores[next.Turn]++
		out.Kind = Matched
	} else {
		next.Board[first].FaceUp = false
		next.Board[second].FaceUp = false
		next.Turn = next.Turn.Other()
		out.Kind = Mismatched
	}
	next.Pending = nil

	out.Scores = next.Scores
	out.Turn = next.Turn
	out.RoundComplete = next.Board.AllMatched()
	return next, out
}

// ApplyFlip flips a card and, at the resolution point, resolves the pair
// immediately. Hosts that show the pair before resolving use Flip and
// Resolve separately.
func ApplyFlip(r Round, id int) (Round, FlipOutcome) {
	next, out := Flip(r, id)
	if out.Kind != Revealed {
		return next, out
	}
	return Resolve(next)
}
