package game

import (
	"reflect"
	"testing"
)

// testRound builds an unshuffled round where card i has values[i].
func testRound(first PlayerTag, values ...string) Round {
	board := make(Board, len(values))
	for i, v := range values {
		board[i] = Card{ID: i, Value: v}
	}
	return NewRound(1, board, first)
}

func mustFlip(t *testing.T, r Round, id int, want OutcomeKind) Round {
	t.Helper()
	next, out := Flip(r, id)
	if out.Kind != want {
		t.Fatalf("Flip(%d): expected %v, got %v", id, want, out.Kind)
	}
	return next
}

func TestFlipFirstCardAwaitsSecond(t *testing.T) {
	r := testRound(Player1, "A", "B", "A", "B")

	next, out := Flip(r, 2)
	if out.Kind != AwaitingSecond {
		t.Fatalf("expected AwaitingSecond, got %v", out.Kind)
	}
	if out.Cards != [2]int{2, -1} {
		t.Errorf("expected cards [2 -1], got %v", out.Cards)
	}
	if !next.Board[2].FaceUp {
		t.Error("flipped card should be face-up")
	}
	if !reflect.DeepEqual(next.Pending, []int{2}) {
		t.Errorf("expected pending [2], got %v", next.Pending)
	}
	if next.Turn != Player1 || next.Scores != (Scores{}) {
		t.Errorf("first flip must not change turn or score: turn=%v scores=%v", next.Turn, next.Scores)
	}
}

func TestFlipDoesNotMutateInput(t *testing.T) {
	r := testRound(Player1, "A", "A")
	before := r.Clone()

	next := mustFlip(t, r, 0, AwaitingSecond)
	mustFlip(t, next, 1, Revealed)

	if !reflect.DeepEqual(r, before) {
		t.Errorf("Flip modified its input round: %+v", r)
	}
}

func TestFlipSecondCardReveals(t *testing.T) {
	r := testRound(Player1, "A", "B", "A", "B")
	r = mustFlip(t, r, 0, AwaitingSecond)

	next, out := Flip(r, 1)
	if out.Kind != Revealed {
		t.Fatalf("expected Revealed, got %v", out.Kind)
	}
	if !next.Resolving() {
		t.Error("round should be resolving with two pending cards")
	}
	if out.Cards != [2]int{0, 1} {
		t.Errorf("expected cards [0 1], got %v", out.Cards)
	}
	if !next.Board[0].FaceUp || !next.Board[1].FaceUp {
		t.Error("both cards should be face-up until resolved")
	}
}

func TestFlipGuardedNoOps(t *testing.T) {
	base := testRound(Player1, "A", "B", "A", "B")

	faceUp := mustFlip(t, base, 0, AwaitingSecond)

	matched := base.Clone()
	matched.Board[1].Matched = true
	matched.Board[1].FaceUp = true
	matched.Board[3].Matched = true
	matched.Board[3].FaceUp = true

	resolving := mustFlip(t, mustFlip(t, base, 0, AwaitingSecond), 1, Revealed)

	tests := []struct {
		name  string
		round Round
		id    int
	}{
		{"already face-up", faceUp, 0},
		{"already matched", matched, 1},
		{"pair pending", resolving, 2},
		{"unknown id", base, 99},
		{"negative id", base, -1},
	}

	for _, test := range tests {
		before := test.round.Clone()
		next, out := Flip(test.round, test.id)
		if out.Kind != Ignored {
			t.Errorf("%s: expected Ignored, got %v", test.name, out.Kind)
		}
		if !reflect.DeepEqual(next, before) {
			t.Errorf("%s: round changed on a no-op flip", test.name)
		}
		if out.Turn != before.Turn || out.Scores != before.Scores {
			t.Errorf("%s: outcome reports changed turn or scores", test.name)
		}
	}
}

func TestResolveMatch(t *testing.T) {
	r := testRound(Player2, "A", "B", "A", "B")
	r.Scores = Scores{1, 2}
	r = mustFlip(t, mustFlip(t, r, 0, AwaitingSecond), 2, Revealed)

	next, out := Resolve(r)
	if out.Kind != Matched {
		t.Fatalf("expected Matched, got %v", out.Kind)
	}
	if !next.Board[0].Matched || !next.Board[2].Matched {
		t.Error("both cards of the pair should be matched")
	}
	if next.Scores != (Scores{1, 3}) {
		t.Errorf("expected acting player's score to go up by exactly 1, got %v", next.Scores)
	}
	if next.Turn != Player2 {
		t.Errorf("matching player should keep the turn, got %v", next.Turn)
	}
	if len(next.Pending) != 0 {
		t.Errorf("pending should be cleared, got %v", next.Pending)
	}
	if out.RoundComplete {
		t.Error("round should not be complete with a pair left")
	}
}

func TestResolveMismatch(t *testing.T) {
	r := testRound(Player1, "A", "B", "A", "B")
	r.Scores = Scores{2, 0}
	r = mustFlip(t, mustFlip(t, r, 0, AwaitingSecond), 1, Revealed)

	next, out := Resolve(r)
	if out.Kind != Mismatched {
		t.Fatalf("expected Mismatched, got %v", out.Kind)
	}
	if next.Board[0].FaceUp || next.Board[1].FaceUp {
		t.Error("mismatched cards should return face-down")
	}
	if next.Board[0].Matched || next.Board[1].Matched {
		t.Error("mismatched cards must not be matched")
	}
	if next.Scores != (Scores{2, 0}) {
		t.Errorf("scores should be unchanged on mismatch, got %v", next.Scores)
	}
	if next.Turn != Player2 || out.Turn != Player2 {
		t.Errorf("turn should pass to Player2, got %v", next.Turn)
	}
	if len(next.Pending) != 0 {
		t.Errorf("pending should be cleared, got %v", next.Pending)
	}
}

func TestResolveOnlyTouchesPendingPair(t *testing.T) {
	r := testRound(Player1, "A", "B", "C", "A", "B", "C")
	r.Board[4].FaceUp = true
	r.Board[4].Matched = true
	r.Board[1].FaceUp = true
	r.Board[1].Matched = true
	r = mustFlip(t, mustFlip(t, r, 0, AwaitingSecond), 2, Revealed)

	next, _ := Resolve(r)
	if !next.Board[1].FaceUp || !next.Board[4].FaceUp {
		t.Error("cards outside the pending pair must keep their face state")
	}
	if next.Board[3].FaceUp || next.Board[5].FaceUp {
		t.Error("untouched face-down cards must stay face-down")
	}
}

func TestResolveWithoutPairIsIgnored(t *testing.T) {
	r := testRound(Player1, "A", "A")
	if _, out := Resolve(r); out.Kind != Ignored {
		t.Errorf("Resolve with no pending cards: expected Ignored, got %v", out.Kind)
	}
	r = mustFlip(t, r, 0, AwaitingSecond)
	if _, out := Resolve(r); out.Kind != Ignored {
		t.Errorf("Resolve with one pending card: expected Ignored, got %v", out.Kind)
	}
}

func TestRoundCompletesAfterExactlyAllPairs(t *testing.T) {
	r := testRound(Player1, "A", "B", "C", "A", "B", "C")

	steps := []struct {
		a, b int
		want OutcomeKind
	}{
		{0, 1, Mismatched},
		{0, 3, Matched},
		{1, 2, Mismatched},
		{1, 4, Matched},
		{5, 2, Matched},
	}

	matches := 0
	for i, step := range steps {
		var out FlipOutcome
		r, _ = ApplyFlip(r, step.a)
		r, out = ApplyFlip(r, step.b)
		if out.Kind != step.want {
			t.Fatalf("step %d: expected %v, got %v", i, step.want, out.Kind)
		}
		if out.Kind == Matched {
			matches++
		}
		if out.RoundComplete != (matches == 3) {
			t.Fatalf("step %d: RoundComplete=%v after %d matches", i, out.RoundComplete, matches)
		}
	}

	// Player2 took A after the first miss; Player1 took B and C after the second.
	if r.Scores != (Scores{2, 1}) {
		t.Errorf("expected scores [2 1], got %v", r.Scores)
	}
}

func TestApplyFlipSinglePair(t *testing.T) {
	r := testRound(Player2, "A", "A")

	r, out := ApplyFlip(r, 0)
	if out.Kind != AwaitingSecond {
		t.Fatalf("expected AwaitingSecond, got %v", out.Kind)
	}

	r, out = ApplyFlip(r, 1)
	if out.Kind != Matched {
		t.Fatalf("expected Matched, got %v", out.Kind)
	}
	if !out.RoundComplete {
		t.Error("single pair round should be complete after the match")
	}
	if out.Scores[Player2] != 1 || out.Scores[Player1] != 0 {
		t.Errorf("expected Player2 to score 1, got %v", out.Scores)
	}
	if DecideWinner(out.Scores) != WinnerPlayer2 {
		t.Errorf("expected Player2 to win, got %v", DecideWinner(out.Scores))
	}
	if !r.Board.AllMatched() {
		t.Error("board should be fully matched")
	}
}

func TestDecideWinner(t *testing.T) {
	tests := []struct {
		scores Scores
		want   Winner
	}{
		{Scores{3, 2}, WinnerPlayer1},
		{Scores{2, 3}, WinnerPlayer2},
		{Scores{2, 2}, Tie},
		{Scores{0, 0}, Tie},
	}
	for _, test := range tests {
		if got := DecideWinner(test.scores); got != test.want {
			t.Errorf("DecideWinner(%v) = %v, want %v", test.scores, got, test.want)
		}
	}
}

func TestOutcomeKindString(t *testing.T) {
	tests := []struct {
		kind     OutcomeKind
		expected string
	}{
		{Ignored, "ignored"},
		{AwaitingSecond, "awaiting_second"},
		{Revealed, "revealed"},
		{Matched, "matched"},
		{Mismatched, "mismatched"},
	}
	for _, test := range tests {
		if got := test.kind.String(); got != test.expected {
			t.Errorf("OutcomeKind(%d).String() = %q, want %q", test.kind, got, test.expected)
		}
	}
}
