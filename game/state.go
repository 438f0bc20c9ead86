package game

// SessionState is the complete state of one game session. It is a value:
// Reduce returns a new SessionState and never modifies the one it was given.
type SessionState struct {
	Phase GamePhase
	Names [2]string
	// Suggested are remembered names the host may offer as input defaults.
	Suggested [2]string
	Round     Round
	// RoundID identifies the current round. It changes on every new round and
	// on reset so timers scheduled against an older round are ignored.
	RoundID uint64
	// Complete is set once the last pair is matched and cleared by a new round.
	Complete    bool
	Winner      Winner
	LastOutcome FlipOutcome
}

// NewSessionState returns the initial state with remembered names prefilled.
func NewSessionState(suggested [2]string) SessionState {
	return SessionState{Phase: CollectingFirstName, Suggested: suggested}
}

// Player returns the name and current score for a seat.
func (s SessionState) Player(tag PlayerTag) Player {
	if !tag.Valid() {
		return Player{}
	}
	return Player{Name: s.Names[tag], Score: s.Round.Scores[tag]}
}

// CardView is the client-facing representation of a card.
// Value is only included when the card is face-up or matched.
type CardView struct {
	ID      int    `json:"id"`
	Value   string `json:"value,omitempty"`
	FaceUp  bool   `json:"faceUp"`
	Matched bool   `json:"matched"`
}

// PlayerView is the client-facing representation of a player.
type PlayerView struct {
	Tag    string `json:"tag"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Active bool   `json:"active"`
}

// SessionView is the full session snapshot sent to a renderer.
type SessionView struct {
	Type      string        `json:"type"`
	Phase     string        `json:"phase"`
	RoundID   uint64        `json:"roundId"`
	Players   [2]PlayerView `json:"players"`
	Suggested [2]string     `json:"suggested"`
	Cards     []CardView    `json:"cards"`
	Turn      string        `json:"turn,omitempty"`
	// Resolving is true while a revealed pair waits for the reveal delay.
	Resolving   bool   `json:"resolving"`
	LastOutcome string `json:"lastOutcome,omitempty"`
	Winner      string `json:"winner,omitempty"`
}

// BuildCardViews constructs the client-facing card list.
// Face-down cards do not expose their value.
func BuildCardViews(board Board) []CardView {
	views := make([]CardView, len(board))
	for i, card := range board {
		cv := CardView{ID: card.ID, FaceUp: card.FaceUp, Matched: card.Matched}
		if card.FaceUp || card.Matched {
			cv.Value = card.Value
		}
		views[i] = cv
	}
	return views
}

// BuildView returns the renderer snapshot for s.
func BuildView(s SessionState) SessionView {
	playing := s.Phase == Playing || s.Phase == GameOver
	v := SessionView{
		Type:      "session_state",
		Phase:     s.Phase.String(),
		RoundID:   s.RoundID,
		Suggested: s.Suggested,
		Cards:     []CardView{},
		Winner:    s.Winner.String(),
	}
	for _, tag := range []PlayerTag{Player1, Player2} {
		p := s.Player(tag)
		v.Players[tag] = PlayerView{
			Tag:    tag.String(),
			Name:   p.Name,
			Score:  p.Score,
			Active: s.Phase == Playing && s.Round.Turn == tag,
		}
	}
	if playing {
		v.Cards = BuildCardViews(s.Round.Board)
		v.Turn = s.Round.Turn.String()
		v.Resolving = s.Round.Resolving()
		if s.LastOutcome.Kind != Ignored {
			v.LastOutcome = s.LastOutcome.Kind.String()
		}
	}
	return v
}
