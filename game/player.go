package game

// PlayerTag identifies one of the two seats.
type PlayerTag int

const (
	Player1 PlayerTag = iota
	Player2
)

// String returns the protocol string for a PlayerTag. It doubles as the
// name store key for that seat.
func (t PlayerTag) String() string {
	switch t {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "unknown"
	}
}

// Valid reports whether t is Player1 or Player2.
func (t PlayerTag) Valid() bool {
	return t == Player1 || t == Player2
}

// Other returns the opposing seat.
func (t PlayerTag) Other() PlayerTag {
	if t == Player1 {
		return Player2
	}
	return Player1
}

// ParsePlayerTag parses the protocol string produced by PlayerTag.String.
func ParsePlayerTag(s string) (PlayerTag, bool) {
	switch s {
	case "player1":
		return Player1, true
	case "player2":
		return Player2, true
	default:
		return 0, false
	}
}

// Player is a seat's display name together with its score.
type Player struct {
	Name  string
	Score int
}

// Scores holds both players' scores, indexed by PlayerTag.
type Scores [2]int

// Winner is the result of a finished round.
type Winner int

const (
	NoWinner Winner = iota
	WinnerPlayer1
	WinnerPlayer2
	Tie
)

// String returns the protocol string for a Winner.
func (w Winner) String() string {
	switch w {
	case WinnerPlayer1:
		return "player1"
	case WinnerPlayer2:
		return "player2"
	case Tie:
		return "tie"
	default:
		return ""
	}
}

// Tag returns the winning seat, or false for a tie or no result.
func (w Winner) Tag() (PlayerTag, bool) {
	switch w {
	case WinnerPlayer1:
		return Player1, true
	case WinnerPlayer2:
		return Player2, true
	default:
		return 0, false
	}
}

// DecideWinner compares final scores. Strictly greater wins; equal scores tie.
func DecideWinner(scores Scores) Winner {
	switch {
	case scores[Player1] > scores[Player2]:
		return WinnerPlayer1
	case scores[Player2] > scores[Player1]:
		return WinnerPlayer2
	default:
		return Tie
	}
}
