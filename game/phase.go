package game

// GamePhase is the top-level state of a session.
type GamePhase int

const (
	CollectingFirstName GamePhase = iota
	CollectingSecondName
	SelectingFirstPlayer
	Playing
	GameOver
)

// String returns the protocol string for a GamePhase.
func (p GamePhase) String() string {
	switch p {
	case CollectingFirstName:
		return "collecting_first_name"
	case CollectingSecondName:
		return "collecting_second_name"
	case SelectingFirstPlayer:
		return "selecting_first_player"
	case Playing:
		return "playing"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}
