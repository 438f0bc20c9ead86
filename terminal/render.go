package terminal

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"memory-match/game"
)

const boardColumns = 4

// Title renders the banner shown when play starts.
func Title() string {
	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Memory ", pterm.FgCyan.ToStyle()),
		putils.LettersFromStringWithStyle("Match", pterm.FgLightMagenta.ToStyle()),
	).Srender()
	if err != nil {
		return "Memory Match\n"
	}
	return title
}

// cardLabel shows the id of a face-down card and the symbol otherwise.
func cardLabel(c game.CardView) string {
	switch {
	case c.Matched:
		return pterm.FgGreen.Sprintf("%2d %s", c.ID, c.Value)
	case c.FaceUp:
		return pterm.FgYellow.Sprintf("%2d %s", c.ID, c.Value)
	default:
		return fmt.Sprintf("%2d ??", c.ID)
	}
}

// RenderBoard lays the cards out in rows of four, in deal order.
func RenderBoard(st game.SessionState) string {
	cards := game.BuildCardViews(st.Round.Board)
	var rows []string
	for start := 0; start < len(cards); start += boardColumns {
		end := min(start+boardColumns, len(cards))
		cells := make([]string, 0, boardColumns)
		for _, c := range cards[start:end] {
			cells = append(cells, "["+cardLabel(c)+"]")
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return pterm.DefaultBox.WithTitle("Board").WithTitleTopCenter().Sprint(strings.Join(rows, "\n"))
}

// RenderScores shows both players with an arrow on whoever is to flip.
func RenderScores(st game.SessionState) string {
	var b strings.Builder
	for _, tag := range []game.PlayerTag{game.Player1, game.Player2} {
		p := st.Player(tag)
		marker := "  "
		if st.Phase == game.Playing && st.Round.Turn == tag {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%s: %d\n", marker, p.Name, p.Score)
	}
	return pterm.DefaultBox.WithTitle("Scores").WithTitleTopLeft().Sprint(strings.TrimSuffix(b.String(), "\n"))
}

// ResultLine announces the winner or a tie.
func ResultLine(st game.SessionState) string {
	tag, ok := st.Winner.Tag()
	if !ok {
		return "It's a tie!"
	}
	return st.Names[tag] + " wins!"
}

// RenderResult is the game over box.
func RenderResult(st game.SessionState) string {
	body := fmt.Sprintf("%s\n\n%s %d - %d %s", ResultLine(st),
		st.Names[game.Player1], st.Round.Scores[game.Player1],
		st.Round.Scores[game.Player2], st.Names[game.Player2])
	return pterm.DefaultBox.WithTitle(pterm.LightYellow("|GAME OVER|")).WithTitleTopCenter().
		WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1).Sprint(body)
}
