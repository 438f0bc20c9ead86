// Package terminal runs a game.Session at a single keyboard.
package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"memory-match/game"
)

// Host drives one session from prompts and prints the board after each move.
type Host struct {
	session *game.Session
	prompt  Prompter
	out     io.Writer
	changed chan struct{}
}

// NewHost attaches a host to sess. It takes over sess.OnChange, so call it
// before starting sess.Run.
func NewHost(sess *game.Session, prompt Prompter, out io.Writer) *Host {
	h := &Host{
		session: sess,
		prompt:  prompt,
		out:     out,
		changed: make(chan struct{}, 1),
	}
	sess.OnChange = func(game.SessionState) {
		select {
		case h.changed <- struct{}{}:
		default:
		}
	}
	return h
}

// Play prompts until the players decline another round, ctx ends or a
// prompt fails.
func (h *Host) Play(ctx context.Context) error {
	fmt.Fprint(h.out, Title())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Drop stale signals; anything published after the snapshot signals again.
		select {
		case <-h.changed:
		default:
		}
		st := h.session.Snapshot()

		switch st.Phase {
		case game.CollectingFirstName:
			if err := h.askName(ctx, st, game.Player1); err != nil {
				return err
			}
		case game.CollectingSecondName:
			if err := h.askName(ctx, st, game.Player2); err != nil {
				return err
			}
		case game.SelectingFirstPlayer:
			if err := h.askFirstPlayer(ctx, st); err != nil {
				return err
			}
		case game.Playing:
			fmt.Fprintln(h.out, RenderScores(st))
			fmt.Fprintln(h.out, RenderBoard(st))
			if st.Round.Resolving() || st.Complete {
				if err := h.wait(ctx); err != nil {
					return err
				}
				continue
			}
			if err := h.askCard(ctx, st); err != nil {
				return err
			}
		case game.GameOver:
			fmt.Fprintln(h.out, RenderBoard(st))
			fmt.Fprintln(h.out, RenderResult(st))
			again, err := h.prompt.Confirm("Play again?", true)
			if err != nil {
				return err
			}
			if !again {
				return nil
			}
			if _, err := h.dispatch(ctx, game.Action{Type: game.ActionReset}); err != nil {
				return err
			}
		}
	}
}

func (h *Host) askName(ctx context.Context, st game.SessionState, tag game.PlayerTag) error {
	label := "Player 1 name"
	if tag == game.Player2 {
		label = "Player 2 name"
	}
	name, err := h.prompt.Text(label, st.Suggested[tag])
	if err != nil {
		return err
	}
	next, err := h.dispatch(ctx, game.Action{Type: game.ActionSubmitName, Name: name})
	if err != nil {
		return err
	}
	if next.Phase == st.Phase {
		fmt.Fprintln(h.out, pterm.Warning.Sprint("Please enter a name."))
	}
	return nil
}

func (h *Host) askFirstPlayer(ctx context.Context, st game.SessionState) error {
	options := []string{
		st.Names[game.Player1] + " (Player 1)",
		st.Names[game.Player2] + " (Player 2)",
	}
	choice, err := h.prompt.Select("Who goes first?", options)
	if err != nil {
		return err
	}
	first := game.Player1
	if choice == options[1] {
		first = game.Player2
	}
	_, err = h.dispatch(ctx, game.Action{Type: game.ActionSelectFirstPlayer, Player: first})
	return err
}

func (h *Host) askCard(ctx context.Context, st game.SessionState) error {
	prompt := fmt.Sprintf("%s, pick a card (0-%d)", st.Names[st.Round.Turn], len(st.Round.Board)-1)
	raw, err := h.prompt.Text(prompt, "")
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		fmt.Fprintln(h.out, pterm.Warning.Sprintf("%q is not a card number.", raw))
		return nil
	}
	card, ok := st.Round.Board.Find(id)
	if !ok || card.FaceUp || card.Matched {
		fmt.Fprintln(h.out, pterm.Warning.Sprintf("Card %d can't be flipped.", id))
		return nil
	}
	_, err = h.dispatch(ctx, game.Action{Type: game.ActionFlipCard, CardID: id})
	return err
}

func (h *Host) dispatch(ctx context.Context, a game.Action) (game.SessionState, error) {
	st, ok := h.session.Dispatch(ctx, a)
	if !ok {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		return st, errSessionClosed
	}
	slog.Debug("dispatched", "tag", "terminal", "phase", st.Phase.String())
	return st, nil
}

// wait blocks until the session publishes a new state.
func (h *Host) wait(ctx context.Context) error {
	select {
	case <-h.changed:
		return nil
	case <-h.session.Done():
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
