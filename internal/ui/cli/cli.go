// Package cli implements a command-line UI to display FreeCell games and their solutions.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	. "github.com/janpfeifer/freecellGo/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	// CharsPerColumn is the width of each tableau column.
	CharsPerColumn = 5

	// MovesPerLine when printing a solution.
	MovesPerLine = 10
)

var (
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Background(lipgloss.Color("15"))
	blackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("2")).
			Padding(0, 1)
	wonStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(1, 2)
)

// UI prints games to a writer, by default os.Stdout.
type UI struct {
	color bool
	out   io.Writer
	width int
}

// New creates a UI that prints to os.Stdout. If color is false, plain text is used.
func New(color bool) *UI {
	ui := &UI{color: color, out: os.Stdout}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		ui.width, _, _ = term.GetSize(int(os.Stdout.Fd()))
	}
	return ui
}

// WithWriter sets where to print. Output is not centered when printing to a writer.
func (ui *UI) WithWriter(w io.Writer) *UI {
	ui.out = w
	ui.width = 0
	return ui
}

// printCentered prints each line of block centered in the terminal, if its width is known.
func (ui *UI) printCentered(block string) {
	lines := strings.Split(block, "\n")
	indent := max((ui.width-lipgloss.Width(block))/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			_, _ = fmt.Fprintln(ui.out)
			continue
		}
		_, _ = fmt.Fprintf(ui.out, "%s%s\n", strings.Repeat(" ", indent), line)
	}
}

func centerString(s string, fit int) string {
	width := lipgloss.Width(s)
	if width >= fit {
		return s
	}
	marginLeft := (fit - width) / 2
	marginRight := fit - width - marginLeft
	return strings.Repeat(" ", marginLeft) + s + strings.Repeat(" ", marginRight)
}

// card renders one card, or an empty slot with the given placeholder.
func (ui *UI) card(c Card, placeholder string) string {
	if c == NoCard {
		if ui.color {
			return emptyStyle.Render(placeholder)
		}
		return placeholder
	}
	if !ui.color {
		return c.String()
	}
	if c.IsRed() {
		return redStyle.Render(c.Pretty())
	}
	return blackStyle.Render(c.Pretty())
}

// Render returns the board: freecells and foundations on top, and the tableau columns below.
func (ui *UI) Render(gs *GameState) string {
	var sb strings.Builder
	for _, c := range gs.FreeCells {
		sb.WriteString(centerString(ui.card(c, "[]"), CharsPerColumn))
	}
	for _, c := range gs.Foundations {
		sb.WriteString(centerString(ui.card(c, "__"), CharsPerColumn))
	}
	sb.WriteString("\n")
	for col := range NumColumns {
		sb.WriteString(centerString(fmt.Sprintf("%d", col), CharsPerColumn))
	}
	sb.WriteString("\n")

	maxLen := 0
	for _, cards := range gs.Tableau {
		maxLen = max(maxLen, len(cards))
	}
	for row := range maxLen {
		for _, cards := range gs.Tableau {
			if row < len(cards) {
				sb.WriteString(centerString(ui.card(cards[row], ""), CharsPerColumn))
			} else {
				sb.WriteString(strings.Repeat(" ", CharsPerColumn))
			}
		}
		if row < maxLen-1 {
			sb.WriteString("\n")
		}
	}
	if !ui.color {
		return sb.String()
	}
	return boardStyle.Render(sb.String())
}

// PrintState prints the board.
func (ui *UI) PrintState(gs *GameState) {
	_, _ = fmt.Fprintln(ui.out)
	ui.printCentered(ui.Render(gs))
	if gs.IsWon() {
		ui.PrintWon()
	}
	_, _ = fmt.Fprintln(ui.out)
}

// PrintWon prints a congratulation banner.
func (ui *UI) PrintWon() {
	msg := "*** All cards in the foundations! ***"
	if ui.color {
		msg = wonStyle.Render(msg)
	}
	ui.printCentered(msg)
}

// PrintSolution prints the list of moves, MovesPerLine per line, numbered.
func (ui *UI) PrintSolution(moves []Move) {
	title := fmt.Sprintf("Solution with %d moves:", len(moves))
	if ui.color {
		title = titleStyle.Render(title)
	}
	_, _ = fmt.Fprintln(ui.out, title)
	for ii := 0; ii < len(moves); ii += MovesPerLine {
		parts := make([]string, 0, MovesPerLine)
		for _, m := range moves[ii:min(ii+MovesPerLine, len(moves))] {
			parts = append(parts, fmt.Sprintf("%-7s", m))
		}
		_, _ = fmt.Fprintf(ui.out, "%4d: %s\n", ii+1, strings.TrimRight(strings.Join(parts, " "), " "))
	}
}

// Replay prints the board after each move of the solution, starting from initial. The initial state
// is not changed. It returns an error if a move cannot be executed.
func (ui *UI) Replay(initial *GameState, moves []Move) error {
	gs := initial.Clone()
	ui.PrintState(gs)
	for ii, m := range moves {
		card, err := movedCard(gs, m)
		if err != nil {
			return err
		}
		if err = gs.Execute(m); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(ui.out, "Move #%d: %s (%s)\n", ii+1, m, ui.card(card, "??"))
		ui.PrintState(gs)
	}
	return nil
}

// movedCard returns the card that the move m takes from its source.
func movedCard(gs *GameState, m Move) (Card, error) {
	if !gs.IsValid(m) {
		return NoCard, errors.Wrapf(ErrInvalidMove, "move %s", m)
	}
	switch m.From.Kind {
	case InTableau:
		return gs.TopCard(int(m.From.Index)), nil
	case InFreeCell:
		return gs.FreeCells[m.From.Index], nil
	}
	return NoCard, errors.Wrapf(ErrInvalidMove, "cannot move from %s", m.From)
}
