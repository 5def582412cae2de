package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/rules"
)

// FrameMsg carries the state after one turn.
type FrameMsg struct {
	State  *game.State
	Record rules.TurnRecord
}

// DoneMsg ends a watched battle.
type DoneMsg struct {
	Result rules.Result
	Err    error
}

// WatchModel shows a battle as it is played. Events must deliver FrameMsg
// values followed by one DoneMsg.
type WatchModel struct {
	title  string
	events <-chan tea.Msg

	frame    *FrameMsg
	shells   [3]int
	alive    [3]int
	done     *DoneMsg
	quitting bool
}

func NewWatchModel(title string, events <-chan tea.Msg) WatchModel {
	return WatchModel{title: title, events: events}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m WatchModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.quitting = true
			return m, tea.Quit
		}
	case FrameMsg:
		m.frame = &msg
		m.shells, m.alive = [3]int{}, [3]int{}
		for _, t := range msg.State.Tanks {
			if t.Alive {
				m.alive[t.Player]++
				m.shells[t.Player] += t.Shells
			}
		}
		return m, waitForEvent(m.events)
	case DoneMsg:
		m.done = &msg
		return m, nil
	}
	return m, nil
}

func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	if m.frame == nil {
		sb.WriteString("waiting for the first turn...\n")
		return sb.String()
	}

	sb.WriteString(boardStyle.Render(ColorBoard(m.frame.State)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Turn %d\n", m.frame.State.Turn)
	fmt.Fprintf(&sb, "%s tanks=%d shells=%d   %s tanks=%d shells=%d\n",
		tankStyles[1].Render("Player 1"), m.alive[1], m.shells[1],
		tankStyles[2].Render("Player 2"), m.alive[2], m.shells[2])
	if m.frame.Record.Line != "" {
		fmt.Fprintf(&sb, "Actions: %s\n", m.frame.Record.Line)
	}
	if m.done != nil {
		if m.done.Err != nil {
			fmt.Fprintf(&sb, "\nError: %v\n", m.done.Err)
		} else {
			sb.WriteString("\n" + resultStyle.Render(m.done.Result.String()) + "\n")
		}
	}
	sb.WriteString(helpStyle.Render("\nPress q to quit.") + "\n")
	return sb.String()
}
