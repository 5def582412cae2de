package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/tanks/tournament"
)

const recentLimit = 10

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// FinishedMsg reports that the tournament returned.
type FinishedMsg struct {
	Summary tournament.Summary
	Err     error
}

// TournamentModel is the progress dashboard of a running tournament.
type TournamentModel struct {
	total     int
	played    int
	turns     int64
	startTime time.Time
	now       time.Time
	recent    []string
	points    map[string]int
	updates   <-chan tournament.Update
	finished  *FinishedMsg
}

func NewTournamentModel(total int, updates <-chan tournament.Update) TournamentModel {
	now := time.Now()
	return TournamentModel{
		total:     total,
		startTime: now,
		now:       now,
		points:    make(map[string]int),
		updates:   updates,
	}
}

func waitForUpdate(updates <-chan tournament.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return u
	}
}

func (m TournamentModel) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m TournamentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.now = time.Time(msg)
		if m.finished != nil {
			return m, nil
		}
		return m, tickCmd()
	case tournament.Update:
		m.played++
		m.turns += int64(msg.Turns)
		if w := msg.Winner(); w != "" {
			m.points[w] += 3
		} else {
			m.points[msg.Pairing.P1]++
			m.points[msg.Pairing.P2]++
		}
		line := fmt.Sprintf("Worker %d: %s %s vs %s, %s (%d turns)",
			msg.Worker, msg.Pairing.Map.Name, msg.Pairing.P1, msg.Pairing.P2, msg.Result.String(), msg.Turns)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > recentLimit {
			m.recent = m.recent[:recentLimit]
		}
		return m, waitForUpdate(m.updates)
	case FinishedMsg:
		m.finished = &msg
		return m, nil
	}
	return m, nil
}

func (m TournamentModel) View() string {
	elapsed := m.now.Sub(m.startTime)
	var gamesPerSec, turnsPerSec float64
	if elapsed >= time.Second {
		gamesPerSec = float64(m.played) / elapsed.Seconds()
		turnsPerSec = float64(m.turns) / elapsed.Seconds()
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Tank tournament") + "\n\n")
	fmt.Fprintf(&sb, "Matches:    %d / %d\n", m.played, m.total)
	fmt.Fprintf(&sb, "Turns:      %d\n", m.turns)
	fmt.Fprintf(&sb, "Duration:   %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(&sb, "Games/Sec:  %.2f\n", gamesPerSec)
	fmt.Fprintf(&sb, "Turns/Sec:  %.2f\n\n", turnsPerSec)

	sb.WriteString("Standings:\n")
	names := make([]string, 0, len(m.points))
	for n := range m.points {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if m.points[names[i]] != m.points[names[j]] {
			return m.points[names[i]] > m.points[names[j]]
		}
		return names[i] < names[j]
	})
	for _, n := range names {
		fmt.Fprintf(&sb, "  %-12s %d\n", n, m.points[n])
	}

	sb.WriteString("\nRecent Matches:\n")
	for _, r := range m.recent {
		sb.WriteString(r + "\n")
	}

	if m.finished != nil {
		if m.finished.Err != nil {
			fmt.Fprintf(&sb, "\nStopped: %v\n", m.finished.Err)
		} else {
			sb.WriteString("\n" + resultStyle.Render(fmt.Sprintf("Done: %d played, %d skipped", m.finished.Summary.Played, m.finished.Summary.Skipped)) + "\n")
		}
	}
	sb.WriteString(helpStyle.Render("\nPress q to quit.") + "\n")
	return sb.String()
}
