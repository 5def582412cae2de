package rules

import (
	"fmt"
	"strings"

	"github.com/brensch/tanks/game"
)

// Outcome classifies how a battle ended.
type Outcome int

const (
	Ongoing Outcome = iota
	Player1Wins
	Player2Wins
	TieNoTanks
	TieMaxSteps
	TieNoShells
)

func (o Outcome) String() string {
	switch o {
	case Player1Wins:
		return "player1_wins"
	case Player2Wins:
		return "player2_wins"
	case TieNoTanks:
		return "tie_no_tanks"
	case TieMaxSteps:
		return "tie_max_steps"
	case TieNoShells:
		return "tie_no_shells"
	}
	return "ongoing"
}

// Result is the final outcome of a battle.
type Result struct {
	Outcome Outcome
	// Alive holds the living tank counts of player 1 and player 2.
	Alive [2]int
	// Steps is the configured limit (TieMaxSteps) or the starvation window
	// (TieNoShells).
	Steps int
}

// Winner is 1 or 2, or 0 for ties and ongoing battles.
func (r Result) Winner() int {
	switch r.Outcome {
	case Player1Wins:
		return 1
	case Player2Wins:
		return 2
	}
	return 0
}

func (r Result) String() string {
	switch r.Outcome {
	case Player1Wins:
		return fmt.Sprintf("Player 1 won with %d tanks still alive", r.Alive[0])
	case Player2Wins:
		return fmt.Sprintf("Player 2 won with %d tanks still alive", r.Alive[1])
	case TieNoTanks:
		return "Tie, both players have zero tanks"
	case TieMaxSteps:
		return fmt.Sprintf("Tie, reached max steps=%d, player1 has %d, player2 has %d", r.Steps, r.Alive[0], r.Alive[1])
	case TieNoShells:
		return fmt.Sprintf("Tie, both players have zero shells for %d steps", r.Steps)
	}
	return ""
}

func (e *Engine) checkGameOver() {
	var alive [2]int
	starved := true
	for _, t := range e.tanks {
		if !t.Alive {
			continue
		}
		alive[t.Player-1]++
		if t.Shells > 0 {
			starved = false
		}
	}

	if starved {
		e.starvedTicks++
	} else {
		e.starvedTicks = 0
	}

	r := Result{Alive: alive}
	switch {
	case alive[0] == 0 && alive[1] == 0:
		r.Outcome = TieNoTanks
	case alive[0] == 0:
		r.Outcome = Player2Wins
	case alive[1] == 0:
		r.Outcome = Player1Wins
	case e.step+1 >= e.settings.MaxSteps:
		r.Outcome = TieMaxSteps
		r.Steps = e.settings.MaxSteps
	case e.settings.ShellStarvationTicks > 0 && e.starvedTicks >= e.settings.ShellStarvationTicks:
		r.Outcome = TieNoShells
		r.Steps = e.settings.ShellStarvationTicks
	default:
		return
	}
	e.over = true
	e.result = r
}

// TankOutcome is what happened to one tank during a tick.
type TankOutcome struct {
	TankID    int
	Player    int
	Index     int
	Requested game.Action // first answer of the strategy
	Executed  game.Action // differs from Requested after a GetBattleInfo round trip
	Ignored   bool
	Killed    bool // destroyed during this tick
	Dead      bool // destroyed in an earlier tick
}

// TurnRecord is the outcome of one tick.
type TurnRecord struct {
	Turn  int
	Tanks []TankOutcome
	// Line is the comma-separated action log line, one token per tank in
	// birth order.
	Line string
}

func (e *Engine) record(t *turn) TurnRecord {
	rec := TurnRecord{
		Turn:  e.step,
		Tanks: make([]TankOutcome, len(e.tanks)),
	}
	tokens := make([]string, len(e.tanks))
	for k, tank := range e.tanks {
		o := TankOutcome{
			TankID:    tank.ID,
			Player:    tank.Player,
			Index:     tank.Index,
			Requested: t.requested[k],
			Executed:  t.actions[k],
			Ignored:   t.ignored[k],
			Killed:    t.killed[k],
			Dead:      !t.wasAlive[k],
		}
		rec.Tanks[k] = o
		tokens[k] = o.Token()
	}
	rec.Line = strings.Join(tokens, ", ")
	return rec
}

// Token renders one tank's entry of the log line.
func (o TankOutcome) Token() string {
	switch {
	case o.Dead:
		return "killed"
	case o.Killed:
		if o.Requested == game.DoNothing {
			return "killed"
		}
		return o.Requested.String() + " (killed)"
	}
	name := o.Requested.String()
	if o.Ignored && (o.Requested.IsMove() || o.Requested == game.Shoot) {
		name += " (ignored)"
	}
	return name
}
