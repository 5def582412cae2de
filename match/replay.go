package match

import (
	"fmt"

	"github.com/brensch/tanks/render"
	"github.com/brensch/tanks/store"
)

// Replayed is a battle rebuilt from its archive rows.
type Replayed struct {
	MatchID string
	Map     string
	// Lines holds the action log, one line per turn after the start.
	Lines  []string
	Result string
	Replay *render.Replay
}

// FromArchive rebuilds one match from its rows, which must be sorted by
// turn and start at the starting position.
func FromArchive(rows []store.ArchiveTurnRow) (*Replayed, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	first := rows[0]
	if first.Turn != 0 {
		return nil, fmt.Errorf("match %s: archive starts at turn %d", first.MatchID, first.Turn)
	}

	r := &Replayed{
		MatchID: first.MatchID,
		Map:     first.Map,
		Replay:  &render.Replay{Title: fmt.Sprintf("%s (%s)", first.Map, first.MatchID)},
	}
	for i, row := range rows {
		if row.MatchID != first.MatchID {
			return nil, fmt.Errorf("row %d belongs to match %s, want %s", i, row.MatchID, first.MatchID)
		}
		if int(row.Turn) != i {
			return nil, fmt.Errorf("match %s: turn %d missing", first.MatchID, i)
		}
		r.Replay.Add(row.State(), row.Actions)
		if i > 0 {
			r.Lines = append(r.Lines, row.Actions)
		}
		if row.Result != "" {
			r.Result = row.Result
		}
	}
	r.Replay.Result = r.Result
	return r, nil
}
