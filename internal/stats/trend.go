package stats

import (
	"sort"

	"github.com/cschnabel/svtracker/internal/model"
)

type TrendOptions struct {
	// IncludeTurns adds the average finish turn per opponent deck.
	IncludeTurns bool
}

// OpponentTrend reports how often each opponent deck was met in t and how I did against it.
// The encounter rate denominator is every game in t, including rows with no opponent deck.
func OpponentTrend(t model.Table, opts TrendOptions) model.TrendReport {
	order, groups := groupBy(t, func(r model.MatchRecord) string { return r.OpponentDeck })
	total := int64(len(t))
	if len(order) == 0 {
		return model.TrendReport{NoData: true, Total: total, Rows: []model.TrendRow{}}
	}

	rows := make([]model.TrendRow, 0, len(order))
	for _, opp := range order {
		c := tally(groups[opp])
		row := model.TrendRow{
			OpponentDeck:  opp,
			Encounters:    c.games,
			EncounterRate: Percent(c.games, total),
			Wins:          c.wins,
			Losses:        c.losses,
			WinRate:       Percent(c.wins, c.games),
		}
		if opts.IncludeTurns {
			row.AvgFinishTurn = mean(c.turns)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Encounters != rows[j].Encounters {
			return rows[i].Encounters > rows[j].Encounters
		}
		return lessDesc(rows[i].WinRate, rows[j].WinRate)
	})
	return model.TrendReport{Total: total, Rows: rows}
}
