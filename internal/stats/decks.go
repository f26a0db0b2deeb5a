package stats

import (
	"sort"

	"github.com/cschnabel/svtracker/internal/model"
)

// DeckPerformance reports one row per deck I played, opponent-only decks excluded.
func DeckPerformance(t model.Table) model.DeckReport {
	order, groups := groupBy(t, func(r model.MatchRecord) string { return r.MyDeck })
	if len(order) == 0 {
		return model.DeckReport{NoData: true, Rows: []model.DeckRow{}}
	}

	rows := make([]model.DeckRow, 0, len(order))
	for _, deck := range order {
		games := groups[deck]
		c := tally(games)

		// Mean of per-opponent win rates, each opponent weighted equally.
		oppOrder, byOpp := groupBy(games, func(r model.MatchRecord) string { return r.OpponentDeck })
		rates := make([]float64, 0, len(oppOrder))
		for _, opp := range oppOrder {
			oc := tally(byOpp[opp])
			if wr := Percent(oc.wins, oc.games); wr != nil {
				rates = append(rates, *wr)
			}
		}

		rows = append(rows, model.DeckRow{
			Deck:              deck,
			Appearances:       c.games,
			FirstAppearances:  c.firstGames,
			Wins:              c.wins,
			Losses:            c.losses,
			WinRate:           Percent(c.wins, c.games),
			FirstWinRate:      Percent(c.firstWins, c.firstGames),
			SecondWinRate:     Percent(c.secondWins, c.secondGames),
			AvgMatchupWinRate: meanFloat(rates),
			OpponentsFaced:    len(oppOrder),
		})
	}

	sortDeckRows(rows)
	return model.DeckReport{Rows: rows}
}

func sortDeckRows(rows []model.DeckRow) {
	key := deckSortKey(rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return lessDesc(key(rows[i]), key(rows[j]))
	})
}

// deckSortKey picks the average matchup win rate, falling back to the win rate
// and then to appearances when no row defines the preferred key.
func deckSortKey(rows []model.DeckRow) func(model.DeckRow) *float64 {
	anyDefined := func(get func(model.DeckRow) *float64) bool {
		for _, r := range rows {
			if get(r) != nil {
				return true
			}
		}
		return false
	}

	avg := func(r model.DeckRow) *float64 { return r.AvgMatchupWinRate }
	if anyDefined(avg) {
		return avg
	}
	wr := func(r model.DeckRow) *float64 { return r.WinRate }
	if anyDefined(wr) {
		return wr
	}
	return func(r model.DeckRow) *float64 {
		v := float64(r.Appearances)
		return &v
	}
}
