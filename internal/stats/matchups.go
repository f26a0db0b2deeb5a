package stats

import (
	"sort"

	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

// FocusSlice keeps the games I played with deck, narrowed to deckType unless it is empty.
func FocusSlice(t model.Table, deck, deckType string) model.Table {
	eq := map[model.Column]string{model.ColMyDeck: deck}
	if deckType != "" {
		eq[model.ColMyDeckType] = deckType
	}
	return records.Where(t, eq)
}

type matchupKey struct {
	deck string
	typ  string
}

// Matchups cross-tabulates the focus deck against every opponent deck and type it met.
// Each opponent deck also gets one all-types row, listed before its specific types.
// An empty deckType means every type of the focus deck.
func Matchups(t model.Table, deck, deckType string) model.MatchupReport {
	focus := FocusSlice(t, deck, deckType)
	report := model.MatchupReport{Deck: deck, Type: deckType, Rows: []model.MatchupRow{}}

	pairs := make(map[matchupKey]model.Table)
	byDeck := make(map[string]model.Table)
	for _, r := range focus {
		if records.IsBlank(r.OpponentDeck) {
			continue
		}
		k := matchupKey{deck: r.OpponentDeck, typ: r.OpponentDeckType}
		pairs[k] = append(pairs[k], r)
		byDeck[r.OpponentDeck] = append(byDeck[r.OpponentDeck], r)
	}
	if len(byDeck) == 0 {
		report.NoData = true
		return report
	}

	for k, games := range pairs {
		report.Rows = append(report.Rows, matchupRow(k.deck, k.typ, false, games))
	}
	for opp, games := range byDeck {
		report.Rows = append(report.Rows, matchupRow(opp, "", true, games))
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if a.OpponentDeck != b.OpponentDeck {
			return a.OpponentDeck < b.OpponentDeck
		}
		return matchupSortKey(a) < matchupSortKey(b)
	})
	return report
}

func matchupSortKey(r model.MatchupRow) string {
	if r.AllTypes {
		return "0"
	}
	return "1_" + r.OpponentDeckType
}

func matchupRow(opp, typ string, allTypes bool, games model.Table) model.MatchupRow {
	c := tally(games)
	return model.MatchupRow{
		OpponentDeck:     opp,
		OpponentDeckType: typ,
		AllTypes:         allTypes,
		Games:            c.games,
		FirstGames:       c.firstGames,
		Wins:             c.wins,
		Losses:           c.losses,
		WinRate:          Percent(c.wins, c.games),
		AvgWinTurn:       mean(c.winTurns),
		AvgLossTurn:      mean(c.lossTurns),
		FirstWinRate:     Percent(c.firstWins, c.firstGames),
		SecondWinRate:    Percent(c.secondWins, c.secondGames),
	}
}
