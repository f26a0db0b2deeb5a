package stats

import "github.com/cschnabel/svtracker/internal/model"

// Summarize computes the overall totals and turn-order win rates.
func Summarize(t model.Table) model.Summary {
	if len(t) == 0 {
		return model.Summary{NoData: true}
	}
	c := tally(t)
	return model.Summary{
		Total:         c.games,
		Wins:          c.wins,
		Losses:        c.losses,
		WinRate:       Percent(c.wins, c.games),
		FirstGames:    c.firstGames,
		FirstWins:     c.firstWins,
		FirstWinRate:  Percent(c.firstWins, c.firstGames),
		SecondGames:   c.secondGames,
		SecondWins:    c.secondWins,
		SecondWinRate: Percent(c.secondWins, c.secondGames),
		AvgWinTurn:    mean(c.winTurns),
		AvgLossTurn:   mean(c.lossTurns),
	}
}
