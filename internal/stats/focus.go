package stats

import (
	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

// AnalyzeFocus collects every report for one of my decks, optionally one type of it.
func AnalyzeFocus(t model.Table, deck, deckType string) model.FocusAnalysis {
	focus := FocusSlice(t, deck, deckType)
	return model.FocusAnalysis{
		NoData:   len(focus) == 0,
		Deck:     deck,
		Type:     deckType,
		Summary:  Summarize(focus),
		Trend:    OpponentTrend(focus, TrendOptions{}),
		Matchups: Matchups(t, deck, deckType),
		Memos:    MemoRecords(focus),
	}
}

// MemoRecords returns the rows carrying a memo, newest first.
func MemoRecords(t model.Table) []model.MatchRecord {
	out := make(model.Table, 0)
	for _, r := range t {
		if !records.IsBlank(r.Memo) {
			out = append(out, r)
		}
	}
	return records.SortByTimestampDesc(out)
}
