package stats

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/cschnabel/svtracker/internal/model"
)

func game(deck, opp, firstSecond, result string, turn *int64) model.MatchRecord {
	return model.MatchRecord{
		Season:       "S1",
		Format:       "rotation",
		MyClass:      "Forestcraft",
		MyDeck:       deck,
		MyDeckType:   "aggro",
		OpponentDeck: opp,
		FirstSecond:  firstSecond,
		Result:       result,
		FinishTurn:   turn,
	}
}

func turn(v int64) *int64 { return &v }

func approx(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: expected %.4f, got nil", name, want)
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Fatalf("%s: expected %.4f, got %.4f", name, want, *got)
	}
}

func scenarioTable() model.Table {
	return model.Table{
		game("A", "X", model.First, model.Win, turn(7)),
		game("A", "X", model.Second, model.Win, turn(0)),
		game("A", "X", model.First, model.Loss, turn(6)),
		game("A", "Y", model.Second, model.Win, nil),
	}
}

func TestDeckPerformanceUsesMeanOfMatchupRates(t *testing.T) {
	report := DeckPerformance(scenarioTable())
	if report.NoData {
		t.Fatalf("expected data")
	}
	if len(report.Rows) != 1 {
		t.Fatalf("expected 1 deck row, got %d", len(report.Rows))
	}
	row := report.Rows[0]
	approx(t, "win rate", row.WinRate, 75)
	approx(t, "avg matchup win rate", row.AvgMatchupWinRate, (200.0/3+100)/2)
	if row.Appearances != 4 || row.FirstAppearances != 2 {
		t.Fatalf("expected 4 appearances with 2 first, got %d/%d", row.Appearances, row.FirstAppearances)
	}
	if row.Losses != 1 || row.OpponentsFaced != 2 {
		t.Fatalf("expected 1 loss vs 2 opponents, got %d/%d", row.Losses, row.OpponentsFaced)
	}
	approx(t, "first win rate", row.FirstWinRate, 50)
	approx(t, "second win rate", row.SecondWinRate, 100)
}

func TestDeckPerformanceSingleOpponentMeanEqualsMatchup(t *testing.T) {
	table := model.Table{
		game("B", "X", model.First, model.Win, nil),
		game("B", "X", model.First, model.Loss, nil),
		game("B", "X", model.Second, model.Loss, nil),
	}
	row := DeckPerformance(table).Rows[0]
	matchup := Matchups(table, "B", "").Rows[0]
	if row.AvgMatchupWinRate == nil || matchup.WinRate == nil || *row.AvgMatchupWinRate != *matchup.WinRate {
		t.Fatalf("expected avg matchup rate to equal the single matchup rate, got %v vs %v", row.AvgMatchupWinRate, matchup.WinRate)
	}
}

func TestDeckPerformanceSortsByMatchupRateWithUndefinedLast(t *testing.T) {
	table := model.Table{
		game("NoOpp", "", model.First, model.Win, nil),
		game("Weak", "X", model.First, model.Loss, nil),
		game("Strong", "X", model.First, model.Win, nil),
		game("Mid", "X", model.First, model.Win, nil),
		game("Mid", "Y", model.First, model.Loss, nil),
	}
	var got []string
	for _, r := range DeckPerformance(table).Rows {
		got = append(got, r.Deck)
	}
	want := []string{"Strong", "Mid", "Weak", "NoOpp"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestDeckPerformanceFallsBackToWinRate(t *testing.T) {
	table := model.Table{
		game("Low", "", model.First, model.Loss, nil),
		game("High", "", model.First, model.Win, nil),
	}
	rows := DeckPerformance(table).Rows
	if rows[0].Deck != "High" || rows[1].Deck != "Low" {
		t.Fatalf("expected High before Low, got %s, %s", rows[0].Deck, rows[1].Deck)
	}
}

func TestSummaryCountsConcededWinButExcludesItFromTurns(t *testing.T) {
	s := Summarize(scenarioTable())
	if s.Total != 4 || s.Wins != 3 || s.Losses != 1 {
		t.Fatalf("expected 4 games 3-1, got %d %d-%d", s.Total, s.Wins, s.Losses)
	}
	approx(t, "win rate", s.WinRate, 75)
	approx(t, "avg win turn", s.AvgWinTurn, 7)
	approx(t, "avg loss turn", s.AvgLossTurn, 6)
}

func TestSummaryUndefinedRates(t *testing.T) {
	s := Summarize(model.Table{game("A", "X", model.First, model.Win, turn(0))})
	if s.SecondWinRate != nil {
		t.Fatalf("expected nil second win rate, got %v", *s.SecondWinRate)
	}
	if s.AvgWinTurn != nil || s.AvgLossTurn != nil {
		t.Fatalf("expected nil turn averages")
	}
	approx(t, "first win rate", s.FirstWinRate, 100)
}

func TestEmptyTableReportsNoData(t *testing.T) {
	if !Summarize(nil).NoData {
		t.Fatalf("expected summary no data")
	}
	if r := DeckPerformance(model.Table{}); !r.NoData || len(r.Rows) != 0 {
		t.Fatalf("expected deck report no data")
	}
	if r := OpponentTrend(nil, TrendOptions{IncludeTurns: true}); !r.NoData || len(r.Rows) != 0 {
		t.Fatalf("expected trend no data")
	}
	if r := Matchups(nil, "A", ""); !r.NoData || len(r.Rows) != 0 {
		t.Fatalf("expected matchup no data")
	}
	if r := AnalyzeFocus(nil, "A", ""); !r.NoData {
		t.Fatalf("expected focus no data")
	}
}

func TestOpponentTrendSortAndRates(t *testing.T) {
	table := model.Table{
		game("A", "X", model.First, model.Loss, turn(5)),
		game("A", "Y", model.First, model.Win, turn(8)),
		game("A", "X", model.First, model.Win, turn(0)),
		game("A", "Z", model.First, model.Loss, nil),
		game("A", "", model.First, model.Win, nil),
	}
	report := OpponentTrend(table, TrendOptions{IncludeTurns: true})
	if report.Total != 5 {
		t.Fatalf("expected total 5, got %d", report.Total)
	}
	var got []string
	for _, r := range report.Rows {
		got = append(got, r.OpponentDeck)
	}
	want := []string{"X", "Y", "Z"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
	approx(t, "encounter rate", report.Rows[0].EncounterRate, 40)
	approx(t, "X avg turn", report.Rows[0].AvgFinishTurn, 5)
	if report.Rows[2].AvgFinishTurn != nil {
		t.Fatalf("expected nil turn average for Z")
	}

	plain := OpponentTrend(table, TrendOptions{})
	if plain.Rows[0].AvgFinishTurn != nil {
		t.Fatalf("expected no turn averages without IncludeTurns")
	}
}

func TestOpponentTrendDoesNotMirrorRows(t *testing.T) {
	// A mirror match recorded once must count once.
	table := model.Table{
		game("A", "A", model.First, model.Win, nil),
		game("A", "B", model.First, model.Loss, nil),
	}
	report := OpponentTrend(table, TrendOptions{})
	var encounters int64
	for _, r := range report.Rows {
		encounters += r.Encounters
	}
	if encounters != int64(len(table)) {
		t.Fatalf("expected %d encounters, got %d", len(table), encounters)
	}
	for _, r := range report.Rows {
		if r.OpponentDeck == "A" && (r.Wins != 1 || r.Losses != 0) {
			t.Fatalf("expected A row 1-0, got %d-%d", r.Wins, r.Losses)
		}
	}
}

func TestMatchupsOrderAllTypesFirst(t *testing.T) {
	rows := model.Table{
		{MyDeck: "A", MyDeckType: "aggro", OpponentDeck: "Y", OpponentDeckType: "mid", FirstSecond: model.First, Result: model.Win, FinishTurn: turn(9)},
		{MyDeck: "A", MyDeckType: "aggro", OpponentDeck: "X", OpponentDeckType: "ramp", FirstSecond: model.Second, Result: model.Loss, FinishTurn: turn(10)},
		{MyDeck: "A", MyDeckType: "aggro", OpponentDeck: "X", OpponentDeckType: "combo", FirstSecond: model.First, Result: model.Win, FinishTurn: turn(0)},
		{MyDeck: "A", MyDeckType: "control", OpponentDeck: "X", OpponentDeckType: "combo", FirstSecond: model.First, Result: model.Win, FinishTurn: turn(8)},
		{MyDeck: "B", OpponentDeck: "X", OpponentDeckType: "combo", Result: model.Loss},
	}

	report := Matchups(rows, "A", "")
	type key struct {
		deck string
		typ  string
		all  bool
	}
	var got []key
	for _, r := range report.Rows {
		got = append(got, key{r.OpponentDeck, r.OpponentDeckType, r.AllTypes})
	}
	want := []key{{"X", "", true}, {"X", "combo", false}, {"X", "ramp", false}, {"Y", "", true}, {"Y", "mid", false}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	all := report.Rows[0]
	if all.Games != 3 || all.FirstGames != 2 || all.Wins != 2 || all.Losses != 1 {
		t.Fatalf("unexpected X all-types counts: %+v", all)
	}
	approx(t, "X avg win turn", all.AvgWinTurn, 8)
	approx(t, "X avg loss turn", all.AvgLossTurn, 10)
	approx(t, "X first win rate", all.FirstWinRate, 100)
	approx(t, "X second win rate", all.SecondWinRate, 0)

	typed := Matchups(rows, "A", "aggro")
	if typed.Rows[0].Games != 2 {
		t.Fatalf("expected 2 aggro games vs X, got %d", typed.Rows[0].Games)
	}
}

func TestAggregationsAreIdempotent(t *testing.T) {
	table := scenarioTable()
	snapshot := append(model.Table(nil), table...)

	if !reflect.DeepEqual(DeckPerformance(table), DeckPerformance(table)) {
		t.Fatalf("deck performance differs between calls")
	}
	if !reflect.DeepEqual(OpponentTrend(table, TrendOptions{IncludeTurns: true}), OpponentTrend(table, TrendOptions{IncludeTurns: true})) {
		t.Fatalf("trend differs between calls")
	}
	if !reflect.DeepEqual(Matchups(table, "A", ""), Matchups(table, "A", "")) {
		t.Fatalf("matchups differ between calls")
	}
	if !reflect.DeepEqual(table, snapshot) {
		t.Fatalf("input table was modified")
	}
}

func TestAnalyzeFocusMemosNewestFirst(t *testing.T) {
	older := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	table := model.Table{
		{MyDeck: "A", OpponentDeck: "X", Result: model.Win, Memo: "old", Timestamp: &older},
		{MyDeck: "A", OpponentDeck: "X", Result: model.Loss, Memo: "undated"},
		{MyDeck: "A", OpponentDeck: "Y", Result: model.Win, Memo: "new", Timestamp: &newer},
		{MyDeck: "A", OpponentDeck: "Y", Result: model.Win, Memo: "nan"},
		{MyDeck: "B", OpponentDeck: "Y", Result: model.Win, Memo: "other deck"},
	}
	focus := AnalyzeFocus(table, "A", "")
	var memos []string
	for _, r := range focus.Memos {
		memos = append(memos, r.Memo)
	}
	want := []string{"new", "old", "undated"}
	if !reflect.DeepEqual(memos, want) {
		t.Fatalf("expected memos %v, got %v", want, memos)
	}
	if focus.Summary.Total != 4 {
		t.Fatalf("expected 4 focus games, got %d", focus.Summary.Total)
	}
	if focus.Trend.Total != 4 || len(focus.Matchups.Rows) != 4 {
		t.Fatalf("unexpected focus trend/matchups: %d/%d", focus.Trend.Total, len(focus.Matchups.Rows))
	}
}

func TestPercentBounds(t *testing.T) {
	if Percent(1, 0) != nil {
		t.Fatalf("expected nil for zero denominator")
	}
	approx(t, "0/3", Percent(0, 3), 0)
	approx(t, "3/3", Percent(3, 3), 100)
}
