package records

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cschnabel/svtracker/internal/model"
)

func TestNormalizeMapsByHeaderAndPadsMissingColumns(t *testing.T) {
	raw := model.RawTable{
		Header: []string{"result", "my_deck", "timestamp", "finish_turn", "unknown"},
		Rows: [][]string{
			{"win", "A", "2024-05-01 12:30:00", "7", "x"},
			{"loss", "B", "not a date", "7.0"},
			{"", "", "", ""},
			{"win", "C", "2024/05/02", "-1"},
			{"loss", "D", "2024-05-03T08:00:00+09:00", "abc"},
			{"win", "E", "", "1e30"},
			{"win", "F", "", "99999999999999999999"},
			{"win", "G", "", "9.3e18"},
		},
	}
	table := Normalize(raw)
	if len(table) != 7 {
		t.Fatalf("expected 7 records, got %d", len(table))
	}

	first := table[0]
	if first.Result != model.Win || first.MyDeck != "A" || first.Season != "" || first.Memo != "" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Timestamp == nil || first.Timestamp.Format(model.TimestampLayout) != "2024-05-01 12:30:00" {
		t.Fatalf("expected parsed timestamp, got %v", first.Timestamp)
	}
	if first.FinishTurn == nil || *first.FinishTurn != 7 {
		t.Fatalf("expected finish turn 7, got %v", first.FinishTurn)
	}

	if table[1].Timestamp != nil {
		t.Fatalf("expected unknown timestamp, got %v", table[1].Timestamp)
	}
	if table[1].FinishTurn == nil || *table[1].FinishTurn != 7 {
		t.Fatalf("expected 7.0 to parse as 7, got %v", table[1].FinishTurn)
	}
	if table[2].FinishTurn != nil {
		t.Fatalf("expected negative turn to be unknown")
	}
	if table[3].FinishTurn != nil {
		t.Fatalf("expected unparseable turn to be unknown")
	}
	if ts := table[3].Timestamp; ts == nil || ts.Hour() != 8 || ts.Location() != time.UTC {
		t.Fatalf("expected wall clock 08:00 kept, got %v", ts)
	}
	for _, r := range table[4:] {
		if r.FinishTurn != nil {
			t.Fatalf("expected out of range turn for %s to be unknown, got %d", r.MyDeck, *r.FinishTurn)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	ts := time.Date(2024, 6, 1, 21, 5, 9, 0, time.UTC)
	turn := int64(0)
	rec := model.MatchRecord{
		Season: "S3", Timestamp: &ts, Environment: "ranked", Format: "rotation",
		MyDeck: "A", MyDeckType: "aggro", MyClass: "Swordcraft",
		OpponentDeck: "X", OpponentDeckType: "ramp", OpponentClass: "Runecraft",
		FirstSecond: model.First, Result: model.Win, FinishTurn: &turn,
	}
	row := Serialize(rec)
	if row[1] != "2024-06-01 21:05:09" || row[13] != "0" || row[14] != "" {
		t.Fatalf("unexpected serialized row %v", row)
	}

	back := Normalize(model.RawTable{Header: model.Header(), Rows: [][]string{row}})
	if len(back) != 1 || !reflect.DeepEqual(back[0], rec) {
		t.Fatalf("expected %+v, got %+v", rec, back)
	}

	rec.FinishTurn = nil
	if Serialize(rec)[13] != "" {
		t.Fatalf("expected unknown turn to serialize empty")
	}
}

func TestHeaderMatches(t *testing.T) {
	if !HeaderMatches(append(model.Header(), "", "")) {
		t.Fatalf("expected trailing blanks to be ignored")
	}
	if HeaderMatches(model.Header()[1:]) {
		t.Fatalf("expected short header to mismatch")
	}
	if HeaderMatches(nil) {
		t.Fatalf("expected empty header to mismatch")
	}
}

func day(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func filterTable() model.Table {
	at := func(s string) *time.Time { return ParseTimestamp(s) }
	return model.Table{
		{Season: "S1", Environment: "ranked", Format: "rotation", Group: "A", Timestamp: at("2024-05-01 23:59:59")},
		{Season: "S1", Environment: "casual", Format: "unlimited", Group: "B", Timestamp: at("2024-05-02 00:00:00")},
		{Season: "S2", Environment: "ranked", Format: "draft", Group: "A", Timestamp: at("2024-05-03 10:00:00")},
		{Season: "S1", Environment: "ranked", Format: "rotation", Group: "", Timestamp: nil},
	}
}

func TestFilterPredicates(t *testing.T) {
	table := filterTable()
	tests := []struct {
		name string
		c    Criteria
		want []int
	}{
		{"none", Criteria{}, []int{0, 1, 2, 3}},
		{"season", Criteria{Season: "S1"}, []int{0, 1, 3}},
		{"environment set", Criteria{Environments: []string{"ranked"}}, []int{0, 2, 3}},
		{"format set", Criteria{Formats: []string{"rotation", "draft"}}, []int{0, 2, 3}},
		{"group", Criteria{Groups: []string{"A"}}, []int{0, 2}},
		{"range", Criteria{Date: RangeFilter(day("2024-05-01"), day("2024-05-02"))}, []int{0, 1}},
		{"set", Criteria{Date: SetFilter(day("2024-05-03"))}, []int{2}},
		{"conjunction", Criteria{Season: "S1", Environments: []string{"ranked"}, Date: RangeFilter(day("2024-05-01"), day("2024-05-31"))}, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(table, tt.c)
			want := make(model.Table, 0, len(tt.want))
			for _, i := range tt.want {
				want = append(want, table[i])
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("expected %d rows %v, got %d rows", len(want), tt.want, len(got))
			}
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	table := filterTable()
	snapshot := append(model.Table(nil), table...)
	_ = Filter(table, Criteria{Season: "S2"})
	if !reflect.DeepEqual(table, snapshot) {
		t.Fatalf("input table was modified")
	}
}

func TestNewDateFilter(t *testing.T) {
	if _, err := NewDateFilter("2024-05-01", "2024-05-02", []string{"2024-05-03"}); !errors.Is(err, ErrConflictingDateFilter) {
		t.Fatalf("expected ErrConflictingDateFilter, got %v", err)
	}
	if _, err := NewDateFilter("2024-05-01", "", nil); err == nil {
		t.Fatalf("expected error for half-open range")
	}
	f, err := NewDateFilter("", "", []string{"2024-05-03", " "})
	if err != nil {
		t.Fatalf("set filter: %v", err)
	}
	if f.Mode != DateSet || len(f.Dates) != 1 || f.Dates[0].String() != "2024-05-03" {
		t.Fatalf("unexpected set filter %+v", f)
	}
	f, err = NewDateFilter("", "", nil)
	if err != nil || f.Mode != DateAny {
		t.Fatalf("expected no date filter, got %+v, %v", f, err)
	}
}

func TestOptionsAndSort(t *testing.T) {
	table := filterTable()
	opts := Options(table)
	if !reflect.DeepEqual(opts.Seasons, []string{"S1", "S2"}) {
		t.Fatalf("unexpected seasons %v", opts.Seasons)
	}
	if !reflect.DeepEqual(opts.Groups, []string{"A", "B"}) {
		t.Fatalf("unexpected groups %v", opts.Groups)
	}

	sorted := SortByTimestampDesc(table)
	if sorted[0].Format != "draft" || sorted[3].Timestamp != nil {
		t.Fatalf("expected newest first and unknown last, got %+v", sorted)
	}
	if table[0].Format != "rotation" {
		t.Fatalf("input table was reordered")
	}
}

func TestIsBlank(t *testing.T) {
	for _, v := range []string{"", "  ", "nan", "NaN", "<NA>", "NaT", "None"} {
		if !IsBlank(v) {
			t.Fatalf("expected %q to be blank", v)
		}
	}
	if IsBlank("nano") {
		t.Fatalf("expected nano to be a value")
	}
}
