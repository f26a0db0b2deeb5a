// Package records turns raw sheet rows into the canonical match table and filters it.
package records

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cschnabel/svtracker/internal/model"
)

var timestampLayouts = []string{
	model.TimestampLayout,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// Normalize maps raw rows onto the canonical schema by header name.
// Missing columns come out empty; unparseable timestamps and turns come out nil.
// Rows with no non-blank cell are skipped.
func Normalize(raw model.RawTable) model.Table {
	index := headerIndex(raw.Header)

	out := make(model.Table, 0, len(raw.Rows))
	for _, cells := range raw.Rows {
		if blankRow(cells) {
			continue
		}
		cell := func(c model.Column) string {
			pos, ok := index[c]
			if !ok || pos >= len(cells) {
				return ""
			}
			return cells[pos]
		}

		out = append(out, model.MatchRecord{
			Season:           cell(model.ColSeason),
			Timestamp:        ParseTimestamp(cell(model.ColTimestamp)),
			Environment:      cell(model.ColEnvironment),
			Format:           cell(model.ColFormat),
			Group:            cell(model.ColGroup),
			MyDeck:           cell(model.ColMyDeck),
			MyDeckType:       cell(model.ColMyDeckType),
			MyClass:          cell(model.ColMyClass),
			OpponentDeck:     cell(model.ColOpponentDeck),
			OpponentDeckType: cell(model.ColOpponentDeckType),
			OpponentClass:    cell(model.ColOpponentClass),
			FirstSecond:      cell(model.ColFirstSecond),
			Result:           cell(model.ColResult),
			FinishTurn:       ParseTurn(cell(model.ColFinishTurn)),
			Memo:             cell(model.ColMemo),
		})
	}
	return out
}

func headerIndex(header []string) map[model.Column]int {
	index := make(map[model.Column]int, len(header))
	for i, name := range header {
		col := model.Column(strings.TrimSpace(name))
		if _, seen := index[col]; seen {
			continue
		}
		index[col] = i
	}
	return index
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseTimestamp returns nil for anything it cannot read.
// Times are wall-clock values; no zone conversion is applied.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			if ts.Location() != time.UTC {
				wall := time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
				ts = wall
			}
			return &ts
		}
	}
	return nil
}

// ParseTurn accepts integral numbers such as "7" or "7.0". Negative values and
// values beyond int64 are unknown.
func ParseTurn(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if v < 0 {
			return nil
		}
		return &v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 || f != math.Trunc(f) {
		return nil
	}
	v := int64(f)
	return &v
}

// Serialize renders a record as one sheet row in canonical column order.
func Serialize(r model.MatchRecord) []string {
	row := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		switch c.Kind() {
		case model.KindTime:
			if r.Timestamp != nil {
				row[i] = r.Timestamp.Format(model.TimestampLayout)
			}
		case model.KindInt:
			if r.FinishTurn != nil {
				row[i] = strconv.FormatInt(*r.FinishTurn, 10)
			}
		default:
			row[i] = r.Text(c)
		}
	}
	return row
}

// HeaderMatches reports whether a stored header equals the canonical one,
// ignoring trailing empty cells.
func HeaderMatches(header []string) bool {
	trimmed := header
	for len(trimmed) > 0 && strings.TrimSpace(trimmed[len(trimmed)-1]) == "" {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if len(trimmed) != len(model.Columns) {
		return false
	}
	for i, c := range model.Columns {
		if trimmed[i] != string(c) {
			return false
		}
	}
	return true
}

// IsBlank is true for empty cells and literal "nan"-style placeholders left by older exports.
func IsBlank(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	switch strings.ToLower(v) {
	case "nan", "<na>", "nat", "none":
		return true
	}
	return false
}
