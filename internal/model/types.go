package model

import "time"

type Column string

const (
	ColSeason           Column = "season"
	ColTimestamp        Column = "timestamp"
	ColEnvironment      Column = "environment"
	ColFormat           Column = "format"
	ColGroup            Column = "group"
	ColMyDeck           Column = "my_deck"
	ColMyDeckType       Column = "my_deck_type"
	ColMyClass          Column = "my_class"
	ColOpponentDeck     Column = "opponent_deck"
	ColOpponentDeckType Column = "opponent_deck_type"
	ColOpponentClass    Column = "opponent_class"
	ColFirstSecond      Column = "first_second"
	ColResult           Column = "result"
	ColFinishTurn       Column = "finish_turn"
	ColMemo             Column = "memo"
)

// Columns is the canonical header of the backing sheet, in order.
var Columns = []Column{
	ColSeason,
	ColTimestamp,
	ColEnvironment,
	ColFormat,
	ColGroup,
	ColMyDeck,
	ColMyDeckType,
	ColMyClass,
	ColOpponentDeck,
	ColOpponentDeckType,
	ColOpponentClass,
	ColFirstSecond,
	ColResult,
	ColFinishTurn,
	ColMemo,
}

type ColumnKind int

const (
	KindString ColumnKind = iota
	KindTime
	KindInt
)

func (c Column) Kind() ColumnKind {
	switch c {
	case ColTimestamp:
		return KindTime
	case ColFinishTurn:
		return KindInt
	default:
		return KindString
	}
}

// Header returns the canonical header as plain strings.
func Header() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = string(c)
	}
	return out
}

const (
	First  = "first"
	Second = "second"
	Win    = "win"
	Loss   = "loss"

	FormatDraft   = "draft"
	DraftDeck     = "draft deck"
	DraftDeckType = "draft"

	// TimestampLayout is how timestamps are written to the sheet.
	TimestampLayout = "2006-01-02 15:04:05"
)

// MatchRecord is one played game from the recording user's side.
// Timestamp and FinishTurn are nil when unknown. FinishTurn 0 means the game was conceded.
type MatchRecord struct {
	Season           string     `json:"season"`
	Timestamp        *time.Time `json:"timestamp"`
	Environment      string     `json:"environment"`
	Format           string     `json:"format"`
	Group            string     `json:"group"`
	MyDeck           string     `json:"myDeck"`
	MyDeckType       string     `json:"myDeckType"`
	MyClass          string     `json:"myClass"`
	OpponentDeck     string     `json:"opponentDeck"`
	OpponentDeckType string     `json:"opponentDeckType"`
	OpponentClass    string     `json:"opponentClass"`
	FirstSecond      string     `json:"firstSecond"`
	Result           string     `json:"result"`
	FinishTurn       *int64     `json:"finishTurn"`
	Memo             string     `json:"memo"`
}

func (r MatchRecord) IsWin() bool   { return r.Result == Win }
func (r MatchRecord) IsLoss() bool  { return r.Result == Loss }
func (r MatchRecord) IsFirst() bool { return r.FirstSecond == First }

func (r MatchRecord) IsSecond() bool { return r.FirstSecond == Second }

// Text returns the string value of a string-kinded column.
func (r MatchRecord) Text(c Column) string {
	switch c {
	case ColSeason:
		return r.Season
	case ColEnvironment:
		return r.Environment
	case ColFormat:
		return r.Format
	case ColGroup:
		return r.Group
	case ColMyDeck:
		return r.MyDeck
	case ColMyDeckType:
		return r.MyDeckType
	case ColMyClass:
		return r.MyClass
	case ColOpponentDeck:
		return r.OpponentDeck
	case ColOpponentDeckType:
		return r.OpponentDeckType
	case ColOpponentClass:
		return r.OpponentClass
	case ColFirstSecond:
		return r.FirstSecond
	case ColResult:
		return r.Result
	case ColMemo:
		return r.Memo
	default:
		return ""
	}
}

// Table is the canonical, normalized match history in sheet order.
type Table []MatchRecord

// RawTable is what a backing store returns before normalization.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ImportStats summarizes one CSV import run.
type ImportStats struct {
	Path            string
	LinesRead       int64
	RecordsAppended int64
	Duplicates      int64
	Blank           int64
	StartedAt       time.Time
	CompletedAt     time.Time
}
