// Package render turns report values into display text. Rates are rounded to
// one decimal here and nowhere else.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cschnabel/svtracker/internal/model"
)

const NA = "N/A"

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

func oneDecimal(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1)
}

// Rate renders a percentage like "83.3%".
func Rate(p *float64) string {
	if p == nil {
		return NA
	}
	return oneDecimal(*p) + "%"
}

// Turn renders an average finish turn like "7.5".
func Turn(p *float64) string {
	if p == nil {
		return NA
	}
	return oneDecimal(*p)
}

type SummaryView struct {
	Total         int64  `json:"total" yaml:"total"`
	Wins          int64  `json:"wins" yaml:"wins"`
	Losses        int64  `json:"losses" yaml:"losses"`
	WinRate       string `json:"win_rate" yaml:"win_rate"`
	FirstGames    int64  `json:"first_games" yaml:"first_games"`
	FirstWinRate  string `json:"first_win_rate" yaml:"first_win_rate"`
	SecondGames   int64  `json:"second_games" yaml:"second_games"`
	SecondWinRate string `json:"second_win_rate" yaml:"second_win_rate"`
	AvgWinTurn    string `json:"avg_win_turn" yaml:"avg_win_turn"`
	AvgLossTurn   string `json:"avg_loss_turn" yaml:"avg_loss_turn"`
}

func Summary(s model.Summary) SummaryView {
	return SummaryView{
		Total:         s.Total,
		Wins:          s.Wins,
		Losses:        s.Losses,
		WinRate:       Rate(s.WinRate),
		FirstGames:    s.FirstGames,
		FirstWinRate:  Rate(s.FirstWinRate),
		SecondGames:   s.SecondGames,
		SecondWinRate: Rate(s.SecondWinRate),
		AvgWinTurn:    Turn(s.AvgWinTurn),
		AvgLossTurn:   Turn(s.AvgLossTurn),
	}
}

type DeckView struct {
	Deck              string `json:"deck" yaml:"deck"`
	Appearances       int64  `json:"appearances" yaml:"appearances"`
	Wins              int64  `json:"wins" yaml:"wins"`
	Losses            int64  `json:"losses" yaml:"losses"`
	WinRate           string `json:"win_rate" yaml:"win_rate"`
	FirstWinRate      string `json:"first_win_rate" yaml:"first_win_rate"`
	SecondWinRate     string `json:"second_win_rate" yaml:"second_win_rate"`
	AvgMatchupWinRate string `json:"avg_matchup_win_rate" yaml:"avg_matchup_win_rate"`
}

func Decks(r model.DeckReport) []DeckView {
	out := make([]DeckView, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, DeckView{
			Deck:              row.Deck,
			Appearances:       row.Appearances,
			Wins:              row.Wins,
			Losses:            row.Losses,
			WinRate:           Rate(row.WinRate),
			FirstWinRate:      Rate(row.FirstWinRate),
			SecondWinRate:     Rate(row.SecondWinRate),
			AvgMatchupWinRate: Rate(row.AvgMatchupWinRate),
		})
	}
	return out
}

type TrendView struct {
	OpponentDeck  string `json:"opponent_deck" yaml:"opponent_deck"`
	Encounters    int64  `json:"encounters" yaml:"encounters"`
	EncounterRate string `json:"encounter_rate" yaml:"encounter_rate"`
	WinRate       string `json:"win_rate" yaml:"win_rate"`
	AvgFinishTurn string `json:"avg_finish_turn,omitempty" yaml:"avg_finish_turn,omitempty"`
}

// Trend renders trend rows. includeTurns controls the finish turn column.
func Trend(r model.TrendReport, includeTurns bool) []TrendView {
	out := make([]TrendView, 0, len(r.Rows))
	for _, row := range r.Rows {
		v := TrendView{
			OpponentDeck:  row.OpponentDeck,
			Encounters:    row.Encounters,
			EncounterRate: Rate(row.EncounterRate),
			WinRate:       Rate(row.WinRate),
		}
		if includeTurns {
			v.AvgFinishTurn = Turn(row.AvgFinishTurn)
		}
		out = append(out, v)
	}
	return out
}

type MatchupView struct {
	OpponentDeck  string `json:"opponent_deck" yaml:"opponent_deck"`
	Type          string `json:"type" yaml:"type"`
	Games         int64  `json:"games" yaml:"games"`
	Wins          int64  `json:"wins" yaml:"wins"`
	Losses        int64  `json:"losses" yaml:"losses"`
	WinRate       string `json:"win_rate" yaml:"win_rate"`
	FirstWinRate  string `json:"first_win_rate" yaml:"first_win_rate"`
	SecondWinRate string `json:"second_win_rate" yaml:"second_win_rate"`
	AvgWinTurn    string `json:"avg_win_turn" yaml:"avg_win_turn"`
	AvgLossTurn   string `json:"avg_loss_turn" yaml:"avg_loss_turn"`
}

func Matchups(r model.MatchupReport, allTypesLabel string) []MatchupView {
	out := make([]MatchupView, 0, len(r.Rows))
	for _, row := range r.Rows {
		typ := row.OpponentDeckType
		if row.AllTypes {
			typ = allTypesLabel
		}
		out = append(out, MatchupView{
			OpponentDeck:  row.OpponentDeck,
			Type:          typ,
			Games:         row.Games,
			Wins:          row.Wins,
			Losses:        row.Losses,
			WinRate:       Rate(row.WinRate),
			FirstWinRate:  Rate(row.FirstWinRate),
			SecondWinRate: Rate(row.SecondWinRate),
			AvgWinTurn:    Turn(row.AvgWinTurn),
			AvgLossTurn:   Turn(row.AvgLossTurn),
		})
	}
	return out
}

type MemoView struct {
	Timestamp    string `json:"timestamp" yaml:"timestamp"`
	OpponentDeck string `json:"opponent_deck" yaml:"opponent_deck"`
	Result       string `json:"result" yaml:"result"`
	Memo         string `json:"memo" yaml:"memo"`
}

type FocusView struct {
	Deck     string        `json:"deck" yaml:"deck"`
	Type     string        `json:"type,omitempty" yaml:"type,omitempty"`
	Summary  SummaryView   `json:"summary" yaml:"summary"`
	Trend    []TrendView   `json:"trend" yaml:"trend"`
	Matchups []MatchupView `json:"matchups" yaml:"matchups"`
	Memos    []MemoView    `json:"memos,omitempty" yaml:"memos,omitempty"`
}

func Focus(f model.FocusAnalysis, allTypesLabel string) FocusView {
	v := FocusView{
		Deck:     f.Deck,
		Type:     f.Type,
		Summary:  Summary(f.Summary),
		Trend:    Trend(f.Trend, false),
		Matchups: Matchups(f.Matchups, allTypesLabel),
	}
	for _, m := range f.Memos {
		ts := ""
		if m.Timestamp != nil {
			ts = m.Timestamp.Format(model.TimestampLayout)
		}
		v.Memos = append(v.Memos, MemoView{
			Timestamp:    ts,
			OpponentDeck: m.OpponentDeck,
			Result:       m.Result,
			Memo:         m.Memo,
		})
	}
	return v
}

// Report is the document printed by the report command.
type Report struct {
	NoData  bool        `json:"no_data" yaml:"no_data"`
	Records int         `json:"records" yaml:"records"`
	Summary SummaryView `json:"summary" yaml:"summary"`
	Decks   []DeckView  `json:"decks" yaml:"decks"`
	Trend   []TrendView `json:"trend" yaml:"trend"`
	Focus   *FocusView  `json:"focus,omitempty" yaml:"focus,omitempty"`
}

// Encode writes v as YAML or indented JSON.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case "", FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
