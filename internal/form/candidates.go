// Package form holds the record entry form: its state, the reset cascade between
// fields, the candidate lists offered for each field and the final validation.
package form

import (
	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

const (
	// NewEntryOption is offered first in every list and means "type a new value".
	NewEntryOption = "(enter a new value)"
	// AllTypesOption selects every type of a focus deck in the analysis view.
	AllTypesOption = "all types"
)

var DefaultClasses = []string{
	"Forestcraft",
	"Swordcraft",
	"Runecraft",
	"Dragoncraft",
	"Shadowcraft",
	"Bloodcraft",
	"Havencraft",
	"Portalcraft",
}

type Side int

const (
	Mine Side = iota
	Opponent
)

func (s Side) columns() (class, deck, deckType model.Column) {
	if s == Opponent {
		return model.ColOpponentClass, model.ColOpponentDeck, model.ColOpponentDeckType
	}
	return model.ColMyClass, model.ColMyDeck, model.ColMyDeckType
}

func unset(v string) bool {
	return v == NewEntryOption || records.IsBlank(v)
}

func withNewEntry(values []string) []string {
	out := make([]string, 0, len(values)+1)
	out = append(out, NewEntryOption)
	for _, v := range values {
		if v != NewEntryOption {
			out = append(out, v)
		}
	}
	return out
}

// Values lists every recorded value of col, after the new-entry option.
func Values(t model.Table, col model.Column) []string {
	return withNewEntry(records.Distinct(t, col))
}

// Decks lists the decks recorded for one side under season, class and format.
// A missing prerequisite yields only the new-entry option. Draft always yields the draft deck.
func Decks(t model.Table, side Side, season, class, format string) []string {
	if format == model.FormatDraft {
		return []string{model.DraftDeck}
	}
	if unset(season) || unset(class) || unset(format) {
		return []string{NewEntryOption}
	}
	classCol, deckCol, _ := side.columns()
	scope := records.Where(t, map[model.Column]string{
		model.ColSeason: season,
		model.ColFormat: format,
		classCol:        class,
	})
	return withNewEntry(records.Distinct(scope, deckCol))
}

// DeckTypes lists the types recorded for one side's deck, narrowed the same way as Decks.
func DeckTypes(t model.Table, side Side, season, class, format, deck string) []string {
	if format == model.FormatDraft {
		return []string{model.DraftDeckType}
	}
	if unset(season) || unset(class) || unset(format) || unset(deck) {
		return []string{NewEntryOption}
	}
	classCol, deckCol, typeCol := side.columns()
	scope := records.Where(t, map[model.Column]string{
		model.ColSeason: season,
		model.ColFormat: format,
		classCol:        class,
		deckCol:         deck,
	})
	return withNewEntry(records.Distinct(scope, typeCol))
}

// AnalysisDecks lists the decks I have played.
func AnalysisDecks(t model.Table) []string {
	return records.Distinct(t, model.ColMyDeck)
}

// AnalysisTypes lists the types I played deck with, after the all-types option.
func AnalysisTypes(t model.Table, deck string) []string {
	if records.IsBlank(deck) {
		return []string{AllTypesOption}
	}
	scope := records.Where(t, map[model.Column]string{model.ColMyDeck: deck})
	return append([]string{AllTypesOption}, records.Distinct(scope, model.ColMyDeckType)...)
}

// Lists is every candidate list the entry form shows for a given state.
type Lists struct {
	Seasons           []string `json:"seasons"`
	Environments      []string `json:"environments"`
	Formats           []string `json:"formats"`
	Groups            []string `json:"groups"`
	Classes           []string `json:"classes"`
	MyDecks           []string `json:"myDecks"`
	MyDeckTypes       []string `json:"myDeckTypes"`
	OpponentDecks     []string `json:"opponentDecks"`
	OpponentDeckTypes []string `json:"opponentDeckTypes"`
}

func Candidates(t model.Table, s State, classes []string) Lists {
	if len(classes) == 0 {
		classes = DefaultClasses
	}
	season, format := s.Season.Resolve(), s.Format.Resolve()
	return Lists{
		Seasons:           Values(t, model.ColSeason),
		Environments:      Values(t, model.ColEnvironment),
		Formats:           Values(t, model.ColFormat),
		Groups:            Values(t, model.ColGroup),
		Classes:           append([]string(nil), classes...),
		MyDecks:           Decks(t, Mine, season, s.Mine.Class, format),
		MyDeckTypes:       DeckTypes(t, Mine, season, s.Mine.Class, format, s.Mine.Deck.Selected),
		OpponentDecks:     Decks(t, Opponent, season, s.Opponent.Class, format),
		OpponentDeckTypes: DeckTypes(t, Opponent, season, s.Opponent.Class, format, s.Opponent.Deck.Selected),
	}
}
