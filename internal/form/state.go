package form

import (
	"fmt"
	"strings"

	"github.com/cschnabel/svtracker/internal/records"
)

// Choice is a select box that can fall back to free text when NewEntryOption is selected.
type Choice struct {
	Selected string `json:"selected"`
	NewText  string `json:"newText"`
}

func (c Choice) Resolve() string {
	if c.Selected == NewEntryOption || c.Selected == "" {
		return strings.TrimSpace(c.NewText)
	}
	return c.Selected
}

func resetChoice() Choice {
	return Choice{Selected: NewEntryOption}
}

type SideState struct {
	Class    string `json:"class"`
	Deck     Choice `json:"deck"`
	DeckType Choice `json:"deckType"`
}

// State is everything the entry form holds between requests.
type State struct {
	Season      Choice    `json:"season"`
	Environment Choice    `json:"environment"`
	Format      Choice    `json:"format"`
	Group       Choice    `json:"group"`
	Mine        SideState `json:"mine"`
	Opponent    SideState `json:"opponent"`
	FirstSecond string    `json:"firstSecond"`
	Result      string    `json:"result"`
	FinishTurn  *int64    `json:"finishTurn"`
	Memo        string    `json:"memo"`
}

type Field string

const (
	FieldSeason              Field = "season"
	FieldSeasonNew           Field = "season_new"
	FieldEnvironment         Field = "environment"
	FieldEnvironmentNew      Field = "environment_new"
	FieldFormat              Field = "format"
	FieldFormatNew           Field = "format_new"
	FieldGroup               Field = "group"
	FieldGroupNew            Field = "group_new"
	FieldMyClass             Field = "my_class"
	FieldMyDeck              Field = "my_deck"
	FieldMyDeckNew           Field = "my_deck_new"
	FieldMyDeckType          Field = "my_deck_type"
	FieldMyDeckTypeNew       Field = "my_deck_type_new"
	FieldOpponentClass       Field = "opponent_class"
	FieldOpponentDeck        Field = "opponent_deck"
	FieldOpponentDeckNew     Field = "opponent_deck_new"
	FieldOpponentDeckType    Field = "opponent_deck_type"
	FieldOpponentDeckTypeNew Field = "opponent_deck_type_new"
	FieldFirstSecond         Field = "first_second"
	FieldResult              Field = "result"
	FieldFinishTurn          Field = "finish_turn"
	FieldMemo                Field = "memo"
)

var deckFields = []Field{FieldMyDeck, FieldMyDeckType, FieldOpponentDeck, FieldOpponentDeckType}

// downstream lists the fields invalidated when the key field changes.
var downstream = map[Field][]Field{
	FieldSeason:          deckFields,
	FieldFormat:          deckFields,
	FieldMyClass:         {FieldMyDeck},
	FieldMyDeck:          {FieldMyDeckType},
	FieldOpponentClass:   {FieldOpponentDeck},
	FieldOpponentDeck:    {FieldOpponentDeckType},
	FieldSeasonNew:       {FieldSeason},
	FieldFormatNew:       {FieldFormat},
	FieldMyDeckNew:       {FieldMyDeckType},
	FieldOpponentDeckNew: {FieldOpponentDeckType},
}

// Invalidated returns every field reset by a change to f, following the graph transitively.
func Invalidated(f Field) []Field {
	var out []Field
	seen := map[Field]bool{f: true}
	queue := append([]Field(nil), downstream[f]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, downstream[next]...)
	}
	return out
}

// Apply sets one field and resets everything downstream of it.
// Setting a field to its current value changes nothing.
func Apply(s State, f Field, value string) (State, error) {
	before := s
	if err := set(&s, f, value); err != nil {
		return before, err
	}
	if s == before {
		return s, nil
	}
	for _, d := range Invalidated(f) {
		reset(&s, d)
	}
	return s, nil
}

func set(s *State, f Field, value string) error {
	switch f {
	case FieldSeason:
		s.Season = Choice{Selected: value}
	case FieldSeasonNew:
		s.Season.NewText = value
	case FieldEnvironment:
		s.Environment = Choice{Selected: value}
	case FieldEnvironmentNew:
		s.Environment.NewText = value
	case FieldFormat:
		s.Format = Choice{Selected: value}
	case FieldFormatNew:
		s.Format.NewText = value
	case FieldGroup:
		s.Group = Choice{Selected: value}
	case FieldGroupNew:
		s.Group.NewText = value
	case FieldMyClass:
		s.Mine.Class = value
	case FieldMyDeck:
		s.Mine.Deck = Choice{Selected: value}
	case FieldMyDeckNew:
		s.Mine.Deck.NewText = value
	case FieldMyDeckType:
		s.Mine.DeckType = Choice{Selected: value}
	case FieldMyDeckTypeNew:
		s.Mine.DeckType.NewText = value
	case FieldOpponentClass:
		s.Opponent.Class = value
	case FieldOpponentDeck:
		s.Opponent.Deck = Choice{Selected: value}
	case FieldOpponentDeckNew:
		s.Opponent.Deck.NewText = value
	case FieldOpponentDeckType:
		s.Opponent.DeckType = Choice{Selected: value}
	case FieldOpponentDeckTypeNew:
		s.Opponent.DeckType.NewText = value
	case FieldFirstSecond:
		s.FirstSecond = value
	case FieldResult:
		s.Result = value
	case FieldFinishTurn:
		if strings.TrimSpace(value) == "" {
			s.FinishTurn = nil
			return nil
		}
		turn := records.ParseTurn(value)
		if turn == nil {
			return fmt.Errorf("parse finish turn %q: not a non-negative integer", value)
		}
		s.FinishTurn = turn
	case FieldMemo:
		s.Memo = value
	default:
		return fmt.Errorf("unknown form field %q", f)
	}
	return nil
}

func reset(s *State, f Field) {
	switch f {
	case FieldMyDeck:
		s.Mine.Deck = resetChoice()
	case FieldMyDeckType:
		s.Mine.DeckType = resetChoice()
	case FieldOpponentDeck:
		s.Opponent.Deck = resetChoice()
	case FieldOpponentDeckType:
		s.Opponent.DeckType = resetChoice()
	}
}
