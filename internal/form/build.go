package form

import (
	"fmt"
	"strings"
	"time"

	"github.com/cschnabel/svtracker/internal/model"
)

// ValidationError lists every required field that was empty or invalid at submission.
type ValidationError struct {
	Missing []Field `json:"missing"`
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(names, ", "))
}

// Build resolves the form state into a record stamped with now's wall clock.
// Draft games collapse both decks and types to the draft placeholders.
func Build(s State, now time.Time) (model.MatchRecord, error) {
	rec := model.MatchRecord{
		Season:           s.Season.Resolve(),
		Environment:      s.Environment.Resolve(),
		Format:           s.Format.Resolve(),
		Group:            s.Group.Resolve(),
		MyClass:          strings.TrimSpace(s.Mine.Class),
		MyDeck:           s.Mine.Deck.Resolve(),
		MyDeckType:       s.Mine.DeckType.Resolve(),
		OpponentClass:    strings.TrimSpace(s.Opponent.Class),
		OpponentDeck:     s.Opponent.Deck.Resolve(),
		OpponentDeckType: s.Opponent.DeckType.Resolve(),
		FirstSecond:      s.FirstSecond,
		Result:           s.Result,
		Memo:             s.Memo,
	}
	if s.FinishTurn != nil {
		turn := *s.FinishTurn
		rec.FinishTurn = &turn
	}
	if rec.Format == model.FormatDraft {
		rec.MyDeck, rec.OpponentDeck = model.DraftDeck, model.DraftDeck
		rec.MyDeckType, rec.OpponentDeckType = model.DraftDeckType, model.DraftDeckType
	}

	var missing []Field
	check := func(f Field, ok bool) {
		if !ok {
			missing = append(missing, f)
		}
	}
	check(FieldSeason, rec.Season != "")
	check(FieldEnvironment, rec.Environment != "")
	check(FieldFormat, rec.Format != "")
	check(FieldMyClass, rec.MyClass != "")
	check(FieldMyDeck, rec.MyDeck != "")
	check(FieldMyDeckType, rec.MyDeckType != "")
	check(FieldOpponentClass, rec.OpponentClass != "")
	check(FieldOpponentDeck, rec.OpponentDeck != "")
	check(FieldOpponentDeckType, rec.OpponentDeckType != "")
	check(FieldFirstSecond, rec.IsFirst() || rec.IsSecond())
	check(FieldResult, rec.IsWin() || rec.IsLoss())
	check(FieldFinishTurn, rec.FinishTurn != nil && *rec.FinishTurn >= 0)
	if len(missing) > 0 {
		return model.MatchRecord{}, &ValidationError{Missing: missing}
	}

	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
	rec.Timestamp = &wall
	return rec, nil
}
