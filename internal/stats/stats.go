// Package stats aggregates a filtered match table into the dashboard reports.
// Every function is pure: inputs are never modified and repeated calls return equal results.
package stats

import (
	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

// counts is the tally shared by every report row.
type counts struct {
	games       int64
	wins        int64
	losses      int64
	firstGames  int64
	firstWins   int64
	secondGames int64
	secondWins  int64
	winTurns    []int64
	lossTurns   []int64
	turns       []int64
}

func (c *counts) add(r model.MatchRecord) {
	c.games++
	switch {
	case r.IsWin():
		c.wins++
	case r.IsLoss():
		c.losses++
	}
	switch {
	case r.IsFirst():
		c.firstGames++
		if r.IsWin() {
			c.firstWins++
		}
	case r.IsSecond():
		c.secondGames++
		if r.IsWin() {
			c.secondWins++
		}
	}

	// 0 is a concession and unknown turns are nil; neither counts toward averages.
	if r.FinishTurn == nil || *r.FinishTurn <= 0 {
		return
	}
	turn := *r.FinishTurn
	c.turns = append(c.turns, turn)
	if r.IsWin() {
		c.winTurns = append(c.winTurns, turn)
	} else if r.IsLoss() {
		c.lossTurns = append(c.lossTurns, turn)
	}
}

func tally(t model.Table) counts {
	var c counts
	for _, r := range t {
		c.add(r)
	}
	return c
}

// Percent returns num/den as a percentage, or nil when den is zero.
func Percent(num, den int64) *float64 {
	if den <= 0 {
		return nil
	}
	v := float64(num) / float64(den) * 100
	return &v
}

func mean(values []int64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	m := float64(sum) / float64(len(values))
	return &m
}

func meanFloat(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// groupBy buckets rows by a column value while remembering first-seen order.
// Blank keys are dropped.
func groupBy(t model.Table, key func(model.MatchRecord) string) ([]string, map[string]model.Table) {
	order := make([]string, 0)
	groups := make(map[string]model.Table)
	for _, r := range t {
		k := key(r)
		if records.IsBlank(k) {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	return order, groups
}

// lessDesc orders defined values before nil, larger first.
func lessDesc(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
