package records

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/cschnabel/svtracker/internal/model"
)

var ErrConflictingDateFilter = errors.New("date range and date set are mutually exclusive")

// Date is a calendar day derived from a record timestamp.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type DateMode int

const (
	DateAny DateMode = iota
	DateRange
	DateSet
)

// DateFilter holds exactly one of: no date predicate, an inclusive range, or a set of days.
type DateFilter struct {
	Mode  DateMode
	Start Date
	End   Date
	Dates []Date
}

func RangeFilter(start, end Date) DateFilter {
	return DateFilter{Mode: DateRange, Start: start, End: end}
}

func SetFilter(dates ...Date) DateFilter {
	return DateFilter{Mode: DateSet, Dates: dates}
}

// NewDateFilter builds a filter from optional range bounds and an optional day set.
// Supplying both a range and a set is an error.
func NewDateFilter(from, to string, days []string) (DateFilter, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	hasRange := from != "" || to != ""
	nonEmpty := make([]string, 0, len(days))
	for _, d := range days {
		if strings.TrimSpace(d) != "" {
			nonEmpty = append(nonEmpty, d)
		}
	}
	if hasRange && len(nonEmpty) > 0 {
		return DateFilter{}, ErrConflictingDateFilter
	}

	if hasRange {
		if from == "" || to == "" {
			return DateFilter{}, fmt.Errorf("date range needs both from and to")
		}
		start, err := ParseDate(from)
		if err != nil {
			return DateFilter{}, err
		}
		end, err := ParseDate(to)
		if err != nil {
			return DateFilter{}, err
		}
		return RangeFilter(start, end), nil
	}
	if len(nonEmpty) > 0 {
		set := make([]Date, 0, len(nonEmpty))
		for _, raw := range nonEmpty {
			d, err := ParseDate(raw)
			if err != nil {
				return DateFilter{}, err
			}
			set = append(set, d)
		}
		return SetFilter(set...), nil
	}
	return DateFilter{}, nil
}

func (f DateFilter) matches(ts *time.Time) bool {
	if f.Mode == DateAny {
		return true
	}
	if ts == nil {
		return false
	}
	day := DateOf(*ts)
	switch f.Mode {
	case DateRange:
		return day.Compare(f.Start) >= 0 && day.Compare(f.End) <= 0
	case DateSet:
		return slices.Contains(f.Dates, day)
	}
	return false
}

// Criteria is a conjunction of predicates. Zero values mean "no filter".
type Criteria struct {
	Season       string
	Environments []string
	Formats      []string
	Groups       []string
	Date         DateFilter
}

func (c Criteria) IsZero() bool {
	return c.Season == "" && len(c.Environments) == 0 && len(c.Formats) == 0 &&
		len(c.Groups) == 0 && c.Date.Mode == DateAny
}

// Filter returns the rows matching every predicate, in input order.
// The input table is not modified.
func Filter(t model.Table, c Criteria) model.Table {
	out := make(model.Table, 0, len(t))
	for _, r := range t {
		if c.Season != "" && r.Season != c.Season {
			continue
		}
		if !inSet(c.Environments, r.Environment) || !inSet(c.Formats, r.Format) || !inSet(c.Groups, r.Group) {
			continue
		}
		if !c.Date.matches(r.Timestamp) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func inSet(set []string, v string) bool {
	return len(set) == 0 || slices.Contains(set, v)
}

// Where keeps rows for which every column equals the given value.
func Where(t model.Table, eq map[model.Column]string) model.Table {
	out := make(model.Table, 0, len(t))
	for _, r := range t {
		ok := true
		for col, want := range eq {
			if r.Text(col) != want {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// Distinct returns the sorted non-blank values of a column.
func Distinct(t model.Table, col model.Column) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range t {
		v := r.Text(col)
		if IsBlank(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func Options(t model.Table) model.FilterOptions {
	return model.FilterOptions{
		Seasons:      Distinct(t, model.ColSeason),
		Environments: Distinct(t, model.ColEnvironment),
		Formats:      Distinct(t, model.ColFormat),
		Groups:       Distinct(t, model.ColGroup),
	}
}

// SortByTimestampDesc returns a copy ordered newest first with unknown timestamps last.
func SortByTimestampDesc(t model.Table) model.Table {
	out := slices.Clone(t)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Timestamp, out[j].Timestamp
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})
	return out
}
