package main

import (
	"errors"
	"testing"

	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

func TestReportCriteriaFromFlags(t *testing.T) {
	if err := reportCmd.Flags().Parse([]string{"--season", "S1", "--group", "A,B", "--format", "rotation"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	t.Cleanup(func() {
		reportSeason, reportGroups, reportFormats = "", nil, nil
	})

	criteria, err := reportCriteria()
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}
	table := model.Table{
		{Season: "S1", Format: "rotation", Group: "A"},
		{Season: "S1", Format: "rotation", Group: "C"},
		{Season: "S1", Format: "rotation", Group: "B"},
		{Season: "S2", Format: "rotation", Group: "A"},
	}
	got := records.Filter(table, criteria)
	if len(got) != 2 || got[0].Group != "A" || got[1].Group != "B" {
		t.Fatalf("expected groups A and B in S1, got %+v", got)
	}
}

func TestReportCriteriaRejectsRangeWithDates(t *testing.T) {
	reportFrom, reportTo, reportDates = "2024-06-01", "2024-06-30", []string{"2024-06-02"}
	t.Cleanup(func() {
		reportFrom, reportTo, reportDates = "", "", nil
	})

	if _, err := reportCriteria(); !errors.Is(err, records.ErrConflictingDateFilter) {
		t.Fatalf("expected conflicting date filter error, got %v", err)
	}
}
