// Package store is the record store adapter. It reconciles the worksheet header
// with the canonical columns and converts between sheet rows and match records.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

// ErrUnavailable marks failures to reach or authenticate to the backing sheet.
var ErrUnavailable = errors.New("record store unavailable")

// Sheet is a worksheet whose first row is the header.
type Sheet interface {
	Header(ctx context.Context) ([]string, error)
	Rows(ctx context.Context) ([][]string, error)
	WriteHeader(ctx context.Context, header []string) error
	Append(ctx context.Context, cells []string) error
}

type Store struct {
	sheet Sheet
	log   *zap.Logger
}

func New(sheet Sheet, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{sheet: sheet, log: log}
}

// LoadAll reads every record. On failure it returns an empty table together
// with an error wrapping ErrUnavailable so callers can still render.
func (s *Store) LoadAll(ctx context.Context) (model.Table, error) {
	raw, err := s.LoadRaw(ctx)
	if err != nil {
		return model.Table{}, err
	}
	return records.Normalize(raw), nil
}

// LoadRaw reads the sheet as-is after repairing its header.
func (s *Store) LoadRaw(ctx context.Context) (model.RawTable, error) {
	header, err := s.sheet.Header(ctx)
	if err != nil {
		s.log.Error("read sheet header failed", zap.Error(err))
		return model.RawTable{}, fmt.Errorf("read header: %w: %w", ErrUnavailable, err)
	}

	// After a successful repair row 1 is canonical, so rows map by position.
	if s.repairHeader(ctx, header) {
		header = model.Header()
	}

	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		s.log.Error("read sheet rows failed", zap.Error(err))
		return model.RawTable{}, fmt.Errorf("read rows: %w: %w", ErrUnavailable, err)
	}
	return model.RawTable{Header: header, Rows: rows}, nil
}

// repairHeader rewrites row 1 when it differs from the canonical header.
// It reports whether a rewrite happened; a failed rewrite is logged and ignored.
func (s *Store) repairHeader(ctx context.Context, header []string) bool {
	if records.HeaderMatches(header) {
		return false
	}
	if err := s.sheet.WriteHeader(ctx, model.Header()); err != nil {
		s.log.Error("repair sheet header failed", zap.Strings("found", header), zap.Error(err))
		return false
	}
	if len(header) == 0 {
		s.log.Info("wrote sheet header")
	} else {
		s.log.Warn("repaired sheet header", zap.Strings("found", header))
	}
	return true
}

// Append writes one record as a new row, repairing the header first if needed.
func (s *Store) Append(ctx context.Context, rec model.MatchRecord) error {
	header, err := s.sheet.Header(ctx)
	if err != nil {
		return fmt.Errorf("read header: %w: %w", ErrUnavailable, err)
	}
	if !records.HeaderMatches(header) {
		if err := s.sheet.WriteHeader(ctx, model.Header()); err != nil {
			return fmt.Errorf("write header: %w: %w", ErrUnavailable, err)
		}
		s.log.Warn("repaired sheet header before append", zap.Strings("found", header))
	}

	if err := s.sheet.Append(ctx, records.Serialize(rec)); err != nil {
		s.log.Error("append record failed", zap.Error(err))
		return fmt.Errorf("append record: %w: %w", ErrUnavailable, err)
	}
	s.log.Debug("appended record",
		zap.String("season", rec.Season),
		zap.String("my_deck", rec.MyDeck),
		zap.String("opponent_deck", rec.OpponentDeck),
	)
	return nil
}
