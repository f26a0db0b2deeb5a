// Package ingest restores records from a CSV export into the record store.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

type RecordStore interface {
	LoadAll(ctx context.Context) (model.Table, error)
	Append(ctx context.Context, rec model.MatchRecord) error
}

type Importer struct {
	store RecordStore
	log   *zap.Logger
}

func NewImporter(store RecordStore, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: store, log: log}
}

func (im *Importer) ImportFile(ctx context.Context, path string) (model.ImportStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.ImportStats{Path: path}, fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	stats, err := im.Import(ctx, file)
	stats.Path = path
	return stats, err
}

// Import appends every CSV row not already in the store. A row counts as
// present when its serialized form matches an existing record, so running
// the same import twice appends nothing the second time.
func (im *Importer) Import(ctx context.Context, r io.Reader) (model.ImportStats, error) {
	stats := model.ImportStats{StartedAt: time.Now().UTC()}

	existing, err := im.store.LoadAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("load existing records: %w", err)
	}
	seen := make(map[string]int, len(existing))
	for _, rec := range existing {
		seen[recordKey(rec)]++
	}

	reader := csv.NewReader(stripBOM(bufio.NewReader(r)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		stats.CompletedAt = time.Now().UTC()
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("read csv header: %w", err)
	}
	stats.LinesRead++

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		cells, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return stats, fmt.Errorf("read csv line %d: %w", stats.LinesRead+1, readErr)
		}
		stats.LinesRead++

		parsed := records.Normalize(model.RawTable{Header: header, Rows: [][]string{cells}})
		if len(parsed) == 0 {
			stats.Blank++
			continue
		}
		rec := parsed[0]

		key := recordKey(rec)
		if seen[key] > 0 {
			seen[key]--
			stats.Duplicates++
			continue
		}
		if err := im.store.Append(ctx, rec); err != nil {
			return stats, fmt.Errorf("append csv line %d: %w", stats.LinesRead, err)
		}
		stats.RecordsAppended++
	}

	stats.CompletedAt = time.Now().UTC()
	im.log.Info("csv import complete",
		zap.Int64("lines", stats.LinesRead),
		zap.Int64("appended", stats.RecordsAppended),
		zap.Int64("duplicates", stats.Duplicates),
		zap.Int64("blank", stats.Blank),
		zap.Duration("took", stats.CompletedAt.Sub(stats.StartedAt)),
	)
	return stats, nil
}

func recordKey(rec model.MatchRecord) string {
	return strings.Join(records.Serialize(rec), "\x1f")
}

func stripBOM(r *bufio.Reader) io.Reader {
	if b, err := r.Peek(3); err == nil && string(b) == "\uFEFF" {
		_, _ = r.Discard(3)
	}
	return r
}
