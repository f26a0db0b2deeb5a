package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cschnabel/svtracker/internal/model"
)

func sampleTable() model.Table {
	ts := time.Date(2024, 6, 1, 21, 5, 9, 0, time.UTC)
	turn := int64(7)
	return model.Table{
		{Season: "S1", Timestamp: &ts, MyDeck: "Fairy", OpponentDeck: "Spell", Result: model.Win, FinishTurn: &turn, Memo: "mulligan, then \"lethal\""},
		{Season: "S1", MyDeck: "Fairy", Result: model.Loss},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, BOM) {
		t.Fatalf("expected BOM prefix")
	}

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, BOM))).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(model.Header(), ",") {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "2024-06-01 21:05:09" || rows[1][13] != "7" || rows[1][14] != "mulligan, then \"lethal\"" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != "" || rows[2][13] != "" {
		t.Fatalf("expected unknown values empty, got %v", rows[2])
	}
}

func TestWriteCSVEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("expected header line only, got %d lines", got)
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	putter := &fakePutter{}
	at := time.Date(2024, 6, 1, 21, 5, 9, 0, time.UTC)

	key, err := NewUploader(putter, "backups", "/exports/").Upload(context.Background(), "Season 3: Rotation", sampleTable(), at)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if key != "exports/season-3-rotation-20240601-210509.csv" {
		t.Fatalf("unexpected key %q", key)
	}
	if aws.ToString(putter.input.Bucket) != "backups" || aws.ToString(putter.input.Key) != key {
		t.Fatalf("unexpected put input %+v", putter.input)
	}
	if !bytes.HasPrefix(putter.body, []byte(BOM)) {
		t.Fatalf("expected uploaded body to be the csv export")
	}
}

func TestUploadError(t *testing.T) {
	putter := &fakePutter{err: errors.New("denied")}
	if _, err := NewUploader(putter, "b", "").Upload(context.Background(), "", nil, time.Now()); err == nil {
		t.Fatalf("expected upload error")
	}
}

func TestObjectKeyDefaults(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := ObjectKey("", "", at); got != "records-20240102-030405.csv" {
		t.Fatalf("unexpected key %q", got)
	}
}
