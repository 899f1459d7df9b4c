package buyers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// ImportResult summarizes one CSV import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

// expected CSV header columns, in order. preferred_fish is a
// semicolon-separated list inside its cell.
var csvHeader = []string{"name", "phone", "carrier", "email", "preferred_fish", "notes"}

// ImportCSV loads buyer contacts from a CSV file. Rows that fail
// validation are skipped with a reason; the rest are imported.
func ImportCSV(ctx context.Context, store *Store, path string, showProgress bool) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV rows: %w", err)
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(records)), "importing buyers")
	}

	result := &ImportResult{}
	for i, record := range records {
		if bar != nil {
			bar.Add(1)
		}

		b := Buyer{
			Name:    strings.TrimSpace(record[0]),
			Phone:   strings.TrimSpace(record[1]),
			Carrier: strings.ToLower(strings.TrimSpace(record[2])),
			Email:   strings.TrimSpace(record[3]),
			Notes:   strings.TrimSpace(record[5]),
		}
		for _, ft := range strings.Split(record[4], ";") {
			if ft = strings.TrimSpace(ft); ft != "" {
				b.PreferredFish = append(b.PreferredFish, ft)
			}
		}

		if _, err := store.Create(ctx, b); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func checkHeader(header []string) error {
	for i, want := range csvHeader {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("unexpected CSV header: want columns %s", strings.Join(csvHeader, ","))
		}
	}
	return nil
}

// WriteTemplate writes a starter CSV with the expected header and one
// example row.
func WriteTemplate(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	example := []string{"John Smith", "555-123-4567", "verizon", "john@example.com", "Halibut;Crab", "pays cash"}
	if err := writer.Write(example); err != nil {
		return fmt.Errorf("writing example row: %w", err)
	}
	return nil
}
