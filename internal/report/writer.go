// Package report keeps an append-only NDJSON log of what each run
// decided, for the operator dashboard.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/freeebooks/expiredbot/internal/domain"
)

// Record is one actioned post from one run.
type Record struct {
	Time     time.Time       `json:"time"`
	Decision domain.Decision `json:"decision"`
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Rank     int             `json:"rank"`
	Price    string          `json:"price,omitempty"`
	DryRun   bool            `json:"dry_run,omitempty"`
}

// Writer appends records to an NDJSON file.
type Writer struct {
	FilePath string
}

// Append writes the records for one run. The parent directory is
// created if needed.
func (w *Writer) Append(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if dir := filepath.Dir(w.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write report record: %w", err)
		}
	}
	return nil
}

// FromOutcome flattens a run's outcome into records with a shared
// timestamp.
func FromOutcome(expired, needsReview []domain.Post, dryRun bool, now time.Time) []Record {
	records := make([]Record, 0, len(expired)+len(needsReview))
	for _, p := range expired {
		records = append(records, Record{
			Time: now, Decision: domain.DecisionExpired,
			URL: p.URL, Title: p.Title, Rank: p.Rank, Price: p.Price, DryRun: dryRun,
		})
	}
	for _, p := range needsReview {
		records = append(records, Record{
			Time: now, Decision: domain.DecisionNeedsReview,
			URL: p.URL, Title: p.Title, Rank: p.Rank, DryRun: dryRun,
		})
	}
	return records
}

// Read loads every record in the file. Malformed lines are skipped; a
// missing file yields no records.
func Read(path string) []Record {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records
}
