package repo

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// CSVHeader is the export header row.
var CSVHeader = []string{"ID", "Date/Time", "IP Address", "User Agent", "Type", "Reason", "Form Type", "Email", "Blocked"}

const (
	utf8BOM         = "\ufeff"
	csvTimeLayout   = "2006-01-02 15:04:05"
	exportBatchSize = 500
)

// EventCSVRecord renders ev as one export row.
func EventCSVRecord(ev domain.BlockEvent) []string {
	blocked := "No"
	if ev.Blocked {
		blocked = "Yes"
	}
	return []string{
		strconv.FormatUint(uint64(ev.ID), 10),
		ev.CreatedAt.UTC().Format(csvTimeLayout),
		ev.IP,
		ev.UserAgent,
		string(ev.Type),
		ev.Reason,
		string(ev.FormType),
		ev.Email,
		blocked,
	}
}

// ExportEventsCSV streams every event matching f to w as UTF-8 CSV with a
// byte-order mark and a header row.
func ExportEventsCSV(ctx context.Context, db *gorm.DB, f EventFilter, w io.Writer) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	err := EachEventBatch(ctx, db, f, exportBatchSize, func(batch []domain.BlockEvent) error {
		for _, ev := range batch {
			if err := cw.Write(EventCSVRecord(ev)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
