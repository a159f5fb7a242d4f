// Package export writes consolidated parcel records as CSV and XLSX.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// utf8BOM lets spreadsheet tools detect the encoding of the CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const sheet = "Parcelles"

// Service renders records in the export column order.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Artifacts are the files written for one run.
type Artifacts struct {
	CSV  string
	XLSX string
}

// WriteCSV writes a BOM, the header line and one ';'-separated line per record.
func (s *Service) WriteCSV(w io.Writer, records []entity.NormalizedRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("csv bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(entity.ExportColumns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("csv row %s: %w", r.UniqueID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RecordsXLSX returns a workbook (as bytes) with one sheet holding the records.
// Every cell is written as text so zero-padded codes survive.
func (s *Service) RecordsXLSX(records []entity.NormalizedRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	write := func(col, row int, v string) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellStr(sheet, cell, v)
	}
	for i, h := range entity.ExportColumns {
		write(i+1, 1, h)
	}
	for r, rec := range records {
		for i, v := range rec.Row() {
			write(i+1, r+2, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "I", 12) // codes and areas
	_ = f.SetColWidth(sheet, "J", "J", 32) // designation
	_ = f.SetColWidth(sheet, "K", "L", 22) // names
	_ = f.SetColWidth(sheet, "M", "M", 14) // registry
	_ = f.SetColWidth(sheet, "N", "P", 28) // address
	_ = f.SetColWidth(sheet, "Q", "Q", 18) // identifier
	_ = f.SetColWidth(sheet, "R", "R", 40) // source file
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores the run artifacts in dir, named after the run id.
func (s *Service) Write(ctx context.Context, dir, runID string, records []entity.NormalizedRecord, withXLSX bool) (Artifacts, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Artifacts{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("output dir: %w", err)
	}

	var out Artifacts
	var buf bytes.Buffer
	if err := s.WriteCSV(&buf, records); err != nil {
		return Artifacts{}, err
	}
	out.CSV = filepath.Join(dir, "parcelles-"+runID+".csv")
	if err := os.WriteFile(out.CSV, buf.Bytes(), 0o644); err != nil {
		return Artifacts{}, fmt.Errorf("write csv: %w", err)
	}

	if withXLSX {
		b, err := s.RecordsXLSX(records)
		if err != nil {
			return out, err
		}
		out.XLSX = filepath.Join(dir, "parcelles-"+runID+".xlsx")
		if err := os.WriteFile(out.XLSX, b, 0o644); err != nil {
			return out, fmt.Errorf("write xlsx: %w", err)
		}
	}

	s.logger.Info("export.ok",
		"run_id", runID,
		"rows", len(records),
		"csv", out.CSV,
		"xlsx", out.XLSX,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
