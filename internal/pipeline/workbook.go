package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes the three aggregate series for one station into a
// single xlsx workbook, one sheet per series. Missing stats are left as
// empty cells.
func WriteWorkbook(root, stationID string, daily []DailyRow, monthly []MonthlyRow, history []HistoryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeDailySheet(f, daily); err != nil {
		return err
	}
	if err := writeMonthlySheet(f, monthly); err != nil {
		return err
	}
	if err := writeHistorySheet(f, history); err != nil {
		return err
	}
	f.DeleteSheet("Sheet1")

	dir := StationDir(root, stationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create workbook directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.xlsx", stationID))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeDailySheet(f *excelize.File, rows []DailyRow) error {
	const sheet = "Daily"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, toCells(dailyHeader)); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []any{
			row.Day,
			statCell(statP10(row.TMin)),
			statCell(statP90(row.TMax)),
			statCell(statMin(row.TMin)),
			statCell(statMax(row.TMax)),
			statCell(statSum(row.Prcp)),
			row.Month,
			row.DayOfMonth,
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthlySheet(f *excelize.File, rows []MonthlyRow) error {
	const sheet = "Monthly"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, toCells(monthlyHeader)); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []any{
			row.Month,
			statCell(statP10(row.TMin)),
			statCell(statP90(row.TMax)),
			statCell(statMin(row.TMin)),
			statCell(statMax(row.TMax)),
			statCell(statSum(row.Prcp)),
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeHistorySheet(f *excelize.File, rows []HistoryRow) error {
	const sheet = "History"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, toCells(historyHeader)); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []any{
			row.Date.Format("2006-01-02"),
			statCell(row.TMinP10),
			statCell(row.TMaxP90),
			statCell(row.TMinMin),
			statCell(row.TMaxMax),
			statCell(row.PrcpSum),
			row.TMinCount,
			row.TMaxCount,
			row.PrcpCount,
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowIndex int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return fmt.Errorf("failed to build cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", rowIndex, sheet, err)
	}
	return nil
}

func statCell(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func toCells(header []string) []any {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}
