package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/derssen/controller-bot/internal/domain"
	"github.com/derssen/controller-bot/internal/store"
)

const summarySheet = "Сводка"

// Exporter rebuilds the statistics workbook from the ledger: one sheet
// per staff member plus a summary sheet with all-time lead totals.
type Exporter struct {
	repo  store.Repo
	clock *domain.Clock
	path  string
	log   *zap.Logger
}

func New(repo store.Repo, clock *domain.Clock, path string, log *zap.Logger) *Exporter {
	return &Exporter{repo: repo, clock: clock, path: path, log: log}
}

// Export writes the workbook to a temp file and renames it into place,
// so a reader never sees a half-written file.
func (e *Exporter) Export(ctx context.Context) error {
	staff, err := e.repo.ListStaff(ctx)
	if err != nil {
		return fmt.Errorf("list staff: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#CCFFCC"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	// The default sheet becomes the summary.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	summary := [][]any{{"Сотрудник", "Лидов всего"}}
	for _, p := range staff {
		records, err := e.repo.ListRecords(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("records for %d: %w", p.UserID, err)
		}
		totalLeads, err := e.writeUserSheet(f, headerStyle, &p, records)
		if err != nil {
			return fmt.Errorf("sheet for %s: %w", p.RealName, err)
		}
		summary = append(summary, []any{p.RealName, totalLeads})
	}

	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("summary style: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return err
	}
	tmp := e.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}

	e.log.Info("workbook exported",
		zap.String("path", e.path),
		zap.Int("staff", len(staff)),
	)
	return nil
}

// writeUserSheet renders one staff member's history: a column per
// business day with start, finish and leads, and an all-time lead
// total. Returns the lead total for the summary sheet.
func (e *Exporter) writeUserSheet(f *excelize.File, headerStyle int, p *domain.StaffProfile, records []domain.ShiftRecord) (int, error) {
	if _, err := f.NewSheet(p.RealName); err != nil {
		return 0, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].BusinessDay < records[j].BusinessDay })

	dates := make([]any, 0, len(records))
	starts := make([]any, 0, len(records))
	finishes := make([]any, 0, len(records))
	leads := make([]any, 0, len(records))
	totalLeads := 0

	for i := range records {
		r := &records[i]
		dates = append(dates, shortDay(r.BusinessDay))
		starts = append(starts, clockCell(r.StartTime, e.clock.Location()))
		finishes = append(finishes, clockCell(r.EndTime, e.clock.Location()))
		leads = append(leads, r.Leads)
		totalLeads += r.Leads
	}

	rows := [][]any{
		append([]any{"Дата"}, dates...),
		append([]any{"Время старта"}, starts...),
		append([]any{"Время финиша"}, finishes...),
		append([]any{"Лидов получено"}, leads...),
		{"Лидов итого", totalLeads},
	}
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(p.RealName, cell, &row); err != nil {
			return 0, err
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(dates)+1, 1)
	if err := f.SetCellStyle(p.RealName, "A1", last, headerStyle); err != nil {
		return 0, err
	}
	return totalLeads, nil
}

// shortDay renders a business day as dd/mm.
func shortDay(d domain.Day) string {
	t, err := time.Parse("2006-01-02", string(d))
	if err != nil {
		return string(d)
	}
	return t.Format("02/01")
}

// clockCell renders a timestamp as business-local HH:MM, empty if unset.
func clockCell(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}
