// internal/app/features/reports/xlsx.go
package reports

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/missio/internal/app/system/aggregation"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	eventHeaders   = []string{"Date", "What", "Why", "Where", "Congregation", "Who", "Approached", "Collaborators", "Decisions", "Contacts", "Notes"}
	eventWidths    = []float64{18, 28, 18, 24, 20, 30, 12, 14, 12, 10, 40}
	contactHeaders = []string{"Event date", "Event", "Name", "Phone", "Address", "Spiritual status", "Observation"}
	contactWidths  = []float64{18, 28, 24, 16, 30, 16, 40}
)

// ServeMonthlyXLSX handles GET /api/reports/monthly.xlsx: the same events
// and totals as the JSON report, as a workbook with an Events and a
// Contacts sheet.
func (h *Handler) ServeMonthlyXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rep, err := h.load(ctx, r)
	if err != nil {
		h.ErrLog.Write(w, r, "monthly report xlsx", err)
		return
	}

	data, err := buildWorkbook(rep, h.Loc)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "monthly report xlsx: build", err, "Unable to build the spreadsheet.")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="missio-report-%s.xlsx"`, rep.Month))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		h.Log.Warn("monthly report xlsx: write", zap.Error(err))
	}
}

// buildWorkbook renders rep. Times are shown in loc.
func buildWorkbook(rep aggregation.MonthlyReport, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	const events, contacts = "Events", "Contacts"
	if err := f.SetSheetName("Sheet1", events); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(contacts); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := writeHeader(f, events, eventHeaders, eventWidths, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, contacts, contactHeaders, contactWidths, headerStyle); err != nil {
		return nil, err
	}

	row, crow := 2, 2
	for _, e := range rep.Events {
		when := e.When.In(loc).Format("2006-01-02 15:04")
		if err := writeRow(f, events, row, []any{
			when, e.What, e.Why, e.Where, e.Congregation, e.Who,
			e.Result.ApproachedCount, e.Result.CollaboratorCount, e.Result.DecisionsCount,
			len(e.Result.Contacts), e.Result.Notes,
		}); err != nil {
			return nil, err
		}
		row++
		for _, c := range e.Result.Contacts {
			if err := writeRow(f, contacts, crow, []any{
				when, e.What, c.Name, c.Phone, c.Address, c.SpiritualStatus, c.Observation,
			}); err != nil {
				return nil, err
			}
			crow++
		}
	}

	t := rep.Totals
	if err := writeRow(f, events, row, []any{
		"Total", fmt.Sprintf("%d events", t.Events), "", "", "", "",
		t.Approached, t.Collaborators, t.Decisions,
	}); err != nil {
		return nil, err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(eventHeaders), row)
	if err := f.SetCellStyle(events, first, last, totalStyle); err != nil {
		return nil, fmt.Errorf("set total style: %w", err)
	}

	for _, sheet := range []string{events, contacts} {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("freeze panes: %w", err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) error {
	for i, hdr := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, hdr); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style header %s: %w", cell, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d on %s: %w", row, sheet, err)
	}
	return nil
}
