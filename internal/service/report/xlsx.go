package report

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/equidadeplus/equidade_backend/internal/repo"
)

const (
	sheetAppointments = "Agendamentos"
	sheetSummary      = "Resumo"
	xlsxDateLayout    = "02/01/2006 15:04"
)

var appointmentHeader = []string{"Início", "Fim", "Paciente", "Profissional", "Especialidade", "Sala", "Status"}

var appointmentWidths = []float64{18, 18, 32, 28, 20, 12, 14}

func writeWorkbook(w io.Writer, d *Dashboard, rows []*repo.Appointment, names map[uuid.UUID]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetAppointments)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, sheetAppointments, 1, toAny(appointmentHeader)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(appointmentHeader), 1)
	if err := f.SetCellStyle(sheetAppointments, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}
	for i, width := range appointmentWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetAppointments, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, a := range rows {
		if err := writeRow(f, sheetAppointments, i+2, []any{
			a.StartsAt.Format(xlsxDateLayout),
			a.EndsAt.Format(xlsxDateLayout),
			nameOf(names, a.PatientID),
			nameOf(names, a.TherapistID),
			a.Specialty,
			a.Room,
			string(a.Status),
		}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	summary := [][]any{
		{"Período", fmt.Sprintf("%s a %s", d.Period.From.Format("02/01/2006"), d.Period.To.Format("02/01/2006"))},
		{"Pacientes ativos", d.ActivePatients},
		{"Agendamentos", d.AppointmentsTotal},
		{"Taxa de comparecimento", d.AttendanceRate},
		{"Evoluções aguardando supervisão", d.PendingSupervision},
		{"Evoluções em revisão", d.AwaitingRevision},
	}
	for _, c := range d.Appointments {
		summary = append(summary, []any{"Status: " + c.Status, c.Count})
	}
	for i, row := range summary {
		if err := writeRow(f, sheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 34); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	pct, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("create percent style: %w", err)
	}
	if err := f.SetCellStyle(sheetSummary, "B4", "B4", pct); err != nil {
		return fmt.Errorf("set percent style: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func nameOf(names map[uuid.UUID]string, id uuid.UUID) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id.String()
}
