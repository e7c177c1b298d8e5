package evolution

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/equidadeplus/equidade_backend/internal/repo"
)

const pdfDateLayout = "02/01/2006 15:04"

func renderPDF(w io.Writer, e *repo.Evolution, patient *repo.Patient, addenda []*repo.Addendum, names map[uuid.UUID]string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	// Core fonts are cp1252; translate so accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Evolução clínica"), false)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Equidade+ · evolução %s · página %d", e.ID, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Evolução clínica"), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	line("Paciente:", patient.FullName)
	line("Profissional:", nameOf(names, e.AuthorID))
	line("Registrada em:", e.CreatedAt.Format(pdfDateLayout))
	if e.SignedAt != nil {
		line("Assinada em:", e.SignedAt.Format(pdfDateLayout))
	}
	if e.CoSignature != nil {
		line("Supervisão:", fmt.Sprintf("%s em %s",
			nameOf(names, e.CoSignature.SupervisorID), e.CoSignature.ApprovedAt.Format(pdfDateLayout)))
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, tr("Relato da sessão"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(e.Content), "", "L", false)

	if e.InappropriateBehavior {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, tr("Comportamento inadequado observado"), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, tr(e.BehaviorDescription), "", "L", false)
	}

	if len(addenda) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, tr("Adendos"), "", 1, "L", false, 0, "")
		for _, a := range addenda {
			pdf.SetFont("Arial", "I", 10)
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s · %s", a.CreatedAt.Format(pdfDateLayout), nameOf(names, a.AuthorID))), "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 11)
			pdf.MultiCell(0, 6, tr(a.Content), "", "L", false)
			pdf.Ln(2)
		}
	}

	return pdf.Output(w)
}

func nameOf(names map[uuid.UUID]string, id uuid.UUID) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id.String()
}
