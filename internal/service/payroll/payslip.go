package payroll

import (
	"bytes"
	"context"
	"fmt"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/jung-kurt/gofpdf"
)

// Payslip renders a persisted breakdown as a one-page PDF.
func (s *Service) Payslip(ctx context.Context, id string) ([]byte, error) {
	b, err := s.breakdowns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderPayslip(b)
}

func RenderPayslip(b payroll.Breakdown) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	employee := b.EmployeeID
	if b.EmployeeName != nil {
		employee = *b.EmployeeName
	}
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", employee))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Contract: %s", b.ContractID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s (%s to %s)", b.Period,
		b.Period.Start().Format(calendar.DateLayout), b.Period.End().Format(calendar.DateLayout)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", b.Status))
	if b.PaidAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Paid on: %s", b.PaidAt.Format(calendar.DateLayout)))
	}
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(95, 8, "Concept", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Earnings", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Deductions", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range b.Items {
		earning, deduction := "", ""
		if it.Kind == payroll.KindDeduction {
			deduction = it.Amount.StringFixed(2)
		} else {
			earning = it.Amount.StringFixed(2)
		}
		pdf.CellFormat(95, 7, it.Concept, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, it.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, earning, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, deduction, "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Total gross", "T", 0, "L", false, 0, "")
	pdf.CellFormat(70, 8, b.TotalGross.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.CellFormat(120, 8, "Total deductions", "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 8, b.TotalDeductions.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 8, "Net pay", "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 8, b.TotalNet.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
