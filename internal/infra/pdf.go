package infra

// pdf.go renders the till-close report (A5) that the email worker attaches.
// Layout: Empresa header, date and operator, sales block, withdrawals,
// expected vs counted cash, signed difference and its classification.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateArqueoPDF writes storagePath/arqueo_{id}.pdf and returns its path.
func GenerateArqueoPDF(empresa string, a dto.ArqueoResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("arqueo_%d.pdf", a.ID))

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24
	etiquetaW := contentW * 0.62
	montoW := contentW - etiquetaW

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(empresa), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Comprobante de cierre de caja"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 9)
	cerradoPor := "No especificado"
	if a.CerradoPor != nil {
		cerradoPor = *a.CerradoPor
	}
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Arqueo #%d   Fecha: %s", a.ID, a.Fecha)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Cerrado por: "+cerradoPor), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Pedidos: %d   Retiros: %d", a.NumPedidos, a.NumRetiros)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	fila := func(etiqueta, monto string, negrita bool) {
		estilo := ""
		if negrita {
			estilo = "B"
		}
		pdf.SetFont("Helvetica", estilo, 10)
		pdf.CellFormat(etiquetaW, 7, tr(etiqueta), "B", 0, "L", false, 0, "")
		pdf.CellFormat(montoW, 7, monto, "B", 1, "R", false, 0, "")
	}

	// ── Ventas ───────────────────────────────────────────────────────────────
	fila("Ventas en efectivo", pesosPDF(a.VentasEfectivo), false)
	fila("Ventas con tarjeta", pesosPDF(a.VentasTarjeta), false)
	fila("Total de ventas", pesosPDF(a.TotalVentas), true)
	pdf.Ln(2)

	// ── Efectivo ─────────────────────────────────────────────────────────────
	fila("Total de retiros", "-"+pesosPDF(a.Retiros), false)
	fila("Efectivo esperado", pesosPDF(a.EfectivoEsperado), true)
	fila("Monto contado", pesosPDF(a.MontoContado), false)

	signo := "+"
	if a.Diferencia.IsNegative() {
		signo = "-"
	}
	fila("Diferencia ("+a.Clasificacion+")", signo+pesosPDF(a.Diferencia.Abs()), true)

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "______________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, "Firma", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func pesosPDF(d decimal.Decimal) string { return "$" + d.StringFixed(2) }
