package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fraudit/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// headerColumns is the header-fields row layout shared by both formats.
var headerColumns = []string{
	"Vendor",
	"Invoice Number",
	"Invoice Date",
	"Currency",
	"Subtotal",
	"Tax Amount",
	"Grand Total",
	"Math Correct",
	"Fraud Score",
	"Risk Band",
	"Line Item Count",
	"Flagged Issues",
}

// lineItemColumns is the per-line-item row layout shared by both formats.
var lineItemColumns = []string{
	"#",
	"Description",
	"Quantity",
	"Unit Price",
	"Total",
}

// WriteCSV renders an audited record as BOM-prefixed CSV: one header-fields
// row followed by the line items.
func WriteCSV(w io.Writer, rec *domain.InvoiceExtraction) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headerColumns); err != nil {
		return err
	}
	if err := cw.Write(headerRow(rec)); err != nil {
		return err
	}
	// blank separator row between sections
	if err := cw.Write([]string{""}); err != nil {
		return err
	}
	if err := cw.Write(lineItemColumns); err != nil {
		return err
	}
	for i := range rec.LineItems {
		if err := cw.Write(lineItemRow(i, &rec.LineItems[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders an audited record as an XLSX workbook with a summary
// sheet and a line items sheet.
func WriteXLSX(w io.Writer, rec *domain.InvoiceExtraction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summarySheet = "Summary"
	const itemsSheet = "Line Items"

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Field", "Value"}); err != nil {
		return err
	}
	summary := headerRow(rec)
	for i, col := range headerColumns {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{col, summary[i]}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("creating line items sheet: %w", err)
	}
	header := make([]interface{}, len(lineItemColumns))
	for i, c := range lineItemColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &header); err != nil {
		return err
	}
	for i := range rec.LineItems {
		item := &rec.LineItems[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, item.Description, item.Quantity, item.UnitPrice, item.Total}
		if err := f.SetSheetRow(itemsSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func headerRow(rec *domain.InvoiceExtraction) []string {
	ra := &rec.RiskAssessment
	return []string{
		rec.VendorName,
		rec.InvoiceNumber,
		rec.InvoiceDate,
		rec.Currency,
		formatMoney(rec.Subtotal),
		formatMoney(rec.TaxAmount),
		formatMoney(rec.GrandTotal),
		strconv.FormatBool(ra.IsMathCorrect),
		strconv.Itoa(ra.FraudScore),
		string(domain.BandForScore(ra.FraudScore)),
		strconv.Itoa(len(rec.LineItems)),
		strings.Join(ra.FlaggedIssues, "; "),
	}
}

func lineItemRow(idx int, item *domain.LineItem) []string {
	return []string{
		strconv.Itoa(idx + 1),
		item.Description,
		formatMoney(item.Quantity),
		formatMoney(item.UnitPrice),
		formatMoney(item.Total),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
