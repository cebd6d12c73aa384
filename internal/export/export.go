// Package export writes extraction results to CSV and XLSX, reads them back
// for the analytics flow, and appends vendor-correction feedback.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/madhu-yavar/table-extraction/internal/pipeline"
)

// Options selects the optional output columns. Account appears for the
// classification flow, Document for bulk runs.
type Options struct {
	WithAccount  bool
	WithDocument bool
}

func header(opts Options) []string {
	h := []string{"Date", "Description", "Deposits_Credits", "Withdrawals_Debits", "Vendor Name"}
	if opts.WithAccount {
		h = append(h, "Account")
	}
	if opts.WithDocument {
		h = append(h, "Document")
	}
	return h
}

func row(tx pipeline.Transaction, opts Options) []string {
	r := []string{
		tx.Date,
		tx.Description,
		formatAmount(tx.DepositsCredits),
		formatAmount(tx.WithdrawalsDebits),
		tx.VendorName,
	}
	if opts.WithAccount {
		r = append(r, tx.Account)
	}
	if opts.WithDocument {
		r = append(r, tx.Document)
	}
	return r
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteCSV writes the transactions in the fixed column order.
func WriteCSV(w io.Writer, txs []pipeline.Transaction, opts Options) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header(opts)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(row(tx, opts)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the transactions to a CSV file on disk.
func WriteCSVFile(path string, txs []pipeline.Transaction, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, txs, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteXLSXFile writes the transactions to a single-sheet workbook with the
// same column order as the CSV output.
func WriteXLSXFile(path string, txs []pipeline.Transaction, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := writeSheetRow(f, sheet, 1, header(opts)); err != nil {
		return err
	}
	for i, tx := range txs {
		cells := make([]any, 0, 7)
		cells = append(cells, tx.Date, tx.Description, tx.DepositsCredits, tx.WithdrawalsDebits, tx.VendorName)
		if opts.WithAccount {
			cells = append(cells, tx.Account)
		}
		if opts.WithDocument {
			cells = append(cells, tx.Document)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// ReadCSV loads previously exported transactions, e.g. as input to the
// analytics flow. Optional columns are detected from the header.
func ReadCSV(r io.Reader) ([]pipeline.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(head))
	for i, h := range head {
		col[h] = i
	}
	for _, required := range []string{"Date", "Description"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv input has no %q column", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var txs []pipeline.Transaction
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		deposits, _ := strconv.ParseFloat(field(rec, "Deposits_Credits"), 64)
		withdrawals, _ := strconv.ParseFloat(field(rec, "Withdrawals_Debits"), 64)

		txs = append(txs, pipeline.Transaction{
			Date:              field(rec, "Date"),
			Description:       field(rec, "Description"),
			DepositsCredits:   deposits,
			WithdrawalsDebits: withdrawals,
			VendorName:        field(rec, "Vendor Name"),
			Account:           field(rec, "Account"),
			Document:          field(rec, "Document"),
		})
	}
	return txs, nil
}
