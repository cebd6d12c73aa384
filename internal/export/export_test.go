package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/madhu-yavar/table-extraction/internal/pipeline"
)

var sampleTxs = []pipeline.Transaction{
	{
		Date:              "01/02/2024",
		Description:       "POS PURCHASE, COFFEE \"HOUSE\"",
		WithdrawalsDebits: 4.5,
		VendorName:        "Coffee Shop",
		Account:           "Meals",
		Document:          "jan.pdf",
	},
	{
		Date:            "01/03/2024",
		Description:     "DEPOSIT",
		DepositsCredits: 1200,
		VendorName:      "Unknown",
		Account:         "Other Expenses",
		Document:        "jan.pdf",
	},
}

func TestWriteCSVColumnOrder(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "base columns",
			opts: Options{},
			want: []string{"Date", "Description", "Deposits_Credits", "Withdrawals_Debits", "Vendor Name"},
		},
		{
			name: "with account",
			opts: Options{WithAccount: true},
			want: []string{"Date", "Description", "Deposits_Credits", "Withdrawals_Debits", "Vendor Name", "Account"},
		},
		{
			name: "with account and document",
			opts: Options{WithAccount: true, WithDocument: true},
			want: []string{"Date", "Description", "Deposits_Credits", "Withdrawals_Debits", "Vendor Name", "Account", "Document"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteCSV(&buf, sampleTxs, tt.opts); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			rows, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("parse output: %v", err)
			}
			if len(rows) != 3 {
				t.Fatalf("got %d rows, want 3", len(rows))
			}
			if strings.Join(rows[0], "|") != strings.Join(tt.want, "|") {
				t.Errorf("header = %v, want %v", rows[0], tt.want)
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{WithAccount: true, WithDocument: true}
	if err := WriteCSV(&buf, sampleTxs, opts); err != nil {
		t.Fatalf("write: %v", err)
	}

	txs, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(txs) != len(sampleTxs) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(sampleTxs))
	}
	if txs[0].Description != sampleTxs[0].Description {
		t.Errorf("description = %q, want %q", txs[0].Description, sampleTxs[0].Description)
	}
	if txs[0].WithdrawalsDebits != 4.5 {
		t.Errorf("WithdrawalsDebits = %v", txs[0].WithdrawalsDebits)
	}
	if txs[1].DepositsCredits != 1200 {
		t.Errorf("DepositsCredits = %v", txs[1].DepositsCredits)
	}
	if txs[1].Account != "Other Expenses" {
		t.Errorf("Account = %q", txs[1].Account)
	}
}

func TestReadCSVMissingRequiredColumn(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("Date,Amount\n01/02/2024,5\n")); err == nil {
		t.Fatal("expected error for missing Description column")
	}
}

func TestReadCSVEmpty(t *testing.T) {
	txs, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions from empty input", len(txs))
	}
}

func TestWriteXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteXLSXFile(path, sampleTxs, Options{WithAccount: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][5] != "Account" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != sampleTxs[0].Description {
		t.Errorf("description cell = %q", rows[1][1])
	}
}
