package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/madhu-yavar/table-extraction/internal/pipeline"
)

// Correction is one reviewed vendor assignment to remember for future runs.
type Correction struct {
	Transaction     pipeline.Transaction
	CorrectedVendor string
	Comments        string
}

var feedbackHeader = []string{
	"Date",
	"Document",
	"Description",
	"Corrected Vendor",
	"Original Vendor",
	"Deposits_Credits",
	"Withdrawals_Debits",
	"Comments",
}

// AppendFeedback appends corrections to the feedback log, creating it with a
// header row when the file is new or empty. The log only grows; earlier
// corrections are never rewritten.
func AppendFeedback(path string, corrections []Correction) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat feedback log: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(feedbackHeader); err != nil {
			return fmt.Errorf("write feedback header: %w", err)
		}
	}

	for _, c := range corrections {
		tx := c.Transaction
		rec := []string{
			tx.Date,
			tx.Document,
			tx.Description,
			c.CorrectedVendor,
			tx.VendorName,
			formatAmount(tx.DepositsCredits),
			formatAmount(tx.WithdrawalsDebits),
			c.Comments,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write feedback row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
