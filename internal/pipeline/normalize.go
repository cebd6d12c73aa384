package pipeline

import (
	"strconv"
	"strings"
	"time"
)

// NormalizeOptions tunes normalization for the calling flow.
type NormalizeOptions struct {
	// Document, when set, stamps every record with its source document
	// identifier (bulk mode).
	Document string
	// WithAccount substitutes OtherExpensesAccount for an absent account
	// (classification flow).
	WithAccount bool
}

// NormalizeRecords validates and coerces raw parsed records into
// transactions. Records with unparsable dates are dropped, never defaulted;
// amounts fail soft to 0; vendor and account get their sentinel when absent.
// Individual bad records never abort the batch. Returns the retained
// transactions and the dropped count.
//
// Normalization is idempotent: running it over its own output changes
// nothing.
func NormalizeRecords(records []map[string]any, opts NormalizeOptions) ([]Transaction, int) {
	result := make([]Transaction, 0, len(records))
	dropped := 0

	for _, rec := range records {
		date, ok := coerceDate(rec["Date"])
		if !ok {
			dropped++
			continue
		}

		// Description is carried verbatim, not even trimmed.
		desc, _ := rec["Description"].(string)

		tx := Transaction{
			Date:              date,
			Description:       desc,
			DepositsCredits:   coerceAmount(rec["Deposits_Credits"]),
			WithdrawalsDebits: coerceAmount(rec["Withdrawals_Debits"]),
			VendorName:        coerceString(rec["Vendor Name"]),
			Document:          opts.Document,
		}

		if tx.VendorName == "" {
			tx.VendorName = UnknownVendor
		}

		if opts.WithAccount {
			tx.Account = coerceString(rec["Account"])
			if tx.Account == "" {
				tx.Account = OtherExpensesAccount
			}
		}

		result = append(result, tx)
	}

	return result, dropped
}

// coerceDate parses the fixed MM/DD/YYYY format and reformats canonically.
// Anything else means the record is excluded.
func coerceDate(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

// coerceAmount turns the model's amount value into a float64. Missing, null
// and non-numeric junk all fail soft to 0 rather than aborting the batch.
func coerceAmount(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(val, "$"), ",", ""))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
