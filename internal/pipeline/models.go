package pipeline

// Sentinel values substituted when the model cannot match a reference entry.
// These are the single source of truth shared by prompts, the normalizer and
// the classification flow.
const (
	UnknownVendor        = "Unknown"
	OtherExpensesAccount = "Other Expenses"
)

// DateLayout is the canonical transaction date format (MM/DD/YYYY).
const DateLayout = "01/02/2006"

// Transaction is one normalized line item extracted from a statement page.
type Transaction struct {
	Date              string  `json:"Date"`
	Description       string  `json:"Description"`
	DepositsCredits   float64 `json:"Deposits_Credits"`
	WithdrawalsDebits float64 `json:"Withdrawals_Debits"`
	VendorName        string  `json:"Vendor Name"`
	Account           string  `json:"Account,omitempty"`
	Document          string  `json:"Document,omitempty"`
}

// PageError records a page whose pipeline invocation failed. The page
// contributes zero records; the run continues.
type PageError struct {
	Page int
	Err  error
}

// Result accumulates the normalized records for one document, in page order.
// It is owned by the caller; the orchestrator only appends during a run.
type Result struct {
	Document     string
	Transactions []Transaction
	PagesTotal   int
	PagesFailed  int
	Dropped      int // records excluded during normalization
	PageErrors   []PageError
}

// SkippedDocument records a bulk-mode document that could not be opened.
type SkippedDocument struct {
	Document string
	Err      error
}

// BatchResult maps each processed document to its own Result, preserving
// input order in Documents.
type BatchResult struct {
	Documents []string
	Results   map[string]*Result
	Skipped   []SkippedDocument
}
