package pipeline

import (
	"context"
	"fmt"

	"github.com/madhu-yavar/table-extraction/internal/document"
	"github.com/madhu-yavar/table-extraction/internal/logger"
)

// ClassifyDocument runs the two-step flow: extract bare transactions from
// every page, then make a single classification call assigning a vendor and
// an account to each distinct description. Classification results merge back
// into the extracted records by exact description match; a description the
// model skipped gets the sentinel values. If the classification call itself
// fails the extracted records are still returned, all carrying sentinels.
func (p *Processor) ClassifyDocument(ctx context.Context, doc *document.Pages) (*Result, error) {
	log := logger.For(logger.FromContext(ctx), "pipeline")

	total := doc.PageCount() + 1 // final unit is the classification call
	report := func(done int) {
		if p.progress != nil {
			p.progress(done, total)
		}
	}

	result := &Result{
		Document:   doc.Name,
		PagesTotal: doc.PageCount(),
	}

	var records []map[string]any
	for i, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		log.Info().Str("document", doc.Name).Int("page", page.PageNumber).
			Int("of", doc.TotalPages).Msg("Extracting page")

		recs, err := p.extractPage(ctx, page)
		if err != nil {
			log.Error().Err(err).Str("document", doc.Name).Int("page", page.PageNumber).
				Msg("Page failed, continuing with zero records")
			result.PagesFailed++
			result.PageErrors = append(result.PageErrors, PageError{Page: page.PageNumber, Err: err})
		} else {
			records = append(records, recs...)
		}

		report(i + 1)
	}

	assignments, err := p.classify(ctx, records)
	if err != nil {
		log.Error().Err(err).Str("document", doc.Name).
			Msg("Classification failed, falling back to sentinel values")
	}
	for _, rec := range records {
		desc, _ := rec["Description"].(string)
		if a, ok := assignments[desc]; ok {
			rec["Vendor Name"] = a.vendor
			rec["Account"] = a.account
		}
	}
	report(total)

	txs, dropped := NormalizeRecords(records, NormalizeOptions{WithAccount: true})
	result.Transactions = txs
	result.Dropped = dropped
	return result, nil
}

type assignment struct {
	vendor  string
	account string
}

// extractPage runs step 1 for one page and returns the raw parsed records.
func (p *Processor) extractPage(ctx context.Context, page document.PageText) ([]map[string]any, error) {
	prompt := BuildExtractOnlyPrompt(page.Text)

	raw, err := p.client.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
	}

	records, err := RecoverRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
	}
	return records, nil
}

// classify runs step 2 once over the distinct descriptions of all extracted
// records. Returns a description-keyed map; absent keys mean the model did
// not answer for that description.
func (p *Processor) classify(ctx context.Context, records []map[string]any) (map[string]assignment, error) {
	if len(records) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(records))
	var descriptions []string
	for _, rec := range records {
		desc, _ := rec["Description"].(string)
		if desc == "" || seen[desc] {
			continue
		}
		seen[desc] = true
		descriptions = append(descriptions, desc)
	}

	var accounts []string
	if p.accounts != nil {
		accounts = p.accounts.Values()
	}
	prompt := BuildClassifyPrompt(descriptions, p.vendors.Values(), accounts)

	raw, err := p.client.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	classified, err := RecoverRecords(raw)
	if err != nil {
		return nil, err
	}

	assignments := make(map[string]assignment, len(classified))
	for _, rec := range classified {
		desc, _ := rec["Description"].(string)
		if desc == "" {
			continue
		}
		vendor, _ := rec["Vendor Name"].(string)
		account, _ := rec["Account"].(string)
		assignments[desc] = assignment{vendor: vendor, account: account}
	}
	return assignments, nil
}
