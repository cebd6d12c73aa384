// Package pipeline drives statement pages through prompt construction,
// model invocation, JSON recovery and normalization, accumulating validated
// transactions per document.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/madhu-yavar/table-extraction/internal/document"
	"github.com/madhu-yavar/table-extraction/internal/llm"
	"github.com/madhu-yavar/table-extraction/internal/logger"
	"github.com/madhu-yavar/table-extraction/internal/reference"
)

// Source yields the pages of one document. Bulk mode works over a slice of
// sources so an unopenable document can be skipped without touching the
// rest.
type Source interface {
	Name() string
	Pages(ctx context.Context) (*document.Pages, error)
}

// ProgressFunc observes batch progress after every processed page. done
// never decreases and reaches total when the run completes.
type ProgressFunc func(done, total int)

// Processor runs the per-page extraction pipeline. It holds no result
// state; every run returns a caller-owned Result.
type Processor struct {
	client   llm.Client
	vendors  *reference.List
	accounts *reference.List
	progress ProgressFunc
}

// Option configures a Processor.
type Option func(*Processor)

// WithAccounts supplies the chart of accounts for the classification flow.
func WithAccounts(accounts *reference.List) Option {
	return func(p *Processor) { p.accounts = accounts }
}

// WithProgress registers a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Processor) { p.progress = fn }
}

// New creates a Processor. An empty vendor list is valid: every record then
// classifies as Unknown.
func New(client llm.Client, vendors *reference.List, opts ...Option) *Processor {
	if vendors == nil {
		vendors = reference.Empty(reference.VendorColumn)
	}
	p := &Processor{client: client, vendors: vendors}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessDocument runs the single-call extraction+categorization flow over
// every page of one document, strictly in page order. A failing page is
// recorded and contributes zero records; the run continues. The only errors
// returned are context cancellation.
func (p *Processor) ProcessDocument(ctx context.Context, doc *document.Pages) (*Result, error) {
	total := doc.PageCount()
	return p.runPages(ctx, doc, "", func(done int) {
		if p.progress != nil {
			p.progress(done, total)
		}
	})
}

// ProcessBatch runs the single-call flow over multiple documents,
// sequentially, stamping each record with its source document. Documents
// that cannot be opened are skipped and recorded; progress is reported over
// the total page count of the documents that did open.
func (p *Processor) ProcessBatch(ctx context.Context, sources []Source) (*BatchResult, error) {
	log := logger.For(logger.FromContext(ctx), "pipeline")
	runID := uuid.NewString()

	batch := &BatchResult{Results: make(map[string]*Result)}

	// Open everything up front so the progress denominator covers the
	// whole batch.
	type openDoc struct {
		name  string
		pages *document.Pages
	}
	var docs []openDoc
	total := 0
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		pages, err := src.Pages(ctx)
		if err != nil {
			log.Error().Err(err).Str("run_id", runID).Str("document", src.Name()).Msg("Skipping unreadable document")
			batch.Skipped = append(batch.Skipped, SkippedDocument{Document: src.Name(), Err: err})
			continue
		}
		docs = append(docs, openDoc{name: src.Name(), pages: pages})
		total += pages.PageCount()
	}

	done := 0
	for _, d := range docs {
		result, err := p.runPages(ctx, d.pages, d.name, func(pagesDone int) {
			if p.progress != nil {
				p.progress(done+pagesDone, total)
			}
		})
		if err != nil {
			return batch, err
		}
		done += d.pages.PageCount()
		batch.Documents = append(batch.Documents, d.name)
		batch.Results[d.name] = result
	}

	log.Info().Str("run_id", runID).Int("documents", len(batch.Documents)).
		Int("skipped", len(batch.Skipped)).Int("pages", total).Msg("Batch run complete")

	return batch, nil
}

// runPages is the sequential page loop shared by single and bulk runs.
func (p *Processor) runPages(ctx context.Context, doc *document.Pages, stamp string, report func(done int)) (*Result, error) {
	log := logger.For(logger.FromContext(ctx), "pipeline")

	result := &Result{
		Document:   doc.Name,
		PagesTotal: doc.PageCount(),
	}
	if doc.SkippedPages > 0 {
		log.Warn().Str("document", doc.Name).Int("skipped_pages", doc.SkippedPages).
			Int("total_pages", doc.TotalPages).Msg("Pages without extractable text were omitted")
	}

	for i, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		log.Info().Str("document", doc.Name).Int("page", page.PageNumber).
			Int("of", doc.TotalPages).Msg("Processing page")

		txs, dropped, err := p.processPage(ctx, page)
		if err != nil {
			log.Error().Err(err).Str("document", doc.Name).Int("page", page.PageNumber).
				Msg("Page failed, continuing with zero records")
			result.PagesFailed++
			result.PageErrors = append(result.PageErrors, PageError{Page: page.PageNumber, Err: err})
		} else {
			if stamp != "" {
				for j := range txs {
					txs[j].Document = stamp
				}
			}
			result.Transactions = append(result.Transactions, txs...)
			result.Dropped += dropped
		}

		report(i + 1)
	}

	return result, nil
}

// processPage runs prompt → invoke → recover → normalize for one page.
func (p *Processor) processPage(ctx context.Context, page document.PageText) ([]Transaction, int, error) {
	prompt := BuildExtractionPrompt(page.Text, p.vendors.Values())

	raw, err := p.client.Invoke(ctx, prompt)
	if err != nil {
		return nil, 0, fmt.Errorf("page %d: %w", page.PageNumber, err)
	}

	records, err := RecoverRecords(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("page %d: %w", page.PageNumber, err)
	}

	txs, dropped := NormalizeRecords(records, NormalizeOptions{})
	return txs, dropped, nil
}
