package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/madhu-yavar/table-extraction/internal/docsource"
	"github.com/madhu-yavar/table-extraction/internal/export"
	"github.com/madhu-yavar/table-extraction/internal/llm"
	"github.com/madhu-yavar/table-extraction/internal/logger"
	"github.com/madhu-yavar/table-extraction/internal/pipeline"
	"github.com/madhu-yavar/table-extraction/internal/reference"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "bulk":
		runBulk(log)
	case "ask":
		runAsk(log)
	case "correct":
		runCorrect(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Statement Extraction CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  statements <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Extract transactions from one statement PDF")
	fmt.Println("  bulk      Extract transactions from every PDF in a directory or GCS prefix")
	fmt.Println("  ask       Answer a question over previously exported transactions")
	fmt.Println("  correct   Record a vendor correction in the feedback log")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'statements <command> -h' for more information on a command.")
}

// providerFlags is the model-selection surface shared by every command that
// talks to a backend.
type providerFlags struct {
	provider *string
	model    *string
	timeout  *time.Duration
}

func addProviderFlags(fs *flag.FlagSet) providerFlags {
	return providerFlags{
		provider: fs.String("provider", "deepseek", "Model backend: deepseek or gemini"),
		model:    fs.String("model", "", "Model name (backend default if empty)"),
		timeout:  fs.Duration("timeout", 2*time.Minute, "Per-request timeout"),
	}
}

func (pf providerFlags) client(log zerolog.Logger) llm.Client {
	key := apiKey(*pf.provider)
	if key == "" {
		log.Fatal().Str("provider", *pf.provider).Msg("No API key found in environment")
	}
	client, err := llm.New(llm.Config{
		Provider: *pf.provider,
		APIKey:   key,
		Model:    *pf.model,
		Timeout:  *pf.timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}
	return client
}

func apiKey(provider string) string {
	switch provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("DEEPSEEK_API_KEY")
	}
}

func loadList(log zerolog.Logger, path, column, what string) *reference.List {
	if path == "" {
		return nil
	}
	list, err := reference.Load(path, column)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msgf("Failed to load %s list", what)
	}
	log.Info().Str("file", path).Int("entries", list.Len()).Msgf("Loaded %s list", what)
	return list
}

func progressBar(label string) pipeline.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(label),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
	}
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	file := fs.String("file", "", "Path to a local statement PDF")
	uri := fs.String("uri", "", "GCS URI of a statement PDF (gs://bucket/object)")
	vendorsPath := fs.String("vendors", "", "Vendor list file (CSV or XLSX with a Payee column)")
	accountsPath := fs.String("accounts", "", "Chart of accounts file (CSV or XLSX with an Account column); enables the two-step classification flow")
	out := fs.String("out", "", "Output file; .xlsx extension selects workbook output (default <statement>.csv)")
	pf := addProviderFlags(fs)
	fs.Parse(os.Args[2:])

	if (*file == "") == (*uri == "") {
		log.Fatal().Msg("Exactly one of -file or -uri is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var src pipeline.Source
	if *file != "" {
		src = docsource.Local{Path: *file}
	} else {
		obj, err := docsource.ParseGCSURI(*uri)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid GCS URI")
		}
		src = obj
	}

	doc, err := src.Pages(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("document", src.Name()).Msg("Failed to read statement")
	}
	log.Info().Str("document", doc.Name).Int("pages", doc.PageCount()).
		Int("skipped_pages", doc.SkippedPages).Msg("Statement loaded")

	vendors := loadList(log, *vendorsPath, reference.VendorColumn, "vendor")
	accounts := loadList(log, *accountsPath, reference.AccountColumn, "account")

	opts := []pipeline.Option{pipeline.WithProgress(progressBar("Processing pages"))}
	if accounts != nil {
		opts = append(opts, pipeline.WithAccounts(accounts))
	}
	p := pipeline.New(pf.client(log), vendors, opts...)

	var result *pipeline.Result
	if accounts != nil {
		result, err = p.ClassifyDocument(ctx, doc)
	} else {
		result, err = p.ProcessDocument(ctx, doc)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Processing aborted")
	}
	reportResult(log, result)

	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name)) + ".csv"
	}
	writeResult(log, outPath, result.Transactions, export.Options{WithAccount: accounts != nil})
	fmt.Printf("Wrote %d transactions to %s\n", len(result.Transactions), outPath)
}

func runBulk(log zerolog.Logger) {
	fs := flag.NewFlagSet("bulk", flag.ExitOnError)
	dir := fs.String("dir", "", "Local directory of statement PDFs")
	bucket := fs.String("bucket", "", "GCS bucket of statement PDFs")
	prefix := fs.String("prefix", "", "GCS object prefix (with -bucket)")
	vendorsPath := fs.String("vendors", "", "Vendor list file (CSV or XLSX with a Payee column)")
	out := fs.String("out", "transactions.csv", "Combined output file; .xlsx selects workbook output")
	pf := addProviderFlags(fs)
	fs.Parse(os.Args[2:])

	if (*dir == "") == (*bucket == "") {
		log.Fatal().Msg("Exactly one of -dir or -bucket is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var sources []pipeline.Source
	if *dir != "" {
		files, err := docsource.ListLocalDir(*dir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list directory")
		}
		for _, f := range files {
			sources = append(sources, f)
		}
	} else {
		objects, err := docsource.ListGCSPrefix(ctx, *bucket, *prefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list bucket")
		}
		for _, o := range objects {
			sources = append(sources, o)
		}
	}
	if len(sources) == 0 {
		log.Fatal().Msg("No PDF documents found")
	}
	log.Info().Int("documents", len(sources)).Msg("Starting bulk run")

	vendors := loadList(log, *vendorsPath, reference.VendorColumn, "vendor")
	p := pipeline.New(pf.client(log), vendors,
		pipeline.WithProgress(progressBar("Processing pages")))

	batch, err := p.ProcessBatch(ctx, sources)
	if err != nil {
		log.Fatal().Err(err).Msg("Bulk run aborted")
	}

	var all []pipeline.Transaction
	for _, name := range batch.Documents {
		result := batch.Results[name]
		reportResult(log, result)
		all = append(all, result.Transactions...)
	}
	for _, skipped := range batch.Skipped {
		log.Warn().Err(skipped.Err).Str("document", skipped.Document).Msg("Document skipped")
	}

	writeResult(log, *out, all, export.Options{WithDocument: true})
	fmt.Printf("Wrote %d transactions from %d documents to %s (%d skipped)\n",
		len(all), len(batch.Documents), *out, len(batch.Skipped))
}

func runAsk(log zerolog.Logger) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	in := fs.String("in", "transactions.csv", "Previously exported transactions CSV")
	question := fs.String("q", "", "Question to ask about the transactions")
	pf := addProviderFlags(fs)
	fs.Parse(os.Args[2:])

	if *question == "" {
		log.Fatal().Msg("Error: -q is required")
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transactions file")
	}
	txs, err := export.ReadCSV(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions")
	}
	if len(txs) == 0 {
		log.Fatal().Str("file", *in).Msg("No transactions to analyze")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	p := pipeline.New(pf.client(log), nil)
	answer, err := p.Ask(ctx, *question, txs)
	if err != nil {
		log.Error().Err(err).Msg("Analysis failed")
	}
	fmt.Println(answer)
}

func runCorrect(log zerolog.Logger) {
	fs := flag.NewFlagSet("correct", flag.ExitOnError)
	logPath := fs.String("log", "feedback.csv", "Feedback log file")
	date := fs.String("date", "", "Transaction date (MM/DD/YYYY)")
	doc := fs.String("document", "", "Source document name")
	description := fs.String("description", "", "Transaction description, verbatim")
	original := fs.String("original", "", "Vendor the model assigned")
	corrected := fs.String("vendor", "", "Correct vendor name")
	deposits := fs.Float64("deposits", 0, "Deposits/credits amount")
	withdrawals := fs.Float64("withdrawals", 0, "Withdrawals/debits amount")
	comments := fs.String("comments", "", "Reviewer comments")
	fs.Parse(os.Args[2:])

	if *description == "" || *corrected == "" {
		log.Fatal().Msg("Error: -description and -vendor are required")
	}

	correction := export.Correction{
		Transaction: pipeline.Transaction{
			Date:              *date,
			Description:       *description,
			DepositsCredits:   *deposits,
			WithdrawalsDebits: *withdrawals,
			VendorName:        *original,
			Document:          *doc,
		},
		CorrectedVendor: *corrected,
		Comments:        *comments,
	}
	if err := export.AppendFeedback(*logPath, []export.Correction{correction}); err != nil {
		log.Fatal().Err(err).Msg("Failed to record correction")
	}
	fmt.Printf("Recorded correction for %q in %s\n", *description, *logPath)
}

func reportResult(log zerolog.Logger, result *pipeline.Result) {
	evt := log.Info().
		Str("document", result.Document).
		Int("transactions", len(result.Transactions)).
		Int("pages", result.PagesTotal).
		Int("pages_failed", result.PagesFailed).
		Int("records_dropped", result.Dropped)
	evt.Msg("Document processed")

	for _, pe := range result.PageErrors {
		log.Warn().Err(pe.Err).Str("document", result.Document).Int("page", pe.Page).
			Msg("Page produced no records")
	}
}

func writeResult(log zerolog.Logger, path string, txs []pipeline.Transaction, opts export.Options) {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = export.WriteXLSXFile(path, txs, opts)
	} else {
		err = export.WriteCSVFile(path, txs, opts)
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to write output")
	}
}
