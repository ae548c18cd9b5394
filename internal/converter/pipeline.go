package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

var (
	ErrNoPages          = errors.New("invalid sketch data: no pages found")
	ErrEmptyPages       = errors.New("no pages found in sketch file")
	ErrImportInProgress = errors.New("another import is already in progress")
	ErrNoHostPage       = errors.New("failed to create or get host page")
)

// Progress milestones
const (
	progressInit      = 5
	progressStart     = 10
	progressPageFirst = 20
	progressPageSpan  = 60
	progressSymbols   = 85
	progressFinalize  = 95
	progressDone      = 100
)

// DefaultFinalizeDelay is the pause before the final progress milestone.
const DefaultFinalizeDelay = 500 * time.Millisecond

// ConvertOptions holds options for the import pipeline.
type ConvertOptions struct {
	// FullGradients enables native multi-stop gradients and image pattern
	// fills instead of flat placeholder colors.
	FullGradients bool
	// FinalizeDelay pauses before the final milestone so a UI can show the
	// finalizing step. Zero disables the pause.
	FinalizeDelay time.Duration
	Logger        *slog.Logger
}

// ProgressFunc receives progress updates in percent.
type ProgressFunc func(progress int, message string)

// Report summarizes a finished import.
type Report struct {
	SessionID string
	Pages     []PageReport
	Symbols   int
	Images    int
}

// PageReport is the result of importing one page.
type PageReport struct {
	Index  int
	Name   string
	PageID string
	Layers []Outcome
	Err    error
}

// Tally counts created and skipped layers over every page.
func (r *Report) Tally() (created, skipped int) {
	for _, p := range r.Pages {
		c, s := Tally(p.Layers)
		created += c
		skipped += s
	}
	return created, skipped
}

// Pipeline orchestrates the import of Sketch documents into a host
// document. It runs one import at a time.
type Pipeline struct {
	doc     host.Document
	Options ConvertOptions
	running atomic.Bool
}

// NewPipeline creates a new import pipeline writing into doc.
func NewPipeline(doc host.Document, opts ConvertOptions) *Pipeline {
	opts.Logger = loggerOrDiscard(opts.Logger)
	return &Pipeline{doc: doc, Options: opts}
}

// Running reports whether an import is in flight.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Import converts doc page by page. Only structurally invalid input and a
// concurrent import are errors; failures inside pages and layers are
// recorded in the report.
func (p *Pipeline) Import(ctx context.Context, doc *sketch.Document, progress ProgressFunc) (*Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrImportInProgress
	}
	defer p.running.Store(false)

	if progress == nil {
		progress = func(int, string) {}
	}
	logger := p.Options.Logger

	if doc != nil {
		logger.Info("processing sketch data",
			"document", doc.Document != nil,
			"pages", len(doc.Pages),
			"symbols", len(doc.Symbols),
			"images", len(doc.Images),
			"meta", doc.Meta != nil)
	}

	report(progress, progressInit, "Initializing import...")

	if doc == nil || doc.Pages == nil {
		logger.Error("invalid sketch data: no pages found in data structure")
		return nil, ErrNoPages
	}
	if len(doc.Pages) == 0 {
		logger.Error("no pages in sketch data: pages array is empty")
		return nil, ErrEmptyPages
	}

	session := NewSession(doc)
	logger = logger.With("session", session.ID)
	logger.Info("available images for import", "count", session.Images.Len())

	report(progress, progressStart, "Starting import...")

	result := &Report{
		SessionID: session.ID,
		Symbols:   len(doc.Symbols),
		Images:    session.Images.Len(),
	}

	total := len(doc.Pages)
	for i, page := range doc.Pages {
		pr := p.importPage(session, page, i, logger)
		result.Pages = append(result.Pages, pr)

		pct := progressPageFirst + float64(i)/float64(total)*progressPageSpan
		report(progress, pct, "Processing page: "+pageName(page, i))
	}

	report(progress, progressSymbols, "Processing symbols...")
	processSymbols(doc.Symbols, logger)

	report(progress, progressFinalize, "Finalizing import...")
	if p.Options.FinalizeDelay > 0 {
		timer := time.NewTimer(p.Options.FinalizeDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	report(progress, progressDone, "Import completed successfully!")

	created, skipped := result.Tally()
	logger.Info("import finished", "pages", len(result.Pages), "created", created, "skipped", skipped)
	return result, nil
}

// importPage reuses the current host page for the first source page and
// creates a new host page for every later one.
func (p *Pipeline) importPage(session *Session, page sketch.Page, index int, logger *slog.Logger) (pr PageReport) {
	pr = PageReport{Index: index, Name: pageName(page, index)}
	logger = logger.With("page", index, "pageName", pr.Name)

	defer func() {
		if r := recover(); r != nil {
			pr.Err = fmt.Errorf("page %d: panic: %v", index, r)
			logger.Error("error creating page", "error", pr.Err)
		}
	}()

	var hostPage host.Page
	if index == 0 {
		hostPage = p.doc.CurrentPage()
		if hostPage != nil && page.Name != "" {
			hostPage.SetName(page.Name)
		}
		if hostPage != nil {
			logger.Info("using current page", "hostPage", hostPage.Name())
		}
	} else {
		created, err := p.doc.CreatePage()
		if err != nil {
			pr.Err = fmt.Errorf("%w: %w", ErrNoHostPage, err)
			logger.Warn("failed to create page", "error", err)
			return pr
		}
		hostPage = created
		if page.Name != "" {
			hostPage.SetName(page.Name)
		}
		logger.Info("created new page", "hostPage", hostPage.Name())
	}

	if hostPage == nil {
		pr.Err = ErrNoHostPage
		logger.Warn("failed to create/get page")
		return pr
	}
	pr.PageID = hostPage.ID()

	if len(page.Layers) == 0 {
		logger.Info("no layers found in page")
		return pr
	}

	logger.Info("found layers in page", "count", len(page.Layers))
	w := newWalker(p.doc, session, ConvertOptions{
		FullGradients: p.Options.FullGradients,
		Logger:        logger,
	})
	pr.Layers = w.walk(page.Layers, hostPage)
	logger.Info("completed processing layers", "count", len(page.Layers))
	return pr
}

func processSymbols(symbols []sketch.Symbol, logger *slog.Logger) {
	logger.Info("processing symbols", "count", len(symbols))
	for _, s := range symbols {
		name := s.Name
		if name == "" {
			name = "Unnamed Symbol"
		}
		logger.Debug("symbol", "name", name)
	}
}

func pageName(page sketch.Page, index int) string {
	if page.Name != "" {
		return page.Name
	}
	return fmt.Sprintf("Page %d", index+1)
}

func report(progress ProgressFunc, pct float64, message string) {
	progress(int(math.Round(pct)), message)
}
