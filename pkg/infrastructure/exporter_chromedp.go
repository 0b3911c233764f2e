package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"resume-builder/internal/domain"
	"resume-builder/internal/render"
)

// cssPixelsPerInch is the CSS reference pixel density Chrome lays out with.
const cssPixelsPerInch = 96.0

// PageLayout is the fixed paper geometry in inches.
type PageLayout struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
}

// Margins in inches.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// LayoutFor returns the layout for a named paper size ("letter" or "a4").
func LayoutFor(pageSize string, m Margins) (PageLayout, error) {
	l := PageLayout{MarginTop: m.Top, MarginRight: m.Right, MarginBottom: m.Bottom, MarginLeft: m.Left}
	switch strings.ToLower(pageSize) {
	case "", "letter":
		l.Width, l.Height = 8.5, 11
	case "a4":
		// 210mm x 297mm
		l.Width, l.Height = 8.27, 11.69
	default:
		return PageLayout{}, fmt.Errorf("unknown page size %q", pageSize)
	}
	if l.PrintableWidth() <= 0 || l.PrintableHeight() <= 0 {
		return PageLayout{}, fmt.Errorf("margins leave no printable area on %s", pageSize)
	}
	return l, nil
}

func (l PageLayout) PrintableWidth() float64  { return l.Width - l.MarginLeft - l.MarginRight }
func (l PageLayout) PrintableHeight() float64 { return l.Height - l.MarginTop - l.MarginBottom }

type ExportOptions struct {
	Layout        PageLayout
	MaxFieldRunes int
	MaxPages      int
	ChromePath    string
	Timeout       time.Duration
	Attempts      int
}

// ChromedpExporter prints rendered markup to PDF with headless Chrome. Each
// export runs in its own browser process so concurrent requests share
// nothing.
type ChromedpExporter struct {
	opts   ExportOptions
	logger *slog.Logger
}

func NewChromedpExporter(opts ExportOptions, logger *slog.Logger) *ChromedpExporter {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromedpExporter{opts: opts, logger: logger}
}

// Export returns the PDF bytes for doc. Oversized content fails with
// ContentOverflow before or during layout; anything else that keeps Chrome
// from producing a PDF fails with RenderFailure after the configured number
// of attempts.
func (e *ChromedpExporter) Export(ctx context.Context, doc *render.Document) ([]byte, error) {
	if doc == nil || doc.HTML == "" {
		return nil, domain.NewExportError(domain.RenderFailure, errors.New("empty document"))
	}
	if e.opts.MaxFieldRunes > 0 && doc.LongestField > e.opts.MaxFieldRunes {
		return nil, domain.NewExportError(domain.ContentOverflow,
			fmt.Errorf("field of %d characters exceeds limit of %d", doc.LongestField, e.opts.MaxFieldRunes))
	}

	id := uuid.NewString()
	var lastErr error
	for i := 0; i < e.opts.Attempts; i++ {
		pdf, err := e.print(ctx, doc.HTML)
		if err == nil {
			if !IsPDF(pdf) {
				err = fmt.Errorf("invalid PDF output (len=%d)", len(pdf))
			} else {
				e.logger.Debug("pdf exported", "export_id", id, "attempt", i+1, "bytes", len(pdf))
				return NormalizeDates(pdf), nil
			}
		}
		if ee, ok := domain.AsExport(err); ok && ee.Kind == domain.ContentOverflow {
			return nil, ee
		}
		if ctx.Err() != nil {
			return nil, domain.NewExportError(domain.RenderFailure, ctx.Err())
		}
		lastErr = err
		e.logger.Warn("pdf export attempt failed", "export_id", id, "attempt", i+1, "error", err)
	}
	return nil, domain.NewExportError(domain.RenderFailure, lastErr)
}

func (e *ChromedpExporter) print(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if e.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.opts.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, e.opts.Timeout)
	defer cancelRun()

	l := e.opts.Layout
	var height float64
	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(l.PrintableWidth()*cssPixelsPerInch), int64(l.PrintableHeight()*cssPixelsPerInch)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if limit := e.pageLimitPixels(); limit > 0 && height > limit {
				return domain.NewExportError(domain.ContentOverflow,
					fmt.Errorf("content height %.0fpx exceeds %d pages", height, e.opts.MaxPages))
			}
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(l.Width).
				WithPaperHeight(l.Height).
				WithMarginTop(l.MarginTop).
				WithMarginRight(l.MarginRight).
				WithMarginBottom(l.MarginBottom).
				WithMarginLeft(l.MarginLeft).
				WithPreferCSSPageSize(false).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

func (e *ChromedpExporter) pageLimitPixels() float64 {
	if e.opts.MaxPages <= 0 {
		return 0
	}
	return float64(e.opts.MaxPages) * e.opts.Layout.PrintableHeight() * cssPixelsPerInch
}

// IsPDF checks the PDF file signature.
func IsPDF(b []byte) bool {
	return len(b) > 4 && string(b[:4]) == "%PDF"
}

var pdfDate = regexp.MustCompile(`(/(?:CreationDate|ModDate)\s*\(D:)\d{14}`)

// fixedStamp replaces the 14-digit YYYYMMDDHHmmSS part of PDF dates. It has
// the same length so xref offsets stay valid.
const fixedStamp = "20000101000000"

// NormalizeDates rewrites creation and modification stamps to a fixed instant
// so identical markup prints to identical bytes.
func NormalizeDates(pdf []byte) []byte {
	return pdfDate.ReplaceAll(pdf, []byte("${1}"+fixedStamp))
}
