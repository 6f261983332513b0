// Package invoice reproduces an order as a PDF document.
//
// One generation pass feeds two sinks at once: the durable invoice file and
// the live HTTP response. The file sink failing must never abort the live
// response — bytes already sent cannot be recalled — so file errors are
// reported through the logger instead.
package invoice

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/valmere/storefront/internal/domain/order"
)

// Renderer renders invoices and persists them under dir.
type Renderer struct {
	dir string
}

// NewRenderer creates a Renderer storing invoice files under dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// FileName returns the invoice file name for an order.
func FileName(orderID string) string {
	return "invoice-" + orderID + ".pdf"
}

// Render generates the invoice for o, writing the same byte sequence to the
// invoice file and to live. The returned error covers generation and the
// live sink only.
func (r *Renderer) Render(ctx context.Context, o *order.Order, live io.Writer) error {
	lg := zctx.From(ctx)

	var durable io.WriteCloser
	path := filepath.Join(r.dir, FileName(o.ID))
	f, err := os.Create(path)
	if err != nil {
		lg.Error("Open invoice file", zap.String("path", path), zap.Error(err))
	} else {
		durable = f
	}

	w := &fanoutWriter{live: live, durable: durable}
	renderErr := buildDocument(o).Output(w)

	if durable != nil {
		if err := f.Close(); err != nil && w.durableErr == nil {
			w.durableErr = err
		}
	}
	if w.durableErr != nil {
		lg.Error("Write invoice file", zap.String("path", path), zap.Error(w.durableErr))
	}

	if renderErr != nil {
		return errors.Wrap(renderErr, "render invoice")
	}
	return nil
}

// fanoutWriter duplicates writes to a durable sink while treating only the
// live sink as fatal. After the first durable failure the durable sink is
// skipped for the remainder of the stream.
type fanoutWriter struct {
	live       io.Writer
	durable    io.Writer
	durableErr error
}

func (w *fanoutWriter) Write(p []byte) (int, error) {
	if w.durable != nil && w.durableErr == nil {
		if _, err := w.durable.Write(p); err != nil {
			w.durableErr = err
		}
	}
	return w.live.Write(p)
}

// buildDocument lays out the invoice: a heading, one line per order line,
// and a grand total recomputed from the lines.
func buildDocument(o *order.Order) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(FileName(o.ID), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "BU", 26)
	doc.Cell(0, 12, "Invoice")
	doc.Ln(16)

	doc.SetFont("Helvetica", "", 14)
	doc.Cell(0, 8, separator)
	doc.Ln(8)
	for _, l := range o.Lines {
		doc.Cell(0, 8, lineText(l))
		doc.Ln(8)
	}
	doc.Cell(0, 8, separator)
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 20)
	doc.Cell(0, 10, totalText(o))
	return doc
}

const separator = "-------------------"

func lineText(l order.Line) string {
	return fmt.Sprintf("%s - %d x $%s", l.Title, l.Quantity, l.UnitPrice.String())
}

func totalText(o *order.Order) string {
	return "Total price: $" + o.Total().String()
}
