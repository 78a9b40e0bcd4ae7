package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

type ExportStatus int

const (
	ExportAborted ExportStatus = iota
	ExportCompleted
)

func (s ExportStatus) String() string {
	switch s {
	case ExportAborted:
		return "aborted"
	case ExportCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type ExportResult struct {
	Status ExportStatus
	Path   string
	Pages  int
}

// ReceiptLayout holds the page geometry in millimetres.
type ReceiptLayout struct {
	MarginLeft float64
	LineHeight float64
	PageTop    float64
	PageBottom float64
	TitleY     float64
	TotalY     float64
	HeaderY    float64

	CodeWidth float64
	NameWidth float64
	QtyWidth  float64
}

func DefaultReceiptLayout() ReceiptLayout {
	return ReceiptLayout{
		MarginLeft: 10,
		LineHeight: 8,
		PageTop:    10,
		PageBottom: 280,
		TitleY:     10,
		TotalY:     25,
		HeaderY:    40,
		CodeWidth:  40,
		NameWidth:  70,
		QtyWidth:   30,
	}
}

// columns returns the x offset of the code, name, qty and price columns.
func (l ReceiptLayout) columns() [4]float64 {
	x := l.MarginLeft
	return [4]float64{
		x,
		x + l.CodeWidth,
		x + l.CodeWidth + l.NameWidth,
		x + l.CodeWidth + l.NameWidth + l.QtyWidth,
	}
}

type ReceiptOptions struct {
	OutputDir   string
	DefaultName string
	TitleSuffix string
	Currency    string
	FontFamily  string
	// FontFile is an optional UTF-8 TrueType font, needed for symbols
	// outside cp1252 such as ₹.
	FontFile string
	Layout   ReceiptLayout
}

func DefaultReceiptOptions() ReceiptOptions {
	return ReceiptOptions{
		OutputDir:   ".",
		DefaultName: "Final_List",
		TitleSuffix: "_Check List",
		Currency:    "Rs.",
		FontFamily:  "Times",
		Layout:      DefaultReceiptLayout(),
	}
}

// canvas is the subset of *fpdf.Fpdf the receipt is drawn with.
type canvas interface {
	AddPage()
	SetFont(familyStr, styleStr string, size float64)
	Text(x, y float64, txtStr string)
}

type rowPlacement struct {
	Page int
	Y    float64
}

// paginate places n rows of one line each, starting at startY on page 1.
// A row that would extend past PageBottom moves to the top of a new page.
func paginate(n int, startY float64, l ReceiptLayout) []rowPlacement {
	rows := make([]rowPlacement, 0, n)
	page, y := 1, startY
	for i := 0; i < n; i++ {
		if y+l.LineHeight > l.PageBottom {
			page++
			y = l.PageTop
		}
		rows = append(rows, rowPlacement{Page: page, Y: y})
		y += l.LineHeight
	}
	return rows
}

// drawReceipt draws the order onto c and returns the number of pages used.
func drawReceipt(c canvas, tr func(string) string, order *Order, title string, opts ReceiptOptions) int {
	l := opts.Layout
	col := l.columns()
	family := opts.FontFamily

	c.AddPage()

	c.SetFont(family, "B", 18)
	c.Text(l.MarginLeft, l.TitleY, tr(title+opts.TitleSuffix))

	c.SetFont(family, "", 14)
	c.Text(l.MarginLeft, l.TotalY, tr("Total: "+order.Total.Format(opts.Currency)))

	c.SetFont(family, "B", 12)
	c.Text(col[0], l.HeaderY, "Product Code")
	c.Text(col[1], l.HeaderY, "Product Name")
	c.Text(col[2], l.HeaderY, "Qty")
	c.Text(col[3], l.HeaderY, "Total Price")

	c.SetFont(family, "", 12)
	page := 1
	for i, pl := range paginate(len(order.Items), l.HeaderY+l.LineHeight, l) {
		if pl.Page != page {
			c.AddPage()
			page = pl.Page
		}
		item := order.Items[i]
		lineTotal := item.Product.FinalRate.Times(item.Quantity)
		c.Text(col[0], pl.Y, tr(item.Product.Code))
		c.Text(col[1], pl.Y, tr(item.Product.Name))
		c.Text(col[2], pl.Y, strconv.Itoa(item.Quantity))
		c.Text(col[3], pl.Y, tr(lineTotal.Format(opts.Currency)))
	}
	return page
}

// ExportReceipt renders order as a PDF named after title. An empty title
// aborts the export without touching the filesystem.
func ExportReceipt(order *Order, title string, opts ReceiptOptions) (ExportResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		logger.Debug("receipt export cancelled, no title given")
		return ExportResult{Status: ExportAborted}, nil
	}
	if order == nil || len(order.Items) == 0 {
		return ExportResult{}, ErrEmptySelection
	}

	name := SanitizeFilename(title)
	if name == "" {
		name = opts.DefaultName
	}
	if name == "" {
		name = DefaultReceiptOptions().DefaultName
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	path := filepath.Join(opts.OutputDir, name+".pdf")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title+opts.TitleSuffix, true)
	pdf.SetSubject("order "+order.ID, false)
	pdf.SetCreator("grocery-checkout", false)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontFile != "" {
		font, err := os.ReadFile(opts.FontFile)
		if err != nil {
			return ExportResult{}, fmt.Errorf("read receipt font: %w", err)
		}
		pdf.AddUTF8FontFromBytes("receipt", "", font)
		pdf.AddUTF8FontFromBytes("receipt", "B", font)
		opts.FontFamily = "receipt"
		tr = func(s string) string { return s }
	}

	pages := drawReceipt(pdf, tr, order, title, opts)
	if pdf.Err() {
		return ExportResult{}, fmt.Errorf("render receipt: %w", pdf.Error())
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := writeFileAtomic(path, pdf.Output); err != nil {
		return ExportResult{}, fmt.Errorf("write receipt: %w", err)
	}

	logger.Info("receipt exported",
		zap.String("order_id", order.ID),
		zap.String("path", path),
		zap.Int("items", len(order.Items)),
		zap.Int("pages", pages),
		zap.String("total", order.Total.String()))

	return ExportResult{Status: ExportCompleted, Path: path, Pages: pages}, nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so path only ever holds a complete document.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
