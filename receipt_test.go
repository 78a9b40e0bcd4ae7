package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textOp struct {
	Page  int
	X, Y  float64
	Text  string
	Style string
	Size  float64
}

// recordingCanvas captures what drawReceipt writes.
type recordingCanvas struct {
	page  int
	style string
	size  float64
	texts []textOp
}

func (c *recordingCanvas) AddPage() { c.page++ }

func (c *recordingCanvas) SetFont(familyStr, styleStr string, size float64) {
	c.style, c.size = styleStr, size
}

func (c *recordingCanvas) Text(x, y float64, txtStr string) {
	c.texts = append(c.texts, textOp{Page: c.page, X: x, Y: y, Text: txtStr, Style: c.style, Size: c.size})
}

func identity(s string) string { return s }

func rocketOrder(n int) *Order {
	o := &Order{ID: "test-order"}
	for i := 0; i < n; i++ {
		item := LineItem{
			Key:      ItemKey{Group: "Rockets", Index: i},
			Product:  Product{Code: fmt.Sprintf("R%d", i+1), Name: fmt.Sprintf("Rocket %d", i+1), FinalRate: 1250},
			Quantity: i%3 + 1,
		}
		o.Items = append(o.Items, item)
		o.Total += item.LineTotal()
	}
	return o
}

func TestPaginate_BreaksBeforeRowCrossesBottom(t *testing.T) {
	rows := paginate(40, 25, DefaultReceiptLayout())
	require.Len(t, rows, 40)

	for i := 0; i < 31; i++ {
		assert.Equal(t, 1, rows[i].Page, "row %d", i+1)
		assert.Equal(t, 25+8*float64(i), rows[i].Y, "row %d", i+1)
	}
	assert.Equal(t, rowPlacement{Page: 2, Y: 10}, rows[31])
	for i := 31; i < 40; i++ {
		assert.Equal(t, 2, rows[i].Page, "row %d", i+1)
	}
	assert.Equal(t, float64(74), rows[39].Y)
}

func TestPaginate_Empty(t *testing.T) {
	assert.Empty(t, paginate(0, 48, DefaultReceiptLayout()))
}

func TestDrawReceipt_Header(t *testing.T) {
	c := &recordingCanvas{}
	order := &Order{
		Items: []LineItem{{Product: Product{Code: "C1", Name: "Gold Spark", FinalRate: 5000}, Quantity: 3}},
		Total: 15000,
	}

	pages := drawReceipt(c, identity, order, "Diwali", DefaultReceiptOptions())
	assert.Equal(t, 1, pages)

	require.Len(t, c.texts, 10)
	assert.Equal(t, textOp{Page: 1, X: 10, Y: 10, Text: "Diwali_Check List", Style: "B", Size: 18}, c.texts[0])
	assert.Equal(t, textOp{Page: 1, X: 10, Y: 25, Text: "Total: Rs. 150.00", Style: "", Size: 14}, c.texts[1])

	header := c.texts[2:6]
	wantX := []float64{10, 50, 120, 150}
	wantText := []string{"Product Code", "Product Name", "Qty", "Total Price"}
	for i, op := range header {
		assert.Equal(t, wantX[i], op.X)
		assert.Equal(t, float64(40), op.Y)
		assert.Equal(t, wantText[i], op.Text)
		assert.Equal(t, "B", op.Style)
	}

	row := c.texts[6:]
	assert.Equal(t, "C1", row[0].Text)
	assert.Equal(t, "Gold Spark", row[1].Text)
	assert.Equal(t, "3", row[2].Text)
	assert.Equal(t, "Rs. 150.00", row[3].Text)
	for i, op := range row {
		assert.Equal(t, wantX[i], op.X)
		assert.Equal(t, float64(48), op.Y)
		assert.Equal(t, "", op.Style)
	}
}

func TestDrawReceipt_RowsNeverSplitAcrossPages(t *testing.T) {
	c := &recordingCanvas{}
	order := rocketOrder(70)

	pages := drawReceipt(c, identity, order, "Big", DefaultReceiptOptions())
	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, c.page)

	rows := c.texts[6:]
	require.Len(t, rows, 4*len(order.Items))
	for i := 0; i < len(order.Items); i++ {
		cells := rows[4*i : 4*i+4]
		for _, cell := range cells[1:] {
			assert.Equal(t, cells[0].Page, cell.Page, "row %d split across pages", i+1)
			assert.Equal(t, cells[0].Y, cell.Y, "row %d cells at different heights", i+1)
		}
		assert.LessOrEqual(t, cells[0].Y+8, float64(280), "row %d runs past the bottom", i+1)
	}

	// 29 rows fit under the header, 33 on a continuation page.
	assert.Equal(t, 1, rows[4*28].Page)
	assert.Equal(t, 2, rows[4*29].Page)
	assert.Equal(t, float64(10), rows[4*29].Y)
	assert.Equal(t, 3, rows[4*62].Page)
}

func TestDrawReceipt_RowTotalsMatchOrderTotal(t *testing.T) {
	c := &recordingCanvas{}
	opts := DefaultReceiptOptions()
	opts.Currency = ""
	order := rocketOrder(12)

	drawReceipt(c, identity, order, "Sum", opts)

	var sum Money
	for i, item := range order.Items {
		price := c.texts[6+4*i+3].Text
		d, ok := parseDecimal(price)
		require.True(t, ok, price)
		sum += MoneyFromDecimal(d)
		assert.Equal(t, item.LineTotal().String(), price)
	}
	assert.Equal(t, order.Total, sum)
}

func TestExportReceipt_Completed(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultReceiptOptions()
	opts.OutputDir = dir

	res, err := ExportReceipt(rocketOrder(40), "My Order", opts)
	require.NoError(t, err)

	assert.Equal(t, ExportCompleted, res.Status)
	assert.Equal(t, filepath.Join(dir, "My_Order.pdf"), res.Path)
	assert.Equal(t, 2, res.Pages)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestExportReceipt_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts", "2025")
	opts := DefaultReceiptOptions()
	opts.OutputDir = dir

	res, err := ExportReceipt(rocketOrder(1), "Final_List", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Final_List.pdf"), res.Path)
	assert.FileExists(t, res.Path)
}

func TestExportReceipt_EmptyTitleAborts(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		dir := t.TempDir()
		opts := DefaultReceiptOptions()
		opts.OutputDir = dir

		res, err := ExportReceipt(rocketOrder(3), title, opts)
		require.NoError(t, err)
		assert.Equal(t, ExportAborted, res.Status)
		assert.Empty(t, res.Path)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestExportReceipt_NoItems(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultReceiptOptions()
	opts.OutputDir = dir

	_, err := ExportReceipt(nil, "Empty", opts)
	assert.ErrorIs(t, err, ErrEmptySelection)
	_, err = ExportReceipt(&Order{}, "Empty", opts)
	assert.ErrorIs(t, err, ErrEmptySelection)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportReceipt_UnusableTitleFallsBackToDefaultName(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultReceiptOptions()
	opts.OutputDir = dir

	res, err := ExportReceipt(rocketOrder(2), "///", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Final_List.pdf"), res.Path)
}

func TestExportReceipt_LongMultibyteTitle(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultReceiptOptions()
	opts.OutputDir = dir

	res, err := ExportReceipt(rocketOrder(1), strings.Repeat("தீ", 50), opts)
	require.NoError(t, err)
	assert.Equal(t, ExportCompleted, res.Status)
	assert.FileExists(t, res.Path)
	assert.LessOrEqual(t, len(filepath.Base(res.Path)), maxFilenameBytes+len(".pdf"))
}

func TestExportReceipt_MissingFontFile(t *testing.T) {
	opts := DefaultReceiptOptions()
	opts.OutputDir = t.TempDir()
	opts.FontFile = filepath.Join(opts.OutputDir, "missing.ttf")

	_, err := ExportReceipt(rocketOrder(2), "Fonts", opts)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExportStatus_String(t *testing.T) {
	assert.Equal(t, "aborted", ExportAborted.String())
	assert.Equal(t, "completed", ExportCompleted.String())
}
