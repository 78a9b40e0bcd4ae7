package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrUnknownItem = errors.New("unknown catalog item")

// rawProduct mirrors one entry of the catalog JSON. Every field is kept raw
// because the source mixes numbers and strings for the same column.
type rawProduct struct {
	Code      json.RawMessage `json:"Product Code"`
	Name      json.RawMessage `json:"Product Name"`
	Rate      json.RawMessage `json:"Rate / Qty"`
	Discount  json.RawMessage `json:"Discount"`
	FinalRate json.RawMessage `json:"Final Rate"`
	Image     json.RawMessage `json:"image"`
}

// LoadCatalog reads the catalog from a file path, an http(s) URL, or a SQL
// store given as mysql://DSN or sqlite://PATH.
func LoadCatalog(ctx context.Context, source string) (*Catalog, error) {
	switch {
	case strings.HasPrefix(source, "mysql://"), strings.HasPrefix(source, "sqlite://"):
		store, err := OpenStore(source)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadCatalog(ctx)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return fetchCatalog(ctx, source)
	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		return DecodeCatalog(f)
	}
}

func fetchCatalog(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %s", resp.Status)
	}
	return DecodeCatalog(resp.Body)
}

// DecodeCatalog parses the {group: [product, ...]} document, keeping the
// order of groups as they appear in the input.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	c := &Catalog{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		name, _ := tok.(string)

		var raws []rawProduct
		if err := dec.Decode(&raws); err != nil {
			return nil, fmt.Errorf("decode catalog group %q: %w", name, err)
		}

		products := make([]Product, 0, len(raws))
		for i, raw := range raws {
			products = append(products, raw.product(ItemKey{Group: name, Index: i}))
		}
		c.putGroup(Group{Name: name, Products: products})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return c, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("decode catalog: expected %q, got %v", want, tok)
	}
	return nil
}

// putGroup appends g, or replaces the products of an existing group with the
// same name while keeping its position.
func (c *Catalog) putGroup(g Group) {
	for i := range c.Groups {
		if c.Groups[i].Name == g.Name {
			c.Groups[i].Products = g.Products
			return
		}
	}
	c.Groups = append(c.Groups, g)
}

func (raw rawProduct) product(key ItemKey) Product {
	return Product{
		Code:      rawText(raw.Code),
		Name:      rawText(raw.Name),
		ListRate:  MoneyFromDecimal(rawAmount(key, "Rate / Qty", raw.Rate)),
		Discount:  rawAmount(key, "Discount", raw.Discount),
		FinalRate: MoneyFromDecimal(rawAmount(key, "Final Rate", raw.FinalRate)),
		Image:     rawText(raw.Image),
	}
}

// rawText accepts a JSON string or number; anything else reads as "".
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawAmount(key ItemKey, field string, raw json.RawMessage) decimal.Decimal {
	text := rawText(raw)
	d, ok := parseDecimal(text)
	if !ok && text != "" {
		logger.Debug("unparsable price field, using 0",
			zap.String("group", key.Group),
			zap.Int("index", key.Index),
			zap.String("field", field),
			zap.String("value", text))
	}
	if !d.Equal(d.Round(2)) {
		logger.Debug("price field has sub-paisa digits, rounding to 2 decimals",
			zap.String("group", key.Group),
			zap.Int("index", key.Index),
			zap.String("field", field),
			zap.String("value", text))
	}
	return d
}

func (c *Catalog) Group(name string) (*Group, bool) {
	for i := range c.Groups {
		if c.Groups[i].Name == name {
			return &c.Groups[i], true
		}
	}
	return nil, false
}

func (c *Catalog) Product(key ItemKey) (Product, bool) {
	g, ok := c.Group(key.Group)
	if !ok || key.Index < 0 || key.Index >= len(g.Products) {
		return Product{}, false
	}
	return g.Products[key.Index], true
}

// Len returns the number of products across all groups.
func (c *Catalog) Len() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Products)
	}
	return n
}
