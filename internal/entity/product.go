package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyProducts     = "products"
	keyID           = "id"
	keyName         = "name"
	keyCategoryName = "category_name"
	keyImageURL     = "image_url"
)

// Product is a single catalog entry. All keys are kept as raw JSON so that
// values the sync job never touches survive a load/save round trip unchanged.
type Product struct {
	fields map[string]json.RawMessage
}

// NewProduct builds a product from plain values, mostly useful in tests.
func NewProduct(id interface{}, name, categoryName string) *Product {
	p := &Product{fields: make(map[string]json.RawMessage)}
	p.set(keyID, id)
	p.set(keyName, name)
	if categoryName != "" {
		p.set(keyCategoryName, categoryName)
	}
	return p
}

func (p *Product) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("product must be a JSON object: %w", err)
	}
	p.fields = fields
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	if p.fields == nil {
		return []byte("{}"), nil
	}
	return MarshalNoEscape(p.fields)
}

// ID returns the product identifier as display text. String ids are unquoted,
// any other JSON value is returned verbatim.
func (p *Product) ID() string {
	raw, ok := p.fields[keyID]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (p *Product) Name() string {
	s, _ := p.stringField(keyName)
	return s
}

// CategoryName returns the category, or "" when absent, null or not a string.
func (p *Product) CategoryName() string {
	s, _ := p.stringField(keyCategoryName)
	return s
}

// ImageURL returns the current image reference and whether one is present.
func (p *Product) ImageURL() (string, bool) {
	return p.stringField(keyImageURL)
}

func (p *Product) SetImageURL(url string) {
	p.set(keyImageURL, url)
}

func (p *Product) stringField(key string) (string, bool) {
	raw, ok := p.fields[key]
	if !ok {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}

func (p *Product) set(key string, value interface{}) {
	if p.fields == nil {
		p.fields = make(map[string]json.RawMessage)
	}
	raw, err := MarshalNoEscape(value)
	if err != nil {
		// Only strings and plain ids are ever set.
		panic(fmt.Sprintf("entity: cannot encode %s: %v", key, err))
	}
	p.fields[key] = raw
}

// Catalog is the products document. Keys other than "products" are carried
// through untouched.
type Catalog struct {
	fields   map[string]json.RawMessage
	Products []*Product
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("catalog must be a JSON object: %w", err)
	}

	var products []*Product
	if raw, ok := fields[keyProducts]; ok {
		if err := json.Unmarshal(raw, &products); err != nil {
			return fmt.Errorf("invalid %q array: %w", keyProducts, err)
		}
	}

	c.fields = fields
	c.Products = products
	return nil
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.fields)+1)
	for k, v := range c.fields {
		out[k] = v
	}

	products := c.Products
	if products == nil {
		products = []*Product{}
	}
	raw, err := MarshalNoEscape(products)
	if err != nil {
		return nil, err
	}
	out[keyProducts] = raw

	return MarshalNoEscape(out)
}

// MarshalNoEscape encodes v like json.Marshal but leaves &, < and > as-is,
// so product names such as "Kitchen & Dining" stay readable on disk.
func MarshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
