// Package templatefmt defines the print-template document model: the block
// variants, the document-wide global configuration, and the flat JSON wire
// format persisted by the POS backend.
package templatefmt

import (
	"fmt"
	"strconv"
)

// Family selects which document family a template belongs to. Bills and
// receipts share one template; kitchen tickets are a separate family with
// their own defaults.
type Family string

const (
	FamilyReceipt Family = "receipt"
	FamilyKOT     Family = "kot"
)

// FontFamily is the thermal printer font selector. Font B is a condensed
// variant, narrower than Font A at the same point size.
type FontFamily string

const (
	FontA FontFamily = "A"
	FontB FontFamily = "B"
)

// PaperWidth is the physical roll width the template targets.
type PaperWidth string

const (
	Paper58 PaperWidth = "58mm"
	Paper80 PaperWidth = "80mm"
)

// BlockType is the closed set of block variants.
type BlockType string

const (
	TypeHeader     BlockType = "header"
	TypeBillInfo   BlockType = "bill_info"
	TypeCustomer   BlockType = "customer"
	TypeItems      BlockType = "items"
	TypeTotals     BlockType = "totals"
	TypePayments   BlockType = "payments"
	TypePartialPay BlockType = "partial_pay"
	TypeFooter     BlockType = "footer"
	TypeText       BlockType = "text"
	TypeDivider    BlockType = "divider"
	TypeQR         BlockType = "qr"

	// TypeGlobalSettings is a reserved pseudo-type. It tags the hoisted
	// GlobalConfig element in the persisted array and never appears in the
	// content block list.
	TypeGlobalSettings BlockType = "global_settings"
)

// MetadataID is the fixed id of the serialized global_settings element.
const MetadataID = "metadata"

var contentTypes = []BlockType{
	TypeHeader, TypeBillInfo, TypeCustomer, TypeItems, TypeTotals,
	TypePayments, TypePartialPay, TypeFooter, TypeText, TypeDivider, TypeQR,
}

// ContentTypes returns the block variants that may appear in the content
// list, in a stable display order.
func ContentTypes() []BlockType {
	out := make([]BlockType, len(contentTypes))
	copy(out, contentTypes)
	return out
}

// IsContentType reports whether t is a real content variant.
func IsContentType(t BlockType) bool {
	for _, ct := range contentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// GlobalConfig holds the document-wide defaults. Exactly one exists per
// template and it serializes as the first element of the flattened array.
type GlobalConfig struct {
	FontFamily     FontFamily `json:"font_family"`
	FontSize       int        `json:"font_size"`
	LineSpacing    float64    `json:"line_spacing"`
	PaperWidth     PaperWidth `json:"paper_width"`
	ColumnCapacity int        `json:"column_capacity"`
}

// Columns returns the simulated character capacity of one printed line,
// falling back to the conventional width for the paper size when the hint
// is unset.
func (g GlobalConfig) Columns() int {
	if g.ColumnCapacity > 0 {
		return g.ColumnCapacity
	}
	if g.PaperWidth == Paper58 {
		return 32
	}
	return 42
}

// Config is the open, type-specific key set of a block. Keys the editor does
// not recognize must survive a round trip untouched, so it is a generic map
// with typed accessors rather than a fixed struct.
type Config map[string]any

// Has reports whether key is present, regardless of its value.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Str returns the string value for key, or fallback when absent or not a
// string.
func (c Config) Str(key, fallback string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return fallback
}

// Bool returns the truthiness of key, tolerating the bool/number/string
// shapes JSON decoding produces. Absent keys are false.
func (c Config) Bool(key string) bool {
	return c.BoolOr(key, false)
}

// BoolOr is Bool with an explicit default for absent or unreadable values.
func (c Config) BoolOr(key string, fallback bool) bool {
	v, ok := c[key]
	if !ok {
		return fallback
	}
	if b, ok := asBool(v); ok {
		return b
	}
	return fallback
}

// Int returns the integer value for key, or fallback. JSON numbers arrive
// as float64; numeric strings are accepted for legacy templates.
func (c Config) Int(key string, fallback int) int {
	v, ok := c[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return fallback
}

// Float returns the float value for key, or fallback.
func (c Config) Float(key string, fallback float64) float64 {
	v, ok := c[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Clone returns a shallow copy of the config map.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case int:
		return b != 0, true
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed, true
		}
	}
	return false, false
}

// Block is one printable unit of a template. List order is the print order;
// there is no separate priority field.
type Block struct {
	ID            string    `json:"id"`
	Type          BlockType `json:"type"`
	Config        Config    `json:"config"`
	IsVisible     bool      `json:"is_visible"`
	ShowOnBill    bool      `json:"show_on_bill"`
	ShowOnReceipt bool      `json:"show_on_receipt"`
}

// Clone returns a copy of the block with its own config map.
func (b Block) Clone() Block {
	b.Config = b.Config.Clone()
	return b
}

// Template is the in-memory form of one print template.
type Template struct {
	Family Family       `json:"family"`
	Global GlobalConfig `json:"global"`
	Blocks []Block      `json:"blocks"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	blocks := make([]Block, len(t.Blocks))
	for i, b := range t.Blocks {
		blocks[i] = b.Clone()
	}
	t.Blocks = blocks
	return t
}

// FindBlock returns the index of the block with the given id, or -1.
func (t Template) FindBlock(id string) int {
	for i, b := range t.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// ParseFamily converts a wire string into a Family.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyReceipt:
		return FamilyReceipt, nil
	case FamilyKOT:
		return FamilyKOT, nil
	}
	return "", fmt.Errorf("unknown template family: %q", s)
}

// TemplateKey returns the settings key the backend persists this family
// under.
func (f Family) TemplateKey() string {
	if f == FamilyKOT {
		return "kot_template"
	}
	return "receipt_template"
}
