package templatefmt

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Keys lifted out of the flattened element into Block fields. Everything
// else on an element belongs to the open config map and must round-trip
// untouched.
var reservedKeys = map[string]bool{
	"id":              true,
	"type":            true,
	"is_visible":      true,
	"isVisible":       true,
	"show_on_bill":    true,
	"show_on_receipt": true,
}

// Serialize flattens a template into the exact array shape the backend
// persists: element 0 is the global_settings element, followed by one
// element per block with its config keys spread at the top level (not
// nested — older backend consumers read them flat).
func Serialize(t Template) []map[string]any {
	out := make([]map[string]any, 0, len(t.Blocks)+1)

	out = append(out, map[string]any{
		"type":            string(TypeGlobalSettings),
		"id":              MetadataID,
		"font_family":     string(t.Global.FontFamily),
		"font_size":       t.Global.FontSize,
		"line_spacing":    t.Global.LineSpacing,
		"paper_width":     string(t.Global.PaperWidth),
		"column_capacity": t.Global.ColumnCapacity,
	})

	for _, b := range t.Blocks {
		el := map[string]any{
			"id":   b.ID,
			"type": string(b.Type),
			// is_visible is the persisted key; isVisible is mirrored for
			// consumers that predate the snake_case rename.
			"is_visible":      b.IsVisible,
			"isVisible":       b.IsVisible,
			"show_on_bill":    b.ShowOnBill,
			"show_on_receipt": b.ShowOnReceipt,
		}
		for k, v := range b.Config {
			if !reservedKeys[k] {
				el[k] = v
			}
		}
		out = append(out, el)
	}

	return out
}

// Marshal serializes a template to its wire JSON.
func Marshal(t Template) ([]byte, error) {
	return json.Marshal(Serialize(t))
}

// Parse reads a persisted template array back into model form. It never
// fails: absent, empty, or malformed input degrades to the built-in default
// template for the family, so a broken row can not lock an operator out of
// the designer.
func Parse(raw []byte, family Family) Template {
	if len(raw) == 0 {
		return DefaultTemplate(family)
	}

	var elements []map[string]any
	if err := json.Unmarshal(raw, &elements); err != nil || len(elements) == 0 {
		return DefaultTemplate(family)
	}

	return FromElements(elements, family)
}

// FromElements builds a template from already-decoded elements. The
// global_settings element is located anywhere in the array, not assumed at
// index 0, for resilience against backend reordering.
func FromElements(elements []map[string]any, family Family) Template {
	t := Template{
		Family: family,
		Global: DefaultGlobal(family),
		Blocks: make([]Block, 0, len(elements)),
	}

	for _, el := range elements {
		if typ, _ := el["type"].(string); BlockType(typ) == TypeGlobalSettings {
			applyGlobal(&t.Global, el)
			continue
		}
		t.Blocks = append(t.Blocks, blockFromElement(el))
	}

	return t
}

func applyGlobal(g *GlobalConfig, el map[string]any) {
	cfg := Config(el)
	// Both snake_case and camelCase spellings occur in templates saved by
	// older clients.
	if v := firstStr(cfg, "font_family", "fontFamily"); v != "" {
		if ff := FontFamily(v); ff == FontA || ff == FontB {
			g.FontFamily = ff
		}
	}
	if v := firstInt(cfg, "font_size", "fontSize"); v > 0 {
		g.FontSize = v
	}
	if v := firstFloat(cfg, "line_spacing", "lineSpacing"); v > 0 {
		g.LineSpacing = v
	}
	if v := firstStr(cfg, "paper_width", "paperWidth"); v != "" {
		if pw := PaperWidth(v); pw == Paper58 || pw == Paper80 {
			g.PaperWidth = pw
		}
	}
	if v := firstInt(cfg, "column_capacity", "columnCapacity"); v > 0 {
		g.ColumnCapacity = v
	}
}

func blockFromElement(el map[string]any) Block {
	b := Block{
		Config: Config{},
		// Templates saved before the per-output flags existed render
		// everywhere, preserving their original behavior.
		IsVisible:     true,
		ShowOnBill:    true,
		ShowOnReceipt: true,
	}

	// The metadata id is reserved for the global_settings element; a
	// content element carrying it (a backend-assigned collision) gets a
	// fresh id so it stays addressable like any other block.
	if id, _ := el["id"].(string); id != "" && id != MetadataID {
		b.ID = id
	} else {
		b.ID = uuid.New().String()
	}
	if typ, _ := el["type"].(string); typ != "" {
		b.Type = BlockType(typ)
	}

	// Either visibility spelling is accepted; the first non-null wins.
	if v, ok := el["is_visible"]; ok && v != nil {
		if vis, ok := asBool(v); ok {
			b.IsVisible = vis
		}
	} else if v, ok := el["isVisible"]; ok && v != nil {
		if vis, ok := asBool(v); ok {
			b.IsVisible = vis
		}
	}
	if v, ok := el["show_on_bill"]; ok && v != nil {
		if show, ok := asBool(v); ok {
			b.ShowOnBill = show
		}
	}
	if v, ok := el["show_on_receipt"]; ok && v != nil {
		if show, ok := asBool(v); ok {
			b.ShowOnReceipt = show
		}
	}

	for k, v := range el {
		if !reservedKeys[k] {
			b.Config[k] = v
		}
	}

	return b
}

func firstStr(c Config, keys ...string) string {
	for _, k := range keys {
		if v := c.Str(k, ""); v != "" {
			return v
		}
	}
	return ""
}

func firstInt(c Config, keys ...string) int {
	for _, k := range keys {
		if v := c.Int(k, 0); v != 0 {
			return v
		}
	}
	return 0
}

func firstFloat(c Config, keys ...string) float64 {
	for _, k := range keys {
		if v := c.Float(k, 0); v != 0 {
			return v
		}
	}
	return 0
}
