package templatefmt

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the document-wide configuration against its legal ranges.
func (g GlobalConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.FontFamily, validation.Required, validation.In(FontA, FontB)),
		validation.Field(&g.FontSize, validation.Min(8), validation.Max(48)),
		validation.Field(&g.LineSpacing, validation.Min(0.5), validation.Max(3.0)),
		validation.Field(&g.PaperWidth, validation.Required, validation.In(Paper58, Paper80)),
		validation.Field(&g.ColumnCapacity, validation.Min(16), validation.Max(64)),
	)
}

// Validate checks that a block is a well-formed content block.
func (b Block) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required),
		validation.Field(&b.Type, validation.Required, validation.By(contentTypeRule)),
	)
}

func contentTypeRule(value any) error {
	t, _ := value.(BlockType)
	if t == TypeGlobalSettings {
		return ErrReservedType
	}
	if !IsContentType(t) {
		return fmt.Errorf("unknown block type: %q", t)
	}
	return nil
}

// Validate checks the whole template: global config, every block, and id
// uniqueness. A duplicate id is a programmer error upstream, but it is
// reported here rather than silently corrupting selection and
// reconciliation.
func (t Template) Validate() error {
	if err := t.Global.Validate(); err != nil {
		return fmt.Errorf("global config: %w", err)
	}

	seen := make(map[string]bool, len(t.Blocks))
	for i, b := range t.Blocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
		if seen[b.ID] {
			return fmt.Errorf("block[%d]: duplicate id %q", i, b.ID)
		}
		seen[b.ID] = true
	}

	return nil
}
