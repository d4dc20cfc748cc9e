package templatefmt

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrReservedType is returned when a caller tries to create the reserved
// global_settings pseudo-type as a content block. That path is redirected to
// editing GlobalConfig instead.
var ErrReservedType = errors.New("global_settings is reserved and cannot be a content block")

// DefaultGlobal returns the built-in document defaults for a family.
// Kitchen tickets are read at arm's length in a busy kitchen, so they
// default to a larger face and looser spacing than receipts.
func DefaultGlobal(family Family) GlobalConfig {
	if family == FamilyKOT {
		return GlobalConfig{
			FontFamily:     FontA,
			FontSize:       14,
			LineSpacing:    1.5,
			PaperWidth:     Paper80,
			ColumnCapacity: 42,
		}
	}
	return GlobalConfig{
		FontFamily:     FontA,
		FontSize:       12,
		LineSpacing:    1.2,
		PaperWidth:     Paper80,
		ColumnCapacity: 42,
	}
}

// NewBlock allocates a fresh content block of the given type with a unique
// id, the per-type default config, and every visibility flag enabled. Any
// number of blocks of any type may coexist in a template.
func NewBlock(t BlockType) (Block, error) {
	if t == TypeGlobalSettings {
		return Block{}, ErrReservedType
	}
	if !IsContentType(t) {
		return Block{}, fmt.Errorf("unknown block type: %q", t)
	}

	return Block{
		ID:            uuid.New().String(),
		Type:          t,
		Config:        defaultConfig(t),
		IsVisible:     true,
		ShowOnBill:    true,
		ShowOnReceipt: true,
	}, nil
}

func defaultConfig(t BlockType) Config {
	switch t {
	case TypeHeader:
		return Config{
			"show_address": true,
			"show_phone":   true,
		}
	case TypeCustomer:
		return Config{
			"show_phone": true,
		}
	case TypeItems:
		return Config{
			"show_serial": true,
			"show_rate":   true,
			"show_amount": true,
		}
	case TypeTotals:
		return Config{
			"show_discount": true,
		}
	case TypeFooter:
		return Config{
			"message": "Thank you! Please visit again.",
		}
	case TypeText:
		return Config{
			"content": "",
		}
	case TypeQR:
		return Config{
			"payload": "",
		}
	default:
		return Config{}
	}
}

// DefaultTemplate returns the built-in starter template for a family. The
// designer never opens to a blank canvas: a restaurant that has never
// configured a template gets this list.
func DefaultTemplate(family Family) Template {
	var types []BlockType
	if family == FamilyKOT {
		types = []BlockType{TypeHeader, TypeBillInfo, TypeItems}
	} else {
		types = []BlockType{
			TypeHeader, TypeBillInfo, TypeCustomer, TypeItems, TypeTotals, TypeFooter,
		}
	}

	blocks := make([]Block, 0, len(types))
	for _, t := range types {
		b, _ := NewBlock(t)
		if family == FamilyKOT && t == TypeBillInfo {
			// Kitchen tickets start in the detailed layout.
			b.Config["show_kot_number"] = true
			b.Config["show_station"] = true
			b.Config["show_time"] = true
		}
		blocks = append(blocks, b)
	}

	return Template{
		Family: family,
		Global: DefaultGlobal(family),
		Blocks: blocks,
	}
}
