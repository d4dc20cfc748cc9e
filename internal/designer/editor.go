// Package designer implements the template editor shell: block CRUD,
// selection state, and the publish action. The template is owned
// exclusively by one editor instance and lives entirely in memory until an
// explicit publish; there is no autosave.
package designer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tablewise/printstudio/pkg/templatefmt"
)

// ErrPublishInFlight is returned when a publish is requested while a
// previous one is still outstanding.
var ErrPublishInFlight = errors.New("a publish is already in flight")

// Store persists a serialized template. The production implementation is
// the backend REST client; tests substitute fakes.
type Store interface {
	SaveTemplate(ctx context.Context, family templatefmt.Family, elements []map[string]any) error
}

// SelectionKind tags the selection variant. The inspector shows either
// nothing, one block, or the global settings panel — a block id string is
// never overloaded with a sentinel value for the global case.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectBlock
	SelectGlobal
)

// Selection is the editor's tagged selection state.
type Selection struct {
	kind    SelectionKind
	blockID string
}

// NoSelection returns the idle selection.
func NoSelection() Selection { return Selection{kind: SelectNone} }

// BlockSelection returns a selection pointing at one content block.
func BlockSelection(id string) Selection { return Selection{kind: SelectBlock, blockID: id} }

// GlobalSelection returns the selection for the global settings panel.
func GlobalSelection() Selection { return Selection{kind: SelectGlobal} }

// Kind returns the selection variant.
func (s Selection) Kind() SelectionKind { return s.kind }

// BlockID returns the selected block id; ok is false unless a block is
// selected.
func (s Selection) BlockID() (string, bool) {
	return s.blockID, s.kind == SelectBlock
}

// BlockPatch is a partial update applied to a block. Nil pointer fields are
// left untouched; Config entries are merged into the existing map so keys
// set by a previous session or by the backend survive unrelated edits.
type BlockPatch struct {
	IsVisible     *bool
	ShowOnBill    *bool
	ShowOnReceipt *bool
	Config        templatefmt.Config
}

// Editor is the designer shell. All mutations are synchronous array
// operations on the single in-memory list; there is one logical writer.
type Editor struct {
	mu     sync.Mutex
	tpl    templatefmt.Template
	sel    Selection
	store  Store
	dirty  bool
	saving bool
	gen    uint64
}

// markDirty records an edit. The generation counter lets Publish tell
// whether the template changed while a write was in flight. Callers hold
// e.mu.
func (e *Editor) markDirty() {
	e.dirty = true
	e.gen++
}

// New creates an editor over a loaded template.
func New(tpl templatefmt.Template, store Store) *Editor {
	return &Editor{tpl: tpl, sel: NoSelection(), store: store}
}

// Template returns a deep copy of the current template.
func (e *Editor) Template() templatefmt.Template {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tpl.Clone()
}

// Selection returns the current selection state.
func (e *Editor) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// Dirty reports whether there are unpublished edits.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Saving reports whether a publish is outstanding.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// AddBlock appends a fresh block of the given type to the end of the list
// and selects it.
func (e *Editor) AddBlock(t templatefmt.BlockType) (templatefmt.Block, error) {
	b, err := templatefmt.NewBlock(t)
	if err != nil {
		return templatefmt.Block{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpl.Blocks = append(e.tpl.Blocks, b)
	e.sel = BlockSelection(b.ID)
	e.markDirty()
	return b.Clone(), nil
}

// UpdateBlock shallow-merges a patch into the block with the given id.
// An unknown id is a no-op. The global_settings element never appears in
// the content list, so it can not be addressed here; global edits go
// through UpdateGlobal.
func (e *Editor) UpdateBlock(id string, patch BlockPatch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.tpl.FindBlock(id)
	if i < 0 {
		return false
	}

	b := &e.tpl.Blocks[i]
	if patch.IsVisible != nil {
		b.IsVisible = *patch.IsVisible
	}
	if patch.ShowOnBill != nil {
		b.ShowOnBill = *patch.ShowOnBill
	}
	if patch.ShowOnReceipt != nil {
		b.ShowOnReceipt = *patch.ShowOnReceipt
	}
	if len(patch.Config) > 0 {
		if b.Config == nil {
			b.Config = templatefmt.Config{}
		}
		for k, v := range patch.Config {
			b.Config[k] = v
		}
	}

	e.markDirty()
	return true
}

// DeleteBlock removes the block with the given id. Deleting the selected
// block reverts the selection to idle.
func (e *Editor) DeleteBlock(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.tpl.FindBlock(id)
	if i < 0 {
		return false
	}

	e.tpl.Blocks = append(e.tpl.Blocks[:i], e.tpl.Blocks[i+1:]...)
	if sel, ok := e.sel.BlockID(); ok && sel == id {
		e.sel = NoSelection()
	}
	e.markDirty()
	return true
}

// MoveBlock swaps the block at index with its neighbor in the given
// direction (-1 up, +1 down). Moves past either boundary are no-ops, not
// errors.
func (e *Editor) MoveBlock(index, direction int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	j := index + direction
	if index < 0 || index >= len(e.tpl.Blocks) || j < 0 || j >= len(e.tpl.Blocks) {
		return false
	}

	e.tpl.Blocks[index], e.tpl.Blocks[j] = e.tpl.Blocks[j], e.tpl.Blocks[index]
	e.markDirty()
	return true
}

// Select points the inspector at one block; an unknown id clears the
// selection instead.
func (e *Editor) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tpl.FindBlock(id) < 0 {
		e.sel = NoSelection()
		return
	}
	e.sel = BlockSelection(id)
}

// SelectGlobal points the inspector at the global settings panel.
func (e *Editor) SelectGlobal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel = GlobalSelection()
}

// Deselect returns the editor to the idle state.
func (e *Editor) Deselect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel = NoSelection()
}

// UpdateGlobal replaces the document-wide configuration after validating
// it.
func (e *Editor) UpdateGlobal(g templatefmt.GlobalConfig) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid global config: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpl.Global = g
	e.markDirty()
	return nil
}

// Publish serializes the template and writes it through the store. The
// in-memory state is never lost on failure — the caller may retry without
// re-entering edits. A second publish while one is outstanding returns
// ErrPublishInFlight rather than issuing a duplicate write.
func (e *Editor) Publish(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrPublishInFlight
	}
	e.saving = true
	elements := templatefmt.Serialize(e.tpl)
	family := e.tpl.Family
	gen := e.gen
	e.mu.Unlock()

	err := e.store.SaveTemplate(ctx, family, elements)

	e.mu.Lock()
	e.saving = false
	// Edits made while the write was in flight were not part of the
	// serialized snapshot; they stay dirty.
	if err == nil && e.gen == gen {
		e.dirty = false
	}
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("publish %s template: %w", family, err)
	}
	return nil
}
