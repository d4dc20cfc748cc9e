package designer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tablewise/printstudio/pkg/templatefmt"
)

type fakeStore struct {
	calls    int
	err      error
	saved    []map[string]any
	family   templatefmt.Family
	blockCh  chan struct{} // when non-nil, SaveTemplate blocks until closed
	entered  chan struct{}
}

func (f *fakeStore) SaveTemplate(ctx context.Context, family templatefmt.Family, elements []map[string]any) error {
	f.calls++
	f.family = family
	f.saved = elements
	if f.entered != nil {
		close(f.entered)
	}
	if f.blockCh != nil {
		<-f.blockCh
	}
	return f.err
}

func newEditor(t *testing.T, store Store) *Editor {
	t.Helper()
	return New(templatefmt.DefaultTemplate(templatefmt.FamilyReceipt), store)
}

func TestAddBlock_AppendsAndSelects(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	before := len(e.Template().Blocks)

	b, err := e.AddBlock(templatefmt.TypeText)
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	tpl := e.Template()
	if len(tpl.Blocks) != before+1 {
		t.Fatalf("block count = %d, want %d", len(tpl.Blocks), before+1)
	}
	if tpl.Blocks[len(tpl.Blocks)-1].ID != b.ID {
		t.Error("new block must land at the end of the list")
	}
	if id, ok := e.Selection().BlockID(); !ok || id != b.ID {
		t.Error("adding a block must select it")
	}
	if !e.Dirty() {
		t.Error("adding a block must mark the editor dirty")
	}
}

func TestAddBlock_RejectsReservedType(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	if _, err := e.AddBlock(templatefmt.TypeGlobalSettings); err == nil {
		t.Error("global_settings must not be addable as a content block")
	}
}

func TestUpdateBlock_MergesConfig(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	b, _ := e.AddBlock(templatefmt.TypeText)
	e.UpdateBlock(b.ID, BlockPatch{Config: templatefmt.Config{"legacy_flag": "keep-me"}})

	// An unrelated edit must not clobber the earlier key.
	e.UpdateBlock(b.ID, BlockPatch{Config: templatefmt.Config{"content": "hello"}})

	tpl := e.Template()
	got := tpl.Blocks[tpl.FindBlock(b.ID)]
	if got.Config.Str("legacy_flag", "") != "keep-me" {
		t.Error("config merge dropped an untouched key")
	}
	if got.Config.Str("content", "") != "hello" {
		t.Error("config merge lost the new value")
	}
}

func TestUpdateBlock_FlagPointers(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	b, _ := e.AddBlock(templatefmt.TypeText)

	hide := false
	if !e.UpdateBlock(b.ID, BlockPatch{IsVisible: &hide, ShowOnBill: &hide}) {
		t.Fatal("update on a known id must succeed")
	}

	tpl := e.Template()
	got := tpl.Blocks[tpl.FindBlock(b.ID)]
	if got.IsVisible || got.ShowOnBill {
		t.Error("set pointers not applied")
	}
	if !got.ShowOnReceipt {
		t.Error("nil pointer must leave the flag untouched")
	}
}

func TestUpdateBlock_NoOps(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	if e.UpdateBlock("missing", BlockPatch{}) {
		t.Error("unknown id must be a no-op")
	}
	// The global settings element never appears in the content list, so
	// its reserved id behaves like any other unknown id.
	if e.UpdateBlock(templatefmt.MetadataID, BlockPatch{}) {
		t.Error("the global settings element must not be patchable as a block")
	}
}

func TestDeleteBlock_ClearsSelection(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	b, _ := e.AddBlock(templatefmt.TypeDivider)

	if !e.DeleteBlock(b.ID) {
		t.Fatal("delete on a known id must succeed")
	}
	if e.Template().FindBlock(b.ID) >= 0 {
		t.Error("deleted block still present")
	}
	if e.Selection().Kind() != SelectNone {
		t.Error("deleting the selected block must revert selection to idle")
	}
}

func TestDeleteBlock_KeepsOtherSelection(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	first, _ := e.AddBlock(templatefmt.TypeText)
	second, _ := e.AddBlock(templatefmt.TypeDivider)

	e.Select(first.ID)
	e.DeleteBlock(second.ID)

	if id, ok := e.Selection().BlockID(); !ok || id != first.ID {
		t.Error("deleting an unselected block must not disturb the selection")
	}
}

func TestMoveBlock(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	tpl := e.Template()
	n := len(tpl.Blocks)
	firstID := tpl.Blocks[0].ID
	secondID := tpl.Blocks[1].ID

	if e.MoveBlock(0, -1) {
		t.Error("moving the first block up must be a no-op")
	}
	if e.MoveBlock(n-1, +1) {
		t.Error("moving the last block down must be a no-op")
	}
	if e.MoveBlock(-1, +1) || e.MoveBlock(n, -1) {
		t.Error("out-of-range index must be a no-op")
	}

	if !e.MoveBlock(0, +1) {
		t.Fatal("legal move rejected")
	}
	got := e.Template()
	if got.Blocks[0].ID != secondID || got.Blocks[1].ID != firstID {
		t.Error("move did not swap the neighbors")
	}
}

func TestSelect(t *testing.T) {
	e := newEditor(t, &fakeStore{})
	id := e.Template().Blocks[0].ID

	e.Select(id)
	if got, ok := e.Selection().BlockID(); !ok || got != id {
		t.Error("Select on a known id must select it")
	}

	e.Select("nope")
	if e.Selection().Kind() != SelectNone {
		t.Error("Select on an unknown id must clear the selection")
	}

	e.SelectGlobal()
	if e.Selection().Kind() != SelectGlobal {
		t.Error("SelectGlobal must switch to the global panel")
	}
	if _, ok := e.Selection().BlockID(); ok {
		t.Error("global selection must not report a block id")
	}

	e.Deselect()
	if e.Selection().Kind() != SelectNone {
		t.Error("Deselect must return to idle")
	}
}

func TestUpdateGlobal_Validates(t *testing.T) {
	e := newEditor(t, &fakeStore{})

	bad := e.Template().Global
	bad.FontSize = 500
	if err := e.UpdateGlobal(bad); err == nil {
		t.Fatal("out-of-range font size must be rejected")
	}

	good := e.Template().Global
	good.FontSize = 16
	if err := e.UpdateGlobal(good); err != nil {
		t.Fatalf("valid global config rejected: %v", err)
	}
	if e.Template().Global.FontSize != 16 {
		t.Error("global config not applied")
	}
}

func TestPublish_WritesSerializedElements(t *testing.T) {
	store := &fakeStore{}
	e := newEditor(t, store)

	if err := e.Publish(context.Background()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("store called %d times, want 1", store.calls)
	}
	if store.family != templatefmt.FamilyReceipt {
		t.Errorf("published family = %s", store.family)
	}
	if len(store.saved) == 0 || store.saved[0]["id"] != templatefmt.MetadataID {
		t.Error("published elements must lead with the global settings element")
	}
	if e.Dirty() {
		t.Error("a clean publish must clear the dirty flag")
	}
}

func TestPublish_FailureKeepsState(t *testing.T) {
	store := &fakeStore{err: errors.New("backend down")}
	e := newEditor(t, store)
	b, _ := e.AddBlock(templatefmt.TypeText)
	e.UpdateBlock(b.ID, BlockPatch{Config: templatefmt.Config{"content": "precious"}})

	if err := e.Publish(context.Background()); err == nil {
		t.Fatal("store failure must surface")
	}

	tpl := e.Template()
	got := tpl.Blocks[tpl.FindBlock(b.ID)]
	if got.Config.Str("content", "") != "precious" {
		t.Error("failed publish must not lose in-memory edits")
	}
	if !e.Dirty() {
		t.Error("failed publish must leave the editor dirty")
	}
	if e.Saving() {
		t.Error("saving flag stuck after failure")
	}

	// A retry goes straight through.
	store.err = nil
	if err := e.Publish(context.Background()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestPublish_RejectsConcurrent(t *testing.T) {
	store := &fakeStore{
		blockCh: make(chan struct{}),
		entered: make(chan struct{}),
	}
	e := newEditor(t, store)

	done := make(chan error, 1)
	go func() { done <- e.Publish(context.Background()) }()

	<-store.entered
	if !e.Saving() {
		t.Error("saving flag must be set while a publish is in flight")
	}
	if err := e.Publish(context.Background()); !errors.Is(err, ErrPublishInFlight) {
		t.Errorf("second publish err = %v, want ErrPublishInFlight", err)
	}

	close(store.blockCh)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first publish: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first publish never finished")
	}

	if store.calls != 1 {
		t.Errorf("store called %d times, want 1", store.calls)
	}
}

func TestPublish_EditDuringWriteStaysDirty(t *testing.T) {
	store := &fakeStore{
		blockCh: make(chan struct{}),
		entered: make(chan struct{}),
	}
	e := newEditor(t, store)

	done := make(chan error, 1)
	go func() { done <- e.Publish(context.Background()) }()

	// The user keeps editing while the write is on the wire. That edit is
	// not part of the serialized snapshot, so a successful publish must
	// not report it as saved.
	<-store.entered
	if _, err := e.AddBlock(templatefmt.TypeText); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	close(store.blockCh)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Publish: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("publish never finished")
	}

	if !e.Dirty() {
		t.Error("edit made during the write must keep the editor dirty")
	}

	// A follow-up publish with no interleaved edit clears the flag.
	store.entered = nil
	if err := e.Publish(context.Background()); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if e.Dirty() {
		t.Error("publish covering every edit must clear the dirty flag")
	}
}
