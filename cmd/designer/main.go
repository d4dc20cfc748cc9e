// Command designer is the interactive terminal template designer: a block
// list on the left, a live preview on the right, and single-key editing of
// visibility, ordering and global settings. Edits stay in memory until an
// explicit publish.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tablewise/printstudio/internal/backend"
	"github.com/tablewise/printstudio/internal/config"
	"github.com/tablewise/printstudio/internal/designer"
	"github.com/tablewise/printstudio/internal/preview"
	"github.com/tablewise/printstudio/pkg/templatefmt"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Faint(true)
	dirtyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	savedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func main() {
	var (
		file    = flag.String("file", "", "Edit a local template file instead of the backend")
		familyF = flag.String("family", "receipt", "Template family: receipt or kot")
	)
	flag.Parse()

	family, err := templatefmt.ParseFamily(*familyF)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tpl, store, err := open(family, *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := newModel(designer.New(tpl, store), family)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// open loads the template and picks the publish target: a local file when
// -file is given, the restaurant backend otherwise.
func open(family templatefmt.Family, file string) (templatefmt.Template, designer.Store, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil && !os.IsNotExist(err) {
			return templatefmt.Template{}, nil, fmt.Errorf("read %s: %w", file, err)
		}
		return templatefmt.Parse(data, family), fileStore{path: file}, nil
	}

	cfg := config.Load()
	client := backend.New(cfg.BackendURL, cfg.APIToken, cfg.RestaurantID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tpl, err := client.Template(ctx, family)
	if err != nil {
		return templatefmt.Template{}, nil, fmt.Errorf("load template: %w", err)
	}
	return tpl, client, nil
}

// fileStore publishes the flattened template to a local JSON file.
type fileStore struct {
	path string
}

func (f fileStore) SaveTemplate(ctx context.Context, family templatefmt.Family, elements []map[string]any) error {
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

// blockItem adapts a block for the bubbles list widget.
type blockItem struct {
	block templatefmt.Block
}

func (i blockItem) Title() string {
	marks := ""
	if !i.block.IsVisible {
		marks = " [hidden]"
	}
	return string(i.block.Type) + marks
}

func (i blockItem) Description() string {
	out := ""
	if i.block.ShowOnBill {
		out += "bill "
	}
	if i.block.ShowOnReceipt {
		out += "receipt"
	}
	if out == "" {
		out = "kot only"
	}
	return out
}

func (i blockItem) FilterValue() string { return string(i.block.Type) }

type publishedMsg struct {
	err error
}

type model struct {
	editor *designer.Editor
	family templatefmt.Family
	mode   preview.Mode

	blocks  list.Model
	input   textinput.Model
	editing bool
	typeIdx int
	status  string
	width   int
	height  int
}

func newModel(editor *designer.Editor, family templatefmt.Family) model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 34, 20)
	l.Title = string(family) + " template"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	ti := textinput.New()
	ti.Placeholder = "text content"
	ti.CharLimit = 200

	mode := preview.ModeReceipt
	if family == templatefmt.FamilyKOT {
		mode = preview.ModeKOT
	}

	m := model{
		editor: editor,
		family: family,
		mode:   mode,
		blocks: l,
		input:  ti,
		status: "a add · d delete · J/K move · v/b/r toggle · e edit text · m mode · p publish · q quit",
	}
	m.syncList()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

// syncList rebuilds the list items from the editor's template and keeps the
// cursor on the selected block.
func (m *model) syncList() {
	tpl := m.editor.Template()
	items := make([]list.Item, len(tpl.Blocks))
	cursor := m.blocks.Index()

	selectedID, hasSelection := m.editor.Selection().BlockID()
	for i, b := range tpl.Blocks {
		items[i] = blockItem{block: b}
		if hasSelection && b.ID == selectedID {
			cursor = i
		}
	}

	m.blocks.SetItems(items)
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	if cursor >= 0 {
		m.blocks.Select(cursor)
	}
}

// selectedBlock returns the block under the list cursor.
func (m *model) selectedBlock() (templatefmt.Block, bool) {
	item, ok := m.blocks.SelectedItem().(blockItem)
	if !ok {
		return templatefmt.Block{}, false
	}
	return item.block, true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.blocks.SetHeight(msg.Height - 6)
		return m, nil

	case publishedMsg:
		if msg.err != nil {
			m.status = problemStyle.Render("publish failed: " + msg.err.Error() + " · edits kept, retry with p")
		} else {
			m.status = savedStyle.Render("published")
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	var cmd tea.Cmd
	m.blocks, cmd = m.blocks.Update(msg)
	return m, cmd
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	case "enter":
		if b, ok := m.selectedBlock(); ok {
			m.editor.UpdateBlock(b.ID, designer.BlockPatch{
				Config: templatefmt.Config{textKey(b.Type): m.input.Value()},
			})
			m.syncList()
		}
		m.editing = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "a":
		t := templatefmt.ContentTypes()[m.typeIdx]
		if _, err := m.editor.AddBlock(t); err == nil {
			m.syncList()
			m.status = "added " + string(t)
		}
		return m, nil

	case "tab":
		m.typeIdx = (m.typeIdx + 1) % len(templatefmt.ContentTypes())
		m.status = "next add: " + string(templatefmt.ContentTypes()[m.typeIdx])
		return m, nil

	case "d", "x":
		if b, ok := m.selectedBlock(); ok {
			m.editor.DeleteBlock(b.ID)
			m.syncList()
		}
		return m, nil

	case "K", "shift+up":
		if m.editor.MoveBlock(m.blocks.Index(), -1) {
			m.blocks.Select(m.blocks.Index() - 1)
			m.syncList()
		}
		return m, nil

	case "J", "shift+down":
		if m.editor.MoveBlock(m.blocks.Index(), +1) {
			m.blocks.Select(m.blocks.Index() + 1)
			m.syncList()
		}
		return m, nil

	case "v":
		m.toggle(func(b templatefmt.Block) designer.BlockPatch {
			val := !b.IsVisible
			return designer.BlockPatch{IsVisible: &val}
		})
		return m, nil

	case "b":
		m.toggle(func(b templatefmt.Block) designer.BlockPatch {
			val := !b.ShowOnBill
			return designer.BlockPatch{ShowOnBill: &val}
		})
		return m, nil

	case "r":
		m.toggle(func(b templatefmt.Block) designer.BlockPatch {
			val := !b.ShowOnReceipt
			return designer.BlockPatch{ShowOnReceipt: &val}
		})
		return m, nil

	case "e":
		if b, ok := m.selectedBlock(); ok && textKey(b.Type) != "" {
			m.input.SetValue(b.Config.Str(textKey(b.Type), ""))
			m.input.Focus()
			m.editing = true
		}
		return m, nil

	case "g":
		m.editor.SelectGlobal()
		m.status = "global settings selected · +/- font size · w paper width"
		return m, nil

	case "+", "=":
		m.bumpFontSize(+1)
		return m, nil

	case "-":
		m.bumpFontSize(-1)
		return m, nil

	case "w":
		g := m.editor.Template().Global
		if g.PaperWidth == templatefmt.Paper80 {
			g.PaperWidth = templatefmt.Paper58
			g.ColumnCapacity = 32
		} else {
			g.PaperWidth = templatefmt.Paper80
			g.ColumnCapacity = 42
		}
		m.editor.UpdateGlobal(g)
		return m, nil

	case "m":
		switch m.mode {
		case preview.ModeBill:
			m.mode = preview.ModeReceipt
		case preview.ModeReceipt:
			m.mode = preview.ModeKOT
		default:
			m.mode = preview.ModeBill
		}
		return m, nil

	case "p", "ctrl+s":
		m.status = "publishing..."
		editor := m.editor
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return publishedMsg{err: editor.Publish(ctx)}
		}
	}

	var cmd tea.Cmd
	m.blocks, cmd = m.blocks.Update(msg)
	if b, ok := m.selectedBlock(); ok {
		m.editor.Select(b.ID)
	}
	return m, cmd
}

func (m *model) toggle(patch func(templatefmt.Block) designer.BlockPatch) {
	b, ok := m.selectedBlock()
	if !ok {
		return
	}
	m.editor.UpdateBlock(b.ID, patch(b))
	m.syncList()
}

func (m *model) bumpFontSize(delta int) {
	g := m.editor.Template().Global
	g.FontSize += delta
	if err := m.editor.UpdateGlobal(g); err != nil {
		m.status = problemStyle.Render(err.Error())
	}
}

// textKey maps a block type to its free-text config key, empty when the
// type has none.
func textKey(t templatefmt.BlockType) string {
	switch t {
	case templatefmt.TypeText:
		return "content"
	case templatefmt.TypeFooter:
		return "message"
	case templatefmt.TypeQR:
		return "payload"
	}
	return ""
}

func (m model) View() string {
	selectedID, _ := m.editor.Selection().BlockID()
	doc := preview.Render(m.editor.Template(), m.mode, selectedID, nil)

	left := paneStyle.Render(m.blocks.View())
	right := paneStyle.Render(preview.RenderANSI(doc))
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	bar := statusStyle.Render(m.status)
	state := fmt.Sprintf("mode: %s · paper: %s", m.mode, doc.PaperWidth)
	if m.editor.Dirty() {
		state += dirtyStyle.Render(" · unpublished edits")
	}

	if m.editing {
		bar = "edit: " + m.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, panes, state, bar)
}
