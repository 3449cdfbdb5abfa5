package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/re3facet/pkg/hierarchy"
	"github.com/matzehuels/re3facet/pkg/subject"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// PickerModel - Interactive subject selection
// =============================================================================

type pickerRow struct {
	node  *hierarchy.Node
	depth int
}

// PickerModel is the bubbletea model for the subject checkbox tree.
// Placeholder nodes can be expanded but not checked.
type PickerModel struct {
	Root      *hierarchy.Node
	Cursor    int
	Offset    int
	Height    int
	Confirmed bool

	expanded map[*hierarchy.Node]bool
	checked  map[string]bool
	rows     []pickerRow
}

// NewPickerModel creates a picker over root with all nodes collapsed.
func NewPickerModel(root *hierarchy.Node) PickerModel {
	m := PickerModel{
		Root:     root,
		Height:   20,
		expanded: make(map[*hierarchy.Node]bool),
		checked:  make(map[string]bool),
	}
	m.rows = m.visibleRows()
	return m
}

// Selection returns the checked values.
func (m PickerModel) Selection() subject.Selection {
	values := make([]string, 0, len(m.checked))
	for v, ok := range m.checked {
		if ok {
			values = append(values, v)
		}
	}
	return subject.NewSelection(values...)
}

func (m PickerModel) visibleRows() []pickerRow {
	var rows []pickerRow
	var walk func(n *hierarchy.Node, depth int)
	walk = func(n *hierarchy.Node, depth int) {
		for _, c := range n.Children() {
			rows = append(rows, pickerRow{node: c, depth: depth})
			if m.expanded[c] {
				walk(c, depth+1)
			}
		}
	}
	if m.Root != nil {
		walk(m.Root, 0)
	}
	return rows
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "right", "l":
			if row, ok := m.current(); ok && row.node.Len() > 0 {
				m.expanded[row.node] = true
				m.rows = m.visibleRows()
			}
		case "left", "h":
			if row, ok := m.current(); ok {
				if m.expanded[row.node] {
					delete(m.expanded, row.node)
					m.rows = m.visibleRows()
				} else {
					m.Cursor = m.parentIndex(m.Cursor)
				}
			}
		case " ", "space", "x":
			if row, ok := m.current(); ok && !row.node.IsPlaceholder() {
				v := row.node.Value
				if m.checked[v] {
					delete(m.checked, v)
				} else {
					m.checked[v] = true
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	m.scroll()
	return m, nil
}

func (m PickerModel) current() (pickerRow, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return pickerRow{}, false
	}
	return m.rows[m.Cursor], true
}

// parentIndex returns the row index of the parent of row i, or i at the top level.
func (m PickerModel) parentIndex(i int) int {
	depth := m.rows[i].depth
	for j := i - 1; j >= 0; j-- {
		if m.rows[j].depth < depth {
			return j
		}
	}
	return i
}

func (m *PickerModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Subjects"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  →/← expand  space check  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		row := m.rows[i]
		n := row.node

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		fold := "  "
		if n.Len() > 0 {
			fold = "+ "
			if m.expanded[n] {
				fold = "- "
			}
		}

		box := "[ ]"
		label := n.Label
		if n.IsPlaceholder() {
			box = "   "
			label = "(" + n.Key + ")"
		} else if m.checked[n.Value] {
			box = listCheckedStyle.Render("[x]")
		}

		line := fmt.Sprintf("%s%s%s%s %s", cursor, strings.Repeat("  ", row.depth), fold, box, label)
		if n.Count > 0 {
			line += listDimStyle.Render(fmt.Sprintf(" (%d)", n.Count))
		}

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.IsPlaceholder():
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d checked]", len(m.checked))))

	return b.String()
}
