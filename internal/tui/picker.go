package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/runtime"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionLogs
	ActionStart
	ActionStop
	ActionRecreate
	ActionNew
	ActionDelete
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Node   *node.Info
}

// nodeItem implements list.Item for node display
type nodeItem struct {
	info *node.Info
}

func (i nodeItem) Title() string {
	return i.info.Name
}

func (i nodeItem) Description() string {
	nbhd := i.info.Neighborhood
	if nbhd == "" {
		nbhd = "-"
	}
	return fmt.Sprintf("%s %s | api %s | p2p %s | nbhd %s",
		statusIcon(i.info.Status),
		i.info.Status,
		i.info.APIPort,
		i.info.P2PPort,
		nbhd,
	)
}

func (i nodeItem) FilterValue() string {
	return i.info.Name
}

func statusIcon(status string) string {
	switch runtime.ContainerStatus(status) {
	case runtime.StatusRunning:
		return "✓"
	case runtime.StatusStopped:
		return "●"
	case runtime.StatusNotFound:
		return "✗"
	default:
		return "?"
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// Model is the bubbletea model for the node picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
}

// NewPicker creates a node picker grouped by parent directory.
func NewPicker(nodes []*node.Info) Model {
	l := list.New(buildGroupedItems(nodes), newGroupedDelegate(), 80, 20)
	l.Title = "ruche - Select Node"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	skipHeaders(&l, 1)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) selected() (*node.Info, bool) {
	item, ok := m.list.SelectedItem().(nodeItem)
	if !ok {
		return nil, false
	}
	return item.info, true
}

func (m Model) finish(action Action, n *node.Info) (tea.Model, tea.Cmd) {
	m.result = PickerResult{Action: action, Node: n}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		nodeActions := map[string]Action{
			"enter": ActionLogs,
			"s":     ActionStart,
			"x":     ActionStop,
			"r":     ActionRecreate,
			"d":     ActionDelete,
		}
		if action, ok := nodeActions[msg.String()]; ok {
			if n, ok := m.selected(); ok {
				return m.finish(action, n)
			}
			return m, nil
		}

		switch msg.String() {
		case "n":
			return m.finish(ActionNew, nil)
		case "q", "esc":
			return m.finish(ActionQuit, nil)
		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			skipHeaders(&m.list, navigationDirection(msg))
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Logs  [s] Start  [x] Stop  [r] Recreate  [n] New  [d] Delete  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive node picker
func RunPicker(nodes []*node.Info) (PickerResult, error) {
	if len(nodes) == 0 {
		return PickerResult{Action: ActionNew}, nil
	}

	p := tea.NewProgram(NewPicker(nodes), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker renders the node list without a terminal UI.
func SimplePicker(nodes []*node.Info) string {
	var sb strings.Builder

	sb.WriteString("ruche - Nodes\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(nodes) == 0 {
		sb.WriteString("No nodes found.\n")
		sb.WriteString("Create one with: ruche create\n")
		return sb.String()
	}

	for i, n := range nodes {
		sb.WriteString(fmt.Sprintf("%d. %s %s (%s)\n",
			i+1, statusIcon(n.Status), n.Name, n.Status))
		sb.WriteString(fmt.Sprintf("   API: %s | P2P: %s | Data: %s\n\n",
			n.APIPort, n.P2PPort, n.DataDir))
	}

	return sb.String()
}
