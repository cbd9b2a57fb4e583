package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-takeoff/pkg/identity"
	"github.com/dd0wney/cluso-takeoff/pkg/logging"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/pivot"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
	"github.com/dd0wney/cluso-takeoff/pkg/scan"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	overviewView view = iota
	lengthsView
	countsView
	groupsView
	exclusionsView
)

const viewCount = 5

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type groupItem struct {
	label   string
	members []model.ComponentID
}

func (g groupItem) Title() string { return fmt.Sprintf("group %s", g.label) }
func (g groupItem) Description() string {
	names := make([]string, 0, len(g.members))
	for _, m := range g.members {
		names = append(names, string(m))
	}
	desc := strings.Join(names, ", ")
	if len(desc) > 70 {
		desc = desc[:67] + "..."
	}
	return fmt.Sprintf("%d components: %s", len(g.members), desc)
}
func (g groupItem) FilterValue() string { return g.label }

type uiModel struct {
	report         *scan.Report
	currentView    view
	lengthTable    table.Model
	countTable     table.Model
	exclusionTable table.Model
	groupList      list.Model
	help           help.Model
	keys           keyMap
	width          int
	height         int
}

func pivotTable(t *pivot.Table) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Row", Width: 24},
		{Title: "Category", Width: 14},
		{Title: "Unit", Width: 5},
	}
	dataCols := t.Columns()
	for _, col := range dataCols {
		columns = append(columns, table.Column{Title: col, Width: 12})
	}

	rows := make([]table.Row, 0, t.Len())
	for _, key := range t.Rows() {
		row := table.Row{key.BillableID, key.Label, key.Category.String(), key.Unit}
		for _, col := range dataCols {
			v := t.Value(key, col)
			if v == 0 {
				row = append(row, "-")
			} else {
				row = append(row, fmt.Sprintf("%.2f", v))
			}
		}
		rows = append(rows, row)
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	tbl.SetStyles(s)
	return tbl
}

func exclusionTable(exclusions []pivot.Exclusion) table.Model {
	columns := []table.Column{
		{Title: "Component", Width: 16},
		{Title: "Reason", Width: 28},
		{Title: "Detail", Width: 50},
	}
	rows := make([]table.Row, 0, len(exclusions))
	for _, e := range exclusions {
		rows = append(rows, table.Row{string(e.Component), string(e.Reason), e.Detail})
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	tbl.SetStyles(s)
	return tbl
}

func groupListModel(groups map[model.ComponentID]string) list.Model {
	byLabel := make(map[string][]model.ComponentID)
	for id, label := range groups {
		byLabel[label] = append(byLabel[label], id)
	}
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	items := make([]list.Item, 0, len(labels))
	for _, label := range labels {
		members := byLabel[label]
		sort.Slice(members, func(i, j int) bool {
			return model.NaturalLess(string(members[i]), string(members[j]))
		})
		items = append(items, groupItem{label: label, members: members})
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 16)
	l.Title = "Connectivity groups"
	l.SetShowStatusBar(false)
	return l
}

func initialModel(report *scan.Report) uiModel {
	return uiModel{
		report:         report,
		currentView:    overviewView,
		lengthTable:    pivotTable(report.Lengths),
		countTable:     pivotTable(report.Counts),
		exclusionTable: exclusionTable(report.Exclusions),
		groupList:      groupListModel(report.Groups),
		help:           help.New(),
		keys:           keys,
	}
}

func (m uiModel) Init() tea.Cmd {
	return nil
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.groupList.SetSize(msg.Width-4, msg.Height-10)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
		}
	}

	// Update focused component
	switch m.currentView {
	case lengthsView:
		m.lengthTable, cmd = m.lengthTable.Update(msg)
		cmds = append(cmds, cmd)
	case countsView:
		m.countTable, cmd = m.countTable.Update(msg)
		cmds = append(cmds, cmd)
	case groupsView:
		m.groupList, cmd = m.groupList.Update(msg)
		cmds = append(cmds, cmd)
	case exclusionsView:
		m.exclusionTable, cmd = m.exclusionTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m uiModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Takeoff Report Viewer"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case overviewView:
		s.WriteString(m.renderOverview())
	case lengthsView:
		s.WriteString(m.renderPivot("Installed lengths", m.lengthTable))
	case countsView:
		s.WriteString(m.renderPivot("Part counts", m.countTable))
	case groupsView:
		s.WriteString(contentStyle.Render(m.groupList.View()))
	case exclusionsView:
		s.WriteString(m.renderExclusions())
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m uiModel) renderTabs() string {
	tabs := []string{"Overview", "Lengths", "Counts", "Groups", "Exclusions"}
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m uiModel) renderOverview() string {
	stats := m.report.Stats

	statsContent := fmt.Sprintf(`Run %s

Components:     %d
Contributions:  %d
Total length:   %.2f
Groups:         %d
Exclusions:     %d
Duration:       %s`,
		m.report.RunID,
		stats.Components,
		stats.Contributions,
		stats.TotalLength,
		stats.Groups,
		len(m.report.Exclusions),
		stats.Duration.Round(0),
	)

	classes := make([]string, 0, len(stats.ByClass))
	for class := range stats.ByClass {
		classes = append(classes, string(class))
	}
	sort.Strings(classes)

	var byClass strings.Builder
	byClass.WriteString("Components by class\n\n")
	for _, class := range classes {
		byClass.WriteString(fmt.Sprintf("%-12s %d\n", class, stats.ByClass[model.Class(class)]))
	}

	statsBox := statsBoxStyle.Render(statsContent)
	classBox := statsBoxStyle.Render(byClass.String())

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, statsBox, classBox),
	)
}

func (m uiModel) renderPivot(title string, tbl table.Model) string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(title))
	s.WriteString("\n\n")

	if len(tbl.Rows()) == 0 {
		s.WriteString(helpStyle.Render("No rows"))
	} else {
		s.WriteString(tbl.View())
	}

	return contentStyle.Render(s.String())
}

func (m uiModel) renderExclusions() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Exclusions"))
	s.WriteString("\n\n")

	if len(m.report.Exclusions) == 0 {
		s.WriteString(helpStyle.Render("Every contribution was routed"))
	} else {
		s.WriteString(m.exclusionTable.View())
	}

	return contentStyle.Render(s.String())
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: takeoff-tui <model.yaml> [state-path]")
		os.Exit(1)
	}
	modelPath := os.Args[1]

	var store *identity.Store
	if len(os.Args) > 2 {
		store = identity.NewStore(os.Args[2])
	}

	doc, err := provider.LoadDocument(modelPath)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	network, err := doc.Build()
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	engine := scan.NewEngine(network, store, logging.NewNopLogger())
	report, err := engine.Run(nil)
	if err != nil {
		if report == nil {
			log.Fatalf("Takeoff failed: %v", err)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("partial run: %v", err)))
	}

	p := tea.NewProgram(initialModel(report), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
