package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karimelh/salespoint/internal/sale"
)

type HistoryModel struct {
	CommonModel
	saleService *sale.Service

	table table.Model
	sales []*sale.Sale

	dateFilterIdx int
	filter        sale.ListFilter

	loading bool
	err     error
}

func NewHistoryModel(saleSvc *sale.Service) HistoryModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Date", Width: 12},
		{Title: "Items", Width: 6},
		{Title: "Method", Width: 10},
		{Title: "Subtotal", Width: 10},
		{Title: "Tax", Width: 8},
		{Title: "Total", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return HistoryModel{
		saleService: saleSvc,
		table:       t,
	}
}

func (m HistoryModel) Title() string { return "Sales History" }
func (m HistoryModel) ShortHelp() string {
	return "Esc: back | d: date filter | r: refresh"
}

func (m HistoryModel) Init() tea.Cmd {
	return m.loadSalesCmd()
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sales = msg.sales
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadSalesCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter()
			return m, m.loadSalesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m HistoryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading sales...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	dateLabels := []string{"All Time", "Today", "This Month"}

	header := fmt.Sprintf("Filter: [d] Date: %s",
		lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(dateLabels[m.dateFilterIdx]))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *HistoryModel) applyFilter() {
	// Sales are stamped in UTC by the store.
	now := time.Now().UTC()

	switch m.dateFilterIdx {
	case 1:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		m.filter.StartDate = &day
		m.filter.EndDate = &day
	case 2:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		m.filter.StartDate = &start
		m.filter.EndDate = &end
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *HistoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.sales))
	for _, s := range m.sales {
		rows = append(rows, table.Row{
			strconv.FormatInt(s.ID, 10),
			FormatDate(s.CreatedAt),
			strconv.Itoa(len(s.Items)),
			string(s.Method),
			FormatMoney(s.Subtotal),
			FormatMoney(s.Tax),
			FormatMoney(s.Total),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type historyLoadMsg struct {
	sales []*sale.Sale
	err   error
}

func (m HistoryModel) loadSalesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sales, err := m.saleService.List(ctx, m.filter)
		return historyLoadMsg{sales: sales, err: err}
	}
}
