package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/karimelh/salespoint/internal/product"
	"github.com/karimelh/salespoint/internal/sale"
)

type sellState int

const (
	sellStateBrowse sellState = iota
	sellStateCheckout
)

type SellModel struct {
	CommonModel
	saleService    *sale.Service
	productService *product.Service

	state    sellState
	table    table.Model
	products []*product.Product

	// basket maps product id to requested quantity, ordered by first add.
	basket map[int64]int64
	order  []int64

	form       *huh.Form
	formMethod string
	formCust   string

	loading bool
	err     error
	status  string
}

func NewSellModel(saleSvc *sale.Service, productSvc *product.Service) SellModel {
	columns := []table.Column{
		{Title: "Barcode", Width: 14},
		{Title: "Name", Width: 30},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 8},
		{Title: "In Basket", Width: 10},
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

	return SellModel{
		saleService:    saleSvc,
		productService: productSvc,
		table:          t,
		basket:         make(map[int64]int64),
	}
}

func (m SellModel) Title() string { return "New Sale" }
func (m SellModel) ShortHelp() string {
	if m.state == sellStateCheckout {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | +: add | -: remove | c: checkout | x: clear basket | r: refresh"
}

func (m SellModel) Init() tea.Cmd {
	return m.loadProductsCmd()
}

func (m SellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sellProductsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.products = msg.products
		m.refreshTable()
		return m, nil

	case sellCommitMsg:
		m.state = sellStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = commitStatus(msg.err)
			return m, nil
		}

		m.basket = make(map[int64]int64)
		m.order = nil
		m.status = fmt.Sprintf("Sale #%d committed, total %s", msg.committed.ID, FormatMoney(msg.committed.Total))
		return m, m.loadProductsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case sellStateBrowse:
		return m.updateBrowse(msg)
	case sellStateCheckout:
		return m.updateCheckout(msg)
	}

	return m, nil
}

func (m SellModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadProductsCmd()
		case "+", "enter":
			m.adjustBasket(1)
			return m, nil
		case "-":
			m.adjustBasket(-1)
			return m, nil
		case "x":
			m.basket = make(map[int64]int64)
			m.order = nil
			m.status = ""
			m.refreshTable()
			return m, nil
		case "c":
			return m.enterCheckout()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *SellModel) adjustBasket(delta int64) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return
	}

	p := m.products[idx]
	next := m.basket[p.ID] + delta

	switch {
	case next <= 0:
		if _, found := m.basket[p.ID]; found {
			delete(m.basket, p.ID)
			for i, id := range m.order {
				if id == p.ID {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
		}
	case next > p.Quantity:
		m.status = fmt.Sprintf("Only %d of %s in stock", p.Quantity, p.Name)
		return
	default:
		if _, found := m.basket[p.ID]; !found {
			m.order = append(m.order, p.ID)
		}
		m.basket[p.ID] = next
	}

	m.status = ""
	m.refreshTable()
}

func (m SellModel) enterCheckout() (tea.Model, tea.Cmd) {
	if len(m.basket) == 0 {
		m.status = "Basket is empty"
		return m, nil
	}

	m.formMethod = string(sale.MethodCash)
	m.formCust = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("method").
				Title("Payment Method").
				Options(
					huh.NewOption("Cash", string(sale.MethodCash)),
					huh.NewOption("Card", string(sale.MethodCard)),
					huh.NewOption("Transfer", string(sale.MethodTransfer)),
				).
				Value(&m.formMethod),

			huh.NewInput().
				Key("customer").
				Title("Customer ID (optional)").
				Placeholder("leave empty for walk-in").
				Value(&m.formCust).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
						return fmt.Errorf("customer id must be a number")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = sellStateCheckout
	m.table.Blur()
	return m, m.form.Init()
}

func (m SellModel) updateCheckout(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = sellStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.commitCmd()
}

func (m SellModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading products...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	basket := lipgloss.NewStyle().PaddingTop(1).Render(m.basketSummary())

	content := lipgloss.JoinVertical(lipgloss.Left, tableView, basket)

	if m.state == sellStateCheckout && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Checkout\n\n%s\n\n%s", m.basketSummary(), m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// basketSummary lists the basket lines with a pre-tax running total.
// Authoritative totals come back from the commit.
func (m SellModel) basketSummary() string {
	if len(m.basket) == 0 {
		return "Basket: empty"
	}

	byID := make(map[int64]*product.Product, len(m.products))
	for _, p := range m.products {
		byID[p.ID] = p
	}

	var b strings.Builder
	running := decimal.Zero

	b.WriteString("Basket:\n")

	for _, id := range m.order {
		p, found := byID[id]
		if !found {
			continue
		}

		quantity := m.basket[id]
		lineTotal := p.Price.Mul(decimal.NewFromInt(quantity))
		running = running.Add(lineTotal)

		fmt.Fprintf(&b, "  %dx %s  %s\n", quantity, p.Name, FormatMoney(lineTotal))
	}

	fmt.Fprintf(&b, "Subtotal: %s", FormatMoney(running))

	return b.String()
}

func (m *SellModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		inBasket := ""
		if quantity := m.basket[p.ID]; quantity > 0 {
			inBasket = strconv.FormatInt(quantity, 10)
		}

		rows = append(rows, table.Row{
			p.Barcode,
			p.Name,
			FormatMoney(p.Price),
			strconv.FormatInt(p.Quantity, 10),
			inBasket,
		})
	}
	m.table.SetRows(rows)
}

func commitStatus(err error) string {
	var (
		stockErr    *sale.InsufficientStockError
		notFoundErr *sale.ProductNotFoundError
	)

	switch {
	case errors.As(err, &stockErr):
		return fmt.Sprintf("Not enough stock for product %d: requested %d, available %d",
			stockErr.ProductID, stockErr.Requested, stockErr.Available)
	case errors.As(err, &notFoundErr):
		return fmt.Sprintf("Product %d no longer exists", notFoundErr.ProductID)
	case sale.Retryable(err):
		return "Store is busy, try the sale again"
	default:
		return fmt.Sprintf("Sale failed: %v", err)
	}
}

// Messages

type sellProductsMsg struct {
	products []*product.Product
	err      error
}

func (m SellModel) loadProductsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.productService.List(ctx, product.ListFilter{})
		return sellProductsMsg{products: products, err: err}
	}
}

type sellCommitMsg struct {
	committed *sale.Sale
	err       error
}

func (m SellModel) commitCmd() tea.Cmd {
	lines := make([]sale.Line, 0, len(m.order))
	for _, id := range m.order {
		lines = append(lines, sale.Line{ProductID: id, Quantity: m.basket[id]})
	}

	var customerID *int64
	if s := strings.TrimSpace(m.formCust); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			customerID = &id
		}
	}

	method := sale.Method(m.formMethod)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		committed, err := m.saleService.Commit(ctx, sale.CommitParams{
			CustomerID: customerID,
			Method:     method,
			Lines:      lines,
		})

		return sellCommitMsg{committed: committed, err: err}
	}
}
