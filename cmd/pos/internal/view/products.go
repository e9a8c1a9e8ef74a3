package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/karimelh/salespoint/internal/product"
)

type productsState int

const (
	productsStateBrowse productsState = iota
	productsStateAdd
)

type ProductsModel struct {
	CommonModel
	productService *product.Service

	state    productsState
	table    table.Model
	products []*product.Product
	form     *huh.Form

	formBarcode  string
	formName     string
	formPrice    string
	formQuantity string
	formCategory string

	loading bool
	err     error
	status  string
}

func NewProductsModel(productSvc *product.Service) ProductsModel {
	columns := []table.Column{
		{Title: "Barcode", Width: 14},
		{Title: "Name", Width: 30},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 8},
		{Title: "Category", Width: 16},
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

	return ProductsModel{
		productService: productSvc,
		table:          t,
	}
}

func (m ProductsModel) Title() string { return "Products" }
func (m ProductsModel) ShortHelp() string {
	if m.state == productsStateAdd {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | a: add | r: refresh"
}

func (m ProductsModel) Init() tea.Cmd {
	return m.loadProductsCmd()
}

func (m ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case productsLoadMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.products = msg.products
		m.refreshTable()
		return m, nil

	case productsSaveMsg:
		m.state = productsStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Added %s", msg.created.Name)
		return m, m.loadProductsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case productsStateBrowse:
		return m.updateBrowse(msg)
	case productsStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m ProductsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadProductsCmd()
		case "a":
			return m.enterAddMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ProductsModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formBarcode = ""
	m.formName = ""
	m.formPrice = ""
	m.formQuantity = "0"
	m.formCategory = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("price").
				Title("Price").
				Value(&m.formPrice).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("price must be a number")
					}
					if d.IsNegative() {
						return fmt.Errorf("price must not be negative")
					}
					return nil
				}),

			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(&m.formQuantity).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n < 0 {
						return fmt.Errorf("quantity must be a non-negative number")
					}
					return nil
				}),

			huh.NewInput().
				Key("barcode").
				Title("Barcode (optional)").
				Value(&m.formBarcode),

			huh.NewInput().
				Key("category").
				Title("Category (optional)").
				Value(&m.formCategory),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = productsStateAdd
	m.table.Blur()
	return m, m.form.Init()
}

func (m ProductsModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = productsStateBrowse
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

	return m, m.saveCmd()
}

func (m ProductsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading products...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.state == productsStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Add Product\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ProductsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		rows = append(rows, table.Row{
			p.Barcode,
			p.Name,
			FormatMoney(p.Price),
			strconv.FormatInt(p.Quantity, 10),
			p.Category,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type productsLoadMsg struct {
	products []*product.Product
	err      error
}

func (m ProductsModel) loadProductsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.productService.List(ctx, product.ListFilter{})
		return productsLoadMsg{products: products, err: err}
	}
}

type productsSaveMsg struct {
	created *product.Product
	err     error
}

func (m ProductsModel) saveCmd() tea.Cmd {
	price, _ := decimal.NewFromString(strings.TrimSpace(m.formPrice))
	quantity, _ := strconv.ParseInt(strings.TrimSpace(m.formQuantity), 10, 64)

	params := product.CreateParams{
		Barcode:  strings.TrimSpace(m.formBarcode),
		Name:     strings.TrimSpace(m.formName),
		Price:    price,
		Quantity: quantity,
		Category: strings.TrimSpace(m.formCategory),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		created, err := m.productService.Create(ctx, params)
		return productsSaveMsg{created: created, err: err}
	}
}
