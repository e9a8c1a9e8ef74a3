package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/karimelh/salespoint/cmd/pos/internal/view"
	"github.com/karimelh/salespoint/internal/config"
	"github.com/karimelh/salespoint/internal/database"
	"github.com/karimelh/salespoint/internal/product"
	productStore "github.com/karimelh/salespoint/internal/product/store"
	"github.com/karimelh/salespoint/internal/sale"
	saleStore "github.com/karimelh/salespoint/internal/sale/store"
)

type model struct {
	saleService    *sale.Service
	productService *product.Service

	currentView View

	sellView     view.SellModel
	productsView view.ProductsModel
	historyView  view.HistoryModel
}

type View int

const (
	ViewMenu     View = 0
	ViewSell     View = 1
	ViewProducts View = 2
	ViewHistory  View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DSN())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	saleSvc := sale.NewService(saleStore.New(db, cfg.DB.BusyTimeout))
	productSvc := product.NewService(productStore.New(db))

	return model{
		saleService:    saleSvc,
		productService: productSvc,
		currentView:    ViewMenu,
		sellView:       view.NewSellModel(saleSvc, productSvc),
		productsView:   view.NewProductsModel(productSvc),
		historyView:    view.NewHistoryModel(saleSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSell
				m.sellView = view.NewSellModel(m.saleService, m.productService)

				return m, m.sellView.Init()
			case "2":
				m.currentView = ViewProducts
				m.productsView = view.NewProductsModel(m.productService)

				return m, m.productsView.Init()
			case "3":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.saleService)

				return m, m.historyView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSell:
		var newModel tea.Model
		newModel, cmd = m.sellView.Update(msg)
		m.sellView = newModel.(view.SellModel)
	case ViewProducts:
		var newModel tea.Model
		newModel, cmd = m.productsView.Update(msg)
		m.productsView = newModel.(view.ProductsModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Salespoint POS\n\n" +
				"1. New Sale\n" +
				"2. Products\n" +
				"3. Sales History\n\n" +
				"q. Quit",
		)
	case ViewSell:
		return m.sellView.View()
	case ViewProducts:
		return m.productsView.View()
	case ViewHistory:
		return m.historyView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
