package settings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the singleton configuration row (id = 1). The sale engine
// reads TaxRate fresh inside each unit of work; everything else feeds
// invoice rendering and the storefront identity.
type Settings struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	CompanyLogo    string
	Currency       string
	TaxRate        decimal.Decimal
	InvoiceFooter  string
	UpdatedAt      time.Time
}
