package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/karimelh/salespoint/internal/settings"
)

const timeLayout = "2006-01-02 15:04:05"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type settingsRow struct {
	CompanyName    string          `db:"company_name"`
	CompanyAddress *string         `db:"company_address"`
	CompanyPhone   *string         `db:"company_phone"`
	CompanyEmail   *string         `db:"company_email"`
	CompanyLogo    *string         `db:"company_logo"`
	Currency       string          `db:"currency"`
	TaxRate        decimal.Decimal `db:"tax_rate"`
	InvoiceFooter  *string         `db:"invoice_footer"`
	UpdatedAt      string          `db:"updated_at"`
}

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	var row settingsRow

	err := s.db.GetContext(ctx, &row, `
		SELECT company_name, company_address, company_phone, company_email, company_logo,
		       currency, COALESCE(tax_rate, 0) AS tax_rate, invoice_footer, updated_at
		FROM settings WHERE id = 1`)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	updatedAt, _ := time.Parse(timeLayout, row.UpdatedAt)

	return &settings.Settings{
		CompanyName:    row.CompanyName,
		CompanyAddress: deref(row.CompanyAddress),
		CompanyPhone:   deref(row.CompanyPhone),
		CompanyEmail:   deref(row.CompanyEmail),
		CompanyLogo:    deref(row.CompanyLogo),
		Currency:       row.Currency,
		TaxRate:        row.TaxRate,
		InvoiceFooter:  deref(row.InvoiceFooter),
		UpdatedAt:      updatedAt,
	}, nil
}

func (s *Store) UpdateSettings(ctx context.Context, in *settings.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE settings
		SET company_name = ?, company_address = ?, company_phone = ?, company_email = ?,
		    currency = ?, tax_rate = ?, invoice_footer = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1`,
		in.CompanyName, nullIfEmpty(in.CompanyAddress), nullIfEmpty(in.CompanyPhone),
		nullIfEmpty(in.CompanyEmail), in.Currency, in.TaxRate, nullIfEmpty(in.InvoiceFooter),
	)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}

	return nil
}

func (s *Store) UpdateLogo(ctx context.Context, logo string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE settings SET company_logo = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		logo,
	)
	if err != nil {
		return fmt.Errorf("updating logo: %w", err)
	}

	return nil
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
