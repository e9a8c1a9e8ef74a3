package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/karimelh/salespoint/internal/settings"
	"github.com/karimelh/salespoint/internal/upload"
)

type Handler struct {
	svc   *settings.Service
	saver *upload.Saver
}

func NewHandler(svc *settings.Service, saver *upload.Saver) *Handler {
	return &Handler{svc: svc, saver: saver}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
	r.Post("/logo", h.uploadLogo)
}

type settingsResponse struct {
	CompanyName    string          `json:"company_name"`
	CompanyAddress string          `json:"company_address,omitempty"`
	CompanyPhone   string          `json:"company_phone,omitempty"`
	CompanyEmail   string          `json:"company_email,omitempty"`
	CompanyLogo    string          `json:"company_logo,omitempty"`
	Currency       string          `json:"currency"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	InvoiceFooter  string          `json:"invoice_footer,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toResponse(s *settings.Settings) settingsResponse {
	return settingsResponse{
		CompanyName:    s.CompanyName,
		CompanyAddress: s.CompanyAddress,
		CompanyPhone:   s.CompanyPhone,
		CompanyEmail:   s.CompanyEmail,
		CompanyLogo:    s.CompanyLogo,
		Currency:       s.Currency,
		TaxRate:        s.TaxRate,
		InvoiceFooter:  s.InvoiceFooter,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(s)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateSettingsRequest struct {
	CompanyName    *string          `json:"company_name,omitempty"`
	CompanyAddress *string          `json:"company_address,omitempty"`
	CompanyPhone   *string          `json:"company_phone,omitempty"`
	CompanyEmail   *string          `json:"company_email,omitempty"`
	Currency       *string          `json:"currency,omitempty"`
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"`
	InvoiceFooter  *string          `json:"invoice_footer,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.svc.Get(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if req.CompanyName != nil {
		s.CompanyName = *req.CompanyName
	}

	if req.CompanyAddress != nil {
		s.CompanyAddress = *req.CompanyAddress
	}

	if req.CompanyPhone != nil {
		s.CompanyPhone = *req.CompanyPhone
	}

	if req.CompanyEmail != nil {
		s.CompanyEmail = *req.CompanyEmail
	}

	if req.Currency != nil {
		s.Currency = *req.Currency
	}

	if req.TaxRate != nil {
		s.TaxRate = *req.TaxRate
	}

	if req.InvoiceFooter != nil {
		s.InvoiceFooter = *req.InvoiceFooter
	}

	if err := h.svc.Update(r.Context(), s); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(s)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		http.Error(w, "logo field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name, err := h.saver.Save(file, header)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateLogo(r.Context(), name); err != nil {
		h.saver.Remove(name)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]string{"company_logo": name}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
