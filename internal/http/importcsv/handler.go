package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/karimelh/salespoint/internal/importer"
	"github.com/karimelh/salespoint/internal/product"
)

type Handler struct {
	importSvc  *importer.Service
	productSvc *product.Service
}

func NewHandler(importSvc *importer.Service, productSvc *product.Service) *Handler {
	return &Handler{importSvc: importSvc, productSvc: productSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type productDTO struct {
	ID       int64           `json:"id"`
	Barcode  string          `json:"barcode,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type createParamsDTO struct {
	Barcode  string          `json:"barcode,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing productDTO      `json:"existing"`
}

type importResponse struct {
	Imported  int           `json:"imported"`
	Products  []productDTO  `json:"products"`
	Conflicts []conflictDTO `json:"conflicts,omitempty"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Parse(importer.FormatCatalog, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.productSvc.ImportBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importResponse{
		Imported: len(result.Imported),
		Products: make([]productDTO, 0, len(result.Imported)),
	}

	for _, p := range result.Imported {
		resp.Products = append(resp.Products, toProductDTO(p))
	}

	for _, c := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, conflictDTO{
			Incoming: createParamsDTO{
				Barcode:  c.Incoming.Barcode,
				Name:     c.Incoming.Name,
				Price:    c.Incoming.Price,
				Quantity: c.Incoming.Quantity,
			},
			Existing: toProductDTO(c.Existing),
		})
	}

	w.Header().Set("Content-Type", "application/json")

	// Conflicting rows were skipped, so report the batch as a conflict
	// even though fresh rows landed.
	if len(resp.Conflicts) > 0 {
		w.WriteHeader(http.StatusConflict)
	} else {
		w.WriteHeader(http.StatusCreated)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toProductDTO(p *product.Product) productDTO {
	return productDTO{
		ID:       p.ID,
		Barcode:  p.Barcode,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
}
