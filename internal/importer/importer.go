package importer

import (
	"io"

	"github.com/karimelh/salespoint/internal/product"
)

// Format identifies a supported catalog file layout.
type Format string

const FormatCatalog Format = "catalog"

type Parser interface {
	Parse(r io.Reader) ([]product.CreateParams, error)
}
