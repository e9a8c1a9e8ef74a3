package importer

import (
	"fmt"
	"io"

	"github.com/karimelh/salespoint/internal/importer/catalog"
	"github.com/karimelh/salespoint/internal/product"
)

type Service struct {
	catalogParser Parser
}

func NewService() *Service {
	return &Service{
		catalogParser: catalog.NewParser(),
	}
}

func (s *Service) Parse(format Format, r io.Reader) ([]product.CreateParams, error) {
	var parser Parser

	switch format {
	case FormatCatalog:
		parser = s.catalogParser
	default:
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	return parser.Parse(r)
}
