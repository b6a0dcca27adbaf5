package schedule

import (
	"context"

	"github.com/pdinteriors/catalog-service/internal/schedule/dto"
)

// Document is a rendered selection document ready for download.
type Document struct {
	Filename string
	Bytes    []byte
}

type UseCase interface {
	Generate(ctx context.Context, input *dto.GenerateInput) (*Document, error)
}

// ImageFetcher resolves a product image URL to raw bytes. A failed fetch
// degrades that row's image; it never aborts generation.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TemplateSource yields the selection template package bytes.
type TemplateSource interface {
	Template(ctx context.Context) ([]byte, error)
}
