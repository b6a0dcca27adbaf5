package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdinteriors/catalog-service/internal/docgen"
	"github.com/pdinteriors/catalog-service/internal/model"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"github.com/pdinteriors/catalog-service/internal/schedule"
	"github.com/pdinteriors/catalog-service/internal/schedule/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const fetchConcurrency = 4

// ProductSource is the slice of the product repository generation needs.
type ProductSource interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

type scheduleUseCase struct {
	products  ProductSource
	fetcher   schedule.ImageFetcher
	templates schedule.TemplateSource
	printer   *message.Printer
	logger    logger.ZapLogger
}

func NewScheduleUseCase(products ProductSource, fetcher schedule.ImageFetcher, templates schedule.TemplateSource, log logger.ZapLogger) schedule.UseCase {
	return &scheduleUseCase{
		products:  products,
		fetcher:   fetcher,
		templates: templates,
		printer:   message.NewPrinter(language.English),
		logger:    log,
	}
}

func (uc *scheduleUseCase) Generate(ctx context.Context, input *dto.GenerateInput) (*schedule.Document, error) {
	if strings.TrimSpace(input.Address) == "" {
		return nil, errors.New("address is required")
	}
	if len(input.Rows) == 0 {
		return nil, errors.New("add at least one product to the selection")
	}
	for _, row := range input.Rows {
		if row.Quantity < 1 {
			return nil, errors.New("quantity must be at least 1 for each product")
		}
	}

	date := time.Now()
	dateStr := input.Date
	if dateStr == "" {
		dateStr = date.Format("2006-01-02")
	} else {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", input.Date)
		}
		date = parsed
	}

	products := make([]*model.Product, len(input.Rows))
	for i, row := range input.Rows {
		p, err := uc.products.FindByID(ctx, row.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("unknown product %q in selection", row.ProductID)
		}
		products[i] = p
	}

	images := uc.fetchImages(ctx, products)

	rows := make([]docgen.Row, len(input.Rows))
	for i, row := range input.Rows {
		p := products[i]

		areaDescription := strings.TrimSpace(row.AreaDescription)
		if areaDescription == "" {
			areaDescription = p.Area
		}

		price := p.Price
		if row.PriceOverride != nil {
			price = row.PriceOverride
		}
		priceFormatted := ""
		if price != nil {
			priceFormatted = uc.printer.Sprintf("$%.2f", *price)
		}

		rows[i] = docgen.Row{
			Values: map[string]string{
				"code":                     p.Code,
				"description":              p.Description,
				"manufacturer-description": deref(p.ManufacturerDescription),
				"product-details":          deref(p.ProductDetails),
				"area-description":         areaDescription,
				"quantity":                 strconv.Itoa(row.Quantity),
				"price":                    priceFormatted,
				"notes":                    row.Notes,
			},
			Images: map[string]docgen.Image{
				"image": {Data: images[i]},
			},
		}
	}

	binding := docgen.Binding{
		Fields: map[string]string{
			"address":      input.Address,
			"contact-name": input.ContactName,
			"company":      input.Company,
			"phone-number": input.PhoneNumber,
			"email":        input.Email,
			"date":         date.Format("2 January 2006"),
		},
		Rows: map[string][]docgen.Row{
			"items": rows,
		},
	}

	template, err := uc.templates.Template(ctx)
	if err != nil {
		return nil, &docgen.LoadError{Reason: "template unavailable", Err: err}
	}

	out, err := docgen.Render(template, binding)
	if err != nil {
		return nil, err
	}

	return &schedule.Document{
		Filename: documentFilename(input.Address, dateStr),
		Bytes:    out,
	}, nil
}

// fetchImages resolves row images concurrently. Each failure is logged and
// leaves that row's image empty; generation always proceeds.
func (uc *scheduleUseCase) fetchImages(ctx context.Context, products []*model.Product) [][]byte {
	images := make([][]byte, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, p := range products {
		if p.ImageURL == "" {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			data, err := uc.fetcher.Fetch(gctx, p.ImageURL)
			if err != nil {
				uc.logger.Warn("row image fetch failed, rendering without it",
					zap.String("code", p.Code), zap.String("url", p.ImageURL), zap.Error(err))
				return nil
			}
			images[i] = data
			return nil
		})
	}
	_ = g.Wait()

	return images
}

var filenameUnsafe = regexp.MustCompile(`[\s/\\]+`)

func documentFilename(address, date string) string {
	return fmt.Sprintf("Product-Selection-%s-%s.docx",
		filenameUnsafe.ReplaceAllString(strings.TrimSpace(address), "-"), date)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
