package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pdinteriors/catalog-service/internal/model"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"github.com/pdinteriors/catalog-service/internal/schedule/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts struct {
	byID map[string]*model.Product
}

func (f *fakeProducts) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return f.byID[id], nil
}

type fakeFetcher struct {
	data map[string][]byte
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := f.data[url]; ok {
		return data, nil
	}
	return nil, errors.New("fetch failed")
}

type fakeTemplates struct {
	data []byte
	err  error
}

func (f *fakeTemplates) Template(ctx context.Context) ([]byte, error) {
	return f.data, f.err
}

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>{{address}}</w:t></w:r></w:p>
    <w:p><w:r><w:t>{{date}} {{contact-name}} {{company}} {{phone-number}} {{email}}</w:t></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>{#items}</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>{{code}} {{description}} {{area-description}} {{quantity}} {{price}} {{notes}} {%image}</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>{/items}</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func testTemplate(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": testDocumentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`,
	}
	for name, data := range parts {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

var testPNG = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x01}, 16)...)

func stringp(s string) *string  { return &s }
func floatp(f float64) *float64 { return &f }

func testProduct(id, code string) *model.Product {
	p := &model.Product{
		Code:        code,
		Name:        "Oak Cabinet",
		Area:        "Bedroom",
		Description: "Solid oak cabinet",
		Price:       floatp(199.99),
		ImageURL:    "http://blobs/products/" + code + ".png",
	}
	p.ID = id
	p.ManufacturerDescription = stringp("Oak, brushed brass handles")
	return p
}

func newTestUC(t *testing.T, products *fakeProducts, fetcher *fakeFetcher) *scheduleUseCase {
	t.Helper()
	uc := NewScheduleUseCase(products, fetcher, &fakeTemplates{data: testTemplate(t)}, logger.NewNop())
	return uc.(*scheduleUseCase)
}

func validGenerateInput() *dto.GenerateInput {
	return &dto.GenerateInput{
		Address:     "12 Main St",
		ContactName: "Jamie Fox",
		Company:     "PD Interiors",
		PhoneNumber: "0400 000 000",
		Email:       "jamie@example.com",
		Date:        "2024-03-05",
		Rows: []dto.RowInput{
			{ProductID: "p1", Quantity: 2, Notes: "Wall mounted"},
		},
	}
}

func documentText(t *testing.T, data []byte) string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		return regexp.MustCompile(`<[^>]+>`).ReplaceAllString(buf.String(), "")
	}
	t.Fatal("document part missing")
	return ""
}

func TestGenerateProducesDocument(t *testing.T) {
	p := testProduct("p1", "B001")
	products := &fakeProducts{byID: map[string]*model.Product{"p1": p}}
	fetcher := &fakeFetcher{data: map[string][]byte{p.ImageURL: testPNG}}
	uc := newTestUC(t, products, fetcher)

	doc, err := uc.Generate(context.Background(), validGenerateInput())
	require.NoError(t, err)

	assert.Equal(t, "Product-Selection-12-Main-St-2024-03-05.docx", doc.Filename)

	text := documentText(t, doc.Bytes)
	assert.Contains(t, text, "12 Main St")
	assert.Contains(t, text, "5 March 2024")
	assert.Contains(t, text, "B001")
	assert.Contains(t, text, "Solid oak cabinet")
	assert.Contains(t, text, "Bedroom") // area falls back to the product's area
	assert.Contains(t, text, "2")
	assert.Contains(t, text, "$199.99")
	assert.Contains(t, text, "Wall mounted")
	assert.NotContains(t, text, "{{")
	assert.NotContains(t, text, "{#")
}

func TestGenerateRowOverrides(t *testing.T) {
	p := testProduct("p1", "B001")
	products := &fakeProducts{byID: map[string]*model.Product{"p1": p}}
	uc := newTestUC(t, products, &fakeFetcher{})

	in := validGenerateInput()
	in.Rows[0].AreaDescription = "Master bedroom"
	in.Rows[0].PriceOverride = floatp(1250)

	doc, err := uc.Generate(context.Background(), in)
	require.NoError(t, err)

	text := documentText(t, doc.Bytes)
	assert.Contains(t, text, "Master bedroom")
	assert.Contains(t, text, "$1,250.00")
}

func TestGenerateImageFetchFailureDegrades(t *testing.T) {
	p1 := testProduct("p1", "B001")
	p2 := testProduct("p2", "B002")
	products := &fakeProducts{byID: map[string]*model.Product{"p1": p1, "p2": p2}}
	// Only the first image resolves; the second row renders without one.
	fetcher := &fakeFetcher{data: map[string][]byte{p1.ImageURL: testPNG}}
	uc := newTestUC(t, products, fetcher)

	in := validGenerateInput()
	in.Rows = append(in.Rows, dto.RowInput{ProductID: "p2", Quantity: 1})

	doc, err := uc.Generate(context.Background(), in)
	require.NoError(t, err)

	text := documentText(t, doc.Bytes)
	assert.Contains(t, text, "B001")
	assert.Contains(t, text, "B002")
}

func TestGenerateValidation(t *testing.T) {
	p := testProduct("p1", "B001")
	products := &fakeProducts{byID: map[string]*model.Product{"p1": p}}
	uc := newTestUC(t, products, &fakeFetcher{})

	in := validGenerateInput()
	in.Address = "   "
	_, err := uc.Generate(context.Background(), in)
	assert.ErrorContains(t, err, "address")

	in = validGenerateInput()
	in.Rows = nil
	_, err = uc.Generate(context.Background(), in)
	assert.ErrorContains(t, err, "at least one product")

	in = validGenerateInput()
	in.Rows[0].Quantity = 0
	_, err = uc.Generate(context.Background(), in)
	assert.ErrorContains(t, err, "quantity")

	in = validGenerateInput()
	in.Date = "05/03/2024"
	_, err = uc.Generate(context.Background(), in)
	assert.ErrorContains(t, err, "date")

	in = validGenerateInput()
	in.Rows[0].ProductID = "missing"
	_, err = uc.Generate(context.Background(), in)
	assert.ErrorContains(t, err, "unknown product")
}

func TestDocumentFilename(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"12 Main St", "Product-Selection-12-Main-St-2024-03-05.docx"},
		{"  4/22 Harbour  Rd ", "Product-Selection-4-22-Harbour-Rd-2024-03-05.docx"},
		{"Unit\\3 Elm Lane", "Product-Selection-Unit-3-Elm-Lane-2024-03-05.docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, documentFilename(tt.address, "2024-03-05"))
	}
}
