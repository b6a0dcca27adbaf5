package dto

type CreateProductInput struct {
	Name                    string
	Area                    string
	Description             string
	ManufacturerDescription string
	ProductDetails          string
	Price                   *float64
	ImageURL                string
}
