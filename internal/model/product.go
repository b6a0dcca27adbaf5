package model

type Product struct {
	BaseModel
	Code                    string   `db:"code" json:"code"`
	Name                    string   `db:"name" json:"name"`
	Area                    string   `db:"area" json:"area"`
	Description             string   `db:"description" json:"description"`
	ManufacturerDescription *string  `db:"manufacturer_description" json:"manufacturer_description"` // Nullable
	ProductDetails          *string  `db:"product_details" json:"product_details"`                   // Nullable
	Price                   *float64 `db:"price" json:"price"`                                       // Nullable
	ImageURL                string   `db:"image_url" json:"image_url"`
}
