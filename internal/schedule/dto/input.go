package dto

type GenerateInput struct {
	Address     string     `json:"address"`
	ContactName string     `json:"contactName"`
	Company     string     `json:"company"`
	PhoneNumber string     `json:"phoneNumber"`
	Email       string     `json:"email"`
	Date        string     `json:"date"` // YYYY-MM-DD, defaults to today
	Rows        []RowInput `json:"rows"`
}

type RowInput struct {
	ProductID       string   `json:"productId"`
	Quantity        int      `json:"quantity"`
	Notes           string   `json:"notes"`
	AreaDescription string   `json:"areaDescription"` // falls back to the product's area
	PriceOverride   *float64 `json:"priceOverride"`   // falls back to the stored price
}
