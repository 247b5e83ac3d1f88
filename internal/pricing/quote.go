package pricing

// Totals is the tax and fee breakdown of a subtotal.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
}

const DefaultTaxRate = 0.18

func BuildQuote(subtotal, taxRate, platformFeeRate float64) Totals {
	tax := Round2(subtotal * taxRate)
	fee := Round2(subtotal * platformFeeRate)
	return Totals{
		Subtotal:    Round2(subtotal),
		Tax:         tax,
		PlatformFee: fee,
		Total:       Round2(subtotal + tax + fee),
	}
}
