package validation

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// the claimed total must match the sum of (unit price * quantity) of items
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderRequest{})

	return v
}

// createOrderStructValidation verifies the aggregated total of items equals
// TotalAmount (compared in whole cents to dodge float rounding).
func createOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.UnitPrice
	}

	sumCents := int(math.Round(sum * 100))
	totalCents := int(math.Round(req.TotalAmount * 100))
	if sumCents != totalCents {
		sl.ReportError(req.TotalAmount, "total_amount", "TotalAmount", "amount_match_items",
			fmt.Sprintf("items sum %.2f != total %.2f", sum, req.TotalAmount))
	}
}
