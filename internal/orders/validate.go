package orders

import "fmt"

// ValidateCreate checks presence of the required fields only.
func ValidateCreate(h Header, items []ItemInput) error {
	switch {
	case h.CustomerID == 0:
		return fmt.Errorf("%w: customer_id required", ErrValidation)
	case h.DeliveryAddress == "":
		return fmt.Errorf("%w: delivery_address required", ErrValidation)
	case h.Status == "":
		return fmt.Errorf("%w: status required", ErrValidation)
	case !h.TotalPrice.Valid:
		return fmt.Errorf("%w: total_price required", ErrValidation)
	case len(items) == 0:
		return fmt.Errorf("%w: at least one product required", ErrValidation)
	}
	for i, it := range items {
		if it.ProductID == 0 {
			return fmt.Errorf("%w: products[%d].product_id required", ErrValidation, i)
		}
	}
	return nil
}
